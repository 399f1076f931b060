package seed

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type productSeed struct {
	Name        string
	Description string
	Price       string
	Image       string
	Category    string
	Stock       int
}

// sampleProducts is the demo catalog loaded into an empty database.
var sampleProducts = []productSeed{
	{"Golosinas Variadas", "Caramelos, chicles, chocolates y más dulces.", "2.50", "golosinas.jpg", "golosinas", 100},
	{"Bebidas Energéticas", "Variedad de marcas: Red Bull, Monster, Volt.", "8.00", "bebidas.jpg", "bebidas", 50},
	{"Artículos de Oficina", "Resmas, lapiceros, folders, cuadernos.", "10.00", "oficina.jpg", "libreria", 200},
	{"Galletas Surtidas", "Pack de galletas de diferentes sabores.", "5.00", "galletas.jpg", "golosinas", 80},
	{"Agua Mineral", "Botella de 500ml, sin gas.", "2.00", "agua.jpg", "bebidas", 150},
	{"Cuaderno A4", "Cuaderno de 100 hojas cuadriculado.", "6.50", "cuaderno.jpg", "libreria", 120},
	{"Jabón Líquido", "Jabón antibacterial 250ml.", "8.50", "jabon.jpg", "limpieza", 60},
	{"Detergente", "Bolsa de detergente 500g.", "12.00", "detergente.jpg", "limpieza", 40},
	{"Arroz Extra", "Arroz de 1kg de alta calidad.", "4.50", "arroz.jpg", "abarrotes", 100},
	{"Aceite Vegetal", "Botella de aceite de 1 litro.", "9.00", "aceite.jpg", "abarrotes", 70},
}

// Apply inserts the sample catalog when the products table is empty and
// returns how many rows were inserted. A non-empty catalog is left untouched.
func Apply(ctx context.Context, pool *pgxpool.Pool) (int, error) {
	tx, err := pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return 0, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	// Serialize concurrent seeders on the empty-table check.
	if _, err := tx.Exec(ctx, `LOCK TABLE products IN SHARE ROW EXCLUSIVE MODE`); err != nil {
		return 0, fmt.Errorf("lock products: %w", err)
	}

	var count int64
	if err := tx.QueryRow(ctx, `SELECT COUNT(*) FROM products`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count products: %w", err)
	}
	if count > 0 {
		return 0, nil
	}

	const q = `
INSERT INTO products (name, description, price, image, category, stock)
VALUES ($1, $2, $3, $4, $5, $6)
`
	for _, p := range sampleProducts {
		price, err := decimal.NewFromString(p.Price)
		if err != nil {
			return 0, fmt.Errorf("parse price for %s: %w", p.Name, err)
		}
		if _, err := tx.Exec(ctx, q, p.Name, p.Description, price, p.Image, p.Category, p.Stock); err != nil {
			return 0, fmt.Errorf("insert product %s: %w", p.Name, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return len(sampleProducts), nil
}
