package importer

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"storefront/internal/domain"
)

type stubProductRepo struct {
	items []domain.Product
	err   error
}

func (s *stubProductRepo) Upsert(_ context.Context, p domain.Product) (*domain.Product, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.items = append(s.items, p)
	return &p, nil
}

func TestCSVImporter_Run(t *testing.T) {
	csvData := `name,description,price,image,category,stock,active
Arroz Costeño 1kg,Arroz extra,3.50,arroz.jpg,Alimentos,50,true
Cuaderno Standford A4,,5.5,,utiles,30
Galletas Soda,Paquete,1.20,,alimentos,,false

`
	repo := &stubProductRepo{}
	imp := NewCSVImporter(strings.NewReader(csvData), repo, zerolog.Nop())

	count, err := imp.Run(context.Background())
	if err != nil {
		t.Fatalf("import run: %v", err)
	}
	if count != 3 || len(repo.items) != 3 {
		t.Fatalf("expected 3 products imported, got %d (%d saved)", count, len(repo.items))
	}

	first := repo.items[0]
	if first.Name != "Arroz Costeño 1kg" || first.Price.StringFixed(2) != "3.50" || first.Image != "arroz.jpg" || first.Category != "alimentos" || first.Stock != 50 || !first.Active {
		t.Fatalf("unexpected first product: %+v", first)
	}
	if repo.items[1].Image != "cuaderno-standford-a4.jpg" {
		t.Fatalf("expected slug image default, got %q", repo.items[1].Image)
	}
	if !repo.items[1].Active {
		t.Fatalf("expected active default true when column missing")
	}
	if repo.items[2].Active || repo.items[2].Stock != 0 {
		t.Fatalf("unexpected third product: %+v", repo.items[2])
	}
}

func TestCSVImporter_RejectsInvalidRows(t *testing.T) {
	cases := map[string]string{
		"missing price column": "name,description\nArroz,desc\n",
		"empty name":           "name,price\n,3.50\n",
		"bad price":            "name,price\nArroz,tres\n",
		"negative price":       "name,price\nArroz,-1\n",
		"bad stock":            "name,price,stock\nArroz,3.5,muchos\n",
		"bad active":           "name,price,active\nArroz,3.5,quizas\n",
	}
	for name, data := range cases {
		t.Run(name, func(t *testing.T) {
			repo := &stubProductRepo{}
			if _, err := NewCSVImporter(strings.NewReader(data), repo, zerolog.Nop()).Run(context.Background()); err == nil {
				t.Fatalf("expected error")
			}
			if len(repo.items) != 0 {
				t.Fatalf("expected nothing saved, got %d", len(repo.items))
			}
		})
	}
}

func TestCSVImporter_StopsOnWriteError(t *testing.T) {
	boom := errors.New("db down")
	repo := &stubProductRepo{err: boom}
	_, err := NewCSVImporter(strings.NewReader("name,price\nArroz,3.5\n"), repo, zerolog.Nop()).Run(context.Background())
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped repo error, got %v", err)
	}
}

func TestHeaderIndex_NormalizesNames(t *testing.T) {
	idx := headerIndex([]string{"\ufeffName", " PRICE "})
	if idx["name"] != 0 || idx["price"] != 1 {
		t.Fatalf("unexpected index %+v", idx)
	}
}
