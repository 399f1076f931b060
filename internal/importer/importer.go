package importer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/gosimple/slug"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"storefront/internal/domain"
)

// RequiredHeaders must appear in the first line of every catalog file.
var RequiredHeaders = []string{"name", "price"}

type ProductWriter interface {
	Upsert(ctx context.Context, product domain.Product) (*domain.Product, error)
}

// CSVImporter reads catalog CSV files and inserts or updates products by name.
type CSVImporter struct {
	reader      *csv.Reader
	productRepo ProductWriter
	logger      zerolog.Logger
}

func NewCSVImporter(r io.Reader, repo ProductWriter, logger zerolog.Logger) *CSVImporter {
	csvr := csv.NewReader(r)
	csvr.FieldsPerRecord = -1 // the active column is optional
	csvr.TrimLeadingSpace = true
	return &CSVImporter{
		reader:      csvr,
		productRepo: repo,
		logger:      logger.With().Str("component", "importer").Logger(),
	}
}

// Run parses every row and upserts it. It stops at the first invalid row.
func (i *CSVImporter) Run(ctx context.Context) (int, error) {
	headers, err := i.reader.Read()
	if err != nil {
		return 0, fmt.Errorf("read headers: %w", err)
	}
	index := headerIndex(headers)
	for _, h := range RequiredHeaders {
		if _, ok := index[h]; !ok {
			return 0, fmt.Errorf("missing required column %q", h)
		}
	}

	imported := 0
	line := 1
	for {
		record, err := i.reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return imported, fmt.Errorf("read row: %w", err)
		}
		line++

		if blank(record) {
			continue
		}
		p, err := parseRow(record, index)
		if err != nil {
			return imported, fmt.Errorf("line %d: %w", line, err)
		}
		if _, err := i.productRepo.Upsert(ctx, p); err != nil {
			return imported, fmt.Errorf("upsert product %q: %w", p.Name, err)
		}
		i.logger.Debug().Str("name", p.Name).Str("price", p.Price.StringFixed(2)).Msg("product upserted")
		imported++
	}

	return imported, nil
}

func headerIndex(headers []string) map[string]int {
	idx := make(map[string]int, len(headers))
	for i, h := range headers {
		idx[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))] = i
	}
	return idx
}

func parseRow(record []string, index map[string]int) (domain.Product, error) {
	name := pick(record, index, "name")
	if name == "" {
		return domain.Product{}, errors.New("name is required")
	}

	price, err := decimal.NewFromString(pick(record, index, "price"))
	if err != nil {
		return domain.Product{}, fmt.Errorf("invalid price for %q: %w", name, err)
	}
	if price.IsNegative() {
		return domain.Product{}, fmt.Errorf("negative price for %q", name)
	}

	stock := 0
	if raw := pick(record, index, "stock"); raw != "" {
		stock, err = strconv.Atoi(raw)
		if err != nil || stock < 0 {
			return domain.Product{}, fmt.Errorf("invalid stock for %q: %s", name, raw)
		}
	}

	active := true
	if raw := pick(record, index, "active"); raw != "" {
		active, err = strconv.ParseBool(raw)
		if err != nil {
			return domain.Product{}, fmt.Errorf("invalid active flag for %q: %s", name, raw)
		}
	}

	image := pick(record, index, "image")
	if image == "" {
		image = slug.Make(name) + ".jpg"
	}

	return domain.Product{
		Name:        name,
		Description: pick(record, index, "description"),
		Price:       price.Round(2),
		Image:       image,
		Category:    strings.ToLower(pick(record, index, "category")),
		Stock:       stock,
		Active:      active,
	}, nil
}

func pick(record []string, index map[string]int, key string) string {
	pos, ok := index[key]
	if !ok || pos >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[pos])
}

func blank(record []string) bool {
	for _, f := range record {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}
