package importer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"tableorder/internal/domain"
)

type ProductWriter interface {
	Upsert(ctx context.Context, product domain.Product) (*domain.Product, error)
}

// CSVImporter reads a menu CSV and inserts or updates products by name.
// Expected headers: name, description, category, tag, price, image, available.
// Header names are matched case-insensitively and unknown columns are ignored.
type CSVImporter struct {
	reader      *csv.Reader
	productRepo ProductWriter
}

func NewCSVImporter(r io.Reader, repo ProductWriter) *CSVImporter {
	csvr := csv.NewReader(r)
	csvr.FieldsPerRecord = -1 // rows may have trailing commas
	csvr.TrimLeadingSpace = true
	return &CSVImporter{
		reader:      csvr,
		productRepo: repo,
	}
}

// Run parses every row and upserts it. It stops at the first invalid row and
// reports its line number.
func (i *CSVImporter) Run(ctx context.Context) (int, error) {
	headers, err := i.reader.Read()
	if err != nil {
		return 0, fmt.Errorf("read headers: %w", err)
	}
	index := headerIndex(headers)
	if _, ok := index["name"]; !ok {
		return 0, errors.New("missing name column")
	}
	if _, ok := index["price"]; !ok {
		return 0, errors.New("missing price column")
	}

	var imported int
	for {
		record, err := i.reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return imported, fmt.Errorf("read row: %w", err)
		}
		line, _ := i.reader.FieldPos(0)

		p, skip, err := parseRow(record, index)
		if err != nil {
			return imported, fmt.Errorf("line %d: %w", line, err)
		}
		if skip {
			continue
		}
		if _, err := i.productRepo.Upsert(ctx, p); err != nil {
			return imported, fmt.Errorf("upsert product %q: %w", p.Name, err)
		}
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

func parseRow(record []string, index map[string]int) (domain.Product, bool, error) {
	name := pick(record, index, "name")
	if name == "" && strings.TrimSpace(strings.Join(record, "")) == "" {
		return domain.Product{}, true, nil
	}
	if name == "" {
		return domain.Product{}, false, fmt.Errorf("%w: name required", domain.ErrInvalidInput)
	}
	cents, err := domain.ParseCents(pick(record, index, "price"))
	if err != nil {
		return domain.Product{}, false, err
	}
	available := true
	if raw := pick(record, index, "available"); raw != "" {
		available, err = strconv.ParseBool(raw)
		if err != nil {
			return domain.Product{}, false, fmt.Errorf("%w: available %q", domain.ErrInvalidInput, raw)
		}
	}
	return domain.Product{
		Name:        name,
		Description: pick(record, index, "description"),
		Category:    pick(record, index, "category"),
		SpecialTag:  pick(record, index, "tag"),
		ImageURL:    pick(record, index, "image"),
		PriceCents:  cents,
		IsAvailable: available,
	}, false, nil
}

func pick(record []string, index map[string]int, key string) string {
	pos, ok := index[key]
	if !ok || pos >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[pos])
}
