package importer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"storefront/internal/domain"
)

type ProductWriter interface {
	Upsert(ctx context.Context, product domain.Product) (*domain.Product, error)
}

// CSVImporter reads catalog CSV files and upserts products by key.
type CSVImporter struct {
	reader          *csv.Reader
	productRepo     ProductWriter
	defaultCurrency string
	logger          *zap.Logger
}

func NewCSVImporter(r io.Reader, repo ProductWriter, defaultCurrency string, logger *zap.Logger) *CSVImporter {
	if logger == nil {
		logger = zap.NewNop()
	}
	csvr := csv.NewReader(r)
	csvr.FieldsPerRecord = -1 // rows may have trailing commas
	return &CSVImporter{
		reader:          csvr,
		productRepo:     repo,
		defaultCurrency: defaultCurrency,
		logger:          logger,
	}
}

// Run parses rows and upserts one product per row. Rows without a key are skipped.
func (i *CSVImporter) Run(ctx context.Context) (int, error) {
	headers, err := i.reader.Read()
	if err != nil {
		return 0, fmt.Errorf("read headers: %w", err)
	}
	index := headerIndex(headers)
	if _, ok := index["key"]; !ok {
		return 0, errors.New("missing key column")
	}

	imported := 0
	for line := 2; ; line++ {
		record, err := i.reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return imported, fmt.Errorf("read row: %w", err)
		}

		p, err := i.parseRow(record, index)
		if err != nil {
			return imported, fmt.Errorf("line %d: %w", line, err)
		}
		if p == nil {
			i.logger.Debug("skipping row without key", zap.Int("line", line))
			continue
		}

		if _, err := i.productRepo.Upsert(ctx, *p); err != nil {
			return imported, fmt.Errorf("upsert product %q: %w", p.Key, err)
		}
		imported++
	}

	return imported, nil
}

func (i *CSVImporter) parseRow(record []string, index map[string]int) (*domain.Product, error) {
	key := pick(record, index, "key")
	if key == "" {
		return nil, nil
	}

	p := &domain.Product{
		Key:         key,
		Title:       pick(record, index, "title"),
		Description: pick(record, index, "description"),
		Currency:    strings.ToUpper(pick(record, index, "price.currencyCode")),
		ImageURL:    pick(record, index, "image.url"),
	}
	if p.Title == "" {
		return nil, fmt.Errorf("product %q: title required", key)
	}
	if p.Currency == "" {
		p.Currency = i.defaultCurrency
	}

	cents, err := strconv.ParseInt(pick(record, index, "price.centAmount"), 10, 64)
	if err != nil || cents < 0 {
		return nil, fmt.Errorf("product %q: invalid price.centAmount", key)
	}
	p.PriceCents = cents

	if raw := pick(record, index, "discountPercent"); raw != "" {
		pct, err := strconv.Atoi(raw)
		if err != nil || pct < 0 || pct > 100 {
			return nil, fmt.Errorf("product %q: discountPercent must be 0-100", key)
		}
		p.DiscountPercent = &pct
	}
	if color := pick(record, index, "colorVariant"); color != "" {
		p.ColorVariant = &color
	}
	return p, nil
}

func headerIndex(headers []string) map[string]int {
	idx := make(map[string]int, len(headers))
	for i, h := range headers {
		idx[strings.TrimSpace(h)] = i
	}
	return idx
}

func pick(record []string, index map[string]int, key string) string {
	pos, ok := index[key]
	if !ok || pos >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[pos])
}
