package ingest

import (
	"bufio"
	"bytes"
	"fmt"
	"strings"

	"github.com/daviidwuu/invoiceAI/internal/core/domain"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// parseTSV parses tab-separated records. The first line is a header
// naming the columns; column order is free, unknown columns are
// ignored, and a uid column is required.
func parseTSV(data []byte) ([]domain.Record, error) {
	scanner := bufio.NewScanner(bytes.NewReader(bytes.TrimPrefix(data, utf8BOM)))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	if !scanner.Scan() {
		return nil, fmt.Errorf("%w: empty file", domain.ErrInvalidInput)
	}
	columns, err := headerColumns(strings.Split(scanner.Text(), "\t"))
	if err != nil {
		return nil, err
	}

	var records []domain.Record
	line := 1
	for scanner.Scan() {
		line++
		text := scanner.Text()
		if strings.TrimSpace(text) == "" {
			continue
		}
		cells := strings.Split(text, "\t")
		rec, err := recordFromCells(columns, cells)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		records = append(records, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scanning input: %w", err)
	}
	return records, nil
}

// headerColumns maps column name to cell position.
func headerColumns(header []string) (map[string]int, error) {
	columns := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.ToLower(strings.TrimSpace(name))
		if name == "" {
			continue
		}
		if prev, dup := columns[name]; dup {
			return nil, fmt.Errorf("%w: column %q appears at positions %d and %d",
				domain.ErrInvalidInput, name, prev+1, i+1)
		}
		columns[name] = i
	}
	if _, ok := columns["uid"]; !ok {
		return nil, fmt.Errorf("%w: header is missing the uid column", domain.ErrInvalidInput)
	}
	return columns, nil
}

func recordFromCells(columns map[string]int, cells []string) (domain.Record, error) {
	cell := func(name string) string {
		i, ok := columns[name]
		if !ok || i >= len(cells) {
			return ""
		}
		return strings.TrimSpace(cells[i])
	}
	rec := domain.Record{
		UID:           cell("uid"),
		InvoiceDate:   cell("invoice_date"),
		InvoiceNumber: cell("invoice_number"),
		Address:       cell("address"),
		Description:   cell("description"),
		Amount:        cell("amount"),
		VendorCode:    cell("vendor_code"),
	}
	if rec.UID == "" {
		return domain.Record{}, domain.ErrMissingUID
	}
	return rec, nil
}
