package ingest

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/daviidwuu/invoiceAI/internal/core/domain"
)

// parseXLSX parses the first worksheet of an Excel workbook. The first
// row is the header, mapped the same way as TSV input.
func parseXLSX(data []byte) ([]domain.Record, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("opening workbook: %w", err)
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("%w: workbook has no sheets", domain.ErrInvalidInput)
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("reading sheet %q: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: sheet %q is empty", domain.ErrInvalidInput, sheets[0])
	}

	columns, err := headerColumns(rows[0])
	if err != nil {
		return nil, err
	}

	var records []domain.Record
	for i, cells := range rows[1:] {
		if blankRow(cells) {
			continue
		}
		rec, err := recordFromCells(columns, cells)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		records = append(records, rec)
	}
	return records, nil
}

func blankRow(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
