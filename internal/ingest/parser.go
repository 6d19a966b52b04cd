package ingest

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/daviidwuu/invoiceAI/internal/core/domain"
	"github.com/daviidwuu/invoiceAI/internal/logger"
)

// Parser turns record files into validated domain records.
type Parser struct {
	vendors *VendorRegistry // nil disables vendor checking
	strict  bool
}

// NewParser creates a parser. vendors may be nil; strict controls
// whether an unknown vendor code fails the record or only warns.
func NewParser(vendors *VendorRegistry, strict bool) *Parser {
	return &Parser{vendors: vendors, strict: strict}
}

// ParseFile reads and parses one record file, dispatching on the file
// extension. Returns domain.ErrUnsupportedFormat for extensions it
// does not recognise.
func (p *Parser) ParseFile(path string) ([]domain.Record, error) {
	return p.ParseFileAs(path, strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), "."))
}

// ParseFileAs parses path as the named format ("tsv", "jsonl" or
// "xlsx") regardless of its extension.
func (p *Parser) ParseFileAs(path, format string) ([]domain.Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	var records []domain.Record
	switch format {
	case "tsv":
		records, err = parseTSV(data)
	case "jsonl":
		records, err = parseJSONL(data)
	case "xlsx":
		records, err = parseXLSX(data)
	default:
		return nil, fmt.Errorf("%w: %q", domain.ErrUnsupportedFormat, format)
	}
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", filepath.Base(path), err)
	}

	return p.check(records)
}

// check validates each record and applies the vendor policy.
func (p *Parser) check(records []domain.Record) ([]domain.Record, error) {
	out := make([]domain.Record, 0, len(records))
	for i, rec := range records {
		if err := rec.Validate(); err != nil {
			return nil, fmt.Errorf("record %d: %w", i+1, err)
		}
		if err := p.checkVendor(rec); err != nil {
			return nil, fmt.Errorf("record %d (%s): %w", i+1, rec.UID, err)
		}
		out = append(out, rec)
	}
	return out, nil
}

func (p *Parser) checkVendor(rec domain.Record) error {
	if p.vendors == nil || rec.VendorCode == "" || p.vendors.Known(rec.VendorCode) {
		return nil
	}

	hint := ""
	if suggestion, ok := p.vendors.Suggest(rec.VendorCode); ok {
		hint = fmt.Sprintf(" (did you mean %q?)", suggestion)
	}

	if p.strict {
		return fmt.Errorf("%w: %q%s", domain.ErrUnknownVendor, rec.VendorCode, hint)
	}
	logger.Warn("Unknown vendor code %q for %s%s", rec.VendorCode, rec.UID, hint)
	return nil
}
