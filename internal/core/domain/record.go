package domain

import (
	"fmt"
	"strings"
)

// Worksheet column names, in canonical order. The header row of the
// remote worksheet uses exactly these names in exactly this order, and
// every serialised row follows it. Stable ordering is what makes
// value-for-value equality (and therefore Unchanged detection) well
// defined.
const (
	ColumnUID           = "uid"
	ColumnInvoiceDate   = "invoice_date"
	ColumnInvoiceNumber = "invoice_number"
	ColumnAddress       = "address"
	ColumnDescription   = "description"
	ColumnAmount        = "amount"
	ColumnVendorCode    = "vendor_code"
)

// NumColumns is the width of a canonical row.
const NumColumns = 7

// Columns returns the canonical column names as a fresh slice.
func Columns() []string {
	return []string{
		ColumnUID,
		ColumnInvoiceDate,
		ColumnInvoiceNumber,
		ColumnAddress,
		ColumnDescription,
		ColumnAmount,
		ColumnVendorCode,
	}
}

// Record is an invoice record produced by an upstream extraction
// pipeline and handed to the engine for synchronisation. The engine
// never mutates a Record.
type Record struct {
	// UID is the globally unique business key for the invoice
	// (e.g. a vendor+invoice-number composite). Required, immutable
	// once assigned, and derived upstream so that re-processing the
	// same document yields the same UID.
	UID string

	// InvoiceDate is the invoice date as extracted, verbatim.
	InvoiceDate string

	// InvoiceNumber is the vendor's invoice number.
	InvoiceNumber string

	// Address is the billing or vendor address.
	Address string

	// Description summarises the invoiced goods or services.
	Description string

	// Amount is the invoice total, kept as the extracted string.
	Amount string

	// VendorCode is the short code identifying the vendor or project.
	VendorCode string

	// Confidence holds optional per-field confidence scores in [0,1].
	// Informational only; the engine never branches on it.
	Confidence map[string]float64

	// SourceHash fingerprints the originating document, so two syncs
	// referencing the same extraction can be recognised as such.
	SourceHash string
}

// Values returns the record's cell values in canonical column order.
func (r Record) Values() []string {
	return []string{
		r.UID,
		r.InvoiceDate,
		r.InvoiceNumber,
		r.Address,
		r.Description,
		r.Amount,
		r.VendorCode,
	}
}

// TSV returns the record as a single tab-separated line in canonical
// column order, without a trailing newline.
func (r Record) TSV() string {
	return strings.Join(r.Values(), "\t")
}

// Validate reports whether the record is acceptable for synchronisation.
// A record must carry a non-blank UID free of control characters; field
// values are otherwise unconstrained.
func (r Record) Validate() error {
	uid := strings.TrimSpace(r.UID)
	if uid == "" {
		return ErrMissingUID
	}
	if strings.ContainsAny(r.UID, "\t\n\r") {
		return fmt.Errorf("%w: uid contains control characters", ErrInvalidRecord)
	}
	for name, score := range r.Confidence {
		if score < 0 || score > 1 {
			return fmt.Errorf("%w: confidence for %q out of range", ErrInvalidRecord, name)
		}
	}
	return nil
}
