package ingest

import (
	"bufio"
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"

	"github.com/daviidwuu/invoiceAI/internal/core/domain"
)

//go:embed record_schema.json
var recordSchemaJSON string

var (
	recordSchemaOnce sync.Once
	recordSchema     *jsonschema.Schema
	recordSchemaErr  error
)

func compiledRecordSchema() (*jsonschema.Schema, error) {
	recordSchemaOnce.Do(func() {
		doc, err := jsonschema.UnmarshalJSON(strings.NewReader(recordSchemaJSON))
		if err != nil {
			recordSchemaErr = fmt.Errorf("decoding record schema: %w", err)
			return
		}
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource("record.schema.json", doc); err != nil {
			recordSchemaErr = fmt.Errorf("registering record schema: %w", err)
			return
		}
		recordSchema, recordSchemaErr = compiler.Compile("record.schema.json")
	})
	return recordSchema, recordSchemaErr
}

// jsonRecord is the wire shape of one JSON Lines record.
type jsonRecord struct {
	UID           string             `json:"uid"`
	InvoiceDate   string             `json:"invoice_date"`
	InvoiceNumber string             `json:"invoice_number"`
	Address       string             `json:"address"`
	Description   string             `json:"description"`
	Amount        string             `json:"amount"`
	VendorCode    string             `json:"vendor_code"`
	Confidence    map[string]float64 `json:"confidence"`
	SourceHash    string             `json:"source_hash"`
}

// parseJSONL parses one record per line, each validated against the
// embedded record schema before decoding.
func parseJSONL(data []byte) ([]domain.Record, error) {
	schema, err := compiledRecordSchema()
	if err != nil {
		return nil, err
	}

	scanner := bufio.NewScanner(bytes.NewReader(bytes.TrimPrefix(data, utf8BOM)))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var records []domain.Record
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}

		value, err := jsonschema.UnmarshalJSON(strings.NewReader(text))
		if err != nil {
			return nil, fmt.Errorf("line %d: %w: %v", line, domain.ErrInvalidInput, err)
		}
		if err := schema.Validate(value); err != nil {
			return nil, fmt.Errorf("line %d: %w: %v", line, domain.ErrInvalidInput, err)
		}

		var jr jsonRecord
		if err := json.Unmarshal([]byte(text), &jr); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		records = append(records, domain.Record{
			UID:           jr.UID,
			InvoiceDate:   jr.InvoiceDate,
			InvoiceNumber: jr.InvoiceNumber,
			Address:       jr.Address,
			Description:   jr.Description,
			Amount:        jr.Amount,
			VendorCode:    jr.VendorCode,
			Confidence:    jr.Confidence,
			SourceHash:    jr.SourceHash,
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scanning input: %w", err)
	}
	return records, nil
}
