// Package ingest parses record files produced by upstream extraction
// into domain records ready for synchronisation. Supported formats are
// TSV (header row, canonical columns), JSON Lines (validated against
// the embedded record schema) and XLSX (first worksheet).
//
// Vendor codes are checked against the known-entities file; in strict
// mode an unknown code rejects the record, otherwise it is logged with
// a closest-match suggestion.
package ingest
