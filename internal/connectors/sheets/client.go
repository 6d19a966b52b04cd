// Package sheets implements the remote store client against the Google
// Sheets API. The worksheet is dumb storage: no transactions and no
// unique index. The client therefore verifies every append against the
// uid column at the point of the write, so a duplicate can never
// survive even when the caller's cache was stale.
package sheets

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	drivev3 "google.golang.org/api/drive/v3"
	sheetsv4 "google.golang.org/api/sheets/v4"

	"github.com/daviidwuu/invoiceAI/internal/core/domain"
	"github.com/daviidwuu/invoiceAI/internal/core/ports/driven"
	"github.com/daviidwuu/invoiceAI/internal/logger"
)

// Ensure Client implements the interface.
var _ driven.RowStore = (*Client)(nil)

// Defaults matching the scaffolded configuration.
const (
	DefaultSpreadsheetName = "InvoiceAI Records"
	DefaultWorksheetName   = "Records"
)

// dataStartRow is the first data row; row 1 holds the header.
const dataStartRow = 2

// Config selects the spreadsheet the client writes to. When ID is
// empty the spreadsheet is resolved by name through Drive, and created
// (with the worksheet and header row) when absent.
type Config struct {
	SpreadsheetID   string
	SpreadsheetName string
	WorksheetName   string

	// ReadLimit and WriteLimit override the default quota shaping
	// when non-nil.
	ReadLimit  *RateLimitConfig
	WriteLimit *RateLimitConfig
}

func (c Config) withDefaults() Config {
	if c.SpreadsheetName == "" {
		c.SpreadsheetName = DefaultSpreadsheetName
	}
	if c.WorksheetName == "" {
		c.WorksheetName = DefaultWorksheetName
	}
	return c
}

// Client is the Sheets-backed row store.
type Client struct {
	sheets *sheetsv4.Service
	drive  *drivev3.Service
	cfg    Config

	readLimit  *RateLimiter
	writeLimit *RateLimiter
	driveLimit *RateLimiter

	// Resolution state, settled once per process.
	mu            sync.Mutex
	spreadsheetID string
	sheetID       int64
}

// NewClient creates a row store client authenticating through provider.
// No network traffic happens until the first operation.
func NewClient(ctx context.Context, provider driven.CredentialsProvider, cfg Config) (*Client, error) {
	ts := NewTokenSource(ctx, provider)

	sheetsSvc, err := NewSheetsService(ctx, ts)
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	driveSvc, err := NewDriveService(ctx, ts)
	if err != nil {
		return nil, fmt.Errorf("create drive service: %w", err)
	}

	c := &Client{
		sheets:     sheetsSvc,
		drive:      driveSvc,
		cfg:        cfg.withDefaults(),
		readLimit:  NewRateLimiter(ServiceRead),
		writeLimit: NewRateLimiter(ServiceWrite),
		driveLimit: NewRateLimiter(ServiceDrive),
	}
	if cfg.ReadLimit != nil {
		c.readLimit = NewRateLimiterWithConfig(*cfg.ReadLimit)
	}
	if cfg.WriteLimit != nil {
		c.writeLimit = NewRateLimiterWithConfig(*cfg.WriteLimit)
	}
	return c, nil
}

// ReadAll returns every data row in sheet order.
func (c *Client) ReadAll(ctx context.Context) ([]domain.Row, error) {
	const op = "sheets.read_all"

	id, err := c.resolve(ctx)
	if err != nil {
		return nil, err
	}

	vr, err := c.getValues(ctx, id, c.dataRange())
	if err != nil {
		return nil, classify(op, err)
	}

	rows := make([]domain.Row, 0, len(vr.Values))
	for i, cells := range vr.Values {
		row := rowFromCells(int64(dataStartRow+i), cells)
		if row.UID == "" {
			// Blank or half-deleted line; not addressable by uid.
			continue
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// Append writes the record as a new row, verifying uid uniqueness at
// the point of the write. The pre-check catches known duplicates
// cheaply; the post-append re-read catches the race where another
// writer appended the same uid between check and write, in which case
// the later row is deleted and the earlier one reported.
func (c *Client) Append(ctx context.Context, rec domain.Record) (domain.Row, error) {
	const op = "sheets.append"

	id, err := c.resolve(ctx)
	if err != nil {
		return domain.Row{}, err
	}

	if existing, found, err := c.findUID(ctx, id, rec.UID); err != nil {
		return domain.Row{}, err
	} else if found {
		return domain.Row{}, &domain.DuplicateRowError{Row: existing}
	}

	if err := c.writeLimit.Wait(ctx); err != nil {
		return domain.Row{}, err
	}
	vr := &sheetsv4.ValueRange{Values: [][]any{cellsFromRecord(rec)}}
	resp, err := c.sheets.Spreadsheets.Values.Append(id, c.dataRange(), vr).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).Do()
	if err != nil {
		c.noteRateLimit(c.writeLimit, err)
		return domain.Row{}, classify(op, err)
	}

	rowIndex, err := parseRowIndex(resp.Updates.UpdatedRange)
	if err != nil {
		return domain.Row{}, domain.Permanent(op, err)
	}

	survivor, err := c.verifyAppend(ctx, id, rec.UID, rowIndex)
	if err != nil {
		return domain.Row{}, err
	}
	if survivor != nil {
		return domain.Row{}, &domain.DuplicateRowError{Row: *survivor}
	}

	return domain.Row{
		Index:    rowIndex,
		UID:      rec.UID,
		Values:   rec.Values(),
		SyncedAt: time.Now(),
	}, nil
}

// Update rewrites the row at rowIndex in place. The uid cell is
// checked first: an index that points at a row now holding a different
// uid (or past the end of the sheet) means the remote side changed
// underneath us, reported as domain.ErrNotFound for the caller to
// re-resolve.
func (c *Client) Update(ctx context.Context, rowIndex int64, rec domain.Record) (domain.Row, error) {
	const op = "sheets.update"

	if rowIndex < dataStartRow {
		return domain.Row{}, domain.Permanent(op, fmt.Errorf("row index %d precedes data rows", rowIndex))
	}

	id, err := c.resolve(ctx)
	if err != nil {
		return domain.Row{}, err
	}

	uidAt, err := c.uidAt(ctx, id, rowIndex)
	if err != nil {
		return domain.Row{}, err
	}
	if uidAt != rec.UID {
		return domain.Row{}, domain.Permanent(op,
			fmt.Errorf("%w: row %d holds uid %q, want %q", domain.ErrNotFound, rowIndex, uidAt, rec.UID))
	}

	if err := c.writeLimit.Wait(ctx); err != nil {
		return domain.Row{}, err
	}
	vr := &sheetsv4.ValueRange{Values: [][]any{cellsFromRecord(rec)}}
	_, err = c.sheets.Spreadsheets.Values.Update(id, c.rowRange(rowIndex), vr).
		ValueInputOption("RAW").
		Context(ctx).Do()
	if err != nil {
		c.noteRateLimit(c.writeLimit, err)
		return domain.Row{}, classify(op, err)
	}

	return domain.Row{
		Index:    rowIndex,
		UID:      rec.UID,
		Values:   rec.Values(),
		SyncedAt: time.Now(),
	}, nil
}

// RowCount returns the number of data rows currently remote, counting
// only rows with a uid cell.
func (c *Client) RowCount(ctx context.Context) (int64, error) {
	id, err := c.resolve(ctx)
	if err != nil {
		return 0, err
	}
	uids, err := c.readUIDColumn(ctx, id)
	if err != nil {
		return 0, err
	}
	var n int64
	for _, uid := range uids {
		if uid != "" {
			n++
		}
	}
	return n, nil
}

// BatchRead returns the raw cell values of an A1 range on the
// worksheet, for diagnostics and exports beyond the canonical columns.
func (c *Client) BatchRead(ctx context.Context, a1Range string) ([][]string, error) {
	const op = "sheets.batch_read"

	id, err := c.resolve(ctx)
	if err != nil {
		return nil, err
	}
	vr, err := c.getValues(ctx, id, fmt.Sprintf("%s!%s", c.cfg.WorksheetName, a1Range))
	if err != nil {
		return nil, classify(op, err)
	}
	out := make([][]string, len(vr.Values))
	for i, cells := range vr.Values {
		line := make([]string, len(cells))
		for j, cell := range cells {
			line[j] = cellString(cell)
		}
		out[i] = line
	}
	return out, nil
}

// resolve settles the spreadsheet and worksheet, creating either when
// absent, and returns the spreadsheet ID. Idempotent and cached.
func (c *Client) resolve(ctx context.Context) (string, error) {
	const op = "sheets.resolve"

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.spreadsheetID != "" {
		return c.spreadsheetID, nil
	}

	id := c.cfg.SpreadsheetID
	if id == "" {
		found, err := c.findSpreadsheet(ctx)
		if err != nil {
			return "", err
		}
		id = found
	}
	if id == "" {
		created, err := c.createSpreadsheet(ctx)
		if err != nil {
			return "", err
		}
		// Creation includes the worksheet and header; nothing left to
		// settle.
		c.spreadsheetID = created
		return created, nil
	}

	if err := c.readLimit.Wait(ctx); err != nil {
		return "", err
	}
	ss, err := c.sheets.Spreadsheets.Get(id).Context(ctx).Do()
	if err != nil {
		c.noteRateLimit(c.readLimit, err)
		return "", classify(op, err)
	}

	sheetID := int64(-1)
	for _, sh := range ss.Sheets {
		if sh.Properties != nil && sh.Properties.Title == c.cfg.WorksheetName {
			sheetID = sh.Properties.SheetId
			break
		}
	}
	if sheetID < 0 {
		sheetID, err = c.addWorksheet(ctx, id)
		if err != nil {
			return "", err
		}
	}

	if err := c.ensureHeader(ctx, id); err != nil {
		return "", err
	}

	c.spreadsheetID = id
	c.sheetID = sheetID
	return id, nil
}

// findSpreadsheet looks the spreadsheet up by name through Drive.
// Returns empty when no match exists.
func (c *Client) findSpreadsheet(ctx context.Context) (string, error) {
	const op = "drive.find_spreadsheet"

	if err := c.driveLimit.Wait(ctx); err != nil {
		return "", err
	}
	query := fmt.Sprintf(
		"name = '%s' and mimeType = 'application/vnd.google-apps.spreadsheet' and trashed = false",
		strings.ReplaceAll(c.cfg.SpreadsheetName, "'", "\\'"))
	list, err := c.drive.Files.List().
		Q(query).
		Fields("files(id, name)").
		PageSize(1).
		Context(ctx).Do()
	if err != nil {
		c.noteRateLimit(c.driveLimit, err)
		return "", classify(op, err)
	}
	if len(list.Files) == 0 {
		return "", nil
	}
	return list.Files[0].Id, nil
}

// createSpreadsheet creates the spreadsheet with the worksheet and
// header row in place.
func (c *Client) createSpreadsheet(ctx context.Context) (string, error) {
	const op = "sheets.create_spreadsheet"

	logger.Info("Creating spreadsheet %q", c.cfg.SpreadsheetName)

	if err := c.writeLimit.Wait(ctx); err != nil {
		return "", err
	}
	ss, err := c.sheets.Spreadsheets.Create(&sheetsv4.Spreadsheet{
		Properties: &sheetsv4.SpreadsheetProperties{Title: c.cfg.SpreadsheetName},
		Sheets: []*sheetsv4.Sheet{{
			Properties: &sheetsv4.SheetProperties{
				Title: c.cfg.WorksheetName,
				GridProperties: &sheetsv4.GridProperties{
					RowCount:    1000,
					ColumnCount: 20,
				},
			},
		}},
	}).Context(ctx).Do()
	if err != nil {
		c.noteRateLimit(c.writeLimit, err)
		return "", classify(op, err)
	}

	if len(ss.Sheets) > 0 && ss.Sheets[0].Properties != nil {
		c.sheetID = ss.Sheets[0].Properties.SheetId
	}
	if err := c.writeHeader(ctx, ss.SpreadsheetId); err != nil {
		return "", err
	}
	return ss.SpreadsheetId, nil
}

// addWorksheet adds the configured worksheet to an existing
// spreadsheet and returns its sheet ID.
func (c *Client) addWorksheet(ctx context.Context, id string) (int64, error) {
	const op = "sheets.add_worksheet"

	logger.Info("Creating worksheet %q", c.cfg.WorksheetName)

	if err := c.writeLimit.Wait(ctx); err != nil {
		return 0, err
	}
	resp, err := c.sheets.Spreadsheets.BatchUpdate(id, &sheetsv4.BatchUpdateSpreadsheetRequest{
		Requests: []*sheetsv4.Request{{
			AddSheet: &sheetsv4.AddSheetRequest{
				Properties: &sheetsv4.SheetProperties{Title: c.cfg.WorksheetName},
			},
		}},
	}).Context(ctx).Do()
	if err != nil {
		c.noteRateLimit(c.writeLimit, err)
		return 0, classify(op, err)
	}
	if len(resp.Replies) == 0 || resp.Replies[0].AddSheet == nil || resp.Replies[0].AddSheet.Properties == nil {
		return 0, domain.Permanent(op, fmt.Errorf("add sheet reply missing properties"))
	}
	if err := c.writeHeader(ctx, id); err != nil {
		return 0, err
	}
	return resp.Replies[0].AddSheet.Properties.SheetId, nil
}

// ensureHeader writes the canonical header row when row 1 is empty or
// diverges from the schema.
func (c *Client) ensureHeader(ctx context.Context, id string) error {
	const op = "sheets.read_header"

	vr, err := c.getValues(ctx, id, c.headerRange())
	if err != nil {
		return classify(op, err)
	}
	if len(vr.Values) > 0 {
		have := make([]string, len(vr.Values[0]))
		for i, cell := range vr.Values[0] {
			have[i] = cellString(cell)
		}
		if headerMatches(have) {
			return nil
		}
		logger.Warn("Worksheet header diverges from schema; rewriting")
	}
	return c.writeHeader(ctx, id)
}

func (c *Client) writeHeader(ctx context.Context, id string) error {
	const op = "sheets.write_header"

	if err := c.writeLimit.Wait(ctx); err != nil {
		return err
	}
	cells := make([]any, 0, domain.NumColumns)
	for _, name := range domain.Columns() {
		cells = append(cells, name)
	}
	vr := &sheetsv4.ValueRange{Values: [][]any{cells}}
	_, err := c.sheets.Spreadsheets.Values.Update(id, c.headerRange(), vr).
		ValueInputOption("RAW").
		Context(ctx).Do()
	if err != nil {
		c.noteRateLimit(c.writeLimit, err)
		return classify(op, err)
	}
	return nil
}

// findUID scans the uid column for uid and fetches its full row when
// present.
func (c *Client) findUID(ctx context.Context, id, uid string) (domain.Row, bool, error) {
	uids, err := c.readUIDColumn(ctx, id)
	if err != nil {
		return domain.Row{}, false, err
	}
	for i, got := range uids {
		if got == uid {
			row, err := c.readRow(ctx, id, int64(dataStartRow+i))
			if err != nil {
				return domain.Row{}, false, err
			}
			return row, true, nil
		}
	}
	return domain.Row{}, false, nil
}

// verifyAppend re-reads the uid column after an append. When the uid
// owns an earlier row (a concurrent writer won the race), the appended
// row is deleted and the earlier row returned as the survivor.
func (c *Client) verifyAppend(ctx context.Context, id, uid string, appended int64) (*domain.Row, error) {
	uids, err := c.readUIDColumn(ctx, id)
	if err != nil {
		return nil, err
	}
	for i, got := range uids {
		rowIndex := int64(dataStartRow + i)
		if got == uid && rowIndex < appended {
			logger.Warn("Duplicate uid %q detected at row %d after append to row %d; undoing append",
				uid, rowIndex, appended)
			if err := c.deleteRow(ctx, id, appended); err != nil {
				return nil, err
			}
			row, err := c.readRow(ctx, id, rowIndex)
			if err != nil {
				return nil, err
			}
			return &row, nil
		}
	}
	return nil, nil
}

// deleteRow removes a single row by index.
func (c *Client) deleteRow(ctx context.Context, id string, rowIndex int64) error {
	const op = "sheets.delete_row"

	if err := c.writeLimit.Wait(ctx); err != nil {
		return err
	}
	_, err := c.sheets.Spreadsheets.BatchUpdate(id, &sheetsv4.BatchUpdateSpreadsheetRequest{
		Requests: []*sheetsv4.Request{{
			DeleteDimension: &sheetsv4.DeleteDimensionRequest{
				Range: &sheetsv4.DimensionRange{
					SheetId:    c.sheetID,
					Dimension:  "ROWS",
					StartIndex: rowIndex - 1, // DimensionRange is 0-based
					EndIndex:   rowIndex,
				},
			},
		}},
	}).Context(ctx).Do()
	if err != nil {
		c.noteRateLimit(c.writeLimit, err)
		return classify(op, err)
	}
	return nil
}

func (c *Client) readUIDColumn(ctx context.Context, id string) ([]string, error) {
	const op = "sheets.read_uid_column"

	vr, err := c.getValues(ctx, id, fmt.Sprintf("%s!A%d:A", c.cfg.WorksheetName, dataStartRow))
	if err != nil {
		return nil, classify(op, err)
	}
	uids := make([]string, len(vr.Values))
	for i, cells := range vr.Values {
		if len(cells) > 0 {
			uids[i] = cellString(cells[0])
		}
	}
	return uids, nil
}

func (c *Client) readRow(ctx context.Context, id string, rowIndex int64) (domain.Row, error) {
	const op = "sheets.read_row"

	vr, err := c.getValues(ctx, id, c.rowRange(rowIndex))
	if err != nil {
		return domain.Row{}, classify(op, err)
	}
	if len(vr.Values) == 0 {
		return domain.Row{}, domain.Permanent(op, fmt.Errorf("%w: row %d empty", domain.ErrNotFound, rowIndex))
	}
	return rowFromCells(rowIndex, vr.Values[0]), nil
}

func (c *Client) uidAt(ctx context.Context, id string, rowIndex int64) (string, error) {
	const op = "sheets.read_uid"

	vr, err := c.getValues(ctx, id, fmt.Sprintf("%s!A%d", c.cfg.WorksheetName, rowIndex))
	if err != nil {
		return "", classify(op, err)
	}
	if len(vr.Values) == 0 || len(vr.Values[0]) == 0 {
		return "", nil
	}
	return cellString(vr.Values[0][0]), nil
}

// getValues is the shared rate-limited values.get call.
func (c *Client) getValues(ctx context.Context, id, a1Range string) (*sheetsv4.ValueRange, error) {
	if err := c.readLimit.Wait(ctx); err != nil {
		return nil, err
	}
	vr, err := c.sheets.Spreadsheets.Values.Get(id, a1Range).Context(ctx).Do()
	if err != nil {
		c.noteRateLimit(c.readLimit, err)
		return nil, err
	}
	return vr, nil
}

func (c *Client) noteRateLimit(limiter *RateLimiter, err error) {
	if IsRateLimited(err) {
		limiter.RecordRateLimitError(retryAfterSeconds(err))
	}
}

func (c *Client) headerRange() string {
	return fmt.Sprintf("%s!A1:%s1", c.cfg.WorksheetName, columnLetter(domain.NumColumns))
}

func (c *Client) dataRange() string {
	return fmt.Sprintf("%s!A%d:%s", c.cfg.WorksheetName, dataStartRow, columnLetter(domain.NumColumns))
}

func (c *Client) rowRange(rowIndex int64) string {
	col := columnLetter(domain.NumColumns)
	return fmt.Sprintf("%s!A%d:%s%d", c.cfg.WorksheetName, rowIndex, col, rowIndex)
}

// columnLetter converts a 1-based column number to its A1 letter form.
func columnLetter(n int) string {
	letters := ""
	for n > 0 {
		n--
		letters = string(rune('A'+n%26)) + letters
		n /= 26
	}
	return letters
}

// parseRowIndex extracts the 1-based row number from an updated range
// like "Records!A5:G5".
func parseRowIndex(updatedRange string) (int64, error) {
	rng := updatedRange
	if i := strings.LastIndex(rng, "!"); i >= 0 {
		rng = rng[i+1:]
	}
	first := rng
	if i := strings.Index(first, ":"); i >= 0 {
		first = first[:i]
	}
	digits := strings.TrimLeft(first, "ABCDEFGHIJKLMNOPQRSTUVWXYZ$")
	row, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse updated range %q: %w", updatedRange, err)
	}
	return row, nil
}

// headerMatches reports whether the remote header row equals the
// canonical column names.
func headerMatches(have []string) bool {
	want := domain.Columns()
	if len(have) < len(want) {
		return false
	}
	for i, name := range want {
		if have[i] != name {
			return false
		}
	}
	return true
}

// cellsFromRecord serialises a record into one sheet line in canonical
// column order.
func cellsFromRecord(rec domain.Record) []any {
	values := rec.Values()
	cells := make([]any, len(values))
	for i, v := range values {
		cells[i] = v
	}
	return cells
}

// rowFromCells builds a domain.Row from raw API cell values, padding
// short lines to the canonical width so comparisons stay well defined.
func rowFromCells(rowIndex int64, cells []any) domain.Row {
	values := make([]string, domain.NumColumns)
	for i := 0; i < domain.NumColumns && i < len(cells); i++ {
		values[i] = cellString(cells[i])
	}
	return domain.Row{
		Index:  rowIndex,
		UID:    values[0],
		Values: values,
	}
}

// cellString normalises one API cell value to a string.
func cellString(cell any) string {
	switch v := cell.(type) {
	case string:
		return v
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}
