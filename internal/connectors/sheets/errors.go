package sheets

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"google.golang.org/api/googleapi"

	"github.com/daviidwuu/invoiceAI/internal/core/domain"
)

// Sheets API errors.
var (
	// ErrUnauthorized indicates invalid or expired credentials.
	ErrUnauthorized = errors.New("sheets: unauthorised (invalid credentials)")

	// ErrForbidden indicates insufficient permissions on the spreadsheet.
	ErrForbidden = errors.New("sheets: forbidden (insufficient permissions)")

	// ErrNotFound indicates the spreadsheet or worksheet was not found.
	ErrNotFound = errors.New("sheets: resource not found")

	// ErrRateLimited indicates the API rate limit or quota was exceeded.
	ErrRateLimited = errors.New("sheets: rate limit exceeded")

	// ErrBadRequest indicates a malformed request the API rejected.
	ErrBadRequest = errors.New("sheets: bad request")
)

// IsRateLimited returns true if the error indicates rate limiting or an
// exhausted quota.
func IsRateLimited(err error) bool {
	if errors.Is(err, ErrRateLimited) {
		return true
	}
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		return gerr.Code == http.StatusTooManyRequests ||
			(gerr.Code == http.StatusForbidden && hasQuotaReason(gerr))
	}
	return false
}

// IsNotFound returns true if the error indicates a missing resource.
func IsNotFound(err error) bool {
	if errors.Is(err, ErrNotFound) {
		return true
	}
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		return gerr.Code == http.StatusNotFound
	}
	return false
}

// hasQuotaReason reports whether a 403 is really a quota trip rather
// than a permissions problem. The Sheets API signals exhausted per-user
// quotas as 403 with a rate/quota reason string.
func hasQuotaReason(gerr *googleapi.Error) bool {
	for _, e := range gerr.Errors {
		reason := strings.ToLower(e.Reason)
		if strings.Contains(reason, "ratelimit") || strings.Contains(reason, "quota") {
			return true
		}
	}
	return strings.Contains(strings.ToLower(gerr.Message), "quota")
}

// classify wraps err as a domain.SyncError with the failure kind the
// retry controller keys off. Status codes map per the API contract:
// 429, 408, 5xx and quota-flavoured 403s are transient; 400, 401, 403
// and 404 are permanent; transport-level failures are transient.
// Context cancellation passes through unwrapped so callers can see the
// caller gave up rather than the remote failing.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	var gerr *googleapi.Error
	if !errors.As(err, &gerr) {
		// No HTTP status at all: DNS failure, reset connection,
		// timeout. All worth retrying.
		return domain.Transient(op, err)
	}

	switch {
	case gerr.Code == http.StatusTooManyRequests || gerr.Code == http.StatusRequestTimeout:
		return domain.Transient(op, ErrRateLimited)
	case gerr.Code >= http.StatusInternalServerError:
		return domain.Transient(op, err)
	case gerr.Code == http.StatusForbidden && hasQuotaReason(gerr):
		return domain.Transient(op, ErrRateLimited)
	case gerr.Code == http.StatusUnauthorized:
		return domain.Permanent(op, ErrUnauthorized)
	case gerr.Code == http.StatusForbidden:
		return domain.Permanent(op, ErrForbidden)
	case gerr.Code == http.StatusNotFound:
		return domain.Permanent(op, ErrNotFound)
	case gerr.Code == http.StatusBadRequest:
		return domain.Permanent(op, ErrBadRequest)
	default:
		return domain.Permanent(op, err)
	}
}

// retryAfterSeconds extracts a Retry-After hint from a rate limit
// response, or zero when none is present.
func retryAfterSeconds(err error) int {
	var gerr *googleapi.Error
	if !errors.As(err, &gerr) || gerr.Header == nil {
		return 0
	}
	val := gerr.Header.Get("Retry-After")
	if val == "" {
		return 0
	}
	secs := 0
	for _, c := range val {
		if c < '0' || c > '9' {
			return 0
		}
		secs = secs*10 + int(c-'0')
	}
	return secs
}
