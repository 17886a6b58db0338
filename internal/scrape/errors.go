package scrape

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"

	"mentora/backend/internal/extract"
	"mentora/backend/internal/fetch"
)

// Stable, user-facing failure categories. Producers surface these messages
// directly, so an admin can tell a blocked source from an empty page from
// an exhausted retry budget.
const (
	MsgInvalidProtocol     = "Invalid protocol: only http and https URLs are supported"
	MsgTimeout             = "Request timed out"
	MsgCanceled            = "Request canceled"
	MsgNetworkError        = "Network error: could not reach the host"
	MsgNotAPDF             = "URL does not point to a valid PDF document"
	MsgInvalidPDFHeader    = "Downloaded file is not a valid PDF (missing %PDF- header)"
	MsgInsufficientContent = "Insufficient content: the page may require JavaScript or block automated access"
)

// classify maps an underlying fetch/extract error onto the closed failure
// taxonomy. Unrecognized errors pass their message through.
func classify(err error) string {
	switch {
	case errors.Is(err, fetch.ErrInvalidProtocol):
		return MsgInvalidProtocol
	case errors.Is(err, context.DeadlineExceeded):
		return MsgTimeout
	case errors.Is(err, context.Canceled):
		return MsgCanceled
	case errors.Is(err, fetch.ErrNotAPDF):
		return MsgNotAPDF
	case errors.Is(err, fetch.ErrInvalidPDFHeader):
		return MsgInvalidPDFHeader
	case errors.Is(err, extract.ErrInsufficientContent):
		return MsgInsufficientContent
	}

	var statusErr *fetch.StatusError
	if errors.As(err, &statusErr) {
		switch statusErr.Code {
		case 401, 403:
			return fmt.Sprintf("Access denied (HTTP %d)", statusErr.Code)
		case 404:
			return "Page not found (HTTP 404)"
		default:
			return fmt.Sprintf("Unexpected HTTP status %d", statusErr.Code)
		}
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return MsgTimeout
		}
		return MsgNetworkError
	}

	// Browser navigation errors arrive as flat chromium messages.
	msg := err.Error()
	switch {
	case strings.Contains(msg, "deadline exceeded"), strings.Contains(msg, "net::ERR_TIMED_OUT"):
		return MsgTimeout
	case strings.Contains(msg, "no such host"),
		strings.Contains(msg, "connection refused"),
		strings.Contains(msg, "net::ERR_NAME_NOT_RESOLVED"),
		strings.Contains(msg, "net::ERR_CONNECTION"):
		return MsgNetworkError
	}

	return "Unknown error: " + msg
}
