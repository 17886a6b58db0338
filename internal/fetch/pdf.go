package fetch

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
)

var (
	ErrNotAPDF          = errors.New("URL did not serve a PDF document")
	ErrInvalidPDFHeader = errors.New("response body is missing the %PDF- magic header")
)

// StatusError reports a non-success HTTP status from the target host.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected HTTP status %d", e.Code)
}

var pdfMagic = []byte("%PDF-")

// pdfURLRe matches URLs that should be treated as PDF targets: a .pdf path
// suffix, a .pdf? query marker, or known PDF-serving path patterns.
var pdfURLRe = regexp.MustCompile(`(?i)(\.pdf($|[?#])|/pdf/|view/pdf)`)

// IsPDFURL decides, before any network call, whether a URL should go down
// the direct-download path instead of the browser. Pure heuristic on the
// URL shape, not a content-type probe.
func IsPDFURL(raw string) bool {
	return pdfURLRe.MatchString(raw)
}

// A body smaller than this that also lacks a pdf content-type is almost
// certainly an error page, not a document.
const minPlausiblePDFSize = 1024

// FetchPDF downloads rawURL directly, bypassing browser rendering, and
// validates that the payload is plausibly a real PDF: HTTP success,
// content-type/size plausibility, and the %PDF- magic header.
func FetchPDF(ctx context.Context, client *http.Client, rawURL string) ([]byte, error) {
	if _, err := ValidateURL(rawURL); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", UserAgent)
	req.Header.Set("Accept", "application/pdf,*/*")

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &StatusError{Code: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	contentType := strings.ToLower(resp.Header.Get("Content-Type"))
	if !strings.Contains(contentType, "pdf") && len(body) < minPlausiblePDFSize {
		return nil, ErrNotAPDF
	}
	if len(body) < len(pdfMagic) || !bytes.Equal(body[:len(pdfMagic)], pdfMagic) {
		return nil, ErrInvalidPDFHeader
	}

	return body, nil
}
