package extract

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/ledongthuc/pdf"
	pdfapi "github.com/pdfcpu/pdfcpu/pkg/api"
	"golang.org/x/sync/errgroup"
)

type PDFResult struct {
	Content  string
	Title    string
	NumPages int
}

// maxParallelPages bounds the per-page text extraction fan-out.
const maxParallelPages = 8

// PDF extracts plain text from a PDF byte stream. The bytes are
// materialized to a temporary file because both the validator and the text
// engine operate on files; the file is removed on every exit path, and a
// failed removal is logged rather than propagated so it cannot mask the
// extraction outcome.
func PDF(data []byte) (*PDFResult, error) {
	tmp, err := os.CreateTemp("", "mentora-*.pdf")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	path := tmp.Name()
	defer func() {
		if err := os.Remove(path); err != nil {
			slog.Warn("failed to remove temp pdf", "path", path, "error", err)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return nil, fmt.Errorf("close temp file: %w", err)
	}

	// Structural sanity check before handing the file to the text engine.
	if err := pdfapi.ValidateFile(path, nil); err != nil {
		return nil, fmt.Errorf("invalid pdf: %w", err)
	}

	f, reader, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}
	defer f.Close()

	numPages := reader.NumPage()
	pageTexts := make([]string, numPages)

	// Parallel per-page extraction; the indexed slice keeps page order
	// intact regardless of completion order.
	g := new(errgroup.Group)
	g.SetLimit(maxParallelPages)
	for i := 1; i <= numPages; i++ {
		g.Go(func() error {
			page := reader.Page(i)
			if page.V.IsNull() {
				return nil
			}
			text, err := page.GetPlainText(nil)
			if err != nil {
				return fmt.Errorf("page %d: %w", i, err)
			}
			pageTexts[i-1] = text
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	content := JoinPages(pageTexts)
	if len(content) < MinContentLength {
		return nil, ErrInsufficientContent
	}

	return &PDFResult{
		Content:  content,
		Title:    pdfTitle(reader),
		NumPages: numPages,
	}, nil
}

// JoinPages concatenates per-page text in page order with a blank-line
// separator, then normalizes whitespace.
func JoinPages(pages []string) string {
	return CollapseWhitespace(strings.Join(pages, "\n\n"))
}

// pdfTitle reads the document Info title. Malformed Info dictionaries can
// panic inside the decoder, so this is best-effort.
func pdfTitle(r *pdf.Reader) (title string) {
	defer func() {
		if recover() != nil {
			title = ""
		}
	}()

	info := r.Trailer().Key("Info")
	if info.IsNull() {
		return ""
	}
	return strings.TrimSpace(info.Key("Title").Text())
}
