package scrape

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"time"

	"mentora/backend/internal/extract"
	"mentora/backend/internal/fetch"
)

// Result is the outcome of one fetch+extract attempt. A failed Result
// carries a message from the closed taxonomy in errors.go.
type Result struct {
	Success     bool     `json:"success"`
	Content     string   `json:"content,omitempty"`
	Title       string   `json:"title,omitempty"`
	Authors     []string `json:"authors,omitempty"`
	ContentType string   `json:"content_type,omitempty"` // "html" or "pdf"
	Error       string   `json:"error,omitempty"`
}

type Options struct {
	// WaitSelector is an optional CSS selector to wait for after
	// navigation, for pages that render the article body late.
	WaitSelector string
}

// PageFetcher is the browser strategy of the fetch layer. Satisfied by
// *fetch.Browser.
type PageFetcher interface {
	FetchPage(ctx context.Context, url, waitSelector string, timeout, selectorTimeout time.Duration) (*fetch.Page, error)
}

type Scraper struct {
	pages           PageFetcher
	client          *http.Client
	navTimeout      time.Duration
	selectorTimeout time.Duration
	batchDelay      time.Duration
}

func NewScraper(pages PageFetcher, client *http.Client, navTimeout, selectorTimeout time.Duration) *Scraper {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &Scraper{
		pages:           pages,
		client:          client,
		navTimeout:      navTimeout,
		selectorTimeout: selectorTimeout,
		batchDelay:      time.Second,
	}
}

// Scrape resolves a URL to clean article text. The content type is decided
// once, up front, from the URL shape: PDF targets go down the direct
// download path, everything else through the headless browser. Content
// problems come back as a failed Result, never as an error.
func (s *Scraper) Scrape(ctx context.Context, rawURL string, opts *Options) Result {
	if _, err := fetch.ValidateURL(rawURL); err != nil {
		return failure(err)
	}

	if fetch.IsPDFURL(rawURL) {
		return s.scrapePDF(ctx, rawURL)
	}
	return s.scrapeHTML(ctx, rawURL, opts)
}

func (s *Scraper) scrapePDF(ctx context.Context, rawURL string) Result {
	data, err := fetch.FetchPDF(ctx, s.client, rawURL)
	if err != nil {
		return failure(err)
	}

	res, err := extract.PDF(data)
	if err != nil {
		return failure(err)
	}
	if len(res.Content) < extract.MinContentLength {
		return failure(extract.ErrInsufficientContent)
	}

	return Result{Success: true, Content: res.Content, Title: res.Title, ContentType: "pdf"}
}

func (s *Scraper) scrapeHTML(ctx context.Context, rawURL string, opts *Options) Result {
	waitSelector := ""
	if opts != nil {
		waitSelector = opts.WaitSelector
	}

	page, err := s.pages.FetchPage(ctx, rawURL, waitSelector, s.navTimeout, s.selectorTimeout)
	if err != nil {
		return failure(err)
	}

	res, err := extract.HTML(page.HTML, rawURL)
	if err != nil {
		return failure(err)
	}
	if len(res.Content) < extract.MinContentLength {
		return failure(extract.ErrInsufficientContent)
	}

	return Result{
		Success:     true,
		Content:     res.Content,
		Title:       res.Title,
		Authors:     page.Authors,
		ContentType: "html",
	}
}

func failure(err error) Result {
	return Result{Success: false, Error: classify(err)}
}

// ScrapeBatch scrapes urls sequentially with a fixed delay between
// requests so third-party hosts are not hammered. Each result stands
// alone; one failure does not abort the rest.
func (s *Scraper) ScrapeBatch(ctx context.Context, urls []string, opts *Options) []Result {
	results := make([]Result, 0, len(urls))
	for i, u := range urls {
		if i > 0 {
			select {
			case <-time.After(s.batchDelay):
			case <-ctx.Done():
				results = append(results, failure(ctx.Err()))
				continue
			}
		}

		res := s.Scrape(ctx, u, opts)
		if !res.Success {
			slog.WarnContext(ctx, "batch scrape item failed", "url", u, "error", res.Error)
		}
		results = append(results, res)
	}
	return results
}

// TestURL checks that a URL answers with an HTTP success status without
// extracting content. Producers use it as a pre-flight probe before
// enqueueing a scrape job.
func (s *Scraper) TestURL(ctx context.Context, rawURL string) error {
	if _, err := fetch.ValidateURL(rawURL); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", fetch.UserAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &fetch.StatusError{Code: resp.StatusCode}
	}
	return nil
}
