package fetch

import (
	"context"
	"errors"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/chromedp/chromedp"
)

var ErrInvalidProtocol = errors.New("invalid protocol: only http and https are supported")

// Page is the rendered result of a headless browser fetch.
type Page struct {
	HTML    string
	Authors []string
}

// ValidateURL rejects anything that is not plain http/https. This runs
// before any network activity.
func ValidateURL(raw string) (*url.URL, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, ErrInvalidProtocol
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, ErrInvalidProtocol
	}
	return u, nil
}

// FetchPage navigates a fresh tab to pageURL, waits for the document body
// within timeout, optionally waits for waitSelector (bounded by
// selectorTimeout, failure tolerated) and returns the fully rendered HTML
// plus a best-effort author extraction. The tab is always closed before
// returning.
func (b *Browser) FetchPage(ctx context.Context, pageURL, waitSelector string, timeout, selectorTimeout time.Duration) (*Page, error) {
	if _, err := ValidateURL(pageURL); err != nil {
		return nil, err
	}

	tabCtx, tabCancel, err := b.tab()
	if err != nil {
		return nil, err
	}
	// Page handles must never leak, whatever the exit path.
	defer tabCancel()

	navCtx, navCancel := context.WithTimeout(tabCtx, timeout)
	defer navCancel()

	resp, err := chromedp.RunResponse(navCtx, chromedp.Navigate(pageURL))
	if err != nil {
		return nil, err
	}
	if resp != nil && resp.Status >= 400 {
		return nil, &StatusError{Code: int(resp.Status)}
	}

	if err := chromedp.Run(navCtx, chromedp.WaitReady("body", chromedp.ByQuery)); err != nil {
		return nil, err
	}

	if waitSelector != "" {
		selCtx, selCancel := context.WithTimeout(tabCtx, selectorTimeout)
		err := chromedp.Run(selCtx, chromedp.WaitVisible(waitSelector, chromedp.ByQuery))
		selCancel()
		if err != nil {
			// The selector never appearing is not fatal; capture whatever rendered.
			slog.WarnContext(ctx, "wait selector did not appear", "url", pageURL, "selector", waitSelector, "error", err)
		}
	}

	var html string
	capCtx, capCancel := context.WithTimeout(tabCtx, 10*time.Second)
	defer capCancel()
	if err := chromedp.Run(capCtx, chromedp.OuterHTML("html", &html, chromedp.ByQuery)); err != nil {
		return nil, err
	}

	return &Page{HTML: html, Authors: extractAuthors(html)}, nil
}

// extractAuthors pulls author names out of rendered HTML: the author meta
// tag first, then common author class/attribute patterns. Results are
// de-duplicated case-insensitively, preserving discovery order.
func extractAuthors(html string) []string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil
	}

	var authors []string
	seen := make(map[string]bool)
	add := func(name string) {
		name = strings.TrimSpace(name)
		name = strings.TrimSpace(strings.TrimPrefix(strings.TrimPrefix(name, "By "), "by "))
		// Class-based matches can grab whole containers; real names are short.
		if name == "" || len(name) > 120 || seen[strings.ToLower(name)] {
			return
		}
		seen[strings.ToLower(name)] = true
		authors = append(authors, name)
	}

	doc.Find(`meta[name="author"]`).Each(func(_ int, s *goquery.Selection) {
		if content, ok := s.Attr("content"); ok {
			add(content)
		}
	})

	doc.Find(`[rel="author"], [itemprop="author"], .author, .author-name, .byline`).Each(func(_ int, s *goquery.Selection) {
		add(s.Text())
	})

	return authors
}
