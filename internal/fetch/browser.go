package fetch

import (
	"context"
	"sync"

	"github.com/chromedp/chromedp"
)

// UserAgent is sent on every fetch, browser or direct. Some article hosts
// serve empty shells to obvious bots.
const UserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"

// Browser owns the single shared headless Chrome process. The process is
// started lazily on first use and reused across fetches; callers open
// short-lived tabs via tab() and must cancel them on every exit path.
type Browser struct {
	mu            sync.Mutex
	allocCancel   context.CancelFunc
	browserCtx    context.Context
	browserCancel context.CancelFunc
}

func NewBrowser() *Browser {
	return &Browser{}
}

// tab returns a fresh tab context parented to the shared browser, starting
// the browser process if it is not running yet.
func (b *Browser) tab() (context.Context, context.CancelFunc, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.browserCtx == nil {
		opts := append(chromedp.DefaultExecAllocatorOptions[:],
			chromedp.UserAgent(UserAgent),
			chromedp.WindowSize(1280, 800),
		)
		allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), opts...)
		browserCtx, browserCancel := chromedp.NewContext(allocCtx)

		// Start the process eagerly so a broken Chrome install surfaces
		// here instead of on the first navigation.
		if err := chromedp.Run(browserCtx); err != nil {
			browserCancel()
			allocCancel()
			return nil, nil, err
		}

		b.allocCancel = allocCancel
		b.browserCtx = browserCtx
		b.browserCancel = browserCancel
	}

	tabCtx, tabCancel := chromedp.NewContext(b.browserCtx)
	return tabCtx, tabCancel, nil
}

// Close tears down the shared browser process. Safe to call when the
// browser was never started.
func (b *Browser) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.browserCancel != nil {
		b.browserCancel()
		b.allocCancel()
		b.browserCtx = nil
		b.browserCancel = nil
		b.allocCancel = nil
	}
}
