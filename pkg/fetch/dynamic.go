package fetch

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/chromedp"

	"github.com/rendimo/rendimo/internal/logger"
)

// Dynamic fetches pages through a headless browser, for renderings where
// the listing only exists after client-side JavaScript runs. The browser
// performs its own waiting so the retry budget's timeout is the only bound
// applied per fetch.
type Dynamic struct {
	policy    RetryPolicy
	userAgent string
	allocCtx  context.Context
	cancel    context.CancelFunc
}

// NewDynamic starts a browser allocator. Callers must Close it.
func NewDynamic(policy RetryPolicy) (*Dynamic, error) {
	policy = policy.normalized()
	identity := DefaultIdentities()[0]

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.UserAgent(identity.UserAgent),
		chromedp.WindowSize(1920, 1080),
	)

	allocCtx, cancel := chromedp.NewExecAllocator(context.Background(), opts...)

	return &Dynamic{
		policy:    policy,
		userAgent: identity.UserAgent,
		allocCtx:  allocCtx,
		cancel:    cancel,
	}, nil
}

// Fetch renders url in a fresh browser context and returns the settled DOM.
// Browser failures are classified as network errors; the headless protocol
// does not reliably expose origin status codes.
func (f *Dynamic) Fetch(ctx context.Context, url string) (*Result, error) {
	logger.Debug("dynamic fetch starting", "url", url)

	browserCtx, cancelBrowser := chromedp.NewContext(f.allocCtx)
	defer cancelBrowser()

	timeoutCtx, cancelTimeout := context.WithTimeout(browserCtx, f.policy.Timeout)
	defer cancelTimeout()

	done := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			cancelBrowser()
		case <-done:
		}
	}()
	defer close(done)

	var html string
	err := chromedp.Run(timeoutCtx,
		chromedp.Navigate(url),
		chromedp.WaitVisible("body"),
		chromedp.OuterHTML("html", &html),
	)
	if err != nil {
		return nil, &Error{Kind: KindNetworkError, Attempts: 1, Err: fmt.Errorf("browser automation failed: %w", err)}
	}

	return &Result{
		HTML:       html,
		StatusCode: 200,
		Attempts:   1,
		FetchedAt:  time.Now(),
	}, nil
}

// Close shuts the browser allocator down.
func (f *Dynamic) Close() error {
	f.cancel()
	return nil
}
