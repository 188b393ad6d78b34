package browser

import (
	"context"
	"errors"
	"time"
)

// Fetcher loads a URL into a session and returns its rendered HTML once the
// ready selector resolves.
type Fetcher struct {
	Session Session
	// WaitTimeout bounds the whole fetch: navigation, the ready wait and the
	// HTML read share it.
	WaitTimeout time.Duration
}

// NewFetcher creates a fetcher bound to one session.
func NewFetcher(session Session, waitTimeout time.Duration) *Fetcher {
	return &Fetcher{Session: session, WaitTimeout: waitTimeout}
}

// Fetch navigates to url, waits for readySelector and returns the body markup,
// or the full document when fullDocument is set. Cancellation of ctx is
// returned as is; running out of WaitTimeout is a NavigationTimeout while
// waiting for the selector and a NavigationError anywhere else.
func (f *Fetcher) Fetch(ctx context.Context, url, readySelector string, fullDocument bool) (string, error) {
	fetchCtx := ctx
	if f.WaitTimeout > 0 {
		var cancel context.CancelFunc
		fetchCtx, cancel = context.WithTimeout(ctx, f.WaitTimeout)
		defer cancel()
	}

	if err := f.Session.Navigate(fetchCtx, url); err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", &NavigationError{URL: url, Err: err}
	}

	if readySelector != "" {
		if err := f.Session.WaitFor(fetchCtx, readySelector); err != nil {
			if ctx.Err() != nil {
				return "", ctx.Err()
			}
			if errors.Is(err, context.DeadlineExceeded) {
				return "", &NavigationTimeout{URL: url, Selector: readySelector, Err: err}
			}
			return "", &NavigationError{URL: url, Err: err}
		}
	}

	html, err := f.Session.HTML(fetchCtx, fullDocument)
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", &NavigationError{URL: url, Err: err}
	}
	return html, nil
}
