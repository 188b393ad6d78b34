package browser

import "context"

// Browser opens independent sessions. Each crawl run owns exactly one.
type Browser interface {
	Open(ctx context.Context) (Session, error)
}

// Session is a single browser page. It is not safe for concurrent use:
// navigation from two goroutines on the same page would race.
type Session interface {
	Navigate(ctx context.Context, url string) error
	// WaitFor blocks until selector matches a ready element.
	WaitFor(ctx context.Context, selector string) error
	// HTML returns document.body.innerHTML, or the whole document when
	// fullDocument is set.
	HTML(ctx context.Context, fullDocument bool) (string, error)
	Close() error
}
