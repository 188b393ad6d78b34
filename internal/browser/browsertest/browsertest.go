// Package browsertest provides an in-memory browser for exercising crawl code
// without launching Chrome.
package browsertest

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/PuerkitoBio/goquery"

	"github.com/williampepple1/catalog-crawler/internal/browser"
)

// ErrNotFound is returned by Navigate for URLs with no registered page.
var ErrNotFound = errors.New("browsertest: page not found")

// Browser serves registered pages. Every Open returns a new session sharing
// the same page table. A page is parsed like a browser would parse it: a ready
// selector the markup does not contain never appears, and without
// fullDocument only the body's inner markup comes back.
type Browser struct {
	mu sync.Mutex

	// Pages maps URL to the document served for it.
	Pages map[string]string
	// Timeouts lists URLs whose ready selector never appears, whatever their
	// markup.
	Timeouts map[string]bool
	// Failures lists URLs whose navigation fails outright.
	Failures map[string]error
	// OpenErr, when set, is returned by Open.
	OpenErr error

	visits   []string
	sessions int
	closed   int
}

// New creates a browser serving pages.
func New(pages map[string]string) *Browser {
	return &Browser{
		Pages:    pages,
		Timeouts: make(map[string]bool),
		Failures: make(map[string]error),
	}
}

// Open implements browser.Browser.
func (b *Browser) Open(ctx context.Context) (browser.Session, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.OpenErr != nil {
		return nil, b.OpenErr
	}
	b.sessions++
	return &session{browser: b}, nil
}

// Visits returns every navigated URL in order.
func (b *Browser) Visits() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]string, len(b.visits))
	copy(out, b.visits)
	return out
}

// Sessions returns how many sessions were opened and closed.
func (b *Browser) Sessions() (opened, closed int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.sessions, b.closed
}

type session struct {
	browser *Browser
	current string
}

func (s *session) Navigate(ctx context.Context, url string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	b := s.browser
	b.mu.Lock()
	defer b.mu.Unlock()

	b.visits = append(b.visits, url)
	if err, ok := b.Failures[url]; ok {
		return err
	}
	if _, ok := b.Pages[url]; !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, url)
	}
	s.current = url
	return nil
}

func (s *session) WaitFor(ctx context.Context, selector string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	b := s.browser
	b.mu.Lock()
	timeout := b.Timeouts[s.current]
	b.mu.Unlock()
	if timeout {
		return context.DeadlineExceeded
	}

	doc, err := s.document()
	if err != nil {
		return err
	}
	if doc.Find(selector).Length() == 0 {
		return context.DeadlineExceeded
	}
	return nil
}

func (s *session) HTML(ctx context.Context, fullDocument bool) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if fullDocument {
		b := s.browser
		b.mu.Lock()
		defer b.mu.Unlock()
		return b.Pages[s.current], nil
	}

	doc, err := s.document()
	if err != nil {
		return "", err
	}
	return doc.Find("body").Html()
}

func (s *session) document() (*goquery.Document, error) {
	b := s.browser
	b.mu.Lock()
	page := b.Pages[s.current]
	b.mu.Unlock()

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	if err != nil {
		return nil, fmt.Errorf("browsertest: parse %s: %w", s.current, err)
	}
	return doc, nil
}

func (s *session) Close() error {
	b := s.browser
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed++
	return nil
}
