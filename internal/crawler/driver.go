package crawler

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/williampepple1/catalog-crawler/internal/browser"
	"github.com/williampepple1/catalog-crawler/internal/config"
	"github.com/williampepple1/catalog-crawler/pkg/models"
)

// Options tune one driver run.
type Options struct {
	// Cooldown is slept after every failed product.
	Cooldown time.Duration
	// PageDelay is the minimum spacing between listing page fetches.
	PageDelay time.Duration
	// ProductDelay is slept after every successful product.
	ProductDelay time.Duration
	// WaitTimeout bounds each ready-selector wait.
	WaitTimeout time.Duration
	// OnProductError is config.PolicySkip or config.PolicyAbort.
	OnProductError string
}

// Result is what a finished run hands back: the drained CrawlState plus
// counters.
type Result struct {
	Site       string
	State      State
	Records    []models.RawRecord
	Errors     []ItemError
	Categories int
	Pages      int
	Duration   time.Duration
}

// Driver runs one adapter over one browser session.
type Driver struct {
	Browser browser.Browser
	Adapter Adapter
	Options Options
	Logger  *zap.Logger
	Metrics *Metrics

	intercept Interceptor
	products  ProductSource
	listing   ListingSource
	sleep     func(ctx context.Context, d time.Duration) error
}

// NewDriver creates a driver. The adapter must implement ProductSource or
// ListingSource; ListingSource wins when both are present. Every driver
// operation passes through the logging and metrics interceptors followed by
// extra.
func NewDriver(b browser.Browser, a Adapter, opts Options, logger *zap.Logger, m *Metrics, extra ...Interceptor) (*Driver, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.With(zap.String("site", a.Name()))

	d := &Driver{
		Browser: b,
		Adapter: a,
		Options: opts,
		Logger:  logger,
		Metrics: m,
		sleep:   sleepContext,
	}

	if ls, ok := a.(ListingSource); ok {
		d.listing = ls
	} else if ps, ok := a.(ProductSource); ok {
		d.products = ps
	} else {
		return nil, fmt.Errorf("adapter %s extracts neither products nor listings", a.Name())
	}

	switch opts.OnProductError {
	case "":
		d.Options.OnProductError = config.PolicySkip
	case config.PolicySkip, config.PolicyAbort:
	default:
		return nil, fmt.Errorf("unknown product error policy %q", opts.OnProductError)
	}

	interceptors := append([]Interceptor{LoggingInterceptor(logger), MetricsInterceptor(m)}, extra...)
	d.intercept = Chain(interceptors...)
	return d, nil
}

// Run performs one full crawl. A failure during bootstrap, category discovery
// or pagination aborts the run and no partial result is returned. Failures of
// single products are recorded in Result.Errors.
func (d *Driver) Run(ctx context.Context) (*Result, error) {
	start := time.Now()
	root := d.Adapter.Root()

	session, err := d.Browser.Open(ctx)
	if err != nil {
		return nil, &BootstrapError{URL: root.URL, Err: err}
	}
	defer func() {
		if err := session.Close(); err != nil {
			d.Logger.Warn("close browser session", zap.Error(err))
		}
	}()

	limit := rate.Inf
	if d.Options.PageDelay > 0 {
		limit = rate.Every(d.Options.PageDelay)
	}

	r := &run{
		Driver:  d,
		fetcher: browser.NewFetcher(session, d.Options.WaitTimeout),
		limit:   limit,
		state:   &CrawlState{State: StateInit},
	}

	d.Logger.Info("crawl started", zap.String("root", root.URL))
	if err := r.crawl(ctx, root); err != nil {
		d.Logger.Error("crawl aborted",
			zap.String("state", r.state.State.String()),
			zap.Int("records", len(r.state.Records)),
			zap.Error(err))
		return nil, err
	}

	res := &Result{
		Site:       d.Adapter.Name(),
		State:      r.state.State,
		Records:    r.state.Records,
		Errors:     r.state.Errors,
		Categories: r.categories,
		Pages:      r.pages,
		Duration:   time.Since(start),
	}
	d.Logger.Info("crawl finished",
		zap.Int("records", len(res.Records)),
		zap.Int("errors", len(res.Errors)),
		zap.Int("categories", res.Categories),
		zap.Int("pages", res.Pages),
		zap.Duration("duration", res.Duration))
	return res, nil
}

// run carries the mutable state of a single Run.
type run struct {
	*Driver
	fetcher    *browser.Fetcher
	limit      rate.Limit
	pacer      *rate.Limiter
	state      *CrawlState
	categories int
	pages      int
}

func (r *run) do(ctx context.Context, op string, fn Operation) error {
	return r.intercept(ctx, op, fn)
}

func (r *run) crawl(ctx context.Context, root Target) error {
	var rootHTML string
	err := r.do(ctx, "bootstrap", func(ctx context.Context) error {
		html, err := r.fetcher.Fetch(ctx, root.URL, root.Ready, false)
		rootHTML = html
		return err
	})
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return &BootstrapError{URL: root.URL, Err: err}
	}
	r.pageLoaded()
	r.Metrics.IncPage(r.Adapter.Name(), "root")

	r.state.State = StateCategoryLoop
	var categories []Category
	err = r.do(ctx, "discover_categories", func(ctx context.Context) error {
		var err error
		categories, err = r.Adapter.DiscoverCategories(rootHTML)
		return err
	})
	if err != nil {
		return fmt.Errorf("discover categories: %w", err)
	}

	implicit := len(categories) == 0
	if implicit {
		categories = []Category{{Name: r.Adapter.Name(), URL: root.URL}}
	}
	r.categories = len(categories)
	r.Logger.Info("categories discovered", zap.Int("count", len(categories)), zap.Bool("implicit", implicit))

	for i, cat := range categories {
		r.state.Category = i
		html := rootHTML
		if !implicit {
			if html, err = r.fetchListing(ctx, cat.URL, "category"); err != nil {
				return fmt.Errorf("category %s: %w", cat.Name, err)
			}
		}
		if err := r.crawlCategory(ctx, cat, html); err != nil {
			return err
		}
	}

	r.state.State = StateDone
	return nil
}

func (r *run) fetchListing(ctx context.Context, url, phase string) (string, error) {
	if err := r.pacer.Wait(ctx); err != nil {
		return "", err
	}
	var html string
	err := r.do(ctx, "fetch_listing", func(ctx context.Context) error {
		var err error
		html, err = r.fetcher.Fetch(ctx, url, r.Adapter.ListingReady(), false)
		return err
	})
	if err != nil {
		return "", err
	}
	r.pageLoaded()
	r.Metrics.IncPage(r.Adapter.Name(), phase)
	return html, nil
}

// pageLoaded starts the page delay over. The bucket of the new limiter is
// spent at once, so the next listing fetch waits a full delay from now.
func (r *run) pageLoaded() {
	r.pacer = rate.NewLimiter(r.limit, 1)
	r.pacer.Allow()
}

func (r *run) crawlCategory(ctx context.Context, cat Category, firstHTML string) error {
	r.state.State = StatePaginationLoop

	var discovered []Page
	err := r.do(ctx, "discover_pagination", func(ctx context.Context) error {
		var err error
		discovered, err = r.Adapter.DiscoverPagination(cat, firstHTML)
		return err
	})
	if err != nil {
		return fmt.Errorf("category %s: discover pagination: %w", cat.Name, err)
	}

	pages := orderPages(cat, discovered)
	r.Logger.Debug("pagination discovered", zap.String("category", cat.Name), zap.Int("pages", len(pages)))

	for i, page := range pages {
		r.state.Page = page.Index
		html := firstHTML
		if i > 0 {
			if html, err = r.fetchListing(ctx, page.URL, "page"); err != nil {
				return fmt.Errorf("category %s page %d: %w", cat.Name, page.Index, err)
			}
		}
		r.pages++
		if err := r.crawlPage(ctx, page, html); err != nil {
			return err
		}
	}
	return nil
}

// orderPages puts the category's own URL first and the rest in ascending
// index order. Pages repeating an index or URL already seen are dropped.
func orderPages(cat Category, discovered []Page) []Page {
	sorted := slices.Clone(discovered)
	slices.SortStableFunc(sorted, func(a, b Page) int { return a.Index - b.Index })

	pages := []Page{{Index: 1, URL: cat.URL}}
	seenURL := map[string]bool{cat.URL: true}
	seenIndex := map[int]bool{1: true}
	for _, p := range sorted {
		if seenURL[p.URL] || seenIndex[p.Index] {
			continue
		}
		seenURL[p.URL] = true
		seenIndex[p.Index] = true
		pages = append(pages, p)
	}
	return pages
}

func (r *run) crawlPage(ctx context.Context, page Page, html string) error {
	if r.listing != nil {
		return r.extractListing(ctx, page, html)
	}

	var links []string
	err := r.do(ctx, "discover_product_links", func(ctx context.Context) error {
		var err error
		links, err = r.products.DiscoverProductLinks(page, html)
		return err
	})
	if err != nil {
		return fmt.Errorf("page %s: discover product links: %w", page.URL, err)
	}

	r.state.State = StateProductLoop
	for _, link := range links {
		record, phase, err := r.product(ctx, link)
		if err != nil {
			if err := r.recoverItem(ctx, link, phase, err); err != nil {
				return err
			}
			continue
		}
		r.state.Records = append(r.state.Records, record)
		r.Metrics.AddProducts(r.Adapter.Name(), 1)
		if err := r.sleep(ctx, r.Options.ProductDelay); err != nil {
			return err
		}
	}
	r.state.State = StatePaginationLoop
	return nil
}

func (r *run) extractListing(ctx context.Context, page Page, html string) error {
	r.state.State = StateProductLoop
	var records []models.RawRecord
	err := r.do(ctx, "extract_listing", func(ctx context.Context) error {
		var err error
		records, err = r.listing.ExtractListing(page, html)
		if err != nil && !isExtractionError(err) {
			err = &ExtractionError{URL: page.URL, Err: err}
		}
		return err
	})
	if err != nil {
		return r.recoverItem(ctx, page.URL, "extract", err)
	}
	r.state.Records = append(r.state.Records, records...)
	r.Metrics.AddProducts(r.Adapter.Name(), len(records))
	r.state.State = StatePaginationLoop
	return nil
}

func (r *run) product(ctx context.Context, url string) (models.RawRecord, string, error) {
	var html string
	err := r.do(ctx, "fetch_product", func(ctx context.Context) error {
		var err error
		html, err = r.fetcher.Fetch(ctx, url, r.products.ProductReady(), true)
		return err
	})
	if err != nil {
		return nil, "fetch", err
	}
	r.Metrics.IncPage(r.Adapter.Name(), "product")

	var record models.RawRecord
	err = r.do(ctx, "extract_product", func(ctx context.Context) error {
		var err error
		record, err = r.products.ExtractProduct(url, html)
		if err != nil && !isExtractionError(err) {
			err = &ExtractionError{URL: url, Err: err}
		}
		return err
	})
	if err != nil {
		return nil, "extract", err
	}
	return record, "", nil
}

// recoverItem records a failed item and cools down. It returns an error only when
// the run has to stop: the context is done or the site aborts on product
// errors.
func (r *run) recoverItem(ctx context.Context, url, phase string, err error) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if r.Options.OnProductError == config.PolicyAbort {
		return err
	}

	prev := r.state.State
	r.state.State = StateErrorRecovery
	label := errorTypeLabel(err)
	r.state.Errors = append(r.state.Errors, ItemError{URL: url, Phase: phase, Type: label, Err: err.Error()})
	r.Metrics.IncProductError(r.Adapter.Name(), label)
	r.Logger.Warn("product skipped",
		zap.String("url", url),
		zap.String("phase", phase),
		zap.String("error_type", label),
		zap.Error(err))

	if err := r.sleep(ctx, r.Options.Cooldown); err != nil {
		return err
	}
	r.state.State = prev
	return nil
}

func isExtractionError(err error) bool {
	var e *ExtractionError
	return errors.As(err, &e)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
