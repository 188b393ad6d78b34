// Package pipeline wires the crawl driver, normalizer, persistence and
// validator into the two top-level jobs: crawl a site, validate all outputs.
package pipeline

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/williampepple1/catalog-crawler/internal/browser"
	"github.com/williampepple1/catalog-crawler/internal/config"
	"github.com/williampepple1/catalog-crawler/internal/crawler"
	"github.com/williampepple1/catalog-crawler/internal/io"
	"github.com/williampepple1/catalog-crawler/internal/normalize"
	"github.com/williampepple1/catalog-crawler/internal/site"
	"github.com/williampepple1/catalog-crawler/internal/validate"
	"github.com/williampepple1/catalog-crawler/internal/worker"
	"github.com/williampepple1/catalog-crawler/pkg/models"
)

// Summary describes one finished site crawl.
type Summary struct {
	Site     string
	Path     string
	Products int
	// Dropped counts records rejected by normalization or as duplicates.
	Dropped  int
	Errors   []crawler.ItemError
	Duration time.Duration
}

// Runner executes crawl and validation jobs for one configuration.
type Runner struct {
	Config  *config.AppConfig
	Browser browser.Browser
	Logger  *zap.Logger
	Metrics *crawler.Metrics
	Writer  *io.ResultWriter
	Reader  *io.RecordReader

	intercept crawler.Interceptor
}

// New creates a runner. Metrics may be nil.
func New(cfg *config.AppConfig, b browser.Browser, logger *zap.Logger, m *crawler.Metrics) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{
		Config:    cfg,
		Browser:   b,
		Logger:    logger,
		Metrics:   m,
		Writer:    io.NewResultWriter(&cfg.IO),
		Reader:    io.NewRecordReader(&cfg.IO),
		intercept: crawler.Chain(crawler.LoggingInterceptor(logger), crawler.MetricsInterceptor(m)),
	}
}

// Crawl performs one full crawl of name followed by one write of its output
// file. Nothing is written when the crawl fails.
func (r *Runner) Crawl(ctx context.Context, name string) (*Summary, error) {
	sc, ok := r.Config.Sites[name]
	if !ok {
		return nil, eris.Errorf("pipeline: unknown site %q", name)
	}
	adapter, err := site.New(name, sc)
	if err != nil {
		return nil, err
	}

	driver, err := crawler.NewDriver(r.Browser, adapter, crawler.Options{
		Cooldown:       sc.CooldownOr(r.Config.Crawl.Cooldown),
		PageDelay:      sc.PageDelayOr(r.Config.Crawl.PageDelay),
		ProductDelay:   sc.ProductDelayOr(r.Config.Crawl.ProductDelay),
		WaitTimeout:    r.Config.Browser.WaitTimeout,
		OnProductError: sc.OnProductError,
	}, r.Logger, r.Metrics)
	if err != nil {
		return nil, err
	}

	res, err := driver.Run(ctx)
	if err != nil {
		return nil, err
	}

	logger := r.Logger.With(zap.String("site", name))
	var products []models.Product
	var skipped int
	err = r.intercept(ctx, "normalize", func(context.Context) error {
		var err error
		products, skipped, err = normalizeRecords(logger, sc, res.Records)
		return err
	})
	if err != nil {
		return nil, eris.Wrapf(err, "pipeline: normalize %s", name)
	}

	products, duplicates := normalize.UniqueByID(products)
	if len(duplicates) > 0 {
		logger.Warn("duplicate product ids dropped", zap.Strings("ids", duplicates))
	}

	var path string
	err = r.intercept(ctx, "write", func(context.Context) error {
		var err error
		path, err = r.Writer.SaveProducts(name, products)
		return err
	})
	if err != nil {
		return nil, err
	}

	summary := &Summary{
		Site:     name,
		Path:     path,
		Products: len(products),
		Dropped:  skipped + len(duplicates),
		Errors:   res.Errors,
		Duration: res.Duration,
	}
	logger.Info("site output written",
		zap.String("path", path),
		zap.Int("products", summary.Products),
		zap.Int("dropped", summary.Dropped),
		zap.Int("item_errors", len(summary.Errors)))
	return summary, nil
}

// CrawlAll crawls sites through a bounded pool. Each site owns its own
// browser session, so one failure never stops the others.
func (r *Runner) CrawlAll(ctx context.Context, sites []string, parallel int) (map[string]*Summary, map[string]error) {
	pool := worker.NewPool(parallel, r.Logger)

	summaries := make(map[string]*Summary, len(sites))
	results := make(chan *Summary, len(sites))
	tasks := make(map[string]worker.Task, len(sites))
	for _, name := range sites {
		tasks[name] = func(ctx context.Context) error {
			s, err := r.Crawl(ctx, name)
			if err != nil {
				return err
			}
			results <- s
			return nil
		}
	}

	failed := pool.Run(ctx, sites, tasks)
	close(results)
	for s := range results {
		summaries[s.Site] = s
	}
	return summaries, failed
}

// Validate reads every configured site output, builds the consolidated
// report and writes it to the validation file.
func (r *Runner) Validate(ctx context.Context) (*validate.Report, string, error) {
	profiles := validate.ProfilesFrom(r.Config.Sites)

	var report *validate.Report
	err := r.intercept(ctx, "validate", func(context.Context) error {
		report = validate.Build(profiles, r.Reader.ReadRecords)
		return nil
	})
	if err != nil {
		return nil, "", err
	}
	for key, msg := range report.Errors {
		r.Logger.Warn("site not validated", zap.String("report_key", key), zap.String("error", msg))
	}

	var path string
	err = r.intercept(ctx, "write", func(context.Context) error {
		var err error
		path, err = r.Writer.SaveReport(report)
		return err
	})
	if err != nil {
		return nil, "", err
	}
	r.Logger.Info("validation report written", zap.String("path", path), zap.Int("sites", len(report.Sites)))
	return report, path, nil
}

// WriteMetrics exports the crawl metrics when a metrics file is configured.
func (r *Runner) WriteMetrics() error {
	if r.Config.Crawl.MetricsFile == "" || r.Metrics == nil {
		return nil
	}
	if err := r.Metrics.WriteToTextfile(r.Config.Crawl.MetricsFile); err != nil {
		return eris.Wrapf(err, "pipeline: write metrics to %s", r.Config.Crawl.MetricsFile)
	}
	return nil
}

// normalizeRecords applies the site's field map. With the skip policy a bad
// record (or columnar page) is logged and left out; with abort the first one
// fails the batch. skipped counts the records left out.
func normalizeRecords(logger *zap.Logger, sc *config.SiteConfig, records []models.RawRecord) (products []models.Product, skipped int, err error) {
	fm := normalize.FieldMap(sc.FieldMap)

	for i, raw := range records {
		var batch []models.Product
		if sc.Columnar {
			batch, err = normalize.Columns(raw, fm)
		} else {
			var p models.Product
			if p, err = normalize.Normalize(raw, fm); err == nil {
				batch = []models.Product{p}
			}
		}
		if err != nil {
			if sc.OnMissingField == config.PolicyAbort {
				return nil, skipped, eris.Wrapf(err, "record %d", i)
			}
			logger.Warn("record skipped", zap.Int("record", i), zap.Error(err))
			skipped++
			continue
		}
		products = append(products, batch...)
	}
	return products, skipped, nil
}
