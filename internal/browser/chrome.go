package browser

import (
	"context"

	"github.com/chromedp/chromedp"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/williampepple1/catalog-crawler/internal/config"
	"github.com/williampepple1/catalog-crawler/internal/proxy"
)

const (
	bodyHTMLScript     = `document.body.innerHTML`
	documentHTMLScript = `document.documentElement.outerHTML`
)

// Chrome launches headless Chrome sessions through chromedp.
type Chrome struct {
	Config *config.BrowserConfig
	Proxy  *proxy.Manager
	Logger *zap.Logger
}

// NewChrome creates a Chrome browser from config.
func NewChrome(cfg *config.BrowserConfig, proxies *proxy.Manager, logger *zap.Logger) *Chrome {
	return &Chrome{Config: cfg, Proxy: proxies, Logger: logger}
}

// Open starts a fresh browser process with a single tab.
func (c *Chrome) Open(ctx context.Context) (Session, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", c.Config.Headless),
		chromedp.Flag("incognito", true),
		chromedp.Flag("ignore-certificate-errors", true),
		chromedp.Flag("disable-infobars", true),
		chromedp.Flag("disable-accelerated-2d-canvas", true),
		chromedp.NoSandbox,
		chromedp.DisableGPU,
		chromedp.WindowSize(c.Config.WindowWidth, c.Config.WindowHeight),
		chromedp.UserAgent(c.Config.UserAgent),
	)

	if server := c.Proxy.Server(); server != "" {
		opts = append(opts, chromedp.ProxyServer(server))
		c.Logger.Info("using proxy", zap.String("proxy", server))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, opts...)
	tabCtx, tabCancel := chromedp.NewContext(allocCtx,
		chromedp.WithLogf(c.Logger.Sugar().Debugf),
		chromedp.WithErrorf(c.Logger.Sugar().Debugf),
	)

	// The first Run allocates the browser; it must use the tab context itself
	// or the browser would die with the first derived context.
	if err := chromedp.Run(tabCtx); err != nil {
		tabCancel()
		allocCancel()
		return nil, eris.Wrap(err, "browser: start chrome")
	}

	return &chromeSession{
		ctx:         tabCtx,
		tabCancel:   tabCancel,
		allocCancel: allocCancel,
	}, nil
}

type chromeSession struct {
	ctx         context.Context
	tabCancel   context.CancelFunc
	allocCancel context.CancelFunc
}

func (s *chromeSession) Navigate(ctx context.Context, url string) error {
	return s.run(ctx, chromedp.Navigate(url))
}

func (s *chromeSession) WaitFor(ctx context.Context, selector string) error {
	return s.run(ctx, chromedp.WaitReady(selector, chromedp.ByQuery))
}

func (s *chromeSession) HTML(ctx context.Context, fullDocument bool) (string, error) {
	script := bodyHTMLScript
	if fullDocument {
		script = documentHTMLScript
	}
	var html string
	if err := s.run(ctx, chromedp.Evaluate(script, &html)); err != nil {
		return "", err
	}
	return html, nil
}

func (s *chromeSession) Close() error {
	err := chromedp.Cancel(s.ctx)
	s.tabCancel()
	s.allocCancel()
	return err
}

// run executes actions on the tab while honouring the caller's deadline and
// cancellation.
func (s *chromeSession) run(ctx context.Context, actions ...chromedp.Action) error {
	runCtx, cancel := context.WithCancel(s.ctx)
	defer cancel()
	if deadline, ok := ctx.Deadline(); ok {
		var cancelDeadline context.CancelFunc
		runCtx, cancelDeadline = context.WithDeadline(runCtx, deadline)
		defer cancelDeadline()
	}
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	err := chromedp.Run(runCtx, actions...)
	if err != nil && ctx.Err() != nil {
		return ctx.Err()
	}
	if err != nil && runCtx.Err() != nil {
		return runCtx.Err()
	}
	return err
}
