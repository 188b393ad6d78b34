// Package site holds the adapters that turn a SiteConfig into crawl rules.
package site

import (
	"net/url"

	"github.com/rotisserie/eris"

	"github.com/williampepple1/catalog-crawler/internal/config"
	"github.com/williampepple1/catalog-crawler/internal/crawler"
)

// New builds the adapter for a configured site.
func New(name string, cfg *config.SiteConfig) (crawler.Adapter, error) {
	if cfg == nil {
		return nil, eris.Errorf("site %s is not configured", name)
	}
	switch cfg.Kind {
	case config.KindCatalog:
		return NewCatalog(name, cfg)
	case config.KindListing:
		return NewListing(name, cfg)
	default:
		return nil, eris.Errorf("site %s: unknown kind %q", name, cfg.Kind)
	}
}

// rootURL resolves the configured root path against the base URL.
func rootURL(cfg *config.SiteConfig) (*url.URL, string, error) {
	base, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, "", eris.Wrap(err, "parse base URL")
	}
	if cfg.RootPath == "" {
		return base, base.String(), nil
	}
	ref, err := url.Parse(cfg.RootPath)
	if err != nil {
		return nil, "", eris.Wrap(err, "parse root path")
	}
	return base, base.ResolveReference(ref).String(), nil
}
