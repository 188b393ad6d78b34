package site

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rotisserie/eris"

	"github.com/williampepple1/catalog-crawler/internal/config"
	"github.com/williampepple1/catalog-crawler/internal/crawler"
	"github.com/williampepple1/catalog-crawler/internal/extraction"
	"github.com/williampepple1/catalog-crawler/pkg/models"
)

// Catalog crawls shops organised as category menus with per-category
// "next page" links and one page per product.
type Catalog struct {
	name      string
	cfg       *config.SiteConfig
	base      *url.URL
	root      string
	extractor *extraction.Extractor
}

// NewCatalog creates a catalog adapter. Field rules are compiled here so a bad
// pattern is reported before the browser starts.
func NewCatalog(name string, cfg *config.SiteConfig) (*Catalog, error) {
	base, root, err := rootURL(cfg)
	if err != nil {
		return nil, eris.Wrapf(err, "site %s", name)
	}
	extractor, err := extraction.NewExtractor(cfg.Fields)
	if err != nil {
		return nil, eris.Wrapf(err, "site %s", name)
	}
	return &Catalog{name: name, cfg: cfg, base: base, root: root, extractor: extractor}, nil
}

func (c *Catalog) Name() string { return c.name }

func (c *Catalog) Root() crawler.Target {
	return crawler.Target{URL: c.root, Ready: c.cfg.RootReady}
}

func (c *Catalog) ListingReady() string { return c.cfg.ListingReady }

func (c *Catalog) ProductReady() string { return c.cfg.ProductReady }

// DiscoverCategories reads the category menu. The anchor text names the
// category.
func (c *Catalog) DiscoverCategories(rootHTML string) ([]crawler.Category, error) {
	if c.cfg.CategoryLinks == "" {
		return nil, nil
	}
	doc, err := extraction.Parse(rootHTML)
	if err != nil {
		return nil, err
	}

	var categories []crawler.Category
	var resolveErr error
	doc.Find(c.cfg.CategoryLinks).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		href, ok := s.Attr("href")
		if !ok {
			return true
		}
		abs, err := extraction.Resolve(c.base, href)
		if err != nil {
			resolveErr = err
			return false
		}
		categories = append(categories, crawler.Category{Name: strings.TrimSpace(s.Text()), URL: abs})
		return true
	})
	if resolveErr != nil {
		return nil, resolveErr
	}
	return categories, nil
}

// DiscoverPagination collects the next-page links of a category's first page.
// The page index comes from the page query parameter when present.
func (c *Catalog) DiscoverPagination(cat crawler.Category, html string) ([]crawler.Page, error) {
	if c.cfg.NextPageLinks == "" {
		return nil, nil
	}
	doc, err := extraction.Parse(html)
	if err != nil {
		return nil, err
	}

	hrefs := extraction.Attrs(doc.Find(c.cfg.NextPageLinks), "href")
	pages := make([]crawler.Page, 0, len(hrefs))
	for i, href := range hrefs {
		abs, err := extraction.Resolve(c.base, href)
		if err != nil {
			return nil, err
		}
		pages = append(pages, crawler.Page{Index: pageIndex(abs, i+2), URL: abs})
	}
	return pages, nil
}

func pageIndex(rawURL string, fallback int) int {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fallback
	}
	if n, err := strconv.Atoi(u.Query().Get("page")); err == nil && n > 0 {
		return n
	}
	return fallback
}

func (c *Catalog) DiscoverProductLinks(_ crawler.Page, html string) ([]string, error) {
	doc, err := extraction.Parse(html)
	if err != nil {
		return nil, err
	}
	hrefs := extraction.Attrs(doc.Find(c.cfg.ProductLinks), "href")
	links := make([]string, 0, len(hrefs))
	for _, href := range hrefs {
		abs, err := extraction.Resolve(c.base, href)
		if err != nil {
			return nil, err
		}
		links = append(links, abs)
	}
	return links, nil
}

// ExtractProduct builds the record from the structured-data block when the
// page has one, then applies the field rules on top. A page without the block
// falls back to the field rules alone and fails only when the site has none.
// The id defaults to the last path segment of the product URL.
func (c *Catalog) ExtractProduct(productURL, html string) (models.RawRecord, error) {
	doc, err := extraction.Parse(html)
	if err != nil {
		return nil, &crawler.ExtractionError{URL: productURL, Err: err}
	}

	record := models.RawRecord{}
	if c.cfg.StructuredData != "" {
		objects, err := extraction.StructuredData(doc, c.cfg.StructuredData)
		if err != nil {
			return nil, &crawler.ExtractionError{URL: productURL, Err: err}
		}
		obj, ok := extraction.FindType(objects, c.cfg.StructuredType)
		if !ok && len(c.cfg.Fields) == 0 {
			return nil, &crawler.ExtractionError{URL: productURL, Err: eris.Errorf("no structured data matching %q", c.cfg.StructuredData)}
		}
		for k, v := range obj {
			record[k] = v
		}
	}

	fields, err := c.extractor.Extract(doc)
	if err != nil {
		return nil, &crawler.ExtractionError{URL: productURL, Err: err}
	}
	for k, v := range fields {
		record[k] = v
	}

	if models.String(record["id"]) == "" {
		record["id"] = extraction.LastSegment(productURL)
	}
	if models.String(record["url"]) == "" {
		record["url"] = productURL
	}
	return record, nil
}
