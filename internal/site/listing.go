package site

import (
	"fmt"
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

// Column names of a listing record.
const (
	ColumnIDs        = "product_ids"
	ColumnURLs       = "product_urls"
	ColumnNames      = "product_names"
	ColumnPrices     = "product_prices"
	ColumnCategories = "product_categories"
	ColumnUnits      = "product_units"
	ColumnImages     = "product_image_urls"
)

// Listing crawls a single paginated product listing whose cards carry every
// field, so product pages are never opened. Each listing page yields one
// columnar record.
type Listing struct {
	name string
	cfg  *config.SiteConfig
	base *url.URL
	root string
}

// NewListing creates a listing adapter.
func NewListing(name string, cfg *config.SiteConfig) (*Listing, error) {
	base, root, err := rootURL(cfg)
	if err != nil {
		return nil, eris.Wrapf(err, "site %s", name)
	}
	if cfg.Listing.PageParam != "" && !strings.Contains(cfg.Listing.PageFormat, "%d") {
		return nil, eris.Errorf("site %s: page format %q has no %%d verb", name, cfg.Listing.PageFormat)
	}
	return &Listing{name: name, cfg: cfg, base: base, root: root}, nil
}

func (l *Listing) Name() string { return l.name }

func (l *Listing) Root() crawler.Target {
	return crawler.Target{URL: l.root, Ready: l.cfg.RootReady}
}

func (l *Listing) ListingReady() string { return l.cfg.ListingReady }

// DiscoverCategories always returns none: the root page is the listing.
func (l *Listing) DiscoverCategories(string) ([]crawler.Category, error) {
	return nil, nil
}

// DiscoverPagination reads the page count from the last pagination item and
// returns pages 2..N built from the listing URL, capped by max_pages.
func (l *Listing) DiscoverPagination(cat crawler.Category, html string) ([]crawler.Page, error) {
	doc, err := extraction.Parse(html)
	if err != nil {
		return nil, err
	}

	text := strings.TrimSpace(doc.Find(l.cfg.Listing.PageCount).Last().Text())
	count, err := strconv.Atoi(text)
	if err != nil {
		return nil, eris.Wrapf(err, "page count %q is not an integer", text)
	}
	if limit := l.cfg.Listing.MaxPages; limit > 0 && count > limit {
		count = limit
	}

	var pages []crawler.Page
	for k := 2; k <= count; k++ {
		pageURL, err := l.PageURL(cat.URL, k)
		if err != nil {
			return nil, err
		}
		pages = append(pages, crawler.Page{Index: k, URL: pageURL})
	}
	return pages, nil
}

// PageURL returns the address of page k of the listing at listingURL.
func (l *Listing) PageURL(listingURL string, k int) (string, error) {
	u, err := url.Parse(listingURL)
	if err != nil {
		return "", eris.Wrapf(err, "parse listing URL %q", listingURL)
	}
	param := l.cfg.Listing.PageParam
	if param == "" {
		param = "page"
	}
	format := l.cfg.Listing.PageFormat
	if format == "" {
		format = "%d"
	}
	q := u.Query()
	q.Set(param, fmt.Sprintf(format, k))
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// ExtractListing reads the product cards of one page into parallel columns.
// A page without product links yields no record.
func (l *Listing) ExtractListing(page crawler.Page, html string) ([]models.RawRecord, error) {
	doc, err := extraction.Parse(html)
	if err != nil {
		return nil, err
	}
	lc := l.cfg.Listing

	hrefs := extraction.Attrs(doc.Find(lc.ItemLinks), "href")
	if len(hrefs) == 0 {
		return nil, nil
	}

	ids := make([]any, 0, len(hrefs))
	urls := make([]any, 0, len(hrefs))
	for _, href := range hrefs {
		abs, err := extraction.Resolve(l.base, href)
		if err != nil {
			return nil, &crawler.ExtractionError{URL: page.URL, Err: err}
		}
		ids = append(ids, extraction.LastSegment(href))
		urls = append(urls, abs)
	}

	units := extraction.Texts(doc.Find(lc.ItemUnits))
	for i, u := range units {
		units[i] = strings.TrimSpace(strings.Trim(u, "/"))
	}

	var images []any
	var imageErr error
	doc.Find(lc.Items).EachWithBreak(func(_ int, item *goquery.Selection) bool {
		set, err := l.itemImages(item)
		if err != nil {
			imageErr = err
			return false
		}
		images = append(images, set)
		return true
	})
	if imageErr != nil {
		return nil, &crawler.ExtractionError{URL: page.URL, Err: imageErr}
	}

	return []models.RawRecord{{
		ColumnIDs:        ids,
		ColumnURLs:       urls,
		ColumnNames:      column(extraction.Texts(doc.Find(lc.ItemNames))),
		ColumnPrices:     column(extraction.Texts(doc.Find(lc.ItemPrices))),
		ColumnCategories: column(extraction.Texts(doc.Find(lc.ItemCategories))),
		ColumnUnits:      column(units),
		ColumnImages:     images,
	}}, nil
}

// itemImages lists every srcset candidate followed by every img src of one
// product card, resolved and with the configured extension enforced.
func (l *Listing) itemImages(item *goquery.Selection) ([]string, error) {
	var raw []string
	if sel := l.cfg.Listing.ImageSources; sel != "" {
		for _, srcset := range extraction.Attrs(item.Find(sel), "srcset") {
			raw = append(raw, srcsetURLs(srcset)...)
		}
	}
	if sel := l.cfg.Listing.Images; sel != "" {
		raw = append(raw, extraction.Attrs(item.Find(sel), "src")...)
	}

	out := make([]string, 0, len(raw))
	for _, src := range raw {
		if src == "" {
			continue
		}
		abs, err := extraction.Resolve(l.base, src)
		if err != nil {
			return nil, err
		}
		if ext := l.cfg.Listing.ImageExt; ext != "" && !strings.HasSuffix(abs, ext) {
			abs += ext
		}
		out = append(out, abs)
	}
	return out, nil
}

// srcsetURLs drops the width or density descriptors of a srcset value.
func srcsetURLs(srcset string) []string {
	var out []string
	for _, candidate := range strings.Split(srcset, ",") {
		if fields := strings.Fields(candidate); len(fields) > 0 {
			out = append(out, fields[0])
		}
	}
	return out
}

func column(values []string) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}
