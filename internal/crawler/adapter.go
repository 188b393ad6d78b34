package crawler

import "github.com/williampepple1/catalog-crawler/pkg/models"

// Target is a URL together with the selector that marks it as rendered.
type Target struct {
	URL   string
	Ready string
}

// Category is one listing discovered on the root page.
type Category struct {
	Name string
	URL  string
}

// Page is one listing page of a category. Index 1 is the category's own URL.
type Page struct {
	Index int
	URL   string
}

// Adapter holds the site-specific navigation rules. Discovery methods receive
// the body HTML of the page they inspect.
type Adapter interface {
	Name() string
	Root() Target
	ListingReady() string
	// DiscoverCategories may return none, in which case the root page is
	// crawled as a single implicit category.
	DiscoverCategories(rootHTML string) ([]Category, error)
	// DiscoverPagination returns the pages after the first.
	DiscoverPagination(cat Category, html string) ([]Page, error)
}

// ProductSource is implemented by adapters that visit each product page.
type ProductSource interface {
	ProductReady() string
	DiscoverProductLinks(page Page, html string) ([]string, error)
	// ExtractProduct receives the full document HTML of the product page.
	ExtractProduct(productURL, html string) (models.RawRecord, error)
}

// ListingSource is implemented by adapters whose listing pages already carry
// every field, so product pages are never visited.
type ListingSource interface {
	ExtractListing(page Page, html string) ([]models.RawRecord, error)
}
