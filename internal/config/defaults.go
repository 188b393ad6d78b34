package config

import "time"

// DefaultUserAgents provides a list of common user agents
var DefaultUserAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.4 Safari/605.1.15",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36",
}

// Site names known to the defaults.
const (
	ForeignFortune = "foreignfortune"
	LeChocolat     = "lechocolat"
	TraderJoes     = "traderjoes"
)

// DefaultSites returns the built-in site table. Selectors change whenever a
// site ships a new theme, so every entry can be replaced from the config file.
func DefaultSites() map[string]*SiteConfig {
	productDelay := time.Second

	return map[string]*SiteConfig{
		ForeignFortune: {
			Kind:           KindCatalog,
			BaseURL:        "https://foreignfortune.com",
			RootReady:      "ul.site-nav.list--inline.site-nav--centered",
			CategoryLinks:  "ul.site-nav.list--inline.site-nav--centered > li > a",
			ListingReady:   "h1.collection-hero__title.page-width",
			NextPageLinks:  "ul.list--inline.pagination li a[href]",
			ProductLinks:   "div.grid-view-item.product-card > a",
			ProductReady:   "h1.product-single__title",
			StructuredData: "script#ProductJson-product-template",
			FieldMap:       map[string]string{"type": "category"},
			OnProductError: PolicySkip,
			OnMissingField: PolicySkip,
			Validation: ValidationConfig{
				ReportKey:      "ff",
				MandatoryKeys:  []string{"id", "title", "price", "vendor"},
				DerivedMetrics: true,
			},
		},
		LeChocolat: {
			Kind:          KindCatalog,
			BaseURL:       "https://www.lechocolat-alainducasse.com/uk/",
			RootReady:     ".headerLogo__image",
			CategoryLinks: `li.siteMenuItem[data-depth="2"] > a`,
			ListingReady:  "section.productMiniature__data",
			ProductLinks:  "section.productMiniature__data > a",
			ProductReady:  "h1.productCard__title",
			Fields: map[string]FieldRule{
				"image_url":   {Selector: "li.productImages__item.keen-slider__slide > a", Attr: "href"},
				"title":       {Selector: "h1.productCard__title"},
				"category":    {Selector: "h2.productCard__subtitle"},
				"description": {Selector: "div.productAccordion__content > p", Multiple: true, Join: " "},
				"price":       {Selector: "div.productAccordion__content > p", Pattern: `£\d+\.\d+`},
				"weight":      {Selector: "p.productCard__weight"},
			},
			OnProductError: PolicySkip,
			OnMissingField: PolicySkip,
			ProductDelay:   &productDelay,
			Validation: ValidationConfig{
				ReportKey:     "lc",
				MandatoryKeys: []string{"id", "title", "price", "description", "category"},
			},
		},
		TraderJoes: {
			Kind:         KindListing,
			BaseURL:      "https://www.traderjoes.com",
			RootPath:     "/home/products/category/products-2",
			RootReady:    "ul.Pagination_pagination__list__1JUIg",
			ListingReady: "ul.Pagination_pagination__list__1JUIg",
			Listing: ListingConfig{
				PageCount:      "ul.Pagination_pagination__list__1JUIg > li:last-child",
				PageParam:      "filters",
				PageFormat:     `{"page":%d}`,
				ItemLinks:      "a.Link_link__1AZfr.ProductCard_card__img_link__2bBqA",
				ItemNames:      "h2.ProductCard_card__title__text__uiWLe > a",
				ItemPrices:     "span.ProductPrice_productPrice__price__3-50j",
				ItemCategories: "a.Link_link__1AZfr.ProductCard_card__category__Hh3rT",
				ItemUnits:      "span.ProductPrice_productPrice__unit__2jvkA",
				Items:          "ul.ProductList_productList__list__3-dGs > li",
				ImageSources:   "source",
				Images:         "img",
				ImageExt:       ".webp",
			},
			FieldMap: map[string]string{
				"product_ids":        "id",
				"product_names":      "title",
				"product_urls":       "url",
				"product_prices":     "price",
				"product_categories": "category",
				"product_units":      "unit",
				"product_image_urls": "images",
			},
			Columnar:       true,
			OnProductError: PolicySkip,
			OnMissingField: PolicyAbort,
			Validation: ValidationConfig{
				ReportKey:     "tj",
				MandatoryKeys: []string{"id", "title", "price", "category", "unit"},
			},
		},
	}
}
