package site

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/williampepple1/catalog-crawler/internal/config"
	"github.com/williampepple1/catalog-crawler/internal/crawler"
)

const ffRoot = `<ul class="site-nav list--inline site-nav--centered">
  <li><a href="/collections/mens">Mens</a></li>
  <li><a href="/collections/womens"> Womens </a></li>
  <li><a>Blog</a></li>
</ul>`

const ffCollection = `<h1 class="collection-hero__title page-width">Mens</h1>
<div class="grid-view-item product-card"><a href="/collections/mens/products/tee">Tee</a></div>
<div class="grid-view-item product-card"><a href="/collections/mens/products/cap">Cap</a></div>
<ul class="list--inline pagination">
  <li><a href="/collections/mens?page=3">3</a></li>
  <li><a href="/collections/mens?page=2">2</a></li>
  <li><span>next</span></li>
</ul>`

const ffProduct = `<html><head><title>Tee</title></head><body>
<h1 class="product-single__title">Tee</h1>
<script id="ProductJson-product-template" type="application/json">
{"id": 4374636216374, "title": "Tee", "vendor": "Foreign Fortune", "type": "Shirts",
 "price": 2500, "price_min": 2500, "price_max": 3000,
 "images": ["//cdn.shop/tee.jpg"],
 "variants": [{"id": 1, "price": 2500}, {"id": 2, "price": 3000}]}
</script>
</body></html>`

const lcProduct = `<html><body>
<ul><li class="productImages__item keen-slider__slide"><a href="https://cdn.lc/dark.jpg">img</a></li></ul>
<h1 class="productCard__title">Dark 70%</h1>
<h2 class="productCard__subtitle">Chocolate bars</h2>
<div class="productAccordion__content">
  <p> Intense cocoa. </p>
  <p>Sold at £8.50 each.</p>
</div>
<p class="productCard__weight">70g</p>
</body></html>`

func foreignFortune(t *testing.T) *Catalog {
	t.Helper()
	c, err := NewCatalog(config.ForeignFortune, config.DefaultSites()[config.ForeignFortune])
	require.NoError(t, err)
	return c
}

func TestCatalogRoot(t *testing.T) {
	c := foreignFortune(t)
	assert.Equal(t, "foreignfortune", c.Name())
	assert.Equal(t, crawler.Target{
		URL:   "https://foreignfortune.com",
		Ready: "ul.site-nav.list--inline.site-nav--centered",
	}, c.Root())
}

func TestCatalogDiscoverCategories(t *testing.T) {
	cats, err := foreignFortune(t).DiscoverCategories(ffRoot)
	require.NoError(t, err)
	assert.Equal(t, []crawler.Category{
		{Name: "Mens", URL: "https://foreignfortune.com/collections/mens"},
		{Name: "Womens", URL: "https://foreignfortune.com/collections/womens"},
	}, cats)
}

func TestCatalogDiscoverPagination(t *testing.T) {
	c := foreignFortune(t)
	cat := crawler.Category{Name: "Mens", URL: "https://foreignfortune.com/collections/mens"}

	pages, err := c.DiscoverPagination(cat, ffCollection)
	require.NoError(t, err)
	assert.Equal(t, []crawler.Page{
		{Index: 3, URL: "https://foreignfortune.com/collections/mens?page=3"},
		{Index: 2, URL: "https://foreignfortune.com/collections/mens?page=2"},
	}, pages)

	pages, err = c.DiscoverPagination(cat, `<h1>no pagination</h1>`)
	require.NoError(t, err)
	assert.Empty(t, pages)
}

func TestCatalogDiscoverProductLinks(t *testing.T) {
	links, err := foreignFortune(t).DiscoverProductLinks(crawler.Page{Index: 1}, ffCollection)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"https://foreignfortune.com/collections/mens/products/tee",
		"https://foreignfortune.com/collections/mens/products/cap",
	}, links)
}

func TestCatalogExtractStructuredProduct(t *testing.T) {
	url := "https://foreignfortune.com/collections/mens/products/tee"
	record, err := foreignFortune(t).ExtractProduct(url, ffProduct)
	require.NoError(t, err)

	assert.Equal(t, float64(4374636216374), record["id"])
	assert.Equal(t, "Foreign Fortune", record["vendor"])
	assert.Equal(t, "Shirts", record["type"])
	assert.Equal(t, url, record["url"])
	assert.Len(t, record["variants"], 2)
}

func TestCatalogExtractMissingStructuredData(t *testing.T) {
	_, err := foreignFortune(t).ExtractProduct("https://foreignfortune.com/products/x", `<h1 class="product-single__title">x</h1>`)
	var extraction *crawler.ExtractionError
	require.ErrorAs(t, err, &extraction)
	assert.Equal(t, "https://foreignfortune.com/products/x", extraction.URL)
}

func TestCatalogExtractFallsBackToFieldRules(t *testing.T) {
	cfg := *config.DefaultSites()[config.ForeignFortune]
	cfg.Fields = map[string]config.FieldRule{"title": {Selector: "h1.product-single__title"}}
	c, err := NewCatalog(config.ForeignFortune, &cfg)
	require.NoError(t, err)

	url := "https://foreignfortune.com/products/cap"
	record, err := c.ExtractProduct(url, `<h1 class="product-single__title">Cap</h1>`)
	require.NoError(t, err)
	assert.Equal(t, "Cap", record["title"])
	assert.Equal(t, "cap", record["id"])
	assert.Equal(t, url, record["url"])
}

func TestCatalogExtractFieldRules(t *testing.T) {
	c, err := NewCatalog(config.LeChocolat, config.DefaultSites()[config.LeChocolat])
	require.NoError(t, err)

	url := "https://www.lechocolat-alainducasse.com/uk/dark-70"
	record, err := c.ExtractProduct(url, lcProduct)
	require.NoError(t, err)

	assert.Equal(t, "dark-70", record["id"])
	assert.Equal(t, url, record["url"])
	assert.Equal(t, "Dark 70%", record["title"])
	assert.Equal(t, "Chocolate bars", record["category"])
	assert.Equal(t, "Intense cocoa. Sold at £8.50 each.", record["description"])
	assert.Equal(t, "£8.50", record["price"])
	assert.Equal(t, "70g", record["weight"])
	assert.Equal(t, "https://cdn.lc/dark.jpg", record["image_url"])
}

func TestCatalogRejectsBadFieldPattern(t *testing.T) {
	cfg := *config.DefaultSites()[config.LeChocolat]
	cfg.Fields = map[string]config.FieldRule{"price": {Pattern: "(["}}
	_, err := NewCatalog(config.LeChocolat, &cfg)
	require.Error(t, err)
}

func TestNewDispatchesOnKind(t *testing.T) {
	sites := config.DefaultSites()

	a, err := New(config.LeChocolat, sites[config.LeChocolat])
	require.NoError(t, err)
	assert.IsType(t, &Catalog{}, a)

	a, err = New(config.TraderJoes, sites[config.TraderJoes])
	require.NoError(t, err)
	assert.IsType(t, &Listing{}, a)

	_, err = New("nowhere", nil)
	require.Error(t, err)

	bad := *sites[config.LeChocolat]
	bad.Kind = "feed"
	_, err = New("feed", &bad)
	require.Error(t, err)
}
