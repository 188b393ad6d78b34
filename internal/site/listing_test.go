package site

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/williampepple1/catalog-crawler/internal/config"
	"github.com/williampepple1/catalog-crawler/internal/crawler"
)

const tjListing = `<ul class="ProductList_productList__list__3-dGs">
  <li>
    <a class="Link_link__1AZfr ProductCard_card__img_link__2bBqA" href="/home/products/pdp/butter-051942">img</a>
    <picture>
      <source srcset="/images/butter.webp 1x, /images/butter@2x 2x">
      <img src="/images/butter.png">
    </picture>
    <a class="Link_link__1AZfr ProductCard_card__category__Hh3rT">Dairy</a>
    <h2 class="ProductCard_card__title__text__uiWLe"><a>Butter</a></h2>
    <span class="ProductPrice_productPrice__price__3-50j">$3.99</span>
    <span class="ProductPrice_productPrice__unit__2jvkA">/1 lb</span>
  </li>
  <li>
    <a class="Link_link__1AZfr ProductCard_card__img_link__2bBqA" href="/home/products/pdp/bread-071234">img</a>
    <img src="/images/bread">
    <a class="Link_link__1AZfr ProductCard_card__category__Hh3rT">Bakery</a>
    <h2 class="ProductCard_card__title__text__uiWLe"><a>Bread</a></h2>
    <span class="ProductPrice_productPrice__price__3-50j">$2.49</span>
    <span class="ProductPrice_productPrice__unit__2jvkA">/Each</span>
  </li>
</ul>
<ul class="Pagination_pagination__list__1JUIg">
  <li>1</li><li>2</li><li> 4 </li>
</ul>`

const tjListingURL = "https://www.traderjoes.com/home/products/category/products-2"

func traderJoes(t *testing.T, maxPages int) *Listing {
	t.Helper()
	cfg := *config.DefaultSites()[config.TraderJoes]
	cfg.Listing.MaxPages = maxPages
	l, err := NewListing(config.TraderJoes, &cfg)
	require.NoError(t, err)
	return l
}

func TestListingRoot(t *testing.T) {
	l := traderJoes(t, 0)
	assert.Equal(t, tjListingURL, l.Root().URL)

	cats, err := l.DiscoverCategories(tjListing)
	require.NoError(t, err)
	assert.Empty(t, cats)
}

func TestListingPageURL(t *testing.T) {
	got, err := traderJoes(t, 0).PageURL(tjListingURL, 2)
	require.NoError(t, err)
	assert.Equal(t, tjListingURL+"?filters=%7B%22page%22%3A2%7D", got)
}

func TestListingDiscoverPagination(t *testing.T) {
	cat := crawler.Category{Name: config.TraderJoes, URL: tjListingURL}

	pages, err := traderJoes(t, 0).DiscoverPagination(cat, tjListing)
	require.NoError(t, err)
	require.Len(t, pages, 3)
	for i, p := range pages {
		assert.Equal(t, i+2, p.Index)
	}
	assert.Equal(t, tjListingURL+"?filters=%7B%22page%22%3A4%7D", pages[2].URL)

	pages, err = traderJoes(t, 2).DiscoverPagination(cat, tjListing)
	require.NoError(t, err)
	assert.Len(t, pages, 1)
}

func TestListingPageCountMustBeNumeric(t *testing.T) {
	cat := crawler.Category{Name: config.TraderJoes, URL: tjListingURL}
	_, err := traderJoes(t, 0).DiscoverPagination(cat, `<ul class="Pagination_pagination__list__1JUIg"><li>next</li></ul>`)
	require.Error(t, err)
}

func TestListingExtractColumns(t *testing.T) {
	records, err := traderJoes(t, 0).ExtractListing(crawler.Page{Index: 1, URL: tjListingURL}, tjListing)
	require.NoError(t, err)
	require.Len(t, records, 1)
	r := records[0]

	assert.Equal(t, []any{"butter-051942", "bread-071234"}, r[ColumnIDs])
	assert.Equal(t, []any{
		"https://www.traderjoes.com/home/products/pdp/butter-051942",
		"https://www.traderjoes.com/home/products/pdp/bread-071234",
	}, r[ColumnURLs])
	assert.Equal(t, []any{"Butter", "Bread"}, r[ColumnNames])
	assert.Equal(t, []any{"$3.99", "$2.49"}, r[ColumnPrices])
	assert.Equal(t, []any{"Dairy", "Bakery"}, r[ColumnCategories])
	assert.Equal(t, []any{"1 lb", "Each"}, r[ColumnUnits])
	assert.Equal(t, []any{
		[]string{
			"https://www.traderjoes.com/images/butter.webp",
			"https://www.traderjoes.com/images/butter@2x.webp",
			"https://www.traderjoes.com/images/butter.png.webp",
		},
		[]string{"https://www.traderjoes.com/images/bread.webp"},
	}, r[ColumnImages])
}

func TestListingEmptyPage(t *testing.T) {
	records, err := traderJoes(t, 0).ExtractListing(crawler.Page{Index: 5}, `<ul class="ProductList_productList__list__3-dGs"></ul>`)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestNewListingRejectsPageFormat(t *testing.T) {
	cfg := *config.DefaultSites()[config.TraderJoes]
	cfg.Listing.PageFormat = "page"
	_, err := NewListing(config.TraderJoes, &cfg)
	require.Error(t, err)
}
