package crawler

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics bundles Prometheus collectors for crawl runs.
type Metrics struct {
	Registry          *prometheus.Registry
	PagesTotal        *prometheus.CounterVec
	ProductsTotal     *prometheus.CounterVec
	ProductErrors     *prometheus.CounterVec
	OperationDuration *prometheus.HistogramVec
}

// NewMetrics constructs and registers all metrics on a dedicated registry.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	pages := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crawler_pages_fetched_total",
			Help: "Pages rendered by the browser, by phase.",
		},
		[]string{"site", "phase"},
	)
	products := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crawler_products_extracted_total",
			Help: "Raw records extracted.",
		},
		[]string{"site"},
	)
	productErrors := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crawler_product_errors_total",
			Help: "Products skipped after a failure, by error type.",
		},
		[]string{"site", "error_type"},
	)
	duration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "crawler_operation_duration_seconds",
			Help:    "Duration of instrumented crawl operations.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	registry.MustRegister(pages, products, productErrors, duration)

	return &Metrics{
		Registry:          registry,
		PagesTotal:        pages,
		ProductsTotal:     products,
		ProductErrors:     productErrors,
		OperationDuration: duration,
	}
}

// IncPage counts a rendered page.
func (m *Metrics) IncPage(site, phase string) {
	if m == nil {
		return
	}
	m.PagesTotal.WithLabelValues(site, phase).Inc()
}

// AddProducts counts extracted records.
func (m *Metrics) AddProducts(site string, n int) {
	if m == nil {
		return
	}
	m.ProductsTotal.WithLabelValues(site).Add(float64(n))
}

// IncProductError counts a skipped product.
func (m *Metrics) IncProductError(site, errorType string) {
	if m == nil {
		return
	}
	m.ProductErrors.WithLabelValues(site, errorType).Inc()
}

// ObserveOperation records an operation duration.
func (m *Metrics) ObserveOperation(op string, d time.Duration) {
	if m == nil {
		return
	}
	m.OperationDuration.WithLabelValues(op).Observe(d.Seconds())
}

// WriteToTextfile exports the registry in the text exposition format.
func (m *Metrics) WriteToTextfile(path string) error {
	if m == nil {
		return nil
	}
	return prometheus.WriteToTextfile(path, m.Registry)
}
