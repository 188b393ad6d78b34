package config

import (
	"net/url"
	"os"
	"time"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// Site kinds.
const (
	KindCatalog = "catalog"
	KindListing = "listing"
)

// Failure policies for per-product extraction and normalization.
const (
	PolicySkip  = "skip"
	PolicyAbort = "abort"
)

// AppConfig holds the complete application configuration
type AppConfig struct {
	Browser BrowserConfig          `yaml:"browser"`
	Crawl   CrawlConfig            `yaml:"crawl"`
	IO      IOConfig               `yaml:"io"`
	Log     LogConfig              `yaml:"log"`
	Proxies ProxyConfig            `yaml:"proxies"`
	Sites   map[string]*SiteConfig `yaml:"sites"`
}

// BrowserConfig holds the headless Chrome settings
type BrowserConfig struct {
	Headless     bool          `yaml:"headless"`
	UserAgent    string        `yaml:"user_agent"`
	WaitTimeout  time.Duration `yaml:"wait_timeout"`
	WindowWidth  int           `yaml:"window_width"`
	WindowHeight int           `yaml:"window_height"`
}

// CrawlConfig holds the pacing and scheduling settings shared by all sites
type CrawlConfig struct {
	Cooldown      time.Duration `yaml:"cooldown"`
	PageDelay     time.Duration `yaml:"page_delay"`
	ProductDelay  time.Duration `yaml:"product_delay"`
	ParallelSites int           `yaml:"parallel_sites"`
	MetricsFile   string        `yaml:"metrics_file"`
}

// IOConfig holds the output locations
type IOConfig struct {
	OutputDir      string `yaml:"output_dir"`
	ValidationFile string `yaml:"validation_file"`
}

// LogConfig holds the logger settings
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // json or console, for stdout only
	File   string `yaml:"file"`

	// Rotation of File. Backups are kept compressed.
	MaxSizeMB  int `yaml:"max_size_mb"`
	MaxBackups int `yaml:"max_backups"`
}

// ProxyConfig holds the proxy configuration
type ProxyConfig struct {
	Enabled bool     `yaml:"enabled"`
	Rotate  bool     `yaml:"rotate"`
	List    []string `yaml:"list"`
}

// SiteConfig describes how one site is navigated and extracted.
type SiteConfig struct {
	Kind      string `yaml:"kind"`
	BaseURL   string `yaml:"base_url"`
	RootPath  string `yaml:"root_path"`
	RootReady string `yaml:"root_ready"`

	CategoryLinks  string `yaml:"category_links"`
	ListingReady   string `yaml:"listing_ready"`
	NextPageLinks  string `yaml:"next_page_links"`
	ProductLinks   string `yaml:"product_links"`
	ProductReady   string `yaml:"product_ready"`
	StructuredData string `yaml:"structured_data"`
	StructuredType string `yaml:"structured_type"`

	Fields  map[string]FieldRule `yaml:"fields"`
	Listing ListingConfig        `yaml:"listing"`

	FieldMap       map[string]string `yaml:"field_map"`
	Columnar       bool              `yaml:"columnar"`
	OnProductError string            `yaml:"on_product_error"`
	OnMissingField string            `yaml:"on_missing_field"`

	Cooldown     *time.Duration `yaml:"cooldown"`
	PageDelay    *time.Duration `yaml:"page_delay"`
	ProductDelay *time.Duration `yaml:"product_delay"`

	Validation ValidationConfig `yaml:"validation"`
}

// FieldRule extracts one value from a product page.
type FieldRule struct {
	Selector string `yaml:"selector"`
	XPath    string `yaml:"xpath"`
	Attr     string `yaml:"attr"`
	Multiple bool   `yaml:"multiple"`
	Join     string `yaml:"join"`
	Pattern  string `yaml:"pattern"`
}

// ListingConfig holds the selectors of a single paginated listing site.
type ListingConfig struct {
	PageCount      string `yaml:"page_count"`
	PageParam      string `yaml:"page_param"`
	PageFormat     string `yaml:"page_format"`
	MaxPages       int    `yaml:"max_pages"`
	ItemLinks      string `yaml:"item_links"`
	ItemNames      string `yaml:"item_names"`
	ItemPrices     string `yaml:"item_prices"`
	ItemCategories string `yaml:"item_categories"`
	ItemUnits      string `yaml:"item_units"`
	Items          string `yaml:"items"`
	ImageSources   string `yaml:"image_sources"`
	Images         string `yaml:"images"`
	ImageExt       string `yaml:"image_ext"`
}

// ValidationConfig holds the post-run checks for one site.
type ValidationConfig struct {
	ReportKey      string   `yaml:"report_key"`
	MandatoryKeys  []string `yaml:"mandatory_keys"`
	DerivedMetrics bool     `yaml:"derived_metrics"`
}

// Load loads the configuration from a YAML file on top of the defaults
func Load(filename string) (*AppConfig, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, eris.Wrapf(err, "config: read %s", filename)
	}

	config := Default()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, eris.Wrapf(err, "config: parse %s", filename)
	}

	if config.Browser.UserAgent == "" {
		config.Browser.UserAgent = DefaultUserAgents[0]
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Default creates the built-in configuration for the three supported sites
func Default() *AppConfig {
	return &AppConfig{
		Browser: BrowserConfig{
			Headless:     true,
			UserAgent:    DefaultUserAgents[0],
			WaitTimeout:  30 * time.Second,
			WindowWidth:  1920,
			WindowHeight: 1080,
		},
		Crawl: CrawlConfig{
			Cooldown:      5 * time.Second,
			PageDelay:     5 * time.Second,
			ProductDelay:  0,
			ParallelSites: 1,
		},
		IO: IOConfig{
			OutputDir:      "output",
			ValidationFile: "validation.json",
		},
		Log: LogConfig{
			Level:      "info",
			Format:     "json",
			MaxSizeMB:  100,
			MaxBackups: 5,
		},
		Proxies: ProxyConfig{
			Rotate: true,
		},
		Sites: DefaultSites(),
	}
}

// Validate ensures all configuration values are coherent.
func (c *AppConfig) Validate() error {
	if c.IO.OutputDir == "" {
		return eris.New("config: output dir cannot be empty")
	}
	if c.IO.ValidationFile == "" {
		return eris.New("config: validation file cannot be empty")
	}
	if c.Browser.WaitTimeout <= 0 {
		return eris.New("config: browser wait timeout must be positive")
	}
	if c.Log.MaxSizeMB < 0 || c.Log.MaxBackups < 0 {
		return eris.New("config: log rotation limits cannot be negative")
	}
	if c.Crawl.Cooldown < 0 || c.Crawl.PageDelay < 0 || c.Crawl.ProductDelay < 0 {
		return eris.New("config: crawl delays cannot be negative")
	}
	if c.Crawl.ParallelSites <= 0 {
		return eris.New("config: parallel sites must be positive")
	}
	if c.Proxies.Enabled && len(c.Proxies.List) == 0 {
		return eris.New("config: proxies enabled but list is empty")
	}
	if len(c.Sites) == 0 {
		return eris.New("config: no sites configured")
	}
	for name, site := range c.Sites {
		if site == nil {
			return eris.Errorf("config: site %s is empty", name)
		}
		if err := site.Validate(); err != nil {
			return eris.Wrapf(err, "config: site %s", name)
		}
	}
	return nil
}

// Validate checks one site block.
func (s *SiteConfig) Validate() error {
	switch s.Kind {
	case KindCatalog, KindListing:
	default:
		return eris.Errorf("unknown kind %q", s.Kind)
	}

	parsed, err := url.Parse(s.BaseURL)
	if err != nil {
		return eris.Wrap(err, "invalid base URL")
	}
	if parsed.Host == "" {
		return eris.New("base URL must include a host")
	}
	if s.RootReady == "" {
		return eris.New("root ready selector cannot be empty")
	}

	for _, policy := range []string{s.OnProductError, s.OnMissingField} {
		if policy != "" && policy != PolicySkip && policy != PolicyAbort {
			return eris.Errorf("unknown failure policy %q", policy)
		}
	}
	for _, d := range []*time.Duration{s.Cooldown, s.PageDelay, s.ProductDelay} {
		if d != nil && *d < 0 {
			return eris.New("delays cannot be negative")
		}
	}

	if s.Kind == KindListing {
		if s.Listing.PageCount == "" {
			return eris.New("listing page count selector cannot be empty")
		}
		if s.Listing.MaxPages < 0 {
			return eris.New("listing max pages cannot be negative")
		}
	} else if s.ProductLinks == "" {
		return eris.New("product links selector cannot be empty")
	}

	if s.Validation.ReportKey == "" {
		return eris.New("validation report key cannot be empty")
	}
	return nil
}

// CooldownOr returns the site cooldown, falling back to def.
func (s *SiteConfig) CooldownOr(def time.Duration) time.Duration {
	return durationOr(s.Cooldown, def)
}

// PageDelayOr returns the site page delay, falling back to def.
func (s *SiteConfig) PageDelayOr(def time.Duration) time.Duration {
	return durationOr(s.PageDelay, def)
}

// ProductDelayOr returns the site product delay, falling back to def.
func (s *SiteConfig) ProductDelayOr(def time.Duration) time.Duration {
	return durationOr(s.ProductDelay, def)
}

func durationOr(d *time.Duration, def time.Duration) time.Duration {
	if d == nil {
		return def
	}
	return *d
}
