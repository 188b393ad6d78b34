package proxy

import (
	"math/rand"
	"net/url"
	"sync/atomic"

	"github.com/rotisserie/eris"

	"github.com/williampepple1/catalog-crawler/internal/config"
)

// Manager hands out the proxy server for each new browser session
type Manager struct {
	Config *config.ProxyConfig
	next   uint32
}

// NewManager creates a new proxy manager
func NewManager(config *config.ProxyConfig) *Manager {
	return &Manager{
		Config: config,
	}
}

// GetProxyURL returns a proxy URL from the configuration. Sessions rotate
// randomly when Rotate is set, otherwise round-robin through the list.
func (m *Manager) GetProxyURL() (*url.URL, error) {
	if m == nil || m.Config == nil || !m.Config.Enabled || len(m.Config.List) == 0 {
		return nil, nil
	}

	var proxyStr string
	if m.Config.Rotate && len(m.Config.List) > 1 {
		proxyStr = m.Config.List[rand.Intn(len(m.Config.List))]
	} else {
		index := atomic.AddUint32(&m.next, 1) - 1
		proxyStr = m.Config.List[index%uint32(len(m.Config.List))]
	}

	proxyURL, err := url.Parse(proxyStr)
	if err != nil {
		return nil, eris.Wrapf(err, "proxy: parse %q", proxyStr)
	}
	if proxyURL.Host == "" {
		return nil, eris.Errorf("proxy: %q has no host", proxyStr)
	}
	return proxyURL, nil
}

// Server returns the value for Chrome's --proxy-server flag, or "" when
// proxies are disabled or unusable. Chrome does not accept credentials in
// the flag, so any userinfo is dropped.
func (m *Manager) Server() string {
	proxyURL, err := m.GetProxyURL()
	if err != nil || proxyURL == nil {
		return ""
	}
	scheme := proxyURL.Scheme
	if scheme == "" {
		scheme = "http"
	}
	return scheme + "://" + proxyURL.Host
}
