package client

import (
	"net/http"
	"net/url"
	"time"

	"github.com/Belphemur/EpisodeSubs/internal/config"
)

// NewHTTPClient builds the HTTP client shared by every remote source: optional
// proxy, transparent response decompression and the configured timeout.
func NewHTTPClient(cfg *config.Config) *http.Client {
	timeout := config.Duration("timeout", cfg.ClientTimeout, 30*time.Second)

	// Clone DefaultTransport to preserve all its settings (timeouts, connection pooling, HTTP/2, etc.)
	baseTransport := http.DefaultTransport.(*http.Transport).Clone()

	if cfg.ProxyConnectionString != "" {
		proxyURL, err := url.Parse(cfg.ProxyConnectionString)
		if err != nil {
			logger := config.GetLogger()
			logger.Warn().Err(err).Str("proxy", cfg.ProxyConnectionString).Msg("Invalid proxy URL, continuing without proxy")
		} else {
			baseTransport.Proxy = http.ProxyURL(proxyURL)
		}
	}

	return &http.Client{
		Timeout:   timeout,
		Transport: newCompressionTransport(baseTransport),
	}
}
