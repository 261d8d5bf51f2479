package collector

import (
	"crypto/tls"
	"log/slog"
	"net/http"
	"net/url"
	"time"
)

// ClientOptions configures the HTTP client shared by the providers.
type ClientOptions struct {
	Proxy   string
	Timeout time.Duration
	// InsecureSkipVerify disables TLS certificate checks. Only for networks
	// that intercept TLS with a private CA; never the default.
	InsecureSkipVerify bool
}

func newHTTPClient(opts ClientOptions) *http.Client {
	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
	}
	if opts.Proxy != "" {
		if u, err := url.Parse(opts.Proxy); err == nil {
			transport.Proxy = http.ProxyURL(u)
		} else {
			slog.Warn("ignoring invalid proxy url", "proxy", opts.Proxy, "error", err)
		}
	}
	if opts.InsecureSkipVerify {
		slog.Warn("market data TLS verification disabled")
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec // explicit opt-out
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &http.Client{
		Timeout:   timeout,
		Transport: transport,
	}
}
