package util

import (
	"net/http"
	"net/url"

	"golang.org/x/net/http/httpproxy"
)

// NewTransport returns an HTTP transport for provider calls. Explicit proxy
// settings replace the environment as a whole; with none set the usual
// HTTP_PROXY, HTTPS_PROXY and NO_PROXY variables apply.
func NewTransport(httpProxy, httpsProxy, noProxy string) *http.Transport {
	t := http.DefaultTransport.(*http.Transport).Clone()
	t.Proxy = proxyFunc(httpProxy, httpsProxy, noProxy)
	return t
}

func proxyFunc(httpProxy, httpsProxy, noProxy string) func(*http.Request) (*url.URL, error) {
	cfg := httpproxy.FromEnvironment()
	if httpProxy != "" || httpsProxy != "" {
		cfg = &httpproxy.Config{
			HTTPProxy:  httpProxy,
			HTTPSProxy: httpsProxy,
			NoProxy:    noProxy,
		}
		if cfg.HTTPSProxy == "" {
			cfg.HTTPSProxy = httpProxy
		}
	}
	resolve := cfg.ProxyFunc()
	return func(req *http.Request) (*url.URL, error) {
		return resolve(req.URL)
	}
}
