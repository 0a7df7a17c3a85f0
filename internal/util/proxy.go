// Package util holds small shared helpers for HTTP client construction.
package util

import (
	"net/http"
	"net/url"
)

// NewTransport builds an HTTP transport honoring explicit proxy URLs.
// With neither set, standard proxy environment variables apply.
func NewTransport(httpProxy, httpsProxy string) *http.Transport {
	return &http.Transport{Proxy: proxyFunc(httpProxy, httpsProxy)}
}

func proxyFunc(httpProxy, httpsProxy string) func(*http.Request) (*url.URL, error) {
	if httpProxy == "" && httpsProxy == "" {
		return http.ProxyFromEnvironment
	}

	return func(req *http.Request) (*url.URL, error) {
		if req.URL.Scheme == "https" && httpsProxy != "" {
			return url.Parse(httpsProxy)
		}
		if httpProxy != "" {
			return url.Parse(httpProxy)
		}
		return http.ProxyFromEnvironment(req)
	}
}
