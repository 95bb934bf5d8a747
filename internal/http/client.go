// Package http constructs the HTTP clients used for all archive fetches.
package http

import (
	"crypto/tls"
	nethttp "net/http"
	"os"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"golang.org/x/net/http2"

	"github.com/helm-tools/helmdd/internal/logging"
)

// Request timeout and retry tuning for the public archive. The archive serves
// many small JSON objects, so per-request timeouts are short and retries cheap.
const (
	RequestTimeout = 30 * time.Second

	retryMax     = 5
	retryWaitMin = 500 * time.Millisecond
	retryWaitMax = 15 * time.Second
)

// retryLogger adapts our logger to the retryablehttp.LeveledLogger interface.
// Only warnings and errors are surfaced; retryablehttp's per-request debug
// chatter would drown the progress output.
type retryLogger struct {
	log *logging.Logger
}

func (l *retryLogger) Error(msg string, keysAndValues ...interface{}) {
	l.log.Error().Fields(keysAndValues).Msg(msg)
}

func (l *retryLogger) Warn(msg string, keysAndValues ...interface{}) {
	l.log.Warn().Fields(keysAndValues).Msg(msg)
}

func (l *retryLogger) Info(msg string, keysAndValues ...interface{}) {}
func (l *retryLogger) Debug(msg string, keysAndValues ...interface{}) {}

// NewClient creates an HTTP client with retry support for archive fetches.
//
// The transport is tuned for many small sequential or moderately concurrent
// GETs against a single storage host: a modest connection pool with keep-alive
// reuse, HTTP/2 where the server supports it, and proxy settings taken from
// the environment (HTTP_PROXY, HTTPS_PROXY, NO_PROXY).
//
// Transient failures (5xx, connection resets, timeouts) are retried with
// exponential backoff by retryablehttp; 4xx responses are returned as-is so
// callers can persist the error body.
func NewClient(logger *logging.Logger) *nethttp.Client {
	tr := &nethttp.Transport{
		Proxy:                 nethttp.ProxyFromEnvironment,
		MaxIdleConns:          64,
		MaxIdleConnsPerHost:   32,
		MaxConnsPerHost:       32,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		ForceAttemptHTTP2:     true,
	}
	_ = http2.ConfigureTransport(tr)

	// Runtime toggle for HTTP/2, useful when a proxy mangles multiplexed streams.
	if os.Getenv("DISABLE_HTTP2") == "true" {
		tr.ForceAttemptHTTP2 = false
		tr.TLSNextProto = make(map[string]func(string, *tls.Conn) nethttp.RoundTripper)
	}

	retryClient := retryablehttp.NewClient()
	retryClient.HTTPClient = &nethttp.Client{
		Transport: tr,
		Timeout:   RequestTimeout,
	}
	retryClient.RetryMax = retryMax
	retryClient.RetryWaitMin = retryWaitMin
	retryClient.RetryWaitMax = retryWaitMax
	retryClient.Logger = &retryLogger{log: logger}

	return retryClient.StandardClient()
}
