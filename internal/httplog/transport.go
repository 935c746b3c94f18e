// Package httplog wraps outbound HTTP clients with debug request logging.
package httplog

import (
	"net/http"
	"time"

	"github.com/kedare/reeltrend/internal/logger"
	"github.com/kedare/reeltrend/internal/version"
)

// Transport logs every round trip at debug level under a service label.
type Transport struct {
	Label string
	Base  http.RoundTripper
}

func (t Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	base := t.Base
	if base == nil {
		base = http.DefaultTransport
	}

	if req.Header.Get("User-Agent") == "" {
		req = req.Clone(req.Context())
		req.Header.Set("User-Agent", version.UserAgent())
	}

	start := time.Now()
	resp, err := base.RoundTrip(req)
	elapsed := time.Since(start)

	if err != nil {
		logger.Log.Debugf("%s HTTP %s %s failed after %s: %v", t.Label, req.Method, redact(req), elapsed, err)

		return nil, err
	}

	logger.Log.Debugf("%s HTTP %s %s -> %d (%s)", t.Label, req.Method, redact(req), resp.StatusCode, elapsed)

	return resp, nil
}

// Attach wraps client's transport in place.
func Attach(client *http.Client, label string) {
	if client == nil {
		return
	}

	client.Transport = Transport{Label: label, Base: client.Transport}
}

// NewClient returns a logging client with the given timeout.
func NewClient(label string, timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	client := &http.Client{Timeout: timeout}
	Attach(client, label)

	return client
}

// redact drops credentials that some APIs accept as query parameters.
func redact(req *http.Request) string {
	u := *req.URL
	q := u.Query()

	if q.Has("api_key") {
		q.Set("api_key", "REDACTED")
		u.RawQuery = q.Encode()
	}

	return u.String()
}
