package recommender

import (
	"net/http"
	"strings"
	"time"
)

// rapidAPITransport adds the RapidAPI credential headers to every request.
type rapidAPITransport struct {
	base http.RoundTripper
	host string
	key  string
}

func (t *rapidAPITransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	if t.host != "" {
		req.Header.Set("x-rapidapi-host", t.host)
	}
	if t.key != "" {
		req.Header.Set("x-rapidapi-key", t.key)
	}
	return t.base.RoundTrip(req)
}

// newHTTPClient builds the client of one upstream; timeout 0 means none.
func newHTTPClient(timeout time.Duration, wrap func(http.RoundTripper) http.RoundTripper) *http.Client {
	var rt http.RoundTripper = http.DefaultTransport
	if wrap != nil {
		rt = wrap(rt)
	}
	return &http.Client{Timeout: timeout, Transport: rt}
}

func trimBase(base string) string {
	return strings.TrimRight(strings.TrimSpace(base), "/")
}
