// Package httpfetch serves rule sources named by http:// and https:// URLs.
package httpfetch

import (
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/crawl/go-vnnorm/root"
	"github.com/pkg/errors"
)

const DefaultUserAgent = "vnnorm httpfetch/1.0"

var DefaultConnectTimeout = 10 * time.Second
var DefaultReadTimeout = 20 * time.Second

// DefaultHTTPClient bounds connection setup and the whole request.
var DefaultHTTPClient = &http.Client{
	Transport: &http.Transport{
		DialContext:           (&net.Dialer{Timeout: DefaultConnectTimeout}).DialContext,
		ResponseHeaderTimeout: DefaultConnectTimeout,
	},
	Timeout: DefaultConnectTimeout + DefaultReadTimeout,
}

// An HTTPError is a non-2xx response to a rule fetch.
type HTTPError struct {
	StatusCode int
	Response   *http.Response
}

func (err *HTTPError) Error() string {
	req := err.Response.Request
	return fmt.Sprint(req.Method, " ", req.URL, " failed: ", err.StatusCode)
}

// Unwrap makes 404 and 410 responses count as root.ErrNotFound.
func (err *HTTPError) Unwrap() error {
	if err.StatusCode == http.StatusNotFound || err.StatusCode == http.StatusGone {
		return root.ErrNotFound
	}
	return nil
}

// IsURL reports whether id is an http or https URL.
func IsURL(id string) bool {
	return strings.HasPrefix(id, "http://") || strings.HasPrefix(id, "https://")
}

// A Fetcher opens URL identifiers with an HTTP GET.
type Fetcher struct {
	HTTPClient *http.Client
	UserAgent  string
}

// New returns a Fetcher using DefaultHTTPClient.
func New() *Fetcher {
	return &Fetcher{
		HTTPClient: DefaultHTTPClient,
		UserAgent:  DefaultUserAgent,
	}
}

// Open fetches the URL id. Identifiers that are not URLs are reported as not
// found so that a root.Chain moves on.
func (h *Fetcher) Open(id string) (io.ReadCloser, error) {
	if !IsURL(id) {
		return nil, errors.Wrapf(root.ErrNotFound, "%s is not a URL", id)
	}
	req, err := http.NewRequest("GET", id, nil)
	if err != nil {
		return nil, errors.Wrapf(err, "fetch %s", id)
	}
	req.Header.Set("User-Agent", h.UserAgent)
	resp, err := h.HTTPClient.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "fetch %s", id)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		resp.Body.Close()
		return nil, &HTTPError{StatusCode: resp.StatusCode, Response: resp}
	}
	return resp.Body, nil
}
