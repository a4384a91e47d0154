package fetch

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
)

// maxBodySize caps how much of a response is accepted, pages and images
// alike.
const maxBodySize = 50 << 20

// Client fetches pages and images over HTTP. Redirects are followed and
// the configured User-Agent is sent on every request.
type Client struct {
	http *resty.Client
}

// New creates a client with the given User-Agent and per-request timeout.
func New(userAgent string, timeout time.Duration) *Client {
	client := resty.New()
	client.SetHeader("User-Agent", userAgent)
	client.SetTimeout(timeout)
	client.SetRedirectPolicy(resty.FlexibleRedirectPolicy(10))
	return &Client{http: client}
}

// Fetch retrieves url and returns the full response body. Any non-2xx
// status is an error.
func (c *Client) Fetch(ctx context.Context, url string) ([]byte, error) {
	body, _, err := c.get(ctx, url)
	return body, err
}

// FetchPage retrieves url like Fetch but additionally requires an HTML
// content type, so a misconfigured page URL fails before extraction.
func (c *Client) FetchPage(ctx context.Context, url string) ([]byte, error) {
	body, header, err := c.get(ctx, url)
	if err != nil {
		return nil, err
	}

	contentType := header.Get("Content-Type")
	if contentType != "" {
		mediatype, _, err := mime.ParseMediaType(contentType)
		if err != nil {
			return nil, fmt.Errorf("parse content type %q: %w", contentType, err)
		}
		if mediatype != "text/html" && mediatype != "application/xhtml+xml" {
			return nil, fmt.Errorf("page has media type %s, not html", mediatype)
		}
	}
	return body, nil
}

// get streams the response body through a limited reader, so an
// oversized response fails without ever being buffered whole.
func (c *Client) get(ctx context.Context, url string) ([]byte, http.Header, error) {
	res, err := c.http.R().SetContext(ctx).SetDoNotParseResponse(true).Get(url)
	if err != nil {
		return nil, nil, err
	}
	raw := res.RawBody()
	defer raw.Close()

	if res.StatusCode() < 200 || res.StatusCode() >= 300 {
		return nil, nil, fmt.Errorf("http status %d", res.StatusCode())
	}

	body, err := readAllLimit(raw, maxBodySize)
	if err != nil {
		return nil, nil, err
	}
	return body, res.Header(), nil
}

// readAllLimit reads at most limit bytes from r.
func readAllLimit(r io.Reader, limit int64) ([]byte, error) {
	var buf bytes.Buffer
	n, err := buf.ReadFrom(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, err
	}
	if n > limit {
		return nil, fmt.Errorf("response larger than %d bytes", limit)
	}
	return buf.Bytes(), nil
}
