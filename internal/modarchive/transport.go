package modarchive

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"time"

	"github.com/gocolly/colly/v2"
)

// Transport performs a single GET and returns the response body as text
type Transport interface {
	Fetch(ctx context.Context, rawURL string, params url.Values) (string, error)
}

// CollyTransport fetches pages with a colly collector
type CollyTransport struct {
	collector *colly.Collector
}

// NewCollyTransport creates a transport with the given user agent and request timeout
func NewCollyTransport(userAgent string, timeout time.Duration) *CollyTransport {
	collector := colly.NewCollector(
		colly.UserAgent(userAgent),
		// retries and repeated lookups hit the same URL
		colly.AllowURLRevisit(),
		// status checks happen in Fetch so that every 2xx counts as success
		colly.ParseHTTPErrorResponse(),
	)
	if timeout > 0 {
		collector.SetRequestTimeout(timeout)
	}
	return &CollyTransport{collector: collector}
}

// Fetch visits rawURL with params merged into its query string.
// Every failure, including a status outside 2xx, is returned as a *TransportError.
// ctx is checked before the request starts; colly cannot abort a request
// already in flight, so that one is bounded by the request timeout instead.
func (t *CollyTransport) Fetch(ctx context.Context, rawURL string, params url.Values) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", &TransportError{URL: rawURL, Err: err}
	}

	target, err := buildURL(rawURL, params)
	if err != nil {
		return "", &TransportError{URL: rawURL, Err: err}
	}

	// a clone shares the HTTP backend but gets its own callbacks,
	// so concurrent fetches never see each other's responses
	collector := t.collector.Clone()

	var body string
	var status int
	collector.OnResponse(func(r *colly.Response) {
		status = r.StatusCode
		body = string(r.Body)
	})
	collector.OnError(func(r *colly.Response, _ error) {
		if r != nil {
			status = r.StatusCode
		}
	})

	if err := collector.Visit(target); err != nil {
		return "", &TransportError{URL: target, Status: status, Err: err}
	}
	collector.Wait()

	if status < http.StatusOK || status >= http.StatusMultipleChoices {
		return "", &TransportError{URL: target, Status: status, Err: errors.New(http.StatusText(status))}
	}
	return body, nil
}

func buildURL(rawURL string, params url.Values) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}
	if len(params) > 0 {
		q := u.Query()
		for key, values := range params {
			for _, v := range values {
				q.Add(key, v)
			}
		}
		u.RawQuery = q.Encode()
	}
	return u.String(), nil
}
