package modarchive

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/billmal071/trackermeta/internal/anchors"
	"github.com/billmal071/trackermeta/internal/config"
	"github.com/billmal071/trackermeta/internal/logger"
	"github.com/billmal071/trackermeta/internal/retry"
)

const (
	// DefaultBaseURL is the archive's web front
	DefaultBaseURL = "https://modarchive.org"
	// MaxSearchResults is the size of the first (and only) page of search results
	MaxSearchResults = 40

	defaultUserAgent = config.AppName
	defaultTimeout   = 60 * time.Second
)

// Client resolves filenames and fetches module details from the Mod Archive.
// A Client is safe for concurrent use.
type Client struct {
	baseURL   string
	transport Transport
	policy    retry.Policy
	offsets   anchors.Offsets
	markers   anchors.Markers
	log       logger.Logger
	now       func() time.Time
}

// Option configures a Client
type Option func(*Client)

// WithBaseURL points the client at another archive host
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		if baseURL != "" {
			c.baseURL = strings.TrimRight(baseURL, "/")
		}
	}
}

// WithTransport replaces the HTTP transport
func WithTransport(t Transport) Option {
	return func(c *Client) { c.transport = t }
}

// WithRetryPolicy replaces the retry strategy
func WithRetryPolicy(p retry.Policy) Option {
	return func(c *Client) { c.policy = p }
}

// WithOffsets sets the anchor offsets, normally the result of anchors.LoadOrDefault
func WithOffsets(o anchors.Offsets) Option {
	return func(c *Client) { c.offsets = o }
}

// WithMarkers sets the page markers
func WithMarkers(m anchors.Markers) Option {
	return func(c *Client) { c.markers = m }
}

// WithLogger sets the logger
func WithLogger(l logger.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.log = l
		}
	}
}

// WithClock sets the clock used for ScrapedAt
func WithClock(now func() time.Time) Option {
	return func(c *Client) { c.now = now }
}

// NewClient creates a client with compiled-in defaults, adjusted by opts
func NewClient(opts ...Option) *Client {
	c := &Client{
		baseURL:   DefaultBaseURL,
		transport: NewCollyTransport(defaultUserAgent, defaultTimeout),
		policy: retry.Bounded{
			MaxRetries: 3,
			Backoff: retry.Exponential(retry.BackoffConfig{
				BaseDelay:  500 * time.Millisecond,
				MaxDelay:   30 * time.Second,
				Multiplier: 2,
			}),
		},
		offsets: anchors.Default(),
		markers: anchors.DefaultMarkers(),
		log:     logger.NewNop(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	if err := c.offsets.Validate(); err != nil {
		c.log.Warn("Invalid offsets, using defaults", logger.Error(err))
		c.offsets = anchors.Default()
	}
	return c
}

// NewClientFromConfig creates a client from application settings.
// The offsets are passed in so they are loaded once per process by the caller.
func NewClientFromConfig(cfg *config.Config, offsets anchors.Offsets, log logger.Logger) *Client {
	if log == nil {
		log = logger.NewNop()
	}
	return NewClient(
		WithBaseURL(cfg.Archive.BaseURL),
		WithTransport(NewCollyTransport(cfg.Network.UserAgent, cfg.Network.Timeout)),
		WithRetryPolicy(retry.FromConfig(cfg.Network, log)),
		WithOffsets(offsets),
		WithMarkers(anchors.MarkersFromConfig(cfg.Markers)),
		WithLogger(log),
	)
}

// Offsets returns the base anchor offsets, before any nomination shift
func (c *Client) Offsets() anchors.Offsets {
	return c.offsets
}

// fetch GETs the archive's index endpoint through the retry policy
func (c *Client) fetch(ctx context.Context, params url.Values) (string, error) {
	endpoint := c.baseURL + "/index.php"

	var body string
	err := c.policy.Execute(ctx, func() error {
		b, err := c.transport.Fetch(ctx, endpoint, params)
		if err != nil {
			c.log.Debug("Request failed", logger.String("url", endpoint), logger.Error(err))
			if isMissing(err) {
				return retry.Permanent(err)
			}
			return err
		}
		body = b
		return nil
	})
	return body, err
}

// isMissing reports whether err carries a status saying the page does not exist
func isMissing(err error) bool {
	var te *TransportError
	if !errors.As(err, &te) {
		return false
	}
	return te.Status == http.StatusNotFound || te.Status == http.StatusGone
}
