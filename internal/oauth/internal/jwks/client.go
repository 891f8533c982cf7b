// Package jwks fetches and caches JSON Web Key Sets from allow-listed
// HTTPS endpoints with conditional revalidation.
package jwks

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/lestrrat-go/httpcc"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/singleflight"

	"github.com/jamesprial/mcp-resource-auth/internal/oauth/oautherr"
)

const (
	// DefaultTTL applies when a response carries no usable max-age.
	DefaultTTL = time.Hour

	// DefaultFetchTimeout bounds each network fetch.
	DefaultFetchTimeout = 5 * time.Second

	// maxTTL caps an advertised max-age.
	maxTTL = 7 * 24 * time.Hour

	maxBodySize = 1 << 20

	tracerName = "github.com/jamesprial/mcp-resource-auth/internal/oauth/internal/jwks"
)

// Options configures a Client. Zero values select defaults.
type Options struct {
	// AllowedHosts lists the hosts key sets may be fetched from, either as
	// "host" or "host:port". An empty list rejects every URI.
	AllowedHosts []string

	DefaultTTL   time.Duration
	FetchTimeout time.Duration

	// HTTPClient performs the fetch. Its own Timeout is not relied upon.
	HTTPClient *http.Client

	// Store holds entries. Defaults to a MemoryStore.
	Store EntryStore

	Logger *slog.Logger

	// Now overrides the clock in tests.
	Now func() time.Time
}

// Client is the key-set cache. One Client is shared by every request; it is
// safe for concurrent use by multiple goroutines.
type Client struct {
	httpClient   *http.Client
	store        EntryStore
	allowedHosts map[string]struct{}
	defaultTTL   time.Duration
	fetchTimeout time.Duration
	logger       *slog.Logger
	tracer       trace.Tracer
	now          func() time.Time

	inflight singleflight.Group
}

// NewClient creates a key-set cache.
func NewClient(opts Options) *Client {
	c := &Client{
		httpClient:   opts.HTTPClient,
		store:        opts.Store,
		allowedHosts: make(map[string]struct{}, len(opts.AllowedHosts)),
		defaultTTL:   opts.DefaultTTL,
		fetchTimeout: opts.FetchTimeout,
		logger:       opts.Logger,
		tracer:       otel.Tracer(tracerName),
		now:          opts.Now,
	}
	for _, h := range opts.AllowedHosts {
		if h = strings.ToLower(strings.TrimSpace(h)); h != "" {
			c.allowedHosts[h] = struct{}{}
		}
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{}
	}
	if c.store == nil {
		c.store = NewMemoryStore()
	}
	if c.defaultTTL <= 0 {
		c.defaultTTL = DefaultTTL
	}
	if c.fetchTimeout <= 0 {
		c.fetchTimeout = DefaultFetchTimeout
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	if c.now == nil {
		c.now = time.Now
	}
	return c
}

// FetchJWKS returns the key set published at uri.
//
// A fresh cached entry is returned without network access. Otherwise one
// fetch per URI is in flight at a time and concurrent callers share its
// result. A stale entry is revalidated with If-None-Match and
// If-Modified-Since. A failed fetch leaves the existing entry untouched.
//
// Errors match oautherr.ErrJWKSFetchFailed or oautherr.ErrInvalidJWKSFormat.
func (c *Client) FetchJWKS(ctx context.Context, uri string) (*JWKS, error) {
	if err := c.checkAllowed(uri); err != nil {
		return nil, err
	}

	if entry := c.load(ctx, uri); entry.Fresh(c.now()) {
		return entry.Keys, nil
	}

	v, err, shared := c.inflight.Do(uri, func() (any, error) {
		return c.refresh(ctx, uri)
	})
	if err != nil {
		return nil, err
	}
	if shared {
		c.logger.Debug("jwks fetch shared with concurrent caller", slog.String("jwks_uri", uri))
	}
	return v.(*JWKS), nil
}

func (c *Client) refresh(ctx context.Context, uri string) (*JWKS, error) {
	// Another flight may have completed since the caller's freshness check.
	prev := c.load(ctx, uri)
	if prev.Fresh(c.now()) {
		return prev.Keys, nil
	}

	// Detached from the caller; joiners share this fetch.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.fetchTimeout)
	defer cancel()

	ctx, span := c.tracer.Start(ctx, "jwks.fetch", trace.WithAttributes(
		attribute.String("jwks.uri", uri),
		attribute.Bool("jwks.revalidate", prev != nil),
	))
	defer span.End()

	next, err := c.fetch(ctx, uri, prev)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "jwks fetch failed")
		c.logger.Warn("jwks fetch failed",
			slog.String("jwks_uri", uri),
			slog.String("reason", oautherr.Reason(err)),
			slog.String("error", err.Error()),
			slog.Bool("stale_entry_kept", prev != nil),
		)
		return nil, err
	}

	if err := c.store.Store(ctx, uri, next); err != nil {
		c.logger.Warn("jwks cache store failed",
			slog.String("jwks_uri", uri),
			slog.String("error", err.Error()),
		)
	}

	c.logger.Debug("jwks refreshed",
		slog.String("jwks_uri", uri),
		slog.Int("keys", len(next.Keys.Keys)),
		slog.Time("expires_at", next.ExpiresAt),
	)
	return next.Keys, nil
}

// fetch performs one GET, conditional when prev is set, and returns the
// entry that should replace prev.
func (c *Client) fetch(ctx context.Context, uri string, prev *Entry) (*Entry, error) {
	const op = "FetchJWKS"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, uri, nil)
	if err != nil {
		return nil, oautherr.NewJWKSFetchError(op, uri, oautherr.ReasonTransport, err)
	}
	req.Header.Set("Accept", "application/json")
	if prev != nil {
		if prev.ETag != "" {
			req.Header.Set("If-None-Match", prev.ETag)
		}
		if prev.LastModified != "" {
			req.Header.Set("If-Modified-Since", prev.LastModified)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, oautherr.NewJWKSFetchError(op, uri, oautherr.ReasonTransport, err)
	}
	defer func() { _ = resp.Body.Close() }()

	switch resp.StatusCode {
	case http.StatusNotModified:
		if prev == nil {
			return nil, oautherr.NewJWKSFetchError(op, uri, oautherr.ReasonHTTPStatus,
				errors.New("304 without a cached entry")).WithContext("status", resp.StatusCode)
		}
		next := *prev
		next.ExpiresAt = c.now().Add(c.ttl(resp.Header))
		if etag := resp.Header.Get("ETag"); etag != "" {
			next.ETag = etag
		}
		if lm := resp.Header.Get("Last-Modified"); lm != "" {
			next.LastModified = lm
		}
		return &next, nil

	case http.StatusOK:
		body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize+1))
		if err != nil {
			return nil, oautherr.NewJWKSFetchError(op, uri, oautherr.ReasonTransport, err)
		}
		if len(body) > maxBodySize {
			return nil, oautherr.NewInvalidJWKSFormatError(op, uri,
				fmt.Errorf("body exceeds %d bytes", maxBodySize))
		}
		keys, err := parseJWKS(body)
		if err != nil {
			return nil, oautherr.NewInvalidJWKSFormatError(op, uri, err)
		}
		return &Entry{
			Keys:         keys,
			ETag:         resp.Header.Get("ETag"),
			LastModified: resp.Header.Get("Last-Modified"),
			ExpiresAt:    c.now().Add(c.ttl(resp.Header)),
		}, nil

	default:
		return nil, oautherr.NewJWKSFetchError(op, uri, oautherr.ReasonHTTPStatus,
			fmt.Errorf("jwks endpoint returned status %d", resp.StatusCode)).
			WithContext("status", resp.StatusCode)
	}
}

// ttl returns the Cache-Control max-age, or the default TTL when the header
// is absent, unparseable or has no max-age.
func (c *Client) ttl(h http.Header) time.Duration {
	cc := h.Get("Cache-Control")
	if cc == "" {
		return c.defaultTTL
	}
	dir, err := httpcc.ParseResponse(cc)
	if err != nil {
		return c.defaultTTL
	}
	maxAge, ok := dir.MaxAge()
	if !ok {
		return c.defaultTTL
	}
	if maxAge > uint64(maxTTL/time.Second) {
		return maxTTL
	}
	return time.Duration(maxAge) * time.Second
}

func (c *Client) checkAllowed(uri string) error {
	u, err := url.Parse(uri)
	if err != nil {
		return oautherr.NewJWKSFetchError("FetchJWKS", uri, oautherr.ReasonHostNotAllowed, err)
	}
	if u.Scheme != "https" {
		return oautherr.NewJWKSFetchError("FetchJWKS", uri, oautherr.ReasonHostNotAllowed,
			fmt.Errorf("scheme %q is not https", u.Scheme))
	}
	host := strings.ToLower(u.Host)
	if _, ok := c.allowedHosts[host]; ok && host != "" {
		return nil
	}
	if _, ok := c.allowedHosts[strings.ToLower(u.Hostname())]; ok {
		return nil
	}
	return oautherr.NewJWKSFetchError("FetchJWKS", uri, oautherr.ReasonHostNotAllowed,
		fmt.Errorf("host %q is not allow-listed", u.Host))
}

// load reads the current entry. A store failure is treated as a miss so a
// Redis outage degrades to direct fetches.
func (c *Client) load(ctx context.Context, uri string) *Entry {
	entry, err := c.store.Load(ctx, uri)
	if err != nil {
		c.logger.Warn("jwks cache load failed",
			slog.String("jwks_uri", uri),
			slog.String("error", err.Error()),
		)
		return nil
	}
	return entry
}

// parseJWKS requires a JSON object whose keys member is an array.
// Individual keys are checked when they are used.
func parseJWKS(body []byte) (*JWKS, error) {
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("body is not a JSON object: %w", err)
	}
	raw, ok := doc["keys"]
	if !ok {
		return nil, errors.New("missing keys member")
	}
	if trimmed := bytes.TrimSpace(raw); len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, errors.New("keys is not an array")
	}
	var keys []JWK
	if err := json.Unmarshal(raw, &keys); err != nil {
		return nil, fmt.Errorf("decode keys: %w", err)
	}
	return &JWKS{Keys: keys}, nil
}
