// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package media reads the play length of video files so rotation items
// can be capped at the length of their source.
package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"time"

	"github.com/abema/go-mp4"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"

	"signage/internal/storage"
)

const (
	// DefaultTimeout bounds one probe, fetch included.
	DefaultTimeout = 15 * time.Second

	// DefaultMaxBytes caps how much of a file is fetched. Files whose
	// movie header sits past the cap report an unknown duration.
	DefaultMaxBytes = 32 << 20
)

// ErrNoDuration is returned when a container carries no usable movie
// header.
var ErrNoDuration = errors.New("media: no duration in container")

// ObjectReader reads objects from the media bucket.
type ObjectReader interface {
	KeyFromURL(rawURL string) (string, bool)
	Download(ctx context.Context, key string, maxBytes int64) ([]byte, error)
}

// Option configures a Prober.
type Option func(*Prober)

// WithStorage makes URLs of the media bucket load through S3.
func WithStorage(s ObjectReader) Option {
	return func(p *Prober) { p.storage = s }
}

// WithHTTPClient sets the client used for non-storage URLs. It replaces
// the default client and with it the public-address guard.
func WithHTTPClient(c *http.Client) Option {
	return func(p *Prober) { p.http = c }
}

// WithTimeout sets the per-probe timeout.
func WithTimeout(d time.Duration) Option {
	return func(p *Prober) { p.timeout = d }
}

// WithMaxBytes caps the fetched size.
func WithMaxBytes(n int64) Option {
	return func(p *Prober) { p.maxBytes = n }
}

// WithRate limits outbound fetches to perSecond with the given burst.
func WithRate(perSecond float64, burst int) Option {
	return func(p *Prober) { p.limiter = rate.NewLimiter(rate.Limit(perSecond), burst) }
}

// Prober measures media durations.
type Prober struct {
	storage  ObjectReader
	http     *http.Client
	limiter  *rate.Limiter
	timeout  time.Duration
	maxBytes int64
	group    singleflight.Group
}

// NewProber creates a prober with the given options.
func NewProber(opts ...Option) *Prober {
	p := &Prober{
		http:     PublicHTTPClient(),
		timeout:  DefaultTimeout,
		maxBytes: DefaultMaxBytes,
		limiter:  rate.NewLimiter(rate.Inf, 1),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Duration returns the play length of the media at url in whole seconds,
// rounded to nearest. Any failure yields 0, which callers treat as
// "unknown". Concurrent probes of the same URL share one fetch.
func (p *Prober) Duration(ctx context.Context, url string) int {
	if url == "" {
		return 0
	}
	v, err, shared := p.group.Do(url, func() (any, error) {
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), p.timeout)
		defer cancel()
		return p.probe(ctx, url)
	})
	if err != nil {
		slog.Warn("media probe failed", "url", url, "error", err)
		return 0
	}
	if shared {
		slog.Debug("media probe shared", "url", url)
	}
	return v.(int)
}

func (p *Prober) probe(ctx context.Context, url string) (int, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return 0, fmt.Errorf("rate limit: %w", err)
	}
	data, err := p.fetch(ctx, url)
	if err != nil {
		return 0, err
	}
	return ContainerSeconds(data)
}

func (p *Prober) fetch(ctx context.Context, url string) ([]byte, error) {
	if p.storage != nil {
		if key, ok := p.storage.KeyFromURL(url); ok {
			return p.storage.Download(ctx, key, p.maxBytes)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	resp, err := p.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: status %d", url, resp.StatusCode)
	}
	if p.maxBytes > 0 && resp.ContentLength > p.maxBytes {
		return nil, fmt.Errorf("fetch %s: %w", url, storage.ErrTooLarge)
	}
	return storage.ReadCapped(resp.Body, p.maxBytes)
}

// ContainerSeconds reads the movie header of an MP4/MOV file and returns
// its duration in whole seconds, rounded to nearest.
func ContainerSeconds(data []byte) (int, error) {
	boxes, err := mp4.ExtractBoxWithPayload(bytes.NewReader(data), nil, mp4.BoxPath{mp4.BoxTypeMoov(), mp4.BoxTypeMvhd()})
	if err != nil {
		return 0, fmt.Errorf("parse container: %w", err)
	}
	if len(boxes) == 0 {
		return 0, ErrNoDuration
	}
	mvhd, ok := boxes[0].Payload.(*mp4.Mvhd)
	if !ok || mvhd.Timescale == 0 {
		return 0, ErrNoDuration
	}
	secs := float64(mvhd.GetDuration()) / float64(mvhd.Timescale)
	return int(math.Round(secs)), nil
}
