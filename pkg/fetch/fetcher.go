// Package fetch retrieves ranked title lists from configured sources: the
// NewsNow-style hot-list JSON API and plain RSS feeds. It is the I/O shell in
// front of the snapshot pipeline; a failed source never aborts the run, it is
// recorded in the failure list instead.
package fetch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-pkgz/lgr"
	"github.com/go-pkgz/repeater/v2"
	"github.com/mmcdole/gofeed"

	"github.com/askort/hotwords/pkg/domain"
)

// Source is one origin to crawl
type Source struct {
	ID    string
	Alias string
	Kind  string // "api" or "rss"
	URL   string // feed URL for rss sources
}

// Config holds fetcher settings
type Config struct {
	APIBase   string
	Timeout   time.Duration
	Interval  time.Duration // pause between sources
	Retries   int
	ProxyURL  string
	UserAgent string
}

// Fetcher crawls sources sequentially with retry and inter-request pauses
type Fetcher struct {
	client    *http.Client
	apiBase   string
	interval  time.Duration
	retries   int
	userAgent string
}

// Result is the outcome of one crawl: one snapshot per successful source and
// a failure entry per source that produced nothing
type Result struct {
	Snapshots []*domain.SourceSnapshot
	Failures  domain.FailureList
}

// apiResponse is the hot-list API payload
type apiResponse struct {
	Status string `json:"status"`
	Items  []struct {
		Title     string `json:"title"`
		URL       string `json:"url"`
		MobileURL string `json:"mobileUrl"`
	} `json:"items"`
}

// New creates a fetcher from the given config
func New(cfg Config) (*Fetcher, error) {
	transport := &http.Transport{
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
	}
	if cfg.ProxyURL != "" {
		proxyURL, err := url.Parse(cfg.ProxyURL)
		if err != nil {
			return nil, fmt.Errorf("parse proxy url: %w", err)
		}
		transport.Proxy = http.ProxyURL(proxyURL)
	}

	retries := cfg.Retries
	if retries < 1 {
		retries = 3
	}

	return &Fetcher{
		client:    &http.Client{Timeout: cfg.Timeout, Transport: transport},
		apiBase:   strings.TrimRight(cfg.APIBase, "/"),
		interval:  cfg.Interval,
		retries:   retries,
		userAgent: cfg.UserAgent,
	}, nil
}

// CrawlAll fetches every source in order, pausing between requests with a
// little jitter so the crawl does not look like a metronome. Failures are
// collected, never fatal.
func (f *Fetcher) CrawlAll(ctx context.Context, sources []Source, timeLabel string) Result {
	var res Result

	for i, src := range sources {
		snap, err := f.FetchSource(ctx, src, timeLabel)
		if err != nil {
			lgr.Printf("[WARN] fetch %s failed: %v", src.ID, err)
			res.Failures = append(res.Failures, domain.Failure{SourceID: src.ID, Alias: src.Alias})
		} else {
			lgr.Printf("[INFO] fetched %s: %d titles", src.ID, len(snap.Order))
			res.Snapshots = append(res.Snapshots, snap)
		}

		if i < len(sources)-1 {
			pause := f.interval + time.Duration(rand.Intn(31)-10)*time.Millisecond //nolint:gosec // jitter only
			if pause < 50*time.Millisecond {
				pause = 50 * time.Millisecond
			}
			select {
			case <-ctx.Done():
				return res
			case <-time.After(pause):
			}
		}
	}
	return res
}

// FetchSource retrieves one source and builds its snapshot
func (f *Fetcher) FetchSource(ctx context.Context, src Source, timeLabel string) (*domain.SourceSnapshot, error) {
	switch src.Kind {
	case "rss":
		return f.fetchRSS(ctx, src, timeLabel)
	default:
		return f.fetchAPI(ctx, src, timeLabel)
	}
}

// fetchAPI calls the hot-list endpoint with backoff retry. The API reports
// "success" for fresh data and "cache" for cached, both are usable.
func (f *Fetcher) fetchAPI(ctx context.Context, src Source, timeLabel string) (*domain.SourceSnapshot, error) {
	reqURL := fmt.Sprintf("%s/api/s?id=%s&latest", f.apiBase, url.QueryEscape(src.ID))

	var payload apiResponse
	retrier := repeater.NewBackoff(f.retries, 500*time.Millisecond, repeater.WithMaxDelay(5*time.Second))
	err := retrier.Do(ctx, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
		if err != nil {
			return err
		}
		req.Header.Set("User-Agent", f.userAgent)
		addBrowserHeaders(req)

		resp, err := f.client.Do(req)
		if err != nil {
			return fmt.Errorf("request %s: %w", src.ID, err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("request %s: unexpected status code %d", src.ID, resp.StatusCode)
		}

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("read %s response: %w", src.ID, err)
		}
		payload = apiResponse{}
		if err := json.Unmarshal(body, &payload); err != nil {
			return fmt.Errorf("parse %s response: %w", src.ID, err)
		}
		if payload.Status != "success" && payload.Status != "cache" {
			return fmt.Errorf("source %s: unexpected response status %q", src.ID, payload.Status)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if payload.Status == "cache" {
		lgr.Printf("[DEBUG] source %s served from cache", src.ID)
	}

	snap := domain.NewSourceSnapshot(src.ID, src.Alias, timeLabel)
	for i, item := range payload.Items {
		title := strings.TrimSpace(item.Title)
		if title == "" {
			continue
		}
		snap.Add(title, item.URL, item.MobileURL, i+1)
	}
	return snap, nil
}

// fetchRSS maps a feed to the same ranked-title shape, item order is the rank
func (f *Fetcher) fetchRSS(ctx context.Context, src Source, timeLabel string) (*domain.SourceSnapshot, error) {
	ctx, cancel := context.WithTimeout(ctx, f.client.Timeout)
	defer cancel()

	parser := gofeed.NewParser()
	parser.Client = f.client
	parser.UserAgent = f.userAgent

	feed, err := parser.ParseURLWithContext(src.URL, ctx)
	if err != nil {
		return nil, fmt.Errorf("parse feed %s: %w", src.URL, err)
	}

	snap := domain.NewSourceSnapshot(src.ID, src.Alias, timeLabel)
	for i, item := range feed.Items {
		title := strings.TrimSpace(item.Title)
		if title == "" {
			continue
		}
		snap.Add(title, item.Link, "", i+1)
	}
	return snap, nil
}
