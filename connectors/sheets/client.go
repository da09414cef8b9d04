// Package sheets fetches teaching log rows from spreadsheet-backed JSON
// endpoints (Apps Script web apps returning an array of flat objects).
package sheets

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/sync/errgroup"

	"faculty-bills/domain/bills"
)

const (
	defaultTimeout = 6 * time.Second
	maxAttempts    = 3
	maxRetryWait   = 10 * time.Second
)

// ErrNotList is returned when an endpoint answers with JSON that is not an array.
var ErrNotList = errors.New("response is not a JSON array")

// Fetcher returns the current rows of the teaching log.
type Fetcher interface {
	FetchRows(ctx context.Context) (bills.Table, error)
}

// Client is a thin wrapper over http.Client with optional bearer auth.
// Use New to construct it.
type Client struct {
	c    *http.Client
	urls []string
}

// New returns a client for urls. A nil c gets a client with timeout (6s when
// zero); a non-empty token is sent as a bearer token on every request.
func New(c *http.Client, token string, timeout time.Duration, urls ...string) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if c == nil {
		c = &http.Client{Timeout: timeout}
	}
	if token != "" {
		ctx := context.WithValue(context.Background(), oauth2.HTTPClient, c)
		authed := oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token, TokenType: "Bearer"}))
		authed.Timeout = c.Timeout
		c = authed
	}
	return &Client{c: c, urls: urls}
}

// FetchRows fetches every configured URL concurrently and concatenates the
// rows in URL order. Any failing URL fails the whole fetch.
func (hc *Client) FetchRows(ctx context.Context) (bills.Table, error) {
	if len(hc.urls) == 0 {
		return nil, errors.New("no source URLs configured")
	}
	parts := make([]bills.Table, len(hc.urls))
	g, gctx := errgroup.WithContext(ctx)
	for i, u := range hc.urls {
		g.Go(func() error {
			rows, err := hc.Fetch(gctx, u)
			if err != nil {
				return err
			}
			parts[i] = rows
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var all bills.Table
	for _, p := range parts {
		all = append(all, p...)
	}
	return all, nil
}

// Fetch GETs one endpoint and decodes its JSON array of objects. Numbers are
// kept as json.Number so diary numbers and hours keep their sheet text.
func (hc *Client) Fetch(ctx context.Context, rawURL string) (bills.Table, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := hc.do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", rawURL, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("source %s returned %d: %s", rawURL, resp.StatusCode, truncate(body, 256))
	}

	body = bytes.TrimSpace(body)
	if len(body) == 0 || body[0] != '[' {
		return nil, fmt.Errorf("%s: %w", rawURL, ErrNotList)
	}
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	var raw []map[string]any
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode %s: %w", rawURL, err)
	}

	rows := make(bills.Table, 0, len(raw))
	for _, r := range raw {
		if r == nil {
			continue
		}
		rows = append(rows, bills.Row(trimKeys(r)))
	}
	slog.Debug("sheets.fetch.done", "url", rawURL, "rows", len(rows), "elapsed", time.Since(start))
	return rows, nil
}

// do sends req, retrying throttled answers (429, 503) after Retry-After or a
// short backoff. The last throttled response is returned as is.
func (hc *Client) do(req *http.Request) (*http.Response, error) {
	for attempt := 1; ; attempt++ {
		resp, err := hc.c.Do(req)
		if err != nil {
			return nil, err
		}
		if !throttled(resp.StatusCode) || attempt == maxAttempts {
			return resp, nil
		}
		wait := retryAfter(resp.Header.Get("Retry-After"), attempt)
		_ = drainAndClose(resp.Body)
		slog.Warn("sheets.throttled.sleep", "url", req.URL.String(), "status", resp.StatusCode, "wait", wait, "attempt", attempt)
		select {
		case <-req.Context().Done():
			return nil, req.Context().Err()
		case <-time.After(wait):
		}
	}
}

func throttled(status int) bool {
	return status == http.StatusTooManyRequests || status == http.StatusServiceUnavailable
}

// retryAfter reads a Retry-After seconds value, capped to maxRetryWait.
func retryAfter(h string, attempt int) time.Duration {
	if sec, err := strconv.Atoi(strings.TrimSpace(h)); err == nil && sec >= 0 {
		return min(time.Duration(sec)*time.Second, maxRetryWait)
	}
	return time.Duration(attempt) * 500 * time.Millisecond
}

func drainAndClose(rc io.ReadCloser) error {
	_, _ = io.Copy(io.Discard, rc)
	return rc.Close()
}

// trimKeys strips whitespace around column labels, as the sheet headers often
// carry stray spaces.
func trimKeys(r map[string]any) map[string]any {
	out := make(map[string]any, len(r))
	for k, v := range r {
		out[strings.TrimSpace(k)] = v
	}
	return out
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
