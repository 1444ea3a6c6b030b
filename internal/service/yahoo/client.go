package yahoo

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strings"
	"time"

	"FinCast/internal/domain/models"
	drepo "FinCast/internal/domain/repository"
	xhttp "FinCast/pkg/http"
)

const defaultUserAgent = "Mozilla/5.0 (compatible; FinCast/1.0)"

// Option configures Client.
type Option func(*Client)

// Client fetches monthly history from the Yahoo Finance chart API.
type Client struct {
	baseURL   string
	rangeStr  string
	interval  string
	adjusted  bool
	retryMax  int
	backoff   time.Duration
	timeout   time.Duration
	userAgent string
	transport http.RoundTripper
	http      *xhttp.Client
}

// New creates a Yahoo chart client.
func New(opts ...Option) *Client {
	c := &Client{
		baseURL:   "https://query1.finance.yahoo.com",
		rangeStr:  "5y",
		interval:  "1mo",
		backoff:   200 * time.Millisecond,
		timeout:   10 * time.Second,
		userAgent: defaultUserAgent,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.baseURL = strings.TrimRight(c.baseURL, "/")

	copts := []xhttp.ClientOption{
		xhttp.WithTimeout(c.timeout),
		xhttp.WithHeader("User-Agent", c.userAgent),
		xhttp.WithHeader("Accept", "application/json"),
	}
	if c.transport != nil {
		copts = append(copts, xhttp.WithTransport(c.transport))
	}
	c.http = xhttp.NewClient(copts...)
	return c
}

// WithBaseURL overrides the API host.
func WithBaseURL(u string) Option { return func(c *Client) { c.baseURL = u } }

// WithRange sets the chart range, e.g. "5y".
func WithRange(r string) Option { return func(c *Client) { c.rangeStr = r } }

// WithInterval sets the bar interval, e.g. "1mo".
func WithInterval(i string) Option { return func(c *Client) { c.interval = i } }

// WithAdjusted selects adjusted closes when the response carries them.
func WithAdjusted(on bool) Option { return func(c *Client) { c.adjusted = on } }

// WithTimeout sets the per-attempt HTTP timeout.
func WithTimeout(d time.Duration) Option { return func(c *Client) { c.timeout = d } }

// WithRetry sets the number of extra attempts and the linear backoff step.
func WithRetry(max int, backoff time.Duration) Option {
	return func(c *Client) {
		c.retryMax = max
		c.backoff = backoff
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option { return func(c *Client) { c.userAgent = ua } }

// WithTransport overrides the round tripper, mainly for tests.
func WithTransport(rt http.RoundTripper) Option { return func(c *Client) { c.transport = rt } }

type chartResponse struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Close []*float64 `json:"close"`
				} `json:"quote"`
				AdjClose []struct {
					AdjClose []*float64 `json:"adjclose"`
				} `json:"adjclose"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// Fetch returns the observations with a finite close, oldest first.
// An unknown ticker or an empty series yields drepo.ErrNoData.
func (c *Client) Fetch(ctx context.Context, ticker string) ([]models.PricePoint, error) {
	var (
		points []models.PricePoint
		err    error
	)
	for attempt := 0; attempt <= c.retryMax; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(time.Duration(attempt) * c.backoff):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
		points, err = c.fetchOnce(ctx, ticker)
		if err == nil || !retryable(err) {
			return points, err
		}
	}
	return nil, err
}

func (c *Client) fetchOnce(ctx context.Context, ticker string) ([]models.PricePoint, error) {
	var cr chartResponse
	err := c.http.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodGet,
		URL:    fmt.Sprintf("%s/v8/finance/chart/%s", c.baseURL, url.PathEscape(ticker)),
		QueryParams: map[string][]string{
			"range":    {c.rangeStr},
			"interval": {c.interval},
		},
	}, &cr)
	if err != nil {
		var se *xhttp.StatusError
		if errors.As(err, &se) && se.StatusCode == http.StatusNotFound {
			return nil, fmt.Errorf("yahoo %s: %w", ticker, drepo.ErrNoData)
		}
		return nil, fmt.Errorf("yahoo %s: %w", ticker, err)
	}
	if cr.Chart.Error != nil && cr.Chart.Error.Code == "Not Found" {
		return nil, fmt.Errorf("yahoo %s: %w", ticker, drepo.ErrNoData)
	}
	if len(cr.Chart.Result) == 0 {
		return nil, fmt.Errorf("yahoo %s: %w", ticker, drepo.ErrNoData)
	}

	res := cr.Chart.Result[0]
	var closes []*float64
	if c.adjusted && len(res.Indicators.AdjClose) > 0 {
		closes = res.Indicators.AdjClose[0].AdjClose
	} else if len(res.Indicators.Quote) > 0 {
		closes = res.Indicators.Quote[0].Close
	}

	out := make([]models.PricePoint, 0, len(closes))
	for i, v := range closes {
		if i >= len(res.Timestamp) {
			break
		}
		if v == nil || math.IsNaN(*v) || math.IsInf(*v, 0) {
			continue
		}
		out = append(out, models.PricePoint{Time: time.Unix(res.Timestamp[i], 0).UTC(), Close: *v})
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("yahoo %s: %w", ticker, drepo.ErrNoData)
	}
	return out, nil
}

func retryable(err error) bool {
	if errors.Is(err, drepo.ErrNoData) || errors.Is(err, context.Canceled) {
		return false
	}
	var se *xhttp.StatusError
	if errors.As(err, &se) {
		return se.StatusCode == http.StatusTooManyRequests || se.StatusCode >= 500
	}
	return true
}

var _ drepo.HistorySource = (*Client)(nil)
