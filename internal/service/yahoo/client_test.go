package yahoo

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	drepo "FinCast/internal/domain/repository"
)

const chartBody = `{"chart":{"result":[{
  "timestamp":[1600000000,1602592000,1605270400,1607862400,1610540800],
  "indicators":{
    "quote":[{"close":[100.0,null,110.0,99.0,108.9]}],
    "adjclose":[{"adjclose":[90.0,91.0,92.0,93.0,94.0]}]
  }}],"error":null}}`

func TestFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v8/finance/chart/GC=F" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.URL.Query().Get("range") != "5y" || r.URL.Query().Get("interval") != "1mo" {
			t.Errorf("unexpected query %s", r.URL.RawQuery)
		}
		if r.Header.Get("User-Agent") == "" {
			t.Errorf("missing user agent")
		}
		_, _ = w.Write([]byte(chartBody))
	}))
	defer srv.Close()

	c := New(WithBaseURL(srv.URL))
	pts, err := c.Fetch(context.Background(), "GC=F")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(pts) != 4 {
		t.Fatalf("expected null close dropped, got %d points", len(pts))
	}
	if pts[0].Close != 100 || pts[3].Close != 108.9 {
		t.Fatalf("unexpected points %+v", pts)
	}
	if !pts[0].Time.Before(pts[1].Time) {
		t.Fatalf("points not in order")
	}
}

func TestFetchAdjusted(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(chartBody))
	}))
	defer srv.Close()

	pts, err := New(WithBaseURL(srv.URL), WithAdjusted(true)).Fetch(context.Background(), "AAPL")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(pts) != 5 || pts[4].Close != 94 {
		t.Fatalf("unexpected adjusted points %+v", pts)
	}
}

func TestFetchNoData(t *testing.T) {
	bodies := map[string]string{
		"empty result": `{"chart":{"result":[],"error":null}}`,
		"all null":     `{"chart":{"result":[{"timestamp":[1,2],"indicators":{"quote":[{"close":[null,null]}]}}]}}`,
		"not found":    `{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found"}}}`,
	}
	for name, body := range bodies {
		body := body
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(body))
		}))
		_, err := New(WithBaseURL(srv.URL)).Fetch(context.Background(), "X")
		srv.Close()
		if !errors.Is(err, drepo.ErrNoData) {
			t.Fatalf("%s: expected ErrNoData, got %v", name, err)
		}
	}
}

func TestFetch404IsNoDataAndNotRetried(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := New(WithBaseURL(srv.URL), WithRetry(3, time.Millisecond)).Fetch(context.Background(), "NOPE")
	if !errors.Is(err, drepo.ErrNoData) {
		t.Fatalf("expected ErrNoData, got %v", err)
	}
	if atomic.LoadInt32(&calls) != 1 {
		t.Fatalf("expected single call, got %d", calls)
	}
}

func TestFetchRetriesServerErrors(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(chartBody))
	}))
	defer srv.Close()

	pts, err := New(WithBaseURL(srv.URL), WithRetry(2, time.Millisecond)).Fetch(context.Background(), "AAPL")
	if err != nil || len(pts) != 4 {
		t.Fatalf("unexpected result %d points, err=%v", len(pts), err)
	}
}

func TestFetchUpstreamFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := New(WithBaseURL(srv.URL)).Fetch(context.Background(), "AAPL")
	if err == nil || errors.Is(err, drepo.ErrNoData) {
		t.Fatalf("expected upstream error, got %v", err)
	}
}
