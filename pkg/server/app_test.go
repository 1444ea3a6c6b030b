package server

import (
	"context"
	"errors"
	"testing"
	"time"

	xhttp "FinCast/pkg/http"
)

type recordingCloser struct {
	order *[]string
	name  string
	err   error
}

func (r recordingCloser) Close() error {
	*r.order = append(*r.order, r.name)
	return r.err
}

func TestRunContextClosesInOrder(t *testing.T) {
	srv := xhttp.NewServer(nil, xhttp.WithHost("127.0.0.1"), xhttp.WithPort(0), xhttp.WithMetricsPath(""))
	app := New(srv, nil, time.Second)

	var order []string
	boom := errors.New("flush failed")
	app.OnShutdown("sink", recordingCloser{order: &order, name: "sink", err: boom})
	app.OnShutdown("limiter", recordingCloser{order: &order, name: "limiter"})
	app.OnShutdown("nil", nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := app.RunContext(ctx)
	if !errors.Is(err, boom) {
		t.Fatalf("expected close error surfaced, got %v", err)
	}
	if len(order) != 2 || order[0] != "sink" || order[1] != "limiter" {
		t.Fatalf("unexpected close order %v", order)
	}
}
