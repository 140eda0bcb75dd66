package kit

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

func TestChain_Order(t *testing.T) {
	var trace []string
	mw := func(name string) Middleware {
		return func(next Endpoint) Endpoint {
			return func(ctx context.Context, req any) (any, error) {
				trace = append(trace, name)
				return next(ctx, req)
			}
		}
	}
	ep := Chain(mw("a"), mw("b"), mw("c"))(func(context.Context, any) (any, error) {
		trace = append(trace, "endpoint")
		return "ok", nil
	})
	resp, err := ep(context.Background(), nil)
	if err != nil || resp != "ok" {
		t.Fatalf("resp, err = %v, %v", resp, err)
	}
	if got := strings.Join(trace, ","); got != "a,b,c,endpoint" {
		t.Errorf("order = %s", got)
	}
}

func TestLogging(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	boom := errors.New("boom")
	ep := Logging(logger, "ingest_grid")(func(context.Context, any) (any, error) {
		return nil, boom
	})
	ctx := WithRequestID(WithTransport(context.Background(), "mcp"), "req-1")
	if _, err := ep(ctx, nil); !errors.Is(err, boom) {
		t.Fatalf("err = %v, want boom", err)
	}

	out := buf.String()
	for _, want := range []string{"endpoint failed", "endpoint=ingest_grid", "transport=mcp", "request_id=req-1", "error=boom"} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %q:\n%s", want, out)
		}
	}
}

func TestContextDefaults(t *testing.T) {
	ctx := context.Background()
	if GetTransport(ctx) != "http" {
		t.Errorf("default transport = %q, want http", GetTransport(ctx))
	}
	if GetRequestID(ctx) != "" {
		t.Errorf("default request id = %q, want empty", GetRequestID(ctx))
	}
	if a, b := NewRequestID(), NewRequestID(); a == "" || a == b {
		t.Errorf("NewRequestID = %q, %q", a, b)
	}
}
