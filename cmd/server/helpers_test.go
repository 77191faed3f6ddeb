package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/example/calcapi/internal/cache"
	"github.com/example/calcapi/internal/handlers"
	apihttp "github.com/example/calcapi/internal/http"
	"github.com/example/calcapi/internal/rate"
)

func TestListenAddr(t *testing.T) {
	if listenAddr("") != ":8080" { t.Fatalf("default") }
	if listenAddr("9090") != ":9090" { t.Fatalf("pass through") }
}

func TestPurgeEvery(t *testing.T) {
	c := cache.New(10 * time.Millisecond)
	compute := func(context.Context) (cache.Value, error) { return cache.Value{Sum: 3, ComputedAt: time.Now()}, nil }
	if _, _, err := c.GetOrCompute(context.Background(), "1+2", compute); err != nil { t.Fatalf("compute: %v", err) }
	stop := purgeEvery(c, 20*time.Millisecond, zerolog.Nop())
	defer stop()
	time.Sleep(100 * time.Millisecond)
	if c.Len() != 0 { t.Fatalf("expired entry not purged, len=%d", c.Len()) }
}

func TestRouterSmoke(t *testing.T) {
	c := cache.New(50 * time.Millisecond)
	sh := handlers.NewSumHandler(handlers.SumDeps{Cache: c, Timeout: 100 * time.Millisecond, MaxConcurrency: 1})
	lm := rate.NewLimiterMap(100, 1, time.Second)
	defer lm.Stop()
	ts := httptest.NewServer(apihttp.NewRouter(apihttp.RouterDeps{Sum: sh, Limiter: lm, Logger: zerolog.Nop()}))
	defer ts.Close()
	resp, err := http.Get(ts.URL + "/healthz")
	if err != nil { t.Fatalf("health get: %v", err) }
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK { t.Fatalf("status=%d", resp.StatusCode) }
}
