package weather

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

// newTestService spins up a fake Open-Meteo server and a miniredis cache.
func newTestService(t *testing.T, handler http.HandlerFunc) (Service, *httptest.Server, *miniredis.Miniredis) {
	t.Helper()
	upstream := httptest.NewServer(handler)
	t.Cleanup(upstream.Close)

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	svc := NewService(upstream.URL, 2*time.Second, rdb, 15*time.Minute)
	return svc, upstream, mr
}

func currentPayload(temp string, code, isDay int) string {
	return `{"current":{"temperature_2m":` + temp + `,"weather_code":` +
		strconv.Itoa(code) + `,"is_day":` + strconv.Itoa(isDay) + `}}`
}

func TestGet_NormalizesUpstreamResponse(t *testing.T) {
	svc, _, _ := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("temperature_unit") != "fahrenheit" {
			t.Errorf("expected fahrenheit request, got %s", q.Get("temperature_unit"))
		}
		if q.Get("latitude") == "" || q.Get("longitude") == "" {
			t.Error("missing coordinates in upstream request")
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(currentPayload("71.6", 3, 1)))
	})

	report := svc.Get(context.Background(), 41.8781, -87.6298)
	if report == nil {
		t.Fatal("expected a report, got nil")
	}
	if report.Temperature != 72 {
		t.Errorf("expected rounded temperature 72, got %d", report.Temperature)
	}
	if report.Code != 3 {
		t.Errorf("expected code 3, got %d", report.Code)
	}
	if report.Description != "Overcast" {
		t.Errorf("expected Overcast, got %s", report.Description)
	}
	if !report.IsDay {
		t.Error("expected daytime report")
	}
}

func TestGet_UnknownCode(t *testing.T) {
	svc, _, _ := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(currentPayload("50.0", 99, 0)))
	})

	report := svc.Get(context.Background(), 41.878, -87.63)
	if report == nil {
		t.Fatal("expected a report, got nil")
	}
	if report.Description != "Unknown" {
		t.Errorf("expected Unknown for unmapped code, got %s", report.Description)
	}
	if report.IsDay {
		t.Error("expected nighttime report")
	}
}

func TestGet_CachesPerLocation(t *testing.T) {
	var calls int64
	svc, _, _ := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&calls, 1)
		w.Write([]byte(currentPayload("71.6", 0, 1)))
	})

	ctx := context.Background()
	if svc.Get(ctx, 41.8781, -87.6298) == nil {
		t.Fatal("first fetch failed")
	}
	// Same location (within rounding) must be served from cache.
	if svc.Get(ctx, 41.8781, -87.6298) == nil {
		t.Fatal("cached fetch failed")
	}
	if svc.Get(ctx, 41.87812, -87.62979) == nil {
		t.Fatal("near-identical fetch failed")
	}
	if got := atomic.LoadInt64(&calls); got != 1 {
		t.Errorf("expected 1 upstream call, got %d", got)
	}

	// A genuinely different location misses the cache.
	if svc.Get(ctx, 30.2672, -97.7431) == nil {
		t.Fatal("second location fetch failed")
	}
	if got := atomic.LoadInt64(&calls); got != 2 {
		t.Errorf("expected 2 upstream calls, got %d", got)
	}
}

func TestGet_UpstreamErrorDegrades(t *testing.T) {
	svc, _, _ := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	if report := svc.Get(context.Background(), 41.878, -87.63); report != nil {
		t.Errorf("expected nil on upstream 502, got %+v", report)
	}
}

func TestGet_UpstreamUnreachableDegrades(t *testing.T) {
	svc, upstream, _ := newTestService(t, func(w http.ResponseWriter, r *http.Request) {})
	upstream.Close()

	if report := svc.Get(context.Background(), 41.878, -87.63); report != nil {
		t.Errorf("expected nil on unreachable upstream, got %+v", report)
	}
}

func TestGet_MalformedUpstreamDegrades(t *testing.T) {
	svc, _, _ := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json"))
	})

	if report := svc.Get(context.Background(), 41.878, -87.63); report != nil {
		t.Errorf("expected nil on malformed response, got %+v", report)
	}
}
