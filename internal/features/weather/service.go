package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"net/url"
	"time"

	"github.com/redis/go-redis/v9"
)

// cacheKeyPrefix is the Redis key prefix for cached reports.
const cacheKeyPrefix = "weather:"

// Service fetches current conditions for a location. A nil report means
// the upstream is unavailable -- callers render a placeholder instead.
type Service interface {
	Get(ctx context.Context, lat, lon float64) *Report
}

// service implements Service against Open-Meteo with a Redis cache.
type service struct {
	baseURL  string
	client   *http.Client
	redis    *redis.Client
	cacheTTL time.Duration
}

// NewService creates a weather service. The HTTP client gets a short
// timeout so a slow upstream can't hold up a TV display refresh.
func NewService(baseURL string, timeout time.Duration, rdb *redis.Client, cacheTTL time.Duration) Service {
	return &service{
		baseURL:  baseURL,
		client:   &http.Client{Timeout: timeout},
		redis:    rdb,
		cacheTTL: cacheTTL,
	}
}

// openMeteoResponse is the subset of the upstream payload we consume.
type openMeteoResponse struct {
	Current struct {
		Temperature float64 `json:"temperature_2m"`
		WeatherCode int     `json:"weather_code"`
		IsDay       int     `json:"is_day"`
	} `json:"current"`
}

// Get returns the cached or freshly fetched report for a location, or nil
// when the upstream is unreachable. Every failure path logs and degrades;
// nothing here ever propagates an error to the caller.
func (s *service) Get(ctx context.Context, lat, lon float64) *Report {
	// Round coordinates so nearby lookups share one cache entry and the
	// cache can't be blown up by high-precision inputs.
	key := fmt.Sprintf("%s%.3f,%.3f", cacheKeyPrefix, roundCoord(lat), roundCoord(lon))

	if cached, err := s.redis.Get(ctx, key).Bytes(); err == nil {
		var report Report
		if err := json.Unmarshal(cached, &report); err == nil {
			return &report
		}
	}

	report := s.fetch(ctx, lat, lon)
	if report == nil {
		return nil
	}

	if data, err := json.Marshal(report); err == nil {
		if err := s.redis.Set(ctx, key, data, s.cacheTTL).Err(); err != nil {
			slog.Warn("failed to cache weather report", slog.Any("error", err))
		}
	}

	return report
}

// fetch calls Open-Meteo and normalizes the response.
func (s *service) fetch(ctx context.Context, lat, lon float64) *Report {
	params := url.Values{}
	params.Set("latitude", fmt.Sprintf("%.4f", lat))
	params.Set("longitude", fmt.Sprintf("%.4f", lon))
	params.Set("current", "temperature_2m,weather_code,is_day")
	params.Set("temperature_unit", "fahrenheit")
	params.Set("timezone", "auto")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		slog.Warn("building weather request failed", slog.Any("error", err))
		return nil
	}

	resp, err := s.client.Do(req)
	if err != nil {
		slog.Warn("weather upstream unreachable", slog.Any("error", err))
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		slog.Warn("weather upstream returned non-200", slog.Int("status", resp.StatusCode))
		return nil
	}

	var payload openMeteoResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		slog.Warn("decoding weather response failed", slog.Any("error", err))
		return nil
	}

	return &Report{
		Temperature: int(math.Round(payload.Current.Temperature)),
		Code:        payload.Current.WeatherCode,
		Description: describe(payload.Current.WeatherCode),
		IsDay:       payload.Current.IsDay == 1,
	}
}

// roundCoord rounds a coordinate to 3 decimal places (~100m).
func roundCoord(v float64) float64 {
	return math.Round(v*1000) / 1000
}
