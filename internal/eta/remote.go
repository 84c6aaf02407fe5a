package eta

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/mmcloughlin/geohash"
)

// GeohashPrecision of 7 gives cells of roughly 150m, close enough for a cached ETA.
const GeohashPrecision = 7

// Cache stores remote ETA results between location ticks.
type Cache interface {
	GetETA(ctx context.Context, key string) (minutes int64, ok bool, err error)
	SetETA(ctx context.Context, key string, minutes int64, ttl time.Duration) error
}

// RemoteEstimator asks a distance-matrix service for the driving time and
// falls back to another estimator whenever the answer is unusable.
type RemoteEstimator struct {
	apiKey   string
	endpoint string
	client   *http.Client
	fallback Estimator
	cache    Cache
	cacheTTL time.Duration
}

type RemoteOption func(*RemoteEstimator)

func WithCache(cache Cache, ttl time.Duration) RemoteOption {
	return func(r *RemoteEstimator) {
		r.cache = cache
		r.cacheTTL = ttl
	}
}

func NewRemoteEstimator(apiKey, endpoint string, timeout time.Duration, fallback Estimator, opts ...RemoteOption) *RemoteEstimator {
	r := &RemoteEstimator{
		apiKey:   apiKey,
		endpoint: endpoint,
		fallback: fallback,
		client: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				Proxy:       http.ProxyFromEnvironment,
				DialContext: (&net.Dialer{Timeout: timeout}).DialContext,
			},
		},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

type distanceMatrixResponse struct {
	Status string              `json:"status"`
	Rows   []distanceMatrixRow `json:"rows"`
}

type distanceMatrixRow struct {
	Elements []distanceMatrixElement `json:"elements"`
}

type distanceMatrixElement struct {
	Status   string `json:"status"`
	Duration struct {
		Value int64 `json:"value"`
	} `json:"duration"`
}

func (r *RemoteEstimator) Estimate(ctx context.Context, originLat, originLng, destLat, destLng float64) (int64, error) {
	if originLat == destLat && originLng == destLng {
		return 0, nil
	}

	key := CacheKey(originLat, originLng, destLat, destLng)
	if r.cache != nil && r.cacheTTL > 0 {
		minutes, ok, err := r.cache.GetETA(ctx, key)
		if err != nil {
			log.Printf("eta cache read failed key=%s: %v", key, err)
		} else if ok {
			return minutes, nil
		}
	}

	minutes, err := r.fetch(ctx, originLat, originLng, destLat, destLng)
	if err != nil {
		log.Printf("remote eta unavailable, using fallback: %v", err)
		return r.fallback.Estimate(ctx, originLat, originLng, destLat, destLng)
	}

	if r.cache != nil && r.cacheTTL > 0 {
		if err := r.cache.SetETA(ctx, key, minutes, r.cacheTTL); err != nil {
			log.Printf("eta cache write failed key=%s: %v", key, err)
		}
	}
	return minutes, nil
}

func (r *RemoteEstimator) fetch(ctx context.Context, originLat, originLng, destLat, destLng float64) (int64, error) {
	q := url.Values{}
	q.Set("origins", formatPoint(originLat, originLng))
	q.Set("destinations", formatPoint(destLat, destLng))
	q.Set("mode", "driving")
	q.Set("key", r.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.endpoint+"?"+q.Encode(), nil)
	if err != nil {
		return 0, fmt.Errorf("build request: %w", err)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("distance matrix request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("distance matrix HTTP %d", resp.StatusCode)
	}

	var body distanceMatrixResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return 0, fmt.Errorf("decode distance matrix: %w", err)
	}
	if body.Status != "OK" {
		return 0, fmt.Errorf("distance matrix status %q", body.Status)
	}
	if len(body.Rows) == 0 || len(body.Rows[0].Elements) == 0 {
		return 0, errors.New("distance matrix returned no elements")
	}
	element := body.Rows[0].Elements[0]
	if element.Status != "OK" {
		return 0, fmt.Errorf("distance matrix element status %q", element.Status)
	}

	return SecondsToMinutes(element.Duration.Value), nil
}

// SecondsToMinutes rounds a duration in seconds to the nearest minute, half up.
func SecondsToMinutes(seconds int64) int64 {
	return (seconds + 30) / 60
}

// CacheKey identifies an origin/destination pair by geohash cell.
func CacheKey(originLat, originLng, destLat, destLng float64) string {
	return geohash.EncodeWithPrecision(originLat, originLng, GeohashPrecision) + ":" +
		geohash.EncodeWithPrecision(destLat, destLng, GeohashPrecision)
}

func formatPoint(lat, lng float64) string {
	return strconv.FormatFloat(lat, 'f', -1, 64) + "," + strconv.FormatFloat(lng, 'f', -1, 64)
}

var _ Estimator = (*RemoteEstimator)(nil)
