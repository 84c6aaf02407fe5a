// Package eta estimates how many whole minutes a bus needs to reach a pickup point.
package eta

import (
	"context"
	"log"

	"github.com/Domenick1991/busalert/config"
)

type Estimator interface {
	Estimate(ctx context.Context, originLat, originLng, destLat, destLng float64) (int64, error)
}

// New picks the strategy once: the remote estimator when an API key is
// configured, otherwise the local haversine estimate. cache may be nil.
func New(cfg config.ETAConfig, cache Cache) Estimator {
	local := NewLocalEstimator()
	if cfg.APIKey == "" {
		log.Println("eta: no distance matrix api key configured, using haversine estimate")
		return local
	}

	var opts []RemoteOption
	if cache != nil {
		opts = append(opts, WithCache(cache, cfg.CacheTTL()))
	}
	return NewRemoteEstimator(cfg.APIKey, cfg.Endpoint, cfg.Timeout(), local, opts...)
}
