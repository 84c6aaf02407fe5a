package eta

import (
	"context"
	"math"
)

const (
	EarthRadiusMiles = 3958.8
	// AverageSpeedMPH is the assumed urban bus speed used by the geometric estimate.
	AverageSpeedMPH = 30.0
)

// LocalEstimator derives an ETA from great-circle distance at a constant speed.
// It needs no network and never fails.
type LocalEstimator struct{}

func NewLocalEstimator() *LocalEstimator {
	return &LocalEstimator{}
}

func (LocalEstimator) Estimate(_ context.Context, originLat, originLng, destLat, destLng float64) (int64, error) {
	return MinutesAtAverageSpeed(HaversineMiles(originLat, originLng, destLat, destLng)), nil
}

// HaversineMiles returns the great-circle distance between two points in miles.
func HaversineMiles(lat1, lng1, lat2, lng2 float64) float64 {
	dLat := toRadians(lat2 - lat1)
	dLng := toRadians(lng2 - lng1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRadians(lat1))*math.Cos(toRadians(lat2))*math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return EarthRadiusMiles * c
}

// MinutesAtAverageSpeed converts miles to whole minutes, rounding half away from zero.
func MinutesAtAverageSpeed(miles float64) int64 {
	return int64(math.Round(miles / AverageSpeedMPH * 60))
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}

var _ Estimator = (*LocalEstimator)(nil)
