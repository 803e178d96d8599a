// Package dispatch selects delivery assets for incoming orders. Strategies
// are pluggable and chosen by name from a registry, so deployments can swap
// the selection policy through configuration alone.
package dispatch

import (
	"fmt"
	"math/rand"
	"sort"

	"github.com/swoopdelivery/swoopsim/internal/models"
	"github.com/swoopdelivery/swoopsim/internal/prediction"
)

// Config carries the coefficients the strategies share. ETA math uses these
// directly, without prediction jitter, so the fixed point is stable and a
// given pool state always scores the same way.
type Config struct {
	PrepTimeMin             float64
	TravelTimePerHole       float64
	PlayerMinPerHole        float64
	CartPreferenceWindowMin float64
	BatchHoleThreshold      int
	MaxOrdersPerBatch       int
	CourseHoles             int
}

// ConfigFrom extracts the dispatch coefficients from a simulation config.
func ConfigFrom(mc *models.Config) Config {
	return Config{
		PrepTimeMin:             mc.PrepTimeMin,
		TravelTimePerHole:       mc.TravelTimePerHole,
		PlayerMinPerHole:        mc.PlayerMinPerHole,
		CartPreferenceWindowMin: mc.CartPreferenceWindowMin,
		BatchHoleThreshold:      mc.BatchHoleThreshold,
		MaxOrdersPerBatch:       mc.MaxOrdersPerBatch,
		CourseHoles:             mc.CourseHoles,
	}
}

// Score breaks down how well an asset matches an order. Lower is better.
type Score struct {
	ETA                 float64 `json:"eta"`
	PredictedHole       int     `json:"predicted_hole"`
	ETAScore            float64 `json:"eta_score"`
	DistanceScore       float64 `json:"distance_score"`
	AssetTypeScore      float64 `json:"asset_type_score"`
	PredictabilityScore float64 `json:"predictability_score"`
	Final               float64 `json:"final_score"`
}

// Candidate is an eligible asset annotated with its delivery estimate.
type Candidate struct {
	Asset         *models.DeliveryAsset
	ETA           float64
	PredictedHole int
	Acceptance    float64
}

// Strategy chooses zero or one asset for an order. Choose returns nil when
// no eligible candidate exists, which is an expected outcome.
type Strategy interface {
	Choose(order *models.Order, available []*models.DeliveryAsset) *Candidate
	Score(asset *models.DeliveryAsset, order *models.Order) Score
}

// Factory builds a strategy from the shared coefficients, the cost model
// and the run RNG.
type Factory func(cfg Config, pred prediction.Predictor, rng *rand.Rand) Strategy

var registry = map[string]Factory{}

// Register adds a named strategy to the registry. Built-ins register in
// their init functions; external packages may add their own before the
// dispatcher is constructed.
func Register(name string, factory Factory) {
	registry[name] = factory
}

// NewStrategy instantiates the named strategy.
func NewStrategy(name string, cfg Config, pred prediction.Predictor, rng *rand.Rand) (Strategy, error) {
	factory, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("unknown dispatcher strategy %q (have %v)", name, StrategyNames())
	}
	return factory(cfg, pred, rng), nil
}

// StrategyNames lists the registered strategies, sorted for stable output.
func StrategyNames() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// eligible reports whether an asset can take an order at all: it must be
// idle and, for carts, the order must fall inside its loop.
func eligible(asset *models.DeliveryAsset, order *models.Order, courseHoles int) bool {
	if asset.Status != models.AssetStatusIdle {
		return false
	}
	return asset.ZoneContains(order.HoleNumber, courseHoles)
}
