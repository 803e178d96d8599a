// Package prediction estimates prep times, travel times and offer
// acceptance for dispatch decisions. The default Service stands in for a
// trained model with fixed formulas and tunable coefficients.
package prediction

import (
	"math"
	"math/rand"

	"github.com/swoopdelivery/swoopsim/internal/models"
)

// Predictor is the cost model consumed by dispatch strategies. A different
// model can be substituted without touching the strategies.
type Predictor interface {
	PrepTime(order *models.Order) float64
	TravelTime(from, to models.Location, tod models.TimeOfDay) float64
	AcceptanceChance(asset *models.DeliveryAsset, order *models.Order) float64
}

// Service implements Predictor with simulated model parameters. All jitter
// flows through the injected RNG so a seeded run is reproducible.
type Service struct {
	BasePrepTimePerItem   float64
	MinPrepTime           float64
	DefaultPrepTime       float64
	ComplexityFactors     map[models.Complexity]float64
	BaseTravelTimePerHole float64
	MinTravelTime         float64
	TrafficPatterns       map[models.TimeOfDay]float64
	UphillFrom, UphillTo  int
	BaseAcceptanceRate    float64
	DistancePenaltyFactor float64
	WorkloadPenaltyFactor float64
	CourseHoles           int

	rng *rand.Rand
}

// NewService returns a Service with the tuned defaults and the given RNG.
func NewService(rng *rand.Rand, courseHoles int) *Service {
	return &Service{
		BasePrepTimePerItem: 2.0,
		MinPrepTime:         2.0,
		DefaultPrepTime:     10.0,
		ComplexityFactors: map[models.Complexity]float64{
			models.ComplexitySimple:  0.8,
			models.ComplexityMedium:  1.0,
			models.ComplexityComplex: 1.5,
		},
		BaseTravelTimePerHole: 1.5,
		MinTravelTime:         0.5,
		TrafficPatterns: map[models.TimeOfDay]float64{
			models.TimeOfDayMorning:   0.8,
			models.TimeOfDayNoon:      1.2,
			models.TimeOfDayAfternoon: 1.0,
		},
		UphillFrom:            10,
		UphillTo:              15,
		BaseAcceptanceRate:    0.8,
		DistancePenaltyFactor: 0.05,
		WorkloadPenaltyFactor: 0.1,
		CourseHoles:           courseHoles,
		rng:                   rng,
	}
}

// PrepTime predicts order preparation minutes from its items: a base per
// item scaled by complexity and sqrt(quantity), with ±20% jitter and a
// floor. Orders with no items fall back to a fixed default.
func (s *Service) PrepTime(order *models.Order) float64 {
	if order == nil || len(order.Items) == 0 {
		return s.DefaultPrepTime
	}

	total := 0.0
	for _, item := range order.Items {
		factor, ok := s.ComplexityFactors[item.Complexity]
		if !ok {
			factor = 1.0
		}
		qty := item.Quantity
		if qty < 1 {
			qty = 1
		}
		// sqrt models the efficiency of preparing several of one item
		total += s.BasePrepTimePerItem * factor * math.Sqrt(float64(qty))
	}

	total *= s.jitter(0.2)
	return math.Max(total, s.MinPrepTime)
}

// TravelTime predicts minutes between two course positions: hole distance
// times a per-hole base, scaled by traffic and terrain, with ±10% jitter.
// Holes 10..15 run uphill: slower ascending, faster descending.
func (s *Service) TravelTime(from, to models.Location, tod models.TimeOfDay) float64 {
	start := from.HoleNumber()
	end := to.HoleNumber()

	travel := float64(from.DistanceTo(to)) * s.BaseTravelTimePerHole

	if factor, ok := s.TrafficPatterns[tod]; ok {
		travel *= factor
	}

	if start >= s.UphillFrom && start <= s.UphillTo && end > start {
		travel *= 1.2
	} else if end >= s.UphillFrom && end <= s.UphillTo && start > end {
		travel *= 0.9
	}

	travel *= s.jitter(0.1)
	return math.Max(travel, s.MinTravelTime)
}

// AcceptanceChance predicts the probability that an asset accepts an offered
// order, clamped to [0.1, 1.0]. Distance and current workload lower it;
// carts gain a zone-match bonus and pay a mismatch penalty; high-value
// orders are more attractive.
func (s *Service) AcceptanceChance(asset *models.DeliveryAsset, order *models.Order) float64 {
	chance := s.BaseAcceptanceRate

	distance := asset.CurrentLocation.DistanceTo(models.Hole(order.HoleNumber))
	chance -= float64(distance) * s.DistancePenaltyFactor

	chance -= float64(len(asset.CurrentOrders)) * s.WorkloadPenaltyFactor

	if asset.IsCart() {
		if asset.ZoneContains(order.HoleNumber, s.CourseHoles) {
			chance += 0.1
		} else {
			chance -= 0.2
		}
	}

	if value := order.Value(); value > 100 {
		chance += 0.2
	} else if value > 50 {
		chance += 0.1
	}

	return math.Max(0.1, math.Min(1.0, chance))
}

// jitter returns a multiplicative factor drawn uniformly from [1-v, 1+v].
func (s *Service) jitter(v float64) float64 {
	if s.rng == nil {
		return 1.0
	}
	return 1 + (s.rng.Float64()*2-1)*v
}

// Confidence reports the stand-in model quality metadata for a prediction
// kind ("prep_time", "travel_time" or "acceptance").
type Confidence struct {
	Accuracy   float64 `json:"accuracy"`
	Confidence float64 `json:"confidence"`
	DataPoints int     `json:"data_points"`
}

func (s *Service) Confidence(kind string) Confidence {
	switch kind {
	case "prep_time":
		return Confidence{Accuracy: 0.85, Confidence: 0.9, DataPoints: 10000}
	case "travel_time":
		return Confidence{Accuracy: 0.78, Confidence: 0.85, DataPoints: 50000}
	case "acceptance":
		return Confidence{Accuracy: 0.72, Confidence: 0.8, DataPoints: 25000}
	}
	return Confidence{}
}
