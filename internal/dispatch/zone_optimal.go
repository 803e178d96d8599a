package dispatch

import (
	"math"
	"math/rand"

	"github.com/swoopdelivery/swoopsim/internal/models"
	"github.com/swoopdelivery/swoopsim/internal/prediction"
)

func init() {
	Register("zone_optimal", func(cfg Config, pred prediction.Predictor, rng *rand.Rand) Strategy {
		return &ZoneOptimalStrategy{cfg: cfg, pred: pred, est: NewEstimator(cfg)}
	})
}

// ZoneOptimalStrategy favors assets already on the order's half of the
// course: carts by loop, staff by current position. Among the preferred
// group it picks the fastest fixed-point ETA.
type ZoneOptimalStrategy struct {
	cfg  Config
	pred prediction.Predictor
	est  *Estimator
}

func (s *ZoneOptimalStrategy) Choose(order *models.Order, available []*models.DeliveryAsset) *Candidate {
	orderOnFront := order.HoleNumber <= 9

	var inZone, outOfZone []*models.DeliveryAsset
	for _, asset := range available {
		if !eligible(asset, order, s.cfg.CourseHoles) {
			continue
		}
		if asset.IsCart() {
			// a cart that passed eligibility is in the order's zone
			inZone = append(inZone, asset)
			continue
		}
		staffHole := asset.CurrentLocation.HoleNumber()
		staffOnFront := staffHole >= 1 && staffHole <= 9
		if staffOnFront == orderOnFront {
			inZone = append(inZone, asset)
		} else {
			outOfZone = append(outOfZone, asset)
		}
	}

	pool := inZone
	if len(pool) == 0 {
		pool = outOfZone
	}
	if len(pool) == 0 {
		return nil
	}

	var best *Candidate
	for _, asset := range pool {
		eta, predictedHole := s.est.ETAAndDestination(asset.CurrentLocation.HoleNumber(), order.HoleNumber)
		if best == nil || eta < best.ETA {
			best = &Candidate{
				Asset:         asset,
				ETA:           eta,
				PredictedHole: predictedHole,
				Acceptance:    s.pred.AcceptanceChance(asset, order),
			}
		}
	}
	return best
}

func (s *ZoneOptimalStrategy) Score(asset *models.DeliveryAsset, order *models.Order) Score {
	eta, predictedHole := s.est.ETAAndDestination(asset.CurrentLocation.HoleNumber(), order.HoleNumber)
	zonePenalty := 10.0
	if asset.IsCart() {
		if asset.ZoneContains(order.HoleNumber, s.cfg.CourseHoles) {
			zonePenalty = 0
		}
	} else {
		staffHole := asset.CurrentLocation.HoleNumber()
		staffOnFront := staffHole >= 1 && staffHole <= 9
		if staffOnFront == (order.HoleNumber <= 9) {
			zonePenalty = 0
		}
	}
	distanceScore := math.Abs(float64(asset.CurrentLocation.HoleNumber())) * s.cfg.TravelTimePerHole
	return Score{
		ETA:           eta,
		PredictedHole: predictedHole,
		ETAScore:      eta,
		DistanceScore: distanceScore,
		Final:         eta + distanceScore*0.5 + zonePenalty,
	}
}
