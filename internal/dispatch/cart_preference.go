package dispatch

import (
	"log"
	"math"
	"math/rand"

	"github.com/swoopdelivery/swoopsim/internal/models"
	"github.com/swoopdelivery/swoopsim/internal/prediction"
)

func init() {
	Register("cart_preference", func(cfg Config, pred prediction.Predictor, rng *rand.Rand) Strategy {
		return &CartPreferenceStrategy{cfg: cfg, pred: pred, est: NewEstimator(cfg)}
	})
	// fastest_eta is the same pipeline with the preference window collapsed
	Register("fastest_eta", func(cfg Config, pred prediction.Predictor, rng *rand.Rand) Strategy {
		cfg.CartPreferenceWindowMin = 0
		return &CartPreferenceStrategy{cfg: cfg, pred: pred, est: NewEstimator(cfg)}
	})
	// batch_orders reuses this selection; the batching itself happens in
	// the engine's process_batch handling before dispatch.
	Register("batch_orders", func(cfg Config, pred prediction.Predictor, rng *rand.Rand) Strategy {
		return &CartPreferenceStrategy{cfg: cfg, pred: pred, est: NewEstimator(cfg)}
	})
}

// CartPreferenceStrategy is the production pipeline: eligibility filter,
// fixed-point ETA, acceptance filter, then fastest ETA with a soft
// preference for beverage carts inside a time window. The preference never
// overrides eligibility or the acceptance filter.
type CartPreferenceStrategy struct {
	cfg  Config
	pred prediction.Predictor
	est  *Estimator
}

func (s *CartPreferenceStrategy) Choose(order *models.Order, available []*models.DeliveryAsset) *Candidate {
	return selectCandidate(s.collect(order, available), s.cfg.CartPreferenceWindowMin, "order "+order.ID)
}

// selectCandidate is the shared tail of the selection pipeline: acceptance
// filter, fastest ETA, then the soft cart preference. Batch dispatch runs
// the same steps over batch ETAs.
func selectCandidate(candidates []*Candidate, windowMin float64, subject string) *Candidate {
	if len(candidates) == 0 {
		return nil
	}

	survivors := make([]*Candidate, 0, len(candidates))
	for _, c := range candidates {
		if c.Acceptance > 0.5 {
			survivors = append(survivors, c)
		}
	}
	if len(survivors) == 0 {
		// acceptance modeling should thin the field, not empty it
		log.Printf("acceptance filter removed all %d candidates for %s, falling back to full set",
			len(candidates), subject)
		survivors = candidates
	}

	fastest := survivors[0]
	for _, c := range survivors[1:] {
		if c.ETA < fastest.ETA {
			fastest = c
		}
	}

	var bestCart *Candidate
	for _, c := range survivors {
		if c.Asset.IsCart() && (bestCart == nil || c.ETA < bestCart.ETA) {
			bestCart = c
		}
	}

	if bestCart != nil && bestCart.ETA <= fastest.ETA+windowMin {
		return bestCart
	}
	return fastest
}

func (s *CartPreferenceStrategy) collect(order *models.Order, available []*models.DeliveryAsset) []*Candidate {
	var candidates []*Candidate
	for _, asset := range available {
		if !eligible(asset, order, s.cfg.CourseHoles) {
			continue
		}
		eta, predictedHole := s.est.ETAAndDestination(asset.CurrentLocation.HoleNumber(), order.HoleNumber)
		candidates = append(candidates, &Candidate{
			Asset:         asset,
			ETA:           eta,
			PredictedHole: predictedHole,
			Acceptance:    s.pred.AcceptanceChance(asset, order),
		})
	}
	return candidates
}

// Score weights ETA against travel distance, asset type and prediction
// uncertainty, matching the pipeline's actual preferences.
func (s *CartPreferenceStrategy) Score(asset *models.DeliveryAsset, order *models.Order) Score {
	eta, predictedHole := s.est.ETAAndDestination(asset.CurrentLocation.HoleNumber(), order.HoleNumber)

	distanceScore := math.Abs(float64(asset.CurrentLocation.HoleNumber())) * s.cfg.TravelTimePerHole
	assetTypeScore := 5.0
	if asset.IsCart() {
		assetTypeScore = 0
	}
	predictabilityScore := math.Abs(float64(predictedHole-order.HoleNumber)) * 2

	return Score{
		ETA:                 eta,
		PredictedHole:       predictedHole,
		ETAScore:            eta,
		DistanceScore:       distanceScore,
		AssetTypeScore:      assetTypeScore,
		PredictabilityScore: predictabilityScore,
		Final:               eta*1.0 + distanceScore*0.5 + assetTypeScore*0.3 + predictabilityScore*0.2,
	}
}
