package dispatch

import (
	"math"
	"math/rand"

	"github.com/swoopdelivery/swoopsim/internal/models"
	"github.com/swoopdelivery/swoopsim/internal/prediction"
)

func init() {
	Register("nearest", func(cfg Config, pred prediction.Predictor, rng *rand.Rand) Strategy {
		return &NearestStrategy{cfg: cfg, est: NewEstimator(cfg)}
	})
	Register("load_balanced", func(cfg Config, pred prediction.Predictor, rng *rand.Rand) Strategy {
		return &LoadBalancedStrategy{cfg: cfg, est: NewEstimator(cfg)}
	})
	Register("random", func(cfg Config, pred prediction.Predictor, rng *rand.Rand) Strategy {
		return &RandomStrategy{cfg: cfg, est: NewEstimator(cfg), rng: rng}
	})
}

// NearestStrategy picks the eligible asset closest to the clubhouse,
// ignoring asset type. A useful baseline for comparison runs.
type NearestStrategy struct {
	cfg Config
	est *Estimator
}

func (s *NearestStrategy) Choose(order *models.Order, available []*models.DeliveryAsset) *Candidate {
	var best *Candidate
	bestDistance := math.MaxInt32
	for _, asset := range available {
		if !eligible(asset, order, s.cfg.CourseHoles) {
			continue
		}
		distance := asset.CurrentLocation.DistanceTo(models.Clubhouse())
		if best == nil || distance < bestDistance {
			eta, predictedHole := s.est.ETAAndDestination(asset.CurrentLocation.HoleNumber(), order.HoleNumber)
			best = &Candidate{Asset: asset, ETA: eta, PredictedHole: predictedHole, Acceptance: 1.0}
			bestDistance = distance
		}
	}
	return best
}

func (s *NearestStrategy) Score(asset *models.DeliveryAsset, order *models.Order) Score {
	distance := float64(asset.CurrentLocation.DistanceTo(models.Clubhouse()))
	eta, predictedHole := s.est.ETAAndDestination(asset.CurrentLocation.HoleNumber(), order.HoleNumber)
	return Score{ETA: eta, PredictedHole: predictedHole, DistanceScore: distance, Final: distance}
}

// LoadBalancedStrategy spreads work evenly: fewest current orders first,
// nearest to the clubhouse as the tie-break.
type LoadBalancedStrategy struct {
	cfg Config
	est *Estimator
}

func (s *LoadBalancedStrategy) Choose(order *models.Order, available []*models.DeliveryAsset) *Candidate {
	var best *models.DeliveryAsset
	for _, asset := range available {
		if !eligible(asset, order, s.cfg.CourseHoles) {
			continue
		}
		if best == nil {
			best = asset
			continue
		}
		load, bestLoad := len(asset.CurrentOrders), len(best.CurrentOrders)
		if load < bestLoad {
			best = asset
		} else if load == bestLoad &&
			asset.CurrentLocation.DistanceTo(models.Clubhouse()) < best.CurrentLocation.DistanceTo(models.Clubhouse()) {
			best = asset
		}
	}
	if best == nil {
		return nil
	}
	eta, predictedHole := s.est.ETAAndDestination(best.CurrentLocation.HoleNumber(), order.HoleNumber)
	return &Candidate{Asset: best, ETA: eta, PredictedHole: predictedHole, Acceptance: 1.0}
}

func (s *LoadBalancedStrategy) Score(asset *models.DeliveryAsset, order *models.Order) Score {
	distance := float64(asset.CurrentLocation.DistanceTo(models.Clubhouse()))
	loadScore := float64(len(asset.CurrentOrders)) * 10
	eta, predictedHole := s.est.ETAAndDestination(asset.CurrentLocation.HoleNumber(), order.HoleNumber)
	return Score{
		ETA:           eta,
		PredictedHole: predictedHole,
		DistanceScore: distance,
		Final:         distance + loadScore,
	}
}

// RandomStrategy picks uniformly among eligible assets from the run RNG.
type RandomStrategy struct {
	cfg Config
	est *Estimator
	rng *rand.Rand
}

func (s *RandomStrategy) Choose(order *models.Order, available []*models.DeliveryAsset) *Candidate {
	var pool []*models.DeliveryAsset
	for _, asset := range available {
		if eligible(asset, order, s.cfg.CourseHoles) {
			pool = append(pool, asset)
		}
	}
	if len(pool) == 0 {
		return nil
	}
	asset := pool[s.rng.Intn(len(pool))]
	eta, predictedHole := s.est.ETAAndDestination(asset.CurrentLocation.HoleNumber(), order.HoleNumber)
	return &Candidate{Asset: asset, ETA: eta, PredictedHole: predictedHole, Acceptance: 1.0}
}

func (s *RandomStrategy) Score(asset *models.DeliveryAsset, order *models.Order) Score {
	eta, predictedHole := s.est.ETAAndDestination(asset.CurrentLocation.HoleNumber(), order.HoleNumber)
	return Score{ETA: eta, PredictedHole: predictedHole, Final: 1.0}
}
