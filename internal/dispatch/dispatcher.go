package dispatch

import (
	"fmt"
	"log"
	"math/rand"
	"time"

	"github.com/swoopdelivery/swoopsim/internal/models"
	"github.com/swoopdelivery/swoopsim/internal/prediction"
)

// Outcome classifies a dispatch attempt. NoCandidate and Declined are
// expected business outcomes, not faults; the order simply stays pending.
type Outcome string

const (
	OutcomeAssigned    Outcome = "assigned"
	OutcomeNoCandidate Outcome = "no_candidate"
	OutcomeDeclined    Outcome = "declined"
)

// Assignment is a successful dispatch: one asset, one or more orders in
// delivery sequence, the predicted delivery hole and cumulative ETA for
// each, and the total.
type Assignment struct {
	Asset          *models.DeliveryAsset
	Orders         []*models.Order
	PredictedHoles []int
	OrderETAs      []float64
	ETA            float64
	Acceptance     float64
}

// Result reports what a dispatch attempt did. DeclinedBy names the asset
// that refused the offer when the outcome is Declined.
type Result struct {
	Outcome    Outcome
	Assignment *Assignment
	DeclinedBy *models.DeliveryAsset
}

// Dispatcher runs the configured strategy over the asset pool and applies
// the state changes of a successful choice. It holds no per-tick state of
// its own beyond the configured coefficients.
type Dispatcher struct {
	cfg      Config
	strategy Strategy
	pred     prediction.Predictor
	est      *Estimator
	rng      *rand.Rand
}

func NewDispatcher(cfg Config, strategyName string, pred prediction.Predictor, rng *rand.Rand) (*Dispatcher, error) {
	strategy, err := NewStrategy(strategyName, cfg, pred, rng)
	if err != nil {
		return nil, err
	}
	return &Dispatcher{
		cfg:      cfg,
		strategy: strategy,
		pred:     pred,
		est:      NewEstimator(cfg),
		rng:      rng,
	}, nil
}

// Strategy exposes the active strategy for scoring queries.
func (d *Dispatcher) Strategy() Strategy { return d.strategy }

// Dispatch offers a single order to the pool. The winning candidate still
// has to accept: a failed draw surfaces as Declined with no retry here.
func (d *Dispatcher) Dispatch(order *models.Order, assets []*models.DeliveryAsset, now time.Time) Result {
	candidate := d.strategy.Choose(order, assets)
	if candidate == nil {
		return Result{Outcome: OutcomeNoCandidate}
	}

	if !d.accepts(candidate.Acceptance) {
		log.Printf("order %s declined by %s (acceptance %.2f)", order.ID, candidate.Asset.Name, candidate.Acceptance)
		return Result{Outcome: OutcomeDeclined, DeclinedBy: candidate.Asset}
	}

	assignment := &Assignment{
		Asset:          candidate.Asset,
		Orders:         []*models.Order{order},
		PredictedHoles: []int{candidate.PredictedHole},
		OrderETAs:      []float64{candidate.ETA},
		ETA:            candidate.ETA,
		Acceptance:     candidate.Acceptance,
	}
	d.apply(assignment, now)
	return Result{Outcome: OutcomeAssigned, Assignment: assignment}
}

// DispatchBatch offers a proximity group to the pool as one trip. An asset
// qualifies only if every order in the group passes its zone check; the
// acceptance draw is taken against the group's seed order.
func (d *Dispatcher) DispatchBatch(group []*models.Order, assets []*models.DeliveryAsset, now time.Time) Result {
	if len(group) == 0 {
		return Result{Outcome: OutcomeNoCandidate}
	}
	if len(group) == 1 {
		return d.Dispatch(group[0], assets, now)
	}

	holes := make([]int, len(group))
	for i, o := range group {
		holes[i] = o.HoleNumber
	}

	var candidates []*Candidate
	for _, asset := range assets {
		qualified := true
		for _, o := range group {
			if !eligible(asset, o, d.cfg.CourseHoles) {
				qualified = false
				break
			}
		}
		if !qualified {
			continue
		}
		_, _, total := d.est.BatchETA(asset.CurrentLocation.HoleNumber(), holes)
		candidates = append(candidates, &Candidate{
			Asset:      asset,
			ETA:        total,
			Acceptance: d.pred.AcceptanceChance(asset, group[0]),
		})
	}

	best := selectCandidate(candidates, d.cfg.CartPreferenceWindowMin, fmt.Sprintf("batch of %d orders", len(group)))
	if best == nil {
		return Result{Outcome: OutcomeNoCandidate}
	}
	if !d.accepts(best.Acceptance) {
		log.Printf("batch of %d orders declined by %s (acceptance %.2f)", len(group), best.Asset.Name, best.Acceptance)
		return Result{Outcome: OutcomeDeclined, DeclinedBy: best.Asset}
	}

	legETAs, predictedHoles, total := d.est.BatchETA(best.Asset.CurrentLocation.HoleNumber(), holes)
	assignment := &Assignment{
		Asset:          best.Asset,
		Orders:         group,
		PredictedHoles: predictedHoles,
		OrderETAs:      legETAs,
		ETA:            total,
		Acceptance:     best.Acceptance,
	}
	d.apply(assignment, now)
	return Result{Outcome: OutcomeAssigned, Assignment: assignment}
}

func (d *Dispatcher) accepts(probability float64) bool {
	return d.rng.Float64() < probability
}

// apply moves the assignment's orders and asset into their post-dispatch
// states. A cart holding an order outside its loop at this point means the
// eligibility filter is broken, so it aborts the run.
func (d *Dispatcher) apply(a *Assignment, now time.Time) {
	for _, order := range a.Orders {
		if !a.Asset.ZoneContains(order.HoleNumber, d.cfg.CourseHoles) {
			panic(fmt.Sprintf("cart %s (%s) assigned order %s at hole %d outside its zone",
				a.Asset.ID, a.Asset.Loop, order.ID, order.HoleNumber))
		}
	}

	for i, order := range a.Orders {
		order.Status = models.OrderStatusAssigned
		order.AssignedTo = a.Asset.ID
		order.AssignedAt = now
		order.DeliveryHole = a.PredictedHoles[i]
		a.Asset.CurrentOrders = append(a.Asset.CurrentOrders, order)
	}

	lastHole := a.PredictedHoles[len(a.PredictedHoles)-1]
	dest := models.Hole(lastHole)
	a.Asset.Destination = &dest

	if a.Asset.CurrentLocation.IsClubhouse() {
		a.Asset.Status = models.AssetStatusWaitingForOrder
	} else {
		a.Asset.Status = models.AssetStatusEnRouteToPickup
	}
	a.Asset.LastUpdateTime = now
}
