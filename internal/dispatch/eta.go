package dispatch

import "math"

// etaIterations bounds the fixed-point loop. Three rounds are enough for
// any hole on the course because each round can only push the prediction
// forward by a shrinking amount.
const etaIterations = 3

// Batch delivery tuning: each stop beyond the first adds a handoff delay,
// and a multi-stop run gets a small efficiency credit for sharing the trip
// out from the clubhouse.
const (
	batchStopPenaltyMin       = 2.0
	batchEfficiencyMultiplier = 0.9
)

// Estimator computes delivery ETAs from the configured coefficients. The
// customer keeps playing while the order is prepared and driven out, so the
// delivery hole is re-estimated until it stabilizes.
type Estimator struct {
	cfg Config
}

func NewEstimator(cfg Config) *Estimator {
	return &Estimator{cfg: cfg}
}

// ETAAndDestination returns the total delivery minutes for the asset at its
// current position and the hole the customer is predicted to have reached.
func (e *Estimator) ETAAndDestination(assetHole, orderHole int) (float64, int) {
	predictedHole := orderHole
	finalETA := math.Inf(1)

	for i := 0; i < etaIterations; i++ {
		travelToPickup := math.Abs(float64(assetHole)) * e.cfg.TravelTimePerHole
		travelFromPickup := math.Abs(float64(predictedHole)) * e.cfg.TravelTimePerHole
		totalETA := e.cfg.PrepTimeMin + travelToPickup + travelFromPickup

		holesAdvanced := int(math.Floor(totalETA / e.cfg.PlayerMinPerHole))
		newPredicted := orderHole + holesAdvanced
		if newPredicted > e.cfg.CourseHoles {
			// the customer finishes the round and waits at the last hole
			newPredicted = e.cfg.CourseHoles
		}

		finalETA = totalETA
		if newPredicted == predictedHole {
			break
		}
		predictedHole = newPredicted
	}

	return finalETA, predictedHole
}

// BatchETA estimates a multi-stop run over the given holes (already sorted
// by hole number). It returns the per-stop cumulative ETAs, the predicted
// delivery hole for each stop, and the total. Batches larger than one get
// the efficiency multiplier applied across the board.
func (e *Estimator) BatchETA(assetHole int, orderHoles []int) (legETAs []float64, predictedHoles []int, total float64) {
	legETAs = make([]float64, len(orderHoles))
	predictedHoles = make([]int, len(orderHoles))
	if len(orderHoles) == 0 {
		return legETAs, predictedHoles, 0
	}

	cumulative := e.cfg.PrepTimeMin + math.Abs(float64(assetHole))*e.cfg.TravelTimePerHole

	at := 0 // leaving the clubhouse
	for i, hole := range orderHoles {
		cumulative += math.Abs(float64(hole-at)) * e.cfg.TravelTimePerHole
		if i > 0 {
			cumulative += batchStopPenaltyMin
		}
		legETAs[i] = cumulative
		at = hole
	}

	if len(orderHoles) > 1 {
		for i := range legETAs {
			legETAs[i] *= batchEfficiencyMultiplier
		}
	}

	for i, hole := range orderHoles {
		predicted := hole + int(math.Floor(legETAs[i]/e.cfg.PlayerMinPerHole))
		if predicted > e.cfg.CourseHoles {
			predicted = e.cfg.CourseHoles
		}
		predictedHoles[i] = predicted
	}

	return legETAs, predictedHoles, legETAs[len(legETAs)-1]
}
