package simulator

import (
	"math/rand"
	"time"

	"github.com/swoopdelivery/swoopsim/internal/models"
)

const (
	idleRepositionChance = 0.30
	staffReturnChance    = 0.20
	orderReadyChance     = 0.50
)

// TickResult is what one asset did during one movement tick.
type TickResult struct {
	Delivered  []*models.Order
	HolesMoved int
}

// Mover advances asset state machines one simulated minute at a time. All
// randomness comes from the shared run RNG so ticks replay identically for
// the same seed.
type Mover struct {
	cfg *models.Config
	rng *rand.Rand
}

func NewMover(cfg *models.Config, rng *rand.Rand) *Mover {
	return &Mover{cfg: cfg, rng: rng}
}

// Advance runs one tick for the asset and reports any handoffs that
// happened during it. Inactive assets never move or take work.
func (m *Mover) Advance(asset *models.DeliveryAsset, now time.Time) TickResult {
	var res TickResult
	switch asset.Status {
	case models.AssetStatusInactive:
		return res
	case models.AssetStatusIdle:
		res.HolesMoved = m.reposition(asset)
	case models.AssetStatusEnRouteToPickup:
		res.HolesMoved = m.step(asset, models.Clubhouse())
		if asset.CurrentLocation.IsClubhouse() {
			asset.Status = models.AssetStatusWaitingForOrder
		}
	case models.AssetStatusWaitingForOrder:
		// prep finishing is probabilistic per tick, not a fixed delay
		if m.rng.Float64() < orderReadyChance {
			asset.Status = models.AssetStatusEnRouteDropoff
			for _, o := range asset.CurrentOrders {
				o.Status = models.OrderStatusInProgress
			}
			m.retarget(asset)
		}
	case models.AssetStatusEnRouteDropoff:
		stop, ok := m.nextStop(asset)
		if !ok {
			asset.Status = models.AssetStatusIdle
			asset.Destination = nil
			break
		}
		res.HolesMoved = m.step(asset, stop)
		if asset.CurrentLocation == stop {
			res.Delivered = m.deliverAt(asset, now)
		}
	}
	asset.LastUpdateTime = now
	return res
}

// step moves the asset toward the target, covering at most MaxHolesPerTick
// holes, and returns how many it covered.
func (m *Mover) step(asset *models.DeliveryAsset, target models.Location) int {
	dist := asset.CurrentLocation.DistanceTo(target)
	if dist == 0 {
		return 0
	}
	stride := m.cfg.MaxHolesPerTick
	if dist < stride {
		stride = dist
	}
	cur := asset.CurrentLocation.HoleNumber()
	to := target.HoleNumber()
	if to < cur {
		stride = -stride
	}
	next := cur + stride
	if next == 0 {
		asset.CurrentLocation = models.Clubhouse()
	} else {
		asset.CurrentLocation = models.Hole(next)
	}
	if stride < 0 {
		return -stride
	}
	return stride
}

// nextStop is the hole of the first carried order. Carried orders are kept
// in stop order, so the head is always the nearest remaining dropoff.
func (m *Mover) nextStop(asset *models.DeliveryAsset) (models.Location, bool) {
	if len(asset.CurrentOrders) == 0 {
		return models.Location{}, false
	}
	return models.Hole(asset.CurrentOrders[0].DeliveryHole), true
}

// retarget points the asset at its next stop after leaving the clubhouse.
func (m *Mover) retarget(asset *models.DeliveryAsset) {
	if stop, ok := m.nextStop(asset); ok {
		asset.Destination = &stop
	}
}

// deliverAt hands off every carried order targeted at the current hole,
// then either points at the next stop or goes idle.
func (m *Mover) deliverAt(asset *models.DeliveryAsset, now time.Time) []*models.Order {
	hole := asset.CurrentLocation.HoleNumber()
	var delivered []*models.Order
	remaining := asset.CurrentOrders[:0]
	for _, o := range asset.CurrentOrders {
		if o.DeliveryHole == hole {
			o.Status = models.OrderStatusDelivered
			o.DeliveredAt = now
			delivered = append(delivered, o)
		} else {
			remaining = append(remaining, o)
		}
	}
	asset.CurrentOrders = remaining
	if stop, ok := m.nextStop(asset); ok {
		asset.Destination = &stop
	} else {
		asset.Status = models.AssetStatusIdle
		asset.Destination = nil
	}
	return delivered
}

// reposition drifts idle assets: carts wander toward their zone midpoint,
// staff head back to the clubhouse to be ready for pickup.
func (m *Mover) reposition(asset *models.DeliveryAsset) int {
	if asset.IsCart() {
		mid := models.Hole(asset.ZoneMidpoint())
		if asset.CurrentLocation == mid {
			return 0
		}
		if m.rng.Float64() < idleRepositionChance {
			return m.moveOne(asset, mid)
		}
		return 0
	}
	if asset.CurrentLocation.IsClubhouse() {
		return 0
	}
	if m.rng.Float64() < staffReturnChance {
		return m.moveOne(asset, models.Clubhouse())
	}
	return 0
}

func (m *Mover) moveOne(asset *models.DeliveryAsset, target models.Location) int {
	cur := asset.CurrentLocation.HoleNumber()
	to := target.HoleNumber()
	next := cur + 1
	if to < cur {
		next = cur - 1
	}
	if next == 0 {
		asset.CurrentLocation = models.Clubhouse()
	} else {
		asset.CurrentLocation = models.Hole(next)
	}
	return 1
}
