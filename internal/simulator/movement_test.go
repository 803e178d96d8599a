package simulator

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/swoopdelivery/swoopsim/internal/models"
)

func newTestMover() *Mover {
	return NewMover(models.DefaultConfig(), rand.New(rand.NewSource(23)))
}

func carrying(asset *models.DeliveryAsset, holes ...int) {
	for i, h := range holes {
		asset.CurrentOrders = append(asset.CurrentOrders, &models.Order{
			ID:           string(rune('a' + i)),
			HoleNumber:   h,
			Status:       models.OrderStatusAssigned,
			DeliveryHole: h,
		})
	}
	dest := models.Hole(holes[0])
	asset.Destination = &dest
}

func TestInactiveAssetNeverMoves(t *testing.T) {
	m := newTestMover()
	a := &models.DeliveryAsset{
		Status:          models.AssetStatusInactive,
		CurrentLocation: models.Hole(6),
	}
	for i := 0; i < 50; i++ {
		res := m.Advance(a, time.Now())
		assert.Zero(t, res.HolesMoved)
		assert.Empty(t, res.Delivered)
	}
	assert.Equal(t, 6, a.CurrentLocation.HoleNumber())
	assert.Equal(t, models.AssetStatusInactive, a.Status)
}

func TestPickupLegCapsStride(t *testing.T) {
	m := newTestMover()
	a := &models.DeliveryAsset{
		Status:          models.AssetStatusEnRouteToPickup,
		CurrentLocation: models.Hole(7),
	}

	res := m.Advance(a, time.Now())
	assert.Equal(t, 3, res.HolesMoved)
	assert.Equal(t, 4, a.CurrentLocation.HoleNumber())
	assert.Equal(t, models.AssetStatusEnRouteToPickup, a.Status)

	m.Advance(a, time.Now())
	res = m.Advance(a, time.Now())
	assert.Equal(t, 1, res.HolesMoved)
	assert.True(t, a.CurrentLocation.IsClubhouse())
	assert.Equal(t, models.AssetStatusWaitingForOrder, a.Status)
}

func TestWaitingEventuallyDeparts(t *testing.T) {
	m := newTestMover()
	a := &models.DeliveryAsset{
		Status:          models.AssetStatusWaitingForOrder,
		CurrentLocation: models.Clubhouse(),
	}
	carrying(a, 5)

	for i := 0; i < 1000 && a.Status == models.AssetStatusWaitingForOrder; i++ {
		m.Advance(a, time.Now())
	}
	require.Equal(t, models.AssetStatusEnRouteDropoff, a.Status)
	require.NotNil(t, a.Destination)
	assert.Equal(t, 5, a.Destination.HoleNumber())
}

func TestDropoffDeliversAtTargetHole(t *testing.T) {
	m := newTestMover()
	a := &models.DeliveryAsset{
		Status:          models.AssetStatusEnRouteDropoff,
		CurrentLocation: models.Clubhouse(),
	}
	carrying(a, 5)
	now := time.Date(2024, 6, 1, 9, 30, 0, 0, time.UTC)

	res := m.Advance(a, now) // 0 -> 3
	assert.Empty(t, res.Delivered)
	res = m.Advance(a, now) // 3 -> 5, arrive
	require.Len(t, res.Delivered, 1)

	o := res.Delivered[0]
	assert.Equal(t, models.OrderStatusDelivered, o.Status)
	assert.Equal(t, now, o.DeliveredAt)
	assert.Equal(t, models.AssetStatusIdle, a.Status)
	assert.Nil(t, a.Destination)
	assert.Empty(t, a.CurrentOrders)
}

func TestMultiStopContinuesToNextOrder(t *testing.T) {
	m := newTestMover()
	a := &models.DeliveryAsset{
		Status:          models.AssetStatusEnRouteDropoff,
		CurrentLocation: models.Hole(3),
	}
	carrying(a, 4, 6)
	now := time.Now()

	res := m.Advance(a, now) // 3 -> 4, first handoff
	require.Len(t, res.Delivered, 1)
	assert.Equal(t, models.AssetStatusEnRouteDropoff, a.Status)
	require.NotNil(t, a.Destination)
	assert.Equal(t, 6, a.Destination.HoleNumber())

	res = m.Advance(a, now) // 4 -> 6, second handoff
	require.Len(t, res.Delivered, 1)
	assert.Equal(t, models.AssetStatusIdle, a.Status)
}

func TestSameHoleOrdersDeliverTogether(t *testing.T) {
	m := newTestMover()
	a := &models.DeliveryAsset{
		Status:          models.AssetStatusEnRouteDropoff,
		CurrentLocation: models.Hole(8),
	}
	carrying(a, 8, 8)

	res := m.Advance(a, time.Now())
	assert.Len(t, res.Delivered, 2)
	assert.Equal(t, models.AssetStatusIdle, a.Status)
}

func TestIdleCartDriftsTowardMidpointOnly(t *testing.T) {
	m := newTestMover()
	a := &models.DeliveryAsset{
		Kind:            models.AssetKindBeverageCart,
		Loop:            models.LoopFront9,
		Status:          models.AssetStatusIdle,
		CurrentLocation: models.Hole(1),
	}

	for i := 0; i < 2000; i++ {
		m.Advance(a, time.Now())
		hole := a.CurrentLocation.HoleNumber()
		assert.GreaterOrEqual(t, hole, 1)
		assert.LessOrEqual(t, hole, 5)
	}
	// with a 30% chance per tick the cart reaches the midpoint and parks
	assert.Equal(t, 5, a.CurrentLocation.HoleNumber())
}

func TestIdleStaffDriftsHome(t *testing.T) {
	m := newTestMover()
	a := &models.DeliveryAsset{
		Kind:            models.AssetKindDeliveryStaff,
		Status:          models.AssetStatusIdle,
		CurrentLocation: models.Hole(4),
	}
	for i := 0; i < 2000 && !a.CurrentLocation.IsClubhouse(); i++ {
		m.Advance(a, time.Now())
	}
	assert.True(t, a.CurrentLocation.IsClubhouse())
}
