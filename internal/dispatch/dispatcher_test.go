package dispatch

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/swoopdelivery/swoopsim/internal/models"
	"github.com/swoopdelivery/swoopsim/internal/prediction"
)

func idleStaff(id string, loc models.Location) *models.DeliveryAsset {
	return &models.DeliveryAsset{
		ID:              id,
		Name:            id,
		Kind:            models.AssetKindDeliveryStaff,
		Status:          models.AssetStatusIdle,
		CurrentLocation: loc,
	}
}

func idleCart(id string, loop models.Loop, loc models.Location) *models.DeliveryAsset {
	return &models.DeliveryAsset{
		ID:              id,
		Name:            id,
		Kind:            models.AssetKindBeverageCart,
		Loop:            loop,
		Status:          models.AssetStatusIdle,
		CurrentLocation: loc,
	}
}

func newTestDispatcher(t *testing.T, strategy string) *Dispatcher {
	t.Helper()
	rng := rand.New(rand.NewSource(42))
	pred := prediction.NewService(rng, 18)
	d, err := NewDispatcher(testConfig(), strategy, pred, rng)
	require.NoError(t, err)
	return d
}

func TestDispatchAssignsAheadOfCustomer(t *testing.T) {
	d := newTestDispatcher(t, "nearest")
	now := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)

	cart := idleCart("cart-1", models.LoopFront9, models.Hole(1))
	order := order("ORD0001", 4)

	result := d.Dispatch(order, []*models.DeliveryAsset{cart}, now)
	require.Equal(t, OutcomeAssigned, result.Outcome)
	require.NotNil(t, result.Assignment)

	assert.Equal(t, models.OrderStatusAssigned, order.Status)
	assert.Equal(t, "cart-1", order.AssignedTo)
	assert.Equal(t, now, order.AssignedAt)
	assert.GreaterOrEqual(t, order.DeliveryHole, 4)
	require.Len(t, cart.CurrentOrders, 1)
	assert.Equal(t, models.AssetStatusEnRouteToPickup, cart.Status)
}

func TestDispatchFromClubhouseSkipsPickupLeg(t *testing.T) {
	d := newTestDispatcher(t, "nearest")
	staff := idleStaff("staff-1", models.Clubhouse())

	result := d.Dispatch(order("ORD0001", 7), []*models.DeliveryAsset{staff}, time.Now())
	require.Equal(t, OutcomeAssigned, result.Outcome)
	assert.Equal(t, models.AssetStatusWaitingForOrder, staff.Status)
}

func TestDispatchNoCandidateWhenAllInactive(t *testing.T) {
	d := newTestDispatcher(t, "nearest")
	a := idleStaff("staff-1", models.Clubhouse())
	a.Status = models.AssetStatusInactive
	o := order("ORD0001", 3)

	result := d.Dispatch(o, []*models.DeliveryAsset{a}, time.Now())
	assert.Equal(t, OutcomeNoCandidate, result.Outcome)
	assert.Nil(t, result.Assignment)
	assert.Equal(t, models.OrderStatusPending, o.Status)
	assert.Empty(t, o.AssignedTo)
}

func TestDispatchCartNeverOfferedOutOfZone(t *testing.T) {
	d := newTestDispatcher(t, "nearest")
	front := idleCart("cart-1", models.LoopFront9, models.Hole(5))

	result := d.Dispatch(order("ORD0001", 12), []*models.DeliveryAsset{front}, time.Now())
	assert.Equal(t, OutcomeNoCandidate, result.Outcome)
}

// decliningPredictor always refuses, exercising the declined outcome.
type decliningPredictor struct{ prediction.Predictor }

func (decliningPredictor) AcceptanceChance(*models.DeliveryAsset, *models.Order) float64 {
	return 0
}

func TestDispatchDeclinedLeavesOrderPending(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	pred := decliningPredictor{prediction.NewService(rng, 18)}
	d, err := NewDispatcher(testConfig(), "cart_preference", pred, rng)
	require.NoError(t, err)

	staff := idleStaff("staff-1", models.Clubhouse())
	o := order("ORD0001", 6)

	result := d.Dispatch(o, []*models.DeliveryAsset{staff}, time.Now())
	assert.Equal(t, OutcomeDeclined, result.Outcome)
	assert.Same(t, staff, result.DeclinedBy)
	assert.Equal(t, models.OrderStatusPending, o.Status)
	assert.Equal(t, models.AssetStatusIdle, staff.Status)
	assert.Empty(t, staff.CurrentOrders)
}

func TestDispatchBatchSingleAssetTakesAll(t *testing.T) {
	d := newTestDispatcher(t, "nearest")
	staff := idleStaff("staff-1", models.Clubhouse())
	group := []*models.Order{order("a", 4), order("b", 5)}

	result := d.DispatchBatch(group, []*models.DeliveryAsset{staff}, time.Now())
	require.Equal(t, OutcomeAssigned, result.Outcome)
	a := result.Assignment

	require.Len(t, a.Orders, 2)
	require.Len(t, a.OrderETAs, 2)
	assert.Less(t, a.OrderETAs[0], a.OrderETAs[1])
	assert.Equal(t, a.OrderETAs[1], a.ETA)
	assert.Len(t, staff.CurrentOrders, 2)
	for i, o := range a.Orders {
		assert.Equal(t, "staff-1", o.AssignedTo)
		assert.GreaterOrEqual(t, a.PredictedHoles[i], o.HoleNumber)
	}
}

func TestDispatchBatchRequiresFullZoneCoverage(t *testing.T) {
	d := newTestDispatcher(t, "nearest")
	front := idleCart("cart-1", models.LoopFront9, models.Hole(2))
	group := []*models.Order{order("a", 5), order("b", 11)}

	result := d.DispatchBatch(group, []*models.DeliveryAsset{front}, time.Now())
	assert.Equal(t, OutcomeNoCandidate, result.Outcome)
}

func TestDispatchBatchEmptyAndSingleton(t *testing.T) {
	d := newTestDispatcher(t, "nearest")
	staff := idleStaff("staff-1", models.Clubhouse())

	result := d.DispatchBatch(nil, []*models.DeliveryAsset{staff}, time.Now())
	assert.Equal(t, OutcomeNoCandidate, result.Outcome)

	result = d.DispatchBatch([]*models.Order{order("a", 3)}, []*models.DeliveryAsset{staff}, time.Now())
	assert.Equal(t, OutcomeAssigned, result.Outcome)
	assert.Len(t, result.Assignment.Orders, 1)
}

func TestDispatchBatchFavorsCartWithinWindow(t *testing.T) {
	d := newTestDispatcher(t, "batch_orders")
	cart := idleCart("cart-1", models.LoopFront9, models.Hole(4))
	staff := idleStaff("staff-1", models.Clubhouse())
	group := []*models.Order{order("a", 4), order("b", 5)}

	// staff batch ETA 17.55, cart 22.95: inside the 10 minute window the
	// cart still wins
	result := d.DispatchBatch(group, []*models.DeliveryAsset{staff, cart}, time.Now())
	require.Equal(t, OutcomeAssigned, result.Outcome)
	assert.Equal(t, "cart-1", result.Assignment.Asset.ID)
	assert.InDelta(t, 22.95, result.Assignment.ETA, 1e-9)
}

func TestDispatchBatchFiltersLowAcceptance(t *testing.T) {
	d := newTestDispatcher(t, "batch_orders")
	loaded := idleStaff("staff-near", models.Clubhouse())
	for i := 0; i < 3; i++ {
		loaded.CurrentOrders = append(loaded.CurrentOrders, &models.Order{})
	}
	far := idleStaff("staff-far", models.Hole(9))
	group := []*models.Order{order("a", 4), order("b", 5)}

	// the loaded staff is fastest but its acceptance chance is 0.3, so the
	// filter removes it and the slower confident staff wins
	result := d.DispatchBatch(group, []*models.DeliveryAsset{loaded, far}, time.Now())
	require.Equal(t, OutcomeAssigned, result.Outcome)
	assert.Equal(t, "staff-far", result.Assignment.Asset.ID)
	assert.InDelta(t, 0.55, result.Assignment.Acceptance, 1e-9)
}

func TestDispatchBatchFallsBackWhenFilterEmpties(t *testing.T) {
	d := newTestDispatcher(t, "batch_orders")
	staff := idleStaff("staff-1", models.Clubhouse())
	staff.CurrentOrders = []*models.Order{{}, {}}
	group := []*models.Order{order("a", 4), order("b", 5)}

	// acceptance 0.4 fails the filter, but the full set is restored rather
	// than reporting no candidate
	result := d.DispatchBatch(group, []*models.DeliveryAsset{staff}, time.Now())
	require.Equal(t, OutcomeAssigned, result.Outcome)
	assert.Equal(t, "staff-1", result.Assignment.Asset.ID)
	assert.InDelta(t, 0.4, result.Assignment.Acceptance, 1e-9)
}

func TestDispatchBatchDeclineReportsAsset(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	pred := decliningPredictor{prediction.NewService(rng, 18)}
	d, err := NewDispatcher(testConfig(), "batch_orders", pred, rng)
	require.NoError(t, err)

	staff := idleStaff("staff-1", models.Clubhouse())
	group := []*models.Order{order("a", 4), order("b", 5)}

	result := d.DispatchBatch(group, []*models.DeliveryAsset{staff}, time.Now())
	assert.Equal(t, OutcomeDeclined, result.Outcome)
	assert.Same(t, staff, result.DeclinedBy)
	for _, o := range group {
		assert.Equal(t, models.OrderStatusPending, o.Status)
	}
}
