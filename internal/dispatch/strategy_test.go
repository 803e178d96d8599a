package dispatch

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/swoopdelivery/swoopsim/internal/models"
	"github.com/swoopdelivery/swoopsim/internal/prediction"
)

func newStrategy(t *testing.T, name string) Strategy {
	t.Helper()
	rng := rand.New(rand.NewSource(99))
	s, err := NewStrategy(name, testConfig(), prediction.NewService(rng, 18), rng)
	require.NoError(t, err)
	return s
}

func TestRegistryNames(t *testing.T) {
	names := StrategyNames()
	for _, want := range []string{
		"batch_orders", "cart_preference", "fastest_eta",
		"load_balanced", "nearest", "random", "zone_optimal",
	} {
		assert.Contains(t, names, want)
	}

	_, err := NewStrategy("teleport", testConfig(), nil, nil)
	assert.Error(t, err)
}

func TestEligibility(t *testing.T) {
	o := order("ORD0001", 12)

	busy := idleStaff("s1", models.Clubhouse())
	busy.Status = models.AssetStatusEnRouteDropoff
	assert.False(t, eligible(busy, o, 18))

	inactive := idleStaff("s2", models.Clubhouse())
	inactive.Status = models.AssetStatusInactive
	assert.False(t, eligible(inactive, o, 18))

	assert.True(t, eligible(idleStaff("s3", models.Hole(2)), o, 18))
	assert.False(t, eligible(idleCart("c1", models.LoopFront9, models.Hole(5)), o, 18))
	assert.True(t, eligible(idleCart("c2", models.LoopBack9, models.Hole(14)), o, 18))
}

func TestCartPreferenceFavorsCartWithinWindow(t *testing.T) {
	s := newStrategy(t, "cart_preference")
	cart := idleCart("cart-1", models.LoopFront9, models.Hole(5))
	staff := idleStaff("staff-1", models.Clubhouse())
	o := order("ORD0001", 5)

	got := s.Choose(o, []*models.DeliveryAsset{staff, cart})
	require.NotNil(t, got)
	assert.Equal(t, "cart-1", got.Asset.ID)
}

func TestFastestETAIgnoresCartPreference(t *testing.T) {
	s := newStrategy(t, "fastest_eta")
	cart := idleCart("cart-1", models.LoopFront9, models.Hole(5))
	staff := idleStaff("staff-1", models.Clubhouse())
	o := order("ORD0001", 5)

	got := s.Choose(o, []*models.DeliveryAsset{staff, cart})
	require.NotNil(t, got)
	assert.Equal(t, "staff-1", got.Asset.ID)
}

func TestCartPreferenceWindowBound(t *testing.T) {
	s := newStrategy(t, "cart_preference")
	// cart far beyond the window loses despite the preference
	cart := idleCart("cart-1", models.LoopBack9, models.Hole(18))
	staff := idleStaff("staff-1", models.Clubhouse())
	o := order("ORD0001", 10)

	got := s.Choose(o, []*models.DeliveryAsset{staff, cart})
	require.NotNil(t, got)
	assert.Equal(t, "staff-1", got.Asset.ID)
}

func TestZoneOptimalPrefersMatchingHalf(t *testing.T) {
	s := newStrategy(t, "zone_optimal")
	frontStaff := idleStaff("front", models.Hole(8))
	backStaff := idleStaff("back", models.Hole(11))

	got := s.Choose(order("ORD0001", 12), []*models.DeliveryAsset{frontStaff, backStaff})
	require.NotNil(t, got)
	assert.Equal(t, "back", got.Asset.ID)
}

func TestZoneOptimalFallsBackAcrossHalves(t *testing.T) {
	s := newStrategy(t, "zone_optimal")
	frontStaff := idleStaff("front", models.Hole(3))

	got := s.Choose(order("ORD0001", 15), []*models.DeliveryAsset{frontStaff})
	require.NotNil(t, got)
	assert.Equal(t, "front", got.Asset.ID)
}

func TestLoadBalancedPicksLeastLoaded(t *testing.T) {
	s := newStrategy(t, "load_balanced")
	loaded := idleStaff("loaded", models.Clubhouse())
	loaded.CurrentOrders = []*models.Order{order("x", 2)}
	free := idleStaff("free", models.Hole(9))

	got := s.Choose(order("ORD0001", 4), []*models.DeliveryAsset{loaded, free})
	require.NotNil(t, got)
	assert.Equal(t, "free", got.Asset.ID)
}

func TestRandomOnlyPicksEligible(t *testing.T) {
	s := newStrategy(t, "random")
	front := idleCart("front", models.LoopFront9, models.Hole(4))
	back := idleCart("back", models.LoopBack9, models.Hole(12))
	o := order("ORD0001", 14)

	for i := 0; i < 20; i++ {
		got := s.Choose(o, []*models.DeliveryAsset{front, back})
		require.NotNil(t, got)
		assert.Equal(t, "back", got.Asset.ID)
	}
}

func TestScoreBreakdown(t *testing.T) {
	s := newStrategy(t, "cart_preference")
	cart := idleCart("cart-1", models.LoopFront9, models.Hole(3))
	o := order("ORD0001", 6)

	score := s.Score(cart, o)
	assert.Greater(t, score.ETA, 0.0)
	assert.GreaterOrEqual(t, score.PredictedHole, 6)
	assert.Zero(t, score.AssetTypeScore)
	assert.Greater(t, score.Final, 0.0)
}
