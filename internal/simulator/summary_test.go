package simulator

import (
	"bytes"
	"log"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/swoopdelivery/swoopsim/internal/models"
)

func TestDescribeStats(t *testing.T) {
	s := describe([]float64{10, 20, 30, 40})
	assert.Equal(t, 25.0, s.Mean)
	assert.Equal(t, 10.0, s.Min)
	assert.Equal(t, 40.0, s.Max)
	assert.Equal(t, 4, s.Count)
	assert.Greater(t, s.StdDev, 0.0)
	assert.GreaterOrEqual(t, s.P90, s.Median)

	empty := describe(nil)
	assert.Zero(t, empty.Count)
	assert.Zero(t, empty.Mean)
}

func TestSummaryOrderLifecycle(t *testing.T) {
	cfg := models.DefaultConfig()
	sum := NewSummary(cfg)
	start := cfg.StartDate

	asset := &models.DeliveryAsset{ID: "staff-1", Name: "Sam", Kind: models.AssetKindDeliveryStaff}
	sum.AddAsset(asset)

	o := &models.Order{ID: "ORD0001", HoleNumber: 6, Status: models.OrderStatusPending, PlacedAt: start}
	sum.AddOrder(o)

	sum.RecordAssignment(o, asset, 7, 1, start.Add(2*time.Minute))
	o.DeliveryHole = 7
	sum.RecordDelivery(o, asset.ID, start.Add(18*time.Minute))

	m := sum.Order("ORD0001")
	require.NotNil(t, m)
	wait, ok := m.WaitTimeMinutes()
	require.True(t, ok)
	assert.InDelta(t, 2.0, wait, 1e-9)
	total, ok := m.DeliveryTimeMinutes()
	require.True(t, ok)
	assert.InDelta(t, 18.0, total, 1e-9)
	assert.Equal(t, 7, m.PredictedHole)
	assert.False(t, m.WasBatched)

	sum.Finalize(start.Add(time.Hour), map[string]*models.Order{"ORD0001": o})
	r := sum.Report()
	assert.Equal(t, 1, r.TotalOrders)
	assert.Equal(t, 1, r.DeliveredOrders)
	assert.Zero(t, r.PendingOrders)
	assert.InDelta(t, 1.0, r.OrdersPerHour, 1e-9)
	assert.Equal(t, 1.0, r.OnTimeRate) // 18 min beats the 25 min target
}

func TestSummaryBatchAndOutcomeCounts(t *testing.T) {
	cfg := models.DefaultConfig()
	sum := NewSummary(cfg)
	start := cfg.StartDate

	asset := &models.DeliveryAsset{ID: "cart-1", Name: "Bev-Cart 1", Kind: models.AssetKindBeverageCart}
	sum.AddAsset(asset)

	a := &models.Order{ID: "a", HoleNumber: 3, PlacedAt: start}
	b := &models.Order{ID: "b", HoleNumber: 4, PlacedAt: start}
	sum.AddOrder(a)
	sum.AddOrder(b)
	sum.RecordBatch()
	sum.RecordAssignment(a, asset, 4, 2, start.Add(5*time.Minute))
	sum.RecordAssignment(b, asset, 5, 2, start.Add(5*time.Minute))
	a.DeliveryHole, b.DeliveryHole = 4, 5
	sum.RecordDelivery(a, asset.ID, start.Add(20*time.Minute))
	sum.RecordDelivery(b, asset.ID, start.Add(24*time.Minute))

	sum.RecordNoCandidate()
	sum.RecordDecline(asset)

	sum.Finalize(start.Add(time.Hour), map[string]*models.Order{"a": a, "b": b})
	r := sum.Report()
	assert.Equal(t, 1.0, r.BatchedRate)
	assert.Equal(t, 1, r.NoCandidateCount)
	assert.Equal(t, 1, r.DeclinedCount)

	am := r.Assets[0]
	assert.Equal(t, 2, am.OrdersDelivered)
	assert.Equal(t, 1, am.DeclinedOffers)
}

func TestUtilization(t *testing.T) {
	cfg := models.DefaultConfig()
	sum := NewSummary(cfg)

	a := &models.DeliveryAsset{ID: "x", Kind: models.AssetKindDeliveryStaff, Status: models.AssetStatusEnRouteDropoff}
	sum.AddAsset(a)
	for i := 0; i < 3; i++ {
		sum.ObserveAsset(a, 1.0)
	}
	a.Status = models.AssetStatusIdle
	sum.ObserveAsset(a, 1.0)

	r := sum.Report()
	assert.InDelta(t, 0.75, r.UtilizationByKind[models.AssetKindDeliveryStaff], 1e-9)
	assert.InDelta(t, 0.75, r.Assets[0].UtilizationRate(), 1e-9)
}

func TestReportPrintsKindsInStableOrder(t *testing.T) {
	cfg := models.DefaultConfig()
	sum := NewSummary(cfg)

	staff := &models.DeliveryAsset{ID: "s", Kind: models.AssetKindDeliveryStaff, Status: models.AssetStatusEnRouteDropoff}
	cart := &models.DeliveryAsset{ID: "c", Kind: models.AssetKindBeverageCart, Status: models.AssetStatusEnRouteDropoff}
	sum.AddAsset(staff)
	sum.AddAsset(cart)
	sum.ObserveAsset(staff, 1.0)
	sum.ObserveAsset(cart, 1.0)

	var buf bytes.Buffer
	log.SetOutput(&buf)
	defer log.SetOutput(os.Stderr)
	sum.Report().Print()

	out := buf.String()
	first := strings.Index(out, "Utilization beverage_cart")
	second := strings.Index(out, "Utilization delivery_staff")
	require.GreaterOrEqual(t, first, 0)
	require.Greater(t, second, first)
}
