package simulator

import (
	"log"
	"sort"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/swoopdelivery/swoopsim/internal/models"
)

// OrderMetrics tracks one order from placement to delivery.
type OrderMetrics struct {
	OrderID       string             `json:"order_id"`
	PlacedAt      time.Time          `json:"placed_at"`
	HoleNumber    int                `json:"hole_number"`
	AssignedAsset string             `json:"assigned_asset,omitempty"`
	AssignedAt    *time.Time         `json:"assigned_at,omitempty"`
	DeliveredAt   *time.Time         `json:"delivered_at,omitempty"`
	PredictedHole int                `json:"predicted_hole,omitempty"`
	DeliveryHole  int                `json:"delivery_hole,omitempty"`
	WasBatched    bool               `json:"was_batched"`
	BatchSize     int                `json:"batch_size,omitempty"`
	FinalStatus   models.OrderStatus `json:"final_status"`
}

// WaitTimeMinutes is placement to assignment. The second return is false
// until the order has been assigned.
func (m *OrderMetrics) WaitTimeMinutes() (float64, bool) {
	if m.AssignedAt == nil {
		return 0, false
	}
	return m.AssignedAt.Sub(m.PlacedAt).Minutes(), true
}

// DeliveryTimeMinutes is placement to handoff.
func (m *OrderMetrics) DeliveryTimeMinutes() (float64, bool) {
	if m.DeliveredAt == nil {
		return 0, false
	}
	return m.DeliveredAt.Sub(m.PlacedAt).Minutes(), true
}

// AssetMetrics accumulates per-asset activity over the run.
type AssetMetrics struct {
	AssetID         string           `json:"asset_id"`
	Name            string           `json:"name"`
	Kind            models.AssetKind `json:"kind"`
	OrdersDelivered int              `json:"orders_delivered"`
	HolesTraveled   int              `json:"holes_traveled"`
	ActiveMinutes   float64          `json:"active_minutes"`
	ObservedMinutes float64          `json:"observed_minutes"`
	DeclinedOffers  int              `json:"declined_offers"`
}

// UtilizationRate is the fraction of observed time the asset spent actively
// delivering.
func (m *AssetMetrics) UtilizationRate() float64 {
	if m.ObservedMinutes <= 0 {
		return 0
	}
	return m.ActiveMinutes / m.ObservedMinutes
}

// DistributionStats summarizes a sample of durations in minutes.
type DistributionStats struct {
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	P90    float64 `json:"p90"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	StdDev float64 `json:"std_dev"`
	Count  int     `json:"count"`
}

func describe(xs []float64) DistributionStats {
	if len(xs) == 0 {
		return DistributionStats{}
	}
	sorted := append([]float64(nil), xs...)
	sort.Float64s(sorted)
	return DistributionStats{
		Mean:   stat.Mean(sorted, nil),
		Median: stat.Quantile(0.5, stat.Empirical, sorted, nil),
		P90:    stat.Quantile(0.9, stat.Empirical, sorted, nil),
		Min:    sorted[0],
		Max:    sorted[len(sorted)-1],
		StdDev: stat.StdDev(sorted, nil),
		Count:  len(sorted),
	}
}

// KPIReport is the end-of-run rollup printed to the console and written to
// the summary file.
type KPIReport struct {
	CourseName        string                       `json:"course_name"`
	Strategy          string                       `json:"strategy"`
	StartTime         time.Time                    `json:"start_time"`
	EndTime           time.Time                    `json:"end_time"`
	TotalOrders       int                          `json:"total_orders"`
	DeliveredOrders   int                          `json:"delivered_orders"`
	PendingOrders     int                          `json:"pending_orders"`
	NoCandidateCount  int                          `json:"no_candidate_count"`
	DeclinedCount     int                          `json:"declined_count"`
	OrdersPerHour     float64                      `json:"orders_per_hour"`
	WaitTime          DistributionStats            `json:"wait_time_min"`
	DeliveryTime      DistributionStats            `json:"delivery_time_min"`
	OnTimeRate        float64                      `json:"on_time_rate"`
	BatchedRate       float64                      `json:"batched_rate"`
	UtilizationByKind map[models.AssetKind]float64 `json:"utilization_by_kind"`
	Assets            []*AssetMetrics              `json:"assets"`
}

// Summary collects metrics during a run and produces the KPI report at the
// end. It is written from the single event-loop goroutine only.
type Summary struct {
	cfg *models.Config

	StartTime time.Time
	EndTime   time.Time

	orders   map[string]*OrderMetrics
	orderIDs []string

	assets   map[string]*AssetMetrics
	assetIDs []string

	noCandidate int
	declined    int
	batches     int
}

func NewSummary(cfg *models.Config) *Summary {
	return &Summary{
		cfg:       cfg,
		StartTime: cfg.StartDate,
		orders:    make(map[string]*OrderMetrics),
		assets:    make(map[string]*AssetMetrics),
	}
}

func (s *Summary) AddOrder(o *models.Order) {
	if _, ok := s.orders[o.ID]; ok {
		return
	}
	s.orders[o.ID] = &OrderMetrics{
		OrderID:     o.ID,
		PlacedAt:    o.PlacedAt,
		HoleNumber:  o.HoleNumber,
		FinalStatus: o.Status,
	}
	s.orderIDs = append(s.orderIDs, o.ID)
}

func (s *Summary) AddAsset(a *models.DeliveryAsset) {
	if _, ok := s.assets[a.ID]; ok {
		return
	}
	s.assets[a.ID] = &AssetMetrics{AssetID: a.ID, Name: a.Name, Kind: a.Kind}
	s.assetIDs = append(s.assetIDs, a.ID)
}

// RecordAssignment marks the order assigned. batchSize is 1 for singleton
// dispatches.
func (s *Summary) RecordAssignment(o *models.Order, asset *models.DeliveryAsset, predictedHole, batchSize int, at time.Time) {
	m, ok := s.orders[o.ID]
	if !ok {
		return
	}
	t := at
	m.AssignedAsset = asset.ID
	m.AssignedAt = &t
	m.PredictedHole = predictedHole
	m.FinalStatus = o.Status
	if batchSize > 1 {
		m.WasBatched = true
		m.BatchSize = batchSize
	}
}

func (s *Summary) RecordBatch() { s.batches++ }

func (s *Summary) RecordNoCandidate() { s.noCandidate++ }

func (s *Summary) RecordDecline(asset *models.DeliveryAsset) {
	s.declined++
	if asset != nil {
		if m, ok := s.assets[asset.ID]; ok {
			m.DeclinedOffers++
		}
	}
}

func (s *Summary) RecordDelivery(o *models.Order, assetID string, at time.Time) {
	m, ok := s.orders[o.ID]
	if !ok {
		return
	}
	t := at
	m.DeliveredAt = &t
	m.DeliveryHole = o.DeliveryHole
	m.FinalStatus = models.OrderStatusDelivered
	if am, ok := s.assets[assetID]; ok {
		am.OrdersDelivered++
	}
}

// ObserveAsset accrues a tick of observed time, counting it as active when
// the asset was out delivering.
func (s *Summary) ObserveAsset(a *models.DeliveryAsset, tickMinutes float64) {
	m, ok := s.assets[a.ID]
	if !ok {
		return
	}
	m.ObservedMinutes += tickMinutes
	switch a.Status {
	case models.AssetStatusEnRouteToPickup, models.AssetStatusWaitingForOrder, models.AssetStatusEnRouteDropoff:
		m.ActiveMinutes += tickMinutes
	}
}

func (s *Summary) RecordTravel(a *models.DeliveryAsset, holes int) {
	if m, ok := s.assets[a.ID]; ok {
		m.HolesTraveled += holes
	}
}

func (s *Summary) Order(id string) *OrderMetrics { return s.orders[id] }

// Finalize freezes the end time and syncs final order statuses.
func (s *Summary) Finalize(end time.Time, orders map[string]*models.Order) {
	s.EndTime = end
	for id, m := range s.orders {
		if o, ok := orders[id]; ok {
			m.FinalStatus = o.Status
		}
	}
}

// Report computes the KPI rollup from everything recorded so far.
func (s *Summary) Report() *KPIReport {
	r := &KPIReport{
		CourseName:        s.cfg.CourseName,
		Strategy:          s.cfg.DispatcherStrategy,
		StartTime:         s.StartTime,
		EndTime:           s.EndTime,
		TotalOrders:       len(s.orderIDs),
		NoCandidateCount:  s.noCandidate,
		DeclinedCount:     s.declined,
		UtilizationByKind: make(map[models.AssetKind]float64),
	}

	var waits, deliveries []float64
	var onTime, batched int
	for _, id := range s.orderIDs {
		m := s.orders[id]
		if w, ok := m.WaitTimeMinutes(); ok {
			waits = append(waits, w)
		}
		if d, ok := m.DeliveryTimeMinutes(); ok {
			deliveries = append(deliveries, d)
			r.DeliveredOrders++
			if d <= s.cfg.TargetDeliveryTimeMin {
				onTime++
			}
			if m.WasBatched {
				batched++
			}
		} else if m.FinalStatus == models.OrderStatusPending {
			r.PendingOrders++
		}
	}
	r.WaitTime = describe(waits)
	r.DeliveryTime = describe(deliveries)
	if r.DeliveredOrders > 0 {
		r.OnTimeRate = float64(onTime) / float64(r.DeliveredOrders)
		r.BatchedRate = float64(batched) / float64(r.DeliveredOrders)
	}
	if hours := s.EndTime.Sub(s.StartTime).Hours(); hours > 0 {
		r.OrdersPerHour = float64(r.TotalOrders) / hours
	}

	kindActive := make(map[models.AssetKind]float64)
	kindObserved := make(map[models.AssetKind]float64)
	for _, id := range s.assetIDs {
		m := s.assets[id]
		r.Assets = append(r.Assets, m)
		kindActive[m.Kind] += m.ActiveMinutes
		kindObserved[m.Kind] += m.ObservedMinutes
	}
	for kind, observed := range kindObserved {
		if observed > 0 {
			r.UtilizationByKind[kind] = kindActive[kind] / observed
		}
	}
	return r
}

// Print writes the report to the standard logger in the same shape the
// console output uses during the run.
func (r *KPIReport) Print() {
	log.Printf("===== Simulation Summary: %s =====", r.CourseName)
	log.Printf("Strategy: %s  Window: %s .. %s", r.Strategy,
		r.StartTime.Format("15:04"), r.EndTime.Format("15:04"))
	log.Printf("Orders: %d total, %d delivered, %d pending, %d no-candidate, %d declined offers",
		r.TotalOrders, r.DeliveredOrders, r.PendingOrders, r.NoCandidateCount, r.DeclinedCount)
	log.Printf("Throughput: %.1f orders/hour", r.OrdersPerHour)
	if r.WaitTime.Count > 0 {
		log.Printf("Wait time (min): mean %.1f median %.1f p90 %.1f max %.1f",
			r.WaitTime.Mean, r.WaitTime.Median, r.WaitTime.P90, r.WaitTime.Max)
	}
	if r.DeliveryTime.Count > 0 {
		log.Printf("Delivery time (min): mean %.1f median %.1f p90 %.1f max %.1f",
			r.DeliveryTime.Mean, r.DeliveryTime.Median, r.DeliveryTime.P90, r.DeliveryTime.Max)
		log.Printf("On-time rate: %.0f%%  Batched rate: %.0f%%", r.OnTimeRate*100, r.BatchedRate*100)
	}
	kinds := make([]string, 0, len(r.UtilizationByKind))
	for kind := range r.UtilizationByKind {
		kinds = append(kinds, string(kind))
	}
	sort.Strings(kinds)
	for _, kind := range kinds {
		log.Printf("Utilization %s: %.0f%%", kind, r.UtilizationByKind[models.AssetKind(kind)]*100)
	}
	for _, a := range r.Assets {
		log.Printf("  %s (%s): %d delivered, %d holes traveled, %.0f%% utilized",
			a.Name, a.Kind, a.OrdersDelivered, a.HolesTraveled, a.UtilizationRate()*100)
	}
}
