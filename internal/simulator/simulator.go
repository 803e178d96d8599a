package simulator

import (
	"encoding/json"
	"fmt"
	"log"
	"math/rand"
	"time"

	"github.com/schollz/progressbar/v3"

	"github.com/swoopdelivery/swoopsim/internal/dispatch"
	"github.com/swoopdelivery/swoopsim/internal/factories"
	"github.com/swoopdelivery/swoopsim/internal/models"
	"github.com/swoopdelivery/swoopsim/internal/prediction"
)

const assetTickMinutes = 1.0

// CompleteDeliveryData is the payload of a complete_delivery event.
type CompleteDeliveryData struct {
	OrderID string
	AssetID string
}

// Simulator owns the virtual clock and the event loop. Time advances by
// jumping to the next scheduled event, never by wall-clock ticks, so a run
// finishes as fast as the host allows and replays identically for a seed.
type Simulator struct {
	Config      *models.Config
	CurrentTime time.Time
	Rng         *rand.Rand
	EventQueue  *models.EventQueue
	Assets      []*models.DeliveryAsset
	Orders      map[string]*models.Order

	predictor    *prediction.Service
	dispatcher   *dispatch.Dispatcher
	mover        *Mover
	orderFactory *factories.OrderFactory
	summary      *Summary
	output       OutputDestination

	pendingBatch   []*models.Order
	batchScheduled bool
	eventsCount    int
	stopped        bool
	bar            *progressbar.ProgressBar
}

func NewSimulator(config *models.Config) (*Simulator, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	rng := rand.New(rand.NewSource(config.Seed))
	predictor := prediction.NewService(rng, config.CourseHoles)
	dispatcher, err := dispatch.NewDispatcher(dispatch.ConfigFrom(config), config.DispatcherStrategy, predictor, rng)
	if err != nil {
		return nil, err
	}
	return &Simulator{
		Config:       config,
		CurrentTime:  config.StartDate,
		Rng:          rng,
		EventQueue:   models.NewEventQueue(),
		Orders:       make(map[string]*models.Order),
		predictor:    predictor,
		dispatcher:   dispatcher,
		mover:        NewMover(config, rng),
		orderFactory: factories.NewOrderFactory(rng),
		summary:      NewSummary(config),
	}, nil
}

// SetAssets replaces the fleet, for callers that load assets from a
// repository instead of generating them.
func (s *Simulator) SetAssets(assets []*models.DeliveryAsset) {
	s.Assets = assets
	for _, a := range assets {
		s.summary.AddAsset(a)
	}
}

func (s *Simulator) initializeAssets() {
	factory := factories.NewAssetFactory(s.Config.Seed)
	var assets []*models.DeliveryAsset
	for i := 0; i < s.Config.NumBeverageCarts; i++ {
		assets = append(assets, factory.CreateBeverageCart(i, s.Config))
	}
	for i := 0; i < s.Config.NumDeliveryStaff; i++ {
		assets = append(assets, factory.CreateDeliveryStaff(i))
	}
	s.SetAssets(assets)
}

// scheduleEvents fills the queue with the run's skeleton: every order
// arrival, every movement tick and every status log, all computed up front
// so the loop never consults the wall clock.
func (s *Simulator) scheduleEvents() {
	horizon := s.Config.Horizon()

	mean := s.Config.OrderGenerationIntervalMin / s.Config.OrderVolumeMultiplier
	t := s.Config.StartDate
	for {
		gap := s.Rng.NormFloat64()*s.Config.OrderGenerationVariance + mean
		if gap < 0.5 {
			gap = 0.5
		}
		t = t.Add(time.Duration(gap * float64(time.Minute)))
		if t.After(horizon) {
			break
		}
		s.EventQueue.Enqueue(&models.Event{Time: t, Type: models.EventGenerateOrder})
	}

	for t := s.Config.StartDate.Add(time.Minute); !t.After(horizon); t = t.Add(time.Minute) {
		s.EventQueue.Enqueue(&models.Event{Time: t, Type: models.EventUpdateAssets})
	}

	if s.Config.EnableDetailedLogging && s.Config.LogIntervalMinutes > 0 {
		interval := time.Duration(s.Config.LogIntervalMinutes * float64(time.Minute))
		for t := s.Config.StartDate.Add(interval); !t.After(horizon); t = t.Add(interval) {
			s.EventQueue.Enqueue(&models.Event{Time: t, Type: models.EventLogStatus})
		}
	}
}

// Stop halts the run before the configured horizon. Safe to call from
// event handlers; the loop checks it between events.
func (s *Simulator) Stop() { s.stopped = true }

// SetOutput overrides the configured output destination. Must be called
// before Run.
func (s *Simulator) SetOutput(out OutputDestination) { s.output = out }

// Run executes the simulation to its horizon and returns the KPI rollup.
func (s *Simulator) Run() (*KPIReport, error) {
	if s.output == nil {
		s.output = s.determineOutputDestination()
	}
	defer func() {
		if err := s.output.Close(); err != nil {
			log.Printf("error closing output: %v", err)
		}
	}()

	if s.Assets == nil {
		s.initializeAssets()
	}
	s.scheduleEvents()

	horizon := s.Config.Horizon()
	log.Printf("Simulation of %s starts from %s to %s", s.Config.CourseName,
		s.CurrentTime.Format(time.RFC3339), horizon.Format(time.RFC3339))

	if s.Config.ShowProgress {
		s.bar = progressbar.Default(int64(s.Config.SimulationDurationMinutes), "simulating")
	}

	for !s.stopped && !s.EventQueue.IsEmpty() {
		event := s.EventQueue.Dequeue()
		if event.Time.After(horizon) {
			break
		}
		s.CurrentTime = event.Time
		s.processEvent(event)
		s.eventsCount++
		if s.bar != nil {
			elapsed := int(s.CurrentTime.Sub(s.Config.StartDate).Minutes())
			_ = s.bar.Set(elapsed)
		}
	}
	if s.bar != nil {
		_ = s.bar.Finish()
	}

	s.summary.Finalize(s.CurrentTime, s.Orders)
	report := s.summary.Report()
	log.Printf("Simulation completed at %s after %d events",
		s.CurrentTime.Format(time.RFC3339), s.eventsCount)
	if s.Config.EnableDetailedLogging {
		report.Print()
	}
	return report, nil
}

func (s *Simulator) processEvent(event *models.Event) {
	switch event.Type {
	case models.EventGenerateOrder:
		s.handleGenerateOrder()
	case models.EventUpdateAssets:
		s.handleUpdateAssets()
	case models.EventProcessBatch:
		s.handleProcessBatch()
	case models.EventCompleteDelivery:
		s.handleCompleteDelivery(event)
	case models.EventLogStatus:
		s.handleLogStatus()
	default:
		log.Printf("Unhandled event type: %s", event.Type)
	}
}

func (s *Simulator) batchingActive() bool {
	return s.Config.BatchingEnabled || s.Config.DispatcherStrategy == "batch_orders"
}

func (s *Simulator) handleGenerateOrder() {
	hole := s.Rng.Intn(s.Config.CourseHoles) + 1
	order := s.orderFactory.CreateOrder(hole, s.CurrentTime)
	s.Orders[order.ID] = order
	s.summary.AddOrder(order)

	s.emit(TopicOrderEvents, OrderPlacedEvent{
		Timestamp:  s.CurrentTime.Format(time.RFC3339),
		OrderID:    order.ID,
		HoleNumber: int32(order.HoleNumber),
		ItemCount:  int32(len(order.Items)),
		Value:      order.Value(),
		TimeOfDay:  string(order.TimeOfDay),
	})

	if s.batchingActive() {
		s.pendingBatch = append(s.pendingBatch, order)
		if !s.batchScheduled {
			window := time.Duration(s.Config.BatchTimeWindowMin * float64(time.Minute))
			s.EventQueue.Enqueue(&models.Event{
				Time: s.CurrentTime.Add(window),
				Type: models.EventProcessBatch,
			})
			s.batchScheduled = true
		}
		return
	}
	s.dispatchOrder(order)
}

func (s *Simulator) dispatchOrder(order *models.Order) {
	result := s.dispatcher.Dispatch(order, s.Assets, s.CurrentTime)
	s.recordDispatch(result, []*models.Order{order})
}

func (s *Simulator) handleProcessBatch() {
	s.batchScheduled = false
	pending := s.pendingBatch
	s.pendingBatch = nil

	groups := dispatch.GroupOrders(pending, s.Config.BatchHoleThreshold, s.Config.MaxOrdersPerBatch)
	for _, group := range groups {
		result := s.dispatcher.DispatchBatch(group, s.Assets, s.CurrentTime)
		if result.Outcome == dispatch.OutcomeAssigned && len(group) > 1 {
			s.summary.RecordBatch()
		}
		s.recordDispatch(result, group)
		if result.Outcome == dispatch.OutcomeNoCandidate {
			// carry unserved orders into the next window; a decline is
			// final here, the order stays pending like the singleton path
			s.pendingBatch = append(s.pendingBatch, group...)
		}
	}

	if len(s.pendingBatch) > 0 && !s.batchScheduled {
		window := time.Duration(s.Config.BatchTimeWindowMin * float64(time.Minute))
		s.EventQueue.Enqueue(&models.Event{
			Time: s.CurrentTime.Add(window),
			Type: models.EventProcessBatch,
		})
		s.batchScheduled = true
	}
}

func (s *Simulator) recordDispatch(result dispatch.Result, group []*models.Order) {
	now := s.CurrentTime.Format(time.RFC3339)
	switch result.Outcome {
	case dispatch.OutcomeAssigned:
		a := result.Assignment
		for i, o := range a.Orders {
			s.summary.RecordAssignment(o, a.Asset, a.PredictedHoles[i], len(a.Orders), s.CurrentTime)
			s.EventQueue.Enqueue(&models.Event{
				Time: s.CurrentTime.Add(time.Duration(a.OrderETAs[i] * float64(time.Minute))),
				Type: models.EventCompleteDelivery,
				Data: &CompleteDeliveryData{OrderID: o.ID, AssetID: a.Asset.ID},
			})
			s.emit(TopicAssignmentEvents, OrderAssignedEvent{
				Timestamp:     now,
				OrderID:       o.ID,
				AssetID:       a.Asset.ID,
				AssetKind:     string(a.Asset.Kind),
				HoleNumber:    int32(o.HoleNumber),
				PredictedHole: int32(a.PredictedHoles[i]),
				EtaMinutes:    a.OrderETAs[i],
				Acceptance:    a.Acceptance,
				BatchSize:     int32(len(a.Orders)),
				Outcome:       string(dispatch.OutcomeAssigned),
			})
		}
		if s.Config.EnableDetailedLogging {
			log.Printf("[%s] assigned %d order(s) to %s, eta %.1f min",
				now, len(a.Orders), a.Asset.Name, a.ETA)
		}
	case dispatch.OutcomeNoCandidate:
		s.summary.RecordNoCandidate()
		for _, o := range group {
			s.emit(TopicAssignmentEvents, OrderAssignedEvent{
				Timestamp:  now,
				OrderID:    o.ID,
				HoleNumber: int32(o.HoleNumber),
				Outcome:    string(dispatch.OutcomeNoCandidate),
			})
		}
	case dispatch.OutcomeDeclined:
		s.summary.RecordDecline(result.DeclinedBy)
		for _, o := range group {
			s.emit(TopicAssignmentEvents, OrderAssignedEvent{
				Timestamp:  now,
				OrderID:    o.ID,
				HoleNumber: int32(o.HoleNumber),
				Outcome:    string(dispatch.OutcomeDeclined),
			})
		}
	}
}

func (s *Simulator) handleUpdateAssets() {
	for _, asset := range s.Assets {
		res := s.mover.Advance(asset, s.CurrentTime)
		s.summary.ObserveAsset(asset, assetTickMinutes)
		if res.HolesMoved > 0 {
			s.summary.RecordTravel(asset, res.HolesMoved)
		}
		for _, o := range res.Delivered {
			s.completeOrder(o, asset)
		}
		if s.Config.EnableDetailedLogging {
			s.emitAssetStatus(asset)
		}
	}
}

func (s *Simulator) emitAssetStatus(asset *models.DeliveryAsset) {
	ev := AssetStatusEvent{
		Timestamp:  s.CurrentTime.Format(time.RFC3339),
		AssetID:    asset.ID,
		AssetKind:  string(asset.Kind),
		Status:     string(asset.Status),
		Location:   asset.CurrentLocation.String(),
		OrderCount: int32(len(asset.CurrentOrders)),
	}
	if asset.Destination != nil {
		ev.Destination = asset.Destination.String()
	}
	s.emit(TopicAssetStatusEvents, ev)
}

// completeOrder records a handoff the movement tick already made.
func (s *Simulator) completeOrder(order *models.Order, asset *models.DeliveryAsset) {
	s.summary.RecordDelivery(order, asset.ID, s.CurrentTime)
	wait := order.AssignedAt.Sub(order.PlacedAt).Minutes()
	total := order.DeliveredAt.Sub(order.PlacedAt).Minutes()
	s.emit(TopicDeliveryEvents, OrderDeliveredEvent{
		Timestamp:       s.CurrentTime.Format(time.RFC3339),
		OrderID:         order.ID,
		AssetID:         asset.ID,
		DeliveryHole:    int32(order.DeliveryHole),
		WaitTimeMin:     wait,
		DeliveryTimeMin: total,
	})
	if s.Config.EnableDetailedLogging {
		log.Printf("[%s] %s delivered %s at hole %d (%.1f min after placement)",
			s.CurrentTime.Format(time.RFC3339), asset.Name, order.ID, order.DeliveryHole, total)
	}
}

// handleCompleteDelivery is the authoritative completion for orders the
// movement ticks have not yet handed off by their predicted ETA. The asset
// is brought to the delivery hole and the order closed.
func (s *Simulator) handleCompleteDelivery(event *models.Event) {
	data, ok := event.Data.(*CompleteDeliveryData)
	if !ok {
		log.Printf("complete_delivery event with unexpected payload %T", event.Data)
		return
	}
	order, ok := s.Orders[data.OrderID]
	if !ok || order.Status == models.OrderStatusDelivered {
		return
	}
	asset := s.assetByID(data.AssetID)
	if asset == nil || asset.RemoveOrder(order.ID) == nil {
		return
	}

	dest := models.Hole(order.DeliveryHole)
	traveled := asset.CurrentLocation.DistanceTo(dest)
	asset.CurrentLocation = dest
	if traveled > 0 {
		s.summary.RecordTravel(asset, traveled)
	}

	order.Status = models.OrderStatusDelivered
	order.DeliveredAt = s.CurrentTime
	s.completeOrder(order, asset)

	if len(asset.CurrentOrders) == 0 {
		asset.Status = models.AssetStatusIdle
		asset.Destination = nil
	} else {
		next := models.Hole(asset.CurrentOrders[0].DeliveryHole)
		asset.Destination = &next
		asset.Status = models.AssetStatusEnRouteDropoff
	}
	asset.LastUpdateTime = s.CurrentTime
}

func (s *Simulator) handleLogStatus() {
	var pending, active, delivered int
	for _, o := range s.Orders {
		switch o.Status {
		case models.OrderStatusPending:
			pending++
		case models.OrderStatusAssigned, models.OrderStatusInProgress:
			active++
		case models.OrderStatusDelivered:
			delivered++
		}
	}
	var idle, busy int
	for _, a := range s.Assets {
		switch a.Status {
		case models.AssetStatusIdle:
			idle++
		case models.AssetStatusEnRouteToPickup, models.AssetStatusWaitingForOrder, models.AssetStatusEnRouteDropoff:
			busy++
		}
	}
	log.Printf("[%s] orders: %d pending, %d active, %d delivered; assets: %d idle, %d busy",
		s.CurrentTime.Format("15:04"), pending, active, delivered, idle, busy)
	s.emit(TopicStatusLogEvents, StatusLogEvent{
		Timestamp:       s.CurrentTime.Format(time.RFC3339),
		PendingOrders:   int32(pending),
		ActiveOrders:    int32(active),
		DeliveredOrders: int32(delivered),
		IdleAssets:      int32(idle),
		BusyAssets:      int32(busy),
	})
}

func (s *Simulator) assetByID(id string) *models.DeliveryAsset {
	for _, a := range s.Assets {
		if a.ID == id {
			return a
		}
	}
	return nil
}

func (s *Simulator) emit(topic string, payload interface{}) {
	if s.output == nil {
		return
	}
	msg, err := json.Marshal(payload)
	if err != nil {
		log.Printf("Error serializing %s event: %v", topic, err)
		return
	}
	if err := s.output.WriteMessage(topic, msg); err != nil {
		log.Printf("Failed to write %s message: %v", topic, err)
	}
}

// Dispatch offers an externally created order to the fleet right away,
// bypassing any batching window. It validates the order, registers it and
// returns the outcome with before/after snapshots of the touched state.
func (s *Simulator) Dispatch(order *models.Order) (*DispatchResponse, error) {
	if order == nil {
		return nil, fmt.Errorf("nil order")
	}
	if err := order.Validate(s.Config.CourseHoles); err != nil {
		return nil, err
	}
	if _, exists := s.Orders[order.ID]; exists {
		return nil, fmt.Errorf("order %s already exists", order.ID)
	}
	if order.PlacedAt.IsZero() {
		order.PlacedAt = s.CurrentTime
	}
	s.Orders[order.ID] = order
	s.summary.AddOrder(order)

	before := snapshotOrder(order)
	result := s.dispatcher.Dispatch(order, s.Assets, s.CurrentTime)
	s.recordDispatch(result, []*models.Order{order})

	resp := &DispatchResponse{
		Outcome:     result.Outcome,
		OrderBefore: before,
		OrderAfter:  snapshotOrder(order),
	}
	if result.Assignment != nil {
		resp.Assignment = result.Assignment
		resp.Asset = snapshotAsset(result.Assignment.Asset)
	}
	return resp, nil
}

// AdvanceAsset runs one movement tick for a single asset, for callers
// driving the fleet from outside the event loop.
func (s *Simulator) AdvanceAsset(assetID string) (*AdvanceResponse, error) {
	asset := s.assetByID(assetID)
	if asset == nil {
		return nil, fmt.Errorf("unknown asset %s", assetID)
	}
	before := snapshotAsset(asset)
	res := s.mover.Advance(asset, s.CurrentTime)
	s.summary.ObserveAsset(asset, assetTickMinutes)
	if res.HolesMoved > 0 {
		s.summary.RecordTravel(asset, res.HolesMoved)
	}
	for _, o := range res.Delivered {
		s.completeOrder(o, asset)
	}
	return &AdvanceResponse{
		Before:     before,
		After:      snapshotAsset(asset),
		Delivered:  res.Delivered,
		HolesMoved: res.HolesMoved,
	}, nil
}

// Summary exposes the running metrics for inspection mid-run or after.
func (s *Simulator) Summary() *Summary { return s.summary }

// DispatchResponse reports a boundary dispatch with state snapshots.
type DispatchResponse struct {
	Outcome     dispatch.Outcome
	Assignment  *dispatch.Assignment
	OrderBefore *models.Order
	OrderAfter  *models.Order
	Asset       *models.DeliveryAsset
}

// AdvanceResponse reports one externally driven movement tick.
type AdvanceResponse struct {
	Before     *models.DeliveryAsset
	After      *models.DeliveryAsset
	Delivered  []*models.Order
	HolesMoved int
}

func snapshotOrder(o *models.Order) *models.Order {
	cp := *o
	return &cp
}

func snapshotAsset(a *models.DeliveryAsset) *models.DeliveryAsset {
	cp := *a
	cp.CurrentOrders = append([]*models.Order(nil), a.CurrentOrders...)
	if a.Destination != nil {
		d := *a.Destination
		cp.Destination = &d
	}
	return &cp
}
