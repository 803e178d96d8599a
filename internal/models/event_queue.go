package models

import (
	"container/heap"
	"fmt"
	"time"
)

const (
	EventGenerateOrder    = "generate_order"
	EventUpdateAssets     = "update_assets"
	EventProcessBatch     = "process_batch"
	EventCompleteDelivery = "complete_delivery"
	EventLogStatus        = "log_status"
)

// Event represents a simulation event
type Event struct {
	Time time.Time
	Type string
	Data interface{}

	seq uint64
}

// EventQueue is a priority queue of events ordered by timestamp. Events
// scheduled for the same timestamp dequeue in the order they were enqueued,
// which keeps a seeded run byte-for-byte reproducible.
type EventQueue struct {
	events  eventHeap
	nextSeq uint64
	lastPop time.Time
}

// eventHeap implements heap.Interface and holds Events
type eventHeap []*Event

func (h eventHeap) Len() int { return len(h) }
func (h eventHeap) Less(i, j int) bool {
	if h[i].Time.Equal(h[j].Time) {
		return h[i].seq < h[j].seq
	}
	return h[i].Time.Before(h[j].Time)
}
func (h eventHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *eventHeap) Push(x interface{}) {
	*h = append(*h, x.(*Event))
}

func (h *eventHeap) Pop() interface{} {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[0 : n-1]
	return x
}

// NewEventQueue creates a new EventQueue
func NewEventQueue() *EventQueue {
	return &EventQueue{events: make(eventHeap, 0)}
}

// Enqueue adds an event to the queue
func (eq *EventQueue) Enqueue(event *Event) {
	event.seq = eq.nextSeq
	eq.nextSeq++
	heap.Push(&eq.events, event)
}

// Dequeue removes and returns the earliest event from the queue. Popping an
// event older than the previous pop means the schedule is corrupted, which
// is a consistency fault, not a business outcome.
func (eq *EventQueue) Dequeue() *Event {
	if len(eq.events) == 0 {
		return nil
	}
	event := heap.Pop(&eq.events).(*Event)
	if event.Time.Before(eq.lastPop) {
		panic(fmt.Sprintf("event queue popped %s event at %s after %s",
			event.Type, event.Time.Format(time.RFC3339), eq.lastPop.Format(time.RFC3339)))
	}
	eq.lastPop = event.Time
	return event
}

// Peek returns the earliest event without removing it
func (eq *EventQueue) Peek() *Event {
	if len(eq.events) == 0 {
		return nil
	}
	return eq.events[0]
}

// IsEmpty returns true if the queue is empty
func (eq *EventQueue) IsEmpty() bool {
	return len(eq.events) == 0
}

// Len returns the number of events in the queue
func (eq *EventQueue) Len() int {
	return len(eq.events)
}
