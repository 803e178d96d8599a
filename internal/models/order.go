package models

import (
	"fmt"
	"time"
)

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusAssigned   OrderStatus = "assigned"
	OrderStatusInProgress OrderStatus = "in_progress"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

// Complexity buckets order items for prep-time prediction.
type Complexity string

const (
	ComplexitySimple  Complexity = "simple"  // bottled drinks
	ComplexityMedium  Complexity = "medium"  // sandwiches
	ComplexityComplex Complexity = "complex" // hot food
)

type TimeOfDay string

const (
	TimeOfDayMorning   TimeOfDay = "morning"
	TimeOfDayNoon      TimeOfDay = "noon"
	TimeOfDayAfternoon TimeOfDay = "afternoon"
)

type OrderItem struct {
	Name       string     `json:"name"`
	Quantity   int        `json:"quantity"`
	Complexity Complexity `json:"complexity"`
	Price      float64    `json:"price"`
}

// Order is a customer request placed from a hole on the course. AssignedTo
// holds the asset id only; the asset's order list is the owning side.
type Order struct {
	ID           string      `json:"id"`
	HoleNumber   int         `json:"hole_number"`
	Status       OrderStatus `json:"status"`
	AssignedTo   string      `json:"assigned_to,omitempty"`
	Items        []OrderItem `json:"items,omitempty"`
	TimeOfDay    TimeOfDay   `json:"time_of_day,omitempty"`
	PlacedAt     time.Time   `json:"placed_at"`
	AssignedAt   time.Time   `json:"assigned_at,omitempty"`
	DeliveredAt  time.Time   `json:"delivered_at,omitempty"`
	DeliveryHole int         `json:"delivery_hole,omitempty"`
}

// Value is the order total, derived from the items.
func (o *Order) Value() float64 {
	total := 0.0
	for _, item := range o.Items {
		total += item.Price * float64(item.Quantity)
	}
	return total
}

// Validate rejects malformed orders at the boundary.
func (o *Order) Validate(maxHole int) error {
	if o.ID == "" {
		return fmt.Errorf("order has no id")
	}
	if o.HoleNumber < 1 || o.HoleNumber > maxHole {
		return fmt.Errorf("order %s: hole number %d out of course range 1..%d", o.ID, o.HoleNumber, maxHole)
	}
	for _, item := range o.Items {
		if item.Quantity < 1 {
			return fmt.Errorf("order %s: item %q has quantity %d", o.ID, item.Name, item.Quantity)
		}
	}
	return nil
}
