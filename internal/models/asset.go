package models

import (
	"fmt"
	"time"
)

// MaxCourseHoles is the hole count of a full course. Configurations may run
// a shorter back nine but never a longer one.
const MaxCourseHoles = 18

type AssetKind string

const (
	AssetKindBeverageCart  AssetKind = "beverage_cart"
	AssetKindDeliveryStaff AssetKind = "delivery_staff"
)

// Loop is the half of the course a beverage cart is restricted to.
type Loop string

const (
	LoopFront9 Loop = "front_9"
	LoopBack9  Loop = "back_9"
	LoopNone   Loop = "" // delivery staff roam the whole course
)

type AssetStatus string

const (
	AssetStatusIdle            AssetStatus = "idle"
	AssetStatusEnRouteToPickup AssetStatus = "en_route_to_pickup"
	AssetStatusWaitingForOrder AssetStatus = "waiting_for_order"
	AssetStatusEnRouteDropoff  AssetStatus = "en_route_to_dropoff"
	AssetStatusInactive        AssetStatus = "inactive"
)

// ParseAssetStatus normalizes the legacy two-state wire names onto the
// canonical set. The aliases never appear in core state.
func ParseAssetStatus(s string) (AssetStatus, error) {
	switch AssetStatus(s) {
	case AssetStatusIdle, AssetStatusEnRouteToPickup, AssetStatusWaitingForOrder,
		AssetStatusEnRouteDropoff, AssetStatusInactive:
		return AssetStatus(s), nil
	}
	switch s {
	case "available":
		return AssetStatusIdle, nil
	case "on_delivery":
		return AssetStatusEnRouteDropoff, nil
	}
	return "", fmt.Errorf("unknown asset status %q", s)
}

// DeliveryAsset is a mobile unit that carries orders from the clubhouse out
// to players: a zone-restricted beverage cart or free-roaming delivery staff.
type DeliveryAsset struct {
	ID              string      `json:"id"`
	Name            string      `json:"name"`
	Kind            AssetKind   `json:"kind"`
	Loop            Loop        `json:"loop,omitempty"`
	Status          AssetStatus `json:"status"`
	CurrentLocation Location    `json:"current_location"`
	Destination     *Location   `json:"destination,omitempty"`
	CurrentOrders   []*Order    `json:"current_orders,omitempty"`
	LastUpdateTime  time.Time   `json:"last_update_time,omitempty"`
}

func (a *DeliveryAsset) IsCart() bool {
	return a.Kind == AssetKindBeverageCart
}

// ZoneContains reports whether the given hole lies inside the asset's
// allowed zone. Staff have no restriction; a front-nine cart is confined to
// holes 1..9 and a back-nine cart to 10..maxHole.
func (a *DeliveryAsset) ZoneContains(hole, maxHole int) bool {
	if !a.IsCart() {
		return true
	}
	switch a.Loop {
	case LoopFront9:
		return hole >= 1 && hole <= 9
	case LoopBack9:
		return hole >= 10 && hole <= maxHole
	}
	return false
}

// ZoneMidpoint is the hole an idle cart drifts toward while repositioning.
func (a *DeliveryAsset) ZoneMidpoint() int {
	if a.Loop == LoopBack9 {
		return 14
	}
	return 5
}

// RemoveOrder drops the order with the given id from the asset's list,
// preserving the insertion order of the rest.
func (a *DeliveryAsset) RemoveOrder(orderID string) *Order {
	for i, o := range a.CurrentOrders {
		if o.ID == orderID {
			a.CurrentOrders = append(a.CurrentOrders[:i], a.CurrentOrders[i+1:]...)
			return o
		}
	}
	return nil
}
