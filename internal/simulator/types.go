package simulator

// Event payloads serialized to the configured output destination. Parquet
// tags drive the schema when output_destination is parquet; the same structs
// marshal to JSON for the file, kafka and postgres sinks.

type OrderPlacedEvent struct {
	Timestamp  string  `json:"timestamp" parquet:"name=timestamp, type=BYTE_ARRAY, convertedtype=UTF8"`
	OrderID    string  `json:"order_id" parquet:"name=order_id, type=BYTE_ARRAY, convertedtype=UTF8"`
	HoleNumber int32   `json:"hole_number" parquet:"name=hole_number, type=INT32"`
	ItemCount  int32   `json:"item_count" parquet:"name=item_count, type=INT32"`
	Value      float64 `json:"value" parquet:"name=value, type=DOUBLE"`
	TimeOfDay  string  `json:"time_of_day" parquet:"name=time_of_day, type=BYTE_ARRAY, convertedtype=UTF8"`
}

type OrderAssignedEvent struct {
	Timestamp     string  `json:"timestamp" parquet:"name=timestamp, type=BYTE_ARRAY, convertedtype=UTF8"`
	OrderID       string  `json:"order_id" parquet:"name=order_id, type=BYTE_ARRAY, convertedtype=UTF8"`
	AssetID       string  `json:"asset_id" parquet:"name=asset_id, type=BYTE_ARRAY, convertedtype=UTF8"`
	AssetKind     string  `json:"asset_kind" parquet:"name=asset_kind, type=BYTE_ARRAY, convertedtype=UTF8"`
	HoleNumber    int32   `json:"hole_number" parquet:"name=hole_number, type=INT32"`
	PredictedHole int32   `json:"predicted_hole" parquet:"name=predicted_hole, type=INT32"`
	EtaMinutes    float64 `json:"eta_minutes" parquet:"name=eta_minutes, type=DOUBLE"`
	Acceptance    float64 `json:"acceptance" parquet:"name=acceptance, type=DOUBLE"`
	BatchSize     int32   `json:"batch_size" parquet:"name=batch_size, type=INT32"`
	Outcome       string  `json:"outcome" parquet:"name=outcome, type=BYTE_ARRAY, convertedtype=UTF8"`
}

type OrderDeliveredEvent struct {
	Timestamp       string  `json:"timestamp" parquet:"name=timestamp, type=BYTE_ARRAY, convertedtype=UTF8"`
	OrderID         string  `json:"order_id" parquet:"name=order_id, type=BYTE_ARRAY, convertedtype=UTF8"`
	AssetID         string  `json:"asset_id" parquet:"name=asset_id, type=BYTE_ARRAY, convertedtype=UTF8"`
	DeliveryHole    int32   `json:"delivery_hole" parquet:"name=delivery_hole, type=INT32"`
	WaitTimeMin     float64 `json:"wait_time_min" parquet:"name=wait_time_min, type=DOUBLE"`
	DeliveryTimeMin float64 `json:"delivery_time_min" parquet:"name=delivery_time_min, type=DOUBLE"`
}

type AssetStatusEvent struct {
	Timestamp   string `json:"timestamp" parquet:"name=timestamp, type=BYTE_ARRAY, convertedtype=UTF8"`
	AssetID     string `json:"asset_id" parquet:"name=asset_id, type=BYTE_ARRAY, convertedtype=UTF8"`
	AssetKind   string `json:"asset_kind" parquet:"name=asset_kind, type=BYTE_ARRAY, convertedtype=UTF8"`
	Status      string `json:"status" parquet:"name=status, type=BYTE_ARRAY, convertedtype=UTF8"`
	Location    string `json:"location" parquet:"name=location, type=BYTE_ARRAY, convertedtype=UTF8"`
	Destination string `json:"destination,omitempty" parquet:"name=destination, type=BYTE_ARRAY, convertedtype=UTF8"`
	OrderCount  int32  `json:"order_count" parquet:"name=order_count, type=INT32"`
}

type StatusLogEvent struct {
	Timestamp       string `json:"timestamp" parquet:"name=timestamp, type=BYTE_ARRAY, convertedtype=UTF8"`
	PendingOrders   int32  `json:"pending_orders" parquet:"name=pending_orders, type=INT32"`
	ActiveOrders    int32  `json:"active_orders" parquet:"name=active_orders, type=INT32"`
	DeliveredOrders int32  `json:"delivered_orders" parquet:"name=delivered_orders, type=INT32"`
	IdleAssets      int32  `json:"idle_assets" parquet:"name=idle_assets, type=INT32"`
	BusyAssets      int32  `json:"busy_assets" parquet:"name=busy_assets, type=INT32"`
}
