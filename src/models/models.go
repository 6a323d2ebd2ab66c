package models

type SubmitOrderRequest struct {
	OrderID    string `json:"order_id"`
	SecurityID string `json:"security_id"`
	Side       string `json:"side"` // "Buy" or "Sell"
	Quantity   uint32 `json:"quantity"`
	User       string `json:"user"`
	Company    string `json:"company"`
}

type SubmitOrderResponse struct {
	OrderID string `json:"order_id"`
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

type CancelOrderResponse struct {
	OrderID string `json:"order_id"`
	Status  string `json:"status"`
}

type BulkCancelResponse struct {
	Key       string `json:"key"`
	Cancelled int    `json:"cancelled"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

type OrderInfo struct {
	OrderID    string `json:"order_id"`
	SecurityID string `json:"security_id"`
	Side       string `json:"side"`
	Quantity   uint32 `json:"quantity"`
	User       string `json:"user"`
	Company    string `json:"company"`
}

type OrdersResponse struct {
	Count  int         `json:"count"`
	Orders []OrderInfo `json:"orders"`
}

type MatchingSizeResponse struct {
	SecurityID   string `json:"security_id"`
	MatchingSize uint32 `json:"matching_size"`
}

type CompanyVolumeInfo struct {
	Company string `json:"company"`
	Buy     uint64 `json:"buy"`
	Sell    uint64 `json:"sell"`
}

type SnapshotResponse struct {
	SecurityID       string              `json:"security_id"`
	TotalBuy         uint64              `json:"total_buy"`
	TotalSell        uint64              `json:"total_sell"`
	MaxCompanyVolume uint64              `json:"max_company_volume"`
	Companies        []CompanyVolumeInfo `json:"companies"` // sorted by company name
}

type HealthResponse struct {
	Status        string `json:"status"`
	UptimeSeconds int64  `json:"uptime_seconds"`
	LiveOrders    int64  `json:"live_orders"`
}

type MetricsResponse struct {
	OrdersReceived         int64   `json:"orders_received"`
	OrdersAdded            int64   `json:"orders_added"`
	OrdersDuplicate        int64   `json:"orders_duplicate"`
	OrdersRejected         int64   `json:"orders_rejected"`
	OrdersCancelled        int64   `json:"orders_cancelled"`
	LiveOrders             int64   `json:"live_orders"`
	LatencyP50Ms           float64 `json:"latency_p50_ms"`
	LatencyP99Ms           float64 `json:"latency_p99_ms"`
	LatencyP999Ms          float64 `json:"latency_p999_ms"`
	ThroughputOrdersPerSec float64 `json:"throughput_orders_per_sec"`
}
