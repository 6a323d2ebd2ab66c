package handlers

import (
	"errors"
	"os"
	"sort"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"order-cache/src/cache"
	"order-cache/src/metrics"
	"order-cache/src/models"
)

const (
	StatusAccepted  = "ACCEPTED"
	StatusDuplicate = "DUPLICATE"
	StatusCancelled = "CANCELLED"
	StatusNotLive   = "NOT_LIVE"
)

// OrderHandler serves the cache over HTTP. The cache itself is single
// writer, so every mutation runs under mu; reads share it.
type OrderHandler struct {
	Cache           *cache.OrderCache
	StartTime       time.Time
	OrdersReceived  int64
	OrdersAdded     int64
	OrdersDuplicate int64
	OrdersRejected  int64
	OrdersCancelled int64

	mu           sync.RWMutex
	latencies    []time.Duration
	latenciesMu  sync.RWMutex
	maxLatencies int
}

func NewOrderHandler(orderCache *cache.OrderCache) *OrderHandler {
	maxLatencies := 10000
	if envMax := os.Getenv("METRICS_MAX_LATENCIES"); envMax != "" {
		if parsed, err := strconv.Atoi(envMax); err == nil && parsed > 0 {
			maxLatencies = parsed
		}
	}

	return &OrderHandler{
		Cache:        orderCache,
		StartTime:    time.Now(),
		latencies:    make([]time.Duration, 0, maxLatencies),
		maxLatencies: maxLatencies,
	}
}

func (h *OrderHandler) SubmitOrder(c *fiber.Ctx) error {
	var req models.SubmitOrderRequest

	if err := c.BodyParser(&req); err != nil {
		log.Warn().
			Err(err).
			Str("ip", c.IP()).
			Str("path", c.Path()).
			Msg("Invalid request: malformed JSON")
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{
			Error: "Invalid request: malformed JSON",
		})
	}

	order := cache.NewOrder(req.OrderID, req.SecurityID, cache.Side(req.Side), req.Quantity, req.User, req.Company)
	atomic.AddInt64(&h.OrdersReceived, 1)

	startTime := time.Now()

	h.mu.Lock()
	_, duplicate, _ := h.Cache.GetOrder(req.OrderID)
	err := h.Cache.AddOrder(order)
	live := h.Cache.Len()
	h.mu.Unlock()

	h.recordLatency(time.Since(startTime))
	metrics.LiveOrders.Set(float64(live))

	if err != nil {
		atomic.AddInt64(&h.OrdersRejected, 1)
		metrics.Observe(metrics.OpAdd, metrics.ResultRejected, startTime)

		var invalid *cache.InvalidOrderError
		if errors.As(err, &invalid) {
			log.Warn().
				Err(err).
				Str("order_id", req.OrderID).
				Str("security_id", req.SecurityID).
				Str("ip", c.IP()).
				Msg("Invalid order request")
			return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{
				Error: err.Error(),
			})
		}
		log.Error().
			Err(err).
			Str("order_id", req.OrderID).
			Msg("Error adding order")
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse{
			Error: "Internal server error",
		})
	}

	// edge case: re-adding a live order id is accepted but changes nothing
	if duplicate {
		atomic.AddInt64(&h.OrdersDuplicate, 1)
		metrics.Observe(metrics.OpAdd, metrics.ResultDuplicate, startTime)
		log.Info().
			Str("order_id", req.OrderID).
			Msg("Duplicate order ignored")
		return c.Status(fiber.StatusOK).JSON(models.SubmitOrderResponse{
			OrderID: req.OrderID,
			Status:  StatusDuplicate,
			Message: "Order already live",
		})
	}

	atomic.AddInt64(&h.OrdersAdded, 1)
	metrics.Observe(metrics.OpAdd, metrics.ResultOK, startTime)

	log.Info().
		Str("order_id", req.OrderID).
		Str("security_id", req.SecurityID).
		Str("side", req.Side).
		Uint32("quantity", req.Quantity).
		Str("user", req.User).
		Str("company", req.Company).
		Msg("Order added")

	return c.Status(fiber.StatusCreated).JSON(models.SubmitOrderResponse{
		OrderID: req.OrderID,
		Status:  StatusAccepted,
		Message: "Order added to cache",
	})
}

func (h *OrderHandler) CancelOrder(c *fiber.Ctx) error {
	orderID := c.Params("id")
	startTime := time.Now()

	h.mu.Lock()
	_, wasLive, _ := h.Cache.GetOrder(orderID)
	err := h.Cache.CancelOrder(orderID)
	live := h.Cache.Len()
	h.mu.Unlock()

	if err != nil {
		metrics.Observe(metrics.OpCancel, metrics.ResultRejected, startTime)
		log.Warn().
			Err(err).
			Str("order_id", orderID).
			Str("ip", c.IP()).
			Msg("Cancel order: invalid order id")
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{
			Error: err.Error(),
		})
	}

	metrics.Observe(metrics.OpCancel, metrics.ResultOK, startTime)
	metrics.LiveOrders.Set(float64(live))

	status := StatusNotLive
	if wasLive {
		status = StatusCancelled
		atomic.AddInt64(&h.OrdersCancelled, 1)
		metrics.OrdersCancelled.Inc()
		log.Info().
			Str("order_id", orderID).
			Str("ip", c.IP()).
			Msg("Order cancelled")
	}

	return c.Status(fiber.StatusOK).JSON(models.CancelOrderResponse{
		OrderID: orderID,
		Status:  status,
	})
}

func (h *OrderHandler) CancelUserOrders(c *fiber.Ctx) error {
	user := c.Params("user")
	startTime := time.Now()

	h.mu.Lock()
	cancelled := h.Cache.CancelOrdersForUser(user)
	live := h.Cache.Len()
	h.mu.Unlock()

	h.recordCancellations(metrics.OpCancelUser, cancelled, live, startTime)

	log.Info().
		Str("user", user).
		Int("cancelled", cancelled).
		Msg("User orders cancelled")

	return c.Status(fiber.StatusOK).JSON(models.BulkCancelResponse{
		Key:       user,
		Cancelled: cancelled,
	})
}

func (h *OrderHandler) CancelSecurityOrders(c *fiber.Ctx) error {
	securityID := c.Params("security")

	minQty, err := strconv.ParseUint(c.Query("min_qty"), 10, 32)
	if err != nil {
		log.Warn().
			Str("security_id", securityID).
			Str("min_qty", c.Query("min_qty")).
			Msg("Invalid min_qty")
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{
			Error: "Invalid request: min_qty must be an unsigned 32-bit integer",
		})
	}

	startTime := time.Now()

	h.mu.Lock()
	cancelled := h.Cache.CancelOrdersForSecIDWithMinimumQty(securityID, uint32(minQty))
	live := h.Cache.Len()
	h.mu.Unlock()

	h.recordCancellations(metrics.OpCancelMinQty, cancelled, live, startTime)

	log.Info().
		Str("security_id", securityID).
		Uint64("min_qty", minQty).
		Int("cancelled", cancelled).
		Msg("Security orders cancelled")

	return c.Status(fiber.StatusOK).JSON(models.BulkCancelResponse{
		Key:       securityID,
		Cancelled: cancelled,
	})
}

func (h *OrderHandler) recordCancellations(op string, cancelled, live int, startTime time.Time) {
	atomic.AddInt64(&h.OrdersCancelled, int64(cancelled))
	metrics.OrdersCancelled.Add(float64(cancelled))
	metrics.LiveOrders.Set(float64(live))
	metrics.Observe(op, metrics.ResultOK, startTime)
}

func (h *OrderHandler) ListOrders(c *fiber.Ctx) error {
	startTime := time.Now()

	h.mu.RLock()
	orders := h.Cache.GetAllOrders()
	h.mu.RUnlock()

	metrics.Observe(metrics.OpListOrders, metrics.ResultOK, startTime)

	infos := make([]models.OrderInfo, 0, len(orders))
	for _, o := range orders {
		infos = append(infos, toOrderInfo(o))
	}

	return c.Status(fiber.StatusOK).JSON(models.OrdersResponse{
		Count:  len(infos),
		Orders: infos,
	})
}

func (h *OrderHandler) GetOrder(c *fiber.Ctx) error {
	orderID := c.Params("id")

	h.mu.RLock()
	order, found, err := h.Cache.GetOrder(orderID)
	h.mu.RUnlock()

	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{
			Error: err.Error(),
		})
	}
	if !found {
		return c.Status(fiber.StatusNotFound).JSON(models.ErrorResponse{
			Error: "Order not found",
		})
	}

	return c.Status(fiber.StatusOK).JSON(toOrderInfo(order))
}

func (h *OrderHandler) GetMatchingSize(c *fiber.Ctx) error {
	securityID := c.Params("security")
	startTime := time.Now()

	h.mu.RLock()
	size := h.Cache.GetMatchingSizeForSecurity(securityID)
	h.mu.RUnlock()

	metrics.Observe(metrics.OpMatchingSize, metrics.ResultOK, startTime)

	return c.Status(fiber.StatusOK).JSON(models.MatchingSizeResponse{
		SecurityID:   securityID,
		MatchingSize: size,
	})
}

func (h *OrderHandler) GetSnapshot(c *fiber.Ctx) error {
	securityID := c.Params("security")

	h.mu.RLock()
	snapshot, found := h.Cache.Snapshot(securityID)
	h.mu.RUnlock()

	// edge case: a security without live orders reports empty totals
	if !found {
		snapshot = cache.SecuritySnapshot{SecurityID: securityID}
	}

	companies := make([]models.CompanyVolumeInfo, 0, len(snapshot.Companies))
	for name, vol := range snapshot.Companies {
		companies = append(companies, models.CompanyVolumeInfo{
			Company: name,
			Buy:     vol.Buy,
			Sell:    vol.Sell,
		})
	}
	sort.Slice(companies, func(i, j int) bool {
		return companies[i].Company < companies[j].Company
	})

	return c.Status(fiber.StatusOK).JSON(models.SnapshotResponse{
		SecurityID:       securityID,
		TotalBuy:         snapshot.TotalBuy,
		TotalSell:        snapshot.TotalSell,
		MaxCompanyVolume: snapshot.MaxCompanyVolume,
		Companies:        companies,
	})
}

func (h *OrderHandler) HealthCheck(c *fiber.Ctx) error {
	uptime := time.Since(h.StartTime).Seconds()

	return c.Status(fiber.StatusOK).JSON(models.HealthResponse{
		Status:        "healthy",
		UptimeSeconds: int64(uptime),
		LiveOrders:    h.liveOrders(),
	})
}

func (h *OrderHandler) Metrics(c *fiber.Ctx) error {
	p50, p99, p999 := h.calculateLatencyPercentiles()
	throughput := h.calculateThroughput()

	return c.Status(fiber.StatusOK).JSON(models.MetricsResponse{
		OrdersReceived:         atomic.LoadInt64(&h.OrdersReceived),
		OrdersAdded:            atomic.LoadInt64(&h.OrdersAdded),
		OrdersDuplicate:        atomic.LoadInt64(&h.OrdersDuplicate),
		OrdersRejected:         atomic.LoadInt64(&h.OrdersRejected),
		OrdersCancelled:        atomic.LoadInt64(&h.OrdersCancelled),
		LiveOrders:             h.liveOrders(),
		LatencyP50Ms:           p50,
		LatencyP99Ms:           p99,
		LatencyP999Ms:          p999,
		ThroughputOrdersPerSec: throughput,
	})
}

func (h *OrderHandler) liveOrders() int64 {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return int64(h.Cache.Len())
}

func (h *OrderHandler) recordLatency(latency time.Duration) {
	h.latenciesMu.Lock()
	defer h.latenciesMu.Unlock()

	h.latencies = append(h.latencies, latency)

	// edge case: maintain rolling window by removing oldest measurements
	if len(h.latencies) > h.maxLatencies {
		removeCount := len(h.latencies) - h.maxLatencies
		h.latencies = h.latencies[removeCount:]
	}
}

func (h *OrderHandler) calculateLatencyPercentiles() (p50, p99, p999 float64) {
	h.latenciesMu.RLock()
	defer h.latenciesMu.RUnlock()

	if len(h.latencies) == 0 {
		return 0, 0, 0
	}

	latenciesCopy := make([]time.Duration, len(h.latencies))
	copy(latenciesCopy, h.latencies)

	sort.Slice(latenciesCopy, func(i, j int) bool {
		return latenciesCopy[i] < latenciesCopy[j]
	})

	percentile := func(q float64) float64 {
		idx := int(float64(len(latenciesCopy)) * q)
		if idx >= len(latenciesCopy) {
			idx = len(latenciesCopy) - 1
		}
		return float64(latenciesCopy[idx].Nanoseconds()) / 1e6
	}

	return percentile(0.50), percentile(0.99), percentile(0.999)
}

func (h *OrderHandler) calculateThroughput() float64 {
	uptime := time.Since(h.StartTime).Seconds()
	if uptime <= 0 {
		return 0
	}

	ordersReceived := atomic.LoadInt64(&h.OrdersReceived)
	return float64(ordersReceived) / uptime
}

func toOrderInfo(o cache.Order) models.OrderInfo {
	return models.OrderInfo{
		OrderID:    o.OrderID(),
		SecurityID: o.SecurityID(),
		Side:       string(o.Side()),
		Quantity:   o.Qty(),
		User:       o.User(),
		Company:    o.Company(),
	}
}
