// Package cache is an in-memory order cache. It indexes live orders by user
// and by security and keeps per-security aggregates from which the matchable
// quantity of a security is derived without scanning orders.
//
// An OrderCache is not safe for concurrent use. Callers serialise mutators
// behind one exclusive lock; reads may share a lock with each other.
package cache

import (
	"math"

	"github.com/rs/zerolog"
)

type OrderCache struct {
	cfg            Config
	store          *orderStore
	userOrders     *slotIndex
	securityOrders *slotIndex
	snapshots      map[string]*securitySnapshot
	logger         zerolog.Logger
}

func New(cfg Config) *OrderCache {
	return &OrderCache{
		cfg:            cfg,
		store:          newOrderStore(cfg.StoreCapacity),
		userOrders:     newSlotIndex(cfg.IndexCapacity),
		securityOrders: newSlotIndex(cfg.IndexCapacity),
		snapshots:      make(map[string]*securitySnapshot, cfg.IndexCapacity),
		logger:         zerolog.Nop(),
	}
}

func NewOrderCache() *OrderCache {
	return New(DefaultConfig())
}

func (c *OrderCache) WithLogger(logger zerolog.Logger) *OrderCache {
	c.logger = logger
	return c
}

// AddOrder admits an order. Adding an order whose slot is already live is a
// no-op that keeps the original order.
func (c *OrderCache) AddOrder(order Order) error {
	if err := Validate(order); err != nil {
		return &InvalidOrderError{OrderID: order.orderID, Cause: err}
	}

	slot, err := c.slotFor(order.orderID)
	if err != nil {
		return &InvalidOrderError{OrderID: order.orderID, Cause: err}
	}

	if c.store.has(slot) {
		c.logger.Debug().
			Str("order_id", order.orderID).
			Uint64("slot", slot).
			Msg("Duplicate order ignored")
		return nil
	}

	c.store.add(order, slot)
	c.userOrders.add(order.user, slot)
	c.securityOrders.add(order.securityID, slot)

	snapshot, exists := c.snapshots[order.securityID]
	if !exists {
		snapshot = newSecuritySnapshot()
		c.snapshots[order.securityID] = snapshot
	}
	snapshot.onAdd(order)

	return nil
}

func (c *OrderCache) slotFor(orderID string) (uint64, error) {
	slot, err := ParseSlot(orderID)
	if err != nil {
		return 0, err
	}
	// edge case: the store is dense, so an unbounded slot would allocate up to it
	if c.cfg.MaxSlot > 0 && slot > c.cfg.MaxSlot {
		return 0, &InvalidOrderIDError{OrderID: orderID}
	}
	return slot, nil
}

// CancelOrder removes a live order. Unknown or already cancelled ids are
// ignored; ids that cannot map to a slot are rejected.
func (c *OrderCache) CancelOrder(orderID string) error {
	slot, err := ParseSlot(orderID)
	if err != nil {
		return err
	}

	if c.store.has(slot) {
		c.removeSlot(slot)
	}
	return nil
}

func (c *OrderCache) removeSlot(slot uint64) {
	order := c.store.get(slot)

	if snapshot, exists := c.snapshots[order.securityID]; exists {
		snapshot.onRemove(order)
		if snapshot.empty() {
			delete(c.snapshots, order.securityID)
		}
	}

	c.securityOrders.remove(order.securityID, slot)
	c.userOrders.remove(order.user, slot)
	c.store.cancel(slot)
}

// CancelOrdersForUser removes every live order of user and reports how many
// were removed.
func (c *OrderCache) CancelOrdersForUser(user string) int {
	cancelled := 0
	for _, slot := range c.userOrders.snapshot(user) {
		if !c.store.has(slot) {
			continue
		}
		c.removeSlot(slot)
		cancelled++
	}

	if cancelled > 0 {
		c.logger.Debug().
			Str("user", user).
			Int("cancelled", cancelled).
			Msg("Cancelled orders for user")
	}
	return cancelled
}

// CancelOrdersForSecIDWithMinimumQty removes every live order on securityID
// whose quantity is at least minQty. A zero minQty removes nothing.
func (c *OrderCache) CancelOrdersForSecIDWithMinimumQty(securityID string, minQty uint32) int {
	if minQty == 0 {
		return 0
	}

	cancelled := 0
	for _, slot := range c.securityOrders.snapshot(securityID) {
		if !c.store.has(slot) {
			continue
		}
		if c.store.get(slot).qty >= minQty {
			c.removeSlot(slot)
			cancelled++
		}
	}

	if cancelled > 0 {
		c.logger.Debug().
			Str("security_id", securityID).
			Uint32("min_qty", minQty).
			Int("cancelled", cancelled).
			Msg("Cancelled orders for security")
	}
	return cancelled
}

// GetMatchingSizeForSecurity returns how much quantity on securityID could
// match between buy and sell interest of different companies.
func (c *OrderCache) GetMatchingSizeForSecurity(securityID string) uint32 {
	snapshot, exists := c.snapshots[securityID]
	if !exists {
		return 0
	}

	size := snapshot.matchingSize()
	// edge case: totals are 64-bit sums of 32-bit quantities
	if size > math.MaxUint32 {
		return math.MaxUint32
	}
	return uint32(size)
}

// GetAllOrders returns a copy of every live order in unspecified order.
func (c *OrderCache) GetAllOrders() []Order {
	return c.store.all()
}

func (c *OrderCache) GetOrder(orderID string) (Order, bool, error) {
	slot, err := ParseSlot(orderID)
	if err != nil {
		return Order{}, false, err
	}
	if !c.store.has(slot) {
		return Order{}, false, nil
	}
	return c.store.get(slot), true, nil
}

func (c *OrderCache) Snapshot(securityID string) (SecuritySnapshot, bool) {
	snapshot, exists := c.snapshots[securityID]
	if !exists {
		return SecuritySnapshot{}, false
	}
	return snapshot.export(securityID), true
}

func (c *OrderCache) Len() int {
	return c.store.len()
}
