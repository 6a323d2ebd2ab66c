package cache

import "math"

const invalidPosition = math.MaxUint64

// orderStore owns the canonical copy of every live order, addressed by slot.
// alive is a dense list of live slots; positions[slot] is that slot's index
// in alive, or invalidPosition when the slot is empty.
type orderStore struct {
	orders    []Order
	positions []uint64
	alive     []uint64
}

func newOrderStore(capacity int) *orderStore {
	s := &orderStore{
		orders:    make([]Order, capacity),
		positions: make([]uint64, capacity),
		alive:     make([]uint64, 0, capacity),
	}
	for i := range s.positions {
		s.positions[i] = invalidPosition
	}
	return s
}

// add stores order at slot. The caller must ensure the slot is not live.
func (s *orderStore) add(order Order, slot uint64) {
	if slot >= uint64(len(s.orders)) {
		s.grow(slot + 1)
	}

	s.positions[slot] = uint64(len(s.alive))
	s.alive = append(s.alive, slot)
	s.orders[slot] = order
}

func (s *orderStore) grow(minLen uint64) {
	newLen := uint64(len(s.orders)) * 2
	if newLen < minLen {
		newLen = minLen
	}

	orders := make([]Order, newLen)
	copy(orders, s.orders)

	positions := make([]uint64, newLen)
	copy(positions, s.positions)
	for i := len(s.positions); i < len(positions); i++ {
		positions[i] = invalidPosition
	}

	s.orders = orders
	s.positions = positions
}

func (s *orderStore) has(slot uint64) bool {
	return slot < uint64(len(s.positions)) && s.positions[slot] != invalidPosition
}

// get is only meaningful when has(slot) is true.
func (s *orderStore) get(slot uint64) Order {
	return s.orders[slot]
}

// cancel removes a live slot by swapping the last alive entry into its place.
func (s *orderStore) cancel(slot uint64) {
	removePos := s.positions[slot]
	last := s.alive[len(s.alive)-1]

	s.alive[removePos] = last
	s.positions[last] = removePos
	s.alive = s.alive[:len(s.alive)-1]

	s.positions[slot] = invalidPosition
	s.orders[slot] = Order{}
}

func (s *orderStore) len() int {
	return len(s.alive)
}

func (s *orderStore) all() []Order {
	result := make([]Order, 0, len(s.alive))
	for _, slot := range s.alive {
		result = append(result, s.orders[slot])
	}
	return result
}
