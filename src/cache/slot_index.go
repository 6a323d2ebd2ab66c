package cache

// slotSet is an unordered set of slots with O(1) add and remove.
type slotSet struct {
	slots     []uint64
	positions map[uint64]int
}

func newSlotSet() *slotSet {
	return &slotSet{positions: make(map[uint64]int)}
}

func (s *slotSet) add(slot uint64) {
	if _, exists := s.positions[slot]; exists {
		return
	}
	s.positions[slot] = len(s.slots)
	s.slots = append(s.slots, slot)
}

func (s *slotSet) remove(slot uint64) {
	pos, exists := s.positions[slot]
	if !exists {
		return
	}

	last := s.slots[len(s.slots)-1]
	s.slots[pos] = last
	s.positions[last] = pos
	s.slots = s.slots[:len(s.slots)-1]
	delete(s.positions, slot)
}

func (s *slotSet) len() int {
	return len(s.slots)
}

// slotIndex maps a key (user or security id) to the slots of its live orders.
// Keys are dropped as soon as their set is empty.
type slotIndex struct {
	sets map[string]*slotSet
}

func newSlotIndex(capacity int) *slotIndex {
	return &slotIndex{sets: make(map[string]*slotSet, capacity)}
}

func (idx *slotIndex) add(key string, slot uint64) {
	set, exists := idx.sets[key]
	if !exists {
		set = newSlotSet()
		idx.sets[key] = set
	}
	set.add(slot)
}

func (idx *slotIndex) remove(key string, slot uint64) {
	set, exists := idx.sets[key]
	if !exists {
		return
	}
	set.remove(slot)
	if set.len() == 0 {
		delete(idx.sets, key)
	}
}

// snapshot returns a copy of key's slots that stays valid while the index
// is mutated.
func (idx *slotIndex) snapshot(key string) []uint64 {
	set, exists := idx.sets[key]
	if !exists {
		return nil
	}
	slots := make([]uint64, len(set.slots))
	copy(slots, set.slots)
	return slots
}

func (idx *slotIndex) contains(key string, slot uint64) bool {
	set, exists := idx.sets[key]
	if !exists {
		return false
	}
	_, ok := set.positions[slot]
	return ok
}

func (idx *slotIndex) keys() int {
	return len(idx.sets)
}
