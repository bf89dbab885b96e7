package collab

// multimap groups values under keys while preserving insertion order
// within each group. The router uses it to track which clients are
// attached to which document; the value at position zero of a group is
// that document's leader.
type multimap[K comparable, V comparable] struct {
	groups map[K][]V
	locs   map[V]K
}

func newMultimap[K comparable, V comparable]() *multimap[K, V] {
	return &multimap[K, V]{
		groups: make(map[K][]V),
		locs:   make(map[V]K),
	}
}

// add appends val to the group at key. If val is already present under
// another key it is removed from there first.
func (m *multimap[K, V]) add(key K, val V) {
	if old, ok := m.locs[val]; ok {
		if old == key {
			return
		}
		m.remove(old, val)
	}
	m.groups[key] = append(m.groups[key], val)
	m.locs[val] = key
}

// pop removes val and returns the key it was stored under.
func (m *multimap[K, V]) pop(val V) (K, bool) {
	key, ok := m.locs[val]
	if !ok {
		var zero K
		return zero, false
	}
	m.remove(key, val)
	return key, true
}

func (m *multimap[K, V]) remove(key K, val V) {
	group := m.groups[key]
	for i, v := range group {
		if v == val {
			group = append(group[:i], group[i+1:]...)
			break
		}
	}
	if len(group) == 0 {
		delete(m.groups, key)
	} else {
		m.groups[key] = group
	}
	delete(m.locs, val)
}

func (m *multimap[K, V]) has(val V) bool {
	_, ok := m.locs[val]
	return ok
}

// loc returns the key val is stored under.
func (m *multimap[K, V]) loc(val V) (K, bool) {
	key, ok := m.locs[val]
	return key, ok
}

// idx returns val's position within its group, or -1 if absent.
func (m *multimap[K, V]) idx(val V) int {
	key, ok := m.locs[val]
	if !ok {
		return -1
	}
	for i, v := range m.groups[key] {
		if v == val {
			return i
		}
	}
	return -1
}

// num returns the size of the group at key.
func (m *multimap[K, V]) num(key K) int {
	return len(m.groups[key])
}

// get returns the group at key in insertion order.
func (m *multimap[K, V]) get(key K) []V {
	return m.groups[key]
}
