// Package zones enumerates the zones visible to the account and reduces the
// listing to an ordered name to id map.
package zones

import "iter"

// Map is an ordered mapping from zone name to zone id. Iteration follows
// insertion order, which is the listing order.
type Map struct {
	names []string
	ids   map[string]string
}

// NewMap creates an empty Map.
func NewMap() *Map {
	return &Map{ids: make(map[string]string)}
}

// Set records id for name. A name seen before keeps its position and takes the new id.
func (m *Map) Set(name, id string) {
	if _, exists := m.ids[name]; !exists {
		m.names = append(m.names, name)
	}
	m.ids[name] = id
}

// Get returns the id for name.
func (m *Map) Get(name string) (string, bool) {
	id, ok := m.ids[name]
	return id, ok
}

// Len returns the number of zones.
func (m *Map) Len() int {
	if m == nil {
		return 0
	}
	return len(m.names)
}

// Names returns the zone names in order.
func (m *Map) Names() []string {
	if m == nil {
		return nil
	}
	out := make([]string, len(m.names))
	copy(out, m.names)
	return out
}

// All iterates over name, id pairs in order.
func (m *Map) All() iter.Seq2[string, string] {
	return func(yield func(string, string) bool) {
		if m == nil {
			return
		}
		for _, name := range m.names {
			if !yield(name, m.ids[name]) {
				return
			}
		}
	}
}
