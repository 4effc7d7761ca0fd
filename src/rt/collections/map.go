package collections

import "viper/src/rt"

// Map is a string-keyed associative collection. Keys are plain Go strings
// (Viper string constants/temps are marshaled to host strings at the
// collection boundary the same way rt_map.h's C API takes const char* keys
// rather than an rt.String handle), values are retained rt.Object
// references.
type Map struct {
	rt.Header
	entries map[string]rt.Object
}

// NewMap allocates an empty Map with refcount 1.
func NewMap() *Map {
	return &Map{Header: rt.NewHeader(rt.KindObject, rt.ElemObject, 0, 0, nil), entries: map[string]rt.Object{}}
}

// Len returns the number of entries.
func (m *Map) Len() int64 { return int64(len(m.entries)) }

// Get returns the value for key, retained for the caller, or ok=false if
// the key is absent.
func (m *Map) Get(key string) (rt.Object, bool) {
	v, ok := m.entries[key]
	if !ok {
		return nil, false
	}
	rt.RetainMaybe(v)
	return v, true
}

// Set inserts or overwrites the value for key, retaining the new value and
// releasing any previous occupant.
func (m *Map) Set(key string, value rt.Object) {
	if old, ok := m.entries[key]; ok {
		rt.ReleaseMaybe(old)
	}
	rt.RetainMaybe(value)
	m.entries[key] = value
	m.Length = len(m.entries)
}

// Remove deletes key's entry, releasing its value, reporting whether the
// key was present.
func (m *Map) Remove(key string) bool {
	v, ok := m.entries[key]
	if !ok {
		return false
	}
	rt.ReleaseMaybe(v)
	delete(m.entries, key)
	m.Length = len(m.entries)
	return true
}

// ContainsKey reports whether key has an entry.
func (m *Map) ContainsKey(key string) bool {
	_, ok := m.entries[key]
	return ok
}

// Keys returns the map's keys in unspecified order, matching the original
// runtime's hash-table-backed iteration (no ordering guarantee, spec.md
// §4.3.4: "iteration order over Map/Set is unspecified").
func (m *Map) Keys() []string {
	out := make([]string, 0, len(m.entries))
	for k := range m.entries {
		out = append(out, k)
	}
	return out
}

// Release overrides rt.Header.Release to release every retained value
// once the map itself reaches refcount zero.
func (m *Map) Release() {
	if m.ReleaseAndWasLast() {
		for _, v := range m.entries {
			rt.ReleaseMaybe(v)
		}
	}
}
