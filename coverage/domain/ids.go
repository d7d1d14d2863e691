package domain

import "fmt"

// IDManager is a growable bijection between names and dense ids.
// Ids are assigned in insertion order and are never reused.
type IDManager struct {
	names  []string
	byName map[string]int
}

// NewIDManager creates an empty registry.
func NewIDManager() *IDManager {
	return &IDManager{byName: make(map[string]int)}
}

// Add registers name and returns its id. Adding a known name returns the existing id.
func (m *IDManager) Add(name string) int {
	if id, ok := m.byName[name]; ok {
		return id
	}
	id := len(m.names)
	m.names = append(m.names, name)
	m.byName[name] = id
	return id
}

// ID returns the id of name.
func (m *IDManager) ID(name string) (int, bool) {
	id, ok := m.byName[name]
	return id, ok
}

// Name returns the name registered under id.
func (m *IDManager) Name(id int) (string, error) {
	if id < 0 || id >= len(m.names) {
		return "", fmt.Errorf("%w: global id %d", ErrNotFound, id)
	}
	return m.names[id], nil
}

// Contains reports whether name is registered.
func (m *IDManager) Contains(name string) bool {
	_, ok := m.byName[name]
	return ok
}

// Len returns the number of registered names.
func (m *IDManager) Len() int { return len(m.names) }

// Names returns the registered names in id order.
func (m *IDManager) Names() []string {
	out := make([]string, len(m.names))
	copy(out, m.names)
	return out
}

// IDMapper is a local id space whose names live in a shared IDManager.
// Local ids are dense and assigned in insertion order.
type IDMapper struct {
	global        *IDManager
	localToGlobal []int
	globalToLocal map[int]int
}

// NewIDMapper creates an empty local id space backed by global.
func NewIDMapper(global *IDManager) *IDMapper {
	return &IDMapper{
		global:        global,
		globalToLocal: make(map[int]int),
	}
}

// Global returns the shared registry.
func (m *IDMapper) Global() *IDManager { return m.global }

// Add registers name in the local space (and the global registry) and returns its local id.
func (m *IDMapper) Add(name string) int {
	gid := m.global.Add(name)
	if lid, ok := m.globalToLocal[gid]; ok {
		return lid
	}
	lid := len(m.localToGlobal)
	m.localToGlobal = append(m.localToGlobal, gid)
	m.globalToLocal[gid] = lid
	return lid
}

// ID returns the local id of name.
func (m *IDMapper) ID(name string) (int, error) {
	gid, ok := m.global.ID(name)
	if !ok {
		return 0, fmt.Errorf("%w: name %q", ErrNotFound, name)
	}
	lid, ok := m.globalToLocal[gid]
	if !ok {
		return 0, fmt.Errorf("%w: name %q not in local space", ErrNotFound, name)
	}
	return lid, nil
}

// Contains reports whether name has a local id.
func (m *IDMapper) Contains(name string) bool {
	_, err := m.ID(name)
	return err == nil
}

// Name returns the name of a local id.
func (m *IDMapper) Name(id int) (string, error) {
	if id < 0 || id >= len(m.localToGlobal) {
		return "", fmt.Errorf("%w: local id %d", ErrNotFound, id)
	}
	return m.global.Name(m.localToGlobal[id])
}

// GlobalID returns the global id of a local id.
func (m *IDMapper) GlobalID(id int) (int, error) {
	if id < 0 || id >= len(m.localToGlobal) {
		return 0, fmt.Errorf("%w: local id %d", ErrNotFound, id)
	}
	return m.localToGlobal[id], nil
}

// LocalID returns the local id of a global id.
func (m *IDMapper) LocalID(gid int) (int, bool) {
	lid, ok := m.globalToLocal[gid]
	return lid, ok
}

// Len returns the size of the local space.
func (m *IDMapper) Len() int { return len(m.localToGlobal) }

// Names returns the names in local id order.
func (m *IDMapper) Names() []string {
	out := make([]string, len(m.localToGlobal))
	for i, gid := range m.localToGlobal {
		out[i], _ = m.global.Name(gid)
	}
	return out
}

// TranslateFrom converts id, a local id of other, into a local id of m.
// Both mappers must share the same global registry.
func (m *IDMapper) TranslateFrom(other *IDMapper, id int) (int, error) {
	if other.global != m.global {
		return 0, fmt.Errorf("%w: mappers use different registries", ErrTranslation)
	}
	gid, err := other.GlobalID(id)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrTranslation, err)
	}
	lid, ok := m.globalToLocal[gid]
	if !ok {
		name, _ := m.global.Name(gid)
		return 0, fmt.Errorf("%w: %q is not present in the target space", ErrTranslation, name)
	}
	return lid, nil
}

// Extend adds every name known to the global registry to the local space.
func (m *IDMapper) Extend() {
	for gid := 0; gid < m.global.Len(); gid++ {
		if _, ok := m.globalToLocal[gid]; ok {
			continue
		}
		m.globalToLocal[gid] = len(m.localToGlobal)
		m.localToGlobal = append(m.localToGlobal, gid)
	}
}
