package npc

import (
	"encoding/json"
	"fmt"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/cory-johannsen/statengine/internal/game/coords"
	"github.com/cory-johannsen/statengine/internal/game/entity"
)

// Manager tracks all live NPCs by ID in insertion order.
// All methods are safe for concurrent use; the NPCs themselves are not.
type Manager struct {
	mu      sync.RWMutex
	npcs    map[string]*NPC
	order   []string
	counter atomic.Uint64
}

// NewManager creates an empty NPC Manager.
func NewManager() *Manager {
	return &Manager{npcs: make(map[string]*NPC)}
}

// Add registers n.
//
// Precondition: n must not be nil.
// Postcondition: Returns an error if n.ID is already registered.
func (m *Manager) Add(n *NPC) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, dup := m.npcs[n.ID]; dup {
		return fmt.Errorf("npc %q already registered", n.ID)
	}
	m.npcs[n.ID] = n
	m.order = append(m.order, n.ID)
	return nil
}

// Spawn creates a new NPC from tmpl at pos and registers it.
//
// Precondition: tmpl must be non-nil.
// Postcondition: Returns a new NPC whose ID is "<template>-<n>" and unique
// within m.
func (m *Manager) Spawn(tmpl *Template, types *entity.Registry, pos *coords.Coordinates) (*NPC, error) {
	if tmpl == nil {
		return nil, fmt.Errorf("npc.Manager.Spawn: tmpl must not be nil")
	}
	for {
		id := fmt.Sprintf("%s-%d", tmpl.ID, m.counter.Add(1))
		if _, taken := m.Get(id); taken {
			continue
		}
		n, err := tmpl.Spawn(id, types, pos)
		if err != nil {
			return nil, fmt.Errorf("npc.Manager.Spawn: %w", err)
		}
		if err := m.Add(n); err != nil {
			return nil, fmt.Errorf("npc.Manager.Spawn: %w", err)
		}
		return n, nil
	}
}

// Remove deletes an NPC by ID.
//
// Postcondition: Returns an error if the NPC is not found.
func (m *Manager) Remove(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.npcs[id]; !ok {
		return fmt.Errorf("npc %q not found", id)
	}
	delete(m.npcs, id)
	m.order = slices.DeleteFunc(m.order, func(o string) bool { return o == id })
	return nil
}

// Get returns the NPC with the given ID.
func (m *Manager) Get(id string) (*NPC, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n, ok := m.npcs[id]
	return n, ok
}

// Len returns the number of live NPCs.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.npcs)
}

// All returns a snapshot of every NPC in insertion order.
//
// Postcondition: Returns a non-nil slice (may be empty).
func (m *Manager) All() []*NPC {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*NPC, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, m.npcs[id])
	}
	return out
}

// OfType returns the NPCs whose entity type ID is typeID.
func (m *Manager) OfType(typeID string) []*NPC {
	var out []*NPC
	for _, n := range m.All() {
		if n.Type != nil && n.Type.ID == typeID {
			out = append(out, n)
		}
	}
	return out
}

// Near returns the NPCs within radius of center.
func (m *Manager) Near(center *coords.Coordinates, radius float32) []*NPC {
	return coords.WithinRadius(m.All(), center, radius, func(n *NPC) *coords.Coordinates { return n.Position })
}

// MarshalJSON encodes the NPCs as an array in insertion order.
func (m *Manager) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.All())
}

// UnmarshalJSON replaces the contents of m with the decoded array.
func (m *Manager) UnmarshalJSON(data []byte) error {
	var npcs []*NPC
	if err := json.Unmarshal(data, &npcs); err != nil {
		return fmt.Errorf("npc: decoding manager: %w", err)
	}
	fresh := NewManager()
	for _, n := range npcs {
		if err := fresh.Add(n); err != nil {
			return err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.npcs, m.order = fresh.npcs, fresh.order
	return nil
}
