package resolver

import (
	"fmt"

	"media-resolver/internal/plugin"
)

// Handle identifies a registered agent. The zero Handle is never issued.
type Handle struct {
	index      uint32
	generation uint32
}

// IsZero reports whether h is the zero Handle.
func (h Handle) IsZero() bool {
	return h.generation == 0
}

// String returns a compact form such as "agent#3.2".
func (h Handle) String() string {
	return fmt.Sprintf("agent#%d.%d", h.index, h.generation)
}

// MarshalText implements encoding.TextMarshaler.
func (h Handle) MarshalText() ([]byte, error) {
	return []byte(h.String()), nil
}

// slot is one arena entry.
type slot struct {
	generation uint32
	live       bool
	seq        uint64

	agent plugin.Agent
	// capability is nil for agents whose kind is not routed.
	capability capability
	indexed    []string
}

// allocate stores agent in a free slot. Callers hold the write lock.
func (r *Resolver) allocate(agent plugin.Agent, c capability) Handle {
	var idx uint32
	if n := len(r.free); n > 0 {
		idx = r.free[n-1]
		r.free = r.free[:n-1]
	} else {
		r.slots = append(r.slots, slot{generation: 1})
		idx = uint32(len(r.slots) - 1)
	}

	r.seq++
	s := &r.slots[idx]
	s.live = true
	s.seq = r.seq
	s.agent = agent
	s.capability = c
	s.indexed = nil

	return Handle{index: idx, generation: s.generation}
}

// lookup returns the live slot for h, or nil.
func (r *Resolver) lookup(h Handle) *slot {
	if h.IsZero() || int(h.index) >= len(r.slots) {
		return nil
	}
	s := &r.slots[h.index]
	if !s.live || s.generation != h.generation {
		return nil
	}
	return s
}

// release frees the slot for h and invalidates the handle.
func (r *Resolver) release(h Handle) {
	s := &r.slots[h.index]
	if key, ok := agentKey(s.agent); ok && r.byAgent[key] == h {
		delete(r.byAgent, key)
	}
	s.live = false
	s.agent = nil
	s.capability = nil
	s.indexed = nil
	s.generation++
	if s.generation == 0 {
		s.generation = 1
	}
	r.free = append(r.free, h.index)
}
