package resolver

import (
	"errors"
	"fmt"
	"reflect"
	"slices"
	"sort"
	"sync"

	"media-resolver/internal/logging"
	"media-resolver/internal/plugin"
)

// Resolver routes paths to registered unpackers and tag parsers.
type Resolver struct {
	mu     sync.RWMutex
	slots  []slot
	free   []uint32
	seq    uint64
	tables tables
	// byAgent maps pointer agents to their live handle.
	byAgent map[any]Handle
}

// New returns an empty resolver.
func New() *Resolver {
	return &Resolver{tables: newTables(), byAgent: make(map[any]Handle)}
}

// AgentInfo describes a registered agent.
type AgentInfo struct {
	Handle Handle      `json:"handle"`
	Name   string      `json:"name"`
	Kind   plugin.Kind `json:"kind"`
	// Declared lists the suffixes the capability object declares.
	Declared []string `json:"declared,omitempty"`
	// Indexed lists the suffixes this agent owns in its routing table.
	Indexed []string `json:"indexed,omitempty"`
}

// Stats summarizes the registry for metrics.
type Stats struct {
	Agents          int
	UnpackRoutes    int
	TagParserRoutes int
	HasWildcard     bool
}

// RegisterPluginAgent creates the agent's capability object and indexes its
// suffixes. Suffixes already claimed by an earlier registrant are skipped
// without error. Agents of kinds that are not routed are registered without
// creating an object. An agent that is already registered is rejected with
// ErrAlreadyRegistered before its CreateObject is called.
func (r *Resolver) RegisterPluginAgent(agent plugin.Agent) (Handle, error) {
	if agent == nil {
		return Handle{}, ErrNilAgent
	}

	r.mu.RLock()
	h, dup := r.handleOf(agent)
	r.mu.RUnlock()
	if dup {
		return Handle{}, alreadyRegistered(agent, h)
	}

	c, err := prepare(agent)
	if err != nil {
		return Handle{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	// A concurrent registration of the same agent may have won.
	if h, dup := r.handleOf(agent); dup {
		discard(agent, c)
		return Handle{}, alreadyRegistered(agent, h)
	}
	return r.installLocked(agent, c), nil
}

// Replace unregisters every agent and registers agents in order under a
// single write lock, so a concurrent LoadMedia sees either the old registry
// or the new one. Capability objects are created before the lock is taken.
// handles[i] is the zero Handle when agents[i] could not be registered; the
// failures are returned joined.
func (r *Resolver) Replace(agents []plugin.Agent) ([]Handle, error) {
	handles := make([]Handle, len(agents))
	caps := make([]capability, len(agents))
	errs := make([]error, len(agents))
	seen := make(map[any]bool)
	for i, agent := range agents {
		if agent == nil {
			errs[i] = ErrNilAgent
			continue
		}
		if key, ok := agentKey(agent); ok {
			if seen[key] {
				errs[i] = alreadyRegistered(agent, Handle{})
				continue
			}
			seen[key] = true
		}
		caps[i], errs[i] = prepare(agent)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, h := range r.liveHandles() {
		r.unregisterLocked(h)
	}
	for i, agent := range agents {
		if errs[i] != nil {
			continue
		}
		handles[i] = r.installLocked(agent, caps[i])
	}
	return handles, errors.Join(errs...)
}

// prepare creates the capability object of a routed agent. It returns a
// nil capability for kinds that are not routed.
func prepare(agent plugin.Agent) (capability, error) {
	kind := agent.Kind()
	newCapability, routed := capabilityKinds[kind]
	if !routed {
		return nil, nil
	}

	obj, err := agent.CreateObject()
	if err != nil {
		observe().ObserveRegistration(kind, err)
		return nil, fmt.Errorf("create %s object for %s: %w", kind, agent.Name(), err)
	}
	c, err := newCapability(obj)
	if err != nil {
		agent.FreeObject(obj)
		observe().ObserveRegistration(kind, err)
		return nil, fmt.Errorf("register %s: %w", agent.Name(), err)
	}
	return c, nil
}

// discard frees a capability object that was never installed.
func discard(agent plugin.Agent, c capability) {
	if c != nil {
		agent.FreeObject(c.object())
	}
}

// installLocked stores agent and indexes its capability. Callers hold the
// write lock.
func (r *Resolver) installLocked(agent plugin.Agent, c capability) Handle {
	kind := agent.Kind()
	h := r.allocate(agent, c)
	if key, ok := agentKey(agent); ok {
		if r.byAgent == nil {
			r.byAgent = make(map[any]Handle)
		}
		r.byAgent[key] = h
	}

	if c == nil {
		logging.Debug("Registered %s agent %s (%s) without routing", kind, agent.Name(), h)
		observe().ObserveRegistration(kind, nil)
		return h
	}

	s := r.lookup(h)
	s.indexed = c.index(&r.tables, h)

	if skipped := len(c.declared()) - len(s.indexed); skipped > 0 {
		logging.Debug("Agent %s: %d declared suffix(es) already claimed or not routable", agent.Name(), skipped)
	}
	logging.Info("Registered %s agent %s (%s) for suffixes %v", kind, agent.Name(), h, s.indexed)
	observe().ObserveRegistration(kind, nil)
	return h
}

// handleOf returns the live handle of agent. Callers hold the lock.
func (r *Resolver) handleOf(agent plugin.Agent) (Handle, bool) {
	key, ok := agentKey(agent)
	if !ok {
		return Handle{}, false
	}
	h, ok := r.byAgent[key]
	if !ok || r.lookup(h) == nil {
		return Handle{}, false
	}
	return h, true
}

// agentKey returns the identity an agent is deduplicated by. Only pointer
// agents have one; value agents cannot be told apart from equal copies.
func agentKey(agent plugin.Agent) (any, bool) {
	if reflect.TypeOf(agent).Kind() != reflect.Pointer {
		return nil, false
	}
	return agent, true
}

func alreadyRegistered(agent plugin.Agent, h Handle) error {
	if h.IsZero() {
		return fmt.Errorf("%w: %s", ErrAlreadyRegistered, agent.Name())
	}
	return fmt.Errorf("%w: %s as %s", ErrAlreadyRegistered, agent.Name(), h)
}

// UnregisterPluginAgent removes the routing entries owned by h and frees its
// capability object. It reports false, and does nothing, for a handle that is
// not registered.
func (r *Resolver) UnregisterPluginAgent(h Handle) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.unregisterLocked(h)
}

func (r *Resolver) unregisterLocked(h Handle) bool {
	s := r.lookup(h)
	if s == nil {
		return false
	}

	agent := s.agent
	kind := agent.Kind()
	if s.capability != nil {
		removed := s.capability.unindex(&r.tables, h)
		agent.FreeObject(s.capability.object())
		logging.Info("Unregistered %s agent %s (%s), removed %d route(s)", kind, agent.Name(), h, removed)
	} else {
		logging.Debug("Unregistered %s agent %s (%s)", kind, agent.Name(), h)
	}

	r.release(h)
	observe().ObserveUnregistration(kind)
	return true
}

// UnregisterAll unregisters every agent, most recently registered first.
func (r *Resolver) UnregisterAll() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, h := range r.liveHandles() {
		r.unregisterLocked(h)
	}
}

// liveHandles snapshots the registered handles, newest first.
func (r *Resolver) liveHandles() []Handle {
	type entry struct {
		h   Handle
		seq uint64
	}
	var live []entry
	for i := range r.slots {
		s := &r.slots[i]
		if s.live {
			live = append(live, entry{h: Handle{index: uint32(i), generation: s.generation}, seq: s.seq})
		}
	}
	sort.Slice(live, func(i, j int) bool { return live[i].seq > live[j].seq })

	out := make([]Handle, len(live))
	for i, e := range live {
		out[i] = e.h
	}
	return out
}

// Agents returns the registered agents in registration order.
func (r *Resolver) Agents() []AgentInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()

	handles := r.liveHandles()
	slices.Reverse(handles)

	out := make([]AgentInfo, 0, len(handles))
	for _, h := range handles {
		s := r.lookup(h)
		info := AgentInfo{
			Handle:  h,
			Name:    s.agent.Name(),
			Kind:    s.agent.Kind(),
			Indexed: slices.Clone(s.indexed),
		}
		if s.capability != nil {
			info.Declared = s.capability.declared()
		}
		out = append(out, info)
	}
	return out
}

// Len returns the number of registered agents.
func (r *Resolver) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.slots) - len(r.free)
}

// Stats returns registry counts.
func (r *Resolver) Stats() Stats {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, wildcard := r.tables.parsers[plugin.Wildcard]
	return Stats{
		Agents:          len(r.slots) - len(r.free),
		UnpackRoutes:    len(r.tables.unpackers),
		TagParserRoutes: len(r.tables.parsers),
		HasWildcard:     wildcard,
	}
}

// UnpackerFor returns the handle owning suffix in the unpack table.
func (r *Resolver) UnpackerFor(suffix string) (Handle, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.tables.unpackers[plugin.NormalizeSuffix(suffix)]
	return e.owner, ok
}

// TagParserFor returns the handle owning suffix in the tag parser table.
// It does not fall back to the wildcard; pass "*" to look that up.
func (r *Resolver) TagParserFor(suffix string) (Handle, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.tables.parsers[plugin.NormalizeSuffix(suffix)]
	return e.owner, ok
}

// UnpackSuffixes returns the suffixes in the unpack table, sorted.
func (r *Resolver) UnpackSuffixes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return sortedKeys(r.tables.unpackers)
}

// TagParserSuffixes returns the suffixes in the tag parser table, sorted.
func (r *Resolver) TagParserSuffixes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return sortedKeys(r.tables.parsers)
}
