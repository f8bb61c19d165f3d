package resolver

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"media-resolver/internal/plugin"
)

var (
	// ErrNilAgent is returned when registering a nil agent.
	ErrNilAgent = errors.New("nil plugin agent")
	// ErrCapabilityMismatch is returned when an agent's object does not
	// implement the interface its kind promises.
	ErrCapabilityMismatch = errors.New("capability object does not match agent kind")
	// ErrAlreadyRegistered is returned when an agent that is already
	// registered is registered again.
	ErrAlreadyRegistered = errors.New("plugin agent already registered")
)

// capability is the closed set of routed capability variants. Each variant
// owns its insertion into and removal from the routing tables.
type capability interface {
	object() any
	declared() []string
	// index claims every free declared suffix for owner and returns the
	// suffixes it claimed.
	index(t *tables, owner Handle) []string
	// unindex removes the entries owned by owner and returns how many.
	unindex(t *tables, owner Handle) int
}

// capabilityKinds maps each routed kind to the constructor of its variant.
// Kinds missing here are registered without routing.
var capabilityKinds = map[plugin.Kind]func(obj any) (capability, error){
	plugin.KindUnpacker: func(obj any) (capability, error) {
		u, ok := obj.(plugin.Unpacker)
		if !ok {
			return nil, fmt.Errorf("%w: %T is not an unpacker", ErrCapabilityMismatch, obj)
		}
		return &unpackerCapability{unpacker: u}, nil
	},
	plugin.KindTagParser: func(obj any) (capability, error) {
		p, ok := obj.(plugin.TagParser)
		if !ok {
			return nil, fmt.Errorf("%w: %T is not a tag parser", ErrCapabilityMismatch, obj)
		}
		return &tagParserCapability{parser: p}, nil
	},
}

// tables are the per-kind suffix routing tables.
type tables struct {
	unpackers map[string]unpackEntry
	parsers   map[string]parserEntry
}

func newTables() tables {
	return tables{
		unpackers: make(map[string]unpackEntry),
		parsers:   make(map[string]parserEntry),
	}
}

type unpackEntry struct {
	owner    Handle
	unpacker plugin.Unpacker
}

type parserEntry struct {
	owner      Handle
	capability *tagParserCapability
}

// unpackView exposes the unpack table to unpackers. It reads the map without
// locking; it is only handed out while LoadMedia holds the read lock.
type unpackView map[string]unpackEntry

func (v unpackView) Unpacker(suffix string) (plugin.Unpacker, bool) {
	e, ok := v[suffix]
	if !ok {
		return nil, false
	}
	return e.unpacker, true
}

type unpackerCapability struct {
	unpacker plugin.Unpacker
}

func (c *unpackerCapability) object() any { return c.unpacker }

func (c *unpackerCapability) declared() []string {
	return normalizeSuffixes(c.unpacker.FileSuffixes())
}

func (c *unpackerCapability) index(t *tables, owner Handle) []string {
	var claimed []string
	for _, suffix := range c.declared() {
		// The wildcard only has meaning for tag parsers.
		if suffix == plugin.Wildcard {
			continue
		}
		if _, taken := t.unpackers[suffix]; taken {
			continue
		}
		t.unpackers[suffix] = unpackEntry{owner: owner, unpacker: c.unpacker}
		claimed = append(claimed, suffix)
	}
	return claimed
}

func (c *unpackerCapability) unindex(t *tables, owner Handle) int {
	removed := 0
	for suffix, e := range t.unpackers {
		if e.owner == owner {
			delete(t.unpackers, suffix)
			removed++
		}
	}
	return removed
}

type tagParserCapability struct {
	// mu serializes Open..Close on the shared parser object.
	mu     sync.Mutex
	parser plugin.TagParser
}

func (c *tagParserCapability) object() any { return c.parser }

func (c *tagParserCapability) declared() []string {
	return normalizeSuffixes(c.parser.FileSuffixes())
}

func (c *tagParserCapability) index(t *tables, owner Handle) []string {
	var claimed []string
	for _, suffix := range c.declared() {
		if _, taken := t.parsers[suffix]; taken {
			continue
		}
		t.parsers[suffix] = parserEntry{owner: owner, capability: c}
		claimed = append(claimed, suffix)
	}
	return claimed
}

func (c *tagParserCapability) unindex(t *tables, owner Handle) int {
	removed := 0
	for suffix, e := range t.parsers {
		if e.owner == owner {
			delete(t.parsers, suffix)
			removed++
		}
	}
	return removed
}

// normalizeSuffixes lower-cases declared suffixes, drops empty ones and
// duplicates, and keeps declaration order.
func normalizeSuffixes(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]bool, len(in))
	for _, s := range in {
		n := plugin.NormalizeSuffix(s)
		if n == "" || seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	return out
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
