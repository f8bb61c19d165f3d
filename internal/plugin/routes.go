package plugin

import "media-resolver/internal/mediaitem"

// MaxNestingDepth bounds how many containers deep nested resolution goes.
const MaxNestingDepth = 8

// UnpackTable is the read side of an unpack routing table.
type UnpackTable interface {
	// Unpacker returns the unpacker indexed for a normalized suffix.
	Unpacker(suffix string) (Unpacker, bool)
}

// Routes is the view of the unpack routing table handed to DumpMedia.
// The zero value resolves nothing.
type Routes struct {
	table UnpackTable
	depth int
}

// NewRoutes returns a top-level view of table.
func NewRoutes(table UnpackTable) Routes {
	return Routes{table: table}
}

// Depth returns how many containers deep this view is.
func (r Routes) Depth() int {
	return r.depth
}

// Nested returns the view to pass when unpacking a container referenced from
// the current one.
func (r Routes) Nested() Routes {
	return Routes{table: r.table, depth: r.depth + 1}
}

// Lookup returns the unpacker for a suffix (any case, optional leading dot).
// It reports false past MaxNestingDepth.
func (r Routes) Lookup(suffix string) (Unpacker, bool) {
	if r.table == nil || r.depth >= MaxNestingDepth {
		return nil, false
	}
	return r.table.Unpacker(NormalizeSuffix(suffix))
}

// LookupPath is Lookup keyed by the suffix of path.
func (r Routes) LookupPath(path string) (Unpacker, bool) {
	return r.Lookup(Suffix(path))
}

// Expand resolves a path referenced from inside a container. When an
// unpacker is indexed for its suffix it is called with the nested view;
// otherwise a single whole-file item is returned. The bool reports whether an
// unpacker was used.
func (r Routes) Expand(path string) ([]*mediaitem.Item, bool, error) {
	u, ok := r.LookupPath(path)
	if !ok {
		return []*mediaitem.Item{mediaitem.New(path)}, false, nil
	}
	items, err := u.DumpMedia(path, r.Nested())
	return items, true, err
}
