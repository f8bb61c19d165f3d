package resolver

import (
	"time"

	"media-resolver/internal/logging"
	"media-resolver/internal/mediaitem"
	"media-resolver/internal/plugin"
)

// LoadMedia resolves path into items. It never fails as a whole: problems
// with the container or with individual items are returned as diagnostics
// and the remaining items are still resolved. The caller owns the returned
// items.
func (r *Resolver) LoadMedia(path string) ([]*mediaitem.Item, Diagnostics) {
	start := time.Now()

	r.mu.RLock()
	defer r.mu.RUnlock()

	var diags Diagnostics
	items, unpacked := r.unpack(path, &diags)
	for _, item := range items {
		r.fillTags(item, &diags)
	}

	observe().ObserveLoad(unpacked, len(items), time.Since(start).Seconds())
	for _, d := range diags {
		observe().ObserveDiagnostic(d.Code)
	}
	return items, diags
}

// unpack runs the unpack phase. Callers hold the read lock.
func (r *Resolver) unpack(path string, diags *Diagnostics) ([]*mediaitem.Item, bool) {
	entry, ok := r.tables.unpackers[plugin.Suffix(path)]
	if !ok {
		return []*mediaitem.Item{mediaitem.New(path)}, false
	}

	routes := plugin.NewRoutes(unpackView(r.tables.unpackers))
	produced, err := entry.unpacker.DumpMedia(path, routes)
	if err != nil {
		d := Diagnostic{Code: CodeMalformedContainer, Path: path, Plugin: r.agentName(entry.owner), Err: err}
		logging.Warn("Unpack failed: %v", d)
		*diags = append(*diags, d)
	}

	items := make([]*mediaitem.Item, 0, len(produced))
	for _, item := range produced {
		if item != nil {
			items = append(items, item)
		}
	}
	logging.Debug("Unpacked %s into %d item(s)", path, len(items))
	return items, true
}

// fillTags runs the tag-fill phase for one item. Callers hold the read lock.
func (r *Resolver) fillTags(item *mediaitem.Item, diags *Diagnostics) {
	entry, ok := r.tables.parsers[plugin.Suffix(item.URL)]
	if !ok {
		entry, ok = r.tables.parsers[plugin.Wildcard]
		if !ok {
			return
		}
	}

	name := r.agentName(entry.owner)
	c := entry.capability
	c.mu.Lock()
	defer c.mu.Unlock()

	parser := c.parser
	defer parser.Close()

	if err := parser.Open(item.URL); err != nil {
		d := Diagnostic{Code: CodeIOFailure, Path: item.URL, Plugin: name, Err: err}
		logging.Warn("Tag parser open failed: %v", d)
		*diags = append(*diags, d)
		return
	}

	filled := 0
	if parser.HasTag() {
		filled += item.FillTags(parser)
	} else {
		logging.Debug("No tag data in %s (%s)", item.URL, name)
		*diags = append(*diags, Diagnostic{Code: CodeNoTagData, Path: item.URL, Plugin: name})
	}

	if parser.HasProperties() {
		if item.FillDuration(parser.Duration()) {
			filled++
		}
	} else {
		logging.Debug("No stream properties in %s (%s)", item.URL, name)
		*diags = append(*diags, Diagnostic{Code: CodeNoProperties, Path: item.URL, Plugin: name})
	}

	observe().ObserveTagFill(name, filled)
}

func (r *Resolver) agentName(h Handle) string {
	if s := r.lookup(h); s != nil {
		return s.agent.Name()
	}
	return h.String()
}
