package loader

import (
	"fmt"
	"sort"

	"media-resolver/internal/audiotag"
	"media-resolver/internal/catalog"
	"media-resolver/internal/cuesheet"
	"media-resolver/internal/option"
	"media-resolver/internal/playlist"
	"media-resolver/internal/plugin"
	"media-resolver/internal/probe"
)

// Factory builds one built-in agent from its option values.
type Factory struct {
	Name        string
	Kind        plugin.Kind
	Description string
	Options     func() []option.Schema
	New         func(values *option.Values) plugin.Agent
}

// Values returns an option store for the factory's schema.
func (f Factory) Values() *option.Values {
	return option.NewValues(f.Options()...)
}

// Specs returns the serializable option schema.
func (f Factory) Specs() []option.Spec {
	schemas := f.Options()
	out := make([]option.Spec, len(schemas))
	for i, s := range schemas {
		out[i] = s.Spec()
	}
	return out
}

var builtins = []Factory{
	{
		Name:        cuesheet.Name,
		Kind:        plugin.KindUnpacker,
		Description: "Splits CUE sheets into ranged tracks",
		Options:     cuesheet.Options,
		New:         func(v *option.Values) plugin.Agent { return cuesheet.NewAgent(v) },
	},
	{
		Name:        playlist.NameWPL,
		Kind:        plugin.KindUnpacker,
		Description: "Expands Windows Media Player playlists",
		Options:     playlist.WPLOptions,
		New:         func(v *option.Values) plugin.Agent { return playlist.NewWPLAgent(v) },
	},
	{
		Name:        playlist.NameM3U,
		Kind:        plugin.KindUnpacker,
		Description: "Expands M3U and M3U8 playlists",
		Options:     playlist.M3UOptions,
		New:         func(v *option.Values) plugin.Agent { return playlist.NewM3UAgent(v) },
	},
	{
		Name:        audiotag.Name,
		Kind:        plugin.KindTagParser,
		Description: "Reads ID3, Vorbis comment, MP4 and RIFF INFO tags",
		Options:     audiotag.Options,
		New:         func(v *option.Values) plugin.Agent { return audiotag.NewAgent(v) },
	},
	{
		Name:        probe.Name,
		Kind:        plugin.KindTagParser,
		Description: "Detects the format of unclaimed files from their content",
		Options:     probe.Options,
		New:         func(v *option.Values) plugin.Agent { return probe.NewAgent(v) },
	},
	{
		Name:        catalog.Name,
		Kind:        plugin.KindTagParser,
		Description: "Answers with curated metadata from a SQLite catalog",
		Options:     catalog.Options,
		New:         func(v *option.Values) plugin.Agent { return catalog.NewAgent(v) },
	},
}

// Builtins returns the factories of the built-in agents in their default
// registration order.
func Builtins() []Factory {
	out := make([]Factory, len(builtins))
	copy(out, builtins)
	return out
}

// Lookup returns the factory named name.
func Lookup(name string) (Factory, bool) {
	for _, f := range builtins {
		if f.Name == name {
			return f, true
		}
	}
	return Factory{}, false
}

// Names returns the built-in agent names, sorted.
func Names() []string {
	names := make([]string, len(builtins))
	for i, f := range builtins {
		names[i] = f.Name
	}
	sort.Strings(names)
	return names
}

// build returns the agent for spec with its options applied.
func build(spec PluginSpec) (plugin.Agent, error) {
	f, ok := Lookup(spec.Name)
	if !ok {
		return nil, fmt.Errorf("%w: %q (known: %v)", ErrUnknownPlugin, spec.Name, Names())
	}
	values := f.Values()
	if err := values.SetAll(spec.Options); err != nil {
		return nil, fmt.Errorf("plugin %s: %w", spec.Name, err)
	}
	return f.New(values), nil
}

// Info describes a built-in agent for listings.
type Info struct {
	Name        string        `json:"name"`
	Kind        plugin.Kind   `json:"kind"`
	Description string        `json:"description"`
	Enabled     bool          `json:"enabled"`
	Options     []option.Spec `json:"options"`
}

// Describe lists the built-in agents in default registration order,
// marking those enabled by m. m may be nil.
func Describe(m *Manifest) []Info {
	enabled := make(map[string]bool)
	if m != nil {
		for _, name := range m.Enabled() {
			enabled[name] = true
		}
	}
	out := make([]Info, len(builtins))
	for i, f := range builtins {
		out[i] = Info{
			Name:        f.Name,
			Kind:        f.Kind,
			Description: f.Description,
			Enabled:     enabled[f.Name],
			Options:     f.Specs(),
		}
	}
	return out
}
