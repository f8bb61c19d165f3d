package loader

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"
)

var (
	// ErrUnknownPlugin is returned for a manifest entry naming no built-in agent.
	ErrUnknownPlugin = errors.New("unknown plugin")
	// ErrInvalidManifest wraps manifest syntax and structure errors.
	ErrInvalidManifest = errors.New("invalid plugin manifest")
)

// Manifest lists the agents to register, in registration order.
type Manifest struct {
	Plugins []PluginSpec `yaml:"plugins" json:"plugins"`
}

// PluginSpec is one manifest entry.
type PluginSpec struct {
	Name string `yaml:"name" json:"name"`
	// Enabled defaults to true when omitted.
	Enabled *bool          `yaml:"enabled,omitempty" json:"enabled,omitempty"`
	Options map[string]any `yaml:"options,omitempty" json:"options,omitempty"`
}

// IsEnabled reports whether the entry should be registered.
func (p PluginSpec) IsEnabled() bool {
	return p.Enabled == nil || *p.Enabled
}

// DefaultManifest registers the container unpackers, then the tag parsers
// with the content probe last so it only sees unclaimed suffixes. The
// catalog is listed but disabled.
func DefaultManifest() *Manifest {
	disabled := false
	return &Manifest{Plugins: []PluginSpec{
		{Name: "cue"},
		{Name: "wpl"},
		{Name: "m3u"},
		{Name: "audiotag"},
		{Name: "probe"},
		{Name: "catalog", Enabled: &disabled},
	}}
}

// ParseManifest decodes a YAML manifest and checks that every entry names a
// built-in agent. Option values are checked when the agents are built.
func ParseManifest(data []byte) (*Manifest, error) {
	var m Manifest
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&m); err != nil {
		if errors.Is(err, io.EOF) {
			return &Manifest{}, nil
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidManifest, err)
	}
	for i, p := range m.Plugins {
		if p.Name == "" {
			return nil, fmt.Errorf("%w: entry %d has no name", ErrInvalidManifest, i)
		}
		if _, ok := Lookup(p.Name); !ok {
			return nil, fmt.Errorf("%w: entry %d: %w %q", ErrInvalidManifest, i, ErrUnknownPlugin, p.Name)
		}
	}
	return &m, nil
}

// LoadManifest reads the manifest at path. A missing file yields
// DefaultManifest.
func LoadManifest(path string) (*Manifest, error) {
	if path == "" {
		return DefaultManifest(), nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return DefaultManifest(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read plugin manifest: %w", err)
	}
	m, err := ParseManifest(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

// Marshal encodes the manifest as YAML.
func (m *Manifest) Marshal() ([]byte, error) {
	return yaml.Marshal(m)
}

// Enabled returns the names of enabled entries in order.
func (m *Manifest) Enabled() []string {
	var names []string
	for _, p := range m.Plugins {
		if p.IsEnabled() {
			names = append(names, p.Name)
		}
	}
	return names
}
