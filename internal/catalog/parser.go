package catalog

import (
	"context"
	"errors"
	"fmt"

	"media-resolver/internal/logging"
	"media-resolver/internal/mediaitem"
	"media-resolver/internal/option"
	"media-resolver/internal/plugin"
)

// Name is the agent name used in plugin manifests.
const Name = "catalog"

// Option names.
const (
	OptionDatabase = "database"
	OptionSuffixes = "suffixes"
)

// DefaultDatabase is the catalog file used unless configured.
const DefaultDatabase = "./catalog.db"

// Options returns the option schema of the catalog agent.
func Options() []option.Schema {
	return []option.Schema{
		option.String(OptionDatabase, "Path of the SQLite catalog file", DefaultDatabase),
		option.String(OptionSuffixes, "Comma separated file suffixes to claim", plugin.Wildcard),
	}
}

// Agent creates tag parsers that answer from the catalog. Each parser owns
// its own connection pool, opened by CreateObject and closed by FreeObject.
type Agent struct {
	database string
	suffixes []string
}

// NewAgent returns an agent configured from values (nil for defaults).
func NewAgent(values *option.Values) *Agent {
	if values == nil {
		values = option.NewValues(Options()...)
	}
	return &Agent{
		database: values.String(OptionDatabase),
		suffixes: plugin.SplitSuffixes(values.String(OptionSuffixes)),
	}
}

func (a *Agent) Name() string             { return Name }
func (a *Agent) Kind() plugin.Kind        { return plugin.KindTagParser }
func (a *Agent) Options() []option.Schema { return Options() }

// CreateObject opens the catalog and returns a *Parser over it.
func (a *Agent) CreateObject() (any, error) {
	store, err := Open(context.Background(), a.database)
	if err != nil {
		return nil, fmt.Errorf("catalog %s: %w", a.database, err)
	}
	return &Parser{store: store, suffixes: a.suffixes}, nil
}

// FreeObject closes the catalog of a parser created by CreateObject.
func (a *Agent) FreeObject(obj any) {
	p, ok := obj.(*Parser)
	if !ok {
		return
	}
	p.Close()
	if err := p.store.Close(); err != nil {
		logging.Warn("Failed to close catalog %s: %v", p.store.Path(), err)
	}
}

// Parser reports the catalog entry of a path as its tags.
type Parser struct {
	store    *Store
	suffixes []string

	entry *Entry
}

// NewParser returns a parser over an open store. The caller keeps ownership
// of the store.
func NewParser(store *Store, suffixes []string) *Parser {
	return &Parser{store: store, suffixes: suffixes}
}

func (p *Parser) FileSuffixes() []string { return p.suffixes }

// Open looks path up. A path without an entry opens with no tag and no
// properties.
func (p *Parser) Open(path string) error {
	p.entry = nil
	e, err := p.store.Get(context.Background(), path)
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	p.entry = e
	return nil
}

func (p *Parser) Close() { p.entry = nil }

func (p *Parser) HasTag() bool        { return p.entry != nil && p.entry.HasTag() }
func (p *Parser) HasProperties() bool { return p.entry != nil && p.entry.HasProperties() }

func (p *Parser) Title() string   { return p.str(func(e *Entry) string { return e.Title }) }
func (p *Parser) Artist() string  { return p.str(func(e *Entry) string { return e.Artist }) }
func (p *Parser) Album() string   { return p.str(func(e *Entry) string { return e.Album }) }
func (p *Parser) Comment() string { return p.str(func(e *Entry) string { return e.Comment }) }
func (p *Parser) Genre() string   { return p.str(func(e *Entry) string { return e.Genre }) }

func (p *Parser) Year() int {
	if p.entry == nil {
		return mediaitem.UnknownYear
	}
	return p.entry.Year
}

func (p *Parser) Track() int {
	if p.entry == nil {
		return mediaitem.UnknownTrack
	}
	return p.entry.Track
}

func (p *Parser) Duration() int64 {
	if p.entry == nil {
		return mediaitem.UnknownDuration
	}
	return p.entry.Duration
}

func (p *Parser) str(get func(*Entry) string) string {
	if p.entry == nil {
		return ""
	}
	return get(p.entry)
}
