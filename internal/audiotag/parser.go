package audiotag

import (
	"time"

	"media-resolver/internal/filesystem"
	"media-resolver/internal/mediaitem"
	"media-resolver/internal/option"
	"media-resolver/internal/plugin"
)

// Name is the agent name used in plugin manifests.
const Name = "audiotag"

// DefaultSuffixes are the formats this parser claims unless configured.
const DefaultSuffixes = "mp3,flac,ogg,oga,opus,m4a,m4b,mp4,aac,wav,wave,dsf"

// Option names.
const (
	OptionSuffixes = "suffixes"
	OptionRetries  = "retries"
)

// Options returns the option schema of the audiotag agent.
func Options() []option.Schema {
	return []option.Schema{
		option.String(OptionSuffixes, "Comma separated file suffixes to claim", DefaultSuffixes),
		option.MustRangedInt(OptionRetries, "Retries on NFS stale file handles", 0, 10, 3),
	}
}

// Agent creates audiotag parsers.
type Agent struct {
	suffixes []string
	retry    filesystem.RetryConfig
}

// NewAgent returns an agent configured from values. A nil values uses the
// defaults.
func NewAgent(values *option.Values) *Agent {
	if values == nil {
		values = option.NewValues(Options()...)
	}
	retry := filesystem.DefaultRetryConfig()
	retry.MaxRetries = int(values.Int(OptionRetries))
	return &Agent{
		suffixes: plugin.SplitSuffixes(values.String(OptionSuffixes)),
		retry:    retry,
	}
}

func (a *Agent) Name() string      { return Name }
func (a *Agent) Kind() plugin.Kind { return plugin.KindTagParser }

// Options implements plugin.Configurable.
func (a *Agent) Options() []option.Schema { return Options() }

// CreateObject returns a new *Parser.
func (a *Agent) CreateObject() (any, error) {
	return NewParser(a.suffixes, a.retry), nil
}

// FreeObject releases a parser created by CreateObject.
func (a *Agent) FreeObject(obj any) {
	if p, ok := obj.(*Parser); ok {
		p.Close()
	}
}

// Parser is a plugin.TagParser over Read. It holds the tags of the file
// passed to the last successful Open until Close.
type Parser struct {
	suffixes []string
	retry    filesystem.RetryConfig
	tags     *Tags
}

// NewParser returns a parser claiming suffixes.
func NewParser(suffixes []string, retry filesystem.RetryConfig) *Parser {
	return &Parser{suffixes: suffixes, retry: retry}
}

func (p *Parser) FileSuffixes() []string { return p.suffixes }

// Open reads the tags of path.
func (p *Parser) Open(path string) error {
	p.tags = nil
	start := time.Now()
	t, err := Read(path, p.retry)
	if err != nil {
		return err
	}
	p.tags = t
	observeRead(t, time.Since(start))
	return nil
}

// Close drops the tags read by Open.
func (p *Parser) Close() { p.tags = nil }

func (p *Parser) HasTag() bool        { return p.tags != nil && p.tags.HasTag() }
func (p *Parser) HasProperties() bool { return p.tags != nil && p.tags.HasProperties() }

func (p *Parser) Title() string   { return p.str(func(t *Tags) string { return t.Title }) }
func (p *Parser) Artist() string  { return p.str(func(t *Tags) string { return t.Artist }) }
func (p *Parser) Album() string   { return p.str(func(t *Tags) string { return t.Album }) }
func (p *Parser) Comment() string { return p.str(func(t *Tags) string { return t.Comment }) }
func (p *Parser) Genre() string   { return p.str(func(t *Tags) string { return t.Genre }) }

func (p *Parser) Year() int {
	if p.tags == nil {
		return mediaitem.UnknownYear
	}
	return p.tags.Year
}

func (p *Parser) Track() int {
	if p.tags == nil {
		return mediaitem.UnknownTrack
	}
	return p.tags.Track
}

func (p *Parser) Duration() int64 {
	if p.tags == nil {
		return mediaitem.UnknownDuration
	}
	return p.tags.Duration
}

func (p *Parser) str(get func(*Tags) string) string {
	if p.tags == nil {
		return ""
	}
	return get(p.tags)
}
