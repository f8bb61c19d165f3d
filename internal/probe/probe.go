package probe

import (
	"time"

	"github.com/gabriel-vasile/mimetype"

	"media-resolver/internal/audiotag"
	"media-resolver/internal/filesystem"
	"media-resolver/internal/logging"
	"media-resolver/internal/mediaitem"
	"media-resolver/internal/mediatypes"
	"media-resolver/internal/option"
	"media-resolver/internal/plugin"
)

// Name is the agent name used in plugin manifests.
const Name = "probe"

// Option names.
const (
	OptionSniffBytes = "sniff_bytes"
	OptionRetries    = "retries"
)

// DefaultSniffBytes is how much of a file is read for content detection
// unless configured.
const DefaultSniffBytes = 3072

// Options returns the option schema of the probe agent.
func Options() []option.Schema {
	return []option.Schema{
		option.MustRangedInt(OptionSniffBytes, "Bytes read from the start of a file for content detection", 512, 1<<20, DefaultSniffBytes),
		option.MustRangedInt(OptionRetries, "Retries on NFS stale file handles", 0, 10, 3),
	}
}

// Agent creates probe parsers. The parser claims the wildcard suffix, so it
// only handles paths no other tag parser claimed.
type Agent struct {
	sniffBytes int
	retry      filesystem.RetryConfig
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
		sniffBytes: int(values.Int(OptionSniffBytes)),
		retry:      retry,
	}
}

func (a *Agent) Name() string             { return Name }
func (a *Agent) Kind() plugin.Kind        { return plugin.KindTagParser }
func (a *Agent) Options() []option.Schema { return Options() }

// CreateObject returns a new *Parser.
func (a *Agent) CreateObject() (any, error) {
	return &Parser{sniffBytes: a.sniffBytes, retry: a.retry}, nil
}

// FreeObject releases a parser created by CreateObject.
func (a *Agent) FreeObject(obj any) {
	if p, ok := obj.(*Parser); ok {
		p.Close()
	}
}

// Parser detects the real format of a file from its content and reads its
// tags as that format.
type Parser struct {
	sniffBytes int
	retry      filesystem.RetryConfig

	mime string
	tags *audiotag.Tags
}

// FileSuffixes returns the wildcard.
func (p *Parser) FileSuffixes() []string { return []string{plugin.Wildcard} }

// Detect returns the MIME type of head and the audio suffix it maps to, or
// "" when the content is not a known audio format.
func Detect(head []byte) (mime, suffix string) {
	mt := mimetype.Detect(head)
	mime = mt.String()
	for m := mt; m != nil; m = m.Parent() {
		if s := mediatypes.SuffixForMime(m.String()); s != "" {
			return mime, s
		}
	}
	return mime, ""
}

// Open sniffs path. Content that is not a known audio format opens
// successfully with no tag and no properties.
func (p *Parser) Open(path string) error {
	p.Close()
	start := time.Now()

	head, err := filesystem.ReadHeadWithRetry(path, p.sniffBytes, p.retry)
	if err != nil {
		return err
	}
	mime, suffix := Detect(head)
	p.mime = mime
	observeSniff(mime, suffix != "", time.Since(start))
	if suffix == "" {
		logging.Debug("Probe %s: %s is not a known audio format", path, mime)
		p.tags = nil
		return nil
	}

	f, err := filesystem.OpenWithRetry(path, p.retry)
	if err != nil {
		return err
	}
	defer f.Close()
	tags, err := audiotag.ReadFrom(f, suffix)
	if err != nil {
		return err
	}
	logging.Debug("Probe %s: detected %s, read as %s", path, mime, suffix)
	p.tags = tags
	return nil
}

// MIME returns the type detected by the last Open.
func (p *Parser) MIME() string { return p.mime }

// Close drops the state of the last Open.
func (p *Parser) Close() {
	p.mime = ""
	p.tags = nil
}

func (p *Parser) HasTag() bool        { return p.tags != nil && p.tags.HasTag() }
func (p *Parser) HasProperties() bool { return p.tags != nil && p.tags.HasProperties() }

func (p *Parser) Title() string   { return p.str(func(t *audiotag.Tags) string { return t.Title }) }
func (p *Parser) Artist() string  { return p.str(func(t *audiotag.Tags) string { return t.Artist }) }
func (p *Parser) Album() string   { return p.str(func(t *audiotag.Tags) string { return t.Album }) }
func (p *Parser) Comment() string { return p.str(func(t *audiotag.Tags) string { return t.Comment }) }
func (p *Parser) Genre() string   { return p.str(func(t *audiotag.Tags) string { return t.Genre }) }

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

func (p *Parser) str(get func(*audiotag.Tags) string) string {
	if p.tags == nil {
		return ""
	}
	return get(p.tags)
}
