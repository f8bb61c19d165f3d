package playlist

import (
	"errors"
	"fmt"

	"media-resolver/internal/filesystem"
	"media-resolver/internal/logging"
	"media-resolver/internal/mediaitem"
	"media-resolver/internal/option"
	"media-resolver/internal/plugin"
)

// Agent names used in plugin manifests.
const (
	NameWPL = "wpl"
	NameM3U = "m3u"
)

// Option names.
const (
	OptionSuffixes = "suffixes"
	OptionRetries  = "retries"
	OptionMediaDir = "media_dir"
	OptionMissing  = "missing"
)

// Values of OptionMissing.
const (
	MissingKeep = "keep"
	MissingSkip = "skip"
)

type format struct {
	name     string
	suffixes string
	parse    func(data []byte, path string) (*Playlist, error)
}

var (
	formatWPL = format{name: NameWPL, suffixes: "wpl", parse: ParseWPL}
	formatM3U = format{name: NameM3U, suffixes: "m3u,m3u8", parse: ParseM3U}
)

func (f format) options() []option.Schema {
	return []option.Schema{
		option.String(OptionSuffixes, "Comma separated file suffixes to claim", f.suffixes),
		option.MustRangedInt(OptionRetries, "Retries on NFS stale file handles", 0, 10, 3),
		option.String(OptionMediaDir, "Directory searched by file name for entries that cannot be found", ""),
		option.MustEnumedString(OptionMissing, "What to do with entries whose file does not exist",
			[]string{MissingKeep, MissingSkip}, 0),
	}
}

// WPLOptions returns the option schema of the wpl agent.
func WPLOptions() []option.Schema { return formatWPL.options() }

// M3UOptions returns the option schema of the m3u agent.
func M3UOptions() []option.Schema { return formatM3U.options() }

// Agent creates playlist unpackers for one format.
type Agent struct {
	format      format
	suffixes    []string
	locator     Locator
	skipMissing bool
}

// NewWPLAgent returns the wpl agent configured from values (nil for defaults).
func NewWPLAgent(values *option.Values) *Agent {
	return newAgent(formatWPL, values)
}

// NewM3UAgent returns the m3u agent configured from values (nil for defaults).
func NewM3UAgent(values *option.Values) *Agent {
	return newAgent(formatM3U, values)
}

func newAgent(f format, values *option.Values) *Agent {
	if values == nil {
		values = option.NewValues(f.options()...)
	}
	retry := filesystem.DefaultRetryConfig()
	retry.MaxRetries = int(values.Int(OptionRetries))
	return &Agent{
		format:      f,
		suffixes:    plugin.SplitSuffixes(values.String(OptionSuffixes)),
		locator:     Locator{MediaDir: values.String(OptionMediaDir), Retry: retry},
		skipMissing: values.String(OptionMissing) == MissingSkip,
	}
}

func (a *Agent) Name() string             { return a.format.name }
func (a *Agent) Kind() plugin.Kind        { return plugin.KindUnpacker }
func (a *Agent) Options() []option.Schema { return a.format.options() }

// CreateObject returns a new *Unpacker.
func (a *Agent) CreateObject() (any, error) {
	return &Unpacker{
		format:      a.format,
		suffixes:    a.suffixes,
		locator:     a.locator,
		skipMissing: a.skipMissing,
	}, nil
}

// FreeObject is a no-op; unpackers hold no resources.
func (a *Agent) FreeObject(any) {}

// Unpacker expands a playlist into the items of its entries. Entries that
// are themselves containers are expanded through the routes view.
type Unpacker struct {
	format      format
	suffixes    []string
	locator     Locator
	skipMissing bool
}

func (u *Unpacker) FileSuffixes() []string { return u.suffixes }

// DumpMedia parses the playlist at path. A failing nested container does not
// stop the remaining entries; its error is joined into the returned error.
func (u *Unpacker) DumpMedia(path string, routes plugin.Routes) ([]*mediaitem.Item, error) {
	data, err := filesystem.ReadFileWithRetry(path, u.locator.Retry)
	if err != nil {
		return nil, err
	}
	pl, err := u.format.parse(data, path)
	if err != nil {
		return nil, err
	}

	var items []*mediaitem.Item
	var errs []error
	for _, entry := range pl.Entries {
		target, exists := u.locator.Locate(entry.Source, path)
		if !exists && u.skipMissing {
			logging.Debug("Playlist %s: skipping missing entry %s", path, entry.Source)
			continue
		}

		expanded, unpacked, err := routes.Expand(target)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", target, err))
		}
		if !unpacked {
			for _, item := range expanded {
				applyEntry(item, entry)
			}
		}
		items = append(items, expanded...)
	}

	logging.Debug("Playlist %s (%s): %d entries, %d item(s)", pl.Name, u.format.name, len(pl.Entries), len(items))
	return items, errors.Join(errs...)
}

// applyEntry copies what the playlist knows about an entry into its item.
func applyEntry(item *mediaitem.Item, e Entry) {
	if item == nil {
		return
	}
	mediaitem.FillString(&item.Title, e.Title)
	mediaitem.FillString(&item.Artist, e.Artist)
	mediaitem.FillInt64(&item.Duration, e.Duration)
}
