package cuesheet

import (
	"bytes"
	"path/filepath"

	"media-resolver/internal/audiotag"
	"media-resolver/internal/filesystem"
	"media-resolver/internal/logging"
	"media-resolver/internal/mediaitem"
	"media-resolver/internal/option"
	"media-resolver/internal/plugin"
)

// Name is the agent name used in plugin manifests.
const Name = "cue"

// Option names.
const (
	OptionSuffixes = "suffixes"
	OptionRetries  = "retries"
)

// Options returns the option schema of the cue agent.
func Options() []option.Schema {
	return []option.Schema{
		option.String(OptionSuffixes, "Comma separated file suffixes to claim", "cue"),
		option.MustRangedInt(OptionRetries, "Retries on NFS stale file handles", 0, 10, 3),
	}
}

// Agent creates CUE sheet unpackers.
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

func (a *Agent) Name() string             { return Name }
func (a *Agent) Kind() plugin.Kind        { return plugin.KindUnpacker }
func (a *Agent) Options() []option.Schema { return Options() }

// CreateObject returns a new *Unpacker.
func (a *Agent) CreateObject() (any, error) {
	return &Unpacker{suffixes: a.suffixes, retry: a.retry}, nil
}

// FreeObject is a no-op; unpackers hold no resources.
func (a *Agent) FreeObject(any) {}

// Unpacker expands a CUE sheet into one ranged item per track.
type Unpacker struct {
	suffixes []string
	retry    filesystem.RetryConfig
}

func (u *Unpacker) FileSuffixes() []string { return u.suffixes }

// DumpMedia reads the sheet at path. FILE names are resolved relative to the
// sheet's directory. Sheet-level PERFORMER, TITLE and REM fields are copied
// into every track; track fields win.
func (u *Unpacker) DumpMedia(path string, _ plugin.Routes) ([]*mediaitem.Item, error) {
	data, err := filesystem.ReadFileWithRetry(path, u.retry)
	if err != nil {
		return nil, err
	}

	sheet, err := Parse(bytes.NewReader(data))
	items := Items(sheet, filepath.Dir(path))
	if err != nil {
		logging.Debug("CUE sheet %s: kept %d track(s) before error", path, len(items))
	}
	u.fillTrailingDurations(items)
	return items, err
}

// fillTrailingDurations sets the duration of tracks that run to the end of
// their file from the file's own length, which only the audio file knows.
func (u *Unpacker) fillTrailingDurations(items []*mediaitem.Item) {
	lengths := make(map[string]int64)
	for _, item := range items {
		if item.RangeEnd != mediaitem.RangeToEnd || item.HasDuration() {
			continue
		}
		length, seen := lengths[item.URL]
		if !seen {
			length = mediaitem.UnknownDuration
			if tags, err := audiotag.Read(item.URL, u.retry); err == nil && tags.HasProperties() {
				length = tags.Duration
			} else if err != nil {
				logging.Debug("CUE track file %s: %v", item.URL, err)
			}
			lengths[item.URL] = length
		}
		if length > item.RangeBegin {
			item.Duration = length - item.RangeBegin
		}
	}
}

// Items converts a parsed sheet into items. A track ends where the next
// track of the same FILE starts; the last track of each FILE runs to the end.
// Tracks without INDEX 01 are skipped.
func Items(sheet *Sheet, dir string) []*mediaitem.Item {
	if sheet == nil {
		return nil
	}

	year := audiotag.ParseYear(sheet.Date)
	var items []*mediaitem.Item
	for _, f := range sheet.Files {
		url := f.Name
		if !filepath.IsAbs(url) {
			url = filepath.Join(dir, filepath.FromSlash(url))
		}

		for i, t := range f.Tracks {
			if t.Start < 0 {
				continue
			}
			end := mediaitem.RangeToEnd
			for _, next := range f.Tracks[i+1:] {
				if next.Start >= 0 {
					end = next.Start
					break
				}
			}

			item := mediaitem.NewRange(url, t.Start, end)
			item.Title = t.Title
			item.Artist = t.Performer
			if item.Artist == "" {
				item.Artist = sheet.Performer
			}
			item.Album = sheet.Title
			item.Genre = sheet.Genre
			item.Comment = sheet.Comment
			item.Year = year
			item.Track = t.Number
			item.Duration = item.SpanDuration()
			items = append(items, item)
		}
	}
	return items
}
