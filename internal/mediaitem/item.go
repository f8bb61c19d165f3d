package mediaitem

// Unknown sentinels for numeric metadata fields.
const (
	UnknownYear     = -1
	UnknownTrack    = -1
	UnknownDuration = int64(-1)

	// RangeToEnd marks a range that runs until the end of the physical file.
	RangeToEnd = int64(-1)
)

// Item is a single playable unit.
type Item struct {
	URL      string `json:"url"`
	HasRange bool   `json:"hasRange"`

	// RangeBegin and RangeEnd are milliseconds into the physical file.
	// They are only meaningful when HasRange is true.
	RangeBegin int64 `json:"rangeBegin,omitempty"`
	RangeEnd   int64 `json:"rangeEnd,omitempty"`

	Title   string `json:"title,omitempty"`
	Artist  string `json:"artist,omitempty"`
	Album   string `json:"album,omitempty"`
	Comment string `json:"comment,omitempty"`
	Genre   string `json:"genre,omitempty"`

	Year  int `json:"year"`
	Track int `json:"track"`

	// Duration in milliseconds.
	Duration int64 `json:"duration"`
}

// New returns a whole-file unit for url with every metadata field unknown.
func New(url string) *Item {
	return &Item{
		URL:        url,
		HasRange:   false,
		RangeBegin: 0,
		RangeEnd:   RangeToEnd,
		Year:       UnknownYear,
		Track:      UnknownTrack,
		Duration:   UnknownDuration,
	}
}

// NewRange returns a unit covering [begin, end) milliseconds of url.
// Pass RangeToEnd as end for the last track of a container.
func NewRange(url string, begin, end int64) *Item {
	item := New(url)
	item.HasRange = true
	item.RangeBegin = begin
	item.RangeEnd = end
	return item
}

// Clone returns a copy of the item.
func (i *Item) Clone() *Item {
	if i == nil {
		return nil
	}
	c := *i
	return &c
}

// HasYear reports whether Year is known.
func (i *Item) HasYear() bool { return i.Year >= 0 }

// HasTrack reports whether Track is known.
func (i *Item) HasTrack() bool { return i.Track >= 0 }

// HasDuration reports whether Duration is known.
func (i *Item) HasDuration() bool { return i.Duration >= 0 }

// IsBlank reports whether no metadata field is known.
func (i *Item) IsBlank() bool {
	return i.Title == "" && i.Artist == "" && i.Album == "" &&
		i.Comment == "" && i.Genre == "" &&
		!i.HasYear() && !i.HasTrack() && !i.HasDuration()
}

// SpanDuration returns the length of a ranged item in milliseconds, or
// UnknownDuration when the range is open-ended or the item is a whole file.
func (i *Item) SpanDuration() int64 {
	if !i.HasRange || i.RangeEnd < 0 || i.RangeEnd < i.RangeBegin {
		return UnknownDuration
	}
	return i.RangeEnd - i.RangeBegin
}
