package audiotag

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/dhowden/tag"

	"media-resolver/internal/filesystem"
	"media-resolver/internal/mediaitem"
	"media-resolver/internal/mediatypes"
)

// Tags is the metadata read from one audio file. Unknown fields hold the
// mediaitem sentinels.
type Tags struct {
	// Format names the container the tags came from ("ID3v2.4", "VORBIS",
	// "RIFF", ...). Empty when no tag was found.
	Format string

	Title   string
	Artist  string
	Album   string
	Comment string
	Genre   string
	Year    int
	Track   int

	// Duration in milliseconds.
	Duration int64
}

func newTags() *Tags {
	return &Tags{
		Year:     mediaitem.UnknownYear,
		Track:    mediaitem.UnknownTrack,
		Duration: mediaitem.UnknownDuration,
	}
}

// HasTag reports whether any tag field is known.
func (t *Tags) HasTag() bool {
	return t.Title != "" || t.Artist != "" || t.Album != "" ||
		t.Comment != "" || t.Genre != "" ||
		t.Year >= 0 || t.Track >= 0
}

// HasProperties reports whether stream properties were read.
func (t *Tags) HasProperties() bool {
	return t.Duration >= 0
}

// Read opens path with NFS retry and reads its tags. The format is taken
// from the suffix of path. A file in a format without tag support yields
// empty Tags and no error; only I/O failures are returned.
func Read(path string, retry filesystem.RetryConfig) (*Tags, error) {
	f, err := filesystem.OpenWithRetry(path, retry)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return ReadFrom(f, mediatypes.Suffix(path))
}

// ReadFrom reads tags from r, a file of the format named by suffix. The
// stream length is computed from the audio headers where the format allows
// it, and otherwise taken from an ID3 TLEN frame.
func ReadFrom(r io.ReadSeeker, suffix string) (*Tags, error) {
	if suffix == "wav" || suffix == "wave" {
		return readRIFF(r)
	}

	t, err := readGeneric(r)
	if err != nil {
		return nil, err
	}
	if duration, ok := durationReaders[suffix]; ok {
		if _, err := r.Seek(0, io.SeekStart); err != nil {
			return nil, fmt.Errorf("rewind: %w", err)
		}
		if ms, ok := duration(r); ok {
			t.Duration = ms
		}
	}
	return t, nil
}

// readGeneric reads ID3, MP4, Vorbis and FLAC comments.
func readGeneric(r io.ReadSeeker) (*Tags, error) {
	t := newTags()

	m, err := tag.ReadFrom(r)
	if err != nil {
		// Read failures from the file itself surface as *os.PathError. A
		// failed seek only means the file is too short for an ID3v1 tag; any
		// other error means the tag bytes could not be parsed.
		var pathErr *os.PathError
		if errors.As(err, &pathErr) && pathErr.Op != "seek" {
			return nil, fmt.Errorf("read tags: %w", err)
		}
		return t, nil
	}

	t.Format = string(m.Format())
	t.Title = strings.TrimSpace(m.Title())
	t.Artist = strings.TrimSpace(m.Artist())
	if t.Artist == "" {
		t.Artist = strings.TrimSpace(m.AlbumArtist())
	}
	t.Album = strings.TrimSpace(m.Album())
	t.Comment = strings.TrimSpace(m.Comment())
	t.Genre = strings.TrimSpace(m.Genre())
	if y := m.Year(); y > 0 {
		t.Year = y
	}
	if n, _ := m.Track(); n > 0 {
		t.Track = n
	}
	t.Duration = id3Length(m.Raw())
	return t, nil
}

// id3Length returns the TLEN frame in milliseconds, or UnknownDuration.
func id3Length(raw map[string]interface{}) int64 {
	for _, key := range []string{"TLEN", "TLE"} {
		v, ok := raw[key]
		if !ok {
			continue
		}
		s, ok := v.(string)
		if !ok {
			continue
		}
		if ms, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64); err == nil && ms >= 0 {
			return ms
		}
	}
	return mediaitem.UnknownDuration
}

// ParseYear takes the leading four digits of a date such as "1997-05-01".
func ParseYear(s string) int {
	s = strings.TrimSpace(s)
	if len(s) < 4 {
		return mediaitem.UnknownYear
	}
	y, err := strconv.Atoi(s[:4])
	if err != nil || y <= 0 {
		return mediaitem.UnknownYear
	}
	return y
}

// ParseTrack accepts "5" and "5/12".
func ParseTrack(s string) int {
	s = strings.TrimSpace(s)
	if idx := strings.IndexByte(s, '/'); idx >= 0 {
		s = s[:idx]
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return mediaitem.UnknownTrack
	}
	return n
}
