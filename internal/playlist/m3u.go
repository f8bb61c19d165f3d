package playlist

import (
	"bufio"
	"bytes"
	"fmt"
	"strconv"
	"strings"
)

const (
	m3uHeader   = "#EXTM3U"
	m3uInfo     = "#EXTINF:"
	m3uPlaylist = "#PLAYLIST:"
)

// ParseM3U parses a plain or extended M3U playlist. #EXTINF lines supply
// the duration and "Artist - Title" of the entry that follows them.
func ParseM3U(data []byte, m3uPath string) (*Playlist, error) {
	data = bytes.TrimPrefix(data, []byte("\ufeff"))

	var title string
	var pending *Entry
	var entries []Entry

	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		switch {
		case line == "" || line == m3uHeader:
			continue
		case strings.HasPrefix(line, m3uPlaylist):
			title = strings.TrimSpace(strings.TrimPrefix(line, m3uPlaylist))
		case strings.HasPrefix(line, m3uInfo):
			e := parseExtInf(strings.TrimPrefix(line, m3uInfo))
			pending = &e
		case strings.HasPrefix(line, "#"):
			continue
		default:
			e := newEntry(line)
			if pending != nil {
				e.Title, e.Artist, e.Duration = pending.Title, pending.Artist, pending.Duration
				pending = nil
			}
			entries = append(entries, e)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	playlist := newPlaylist(m3uPath, title)
	playlist.Entries = entries
	return playlist, nil
}

// parseExtInf parses the part after "#EXTINF:", for example
// `215 tvg-id="x",Band - Song`.
func parseExtInf(s string) Entry {
	e := Entry{Duration: -1}

	head, display, found := strings.Cut(s, ",")
	if !found {
		display = ""
	}
	if fields := strings.Fields(head); len(fields) > 0 {
		if secs, err := strconv.ParseFloat(fields[0], 64); err == nil && secs >= 0 {
			e.Duration = int64(secs * 1000)
		}
	}

	display = strings.TrimSpace(display)
	if artist, title, ok := strings.Cut(display, " - "); ok {
		e.Artist = strings.TrimSpace(artist)
		e.Title = strings.TrimSpace(title)
	} else {
		e.Title = display
	}
	return e
}
