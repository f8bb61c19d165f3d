package playlist

import (
	"errors"
	"path/filepath"
	"regexp"
	"strings"

	"media-resolver/internal/filesystem"
)

// ErrMalformed wraps playlist syntax errors.
var ErrMalformed = errors.New("malformed playlist")

// Playlist is a parsed playlist file.
type Playlist struct {
	Name    string  `json:"name"`
	Path    string  `json:"path"`
	Entries []Entry `json:"entries"`
}

// Entry is one reference in a playlist.
type Entry struct {
	// Source is the reference exactly as written in the playlist.
	Source string `json:"source"`
	Title  string `json:"title,omitempty"`
	Artist string `json:"artist,omitempty"`
	// Duration in milliseconds, -1 when the playlist does not say.
	Duration int64 `json:"duration"`
}

func newPlaylist(path, title string) *Playlist {
	p := &Playlist{Name: title, Path: path}
	if p.Name == "" {
		p.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return p
}

func newEntry(src string) Entry {
	return Entry{Source: src, Duration: -1}
}

var (
	schemeRe = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9+.-]*://`)
	driveRe  = regexp.MustCompile(`^[a-zA-Z]:/`)
)

// Locator turns playlist references into local paths.
type Locator struct {
	// MediaDir is searched by file name when a reference cannot be found
	// where the playlist says. Empty disables the fallback.
	MediaDir string
	Retry    filesystem.RetryConfig
}

// Locate resolves src, as written in the playlist at playlistPath. Network
// URLs are returned unchanged. exists reports whether a local file was
// found; when it is false the best guess is returned.
func (l Locator) Locate(src, playlistPath string) (path string, exists bool) {
	if strings.HasPrefix(src, "file://") {
		src = strings.TrimPrefix(src, "file://")
	} else if schemeRe.MatchString(src) {
		return src, true
	}

	// Handle Windows paths
	p := strings.ReplaceAll(src, "\\", "/")
	foreign := strings.HasPrefix(p, "//") || driveRe.MatchString(p)

	var guess string
	switch {
	case foreign:
		guess = p
	case filepath.IsAbs(p):
		guess = filepath.Clean(p)
		if l.exists(guess) {
			return guess, true
		}
	default:
		guess = filepath.Join(filepath.Dir(playlistPath), filepath.FromSlash(p))
		if l.exists(guess) {
			return guess, true
		}
	}

	if l.MediaDir != "" {
		candidate := filepath.Join(l.MediaDir, pathBase(p))
		if l.exists(candidate) {
			return candidate, true
		}
	}
	return guess, false
}

func (l Locator) exists(path string) bool {
	_, err := filesystem.StatWithRetry(path, l.Retry)
	return err == nil
}

// pathBase is filepath.Base for slash-separated paths from any system.
func pathBase(p string) string {
	if idx := strings.LastIndexByte(p, '/'); idx >= 0 {
		return p[idx+1:]
	}
	return p
}
