package mediatypes

import (
	"path/filepath"
	"strings"
)

// FileType represents the broad category of a media path.
type FileType string

const (
	// FileTypeAudio represents a single audio file.
	FileTypeAudio FileType = "audio"
	// FileTypeContainer represents a file that unpacks into other items
	// (CUE sheets, playlists).
	FileTypeContainer FileType = "container"
	// FileTypeOther represents an unknown or unsupported file type.
	FileTypeOther FileType = "other"
)

// Wildcard is the reserved suffix token a tag parser may claim to act as
// the fallback for every suffix without a more specific parser.
const Wildcard = "*"

// AudioSuffixes maps lower-cased suffixes (no leading dot) of audio formats.
var AudioSuffixes = map[string]bool{
	"mp3":  true,
	"flac": true,
	"ogg":  true,
	"oga":  true,
	"opus": true,
	"m4a":  true,
	"m4b":  true,
	"mp4":  true,
	"aac":  true,
	"wav":  true,
	"wave": true,
	"aif":  true,
	"aiff": true,
	"ape":  true,
	"wv":   true,
	"dsf":  true,
	"wma":  true,
}

// ContainerSuffixes maps lower-cased suffixes of formats that reference
// other media.
var ContainerSuffixes = map[string]bool{
	"cue":  true,
	"wpl":  true,
	"m3u":  true,
	"m3u8": true,
}

// MimeTypes maps lower-cased suffixes to MIME types.
var MimeTypes = map[string]string{
	// Audio
	"mp3":  "audio/mpeg",
	"flac": "audio/flac",
	"ogg":  "audio/ogg",
	"oga":  "audio/ogg",
	"opus": "audio/opus",
	"m4a":  "audio/mp4",
	"m4b":  "audio/mp4",
	"mp4":  "audio/mp4",
	"aac":  "audio/aac",
	"wav":  "audio/wav",
	"wave": "audio/wav",
	"aif":  "audio/aiff",
	"aiff": "audio/aiff",
	"ape":  "audio/x-ape",
	"wv":   "audio/x-wavpack",
	"dsf":  "audio/x-dsf",
	"wma":  "audio/x-ms-wma",

	// Containers
	"cue":  "application/x-cue",
	"wpl":  "application/vnd.ms-wpl",
	"m3u":  "audio/x-mpegurl",
	"m3u8": "application/vnd.apple.mpegurl",
}

// Suffix returns the lower-cased suffix of path without the leading dot.
// Paths without a suffix, and dot-files such as ".hidden", return "".
func Suffix(path string) string {
	base := filepath.Base(path)
	idx := strings.LastIndexByte(base, '.')
	if idx <= 0 || idx == len(base)-1 {
		return ""
	}
	return strings.ToLower(base[idx+1:])
}

// NormalizeSuffix lower-cases a declared suffix and strips a leading dot
// and surrounding space, so ".CUE", "cue" and " Cue " are equivalent.
func NormalizeSuffix(suffix string) string {
	s := strings.TrimSpace(suffix)
	s = strings.TrimPrefix(s, ".")
	return strings.ToLower(s)
}

// GetFileType returns the FileType for a suffix as returned by Suffix.
func GetFileType(suffix string) FileType {
	if ContainerSuffixes[suffix] {
		return FileTypeContainer
	}
	if AudioSuffixes[suffix] {
		return FileTypeAudio
	}
	return FileTypeOther
}

// GetMimeType returns the MIME type for a suffix.
// Returns "application/octet-stream" if the suffix is not recognized.
func GetMimeType(suffix string) string {
	if mime, ok := MimeTypes[suffix]; ok {
		return mime
	}
	return "application/octet-stream"
}

// SuffixForMime returns the canonical suffix for a MIME type, or "".
// Parameters such as "; charset=utf-8" are ignored.
func SuffixForMime(mime string) string {
	if idx := strings.IndexByte(mime, ';'); idx >= 0 {
		mime = mime[:idx]
	}
	mime = strings.ToLower(strings.TrimSpace(mime))
	switch mime {
	case "audio/mpeg", "audio/mp3":
		return "mp3"
	case "audio/flac", "audio/x-flac":
		return "flac"
	case "audio/ogg", "application/ogg", "audio/opus":
		return "ogg"
	case "audio/mp4", "audio/x-m4a", "video/mp4":
		return "m4a"
	case "audio/aac":
		return "aac"
	case "audio/wav", "audio/x-wav", "audio/wave", "audio/vnd.wave":
		return "wav"
	case "audio/aiff", "audio/x-aiff":
		return "aiff"
	case "audio/x-ape":
		return "ape"
	case "audio/x-dsf":
		return "dsf"
	}
	return ""
}

// IsAudioFile returns true if the suffix represents a supported audio format.
func IsAudioFile(suffix string) bool {
	return GetFileType(suffix) == FileTypeAudio
}
