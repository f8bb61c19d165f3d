// Package mediatypes provides shared suffix and MIME tables for the
// media-resolver application.
//
// This package exists as a dependency-free foundation that can be imported by
// plugins and the resolver without creating import cycles. It contains
// primitive types, constants, and pure utility functions with no external
// dependencies beyond the standard library.
//
// # Suffixes
//
// Routing is keyed by lower-cased file suffix without the leading dot:
//
//	mediatypes.Suffix("/music/Album.CUE")   // "cue"
//	mediatypes.Suffix("/music/noext")       // ""
//	mediatypes.NormalizeSuffix(".FLAC")     // "flac"
//
// Plugins declare suffixes in any case, with or without the dot; the resolver
// normalizes them with NormalizeSuffix before indexing.
//
// # File Types
//
//	mediatypes.FileTypeAudio     // Single audio files (mp3, flac, wav, ...)
//	mediatypes.FileTypeContainer // Files that unpack into items (cue, wpl, m3u)
//	mediatypes.FileTypeOther     // Unrecognized suffixes
//
// # MIME Types
//
// GetMimeType maps suffixes to MIME types; SuffixForMime goes the other way and
// is used by content sniffing to pick a tag reader for files whose name gives
// no usable hint.
package mediatypes
