// Package probe provides the "probe" tag parser agent, the wildcard fallback
// for paths whose suffix no other tag parser claims.
//
// The parser reads the first bytes of the file, detects the content type
// with github.com/gabriel-vasile/mimetype and, when the type is an audio
// format the audiotag package understands, reads the tags as that format.
// A file named "track.bin" that holds a FLAC stream is therefore tagged like
// "track.flac". Content that is not audio opens without error and reports no
// tag and no properties.
package probe
