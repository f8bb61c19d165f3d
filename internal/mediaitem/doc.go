// Package mediaitem defines the playable unit produced by resolving a path.
//
// An Item is one resolvable entity: either a whole file or a sub-range of a
// larger container file (a CUE sheet track pointing into a single WAV, for
// example). Metadata fields use sentinels for "unknown":
//
//	strings  -> ""
//	Year     -> -1
//	Track    -> -1
//	Duration -> -1
//
// A field is known iff it differs from its sentinel. The Fill* helpers copy
// a value only into a field that is still unknown, so data set earlier (for
// example by an unpacker that read titles out of a CUE sheet) is never
// clobbered by a later tag parser.
package mediaitem
