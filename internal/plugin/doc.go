// Package plugin defines the contracts between the resolver and the plugins
// that provide capabilities to it.
//
// An Agent is a factory for one capability object. The resolver asks the
// agent for its Kind, creates exactly one object with CreateObject when the
// agent is registered, and hands that same object back to FreeObject when
// the agent is unregistered.
//
// Two kinds are routed by suffix:
//
//   - KindUnpacker agents create an Unpacker, which expands a container path
//     (a CUE sheet, a playlist) into one or more items.
//   - KindTagParser agents create a TagParser, which reads tag fields and
//     stream properties of a single item's path.
//
// Decoder, encoder and renderer agents are accepted by the resolver but not
// routed; they belong to the playback side.
//
// Unpackers receive a Routes view of the unpack routing table so that a
// playlist referencing another container can resolve it. Routes carries the
// nesting depth and stops answering lookups past MaxNestingDepth, which keeps
// self-referencing playlists from recursing forever.
package plugin
