// Package resolver turns a filesystem path into playable items using the
// plugins registered with it.
//
// # Registration
//
// RegisterPluginAgent creates the agent's capability object once and returns
// a Handle. Unpacker and tag parser objects are indexed by every suffix they
// declare, lower-cased. The first registrant of a suffix keeps it: a later
// agent declaring the same suffix still registers, but is not reachable
// through that suffix until the owner is unregistered and the later agent is
// registered again. Tag parsers may also declare the wildcard "*", used when
// no parser claims an item's suffix.
//
// UnregisterPluginAgent removes exactly the routing entries owned by the
// handle and frees the capability object through the same agent. Handles
// carry a generation, so a stale handle never matches a reused slot.
//
// # Resolution
//
// LoadMedia runs two phases:
//
//  1. Unpack: if an unpacker claims the path's suffix it produces the item
//     list; otherwise a single whole-file item is synthesized.
//  2. Tag fill: for every item, the parser for its suffix (or the wildcard
//     parser) is opened, fields that are still unknown are filled, and the
//     parser is closed again on every path.
//
// Resolution never fails as a whole. Problems local to one item or container
// come back as Diagnostics alongside the items.
//
// # Concurrency
//
// A single RWMutex guards the registry and both routing tables. LoadMedia
// holds the read lock for the whole call, so resolutions run in parallel with
// each other but never overlap a registration change. Tag parser objects are
// stateful between Open and Close, so uses of one parser object are
// serialized. LoadMany fans a batch of paths out over a bounded worker pool.
package resolver
