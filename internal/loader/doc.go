// Package loader turns a YAML plugin manifest into registered agents.
//
// The manifest names built-in agents in registration order; because the
// first agent to claim a suffix keeps it, order is priority:
//
//	plugins:
//	  - name: cue
//	  - name: m3u
//	    options: { media_dir: /music, missing: skip }
//	  - name: audiotag
//	  - name: probe
//	  - name: catalog
//	    enabled: false
//	    options: { database: ./catalog.db }
//
// A Loader reads the manifest, builds every agent with its options
// validated against the agent's schema, and only then replaces the
// registry contents, so a broken manifest never leaves the resolver
// half-configured. Watch re-applies the manifest when the file changes.
package loader
