// Package catalog stores curated metadata for media files in SQLite and
// provides the "catalog" tag parser agent that reads it back.
//
// The catalog is filled by cmd/catalogctl, which resolves files with the
// other registered agents and stores the result. Registered ahead of the
// other tag parsers, the catalog agent lets corrected metadata win over what
// the files themselves carry; registered with the wildcard suffix only, it
// supplies metadata for files no other parser can read.
//
// # Database Configuration
//
// The database uses SQLite with WAL mode for improved concurrency:
//   - Journal mode: WAL (Write-Ahead Logging)
//   - Synchronous: NORMAL
//   - Busy timeout: 5000ms
//
// Entries are keyed by absolute path. Ranged items (tracks of a CUE sheet)
// are not stored.
package catalog
