// Package playlist parses playlist files and provides the "wpl" and "m3u"
// unpacker agents.
//
// Supported formats:
//   - WPL (Windows Playlist): XML-based playlist format used by Windows Media Player
//   - M3U and M3U8, plain or extended with #EXTINF and #PLAYLIST lines
//
// The package handles various path formats found in playlist files:
//   - UNC paths (e.g., \\server\share\folder\file.mp3)
//   - Absolute paths with drive letters (e.g., C:\folder\file.mp3)
//   - Relative paths (e.g., ../folder/file.mp3)
//   - Network URLs, which are passed through unchanged
//
// Path resolution first tries the path relative to the playlist, then looks
// for the file name in the configured media directory. This allows playlists
// created on different systems to be used when the underlying files exist.
//
// Entries that are containers themselves, such as a CUE sheet listed in an
// M3U, are expanded with whatever unpacker is registered for their suffix.
package playlist
