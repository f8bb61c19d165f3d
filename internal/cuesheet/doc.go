// Package cuesheet parses CUE sheets and provides the "cue" unpacker agent.
//
// A CUE sheet describes how one or more audio files split into tracks. The
// unpacker turns every TRACK with an INDEX 01 into a ranged item pointing at
// its FILE, relative to the sheet's directory. Titles, performers and the
// REM GENRE, REM DATE and REM COMMENT lines are copied into the items so the
// tag parser of the audio file only fills what the sheet leaves unknown.
//
// INDEX timestamps are mm:ss:ff with 75 frames per second and are converted
// to milliseconds.
package cuesheet
