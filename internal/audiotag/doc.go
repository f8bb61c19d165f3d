// Package audiotag reads tags and durations from audio files and provides
// the "audiotag" tag parser agent.
//
// ID3, MP4, Ogg Vorbis and FLAC comments are read with
// github.com/dhowden/tag. WAV files are read from their RIFF LIST/INFO chunk,
// and their duration from the fmt and data chunk sizes. Other durations are
// computed from the audio headers: FLAC STREAMINFO, the first MPEG frame
// (Xing/VBRI frame count or CBR bitrate), the first and last Ogg pages, the
// MP4 movie header, ADTS frame headers and the DSF fmt chunk. An ID3 TLEN
// frame is the fallback when none of these can be read.
//
// Files are opened through the filesystem package so stale NFS handles are
// retried.
package audiotag
