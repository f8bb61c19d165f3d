package audiotag

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"strings"
)

// FormatRIFF is the Tags.Format of WAV files with a LIST/INFO chunk.
const FormatRIFF = "RIFF"

// maxInfoChunk bounds how much of a LIST chunk is read into memory.
const maxInfoChunk = 1 << 20

// readRIFF reads the LIST/INFO tags and the duration of a WAV file.
// A file that is not RIFF/WAVE yields empty Tags.
func readRIFF(r io.ReadSeeker) (*Tags, error) {
	t := newTags()

	var header [12]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return t, nil
		}
		return nil, fmt.Errorf("read riff header: %w", err)
	}
	if string(header[0:4]) != "RIFF" || string(header[8:12]) != "WAVE" {
		return t, nil
	}

	var byteRate uint32
	var dataSize int64 = -1

	for {
		var chunk [8]byte
		if _, err := io.ReadFull(r, chunk[:]); err != nil {
			// A truncated trailing chunk still leaves what was read usable.
			break
		}
		id := string(chunk[0:4])
		size := int64(binary.LittleEndian.Uint32(chunk[4:8]))
		padded := size + size&1

		switch id {
		case "fmt ":
			if size < 16 {
				return t, nil
			}
			var fmtChunk [16]byte
			if _, err := io.ReadFull(r, fmtChunk[:]); err != nil {
				return t, nil
			}
			byteRate = binary.LittleEndian.Uint32(fmtChunk[8:12])
			if _, err := r.Seek(padded-16, io.SeekCurrent); err != nil {
				return nil, fmt.Errorf("skip fmt chunk: %w", err)
			}
		case "data":
			dataSize = size
			if _, err := r.Seek(padded, io.SeekCurrent); err != nil {
				return nil, fmt.Errorf("skip data chunk: %w", err)
			}
		case "LIST":
			if size > maxInfoChunk {
				if _, err := r.Seek(padded, io.SeekCurrent); err != nil {
					return nil, fmt.Errorf("skip list chunk: %w", err)
				}
				continue
			}
			body := make([]byte, padded)
			n, _ := io.ReadFull(r, body)
			parseInfoList(body[:min(int64(n), size)], t)
		default:
			if _, err := r.Seek(padded, io.SeekCurrent); err != nil {
				return nil, fmt.Errorf("skip %q chunk: %w", id, err)
			}
		}
	}

	if byteRate > 0 && dataSize >= 0 {
		t.Duration = dataSize * 1000 / int64(byteRate)
	}
	return t, nil
}

// parseInfoList fills t from the body of a LIST chunk of type INFO.
func parseInfoList(body []byte, t *Tags) {
	if len(body) < 4 || string(body[0:4]) != "INFO" {
		return
	}
	found := false
	for p := body[4:]; len(p) >= 8; {
		id := string(p[0:4])
		size := int(binary.LittleEndian.Uint32(p[4:8]))
		p = p[8:]
		if size > len(p) {
			size = len(p)
		}
		value := infoString(p[:size])
		p = p[min(size+size&1, len(p)):]

		if value == "" {
			continue
		}
		found = true
		switch id {
		case "INAM":
			t.Title = value
		case "IART":
			t.Artist = value
		case "IPRD":
			t.Album = value
		case "ICMT":
			t.Comment = value
		case "IGNR":
			t.Genre = value
		case "ICRD":
			t.Year = ParseYear(value)
		case "ITRK", "IPRT":
			t.Track = ParseTrack(value)
		}
	}
	if found {
		t.Format = FormatRIFF
	}
}

// infoString trims the NUL terminator and padding of an INFO value.
func infoString(b []byte) string {
	if idx := bytes.IndexByte(b, 0); idx >= 0 {
		b = b[:idx]
	}
	return strings.TrimSpace(string(b))
}
