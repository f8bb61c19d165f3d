package audiotag

import (
	"encoding/binary"
	"io"
)

const (
	flacBlockStreamInfo = 0
	flacStreamInfoSize  = 34
)

// flacDuration reads the STREAMINFO block of a FLAC stream and returns its
// duration in milliseconds. A leading ID3v2 tag is skipped.
func flacDuration(r io.ReadSeeker) (int64, bool) {
	var marker [4]byte
	if _, err := io.ReadFull(r, marker[:]); err != nil {
		return 0, false
	}

	if string(marker[0:3]) == "ID3" {
		if !skipID3v2(r) {
			return 0, false
		}
		if _, err := io.ReadFull(r, marker[:]); err != nil {
			return 0, false
		}
	}
	if string(marker[:]) != "fLaC" {
		return 0, false
	}

	// STREAMINFO must be the first metadata block.
	var header [4]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return 0, false
	}
	blockType := header[0] & 0x7f
	length := int(header[1])<<16 | int(header[2])<<8 | int(header[3])
	if blockType != flacBlockStreamInfo || length < flacStreamInfoSize {
		return 0, false
	}

	var info [flacStreamInfoSize]byte
	if _, err := io.ReadFull(r, info[:]); err != nil {
		return 0, false
	}

	// 20 bits sample rate, 3 bits channels, 5 bits depth, 36 bits samples.
	packed := binary.BigEndian.Uint64(info[10:18])
	sampleRate := packed >> 44
	totalSamples := packed & (1<<36 - 1)
	if sampleRate == 0 || totalSamples == 0 {
		return 0, false
	}
	return int64(totalSamples * 1000 / sampleRate), true
}

// skipID3v2 seeks past an ID3v2 tag whose first four bytes were consumed.
func skipID3v2(r io.ReadSeeker) bool {
	var rest [6]byte
	if _, err := io.ReadFull(r, rest[:]); err != nil {
		return false
	}
	// rest[0] revision, rest[1] flags, rest[2:6] the syncsafe size.
	size := int64(rest[2])<<21 | int64(rest[3])<<14 | int64(rest[4])<<7 | int64(rest[5])
	if rest[1]&0x10 != 0 {
		size += 10
	}
	_, err := r.Seek(size, io.SeekCurrent)
	return err == nil
}
