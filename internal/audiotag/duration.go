package audiotag

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"io"
)

// durationReaders compute the stream length, in milliseconds, of the formats
// whose tag containers do not carry one. Each reader starts at offset 0.
var durationReaders = map[string]func(io.ReadSeeker) (int64, bool){
	"flac": flacDuration,
	"mp3":  mp3Duration,
	"ogg":  oggDuration,
	"oga":  oggDuration,
	"opus": oggDuration,
	"m4a":  mp4Duration,
	"m4b":  mp4Duration,
	"mp4":  mp4Duration,
	"aac":  adtsDuration,
	"dsf":  dsfDuration,
}

// mpegScanWindow bounds how far past the ID3v2 tag the first MPEG frame is
// searched for.
const mpegScanWindow = 64 << 10

// audioStart returns the offset just past a leading ID3v2 tag, or 0.
func audioStart(r io.ReadSeeker) (int64, bool) {
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return 0, false
	}
	var head [10]byte
	if _, err := io.ReadFull(r, head[:]); err != nil {
		return 0, true
	}
	if string(head[0:3]) != "ID3" {
		return 0, true
	}
	size := int64(head[6])<<21 | int64(head[7])<<14 | int64(head[8])<<7 | int64(head[9])
	if head[5]&0x10 != 0 {
		size += 10
	}
	return 10 + size, true
}

type mpegHeader struct {
	version    int // 1, 2 or 25 for MPEG 2.5
	layer      int
	bitrate    int // kbit/s
	sampleRate int
	padding    int
	mono       bool
}

var mpegBitrates = map[[2]int][15]int{
	{1, 1}: {0, 32, 64, 96, 128, 160, 192, 224, 256, 288, 320, 352, 384, 416, 448},
	{1, 2}: {0, 32, 48, 56, 64, 80, 96, 112, 128, 160, 192, 224, 256, 320, 384},
	{1, 3}: {0, 32, 40, 48, 56, 64, 80, 96, 112, 128, 160, 192, 224, 256, 320},
	{2, 1}: {0, 32, 48, 56, 64, 80, 96, 112, 128, 144, 160, 176, 192, 224, 256},
	{2, 2}: {0, 8, 16, 24, 32, 40, 48, 56, 64, 80, 96, 112, 128, 144, 160},
	{2, 3}: {0, 8, 16, 24, 32, 40, 48, 56, 64, 80, 96, 112, 128, 144, 160},
}

var mpegSampleRates = map[int][3]int{
	1:  {44100, 48000, 32000},
	2:  {22050, 24000, 16000},
	25: {11025, 12000, 8000},
}

// parseMPEGHeader decodes a 4-byte frame header. Free-format and reserved
// values are rejected.
func parseMPEGHeader(b []byte) (mpegHeader, bool) {
	if len(b) < 4 || b[0] != 0xFF || b[1]&0xE0 != 0xE0 {
		return mpegHeader{}, false
	}
	var h mpegHeader
	switch (b[1] >> 3) & 0x03 {
	case 0:
		h.version = 25
	case 2:
		h.version = 2
	case 3:
		h.version = 1
	default:
		return mpegHeader{}, false
	}
	switch (b[1] >> 1) & 0x03 {
	case 1:
		h.layer = 3
	case 2:
		h.layer = 2
	case 3:
		h.layer = 1
	default:
		return mpegHeader{}, false
	}

	bitrateIdx := int(b[2] >> 4)
	rateIdx := int(b[2]>>2) & 0x03
	if bitrateIdx == 0 || bitrateIdx == 15 || rateIdx == 3 {
		return mpegHeader{}, false
	}
	tableVersion := h.version
	if tableVersion == 25 {
		tableVersion = 2
	}
	h.bitrate = mpegBitrates[[2]int{tableVersion, h.layer}][bitrateIdx]
	h.sampleRate = mpegSampleRates[h.version][rateIdx]
	h.padding = int(b[2]>>1) & 0x01
	h.mono = b[3]>>6 == 3
	return h, true
}

func (h mpegHeader) samplesPerFrame() int {
	switch {
	case h.layer == 1:
		return 384
	case h.layer == 3 && h.version != 1:
		return 576
	default:
		return 1152
	}
}

func (h mpegHeader) frameLength() int {
	if h.layer == 1 {
		return (12*h.bitrate*1000/h.sampleRate + h.padding) * 4
	}
	return h.samplesPerFrame()/8*h.bitrate*1000/h.sampleRate + h.padding
}

// sideInfoLength is the size of the Layer III side information, which the
// Xing header follows.
func (h mpegHeader) sideInfoLength() int {
	switch {
	case h.version == 1 && h.mono:
		return 17
	case h.version == 1:
		return 32
	case h.mono:
		return 9
	default:
		return 17
	}
}

// vbrFrames reads the frame count from a Xing/Info or VBRI header in the
// first frame.
func vbrFrames(frame []byte, h mpegHeader) (int64, bool) {
	if off := 4 + h.sideInfoLength(); len(frame) >= off+12 {
		id := string(frame[off : off+4])
		if id == "Xing" || id == "Info" {
			flags := binary.BigEndian.Uint32(frame[off+4 : off+8])
			if flags&0x01 != 0 {
				if n := binary.BigEndian.Uint32(frame[off+8 : off+12]); n > 0 {
					return int64(n), true
				}
			}
		}
	}
	if off := 4 + 32; len(frame) >= off+18 && string(frame[off:off+4]) == "VBRI" {
		if n := binary.BigEndian.Uint32(frame[off+14 : off+18]); n > 0 {
			return int64(n), true
		}
	}
	return 0, false
}

// mp3Duration finds the first MPEG audio frame. VBR files are timed from
// their Xing or VBRI frame count, CBR files from the audio size and bitrate.
func mp3Duration(r io.ReadSeeker) (int64, bool) {
	size, err := r.Seek(0, io.SeekEnd)
	if err != nil {
		return 0, false
	}
	end := size
	if size >= 128 {
		var trailer [3]byte
		if _, err := r.Seek(size-128, io.SeekStart); err == nil {
			if _, err := io.ReadFull(r, trailer[:]); err == nil && string(trailer[:]) == "TAG" {
				end -= 128
			}
		}
	}

	start, ok := audioStart(r)
	if !ok || start >= end {
		return 0, false
	}
	if _, err := r.Seek(start, io.SeekStart); err != nil {
		return 0, false
	}
	buf := make([]byte, min(int64(mpegScanWindow), end-start))
	n, err := io.ReadFull(r, buf)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) {
		return 0, false
	}
	buf = buf[:n]

	for i := 0; i+4 <= len(buf); i++ {
		h, ok := parseMPEGHeader(buf[i : i+4])
		if !ok {
			continue
		}
		// A real frame is followed by another one.
		if next := i + h.frameLength(); next+4 <= len(buf) {
			nh, ok := parseMPEGHeader(buf[next : next+4])
			if !ok || nh.version != h.version || nh.layer != h.layer {
				continue
			}
		}

		if frames, ok := vbrFrames(buf[i:], h); ok {
			return frames * int64(h.samplesPerFrame()) * 1000 / int64(h.sampleRate), true
		}
		audio := end - start - int64(i)
		return audio * 8 / int64(h.bitrate), true
	}
	return 0, false
}

// oggDuration reads the codec's sample rate from the first page and the
// granule position of the last page.
func oggDuration(r io.ReadSeeker) (int64, bool) {
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return 0, false
	}
	var page [27]byte
	if _, err := io.ReadFull(r, page[:]); err != nil || string(page[0:4]) != "OggS" {
		return 0, false
	}
	lacing := make([]byte, page[26])
	if _, err := io.ReadFull(r, lacing); err != nil {
		return 0, false
	}
	var packet [19]byte
	if _, err := io.ReadFull(r, packet[:]); err != nil {
		return 0, false
	}

	var rate, preSkip int64
	switch {
	case string(packet[0:7]) == "\x01vorbis":
		rate = int64(binary.LittleEndian.Uint32(packet[12:16]))
	case string(packet[0:8]) == "OpusHead":
		// Opus granule positions always count 48 kHz samples.
		rate = 48000
		preSkip = int64(binary.LittleEndian.Uint16(packet[10:12]))
	default:
		return 0, false
	}
	if rate == 0 {
		return 0, false
	}

	size, err := r.Seek(0, io.SeekEnd)
	if err != nil {
		return 0, false
	}
	from := max(0, size-mpegScanWindow)
	if _, err := r.Seek(from, io.SeekStart); err != nil {
		return 0, false
	}
	tail, err := io.ReadAll(r)
	if err != nil {
		return 0, false
	}
	idx := bytes.LastIndex(tail, []byte("OggS"))
	if idx < 0 || idx+14 > len(tail) {
		return 0, false
	}
	granule := int64(binary.LittleEndian.Uint64(tail[idx+6 : idx+14]))
	if granule <= preSkip {
		return 0, false
	}
	return (granule - preSkip) * 1000 / rate, true
}

// mp4Duration reads the movie header (moov/mvhd) of an MP4 file.
func mp4Duration(r io.ReadSeeker) (int64, bool) {
	end, err := r.Seek(0, io.SeekEnd)
	if err != nil {
		return 0, false
	}
	return findMovieHeader(r, 0, end, false)
}

func findMovieHeader(r io.ReadSeeker, pos, end int64, inMoov bool) (int64, bool) {
	for pos+8 <= end {
		if _, err := r.Seek(pos, io.SeekStart); err != nil {
			return 0, false
		}
		var head [8]byte
		if _, err := io.ReadFull(r, head[:]); err != nil {
			return 0, false
		}
		size := int64(binary.BigEndian.Uint32(head[0:4]))
		headLen := int64(8)
		switch size {
		case 0:
			size = end - pos
		case 1:
			var large [8]byte
			if _, err := io.ReadFull(r, large[:]); err != nil {
				return 0, false
			}
			size = int64(binary.BigEndian.Uint64(large[:]))
			headLen = 16
		}
		if size < headLen || pos+size > end {
			return 0, false
		}

		switch typ := string(head[4:8]); {
		case typ == "moov" && !inMoov:
			return findMovieHeader(r, pos+headLen, pos+size, true)
		case typ == "mvhd" && inMoov:
			return readMovieHeader(r)
		}
		pos += size
	}
	return 0, false
}

// readMovieHeader parses an mvhd body positioned just after its header.
func readMovieHeader(r io.Reader) (int64, bool) {
	var version [4]byte
	if _, err := io.ReadFull(r, version[:]); err != nil {
		return 0, false
	}

	var timescale, duration uint64
	if version[0] == 1 {
		var body [28]byte
		if _, err := io.ReadFull(r, body[:]); err != nil {
			return 0, false
		}
		timescale = uint64(binary.BigEndian.Uint32(body[16:20]))
		duration = binary.BigEndian.Uint64(body[20:28])
	} else {
		var body [16]byte
		if _, err := io.ReadFull(r, body[:]); err != nil {
			return 0, false
		}
		timescale = uint64(binary.BigEndian.Uint32(body[8:12]))
		duration = uint64(binary.BigEndian.Uint32(body[12:16]))
	}
	if timescale == 0 || duration == 0 {
		return 0, false
	}
	return int64(duration * 1000 / timescale), true
}

var adtsSampleRates = [...]int64{96000, 88200, 64000, 48000, 44100, 32000, 24000, 22050, 16000, 12000, 11025, 8000, 7350}

// adtsDuration counts the raw data blocks of an ADTS AAC stream. Each block
// holds 1024 samples.
func adtsDuration(r io.ReadSeeker) (int64, bool) {
	start, ok := audioStart(r)
	if !ok {
		return 0, false
	}
	if _, err := r.Seek(start, io.SeekStart); err != nil {
		return 0, false
	}

	br := bufio.NewReader(r)
	var blocks, rate int64
	for {
		var h [7]byte
		if _, err := io.ReadFull(br, h[:]); err != nil {
			break
		}
		if h[0] != 0xFF || h[1]&0xF6 != 0xF0 {
			break
		}
		rateIdx := int(h[2]>>2) & 0x0F
		if rateIdx >= len(adtsSampleRates) {
			break
		}
		rate = adtsSampleRates[rateIdx]
		length := int(h[3]&0x03)<<11 | int(h[4])<<3 | int(h[5])>>5
		if length < len(h) {
			break
		}
		blocks += int64(h[6]&0x03) + 1
		if _, err := br.Discard(length - len(h)); err != nil {
			break
		}
	}
	if blocks == 0 || rate == 0 {
		return 0, false
	}
	return blocks * 1024 * 1000 / rate, true
}

// dsfDuration reads the sample count from the fmt chunk of a DSF file.
func dsfDuration(r io.ReadSeeker) (int64, bool) {
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return 0, false
	}
	var head [72]byte
	if _, err := io.ReadFull(r, head[:]); err != nil {
		return 0, false
	}
	if string(head[0:4]) != "DSD " || string(head[28:32]) != "fmt " {
		return 0, false
	}
	rate := uint64(binary.LittleEndian.Uint32(head[56:60]))
	samples := binary.LittleEndian.Uint64(head[64:72])
	if rate == 0 || samples == 0 {
		return 0, false
	}
	return int64(samples * 1000 / rate), true
}
