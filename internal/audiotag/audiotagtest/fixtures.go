// Package audiotagtest builds small audio files for tests.
package audiotagtest

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"sort"
	"testing"
)

// WAV sample format: 8 kHz, mono, 8 bit, so one millisecond is 8 bytes.
const (
	wavSampleRate = 8000
	wavByteRate   = wavSampleRate
)

// WAV returns a PCM WAV file of durationMs milliseconds. info holds RIFF
// INFO entries keyed by chunk id ("INAM", "IART", ...); nil writes no LIST
// chunk.
func WAV(info map[string]string, durationMs int) []byte {
	var body bytes.Buffer
	body.WriteString("WAVE")

	fmtChunk := make([]byte, 16)
	binary.LittleEndian.PutUint16(fmtChunk[0:2], 1) // PCM
	binary.LittleEndian.PutUint16(fmtChunk[2:4], 1)
	binary.LittleEndian.PutUint32(fmtChunk[4:8], wavSampleRate)
	binary.LittleEndian.PutUint32(fmtChunk[8:12], wavByteRate)
	binary.LittleEndian.PutUint16(fmtChunk[12:14], 1)
	binary.LittleEndian.PutUint16(fmtChunk[14:16], 8)
	writeChunk(&body, "fmt ", fmtChunk)

	if len(info) > 0 {
		var list bytes.Buffer
		list.WriteString("INFO")
		ids := make([]string, 0, len(info))
		for id := range info {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		for _, id := range ids {
			writeChunk(&list, id, append([]byte(info[id]), 0))
		}
		writeChunk(&body, "LIST", list.Bytes())
	}

	writeChunk(&body, "data", make([]byte, durationMs*wavByteRate/1000))

	var out bytes.Buffer
	out.WriteString("RIFF")
	_ = binary.Write(&out, binary.LittleEndian, uint32(body.Len()))
	out.Write(body.Bytes())
	return out.Bytes()
}

func writeChunk(w *bytes.Buffer, id string, data []byte) {
	w.WriteString(id)
	_ = binary.Write(w, binary.LittleEndian, uint32(len(data)))
	w.Write(data)
	if len(data)%2 == 1 {
		w.WriteByte(0)
	}
}

// FLAC returns the metadata header of a 44.1 kHz stereo FLAC stream of
// durationMs milliseconds, with a Vorbis comment block built from comments.
// No audio frames are written.
func FLAC(comments map[string]string, durationMs int) []byte {
	var out bytes.Buffer
	out.WriteString("fLaC")

	const sampleRate = 44100
	total := uint64(sampleRate) * uint64(durationMs) / 1000

	info := make([]byte, 34)
	binary.BigEndian.PutUint16(info[0:2], 4096)
	binary.BigEndian.PutUint16(info[2:4], 4096)
	packed := uint64(sampleRate)<<44 | uint64(2-1)<<41 | uint64(16-1)<<36 | total
	binary.BigEndian.PutUint64(info[10:18], packed)

	last := len(comments) == 0
	writeFLACBlock(&out, 0, last, info)

	if !last {
		var vc bytes.Buffer
		vendor := "audiotagtest"
		_ = binary.Write(&vc, binary.LittleEndian, uint32(len(vendor)))
		vc.WriteString(vendor)
		_ = binary.Write(&vc, binary.LittleEndian, uint32(len(comments)))
		keys := make([]string, 0, len(comments))
		for k := range comments {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			entry := k + "=" + comments[k]
			_ = binary.Write(&vc, binary.LittleEndian, uint32(len(entry)))
			vc.WriteString(entry)
		}
		writeFLACBlock(&out, 4, true, vc.Bytes())
	}
	return out.Bytes()
}

func writeFLACBlock(w *bytes.Buffer, blockType byte, last bool, data []byte) {
	header := blockType
	if last {
		header |= 0x80
	}
	n := len(data)
	w.Write([]byte{header, byte(n >> 16), byte(n >> 8), byte(n)})
	w.Write(data)
}

// Write stores data as dir/name and returns the path.
func Write(t testing.TB, dir, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

// MP3 frame format: MPEG-1 Layer III, 128 kbit/s, 44.1 kHz, joint stereo.
const (
	mp3FrameLength = 417
	mp3Bitrate     = 128
)

// MP3 returns frames constant bitrate MPEG audio frames with zeroed audio
// data. A positive xingFrames writes a Xing header declaring that many
// frames into the first frame.
func MP3(frames, xingFrames int) []byte {
	out := make([]byte, 0, frames*mp3FrameLength)
	for i := 0; i < frames; i++ {
		frame := make([]byte, mp3FrameLength)
		copy(frame, []byte{0xFF, 0xFB, 0x90, 0x40})
		if i == 0 && xingFrames > 0 {
			// Xing follows 32 bytes of stereo side information.
			copy(frame[36:], "Xing")
			binary.BigEndian.PutUint32(frame[40:44], 0x01)
			binary.BigEndian.PutUint32(frame[44:48], uint32(xingFrames))
		}
		out = append(out, frame...)
	}
	return out
}

// MP3Duration is the length MP3 yields for a constant bitrate stream of
// frames frames.
func MP3Duration(frames int) int64 {
	return int64(frames*mp3FrameLength) * 8 / mp3Bitrate
}

// OggVorbis returns the first and last pages of a 44.1 kHz Vorbis stream of
// durationMs milliseconds.
func OggVorbis(durationMs int) []byte {
	const rate = 44100
	id := make([]byte, 30)
	copy(id, "\x01vorbis")
	binary.LittleEndian.PutUint32(id[12:16], rate)
	id[11] = 2

	var out bytes.Buffer
	writeOggPage(&out, 0x02, 0, 0, id)
	writeOggPage(&out, 0x04, uint64(rate)*uint64(durationMs)/1000, 1, make([]byte, 64))
	return out.Bytes()
}

// OggOpus returns the first and last pages of an Opus stream of durationMs
// milliseconds with a pre-skip of 312 samples.
func OggOpus(durationMs int) []byte {
	const preSkip = 312
	head := make([]byte, 19)
	copy(head, "OpusHead")
	head[8] = 1
	head[9] = 2
	binary.LittleEndian.PutUint16(head[10:12], preSkip)
	binary.LittleEndian.PutUint32(head[12:16], 48000)

	var out bytes.Buffer
	writeOggPage(&out, 0x02, 0, 0, head)
	writeOggPage(&out, 0x04, 48*uint64(durationMs)+preSkip, 1, make([]byte, 64))
	return out.Bytes()
}

func writeOggPage(w *bytes.Buffer, headerType byte, granule uint64, seq uint32, payload []byte) {
	w.WriteString("OggS")
	w.WriteByte(0)
	w.WriteByte(headerType)
	_ = binary.Write(w, binary.LittleEndian, granule)
	_ = binary.Write(w, binary.LittleEndian, uint32(1))
	_ = binary.Write(w, binary.LittleEndian, seq)
	_ = binary.Write(w, binary.LittleEndian, uint32(0))
	w.WriteByte(1)
	w.WriteByte(byte(len(payload)))
	w.Write(payload)
}

// M4A returns an MP4 file holding only ftyp and a moov/mvhd with a 1 kHz
// timescale and durationMs duration.
func M4A(durationMs int) []byte {
	var out bytes.Buffer
	writeAtom(&out, "ftyp", []byte("M4A \x00\x00\x00\x00M4A mp42"))

	mvhd := make([]byte, 100)
	binary.BigEndian.PutUint32(mvhd[12:16], 1000)
	binary.BigEndian.PutUint32(mvhd[16:20], uint32(durationMs))
	var moov bytes.Buffer
	writeAtom(&moov, "mvhd", mvhd)
	writeAtom(&out, "moov", moov.Bytes())
	return out.Bytes()
}

func writeAtom(w *bytes.Buffer, typ string, body []byte) {
	_ = binary.Write(w, binary.BigEndian, uint32(8+len(body)))
	w.WriteString(typ)
	w.Write(body)
}

// ADTS returns frames ADTS AAC frames at 44.1 kHz, each holding one raw
// data block of zeroes.
func ADTS(frames int) []byte {
	const length = 64
	header := []byte{
		0xFF, 0xF1,
		0x40 | 4<<2, // AAC LC, 44.1 kHz
		0x80 | byte(length>>11&0x03),
		byte(length >> 3),
		byte(length&0x07)<<5 | 0x1F,
		0xFC,
	}
	out := make([]byte, 0, frames*length)
	for i := 0; i < frames; i++ {
		frame := make([]byte, length)
		copy(frame, header)
		out = append(out, frame...)
	}
	return out
}

// DSF returns the DSD and fmt chunks of a 2.8224 MHz stereo DSF file of
// durationMs milliseconds.
func DSF(durationMs int) []byte {
	const rate = 2822400
	out := make([]byte, 80)
	copy(out[0:4], "DSD ")
	binary.LittleEndian.PutUint64(out[4:12], 28)
	binary.LittleEndian.PutUint64(out[12:20], 80)
	copy(out[28:32], "fmt ")
	binary.LittleEndian.PutUint64(out[32:40], 52)
	binary.LittleEndian.PutUint32(out[40:44], 1)
	binary.LittleEndian.PutUint32(out[48:52], 2)
	binary.LittleEndian.PutUint32(out[52:56], 2)
	binary.LittleEndian.PutUint32(out[56:60], rate)
	binary.LittleEndian.PutUint32(out[60:64], 1)
	binary.LittleEndian.PutUint64(out[64:72], uint64(rate)*uint64(durationMs)/1000)
	binary.LittleEndian.PutUint32(out[72:76], 4096)
	return out
}
