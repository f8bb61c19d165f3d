package cuesheet

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode/utf8"
)

// FramesPerSecond is the CD frame rate used by INDEX timestamps.
const FramesPerSecond = 75

// ErrMalformed wraps every parse error.
var ErrMalformed = errors.New("malformed cue sheet")

// Sheet is a parsed CUE sheet.
type Sheet struct {
	Title     string
	Performer string
	Genre     string
	Date      string
	Comment   string
	Files     []File
}

// File is one FILE entry and the tracks inside it.
type File struct {
	Name   string
	Type   string
	Tracks []Track
}

// Track is one TRACK entry.
type Track struct {
	Number    int
	Title     string
	Performer string
	// Start is the position of INDEX 01 in milliseconds, or -1 when the
	// track has none.
	Start int64
}

// Parse reads a CUE sheet. Unknown commands are ignored. On error the
// returned sheet holds everything parsed before the failing line.
func Parse(r io.Reader) (*Sheet, error) {
	sheet := &Sheet{}
	var file *File
	var track *Track

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if lineNo == 1 {
			line = strings.TrimPrefix(line, "\ufeff")
		}
		if !utf8.ValidString(line) {
			line = latin1(line)
		}
		fields := tokenize(line)
		if len(fields) == 0 {
			continue
		}

		fail := func(format string, args ...any) (*Sheet, error) {
			return sheet, fmt.Errorf("%w: line %d: %s", ErrMalformed, lineNo, fmt.Sprintf(format, args...))
		}

		switch cmd := strings.ToUpper(fields[0]); cmd {
		case "REM":
			if len(fields) < 3 || track != nil {
				continue
			}
			value := strings.Join(fields[2:], " ")
			switch strings.ToUpper(fields[1]) {
			case "GENRE":
				sheet.Genre = value
			case "DATE":
				sheet.Date = value
			case "COMMENT":
				sheet.Comment = value
			}
		case "TITLE", "PERFORMER":
			if len(fields) < 2 {
				return fail("%s without a value", cmd)
			}
			value := strings.Join(fields[1:], " ")
			switch {
			case track != nil && cmd == "TITLE":
				track.Title = value
			case track != nil:
				track.Performer = value
			case cmd == "TITLE":
				sheet.Title = value
			default:
				sheet.Performer = value
			}
		case "FILE":
			if len(fields) < 2 {
				return fail("FILE without a name")
			}
			sheet.Files = append(sheet.Files, File{Name: fields[1]})
			file = &sheet.Files[len(sheet.Files)-1]
			if len(fields) > 2 {
				file.Type = strings.ToUpper(fields[2])
			}
			track = nil
		case "TRACK":
			if file == nil {
				return fail("TRACK before FILE")
			}
			if len(fields) < 2 {
				return fail("TRACK without a number")
			}
			n, err := strconv.Atoi(fields[1])
			if err != nil || n < 0 {
				return fail("bad track number %q", fields[1])
			}
			file.Tracks = append(file.Tracks, Track{Number: n, Start: -1})
			track = &file.Tracks[len(file.Tracks)-1]
		case "INDEX":
			if track == nil {
				return fail("INDEX outside TRACK")
			}
			if len(fields) < 3 {
				return fail("INDEX needs a number and a time")
			}
			if fields[1] != "01" && fields[1] != "1" {
				continue
			}
			ms, err := ParseTimestamp(fields[2])
			if err != nil {
				return fail("%v", err)
			}
			track.Start = ms
		}
	}
	if err := scanner.Err(); err != nil {
		return sheet, fmt.Errorf("read cue sheet: %w", err)
	}
	return sheet, nil
}

// ParseTimestamp converts an mm:ss:ff timestamp into milliseconds.
func ParseTimestamp(s string) (int64, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 3 {
		return 0, fmt.Errorf("bad timestamp %q", s)
	}
	var v [3]int64
	for i, p := range parts {
		n, err := strconv.ParseInt(p, 10, 64)
		if err != nil || n < 0 {
			return 0, fmt.Errorf("bad timestamp %q", s)
		}
		v[i] = n
	}
	if v[1] >= 60 || v[2] >= FramesPerSecond {
		return 0, fmt.Errorf("bad timestamp %q", s)
	}
	return (v[0]*60+v[1])*1000 + v[2]*1000/FramesPerSecond, nil
}

// tokenize splits a line on whitespace, keeping double-quoted strings whole.
func tokenize(line string) []string {
	var fields []string
	var cur bytes.Buffer
	inQuote, hasToken := false, false
	for _, r := range line {
		switch {
		case r == '"':
			inQuote = !inQuote
			hasToken = true
		case !inQuote && (r == ' ' || r == '\t' || r == '\r'):
			if hasToken {
				fields = append(fields, cur.String())
				cur.Reset()
				hasToken = false
			}
		default:
			cur.WriteRune(r)
			hasToken = true
		}
	}
	if hasToken {
		fields = append(fields, cur.String())
	}
	return fields
}

// latin1 decodes s as ISO-8859-1, which older rippers write.
func latin1(s string) string {
	runes := make([]rune, len(s))
	for i := 0; i < len(s); i++ {
		runes[i] = rune(s[i])
	}
	return string(runes)
}
