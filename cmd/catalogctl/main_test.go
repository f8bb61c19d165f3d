package main

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"media-resolver/internal/audiotag/audiotagtest"
	"media-resolver/internal/catalog"
)

// runCtl runs catalogctl against a fresh database in a temp directory.
func runCtl(t *testing.T, db string, args ...string) (code int, stdout, stderr string) {
	t.Helper()
	t.Setenv("CATALOG_DB", db)
	t.Setenv("RESOLVER_MANIFEST", "")

	var out, errOut bytes.Buffer
	code = run(args, strings.NewReader(""), &out, &errOut)
	return code, out.String(), errOut.String()
}

func TestPrintUsage(t *testing.T) {
	var buf bytes.Buffer
	printUsage(&buf)
	for _, want := range []string{"import PATH...", "status", "clear", "-db PATH"} {
		if !strings.Contains(buf.String(), want) {
			t.Errorf("usage missing %q", want)
		}
	}
}

func TestSanitizeCommand(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"status", "status"},
		{"re-set_1", "re-set_1"},
		{"bad\ncmd", "bad_cmd"},
		{"$(rm -rf)", "__rm_-rf_"},
	}
	for _, tt := range tests {
		if got := sanitizeCommand(tt.in); got != tt.want {
			t.Errorf("sanitizeCommand(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestRunUnknownCommand(t *testing.T) {
	code, _, stderr := runCtl(t, filepath.Join(t.TempDir(), "c.db"), "bogus")
	if code != 1 {
		t.Errorf("Expected exit code 1, got %d", code)
	}
	if !strings.Contains(stderr, "Unknown command: bogus") {
		t.Errorf("Unexpected stderr %q", stderr)
	}
}

func TestRunNoArgs(t *testing.T) {
	var out, errOut bytes.Buffer
	if code := run(nil, strings.NewReader(""), &out, &errOut); code != 1 {
		t.Errorf("Expected exit code 1, got %d", code)
	}
	if !strings.Contains(errOut.String(), "Usage:") {
		t.Error("Expected usage on stderr")
	}
}

func TestImportShowStatusClear(t *testing.T) {
	dir := t.TempDir()
	db := filepath.Join(dir, "catalog.db")
	song := audiotagtest.Write(t, dir, "song.wav", audiotagtest.WAV(map[string]string{
		"INAM": "Blue Monday",
		"IART": "New Order",
	}, 2000))

	code, out, stderr := runCtl(t, db, "import", song)
	if code != 0 {
		t.Fatalf("import failed (%d): %s", code, stderr)
	}
	if !strings.Contains(out, "Imported 1 of 1 item(s) from 1 path(s).") {
		t.Errorf("Unexpected import output %q", out)
	}

	code, out, stderr = runCtl(t, db, "show", song)
	if code != 0 {
		t.Fatalf("show failed (%d): %s", code, stderr)
	}
	var entry catalog.Entry
	if err := json.Unmarshal([]byte(out), &entry); err != nil {
		t.Fatalf("show output is not JSON: %v\n%s", err, out)
	}
	if entry.Title != "Blue Monday" || entry.Artist != "New Order" {
		t.Errorf("Unexpected entry %+v", entry)
	}

	code, out, _ = runCtl(t, db, "status")
	if code != 0 || !strings.Contains(out, "Entries: 1") {
		t.Errorf("Unexpected status (%d): %q", code, out)
	}

	code, _, stderr = runCtl(t, db, "clear")
	if code != 1 || !strings.Contains(stderr, "pass -yes") {
		t.Errorf("clear without a terminal should refuse, got %d %q", code, stderr)
	}

	code, out, _ = runCtl(t, db, "clear", "-yes")
	if code != 0 || !strings.Contains(out, "Removed 1 entr(ies).") {
		t.Errorf("Unexpected clear (%d): %q", code, out)
	}

	code, _, stderr = runCtl(t, db, "show", song)
	if code != 1 || !strings.Contains(stderr, catalog.ErrNotFound.Error()) {
		t.Errorf("show after clear should fail with not found, got %d %q", code, stderr)
	}
}

func TestImportSkipsMissingFiles(t *testing.T) {
	dir := t.TempDir()
	db := filepath.Join(dir, "catalog.db")

	code, out, stderr := runCtl(t, db, "import", filepath.Join(dir, "missing.wav"))
	if code != 0 {
		t.Fatalf("import failed (%d): %s", code, stderr)
	}
	if !strings.Contains(out, "Skipped: io_failure") {
		t.Errorf("Expected skipped diagnostic, got %q", out)
	}
	if !strings.Contains(out, "Imported 0 of 1 item(s)") {
		t.Errorf("Unexpected summary %q", out)
	}
}

func TestImportRequiresPath(t *testing.T) {
	code, _, stderr := runCtl(t, filepath.Join(t.TempDir(), "c.db"), "import")
	if code != 1 || !strings.Contains(stderr, "import needs at least one path") {
		t.Errorf("Unexpected result %d %q", code, stderr)
	}
}

func TestDeleteEntry(t *testing.T) {
	dir := t.TempDir()
	db := filepath.Join(dir, "catalog.db")

	store, err := catalog.Open(context.Background(), db)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	path := filepath.Join(dir, "a.flac")
	if err := store.Put(context.Background(), catalog.Entry{Path: path, Title: "A", Year: -1, Track: -1, Duration: -1}); err != nil {
		t.Fatalf("Put: %v", err)
	}
	_ = store.Close()

	code, out, stderr := runCtl(t, db, "delete", path, filepath.Join(dir, "b.flac"))
	if code != 0 {
		t.Fatalf("delete failed (%d): %s", code, stderr)
	}
	if !strings.Contains(out, "Deleted 1 of 2 entr(ies).") {
		t.Errorf("Unexpected output %q", out)
	}
}

func TestConfirm(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"y\n", true},
		{"YES\n", true},
		{"n\n", false},
		{"", false},
	}
	for _, tt := range tests {
		var out bytes.Buffer
		got, err := confirm(strings.NewReader(tt.input), &out, "sure? ")
		if err != nil {
			t.Fatalf("confirm(%q): %v", tt.input, err)
		}
		if got != tt.want {
			t.Errorf("confirm(%q) = %v, want %v", tt.input, got, tt.want)
		}
		if out.String() != "sure? " {
			t.Errorf("Unexpected prompt %q", out.String())
		}
	}
}
