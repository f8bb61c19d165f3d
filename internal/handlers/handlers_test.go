package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"media-resolver/internal/audiotag/audiotagtest"
	"media-resolver/internal/loader"
	"media-resolver/internal/resolver"
)

type testServer struct {
	dir      string
	manifest string
	resolver *resolver.Resolver
	loader   *loader.Loader
	router   http.Handler
}

func newTestServer(t *testing.T, manifest string) *testServer {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "plugins.yaml")
	if err := os.WriteFile(path, []byte(manifest), 0o644); err != nil {
		t.Fatal(err)
	}

	r := resolver.New()
	l := loader.New(r, path)
	if _, err := l.Load(); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	t.Cleanup(l.Close)

	return &testServer{
		dir:      dir,
		manifest: path,
		resolver: r,
		loader:   l,
		router:   NewRouter(New(r, l), RouterConfig{MetricsEnabled: true}),
	}
}

func (s *testServer) do(t *testing.T, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

type resultJSON struct {
	Path  string `json:"path"`
	Items []struct {
		URL      string `json:"url"`
		Title    string `json:"title"`
		Artist   string `json:"artist"`
		Duration int64  `json:"duration"`
		Year     int    `json:"year"`
	} `json:"items"`
	Diagnostics []struct {
		Code    string `json:"code"`
		Path    string `json:"path"`
		Plugin  string `json:"plugin"`
		Message string `json:"message"`
	} `json:"diagnostics"`
}

const defaultTestManifest = "plugins:\n  - name: m3u\n  - name: audiotag\n"

func TestResolve(t *testing.T) {
	s := newTestServer(t, defaultTestManifest)
	song := audiotagtest.Write(t, s.dir, "song.wav", audiotagtest.WAV(map[string]string{
		"INAM": "Song",
		"IART": "Artist",
	}, 1500))

	rec := s.do(t, http.MethodGet, "/api/resolve?path="+song, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q", ct)
	}

	var got resultJSON
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Path != song || len(got.Items) != 1 {
		t.Fatalf("Unexpected result: %+v", got)
	}
	item := got.Items[0]
	if item.URL != song || item.Title != "Song" || item.Artist != "Artist" {
		t.Errorf("Unexpected item: %+v", item)
	}
	if item.Duration != 1500 {
		t.Errorf("Duration = %d, want 1500", item.Duration)
	}
	if item.Year != -1 {
		t.Errorf("Year = %d, want unknown (-1)", item.Year)
	}
}

func TestResolveMissingFileReportsDiagnostic(t *testing.T) {
	s := newTestServer(t, defaultTestManifest)
	missing := filepath.Join(s.dir, "gone.wav")

	rec := s.do(t, http.MethodGet, "/api/resolve?path="+missing, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}

	var got resultJSON
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(got.Items) != 1 || got.Items[0].URL != missing {
		t.Fatalf("Expected the bare item to survive, got %+v", got.Items)
	}
	if len(got.Diagnostics) != 1 {
		t.Fatalf("Expected one diagnostic, got %+v", got.Diagnostics)
	}
	d := got.Diagnostics[0]
	if d.Code != string(resolver.CodeIOFailure) || d.Plugin != "audiotag" || d.Message == "" {
		t.Errorf("Unexpected diagnostic: %+v", d)
	}
}

func TestResolveRequiresPath(t *testing.T) {
	s := newTestServer(t, defaultTestManifest)

	for _, target := range []string{"/api/resolve", "/api/resolve?path=", "/api/resolve?path=%20"} {
		rec := s.do(t, http.MethodGet, target, "")
		if rec.Code != http.StatusBadRequest {
			t.Errorf("%s: expected 400, got %d", target, rec.Code)
		}
		if !strings.Contains(rec.Body.String(), "missing path") {
			t.Errorf("%s: unexpected body %s", target, rec.Body.String())
		}
	}
}

func TestResolveBatch(t *testing.T) {
	s := newTestServer(t, defaultTestManifest)
	one := audiotagtest.Write(t, s.dir, "one.wav", audiotagtest.WAV(map[string]string{"INAM": "One"}, 1000))
	two := audiotagtest.Write(t, s.dir, "two.wav", audiotagtest.WAV(map[string]string{"INAM": "Two"}, 2000))
	list := audiotagtest.Write(t, s.dir, "mix.m3u", []byte("#EXTM3U\n"+one+"\n"+two+"\n"))
	plain := filepath.Join(s.dir, "plain.txt")

	body, _ := json.Marshal(ResolveRequest{Paths: []string{list, one, plain}})
	rec := s.do(t, http.MethodPost, "/api/resolve", string(body))
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var got []resultJSON
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("Expected 3 results, got %d", len(got))
	}
	if got[0].Path != list || len(got[0].Items) != 2 {
		t.Fatalf("Playlist result: %+v", got[0])
	}
	if got[0].Items[0].Title != "One" || got[0].Items[1].Title != "Two" {
		t.Errorf("Playlist items out of order: %+v", got[0].Items)
	}
	if got[1].Path != one || got[1].Items[0].Title != "One" {
		t.Errorf("Single result: %+v", got[1])
	}
	// No parser claims .txt, so the item comes back bare and clean.
	if got[2].Path != plain || len(got[2].Items) != 1 || len(got[2].Diagnostics) != 0 {
		t.Errorf("Unclaimed result: %+v", got[2])
	}
}

func TestResolveBatchRejectsBadRequests(t *testing.T) {
	s := newTestServer(t, defaultTestManifest)

	tooMany, _ := json.Marshal(ResolveRequest{Paths: make([]string, MaxBatchPaths+1)})

	tests := []struct {
		name string
		body string
		want int
	}{
		{"empty body", "", http.StatusBadRequest},
		{"not json", "paths", http.StatusBadRequest},
		{"unknown field", `{"files":["a.wav"]}`, http.StatusBadRequest},
		{"trailing data", `{"paths":["a.wav"]} {}`, http.StatusBadRequest},
		{"no paths", `{"paths":[]}`, http.StatusBadRequest},
		{"blank path", `{"paths":["a.wav"," "]}`, http.StatusBadRequest},
		{"too many paths", string(tooMany), http.StatusRequestEntityTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/resolve", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			s.router.ServeHTTP(rec, req)
			if rec.Code != tt.want {
				t.Errorf("Expected %d, got %d: %s", tt.want, rec.Code, rec.Body.String())
			}
		})
	}
}

func TestListPlugins(t *testing.T) {
	s := newTestServer(t, defaultTestManifest)

	rec := s.do(t, http.MethodGet, "/api/plugins", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}

	var got struct {
		Manifest   string `json:"manifest"`
		Registered []struct {
			Name    string   `json:"name"`
			Kind    string   `json:"kind"`
			Indexed []string `json:"indexed"`
		} `json:"registered"`
		Builtins []struct {
			Name    string `json:"name"`
			Kind    string `json:"kind"`
			Enabled bool   `json:"enabled"`
			Options []struct {
				Name string `json:"name"`
			} `json:"options"`
		} `json:"builtins"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}

	if got.Manifest != s.manifest {
		t.Errorf("Manifest = %q", got.Manifest)
	}
	if len(got.Registered) != 2 || got.Registered[0].Name != "m3u" || got.Registered[1].Name != "audiotag" {
		t.Fatalf("Unexpected registered agents: %+v", got.Registered)
	}
	if got.Registered[0].Kind != "unpacker" || got.Registered[1].Kind != "tagparser" {
		t.Errorf("Unexpected kinds: %+v", got.Registered)
	}
	if len(got.Builtins) != len(loader.Builtins()) {
		t.Fatalf("Expected %d builtins, got %d", len(loader.Builtins()), len(got.Builtins))
	}
	enabled := map[string]bool{}
	for _, b := range got.Builtins {
		enabled[b.Name] = b.Enabled
		if len(b.Options) == 0 {
			t.Errorf("Builtin %s has no option schema", b.Name)
		}
	}
	if !enabled["m3u"] || !enabled["audiotag"] || enabled["cue"] || enabled["catalog"] {
		t.Errorf("Unexpected enabled flags: %v", enabled)
	}
}

func TestReloadPlugins(t *testing.T) {
	s := newTestServer(t, defaultTestManifest)

	if err := os.WriteFile(s.manifest, []byte("plugins:\n  - name: cue\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	rec := s.do(t, http.MethodPost, "/api/plugins/reload", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var report loader.Report
	if err := json.NewDecoder(rec.Body).Decode(&report); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(report.Registered) != 1 || report.Registered[0].Name != "cue" {
		t.Errorf("Unexpected report: %+v", report)
	}
	if s.resolver.Len() != 1 {
		t.Errorf("Expected 1 registered agent, got %d", s.resolver.Len())
	}

	// An invalid manifest is refused and the registry is kept.
	if err := os.WriteFile(s.manifest, []byte("plugins:\n  - name: nope\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	rec = s.do(t, http.MethodPost, "/api/plugins/reload", "")
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("Expected 422, got %d", rec.Code)
	}
	if _, ok := s.resolver.UnpackerFor("cue"); !ok {
		t.Error("Registry should be untouched after a failed reload")
	}
}

func TestReloadWithoutLoader(t *testing.T) {
	router := NewRouter(New(resolver.New(), nil), RouterConfig{})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/plugins/reload", nil))
	if rec.Code != http.StatusNotImplemented {
		t.Errorf("Expected 501, got %d", rec.Code)
	}
}

func TestMetricsRoute(t *testing.T) {
	s := newTestServer(t, defaultTestManifest)
	rec := s.do(t, http.MethodGet, "/metrics", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}

	off := NewRouter(New(resolver.New(), nil), RouterConfig{MetricsEnabled: false})
	rec = httptest.NewRecorder()
	off.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("Expected 404 with metrics disabled, got %d", rec.Code)
	}
}
