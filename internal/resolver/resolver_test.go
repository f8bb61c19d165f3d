package resolver

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"media-resolver/internal/mediaitem"
	"media-resolver/internal/plugin"
)

// fakeAgent counts factory calls and remembers what it was asked to free.
type fakeAgent struct {
	name      string
	kind      plugin.Kind
	obj       any
	createErr error

	mu      sync.Mutex
	created int
	freed   []any
}

func (a *fakeAgent) Name() string      { return a.name }
func (a *fakeAgent) Kind() plugin.Kind { return a.kind }

func (a *fakeAgent) CreateObject() (any, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.createErr != nil {
		return nil, a.createErr
	}
	a.created++
	return a.obj, nil
}

func (a *fakeAgent) FreeObject(obj any) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.freed = append(a.freed, obj)
}

func (a *fakeAgent) freeCount() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.freed)
}

type fakeUnpacker struct {
	suffixes []string
	dump     func(path string, routes plugin.Routes) ([]*mediaitem.Item, error)
}

func (u *fakeUnpacker) FileSuffixes() []string { return u.suffixes }

func (u *fakeUnpacker) DumpMedia(path string, routes plugin.Routes) ([]*mediaitem.Item, error) {
	return u.dump(path, routes)
}

type fakeParser struct {
	suffixes []string
	openErr  error
	hasTag   bool
	hasProps bool

	title, artist, album, comment, genre string
	year, track                          int
	duration                             int64

	mu     sync.Mutex
	opened []string
	closes int
	active bool
}

func (p *fakeParser) FileSuffixes() []string { return p.suffixes }

func (p *fakeParser) Open(path string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.active {
		panic("parser opened twice without Close")
	}
	p.opened = append(p.opened, path)
	if p.openErr != nil {
		return p.openErr
	}
	p.active = true
	return nil
}

func (p *fakeParser) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closes++
	p.active = false
}

func (p *fakeParser) HasTag() bool        { return p.hasTag }
func (p *fakeParser) HasProperties() bool { return p.hasProps }
func (p *fakeParser) Title() string       { return p.title }
func (p *fakeParser) Artist() string      { return p.artist }
func (p *fakeParser) Album() string       { return p.album }
func (p *fakeParser) Comment() string     { return p.comment }
func (p *fakeParser) Genre() string       { return p.genre }
func (p *fakeParser) Year() int           { return p.year }
func (p *fakeParser) Track() int          { return p.track }
func (p *fakeParser) Duration() int64     { return p.duration }

func (p *fakeParser) closeCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closes
}

func newUnpackerAgent(name string, u *fakeUnpacker) *fakeAgent {
	return &fakeAgent{name: name, kind: plugin.KindUnpacker, obj: u}
}

func newParserAgent(name string, p *fakeParser) *fakeAgent {
	return &fakeAgent{name: name, kind: plugin.KindTagParser, obj: p}
}

// cueUnpacker yields three ranged tracks pointing into the sibling wav.
func cueUnpacker(suffixes ...string) *fakeUnpacker {
	return &fakeUnpacker{
		suffixes: suffixes,
		dump: func(path string, _ plugin.Routes) ([]*mediaitem.Item, error) {
			wav := path[:len(path)-len(".cue")] + ".wav"
			items := make([]*mediaitem.Item, 0, 3)
			for i := 0; i < 3; i++ {
				item := mediaitem.NewRange(wav, int64(i)*60000, int64(i+1)*60000)
				item.Track = i + 1
				items = append(items, item)
			}
			return items, nil
		},
	}
}

func register(t *testing.T, r *Resolver, agent plugin.Agent) Handle {
	t.Helper()
	h, err := r.RegisterPluginAgent(agent)
	require.NoError(t, err)
	require.False(t, h.IsZero())
	return h
}

func TestUnpackerSuffixIsCaseInsensitive(t *testing.T) {
	r := New()
	register(t, r, newUnpackerAgent("cue", cueUnpacker("CUE")))

	for _, path := range []string{"album.cue", "album.Cue", "ALBUM.CUE"} {
		t.Run(path, func(t *testing.T) {
			items, diags := r.LoadMedia(path)
			assert.Empty(t, diags)
			require.Len(t, items, 3)
			assert.True(t, items[0].HasRange)
		})
	}

	h, ok := r.UnpackerFor(".Cue")
	assert.True(t, ok)
	assert.False(t, h.IsZero())
}

func TestFirstRegistrantWins(t *testing.T) {
	r := New()
	first := &fakeParser{suffixes: []string{"mp3"}, hasTag: true, title: "First"}
	second := &fakeParser{suffixes: []string{"MP3", "ogg"}, hasTag: true, title: "Second"}
	firstAgent := newParserAgent("first", first)
	secondAgent := newParserAgent("second", second)

	h1 := register(t, r, firstAgent)
	h2 := register(t, r, secondAgent)

	owner, ok := r.TagParserFor("mp3")
	require.True(t, ok)
	assert.Equal(t, h1, owner)

	// The second agent still got the suffix nobody else claimed.
	owner, ok = r.TagParserFor("ogg")
	require.True(t, ok)
	assert.Equal(t, h2, owner)

	items, _ := r.LoadMedia("song.mp3")
	require.Len(t, items, 1)
	assert.Equal(t, "First", items[0].Title)

	// Removing the owner does not hand the suffix to the later registrant.
	require.True(t, r.UnregisterPluginAgent(h1))
	_, ok = r.TagParserFor("mp3")
	assert.False(t, ok)

	// Registering the later agent again lets it claim the suffix.
	require.True(t, r.UnregisterPluginAgent(h2))
	h3 := register(t, r, secondAgent)
	owner, ok = r.TagParserFor("mp3")
	require.True(t, ok)
	assert.Equal(t, h3, owner)

	items, _ = r.LoadMedia("song.mp3")
	require.Len(t, items, 1)
	assert.Equal(t, "Second", items[0].Title)
}

func TestUnregisterRemovesRoutesAndFreesOnce(t *testing.T) {
	r := New()
	u := cueUnpacker("cue", "CUE", "toc")
	agent := newUnpackerAgent("cue", u)
	h := register(t, r, agent)

	assert.Equal(t, []string{"cue", "toc"}, r.UnpackSuffixes())

	require.True(t, r.UnregisterPluginAgent(h))
	assert.False(t, r.UnregisterPluginAgent(h), "second unregister must be a no-op")

	assert.Equal(t, 1, agent.created)
	require.Equal(t, 1, agent.freeCount())
	assert.Same(t, u, agent.freed[0])
	assert.Empty(t, r.UnpackSuffixes())

	items, diags := r.LoadMedia("album.cue")
	assert.Empty(t, diags)
	require.Len(t, items, 1)
	assert.Equal(t, "album.cue", items[0].URL)
	assert.False(t, items[0].HasRange)
}

func TestUnregisterKeepsOtherOwnersEntries(t *testing.T) {
	r := New()
	a := newParserAgent("a", &fakeParser{suffixes: []string{"flac"}})
	b := newParserAgent("b", &fakeParser{suffixes: []string{"flac", "wav"}})

	ha := register(t, r, a)
	hb := register(t, r, b)

	require.True(t, r.UnregisterPluginAgent(hb))

	owner, ok := r.TagParserFor("flac")
	require.True(t, ok)
	assert.Equal(t, ha, owner)
	_, ok = r.TagParserFor("wav")
	assert.False(t, ok)
}

func TestLoadMediaWithoutUnpacker(t *testing.T) {
	r := New()

	items, diags := r.LoadMedia("/music/Track 01.flac")

	assert.Empty(t, diags)
	require.Len(t, items, 1)
	item := items[0]
	assert.Equal(t, "/music/Track 01.flac", item.URL)
	assert.False(t, item.HasRange)
	assert.True(t, item.IsBlank())
	assert.Equal(t, mediaitem.UnknownYear, item.Year)
	assert.Equal(t, mediaitem.UnknownTrack, item.Track)
	assert.Equal(t, mediaitem.UnknownDuration, item.Duration)
}

func TestTagFillNeverOverwritesKnownFields(t *testing.T) {
	r := New()
	register(t, r, newUnpackerAgent("preset", &fakeUnpacker{
		suffixes: []string{"pls"},
		dump: func(string, plugin.Routes) ([]*mediaitem.Item, error) {
			item := mediaitem.New("song.mp3")
			item.Title = "Preset"
			item.Track = 0
			item.Duration = 1000
			return []*mediaitem.Item{item}, nil
		},
	}))
	register(t, r, newParserAgent("mp3", &fakeParser{
		suffixes: []string{"mp3"},
		hasTag:   true,
		hasProps: true,
		title:    "Parsed",
		artist:   "Band",
		year:     2001,
		track:    5,
		duration: 9000,
	}))

	items, diags := r.LoadMedia("list.pls")
	assert.Empty(t, diags)
	require.Len(t, items, 1)
	assert.Equal(t, "Preset", items[0].Title)
	assert.Equal(t, 0, items[0].Track)
	assert.Equal(t, int64(1000), items[0].Duration)
	assert.Equal(t, "Band", items[0].Artist)
	assert.Equal(t, 2001, items[0].Year)
}

func TestWildcardOnlyWhenNoSpecificParser(t *testing.T) {
	r := New()
	// Register the wildcard first to show order does not matter here.
	register(t, r, newParserAgent("any", &fakeParser{suffixes: []string{"*"}, hasTag: true, title: "Wildcard"}))
	register(t, r, newParserAgent("mp3", &fakeParser{suffixes: []string{"mp3"}, hasTag: true, title: "Specific"}))

	items, _ := r.LoadMedia("song.mp3")
	require.Len(t, items, 1)
	assert.Equal(t, "Specific", items[0].Title)

	items, _ = r.LoadMedia("song.xyz")
	require.Len(t, items, 1)
	assert.Equal(t, "Wildcard", items[0].Title)

	items, _ = r.LoadMedia("README")
	require.Len(t, items, 1)
	assert.Equal(t, "Wildcard", items[0].Title)

	assert.True(t, r.Stats().HasWildcard)
}

func TestUnpackerCannotClaimWildcard(t *testing.T) {
	r := New()
	register(t, r, newUnpackerAgent("greedy", cueUnpacker("*", "cue")))

	assert.Equal(t, []string{"cue"}, r.UnpackSuffixes())

	items, _ := r.LoadMedia("song.flac")
	require.Len(t, items, 1)
	assert.False(t, items[0].HasRange)
}

func TestUnregisterAll(t *testing.T) {
	t.Run("empty registry", func(t *testing.T) {
		r := New()
		r.UnregisterAll()
		assert.Equal(t, 0, r.Len())
		assert.Empty(t, r.UnpackSuffixes())
		assert.Empty(t, r.TagParserSuffixes())
	})

	t.Run("populated registry", func(t *testing.T) {
		r := New()
		agents := []*fakeAgent{
			newUnpackerAgent("cue", cueUnpacker("cue")),
			newParserAgent("wav", &fakeParser{suffixes: []string{"wav"}}),
			newParserAgent("any", &fakeParser{suffixes: []string{"*"}}),
			{name: "alsa", kind: plugin.KindRenderer},
		}
		for _, a := range agents {
			register(t, r, a)
		}

		r.UnregisterAll()
		r.UnregisterAll()

		assert.Equal(t, 0, r.Len())
		assert.Empty(t, r.UnpackSuffixes())
		assert.Empty(t, r.TagParserSuffixes())
		assert.Equal(t, Stats{}, r.Stats())
		for _, a := range agents[:3] {
			assert.Equal(t, 1, a.freeCount(), a.name)
		}
		assert.Equal(t, 0, agents[3].freeCount())
	})
}

func TestEndToEndCueSheet(t *testing.T) {
	r := New()
	register(t, r, newUnpackerAgent("cue", cueUnpacker("cue")))
	wav := &fakeParser{suffixes: []string{"wav"}, hasTag: true, hasProps: true, artist: "Band", year: -1, track: -1, duration: 180000}
	register(t, r, newParserAgent("wav", wav))

	items, diags := r.LoadMedia("album.cue")

	assert.Empty(t, diags)
	require.Len(t, items, 3)
	for i, item := range items {
		assert.Equal(t, "album.wav", item.URL)
		assert.True(t, item.HasRange)
		assert.Equal(t, "Band", item.Artist)
		assert.Equal(t, i+1, item.Track, "track number from the unpacker is kept")
		assert.Equal(t, int64(180000), item.Duration)
	}
	assert.Equal(t, 3, wav.closeCount())
}

func TestUnknownKindIsRegisteredWithoutObject(t *testing.T) {
	r := New()
	agent := &fakeAgent{name: "ffmpeg", kind: plugin.KindDecoder, obj: "decoder"}

	h := register(t, r, agent)

	assert.Equal(t, 0, agent.created)
	assert.Equal(t, 1, r.Len())
	assert.Empty(t, r.UnpackSuffixes())
	assert.Empty(t, r.TagParserSuffixes())

	infos := r.Agents()
	require.Len(t, infos, 1)
	assert.Equal(t, plugin.KindDecoder, infos[0].Kind)
	assert.Empty(t, infos[0].Indexed)

	require.True(t, r.UnregisterPluginAgent(h))
	assert.Equal(t, 0, agent.freeCount())
	assert.Equal(t, 0, r.Len())
}

func TestRegistrationFailures(t *testing.T) {
	t.Run("nil agent", func(t *testing.T) {
		_, err := New().RegisterPluginAgent(nil)
		require.ErrorIs(t, err, ErrNilAgent)
	})

	t.Run("create fails", func(t *testing.T) {
		r := New()
		boom := errors.New("boom")
		agent := &fakeAgent{name: "broken", kind: plugin.KindTagParser, createErr: boom}

		h, err := r.RegisterPluginAgent(agent)
		require.ErrorIs(t, err, boom)
		assert.True(t, h.IsZero())
		assert.Equal(t, 0, r.Len())
		assert.Equal(t, 0, agent.freeCount())
	})

	t.Run("object does not match kind", func(t *testing.T) {
		r := New()
		// An unpacker object from an agent that claims to be a tag parser.
		u := cueUnpacker("cue")
		agent := &fakeAgent{name: "liar", kind: plugin.KindTagParser, obj: u}

		_, err := r.RegisterPluginAgent(agent)
		require.ErrorIs(t, err, ErrCapabilityMismatch)
		assert.Equal(t, 0, r.Len())
		require.Equal(t, 1, agent.freeCount())
		assert.Same(t, u, agent.freed[0])
	})
}

func TestStaleHandleDoesNotMatchReusedSlot(t *testing.T) {
	r := New()
	a := newParserAgent("a", &fakeParser{suffixes: []string{"mp3"}})
	b := newParserAgent("b", &fakeParser{suffixes: []string{"ogg"}})

	ha := register(t, r, a)
	require.True(t, r.UnregisterPluginAgent(ha))
	hb := register(t, r, b)

	assert.NotEqual(t, ha, hb)
	assert.False(t, r.UnregisterPluginAgent(ha))
	assert.Equal(t, 0, b.freeCount())

	owner, ok := r.TagParserFor("ogg")
	require.True(t, ok)
	assert.Equal(t, hb, owner)
}

func TestParserOpenFailureIsContained(t *testing.T) {
	r := New()
	register(t, r, newUnpackerAgent("list", &fakeUnpacker{
		suffixes: []string{"m3u"},
		dump: func(string, plugin.Routes) ([]*mediaitem.Item, error) {
			return []*mediaitem.Item{mediaitem.New("bad.flac"), mediaitem.New("good.ogg")}, nil
		},
	}))
	bad := &fakeParser{suffixes: []string{"flac"}, openErr: errors.New("permission denied")}
	good := &fakeParser{suffixes: []string{"ogg"}, hasTag: true, hasProps: true, title: "Fine", duration: 5}
	register(t, r, newParserAgent("flac", bad))
	register(t, r, newParserAgent("ogg", good))

	items, diags := r.LoadMedia("mix.m3u")

	require.Len(t, items, 2)
	assert.True(t, items[0].IsBlank())
	assert.Equal(t, "Fine", items[1].Title)

	require.Len(t, diags, 1)
	assert.Equal(t, CodeIOFailure, diags[0].Code)
	assert.Equal(t, "bad.flac", diags[0].Path)
	assert.Equal(t, "flac", diags[0].Plugin)
	assert.ErrorContains(t, diags.Err(), "permission denied")
	assert.Equal(t, 1, bad.closeCount(), "Close must run after a failed Open")
}

func TestNoTagAndNoPropertiesAreDiagnostics(t *testing.T) {
	r := New()
	register(t, r, newParserAgent("mp3", &fakeParser{suffixes: []string{"mp3"}, hasTag: false, hasProps: false, title: "ignored", duration: 77}))

	items, diags := r.LoadMedia("song.mp3")

	require.Len(t, items, 1)
	assert.True(t, items[0].IsBlank(), "getters must not be used without Has*")
	assert.Equal(t, 1, diags.Count(CodeNoTagData))
	assert.Equal(t, 1, diags.Count(CodeNoProperties))
	assert.Empty(t, diags.Failures())
}

func TestMalformedContainerKeepsProducedItems(t *testing.T) {
	r := New()
	register(t, r, newUnpackerAgent("cue", &fakeUnpacker{
		suffixes: []string{"cue"},
		dump: func(string, plugin.Routes) ([]*mediaitem.Item, error) {
			return []*mediaitem.Item{mediaitem.NewRange("a.wav", 0, 1000), nil}, fmt.Errorf("line 12: bad INDEX")
		},
	}))

	items, diags := r.LoadMedia("broken.cue")

	require.Len(t, items, 1)
	assert.Equal(t, "a.wav", items[0].URL)
	require.Len(t, diags, 1)
	assert.Equal(t, CodeMalformedContainer, diags[0].Code)
	assert.True(t, diags[0].Code.IsFailure())
}

func TestUnpackerReceivesRoutesForNestedContainers(t *testing.T) {
	r := New()
	register(t, r, newUnpackerAgent("cue", cueUnpacker("cue")))
	register(t, r, newUnpackerAgent("m3u", &fakeUnpacker{
		suffixes: []string{"m3u"},
		dump: func(_ string, routes plugin.Routes) ([]*mediaitem.Item, error) {
			var out []*mediaitem.Item
			for _, ref := range []string{"disc1.cue", "bonus.flac"} {
				items, _, err := routes.Expand(ref)
				if err != nil {
					return out, err
				}
				out = append(out, items...)
			}
			return out, nil
		},
	}))

	items, diags := r.LoadMedia("box.m3u")

	assert.Empty(t, diags)
	require.Len(t, items, 4)
	assert.Equal(t, "disc1.wav", items[0].URL)
	assert.True(t, items[2].HasRange)
	assert.Equal(t, "bonus.flac", items[3].URL)
	assert.False(t, items[3].HasRange)
}

func TestAgentsListsRegistrationOrder(t *testing.T) {
	r := New()
	register(t, r, newParserAgent("b", &fakeParser{suffixes: []string{"ogg", "mp3"}}))
	register(t, r, newParserAgent("a", &fakeParser{suffixes: []string{"mp3", ".FLAC"}}))

	infos := r.Agents()
	require.Len(t, infos, 2)
	assert.Equal(t, "b", infos[0].Name)
	assert.Equal(t, []string{"ogg", "mp3"}, infos[0].Indexed)
	assert.Equal(t, "a", infos[1].Name)
	assert.Equal(t, []string{"mp3", "flac"}, infos[1].Declared)
	assert.Equal(t, []string{"flac"}, infos[1].Indexed)

	stats := r.Stats()
	assert.Equal(t, 2, stats.Agents)
	assert.Equal(t, 3, stats.TagParserRoutes)
	assert.False(t, stats.HasWildcard)
}

func TestConcurrentLoadAndRegistration(t *testing.T) {
	r := New()
	register(t, r, newUnpackerAgent("cue", cueUnpacker("cue")))
	register(t, r, newParserAgent("wav", &fakeParser{suffixes: []string{"wav"}, hasTag: true, hasProps: true, artist: "Band", year: -1, track: -1}))

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				items, _ := r.LoadMedia("album.cue")
				if len(items) != 3 {
					t.Errorf("expected 3 items, got %d", len(items))
					return
				}
			}
		}()
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		for j := 0; j < 50; j++ {
			h, err := r.RegisterPluginAgent(newParserAgent("extra", &fakeParser{suffixes: []string{"ogg"}}))
			if err != nil {
				t.Errorf("register: %v", err)
				return
			}
			r.UnregisterPluginAgent(h)
		}
	}()

	wg.Wait()
}

func TestRegisteringSameAgentTwice(t *testing.T) {
	r := New()
	u := cueUnpacker("cue")
	agent := newUnpackerAgent("cue", u)

	h := register(t, r, agent)
	h2, err := r.RegisterPluginAgent(agent)
	require.ErrorIs(t, err, ErrAlreadyRegistered)
	assert.True(t, h2.IsZero())
	assert.Equal(t, 1, agent.created, "second registration must not create an object")
	assert.Equal(t, 1, r.Len())

	owner, ok := r.UnpackerFor("cue")
	require.True(t, ok)
	assert.Equal(t, h, owner)

	r.UnregisterAll()
	require.Equal(t, 1, agent.freeCount())
	assert.Same(t, u, agent.freed[0])

	// Once unregistered the agent may register again.
	register(t, r, agent)
	assert.Equal(t, 2, agent.created)
}

func TestReplace(t *testing.T) {
	r := New()
	old := newParserAgent("old", &fakeParser{suffixes: []string{"mp3"}})
	register(t, r, old)

	cue := newUnpackerAgent("cue", cueUnpacker("cue"))
	wav := newParserAgent("wav", &fakeParser{suffixes: []string{"wav"}})
	broken := &fakeAgent{name: "broken", kind: plugin.KindTagParser, createErr: errors.New("boom")}

	handles, err := r.Replace([]plugin.Agent{cue, wav, broken, cue})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrAlreadyRegistered)
	require.Len(t, handles, 4)
	assert.False(t, handles[0].IsZero())
	assert.False(t, handles[1].IsZero())
	assert.True(t, handles[2].IsZero())
	assert.True(t, handles[3].IsZero())

	assert.Equal(t, 1, old.freeCount())
	assert.Equal(t, 1, cue.created)
	assert.Equal(t, 2, r.Len())
	assert.Equal(t, []string{"cue"}, r.UnpackSuffixes())
	assert.Equal(t, []string{"wav"}, r.TagParserSuffixes())

	infos := r.Agents()
	require.Len(t, infos, 2)
	assert.Equal(t, "cue", infos[0].Name)
	assert.Equal(t, "wav", infos[1].Name)
}

func TestReplaceIsAtomicForReaders(t *testing.T) {
	r := New()
	agents := func() []plugin.Agent {
		return []plugin.Agent{
			newUnpackerAgent("cue", cueUnpacker("cue")),
			newParserAgent("wav", &fakeParser{suffixes: []string{"wav"}, hasTag: true, artist: "Band", year: -1, track: -1}),
		}
	}
	_, err := r.Replace(agents())
	require.NoError(t, err)

	done := make(chan struct{})
	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-done:
					return
				default:
				}
				items, _ := r.LoadMedia("album.cue")
				if len(items) != 3 || items[0].Artist != "Band" {
					t.Errorf("saw a partly replaced registry: %d item(s)", len(items))
					return
				}
			}
		}()
	}

	for i := 0; i < 100; i++ {
		_, err := r.Replace(agents())
		require.NoError(t, err)
	}
	close(done)
	wg.Wait()
}
