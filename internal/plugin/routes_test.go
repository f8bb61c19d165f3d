package plugin

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"media-resolver/internal/mediaitem"
)

type mapTable map[string]Unpacker

func (m mapTable) Unpacker(suffix string) (Unpacker, bool) {
	u, ok := m[suffix]
	return u, ok
}

// loopUnpacker re-expands its own path, as a playlist listing itself would.
type loopUnpacker struct {
	calls int
}

func (l *loopUnpacker) FileSuffixes() []string { return []string{"m3u"} }

func (l *loopUnpacker) DumpMedia(path string, routes Routes) ([]*mediaitem.Item, error) {
	l.calls++
	items, _, err := routes.Expand(path)
	return items, err
}

func TestRoutesLookupNormalizesSuffix(t *testing.T) {
	u := &loopUnpacker{}
	routes := NewRoutes(mapTable{"m3u": u})

	got, ok := routes.Lookup(".M3U")
	require.True(t, ok)
	assert.Same(t, u, got)

	got, ok = routes.LookupPath("/lists/Mix.m3u")
	require.True(t, ok)
	assert.Same(t, u, got)

	_, ok = routes.Lookup("cue")
	assert.False(t, ok)
}

func TestRoutesZeroValue(t *testing.T) {
	var routes Routes
	_, ok := routes.Lookup("cue")
	assert.False(t, ok)

	items, used, err := routes.Expand("/music/a.flac")
	require.NoError(t, err)
	assert.False(t, used)
	require.Len(t, items, 1)
	assert.Equal(t, "/music/a.flac", items[0].URL)
	assert.True(t, items[0].IsBlank())
}

func TestRoutesStopsAtMaxDepth(t *testing.T) {
	u := &loopUnpacker{}
	routes := NewRoutes(mapTable{"m3u": u})

	items, used, err := routes.Expand("self.m3u")
	require.NoError(t, err)
	assert.True(t, used)
	assert.Equal(t, MaxNestingDepth, u.calls)
	// The innermost level falls back to a whole-file item.
	require.Len(t, items, 1)
	assert.Equal(t, "self.m3u", items[0].URL)
}

func TestRoutesNestedDepth(t *testing.T) {
	routes := NewRoutes(mapTable{})
	assert.Equal(t, 0, routes.Depth())
	assert.Equal(t, 2, routes.Nested().Nested().Depth())
	assert.Equal(t, 0, routes.Depth())
}

func TestKindString(t *testing.T) {
	tests := []struct {
		kind Kind
		want string
	}{
		{KindUnpacker, "unpacker"},
		{KindTagParser, "tagparser"},
		{KindDecoder, "decoder"},
		{KindUnknown, "unknown"},
		{Kind(99), "kind(99)"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.kind.String())
	}
}

func TestSplitSuffixes(t *testing.T) {
	assert.Equal(t, []string{"mp3", "flac", "ogg"}, SplitSuffixes("mp3, .FLAC ogg"))
	assert.Equal(t, []string{"*"}, SplitSuffixes(" * "))
	assert.Empty(t, SplitSuffixes(" , ;"))
}
