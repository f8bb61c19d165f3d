package plugin

import (
	"fmt"
	"strings"

	"media-resolver/internal/mediaitem"
	"media-resolver/internal/mediatypes"
	"media-resolver/internal/option"
)

// Kind is the capability an agent provides.
type Kind int

const (
	KindUnknown Kind = iota
	KindDecoder
	KindEncoder
	KindRenderer
	KindUnpacker
	KindTagParser
)

// String returns the name of the kind.
func (k Kind) String() string {
	switch k {
	case KindDecoder:
		return "decoder"
	case KindEncoder:
		return "encoder"
	case KindRenderer:
		return "renderer"
	case KindUnpacker:
		return "unpacker"
	case KindTagParser:
		return "tagparser"
	case KindUnknown:
		return "unknown"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Wildcard is the suffix a tag parser declares to act as the fallback parser.
const Wildcard = mediatypes.Wildcard

// Agent provides one capability object to the resolver.
//
// Kind must be stable for the lifetime of the agent. FreeObject must accept
// exactly what CreateObject returned; the resolver never calls it twice for
// the same object.
type Agent interface {
	Name() string
	Kind() Kind
	CreateObject() (any, error)
	FreeObject(obj any)
}

// Configurable is implemented by agents that advertise an option schema.
type Configurable interface {
	Options() []option.Schema
}

// Unpacker expands a container path into items.
type Unpacker interface {
	// FileSuffixes lists the suffixes this unpacker handles. Case and a
	// leading dot are ignored.
	FileSuffixes() []string

	// DumpMedia unpacks path. Items that cover only part of a physical file
	// must have HasRange set. Items returned alongside a non-nil error are
	// kept by the resolver.
	DumpMedia(path string, routes Routes) ([]*mediaitem.Item, error)
}

// TagParser reads metadata for a single item.
//
// Open and Close bracket every use. Close must be safe after a failed Open
// and without any Open. The getters are only meaningful while the matching
// Has* predicate is true; otherwise they return the mediaitem sentinels.
type TagParser interface {
	FileSuffixes() []string

	Open(path string) error
	Close()

	HasTag() bool
	HasProperties() bool

	Title() string
	Artist() string
	Album() string
	Comment() string
	Genre() string
	Year() int
	Track() int

	// Duration in milliseconds.
	Duration() int64
}

// Suffix returns the routing key for path.
func Suffix(path string) string {
	return mediatypes.Suffix(path)
}

// NormalizeSuffix returns the routing key for a declared suffix.
func NormalizeSuffix(suffix string) string {
	return mediatypes.NormalizeSuffix(suffix)
}

// SplitSuffixes parses a comma or space separated suffix list as used in
// option values ("mp3, .FLAC ogg") into normalized suffixes.
func SplitSuffixes(list string) []string {
	fields := strings.FieldsFunc(list, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == ';'
	})
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if s := NormalizeSuffix(f); s != "" {
			out = append(out, s)
		}
	}
	return out
}
