package mediaitem

// Tags is the read side of a tag source. Values returned for fields the
// source does not know must be the package sentinels.
type Tags interface {
	Title() string
	Artist() string
	Album() string
	Comment() string
	Genre() string
	Year() int
	Track() int
}

// FillString sets *dst to v when *dst is unknown. It reports whether it wrote.
func FillString(dst *string, v string) bool {
	if *dst != "" || v == "" {
		return false
	}
	*dst = v
	return true
}

// FillInt sets *dst to v when *dst is unknown (negative).
func FillInt(dst *int, v int) bool {
	if *dst >= 0 || v < 0 {
		return false
	}
	*dst = v
	return true
}

// FillInt64 sets *dst to v when *dst is unknown (negative).
func FillInt64(dst *int64, v int64) bool {
	if *dst >= 0 || v < 0 {
		return false
	}
	*dst = v
	return true
}

// FillTags copies every tag field from src into fields of i that are still
// unknown. It returns the number of fields written.
func (i *Item) FillTags(src Tags) int {
	n := 0
	for _, ok := range []bool{
		FillString(&i.Title, src.Title()),
		FillString(&i.Artist, src.Artist()),
		FillString(&i.Album, src.Album()),
		FillString(&i.Comment, src.Comment()),
		FillString(&i.Genre, src.Genre()),
		FillInt(&i.Year, src.Year()),
		FillInt(&i.Track, src.Track()),
	} {
		if ok {
			n++
		}
	}
	return n
}

// FillDuration sets Duration when it is still unknown.
func (i *Item) FillDuration(ms int64) bool {
	return FillInt64(&i.Duration, ms)
}
