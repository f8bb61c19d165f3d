package playlist

import (
	"encoding/xml"
	"fmt"
)

// WPL structure based on Windows Media Player playlist format
type WPL struct {
	XMLName xml.Name `xml:"smil"`
	Head    WPLHead  `xml:"head"`
	Body    WPLBody  `xml:"body"`
}

type WPLHead struct {
	Title string    `xml:"title"`
	Meta  []WPLMeta `xml:"meta"`
}

type WPLMeta struct {
	Name    string `xml:"name,attr"`
	Content string `xml:"content,attr"`
}

type WPLBody struct {
	Seq WPLSeq `xml:"seq"`
}

type WPLSeq struct {
	Media []WPLMedia `xml:"media"`
}

type WPLMedia struct {
	Src string `xml:"src,attr"`
}

// ParseWPL parses the WPL document in data. wplPath is only used for the
// playlist name and path; entry sources are left as written.
func ParseWPL(data []byte, wplPath string) (*Playlist, error) {
	var wpl WPL
	if err := xml.Unmarshal(data, &wpl); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	playlist := newPlaylist(wplPath, wpl.Head.Title)
	for _, media := range wpl.Body.Seq.Media {
		if media.Src == "" {
			continue
		}
		playlist.Entries = append(playlist.Entries, newEntry(media.Src))
	}
	return playlist, nil
}
