package plex

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// EventLibraryNew is the Plex webhook event sent when content is added to a library.
const EventLibraryNew = "library.new"

// MediaType is the kind of content a metadata item describes.
type MediaType int

// Known media types. MediaTypeUnknown covers everything Plex may send that
// the relay has no formatter for.
const (
	MediaTypeUnknown MediaType = iota
	MediaTypeMovie
	MediaTypeShow
	MediaTypeEpisode
	MediaTypeTrack
)

// ParseMediaType maps the Plex "type" string to a MediaType.
func ParseMediaType(s string) MediaType {
	switch s {
	case "movie":
		return MediaTypeMovie
	case "show":
		return MediaTypeShow
	case "episode":
		return MediaTypeEpisode
	case "track":
		return MediaTypeTrack
	default:
		return MediaTypeUnknown
	}
}

func (t MediaType) String() string {
	switch t {
	case MediaTypeMovie:
		return "movie"
	case MediaTypeShow:
		return "show"
	case MediaTypeEpisode:
		return "episode"
	case MediaTypeTrack:
		return "track"
	default:
		return "unknown"
	}
}

// IsContainer reports whether keys of this type may carry a trailing
// children-listing segment.
func (t MediaType) IsContainer() bool {
	return t == MediaTypeShow || t == MediaTypeEpisode
}

// UnmarshalJSON accepts any string; unrecognized values become MediaTypeUnknown.
func (t *MediaType) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*t = ParseMediaType(s)
	return nil
}

// FlexibleString is a string that also accepts JSON numbers,
// so rating can be both "PG-13" and 7.4.
type FlexibleString string

func (f *FlexibleString) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*f = FlexibleString(s)
		return nil
	}

	var n json.Number
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&n); err != nil {
		return err
	}
	*f = FlexibleString(n.String())
	return nil
}

// Event is the JSON document carried in the "payload" part of a Plex webhook.
type Event struct {
	Event    *string      `json:"event,omitempty"`
	User     bool         `json:"user,omitempty"`
	Owner    bool         `json:"owner,omitempty"`
	Server   *Server      `json:"Server,omitempty"`
	Metadata MetadataList `json:"Metadata,omitempty"`
}

// Server identifies the Plex server that sent the webhook.
type Server struct {
	Title string `json:"title"`
	UUID  string `json:"uuid"`
}

// EventName returns the event type, or empty string when absent.
func (e *Event) EventName() string {
	if e == nil || e.Event == nil {
		return ""
	}
	return *e.Event
}

// MetadataList holds the items of an event. Plex sends a single object;
// arrays are accepted as well.
type MetadataList []MediaItem

func (m *MetadataList) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*m = nil
		return nil
	}
	if trimmed[0] == '[' {
		var items []MediaItem
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return err
		}
		*m = items
		return nil
	}
	var item MediaItem
	if err := json.Unmarshal(trimmed, &item); err != nil {
		return err
	}
	*m = MetadataList{item}
	return nil
}

// MediaItem describes one unit of newly added content.
type MediaItem struct {
	Type                MediaType       `json:"type"`
	Key                 string          `json:"key"`
	Title               string          `json:"title"`
	GrandparentTitle    *string         `json:"grandparentTitle,omitempty"`    // Show name for episodes
	Summary             *string         `json:"summary,omitempty"`             // Plot synopsis
	Duration            *int64          `json:"duration,omitempty"`            // Milliseconds
	Year                *int            `json:"year,omitempty"`                // Release year
	Rating              *FlexibleString `json:"rating,omitempty"`              // Critic rating
	LibrarySectionTitle *string         `json:"librarySectionTitle,omitempty"` // Library name
	SeasonIndex         *int            `json:"parentIndex,omitempty"`         // Season number
	EpisodeIndex        *int            `json:"index,omitempty"`               // Episode number
}

// Library returns the library section title, or empty string when absent.
func (m *MediaItem) Library() string {
	if m.LibrarySectionTitle == nil {
		return ""
	}
	return *m.LibrarySectionTitle
}

// EpisodeNumbers returns the season and episode indices. ok is false unless
// both are present.
func (m *MediaItem) EpisodeNumbers() (season, episode int, ok bool) {
	if m.SeasonIndex == nil || m.EpisodeIndex == nil {
		return 0, 0, false
	}
	return *m.SeasonIndex, *m.EpisodeIndex, true
}

// RatingText returns the rating as display text.
func (m *MediaItem) RatingText() (string, bool) {
	if m.Rating == nil {
		return "", false
	}
	return strings.TrimSpace(string(*m.Rating)), true
}

// YearText returns the release year as display text.
func (m *MediaItem) YearText() (string, bool) {
	if m.Year == nil {
		return "", false
	}
	return strconv.Itoa(*m.Year), true
}
