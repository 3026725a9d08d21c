package notification

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/vadimtrunov/PlexAnnouncer/internal/core"
	"github.com/vadimtrunov/PlexAnnouncer/internal/mediaserver/plex"
)

// Field labels used in announcements.
const (
	FieldDuration = "Duration"
	FieldYear     = "Year"
	FieldRating   = "Rating"
	FieldSeason   = "Season"
	FieldEpisode  = "Episode"
)

// customTitle is the headline of free-text announcements.
const customTitle = "Announcement"

// errMissingKey is returned for items without a metadata key.
var errMissingKey = errors.New("item has no key")

// formatter builds an announcement for one item type.
type formatter func(links *plex.Links, item *plex.MediaItem, thumb *core.Attachment) (*core.Announcement, error)

// formatterFor returns the formatter for a media type, or nil for MediaTypeUnknown.
func formatterFor(t plex.MediaType) formatter {
	switch t {
	case plex.MediaTypeMovie, plex.MediaTypeShow:
		return formatTitled
	case plex.MediaTypeEpisode:
		return formatEpisode
	case plex.MediaTypeTrack:
		return formatTrack
	case plex.MediaTypeUnknown:
		return nil
	}
	return nil
}

// formatTitled builds the announcement shared by movies and shows.
func formatTitled(links *plex.Links, item *plex.MediaItem, thumb *core.Attachment) (*core.Announcement, error) {
	a, err := newAnnouncement(links, item, item.Title, thumb)
	if err != nil {
		return nil, err
	}
	addCommonFields(a, item)
	return a, nil
}

// formatEpisode prefixes the title with the show name and adds season/episode numbers.
func formatEpisode(links *plex.Links, item *plex.MediaItem, thumb *core.Attachment) (*core.Announcement, error) {
	title := item.Title
	if item.GrandparentTitle != nil && *item.GrandparentTitle != "" {
		title = *item.GrandparentTitle + ": " + item.Title
	}

	a, err := newAnnouncement(links, item, title, thumb)
	if err != nil {
		return nil, err
	}
	addCommonFields(a, item)
	if season, episode, ok := item.EpisodeNumbers(); ok {
		a.AddField(FieldSeason, strconv.Itoa(season))
		a.AddField(FieldEpisode, strconv.Itoa(episode))
	}
	return a, nil
}

// formatTrack produces a minimal announcement: title, link and cover only.
// Track metadata (artist, album) is not rendered yet.
func formatTrack(links *plex.Links, item *plex.MediaItem, thumb *core.Attachment) (*core.Announcement, error) {
	return newAnnouncement(links, item, item.Title, thumb)
}

func newAnnouncement(links *plex.Links, item *plex.MediaItem, title string, thumb *core.Attachment) (*core.Announcement, error) {
	if item.Key == "" {
		return nil, errMissingKey
	}
	a := &core.Announcement{
		Title:     title,
		URL:       links.Details(item),
		Thumbnail: thumb,
		Color:     core.AccentColor,
	}
	if item.Summary != nil {
		a.Description = *item.Summary
	}
	return a, nil
}

// addCommonFields appends Duration, Year and Rating when present.
func addCommonFields(a *core.Announcement, item *plex.MediaItem) {
	if item.Duration != nil {
		a.AddField(FieldDuration, FormatDuration(time.Duration(*item.Duration)*time.Millisecond))
	}
	if year, ok := item.YearText(); ok {
		a.AddField(FieldYear, year)
	}
	if rating, ok := item.RatingText(); ok {
		a.AddField(FieldRating, rating)
	}
}

// formatCustom builds a free-text announcement linking to the server.
func formatCustom(links *plex.Links, text string, thumb *core.Attachment) *core.Announcement {
	return &core.Announcement{
		Title:       customTitle,
		Description: strings.TrimSpace(text),
		URL:         links.BaseURL(),
		Thumbnail:   thumb,
		Color:       core.AccentColor,
	}
}

// FormatDuration renders d as H:MM:SS. Sub-second remainders are dropped.
func FormatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int64(d / time.Second)
	return fmt.Sprintf("%d:%02d:%02d", total/3600, total%3600/60, total%60)
}
