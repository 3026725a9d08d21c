package plex

import (
	"net/url"
	"strings"
)

// childrenSuffix is the escaped trailing segment Plex appends to keys of
// container items (shows, seasons) to point at their child listing.
const childrenSuffix = "%2Fchildren"

// Links builds web-app links into a Plex server.
type Links struct {
	baseURL string
}

// NewLinks creates a link builder for the given server URL, e.g.
// "https://app.plex.tv/desktop#!/server/<machine-id>".
func NewLinks(baseURL string) *Links {
	return &Links{baseURL: strings.TrimRight(baseURL, "/")}
}

// BaseURL returns the server URL without trailing slash.
func (l *Links) BaseURL() string { return l.baseURL }

// Details returns the details page link for a metadata item.
func (l *Links) Details(item *MediaItem) string {
	return l.baseURL + "/details?key=" + EscapeKey(item.Key, item.Type)
}

// EscapeKey query-escapes a metadata key. For container types the
// children-listing suffix is dropped so the link opens the item itself.
func EscapeKey(key string, t MediaType) string {
	escaped := url.QueryEscape(key)
	if t.IsContainer() {
		escaped = strings.TrimSuffix(escaped, childrenSuffix)
	}
	return escaped
}
