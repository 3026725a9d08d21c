package core

import "context"

// AccentColor is the embed color used for every announcement (Plex orange).
const AccentColor = 0xE5A00D

// Destination defines the interface for outbound chat endpoints (Discord, Slack, Telegram)
type Destination interface {
	// Send delivers one announcement, including its thumbnail if any
	Send(ctx context.Context, a *Announcement) error

	// Name returns the destination name (e.g., "discord", "slack", "telegram")
	Name() string
}

// ThumbnailSource provides a default image for announcements that carry none
type ThumbnailSource interface {
	// Thumbnail returns the image, or nil when none is available
	Thumbnail(ctx context.Context) (*Attachment, error)
}

// Attachment is a binary payload sent alongside an announcement
type Attachment struct {
	Data     []byte // Raw bytes, captured verbatim
	Filename string // Declared filename ("cover.jpg" when unknown)
	MIMEType string // Declared or sniffed MIME type
}

// Field is a labelled value shown inside an announcement
type Field struct {
	Label string
	Value string
}

// Announcement is the formatted outbound message
type Announcement struct {
	Title       string      // Headline
	Description string      // Optional body text
	URL         string      // Link to the item on the media server
	Thumbnail   *Attachment // Optional image
	Fields      []Field     // Ordered label/value pairs
	Color       int         // Accent color
}

// AddField appends a field to the announcement
func (a *Announcement) AddField(label, value string) {
	a.Fields = append(a.Fields, Field{Label: label, Value: value})
}
