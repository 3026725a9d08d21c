package notification

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gabriel-vasile/mimetype"

	"github.com/vadimtrunov/PlexAnnouncer/internal/core"
)

// FileThumbnail serves an image loaded from disk once at startup.
type FileThumbnail struct {
	att *core.Attachment
}

// compile-time check.
var _ core.ThumbnailSource = (*FileThumbnail)(nil)

// LoadFileThumbnail reads the image at path. Non-image files are rejected.
func LoadFileThumbnail(path string) (*FileThumbnail, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read thumbnail: %w", err)
	}

	mt := mimetype.Detect(data)
	if !mt.Is("image/png") && !mt.Is("image/jpeg") && !mt.Is("image/gif") && !mt.Is("image/webp") {
		return nil, fmt.Errorf("thumbnail %s: unsupported type %s", filepath.Base(path), mt.String())
	}

	return &FileThumbnail{att: &core.Attachment{
		Data:     data,
		Filename: "announcement" + mt.Extension(),
		MIMEType: mt.String(),
	}}, nil
}

// Thumbnail returns the loaded image.
func (f *FileThumbnail) Thumbnail(context.Context) (*core.Attachment, error) {
	return f.att, nil
}
