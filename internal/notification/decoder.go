package notification

import (
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/vadimtrunov/PlexAnnouncer/internal/core"
	"github.com/vadimtrunov/PlexAnnouncer/internal/mediaserver/plex"
)

// defaultAttachmentName is used when the image part declares no filename.
const defaultAttachmentName = "cover.jpg"

// payloadFieldName is the form field Plex uses for the JSON document.
const payloadFieldName = "payload"

// RequestKind classifies an inbound request by its content type.
type RequestKind int

const (
	// KindIgnored is any request that is neither multipart nor plain text.
	KindIgnored RequestKind = iota
	// KindCustom is a plain-text announcement.
	KindCustom
	// KindWebhook is a multipart Plex webhook.
	KindWebhook
)

func (k RequestKind) String() string {
	switch k {
	case KindCustom:
		return "custom"
	case KindWebhook:
		return "webhook"
	default:
		return "ignored"
	}
}

// DecodedRequest is the result of decoding one inbound request.
type DecodedRequest struct {
	Kind        RequestKind
	ContentType string
	Text        string           // KindCustom only
	Event       *plex.Event      // KindWebhook only
	Attachment  *core.Attachment // KindWebhook only, may be nil
}

// DecodeRequest reads the request body according to its content type.
// Multipart sections are consumed in arrival order: JSON sections replace
// any earlier metadata document, other sections become the attachment.
func DecodeRequest(r *http.Request) (*DecodedRequest, error) {
	raw := r.Header.Get("Content-Type")
	mediaType, _, err := mime.ParseMediaType(raw)
	if err != nil {
		return &DecodedRequest{Kind: KindIgnored, ContentType: raw}, nil
	}

	switch mediaType {
	case "text/plain":
		body, err := io.ReadAll(r.Body)
		if err != nil {
			return nil, &DecodeError{Structural: true, Err: fmt.Errorf("read body: %w", err)}
		}
		return &DecodedRequest{Kind: KindCustom, ContentType: mediaType, Text: string(body)}, nil
	case "multipart/form-data":
		return decodeMultipart(r)
	default:
		return &DecodedRequest{Kind: KindIgnored, ContentType: mediaType}, nil
	}
}

func decodeMultipart(r *http.Request) (*DecodedRequest, error) {
	reader, err := r.MultipartReader()
	if err != nil {
		return nil, &DecodeError{Structural: true, Err: fmt.Errorf("open multipart: %w", err)}
	}

	out := &DecodedRequest{Kind: KindWebhook, ContentType: "multipart/form-data"}
	for {
		part, err := reader.NextRawPart()
		// A bare io.EOF marks the closing boundary; a wrapped one is a truncated body.
		if err == io.EOF { //nolint:errorlint // see above
			break
		}
		if err != nil {
			return nil, &DecodeError{Structural: true, Err: fmt.Errorf("read multipart: %w", err)}
		}

		if isJSONPart(part) {
			var ev plex.Event
			err := json.NewDecoder(part).Decode(&ev)
			part.Close()
			if err != nil {
				return nil, &DecodeError{Structural: true, Err: fmt.Errorf("parse metadata: %w", err)}
			}
			out.Event = &ev
			continue
		}

		att, err := readAttachment(part)
		part.Close()
		if err != nil {
			return nil, &DecodeError{Structural: true, Err: err}
		}
		out.Attachment = att
	}

	if out.Event == nil {
		return out, &DecodeError{Err: ErrNoMetadata}
	}
	return out, nil
}

// isJSONPart reports whether a section holds the metadata document.
func isJSONPart(part *multipart.Part) bool {
	ct := strings.TrimSpace(part.Header.Get("Content-Type"))
	if ct == "" {
		return part.FormName() == payloadFieldName
	}
	mediaType, _, err := mime.ParseMediaType(ct)
	return err == nil && mediaType == "application/json"
}

// readAttachment captures a section's bytes verbatim.
func readAttachment(part *multipart.Part) (*core.Attachment, error) {
	data, err := io.ReadAll(part)
	if err != nil {
		return nil, fmt.Errorf("read attachment: %w", err)
	}

	name := part.FileName()
	if name == "" {
		name = defaultAttachmentName
	}

	mimeType := ""
	if ct := part.Header.Get("Content-Type"); ct != "" {
		if mt, _, err := mime.ParseMediaType(ct); err == nil {
			mimeType = mt
		}
	}
	if mimeType == "" || mimeType == "application/octet-stream" {
		mimeType = mimetype.Detect(data).String()
	}

	return &core.Attachment{Data: data, Filename: name, MIMEType: mimeType}, nil
}
