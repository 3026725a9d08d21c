package telegram

import (
	"strings"

	"github.com/vadimtrunov/PlexAnnouncer/internal/core"
)

// Description budgets, in runes, kept well under Telegram's caption (1024)
// and message (4096) limits so title, fields and link always fit.
const (
	captionDescriptionLen = 600
	messageDescriptionLen = 3000
)

// mdV2Replacer escapes special characters for Telegram MarkdownV2.
var mdV2Replacer = strings.NewReplacer(
	`\`, `\\`,
	"_", "\\_",
	"*", "\\*",
	"[", "\\[",
	"]", "\\]",
	"(", "\\(",
	")", "\\)",
	"~", "\\~",
	"`", "\\`",
	">", "\\>",
	"#", "\\#",
	"+", "\\+",
	"-", "\\-",
	"=", "\\=",
	"|", "\\|",
	"{", "\\{",
	"}", "\\}",
	".", "\\.",
	"!", "\\!",
)

// linkReplacer escapes the characters MarkdownV2 reserves inside link targets.
var linkReplacer = strings.NewReplacer(`\`, `\\`, ")", "\\)")

// EscapeMdV2 escapes a string for safe use in Telegram MarkdownV2.
func EscapeMdV2(s string) string {
	return mdV2Replacer.Replace(s)
}

// FormatBold returns MarkdownV2 bold text.
func FormatBold(s string) string {
	return "*" + EscapeMdV2(s) + "*"
}

// FormatLink returns a MarkdownV2 inline link.
func FormatLink(text, target string) string {
	return "[" + EscapeMdV2(text) + "](" + linkReplacer.Replace(target) + ")"
}

// FormatAnnouncement renders an announcement as MarkdownV2.
// asCaption selects the shorter budget used for photo captions.
func FormatAnnouncement(a *core.Announcement, asCaption bool) string {
	limit := messageDescriptionLen
	if asCaption {
		limit = captionDescriptionLen
	}

	var b strings.Builder
	b.WriteString(FormatBold(a.Title))

	if a.Description != "" {
		b.WriteString("\n\n")
		b.WriteString(EscapeMdV2(truncate(a.Description, limit)))
	}

	if len(a.Fields) > 0 {
		b.WriteString("\n")
		for _, f := range a.Fields {
			b.WriteString("\n")
			b.WriteString(FormatBold(f.Label + ":"))
			b.WriteString(" ")
			b.WriteString(EscapeMdV2(f.Value))
		}
	}

	if a.URL != "" {
		b.WriteString("\n\n")
		b.WriteString(FormatLink("Open in Plex", a.URL))
	}
	return b.String()
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
