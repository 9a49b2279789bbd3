// Package trigger holds the fixed reaction vocabulary the router recognizes.
package trigger

import "strings"

// Trigger identifies one recognized reaction affordance.
type Trigger string

const (
	Delete   Trigger = "delete"
	Download Trigger = "download"
	Invert   Trigger = "invert"
	Caption  Trigger = "caption"
)

const (
	// DeleteEmoji and DownloadEmoji are unicode glyphs matched exactly.
	DeleteEmoji   = "🗑️"
	DownloadEmoji = "⬇️"

	// InvertToken and CaptionToken appear inside custom-emoji names and are
	// matched by containment, so a single emoji name can encode both.
	InvertToken  = "invert_image"
	CaptionToken = "image_desc"
)

// Classify resolves an emoji identity into the triggers it encodes. The
// result is empty for unrecognized emoji.
func Classify(emoji string) []Trigger {
	var out []Trigger
	if emoji == DeleteEmoji {
		out = append(out, Delete)
	}
	if emoji == DownloadEmoji {
		out = append(out, Download)
	}
	if strings.Contains(emoji, InvertToken) {
		out = append(out, Invert)
	}
	if strings.Contains(emoji, CaptionToken) {
		out = append(out, Caption)
	}
	return out
}

// Has reports whether t is present in triggers.
func Has(triggers []Trigger, t Trigger) bool {
	for _, candidate := range triggers {
		if candidate == t {
			return true
		}
	}
	return false
}
