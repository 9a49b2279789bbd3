// Package channel defines the domain view of chat-platform messages and the
// transport contract the pipelines and the reaction router operate against.
package channel

import "strings"

// VoiceMessageFilename is the fixed filename the platform assigns to voice
// recordings. Voice attachments are identified structurally by this name.
const VoiceMessageFilename = "voice-message.ogg"

// Identity represents a message author or reacting user.
type Identity struct {
	ID       string
	Username string
	Bot      bool
}

// Attachment is a binary file attached to a message, materialized on demand
// through its URL.
type Attachment struct {
	ID          string
	Filename    string
	ContentType string
	URL         string
	Size        int64
}

// IsImage reports whether the attachment carries an image content type.
func (a Attachment) IsImage() bool {
	return strings.HasPrefix(a.ContentType, "image")
}

// IsVoiceMessage reports whether the attachment is a platform voice recording.
func (a Attachment) IsVoiceMessage() bool {
	return a.Filename == VoiceMessageFilename
}

// Embed is a link-preview block; either address may be absent.
type Embed struct {
	ImageURL     string
	ThumbnailURL string
}

// ImageReference returns the embed's image address, falling back to the
// thumbnail address. Empty when the embed carries no image at all.
func (e Embed) ImageReference() string {
	if strings.TrimSpace(e.ImageURL) != "" {
		return strings.TrimSpace(e.ImageURL)
	}
	return strings.TrimSpace(e.ThumbnailURL)
}

// Message is a platform message as seen by the core. Instances are immutable
// snapshots; authorization decisions must re-fetch rather than reuse them.
type Message struct {
	ID          string
	ChannelID   string
	GuildID     string // empty outside guild context
	Author      Identity
	Content     string
	Attachments []Attachment
	Embeds      []Embed
	ReplyToID   string // id of the message this one replies to, empty if none
}

// IsReply reports whether the message designates a parent message.
func (m *Message) IsReply() bool {
	return m.ReplyToID != ""
}

// InGuild reports whether the message was posted inside a guild.
func (m *Message) InGuild() bool {
	return m.GuildID != ""
}

// ReactionEvent is an inbound reaction. Emoji carries the glyph for unicode
// reactions or the "name:id" identity for custom emoji, so token triggers
// encoded in custom-emoji names remain classifiable.
type ReactionEvent struct {
	Emoji     string
	UserID    string
	ChannelID string
	MessageID string
	GuildID   string
}
