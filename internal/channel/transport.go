package channel

import "context"

// Transport is the chat-platform collaborator the core emits actions through.
type Transport interface {
	// FetchMessage returns the current state of a message. Implementations
	// must query the platform on every call, never a cache, because
	// authorization decisions depend on live authorship and attachment state.
	FetchMessage(ctx context.Context, channelID, messageID string) (*Message, error)

	// Reply posts text as a reply to the given message and returns the new
	// message, which is itself a reaction attachment point.
	Reply(ctx context.Context, channelID, messageID, text string) (*Message, error)

	// SendText posts a plain channel message, used for user-facing notices.
	SendText(ctx context.Context, channelID, text string) error

	// SendFile uploads the local file at path as a new channel message.
	SendFile(ctx context.Context, channelID, path string) error

	// React adds an emoji reaction to a message.
	React(ctx context.Context, channelID, messageID, emoji string) error

	// Delete removes a message.
	Delete(ctx context.Context, channelID, messageID string) error

	// MemberDisplayName resolves the guild display name for a user.
	MemberDisplayName(ctx context.Context, guildID, userID string) (string, error)

	// BotUserID returns the bot's own user id.
	BotUserID() string
}

// Fetcher materializes remote attachment or embed bytes.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}
