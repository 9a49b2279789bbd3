// Package discord adapts the Discord gateway and REST API to the channel
// transport contract.
package discord

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/bwmarrin/discordgo"
	"github.com/google/uuid"

	"github.com/vocalishq/vocalis/internal/channel"
)

// Handlers receives converted inbound events. Each invocation runs on its
// own goroutine; distinct events may interleave at every network call.
type Handlers struct {
	OnMessage  func(ctx context.Context, msg *channel.Message)
	OnReaction func(ctx context.Context, ev channel.ReactionEvent)
}

// Adapter owns a discordgo session and implements channel.Transport.
type Adapter struct {
	logger   *slog.Logger
	session  *discordgo.Session
	removers []func()
}

// New creates an adapter for the given bot token. The session is not opened
// until Open is called.
func New(log *slog.Logger, token string) (*Adapter, error) {
	if log == nil {
		log = slog.Default()
	}
	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	// Members intent is required to resolve guild nicknames for replies.
	session.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMessages |
		discordgo.IntentsGuildMessageReactions |
		discordgo.IntentsDirectMessages |
		discordgo.IntentsDirectMessageReactions |
		discordgo.IntentsMessageContent |
		discordgo.IntentsGuildMembers

	return &Adapter{
		logger:  log.With(slog.String("adapter", "discord")),
		session: session,
	}, nil
}

// Bind registers gateway handlers. The bot's own messages are dropped here;
// its reactions are passed through so the router can apply its ordered
// self-filter.
func (a *Adapter) Bind(ctx context.Context, h Handlers) {
	remove := a.session.AddHandler(func(s *discordgo.Session, m *discordgo.MessageCreate) {
		if ctx.Err() != nil {
			return
		}
		if m.Author == nil || m.Author.ID == s.State.User.ID {
			return
		}
		if h.OnMessage == nil {
			return
		}
		msg := fromDiscordMessage(m.Message)
		a.logger.Info("inbound message",
			slog.String("event_id", uuid.NewString()),
			slog.String("message_id", msg.ID),
			slog.String("author_id", msg.Author.ID),
			slog.Int("attachments", len(msg.Attachments)),
		)
		go h.OnMessage(ctx, msg)
	})
	a.removers = append(a.removers, remove)

	remove = a.session.AddHandler(func(s *discordgo.Session, r *discordgo.MessageReactionAdd) {
		if ctx.Err() != nil {
			return
		}
		if h.OnReaction == nil {
			return
		}
		ev := channel.ReactionEvent{
			Emoji:     r.Emoji.APIName(),
			UserID:    r.UserID,
			ChannelID: r.ChannelID,
			MessageID: r.MessageID,
			GuildID:   r.GuildID,
		}
		a.logger.Info("inbound reaction",
			slog.String("event_id", uuid.NewString()),
			slog.String("message_id", ev.MessageID),
			slog.String("user_id", ev.UserID),
			slog.String("emoji", ev.Emoji),
		)
		go h.OnReaction(ctx, ev)
	})
	a.removers = append(a.removers, remove)
}

// Open connects the gateway session.
func (a *Adapter) Open() error {
	if err := a.session.Open(); err != nil {
		return fmt.Errorf("open gateway: %w", err)
	}
	a.logger.Info("logged on", slog.String("user", a.session.State.User.Username))
	return nil
}

// Close removes registered handlers and closes the session.
func (a *Adapter) Close() error {
	for _, remove := range a.removers {
		remove()
	}
	a.removers = nil
	return a.session.Close()
}

// FetchMessage queries the REST API for the message's current state on every
// call, satisfying the transport's never-cached contract.
func (a *Adapter) FetchMessage(ctx context.Context, channelID, messageID string) (*channel.Message, error) {
	m, err := a.session.ChannelMessage(channelID, messageID, discordgo.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("fetch message %s: %w", messageID, err)
	}
	return fromDiscordMessage(m), nil
}

func (a *Adapter) Reply(ctx context.Context, channelID, messageID, text string) (*channel.Message, error) {
	m, err := a.session.ChannelMessageSendReply(channelID, text, &discordgo.MessageReference{
		ChannelID: channelID,
		MessageID: messageID,
	}, discordgo.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("send reply: %w", err)
	}
	return fromDiscordMessage(m), nil
}

func (a *Adapter) SendText(ctx context.Context, channelID, text string) error {
	_, err := a.session.ChannelMessageSend(channelID, text, discordgo.WithContext(ctx))
	return err
}

func (a *Adapter) SendFile(ctx context.Context, channelID, path string) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer func() {
		_ = file.Close()
	}()
	_, err = a.session.ChannelFileSend(channelID, filepath.Base(path), file, discordgo.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("send file: %w", err)
	}
	return nil
}

func (a *Adapter) React(ctx context.Context, channelID, messageID, emoji string) error {
	return a.session.MessageReactionAdd(channelID, messageID, emoji, discordgo.WithContext(ctx))
}

func (a *Adapter) Delete(ctx context.Context, channelID, messageID string) error {
	return a.session.ChannelMessageDelete(channelID, messageID, discordgo.WithContext(ctx))
}

func (a *Adapter) MemberDisplayName(ctx context.Context, guildID, userID string) (string, error) {
	member, err := a.session.GuildMember(guildID, userID, discordgo.WithContext(ctx))
	if err != nil {
		return "", fmt.Errorf("fetch member %s: %w", userID, err)
	}
	return displayName(member), nil
}

func (a *Adapter) BotUserID() string {
	if a.session.State == nil || a.session.State.User == nil {
		return ""
	}
	return a.session.State.User.ID
}

func displayName(member *discordgo.Member) string {
	if member.Nick != "" {
		return member.Nick
	}
	if member.User != nil {
		if member.User.GlobalName != "" {
			return member.User.GlobalName
		}
		return member.User.Username
	}
	return ""
}

func fromDiscordMessage(m *discordgo.Message) *channel.Message {
	msg := &channel.Message{
		ID:        m.ID,
		ChannelID: m.ChannelID,
		GuildID:   m.GuildID,
		Content:   m.Content,
	}
	if m.Author != nil {
		msg.Author = channel.Identity{
			ID:       m.Author.ID,
			Username: m.Author.Username,
			Bot:      m.Author.Bot,
		}
	}
	if m.MessageReference != nil {
		msg.ReplyToID = m.MessageReference.MessageID
	}
	for _, att := range m.Attachments {
		msg.Attachments = append(msg.Attachments, channel.Attachment{
			ID:          att.ID,
			Filename:    att.Filename,
			ContentType: att.ContentType,
			URL:         att.URL,
			Size:        int64(att.Size),
		})
	}
	for _, emb := range m.Embeds {
		converted := channel.Embed{}
		if emb.Image != nil {
			converted.ImageURL = proxyOrDirect(emb.Image.ProxyURL, emb.Image.URL)
		}
		if emb.Thumbnail != nil {
			converted.ThumbnailURL = proxyOrDirect(emb.Thumbnail.ProxyURL, emb.Thumbnail.URL)
		}
		msg.Embeds = append(msg.Embeds, converted)
	}
	return msg
}

func proxyOrDirect(proxyURL, url string) string {
	if proxyURL != "" {
		return proxyURL
	}
	return url
}
