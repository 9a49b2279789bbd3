// Package bot wires platform events to the transcription pipeline and the
// reaction router.
package bot

import (
	"context"
	"log/slog"

	"github.com/vocalishq/vocalis/internal/channel"
	"github.com/vocalishq/vocalis/internal/channel/discord"
	"github.com/vocalishq/vocalis/internal/pipeline"
	"github.com/vocalishq/vocalis/internal/router"
)

// Bot owns the adapter lifecycle and the event fan-out.
type Bot struct {
	logger        *slog.Logger
	adapter       *discord.Adapter
	transcription *pipeline.Transcription
	router        *router.Router
}

// New creates the bot.
func New(log *slog.Logger, adapter *discord.Adapter, transcription *pipeline.Transcription, reactions *router.Router) *Bot {
	if log == nil {
		log = slog.Default()
	}
	return &Bot{
		logger:        log.With(slog.String("service", "bot")),
		adapter:       adapter,
		transcription: transcription,
		router:        reactions,
	}
}

// Start binds handlers and opens the gateway session. ctx bounds handler
// dispatch; cancel it before Stop.
func (b *Bot) Start(ctx context.Context) error {
	b.adapter.Bind(ctx, discord.Handlers{
		OnMessage:  b.handleMessage,
		OnReaction: b.handleReaction,
	})
	return b.adapter.Open()
}

// Stop closes the gateway session.
func (b *Bot) Stop() error {
	return b.adapter.Close()
}

func (b *Bot) handleMessage(ctx context.Context, msg *channel.Message) {
	b.transcription.HandleMessage(ctx, msg)
}

func (b *Bot) handleReaction(ctx context.Context, ev channel.ReactionEvent) {
	b.router.HandleReaction(ctx, ev)
}
