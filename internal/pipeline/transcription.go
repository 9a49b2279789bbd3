// Package pipeline implements the per-event media pipelines: voice
// transcription, image actions, and voice-recording download. Every staged
// file a pipeline creates is released before the invocation returns,
// regardless of the exit path taken.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/vocalishq/vocalis/internal/channel"
	"github.com/vocalishq/vocalis/internal/staging"
	"github.com/vocalishq/vocalis/internal/transcribe"
	"github.com/vocalishq/vocalis/internal/trigger"
)

// Transcription turns voice attachments into text replies carrying the
// delete and download reaction affordances.
type Transcription struct {
	logger      *slog.Logger
	transport   channel.Transport
	fetcher     channel.Fetcher
	staging     *staging.Dir
	transcriber transcribe.Transcriber
}

// NewTranscription creates the transcription pipeline.
func NewTranscription(log *slog.Logger, transport channel.Transport, fetcher channel.Fetcher, dir *staging.Dir, transcriber transcribe.Transcriber) *Transcription {
	if log == nil {
		log = slog.Default()
	}
	return &Transcription{
		logger:      log.With(slog.String("service", "transcription")),
		transport:   transport,
		fetcher:     fetcher,
		staging:     dir,
		transcriber: transcriber,
	}
}

// HandleMessage transcribes every voice attachment on the message. Failures
// are logged with the full error and otherwise dropped silently; the user
// sees nothing on a failed transcription.
func (p *Transcription) HandleMessage(ctx context.Context, msg *channel.Message) {
	for _, att := range msg.Attachments {
		if !att.IsVoiceMessage() {
			continue
		}
		if err := p.transcribeAttachment(ctx, msg, att); err != nil {
			p.logger.Error("transcription failed",
				slog.String("message_id", msg.ID),
				slog.Any("error", err),
			)
		}
	}
}

func (p *Transcription) transcribeAttachment(ctx context.Context, msg *channel.Message, att channel.Attachment) error {
	data, err := p.fetcher.Fetch(ctx, att.URL)
	if err != nil {
		return fmt.Errorf("fetch attachment: %w", err)
	}

	path := p.staging.MessageFile(msg.ID, att.Filename)
	release, err := p.staging.Stage(path, data)
	if err != nil {
		return fmt.Errorf("stage attachment: %w", err)
	}
	defer release()

	start := time.Now()
	text, err := p.transcriber.Transcribe(ctx, path)
	if err != nil {
		return fmt.Errorf("transcribe: %w", err)
	}
	p.logger.Info("transcribed voice message",
		slog.String("message_id", msg.ID),
		slog.Duration("elapsed", time.Since(start)),
	)

	reply, err := p.formatReply(ctx, msg, text)
	if err != nil {
		return err
	}

	posted, err := p.transport.Reply(ctx, msg.ChannelID, msg.ID, reply)
	if err != nil {
		return fmt.Errorf("post reply: %w", err)
	}
	if err := p.transport.React(ctx, posted.ChannelID, posted.ID, trigger.DeleteEmoji); err != nil {
		return fmt.Errorf("add delete reaction: %w", err)
	}
	if err := p.transport.React(ctx, posted.ChannelID, posted.ID, trigger.DownloadEmoji); err != nil {
		return fmt.Errorf("add download reaction: %w", err)
	}
	return nil
}

// formatReply renders the transcript: inside a guild the author's live
// display name leads the text; elsewhere the trimmed transcript stands
// alone.
func (p *Transcription) formatReply(ctx context.Context, msg *channel.Message, text string) (string, error) {
	text = strings.TrimSpace(text)
	if !msg.InGuild() {
		return text, nil
	}
	name, err := p.transport.MemberDisplayName(ctx, msg.GuildID, msg.Author.ID)
	if err != nil {
		return "", fmt.Errorf("resolve display name: %w", err)
	}
	return fmt.Sprintf("**%s**: %s", name, text), nil
}
