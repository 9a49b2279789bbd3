package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"log/slog"
	"time"

	"github.com/vocalishq/vocalis/internal/caption"
	"github.com/vocalishq/vocalis/internal/channel"
	"github.com/vocalishq/vocalis/internal/imaging"
	"github.com/vocalishq/vocalis/internal/staging"
	"github.com/vocalishq/vocalis/internal/trigger"
)

// CaptionerDisabledNotice is the fixed reply for caption requests while the
// captioning collaborator is not loaded.
const CaptionerDisabledNotice = "Sorry, image descriptions are not available right now. " +
	"The captioning model was not loaded when the bot started. " +
	"Please ask the bot administrator to set `captioner.enabled` in the config and restart to enable this feature."

// ImageAction runs invert and caption actions against extracted images.
type ImageAction struct {
	logger    *slog.Logger
	transport channel.Transport
	staging   *staging.Dir
	captioner caption.Captioner // nil when captioning is disabled
}

// NewImageAction creates the image pipeline. Pass a nil captioner when the
// collaborator is disabled at startup.
func NewImageAction(log *slog.Logger, transport channel.Transport, dir *staging.Dir, captioner caption.Captioner) *ImageAction {
	if log == nil {
		log = slog.Default()
	}
	return &ImageAction{
		logger:    log.With(slog.String("service", "imageaction")),
		transport: transport,
		staging:   dir,
		captioner: captioner,
	}
}

// Invert posts an inverted copy of img to the message's channel. The staged
// PNG is removed on every exit path.
func (p *ImageAction) Invert(ctx context.Context, img image.Image, msg *channel.Message) error {
	inverted := imaging.Invert(img)

	var buf bytes.Buffer
	if err := imaging.EncodePNG(&buf, inverted); err != nil {
		return err
	}

	path := p.staging.InvertedImage(msg.ID)
	release, err := p.staging.Stage(path, buf.Bytes())
	if err != nil {
		return fmt.Errorf("stage inverted image: %w", err)
	}
	defer release()

	if err := p.transport.SendFile(ctx, msg.ChannelID, path); err != nil {
		return fmt.Errorf("send inverted image: %w", err)
	}
	return nil
}

// Caption replies to msg with a model-generated caption and attaches the
// delete affordance. Without a loaded captioner it posts the fixed
// remediation notice instead; that path never touches a collaborator.
func (p *ImageAction) Caption(ctx context.Context, img image.Image, msg *channel.Message) error {
	if p.captioner == nil {
		if err := p.transport.SendText(ctx, msg.ChannelID, CaptionerDisabledNotice); err != nil {
			return fmt.Errorf("send disabled notice: %w", err)
		}
		return nil
	}

	start := time.Now()
	text, err := p.captioner.Caption(ctx, img)
	if err != nil {
		return fmt.Errorf("caption: %w", err)
	}
	p.logger.Info("captioned image",
		slog.String("message_id", msg.ID),
		slog.Duration("elapsed", time.Since(start)),
	)

	posted, err := p.transport.Reply(ctx, msg.ChannelID, msg.ID, text)
	if err != nil {
		return fmt.Errorf("post caption: %w", err)
	}
	if err := p.transport.React(ctx, posted.ChannelID, posted.ID, trigger.DeleteEmoji); err != nil {
		return fmt.Errorf("add delete reaction: %w", err)
	}
	return nil
}
