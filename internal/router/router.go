// Package router classifies inbound reaction events and dispatches them to
// the image, delete, and download actions, enforcing the ownership rules
// that tie the bot's replies back to the users who triggered them.
package router

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/vocalishq/vocalis/internal/channel"
	"github.com/vocalishq/vocalis/internal/extract"
	"github.com/vocalishq/vocalis/internal/pipeline"
	"github.com/vocalishq/vocalis/internal/trigger"
)

// Options pin down the two behaviors that are policy rather than protocol.
type Options struct {
	// AllowSelfImageTriggers lets the bot's own reactions fire image
	// actions. Off by default: the self-filter runs before image dispatch.
	AllowSelfImageTriggers bool
	// ExclusiveImageTriggers makes an emoji matching both image tokens run
	// only the invert action. Off by default: both actions run per image.
	ExclusiveImageTriggers bool
}

// Router is the per-event decision machine. It holds no state across
// events; every branch re-fetches the messages it needs so authorization
// always reflects the platform's current state.
type Router struct {
	logger    *slog.Logger
	transport channel.Transport
	extractor *extract.Extractor
	images    *pipeline.ImageAction
	download  *pipeline.Download
	opts      Options
}

// New creates the router.
func New(log *slog.Logger, transport channel.Transport, extractor *extract.Extractor, images *pipeline.ImageAction, download *pipeline.Download, opts Options) *Router {
	if log == nil {
		log = slog.Default()
	}
	return &Router{
		logger:    log.With(slog.String("service", "router")),
		transport: transport,
		extractor: extractor,
		images:    images,
		download:  download,
		opts:      opts,
	}
}

// HandleReaction runs the fixed decision sequence for one reaction event:
// classify the emoji, run any image actions, apply the self-filter, gate on
// bot authorship, resolve the reply link live, then fire at most one of the
// delete or download actions. Authorization denials are silent no-ops.
func (r *Router) HandleReaction(ctx context.Context, ev channel.ReactionEvent) {
	triggers := trigger.Classify(ev.Emoji)
	if len(triggers) == 0 {
		return
	}

	log := r.logger.With(
		slog.String("event_id", uuid.NewString()),
		slog.String("message_id", ev.MessageID),
		slog.String("user_id", ev.UserID),
	)

	msg, err := r.transport.FetchMessage(ctx, ev.ChannelID, ev.MessageID)
	if err != nil {
		log.Error("fetch reacted message failed", slog.Any("error", err))
		return
	}

	self := ev.UserID != "" && ev.UserID == r.transport.BotUserID()

	wantInvert := trigger.Has(triggers, trigger.Invert)
	wantCaption := trigger.Has(triggers, trigger.Caption)
	if (wantInvert || wantCaption) && (!self || r.opts.AllowSelfImageTriggers) {
		r.runImageActions(ctx, log, msg, wantInvert, wantCaption)
	}

	if self {
		return
	}
	if msg.Author.ID != r.transport.BotUserID() {
		return
	}

	// Delete and download act on the reply chain. The original message is
	// fetched fresh so ownership reflects its present author, not a cached
	// snapshot.
	var original *channel.Message
	if msg.IsReply() {
		original, err = r.transport.FetchMessage(ctx, msg.ChannelID, msg.ReplyToID)
		if err != nil {
			log.Error("fetch replied-to message failed", slog.Any("error", err))
			return
		}
	}

	switch {
	case trigger.Has(triggers, trigger.Delete):
		if original == nil || original.Author.ID != ev.UserID {
			return
		}
		if err := r.transport.Delete(ctx, msg.ChannelID, msg.ID); err != nil {
			log.Error("delete reply failed", slog.Any("error", err))
		}
	case trigger.Has(triggers, trigger.Download):
		if original == nil || original.Author.ID != ev.UserID {
			return
		}
		if err := r.download.Handle(ctx, msg.ChannelID, original); err != nil {
			log.Error("download failed", slog.Any("error", err))
		}
	}
}

// runImageActions walks the extracted image sequence once and applies each
// requested action per image. Action failures are logged and do not abort
// the remaining images.
func (r *Router) runImageActions(ctx context.Context, log *slog.Logger, msg *channel.Message, wantInvert, wantCaption bool) {
	if r.opts.ExclusiveImageTriggers && wantInvert && wantCaption {
		wantCaption = false
	}
	for decoded := range r.extractor.Images(ctx, msg) {
		if wantInvert {
			if err := r.images.Invert(ctx, decoded.Image, msg); err != nil {
				log.Error("invert action failed",
					slog.String("image", decoded.Name),
					slog.Any("error", err),
				)
			}
		}
		if wantCaption {
			if err := r.images.Caption(ctx, decoded.Image, msg); err != nil {
				log.Error("caption action failed",
					slog.String("image", decoded.Name),
					slog.Any("error", err),
				)
			}
		}
	}
}
