// Package extract produces decoded images from a message's attachments and
// link-preview embeds, normalized to a single shape.
package extract

import (
	"bytes"
	"context"
	"errors"
	"image"
	"iter"
	"log/slog"
	"path"
	"strings"

	// Image decoders for the formats the platform serves.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/vocalishq/vocalis/internal/channel"
)

// Source tells which part of the message an image came from.
type Source string

const (
	SourceEmbed      Source = "embed"
	SourceAttachment Source = "attachment"
)

// Decoded is one extracted image.
type Decoded struct {
	Image  image.Image
	Format string
	Source Source
	Name   string
}

const embedFetchNotice = "Uh-oh, it looks like this message has an embedded link but no actual attached images.\n" +
	"I tried to follow the link and download the image, but something went wrong.  :("

const attachmentFetchNotice = "I couldn't download or decode one of the attached images, sorry.  :("

var errNoEmbedImage = errors.New("embed carries no image address")

// Notifier posts user-facing failure notices to a channel. Satisfied by
// channel.Transport.
type Notifier interface {
	SendText(ctx context.Context, channelID, text string) error
}

// Extractor fetches and decodes message images. Per-item failures are
// reported to the originating channel and do not abort the sequence.
type Extractor struct {
	logger   *slog.Logger
	fetcher  channel.Fetcher
	notifier Notifier
}

// New creates an extractor. The notifier is used only for user-facing
// failure notices.
func New(log *slog.Logger, fetcher channel.Fetcher, notifier Notifier) *Extractor {
	if log == nil {
		log = slog.Default()
	}
	return &Extractor{
		logger:   log.With(slog.String("service", "extract")),
		fetcher:  fetcher,
		notifier: notifier,
	}
}

// Images returns a lazy, finite, restartable sequence of decoded images:
// one per embed carrying an image address (primary, falling back to the
// thumbnail) followed by one per attachment with an image content type.
// An embed with neither address is a per-item failure: the channel gets the
// embed notice and the sequence moves on.
func (e *Extractor) Images(ctx context.Context, msg *channel.Message) iter.Seq[Decoded] {
	return func(yield func(Decoded) bool) {
		for _, emb := range msg.Embeds {
			link := emb.ImageReference()
			if link == "" {
				e.reportFailure(ctx, msg, "", errNoEmbedImage, embedFetchNotice)
				continue
			}
			decoded, ok := e.fetchDecode(ctx, msg, link, SourceEmbed, embedFetchNotice)
			if !ok {
				continue
			}
			if !yield(decoded) {
				return
			}
		}
		for _, att := range msg.Attachments {
			if !att.IsImage() {
				continue
			}
			decoded, ok := e.fetchDecode(ctx, msg, att.URL, SourceAttachment, attachmentFetchNotice)
			if !ok {
				continue
			}
			decoded.Name = att.Filename
			if !yield(decoded) {
				return
			}
		}
	}
}

func (e *Extractor) fetchDecode(ctx context.Context, msg *channel.Message, url string, source Source, notice string) (Decoded, bool) {
	data, err := e.fetcher.Fetch(ctx, url)
	if err != nil {
		e.reportFailure(ctx, msg, url, err, notice)
		return Decoded{}, false
	}
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		e.reportFailure(ctx, msg, url, err, notice)
		return Decoded{}, false
	}
	return Decoded{
		Image:  img,
		Format: format,
		Source: source,
		Name:   nameFromURL(url),
	}, true
}

func (e *Extractor) reportFailure(ctx context.Context, msg *channel.Message, url string, err error, notice string) {
	e.logger.Warn("image extraction failed",
		slog.String("message_id", msg.ID),
		slog.String("url", url),
		slog.Any("error", err),
	)
	if sendErr := e.notifier.SendText(ctx, msg.ChannelID, notice); sendErr != nil {
		e.logger.Error("send extraction notice failed", slog.Any("error", sendErr))
	}
}

func nameFromURL(url string) string {
	trimmed := url
	if i := strings.IndexAny(trimmed, "?#"); i >= 0 {
		trimmed = trimmed[:i]
	}
	return path.Base(trimmed)
}
