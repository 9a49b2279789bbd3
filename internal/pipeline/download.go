package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/vocalishq/vocalis/internal/audio"
	"github.com/vocalishq/vocalis/internal/channel"
	"github.com/vocalishq/vocalis/internal/staging"
)

// Download stages the original voice recording, converts it to the
// distribution format, and sends the converted file to the channel. Both
// the source and the converted temp files are removed before returning.
type Download struct {
	logger    *slog.Logger
	transport channel.Transport
	fetcher   channel.Fetcher
	staging   *staging.Dir
	converter audio.Converter
}

// NewDownload creates the download pipeline.
func NewDownload(log *slog.Logger, transport channel.Transport, fetcher channel.Fetcher, dir *staging.Dir, converter audio.Converter) *Download {
	if log == nil {
		log = slog.Default()
	}
	return &Download{
		logger:    log.With(slog.String("service", "download")),
		transport: transport,
		fetcher:   fetcher,
		staging:   dir,
		converter: converter,
	}
}

// Handle converts and sends the first attachment of the original message.
func (p *Download) Handle(ctx context.Context, channelID string, original *channel.Message) error {
	if len(original.Attachments) == 0 {
		return ErrNoAttachment
	}
	att := original.Attachments[0]

	data, err := p.fetcher.Fetch(ctx, att.URL)
	if err != nil {
		return fmt.Errorf("fetch attachment: %w", err)
	}

	srcPath := p.staging.MessageFile(original.ID, att.Filename)
	releaseSrc, err := p.staging.Stage(srcPath, data)
	if err != nil {
		return fmt.Errorf("stage attachment: %w", err)
	}
	defer releaseSrc()

	dstPath, err := p.converter.Convert(ctx, srcPath)
	if err != nil {
		return fmt.Errorf("convert audio: %w", err)
	}
	defer p.staging.Release(dstPath)()

	if err := p.transport.SendFile(ctx, channelID, dstPath); err != nil {
		return fmt.Errorf("send converted file: %w", err)
	}
	return nil
}
