package pipeline

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vocalishq/vocalis/internal/audio"
	"github.com/vocalishq/vocalis/internal/channel"
)

// fakeConverter writes the converted file next to the source the way the
// real ffmpeg invocation does.
type fakeConverter struct {
	t   *testing.T
	err error

	srcs []string
}

func (f *fakeConverter) Convert(_ context.Context, srcPath string) (string, error) {
	f.srcs = append(f.srcs, srcPath)
	if f.err != nil {
		return "", f.err
	}
	_, err := os.Stat(srcPath)
	require.NoError(f.t, err, "source must exist while converting")
	dstPath := audio.ConvertedPath(srcPath, "mp3")
	require.NoError(f.t, os.WriteFile(dstPath, []byte("mp3 data"), 0o600))
	return dstPath, nil
}

func originalVoice() *channel.Message {
	return &channel.Message{
		ID:        "m-orig",
		ChannelID: "c1",
		Author:    channel.Identity{ID: "u-bob"},
		Attachments: []channel.Attachment{{
			Filename:    channel.VoiceMessageFilename,
			ContentType: "audio/ogg",
			URL:         "https://cdn/voice.ogg",
		}},
	}
}

func TestDownloadSendsConvertedFile(t *testing.T) {
	transport := newFakeTransport()
	fetcher := &fakeFetcher{payloads: map[string][]byte{"https://cdn/voice.ogg": []byte("OggS")}}
	dir := newTestStaging(t)
	converter := &fakeConverter{t: t}

	p := NewDownload(nil, transport, fetcher, dir, converter)
	require.NoError(t, p.Handle(context.Background(), "c1", originalVoice()))

	require.Len(t, transport.files, 1)
	assert.Equal(t, dir.MessageFile("m-orig", "voice-message.mp3"), transport.files[0].path)
	assert.True(t, transport.files[0].existed, "converted file must exist while sending")

	// Both the source and the converted file are gone afterwards.
	assert.Equal(t, 0, stagingEntries(t, dir))
}

func TestDownloadNoAttachment(t *testing.T) {
	transport := newFakeTransport()
	dir := newTestStaging(t)
	p := NewDownload(nil, transport, &fakeFetcher{}, dir, &fakeConverter{t: t})

	err := p.Handle(context.Background(), "c1", &channel.Message{ID: "m-empty", ChannelID: "c1"})
	assert.ErrorIs(t, err, ErrNoAttachment)
	assert.Empty(t, transport.files)
}

func TestDownloadConvertFailureCleansUp(t *testing.T) {
	transport := newFakeTransport()
	fetcher := &fakeFetcher{payloads: map[string][]byte{"https://cdn/voice.ogg": []byte("OggS")}}
	dir := newTestStaging(t)
	converter := &fakeConverter{t: t, err: errors.New("ffmpeg exploded")}

	p := NewDownload(nil, transport, fetcher, dir, converter)
	err := p.Handle(context.Background(), "c1", originalVoice())
	require.Error(t, err)

	assert.Empty(t, transport.files)
	assert.Equal(t, 0, stagingEntries(t, dir))
}

func TestDownloadSendFailureCleansUp(t *testing.T) {
	transport := newFakeTransport()
	transport.sendErr = errors.New("upload rejected")
	fetcher := &fakeFetcher{payloads: map[string][]byte{"https://cdn/voice.ogg": []byte("OggS")}}
	dir := newTestStaging(t)

	p := NewDownload(nil, transport, fetcher, dir, &fakeConverter{t: t})
	err := p.Handle(context.Background(), "c1", originalVoice())
	require.Error(t, err)
	assert.Equal(t, 0, stagingEntries(t, dir))
}
