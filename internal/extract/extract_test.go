package extract

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vocalishq/vocalis/internal/channel"
)

type fakeFetcher struct {
	payloads map[string][]byte
	calls    []string
}

func (f *fakeFetcher) Fetch(_ context.Context, url string) ([]byte, error) {
	f.calls = append(f.calls, url)
	data, ok := f.payloads[url]
	if !ok {
		return nil, errors.New("fetch failed")
	}
	return data, nil
}

type fakeNotifier struct {
	texts []string
}

func (n *fakeNotifier) SendText(_ context.Context, _, text string) error {
	n.texts = append(n.texts, text)
	return nil
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, h))))
	return buf.Bytes()
}

func collect(e *Extractor, msg *channel.Message) []Decoded {
	var out []Decoded
	for decoded := range e.Images(context.Background(), msg) {
		out = append(out, decoded)
	}
	return out
}

func TestImagesOrdersEmbedsBeforeAttachments(t *testing.T) {
	fetcher := &fakeFetcher{payloads: map[string][]byte{
		"https://cdn/embed.png": pngBytes(t, 2, 2),
		"https://cdn/photo.png": pngBytes(t, 4, 4),
	}}
	notifier := &fakeNotifier{}
	e := New(nil, fetcher, notifier)

	msg := &channel.Message{
		ID:        "m1",
		ChannelID: "c1",
		Embeds:    []channel.Embed{{ImageURL: "https://cdn/embed.png"}},
		Attachments: []channel.Attachment{
			{Filename: "photo.png", ContentType: "image/png", URL: "https://cdn/photo.png"},
			{Filename: "voice-message.ogg", ContentType: "audio/ogg", URL: "https://cdn/voice.ogg"},
		},
	}

	got := collect(e, msg)
	require.Len(t, got, 2)
	assert.Equal(t, SourceEmbed, got[0].Source)
	assert.Equal(t, "embed.png", got[0].Name)
	assert.Equal(t, SourceAttachment, got[1].Source)
	assert.Equal(t, "photo.png", got[1].Name)
	assert.Empty(t, notifier.texts)

	// Non-image attachments are never fetched.
	assert.NotContains(t, fetcher.calls, "https://cdn/voice.ogg")
}

func TestImagesThumbnailFallback(t *testing.T) {
	fetcher := &fakeFetcher{payloads: map[string][]byte{
		"https://cdn/thumb.png": pngBytes(t, 1, 1),
	}}
	e := New(nil, fetcher, &fakeNotifier{})

	msg := &channel.Message{
		ID:        "m2",
		ChannelID: "c1",
		Embeds:    []channel.Embed{{ThumbnailURL: "https://cdn/thumb.png"}},
	}

	got := collect(e, msg)
	require.Len(t, got, 1)
	assert.Equal(t, SourceEmbed, got[0].Source)
}

func TestImagesReportsEmbedWithoutReference(t *testing.T) {
	fetcher := &fakeFetcher{payloads: map[string][]byte{
		"https://cdn/photo.png": pngBytes(t, 2, 2),
	}}
	notifier := &fakeNotifier{}
	e := New(nil, fetcher, notifier)

	msg := &channel.Message{
		ID:        "m3",
		ChannelID: "c1",
		Embeds:    []channel.Embed{{}},
		Attachments: []channel.Attachment{
			{Filename: "photo.png", ContentType: "image/png", URL: "https://cdn/photo.png"},
		},
	}

	// The addressless embed fails with the embed notice but does not stop
	// the attachment that follows.
	got := collect(e, msg)
	require.Len(t, got, 1)
	assert.Equal(t, "photo.png", got[0].Name)

	require.Len(t, notifier.texts, 1)
	assert.Equal(t, embedFetchNotice, notifier.texts[0])
	assert.Equal(t, []string{"https://cdn/photo.png"}, fetcher.calls)
}

func TestImagesReportsFailureAndContinues(t *testing.T) {
	fetcher := &fakeFetcher{payloads: map[string][]byte{
		"https://cdn/good.png": pngBytes(t, 2, 2),
		"https://cdn/junk.png": []byte("not an image"),
	}}
	notifier := &fakeNotifier{}
	e := New(nil, fetcher, notifier)

	msg := &channel.Message{
		ID:        "m4",
		ChannelID: "c1",
		Embeds:    []channel.Embed{{ImageURL: "https://cdn/missing.png"}},
		Attachments: []channel.Attachment{
			{Filename: "junk.png", ContentType: "image/png", URL: "https://cdn/junk.png"},
			{Filename: "good.png", ContentType: "image/png", URL: "https://cdn/good.png"},
		},
	}

	got := collect(e, msg)
	require.Len(t, got, 1)
	assert.Equal(t, "good.png", got[0].Name)

	require.Len(t, notifier.texts, 2)
	assert.Equal(t, embedFetchNotice, notifier.texts[0])
	assert.Equal(t, attachmentFetchNotice, notifier.texts[1])
}

func TestImagesSequenceIsRestartable(t *testing.T) {
	fetcher := &fakeFetcher{payloads: map[string][]byte{
		"https://cdn/a.png": pngBytes(t, 2, 2),
	}}
	e := New(nil, fetcher, &fakeNotifier{})

	msg := &channel.Message{
		ID:          "m5",
		ChannelID:   "c1",
		Attachments: []channel.Attachment{{Filename: "a.png", ContentType: "image/png", URL: "https://cdn/a.png"}},
	}

	seq := e.Images(context.Background(), msg)
	first := 0
	for range seq {
		first++
	}
	second := 0
	for range seq {
		second++
	}
	assert.Equal(t, 1, first)
	assert.Equal(t, first, second)
}

func TestNameFromURL(t *testing.T) {
	assert.Equal(t, "img.png", nameFromURL("https://cdn.example/a/b/img.png?ex=123&sig=abc"))
	assert.Equal(t, "img.png", nameFromURL("https://cdn.example/img.png#frag"))
	assert.Equal(t, "img.png", nameFromURL("https://cdn.example/img.png"))
}
