package pipeline

import (
	"context"
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vocalishq/vocalis/internal/channel"
	"github.com/vocalishq/vocalis/internal/trigger"
)

func testImage() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.SetRGBA(0, 0, color.RGBA{R: 200, G: 100, B: 50, A: 255})
	return img
}

func imageMessage() *channel.Message {
	return &channel.Message{ID: "m-img", ChannelID: "c1", Author: channel.Identity{ID: "u1"}}
}

func TestInvertSendsStagedPNG(t *testing.T) {
	transport := newFakeTransport()
	dir := newTestStaging(t)
	p := NewImageAction(nil, transport, dir, nil)

	require.NoError(t, p.Invert(context.Background(), testImage(), imageMessage()))

	require.Len(t, transport.files, 1)
	assert.Equal(t, "c1", transport.files[0].channelID)
	assert.Equal(t, dir.InvertedImage("m-img"), transport.files[0].path)
	assert.True(t, transport.files[0].existed, "staged png must exist while sending")
	assert.Equal(t, 0, stagingEntries(t, dir))
}

func TestInvertCleansUpOnSendFailure(t *testing.T) {
	transport := newFakeTransport()
	transport.sendErr = errors.New("upload rejected")
	dir := newTestStaging(t)
	p := NewImageAction(nil, transport, dir, nil)

	err := p.Invert(context.Background(), testImage(), imageMessage())
	require.Error(t, err)
	assert.Equal(t, 0, stagingEntries(t, dir))
}

func TestCaptionDisabledNotice(t *testing.T) {
	transport := newFakeTransport()
	dir := newTestStaging(t)
	p := NewImageAction(nil, transport, dir, nil)

	require.NoError(t, p.Caption(context.Background(), testImage(), imageMessage()))

	require.Len(t, transport.texts, 1)
	assert.Equal(t, CaptionerDisabledNotice, transport.texts[0].text)
	assert.Empty(t, transport.replies)
}

func TestCaptionRepliesWithDeleteAffordance(t *testing.T) {
	transport := newFakeTransport()
	dir := newTestStaging(t)
	captioner := &fakeCaptioner{text: "a cat on a keyboard"}
	p := NewImageAction(nil, transport, dir, captioner)

	require.NoError(t, p.Caption(context.Background(), testImage(), imageMessage()))

	require.Len(t, transport.replies, 1)
	assert.Equal(t, "m-img", transport.replies[0].messageID)
	assert.Equal(t, "a cat on a keyboard", transport.replies[0].text)

	require.Len(t, transport.reactions, 1)
	assert.Equal(t, trigger.DeleteEmoji, transport.reactions[0].emoji)
	assert.Equal(t, "reply-1", transport.reactions[0].messageID)
}

func TestCaptionModelFailure(t *testing.T) {
	transport := newFakeTransport()
	dir := newTestStaging(t)
	captioner := &fakeCaptioner{err: errors.New("model timeout")}
	p := NewImageAction(nil, transport, dir, captioner)

	err := p.Caption(context.Background(), testImage(), imageMessage())
	require.Error(t, err)
	assert.Empty(t, transport.replies)
	assert.Empty(t, transport.texts)
}
