package pipeline

import (
	"context"
	"fmt"
	"image"
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vocalishq/vocalis/internal/channel"
	"github.com/vocalishq/vocalis/internal/staging"
)

type postedReply struct {
	channelID string
	messageID string
	text      string
}

type postedText struct {
	channelID string
	text      string
}

type sentFile struct {
	channelID string
	path      string
	// existed records whether the file was still on disk when the
	// transport was asked to send it.
	existed bool
}

type addedReaction struct {
	channelID string
	messageID string
	emoji     string
}

type fakeTransport struct {
	botID        string
	displayNames map[string]string

	replyErr   error
	sendErr    error
	displayErr error

	replies   []postedReply
	texts     []postedText
	files     []sentFile
	reactions []addedReaction
	deleted   []string

	replySeq int
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{botID: "bot-1", displayNames: map[string]string{}}
}

func (f *fakeTransport) FetchMessage(_ context.Context, _, _ string) (*channel.Message, error) {
	return nil, fmt.Errorf("unexpected FetchMessage")
}

func (f *fakeTransport) Reply(_ context.Context, channelID, messageID, text string) (*channel.Message, error) {
	if f.replyErr != nil {
		return nil, f.replyErr
	}
	f.replies = append(f.replies, postedReply{channelID: channelID, messageID: messageID, text: text})
	f.replySeq++
	return &channel.Message{
		ID:        fmt.Sprintf("reply-%d", f.replySeq),
		ChannelID: channelID,
		Author:    channel.Identity{ID: f.botID, Bot: true},
		ReplyToID: messageID,
	}, nil
}

func (f *fakeTransport) SendText(_ context.Context, channelID, text string) error {
	if f.sendErr != nil {
		return f.sendErr
	}
	f.texts = append(f.texts, postedText{channelID: channelID, text: text})
	return nil
}

func (f *fakeTransport) SendFile(_ context.Context, channelID, path string) error {
	if f.sendErr != nil {
		return f.sendErr
	}
	_, err := os.Stat(path)
	f.files = append(f.files, sentFile{channelID: channelID, path: path, existed: err == nil})
	return nil
}

func (f *fakeTransport) React(_ context.Context, channelID, messageID, emoji string) error {
	f.reactions = append(f.reactions, addedReaction{channelID: channelID, messageID: messageID, emoji: emoji})
	return nil
}

func (f *fakeTransport) Delete(_ context.Context, _, messageID string) error {
	f.deleted = append(f.deleted, messageID)
	return nil
}

func (f *fakeTransport) MemberDisplayName(_ context.Context, _, userID string) (string, error) {
	if f.displayErr != nil {
		return "", f.displayErr
	}
	if name, ok := f.displayNames[userID]; ok {
		return name, nil
	}
	return "", fmt.Errorf("unknown member %s", userID)
}

func (f *fakeTransport) BotUserID() string {
	return f.botID
}

type fakeFetcher struct {
	payloads map[string][]byte
}

func (f *fakeFetcher) Fetch(_ context.Context, url string) ([]byte, error) {
	data, ok := f.payloads[url]
	if !ok {
		return nil, fmt.Errorf("no payload for %s", url)
	}
	return data, nil
}

// fakeTranscriber asserts the staged file exists at transcription time, the
// window in which cleanup must not yet have run.
type fakeTranscriber struct {
	t    *testing.T
	text string
	err  error

	paths []string
}

func (f *fakeTranscriber) Transcribe(_ context.Context, path string) (string, error) {
	f.paths = append(f.paths, path)
	if f.err != nil {
		return "", f.err
	}
	_, err := os.Stat(path)
	require.NoError(f.t, err, "staged file must exist while transcribing")
	return f.text, nil
}

type fakeCaptioner struct {
	text string
	err  error

	calls int
}

func (f *fakeCaptioner) Caption(_ context.Context, _ image.Image) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.text, nil
}

func newTestStaging(t *testing.T) *staging.Dir {
	t.Helper()
	dir, err := staging.New(nil, t.TempDir())
	require.NoError(t, err)
	return dir
}
