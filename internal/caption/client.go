package caption

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"image"
	"image/png"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// Client talks to a local captioning model server.
type Client struct {
	logger     *slog.Logger
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a captioning client.
func NewClient(log *slog.Logger, baseURL string, timeout time.Duration) *Client {
	if log == nil {
		log = slog.Default()
	}
	if baseURL == "" {
		baseURL = "http://127.0.0.1:9001"
	}
	if timeout <= 0 {
		timeout = time.Minute
	}
	return &Client{
		logger:     log.With(slog.String("service", "caption")),
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

type captionRequest struct {
	ImageURL string `json:"image_url"`
	Length   string `json:"length"`
}

type captionResponse struct {
	Caption string `json:"caption"`
}

// Caption encodes the image as a PNG data URL and asks the model server for
// a normal-length caption.
func (c *Client) Caption(ctx context.Context, img image.Image) (string, error) {
	var pngBuf bytes.Buffer
	if err := png.Encode(&pngBuf, img); err != nil {
		return "", fmt.Errorf("encode png: %w", err)
	}

	payload, err := json.Marshal(captionRequest{
		ImageURL: "data:image/png;base64," + base64.StdEncoding.EncodeToString(pngBuf.Bytes()),
		Length:   "normal",
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/caption", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("caption request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return "", fmt.Errorf("caption server returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var parsed captionResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	return parsed.Caption, nil
}
