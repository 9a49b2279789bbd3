// Package audio defines the audio-format conversion collaborator.
package audio

import (
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

// Converter transcodes a staged audio file into a distribution-friendly
// format and returns the path of the converted file.
type Converter interface {
	Convert(ctx context.Context, srcPath string) (string, error)
}

// FFmpegConverter shells out to ffmpeg for the transcode.
type FFmpegConverter struct {
	logger *slog.Logger
	binary string
	format string
}

// NewFFmpegConverter creates a converter. Binary defaults to "ffmpeg" on
// PATH; format defaults to "mp3".
func NewFFmpegConverter(log *slog.Logger, binary, format string) *FFmpegConverter {
	if log == nil {
		log = slog.Default()
	}
	if binary == "" {
		binary = "ffmpeg"
	}
	if format == "" {
		format = "mp3"
	}
	return &FFmpegConverter{
		logger: log.With(slog.String("service", "convert")),
		binary: binary,
		format: format,
	}
}

// Convert transcodes srcPath next to itself, swapping the extension for the
// target format. The caller owns removal of both files.
func (c *FFmpegConverter) Convert(ctx context.Context, srcPath string) (string, error) {
	dstPath := ConvertedPath(srcPath, c.format)

	start := time.Now()
	cmd := exec.CommandContext(ctx, c.binary, buildArgs(srcPath, dstPath)...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("ffmpeg: %w: %s", err, strings.TrimSpace(string(output)))
	}
	c.logger.Info("converted audio",
		slog.String("src", srcPath),
		slog.String("dst", dstPath),
		slog.Duration("elapsed", time.Since(start)),
	)
	return dstPath, nil
}

func buildArgs(srcPath, dstPath string) []string {
	return []string{"-y", "-i", srcPath, "-loglevel", "error", dstPath}
}

// ConvertedPath returns srcPath with its extension replaced by format.
func ConvertedPath(srcPath, format string) string {
	ext := filepath.Ext(srcPath)
	return strings.TrimSuffix(srcPath, ext) + "." + format
}
