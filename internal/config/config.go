package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

const (
	DefaultConfigPath     = "config.toml"
	DefaultEnvPath        = "vocalis.env"
	DefaultOpsAddr        = ":8090"
	DefaultModelSize      = "base"
	DefaultTranscriberURL = "http://127.0.0.1:9000"
	DefaultCaptionerURL   = "http://127.0.0.1:9001"
	DefaultFFmpegBinary   = "ffmpeg"
	DefaultDownloadFormat = "mp3"
	DefaultSweepSpec      = "@every 10m"
	DefaultStagedMaxAge   = 30 * time.Minute

	// EnvBotToken overrides discord.token; it is the usual way to supply
	// the secret, optionally via the dotenv file at DefaultEnvPath.
	EnvBotToken = "DISCORD_BOT_TOKEN"
)

type Config struct {
	Log         LogConfig         `toml:"log"`
	Discord     DiscordConfig     `toml:"discord"`
	Transcriber TranscriberConfig `toml:"transcriber"`
	Captioner   CaptionerConfig   `toml:"captioner"`
	Converter   ConverterConfig   `toml:"converter"`
	Staging     StagingConfig     `toml:"staging"`
	Images      ImagesConfig      `toml:"images"`
	Ops         OpsConfig         `toml:"ops"`
}

type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

type DiscordConfig struct {
	Token string `toml:"token" validate:"required"`
}

type TranscriberConfig struct {
	BaseURL        string `toml:"base_url" validate:"required,url"`
	ModelSize      string `toml:"model_size"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

func (c TranscriberConfig) Timeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return 2 * time.Minute
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// CaptionerConfig controls the optional image-captioning collaborator.
// Caption requests are answered with a remediation notice when disabled.
type CaptionerConfig struct {
	Enabled        bool   `toml:"enabled"`
	BaseURL        string `toml:"base_url" validate:"omitempty,url"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

func (c CaptionerConfig) Timeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return time.Minute
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}

type ConverterConfig struct {
	FFmpegBinary string `toml:"ffmpeg_binary"`
	Format       string `toml:"format"`
}

type StagingConfig struct {
	Dir       string `toml:"dir"`
	SweepSpec string `toml:"sweep_spec"`
	MaxAge    string `toml:"max_age"`
}

func (c StagingConfig) StagedMaxAge() time.Duration {
	d, err := time.ParseDuration(strings.TrimSpace(c.MaxAge))
	if err != nil || d <= 0 {
		return DefaultStagedMaxAge
	}
	return d
}

// ImagesConfig pins down two behaviors the reaction router would otherwise
// have to guess: whether the bot's own reactions may fire image actions,
// and whether an emoji matching both image tokens runs both actions.
type ImagesConfig struct {
	AllowSelfTrigger  bool `toml:"allow_self_trigger"`
	ExclusiveTriggers bool `toml:"exclusive_triggers"`
}

type OpsConfig struct {
	Addr string `toml:"addr"`
}

func Load(path string) (Config, error) {
	cfg := Config{
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Transcriber: TranscriberConfig{
			BaseURL:   DefaultTranscriberURL,
			ModelSize: DefaultModelSize,
		},
		Captioner: CaptionerConfig{
			BaseURL: DefaultCaptionerURL,
		},
		Converter: ConverterConfig{
			FFmpegBinary: DefaultFFmpegBinary,
			Format:       DefaultDownloadFormat,
		},
		Staging: StagingConfig{
			SweepSpec: DefaultSweepSpec,
		},
		Ops: OpsConfig{
			Addr: DefaultOpsAddr,
		},
	}

	if path == "" {
		path = DefaultConfigPath
	}

	if _, err := os.Stat(path); err == nil {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return cfg, fmt.Errorf("decode %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return cfg, err
	}

	// Secrets come from the environment; the dotenv file is optional.
	_ = godotenv.Load(DefaultEnvPath)
	if token := strings.TrimSpace(os.Getenv(EnvBotToken)); token != "" {
		cfg.Discord.Token = token
	}

	if err := validator.New().Struct(cfg); err != nil {
		return cfg, fmt.Errorf("validate config: %w", err)
	}

	return cfg, nil
}
