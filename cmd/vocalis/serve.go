package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"

	"github.com/vocalishq/vocalis/internal/audio"
	"github.com/vocalishq/vocalis/internal/bot"
	"github.com/vocalishq/vocalis/internal/caption"
	"github.com/vocalishq/vocalis/internal/channel"
	"github.com/vocalishq/vocalis/internal/channel/discord"
	"github.com/vocalishq/vocalis/internal/config"
	"github.com/vocalishq/vocalis/internal/extract"
	"github.com/vocalishq/vocalis/internal/logger"
	"github.com/vocalishq/vocalis/internal/ops"
	"github.com/vocalishq/vocalis/internal/pipeline"
	"github.com/vocalishq/vocalis/internal/router"
	"github.com/vocalishq/vocalis/internal/staging"
	"github.com/vocalishq/vocalis/internal/transcribe"
	"github.com/vocalishq/vocalis/internal/version"
)

func runServe() {
	fx.New(
		fx.Provide(
			provideConfig,
			provideLogger,
			provideAdapter,
			provideTransport,
			provideFetcher,
			provideStagingDir,
			provideJanitor,
			provideTranscriberClient,
			provideTranscriber,
			provideCaptioner,
			provideConverter,
			provideExtractor,
			provideTranscription,
			provideImageAction,
			provideDownload,
			provideRouter,
			provideBot,
			provideOpsServer,
		),
		fx.Invoke(
			startJanitor,
			startOpsServer,
			startBot,
		),
		fx.WithLogger(func(log *slog.Logger) fxevent.Logger {
			return &fxevent.SlogLogger{Logger: log.With(slog.String("component", "fx"))}
		}),
	).Run()
}

func provideConfig() (config.Config, error) {
	cfgPath := os.Getenv("CONFIG_PATH")
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return config.Config{}, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

func provideLogger(cfg config.Config) *slog.Logger {
	logger.Init(cfg.Log.Level, cfg.Log.Format)
	return logger.L
}

func provideAdapter(log *slog.Logger, cfg config.Config) (*discord.Adapter, error) {
	return discord.New(log, cfg.Discord.Token)
}

func provideTransport(adapter *discord.Adapter) channel.Transport {
	return adapter
}

func provideFetcher() channel.Fetcher {
	return channel.NewHTTPFetcher(30 * time.Second)
}

func provideStagingDir(log *slog.Logger, cfg config.Config) (*staging.Dir, error) {
	return staging.New(log, cfg.Staging.Dir)
}

func provideJanitor(log *slog.Logger, dir *staging.Dir, cfg config.Config) *staging.Janitor {
	return staging.NewJanitor(log, dir, cfg.Staging.SweepSpec, cfg.Staging.StagedMaxAge())
}

func provideTranscriberClient(log *slog.Logger, cfg config.Config) *transcribe.Client {
	return transcribe.NewClient(log, cfg.Transcriber.BaseURL, cfg.Transcriber.ModelSize, cfg.Transcriber.Timeout())
}

func provideTranscriber(client *transcribe.Client) transcribe.Transcriber {
	return client
}

func provideCaptioner(log *slog.Logger, cfg config.Config) caption.Captioner {
	if !cfg.Captioner.Enabled {
		log.Info("captioner disabled; caption requests get a remediation notice")
		return nil
	}
	return caption.NewClient(log, cfg.Captioner.BaseURL, cfg.Captioner.Timeout())
}

func provideConverter(log *slog.Logger, cfg config.Config) audio.Converter {
	return audio.NewFFmpegConverter(log, cfg.Converter.FFmpegBinary, cfg.Converter.Format)
}

func provideExtractor(log *slog.Logger, fetcher channel.Fetcher, transport channel.Transport) *extract.Extractor {
	return extract.New(log, fetcher, transport)
}

func provideTranscription(log *slog.Logger, transport channel.Transport, fetcher channel.Fetcher, dir *staging.Dir, transcriber transcribe.Transcriber) *pipeline.Transcription {
	return pipeline.NewTranscription(log, transport, fetcher, dir, transcriber)
}

func provideImageAction(log *slog.Logger, transport channel.Transport, dir *staging.Dir, captioner caption.Captioner) *pipeline.ImageAction {
	return pipeline.NewImageAction(log, transport, dir, captioner)
}

func provideDownload(log *slog.Logger, transport channel.Transport, fetcher channel.Fetcher, dir *staging.Dir, converter audio.Converter) *pipeline.Download {
	return pipeline.NewDownload(log, transport, fetcher, dir, converter)
}

func provideRouter(log *slog.Logger, transport channel.Transport, extractor *extract.Extractor, images *pipeline.ImageAction, download *pipeline.Download, cfg config.Config) *router.Router {
	return router.New(log, transport, extractor, images, download, router.Options{
		AllowSelfImageTriggers: cfg.Images.AllowSelfTrigger,
		ExclusiveImageTriggers: cfg.Images.ExclusiveTriggers,
	})
}

func provideBot(log *slog.Logger, adapter *discord.Adapter, transcription *pipeline.Transcription, reactions *router.Router) *bot.Bot {
	return bot.New(log, adapter, transcription, reactions)
}

func provideOpsServer(log *slog.Logger, cfg config.Config, client *transcribe.Client) *ops.Server {
	return ops.NewServer(log, cfg.Ops.Addr, client, cfg.Captioner.Enabled)
}

func startJanitor(lc fx.Lifecycle, janitor *staging.Janitor) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error { return janitor.Start() },
		OnStop:  func(ctx context.Context) error { janitor.Stop(); return nil },
	})
}

func startOpsServer(lc fx.Lifecycle, log *slog.Logger, srv *ops.Server, shutdowner fx.Shutdowner) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Error("ops server failed", slog.Any("error", err))
					_ = shutdowner.Shutdown()
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			if err := srv.Stop(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("ops server stop: %w", err)
			}
			return nil
		},
	})
}

func startBot(lc fx.Lifecycle, log *slog.Logger, b *bot.Bot, cfg config.Config) {
	fmt.Printf("Starting Vocalis %s\n", version.GetInfo())
	ctx, cancel := context.WithCancel(context.Background())
	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			log.Info("starting bot",
				slog.String("model_size", cfg.Transcriber.ModelSize),
				slog.Bool("captioner_enabled", cfg.Captioner.Enabled),
			)
			return b.Start(ctx)
		},
		OnStop: func(_ context.Context) error {
			cancel()
			return b.Stop()
		},
	})
}
