package staging

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/robfig/cron/v3"
)

// Janitor periodically removes staged files left behind by a crashed
// handler. Live handlers always release their own files, so anything older
// than maxAge is orphaned.
type Janitor struct {
	logger *slog.Logger
	dir    *Dir
	spec   string
	maxAge time.Duration
	cron   *cron.Cron
}

// NewJanitor creates a janitor sweeping dir on the given cron spec.
func NewJanitor(log *slog.Logger, dir *Dir, spec string, maxAge time.Duration) *Janitor {
	if log == nil {
		log = slog.Default()
	}
	return &Janitor{
		logger: log.With(slog.String("service", "janitor")),
		dir:    dir,
		spec:   spec,
		maxAge: maxAge,
	}
}

// Start schedules the sweep.
func (j *Janitor) Start() error {
	c := cron.New()
	if _, err := c.AddFunc(j.spec, func() { j.Sweep(time.Now()) }); err != nil {
		return fmt.Errorf("schedule sweep: %w", err)
	}
	c.Start()
	j.cron = c
	return nil
}

// Stop halts the schedule; a sweep already running completes.
func (j *Janitor) Stop() {
	if j.cron != nil {
		j.cron.Stop()
	}
}

// Sweep removes staged files whose modification time is older than maxAge
// relative to now. Returns the number of files removed.
func (j *Janitor) Sweep(now time.Time) int {
	entries, err := os.ReadDir(j.dir.Root())
	if err != nil {
		j.logger.Warn("read staging dir failed", slog.Any("error", err))
		return 0
	}

	cutoff := now.Add(-j.maxAge)
	removed := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().After(cutoff) {
			continue
		}
		path := filepath.Join(j.dir.Root(), entry.Name())
		if err := os.Remove(path); err != nil {
			if !os.IsNotExist(err) {
				j.logger.Warn("remove orphaned file failed", slog.String("path", path), slog.Any("error", err))
			}
			continue
		}
		removed++
	}
	if removed > 0 {
		j.logger.Info("swept orphaned staged files", slog.Int("removed", removed))
	}
	return removed
}
