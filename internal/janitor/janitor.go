// Package janitor periodically removes avatar uploads no user references.
package janitor

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/isdelr/taskflow-be/internal/models"
	"github.com/isdelr/taskflow-be/internal/upload"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

// DefaultMaxAge is how old an unreferenced upload must be before removal.
// Younger files may belong to a request still in flight.
const DefaultMaxAge = time.Hour

// Files lists and deletes stored uploads.
type Files interface {
	Files() ([]upload.File, error)
	Remove(name string) error
}

// Avatars reports which upload names are still referenced.
type Avatars interface {
	AvatarsInUse(ctx context.Context) ([]string, error)
}

// Janitor sweeps the upload directory on a cron schedule.
type Janitor struct {
	files    Files
	avatars  Avatars
	schedule cron.Schedule
	maxAge   time.Duration
	timeout  time.Duration
	now      func() time.Time

	done     chan struct{}
	stopOnce sync.Once
}

// New creates a Janitor running on expr, a standard cron expression or
// descriptor such as "@hourly".
func New(files Files, avatars Avatars, expr string, timeout time.Duration) (*Janitor, error) {
	schedule, err := cron.ParseStandard(expr)
	if err != nil {
		return nil, fmt.Errorf("invalid janitor schedule %q: %w", expr, err)
	}
	return &Janitor{
		files:    files,
		avatars:  avatars,
		schedule: schedule,
		maxAge:   DefaultMaxAge,
		timeout:  timeout,
		now:      time.Now,
		done:     make(chan struct{}),
	}, nil
}

// Run sweeps once, then on every scheduled tick until Stop is called.
func (j *Janitor) Run() {
	log.Info().Msg("Starting upload janitor...")
	j.sweep()

	c := cron.New()
	c.Schedule(j.schedule, cron.FuncJob(j.sweep))
	c.Start()

	<-j.done
	<-c.Stop().Done()
	log.Info().Msg("Stopping upload janitor.")
}

// Stop halts the janitor. Safe to call more than once.
func (j *Janitor) Stop() {
	j.stopOnce.Do(func() { close(j.done) })
}

func (j *Janitor) sweep() {
	ctx := context.Background()
	if j.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, j.timeout)
		defer cancel()
	}
	removed, err := j.Sweep(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Upload janitor sweep failed")
		return
	}
	if removed > 0 {
		log.Info().Int("removed", removed).Msg("Removed unreferenced uploads")
	}
}

// Sweep deletes every unreferenced upload older than the max age and
// returns how many were removed. The default avatar is never touched.
func (j *Janitor) Sweep(ctx context.Context) (int, error) {
	inUse, err := j.avatars.AvatarsInUse(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list avatars in use: %w", err)
	}
	keep := make(map[string]bool, len(inUse)+1)
	keep[models.DefaultAvatar] = true
	for _, name := range inUse {
		keep[name] = true
	}

	files, err := j.files.Files()
	if err != nil {
		return 0, fmt.Errorf("failed to list uploads: %w", err)
	}

	cutoff := j.now().Add(-j.maxAge)
	removed := 0
	for _, f := range files {
		if keep[f.Name] || f.ModTime.After(cutoff) {
			continue
		}
		if err := j.files.Remove(f.Name); err != nil {
			log.Warn().Err(err).Str("file_name", f.Name).Msg("Could not remove unreferenced upload")
			continue
		}
		removed++
	}
	return removed, nil
}
