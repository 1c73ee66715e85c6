// Package watch keeps the graph in sync with the data directory. File
// change notifications are debounced into full ingestion passes, so a
// burst of editor saves produces one re-merge instead of many.
package watch

import (
	"context"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/dd0wney/infragraph/pkg/ingest"
	"github.com/dd0wney/infragraph/pkg/logging"
	"github.com/dd0wney/infragraph/pkg/metrics"
)

// DefaultQuietPeriod is how long the directory must stay quiet before a
// pending change triggers an ingestion pass.
const DefaultQuietPeriod = 1500 * time.Millisecond

// Options configures a Watcher.
type Options struct {
	// QuietPeriod overrides DefaultQuietPeriod when positive.
	QuietPeriod time.Duration
}

// Watcher observes a data directory and re-runs ingestion after changes
// settle. A change while a pass is already pending extends the quiet
// period instead of queueing a second pass.
type Watcher struct {
	dataDir string
	runner  *ingest.Runner
	quiet   time.Duration
	logger  logging.Logger
	metrics *metrics.Registry

	fw       *fsnotify.Watcher
	done     chan struct{}
	stopOnce sync.Once
}

// New creates a watcher over dataDir that triggers runner after changes
// settle. logger and registry may be nil.
func New(dataDir string, runner *ingest.Runner, opts Options, logger logging.Logger, registry *metrics.Registry) (*Watcher, error) {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	quiet := opts.QuietPeriod
	if quiet <= 0 {
		quiet = DefaultQuietPeriod
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fw.Add(dataDir); err != nil {
		fw.Close()
		return nil, err
	}

	return &Watcher{
		dataDir: dataDir,
		runner:  runner,
		quiet:   quiet,
		logger:  logger.With(logging.Component("watch")),
		metrics: registry,
		fw:      fw,
		done:    make(chan struct{}),
	}, nil
}

// Run blocks, processing change events until the context is canceled or
// Stop is called. Ingestion failures are logged and the loop keeps
// running; the next change retries naturally.
func (w *Watcher) Run(ctx context.Context) error {
	w.logger.Info("watching data directory",
		logging.String("dir", w.dataDir),
		logging.Duration("quiet_period", w.quiet),
	)

	var timer *time.Timer
	var timerC <-chan time.Time

	arm := func() {
		if timer == nil {
			timer = time.NewTimer(w.quiet)
			timerC = timer.C
			return
		}
		// A pass was already pending; this change folds into it.
		timer.Reset(w.quiet)
		if w.metrics != nil {
			w.metrics.WatcherRunsDebounced.Inc()
		}
	}

	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-w.done:
			return nil

		case event, ok := <-w.fw.Events:
			if !ok {
				return nil
			}
			if !relevant(event) {
				continue
			}
			if w.metrics != nil {
				w.metrics.WatcherEventsTotal.Inc()
			}
			w.logger.Debug("change detected",
				logging.String("file", filepath.Base(event.Name)),
				logging.Operation(event.Op.String()),
			)
			arm()

		case err, ok := <-w.fw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watch error", logging.Error(err))

		case <-timerC:
			timer = nil
			timerC = nil
			w.ingest(ctx)
		}
	}
}

// Stop terminates the watch loop. Safe to call more than once.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.done)
		w.fw.Close()
	})
}

func (w *Watcher) ingest(ctx context.Context) {
	report, err := w.runner.Run(ctx)
	if err != nil {
		w.logger.Error("ingestion pass failed", logging.Error(err))
		return
	}
	w.logger.Info("graph refreshed",
		logging.Int("files", report.FilesSeen),
		logging.Int("nodes_created", report.Merge.NodesCreated),
		logging.Int("nodes_updated", report.Merge.NodesUpdated),
		logging.Int("edges_created", report.Merge.EdgesCreated),
		logging.Count(len(report.Merge.Skipped)),
	)
}

// relevant reports whether the event concerns a YAML file we ingest.
// Chmod-only events are noise on some platforms and never change content.
func relevant(event fsnotify.Event) bool {
	if event.Op == fsnotify.Chmod {
		return false
	}
	ext := strings.ToLower(filepath.Ext(event.Name))
	return ext == ".yml" || ext == ".yaml"
}
