package ingest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/dd0wney/infragraph/pkg/connectors"
	"github.com/dd0wney/infragraph/pkg/logging"
	"github.com/dd0wney/infragraph/pkg/metrics"
	"github.com/dd0wney/infragraph/pkg/model"
	"github.com/dd0wney/infragraph/pkg/storage"
)

// RunReport summarizes one full ingestion pass over the data directory.
type RunReport struct {
	FilesSeen    int
	FilesMatched int
	FilesSkipped []string // no connector claimed any document
	Merge        MergeResult
	Errors       []string // per-file parse failures; the pass continues
}

// Runner re-parses everything in a data directory and merges the results.
// One invocation is one ingestion pass; the watcher debounces change
// notifications into these passes.
type Runner struct {
	dataDir  string
	registry *connectors.Registry
	merger   *Merger
	store    *storage.GraphStore
	logger   logging.Logger
	metrics  *metrics.Registry
}

// NewRunner creates a runner over dataDir using the given connector
// registry and merger.
func NewRunner(dataDir string, registry *connectors.Registry, merger *Merger, store *storage.GraphStore, logger logging.Logger, registryMetrics *metrics.Registry) *Runner {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Runner{
		dataDir:  dataDir,
		registry: registry,
		merger:   merger,
		store:    store,
		logger:   logger.With(logging.Component("ingest")),
		metrics:  registryMetrics,
	}
}

// Run executes one ingestion pass: every *.yml / *.yaml file in the data
// directory is decoded (multi-document files supported), dispatched to the
// first matching connector, and the per-file batches merged into the
// store. Unparseable files are reported and skipped; a store-level failure
// aborts the pass so the next change notification can retry.
func (r *Runner) Run(ctx context.Context) (RunReport, error) {
	start := time.Now()
	report := RunReport{}

	files, err := r.listFiles()
	if err != nil {
		r.recordRun("error", start)
		return report, err
	}

	for _, path := range files {
		if ctx.Err() != nil {
			r.recordRun("canceled", start)
			return report, ctx.Err()
		}
		report.FilesSeen++

		name := filepath.Base(path)
		batch, matched, err := r.parseFile(path)
		if err != nil {
			report.Errors = append(report.Errors, fmt.Sprintf("%s: %v", name, err))
			r.logger.Warn("failed to parse file", logging.Source(name), logging.Error(err))
			continue
		}
		if !matched {
			report.FilesSkipped = append(report.FilesSkipped, name)
			r.logger.Info("no matching connector", logging.Source(name))
			continue
		}
		report.FilesMatched++

		result, err := r.merger.Merge(batch)
		report.Merge.merge(result)
		if err != nil {
			// Store-level failure: surface to the caller, never crash the
			// ingestion loop.
			r.recordRun("error", start)
			return report, err
		}
	}

	r.recordRun("ok", start)
	r.logger.Info("ingestion pass complete",
		logging.Int("files", report.FilesSeen),
		logging.Int("matched", report.FilesMatched),
		logging.Int("nodes_created", report.Merge.NodesCreated),
		logging.Int("edges_created", report.Merge.EdgesCreated),
		logging.Int("skipped", len(report.Merge.Skipped)),
		logging.Latency(time.Since(start)),
	)
	return report, nil
}

// RunWithRetry runs an ingestion pass, retrying with linear backoff while
// the store reports unavailable. Used at startup, where the first connect
// may race store initialization.
func (r *Runner) RunWithRetry(ctx context.Context, attempts int, backoff time.Duration) (RunReport, error) {
	var report RunReport
	var err error

	for attempt := 1; attempt <= attempts; attempt++ {
		report, err = r.Run(ctx)
		if err == nil || !storage.IsUnavailable(err) {
			return report, err
		}

		r.logger.Warn("store unavailable, retrying ingestion",
			logging.Int("attempt", attempt),
			logging.Error(err),
		)
		select {
		case <-ctx.Done():
			return report, ctx.Err()
		case <-time.After(backoff * time.Duration(attempt)):
		}
	}
	return report, err
}

func (r *Runner) listFiles() ([]string, error) {
	var files []string
	for _, pattern := range []string{"*.yml", "*.yaml"} {
		matches, err := filepath.Glob(filepath.Join(r.dataDir, pattern))
		if err != nil {
			return nil, err
		}
		files = append(files, matches...)
	}
	sort.Strings(files)
	return files, nil
}

// parseFile decodes every YAML document in the file and combines the
// matched connectors' output into one batch: the file is the unit of
// merge. matched is false when no document was claimed by any connector.
func (r *Runner) parseFile(path string) (model.FactBatch, bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return model.FactBatch{}, false, err
	}
	defer f.Close()

	name := filepath.Base(path)
	batch := model.FactBatch{Source: name}
	matched := false

	decoder := yaml.NewDecoder(f)
	for {
		var doc map[string]any
		if err := decoder.Decode(&doc); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return model.FactBatch{}, false, err
		}
		if doc == nil {
			continue
		}

		connector := r.registry.Match(name, doc)
		if connector == nil {
			continue
		}

		parsed, err := connector.Parse(doc)
		if err != nil {
			return model.FactBatch{}, false, err
		}

		batch.Nodes = append(batch.Nodes, parsed.Nodes...)
		batch.Edges = append(batch.Edges, parsed.Edges...)
		matched = true
		r.logger.Debug("document parsed",
			logging.Source(name),
			logging.Connector(connector.Name()),
			logging.Int("nodes", len(parsed.Nodes)),
			logging.Int("edges", len(parsed.Edges)),
		)
	}

	return batch, matched, nil
}

func (r *Runner) recordRun(status string, start time.Time) {
	if r.metrics == nil {
		return
	}
	stats := r.store.Statistics()
	r.metrics.RecordIngest(status, time.Since(start), stats.NodeCount, stats.EdgeCount)
}
