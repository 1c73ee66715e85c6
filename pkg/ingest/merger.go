// Package ingest applies fact batches to the graph store. Merging is
// additive and idempotent: nothing here ever deletes a node or edge, so
// reconciliation against facts removed from source files is a known gap,
// not an implicit delete-and-recreate.
package ingest

import (
	"errors"

	"github.com/dd0wney/infragraph/pkg/logging"
	"github.com/dd0wney/infragraph/pkg/metrics"
	"github.com/dd0wney/infragraph/pkg/model"
	"github.com/dd0wney/infragraph/pkg/storage"
)

// SkippedItem records one batch item rejected during a merge.
type SkippedItem struct {
	Entity string `json:"entity"` // "node" or "edge"
	ID     string `json:"id"`
	Reason string `json:"reason"`
}

// MergeResult reports what one merge pass did, for observability and for
// the idempotence contract: re-merging an unchanged batch reports zero
// created nodes and edges.
type MergeResult struct {
	Source       string        `json:"source,omitempty"`
	NodesCreated int           `json:"nodes_created"`
	NodesUpdated int           `json:"nodes_updated"`
	EdgesCreated int           `json:"edges_created"`
	EdgesUpdated int           `json:"edges_updated"`
	Skipped      []SkippedItem `json:"skipped,omitempty"`
}

// Merge folds another result into this one.
func (r *MergeResult) merge(other MergeResult) {
	r.NodesCreated += other.NodesCreated
	r.NodesUpdated += other.NodesUpdated
	r.EdgesCreated += other.EdgesCreated
	r.EdgesUpdated += other.EdgesUpdated
	r.Skipped = append(r.Skipped, other.Skipped...)
}

// Merger is the upsert engine: it merges fact batches into the store
// without creating duplicates and without deleting anything.
type Merger struct {
	store   *storage.GraphStore
	logger  logging.Logger
	metrics *metrics.Registry
}

// NewMerger creates a merger over the given store. logger and registry may
// be nil.
func NewMerger(store *storage.GraphStore, logger logging.Logger, registry *metrics.Registry) *Merger {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Merger{
		store:   store,
		logger:  logger.With(logging.Component("ingest")),
		metrics: registry,
	}
}

// Merge applies one fact batch as a single unit against the store. Nodes
// are applied before edges, so edges may precede their endpoints'
// declarations within the batch; resolution is by id, not ordering.
//
// A malformed item is skipped, logged and reported in the result; the rest
// of the batch proceeds. Only a store-level failure (e.g. the store is
// closed) aborts the merge, and that error is returned for the caller to
// retry on the next change notification.
func (m *Merger) Merge(batch model.FactBatch) (MergeResult, error) {
	result := MergeResult{Source: batch.Source}

	err := m.store.Write(func(tx *storage.WriteTx) error {
		for _, node := range batch.Nodes {
			if node != nil && node.Source == "" {
				stamped := *node
				stamped.Source = batch.Source
				node = &stamped
			}
			created, err := tx.UpsertNode(node)
			if err != nil {
				if !skippable(err) {
					return err
				}
				result.Skipped = append(result.Skipped, skippedNode(node, err))
				m.logger.Warn("skipping invalid node", logging.Source(batch.Source), logging.Error(err))
				continue
			}
			if created {
				result.NodesCreated++
			} else {
				result.NodesUpdated++
			}
		}

		for _, edge := range batch.Edges {
			created, err := tx.UpsertEdge(edge)
			if err != nil {
				if !skippable(err) {
					return err
				}
				result.Skipped = append(result.Skipped, skippedEdge(edge, err))
				m.logger.Warn("skipping invalid edge", logging.Source(batch.Source), logging.Error(err))
				continue
			}
			if created {
				result.EdgesCreated++
			} else {
				result.EdgesUpdated++
			}
		}
		return nil
	})
	if err != nil {
		return result, err
	}

	m.recordMetrics(result)
	return result, nil
}

// skippable distinguishes per-item failures, which partial-batch semantics
// tolerate, from store-level failures, which abort the merge.
func skippable(err error) bool {
	return model.IsValidation(err) ||
		errors.Is(err, storage.ErrTypeConflict) ||
		errors.Is(err, storage.ErrEndpointMissing)
}

func skippedNode(node *model.Node, err error) SkippedItem {
	item := SkippedItem{Entity: "node", Reason: skipReason(err)}
	if node != nil {
		item.ID = node.ID
	}
	return item
}

func skippedEdge(edge *model.Edge, err error) SkippedItem {
	item := SkippedItem{Entity: "edge", Reason: skipReason(err)}
	if edge != nil {
		item.ID = edge.Key().String()
	}
	return item
}

func skipReason(err error) string {
	switch {
	case errors.Is(err, storage.ErrEndpointMissing):
		return "unknown endpoint"
	case errors.Is(err, storage.ErrTypeConflict):
		return "type conflict"
	case model.IsValidation(err):
		return "validation"
	default:
		return err.Error()
	}
}

func (m *Merger) recordMetrics(result MergeResult) {
	if m.metrics == nil {
		return
	}
	m.metrics.NodesUpsertedTotal.WithLabelValues("created").Add(float64(result.NodesCreated))
	m.metrics.NodesUpsertedTotal.WithLabelValues("updated").Add(float64(result.NodesUpdated))
	m.metrics.EdgesUpsertedTotal.WithLabelValues("created").Add(float64(result.EdgesCreated))
	m.metrics.EdgesUpsertedTotal.WithLabelValues("updated").Add(float64(result.EdgesUpdated))
	for _, item := range result.Skipped {
		m.metrics.BatchItemsSkipped.WithLabelValues(item.Reason).Inc()
	}
}
