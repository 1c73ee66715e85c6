package health

import (
	"fmt"

	"github.com/dd0wney/infragraph/pkg/storage"
)

// StoreCheck reports whether the graph store accepts operations, with
// current graph size as detail.
func StoreCheck(gs *storage.GraphStore) CheckFunc {
	return func() Check {
		if gs.Closed() {
			return Check{Status: StatusUnhealthy, Message: "store is closed"}
		}
		stats := gs.Statistics()
		return Check{
			Status: StatusHealthy,
			Details: map[string]any{
				"nodes":  stats.NodeCount,
				"edges":  stats.EdgeCount,
				"merges": stats.TotalMerges,
			},
		}
	}
}

// IngestCheck reports whether at least one ingestion pass has completed.
// An empty data directory still counts: a completed pass with zero merges
// is degraded, not unhealthy.
func IngestCheck(gs *storage.GraphStore) CheckFunc {
	return func() Check {
		stats := gs.Statistics()
		if stats.TotalMerges == 0 {
			return Check{Status: StatusDegraded, Message: "no ingestion pass has completed"}
		}
		return Check{
			Status:  StatusHealthy,
			Message: fmt.Sprintf("last merge at %s", stats.LastMergeAt.Format("2006-01-02T15:04:05Z07:00")),
			Details: map[string]any{"total_merges": stats.TotalMerges},
		}
	}
}
