package ports

import (
	"context"

	"ciboard/internal/ciboard"
)

// SnapshotStore persists the complete snapshot of one aggregation cycle and
// serves the most recently persisted one back.
type SnapshotStore interface {
	// Save replaces any previously stored snapshot. It must either persist
	// the snapshot completely or leave the previous one intact.
	Save(ctx context.Context, snap ciboard.Snapshot) error
	// Load returns the last stored snapshot, or an empty one if none exists.
	Load(ctx context.Context) (ciboard.Snapshot, error)
}
