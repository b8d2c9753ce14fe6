package ports

import (
	"context"

	"epidash/domain/core"
	"epidash/domain/selection"
)

// SelectionStore persists the dashboard selection under a fixed key.
// Load returns core.ErrStateNotFound when nothing was saved yet and an error
// wrapping core.ErrCorruptState when the stored payload cannot be parsed.
type SelectionStore interface {
	Load(ctx context.Context) (selection.State, error)
	Save(ctx context.Context, state selection.State) (SaveReceipt, error)
	Backend() string
}

// SaveReceipt describes one successful save
type SaveReceipt struct {
	Snapshot core.SnapshotID `json:"snapshot_id"`
	Key      core.StateKey   `json:"key"`
	Backend  string          `json:"backend"`
	SavedAt  core.Timestamp  `json:"saved_at"`
}
