package sqlstore

import (
	"context"
	"database/sql"
	stderrors "errors"
	"time"

	"epidash/domain/core"
	"epidash/domain/selection"
	"epidash/internal/errors"
	"epidash/ports"

	"github.com/jmoiron/sqlx"
)

// SelectionRepository stores the selection as a JSON payload in
// dashboard_state, one row per key
type SelectionRepository struct {
	db  *sqlx.DB
	key core.StateKey
}

var _ ports.SelectionStore = (*SelectionRepository)(nil)

// StateRow is one dashboard_state row
type StateRow struct {
	Key         string `db:"state_key"`
	Payload     string `db:"payload"`
	Fingerprint string `db:"fingerprint"`
	SnapshotID  string `db:"snapshot_id"`
	Version     int    `db:"version"`
	UpdatedAt   string `db:"updated_at"`
}

// NewSelectionRepository creates a repository for a fixed key
func NewSelectionRepository(db *sqlx.DB, key string) (*SelectionRepository, error) {
	stateKey, err := core.ParseStateKey(key)
	if err != nil {
		return nil, errors.WithCode(errors.CodeConfigInvalid, err)
	}
	return &SelectionRepository{db: db, key: stateKey}, nil
}

func (r *SelectionRepository) Backend() string {
	return "sql/" + r.db.DriverName()
}

// Load returns the saved selection, core.ErrStateNotFound when no row exists
func (r *SelectionRepository) Load(ctx context.Context) (selection.State, error) {
	row, err := r.Row(ctx)
	if err != nil {
		return selection.New(), err
	}
	return selection.Unmarshal([]byte(row.Payload))
}

// Row returns the raw row for the key
func (r *SelectionRepository) Row(ctx context.Context) (StateRow, error) {
	query := r.db.Rebind(`
		SELECT state_key, payload, fingerprint, snapshot_id, version, updated_at
		FROM dashboard_state
		WHERE state_key = ?`)

	var row StateRow
	if err := r.db.GetContext(ctx, &row, query, r.key.String()); err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return StateRow{}, core.ErrStateNotFound
		}
		return StateRow{}, errors.DatabaseError("failed to get dashboard state", err)
	}
	return row, nil
}

// Save upserts the selection and bumps the row version
func (r *SelectionRepository) Save(ctx context.Context, state selection.State) (ports.SaveReceipt, error) {
	payload, err := selection.Marshal(state)
	if err != nil {
		return ports.SaveReceipt{}, errors.Wrap(err, "failed to encode selection")
	}

	snapshot := core.NewSnapshotID()
	now := time.Now().UTC()
	query := r.db.Rebind(`
		INSERT INTO dashboard_state (state_key, payload, fingerprint, snapshot_id, version, updated_at)
		VALUES (?, ?, ?, ?, 1, ?)
		ON CONFLICT (state_key) DO UPDATE SET
			payload = excluded.payload,
			fingerprint = excluded.fingerprint,
			snapshot_id = excluded.snapshot_id,
			version = dashboard_state.version + 1,
			updated_at = excluded.updated_at`)

	_, err = r.db.ExecContext(ctx, query,
		r.key.String(),
		string(payload),
		state.Fingerprint().String(),
		snapshot.String(),
		now.Format(time.RFC3339Nano),
	)
	if err != nil {
		return ports.SaveReceipt{}, errors.DatabaseError("failed to save dashboard state", err)
	}

	return ports.SaveReceipt{
		Snapshot: snapshot,
		Key:      r.key,
		Backend:  r.Backend(),
		SavedAt:  core.NewTimestamp(now),
	}, nil
}

// Delete removes the saved selection, reporting whether one existed
func (r *SelectionRepository) Delete(ctx context.Context) (bool, error) {
	result, err := r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM dashboard_state WHERE state_key = ?`), r.key.String())
	if err != nil {
		return false, errors.DatabaseError("failed to delete dashboard state", err)
	}
	n, _ := result.RowsAffected()
	return n > 0, nil
}
