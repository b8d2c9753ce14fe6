package blob

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sort"

	blobcore "epidash/adapters/blob/core"
	"epidash/domain/core"
	"epidash/domain/selection"
	"epidash/internal"
	apperrors "epidash/internal/errors"
	"epidash/ports"
)

const contentTypeJSON = "application/json"

// SelectionStore keeps the dashboard selection as one JSON blob under a fixed
// key
type SelectionStore struct {
	store  blobcore.Store
	key    core.StateKey
	logger *internal.Logger
}

var _ ports.SelectionStore = (*SelectionStore)(nil)

// NewSelectionStore validates the key and wraps a blob store
func NewSelectionStore(store blobcore.Store, key string, logger *internal.Logger) (*SelectionStore, error) {
	stateKey, err := core.ParseStateKey(key)
	if err != nil {
		return nil, apperrors.WithCode(apperrors.CodeConfigInvalid, err)
	}
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &SelectionStore{store: store, key: stateKey, logger: logger.With("SelectionStore")}, nil
}

func (s *SelectionStore) Backend() string {
	return "blob/" + string(s.store.Driver())
}

// Load reads and parses the saved selection. When the key is missing, the
// newest pending copy left by an interrupted save is used instead.
func (s *SelectionStore) Load(ctx context.Context) (selection.State, error) {
	_, rc, err := s.store.Get(ctx, s.key.String())
	if errors.Is(err, blobcore.ErrNotFound) {
		rc, err = s.openPending(ctx)
	}
	if errors.Is(err, blobcore.ErrNotFound) {
		return selection.New(), core.ErrStateNotFound
	}
	if err != nil {
		return selection.New(), apperrors.StorageError("failed to read selection blob", err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return selection.New(), apperrors.StorageError("failed to read selection blob", err)
	}
	return selection.Unmarshal(data)
}

// Save replaces the blob. The drivers are create-only, so the new selection
// is first written under a pending key; the previous blob is only deleted
// once that write has succeeded.
func (s *SelectionStore) Save(ctx context.Context, state selection.State) (ports.SaveReceipt, error) {
	data, err := selection.Marshal(state)
	if err != nil {
		return ports.SaveReceipt{}, apperrors.Wrap(err, "failed to encode selection")
	}

	snapshot := core.NewSnapshotID()
	opts := blobcore.PutOptions{
		ContentType: contentTypeJSON,
		Metadata: map[string]string{
			"snapshot":    snapshot.String(),
			"fingerprint": state.Fingerprint().String(),
		},
	}

	pending := s.pendingPrefix() + snapshot.String()
	if _, err := s.store.Put(ctx, pending, bytes.NewReader(data), opts); err != nil {
		return ports.SaveReceipt{}, apperrors.StorageError(fmt.Sprintf("failed to stage selection blob %s", s.key), err)
	}

	existed, err := s.store.Delete(ctx, s.key.String())
	if err != nil {
		s.discard(ctx, pending)
		return ports.SaveReceipt{}, apperrors.StorageError("failed to replace selection blob", err)
	}

	info, err := s.store.Put(ctx, s.key.String(), bytes.NewReader(data), opts)
	if err != nil {
		s.logger.Warn("Selection %s kept under %s after failed write: %v", s.key, pending, err)
		return ports.SaveReceipt{}, apperrors.StorageError(fmt.Sprintf("failed to write selection blob %s", s.key), err)
	}
	s.discardPending(ctx)

	s.logger.Debug("Saved selection %s (%d bytes, replaced=%t)", s.key, info.Size, existed)
	return ports.SaveReceipt{
		Snapshot: snapshot,
		Key:      s.key,
		Backend:  s.Backend(),
		SavedAt:  core.NewTimestamp(info.LastModified),
	}, nil
}

func (s *SelectionStore) pendingPrefix() string {
	return s.key.String() + ".pending-"
}

// openPending opens the most recently written pending copy
func (s *SelectionStore) openPending(ctx context.Context) (io.ReadCloser, error) {
	infos, err := s.store.List(ctx, s.pendingPrefix())
	if err != nil {
		return nil, err
	}
	if len(infos) == 0 {
		return nil, blobcore.ErrNotFound
	}
	sort.SliceStable(infos, func(i, j int) bool {
		return infos[i].LastModified.Before(infos[j].LastModified)
	})
	newest := infos[len(infos)-1].Key
	s.logger.Warn("Selection %s missing, recovering from %s", s.key, newest)

	_, rc, err := s.store.Get(ctx, newest)
	return rc, err
}

// discardPending removes this save's pending copy and any left behind by
// earlier failed saves
func (s *SelectionStore) discardPending(ctx context.Context) {
	infos, err := s.store.List(ctx, s.pendingPrefix())
	if err != nil {
		s.logger.Warn("Failed to list pending selections for %s: %v", s.key, err)
		return
	}
	for _, info := range infos {
		s.discard(ctx, info.Key)
	}
}

func (s *SelectionStore) discard(ctx context.Context, key string) {
	if _, err := s.store.Delete(ctx, key); err != nil {
		s.logger.Warn("Failed to remove pending selection %s: %v", key, err)
	}
}
