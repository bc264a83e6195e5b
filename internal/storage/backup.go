package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dashpilot/s3-universal-backend/internal/clock"
)

// DefaultRetention is how long JSON backups are kept before the sweep
// removes them.
const DefaultRetention = 30 * 24 * time.Hour

// SaveResult reports what a JSON save did besides the write itself.
type SaveResult struct {
	Key      string
	BackedUp bool
	Pruned   int
}

// BackupManager sequences JSON saves: copy the current document to a
// timestamped backup key, overwrite the canonical key, then sweep backups
// past the retention window.
//
// Concurrent saves for the same user are not coordinated. The store exposes
// no locking or compare-and-swap, so two interleaved saves may lose one of
// the two prior versions from the backup trail.
type BackupManager struct {
	Store     ObjectStore
	Clock     clock.Clock
	Retention time.Duration
}

// NewBackupManager wires a manager with the default retention window. A nil
// clk falls back to the real clock.
func NewBackupManager(store ObjectStore, clk clock.Clock) *BackupManager {
	if clk == nil {
		clk = clock.Real{}
	}
	return &BackupManager{Store: store, Clock: clk, Retention: DefaultRetention}
}

// SaveJSON persists payload as the user's current document. The backup step
// is transactional with the overwrite: if copying the existing document to
// its backup key fails, the save aborts and the canonical object is left
// untouched. A missing current document (first save) skips the backup. The
// retention sweep after the write is best-effort; its failures are logged
// and never fail the save.
func (m *BackupManager) SaveJSON(ctx context.Context, username string, payload []byte) (SaveResult, error) {
	now := m.Clock.Now()
	res := SaveResult{Key: JSONKey(username)}

	err := m.Store.Copy(ctx, res.Key, BackupKey(username, now))
	switch {
	case err == nil:
		res.BackedUp = true
	case errors.Is(err, ErrNotFound):
		// First save for this user, nothing to back up.
	default:
		return res, fmt.Errorf("backup before overwrite: %w", err)
	}

	if err := m.Store.Put(ctx, res.Key, payload, "application/json"); err != nil {
		return res, err
	}

	res.Pruned = m.sweep(ctx, username, now)
	return res, nil
}

func (m *BackupManager) sweep(ctx context.Context, username string, now time.Time) int {
	cutoff := now.Add(-m.Retention)
	keys, err := m.Store.List(ctx, BackupPrefix(username))
	if err != nil {
		slog.Warn("backup sweep: list failed", "username", username, "error", err)
		return 0
	}

	pruned := 0
	for _, key := range keys {
		stamp, err := ParseBackupTime(key)
		if err != nil {
			slog.Warn("backup sweep: skipping unparseable key", "key", key, "error", err)
			continue
		}
		if !stamp.Before(cutoff) {
			continue
		}
		if err := m.Store.Delete(ctx, key); err != nil {
			slog.Warn("backup sweep: delete failed", "key", key, "error", err)
			continue
		}
		pruned++
	}
	return pruned
}
