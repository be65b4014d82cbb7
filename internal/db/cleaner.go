package db

import (
	"context"
	"database/sql"
	"time"

	"go.uber.org/zap"

	"github.com/lexora/lexora/internal/blob"
)

// StartOrphanBlobSweeper removes blobs whose document metadata row is gone.
// Deleting a document removes the row first and the blob second, so a
// crash or failed blob delete in between leaves an orphan; the sweeper
// reaps those on an interval once they are older than retention.
func StartOrphanBlobSweeper(
	ctx context.Context,
	db *sql.DB,
	blobs blob.Store,
	interval time.Duration,
	retention time.Duration,
	log *zap.Logger,
) {
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				removed, err := sweepOrphans(ctx, db, blobs, retention)
				if err != nil {
					log.Error("failed to sweep orphan blobs", zap.Error(err))
					continue
				}
				if removed > 0 {
					log.Info("swept orphan blobs", zap.Int("removed", removed))
				}
			}
		}
	}()
}

func sweepOrphans(ctx context.Context, db *sql.DB, blobs blob.Store, retention time.Duration) (int, error) {
	rows, err := db.QueryContext(ctx, `SELECT owner, data->>'path' FROM documents WHERE data ? 'path'`)
	if err != nil {
		return 0, err
	}
	defer rows.Close()

	referenced := map[string]bool{}
	for rows.Next() {
		var owner string
		var path sql.NullString
		if err := rows.Scan(&owner, &path); err != nil {
			return 0, err
		}
		if path.Valid {
			referenced[owner+"/"+path.String] = true
		}
	}
	if err := rows.Err(); err != nil {
		return 0, err
	}

	objects, err := blobs.List(ctx)
	if err != nil {
		return 0, err
	}

	cutoff := time.Now().Add(-retention)
	removed := 0
	for _, obj := range objects {
		if referenced[obj.Owner+"/"+obj.Key] || obj.ModTime.After(cutoff) {
			continue
		}
		if err := blobs.Delete(ctx, obj.Owner, obj.Key); err != nil {
			return removed, err
		}
		removed++
	}
	return removed, nil
}
