package repository

import (
	"context"
	"log/slog"

	"ciboard/internal/ciboard"
	"ciboard/internal/ciboard/ports"
	"ciboard/internal/db"
)

var _ ports.SnapshotStore = (*PersistentStore)(nil)

// PersistentStore wraps the file store with an optional PostgreSQL mirror.
// The file is the authoritative sink: a file write failure fails the save,
// while a mirror failure is logged and tolerated. Reads come from the file.
type PersistentStore struct {
	file *FileStore
	db   *db.DB
}

// NewPersistent creates a store backed by both the file and the database.
func NewPersistent(file *FileStore, database *db.DB) *PersistentStore {
	return &PersistentStore{file: file, db: database}
}

func (s *PersistentStore) Save(ctx context.Context, snap ciboard.Snapshot) error {
	if err := s.file.Save(ctx, snap); err != nil {
		return err
	}
	if err := s.db.ReplaceSnapshot(ctx, snap); err != nil {
		slog.Warn("db snapshot mirror failed, file only", "err", err)
	}
	return nil
}

func (s *PersistentStore) Load(ctx context.Context) (ciboard.Snapshot, error) {
	return s.file.Load(ctx)
}
