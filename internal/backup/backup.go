package backup

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/inkwellapp/inkwell-server/internal/store"
)

const snapshotSuffix = ".inkwell.bak"

// Snapshot describes a snapshot file on disk.
type Snapshot struct {
	ID        string    `json:"id"`
	Path      string    `json:"path"`
	Size      int64     `json:"size"`
	CreatedAt time.Time `json:"created_at"`
}

// Service creates, lists and restores store snapshots. Snapshots are
// Badger stream backups written to a directory next to the database.
type Service struct {
	store  *store.Store
	dir    string
	logger *slog.Logger
}

// NewService creates a Service writing snapshots under dir.
func NewService(s *store.Store, dir string, logger *slog.Logger) *Service {
	return &Service{
		store:  s,
		dir:    dir,
		logger: logger,
	}
}

// Create writes a full snapshot of the store to a new file.
func (s *Service) Create(ctx context.Context) (*Snapshot, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return nil, fmt.Errorf("create snapshot dir: %w", err)
	}

	id := "snapshot-" + time.Now().Format("2006-01-02-150405")
	path := filepath.Join(s.dir, id+snapshotSuffix)

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create snapshot file: %w", err)
	}

	version, err := s.store.Backup(f)
	if err != nil {
		f.Close()
		os.Remove(path)
		return nil, err
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return nil, fmt.Errorf("close snapshot file: %w", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Snapshot created",
		"id", id,
		"size", info.Size(),
		"version", version)

	return &Snapshot{
		ID:        id,
		Path:      path,
		Size:      info.Size(),
		CreatedAt: info.ModTime(),
	}, nil
}

// List returns all snapshots, newest first.
func (s *Service) List(ctx context.Context) ([]Snapshot, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var snapshots []Snapshot
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), snapshotSuffix) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		snapshots = append(snapshots, Snapshot{
			ID:        strings.TrimSuffix(entry.Name(), snapshotSuffix),
			Path:      filepath.Join(s.dir, entry.Name()),
			Size:      info.Size(),
			CreatedAt: info.ModTime(),
		})
	}

	sort.Slice(snapshots, func(i, j int) bool {
		return snapshots[i].CreatedAt.After(snapshots[j].CreatedAt)
	})

	return snapshots, nil
}

// Get returns a snapshot by ID.
func (s *Service) Get(ctx context.Context, id string) (*Snapshot, error) {
	path := filepath.Join(s.dir, id+snapshotSuffix)

	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrSnapshotNotFound
		}
		return nil, err
	}

	return &Snapshot{
		ID:        id,
		Path:      path,
		Size:      info.Size(),
		CreatedAt: info.ModTime(),
	}, nil
}

// Delete removes a snapshot file.
func (s *Service) Delete(ctx context.Context, id string) error {
	path := filepath.Join(s.dir, id+snapshotSuffix)

	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return ErrSnapshotNotFound
		}
		return err
	}

	return os.Remove(path)
}

// Restore replaces the live store contents with the named snapshot.
// All current data is dropped first. Derived state like the search
// index must be rebuilt by the caller afterwards.
func (s *Service) Restore(ctx context.Context, id string) error {
	path := filepath.Join(s.dir, id+snapshotSuffix)

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return ErrSnapshotNotFound
		}
		return err
	}
	defer f.Close()

	s.logger.Info("Restoring from snapshot", "id", id)

	if err := s.store.Load(f); err != nil {
		return err
	}

	s.logger.Info("Restore complete", "id", id)
	return nil
}
