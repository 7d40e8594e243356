package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/inkwellapp/inkwell-server/internal/backup"
)

func (s *Server) registerAdminBackupRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "createSnapshot",
		Method:      http.MethodPost,
		Path:        "/api/v1/admin/snapshots",
		Summary:     "Create snapshot",
		Description: "Writes a full snapshot of the store to disk. Admin only.",
		Tags:        []string{"Admin"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleCreateSnapshot)

	huma.Register(s.api, huma.Operation{
		OperationID: "listSnapshots",
		Method:      http.MethodGet,
		Path:        "/api/v1/admin/snapshots",
		Summary:     "List snapshots",
		Description: "Lists all snapshot files, newest first. Admin only.",
		Tags:        []string{"Admin"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleListSnapshots)

	huma.Register(s.api, huma.Operation{
		OperationID: "deleteSnapshot",
		Method:      http.MethodDelete,
		Path:        "/api/v1/admin/snapshots/{id}",
		Summary:     "Delete snapshot",
		Description: "Deletes a snapshot file. Admin only.",
		Tags:        []string{"Admin"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleDeleteSnapshot)

	huma.Register(s.api, huma.Operation{
		OperationID: "restoreSnapshot",
		Method:      http.MethodPost,
		Path:        "/api/v1/admin/snapshots/{id}/restore",
		Summary:     "Restore snapshot",
		Description: "Drops all current data and restores the named snapshot. Root only.",
		Tags:        []string{"Admin"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleRestoreSnapshot)
}

// SnapshotOutput wraps a single snapshot.
type SnapshotOutput struct {
	Body *backup.Snapshot
}

// SnapshotListOutput wraps the snapshot listing.
type SnapshotListOutput struct {
	Body struct {
		Snapshots []backup.Snapshot `json:"snapshots"`
	}
}

// SnapshotIDInput identifies a snapshot by ID.
type SnapshotIDInput struct {
	Authorization string `header:"Authorization"`
	ID            string `path:"id" doc:"Snapshot identifier"`
}

func (s *Server) handleCreateSnapshot(ctx context.Context, input *AuthedInput) (*SnapshotOutput, error) {
	if _, err := s.authenticateAndRequireAdmin(ctx, input.Authorization); err != nil {
		return nil, err
	}

	snap, err := s.services.Backup.Create(ctx)
	if err != nil {
		return nil, huma.Error500InternalServerError("Failed to create snapshot", err)
	}

	return &SnapshotOutput{Body: snap}, nil
}

func (s *Server) handleListSnapshots(ctx context.Context, input *AuthedInput) (*SnapshotListOutput, error) {
	if _, err := s.authenticateAndRequireAdmin(ctx, input.Authorization); err != nil {
		return nil, err
	}

	snapshots, err := s.services.Backup.List(ctx)
	if err != nil {
		return nil, huma.Error500InternalServerError("Failed to list snapshots", err)
	}

	resp := &SnapshotListOutput{}
	resp.Body.Snapshots = snapshots
	if resp.Body.Snapshots == nil {
		resp.Body.Snapshots = []backup.Snapshot{}
	}
	return resp, nil
}

func (s *Server) handleDeleteSnapshot(ctx context.Context, input *SnapshotIDInput) (*MessageOutput, error) {
	if _, err := s.authenticateAndRequireAdmin(ctx, input.Authorization); err != nil {
		return nil, err
	}

	if err := s.services.Backup.Delete(ctx, input.ID); err != nil {
		if errors.Is(err, backup.ErrSnapshotNotFound) {
			return nil, huma.Error404NotFound("Snapshot not found")
		}
		return nil, huma.Error500InternalServerError("Failed to delete snapshot", err)
	}

	return &MessageOutput{Body: MessageResponse{Message: "snapshot deleted"}}, nil
}

func (s *Server) handleRestoreSnapshot(ctx context.Context, input *SnapshotIDInput) (*MessageOutput, error) {
	if _, err := s.authenticateAndRequireRoot(ctx, input.Authorization); err != nil {
		return nil, err
	}

	if err := s.services.Backup.Restore(ctx, input.ID); err != nil {
		if errors.Is(err, backup.ErrSnapshotNotFound) {
			return nil, huma.Error404NotFound("Snapshot not found")
		}
		return nil, huma.Error500InternalServerError("Failed to restore snapshot", err)
	}

	// The search index is derived from store contents and is now stale.
	if err := s.services.Search.Reindex(ctx); err != nil {
		s.logger.Warn("Search reindex after restore failed", "error", err)
	}

	return &MessageOutput{Body: MessageResponse{Message: "snapshot restored"}}, nil
}
