package handler

import (
	"log/slog"
	"net/http"

	"github.com/tomthias/cleanAlbere9/internal/backup"
)

// BackupHandler exposes the backup manager over the API.
type BackupHandler struct {
	manager *backup.Manager
	logger  *slog.Logger
}

func NewBackupHandler(manager *backup.Manager, logger *slog.Logger) *BackupHandler {
	return &BackupHandler{manager: manager, logger: logger}
}

// Status handles GET /api/backup/status
func (h *BackupHandler) Status(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.manager.Status())
}

// List handles GET /api/backup
func (h *BackupHandler) List(w http.ResponseWriter, r *http.Request) {
	snapshots, err := h.manager.List(r.Context())
	if err != nil {
		h.logger.Error("failed to list backups", "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if snapshots == nil {
		snapshots = []backup.Snapshot{}
	}
	writeJSON(w, http.StatusOK, snapshots)
}

// Run handles POST /api/backup
func (h *BackupHandler) Run(w http.ResponseWriter, r *http.Request) {
	key, err := h.manager.Run(r.Context())
	if err != nil {
		h.logger.Error("backup failed", "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"key": key})
}
