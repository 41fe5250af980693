package server

import (
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/tomthias/cleanAlbere9/internal/backup"
	"github.com/tomthias/cleanAlbere9/internal/handler"
	"github.com/tomthias/cleanAlbere9/internal/middleware"
	"github.com/tomthias/cleanAlbere9/internal/store"
	ws "github.com/tomthias/cleanAlbere9/internal/websocket"
)

// Server is the shared backend: three stores over SQLite, JSON
// handlers, and a websocket hub that tells every client when a table
// changed so they can re-query.
type Server struct {
	db          *sql.DB
	hub         *ws.Hub
	progressH   *handler.ProgressHandler
	preferenceH *handler.PreferenceHandler
	swapH       *handler.SwapHandler
	backupH     *handler.BackupHandler
	logger      *slog.Logger
}

// New wires the stores and handlers. backupMgr may be nil when
// backups are not configured; the backup routes are then absent.
func New(db *sql.DB, backupMgr *backup.Manager, logger *slog.Logger) *Server {
	hub := ws.NewHub(logger.With("component", "websocket"))

	progressStore := store.NewProgressStore(db)
	preferenceStore := store.NewPreferenceStore(db)
	swapStore := store.NewSwapStore(db)

	s := &Server{
		db:          db,
		hub:         hub,
		progressH:   handler.NewProgressHandler(progressStore, hub, logger.With("component", "progress")),
		preferenceH: handler.NewPreferenceHandler(preferenceStore, hub, logger.With("component", "preferences")),
		swapH:       handler.NewSwapHandler(swapStore, hub, logger.With("component", "swaps")),
		logger:      logger,
	}
	if backupMgr != nil {
		s.backupH = handler.NewBackupHandler(backupMgr, logger.With("component", "backup"))
	}
	return s
}

// Hub returns the websocket hub, exposed for tests.
func (s *Server) Hub() *ws.Hub {
	return s.hub
}

func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.healthHandler)

	// Progress
	mux.HandleFunc("GET /api/progress", s.progressH.List)
	mux.HandleFunc("PUT /api/progress", s.progressH.Update)

	// Preferences
	mux.HandleFunc("GET /api/profiles", s.preferenceH.ListProfiles)
	mux.HandleFunc("GET /api/preferences/{user}", s.preferenceH.Get)
	mux.HandleFunc("PUT /api/preferences/{user}", s.preferenceH.Upsert)
	mux.HandleFunc("POST /api/preferences/{user}/pin", s.preferenceH.SetPIN)
	mux.HandleFunc("DELETE /api/preferences/{user}/pin", s.preferenceH.ClearPIN)
	mux.HandleFunc("POST /api/preferences/{user}/pin/verify", s.preferenceH.VerifyPIN)

	// Swaps
	mux.HandleFunc("GET /api/swaps", s.swapH.ListActive)
	mux.HandleFunc("POST /api/swaps", s.swapH.Create)
	mux.HandleFunc("POST /api/swaps/{id}/accept", s.swapH.Accept)
	mux.HandleFunc("POST /api/swaps/{id}/cancel", s.swapH.Cancel)

	// Backups
	if s.backupH != nil {
		mux.HandleFunc("GET /api/backup/status", s.backupH.Status)
		mux.HandleFunc("GET /api/backup", s.backupH.List)
		mux.HandleFunc("POST /api/backup", s.backupH.Run)
	}

	// Change notification channel
	mux.HandleFunc("GET /ws", ws.HandleWebSocket(s.hub))

	return middleware.RequestLogger(s.logger.With("component", "http"))(mux)
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}
