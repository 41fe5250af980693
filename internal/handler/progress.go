package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/tomthias/cleanAlbere9/internal/model"
	"github.com/tomthias/cleanAlbere9/internal/store"
	"github.com/tomthias/cleanAlbere9/internal/websocket"
)

type ProgressHandler struct {
	store  *store.ProgressStore
	hub    *websocket.Hub
	logger *slog.Logger
}

func NewProgressHandler(s *store.ProgressStore, hub *websocket.Hub, logger *slog.Logger) *ProgressHandler {
	return &ProgressHandler{store: s, hub: hub, logger: logger}
}

func (h *ProgressHandler) broadcast(action string) {
	if h.hub != nil {
		h.hub.Broadcast(websocket.NewMessage(websocket.TableProgress, action))
	}
}

// List returns every completion row. Clients fold the result into
// their week→area map; an empty list is a valid full answer.
func (h *ProgressHandler) List(w http.ResponseWriter, r *http.Request) {
	recs, err := h.store.List()
	if err != nil {
		h.logger.Error("list progress", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list progress")
		return
	}
	if recs == nil {
		recs = []model.CompletionRecord{}
	}
	writeJSON(w, http.StatusOK, recs)
}

type progressUpdateRequest struct {
	WeekID      int    `json:"week_id"`
	AreaID      string `json:"area_id"`
	Completed   bool   `json:"completed"`
	CompletedBy string `json:"completed_by"`
}

// Update sets or clears one (week, area) completion. Completing
// upserts the row; un-completing deletes it.
func (h *ProgressHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req progressUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	areaID, err := model.ParseAreaID(req.AreaID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "unknown area")
		return
	}
	if req.WeekID < 1 {
		writeError(w, http.StatusBadRequest, "week_id must be positive")
		return
	}

	if req.Completed {
		by, err := model.ParsePerson(req.CompletedBy)
		if err != nil {
			writeError(w, http.StatusBadRequest, "unknown person")
			return
		}
		if err := h.store.Complete(req.WeekID, areaID, by, time.Now()); err != nil {
			h.logger.Error("complete area", "week_id", req.WeekID, "area_id", areaID, "error", err)
			writeError(w, http.StatusInternalServerError, "failed to save completion")
			return
		}
		h.broadcast("completed")
		rec, err := h.store.Get(req.WeekID, areaID)
		if err != nil || rec == nil {
			writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
			return
		}
		writeJSON(w, http.StatusOK, rec)
		return
	}

	if err := h.store.Uncomplete(req.WeekID, areaID); err != nil {
		h.logger.Error("uncomplete area", "week_id", req.WeekID, "area_id", areaID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to remove completion")
		return
	}
	h.broadcast("uncompleted")
	w.WriteHeader(http.StatusNoContent)
}
