package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/tomthias/cleanAlbere9/internal/model"
	"github.com/tomthias/cleanAlbere9/internal/store"
	"github.com/tomthias/cleanAlbere9/internal/websocket"
)

type SwapHandler struct {
	store  *store.SwapStore
	hub    *websocket.Hub
	logger *slog.Logger
}

func NewSwapHandler(s *store.SwapStore, hub *websocket.Hub, logger *slog.Logger) *SwapHandler {
	return &SwapHandler{store: s, hub: hub, logger: logger}
}

func (h *SwapHandler) broadcast(action string) {
	if h.hub != nil {
		h.hub.Broadcast(websocket.NewMessage(websocket.TableSwaps, action))
	}
}

// ListActive returns all pending and accepted requests, newest first.
func (h *SwapHandler) ListActive(w http.ResponseWriter, r *http.Request) {
	swaps, err := h.store.ListActive()
	if err != nil {
		h.logger.Error("list swaps", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list swaps")
		return
	}
	if swaps == nil {
		swaps = []model.SwapRequest{}
	}
	writeJSON(w, http.StatusOK, swaps)
}

type swapCreateRequest struct {
	WeekID    int    `json:"week_id"`
	AreaID    string `json:"area_id"`
	Requester string `json:"original_person"`
}

// Create opens a pending swap request for one (week, area).
func (h *SwapHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req swapCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	areaID, err := model.ParseAreaID(req.AreaID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "unknown area")
		return
	}
	requester, err := model.ParsePerson(req.Requester)
	if err != nil {
		writeError(w, http.StatusBadRequest, "unknown person")
		return
	}
	if req.WeekID < 1 {
		writeError(w, http.StatusBadRequest, "week_id must be positive")
		return
	}

	swap, err := h.store.Create(req.WeekID, areaID, requester)
	if errors.Is(err, store.ErrActiveSwapExists) {
		writeError(w, http.StatusConflict, err.Error())
		return
	}
	if err != nil {
		h.logger.Error("create swap", "week_id", req.WeekID, "area_id", areaID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create swap")
		return
	}

	h.broadcast("created")
	writeJSON(w, http.StatusCreated, swap)
}

type swapActorRequest struct {
	Person string `json:"person"`
}

// Accept moves a pending request to accepted for the posted person.
func (h *SwapHandler) Accept(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var req swapActorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	acceptor, err := model.ParsePerson(req.Person)
	if err != nil {
		writeError(w, http.StatusBadRequest, "unknown person")
		return
	}

	swap, err := h.store.Accept(id, acceptor)
	switch {
	case errors.Is(err, store.ErrSwapNotPending):
		writeError(w, http.StatusConflict, err.Error())
		return
	case errors.Is(err, store.ErrSelfAccept):
		writeError(w, http.StatusConflict, err.Error())
		return
	case err != nil:
		h.logger.Error("accept swap", "swap_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to accept swap")
		return
	case swap == nil:
		writeError(w, http.StatusNotFound, "swap not found")
		return
	}

	h.broadcast("accepted")
	writeJSON(w, http.StatusOK, swap)
}

// Cancel moves a pending request to cancelled for its requester.
func (h *SwapHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var req swapActorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	requester, err := model.ParsePerson(req.Person)
	if err != nil {
		writeError(w, http.StatusBadRequest, "unknown person")
		return
	}

	err = h.store.Cancel(id, requester)
	switch {
	case errors.Is(err, store.ErrSwapNotFound):
		writeError(w, http.StatusNotFound, err.Error())
		return
	case errors.Is(err, store.ErrSwapNotPending):
		writeError(w, http.StatusConflict, err.Error())
		return
	case errors.Is(err, store.ErrNotRequester):
		writeError(w, http.StatusForbidden, err.Error())
		return
	case err != nil:
		h.logger.Error("cancel swap", "swap_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to cancel swap")
		return
	}

	h.broadcast("cancelled")
	w.WriteHeader(http.StatusNoContent)
}
