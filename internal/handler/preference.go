package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"golang.org/x/crypto/bcrypt"

	"github.com/tomthias/cleanAlbere9/internal/model"
	"github.com/tomthias/cleanAlbere9/internal/store"
	"github.com/tomthias/cleanAlbere9/internal/websocket"
)

type PreferenceHandler struct {
	store  *store.PreferenceStore
	hub    *websocket.Hub
	logger *slog.Logger
}

func NewPreferenceHandler(s *store.PreferenceStore, hub *websocket.Hub, logger *slog.Logger) *PreferenceHandler {
	return &PreferenceHandler{store: s, hub: hub, logger: logger}
}

func (h *PreferenceHandler) broadcast(action string) {
	if h.hub != nil {
		h.hub.Broadcast(websocket.NewMessage(websocket.TablePreferences, action))
	}
}

// Get returns a flatmate's preference row. A flatmate who never saved
// gets 404, which clients treat as "no preferences yet", not a failure.
func (h *PreferenceHandler) Get(w http.ResponseWriter, r *http.Request) {
	user, err := parseUserParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "unknown person")
		return
	}

	prefs, err := h.store.GetByUser(user)
	if err != nil {
		h.logger.Error("get preferences", "user", user, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get preferences")
		return
	}
	if prefs == nil {
		writeError(w, http.StatusNotFound, "no preferences saved")
		return
	}
	writeJSON(w, http.StatusOK, prefs)
}

type preferenceRequest struct {
	DisplayName string            `json:"display_name"`
	AvatarEmoji string            `json:"avatar_emoji"`
	Colors      map[string]string `json:"color_preference"`
	Theme       string            `json:"theme_preference"`
	Language    string            `json:"language_preference"`
}

// Upsert creates or replaces a flatmate's preference row.
func (h *PreferenceHandler) Upsert(w http.ResponseWriter, r *http.Request) {
	user, err := parseUserParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "unknown person")
		return
	}

	var req preferenceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	theme := model.Theme(req.Theme)
	if !theme.Valid() {
		writeError(w, http.StatusBadRequest, "theme must be light or dark")
		return
	}
	lang := model.Language(req.Language)
	if !lang.Valid() {
		writeError(w, http.StatusBadRequest, "language must be it or en")
		return
	}

	colors := model.DefaultColors()
	for name, color := range req.Colors {
		person, err := model.ParsePerson(name)
		if err != nil {
			writeError(w, http.StatusBadRequest, "unknown person in color preference")
			return
		}
		colors[person] = color
	}

	prefs, err := h.store.Upsert(model.Preferences{
		UserName:    user,
		DisplayName: req.DisplayName,
		AvatarEmoji: req.AvatarEmoji,
		Colors:      colors,
		Theme:       theme,
		Language:    lang,
	})
	if err != nil {
		h.logger.Error("upsert preferences", "user", user, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to save preferences")
		return
	}

	h.broadcast("updated")
	writeJSON(w, http.StatusOK, prefs)
}

// ListProfiles returns each flatmate's display name and avatar for
// card rendering.
func (h *PreferenceHandler) ListProfiles(w http.ResponseWriter, r *http.Request) {
	profiles, err := h.store.ListProfiles()
	if err != nil {
		h.logger.Error("list profiles", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list profiles")
		return
	}
	writeJSON(w, http.StatusOK, profiles)
}

type pinRequest struct {
	PIN string `json:"pin"`
}

// SetPIN stores a bcrypt-hashed PIN gating user selection.
func (h *PreferenceHandler) SetPIN(w http.ResponseWriter, r *http.Request) {
	user, err := parseUserParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "unknown person")
		return
	}

	var req pinRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if len(req.PIN) < 4 || len(req.PIN) > 8 || !isDigits(req.PIN) {
		writeError(w, http.StatusBadRequest, "PIN must be 4-8 digits")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.PIN), bcrypt.DefaultCost)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to hash PIN")
		return
	}
	if err := h.store.SetPIN(user, string(hash)); err != nil {
		h.logger.Error("set pin", "user", user, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to set PIN")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ClearPIN removes the PIN gate.
func (h *PreferenceHandler) ClearPIN(w http.ResponseWriter, r *http.Request) {
	user, err := parseUserParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "unknown person")
		return
	}
	if err := h.store.ClearPIN(user); err != nil {
		h.logger.Error("clear pin", "user", user, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to clear PIN")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// VerifyPIN checks a submitted PIN against the stored hash. A flatmate
// with no PIN always verifies.
func (h *PreferenceHandler) VerifyPIN(w http.ResponseWriter, r *http.Request) {
	user, err := parseUserParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "unknown person")
		return
	}

	var req pinRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	hash, err := h.store.GetPINHash(user)
	if err != nil {
		h.logger.Error("get pin", "user", user, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to check PIN")
		return
	}
	if hash == "" {
		writeJSON(w, http.StatusOK, map[string]string{"status": "verified"})
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(req.PIN)); err != nil {
		writeError(w, http.StatusUnauthorized, "incorrect PIN")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "verified"})
}

func isDigits(s string) bool {
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}
