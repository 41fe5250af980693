package handler

import (
	"encoding/json"
	"net/http"

	"github.com/tomthias/cleanAlbere9/internal/model"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func parseUserParam(r *http.Request) (model.Person, error) {
	return model.ParsePerson(r.PathValue("user"))
}
