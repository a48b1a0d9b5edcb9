package controller

import (
	"encoding/json"
	"errors"
	"net/http"
)

type envelope map[string]any

var errEmptyBody = errors.New("request body is empty")

func readJSON(r *http.Request, dst any) error {
	if r.Body == nil || r.ContentLength == 0 {
		return errEmptyBody
	}
	return json.NewDecoder(r.Body).Decode(dst)
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, envelope{"error": err.Error()})
}
