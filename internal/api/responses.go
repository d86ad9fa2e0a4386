package api

import (
	"context"
	"encoding/json"
	"errors"
	"mime"
	"net/http"

	"cloud-drive/internal/database"
	"cloud-drive/internal/drive"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError maps drive errors onto status codes. Only validation messages
// are echoed to the client.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	log := s.requestLogger(r)

	switch {
	case errors.Is(err, context.Canceled):
		log.Debug("request cancelled", "path", r.URL.Path)
	case errors.Is(err, drive.ErrValidation):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, database.ErrParentNotFound):
		http.Error(w, "Parent folder does not exist", http.StatusBadRequest)
	case errors.Is(err, drive.ErrNotFound):
		http.Error(w, "Node not found", http.StatusNotFound)
	default:
		log.Error("request failed", "path", r.URL.Path, "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

func attachment(filename string) string {
	return mime.FormatMediaType("attachment", map[string]string{"filename": filename})
}
