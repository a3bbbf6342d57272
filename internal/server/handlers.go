package server

import (
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"

	"document-themes/internal/models"
)

const maxUploadBytes = 32 << 20 // 32 MB

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeJSON(w, http.StatusBadRequest, models.UploadResponse{Error: "failed to parse multipart form"})
		return
	}

	sessionID := r.FormValue("session_id")
	if sessionID == "" {
		writeJSON(w, http.StatusBadRequest, models.UploadResponse{Error: "session_id is required"})
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, models.UploadResponse{Error: "file is required"})
		return
	}
	defer file.Close()

	tmp, err := os.CreateTemp(s.uploadDir, "upload-*"+filepath.Ext(header.Filename))
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, models.UploadResponse{Error: "failed to buffer upload"})
		return
	}
	// The temp file goes away no matter how processing ends.
	defer func() {
		if err := os.Remove(tmp.Name()); err != nil {
			log.Warn().Err(err).Str("path", tmp.Name()).Msg("Could not remove temporary file")
		}
	}()

	if _, err := io.Copy(tmp, file); err != nil {
		tmp.Close()
		writeJSON(w, http.StatusInternalServerError, models.UploadResponse{Error: "failed to read file"})
		return
	}
	if err := tmp.Close(); err != nil {
		writeJSON(w, http.StatusInternalServerError, models.UploadResponse{Error: "failed to buffer upload"})
		return
	}

	result, err := s.svc.Upload(r.Context(), tmp.Name(), header.Filename, sessionID)
	if err != nil {
		log.Error().Err(err).Str("file", header.Filename).Msg("Upload failed")
		writeJSON(w, http.StatusOK, models.UploadResponse{Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, models.UploadResponse{
		Success:   true,
		SessionID: result.SessionID,
		Index:     result.Index,
		NChunks:   result.NChunks,
	})
}

func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	userQuery := r.FormValue("user_query")
	sessionID := r.FormValue("session_id")
	if userQuery == "" || sessionID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "user_query and session_id are required"})
		return
	}

	// Best effort: the pipeline always produces a response.
	writeJSON(w, http.StatusOK, s.svc.Query(r.Context(), userQuery, sessionID))
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	sessionID := deleteFormValue(r, "session_id")
	if sessionID == "" {
		writeJSON(w, http.StatusBadRequest, models.DeleteResponse{Error: "session_id is required"})
		return
	}

	message, err := s.svc.Delete(r.Context(), sessionID)
	if err != nil {
		log.Error().Err(err).Str("session_id", sessionID).Msg("Delete failed")
		writeJSON(w, http.StatusOK, models.DeleteResponse{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, models.DeleteResponse{Success: true, Message: message})
}

// deleteFormValue reads a field from either the query string or a
// form-encoded body. net/http only parses bodies for POST/PUT/PATCH,
// and clients send DELETE parameters both ways.
func deleteFormValue(r *http.Request, key string) string {
	if v := r.URL.Query().Get(key); v != "" {
		return v
	}
	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		return ""
	}
	values, err := url.ParseQuery(string(body))
	if err != nil {
		return ""
	}
	return values.Get(key)
}

func writeJSON(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("Failed to write response")
	}
}
