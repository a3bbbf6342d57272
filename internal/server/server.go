package server

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"

	"document-themes/internal/models"
	"document-themes/internal/rag"
)

// Service is the pipeline surface the handlers need. Kept narrow so
// tests can stub it.
type Service interface {
	Upload(ctx context.Context, filePath, fileName, sessionID string) (*rag.UploadResult, error)
	Query(ctx context.Context, userQuery, sessionID string) *models.QueryResponse
	Delete(ctx context.Context, sessionID string) (string, error)
}

type Server struct {
	svc       Service
	uploadDir string
}

func New(svc Service, uploadDir string) *Server {
	return &Server{svc: svc, uploadDir: uploadDir}
}

func (s *Server) Routes() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/upload/", s.handleUpload).Methods(http.MethodPost)
	r.HandleFunc("/query/", s.handleQuery).Methods(http.MethodPost)
	r.HandleFunc("/delete/", s.handleDelete).Methods(http.MethodDelete)
	return r
}
