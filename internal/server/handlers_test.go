package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"strings"
	"testing"

	"document-themes/internal/models"
	"document-themes/internal/rag"
)

type stubService struct {
	uploadResult *rag.UploadResult
	uploadErr    error
	queryResp    *models.QueryResponse
	deleteMsg    string
	deleteErr    error

	gotFileName  string
	gotSessionID string
	gotQuery     string
	uploadedPath string
}

func (s *stubService) Upload(_ context.Context, filePath, fileName, sessionID string) (*rag.UploadResult, error) {
	s.uploadedPath = filePath
	s.gotFileName = fileName
	s.gotSessionID = sessionID
	return s.uploadResult, s.uploadErr
}

func (s *stubService) Query(_ context.Context, userQuery, sessionID string) *models.QueryResponse {
	s.gotQuery = userQuery
	s.gotSessionID = sessionID
	return s.queryResp
}

func (s *stubService) Delete(_ context.Context, sessionID string) (string, error) {
	s.gotSessionID = sessionID
	return s.deleteMsg, s.deleteErr
}

func multipartUpload(t *testing.T, sessionID, fileName, content string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if sessionID != "" {
		if err := w.WriteField("session_id", sessionID); err != nil {
			t.Fatalf("Failed to write field: %v", err)
		}
	}
	fw, err := w.CreateFormFile("file", fileName)
	if err != nil {
		t.Fatalf("Failed to create form file: %v", err)
	}
	if _, err := fw.Write([]byte(content)); err != nil {
		t.Fatalf("Failed to write file content: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Failed to close writer: %v", err)
	}
	return &buf, w.FormDataContentType()
}

func TestHandleUpload(t *testing.T) {
	svc := &stubService{uploadResult: &rag.UploadResult{SessionID: "s1", Index: "themes-s1", NChunks: 3}}
	srv := New(svc, t.TempDir())

	body, contentType := multipartUpload(t, "s1", "report.txt", "Revenue grew 10%.")
	req := httptest.NewRequest(http.MethodPost, "/upload/", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	srv.Routes().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	var resp models.UploadResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if !resp.Success || resp.NChunks != 3 || resp.Index != "themes-s1" {
		t.Errorf("Unexpected response: %+v", resp)
	}
	if svc.gotFileName != "report.txt" || svc.gotSessionID != "s1" {
		t.Errorf("Service got wrong args: file=%q session=%q", svc.gotFileName, svc.gotSessionID)
	}

	// The temp file is gone once the handler returns.
	if _, err := os.Stat(svc.uploadedPath); !os.IsNotExist(err) {
		t.Errorf("Expected temp file %s to be removed", svc.uploadedPath)
	}
}

func TestHandleUploadMissingSessionID(t *testing.T) {
	srv := New(&stubService{}, t.TempDir())

	body, contentType := multipartUpload(t, "", "report.txt", "text")
	req := httptest.NewRequest(http.MethodPost, "/upload/", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	srv.Routes().ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400, got %d", rec.Code)
	}
	var resp models.UploadResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if resp.Success || resp.Error == "" {
		t.Errorf("Expected failure response, got %+v", resp)
	}
}

func TestHandleUploadPipelineError(t *testing.T) {
	svc := &stubService{uploadErr: errors.New("failed to extract report.txt")}
	srv := New(svc, t.TempDir())

	body, contentType := multipartUpload(t, "s1", "report.txt", "text")
	req := httptest.NewRequest(http.MethodPost, "/upload/", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	srv.Routes().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200 with success:false, got %d", rec.Code)
	}
	var resp models.UploadResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if resp.Success || !strings.Contains(resp.Error, "failed to extract") {
		t.Errorf("Unexpected response: %+v", resp)
	}
}

func TestHandleQuery(t *testing.T) {
	svc := &stubService{queryResp: &models.QueryResponse{
		Answers: []models.AnswerRecord{{DocName: "report.txt", Answer: "Revenue grew.", Citation: "Page 1, Para 1"}},
		Themes:  "Theme 1 - Growth",
	}}
	srv := New(svc, t.TempDir())

	form := url.Values{"user_query": {"How did revenue change?"}, "session_id": {"s1"}}
	req := httptest.NewRequest(http.MethodPost, "/query/", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()

	srv.Routes().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	var resp models.QueryResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if len(resp.Answers) != 1 || resp.Themes != "Theme 1 - Growth" {
		t.Errorf("Unexpected response: %+v", resp)
	}
	if svc.gotQuery != "How did revenue change?" {
		t.Errorf("Service got wrong query: %q", svc.gotQuery)
	}
}

func TestHandleDelete(t *testing.T) {
	svc := &stubService{deleteMsg: "Index themes-s1 deleted."}
	srv := New(svc, t.TempDir())

	form := url.Values{"session_id": {"s1"}}
	req := httptest.NewRequest(http.MethodDelete, "/delete/", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()

	srv.Routes().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	var resp models.DeleteResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if !resp.Success || resp.Message != "Index themes-s1 deleted." {
		t.Errorf("Unexpected response: %+v", resp)
	}
}
