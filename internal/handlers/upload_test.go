package handlers

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"quizforge-backend/internal/models"
	"quizforge-backend/internal/services"
)

func multipartRequest(t *testing.T, filename, content string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		t.Fatalf("failed to create form file: %v", err)
	}
	part.Write([]byte(content))
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/upload-file", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestUploadFile_PDFRejected(t *testing.T) {
	h := NewUploadHandler(services.NewUploadService(nil, "", "", nil), services.NewExtractService(nil))

	rec := httptest.NewRecorder()
	h.UploadFile(rec, multipartRequest(t, "paper.pdf", "%PDF-1.4 fake content"))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for .pdf, got %d", rec.Code)
	}

	var resp models.ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode error envelope: %v", err)
	}
	if resp.Error.Code != "UNSUPPORTED_FORMAT" {
		t.Fatalf("expected UNSUPPORTED_FORMAT, got %q", resp.Error.Code)
	}
	if !strings.Contains(strings.ToLower(resp.Error.Message), "not supported") {
		t.Fatalf("error message should mention the unsupported type, got %q", resp.Error.Message)
	}
}

func TestUploadFile_TextExtracted(t *testing.T) {
	h := NewUploadHandler(services.NewUploadService(nil, "", "", nil), services.NewExtractService(nil))

	content := "Thermodynamics studies heat, work and energy transfer."
	rec := httptest.NewRecorder()
	h.UploadFile(rec, multipartRequest(t, "notes.txt", content))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Success  bool   `json:"success"`
		Text     string `json:"text"`
		Filename string `json:"filename"`
		FileSize int    `json:"fileSize"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if !resp.Success || resp.Text != content {
		t.Fatalf("unexpected response: %+v", resp)
	}
	if resp.Filename != "notes.txt" || resp.FileSize != len(content) {
		t.Fatalf("unexpected metadata: %+v", resp)
	}
}

func TestUploadFile_ShortContentRejected(t *testing.T) {
	h := NewUploadHandler(services.NewUploadService(nil, "", "", nil), services.NewExtractService(nil))

	rec := httptest.NewRecorder()
	h.UploadFile(rec, multipartRequest(t, "tiny.md", "short"))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}

	var resp models.ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode error envelope: %v", err)
	}
	if resp.Error.Code != "CONTENT_TOO_SHORT" {
		t.Fatalf("expected CONTENT_TOO_SHORT, got %q", resp.Error.Code)
	}
}

func TestUploadFile_MissingFilePart(t *testing.T) {
	h := NewUploadHandler(services.NewUploadService(nil, "", "", nil), services.NewExtractService(nil))

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	mw.WriteField("other", "value")
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/upload-file", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	h.UploadFile(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestGetUploadURL_RejectsUnsupportedExtension(t *testing.T) {
	h := NewUploadHandler(services.NewUploadService(nil, "", "", nil), services.NewExtractService(nil))

	body, _ := json.Marshal(models.UploadURLRequest{Filename: "slides.pptx", ContentType: "application/vnd.ms-powerpoint"})
	req := httptest.NewRequest(http.MethodPost, "/api/get-upload-url", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	h.GetUploadURL(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for .pptx, got %d", rec.Code)
	}

	var resp models.ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode error envelope: %v", err)
	}
	if resp.Error.Code != "UNSUPPORTED_FORMAT" {
		t.Fatalf("expected UNSUPPORTED_FORMAT, got %q", resp.Error.Code)
	}
}

func TestGetUploadURL_RequiresFilename(t *testing.T) {
	h := NewUploadHandler(services.NewUploadService(nil, "", "", nil), services.NewExtractService(nil))

	req := httptest.NewRequest(http.MethodPost, "/api/get-upload-url", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()
	h.GetUploadURL(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}
