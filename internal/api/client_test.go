package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"draftpad/internal/config"
	"draftpad/internal/domain"
	"draftpad/internal/domain/services"
	"draftpad/internal/formats"
)

func newTestClient(t *testing.T, baseURL string) *Client {
	t.Helper()

	registry, err := formats.NewRegistry()
	if err != nil {
		t.Fatalf("NewRegistry() unexpected error: %v", err)
	}

	cfg := &config.Config{
		APIBaseURL:     baseURL,
		RequestTimeout: 5 * time.Second,
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	return NewClient(cfg, registry, logger)
}

func TestUploadSuccess(t *testing.T) {
	var gotPath, gotFilename string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path

		file, header, err := r.FormFile("file")
		if err != nil {
			t.Errorf("expected multipart field %q: %v", "file", err)
			http.Error(w, `{"error":"bad form"}`, http.StatusBadRequest)
			return
		}
		defer file.Close()
		gotFilename = header.Filename

		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{
			"success": true,
			"document": {"id":"d1","originalName":"a.txt","type":"text","language":"en","html":"<p>hi</p>"}
		}`)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	result, err := client.Upload(context.Background(), &services.UploadFile{
		Name:    "a.txt",
		Content: strings.NewReader("hello upload"),
		Size:    12,
	})
	if err != nil {
		t.Fatalf("Upload() unexpected error: %v", err)
	}

	if gotPath != "/documents/upload" {
		t.Errorf("request path = %q, want /documents/upload", gotPath)
	}
	if gotFilename != "a.txt" {
		t.Errorf("multipart filename = %q, want a.txt", gotFilename)
	}
	if result.Document == nil || result.Document.ID != "d1" {
		t.Fatalf("Document = %+v, want id d1", result.Document)
	}
	if result.Document.HTML != "<p>hi</p>" {
		t.Errorf("Document.HTML = %q, want <p>hi</p>", result.Document.HTML)
	}
}

func TestUploadDefaultsLanguage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"success":true,"document":{"id":"d1","originalName":"a.txt","type":"text","html":"<p>hi</p>"}}`)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	result, err := client.Upload(context.Background(), &services.UploadFile{
		Name:    "a.txt",
		Content: strings.NewReader("x"),
	})
	if err != nil {
		t.Fatalf("Upload() unexpected error: %v", err)
	}
	if result.Document.Language != "en" {
		t.Errorf("Language = %q, want default en", result.Document.Language)
	}
}

func TestUploadValidation(t *testing.T) {
	requests := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)

	tests := []struct {
		name string
		file *services.UploadFile
	}{
		{name: "nil file", file: nil},
		{name: "nil content", file: &services.UploadFile{Name: "a.txt"}},
		{name: "blank name", file: &services.UploadFile{Name: "  ", Content: strings.NewReader("x")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := client.Upload(context.Background(), tt.file)
			if !errors.Is(err, domain.ErrValidation) {
				t.Errorf("Upload() error = %v, want ErrValidation", err)
			}
		})
	}

	if requests != 0 {
		t.Errorf("validation failures reached the network: %d requests", requests)
	}
}

func TestUploadBackendError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnprocessableEntity)
		io.WriteString(w, `{"error":"unsupported file type"}`)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	_, err := client.Upload(context.Background(), &services.UploadFile{
		Name:    "a.xyz",
		Content: strings.NewReader("x"),
	})
	if err == nil {
		t.Fatal("Upload() expected error, got nil")
	}

	var appErr *domain.ApplicationError
	if !errors.As(err, &appErr) {
		t.Fatalf("Upload() error = %T, want *domain.ApplicationError", err)
	}
	if appErr.Message != "unsupported file type" {
		t.Errorf("Message = %q, want backend-supplied text", appErr.Message)
	}
	if appErr.Status != http.StatusUnprocessableEntity {
		t.Errorf("Status = %d, want 422", appErr.Status)
	}
}

func TestUploadStatusLineFallback(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		io.WriteString(w, "not json at all")
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	_, err := client.Upload(context.Background(), &services.UploadFile{
		Name:    "a.txt",
		Content: strings.NewReader("x"),
	})
	if err == nil {
		t.Fatal("Upload() expected error, got nil")
	}
	if err.Error() != "HTTP 500: Internal Server Error" {
		t.Errorf("error = %q, want generic status-line message", err.Error())
	}
}

func TestUploadTransportFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // connection refused from here on

	client := newTestClient(t, server.URL)
	_, err := client.Upload(context.Background(), &services.UploadFile{
		Name:    "a.txt",
		Content: strings.NewReader("x"),
	})
	if !errors.Is(err, domain.ErrServerUnreachable) {
		t.Fatalf("Upload() error = %v, want ErrServerUnreachable", err)
	}
	if !strings.Contains(err.Error(), "backend is running") {
		t.Errorf("error = %q, want connectivity hint", err.Error())
	}
}

func TestUploadMissingDocument(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"success":true}`)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	_, err := client.Upload(context.Background(), &services.UploadFile{
		Name:    "a.txt",
		Content: strings.NewReader("x"),
	})
	if !errors.Is(err, domain.ErrEmptyResponse) {
		t.Errorf("Upload() error = %v, want ErrEmptyResponse", err)
	}
}

func TestUploadReportedFailureOnSuccessStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"success":false,"error":"virus scan rejected the file"}`)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	_, err := client.Upload(context.Background(), &services.UploadFile{
		Name:    "a.txt",
		Content: strings.NewReader("x"),
	})
	if err == nil {
		t.Fatal("Upload() expected error, got nil")
	}

	var appErr *domain.ApplicationError
	if !errors.As(err, &appErr) {
		t.Fatalf("Upload() error = %T (%v), want *domain.ApplicationError", err, err)
	}
	if appErr.Message != "virus scan rejected the file" {
		t.Errorf("Message = %q, want backend-supplied text", appErr.Message)
	}
	if errors.Is(err, domain.ErrEmptyResponse) {
		t.Error("backend failure must not collapse into ErrEmptyResponse")
	}
}

func TestEditSuccess(t *testing.T) {
	var gotBody map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/documents/edit" {
			t.Errorf("request path = %q, want /documents/edit", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode request body: %v", err)
		}
		io.WriteString(w, `{"success":true,"modifiedHTML":"<h1><b>Hi</b></h1>","explanation":"Bolded title"}`)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	result, err := client.Edit(context.Background(), &services.EditRequest{
		DocumentID:  "d1",
		Instruction: "make title bold",
		HTML:        "<h1>Hi</h1>",
		Language:    "en",
	})
	if err != nil {
		t.Fatalf("Edit() unexpected error: %v", err)
	}

	if result.ModifiedHTML != "<h1><b>Hi</b></h1>" {
		t.Errorf("ModifiedHTML = %q", result.ModifiedHTML)
	}
	if result.Explanation != "Bolded title" {
		t.Errorf("Explanation = %q", result.Explanation)
	}
	if gotBody["documentId"] != "d1" || gotBody["instruction"] != "make title bold" {
		t.Errorf("request body = %v", gotBody)
	}
	if gotBody["language"] != "en" {
		t.Errorf("language = %v, want en", gotBody["language"])
	}
}

func TestEditOmitsEmptyDocumentID(t *testing.T) {
	var gotBody map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&gotBody)
		io.WriteString(w, `{"success":true,"modifiedHTML":"<p>ok</p>","explanation":""}`)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	_, err := client.Edit(context.Background(), &services.EditRequest{
		Instruction: "tidy up",
		HTML:        "<p>x</p>",
	})
	if err != nil {
		t.Fatalf("Edit() unexpected error: %v", err)
	}

	if _, present := gotBody["documentId"]; present {
		t.Errorf("documentId should be omitted when empty, body = %v", gotBody)
	}
	if gotBody["language"] != "en" {
		t.Errorf("language = %v, want default en", gotBody["language"])
	}
}

func TestEditValidation(t *testing.T) {
	requests := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)

	tests := []struct {
		name string
		req  *services.EditRequest
	}{
		{name: "nil request", req: nil},
		{name: "empty instruction", req: &services.EditRequest{HTML: "<p>x</p>"}},
		{name: "empty html", req: &services.EditRequest{Instruction: "do it"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := client.Edit(context.Background(), tt.req)
			if !errors.Is(err, domain.ErrValidation) {
				t.Errorf("Edit() error = %v, want ErrValidation", err)
			}
		})
	}

	if requests != 0 {
		t.Errorf("validation failures reached the network: %d requests", requests)
	}
}

func TestEditEmptyModifiedHTML(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"success":true,"modifiedHTML":"","explanation":"nothing"}`)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	_, err := client.Edit(context.Background(), &services.EditRequest{
		Instruction: "do nothing",
		HTML:        "<p>x</p>",
	})
	if !errors.Is(err, domain.ErrEmptyResponse) {
		t.Errorf("Edit() error = %v, want ErrEmptyResponse", err)
	}
}

func TestEditReportedFailureOnSuccessStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"success":false,"error":"the model could not apply the instruction"}`)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	_, err := client.Edit(context.Background(), &services.EditRequest{
		Instruction: "translate to French",
		HTML:        "<p>x</p>",
	})
	if err == nil {
		t.Fatal("Edit() expected error, got nil")
	}

	var appErr *domain.ApplicationError
	if !errors.As(err, &appErr) {
		t.Fatalf("Edit() error = %T (%v), want *domain.ApplicationError", err, err)
	}
	if appErr.Message != "the model could not apply the instruction" {
		t.Errorf("Message = %q, want backend-supplied text", appErr.Message)
	}
	if errors.Is(err, domain.ErrEmptyResponse) {
		t.Error("backend failure must not collapse into ErrEmptyResponse")
	}
}

func TestConvertSuccess(t *testing.T) {
	payload := []byte{0x25, 0x50, 0x44, 0x46} // %PDF
	var gotBody map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/conversion/convert" {
			t.Errorf("request path = %q, want /conversion/convert", r.URL.Path)
		}
		json.NewDecoder(r.Body).Decode(&gotBody)
		w.Header().Set("Content-Type", "application/pdf")
		w.Write(payload)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	got, err := client.Convert(context.Background(), &services.ConvertRequest{
		HTML:     "<p>x</p>",
		Format:   "pdf",
		Filename: "a",
	})
	if err != nil {
		t.Fatalf("Convert() unexpected error: %v", err)
	}
	if string(got) != string(payload) {
		t.Errorf("Convert() payload = %v, want %v", got, payload)
	}
	if gotBody["format"] != "pdf" || gotBody["filename"] != "a" {
		t.Errorf("request body = %v", gotBody)
	}
}

func TestConvertEmptyPayload(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK) // 200 with no content
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	_, err := client.Convert(context.Background(), &services.ConvertRequest{
		HTML:   "<p>x</p>",
		Format: "pdf",
	})
	if !errors.Is(err, domain.ErrEmptyResponse) {
		t.Errorf("Convert() error = %v, want ErrEmptyResponse", err)
	}
}

func TestConvertValidation(t *testing.T) {
	requests := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)

	tests := []struct {
		name string
		req  *services.ConvertRequest
	}{
		{name: "empty html", req: &services.ConvertRequest{Format: "pdf"}},
		{name: "empty format", req: &services.ConvertRequest{HTML: "<p>x</p>"}},
		{name: "unknown format", req: &services.ConvertRequest{HTML: "<p>x</p>", Format: "yaml"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := client.Convert(context.Background(), tt.req)
			if !errors.Is(err, domain.ErrValidation) {
				t.Errorf("Convert() error = %v, want ErrValidation", err)
			}
		})
	}

	if requests != 0 {
		t.Errorf("validation failures reached the network: %d requests", requests)
	}
}

func TestConvertBackendError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		io.WriteString(w, `{"error":"converter crashed"}`)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	_, err := client.Convert(context.Background(), &services.ConvertRequest{
		HTML:   "<p>x</p>",
		Format: "docx",
	})
	if err == nil || err.Error() != "converter crashed" {
		t.Errorf("Convert() error = %v, want backend-supplied message", err)
	}
}
