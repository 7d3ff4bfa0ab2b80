package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strings"

	"draftpad/internal/config"
	"draftpad/internal/domain"
	"draftpad/internal/domain/models"
	"draftpad/internal/domain/services"
	"draftpad/internal/formats"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// maxErrorBodyBytes bounds how much of an error response body is read
// while looking for a structured message.
const maxErrorBodyBytes = 4 << 10

// uploadFieldName is the multipart field the backend expects the file under.
const uploadFieldName = "file"

// Client implements services.DocumentAPI against the HTTP backend
// described by the configured base URL. Each call is independent and
// stateless: no retry, no caching.
type Client struct {
	baseURL    string
	httpClient *http.Client
	formats    *formats.Registry
	logger     *slog.Logger
}

var _ services.DocumentAPI = (*Client)(nil)

// NewClient builds a client from configuration.
func NewClient(cfg *config.Config, registry *formats.Registry, logger *slog.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(cfg.APIBaseURL, "/"),
		httpClient: &http.Client{
			Timeout: cfg.RequestTimeout,
		},
		formats: registry,
		logger:  logger,
	}
}

// Upload posts the file as multipart form data and returns the created
// document.
func (c *Client) Upload(ctx context.Context, file *services.UploadFile) (*services.UploadResult, error) {
	if file == nil || file.Content == nil {
		return nil, fmt.Errorf("%w: no file selected", domain.ErrValidation)
	}
	if strings.TrimSpace(file.Name) == "" {
		return nil, fmt.Errorf("%w: file name is required", domain.ErrValidation)
	}

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile(uploadFieldName, file.Name)
	if err != nil {
		return nil, fmt.Errorf("create form file: %w", err)
	}
	if _, err := io.Copy(part, file.Content); err != nil {
		return nil, fmt.Errorf("read upload content: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("finalize multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/documents/upload", &body)
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, unreachable(err)
	}
	defer resp.Body.Close()

	if !success(resp.StatusCode) {
		return nil, c.responseError(resp)
	}

	var result struct {
		services.UploadResult
		Error string `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode upload response: %w", err)
	}
	if err := reportedFailure(result.Success, result.Error, resp.StatusCode); err != nil {
		return nil, err
	}
	if !result.Success || result.Document == nil {
		return nil, fmt.Errorf("%w: upload succeeded but no document was returned", domain.ErrEmptyResponse)
	}
	if result.Document.Language == "" {
		result.Document.Language = models.DefaultLanguage
	}

	c.logger.Debug("document uploaded",
		"id", result.Document.ID,
		"name", result.Document.OriginalName,
		"type", result.Document.Type,
	)

	return &result.UploadResult, nil
}

type editPayload struct {
	DocumentID  string `json:"documentId,omitempty"`
	Instruction string `json:"instruction"`
	HTML        string `json:"html"`
	Language    string `json:"language"`
}

// Edit sends one instruction together with the current markup and returns
// the modified markup. DocumentID may be empty: a document without a
// backend identity is still editable.
func (c *Client) Edit(ctx context.Context, req *services.EditRequest) (*services.EditResult, error) {
	if req == nil {
		return nil, fmt.Errorf("%w: edit request is required", domain.ErrValidation)
	}
	if err := validation.ValidateStruct(req,
		validation.Field(&req.Instruction,
			validation.Required.Error("instruction is required"),
			validation.Length(1, config.MaxInstructionLength),
		),
		validation.Field(&req.HTML, validation.Required.Error("document content is required")),
	); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	language := req.Language
	if language == "" {
		language = models.DefaultLanguage
	}

	resp, err := c.postJSON(ctx, "/documents/edit", editPayload{
		DocumentID:  req.DocumentID,
		Instruction: req.Instruction,
		HTML:        req.HTML,
		Language:    language,
	})
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if !success(resp.StatusCode) {
		return nil, c.responseError(resp)
	}

	var result struct {
		services.EditResult
		Error string `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode edit response: %w", err)
	}
	if err := reportedFailure(result.Success, result.Error, resp.StatusCode); err != nil {
		return nil, err
	}
	if !result.Success || strings.TrimSpace(result.ModifiedHTML) == "" {
		return nil, fmt.Errorf("%w: edit returned no modified content", domain.ErrEmptyResponse)
	}

	c.logger.Debug("edit applied",
		"document_id", req.DocumentID,
		"instruction_len", len(req.Instruction),
	)

	return &result.EditResult, nil
}

type convertPayload struct {
	HTML     string `json:"html"`
	Format   string `json:"format"`
	Filename string `json:"filename,omitempty"`
}

// Convert renders the markup into the requested format and returns the
// binary payload. A zero-length payload is a failure even on a success
// status; it guards against backends that return 200 with no content.
func (c *Client) Convert(ctx context.Context, req *services.ConvertRequest) ([]byte, error) {
	if req == nil {
		return nil, fmt.Errorf("%w: convert request is required", domain.ErrValidation)
	}
	if err := validation.ValidateStruct(req,
		validation.Field(&req.HTML, validation.Required.Error("document content is required")),
		validation.Field(&req.Format,
			validation.Required.Error("export format is required"),
			validation.By(c.knownFormat),
		),
	); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	resp, err := c.postJSON(ctx, "/conversion/convert", convertPayload{
		HTML:     req.HTML,
		Format:   req.Format,
		Filename: req.Filename,
	})
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if !success(resp.StatusCode) {
		return nil, c.responseError(resp)
	}

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read conversion payload: %w", err)
	}
	if len(payload) == 0 {
		return nil, fmt.Errorf("%w: conversion returned an empty %s payload", domain.ErrEmptyResponse, req.Format)
	}

	c.logger.Debug("conversion complete",
		"format", req.Format,
		"bytes", len(payload),
	)

	return payload, nil
}

// postJSON marshals payload and posts it to path under the base URL.
// Transport failures come back as ServerUnreachableError.
func (c *Client) postJSON(ctx context.Context, path string, payload any) (*http.Response, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, unreachable(err)
	}
	return resp, nil
}

// responseError extracts a human-readable message from a non-2xx
// response: a structured {error} body when present, the status line
// otherwise.
func (c *Client) responseError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))

	var payload struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && strings.TrimSpace(payload.Error) != "" {
		return &domain.ApplicationError{Message: payload.Error, Status: resp.StatusCode}
	}

	return &domain.ApplicationError{
		Message: fmt.Sprintf("HTTP %d: %s", resp.StatusCode, http.StatusText(resp.StatusCode)),
		Status:  resp.StatusCode,
	}
}

// reportedFailure surfaces a backend-reported failure delivered on a
// success status. Some backends answer 200 with {success:false, error};
// the message they carry beats a generic empty-response error.
func reportedFailure(ok bool, message string, status int) error {
	if ok {
		return nil
	}
	if msg := strings.TrimSpace(message); msg != "" {
		return &domain.ApplicationError{Message: msg, Status: status}
	}
	return nil
}

func (c *Client) knownFormat(value interface{}) error {
	id, _ := value.(string)
	if id == "" {
		return nil // Required already covers the empty case
	}
	if !c.formats.Known(id) {
		return fmt.Errorf("unknown export format %q", id)
	}
	return nil
}

func success(status int) bool {
	return status >= 200 && status < 300
}

func unreachable(err error) error {
	return &domain.ServerUnreachableError{
		Message: fmt.Sprintf("cannot reach the backend: %v (check if the backend is running)", err),
	}
}
