package services

import (
	"context"
	"io"

	"draftpad/internal/domain/models"
)

// UploadFile represents a file selected by the user for upload.
type UploadFile struct {
	Name    string
	Content io.Reader
	Size    int64
}

// UploadResult mirrors the backend's upload response.
type UploadResult struct {
	Success  bool             `json:"success"`
	Document *models.Document `json:"document"`
}

// EditRequest carries one natural-language edit instruction together with
// the current working markup. DocumentID is optional: a document may not
// yet have a backend identity.
type EditRequest struct {
	DocumentID  string
	Instruction string
	HTML        string
	Language    string
}

// EditResult mirrors the backend's edit response.
type EditResult struct {
	Success      bool   `json:"success"`
	ModifiedHTML string `json:"modifiedHTML"`
	Explanation  string `json:"explanation"`
}

// ConvertRequest asks the backend to render markup into an export format.
type ConvertRequest struct {
	HTML     string
	Format   string
	Filename string
}

// DocumentAPI wraps the three remote operations the workflow engine
// depends on. Implementations are stateless: no retry, no caching.
//
// All operations normalize errors into the domain taxonomy: validation
// failures never reach the network, transport failures surface as
// ServerUnreachableError, non-2xx responses as ApplicationError, and
// nominally successful but unusable payloads as EmptyResponseError.
type DocumentAPI interface {
	Upload(ctx context.Context, file *UploadFile) (*UploadResult, error)
	Edit(ctx context.Context, req *EditRequest) (*EditResult, error)
	Convert(ctx context.Context, req *ConvertRequest) ([]byte, error)
}

// FileSaver persists an exported payload on the local machine.
type FileSaver interface {
	Save(payload []byte, filename string) error
}
