package models

import (
	"path/filepath"
	"strings"
)

// DefaultLanguage is assumed when the backend reports no language.
const DefaultLanguage = "en"

// DocumentType drives icon/label selection only; it carries no behavior.
type DocumentType string

const (
	DocumentTypePDF   DocumentType = "pdf"
	DocumentTypeImage DocumentType = "image"
	DocumentTypeDOCX  DocumentType = "docx"
	DocumentTypeText  DocumentType = "text"
	DocumentTypeOther DocumentType = "other"
)

// Label returns a human-readable name for display.
func (t DocumentType) Label() string {
	switch t {
	case DocumentTypePDF:
		return "PDF document"
	case DocumentTypeImage:
		return "Image"
	case DocumentTypeDOCX:
		return "Word document"
	case DocumentTypeText:
		return "Text document"
	default:
		return "Document"
	}
}

// DetectDocumentType classifies a filename by extension.
func DetectDocumentType(filename string) DocumentType {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		return DocumentTypePDF
	case ".jpg", ".jpeg", ".png":
		return DocumentTypeImage
	case ".docx", ".doc":
		return DocumentTypeDOCX
	case ".txt":
		return DocumentTypeText
	default:
		return DocumentTypeOther
	}
}

// DocumentMetadata is display-only; absent fields render as "not available".
type DocumentMetadata struct {
	FileSize  int64 `json:"fileSize,omitempty"`
	WordCount int   `json:"wordCount,omitempty"`
}

// Document is the backend-processed representation of an uploaded file.
// HTML holds the rendered markup and is overwritten by every successful
// edit; the whole entity is discarded on reset.
type Document struct {
	ID           string            `json:"id"`
	OriginalName string            `json:"originalName"`
	Type         DocumentType      `json:"type"`
	Language     string            `json:"language"`
	HTML         string            `json:"html"`
	Metadata     *DocumentMetadata `json:"metadata,omitempty"`
}

// BaseName returns the original filename without its extension, falling
// back to "document" when no original name is known.
func (d *Document) BaseName() string {
	if d == nil {
		return "document"
	}
	name := strings.TrimSpace(d.OriginalName)
	if name == "" {
		return "document"
	}
	base := strings.TrimSuffix(name, filepath.Ext(name))
	if base == "" {
		return "document"
	}
	return base
}

// Clone returns a deep copy so state snapshots cannot be mutated through
// shared pointers.
func (d *Document) Clone() *Document {
	if d == nil {
		return nil
	}
	clone := *d
	if d.Metadata != nil {
		meta := *d.Metadata
		clone.Metadata = &meta
	}
	return &clone
}
