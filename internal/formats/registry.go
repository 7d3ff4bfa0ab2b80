package formats

import (
	"embed"
	"fmt"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed config/*.yaml
var configFiles embed.FS

// ExportFormat describes one format the conversion backend can produce.
type ExportFormat struct {
	ID          string `yaml:"id"`
	Extension   string `yaml:"extension"`
	ContentType string `yaml:"content_type"`
	Label       string `yaml:"label"`
}

type formatFile struct {
	Formats []ExportFormat `yaml:"formats"`
}

// Registry holds the known export formats, loaded from the embedded YAML
// at construction time.
type Registry struct {
	formats []ExportFormat
	byID    map[string]*ExportFormat
	mu      sync.RWMutex
}

// NewRegistry loads the embedded format definitions.
func NewRegistry() (*Registry, error) {
	data, err := configFiles.ReadFile("config/formats.yaml")
	if err != nil {
		return nil, fmt.Errorf("failed to read format config: %w", err)
	}

	var file formatFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to unmarshal format config: %w", err)
	}
	if len(file.Formats) == 0 {
		return nil, fmt.Errorf("format config defines no formats")
	}

	r := &Registry{
		formats: file.Formats,
		byID:    make(map[string]*ExportFormat, len(file.Formats)),
	}
	for i := range r.formats {
		r.byID[r.formats[i].ID] = &r.formats[i]
	}

	return r, nil
}

// Get returns the format definition for the given ID.
func (r *Registry) Get(id string) (*ExportFormat, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	f, ok := r.byID[id]
	if !ok {
		return nil, fmt.Errorf("unknown export format: %s", id)
	}
	return f, nil
}

// Known reports whether the ID names a supported format.
func (r *Registry) Known(id string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.byID[id]
	return ok
}

// List returns all formats in the order defined in the YAML.
func (r *Registry) List() []ExportFormat {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]ExportFormat, len(r.formats))
	copy(out, r.formats)
	return out
}
