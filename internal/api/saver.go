package api

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"draftpad/internal/domain"
	"draftpad/internal/domain/services"
)

// defaultCleanupDelay gives a completed save time to settle before the
// temporary file is reaped.
const defaultCleanupDelay = 100 * time.Millisecond

// LocalSaver implements services.FileSaver by writing the payload to a
// temporary file in the target directory and renaming it into place.
// The temporary file is removed on every exit path, after a short delay.
type LocalSaver struct {
	dir          string
	cleanupDelay time.Duration
	logger       *slog.Logger
}

var _ services.FileSaver = (*LocalSaver)(nil)

// NewLocalSaver saves files into dir, creating it on first use.
func NewLocalSaver(dir string, logger *slog.Logger) *LocalSaver {
	return &LocalSaver{
		dir:          dir,
		cleanupDelay: defaultCleanupDelay,
		logger:       logger,
	}
}

// Save writes the payload under filename inside the saver's directory.
func (s *LocalSaver) Save(payload []byte, filename string) error {
	if len(payload) == 0 {
		return fmt.Errorf("%w: nothing to save", domain.ErrValidation)
	}

	name := filepath.Base(filename)
	if name == "" || name == "." || name == string(filepath.Separator) {
		name = "document"
	}

	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return fmt.Errorf("failed to download file: %w", err)
	}

	tmp, err := os.CreateTemp(s.dir, ".draftpad-*")
	if err != nil {
		return fmt.Errorf("failed to download file: %w", err)
	}
	tmpName := tmp.Name()
	defer s.scheduleCleanup(tmpName)

	if _, err := tmp.Write(payload); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to download file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to download file: %w", err)
	}

	target := filepath.Join(s.dir, name)
	if err := os.Rename(tmpName, target); err != nil {
		return fmt.Errorf("failed to download file: %w", err)
	}

	s.logger.Info("file saved",
		"path", target,
		"bytes", len(payload),
	)

	return nil
}

// scheduleCleanup removes the temporary file after the grace delay. After
// a successful rename the file no longer exists and removal is a no-op.
func (s *LocalSaver) scheduleCleanup(path string) {
	go func() {
		time.Sleep(s.cleanupDelay)
		os.Remove(path)
	}()
}
