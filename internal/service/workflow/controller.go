package workflow

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"draftpad/internal/config"
	"draftpad/internal/content"
	"draftpad/internal/domain"
	"draftpad/internal/domain/models"
	"draftpad/internal/domain/services"
	"draftpad/internal/formats"
)

// Step is the coarse workflow stage gating which user actions are valid.
type Step int

const (
	StepUpload Step = iota
	StepPreview
	StepEdit
)

func (s Step) String() string {
	switch s {
	case StepUpload:
		return "upload"
	case StepPreview:
		return "preview"
	case StepEdit:
		return "edit"
	default:
		return "unknown"
	}
}

// State is an immutable snapshot of the workflow. Snapshots are deep
// copies; observers never see a transition half-applied.
type State struct {
	Step         Step
	Document     *models.Document
	HTMLContent  string
	EditHistory  []models.EditRecord
	Language     string
	IsProcessing bool
	Err          string
}

// Controller owns the document lifecycle state machine. It is the sole
// writer of workflow state: user intents come in, preconditions are
// checked, I/O is delegated to the DocumentAPI, and the observable state
// is updated from the result or failure.
//
// Concurrency: one operation at a time. Any I/O entry point invoked
// while a request is outstanding fails fast with domain.ErrBusy and
// leaves the state untouched.
type Controller struct {
	api      services.DocumentAPI
	saver    services.FileSaver
	formats  *formats.Registry
	analyzer *content.Analyzer
	logger   *slog.Logger

	mu          sync.Mutex
	step        Step
	document    *models.Document
	htmlContent string
	history     editLog
	language    string
	processing  bool
	lastError   string

	subMu     sync.Mutex
	subs      map[int]chan State
	nextSubID int
}

// NewController creates a controller in the initial upload state.
func NewController(api services.DocumentAPI, saver services.FileSaver, registry *formats.Registry, logger *slog.Logger) *Controller {
	return &Controller{
		api:      api,
		saver:    saver,
		formats:  registry,
		analyzer: content.NewAnalyzer(),
		logger:   logger,
		step:     StepUpload,
		language: models.DefaultLanguage,
		subs:     make(map[int]chan State),
	}
}

// State returns a snapshot of the current workflow state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

func (c *Controller) snapshotLocked() State {
	return State{
		Step:         c.step,
		Document:     c.document.Clone(),
		HTMLContent:  c.htmlContent,
		EditHistory:  c.history.all(),
		Language:     c.language,
		IsProcessing: c.processing,
		Err:          c.lastError,
	}
}

// Subscribe registers an observer. The returned channel delivers state
// snapshots after each transition; slow consumers miss intermediate
// snapshots but always receive the latest one. The cancel func
// unregisters and closes the channel.
func (c *Controller) Subscribe() (<-chan State, func()) {
	ch := make(chan State, 1)

	c.subMu.Lock()
	id := c.nextSubID
	c.nextSubID++
	c.subs[id] = ch
	c.subMu.Unlock()

	cancel := func() {
		c.subMu.Lock()
		if sub, ok := c.subs[id]; ok {
			delete(c.subs, id)
			close(sub)
		}
		c.subMu.Unlock()
	}
	return ch, cancel
}

func (c *Controller) publish() {
	snapshot := c.State()

	c.subMu.Lock()
	for _, ch := range c.subs {
		select {
		case ch <- snapshot:
		default:
			// Evict the stale snapshot so the latest always lands.
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- snapshot:
			default:
			}
		}
	}
	c.subMu.Unlock()
}

// UploadDocument sends the file to the backend and, on success, moves the
// workflow to the preview step with the returned document as working
// content. On failure the workflow stays on the upload step with the
// error message set.
func (c *Controller) UploadDocument(ctx context.Context, file *services.UploadFile) error {
	c.mu.Lock()
	if c.step != StepUpload {
		c.mu.Unlock()
		return c.rejectf("a document is already loaded; reset the workflow first")
	}
	c.mu.Unlock()

	if err := c.begin(); err != nil {
		return err
	}
	defer c.end()

	result, err := c.api.Upload(ctx, file)
	if err != nil {
		c.fail("upload", err)
		return err
	}

	// The backend is the renderer; its markup is stored verbatim so
	// edits and exports round-trip exactly. Sanitization is a
	// presentation concern.
	doc := result.Document
	if doc.Language == "" {
		doc.Language = models.DefaultLanguage
	}
	if doc.Metadata == nil {
		doc.Metadata = &models.DocumentMetadata{}
	}
	if doc.Metadata.WordCount == 0 {
		doc.Metadata.WordCount = c.analyzer.WordCount(doc.HTML)
	}

	c.mu.Lock()
	c.document = doc
	c.htmlContent = doc.HTML
	c.language = doc.Language
	c.step = StepPreview
	c.mu.Unlock()

	c.logger.Info("document uploaded",
		"id", doc.ID,
		"name", doc.OriginalName,
		"type", doc.Type,
		"language", doc.Language,
		"word_count", doc.Metadata.WordCount,
	)

	return nil
}

// SubmitEdit sends one natural-language instruction to the backend and,
// on success, overwrites the working content with the modified markup and
// appends an edit record. Validation failures set the error synchronously
// and perform no I/O.
func (c *Controller) SubmitEdit(ctx context.Context, instruction string) error {
	// Trim only for the blank-check; the submitted text travels and is
	// recorded verbatim.
	if strings.TrimSpace(instruction) == "" {
		return c.rejectf("enter an instruction before applying an edit")
	}

	c.mu.Lock()
	html := c.htmlContent
	language := c.language
	var documentID string
	if c.document != nil {
		documentID = c.document.ID
	}
	c.mu.Unlock()

	if html == "" {
		return c.rejectf("no document content to edit")
	}

	if err := c.begin(); err != nil {
		return err
	}
	defer c.end()

	result, err := c.api.Edit(ctx, &services.EditRequest{
		DocumentID:  documentID,
		Instruction: instruction,
		HTML:        html,
		Language:    language,
	})
	if err != nil {
		c.fail("edit", err)
		return err
	}

	record := models.NewEditRecord(instruction, strings.TrimSpace(result.Explanation))

	c.mu.Lock()
	c.htmlContent = result.ModifiedHTML
	c.history.append(record)
	edits := c.history.len()
	c.mu.Unlock()

	c.logger.Info("edit applied",
		"document_id", documentID,
		"edits", edits,
	)

	return nil
}

// Export converts the working content to the given format and saves it
// locally under a filename derived from the original upload. A failed
// export leaves previously applied edits intact.
func (c *Controller) Export(ctx context.Context, format string) error {
	c.mu.Lock()
	html := c.htmlContent
	base := c.document.BaseName()
	c.mu.Unlock()

	if strings.TrimSpace(html) == "" {
		return c.rejectf("nothing to export yet")
	}

	if err := c.begin(); err != nil {
		return err
	}
	defer c.end()

	payload, err := c.api.Convert(ctx, &services.ConvertRequest{
		HTML:     html,
		Format:   format,
		Filename: base,
	})
	if err != nil {
		c.fail("export", err)
		return err
	}

	filename := base + c.extensionFor(format)
	if err := c.saver.Save(payload, filename); err != nil {
		c.fail("export", err)
		return err
	}

	c.logger.Info("document exported",
		"format", format,
		"filename", filename,
		"bytes", len(payload),
	)

	return nil
}

// GoToEdit navigates from preview to edit. Pure navigation, no I/O.
func (c *Controller) GoToEdit() error {
	c.mu.Lock()
	if c.document == nil {
		c.mu.Unlock()
		return c.rejectf("upload a document before editing")
	}
	c.step = StepEdit
	c.mu.Unlock()

	c.publish()
	return nil
}

// BackToPreview navigates from edit back to preview. Pure navigation,
// no I/O.
func (c *Controller) BackToPreview() error {
	c.mu.Lock()
	if c.document == nil {
		c.mu.Unlock()
		return c.rejectf("no document to preview")
	}
	c.step = StepPreview
	c.mu.Unlock()

	c.publish()
	return nil
}

// Reset returns the workflow to the initial upload state from any step,
// discarding all document-scoped data.
func (c *Controller) Reset() {
	c.mu.Lock()
	c.step = StepUpload
	c.document = nil
	c.htmlContent = ""
	c.history.clear()
	c.language = models.DefaultLanguage
	c.processing = false
	c.lastError = ""
	c.mu.Unlock()

	c.logger.Info("workflow reset")
	c.publish()
}

// DismissError clears the user-visible error message.
func (c *Controller) DismissError() {
	c.mu.Lock()
	c.lastError = ""
	c.mu.Unlock()

	c.publish()
}

// RecentHistory returns the newest edit records surfaced to the user,
// oldest first.
func (c *Controller) RecentHistory() []models.EditRecord {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.history.recent(config.VisibleHistoryEntries)
}

// begin enforces the busy-guard, clears any prior error and marks the
// controller processing.
func (c *Controller) begin() error {
	c.mu.Lock()
	if c.processing {
		c.mu.Unlock()
		return fmt.Errorf("%w: wait for the current operation to finish", domain.ErrBusy)
	}
	c.processing = true
	c.lastError = ""
	c.mu.Unlock()

	c.publish()
	return nil
}

// end clears the processing flag. Deferred by every I/O entry point so
// the flag is never left set, whatever the exit path.
func (c *Controller) end() {
	c.mu.Lock()
	c.processing = false
	c.mu.Unlock()

	c.publish()
}

// fail records the user-visible message for a failed operation. Already
// applied state is never rolled back.
func (c *Controller) fail(op string, err error) {
	c.mu.Lock()
	c.lastError = err.Error()
	c.mu.Unlock()

	c.logger.Warn(op+" failed", "error", err)
}

// rejectf handles synchronous precondition violations: the error message
// is set, no I/O happens, and a ValidationError is returned.
func (c *Controller) rejectf(format string, args ...any) error {
	message := fmt.Sprintf(format, args...)

	c.mu.Lock()
	c.lastError = message
	c.mu.Unlock()

	c.publish()
	return fmt.Errorf("%w: %s", domain.ErrValidation, message)
}

func (c *Controller) extensionFor(format string) string {
	f, err := c.formats.Get(format)
	if err != nil {
		return "." + format
	}
	return f.Extension
}
