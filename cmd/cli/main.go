package main

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"draftpad/internal/api"
	"draftpad/internal/config"
	"draftpad/internal/content"
	"draftpad/internal/domain/models"
	"draftpad/internal/domain/services"
	"draftpad/internal/formats"
	"draftpad/internal/service/workflow"

	"github.com/joho/godotenv"
)

// ANSI color codes
const (
	colorReset  = "\033[0m"
	colorGreen  = "\033[32m"
	colorRed    = "\033[31m"
	colorBlue   = "\033[34m"
	colorYellow = "\033[33m"
	colorCyan   = "\033[36m"
)

type CLI struct {
	ctx        context.Context
	controller *workflow.Controller
	registry   *formats.Registry
	sanitizer  *content.Sanitizer
	renderer   *content.MarkdownRenderer
	scanner    *bufio.Scanner
	logger     *slog.Logger
}

func main() {
	// Load .env file (silently ignore if it doesn't exist)
	_ = godotenv.Load()

	cfg := config.Load()

	logLevel := slog.LevelInfo
	if cfg.Environment == "dev" && cfg.Debug {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	registry, err := formats.NewRegistry()
	if err != nil {
		log.Fatalf("Failed to load export format registry: %v", err)
	}

	client := api.NewClient(cfg, registry, logger)
	saver := api.NewLocalSaver(cfg.DownloadDir, logger)
	controller := workflow.NewController(client, saver, registry, logger)

	logger.Info("draftpad starting",
		"environment", cfg.Environment,
		"api_base_url", cfg.APIBaseURL,
		"download_dir", cfg.DownloadDir,
	)

	cli := &CLI{
		ctx:        context.Background(),
		controller: controller,
		registry:   registry,
		sanitizer:  content.NewSanitizer(),
		renderer:   content.NewMarkdownRenderer(),
		scanner:    bufio.NewScanner(os.Stdin),
		logger:     logger,
	}
	cli.run()
}

func (cli *CLI) run() {
	fmt.Printf("%sdraftpad — document workflow client%s\n", colorCyan, colorReset)
	fmt.Println("Type 'help' for commands.")

	for {
		state := cli.controller.State()
		fmt.Printf("\n%s[%s]%s > ", colorBlue, state.Step, colorReset)

		line, ok := cli.readLine()
		if !ok {
			// stdin closed
			return
		}
		if line == "" {
			continue
		}

		command, arg := splitCommand(line)
		switch command {
		case "upload":
			cli.upload(arg)
		case "preview":
			cli.preview()
		case "edit":
			cli.goToEdit()
		case "instruct":
			cli.instruct(arg)
		case "back":
			cli.report(cli.controller.BackToPreview())
		case "export":
			cli.export(arg)
		case "formats":
			cli.listFormats()
		case "history":
			cli.history()
		case "status":
			cli.status()
		case "reset":
			cli.controller.Reset()
			fmt.Printf("%s✓ Workflow reset%s\n", colorGreen, colorReset)
		case "dismiss":
			cli.controller.DismissError()
		case "help":
			cli.help()
		case "quit", "exit":
			cli.logger.Info("cli exiting")
			fmt.Printf("%s✓ Goodbye!%s\n", colorGreen, colorReset)
			return
		default:
			fmt.Printf("%s⚠ Unknown command %q. Type 'help'.%s\n", colorYellow, command, colorReset)
		}
	}
}

// upload applies the advisory client-side filter before any I/O: accepted
// extension and size cap. The backend remains the authority.
func (cli *CLI) upload(path string) {
	if path == "" {
		fmt.Printf("%s⚠ Usage: upload <path>%s\n", colorYellow, colorReset)
		return
	}

	info, err := os.Stat(path)
	if err != nil {
		fmt.Printf("%s✗ Cannot read %s: %v%s\n", colorRed, path, err, colorReset)
		return
	}
	if !acceptedExtension(path) {
		fmt.Printf("%s✗ Unsupported file type %s (accepted: %s)%s\n",
			colorRed, filepath.Ext(path), strings.Join(config.AcceptedUploadExtensions, ", "), colorReset)
		return
	}
	if info.Size() > config.MaxUploadSizeBytes {
		fmt.Printf("%s✗ File exceeds the %dMB upload limit%s\n",
			colorRed, config.MaxUploadSizeBytes>>20, colorReset)
		return
	}

	f, err := os.Open(path)
	if err != nil {
		fmt.Printf("%s✗ Cannot open %s: %v%s\n", colorRed, path, err, colorReset)
		return
	}
	defer f.Close()

	fmt.Println("Uploading...")
	err = cli.controller.UploadDocument(cli.ctx, &services.UploadFile{
		Name:    filepath.Base(path),
		Content: f,
		Size:    info.Size(),
	})
	if err != nil {
		cli.showError()
		return
	}

	state := cli.controller.State()
	doc := state.Document
	fmt.Printf("%s✓ Uploaded %s (%s)%s\n", colorGreen, doc.OriginalName, doc.Type.Label(), colorReset)
	fmt.Printf("  Language: %s | %s\n", doc.Language, metadataLine(doc))
}

func (cli *CLI) preview() {
	state := cli.controller.State()
	if state.HTMLContent == "" {
		fmt.Printf("%s⚠ Nothing to preview yet%s\n", colorYellow, colorReset)
		return
	}

	// Sanitize only this display copy; the working content stays exactly
	// as the backend returned it.
	safe := cli.sanitizer.Sanitize(state.HTMLContent)
	markdown, err := cli.renderer.Render(safe)
	if err != nil {
		cli.logger.Warn("preview render failed", "error", err)
		fmt.Println(safe)
		return
	}
	fmt.Println(strings.Repeat("─", 40))
	fmt.Println(markdown)
	fmt.Println(strings.Repeat("─", 40))
}

func (cli *CLI) goToEdit() {
	if err := cli.controller.GoToEdit(); err != nil {
		cli.showError()
		return
	}
	fmt.Println("Editing. Use 'instruct <text>' to apply changes, 'back' to return to preview.")
}

func (cli *CLI) instruct(instruction string) {
	fmt.Println("Applying edit...")
	if err := cli.controller.SubmitEdit(cli.ctx, instruction); err != nil {
		cli.showError()
		return
	}

	history := cli.controller.RecentHistory()
	latest := history[len(history)-1]
	fmt.Printf("%s✓ %s%s\n", colorGreen, latest.Explanation, colorReset)
}

func (cli *CLI) export(format string) {
	if format == "" {
		fmt.Printf("%s⚠ Usage: export <format> (see 'formats')%s\n", colorYellow, colorReset)
		return
	}

	fmt.Printf("Exporting as %s...\n", format)
	if err := cli.controller.Export(cli.ctx, format); err != nil {
		cli.showError()
		return
	}
	fmt.Printf("%s✓ Export saved%s\n", colorGreen, colorReset)
}

func (cli *CLI) listFormats() {
	for _, f := range cli.registry.List() {
		fmt.Printf("  %-6s %s (%s)\n", f.ID, f.Label, f.Extension)
	}
}

func (cli *CLI) history() {
	records := cli.controller.RecentHistory()
	if len(records) == 0 {
		fmt.Println("No edits yet.")
		return
	}
	for _, rec := range records {
		fmt.Printf("  %s  %q — %s\n",
			rec.AppliedAt.Format("15:04:05"), rec.Instruction, rec.Explanation)
	}
}

func (cli *CLI) status() {
	state := cli.controller.State()
	fmt.Printf("  Step: %s\n", state.Step)
	if state.Document != nil {
		fmt.Printf("  Document: %s (%s)\n", state.Document.OriginalName, state.Document.Type.Label())
		fmt.Printf("  %s\n", metadataLine(state.Document))
	}
	fmt.Printf("  Edits: %d | Language: %s | Processing: %v\n",
		len(state.EditHistory), state.Language, state.IsProcessing)
	if state.Err != "" {
		fmt.Printf("  %sError: %s%s\n", colorRed, state.Err, colorReset)
	}
}

func (cli *CLI) help() {
	fmt.Println("  upload <path>     upload a document (pdf, docx, doc, jpg, jpeg, png, txt; ≤10MB)")
	fmt.Println("  preview           show the current document as markdown")
	fmt.Println("  edit              switch to the edit step")
	fmt.Println("  instruct <text>   apply a natural-language edit")
	fmt.Println("  back              return to preview")
	fmt.Println("  export <format>   convert and save locally")
	fmt.Println("  formats           list export formats")
	fmt.Println("  history           show recent edits")
	fmt.Println("  status            show workflow state")
	fmt.Println("  reset             discard the document and start over")
	fmt.Println("  dismiss           clear the error banner")
	fmt.Println("  quit              exit")
}

func (cli *CLI) report(err error) {
	if err != nil {
		cli.showError()
	}
}

// showError prints the workflow's user-visible error banner.
func (cli *CLI) showError() {
	state := cli.controller.State()
	if state.Err != "" {
		fmt.Printf("%s✗ %s%s\n", colorRed, state.Err, colorReset)
	}
}

func (cli *CLI) readLine() (string, bool) {
	if !cli.scanner.Scan() {
		return "", false
	}
	return strings.TrimSpace(cli.scanner.Text()), true
}

func splitCommand(line string) (string, string) {
	parts := strings.SplitN(line, " ", 2)
	command := strings.ToLower(parts[0])
	if len(parts) == 1 {
		return command, ""
	}
	return command, strings.TrimSpace(parts[1])
}

func acceptedExtension(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, accepted := range config.AcceptedUploadExtensions {
		if ext == accepted {
			return true
		}
	}
	return false
}

// metadataLine renders display-only metadata; absent fields read as
// "not available".
func metadataLine(doc *models.Document) string {
	size := "not available"
	words := "not available"
	if doc.Metadata != nil {
		if doc.Metadata.FileSize > 0 {
			size = fmt.Sprintf("%.1fKB", float64(doc.Metadata.FileSize)/1024)
		}
		if doc.Metadata.WordCount > 0 {
			words = fmt.Sprintf("%d", doc.Metadata.WordCount)
		}
	}
	return fmt.Sprintf("Size: %s | Words: %s", size, words)
}
