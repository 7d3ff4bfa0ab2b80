package config

const (
	// MaxUploadSizeBytes is the advisory client-side cap on upload size.
	// The backend performs the authoritative check; this only spares the
	// user a round trip for files that would certainly be rejected.
	MaxUploadSizeBytes = 10 << 20 // 10MB

	// MaxInstructionLength is the maximum length for edit instructions.
	// Long instructions degrade edit quality and inflate request bodies.
	MaxInstructionLength = 2000

	// VisibleHistoryEntries is how many edit records are surfaced to the
	// user. The full history is retained for the session.
	VisibleHistoryEntries = 5
)

// AcceptedUploadExtensions is the advisory client-side file filter.
// Authoritative validation is the backend's responsibility.
var AcceptedUploadExtensions = []string{
	".pdf", ".docx", ".doc", ".jpg", ".jpeg", ".png", ".txt",
}
