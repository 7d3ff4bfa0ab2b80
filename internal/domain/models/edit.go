package models

import (
	"time"

	"github.com/google/uuid"
)

// DefaultEditExplanation is recorded when the backend supplies none.
const DefaultEditExplanation = "Changes applied successfully"

// EditRecord is one logged instruction-and-result pair. Records are
// append-only: never mutated or removed individually, cleared only on
// reset. AppliedAt is a structured instant; formatting is a presentation
// concern.
type EditRecord struct {
	ID          string    `json:"id"`
	Instruction string    `json:"instruction"`
	Explanation string    `json:"explanation"`
	AppliedAt   time.Time `json:"appliedAt"`
}

// NewEditRecord stamps a record with a fresh ID and the current time.
func NewEditRecord(instruction, explanation string) EditRecord {
	if explanation == "" {
		explanation = DefaultEditExplanation
	}
	return EditRecord{
		ID:          uuid.NewString(),
		Instruction: instruction,
		Explanation: explanation,
		AppliedAt:   time.Now(),
	}
}
