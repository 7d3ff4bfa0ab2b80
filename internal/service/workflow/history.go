package workflow

import (
	"draftpad/internal/domain/models"
)

// editLog is the session's append-only edit history. The controller's
// mutex guards all access; the log itself carries no locking.
type editLog struct {
	records []models.EditRecord
}

func (l *editLog) append(rec models.EditRecord) {
	l.records = append(l.records, rec)
}

func (l *editLog) len() int {
	return len(l.records)
}

// all returns a copy of the full history in insertion order.
func (l *editLog) all() []models.EditRecord {
	out := make([]models.EditRecord, len(l.records))
	copy(out, l.records)
	return out
}

// recent returns a copy of the newest n records, oldest first.
func (l *editLog) recent(n int) []models.EditRecord {
	if n > len(l.records) {
		n = len(l.records)
	}
	out := make([]models.EditRecord, n)
	copy(out, l.records[len(l.records)-n:])
	return out
}

func (l *editLog) clear() {
	l.records = nil
}
