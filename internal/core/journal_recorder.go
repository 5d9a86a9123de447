package core

import (
	"context"
	"log"

	"github.com/google/uuid"

	"medilog/internal/journal"
)

// JournalAuditRecorder mirrors audit entries into a journal backend so the
// operation history survives process restarts. Append failures are logged
// and swallowed; auditing never blocks the operation that produced it.
type JournalAuditRecorder struct {
	journal journal.Journal
	logger  *log.Logger
}

// NewJournalAuditRecorder wraps j as an AuditRecorder. A nil logger falls
// back to the process default.
func NewJournalAuditRecorder(j journal.Journal, logger *log.Logger) *JournalAuditRecorder {
	if logger == nil {
		logger = log.Default()
	}
	return &JournalAuditRecorder{journal: j, logger: logger}
}

func (r *JournalAuditRecorder) Record(ctx context.Context, entry AuditEntry) {
	if r.journal == nil {
		return
	}
	err := r.journal.Append(ctx, journal.Entry{
		ID:        uuid.NewString(),
		Operation: entry.Operation,
		Success:   entry.Status == AuditStatusSuccess,
		Entity:    entry.Entity,
		SubjectID: entry.SubjectID,
		Detail:    entry.Error,
		At:        entry.At,
	})
	if err != nil {
		r.logger.Printf("medilog: journal append failed for %s: %v", entry.Operation, err)
	}
}
