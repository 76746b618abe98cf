package world

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// AuditEntry captures one store event: a balloon materialized from disk or a
// new balloon persisted.
type AuditEntry struct {
	ID         string    `json:"id"`
	Action     string    `json:"action"` // "load" or "track"
	Type       string    `json:"type"`
	Name       string    `json:"name"`
	OccurredAt time.Time `json:"occurred_at"`
}

// AuditRecorder receives store events.
type AuditRecorder interface {
	Record(ctx context.Context, entry AuditEntry)
}

func newAuditEntry(action, typeName, name string) AuditEntry {
	return AuditEntry{
		ID:         uuid.NewString(),
		Action:     action,
		Type:       typeName,
		Name:       name,
		OccurredAt: time.Now().UTC(),
	}
}

// MemoryAuditLog retains entries in memory, for tests and inspection.
type MemoryAuditLog struct {
	mu      sync.Mutex
	entries []AuditEntry
}

// Record appends the entry.
func (l *MemoryAuditLog) Record(_ context.Context, entry AuditEntry) {
	l.mu.Lock()
	l.entries = append(l.entries, entry)
	l.mu.Unlock()
}

// Entries returns a copy of the recorded entries in order.
func (l *MemoryAuditLog) Entries() []AuditEntry {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]AuditEntry(nil), l.entries...)
}
