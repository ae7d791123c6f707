package audit

import (
	"fmt"
	"sync"

	"github.com/Lin-Jiong-HDU/guardrail/internal/core/security"
)

// Log records validation decisions and execution outcomes. A Log without
// a store keeps records in memory only. A Log only sees records from other
// processes that existed when it was opened; its own changes are appended
// to the shared file and never overwrite theirs.
type Log struct {
	store   *Store
	records []*Record
	mu      sync.RWMutex
}

// NewLog opens the log persisted at filePath. An empty path gives an
// in-memory log.
func NewLog(filePath string) (*Log, error) {
	if filePath == "" {
		return &Log{records: []*Record{}}, nil
	}

	store := NewStore(filePath)
	records, err := store.Load()
	if err != nil {
		return nil, err
	}

	return &Log{
		store:   store,
		records: records,
	}, nil
}

// Reject appends a rejected record.
func (l *Log) Reject(operation, input string, kind security.ErrorKind, reason string) (Record, error) {
	return l.add(NewRejected(operation, input, kind, reason))
}

// Accept appends an accepted record for the sanitized command.
func (l *Log) Accept(operation, input, command string) (Record, error) {
	return l.add(NewAccepted(operation, input, command))
}

func (l *Log) add(r *Record) (Record, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.records = append(l.records, r)
	if err := l.persist(r); err != nil {
		return *r, err
	}
	return *r, nil
}

// MarkExecuting marks an accepted record as handed to the executor.
func (l *Log) MarkExecuting(id string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	r, err := l.find(id)
	if err != nil {
		return err
	}
	if !r.TransitionStatus(StatusExecuting) {
		return fmt.Errorf("cannot transition record %s from %s to %s", id, r.Status, StatusExecuting)
	}
	return l.persist(r)
}

// SetResult stores the execution result and completes or fails the record.
func (l *Log) SetResult(id string, result *ExecutionResult) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	r, err := l.find(id)
	if err != nil {
		return err
	}

	target := StatusFailed
	if result.Succeeded() {
		target = StatusCompleted
	}
	if !r.TransitionStatus(target) {
		return fmt.Errorf("cannot transition record %s from %s to %s", id, r.Status, target)
	}
	r.Result = result

	return l.persist(r)
}

// Get returns a copy of the record with the given id.
func (l *Log) Get(id string) (Record, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	r, err := l.find(id)
	if err != nil {
		return Record{}, false
	}
	return *r, true
}

// Records returns copies of all records, oldest first.
func (l *Log) Records() []Record {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]Record, len(l.records))
	for i, r := range l.records {
		out[i] = *r
	}
	return out
}

// ByStatus returns copies of the records in the given status.
func (l *Log) ByStatus(status Status) []Record {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var out []Record
	for _, r := range l.records {
		if r.Status == status {
			out = append(out, *r)
		}
	}
	return out
}

func (l *Log) find(id string) (*Record, error) {
	for _, r := range l.records {
		if r.ID == id {
			return r, nil
		}
	}
	return nil, fmt.Errorf("record not found: %s", id)
}

func (l *Log) persist(r *Record) error {
	if l.store == nil {
		return nil
	}
	return l.store.Append(r)
}
