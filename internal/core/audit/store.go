package audit

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// maxLineSize bounds a single persisted record, output included.
const maxLineSize = 16 << 20

// Store persists audit records as JSON lines. Every change is appended as
// a full snapshot of the record and never rewrites earlier lines, so
// several processes can share one file.
type Store struct {
	filePath string
}

// NewStore creates a new store for the given file path
func NewStore(filePath string) *Store {
	return &Store{filePath: filePath}
}

// Path returns the backing file.
func (s *Store) Path() string {
	return s.filePath
}

// Append writes one snapshot of r with a single O_APPEND write.
func (s *Store) Append(r *Record) error {
	if err := os.MkdirAll(filepath.Dir(s.filePath), 0700); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	data, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("failed to marshal audit record: %w", err)
	}
	data = append(data, '\n')

	f, err := os.OpenFile(s.filePath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600)
	if err != nil {
		return fmt.Errorf("failed to open audit log: %w", err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return fmt.Errorf("failed to write audit log: %w", err)
	}
	return f.Close()
}

// Load replays the file and returns one record per id in first-seen
// order, each at its latest snapshot. A missing file is an empty log.
func (s *Store) Load() ([]*Record, error) {
	f, err := os.Open(s.filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return []*Record{}, nil
		}
		return nil, fmt.Errorf("failed to read audit log: %w", err)
	}
	defer f.Close()

	records := []*Record{}
	index := make(map[string]int)

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	line := 0
	for scanner.Scan() {
		line++
		data := bytes.TrimSpace(scanner.Bytes())
		if len(data) == 0 {
			continue
		}

		var r Record
		if err := json.Unmarshal(data, &r); err != nil {
			return nil, fmt.Errorf("failed to unmarshal audit log line %d: %w", line, err)
		}
		if r.ID == "" {
			return nil, fmt.Errorf("audit log line %d has no id", line)
		}

		if i, ok := index[r.ID]; ok {
			records[i] = &r
			continue
		}
		index[r.ID] = len(records)
		records = append(records, &r)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read audit log: %w", err)
	}

	return records, nil
}
