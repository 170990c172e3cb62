package sink

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"arbScope/internal/model"
)

// JSONLSink appends each sealed cycle as one JSON line.
type JSONLSink struct {
	path              string
	opportunitiesOnly bool
	mu                sync.Mutex
}

// NewJSONLSink returns a sink writing to path. With opportunitiesOnly set,
// cycles without qualifying plans are skipped.
func NewJSONLSink(path string, opportunitiesOnly bool) *JSONLSink {
	return &JSONLSink{path: path, opportunitiesOnly: opportunitiesOnly}
}

func (s *JSONLSink) Name() string {
	return "jsonl"
}

func (s *JSONLSink) Publish(_ context.Context, cycle model.ScanCycle) error {
	if s.opportunitiesOnly && len(cycle.Opportunities) == 0 {
		return nil
	}

	line, err := json.Marshal(cycle)
	if err != nil {
		return fmt.Errorf("marshal scan cycle: %w", err)
	}

	dir := filepath.Dir(s.path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	file, err := os.OpenFile(s.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open output file: %w", err)
	}
	defer file.Close()

	writer := bufio.NewWriter(file)
	if _, err := writer.Write(line); err != nil {
		return fmt.Errorf("write scan cycle: %w", err)
	}
	if err := writer.WriteByte('\n'); err != nil {
		return fmt.Errorf("write newline: %w", err)
	}
	if err := writer.Flush(); err != nil {
		return fmt.Errorf("flush output: %w", err)
	}
	return nil
}
