package checkpoint

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Writer writes checkpoint documents named "<iteration>_<basename>.json"
// into a directory, so sorting filenames lexically by the leading integer
// yields chronological order.
type Writer struct {
	dir      string
	basename string
}

// NewWriter builds a Writer that writes into dir, naming files after
// basename (typically the run's output directory name).
func NewWriter(dir, basename string) *Writer {
	return &Writer{dir: dir, basename: basename}
}

// Write serializes doc to "<iteration>_<basename>.json" in the writer's
// directory. Write failures are surfaced to the caller, never retried.
func (w *Writer) Write(iteration int, doc Document) error {
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return fmt.Errorf("checkpoint: creating %s: %w", w.dir, err)
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("checkpoint: marshaling iteration %d: %w", iteration, err)
	}
	name := fmt.Sprintf("%d_%s.json", iteration, w.basename)
	path := filepath.Join(w.dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("checkpoint: writing %s: %w", path, err)
	}
	return nil
}
