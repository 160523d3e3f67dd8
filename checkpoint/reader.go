package checkpoint

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Reader locates and loads the most recent checkpoint in a directory.
type Reader struct {
	dir string
}

// NewReader builds a Reader over dir.
func NewReader(dir string) *Reader {
	return &Reader{dir: dir}
}

// Latest finds the checkpoint file with the highest integer filename
// prefix in the reader's directory and parses it. It returns
// ErrNoCheckpoint if the directory has no checkpoint files, and a wrapped
// parse error if the latest file is present but malformed; callers that
// want the "start from scratch" disposition (spec.md §7) should treat any
// non-nil error the same way and log it rather than abort.
func (r *Reader) Latest() (Document, int, error) {
	entries, err := os.ReadDir(r.dir)
	if err != nil {
		return Document{}, 0, ErrNoCheckpoint
	}

	bestIteration := -1
	var bestName string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		underscore := strings.Index(entry.Name(), "_")
		if underscore < 0 {
			continue
		}
		n, err := strconv.Atoi(entry.Name()[:underscore])
		if err != nil {
			continue
		}
		if n > bestIteration {
			bestIteration = n
			bestName = entry.Name()
		}
	}
	if bestIteration < 0 {
		return Document{}, 0, ErrNoCheckpoint
	}

	path := filepath.Join(r.dir, bestName)
	data, err := os.ReadFile(path)
	if err != nil {
		return Document{}, 0, fmt.Errorf("checkpoint: reading %s: %w", path, err)
	}
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return Document{}, 0, fmt.Errorf("checkpoint: parsing %s: %w", path, err)
	}
	return doc, bestIteration, nil
}
