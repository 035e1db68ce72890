package search

import (
	"encoding/json"
	"fmt"
	"os"
)

// WriteSummary persists a RunSummary as pretty-printed JSON. Every write is a
// whole-file overwrite: the file always holds one complete snapshot, never an
// append log. Writing the same summary twice produces byte-identical content.
func WriteSummary(path string, summary RunSummary) error {
	data, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return fmt.Errorf("encode summary: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write summary: %w", err)
	}
	return nil
}
