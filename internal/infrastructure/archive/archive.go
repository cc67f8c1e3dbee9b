package archive

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"GrantRadar/internal/domain"
	"GrantRadar/internal/ports"
)

// Writer persists each run's full normalized output to its own
// timestamped JSON file. Files are opened exclusively, so a prior
// archive can never be overwritten.
type Writer struct {
	dir string
}

var _ ports.Archiver = (*Writer)(nil)

// NewWriter targets the archive directory; it is created on first save.
func NewWriter(dir string) *Writer {
	return &Writer{dir: dir}
}

type runRecord struct {
	GeneratedAt string                  `json:"generated_at"`
	Count       int                     `json:"count"`
	Items       []domain.NormalizedItem `json:"items"`
}

// Save writes the run record and returns the created file path.
func (w *Writer) Save(generatedAt time.Time, items []domain.NormalizedItem) (string, error) {
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return "", fmt.Errorf("create archive dir: %w", err)
	}

	if items == nil {
		items = []domain.NormalizedItem{}
	}

	name := fmt.Sprintf("grants-%s.json", generatedAt.UTC().Format("20060102T150405Z"))
	path := filepath.Join(w.dir, name)

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("create archive %s: %w", name, err)
	}

	record := runRecord{
		GeneratedAt: generatedAt.UTC().Format(time.RFC3339),
		Count:       len(items),
		Items:       items,
	}

	encoded, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		_ = f.Close()
		return "", fmt.Errorf("encode archive: %w", err)
	}
	encoded = append(encoded, '\n')

	if _, err := f.Write(encoded); err != nil {
		_ = f.Close()
		return "", fmt.Errorf("write archive %s: %w", name, err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close archive %s: %w", name, err)
	}

	return path, nil
}
