package render

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"tabstat/domain/report"
	"tabstat/ports"
)

// WriteFile renders doc to path through a temporary file in the same directory,
// renamed into place only after rendering succeeds.
func WriteFile(ctx context.Context, r ports.Renderer, doc *report.Document, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating temporary output: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if err := r.Render(ctx, doc, tmp); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("rendering %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("moving output into place: %w", err)
	}
	return nil
}
