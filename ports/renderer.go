package ports

import (
	"context"
	"io"

	"tabstat/domain/report"
)

// Renderer writes a document in its output format.
type Renderer interface {
	Render(ctx context.Context, doc *report.Document, w io.Writer) error
	// Extension is the file extension of the output, including the dot.
	Extension() string
}
