// Package render turns assembled documents into output files.
package render

import (
	"bytes"
	"context"
	"embed"
	"html/template"
	"io"
	"strings"

	"tabstat/domain/report"
	"tabstat/ports"
)

//go:embed templates/document.html
var templates embed.FS

// HTMLRenderer writes a standalone HTML page.
type HTMLRenderer struct {
	tmpl *template.Template
}

var _ ports.Renderer = (*HTMLRenderer)(nil)

// cellView is a header cell ready for the template.
type cellView struct {
	Text    string
	ColSpan int
	RowSpan int
	Style   template.CSS
}

func toCell(c report.HeaderCell) cellView {
	var style []string
	if c.FontColor != "" {
		style = append(style, "color: "+c.FontColor)
	}
	if c.Background != "" {
		style = append(style, "background-color: "+c.Background)
	}
	if c.Border != "" {
		style = append(style, "border-color: "+c.Border)
	}
	if c.Role == report.RoleVariable || c.Role == report.RoleTotal {
		style = append(style, "font-weight: bold")
	}
	return cellView{Text: c.Text, ColSpan: c.ColSpan, RowSpan: c.RowSpan, Style: template.CSS(strings.Join(style, "; "))}
}

func NewHTMLRenderer() (*HTMLRenderer, error) {
	tmpl, err := template.New("document.html").
		Funcs(template.FuncMap{"th": toCell}).
		ParseFS(templates, "templates/document.html")
	if err != nil {
		return nil, err
	}
	return &HTMLRenderer{tmpl: tmpl}, nil
}

func (r *HTMLRenderer) Extension() string { return ".html" }

// Render executes into a buffer first so a failing template writes nothing.
func (r *HTMLRenderer) Render(ctx context.Context, doc *report.Document, w io.Writer) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data := struct {
		*report.Document
		Narrative template.HTML
	}{Document: doc, Narrative: template.HTML(doc.NarrativeHTML)}

	var buf bytes.Buffer
	if err := r.tmpl.ExecuteTemplate(&buf, "document.html", data); err != nil {
		return err
	}
	_, err := buf.WriteTo(w)
	return err
}
