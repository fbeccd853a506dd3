// Package output merges computed grids and test results with a style into
// renderer-ready documents.
package output

import (
	"bytes"
	"time"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"

	"tabstat/domain/core"
	"tabstat/domain/report"
	"tabstat/domain/stats"
	"tabstat/domain/tabulation"
)

// Style tokens every document resolves.
const (
	TokenFirstLevelFont       = "table.first_level_variable_font_color"
	TokenOtherLevelFont       = "table.variable_font_color_other_levels"
	TokenHeadingFootnoteFont  = "table.heading_footnote_font_color"
	TokenFootnoteFont         = "table.footnote_font_color"
	TokenFirstLevelBackground = "table.first_level_variable_background_color"
	TokenOtherLevelBackground = "table.variable_background_color_other_levels"
	TokenFirstLevelBorder     = "table.first_level_variable_border_color"
	TokenOtherLevelBorder     = "table.variable_border_color_other_levels"
	TokenCornerBackground     = "table.top_left_table_space_holder_background_color"
)

// RequiredTokens lists the tokens a style must define to be usable.
func RequiredTokens() []string {
	return []string{
		TokenFirstLevelFont, TokenOtherLevelFont, TokenHeadingFootnoteFont, TokenFootnoteFont,
		TokenFirstLevelBackground, TokenOtherLevelBackground,
		TokenFirstLevelBorder, TokenOtherLevelBorder, TokenCornerBackground,
	}
}

// Meta is the design information carried onto a document.
type Meta struct {
	Kind          report.DocumentKind
	Title         string
	Subtitles     []string
	DecimalPoints int
	// Settings are fingerprinted so identical designs produce identical fingerprints.
	Settings map[string]any
}

// Assembler builds documents. It performs no I/O.
type Assembler struct {
	now func() time.Time
}

func NewAssembler() *Assembler {
	return &Assembler{now: time.Now}
}

// Table lays out a grid as a styled table document.
func (a *Assembler) Table(grid *tabulation.Grid, style report.Style, meta Meta) (*report.Document, error) {
	if grid == nil {
		return nil, core.NewConfigurationError("no grid to assemble")
	}
	colors, err := style.ResolveAll(RequiredTokens()...)
	if err != nil {
		return nil, err
	}
	doc := a.document(style, colors, meta)
	if doc.Kind == "" {
		doc.Kind = report.KindCrossTab
	}
	doc.Table = layoutTable(grid, palette(colors), meta.DecimalPoints)
	return doc, nil
}

// Stats formats a test result as a styled document.
func (a *Assembler) Stats(r *stats.Result, style report.Style, meta Meta) (*report.Document, error) {
	if r == nil {
		return nil, core.NewConfigurationError("no result to assemble")
	}
	colors, err := style.ResolveAll(RequiredTokens()...)
	if err != nil {
		return nil, err
	}
	if meta.DecimalPoints == 0 && r.DecimalPoints > 0 {
		meta.DecimalPoints = r.DecimalPoints
	}
	doc := a.document(style, colors, meta)
	doc.Kind = report.KindStats
	if doc.Title == "" {
		doc.Title = r.Kind.Title()
	}
	doc.Stats = statsView(r, palette(colors), meta.DecimalPoints)
	if r.Narrative != "" {
		doc.NarrativeHTML = markdownToHTML(r.Narrative)
	}
	return doc, nil
}

func (a *Assembler) document(style report.Style, colors map[string]string, meta Meta) *report.Document {
	return &report.Document{
		ID:          core.NewDocumentID(),
		Kind:        meta.Kind,
		Title:       meta.Title,
		Subtitles:   append([]string(nil), meta.Subtitles...),
		StyleName:   style.Name,
		Colors:      colors,
		Fingerprint: core.ComputeSettingsHash(meta.Settings),
		CreatedAt:   a.now().UTC(),
	}
}

// markdownToHTML converts a worked example. Parsers are single use.
func markdownToHTML(md string) string {
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.Tables)
	renderer := html.NewRenderer(html.RendererOptions{Flags: html.CommonFlags | html.SkipHTML})
	return string(bytes.TrimSpace(markdown.ToHTML([]byte(md), p, renderer)))
}
