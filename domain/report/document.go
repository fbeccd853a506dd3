package report

import (
	"time"

	"tabstat/domain/core"
)

// DocumentKind distinguishes the renderable outputs.
type DocumentKind string

const (
	KindCrossTab  DocumentKind = "cross_tab"
	KindFrequency DocumentKind = "frequency"
	KindStats     DocumentKind = "stats"
	KindChart     DocumentKind = "chart"
	KindHistogram DocumentKind = "histogram"
)

// Document is the renderer-ready result of one invocation.
type Document struct {
	ID          core.DocumentID   `json:"id"`
	Kind        DocumentKind      `json:"kind"`
	Title       string            `json:"title"`
	Subtitles   []string          `json:"subtitles,omitempty"`
	StyleName   string            `json:"style_name"`
	Colors      map[string]string `json:"colors"`
	Fingerprint core.Hash         `json:"fingerprint"`
	CreatedAt   time.Time         `json:"created_at"`

	Table *TableView `json:"table,omitempty"`
	Stats *StatsView `json:"stats,omitempty"`
	Chart *ChartView `json:"chart,omitempty"`

	// NarrativeHTML is the worked example converted from markdown; empty when not requested.
	NarrativeHTML string `json:"narrative_html,omitempty"`
}

// CellRole classifies a header or label cell for styling.
type CellRole string

const (
	RoleVariable CellRole = "variable"
	RoleValue    CellRole = "value"
	RoleTotal    CellRole = "total"
	RoleMetric   CellRole = "metric"
	RoleCorner   CellRole = "corner"
)

// HeaderCell is one label cell of the table head or the row label block.
type HeaderCell struct {
	Text       string   `json:"text"`
	Role       CellRole `json:"role"`
	Level      int      `json:"level"` // 0 is the outermost nesting level
	ColSpan    int      `json:"col_span"`
	RowSpan    int      `json:"row_span"`
	FontColor  string   `json:"font_color,omitempty"`
	Background string   `json:"background,omitempty"`
	Border     string   `json:"border,omitempty"`
}

// BodyRow is one rendered table row: its label cells then formatted values.
type BodyRow struct {
	Labels []HeaderCell `json:"labels"`
	Values []string     `json:"values"`
	Total  bool         `json:"total,omitempty"`
}

// TableView is a fully laid out table.
type TableView struct {
	HeaderRows [][]HeaderCell `json:"header_rows"`
	Rows       []BodyRow      `json:"rows"`
}

// KeyValue is one labelled figure in a stats block.
type KeyValue struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// StatsView is a formatted statistical test result.
type StatsView struct {
	TestTitle    string     `json:"test_title"`
	Summary      []KeyValue `json:"summary"`
	GroupHeaders []string   `json:"group_headers,omitempty"`
	GroupRows    [][]string `json:"group_rows,omitempty"`
	// Observed and Expected are set for chi square.
	Observed  *TableView `json:"observed,omitempty"`
	Expected  *TableView `json:"expected,omitempty"`
	Footnotes []string   `json:"footnotes,omitempty"`
}

// ChartView is the data table a chart is drawn from.
type ChartView struct {
	Caption   string     `json:"caption"`
	Headers   []string   `json:"headers"`
	Rows      [][]string `json:"rows"`
	Footnotes []string   `json:"footnotes,omitempty"`
}
