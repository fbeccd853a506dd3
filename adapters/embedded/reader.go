package embedded

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"tabstat/domain/core"
)

// RawTable is a file read as text: trimmed headers and rows padded to their width.
type RawTable struct {
	Headers []string
	Rows    [][]string
}

// FileReader reads CSV and XLSX files.
type FileReader struct {
	filePath string
	fileType string // "xlsx" or "csv"
}

// NewFileReader picks the format from the file extension.
func NewFileReader(filePath string) *FileReader {
	fileType := "csv"
	switch strings.ToLower(filepath.Ext(filePath)) {
	case ".xlsx", ".xlsm":
		fileType = "xlsx"
	}
	return &FileReader{filePath: filePath, fileType: fileType}
}

// Read loads the whole file.
func (r *FileReader) Read() (*RawTable, error) {
	if _, err := os.Stat(r.filePath); err != nil {
		return nil, core.NewDataSourceError("read "+r.filePath, err)
	}
	var (
		rows [][]string
		err  error
	)
	switch r.fileType {
	case "xlsx":
		rows, err = r.readExcel()
	default:
		rows, err = r.readCSV()
	}
	if err != nil {
		return nil, core.NewDataSourceError("read "+r.filePath, err)
	}
	if len(rows) < 2 {
		return nil, core.NewInsufficientDataError("%s must have a header row and at least one data row", r.filePath)
	}
	return processRows(rows)
}

// readExcel reads the first sheet of a workbook.
func (r *FileReader) readExcel() ([][]string, error) {
	f, err := excelize.OpenFile(r.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheets[0], err)
	}
	return rows, nil
}

func (r *FileReader) readCSV() ([][]string, error) {
	file, err := os.Open(r.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV file: %w", err)
	}
	return rows, nil
}

func processRows(rows [][]string) (*RawTable, error) {
	t := &RawTable{Headers: make([]string, len(rows[0]))}
	seen := map[string]bool{}
	for i, h := range rows[0] {
		h = strings.TrimSpace(h)
		if h == "" {
			h = fmt.Sprintf("column_%d", i+1)
		}
		if seen[h] {
			return nil, core.NewConfigurationError("duplicate column header %q", h)
		}
		seen[h] = true
		t.Headers[i] = h
	}
	for _, row := range rows[1:] {
		cells := make([]string, len(t.Headers))
		blank := true
		for j := 0; j < len(cells) && j < len(row); j++ {
			cells[j] = strings.TrimSpace(row[j])
			blank = blank && cells[j] == ""
		}
		if blank {
			continue
		}
		t.Rows = append(t.Rows, cells)
	}
	return t, nil
}
