// Package designfile decodes table and test designs from YAML. A file may hold
// several documents separated by ---; each names its design with a kind key.
package designfile

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"tabstat/domain/core"
	"tabstat/domain/design"
	"tabstat/domain/stats"
)

// Kinds of table and chart design. Test designs use their stats.Kind.
const (
	KindCrossTab  = "cross_tab"
	KindFrequency = "frequency"
	KindChart     = "chart"
	KindHistogram = "histogram"
)

// Load reads every design in a file. Relative sort_orders_file paths are resolved
// against the file's directory.
func Load(path string) ([]design.Design, error) {
	return LoadWithDecimals(path, design.DefaultDecimalPoints)
}

// LoadWithDecimals is Load with a different precision for designs that do not set
// decimal_points.
func LoadWithDecimals(path string, decimals int) ([]design.Design, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, core.NewConfigurationError("reading design file %s: %v", path, err)
	}
	designs, err := parse(data, decimals)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	dir := filepath.Dir(path)
	for _, d := range designs {
		c := d.Settings()
		if c.SortOrdersFile != "" && !filepath.IsAbs(c.SortOrdersFile) {
			c.SortOrdersFile = filepath.Join(dir, c.SortOrdersFile)
		}
	}
	return designs, nil
}

// Parse decodes and validates every document in data.
func Parse(data []byte) ([]design.Design, error) {
	return parse(data, design.DefaultDecimalPoints)
}

func parse(data []byte, decimals int) ([]design.Design, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	var designs []design.Design
	for i := 1; ; i++ {
		var node yaml.Node
		err := dec.Decode(&node)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, core.NewConfigurationError("design %d is not valid YAML: %v", i, err)
		}
		d, err := decode(&node, decimals)
		if err != nil {
			return nil, fmt.Errorf("design %d: %w", i, err)
		}
		if err := d.Validate(); err != nil {
			return nil, fmt.Errorf("design %d: %w", i, err)
		}
		designs = append(designs, d)
	}
	if len(designs) == 0 {
		return nil, core.NewConfigurationError("no designs found")
	}
	return designs, nil
}

func decode(node *yaml.Node, decimals int) (design.Design, error) {
	var head struct {
		Kind string `yaml:"kind"`
	}
	if err := node.Decode(&head); err != nil {
		return nil, core.NewConfigurationError("%v", err)
	}
	common := design.NewCommon("")
	common.DecimalPoints = decimals

	var d design.Design
	switch kind := strings.ToLower(strings.TrimSpace(head.Kind)); kind {
	case KindCrossTab:
		d = &design.CrossTabDesign{Common: common}
	case KindFrequency:
		d = &design.FrequencyDesign{Common: common}
	case KindChart:
		d = &design.AmountsDesign{Common: common}
	case KindHistogram:
		d = &design.HistogramDesign{Common: common}
	case string(stats.KindANOVA), string(stats.KindKruskalWallis):
		d = &design.GroupedDesign{Common: common, Kind: stats.Kind(kind)}
	case string(stats.KindIndependentT), string(stats.KindMannWhitney):
		d = &design.TwoGroupDesign{Common: common, Kind: stats.Kind(kind)}
	case string(stats.KindPairedT), string(stats.KindWilcoxon), string(stats.KindPearson), string(stats.KindSpearman):
		d = &design.PairedDesign{Common: common, Kind: stats.Kind(kind)}
	case string(stats.KindChiSquare):
		d = &design.ChiSquareDesign{Common: common}
	case string(stats.KindNormality):
		d = &design.NormalityDesign{Common: common}
	case "":
		return nil, core.NewConfigurationError("kind is required")
	default:
		return nil, core.NewConfigurationError("unknown design kind %q", head.Kind)
	}

	if err := node.Decode(d); err != nil {
		return nil, core.NewConfigurationError("%v", err)
	}
	switch t := d.(type) {
	case *design.CrossTabDesign:
		orient(t.Rows, design.OrientationRow)
		orient(t.Columns, design.OrientationColumn)
	case *design.FrequencyDesign:
		orient(t.Rows, design.OrientationRow)
	}
	return d, nil
}

// orient fills in what a YAML dimension leaves implicit.
func orient(specs []*design.DimensionSpec, axis design.Orientation) {
	for _, spec := range specs {
		if spec == nil {
			continue
		}
		spec.Orient(axis)
		for _, level := range spec.Chain() {
			if level.Sort == "" {
				level.Sort = design.SortByValue
			}
		}
	}
}
