package design

import (
	"tabstat/domain/core"
)

// DefaultDecimalPoints is used when a design does not declare its own precision.
const DefaultDecimalPoints = 3

// Design is one table or statistical test to produce.
type Design interface {
	Settings() *Common
	Validate() error
}

// Common holds the settings shared by every design.
type Common struct {
	Table  string `yaml:"table"`
	Filter string `yaml:"filter"` // native SQL condition, optionally starting with WHERE

	StyleName     string   `yaml:"style"`
	Title         string   `yaml:"title"`
	Subtitles     []string `yaml:"subtitles"`
	OutputPath    string   `yaml:"output_path"`
	ShowInBrowser bool     `yaml:"show_in_web_browser"`

	SortOrders     CustomOrders `yaml:"sort_orders"`
	SortOrdersFile string       `yaml:"sort_orders_file"`

	// ValueLabels maps variable -> value key -> display label.
	ValueLabels map[string]map[string]string `yaml:"value_labels"`

	DecimalPoints int  `yaml:"decimal_points"`
	ShowWorkings  bool `yaml:"show_workings"`
	HighPrecision bool `yaml:"high_precision_required"`
}

// NewCommon returns settings with defaults applied.
func NewCommon(table string) Common {
	return Common{Table: table, StyleName: "default", DecimalPoints: DefaultDecimalPoints}
}

func (c *Common) Settings() *Common { return c }

// Label returns the display label for a value key, falling back to the key.
func (c *Common) Label(variable, key string) string {
	if labels, ok := c.ValueLabels[variable]; ok {
		if label, ok := labels[key]; ok && label != "" {
			return label
		}
	}
	return key
}

func (c *Common) validate() error {
	if c.Table == "" {
		return core.NewConfigurationError("a source table is required")
	}
	if len(c.SortOrders) > 0 && c.SortOrdersFile != "" {
		return core.NewConfigurationError("set sort_orders or sort_orders_file, not both")
	}
	if c.DecimalPoints < 0 || c.DecimalPoints > 15 {
		return core.NewConfigurationError("decimal_points must be between 0 and 15, got %d", c.DecimalPoints)
	}
	return nil
}

// CrossTabDesign is a cross-tabulation of one or more row trees against one or more column trees.
type CrossTabDesign struct {
	Common  `yaml:",inline"`
	Rows    []*DimensionSpec `yaml:"rows"`
	Columns []*DimensionSpec `yaml:"columns"`
}

func (d *CrossTabDesign) Validate() error {
	if err := d.Common.validate(); err != nil {
		return err
	}
	if len(d.Rows) == 0 || len(d.Columns) == 0 {
		return core.NewConfigurationError("a cross tab needs at least one row and one column dimension")
	}
	for _, r := range d.Rows {
		if err := r.ValidateAs(OrientationRow); err != nil {
			return err
		}
	}
	for _, c := range d.Columns {
		if err := c.ValidateAs(OrientationColumn); err != nil {
			return err
		}
	}
	return nil
}

// Variables returns every dimension variable of the table, rows first, without repeats.
func (d *CrossTabDesign) Variables() []string {
	return dimensionVariables(append(append([]*DimensionSpec{}, d.Rows...), d.Columns...))
}

// FrequencyDesign is a frequency table over one or more row trees.
type FrequencyDesign struct {
	Common               `yaml:",inline"`
	Rows                 []*DimensionSpec `yaml:"rows"`
	IncludeColumnPercent bool             `yaml:"include_column_percent"`
}

func (d *FrequencyDesign) Validate() error {
	if err := d.Common.validate(); err != nil {
		return err
	}
	if len(d.Rows) == 0 {
		return core.NewConfigurationError("a frequency table needs at least one row dimension")
	}
	for _, r := range d.Rows {
		if err := r.ValidateAs(OrientationRow); err != nil {
			return err
		}
	}
	return nil
}

func (d *FrequencyDesign) Variables() []string {
	return dimensionVariables(d.Rows)
}

func dimensionVariables(specs []*DimensionSpec) []string {
	seen := map[string]bool{}
	var vars []string
	for _, spec := range specs {
		for _, v := range spec.Variables() {
			if !seen[v] {
				seen[v] = true
				vars = append(vars, v)
			}
		}
	}
	return vars
}
