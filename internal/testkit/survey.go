package testkit

import (
	"math"
	"math/rand"

	"tabstat/domain/dataset"
)

// SurveyConfig configures the survey data generator
type SurveyConfig struct {
	Respondents int     `json:"respondents"`
	Seed        int64   `json:"seed"`
	MissingRate float64 `json:"missing_rate"` // share of nulls in the numeric answers
}

// DefaultSurveyConfig returns defaults for survey generation
func DefaultSurveyConfig() SurveyConfig {
	return SurveyConfig{Respondents: 500, Seed: 42, MissingRate: 0.02}
}

var (
	Countries  = []string{"Japan", "Italy", "Germany", "New Zealand"}
	Genders    = []string{"Female", "Male"}
	AgeGroups  = []string{"<20", "20-29", "30-39", "40-64", "65+"}
	Browsers   = []string{"Chrome", "Firefox", "Safari"}
	countryMu  = map[string]float64{"Japan": 62, "Italy": 70, "Germany": 74, "New Zealand": 80}
	surveyVars = []dataset.Variable{
		{Name: "id", Kind: dataset.KindNumeric},
		{Name: "country", Kind: dataset.KindCategorical},
		{Name: "gender", Kind: dataset.KindCategorical},
		{Name: "age_group", Kind: dataset.KindCategorical},
		{Name: "browser", Kind: dataset.KindCategorical},
		{Name: "rating", Kind: dataset.KindNumeric},
		{Name: "weight_start", Kind: dataset.KindNumeric},
		{Name: "weight_end", Kind: dataset.KindNumeric},
	}
)

// SurveyGenerator produces a reproducible respondent table. Weight differs by
// country, and weight_end is slightly below weight_start for most respondents.
type SurveyGenerator struct {
	config SurveyConfig
	rng    *rand.Rand
}

func NewSurveyGenerator(config SurveyConfig) *SurveyGenerator {
	return &SurveyGenerator{config: config, rng: rand.New(rand.NewSource(config.Seed))}
}

// Generate builds the table named name.
func (g *SurveyGenerator) Generate(name string) *Table {
	t := &Table{Name: name, Columns: append([]dataset.Variable(nil), surveyVars...)}
	for i := 0; i < g.config.Respondents; i++ {
		country := Countries[g.rng.Intn(len(Countries))]
		start := math.Round((countryMu[country]+8*g.rng.NormFloat64())*10) / 10
		end := math.Round((start-1.5+g.rng.NormFloat64())*10) / 10
		t.Rows = append(t.Rows, []any{
			int64(i + 1),
			country,
			Genders[g.rng.Intn(len(Genders))],
			AgeGroups[g.rng.Intn(len(AgeGroups))],
			Browsers[g.rng.Intn(len(Browsers))],
			g.maybe(int64(1 + g.rng.Intn(5))),
			g.maybe(start),
			g.maybe(end),
		})
	}
	return t
}

func (g *SurveyGenerator) maybe(v any) any {
	if g.rng.Float64() < g.config.MissingRate {
		return nil
	}
	return v
}

// Survey returns a MemorySource holding one generated survey table.
func Survey(name string, config SurveyConfig) *MemorySource {
	return NewMemorySource(NewSurveyGenerator(config).Generate(name))
}
