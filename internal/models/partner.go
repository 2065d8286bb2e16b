// internal/models/partner.go
package models

import (
	"strings"

	"cloud.google.com/go/civil"
)

// Partner is the canonical partner record. JSON keys follow the column
// names of the partner sheet so a normalized record round-trips through
// the normalizer unchanged.
type Partner struct {
	Name                string      `json:"partner"`
	TotalQuotes         int         `json:"osszes_arajanlat"`
	SuccessfulQuotes    int         `json:"sikeres_arajanlatok"`
	FailedQuotes        int         `json:"sikertelen_arajanlatok"`
	SuccessRate         float64     `json:"sikeressegi_arany"`
	LastSuccessDate     *civil.Date `json:"legutobbi_sikeres_datum"`
	LastQuoteDate       *civil.Date `json:"legutobbi_arajanlat_datum"`
	DaysSinceLastQuote  int         `json:"napok_a_legutobbi_arajanlat_ota"`
	Dormant             bool        `json:"alvo"`
	CreatedAt           string      `json:"letrehozva"`
	AdjustedSuccessRate float64     `json:"korrigalt_sikeressegi_arany"`
	ValueScore          float64     `json:"ertek_pontszam"`
	Category            string      `json:"kategoria"`
	WasteScore          float64     `json:"sikertelen_pontszam"`
	Rank                int         `json:"rank"`
}

// DefaultCategory is used when a record carries no category label.
const DefaultCategory = "KÖZEPES"

// Dashboard holds the four partner lists served by the dashboard.
type Dashboard struct {
	Partners []Partner `json:"partners"`
	TopBest  []Partner `json:"topBest"`
	TopWorst []Partner `json:"topWorst"`
	Sleeping []Partner `json:"sleeping"`
}

// Grade is the closed set of partner categories.
type Grade string

const (
	GradeA         Grade = "A"
	GradeB         Grade = "B"
	GradeC         Grade = "C"
	GradeD         Grade = "D"
	GradeHighValue Grade = "HIGH_VALUE"
	GradePoorRate  Grade = "POOR_RATE"
	GradeFewQuotes Grade = "FEW_QUOTES"
	GradeMedium    Grade = "MEDIUM"
	GradeUnknown   Grade = "UNKNOWN"
)

// Tone is the visual emphasis a grade is rendered with.
type Tone string

const (
	ToneSuccess     Tone = "success"
	ToneWarning     Tone = "warning"
	ToneDestructive Tone = "destructive"
	ToneMuted       Tone = "muted"
	TonePrimary     Tone = "primary"
)

var exactGrades = map[string]Grade{
	"A":               GradeA,
	"B":               GradeB,
	"C":               GradeC,
	"D":               GradeD,
	"MAGAS_ÉRTÉK":     GradeHighValue,
	"ROSSZ_ARÁNY":     GradePoorRate,
	"KEVÉS_ÁRAJÁNLAT": GradeFewQuotes,
	"KÖZEPES":         GradeMedium,
}

var gradeLabels = map[Grade]string{
	GradeA:         "Kiváló",
	GradeB:         "Jó",
	GradeC:         "Közepes",
	GradeD:         "Gyenge",
	GradeHighValue: "Magas érték",
	GradePoorRate:  "Rossz arány",
	GradeFewQuotes: "Kevés ajánlat",
	GradeMedium:    "Közepes",
}

var gradeTones = map[Grade]Tone{
	GradeA:         ToneSuccess,
	GradeHighValue: ToneSuccess,
	GradeB:         ToneWarning,
	GradeC:         ToneWarning,
	GradeMedium:    ToneWarning,
	GradeD:         ToneDestructive,
	GradePoorRate:  ToneDestructive,
	GradeFewQuotes: ToneMuted,
}

// Classify maps a free-form category label onto a Grade. Exact labels win,
// keyword containment is the fallback.
func Classify(label string) Grade {
	upper := strings.ToUpper(strings.TrimSpace(label))
	if g, ok := exactGrades[upper]; ok {
		return g
	}
	switch {
	case strings.Contains(upper, "MAGAS") && strings.Contains(upper, "ÉRTÉK"):
		return GradeHighValue
	case strings.Contains(upper, "ROSSZ"):
		return GradePoorRate
	case strings.Contains(upper, "KÖZEPES"):
		return GradeMedium
	case strings.Contains(upper, "KEVÉS"):
		return GradeFewQuotes
	}
	return GradeUnknown
}

// Label returns the display label for g. Unknown grades have no label of
// their own; use CategoryLabel to fall back to the raw text.
func (g Grade) Label() string {
	return gradeLabels[g]
}

// Tone returns the display tone for g.
func (g Grade) Tone() Tone {
	if t, ok := gradeTones[g]; ok {
		return t
	}
	return TonePrimary
}

// CategoryLabel returns the display label for a raw category string.
func CategoryLabel(category string) string {
	if l := Classify(category).Label(); l != "" {
		return l
	}
	if category == "" {
		return "—"
	}
	return category
}

// Grade classifies the partner's category label.
func (p Partner) Grade() Grade {
	return Classify(p.Category)
}
