// Package display holds the presentation rules shared by the HTTP views
// and the report CLI: number formatting, grade tones and dormancy
// severity.
package display

import (
	"cmp"
	"math"
	"slices"
	"strconv"

	"partner-dashboard/internal/models"
)

// Placeholder is rendered for values that cannot be shown.
const Placeholder = "—"

// DefaultCompanyAverage is the company-wide adjusted success rate, as a
// fraction.
const DefaultCompanyAverage = 0.14

// adjustedRateThreshold separates good and bad adjusted rates, as a
// fraction.
const adjustedRateThreshold = 0.15

// Fraction converts a rate to a fraction. Values above 1 are taken to be
// percentages already; exactly 1 is read as a fraction (100%).
func Fraction(v float64) float64 {
	if v > 1 {
		return v / 100
	}
	return v
}

// FormatPercent renders a rate with one decimal and a percent sign.
func FormatPercent(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Placeholder
	}
	if v <= 1 {
		v *= 100
	}
	return strconv.FormatFloat(v, 'f', 1, 64) + "%"
}

// FormatScore renders a score with two decimals.
func FormatScore(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Placeholder
	}
	return strconv.FormatFloat(v, 'f', 2, 64)
}

// SafeNumber replaces NaN and infinities with def.
func SafeNumber(v, def float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return def
	}
	return v
}

// RateTone colours an adjusted success rate.
func RateTone(rate float64) models.Tone {
	if Fraction(SafeNumber(rate, 0)) >= adjustedRateThreshold {
		return models.ToneSuccess
	}
	return models.ToneDestructive
}

// AboveAverage reports whether rate beats the company average. Both are
// compared as fractions.
func AboveAverage(rate, average float64) bool {
	return Fraction(rate) > Fraction(average)
}

// Severity grades how long a partner has been idle.
type Severity string

const (
	SeverityNormal   Severity = "normal"
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

// TableSeverity is the idle grading of the sleeping table.
func TableSeverity(days int) Severity {
	switch {
	case days >= 180:
		return SeverityCritical
	case days >= 120:
		return SeverityWarning
	}
	return SeverityNormal
}

// DetailSeverity is the idle grading of the partner detail view.
func DetailSeverity(days int) Severity {
	switch {
	case days >= 90:
		return SeverityCritical
	case days >= 60:
		return SeverityWarning
	}
	return SeverityNormal
}

// CategoryCount is one slice of the category distribution.
type CategoryCount struct {
	Category string       `json:"category"`
	Label    string       `json:"label"`
	Grade    models.Grade `json:"grade"`
	Tone     models.Tone  `json:"tone"`
	Count    int          `json:"count"`
}

// CategoryDistribution counts partners per category label, largest first.
// Ties are broken by label text.
func CategoryDistribution(partners []models.Partner) []CategoryCount {
	counts := make(map[string]int)
	for _, p := range partners {
		counts[p.Category]++
	}

	out := make([]CategoryCount, 0, len(counts))
	for cat, n := range counts {
		if n <= 0 {
			continue
		}
		g := models.Classify(cat)
		out = append(out, CategoryCount{
			Category: cat,
			Label:    models.CategoryLabel(cat),
			Grade:    g,
			Tone:     g.Tone(),
			Count:    n,
		})
	}
	slices.SortFunc(out, func(a, b CategoryCount) int {
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}
		return cmp.Compare(a.Category, b.Category)
	})
	return out
}

// Row is a partner with its display strings attached.
type Row struct {
	models.Partner
	SuccessRateText         string      `json:"sikeressegi_arany_text"`
	AdjustedSuccessRateText string      `json:"korrigalt_sikeressegi_arany_text"`
	AdjustedRateTone        models.Tone `json:"korrigalt_sikeressegi_arany_tone"`
	ValueScoreText          string      `json:"ertek_pontszam_text"`
	WasteScoreText          string      `json:"sikertelen_pontszam_text"`
	CategoryLabel           string      `json:"kategoria_label"`
	CategoryTone            models.Tone `json:"kategoria_tone"`
	IdleSeverity            Severity    `json:"idle_severity"`
}

// NewRow decorates p for the table views.
func NewRow(p models.Partner) Row {
	g := p.Grade()
	return Row{
		Partner:                 p,
		SuccessRateText:         FormatPercent(p.SuccessRate),
		AdjustedSuccessRateText: FormatPercent(p.AdjustedSuccessRate),
		AdjustedRateTone:        RateTone(p.AdjustedSuccessRate),
		ValueScoreText:          FormatScore(p.ValueScore),
		WasteScoreText:          FormatScore(p.WasteScore),
		CategoryLabel:           models.CategoryLabel(p.Category),
		CategoryTone:            g.Tone(),
		IdleSeverity:            TableSeverity(p.DaysSinceLastQuote),
	}
}

// Rows decorates every partner.
func Rows(ps []models.Partner) []Row {
	out := make([]Row, len(ps))
	for i, p := range ps {
		out[i] = NewRow(p)
	}
	return out
}

// Detail is the single-partner view.
type Detail struct {
	Row
	AboveAverage       bool     `json:"above_average"`
	CompanyAverageText string   `json:"company_average_text"`
	DetailSeverity     Severity `json:"detail_severity"`
	LastSuccessText    string   `json:"legutobbi_sikeres_datum_text"`
	LastQuoteText      string   `json:"legutobbi_arajanlat_datum_text"`
}

// NewDetail decorates p for the detail panel.
func NewDetail(p models.Partner, companyAverage float64) Detail {
	d := Detail{
		Row:                NewRow(p),
		AboveAverage:       AboveAverage(p.AdjustedSuccessRate, companyAverage),
		CompanyAverageText: FormatPercent(companyAverage),
		DetailSeverity:     DetailSeverity(p.DaysSinceLastQuote),
		LastSuccessText:    Placeholder,
		LastQuoteText:      Placeholder,
	}
	if p.LastSuccessDate != nil {
		d.LastSuccessText = p.LastSuccessDate.String()
	}
	if p.LastQuoteDate != nil {
		d.LastQuoteText = p.LastQuoteDate.String()
	}
	return d
}
