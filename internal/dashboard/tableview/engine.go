// Package tableview filters and sorts partner lists for display.
package tableview

import (
	"cmp"
	"slices"
	"strings"

	"cloud.google.com/go/civil"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"partner-dashboard/internal/models"
)

type valueKind int

const (
	kindNumber valueKind = iota
	kindString
	kindDate
)

type value struct {
	kind valueKind
	num  float64
	str  string
	date *civil.Date
}

var accessors = map[SortField]func(p *models.Partner) value{
	FieldName:                func(p *models.Partner) value { return value{kind: kindString, str: p.Name} },
	FieldTotalQuotes:         func(p *models.Partner) value { return number(float64(p.TotalQuotes)) },
	FieldSuccessfulQuotes:    func(p *models.Partner) value { return number(float64(p.SuccessfulQuotes)) },
	FieldFailedQuotes:        func(p *models.Partner) value { return number(float64(p.FailedQuotes)) },
	FieldSuccessRate:         func(p *models.Partner) value { return number(p.SuccessRate) },
	FieldLastSuccessDate:     func(p *models.Partner) value { return value{kind: kindDate, date: p.LastSuccessDate} },
	FieldLastQuoteDate:       func(p *models.Partner) value { return value{kind: kindDate, date: p.LastQuoteDate} },
	FieldDaysSinceLastQuote:  func(p *models.Partner) value { return number(float64(p.DaysSinceLastQuote)) },
	FieldDormant:             func(p *models.Partner) value { return number(boolToFloat(p.Dormant)) },
	FieldCreatedAt:           func(p *models.Partner) value { return value{kind: kindString, str: p.CreatedAt} },
	FieldAdjustedSuccessRate: func(p *models.Partner) value { return number(p.AdjustedSuccessRate) },
	FieldValueScore:          func(p *models.Partner) value { return number(p.ValueScore) },
	FieldCategory:            func(p *models.Partner) value { return value{kind: kindString, str: p.Category} },
	FieldWasteScore:          func(p *models.Partner) value { return number(p.WasteScore) },
	FieldRank:                func(p *models.Partner) value { return number(float64(p.Rank)) },
}

func number(f float64) value {
	// NaN sorts as zero
	if f != f {
		f = 0
	}
	return value{kind: kindNumber, num: f}
}

func boolToFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

// Engine applies table state to partner lists. String columns compare
// with the collation rules of the configured locale.
type Engine struct {
	tag language.Tag
}

// NewEngine returns an engine for locale (a BCP 47 tag such as "hu").
// Unparseable locales fall back to Hungarian.
func NewEngine(locale string) *Engine {
	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.Hungarian
	}
	return &Engine{tag: tag}
}

// Apply returns the partners that pass the filters in s, ordered by its
// sort column. The input slice is left untouched.
func (e *Engine) Apply(partners []models.Partner, s State) []models.Partner {
	search := strings.ToLower(s.Search)
	out := make([]models.Partner, 0, len(partners))
	for _, p := range partners {
		if matches(&p, s, search) {
			out = append(out, p)
		}
	}

	get, ok := accessors[s.SortField]
	if !ok {
		get = accessors[FieldValueScore]
	}
	// collators are not safe for concurrent use
	col := collate.New(e.tag)
	desc := s.Direction != Asc

	slices.SortStableFunc(out, func(a, b models.Partner) int {
		c := compare(col, get(&a), get(&b))
		if desc {
			return -c
		}
		return c
	})
	return out
}

// Categories lists the distinct non-empty category labels in collation
// order.
func (e *Engine) Categories(partners []models.Partner) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, p := range partners {
		if p.Category == "" {
			continue
		}
		if _, ok := seen[p.Category]; ok {
			continue
		}
		seen[p.Category] = struct{}{}
		out = append(out, p.Category)
	}
	collate.New(e.tag).SortStrings(out)
	return out
}

func matches(p *models.Partner, s State, search string) bool {
	if search != "" && !strings.Contains(strings.ToLower(p.Name), search) {
		return false
	}
	if s.Category != "" && s.Category != "all" && p.Category != s.Category {
		return false
	}
	switch s.Status {
	case StatusActive:
		if p.Dormant {
			return false
		}
	case StatusSleeping:
		if !p.Dormant {
			return false
		}
	}
	if s.MinQuotes > 0 && p.TotalQuotes < s.MinQuotes {
		return false
	}
	return true
}

func compare(col *collate.Collator, a, b value) int {
	switch a.kind {
	case kindString:
		return col.CompareString(a.str, b.str)
	case kindDate:
		return compareDates(a.date, b.date)
	}
	return cmp.Compare(a.num, b.num)
}

// compareDates orders missing dates before any present date.
func compareDates(a, b *civil.Date) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	case a.Before(*b):
		return -1
	case a.After(*b):
		return 1
	}
	return 0
}
