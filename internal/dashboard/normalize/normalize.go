// Package normalize turns loosely shaped partner records into models.Partner.
//
// Upstream sheets name their columns three ways: the canonical ASCII key,
// the accented Hungarian header, and an English alias. Each attribute is a
// rule listing those keys in priority order; the first key whose value is
// present and non-null wins, and coercion failures fall back to the default.
package normalize

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"

	"cloud.google.com/go/civil"

	"partner-dashboard/internal/models"
)

type rule struct {
	keys  []string
	apply func(p *models.Partner, v interface{})
}

var rules = []rule{
	{keys: []string{"partner", "Partner"}, apply: func(p *models.Partner, v interface{}) {
		p.Name = toString(v)
	}},
	{keys: []string{"osszes_arajanlat", "összes_árajánlat", "total_quotes"}, apply: func(p *models.Partner, v interface{}) {
		p.TotalQuotes = toCount(v)
	}},
	{keys: []string{"sikeres_arajanlatok", "sikeres_árajánlatok", "completed_quotes"}, apply: func(p *models.Partner, v interface{}) {
		p.SuccessfulQuotes = toCount(v)
	}},
	{keys: []string{"sikertelen_arajanlatok", "sikertelen_árajánlatok", "incomplete_quotes"}, apply: func(p *models.Partner, v interface{}) {
		p.FailedQuotes = toCount(v)
	}},
	{keys: []string{"sikeressegi_arany", "sikerességi_arány", "completion_rate"}, apply: func(p *models.Partner, v interface{}) {
		p.SuccessRate = toFloat(v)
	}},
	{keys: []string{"legutobbi_sikeres_datum", "legutóbbi_sikeres_dátum", "last_completed_date"}, apply: func(p *models.Partner, v interface{}) {
		p.LastSuccessDate = toDate(v)
	}},
	{keys: []string{"legutobbi_arajanlat_datum", "legutóbbi_árajánlat_dátum", "last_quote_date"}, apply: func(p *models.Partner, v interface{}) {
		p.LastQuoteDate = toDate(v)
	}},
	{keys: []string{"napok_a_legutobbi_arajanlat_ota", "napok_a_legutóbbi_árajánlat_óta", "days_since_last_quote"}, apply: func(p *models.Partner, v interface{}) {
		p.DaysSinceLastQuote = toCount(v)
	}},
	{keys: []string{"alvo", "alvó", "alvó(igaz/hamis)", "is_sleeping"}, apply: func(p *models.Partner, v interface{}) {
		p.Dormant = toDormant(v)
	}},
	{keys: []string{"letrehozva", "létrehozva", "generated_at"}, apply: func(p *models.Partner, v interface{}) {
		p.CreatedAt = toString(v)
	}},
	{keys: []string{"korrigalt_sikeressegi_arany", "korrigált_sikerességi_arány", "adjusted_completion_rate"}, apply: func(p *models.Partner, v interface{}) {
		p.AdjustedSuccessRate = toFloat(v)
	}},
	{keys: []string{"ertek_pontszam", "érték_pontszám", "value_score"}, apply: func(p *models.Partner, v interface{}) {
		p.ValueScore = toFloat(v)
	}},
	{keys: []string{"kategoria", "kategória", "category"}, apply: func(p *models.Partner, v interface{}) {
		p.Category = toString(v)
	}},
	{keys: []string{"sikertelen_pontszam", "sikertelen_pontszám", "waste_score"}, apply: func(p *models.Partner, v interface{}) {
		p.WasteScore = toFloat(v)
	}},
	{keys: []string{"rank"}, apply: func(p *models.Partner, v interface{}) {
		p.Rank = toCount(v)
	}},
}

// Normalize maps one raw record onto the canonical shape. It never fails:
// absent or unusable values take their defaults.
func Normalize(raw map[string]interface{}) models.Partner {
	p := models.Partner{Category: models.DefaultCategory}
	for _, r := range rules {
		if v, ok := firstPresent(raw, r.keys); ok {
			r.apply(&p, v)
		}
	}
	return p
}

// NormalizeBatch normalizes every element of data and assigns rank as the
// 1-based position in the batch. Anything that is not a list yields an
// empty, non-nil slice; list elements that are not objects normalize to
// the defaults.
func NormalizeBatch(data interface{}) []models.Partner {
	var items []interface{}
	switch v := data.(type) {
	case []interface{}:
		items = v
	case []map[string]interface{}:
		items = make([]interface{}, len(v))
		for i := range v {
			items[i] = v[i]
		}
	default:
		return []models.Partner{}
	}

	out := make([]models.Partner, len(items))
	for i, item := range items {
		m, _ := item.(map[string]interface{})
		out[i] = Normalize(m)
		out[i].Rank = i + 1
	}
	return out
}

func firstPresent(raw map[string]interface{}, keys []string) (interface{}, bool) {
	for _, k := range keys {
		if v, ok := raw[k]; ok && v != nil {
			return v, true
		}
	}
	return nil, false
}

func toString(v interface{}) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case json.Number:
		return t.String()
	case bool:
		return strconv.FormatBool(t)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	}
	return ""
}

// toFloat coerces v to a finite float. Empty strings count as zero.
func toFloat(v interface{}) float64 {
	var f float64
	switch t := v.(type) {
	case float64:
		f = t
	case float32:
		f = float64(t)
	case int:
		f = float64(t)
	case int64:
		f = float64(t)
	case json.Number:
		parsed, err := t.Float64()
		if err != nil {
			return 0
		}
		f = parsed
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return 0
		}
		parsed, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0
		}
		f = parsed
	default:
		return 0
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

func toCount(v interface{}) int {
	f := math.Round(toFloat(v))
	if f < 0 {
		return 0
	}
	if f > math.MaxInt32 {
		return math.MaxInt32
	}
	return int(f)
}

// toDormant accepts a boolean true or the sheet's "igaz" marker.
func toDormant(v interface{}) bool {
	switch t := v.(type) {
	case bool:
		return t
	case string:
		return t == "igaz" || t == "true"
	}
	return false
}

// toDate accepts YYYY-MM-DD, RFC 3339 timestamps, and any string whose
// first ten characters form a date. Everything else is treated as absent.
func toDate(v interface{}) *civil.Date {
	s, ok := v.(string)
	if !ok {
		return nil
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	if d, err := civil.ParseDate(s); err == nil {
		return &d
	}
	if ts, err := time.Parse(time.RFC3339, s); err == nil {
		d := civil.DateOf(ts)
		return &d
	}
	if len(s) > 10 {
		if d, err := civil.ParseDate(s[:10]); err == nil {
			return &d
		}
	}
	return nil
}
