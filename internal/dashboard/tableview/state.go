package tableview

import (
	"fmt"
	"strings"
)

// Status filters partners by dormancy.
type Status string

const (
	StatusAll      Status = "all"
	StatusActive   Status = "active"
	StatusSleeping Status = "sleeping"
)

// Direction is the sort direction.
type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// SortField names a sortable column by its canonical JSON key.
type SortField string

const (
	FieldName                SortField = "partner"
	FieldTotalQuotes         SortField = "osszes_arajanlat"
	FieldSuccessfulQuotes    SortField = "sikeres_arajanlatok"
	FieldFailedQuotes        SortField = "sikertelen_arajanlatok"
	FieldSuccessRate         SortField = "sikeressegi_arany"
	FieldLastSuccessDate     SortField = "legutobbi_sikeres_datum"
	FieldLastQuoteDate       SortField = "legutobbi_arajanlat_datum"
	FieldDaysSinceLastQuote  SortField = "napok_a_legutobbi_arajanlat_ota"
	FieldDormant             SortField = "alvo"
	FieldCreatedAt           SortField = "letrehozva"
	FieldAdjustedSuccessRate SortField = "korrigalt_sikeressegi_arany"
	FieldValueScore          SortField = "ertek_pontszam"
	FieldCategory            SortField = "kategoria"
	FieldWasteScore          SortField = "sikertelen_pontszam"
	FieldRank                SortField = "rank"
)

// State is the filter and sort configuration of one table.
type State struct {
	Search    string    `json:"search"`
	Category  string    `json:"category"`
	Status    Status    `json:"status"`
	MinQuotes int       `json:"minQuotes"`
	SortField SortField `json:"sort"`
	Direction Direction `json:"dir"`
}

// DefaultState shows everything sorted by value score, highest first.
func DefaultState() State {
	return State{
		Status:    StatusAll,
		SortField: FieldValueScore,
		Direction: Desc,
	}
}

// ToggleSort returns the state after a click on a column header: the
// active column flips direction, a new column starts descending.
func (s State) ToggleSort(field SortField) State {
	if s.SortField == field {
		if s.Direction == Asc {
			s.Direction = Desc
		} else {
			s.Direction = Asc
		}
		return s
	}
	s.SortField = field
	s.Direction = Desc
	return s
}

// ParseStatus accepts all, active, sleeping and the alias dormant. Empty
// input means all.
func ParseStatus(v string) (Status, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "", "all":
		return StatusAll, nil
	case "active":
		return StatusActive, nil
	case "sleeping", "dormant":
		return StatusSleeping, nil
	}
	return "", fmt.Errorf("unknown status %q", v)
}

// ParseDirection accepts asc or desc. Empty input returns def.
func ParseDirection(v string, def Direction) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "":
		return def, nil
	case "asc":
		return Asc, nil
	case "desc":
		return Desc, nil
	}
	return "", fmt.Errorf("unknown sort direction %q", v)
}

// ParseSortField validates a column key. Empty input returns def.
func ParseSortField(v string, def SortField) (SortField, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return def, nil
	}
	f := SortField(v)
	if _, ok := accessors[f]; !ok {
		return "", fmt.Errorf("unknown sort field %q", v)
	}
	return f, nil
}
