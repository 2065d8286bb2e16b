package tableview

import (
	"testing"

	"cloud.google.com/go/civil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"partner-dashboard/internal/models"
)

func fixture() []models.Partner {
	return []models.Partner{
		{Name: "Zoltán Bt.", TotalQuotes: 40, ValueScore: 3.1, WasteScore: 1.0, Category: "A", Rank: 1},
		{Name: "Ödön Kft.", TotalQuotes: 5, ValueScore: 0.4, WasteScore: 6.2, Category: "D", Dormant: true, DaysSinceLastQuote: 200, Rank: 2},
		{Name: "Béla és Társa", TotalQuotes: 18, ValueScore: 2.2, WasteScore: 2.5, Category: "B", Rank: 3},
		{Name: "acme", TotalQuotes: 18, ValueScore: 2.2, WasteScore: 0.5, Category: "B", Rank: 4},
	}
}

func names(ps []models.Partner) []string {
	out := make([]string, len(ps))
	for i, p := range ps {
		out[i] = p.Name
	}
	return out
}

func TestApply_DefaultStateReturnsEverythingByValueDesc(t *testing.T) {
	e := NewEngine("hu")
	out := e.Apply(fixture(), DefaultState())

	// equal value scores keep input order
	assert.Equal(t, []string{"Zoltán Bt.", "Béla és Társa", "acme", "Ödön Kft."}, names(out))
}

func TestApply_DoesNotMutateInput(t *testing.T) {
	e := NewEngine("hu")
	in := fixture()
	before := names(in)

	s := DefaultState()
	s.SortField = FieldName
	s.Direction = Asc
	e.Apply(in, s)

	assert.Equal(t, before, names(in))
}

func TestApply_Filters(t *testing.T) {
	e := NewEngine("hu")
	tests := []struct {
		name  string
		state func(s State) State
		want  []string
	}{
		{
			name:  "search is case insensitive",
			state: func(s State) State { s.Search = "ACM"; return s },
			want:  []string{"acme"},
		},
		{
			name:  "search matches accented names",
			state: func(s State) State { s.Search = "ödön"; return s },
			want:  []string{"Ödön Kft."},
		},
		{
			name:  "category",
			state: func(s State) State { s.Category = "B"; return s },
			want:  []string{"Béla és Társa", "acme"},
		},
		{
			name:  "category all",
			state: func(s State) State { s.Category = "all"; return s },
			want:  []string{"Zoltán Bt.", "Béla és Társa", "acme", "Ödön Kft."},
		},
		{
			name:  "active",
			state: func(s State) State { s.Status = StatusActive; return s },
			want:  []string{"Zoltán Bt.", "Béla és Társa", "acme"},
		},
		{
			name:  "sleeping",
			state: func(s State) State { s.Status = StatusSleeping; return s },
			want:  []string{"Ödön Kft."},
		},
		{
			name:  "minimum quotes",
			state: func(s State) State { s.MinQuotes = 18; return s },
			want:  []string{"Zoltán Bt.", "Béla és Társa", "acme"},
		},
		{
			name: "combined",
			state: func(s State) State {
				s.Search = "bt"
				s.Status = StatusActive
				s.MinQuotes = 20
				return s
			},
			want: []string{"Zoltán Bt."},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := e.Apply(fixture(), tt.state(DefaultState()))
			assert.Equal(t, tt.want, names(out))
		})
	}
}

func TestApply_StringSortUsesCollation(t *testing.T) {
	e := NewEngine("hu")
	s := DefaultState().ToggleSort(FieldName).ToggleSort(FieldName)
	require.Equal(t, Asc, s.Direction)

	out := e.Apply(fixture(), s)
	got := names(out)
	require.Len(t, got, 4)
	assert.Equal(t, "acme", got[0])
	assert.Equal(t, "Béla és Társa", got[1])
	// byte order would put Ö after Z
	assert.Equal(t, "Zoltán Bt.", got[3])
}

func TestApply_ToggleReversesAndKeepsLength(t *testing.T) {
	e := NewEngine("hu")
	s := DefaultState()
	s.SortField = FieldWasteScore

	desc := e.Apply(fixture(), s)
	asc := e.Apply(fixture(), s.ToggleSort(FieldWasteScore))

	require.Len(t, asc, len(desc))
	for i := range desc {
		assert.Equal(t, desc[i].Name, asc[len(asc)-1-i].Name)
	}
}

func TestApply_SortByDate(t *testing.T) {
	e := NewEngine("hu")
	early := civil.Date{Year: 2023, Month: 1, Day: 1}
	late := civil.Date{Year: 2024, Month: 1, Day: 1}
	in := []models.Partner{
		{Name: "late", LastQuoteDate: &late},
		{Name: "none"},
		{Name: "early", LastQuoteDate: &early},
	}

	s := State{SortField: FieldLastQuoteDate, Direction: Asc}
	assert.Equal(t, []string{"none", "early", "late"}, names(e.Apply(in, s)))
}

func TestToggleSort(t *testing.T) {
	s := DefaultState()

	same := s.ToggleSort(FieldValueScore)
	assert.Equal(t, Asc, same.Direction)
	assert.Equal(t, Desc, same.ToggleSort(FieldValueScore).Direction)

	other := same.ToggleSort(FieldTotalQuotes)
	assert.Equal(t, FieldTotalQuotes, other.SortField)
	assert.Equal(t, Desc, other.Direction)

	// receiver unchanged
	assert.Equal(t, Desc, s.Direction)
}

func TestCategories(t *testing.T) {
	e := NewEngine("hu")
	in := append(fixture(), models.Partner{Name: "x", Category: ""}, models.Partner{Name: "y", Category: "KÖZEPES"})
	assert.Equal(t, []string{"A", "B", "D", "KÖZEPES"}, e.Categories(in))
	assert.Empty(t, e.Categories(nil))
}

func TestParsers(t *testing.T) {
	st, err := ParseStatus("dormant")
	require.NoError(t, err)
	assert.Equal(t, StatusSleeping, st)

	st, err = ParseStatus("")
	require.NoError(t, err)
	assert.Equal(t, StatusAll, st)

	_, err = ParseStatus("asleep")
	assert.Error(t, err)

	dir, err := ParseDirection("ASC", Desc)
	require.NoError(t, err)
	assert.Equal(t, Asc, dir)
	_, err = ParseDirection("up", Desc)
	assert.Error(t, err)

	f, err := ParseSortField("", FieldRank)
	require.NoError(t, err)
	assert.Equal(t, FieldRank, f)
	f, err = ParseSortField("sikertelen_pontszam", FieldRank)
	require.NoError(t, err)
	assert.Equal(t, FieldWasteScore, f)
	_, err = ParseSortField("value", FieldRank)
	assert.Error(t, err)
}

func TestNewEngine_BadLocaleFallsBack(t *testing.T) {
	e := NewEngine("!!")
	assert.NotNil(t, e)
	assert.Len(t, e.Apply(fixture(), DefaultState()), 4)
}
