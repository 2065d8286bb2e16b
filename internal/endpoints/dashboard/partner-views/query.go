package partnerviews

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"partner-dashboard/internal/dashboard/tableview"
)

type listQuery struct {
	view    View
	state   tableview.State
	minDays int
}

func parseView(v string) (View, error) {
	switch View(strings.ToLower(strings.TrimSpace(v))) {
	case "", ViewAll:
		return ViewAll, nil
	case ViewBest:
		return ViewBest, nil
	case ViewWorst:
		return ViewWorst, nil
	case ViewSleeping:
		return ViewSleeping, nil
	}
	return "", fmt.Errorf("unknown view %q", v)
}

// defaultSort is the column each view opens on.
func defaultSort(v View) tableview.SortField {
	switch v {
	case ViewWorst:
		return tableview.FieldWasteScore
	case ViewSleeping:
		return tableview.FieldDaysSinceLastQuote
	}
	return tableview.FieldValueScore
}

func parseNonNegative(q url.Values, key string) (int, error) {
	raw := strings.TrimSpace(q.Get(key))
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%s must be a non-negative integer", key)
	}
	return n, nil
}

func parseListQuery(q url.Values) (listQuery, error) {
	var out listQuery
	var err error

	if out.view, err = parseView(q.Get("view")); err != nil {
		return out, err
	}

	st := tableview.DefaultState()
	st.Search = q.Get("search")
	st.Category = q.Get("category")
	if st.Status, err = tableview.ParseStatus(q.Get("status")); err != nil {
		return out, err
	}
	if st.MinQuotes, err = parseNonNegative(q, "minQuotes"); err != nil {
		return out, err
	}
	if st.SortField, err = tableview.ParseSortField(q.Get("sort"), defaultSort(out.view)); err != nil {
		return out, err
	}
	if st.Direction, err = tableview.ParseDirection(q.Get("dir"), tableview.Desc); err != nil {
		return out, err
	}
	// toggle applies a header click on top of the current sort
	if raw := strings.TrimSpace(q.Get("toggle")); raw != "" {
		field, err := tableview.ParseSortField(raw, st.SortField)
		if err != nil {
			return out, err
		}
		st = st.ToggleSort(field)
	}
	out.state = st

	if out.minDays, err = parseNonNegative(q, "minDays"); err != nil {
		return out, err
	}
	return out, nil
}
