package partnerviews

import (
	"context"

	"partner-dashboard/internal/dashboard/display"
	"partner-dashboard/internal/dashboard/session"
	"partner-dashboard/internal/dashboard/tableview"
	"partner-dashboard/internal/models"
)

// View selects one of the four partner lists.
type View string

const (
	ViewAll      View = "all"
	ViewBest     View = "best"
	ViewWorst    View = "worst"
	ViewSleeping View = "sleeping"
)

// DataStore is the part of the session store the handlers read from.
type DataStore interface {
	Snapshot() models.Dashboard
	Status() session.Status
	Refresh(ctx context.Context) (*session.RefreshResult, error)
}

type ListResponse struct {
	View       View            `json:"view"`
	Rows       []display.Row   `json:"rows"`
	Total      int             `json:"total"`
	Filtered   int             `json:"filtered"`
	Categories []string        `json:"categories"`
	Sort       tableview.State `json:"sort"`
	MinDays    int             `json:"minDays,omitempty"`
}

type CategoriesResponse struct {
	View         View                    `json:"view"`
	Total        int                     `json:"total"`
	Distribution []display.CategoryCount `json:"distribution"`
}
