package partnerviews

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"partner-dashboard/internal/common/config"
	"partner-dashboard/internal/common/errors"
	"partner-dashboard/internal/common/logger"
	"partner-dashboard/internal/dashboard/derive"
	"partner-dashboard/internal/dashboard/display"
	"partner-dashboard/internal/dashboard/tableview"
	"partner-dashboard/internal/models"
)

type Handler struct {
	config *Config
	store  DataStore
	engine *tableview.Engine
	errors *errors.ErrorHandler
	logger logger.Logger
}

type HandlerOptions struct {
	AppConfig    *config.Config
	CustomConfig *Config
	Logger       logger.Logger
	Store        DataStore
}

func NewHandler(opts HandlerOptions) (*Handler, error) {
	if opts.Logger == nil {
		opts.Logger = logger.NewStructured("info", "json")
	}
	if opts.Store == nil {
		return nil, fmt.Errorf("store is required")
	}

	cfg := createConfigFromAppConfig(opts.AppConfig, opts.CustomConfig)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	log := opts.Logger.WithFields(map[string]interface{}{"endpoint": "partner-views"})

	return &Handler{
		config: cfg,
		store:  opts.Store,
		engine: tableview.NewEngine(cfg.Locale),
		errors: errors.NewErrorHandler(log),
		logger: log,
	}, nil
}

// Route is one mountable endpoint. Name labels its metrics.
type Route struct {
	Pattern string
	Name    string
	Handler http.HandlerFunc
}

func (h *Handler) Routes() []Route {
	return []Route{
		{"GET /api/partners", "partners_list", h.List},
		{"GET /api/partners/status", "partners_status", h.Status},
		{"GET /api/partners/categories", "partners_categories", h.Categories},
		{"POST /api/partners/refresh", "partners_refresh", h.Refresh},
		{"GET /api/partners/by-name/{name...}", "partners_detail", h.Detail},
		// shorthand; names colliding with the fixed routes above need by-name
		{"GET /api/partners/{name}", "partners_detail", h.Detail},
	}
}

// Register mounts the partner routes on mux without middleware.
func (h *Handler) Register(mux *http.ServeMux) {
	for _, rt := range h.Routes() {
		mux.HandleFunc(rt.Pattern, rt.Handler)
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func viewOf(d models.Dashboard, v View) []models.Partner {
	switch v {
	case ViewBest:
		return d.TopBest
	case ViewWorst:
		return d.TopWorst
	case ViewSleeping:
		return d.Sleeping
	}
	return d.Partners
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	q, err := parseListQuery(r.URL.Query())
	if err != nil {
		h.errors.WriteError(w, r, errors.NewInvalidInputError(err.Error()))
		return
	}

	source := viewOf(h.store.Snapshot(), q.view)
	if q.view == ViewSleeping && q.minDays > 0 {
		source = derive.IdleAtLeast(source, q.minDays)
	}

	rows := h.engine.Apply(source, q.state)

	writeJSON(w, http.StatusOK, ListResponse{
		View:       q.view,
		Rows:       display.Rows(rows),
		Total:      len(source),
		Filtered:   len(rows),
		Categories: h.engine.Categories(source),
		Sort:       q.state,
		MinDays:    q.minDays,
	})
}

// Detail looks the partner up by exact name, in the full list first and
// then in the derived views.
func (h *Handler) Detail(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	d := h.store.Snapshot()

	for _, list := range [][]models.Partner{d.Partners, d.TopBest, d.TopWorst, d.Sleeping} {
		for _, p := range list {
			if p.Name == name {
				writeJSON(w, http.StatusOK, display.NewDetail(p, h.config.CompanyAverage))
				return
			}
		}
	}
	h.errors.WriteError(w, r, errors.NewNotFoundError("partner", name))
}

func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	// a client hanging up does not abort an in-flight fetch
	res, err := h.store.Refresh(context.WithoutCancel(r.Context()))
	if err != nil {
		h.errors.WriteError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.store.Status())
}

func (h *Handler) Categories(w http.ResponseWriter, r *http.Request) {
	v, err := parseView(r.URL.Query().Get("view"))
	if err != nil {
		h.errors.WriteError(w, r, errors.NewInvalidInputError(err.Error()))
		return
	}
	partners := viewOf(h.store.Snapshot(), v)
	writeJSON(w, http.StatusOK, CategoriesResponse{
		View:         v,
		Total:        len(partners),
		Distribution: display.CategoryDistribution(partners),
	})
}
