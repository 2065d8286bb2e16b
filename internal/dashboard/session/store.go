// Package session owns the partner data served by the dashboard: one
// Dashboard value, replaced wholesale by each successful refresh and
// never touched by a failed one.
package session

import (
	"context"
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"partner-dashboard/internal/common/errors"
	"partner-dashboard/internal/common/logger"
	"partner-dashboard/internal/common/metrics"
	"partner-dashboard/internal/common/observability"
	"partner-dashboard/internal/dashboard/derive"
	"partner-dashboard/internal/dashboard/webhook"
	"partner-dashboard/internal/models"
	"partner-dashboard/internal/notify"
)

// Source records where the current data came from.
type Source string

const (
	SourceNone    Source = "none"
	SourceSeed    Source = "seed"
	SourceWebhook Source = "webhook"
)

// Counts is the size of each view.
type Counts struct {
	Partners int `json:"partners"`
	TopBest  int `json:"topBest"`
	TopWorst int `json:"topWorst"`
	Sleeping int `json:"sleeping"`
}

// Status is the observable state of the store.
type Status struct {
	Busy             bool                 `json:"busy"`
	Source           Source               `json:"source"`
	LoadedAt         *time.Time           `json:"loadedAt"`
	LastNotification *notify.Notification `json:"lastNotification"`
	Counts           Counts               `json:"counts"`
}

// RefreshResult describes a completed refresh.
type RefreshResult struct {
	Counts   Counts        `json:"counts"`
	LoadedAt time.Time     `json:"loadedAt"`
	Duration time.Duration `json:"-"`
}

type Store struct {
	fetcher  webhook.Fetcher
	notifier notify.Notifier
	obs      *observability.Observability
	log      logger.Logger

	busy atomic.Bool

	mu               sync.RWMutex
	data             models.Dashboard
	source           Source
	loadedAt         time.Time
	lastNotification *notify.Notification
}

func NewStore(fetcher webhook.Fetcher, notifier notify.Notifier, obs *observability.Observability, log logger.Logger) *Store {
	s := &Store{
		fetcher:  fetcher,
		notifier: notifier,
		obs:      obs,
		log:      log.WithFields(map[string]interface{}{"component": "session"}),
		source:   SourceNone,
	}
	s.data = emptyDashboard()
	return s
}

// Refresh fetches the dashboard and replaces the held data. Only one
// refresh runs at a time; a concurrent call fails with
// REFRESH_IN_PROGRESS without waiting.
func (s *Store) Refresh(ctx context.Context) (*RefreshResult, error) {
	if !s.busy.CompareAndSwap(false, true) {
		metrics.PartnerRefreshes.WithLabelValues("busy").Inc()
		return nil, errors.NewRefreshInProgressError()
	}
	defer s.busy.Store(false)

	ctx, span := s.obs.StartSpan(ctx, "partners.refresh")
	defer span.End()

	start := time.Now()
	d, err := s.fetcher.Fetch(ctx)
	elapsed := time.Since(start)

	if err != nil {
		metrics.PartnerRefreshes.WithLabelValues("failed").Inc()
		metrics.PartnerRefreshDuration.WithLabelValues("failed").Observe(elapsed.Seconds())
		s.obs.RecordRefresh(ctx, "failed")
		s.obs.RecordRefreshDuration(ctx, elapsed, "failed")
		span.RecordError(err)
		span.SetStatus(codes.Error, "fetch failed")

		s.log.WithError(err).Error("Partner refresh failed, keeping previous data", map[string]interface{}{
			"durationMs": elapsed.Milliseconds(),
		})
		s.publish(ctx, notify.RefreshFailed())
		return nil, err
	}

	loadedAt := s.replace(d, SourceWebhook)
	counts := countsOf(d)

	metrics.PartnerRefreshes.WithLabelValues("success").Inc()
	metrics.PartnerRefreshDuration.WithLabelValues("success").Observe(elapsed.Seconds())
	s.obs.RecordRefresh(ctx, "success")
	s.obs.RecordRefreshDuration(ctx, elapsed, "success")
	span.SetAttributes(attribute.Int("partners.count", counts.Partners))

	s.log.Info("Partner refresh completed", map[string]interface{}{
		"partners":   counts.Partners,
		"topBest":    counts.TopBest,
		"topWorst":   counts.TopWorst,
		"sleeping":   counts.Sleeping,
		"durationMs": elapsed.Milliseconds(),
	})
	s.publish(ctx, notify.RefreshSucceeded(counts.Partners))

	return &RefreshResult{Counts: counts, LoadedAt: loadedAt, Duration: elapsed}, nil
}

// Load installs d without fetching, for seed data.
func (s *Store) Load(d models.Dashboard, source Source) {
	s.replace(d, source)
	s.log.Info("Partner data loaded", map[string]interface{}{
		"source":   string(source),
		"partners": len(d.Partners),
	})
}

// LoadSeedFile reads a webhook-format JSON file and installs it.
func (s *Store) LoadSeedFile(path string, opts derive.Options) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read seed file: %w", err)
	}
	d, err := webhook.ParsePayload(raw, opts)
	if err != nil {
		return fmt.Errorf("parse seed file %s: %w", path, err)
	}
	s.Load(d, SourceSeed)
	return nil
}

// Snapshot returns the current dashboard. The lists are shared and must
// be treated as read-only; refreshes swap them rather than editing them.
func (s *Store) Snapshot() models.Dashboard {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data
}

// Busy reports whether a refresh is in flight.
func (s *Store) Busy() bool {
	return s.busy.Load()
}

func (s *Store) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st := Status{
		Busy:   s.busy.Load(),
		Source: s.source,
		Counts: countsOf(s.data),
	}
	if !s.loadedAt.IsZero() {
		t := s.loadedAt
		st.LoadedAt = &t
	}
	if s.lastNotification != nil {
		n := *s.lastNotification
		st.LastNotification = &n
	}
	return st
}

func (s *Store) replace(d models.Dashboard, source Source) time.Time {
	now := time.Now().UTC()

	s.mu.Lock()
	s.data = d
	s.source = source
	s.loadedAt = now
	s.mu.Unlock()

	metrics.PartnersLoaded.WithLabelValues("all").Set(float64(len(d.Partners)))
	metrics.PartnersLoaded.WithLabelValues("best").Set(float64(len(d.TopBest)))
	metrics.PartnersLoaded.WithLabelValues("worst").Set(float64(len(d.TopWorst)))
	metrics.PartnersLoaded.WithLabelValues("sleeping").Set(float64(len(d.Sleeping)))
	return now
}

func (s *Store) publish(ctx context.Context, n notify.Notification) {
	s.mu.Lock()
	s.lastNotification = &n
	s.mu.Unlock()

	if s.notifier == nil {
		return
	}
	if err := s.notifier.Notify(ctx, n); err != nil {
		s.log.WithError(err).Warn("Failed to deliver notification", map[string]interface{}{
			"notificationId": n.ID,
		})
	}
}

func countsOf(d models.Dashboard) Counts {
	return Counts{
		Partners: len(d.Partners),
		TopBest:  len(d.TopBest),
		TopWorst: len(d.TopWorst),
		Sleeping: len(d.Sleeping),
	}
}

func emptyDashboard() models.Dashboard {
	return models.Dashboard{
		Partners: []models.Partner{},
		TopBest:  []models.Partner{},
		TopWorst: []models.Partner{},
		Sleeping: []models.Partner{},
	}
}
