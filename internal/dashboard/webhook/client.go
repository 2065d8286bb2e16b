// Package webhook fetches partner data from the upstream automation
// webhook and turns any of its response shapes into a models.Dashboard.
package webhook

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"time"

	"partner-dashboard/internal/common/errors"
	commonhttp "partner-dashboard/internal/common/http"
	"partner-dashboard/internal/common/logger"
	"partner-dashboard/internal/dashboard/derive"
	"partner-dashboard/internal/dashboard/normalize"
	"partner-dashboard/internal/models"
)

// ActionGetPartners is the only action the webhook understands.
const ActionGetPartners = "getPartners"

type request struct {
	Action string `json:"action"`
}

// Fetcher loads the current dashboard.
type Fetcher interface {
	Fetch(ctx context.Context) (models.Dashboard, error)
}

type Client struct {
	url    string
	http   *commonhttp.Client
	log    logger.Logger
	derive derive.Options
}

// NewClient builds a webhook client. The timeout bounds the whole
// request; there are no retries.
func NewClient(url string, timeout time.Duration, opts derive.Options, log logger.Logger) *Client {
	return &Client{
		url:    url,
		http:   commonhttp.NewClient(timeout),
		log:    log.WithFields(map[string]interface{}{"component": "webhook"}),
		derive: opts,
	}
}

// Fetch posts {"action":"getPartners"} and parses the reply. Transport
// errors, non-2xx statuses and undecodable bodies all surface as a single
// FETCH_FAILED error.
func (c *Client) Fetch(ctx context.Context) (models.Dashboard, error) {
	start := time.Now()
	raw, err := c.http.PostJSON(ctx, c.url, request{Action: ActionGetPartners}, nil)
	if err != nil {
		c.log.WithError(err).Error("Partner webhook request failed", map[string]interface{}{
			"durationMs": time.Since(start).Milliseconds(),
		})
		return models.Dashboard{}, errors.NewFetchFailedError(err)
	}

	d, err := ParsePayload(raw, c.derive)
	if err != nil {
		c.log.WithError(err).Error("Partner webhook returned an unusable body", map[string]interface{}{
			"bytes": len(raw),
		})
		return models.Dashboard{}, errors.NewFetchFailedError(err)
	}

	c.log.Debug("Partner webhook responded", map[string]interface{}{
		"partners":   len(d.Partners),
		"durationMs": time.Since(start).Milliseconds(),
	})
	return d, nil
}

// ErrNullPayload is returned for a literal JSON null body. It carries no
// partner list, so it must not replace data that is already loaded.
var ErrNullPayload = stderrors.New("webhook payload is null")

// ParsePayload decodes a webhook body, normalizes every list and derives
// the views the body left out.
func ParsePayload(raw []byte, opts derive.Options) (models.Dashboard, error) {
	var v interface{}
	if err := json.Unmarshal(raw, &v); err != nil {
		return models.Dashboard{}, fmt.Errorf("decode webhook payload: %w", err)
	}
	if v == nil {
		return models.Dashboard{}, ErrNullPayload
	}
	return FromValue(v, opts), nil
}

// FromValue accepts either a bare partner list or an object carrying the
// partner list and optional precomputed views. Any other value yields an
// empty dashboard.
func FromValue(v interface{}, opts derive.Options) models.Dashboard {
	d := models.Dashboard{}

	switch body := v.(type) {
	case []interface{}:
		d.Partners = normalize.NormalizeBatch(body)
	case map[string]interface{}:
		d.Partners = normalize.NormalizeBatch(first(body, "partners", "data"))
		d.TopBest = normalize.NormalizeBatch(first(body, "top_best_customers", "topBest"))
		d.TopWorst = normalize.NormalizeBatch(first(body, "top_worst_customers", "topWorst"))
		d.Sleeping = normalize.NormalizeBatch(first(body, "sleeping_customers", "sleeping"))
	}

	d = derive.Complete(d, opts)
	return nonNil(d)
}

func first(m map[string]interface{}, keys ...string) interface{} {
	for _, k := range keys {
		if v, ok := m[k]; ok && v != nil {
			return v
		}
	}
	return nil
}

func nonNil(d models.Dashboard) models.Dashboard {
	if d.Partners == nil {
		d.Partners = []models.Partner{}
	}
	if d.TopBest == nil {
		d.TopBest = []models.Partner{}
	}
	if d.TopWorst == nil {
		d.TopWorst = []models.Partner{}
	}
	if d.Sleeping == nil {
		d.Sleeping = []models.Partner{}
	}
	return d
}
