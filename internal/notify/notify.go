// Package notify delivers user-visible notifications about dashboard
// events. The log sink is always on; an SNS topic can be added for
// operators who want refresh outcomes pushed to them.
package notify

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"partner-dashboard/internal/common/logger"
)

// Variant selects how a notification is presented.
type Variant string

const (
	VariantSuccess     Variant = "success"
	VariantDestructive Variant = "destructive"
)

// Notification is one message shown to the dashboard user.
type Notification struct {
	ID          string    `json:"id"`
	Variant     Variant   `json:"variant"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
}

// New stamps a notification with an id and creation time.
func New(variant Variant, title, description string) Notification {
	return Notification{
		ID:          uuid.NewString(),
		Variant:     variant,
		Title:       title,
		Description: description,
		CreatedAt:   time.Now().UTC(),
	}
}

// RefreshSucceeded is emitted after the partner data was replaced.
func RefreshSucceeded(count int) Notification {
	return New(VariantSuccess, "Refresh completed", fmt.Sprintf("%d partner records loaded", count))
}

// RefreshFailed is emitted once per failed refresh.
func RefreshFailed() Notification {
	return New(VariantDestructive, "Fetch failed", "Could not load partner data from the webhook.")
}

type Notifier interface {
	Notify(ctx context.Context, n Notification) error
}

// LogNotifier writes notifications to the structured log.
type LogNotifier struct {
	log logger.Logger
}

func NewLogNotifier(log logger.Logger) *LogNotifier {
	return &LogNotifier{log: log}
}

func (l *LogNotifier) Notify(_ context.Context, n Notification) error {
	fields := map[string]interface{}{
		"notificationId": n.ID,
		"variant":        string(n.Variant),
		"title":          n.Title,
		"description":    n.Description,
	}
	if n.Variant == VariantDestructive {
		l.log.Warn("notification", fields)
		return nil
	}
	l.log.Info("notification", fields)
	return nil
}

// Publisher is satisfied by the SNS client wrapper.
type Publisher interface {
	PublishMessage(ctx context.Context, topicARN, subject, message string, attrs map[string]string) (string, error)
}

// SNSNotifier publishes notifications to an SNS topic.
type SNSNotifier struct {
	publisher Publisher
	topicARN  string
}

func NewSNSNotifier(p Publisher, topicARN string) *SNSNotifier {
	return &SNSNotifier{publisher: p, topicARN: topicARN}
}

func (s *SNSNotifier) Notify(ctx context.Context, n Notification) error {
	_, err := s.publisher.PublishMessage(ctx, s.topicARN, n.Title, n.Description, map[string]string{
		"variant":        string(n.Variant),
		"notificationId": n.ID,
	})
	if err != nil {
		return fmt.Errorf("publish notification %s: %w", n.ID, err)
	}
	return nil
}

// Multi fans a notification out to every sink. All sinks are tried; the
// errors are joined.
type Multi []Notifier

func (m Multi) Notify(ctx context.Context, n Notification) error {
	var errs []error
	for _, sink := range m {
		if err := sink.Notify(ctx, n); err != nil {
			errs = append(errs, err)
		}
	}
	return stderrors.Join(errs...)
}
