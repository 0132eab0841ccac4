package ports

import (
	"context"

	"github.com/dhifafaz/tactical-monitor/internal/core/domain"
)

// EventPublisher mirrors tracking events onto a message broker for
// out-of-process consumers (analytics, archival). Dashboard fan-out does
// not go through here; that is the connection registry's job.
type EventPublisher interface {
	PublishLocationUpdate(ctx context.Context, deviceID string, sample *domain.LocationSample) error
	PublishAlert(ctx context.Context, alert *domain.Alert) error
}

// CacheService provides read-through caching.
type CacheService interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttlSeconds int) error
	Delete(ctx context.Context, key string) error
}

// NotificationService reaches a case officer outside the dashboard
// (push, SMS, pager). Used by the escalation workflow.
type NotificationService interface {
	NotifyOfficer(ctx context.Context, officer, title, body string) error
}
