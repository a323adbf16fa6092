package events

import (
	"time"

	"quickbuy/internal/metrics"

	"go.uber.org/zap"
)

// Routing keys of the catalog topic exchange.
const (
	ProductCreated     = "product.created"
	ProductUpdated     = "product.updated"
	ProductDeleted     = "product.deleted"
	PreferenceRecorded = "preference.recorded"
)

// Publisher sends a domain event. *rabbitmq.Client implements it.
type Publisher interface {
	Publish(routingKey string, payload interface{}) error
}

// ProductEvent is the payload of the product.* events.
type ProductEvent struct {
	ProductID  string    `json:"productId"`
	Slug       string    `json:"slug,omitempty"`
	CategoryID string    `json:"categoryId,omitempty"`
	OccurredAt time.Time `json:"occurredAt"`
}

// PreferenceEvent is the payload of preference.recorded.
type PreferenceEvent struct {
	UserID      string    `json:"userId"`
	Keyword     string    `json:"keyword"`
	Preferences []string  `json:"preferences"`
	OccurredAt  time.Time `json:"occurredAt"`
}

// Emit publishes through pub when it is configured. Publishing is best effort:
// a broker failure is logged and counted but never fails the caller.
func Emit(pub Publisher, routingKey string, payload interface{}) {
	if pub == nil {
		return
	}
	if err := pub.Publish(routingKey, payload); err != nil {
		metrics.EventsPublished.WithLabelValues(routingKey, "error").Inc()
		zap.S().Warnf("Failed to publish %s event: %v", routingKey, err)
		return
	}
	metrics.EventsPublished.WithLabelValues(routingKey, "ok").Inc()
}
