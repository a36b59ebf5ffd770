package webhook_handlers

import (
	"context"

	"store-generator/internal/domain"

	"github.com/rs/zerolog"
)

// Handler processes one family of webhook topics
type Handler interface {
	CanHandle(topic string) bool
	Handle(ctx context.Context, event *domain.WebhookEvent) error
}

// Dispatcher routes a webhook event to the first handler accepting its topic
type Dispatcher struct {
	handlers []Handler
	logger   zerolog.Logger
}

// NewDispatcher creates a new webhook dispatcher
func NewDispatcher(logger zerolog.Logger, handlers ...Handler) *Dispatcher {
	return &Dispatcher{handlers: handlers, logger: logger}
}

// Dispatch returns false when no handler accepts the topic.
func (d *Dispatcher) Dispatch(ctx context.Context, event *domain.WebhookEvent) (bool, error) {
	for _, h := range d.handlers {
		if h.CanHandle(event.Topic) {
			return true, h.Handle(ctx, event)
		}
	}
	d.logger.Debug().Str("topic", event.Topic).Str("shop", event.Shop).Msg("No handler for webhook topic")
	return false, nil
}
