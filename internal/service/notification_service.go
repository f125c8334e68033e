package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/slot-swap-service/internal/config"
	"github.com/spec-kit/slot-swap-service/internal/events"
)

// NotificationService observes domain events and logs them. Actual delivery
// channels are stubbed; delivery is handled outside this service.
type NotificationService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
	cfg        config.NotificationConfig
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, logger *zap.Logger, cfg config.NotificationConfig) *NotificationService {
	return &NotificationService{
		dispatcher: dispatcher,
		logger:     logger,
		cfg:        cfg,
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventSwapRequested, n.handleSwapRequested)
	n.dispatcher.Subscribe(events.EventSwapResponded, n.handleSwapResponded)
	n.dispatcher.Subscribe(events.EventSlotDeleted, n.handleSlotDeleted)
}

func (n *NotificationService) handleSwapRequested(ctx context.Context, event events.Event) error {
	n.logger.Info("SwapRequested", zap.String("actor_id", event.ActorID), zap.Any("payload", event.Payload))
	n.sendEmailNotificationStub(ctx, event)
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handleSwapResponded(ctx context.Context, event events.Event) error {
	n.logger.Info("SwapResponded", zap.String("actor_id", event.ActorID), zap.Any("payload", event.Payload))
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handleSlotDeleted(ctx context.Context, event events.Event) error {
	n.logger.Info("SlotDeleted", zap.String("actor_id", event.ActorID), zap.Any("payload", event.Payload))
	return nil
}

func (n *NotificationService) sendEmailNotificationStub(_ context.Context, event events.Event) {
	if strings.TrimSpace(n.cfg.EmailFrom) == "" {
		return
	}
	n.logger.Debug("sendEmailNotificationStub",
		zap.String("from", n.cfg.EmailFrom),
		zap.String("event_type", string(event.Type)))
}

func (n *NotificationService) sendWebhookNotificationStub(_ context.Context, event events.Event) {
	if strings.TrimSpace(n.cfg.WebhookURL) == "" {
		return
	}
	n.logger.Debug("sendWebhookNotificationStub",
		zap.String("url", n.cfg.WebhookURL),
		zap.String("event_type", string(event.Type)))
}
