package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/incident-service/internal/events"
)

// AuditService mirrors committed case events into the structured log, which
// is the operational audit feed alongside the per-case journal.
type AuditService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// NewAuditService creates the service.
func NewAuditService(dispatcher events.Dispatcher, logger *zap.Logger) *AuditService {
	return &AuditService{dispatcher: dispatcher, logger: logger}
}

// RegisterHandlers subscribes to events.
func (a *AuditService) RegisterHandlers() {
	if a.dispatcher == nil {
		return
	}
	a.dispatcher.Subscribe(events.EventCaseCreated, a.handle)
	a.dispatcher.Subscribe(events.EventCaseAssigned, a.handle)
	a.dispatcher.Subscribe(events.EventCaseStatusChanged, a.handle)
	a.dispatcher.Subscribe(events.EventCaseEscalated, a.handle)
	a.dispatcher.Subscribe(events.EventCaseDeleted, a.handle)
}

func (a *AuditService) handle(ctx context.Context, event events.Event) error {
	a.logger.Info("case event",
		zap.String("event_id", event.ID),
		zap.String("type", string(event.Type)),
		zap.String("case_id", event.CaseID),
		zap.String("actor_id", event.ActorID),
		zap.Any("payload", event.Payload))
	return nil
}
