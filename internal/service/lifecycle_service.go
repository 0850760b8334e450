package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/pkg/errors"

	"github.com/example/reqdesk/backend/internal/models"
	"github.com/example/reqdesk/backend/internal/mq"
	"github.com/example/reqdesk/backend/internal/repository"
)

// LifecycleService owns the request status state machine and the side
// effects of each transition (assignment, finish timestamps, events).
type LifecycleService struct {
	requests  *repository.RequestRepository
	publisher mq.Publisher
	now       func() time.Time
}

// NewLifecycleService builds a service with dependencies.
func NewLifecycleService(requests *repository.RequestRepository, publisher mq.Publisher) *LifecycleService {
	return &LifecycleService{requests: requests, publisher: publisher, now: time.Now}
}

// Transition applies a staff action to a request. The update is conditional
// on the request still holding the action's source status, so a replayed
// accept (or two staff members racing for the same request) cannot reassign
// it: the loser gets ErrInvalidTransition instead of silently winning.
func (s *LifecycleService) Transition(ctx context.Context, requestID uint, action models.Action, actor *models.User) (*models.Request, error) {
	tr, err := models.TransitionFor(action)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	fields := map[string]any{"request_status": tr.To}
	switch action {
	case models.ActionAccept:
		fields["attached_at"] = now
		fields["attached_to"] = actor.UserID
	case models.ActionReject, models.ActionComplete:
		fields["request_finish_time"] = now
	}

	affected, err := s.requests.TransitionUpdate(ctx, requestID, tr.From, fields)
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		current, ferr := s.requests.FindByID(ctx, requestID)
		if ferr != nil {
			return nil, ferr
		}
		return nil, errors.Wrapf(ErrInvalidTransition,
			"action %s requires status %s, request %d is %s", action, tr.From, requestID, current.RequestStatus)
	}

	updated, err := s.requests.FindByID(ctx, requestID)
	if err != nil {
		return nil, err
	}

	event := map[models.Action]string{
		models.ActionAccept:   mq.EventRequestAccepted,
		models.ActionReject:   mq.EventRequestRejected,
		models.ActionComplete: mq.EventRequestCompleted,
	}[action]
	s.publish(ctx, event, map[string]any{
		"request_id": updated.RequestID,
		"status":     updated.RequestStatus,
		"actor_id":   actor.UserID,
		"occurredAt": now.Format(time.RFC3339),
	})

	return updated, nil
}

func (s *LifecycleService) publish(ctx context.Context, event string, payload map[string]any) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, event, payload); err != nil {
		slog.Warn("publish event failed", "event", event, "error", err)
	}
}
