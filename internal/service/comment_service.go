package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/example/reqdesk/backend/internal/models"
	"github.com/example/reqdesk/backend/internal/mq"
	"github.com/example/reqdesk/backend/internal/repository"
)

// CommentService appends entries to a request's discussion thread.
type CommentService struct {
	requests  *repository.RequestRepository
	comments  *repository.CommentRepository
	publisher mq.Publisher
	now       func() time.Time
}

// NewCommentService builds a service with dependencies.
func NewCommentService(requests *repository.RequestRepository, comments *repository.CommentRepository, publisher mq.Publisher) *CommentService {
	return &CommentService{requests: requests, comments: comments, publisher: publisher, now: time.Now}
}

// Append inserts one immutable comment stamped with the current time and
// returns it with its generated identifier so the client can update the
// thread optimistically.
func (s *CommentService) Append(ctx context.Context, requestID, senderID uint, text string) (*models.Comment, error) {
	if requestID == 0 {
		return nil, Validationf("missing request id")
	}
	if text == "" {
		return nil, Validationf("missing comment text")
	}
	if _, err := s.requests.FindByID(ctx, requestID); err != nil {
		return nil, err
	}

	comment := &models.Comment{
		RequestID:     requestID,
		CommentText:   text,
		CommentSentBy: senderID,
		CommentTime:   s.now().UTC(),
	}
	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, err
	}

	if s.publisher != nil {
		if err := s.publisher.Publish(ctx, mq.EventRequestCommented, map[string]any{
			"request_id": requestID,
			"comment_id": comment.CommentID,
			"sent_by":    senderID,
		}); err != nil {
			slog.Warn("publish event failed", "event", mq.EventRequestCommented, "error", err)
		}
	}
	return comment, nil
}
