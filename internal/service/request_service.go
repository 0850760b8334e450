package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/example/reqdesk/backend/internal/models"
	"github.com/example/reqdesk/backend/internal/mq"
	"github.com/example/reqdesk/backend/internal/repository"
)

// CreateRequestInput carries the validated fields of a new request.
type CreateRequestInput struct {
	Head       string
	Descr      string
	CategoryID uint
	UserID     uint
	TimeLeft   time.Time
}

// RequestService creates requests together with their initial attachment
// batch.
type RequestService struct {
	requests    *repository.RequestRepository
	attachments *AttachmentService
	publisher   mq.Publisher
	now         func() time.Time
}

// NewRequestService builds a service with dependencies.
func NewRequestService(requests *repository.RequestRepository, attachments *AttachmentService, publisher mq.Publisher) *RequestService {
	return &RequestService{requests: requests, attachments: attachments, publisher: publisher, now: time.Now}
}

// Create validates the whole submission before touching the store, inserts
// the request in status new, then runs the ingestion pipeline for the files.
// Validating the file list up front means a fileless submission never leaves
// a stranded request row behind.
func (s *RequestService) Create(ctx context.Context, in CreateRequestInput, files []FileUpload) (*models.Request, []IngestItem, error) {
	switch {
	case in.Head == "":
		return nil, nil, Validationf("missing request head")
	case in.Descr == "":
		return nil, nil, Validationf("missing request description")
	case in.CategoryID == 0:
		return nil, nil, Validationf("missing category id")
	case in.UserID == 0:
		return nil, nil, Validationf("missing user id")
	case in.TimeLeft.IsZero():
		return nil, nil, Validationf("missing or unparseable desired completion time")
	case len(files) == 0:
		return nil, nil, Validationf("no files received")
	}

	req := &models.Request{
		RequestHead:     in.Head,
		RequestDescr:    in.Descr,
		RequestStatus:   models.StatusNew,
		CategoryID:      in.CategoryID,
		UserID:          in.UserID,
		RequestDate:     s.now().UTC(),
		RequestTimeLeft: in.TimeLeft,
	}
	if err := s.requests.Create(ctx, req); err != nil {
		return nil, nil, err
	}

	items, err := s.attachments.Ingest(ctx, req.RequestID, in.UserID, files)
	if err != nil {
		return req, nil, err
	}

	if s.publisher != nil {
		if perr := s.publisher.Publish(ctx, mq.EventRequestCreated, map[string]any{
			"request_id":  req.RequestID,
			"user_id":     req.UserID,
			"category_id": req.CategoryID,
		}); perr != nil {
			slog.Warn("publish event failed", "event", mq.EventRequestCreated, "error", perr)
		}
	}
	return req, items, nil
}
