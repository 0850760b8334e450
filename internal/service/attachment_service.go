package service

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/example/reqdesk/backend/internal/models"
	"github.com/example/reqdesk/backend/internal/mq"
	"github.com/example/reqdesk/backend/internal/repository"
	"github.com/example/reqdesk/backend/internal/storage"
)

// FileUpload is one file from a multipart batch.
type FileUpload struct {
	Name string
	Data []byte
}

// IngestItem is the per-file outcome of a batch upload. Exactly one of
// Attachment and Err is set.
type IngestItem struct {
	Name       string             `json:"attachment_name"`
	Attachment *models.Attachment `json:"attachment,omitempty"`
	Err        string             `json:"error,omitempty"`
}

// OK reports whether the file made it into both stores.
func (i IngestItem) OK() bool { return i.Err == "" }

// AttachmentService ingests uploaded blobs: each file gets a fresh storage
// key, the blob is written to the object store, then a metadata row is
// inserted. Files in a batch are attempted independently so one bad file
// never hides the outcome of the others.
type AttachmentService struct {
	requests    *repository.RequestRepository
	attachments *repository.AttachmentRepository
	blobs       storage.BlobStore
	publisher   mq.Publisher
	now         func() time.Time
}

// NewAttachmentService builds a service with dependencies.
func NewAttachmentService(
	requests *repository.RequestRepository,
	attachments *repository.AttachmentRepository,
	blobs storage.BlobStore,
	publisher mq.Publisher,
) *AttachmentService {
	return &AttachmentService{
		requests:    requests,
		attachments: attachments,
		blobs:       blobs,
		publisher:   publisher,
		now:         time.Now,
	}
}

// Ingest stores every file of the batch for the given request and returns
// per-file results in input order. The batch-level error covers only the
// preconditions (request must exist, at least one file).
func (s *AttachmentService) Ingest(ctx context.Context, requestID, uploaderID uint, files []FileUpload) ([]IngestItem, error) {
	if requestID == 0 {
		return nil, Validationf("missing request id")
	}
	if len(files) == 0 {
		return nil, Validationf("no files received")
	}
	if _, err := s.requests.FindByID(ctx, requestID); err != nil {
		return nil, err
	}

	items := make([]IngestItem, len(files))
	var wg sync.WaitGroup
	for i, file := range files {
		wg.Add(1)
		go func(i int, file FileUpload) {
			defer wg.Done()
			items[i] = s.ingestOne(ctx, requestID, uploaderID, file)
		}(i, file)
	}
	wg.Wait()

	stored := 0
	for _, item := range items {
		if item.OK() {
			stored++
		}
	}
	if stored > 0 {
		s.publish(ctx, mq.EventRequestAttached, map[string]any{
			"request_id":  requestID,
			"uploaded_by": uploaderID,
			"stored":      stored,
			"failed":      len(items) - stored,
		})
	}
	return items, nil
}

func (s *AttachmentService) ingestOne(ctx context.Context, requestID, uploaderID uint, file FileUpload) IngestItem {
	item := IngestItem{Name: file.Name}
	if file.Name == "" {
		item.Err = "missing file name"
		return item
	}
	if len(file.Data) == 0 {
		item.Err = "empty file payload"
		return item
	}

	// 128-bit random key keeps paths collision free even when two files in
	// the batch share an original name. The original extension is preserved
	// for display-time sniffing.
	key := uuid.New().String() + filepath.Ext(file.Name)
	storagePath := fmt.Sprintf("%d/%s", requestID, key)

	if err := s.blobs.Put(ctx, storagePath, file.Data); err != nil {
		item.Err = err.Error()
		return item
	}

	meta := &models.Attachment{
		RequestID:            requestID,
		AttachmentPath:       storagePath,
		AttachmentName:       file.Name,
		AttachmentUploadedBy: uploaderID,
		AttachmentUploadedAt: s.now().UTC(),
	}
	if err := s.attachments.Create(ctx, meta); err != nil {
		// The blob made it in but its metadata did not; remove the blob so
		// the store never accumulates unreferenced objects.
		if derr := s.blobs.Delete(ctx, storagePath); derr != nil {
			slog.Warn("orphaned blob left behind", "path", storagePath, "error", derr)
		}
		item.Err = err.Error()
		return item
	}

	item.Attachment = meta
	return item
}

func (s *AttachmentService) publish(ctx context.Context, event string, payload map[string]any) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, event, payload); err != nil {
		slog.Warn("publish event failed", "event", event, "error", err)
	}
}
