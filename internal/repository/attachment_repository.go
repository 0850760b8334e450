package repository

import (
	"context"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/example/reqdesk/backend/internal/models"
)

// AttachmentRepository persists attachment metadata rows.
type AttachmentRepository struct {
	db *gorm.DB
}

// NewAttachmentRepository constructs a repository using the provided gorm DB.
func NewAttachmentRepository(db *gorm.DB) *AttachmentRepository {
	return &AttachmentRepository{db: db}
}

// Create inserts the metadata row for a stored blob.
func (r *AttachmentRepository) Create(ctx context.Context, a *models.Attachment) error {
	return errors.WithStack(r.db.WithContext(ctx).Create(a).Error)
}

// ListByRequest returns a request's attachments in upload order.
func (r *AttachmentRepository) ListByRequest(ctx context.Context, requestID uint) ([]models.Attachment, error) {
	var out []models.Attachment
	err := r.db.WithContext(ctx).
		Where("request_id = ?", requestID).
		Order("attachment_uploaded_at asc").
		Find(&out).Error
	return out, errors.WithStack(err)
}
