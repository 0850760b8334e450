package repository

import (
	"context"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/example/reqdesk/backend/internal/models"
)

// CommentRepository persists the append-only comment thread. There is no
// update or delete; comments are immutable once written.
type CommentRepository struct {
	db *gorm.DB
}

// NewCommentRepository constructs a repository using the provided gorm DB.
func NewCommentRepository(db *gorm.DB) *CommentRepository {
	return &CommentRepository{db: db}
}

// Create inserts the comment and backfills its generated id.
func (r *CommentRepository) Create(ctx context.Context, c *models.Comment) error {
	return errors.WithStack(r.db.WithContext(ctx).Create(c).Error)
}
