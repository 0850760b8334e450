package repository

import (
	"context"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/example/reqdesk/backend/internal/models"
)

// CategoryRepository reads the category reference table.
type CategoryRepository struct {
	db *gorm.DB
}

// NewCategoryRepository constructs a repository using the provided gorm DB.
func NewCategoryRepository(db *gorm.DB) *CategoryRepository {
	return &CategoryRepository{db: db}
}

// List returns all categories.
func (r *CategoryRepository) List(ctx context.Context) ([]models.Category, error) {
	var out []models.Category
	err := r.db.WithContext(ctx).Order("category_id asc").Find(&out).Error
	return out, errors.WithStack(err)
}

// UserRepository reads the user table. User records are provisioned by the
// external auth flow; this service only looks them up.
type UserRepository struct {
	db *gorm.DB
}

// NewUserRepository constructs a repository using the provided gorm DB.
func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// FindByID returns the user by primary key.
func (r *UserRepository) FindByID(ctx context.Context, id uint) (*models.User, error) {
	var u models.User
	if err := r.db.WithContext(ctx).First(&u, "user_id = ?", id).Error; err != nil {
		return nil, errors.WithStack(err)
	}
	return &u, nil
}

// FindByUUID resolves the local user row for an external auth subject.
func (r *UserRepository) FindByUUID(ctx context.Context, uuid string) (*models.User, error) {
	var u models.User
	if err := r.db.WithContext(ctx).First(&u, "user_uuid = ?", uuid).Error; err != nil {
		return nil, errors.WithStack(err)
	}
	return &u, nil
}

// List returns all users.
func (r *UserRepository) List(ctx context.Context) ([]models.User, error) {
	var out []models.User
	err := r.db.WithContext(ctx).Order("user_id asc").Find(&out).Error
	return out, errors.WithStack(err)
}
