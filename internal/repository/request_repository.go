package repository

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/example/reqdesk/backend/internal/models"
)

// RequestRepository provides persistence access for Request entities and the
// read facade shaping request listings.
type RequestRepository struct {
	db *gorm.DB
}

// NewRequestRepository constructs a repository using the provided gorm DB.
func NewRequestRepository(db *gorm.DB) *RequestRepository {
	return &RequestRepository{db: db}
}

// Create persists the request instance.
func (r *RequestRepository) Create(ctx context.Context, req *models.Request) error {
	return errors.WithStack(r.db.WithContext(ctx).Create(req).Error)
}

// FindByID returns the bare request row by id.
func (r *RequestRepository) FindByID(ctx context.Context, id uint) (*models.Request, error) {
	var req models.Request
	if err := r.db.WithContext(ctx).First(&req, "request_id = ?", id).Error; err != nil {
		return nil, errors.WithStack(err)
	}
	return &req, nil
}

// GetWithThread returns a request enriched with its attachment and comment
// thread, each entry carrying the uploader/sender user row for display.
func (r *RequestRepository) GetWithThread(ctx context.Context, id uint) (*models.Request, error) {
	var req models.Request
	err := r.db.WithContext(ctx).
		Preload("Attachments", func(db *gorm.DB) *gorm.DB {
			return db.Order("attachment_uploaded_at asc")
		}).
		Preload("Attachments.Uploader").
		Preload("Comments", func(db *gorm.DB) *gorm.DB {
			return db.Order("comment_time asc")
		}).
		Preload("Comments.Sender").
		First(&req, "request_id = ?", id).Error
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return &req, nil
}

// Filter narrows an owner's request listing. Zero values mean "no filter";
// End is expected to already be pushed to end-of-day by the caller.
type Filter struct {
	Status     models.RequestStatus
	CategoryID uint
	Start      *time.Time
	End        *time.Time
}

// ListByOwner returns the owner's requests, newest first.
func (r *RequestRepository) ListByOwner(ctx context.Context, ownerID uint, f Filter) ([]models.Request, error) {
	q := r.db.WithContext(ctx).Where("user_id = ?", ownerID)
	if f.Status != "" {
		q = q.Where("request_status = ?", f.Status)
	}
	if f.CategoryID != 0 {
		q = q.Where("category_id = ?", f.CategoryID)
	}
	if f.Start != nil {
		q = q.Where("request_date >= ?", *f.Start)
	}
	if f.End != nil {
		q = q.Where("request_date <= ?", *f.End)
	}
	var reqs []models.Request
	err := q.Order("request_date desc").Find(&reqs).Error
	return reqs, errors.WithStack(err)
}

// AdminRow is one entry of the staff triage queue, joined with category and
// owner details.
type AdminRow struct {
	RequestID       uint                 `json:"request_id"`
	RequestHead     string               `json:"request_head"`
	RequestDescr    string               `json:"request_descr"`
	RequestStatus   models.RequestStatus `json:"request_status"`
	RequestDate     time.Time            `json:"request_date"`
	RequestTimeLeft time.Time            `json:"request_time_left"`
	CategoryName    string               `json:"category_name"`
	UserFullname    string               `json:"user_fullname"`
	UserEmail       string               `json:"user_email"`
}

// ListAdminQueue returns the staff view: every unclaimed request plus the
// in-process requests assigned to the given staff member.
func (r *RequestRepository) ListAdminQueue(ctx context.Context, staffID uint) ([]AdminRow, error) {
	var rows []AdminRow
	err := r.db.WithContext(ctx).
		Table("request").
		Select(`request.request_id, request.request_head, request.request_descr,
			request.request_status, request.request_date, request.request_time_left,
			category.category_name, "user".user_fullname, "user".user_email`).
		Joins(`JOIN category ON category.category_id = request.category_id`).
		Joins(`JOIN "user" ON "user".user_id = request.user_id`).
		Where("request.request_status = ? OR (request.request_status = ? AND request.attached_to = ?)",
			models.StatusNew, models.StatusInProcess, staffID).
		Order("request.request_date desc").
		Scan(&rows).Error
	return rows, errors.WithStack(err)
}

// TransitionUpdate applies the field updates only while the request is still
// in the expected source status. It returns the number of rows changed; zero
// means the request is missing or has moved on (a lost race or a replayed
// action).
func (r *RequestRepository) TransitionUpdate(ctx context.Context, id uint, from models.RequestStatus, fields map[string]any) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Request{}).
		Where("request_id = ? AND request_status = ?", id, from).
		Updates(fields)
	return res.RowsAffected, errors.WithStack(res.Error)
}

// CompletedRow carries the raw material for completion-time statistics.
type CompletedRow struct {
	CategoryID        uint
	CategoryName      string
	RequestDate       time.Time
	RequestFinishTime time.Time
}

// ListCompleted returns date pairs for every completed request, joined with
// its category.
func (r *RequestRepository) ListCompleted(ctx context.Context) ([]CompletedRow, error) {
	var rows []CompletedRow
	err := r.db.WithContext(ctx).
		Table("request").
		Select(`request.category_id, category.category_name, request.request_date, request.request_finish_time`).
		Joins(`JOIN category ON category.category_id = request.category_id`).
		Where("request.request_status = ? AND request.request_finish_time IS NOT NULL", models.StatusCompleted).
		Scan(&rows).Error
	return rows, errors.WithStack(err)
}
