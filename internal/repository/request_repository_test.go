package repository

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/example/reqdesk/backend/internal/models"
	"github.com/example/reqdesk/backend/internal/testutil"
)

func date(day int) time.Time {
	return time.Date(2025, time.January, day, 12, 0, 0, 0, time.UTC)
}

func TestListByOwnerFilters(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewRequestRepository(db)
	ctx := context.Background()

	owner := testutil.SeedUser(t, db, "Owner", models.RoleUser)
	other := testutil.SeedUser(t, db, "Other", models.RoleUser)
	cat3 := testutil.SeedCategory(t, db, "Network")
	cat4 := testutil.SeedCategory(t, db, "Other")

	mk := func(userID, catID uint, status models.RequestStatus, day int) *models.Request {
		return testutil.SeedRequest(t, db, &models.Request{
			RequestHead:     "head",
			RequestDescr:    "descr",
			RequestStatus:   status,
			UserID:          userID,
			CategoryID:      catID,
			RequestDate:     date(day),
			RequestTimeLeft: date(day + 10),
		})
	}

	match1 := mk(owner.UserID, cat3.CategoryID, models.StatusCompleted, 5)
	match2 := mk(owner.UserID, cat3.CategoryID, models.StatusCompleted, 20)
	mk(owner.UserID, cat3.CategoryID, models.StatusNew, 6)        // wrong status
	mk(owner.UserID, cat4.CategoryID, models.StatusCompleted, 7)  // wrong category
	mk(owner.UserID, cat3.CategoryID, models.StatusCompleted, 40) // outside range
	mk(other.UserID, cat3.CategoryID, models.StatusCompleted, 8)  // wrong owner

	start := time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, time.January, 31, 23, 59, 59, 999000000, time.UTC)
	got, err := repo.ListByOwner(ctx, owner.UserID, Filter{
		Status:     models.StatusCompleted,
		CategoryID: cat3.CategoryID,
		Start:      &start,
		End:        &end,
	})
	require.NoError(t, err)
	require.Len(t, got, 2)

	// Newest first.
	assert.Equal(t, match2.RequestID, got[0].RequestID)
	assert.Equal(t, match1.RequestID, got[1].RequestID)
}

func TestListByOwnerInclusiveEndOfDay(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewRequestRepository(db)
	ctx := context.Background()

	owner := testutil.SeedUser(t, db, "Owner", models.RoleUser)
	cat := testutil.SeedCategory(t, db, "Software")

	lastMinute := testutil.SeedRequest(t, db, &models.Request{
		RequestHead:   "late",
		RequestDescr:  "d",
		UserID:        owner.UserID,
		CategoryID:    cat.CategoryID,
		RequestDate:   time.Date(2025, time.January, 31, 23, 59, 0, 0, time.UTC),
		RequestStatus: models.StatusNew,
	})

	end := time.Date(2025, time.January, 31, 23, 59, 59, 999000000, time.UTC)
	got, err := repo.ListByOwner(ctx, owner.UserID, Filter{End: &end})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, lastMinute.RequestID, got[0].RequestID)
}

func TestListAdminQueue(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewRequestRepository(db)
	ctx := context.Background()

	owner := testutil.SeedUser(t, db, "End User", models.RoleUser)
	staffA := testutil.SeedUser(t, db, "Staff A", models.RoleAdmin)
	staffB := testutil.SeedUser(t, db, "Staff B", models.RoleAdmin)
	cat := testutil.SeedCategory(t, db, "Hardware")

	unclaimed := testutil.SeedRequest(t, db, &models.Request{
		RequestHead: "new one", RequestDescr: "d", UserID: owner.UserID,
		CategoryID: cat.CategoryID, RequestDate: date(1), RequestStatus: models.StatusNew,
	})
	now := date(2)
	mine := testutil.SeedRequest(t, db, &models.Request{
		RequestHead: "mine", RequestDescr: "d", UserID: owner.UserID,
		CategoryID: cat.CategoryID, RequestDate: date(2), RequestStatus: models.StatusInProcess,
		AttachedAt: &now, AttachedTo: &staffA.UserID,
	})
	testutil.SeedRequest(t, db, &models.Request{ // assigned to someone else
		RequestHead: "theirs", RequestDescr: "d", UserID: owner.UserID,
		CategoryID: cat.CategoryID, RequestDate: date(3), RequestStatus: models.StatusInProcess,
		AttachedAt: &now, AttachedTo: &staffB.UserID,
	})
	testutil.SeedRequest(t, db, &models.Request{ // terminal
		RequestHead: "done", RequestDescr: "d", UserID: owner.UserID,
		CategoryID: cat.CategoryID, RequestDate: date(4), RequestStatus: models.StatusCompleted,
	})

	rows, err := repo.ListAdminQueue(ctx, staffA.UserID)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	ids := []uint{rows[0].RequestID, rows[1].RequestID}
	assert.Contains(t, ids, unclaimed.RequestID)
	assert.Contains(t, ids, mine.RequestID)

	for _, row := range rows {
		assert.Equal(t, "Hardware", row.CategoryName)
		assert.Equal(t, "End User", row.UserFullname)
		assert.Equal(t, owner.UserEmail, row.UserEmail)
	}
}

func TestGetWithThread(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewRequestRepository(db)
	ctx := context.Background()

	owner := testutil.SeedUser(t, db, "Owner", models.RoleUser)
	staff := testutil.SeedUser(t, db, "Helper", models.RoleAdmin)
	cat := testutil.SeedCategory(t, db, "Accounts")
	req := testutil.SeedRequest(t, db, &models.Request{
		RequestHead: "h", RequestDescr: "d", UserID: owner.UserID,
		CategoryID: cat.CategoryID, RequestDate: date(1),
	})

	require.NoError(t, db.Create(&models.Attachment{
		RequestID: req.RequestID, AttachmentPath: "1/k1.png", AttachmentName: "shot.png",
		AttachmentUploadedBy: owner.UserID, AttachmentUploadedAt: date(1),
	}).Error)
	require.NoError(t, db.Create(&models.Comment{
		RequestID: req.RequestID, CommentText: "Hello", CommentSentBy: staff.UserID, CommentTime: date(2),
	}).Error)

	got, err := repo.GetWithThread(ctx, req.RequestID)
	require.NoError(t, err)
	require.Len(t, got.Attachments, 1)
	require.Len(t, got.Comments, 1)

	require.NotNil(t, got.Attachments[0].Uploader)
	assert.Equal(t, "Owner", got.Attachments[0].Uploader.UserFullname)
	require.NotNil(t, got.Comments[0].Sender)
	assert.Equal(t, "Helper", got.Comments[0].Sender.UserFullname)
}

func TestGetWithThreadNotFound(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewRequestRepository(db)

	_, err := repo.GetWithThread(context.Background(), 9999)
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))
}

func TestTransitionUpdateIsConditional(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewRequestRepository(db)
	ctx := context.Background()

	owner := testutil.SeedUser(t, db, "Owner", models.RoleUser)
	cat := testutil.SeedCategory(t, db, "Hardware")
	req := testutil.SeedRequest(t, db, &models.Request{
		RequestHead: "h", RequestDescr: "d", UserID: owner.UserID,
		CategoryID: cat.CategoryID, RequestDate: date(1), RequestStatus: models.StatusNew,
	})

	affected, err := repo.TransitionUpdate(ctx, req.RequestID, models.StatusNew,
		map[string]any{"request_status": models.StatusInProcess})
	require.NoError(t, err)
	assert.EqualValues(t, 1, affected)

	// Source status no longer matches: no rows change.
	affected, err = repo.TransitionUpdate(ctx, req.RequestID, models.StatusNew,
		map[string]any{"request_status": models.StatusInProcess})
	require.NoError(t, err)
	assert.EqualValues(t, 0, affected)
}

func TestListCompleted(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewRequestRepository(db)
	ctx := context.Background()

	owner := testutil.SeedUser(t, db, "Owner", models.RoleUser)
	cat := testutil.SeedCategory(t, db, "Network")
	finish := date(3)
	testutil.SeedRequest(t, db, &models.Request{
		RequestHead: "done", RequestDescr: "d", UserID: owner.UserID,
		CategoryID: cat.CategoryID, RequestDate: date(1),
		RequestStatus: models.StatusCompleted, RequestFinishTime: &finish,
	})
	testutil.SeedRequest(t, db, &models.Request{
		RequestHead: "open", RequestDescr: "d", UserID: owner.UserID,
		CategoryID: cat.CategoryID, RequestDate: date(2), RequestStatus: models.StatusNew,
	})

	rows, err := repo.ListCompleted(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Network", rows[0].CategoryName)
	assert.Equal(t, date(1), rows[0].RequestDate.UTC())
	assert.Equal(t, date(3), rows[0].RequestFinishTime.UTC())
}
