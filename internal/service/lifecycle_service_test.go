package service

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/example/reqdesk/backend/internal/models"
	"github.com/example/reqdesk/backend/internal/repository"
	"github.com/example/reqdesk/backend/internal/testutil"
)

// recordingPublisher captures published events for assertions.
type recordingPublisher struct {
	keys []string
}

func (p *recordingPublisher) Publish(_ context.Context, routingKey string, _ any) error {
	p.keys = append(p.keys, routingKey)
	return nil
}

type lifecycleFixture struct {
	db      *gorm.DB
	svc     *LifecycleService
	events  *recordingPublisher
	staff   *models.User
	staffB  *models.User
	request *models.Request
}

func newLifecycleFixture(t *testing.T, status models.RequestStatus) *lifecycleFixture {
	t.Helper()
	db := testutil.NewDB(t)
	events := &recordingPublisher{}
	repo := repository.NewRequestRepository(db)

	owner := testutil.SeedUser(t, db, "Owner", models.RoleUser)
	cat := testutil.SeedCategory(t, db, "Hardware")
	req := testutil.SeedRequest(t, db, &models.Request{
		RequestHead: "printer down", RequestDescr: "no toner", UserID: owner.UserID,
		CategoryID: cat.CategoryID, RequestDate: time.Now().UTC().Add(-time.Hour),
		RequestTimeLeft: time.Now().UTC().Add(48 * time.Hour),
		RequestStatus:   status,
	})

	return &lifecycleFixture{
		db:      db,
		svc:     NewLifecycleService(repo, events),
		events:  events,
		staff:   testutil.SeedUser(t, db, "Staff A", models.RoleAdmin),
		staffB:  testutil.SeedUser(t, db, "Staff B", models.RoleAdmin),
		request: req,
	}
}

func TestAcceptFromNew(t *testing.T) {
	f := newLifecycleFixture(t, models.StatusNew)
	before := time.Now().UTC().Add(-time.Second)

	updated, err := f.svc.Transition(context.Background(), f.request.RequestID, models.ActionAccept, f.staff)
	require.NoError(t, err)

	assert.Equal(t, models.StatusInProcess, updated.RequestStatus)
	require.NotNil(t, updated.AttachedTo)
	assert.Equal(t, f.staff.UserID, *updated.AttachedTo)
	require.NotNil(t, updated.AttachedAt)
	assert.False(t, updated.AttachedAt.Before(before))
	assert.Nil(t, updated.RequestFinishTime, "accept must not set a finish timestamp")
	assert.Equal(t, []string{"request.accepted"}, f.events.keys)
}

func TestSecondAcceptIsRejected(t *testing.T) {
	f := newLifecycleFixture(t, models.StatusNew)
	ctx := context.Background()

	_, err := f.svc.Transition(ctx, f.request.RequestID, models.ActionAccept, f.staff)
	require.NoError(t, err)

	_, err = f.svc.Transition(ctx, f.request.RequestID, models.ActionAccept, f.staffB)
	assert.True(t, errors.Is(err, ErrInvalidTransition))

	// Assignment still belongs to the first staff member.
	var current models.Request
	require.NoError(t, f.db.First(&current, "request_id = ?", f.request.RequestID).Error)
	require.NotNil(t, current.AttachedTo)
	assert.Equal(t, f.staff.UserID, *current.AttachedTo)
}

func TestRejectFromInProcess(t *testing.T) {
	f := newLifecycleFixture(t, models.StatusInProcess)

	updated, err := f.svc.Transition(context.Background(), f.request.RequestID, models.ActionReject, f.staff)
	require.NoError(t, err)

	assert.Equal(t, models.StatusCanceled, updated.RequestStatus)
	require.NotNil(t, updated.RequestFinishTime)
	assert.Equal(t, []string{"request.rejected"}, f.events.keys)
}

func TestCompleteFromInProcess(t *testing.T) {
	f := newLifecycleFixture(t, models.StatusInProcess)

	updated, err := f.svc.Transition(context.Background(), f.request.RequestID, models.ActionComplete, f.staff)
	require.NoError(t, err)

	assert.Equal(t, models.StatusCompleted, updated.RequestStatus)
	require.NotNil(t, updated.RequestFinishTime)
}

func TestCompleteFromNewIsRejected(t *testing.T) {
	f := newLifecycleFixture(t, models.StatusNew)

	_, err := f.svc.Transition(context.Background(), f.request.RequestID, models.ActionComplete, f.staff)
	assert.True(t, errors.Is(err, ErrInvalidTransition))

	var current models.Request
	require.NoError(t, f.db.First(&current, "request_id = ?", f.request.RequestID).Error)
	assert.Equal(t, models.StatusNew, current.RequestStatus)
	assert.Nil(t, current.RequestFinishTime)
}

func TestUnknownActionLeavesRecordUnchanged(t *testing.T) {
	f := newLifecycleFixture(t, models.StatusNew)

	_, err := f.svc.Transition(context.Background(), f.request.RequestID, "escalate", f.staff)
	assert.True(t, errors.Is(err, models.ErrUnknownAction))

	var current models.Request
	require.NoError(t, f.db.First(&current, "request_id = ?", f.request.RequestID).Error)
	assert.Equal(t, models.StatusNew, current.RequestStatus)
	assert.Empty(t, f.events.keys)
}

func TestTransitionMissingRequest(t *testing.T) {
	f := newLifecycleFixture(t, models.StatusNew)

	_, err := f.svc.Transition(context.Background(), 9999, models.ActionAccept, f.staff)
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))
}

func TestTerminalStatesHaveNoTransitions(t *testing.T) {
	for _, status := range []models.RequestStatus{models.StatusCompleted, models.StatusCanceled} {
		f := newLifecycleFixture(t, status)
		for _, action := range []models.Action{models.ActionAccept, models.ActionReject, models.ActionComplete} {
			_, err := f.svc.Transition(context.Background(), f.request.RequestID, action, f.staff)
			assert.True(t, errors.Is(err, ErrInvalidTransition),
				"action %s from %s must be rejected", action, status)
		}
	}
}
