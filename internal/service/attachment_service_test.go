package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/example/reqdesk/backend/internal/models"
	"github.com/example/reqdesk/backend/internal/repository"
	"github.com/example/reqdesk/backend/internal/testutil"
)

// memBlobStore is an in-memory BlobStore that can fail selected paths and
// records deletes for orphan-cleanup assertions.
type memBlobStore struct {
	mu      sync.Mutex
	objects map[string][]byte
	deleted []string
	// failSubstring makes Put fail for any path containing it.
	failSubstring string
}

func newMemBlobStore() *memBlobStore {
	return &memBlobStore{objects: map[string][]byte{}}
}

func (m *memBlobStore) Put(_ context.Context, path string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failSubstring != "" && strings.Contains(path, m.failSubstring) {
		return errors.New("simulated storage failure")
	}
	if _, exists := m.objects[path]; exists {
		return errors.Errorf("object already exists: %s", path)
	}
	m.objects[path] = data
	return nil
}

func (m *memBlobStore) Delete(_ context.Context, path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, path)
	m.deleted = append(m.deleted, path)
	return nil
}

func (m *memBlobStore) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.objects)
}

type ingestFixture struct {
	db    *gorm.DB
	svc   *AttachmentService
	blobs *memBlobStore
	user  *models.User
	req   *models.Request
}

func newIngestFixture(t *testing.T) *ingestFixture {
	t.Helper()
	db := testutil.NewDB(t)
	blobs := newMemBlobStore()
	user := testutil.SeedUser(t, db, "Uploader", models.RoleUser)
	cat := testutil.SeedCategory(t, db, "Software")
	req := testutil.SeedRequest(t, db, &models.Request{
		RequestHead: "h", RequestDescr: "d",
		UserID: user.UserID, CategoryID: cat.CategoryID,
	})
	svc := NewAttachmentService(
		repository.NewRequestRepository(db),
		repository.NewAttachmentRepository(db),
		blobs,
		nil,
	)
	return &ingestFixture{db: db, svc: svc, blobs: blobs, user: user, req: req}
}

func TestIngestBatch(t *testing.T) {
	f := newIngestFixture(t)

	files := []FileUpload{
		{Name: "report.pdf", Data: []byte("pdf bytes")},
		{Name: "screen.png", Data: []byte("png bytes")},
		{Name: "screen.png", Data: []byte("other png bytes")}, // same display name
	}
	items, err := f.svc.Ingest(context.Background(), f.req.RequestID, f.user.UserID, files)
	require.NoError(t, err)
	require.Len(t, items, 3)

	paths := map[string]bool{}
	for i, item := range items {
		require.True(t, item.OK(), "file %d: %s", i, item.Err)
		a := item.Attachment
		assert.Equal(t, f.req.RequestID, a.RequestID)
		assert.Equal(t, files[i].Name, a.AttachmentName)
		assert.Equal(t, f.user.UserID, a.AttachmentUploadedBy)
		assert.False(t, paths[a.AttachmentPath], "storage paths must be pairwise distinct")
		paths[a.AttachmentPath] = true
	}

	// Extension preserved, path scoped under the request id.
	assert.True(t, strings.HasSuffix(items[1].Attachment.AttachmentPath, ".png"))
	assert.True(t, strings.HasPrefix(items[0].Attachment.AttachmentPath, fmt.Sprintf("%d/", f.req.RequestID)))

	var count int64
	require.NoError(t, f.db.Model(&models.Attachment{}).Where("request_id = ?", f.req.RequestID).Count(&count).Error)
	assert.EqualValues(t, 3, count)
	assert.Equal(t, 3, f.blobs.count())
}

func TestIngestContinuesPastFailures(t *testing.T) {
	f := newIngestFixture(t)
	f.blobs.failSubstring = ".exe"

	files := []FileUpload{
		{Name: "ok.txt", Data: []byte("fine")},
		{Name: "virus.exe", Data: []byte("nope")},
		{Name: "also-ok.txt", Data: []byte("fine too")},
	}
	items, err := f.svc.Ingest(context.Background(), f.req.RequestID, f.user.UserID, files)
	require.NoError(t, err)
	require.Len(t, items, 3)

	assert.True(t, items[0].OK())
	assert.False(t, items[1].OK())
	assert.Contains(t, items[1].Err, "simulated storage failure")
	assert.True(t, items[2].OK(), "a failed file must not abort the rest of the batch")

	var count int64
	require.NoError(t, f.db.Model(&models.Attachment{}).Count(&count).Error)
	assert.EqualValues(t, 2, count)
}

func TestIngestCompensatesOrphanedBlob(t *testing.T) {
	f := newIngestFixture(t)

	// Without the attachment table every metadata insert fails after the
	// blob write succeeded.
	require.NoError(t, f.db.Migrator().DropTable(&models.Attachment{}))

	items, err := f.svc.Ingest(context.Background(), f.req.RequestID, f.user.UserID, []FileUpload{
		{Name: "doomed.txt", Data: []byte("x")},
	})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.False(t, items[0].OK())

	assert.Equal(t, 0, f.blobs.count(), "stored blob must be deleted when its metadata insert fails")
	assert.Len(t, f.blobs.deleted, 1)
}

func TestIngestValidation(t *testing.T) {
	f := newIngestFixture(t)
	ctx := context.Background()

	_, err := f.svc.Ingest(ctx, 0, f.user.UserID, []FileUpload{{Name: "a", Data: []byte("x")}})
	assert.True(t, IsValidation(err))

	_, err = f.svc.Ingest(ctx, f.req.RequestID, f.user.UserID, nil)
	assert.True(t, IsValidation(err))

	_, err = f.svc.Ingest(ctx, 9999, f.user.UserID, []FileUpload{{Name: "a", Data: []byte("x")}})
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))
}

func TestIngestRejectsNamelessAndEmptyFiles(t *testing.T) {
	f := newIngestFixture(t)

	items, err := f.svc.Ingest(context.Background(), f.req.RequestID, f.user.UserID, []FileUpload{
		{Name: "", Data: []byte("x")},
		{Name: "empty.txt", Data: nil},
	})
	require.NoError(t, err)
	assert.False(t, items[0].OK())
	assert.False(t, items[1].OK())
	assert.Equal(t, 0, f.blobs.count())
}
