package http

import (
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/example/reqdesk/backend/internal/models"
	"github.com/example/reqdesk/backend/internal/service"
)

// respondError maps the service error taxonomy onto HTTP statuses:
// validation and unknown actions are 400, missing records 404, state-machine
// precondition failures 409, anything else is an upstream store failure
// forwarded as 500.
func respondError(c *gin.Context, err error) {
	switch {
	case service.IsValidation(err) || errors.Is(err, models.ErrUnknownAction):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, gorm.ErrRecordNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Request not found"})
	case errors.Is(err, service.ErrInvalidTransition):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

// parseID converts a path parameter into a row identifier.
func parseID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return uint(id), true
}

// timeLeftFormats are accepted for the desired-completion field, broadest
// first. Browser datetime-local inputs produce the second form.
var timeLeftFormats = []string{
	time.RFC3339,
	"2006-01-02T15:04",
	"2006-01-02",
}

func parseTimestamp(raw string) (time.Time, bool) {
	for _, layout := range timeLeftFormats {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// readUploads drains the multipart file headers into memory for the
// ingestion pipeline.
func readUploads(headers []*multipart.FileHeader) ([]service.FileUpload, error) {
	uploads := make([]service.FileUpload, 0, len(headers))
	for _, fh := range headers {
		f, err := fh.Open()
		if err != nil {
			return nil, errors.Wrapf(err, "open upload %s", fh.Filename)
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			return nil, errors.Wrapf(err, "read upload %s", fh.Filename)
		}
		uploads = append(uploads, service.FileUpload{Name: fh.Filename, Data: data})
	}
	return uploads, nil
}

// splitIngest separates per-file results into stored attachments and
// failures for the response body.
func splitIngest(items []service.IngestItem) (stored []*models.Attachment, failed []gin.H) {
	for _, item := range items {
		if item.OK() {
			stored = append(stored, item.Attachment)
		} else {
			failed = append(failed, gin.H{"attachment_name": item.Name, "error": item.Err})
		}
	}
	return stored, failed
}
