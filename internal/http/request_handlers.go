package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/example/reqdesk/backend/internal/models"
	"github.com/example/reqdesk/backend/internal/repository"
	"github.com/example/reqdesk/backend/internal/service"
)

func (s *Server) listCategories(c *gin.Context) {
	categories, err := s.categories.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"categories": categories})
}

func (s *Server) userAndCategories(c *gin.Context) {
	categories, err := s.categories.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"userDetails": currentUser(c), "categories": categories})
}

// listRequests returns the caller's own requests, optionally narrowed by
// status, category and an inclusive date range.
func (s *Server) listRequests(c *gin.Context) {
	filter := repository.Filter{
		Status: models.RequestStatus(c.Query("status")),
	}
	if raw := c.Query("category"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid category"})
			return
		}
		filter.CategoryID = uint(id)
	}
	if raw := c.Query("startDate"); raw != "" {
		t, ok := parseTimestamp(raw)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid startDate"})
			return
		}
		// The range is whole days: any time component on the boundary is
		// dropped, start of day on the start side.
		start := startOfDay(t)
		filter.Start = &start
	}
	if raw := c.Query("endDate"); raw != "" {
		t, ok := parseTimestamp(raw)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid endDate"})
			return
		}
		// Inclusive on the end side: last instant of the end day.
		end := startOfDay(t).Add(24*time.Hour - time.Millisecond)
		filter.End = &end
	}

	requests, err := s.requests.ListByOwner(c.Request.Context(), currentUser(c).UserID, filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"requests": requests})
}

// userRef is the minimal user projection embedded in thread entries.
type userRef struct {
	UserID       uint   `json:"user_id"`
	UserFullname string `json:"user_fullname"`
}

type attachmentView struct {
	AttachmentID         uint      `json:"attachment_id"`
	AttachmentName       string    `json:"attachment_name"`
	AttachmentPath       string    `json:"attachment_path"`
	AttachmentUploadedAt time.Time `json:"attachment_uploaded_at"`
	UploadedBy           *userRef  `json:"attachment_uploaded_by,omitempty"`
}

type commentView struct {
	CommentID   uint      `json:"comment_id"`
	CommentText string    `json:"comment_text"`
	CommentTime time.Time `json:"comment_time"`
	SentBy      *userRef  `json:"comment_sent_by,omitempty"`
}

type requestDetailView struct {
	RequestID         uint                 `json:"request_id"`
	RequestHead       string               `json:"request_head"`
	RequestDescr      string               `json:"request_descr"`
	RequestStatus     models.RequestStatus `json:"request_status"`
	UserID            uint                 `json:"user_id"`
	CategoryID        uint                 `json:"category_id"`
	RequestDate       time.Time            `json:"request_date"`
	RequestTimeLeft   time.Time            `json:"request_time_left"`
	AttachedAt        *time.Time           `json:"attached_at,omitempty"`
	AttachedTo        *uint                `json:"attached_to,omitempty"`
	RequestFinishTime *time.Time           `json:"request_finish_time,omitempty"`
	Attachments       []attachmentView     `json:"attachment"`
	Comments          []commentView        `json:"comment"`
}

func (s *Server) getRequest(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	req, err := s.requests.GetWithThread(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	view := requestDetailView{
		RequestID:         req.RequestID,
		RequestHead:       req.RequestHead,
		RequestDescr:      req.RequestDescr,
		RequestStatus:     req.RequestStatus,
		UserID:            req.UserID,
		CategoryID:        req.CategoryID,
		RequestDate:       req.RequestDate,
		RequestTimeLeft:   req.RequestTimeLeft,
		AttachedAt:        req.AttachedAt,
		AttachedTo:        req.AttachedTo,
		RequestFinishTime: req.RequestFinishTime,
		Attachments:       make([]attachmentView, 0, len(req.Attachments)),
		Comments:          make([]commentView, 0, len(req.Comments)),
	}
	for _, a := range req.Attachments {
		av := attachmentView{
			AttachmentID:         a.AttachmentID,
			AttachmentName:       a.AttachmentName,
			AttachmentPath:       a.AttachmentPath,
			AttachmentUploadedAt: a.AttachmentUploadedAt,
		}
		if a.Uploader != nil {
			av.UploadedBy = &userRef{UserID: a.Uploader.UserID, UserFullname: a.Uploader.UserFullname}
		}
		view.Attachments = append(view.Attachments, av)
	}
	for _, cm := range req.Comments {
		cv := commentView{
			CommentID:   cm.CommentID,
			CommentText: cm.CommentText,
			CommentTime: cm.CommentTime,
		}
		if cm.Sender != nil {
			cv.SentBy = &userRef{UserID: cm.Sender.UserID, UserFullname: cm.Sender.UserFullname}
		}
		view.Comments = append(view.Comments, cv)
	}

	c.JSON(http.StatusOK, gin.H{"request": view})
}

func (s *Server) appendComment(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var payload struct {
		CommentText   string `json:"comment_text" binding:"required"`
		CommentSentBy uint   `json:"comment_sent_by"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing required fields"})
		return
	}
	senderID := payload.CommentSentBy
	if senderID == 0 {
		senderID = currentUser(c).UserID
	}

	comment, err := s.comments.Append(c.Request.Context(), id, senderID, payload.CommentText)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"comment": comment})
}

func (s *Server) uploadAttachments(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid multipart form"})
		return
	}
	uploads, err := readUploads(form.File["files"])
	if err != nil {
		respondError(c, err)
		return
	}

	uploaderID := currentUser(c).UserID
	if raw := c.PostForm("user_id"); raw != "" {
		parsed, perr := strconv.ParseUint(raw, 10, 32)
		if perr != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user_id"})
			return
		}
		uploaderID = uint(parsed)
	}

	items, err := s.attachments.Ingest(c.Request.Context(), id, uploaderID, uploads)
	if err != nil {
		respondError(c, err)
		return
	}

	stored, failed := splitIngest(items)
	if len(stored) == 0 {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "all uploads failed", "failures": failed})
		return
	}
	body := gin.H{"attachments": stored}
	if len(failed) > 0 {
		body["failures"] = failed
	}
	c.JSON(http.StatusCreated, body)
}

func (s *Server) createRequest(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid multipart form"})
		return
	}

	head := c.PostForm("requestHead")
	descr := c.PostForm("requestDescr")
	categoryRaw := c.PostForm("categoryId")
	userRaw := c.PostForm("userId")
	timeLeftRaw := c.PostForm("requestTimeLeft")
	if head == "" || descr == "" || categoryRaw == "" || userRaw == "" || timeLeftRaw == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing required form fields"})
		return
	}

	categoryID, err := strconv.ParseUint(categoryRaw, 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid categoryId"})
		return
	}
	userID := currentUser(c).UserID
	if parsed, perr := strconv.ParseUint(userRaw, 10, 32); perr == nil && parsed != 0 {
		userID = uint(parsed)
	}
	timeLeft, ok := parseTimestamp(timeLeftRaw)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid requestTimeLeft"})
		return
	}

	uploads, err := readUploads(form.File["files"])
	if err != nil {
		respondError(c, err)
		return
	}

	req, items, err := s.creator.Create(c.Request.Context(), service.CreateRequestInput{
		Head:       head,
		Descr:      descr,
		CategoryID: uint(categoryID),
		UserID:     userID,
		TimeLeft:   timeLeft,
	}, uploads)
	if err != nil {
		respondError(c, err)
		return
	}

	stored, failed := splitIngest(items)
	if len(stored) == 0 {
		// The request row exists but carries none of its files; surface the
		// id so the client can retry the uploads.
		c.JSON(http.StatusInternalServerError, gin.H{
			"success":    false,
			"error":      "all uploads failed",
			"failures":   failed,
			"request_id": req.RequestID,
		})
		return
	}
	body := gin.H{"success": true, "attachments": stored, "request_id": req.RequestID}
	if len(failed) > 0 {
		body["failures"] = failed
	}
	c.JSON(http.StatusCreated, body)
}

func (s *Server) logout(c *gin.Context) {
	if s.authClient != nil {
		if err := s.authClient.Logout(c.Request.Context(), currentToken(c)); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to log out"})
			return
		}
	}
	c.SetCookie(SessionCookieName, "", -1, "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{"success": true})
}
