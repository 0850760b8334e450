package models

import (
	"time"
)

// Request is a support ticket submitted by an end user. It exclusively owns
// its attachments and comments; the user and category rows are referenced,
// never owned. Requests are soft-lifecycle only and never deleted.
type Request struct {
	RequestID         uint          `gorm:"primaryKey;autoIncrement" json:"request_id"`
	RequestHead       string        `json:"request_head"`
	RequestDescr      string        `json:"request_descr"`
	RequestStatus     RequestStatus `json:"request_status"`
	UserID            uint          `json:"user_id"`
	CategoryID        uint          `json:"category_id"`
	RequestDate       time.Time     `json:"request_date"`
	RequestTimeLeft   time.Time     `json:"request_time_left"`
	AttachedAt        *time.Time    `json:"attached_at,omitempty"`
	AttachedTo        *uint         `json:"attached_to,omitempty"`
	RequestFinishTime *time.Time    `json:"request_finish_time,omitempty"`

	Attachments []Attachment `gorm:"foreignKey:RequestID" json:"attachment,omitempty"`
	Comments    []Comment    `gorm:"foreignKey:RequestID" json:"comment,omitempty"`
}

// TableName matches the externally owned schema.
func (Request) TableName() string { return "request" }

// Attachment is a binary file associated with a request. Rows are created at
// upload time and immutable thereafter; the blob itself lives in the external
// object store under AttachmentPath.
type Attachment struct {
	AttachmentID         uint      `gorm:"primaryKey;autoIncrement" json:"attachment_id"`
	RequestID            uint      `json:"request_id"`
	AttachmentPath       string    `gorm:"uniqueIndex" json:"attachment_path"`
	AttachmentName       string    `json:"attachment_name"`
	AttachmentUploadedBy uint      `json:"attachment_uploaded_by"`
	AttachmentUploadedAt time.Time `json:"attachment_uploaded_at"`

	Uploader *User `gorm:"foreignKey:AttachmentUploadedBy;references:UserID" json:"uploader,omitempty"`
}

func (Attachment) TableName() string { return "attachment" }

// Comment is one append-only entry in a request's discussion thread.
type Comment struct {
	CommentID     uint      `gorm:"primaryKey;autoIncrement" json:"comment_id"`
	RequestID     uint      `json:"request_id"`
	CommentText   string    `json:"comment_text"`
	CommentSentBy uint      `json:"comment_sent_by"`
	CommentTime   time.Time `json:"comment_time"`

	Sender *User `gorm:"foreignKey:CommentSentBy;references:UserID" json:"sender,omitempty"`
}

func (Comment) TableName() string { return "comment" }

// Category is read-only reference data.
type Category struct {
	CategoryID   uint   `gorm:"primaryKey;autoIncrement" json:"category_id"`
	CategoryName string `json:"category_name"`
}

func (Category) TableName() string { return "category" }

// User roles. Admin gates the lifecycle transitions and the cross-user
// admin listing.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User mirrors a row in the user table. UserUUID is the stable subject
// identifier issued by the external auth provider.
type User struct {
	UserID       uint   `gorm:"primaryKey;autoIncrement" json:"user_id"`
	UserUUID     string `gorm:"uniqueIndex" json:"user_uuid"`
	UserFullname string `json:"user_fullname"`
	UserEmail    string `json:"user_email"`
	UserPhone    string `json:"user_phone"`
	UserRole     string `json:"user_role"`
}

func (User) TableName() string { return "user" }

// IsAdmin reports whether the user may act on the admin surface.
func (u *User) IsAdmin() bool { return u != nil && u.UserRole == RoleAdmin }
