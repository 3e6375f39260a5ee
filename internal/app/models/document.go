package models

import "time"

// Document is a stored file owned by a user; bytes live in object storage
type Document struct {
	ID          int64     `json:"id" db:"id"`
	OwnerID     int64     `json:"ownerId" db:"owner_id"`
	RequestID   *int64    `json:"requestId,omitempty" db:"request_id"`
	Name        string    `json:"name" db:"name"`
	MimeType    string    `json:"mimeType" db:"mime_type"`
	Size        int64     `json:"size" db:"size"`
	StoragePath string    `json:"-" db:"storage_path"`
	IsVisible   bool      `json:"isVisible" db:"is_visible"`
	UploadedBy  int64     `json:"uploadedBy" db:"uploaded_by"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time `json:"updatedAt" db:"updated_at"`
}
