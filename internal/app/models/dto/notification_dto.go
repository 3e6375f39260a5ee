package dto

import "github.com/yigit/internhub/internal/app/models"

// BroadcastRequest targets either every active user of a role or an explicit list
type BroadcastRequest struct {
	Title   string  `json:"title" binding:"required,max=255"`
	Message string  `json:"message" binding:"required,max=5000"`
	Link    string  `json:"link" binding:"omitempty,max=500"`
	Role    string  `json:"role" binding:"omitempty,oneof=admin hr tutor intern"`
	UserIDs []int64 `json:"userIds" binding:"omitempty,dive,min=1"`
}

// BroadcastResult lists the notifications created by a broadcast
type BroadcastResult struct {
	Sent          int                    `json:"sent"`
	Failed        int                    `json:"failed"`
	Notifications []*models.Notification `json:"notifications"`
}

// NotificationFilter holds list filters
type NotificationFilter struct {
	Unread bool `form:"unread"`
	Page   int  `form:"page"`
	Size   int  `form:"size"`
}

// UnreadCountResponse is returned by the unread counter endpoint
type UnreadCountResponse struct {
	Count int64 `json:"count"`
}
