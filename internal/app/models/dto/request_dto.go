package dto

// CreateRequestRequest files a new request. InternID may be omitted when the
// caller is the intern.
type CreateRequestRequest struct {
	InternID    *int64 `json:"internId" binding:"omitempty,min=1"`
	Type        string `json:"type" binding:"required,oneof=leave document extension equipment other"`
	Title       string `json:"title" binding:"required,max=255"`
	Description string `json:"description" binding:"omitempty,max=5000"`
}

// UpdateRequestRequest edits the content of a request
type UpdateRequestRequest struct {
	Type        *string `json:"type" binding:"omitempty,oneof=leave document extension equipment other"`
	Title       *string `json:"title" binding:"omitempty,min=1,max=255"`
	Description *string `json:"description" binding:"omitempty,max=5000"`
}

// UpdateRequestStatusRequest sets any status value, with an optional answer
type UpdateRequestStatusRequest struct {
	Status   string  `json:"status" binding:"required,oneof=pending approved rejected in_progress done"`
	Response *string `json:"response" binding:"omitempty,max=5000"`
}

// RequestFilter holds list filters
type RequestFilter struct {
	Status   string `form:"status" binding:"omitempty,oneof=pending approved rejected in_progress done"`
	InternID *int64 `form:"internId"`
	Type     string `form:"type"`
	Page     int    `form:"page"`
	Size     int    `form:"size"`
}
