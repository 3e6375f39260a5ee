package dto

import "time"

// APIResponse is the envelope returned by every JSON endpoint
type APIResponse struct {
	Success   bool          `json:"success" example:"true"`
	Data      interface{}   `json:"data,omitempty"`
	Error     string        `json:"error,omitempty" example:"Resource not found"`
	Details   interface{}   `json:"details,omitempty"`
	Partial   bool          `json:"partial,omitempty"`
	Failures  []ItemFailure `json:"failures,omitempty"`
	Timestamp time.Time     `json:"timestamp" example:"2025-04-23T12:01:05.123Z"`
}

// ItemFailure describes one failed item of a fan-out operation
type ItemFailure struct {
	ID    int64  `json:"id" example:"42"`
	Error string `json:"error" example:"failed to create notification"`
}

// NewSuccessResponse wraps data in a successful envelope
func NewSuccessResponse(data interface{}) APIResponse {
	return APIResponse{
		Success:   true,
		Data:      data,
		Timestamp: time.Now(),
	}
}

// NewErrorResponse builds a failed envelope with a free-text message
func NewErrorResponse(message string, details interface{}) APIResponse {
	return APIResponse{
		Success:   false,
		Error:     message,
		Details:   details,
		Timestamp: time.Now(),
	}
}

// NewPartialResponse reports the items that succeeded together with the ones
// that did not. Success stays true as long as at least one item went through.
func NewPartialResponse(data interface{}, failures []ItemFailure, succeeded int) APIResponse {
	resp := NewSuccessResponse(data)
	if len(failures) > 0 {
		resp.Partial = true
		resp.Failures = failures
		if succeeded == 0 {
			resp.Success = false
			resp.Error = "All items failed"
		}
	}
	return resp
}

// MessageResponse is returned by endpoints that have no payload
type MessageResponse struct {
	Message string `json:"message" example:"Operation completed successfully"`
}

// PaginationInfo describes one page of a list
type PaginationInfo struct {
	CurrentPage int   `json:"currentPage"`
	TotalPages  int   `json:"totalPages"`
	PageSize    int   `json:"pageSize"`
	TotalItems  int64 `json:"totalItems"`
}

// ListResponse is a page of items
type ListResponse[T any] struct {
	Items      []T            `json:"items"`
	Pagination PaginationInfo `json:"pagination"`
}
