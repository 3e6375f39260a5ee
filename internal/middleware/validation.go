package middleware

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yigit/internhub/internal/app/models/dto"
)

// BindJSON decodes and validates the request body into obj. On failure it
// writes a 400 envelope with field details and returns false.
func BindJSON(c *gin.Context, obj interface{}) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest,
			dto.NewErrorResponse("Invalid request format", dto.HandleValidationError(err)))
		return false
	}
	return true
}

// BindQuery is BindJSON for query string filters
func BindQuery(c *gin.Context, obj interface{}) bool {
	if err := c.ShouldBindQuery(obj); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest,
			dto.NewErrorResponse("Invalid query parameters", dto.HandleValidationError(err)))
		return false
	}
	return true
}

// ParseIDParam reads a positive integer path parameter
func ParseIDParam(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		c.AbortWithStatusJSON(http.StatusBadRequest,
			dto.NewErrorResponse("Invalid "+name, nil))
		return 0, false
	}
	return id, true
}

// BindForm binds multipart or urlencoded form fields
func BindForm(c *gin.Context, obj interface{}) bool {
	if err := c.ShouldBind(obj); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest,
			dto.NewErrorResponse("Invalid form data", dto.HandleValidationError(err)))
		return false
	}
	return true
}
