package common

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ErrorInfo error details
type ErrorInfo struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// FieldError a single field-level validation message
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ErrorBody is the JSON body of every failed request
type ErrorBody struct {
	Message string       `json:"message"`
	Error   *ErrorInfo   `json:"error,omitempty"`
	Errors  []FieldError `json:"errors,omitempty"`
}

// Page is the paginated list envelope. The items key differs per resource
// ("messages", "conversations") so it is written by the caller.
type Page struct {
	TotalItems  int64 `json:"totalItems"`
	TotalPages  int   `json:"totalPages"`
	CurrentPage int   `json:"currentPage"`
	Limit       int   `json:"limit"`
}

// PageResponse writes a paginated list under itemsKey
func PageResponse(c *gin.Context, itemsKey string, items interface{}, page Page) {
	c.JSON(http.StatusOK, gin.H{
		itemsKey:      items,
		"totalItems":  page.TotalItems,
		"totalPages":  page.TotalPages,
		"currentPage": page.CurrentPage,
		"limit":       page.Limit,
	})
}

// ErrorResponse returns an error JSON response
func ErrorResponse(c *gin.Context, status int, message string, err error) {
	if err != nil {
		_ = c.Error(err)
	}
	c.JSON(status, ErrorBody{
		Message: message,
		Error: &ErrorInfo{
			Code:    getErrorCode(status),
			Message: message,
		},
	})
}

// ValidationErrorResponse returns 400 with field-level messages.
// The top-level message is the first field message.
func ValidationErrorResponse(c *gin.Context, fields []FieldError) {
	message := "validation failed"
	if len(fields) > 0 {
		message = fields[0].Message
	}
	c.JSON(http.StatusBadRequest, ErrorBody{
		Message: message,
		Error: &ErrorInfo{
			Code:    getErrorCode(http.StatusBadRequest),
			Message: message,
		},
		Errors: fields,
	})
}

// getErrorCode generates error code from HTTP status
func getErrorCode(status int) string {
	switch status {
	case 400:
		return "BAD_REQUEST"
	case 401:
		return "UNAUTHORIZED"
	case 404:
		return "NOT_FOUND"
	case 429:
		return "RATE_LIMITED"
	case 500:
		return "INTERNAL_SERVER_ERROR"
	case 502:
		return "BAD_GATEWAY"
	default:
		return "ERROR"
	}
}
