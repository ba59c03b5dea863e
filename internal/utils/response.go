// internal/utils/response.go
package utils

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"printer-bridge/internal/command"
	"printer-bridge/internal/document"
	"printer-bridge/internal/fault"
)

// APIResponse represents standard API response structure
type APIResponse struct {
	Success   bool        `json:"success"`
	Message   string      `json:"message"`
	Data      interface{} `json:"data,omitempty"`
	Error     *APIError   `json:"error,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
	RequestID string      `json:"request_id,omitempty"`
}

// APIError represents error information
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// SuccessResponse sends a successful response
func SuccessResponse(c *gin.Context, statusCode int, message string, data interface{}) {
	response := APIResponse{
		Success:   true,
		Message:   message,
		Data:      data,
		Timestamp: time.Now(),
		RequestID: getRequestID(c),
	}

	c.JSON(statusCode, response)
}

// ErrorResponse sends an error response
func ErrorResponse(c *gin.Context, statusCode int, message string, err error) {
	apiError := &APIError{
		Code:    getErrorCode(statusCode),
		Message: message,
	}

	if err != nil {
		apiError.Details = err.Error()
	}

	response := APIResponse{
		Success:   false,
		Message:   message,
		Error:     apiError,
		Timestamp: time.Now(),
		RequestID: getRequestID(c),
	}

	c.JSON(statusCode, response)
}

// ValidationErrorResponse sends validation error response
func ValidationErrorResponse(c *gin.Context, fieldErrors map[string]string) {
	apiError := &APIError{
		Code:    "VALIDATION_ERROR",
		Message: "Request validation failed",
	}

	response := APIResponse{
		Success:   false,
		Message:   "Validation failed",
		Error:     apiError,
		Data:      gin.H{"validation_errors": fieldErrors},
		Timestamp: time.Now(),
		RequestID: getRequestID(c),
	}

	c.JSON(http.StatusBadRequest, response)
}

// FaultResponse classifies err and sends it with its operation scoped code.
// Command validation failures are reported as INVALID_COMMAND.
func FaultResponse(c *gin.Context, op fault.Operation, err error) {
	if isCommandError(err) {
		response := APIResponse{
			Success: false,
			Message: "Invalid command",
			Error: &APIError{
				Code:    "INVALID_COMMAND",
				Message: "Invalid command",
				Details: err.Error(),
			},
			Timestamp: time.Now(),
			RequestID: getRequestID(c),
		}
		c.JSON(http.StatusBadRequest, response)
		return
	}

	f := fault.Classify(err)
	response := APIResponse{
		Success: false,
		Message: f.Error(),
		Error: &APIError{
			Code:    fault.Code(op, f),
			Message: string(f.Kind),
			Details: string(f.Reason),
		},
		Timestamp: time.Now(),
		RequestID: getRequestID(c),
	}

	c.JSON(FaultStatus(f), response)
}

// FaultStatus maps a fault to its HTTP status
func FaultStatus(f *fault.Fault) int {
	switch f.Kind {
	case fault.KindNoConnection, fault.KindInUse:
		return http.StatusConflict
	case fault.KindInvalidOperation, fault.KindArgumentFormatInvalid:
		return http.StatusBadRequest
	case fault.KindNotFound:
		return http.StatusNotFound
	case fault.KindCommunication, fault.KindBadResponse:
		return http.StatusBadGateway
	case fault.KindIllegalDeviceState, fault.KindUnprintable:
		return http.StatusServiceUnavailable
	case fault.KindUnsupportedModel:
		return http.StatusNotImplemented
	default:
		return http.StatusInternalServerError
	}
}

func isCommandError(err error) bool {
	return errors.Is(err, command.ErrMalformedCommand) ||
		errors.Is(err, command.ErrUnknownAction) ||
		errors.Is(err, command.ErrUnknownType) ||
		errors.Is(err, command.ErrInvalidField) ||
		errors.Is(err, document.ErrImageUnavailable)
}

// getRequestID extracts request ID from context
func getRequestID(c *gin.Context) string {
	if requestID, ok := c.Get("request_id"); ok {
		if id, ok := requestID.(string); ok {
			return id
		}
	}
	return ""
}

// getErrorCode returns error code based on HTTP status
func getErrorCode(statusCode int) string {
	switch statusCode {
	case http.StatusBadRequest:
		return "BAD_REQUEST"
	case http.StatusUnauthorized:
		return "UNAUTHORIZED"
	case http.StatusForbidden:
		return "FORBIDDEN"
	case http.StatusNotFound:
		return "NOT_FOUND"
	case http.StatusConflict:
		return "CONFLICT"
	case http.StatusTooManyRequests:
		return "RATE_LIMIT_EXCEEDED"
	case http.StatusInternalServerError:
		return "INTERNAL_SERVER_ERROR"
	case http.StatusServiceUnavailable:
		return "SERVICE_UNAVAILABLE"
	default:
		return "UNKNOWN_ERROR"
	}
}
