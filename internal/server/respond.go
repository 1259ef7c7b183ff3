package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/spigell/jobstir/internal/evaluator"
	"github.com/spigell/jobstir/internal/extract"
)

type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

func respondError(c *gin.Context, status int, code, message string, details any) {
	c.AbortWithStatusJSON(status, ErrorResponse{
		Error: ErrorBody{Code: code, Message: message, Details: details},
	})
}

// classify maps an evaluator error to an HTTP status and an error body.
func classify(err error) (int, ErrorBody) {
	var verr *evaluator.ValidationError
	switch {
	case errors.As(err, &verr):
		return http.StatusBadRequest, ErrorBody{
			Code:    "validation_error",
			Message: verr.Error(),
			Details: map[string]string{"field": verr.Field, "reason": verr.Reason},
		}
	case errors.Is(err, evaluator.ErrNoCorpus):
		return http.StatusServiceUnavailable, ErrorBody{Code: "corpus_unavailable", Message: err.Error()}
	case errors.Is(err, extract.ErrUnsupportedFormat):
		return http.StatusUnsupportedMediaType, ErrorBody{Code: "unsupported_format", Message: err.Error()}
	case errors.Is(err, extract.ErrTooLarge):
		return http.StatusRequestEntityTooLarge, ErrorBody{Code: "file_too_large", Message: err.Error()}
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, ErrorBody{Code: "timeout", Message: "request timed out"}
	case errors.Is(err, context.Canceled):
		return http.StatusServiceUnavailable, ErrorBody{Code: "cancelled", Message: "request cancelled"}
	default:
		return http.StatusInternalServerError, ErrorBody{Code: "internal_error", Message: "evaluation failed"}
	}
}

func respondServiceError(c *gin.Context, err error) {
	status, body := classify(err)
	if status == http.StatusInternalServerError {
		_ = c.Error(err)
	}
	c.AbortWithStatusJSON(status, ErrorResponse{Error: body})
}

// bindJSON decodes the body into target and answers the request itself when
// that fails.
func bindJSON(c *gin.Context, target any, message string) bool {
	err := c.ShouldBindJSON(target)
	if err == nil {
		return true
	}

	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		respondError(c, http.StatusRequestEntityTooLarge, "body_too_large",
			fmt.Sprintf("request body exceeds %d bytes", tooLarge.Limit), nil)
		return false
	}

	respondError(c, http.StatusBadRequest, "invalid_json", message, nil)
	return false
}
