package server

import (
	"errors"
	"net/http"

	"github.com/alkime/practicum/internal/capture"
	"github.com/alkime/practicum/internal/registry"
	"github.com/alkime/practicum/internal/workflow"
	"github.com/gin-gonic/gin"
)

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Field   string `json:"field,omitempty"`
	Minimum int    `json:"minimum,omitempty"`
	Actual  int    `json:"actual,omitempty"`
}

// respondError maps domain errors onto HTTP statuses.
func (s *Server) respondError(c *gin.Context, err error) {
	resp := errorResponse{Error: err.Error()}
	status := http.StatusInternalServerError

	var validation *workflow.ValidationError

	switch {
	case errors.As(err, &validation):
		status = http.StatusUnprocessableEntity
		resp.Message = validation.UserMessage()
		resp.Field = validation.Field
		resp.Minimum = validation.Minimum
		resp.Actual = validation.Actual
	case errors.Is(err, registry.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, workflow.ErrUnknownTab),
		errors.Is(err, workflow.ErrInvalidAnswer):
		status = http.StatusBadRequest
	case errors.Is(err, workflow.ErrActionUnavailable),
		errors.Is(err, workflow.ErrFeedbackPending),
		errors.Is(err, workflow.ErrClosed),
		errors.Is(err, capture.ErrActionUnavailable),
		errors.Is(err, capture.ErrSessionClosed):
		status = http.StatusConflict
	}

	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", "path", c.FullPath(), "error", err)
		resp.Error = "internal server error"
	}

	c.AbortWithStatusJSON(status, resp)
}

func (s *Server) respondBadRequest(c *gin.Context, err error) {
	c.AbortWithStatusJSON(http.StatusBadRequest, errorResponse{
		Error: "malformed request: " + err.Error(),
	})
}
