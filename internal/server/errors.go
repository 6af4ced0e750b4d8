package server

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/roach88/advsearch/internal/catalog"
	"github.com/roach88/advsearch/internal/pipeline"
)

// apiError is an error with an HTTP status. Message is shown to clients.
type apiError struct {
	Status  int
	Message string
	Err     error
}

func (e *apiError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *apiError) Unwrap() error {
	return e.Err
}

func badRequest(message string, err error) *apiError {
	return &apiError{Status: http.StatusBadRequest, Message: message, Err: err}
}

// mapError picks a status for err: pipeline input stages are the
// client's fault, a missing catalog entry is 404, the rest is 500.
func mapError(err error) *apiError {
	var apiErr *apiError
	if errors.As(err, &apiErr) {
		return apiErr
	}
	switch {
	case errors.Is(err, catalog.ErrNotFound):
		return &apiError{Status: http.StatusNotFound, Message: err.Error(), Err: err}
	}
	switch pipeline.StageOf(err) {
	case pipeline.StageMigrate, pipeline.StageDecode:
		return &apiError{Status: http.StatusBadRequest, Message: err.Error(), Err: err}
	}
	return &apiError{Status: http.StatusInternalServerError, Message: "internal error", Err: err}
}

// handleError writes {"message": ...}.
func handleError(c *gin.Context, err error) {
	apiErr := mapError(err)
	if apiErr.Status >= http.StatusInternalServerError {
		slog.Error("request failed", "path", c.Request.URL.Path, "error", err)
	}
	c.AbortWithStatusJSON(apiErr.Status, gin.H{"message": apiErr.Message})
}
