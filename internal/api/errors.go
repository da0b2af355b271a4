package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pageza/dininghall/backend/internal/ingest"
	"github.com/pageza/dininghall/backend/internal/service"
	"github.com/pageza/dininghall/backend/internal/tools"
)

// respondError maps service errors onto status codes. Unexpected errors are
// attached to the context for the request logger and hidden from the client.
func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, service.ErrNotFound), errors.Is(err, tools.ErrUnknownTool):
		status = http.StatusNotFound
	case errors.Is(err, service.ErrInvalidInput), errors.Is(err, tools.ErrInvalidArguments):
		status = http.StatusBadRequest
	case errors.Is(err, service.ErrConflict):
		status = http.StatusConflict
	case errors.Is(err, ingest.ErrStoreUnavailable):
		status = http.StatusServiceUnavailable
	case errors.Is(err, service.ErrModelUnavailable), errors.Is(err, service.ErrToolRounds):
		status = http.StatusBadGateway
	}

	_ = c.Error(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		msg = "internal server error"
	}
	c.AbortWithStatusJSON(status, gin.H{"error": msg})
}

func badRequest(c *gin.Context, err error) {
	_ = c.Error(err)
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}
