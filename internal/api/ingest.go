package api

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pageza/dininghall/backend/internal/service"
)

type IngestHandler struct {
	ingest service.IIngestService
}

func NewIngestHandler(ingest service.IIngestService) *IngestHandler {
	return &IngestHandler{ingest: ingest}
}

func (h *IngestHandler) RegisterRoutes(router *gin.RouterGroup) {
	ingest := router.Group("/ingest")
	{
		ingest.POST("/load", h.Load)
	}
}

type loadRequest struct {
	Key string `json:"key"`
}

// Load loads a stored snapshot. An empty body or key selects the latest.
func (h *IngestHandler) Load(c *gin.Context) {
	var req loadRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		badRequest(c, err)
		return
	}
	result, err := h.ingest.Load(c.Request.Context(), req.Key)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
