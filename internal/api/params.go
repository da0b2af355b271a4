package api

import (
	"fmt"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/pageza/dininghall/backend/internal/model"
	"github.com/pageza/dininghall/backend/internal/service"
)

func uuidParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		badRequest(c, fmt.Errorf("%s must be a UUID", name))
		return uuid.Nil, false
	}
	return id, true
}

func uintParam(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		badRequest(c, fmt.Errorf("%s must be a positive integer", name))
		return 0, false
	}
	return uint(id), true
}

func intQuery(c *gin.Context, name string) (int, bool) {
	raw := c.Query(name)
	if raw == "" {
		return 0, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		badRequest(c, fmt.Errorf("%s must be a non-negative integer", name))
		return 0, false
	}
	return n, true
}

func locationParam(c *gin.Context, raw string) (model.Location, bool) {
	if raw == "" {
		return "", true
	}
	loc, err := model.ParseLocation(raw)
	if err != nil {
		respondError(c, fmt.Errorf("%w: %v", service.ErrInvalidInput, err))
		return "", false
	}
	return loc, true
}
