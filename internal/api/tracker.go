package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pageza/dininghall/backend/internal/model"
	"github.com/pageza/dininghall/backend/internal/service"
)

type TrackerHandler struct {
	tracker service.ITrackerService
}

func NewTrackerHandler(tracker service.ITrackerService) *TrackerHandler {
	return &TrackerHandler{tracker: tracker}
}

func (h *TrackerHandler) RegisterRoutes(router *gin.RouterGroup) {
	profiles := router.Group("/profiles")
	{
		profiles.GET("", h.ListProfiles)
		profiles.POST("", h.CreateProfile)
		profiles.GET("/:id", h.GetProfile)
		profiles.PUT("/:id", h.UpdateProfile)
		profiles.DELETE("/:id", h.DeleteProfile)

		profiles.GET("/:id/entries", h.ListEntries)
		profiles.POST("/:id/entries", h.AddEntry)
		profiles.DELETE("/:id/entries/:entryID", h.DeleteEntry)
		profiles.GET("/:id/totals", h.DailyTotals)
		profiles.GET("/:id/history", h.History)
	}
}

type createProfileRequest struct {
	Email         string              `json:"email" binding:"required,email"`
	FullName      string              `json:"full_name"`
	Age           int                 `json:"age" binding:"required,min=1"`
	Sex           string              `json:"sex" binding:"required"`
	HeightCM      float64             `json:"height_cm" binding:"required,gt=0"`
	WeightKG      float64             `json:"weight_kg" binding:"required,gt=0"`
	ActivityLevel model.ActivityLevel `json:"activity_level"`
}

func (h *TrackerHandler) CreateProfile(c *gin.Context) {
	var req createProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	p, err := h.tracker.CreateProfile(c.Request.Context(), &model.Profile{
		Email:         req.Email,
		FullName:      req.FullName,
		Age:           req.Age,
		Sex:           req.Sex,
		HeightCM:      req.HeightCM,
		WeightKG:      req.WeightKG,
		ActivityLevel: req.ActivityLevel,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"profile": p})
}

func (h *TrackerHandler) ListProfiles(c *gin.Context) {
	profiles, err := h.tracker.ListProfiles(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"profiles": profiles})
}

func (h *TrackerHandler) GetProfile(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	p, err := h.tracker.GetProfile(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"profile": p})
}

func (h *TrackerHandler) UpdateProfile(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var in service.ProfileUpdate
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, err)
		return
	}
	p, err := h.tracker.UpdateProfile(c.Request.Context(), id, in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"profile": p})
}

func (h *TrackerHandler) DeleteProfile(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	if err := h.tracker.DeleteProfile(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *TrackerHandler) AddEntry(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var in service.EntryInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, err)
		return
	}
	entry, err := h.tracker.AddEntry(c.Request.Context(), id, in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"entry": entry})
}

func (h *TrackerHandler) ListEntries(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	entries, err := h.tracker.ListEntries(c.Request.Context(), id, c.Query("date"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"entries": entries})
}

func (h *TrackerHandler) DeleteEntry(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	entryID, ok := uintParam(c, "entryID")
	if !ok {
		return
	}
	if err := h.tracker.DeleteEntry(c.Request.Context(), id, entryID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *TrackerHandler) DailyTotals(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	p, err := h.tracker.GetProfile(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	totals, err := h.tracker.DailyTotals(c.Request.Context(), id, c.Query("date"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"totals":    totals,
		"tdee":      p.TDEE,
		"remaining": p.TDEE - totals.Calories,
	})
}

func (h *TrackerHandler) History(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	days, err := h.tracker.History(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"days": days})
}
