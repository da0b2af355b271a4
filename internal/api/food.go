package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pageza/dininghall/backend/internal/model"
	"github.com/pageza/dininghall/backend/internal/service"
)

type FoodHandler struct {
	foods service.IFoodService
}

func NewFoodHandler(foods service.IFoodService) *FoodHandler {
	return &FoodHandler{foods: foods}
}

func (h *FoodHandler) RegisterRoutes(router *gin.RouterGroup) {
	foods := router.Group("/foods")
	{
		foods.GET("", h.ListFoods)
		foods.GET("/search", h.SearchFoods)
		foods.GET("/:id", h.GetFood)
	}
	menus := router.Group("/menus")
	{
		menus.GET("/:location/dates", h.MenuDates)
		menus.GET("/:location/:date", h.GetMenu)
	}
}

func (h *FoodHandler) filter(c *gin.Context) (service.FoodFilter, bool) {
	loc, ok := locationParam(c, c.Query("location"))
	if !ok {
		return service.FoodFilter{}, false
	}
	limit, ok := intQuery(c, "limit")
	if !ok {
		return service.FoodFilter{}, false
	}
	offset, ok := intQuery(c, "offset")
	if !ok {
		return service.FoodFilter{}, false
	}
	filter := service.FoodFilter{
		Location: loc,
		Date:     c.Query("date"),
		Limit:    limit,
		Offset:   offset,
	}
	if meal := c.Query("meal_type"); meal != "" {
		filter.MealType = model.NormalizeMealType(meal)
	}
	return filter, true
}

func (h *FoodHandler) ListFoods(c *gin.Context) {
	filter, ok := h.filter(c)
	if !ok {
		return
	}
	items, err := h.foods.List(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"foods": items, "count": len(items)})
}

func (h *FoodHandler) SearchFoods(c *gin.Context) {
	filter, ok := h.filter(c)
	if !ok {
		return
	}
	items, err := h.foods.Search(c.Request.Context(), c.Query("q"), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"foods": items, "count": len(items)})
}

func (h *FoodHandler) GetFood(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	item, err := h.foods.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

func (h *FoodHandler) GetMenu(c *gin.Context) {
	loc, ok := locationParam(c, c.Param("location"))
	if !ok {
		return
	}
	view, err := h.foods.Menu(c.Request.Context(), loc, c.Param("date"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *FoodHandler) MenuDates(c *gin.Context) {
	loc, ok := locationParam(c, c.Param("location"))
	if !ok {
		return
	}
	dates, err := h.foods.Dates(c.Request.Context(), loc)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"location": loc, "dates": dates})
}
