package api

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/pageza/dininghall/backend/internal/model"
	"github.com/pageza/dininghall/backend/internal/service"
)

type OrderHandler struct {
	orders service.IOrderService
}

func NewOrderHandler(orders service.IOrderService) *OrderHandler {
	return &OrderHandler{orders: orders}
}

func (h *OrderHandler) RegisterRoutes(router *gin.RouterGroup) {
	orders := router.Group("/orders")
	{
		orders.GET("", h.ListOrders)
		orders.POST("", h.CreateOrder)
		orders.GET("/:id", h.GetOrder)
		orders.GET("/:id/nutrition", h.GetOrderNutrition)
		orders.POST("/:id/confirm", h.ConfirmOrder)
		orders.POST("/:id/cancel", h.CancelOrder)
		orders.DELETE("/:id", h.DeleteOrder)
	}
}

func (h *OrderHandler) ListOrders(c *gin.Context) {
	orders, err := h.orders.List(c.Request.Context(), model.OrderStatus(c.Query("status")))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": orders})
}

func (h *OrderHandler) CreateOrder(c *gin.Context) {
	var in service.CreateOrderInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, err)
		return
	}
	order, err := h.orders.Create(c.Request.Context(), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"order": order})
}

func (h *OrderHandler) GetOrder(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	details, err := h.orders.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, details)
}

func (h *OrderHandler) GetOrderNutrition(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	// resolve the order first so unknown ids are 404 rather than zero totals
	if _, err := h.orders.Get(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	totals, err := h.orders.NutritionTotals(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, totals)
}

func (h *OrderHandler) ConfirmOrder(c *gin.Context) {
	h.transition(c, h.orders.Confirm)
}

func (h *OrderHandler) CancelOrder(c *gin.Context) {
	h.transition(c, h.orders.Cancel)
}

func (h *OrderHandler) transition(c *gin.Context, apply func(ctx context.Context, id uuid.UUID) (*model.Order, error)) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	order, err := apply(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"order": order})
}

func (h *OrderHandler) DeleteOrder(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	if err := h.orders.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
