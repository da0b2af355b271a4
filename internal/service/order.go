package service

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pageza/dininghall/backend/internal/model"
)

// OrderItemInput is one requested line of a new order.
type OrderItemInput struct {
	FoodItemID uint    `json:"food_item_id" binding:"required"`
	Quantity   int     `json:"quantity" binding:"required,min=1"`
	UnitPrice  float64 `json:"unit_price" binding:"min=0"`
}

type CreateOrderInput struct {
	CustomerName string           `json:"customer_name" binding:"required"`
	Items        []OrderItemInput `json:"items" binding:"required,min=1,dive"`
}

// OrderDetails is an order with its price total and database-side nutrition sum.
type OrderDetails struct {
	model.Order
	Total     float64               `json:"total"`
	Nutrition model.NutritionTotals `json:"nutrition"`
}

// OrderService manages orders placed against stored food items.
type OrderService struct {
	db *gorm.DB
}

var _ IOrderService = (*OrderService)(nil)

func NewOrderService(db *gorm.DB) *OrderService {
	return &OrderService{db: db}
}

// List returns orders newest first, optionally filtered by status.
func (s *OrderService) List(ctx context.Context, status model.OrderStatus) ([]model.Order, error) {
	q := s.db.WithContext(ctx).Preload("Items")
	if status != "" {
		if !status.Valid() {
			return nil, invalid("unknown status %q", status)
		}
		q = q.Where("status = ?", status)
	}
	var orders []model.Order
	if err := q.Order("created_at DESC").Find(&orders).Error; err != nil {
		return nil, translate(err, "list orders")
	}
	return orders, nil
}

func (s *OrderService) Get(ctx context.Context, id uuid.UUID) (*OrderDetails, error) {
	order, err := s.find(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	totals, err := s.NutritionTotals(ctx, id)
	if err != nil {
		return nil, err
	}
	return &OrderDetails{Order: *order, Total: order.Total(), Nutrition: totals}, nil
}

// Create validates the request and stores the order as pending.
func (s *OrderService) Create(ctx context.Context, in CreateOrderInput) (*model.Order, error) {
	name := strings.TrimSpace(in.CustomerName)
	if name == "" {
		return nil, invalid("customer name is required")
	}
	if len(in.Items) == 0 {
		return nil, invalid("an order needs at least one item")
	}

	order := &model.Order{CustomerName: name, Status: model.OrderPending}
	ids := make(map[uint]bool)
	for _, it := range in.Items {
		if it.Quantity < 1 {
			return nil, invalid("quantity must be at least 1")
		}
		if it.UnitPrice < 0 {
			return nil, invalid("unit price must not be negative")
		}
		ids[it.FoodItemID] = true
		order.Items = append(order.Items, model.OrderItem{
			FoodItemID: it.FoodItemID,
			Quantity:   it.Quantity,
			UnitPrice:  it.UnitPrice,
		})
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		keys := make([]uint, 0, len(ids))
		for id := range ids {
			keys = append(keys, id)
		}
		var found int64
		if err := tx.Model(&model.FoodItem{}).Where("id IN ?", keys).Count(&found).Error; err != nil {
			return err
		}
		if int(found) != len(keys) {
			return invalid("unknown food item in order")
		}
		return tx.Create(order).Error
	})
	if err != nil {
		return nil, translate(err, "create order")
	}
	return order, nil
}

// Confirm moves a pending order to confirmed.
func (s *OrderService) Confirm(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	return s.transition(ctx, id, model.OrderConfirmed)
}

// Cancel moves a pending order to cancelled.
func (s *OrderService) Cancel(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	return s.transition(ctx, id, model.OrderCancelled)
}

func (s *OrderService) transition(ctx context.Context, id uuid.UUID, to model.OrderStatus) (*model.Order, error) {
	var order *model.Order
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.Order{}).
			Where("id = ? AND status = ?", id, model.OrderPending).
			Update("status", to)
		if res.Error != nil {
			return res.Error
		}
		current, err := s.find(ctx, tx, id)
		if err != nil {
			return err
		}
		if res.RowsAffected == 0 {
			return invalidTransition(current.Status, to)
		}
		order = current
		return nil
	})
	if err != nil {
		return nil, translate(err, "update order")
	}
	return order, nil
}

func invalidTransition(from, to model.OrderStatus) error {
	return &TransitionError{From: from, To: to}
}

// TransitionError reports a status change that is not allowed.
type TransitionError struct {
	From, To model.OrderStatus
}

func (e *TransitionError) Error() string {
	return "cannot move order from " + string(e.From) + " to " + string(e.To)
}

func (e *TransitionError) Unwrap() error { return ErrConflict }

// Delete removes an order and its items.
func (s *OrderService) Delete(ctx context.Context, id uuid.UUID) error {
	res := s.db.WithContext(ctx).Select("Items").Delete(&model.Order{ID: id})
	if res.Error != nil {
		return translate(res.Error, "delete order")
	}
	if res.RowsAffected == 0 {
		return translate(gorm.ErrRecordNotFound, "delete order")
	}
	return nil
}

// NutritionTotals sums each nutrient times quantity over the order's lines.
func (s *OrderService) NutritionTotals(ctx context.Context, id uuid.UUID) (model.NutritionTotals, error) {
	var totals model.NutritionTotals
	err := s.db.WithContext(ctx).
		Table("order_items AS oi").
		Select(nutritionSelect("oi.quantity")).
		Joins("JOIN food_items f ON f.id = oi.food_item_id").
		Where("oi.order_id = ?", id).
		Scan(&totals).Error
	if err != nil {
		return totals, translate(err, "order nutrition")
	}
	return roundTotals(totals), nil
}

func (s *OrderService) find(ctx context.Context, db *gorm.DB, id uuid.UUID) (*model.Order, error) {
	var order model.Order
	if err := db.WithContext(ctx).Preload("Items.FoodItem").First(&order, "id = ?", id).Error; err != nil {
		return nil, translate(err, "get order")
	}
	return &order, nil
}
