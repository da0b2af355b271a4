package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type OrderStatus string

const (
	OrderPending   OrderStatus = "pending"
	OrderConfirmed OrderStatus = "confirmed"
	OrderCancelled OrderStatus = "cancelled"
)

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderPending, OrderConfirmed, OrderCancelled:
		return true
	}
	return false
}

// Order is a dining order placed against persisted food items.
type Order struct {
	ID           uuid.UUID   `gorm:"type:uuid;primaryKey" json:"id"`
	CustomerName string      `gorm:"size:255;not null" json:"customer_name"`
	Status       OrderStatus `gorm:"size:20;not null;default:pending;index" json:"status"`
	Items        []OrderItem `json:"items"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
}

// OrderItem is one line of an order.
type OrderItem struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	OrderID    uuid.UUID `gorm:"type:uuid;not null;index" json:"order_id"`
	Order      *Order    `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	FoodItemID uint      `gorm:"not null;index" json:"food_item_id"`
	FoodItem   *FoodItem `gorm:"constraint:OnDelete:RESTRICT" json:"food_item,omitempty"`
	Quantity   int       `gorm:"not null;default:1" json:"quantity"`
	UnitPrice  float64   `gorm:"not null;default:0" json:"unit_price"`
}

func (o *Order) BeforeCreate(tx *gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	if o.Status == "" {
		o.Status = OrderPending
	}
	return nil
}

// Total returns the order price.
func (o *Order) Total() float64 {
	var total float64
	for _, item := range o.Items {
		total += float64(item.Quantity) * item.UnitPrice
	}
	return round2(total)
}
