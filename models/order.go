package models

import (
	"fmt"
	"strings"
	"time"
)

// OrderStatus represents all possible states of an order
type OrderStatus string

const (
	StatusConfirmed OrderStatus = "confirmed"
	StatusPreparing OrderStatus = "preparing"
	StatusDelivery  OrderStatus = "delivery"
	StatusArrived   OrderStatus = "arrived"
	StatusDelivered OrderStatus = "delivered"
	StatusCompleted OrderStatus = "completed"
	StatusCancelled OrderStatus = "cancelled"
)

// AllOrderStatuses lists every status in pipeline order
var AllOrderStatuses = []OrderStatus{
	StatusConfirmed,
	StatusPreparing,
	StatusDelivery,
	StatusArrived,
	StatusDelivered,
	StatusCompleted,
	StatusCancelled,
}

func ParseOrderStatus(s string) (OrderStatus, error) {
	v := OrderStatus(strings.ToLower(strings.TrimSpace(s)))
	for _, st := range AllOrderStatuses {
		if st == v {
			return st, nil
		}
	}
	return "", fmt.Errorf("invalid order status %q", s)
}

type Order struct {
	ID               uint                 `json:"id" gorm:"primaryKey"`
	UserID           uint                 `json:"user_id" gorm:"not null;index"`
	User             *User                `json:"-" gorm:"foreignKey:UserID"`
	RestaurantID     uint                 `json:"restaurant_id" gorm:"not null;index"`
	Restaurant       *Restaurant          `json:"-" gorm:"foreignKey:RestaurantID"`
	Status           OrderStatus          `json:"status" gorm:"not null;default:'confirmed';index"`
	TotalAmount      float64              `json:"total_amount"`
	DeliveryAddress  string               `json:"delivery_address"`
	DeliveryTimeType string               `json:"delivery_time_type"`
	PaymentMethod    string               `json:"payment_method"`
	DocumentType     string               `json:"document_type"`
	NIP              *string              `json:"nip" gorm:"column:nip"`
	Remarks          *string              `json:"remarks"`
	Items            []OrderItem          `json:"items" gorm:"foreignKey:OrderID"`
	StatusHistory    []OrderStatusHistory `json:"status_history,omitempty" gorm:"foreignKey:OrderID"`
	CreatedAt        time.Time            `json:"created_at" gorm:"index"`
	UpdatedAt        time.Time            `json:"-"`
}

type OrderItem struct {
	ID        uint    `json:"id" gorm:"primaryKey"`
	OrderID   uint    `json:"order_id" gorm:"not null;index"`
	ProductID uint    `json:"product_id"`
	Quantity  int     `json:"quantity" gorm:"not null"`
	Price     float64 `json:"price" gorm:"not null"` // snapshot price at time of order
	Name      string  `json:"name"`                  // snapshot name
}

// OrderStatusHistory tracks every status change
type OrderStatusHistory struct {
	ID         uint        `json:"id" gorm:"primaryKey"`
	OrderID    uint        `json:"order_id" gorm:"not null;index"`
	FromStatus OrderStatus `json:"from_status"`
	ToStatus   OrderStatus `json:"to_status" gorm:"not null"`
	ChangedBy  uint        `json:"changed_by"` // user ID who triggered the transition
	Note       string      `json:"note"`
	CreatedAt  time.Time   `json:"created_at"`
}
