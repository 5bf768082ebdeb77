package models

import "time"

// Review is the single rating a customer leaves on one finished order
type Review struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	Rating       int       `json:"rating" gorm:"not null;check:rating >= 1 AND rating <= 5"`
	Comment      *string   `json:"comment"`
	UserID       uint      `json:"user_id" gorm:"not null;index"`
	RestaurantID uint      `json:"restaurant_id" gorm:"not null;index"`
	OrderID      uint      `json:"order_id" gorm:"not null;uniqueIndex"`
	CreatedAt    time.Time `json:"created_at"`
}
