package models

import (
	"fmt"
	"strings"
	"time"
)

// RestaurantStatus is the approval state of a restaurant application
type RestaurantStatus string

const (
	RestaurantPending  RestaurantStatus = "pending"
	RestaurantApproved RestaurantStatus = "approved"
	RestaurantRejected RestaurantStatus = "rejected"
)

func ParseRestaurantStatus(s string) (RestaurantStatus, error) {
	switch RestaurantStatus(strings.ToLower(strings.TrimSpace(s))) {
	case RestaurantPending:
		return RestaurantPending, nil
	case RestaurantApproved:
		return RestaurantApproved, nil
	case RestaurantRejected:
		return RestaurantRejected, nil
	}
	return "", fmt.Errorf("invalid restaurant status %q", s)
}

type Restaurant struct {
	ID              uint             `json:"id" gorm:"primaryKey"`
	Name            string           `json:"name" gorm:"not null;index"`
	Description     string           `json:"description"`
	Cuisines        string           `json:"cuisines"` // comma-separated tags
	City            string           `json:"city"`
	Street          string           `json:"street"`
	Number          string           `json:"number"`
	Latitude        *float64         `json:"latitude"`
	Longitude       *float64         `json:"longitude"`
	Status          RestaurantStatus `json:"status" gorm:"not null;default:'pending';index"`
	RejectionReason *string          `json:"rejection_reason"`
	OwnerID         *uint            `json:"owner_id" gorm:"index"`
	Owner           *User            `json:"owner,omitempty" gorm:"foreignKey:OwnerID"`
	Rating          float64          `json:"rating" gorm:"default:0"`
	Products        []Product        `json:"products" gorm:"foreignKey:RestaurantID;constraint:OnDelete:CASCADE"`
	CreatedAt       time.Time        `json:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at"`
}

// Address formats the restaurant location the way it is shown on orders
func (r *Restaurant) Address() string {
	return fmt.Sprintf("%s %s, %s", r.Street, r.Number, r.City)
}

// OwnedBy reports whether userID is the restaurant's owner
func (r *Restaurant) OwnedBy(userID uint) bool {
	return r.OwnerID != nil && *r.OwnerID == userID
}

// CuisineTags splits the comma-separated cuisines field
func (r *Restaurant) CuisineTags() []string {
	var tags []string
	for _, c := range strings.Split(r.Cuisines, ",") {
		if c = strings.TrimSpace(c); c != "" {
			tags = append(tags, c)
		}
	}
	return tags
}

type Product struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	RestaurantID uint      `json:"restaurant_id" gorm:"not null;index"`
	Name         string    `json:"name" gorm:"not null"`
	Price        float64   `json:"price" gorm:"not null"`
	Category     string    `json:"category"`
	CreatedAt    time.Time `json:"-"`
	UpdatedAt    time.Time `json:"-"`
}
