package models

import (
	"fmt"
	"strings"
	"time"
)

// UserRole defines allowed roles in the system
type UserRole string

const (
	RoleUser  UserRole = "user"
	RoleOwner UserRole = "owner"
	RoleAdmin UserRole = "admin"
)

// ParseRole validates a role string. "customer" is accepted as an alias of user.
func ParseRole(s string) (UserRole, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "user", "customer":
		return RoleUser, nil
	case "owner":
		return RoleOwner, nil
	case "admin":
		return RoleAdmin, nil
	}
	return "", fmt.Errorf("invalid role %q: must be user, owner or admin", s)
}

// Role request states stored on User.RoleRequest
const (
	RoleRequestPending  = "pending"
	RoleRequestRejected = "rejected"
)

type User struct {
	ID                    uint          `json:"id" gorm:"primaryKey"`
	Email                 string        `json:"email" gorm:"uniqueIndex;not null"`
	PasswordHash          string        `json:"-" gorm:"not null"`
	FirstName             string        `json:"first_name"`
	LastName              string        `json:"last_name"`
	PhoneNumber           string        `json:"phone_number"`
	Street                string        `json:"street"`
	City                  string        `json:"city"`
	PostalCode            string        `json:"postal_code"`
	TermsAccepted         bool          `json:"terms_accepted" gorm:"default:false"`
	MarketingConsent      bool          `json:"marketing_consent" gorm:"default:false"`
	DataProcessingConsent bool          `json:"data_processing_consent" gorm:"default:false"`
	Role                  UserRole      `json:"role" gorm:"not null;default:'user'"`
	RoleRequest           *string       `json:"role_request"`
	Addresses             []UserAddress `json:"additional_addresses" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	CreatedAt             time.Time     `json:"created_at"`
	UpdatedAt             time.Time     `json:"updated_at"`
}

// UserAddress is an additional named delivery address ("Praca", "Dom", ...)
type UserAddress struct {
	ID     uint   `json:"id" gorm:"primaryKey"`
	UserID uint   `json:"user_id" gorm:"not null;index"`
	Name   string `json:"name"`
	City   string `json:"city"`
	Street string `json:"street"`
	Number string `json:"number"`
}
