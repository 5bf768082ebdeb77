package statemachine

import (
	"errors"

	"food-ordering-api/models"
)

// Actor is the relation of the caller to an order, derived from their role
type Actor string

const (
	ActorOwner    Actor = "owner"    // owner of the order's restaurant
	ActorCustomer Actor = "customer" // the user who placed the order
)

// Rule defines which target states an actor may set
type Rule struct {
	Actor Actor                `json:"actor"`
	To    []models.OrderStatus `json:"to"`
	Note  string               `json:"note"`
}

// rules is the authoritative permission table. There is no from-state
// constraint: the owner may move an order to any status, including backwards.
var rules = []Rule{
	{Actor: ActorOwner, To: models.AllOrderStatuses, Note: "restaurant staff drive the kitchen and delivery pipeline"},
	{Actor: ActorCustomer, To: []models.OrderStatus{models.StatusDelivered, models.StatusCompleted}, Note: "customer may only acknowledge delivery"},
}

var (
	ErrUnknownActor   = errors.New("role may not change order status")
	ErrTargetNotAllow = errors.New("target status not allowed for actor")
)

// Build a lookup map for O(1) validation
var ruleMap = func() map[Actor]map[models.OrderStatus]bool {
	m := make(map[Actor]map[models.OrderStatus]bool)
	for _, r := range rules {
		if m[r.Actor] == nil {
			m[r.Actor] = make(map[models.OrderStatus]bool)
		}
		for _, to := range r.To {
			m[r.Actor][to] = true
		}
	}
	return m
}()

// ActorFor maps a user role onto a state machine actor
func ActorFor(role models.UserRole) (Actor, error) {
	switch role {
	case models.RoleOwner:
		return ActorOwner, nil
	case models.RoleUser:
		return ActorCustomer, nil
	}
	return "", ErrUnknownActor
}

// CanTransition checks if an actor may set the given status
func CanTransition(actor Actor, to models.OrderStatus) error {
	allowed, ok := ruleMap[actor]
	if !ok {
		return ErrUnknownActor
	}
	if !allowed[to] {
		return ErrTargetNotAllow
	}
	return nil
}

// AllowedTargets returns all statuses the actor may set
func AllowedTargets(actor Actor) []models.OrderStatus {
	var out []models.OrderStatus
	for _, st := range models.AllOrderStatuses {
		if ruleMap[actor][st] {
			out = append(out, st)
		}
	}
	return out
}

// ActiveStatuses are the states of an order still in progress
var ActiveStatuses = []models.OrderStatus{
	models.StatusConfirmed,
	models.StatusPreparing,
	models.StatusDelivery,
	models.StatusArrived,
}

// ReviewableStatuses are the terminal states in which a review may be left
var ReviewableStatuses = []models.OrderStatus{
	models.StatusDelivered,
	models.StatusCompleted,
}

func IsActive(s models.OrderStatus) bool     { return contains(ActiveStatuses, s) }
func IsReviewable(s models.OrderStatus) bool { return contains(ReviewableStatuses, s) }

func contains(list []models.OrderStatus, s models.OrderStatus) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// GetAllRules returns the permission table for documentation
func GetAllRules() []Rule {
	return rules
}
