package handlers

import (
	"net/http"

	"food-ordering-api/models"
	"food-ordering-api/statemachine"

	"github.com/gin-gonic/gin"
)

// GetRestaurantReviews lists the public reviews of a restaurant
func (h *Handler) GetRestaurantReviews(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	reviews, err := h.Reviews.ListForRestaurant(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, reviews)
}

// GetStateMachineInfo describes who may set which order status
func GetStateMachineInfo(c *gin.Context) {
	allowed := gin.H{}
	for _, actor := range []statemachine.Actor{statemachine.ActorOwner, statemachine.ActorCustomer} {
		allowed[string(actor)] = statemachine.AllowedTargets(actor)
	}
	c.JSON(http.StatusOK, gin.H{
		"statuses":            models.AllOrderStatuses,
		"rules":               statemachine.GetAllRules(),
		"allowed_targets":     allowed,
		"active_statuses":     statemachine.ActiveStatuses,
		"reviewable_statuses": statemachine.ReviewableStatuses,
	})
}

func Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "Food Ordering API",
	})
}
