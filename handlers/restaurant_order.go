package handlers

import (
	"net/http"

	"food-ordering-api/middleware"
	"food-ordering-api/models"

	"github.com/gin-gonic/gin"
)

type StatusUpdateRequest struct {
	NewStatus string `json:"new_status" binding:"required"`
}

// GetRestaurantOrders returns all orders of the caller's restaurant
func (h *Handler) GetRestaurantOrders(c *gin.Context) {
	orders, err := h.Orders.ListForOwner(c.Request.Context(), middleware.CurrentUser(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, orders)
}

// UpdateOrderStatus moves an order to a new status. Owners drive the
// pipeline; customers may only confirm they received the order.
func (h *Handler) UpdateOrderStatus(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req StatusUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	order, err := h.Orders.Transition(c.Request.Context(), id, middleware.CurrentUser(c), models.OrderStatus(req.NewStatus))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

// GetOwnerReviews returns the reviews of the caller's restaurant
func (h *Handler) GetOwnerReviews(c *gin.Context) {
	reviews, err := h.Reviews.ListForOwner(c.Request.Context(), middleware.CurrentUser(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, reviews)
}
