package handlers

import (
	"net/http"
	"strconv"

	"food-ordering-api/models"
	"food-ordering-api/services"

	"github.com/gin-gonic/gin"
)

type RoleRequest struct {
	Role string `json:"role" binding:"required"`
}

// AdminGetAllUsers lists every account
func (h *Handler) AdminGetAllUsers(c *gin.Context) {
	users, err := h.Users.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

func (h *Handler) AdminChangeRole(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req RoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	role, err := models.ParseRole(req.Role)
	if err != nil {
		badRequest(c, err)
		return
	}
	user, err := h.Users.ChangeRole(c.Request.Context(), id, role)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *Handler) AdminDeleteUser(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := h.Users.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"detail": "Użytkownik usunięty"})
}

func (h *Handler) AdminOwnerRequests(c *gin.Context) {
	users, err := h.Users.ListOwnerRequests(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

// AdminOwnerDecision approves (?approve=true) or rejects an owner request
func (h *Handler) AdminOwnerDecision(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	approve, err := strconv.ParseBool(c.Query("approve"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Parametr approve musi być true lub false"})
		return
	}
	user, err := h.Users.DecideOwner(c.Request.Context(), id, approve)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// AdminGetAllOrders returns all orders with a per-status summary.
// Filters: ?status=, ?user_id=, ?restaurant_id=
func (h *Handler) AdminGetAllOrders(c *gin.Context) {
	var filter services.OrderFilter
	if s := c.Query("status"); s != "" {
		status, err := models.ParseOrderStatus(s)
		if err != nil {
			badRequest(c, err)
			return
		}
		filter.Status = status
	}
	if v, err := strconv.ParseUint(c.Query("user_id"), 10, 64); err == nil {
		filter.UserID = uint(v)
	}
	if v, err := strconv.ParseUint(c.Query("restaurant_id"), 10, 64); err == nil {
		filter.RestaurantID = uint(v)
	}

	summary, err := h.Orders.ListAll(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}
