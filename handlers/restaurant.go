package handlers

import (
	"net/http"

	"food-ordering-api/middleware"
	"food-ordering-api/services"

	"github.com/gin-gonic/gin"
)

// ListRestaurants returns approved restaurants, optionally filtered by ?cuisine=
func (h *Handler) ListRestaurants(c *gin.Context) {
	restaurants, err := h.Restaurants.ListApproved(c.Request.Context(), c.Query("cuisine"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, restaurants)
}

func (h *Handler) ListCuisines(c *gin.Context) {
	cuisines, err := h.Restaurants.Cuisines(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, cuisines)
}

func (h *Handler) GetRestaurant(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	restaurant, err := h.Restaurants.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, restaurant)
}

// GetMyRestaurants returns the restaurants owned by the caller
func (h *Handler) GetMyRestaurants(c *gin.Context) {
	restaurants, err := h.Restaurants.ListMine(c.Request.Context(), middleware.CurrentUser(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, restaurants)
}

// CreateRestaurant files an application that an admin has to approve
func (h *Handler) CreateRestaurant(c *gin.Context) {
	var req services.RestaurantInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	restaurant, err := h.Restaurants.Apply(c.Request.Context(), middleware.CurrentUser(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, restaurant)
}

func (h *Handler) ListApplications(c *gin.Context) {
	restaurants, err := h.Restaurants.ListApplications(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, restaurants)
}

func (h *Handler) ListApplicationHistory(c *gin.Context) {
	restaurants, err := h.Restaurants.ListHistory(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, restaurants)
}

func (h *Handler) ListAllRestaurants(c *gin.Context) {
	restaurants, err := h.Restaurants.ListAll(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, restaurants)
}

// SetRestaurantStatus approves or rejects an application
func (h *Handler) SetRestaurantStatus(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req services.StatusInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	restaurant, err := h.Restaurants.SetStatus(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, restaurant)
}

func (h *Handler) UpdateRestaurant(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req services.RestaurantUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	restaurant, err := h.Restaurants.Update(c.Request.Context(), id, middleware.CurrentUser(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, restaurant)
}

func (h *Handler) DeleteRestaurant(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := h.Restaurants.Delete(c.Request.Context(), id, middleware.CurrentUser(c)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"detail": "Restauracja usunięta"})
}

// GetMenu returns the products of a restaurant
func (h *Handler) GetMenu(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	products, err := h.Products.List(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, products)
}

func (h *Handler) AddMenuItem(c *gin.Context) {
	var req services.ProductInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	product, err := h.Products.Create(c.Request.Context(), middleware.CurrentUser(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, product)
}

func (h *Handler) UpdateMenuItem(c *gin.Context) {
	id, ok := paramID(c, "product_id")
	if !ok {
		return
	}
	var req services.ProductUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	product, err := h.Products.Update(c.Request.Context(), middleware.CurrentUser(c), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, product)
}

func (h *Handler) DeleteMenuItem(c *gin.Context) {
	id, ok := paramID(c, "product_id")
	if !ok {
		return
	}
	if err := h.Products.Delete(c.Request.Context(), middleware.CurrentUser(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"detail": "Produkt usunięty"})
}

// ImportMenu bulk-loads products from an uploaded xlsx file (form field "file")
func (h *Handler) ImportMenu(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	header, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Brak pliku"})
		return
	}
	file, err := header.Open()
	if err != nil {
		respondError(c, err)
		return
	}
	defer file.Close()

	products, err := h.Products.ImportExcel(c.Request.Context(), middleware.CurrentUser(c), id, file)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"imported": len(products), "products": products})
}
