package handlers

import (
	"net/http"
	"strconv"

	"food-ordering-api/apperror"
	"food-ordering-api/services"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// Handler exposes the services over HTTP
type Handler struct {
	Users       *services.UserService
	Restaurants *services.RestaurantService
	Products    *services.ProductService
	Orders      *services.OrderService
	Reviews     *services.ReviewService
}

// respondError writes err as {"detail": message} with the status of its kind
func respondError(c *gin.Context, err error) {
	ae := apperror.From(err)
	if ae.Kind == apperror.Internal {
		logrus.WithError(err).WithFields(logrus.Fields{
			"method":     c.Request.Method,
			"path":       c.FullPath(),
			"request_id": c.GetString("requestID"),
		}).Error("request failed")
	}
	c.JSON(apperror.HTTPStatus(ae.Kind), gin.H{"detail": ae.Message})
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
}

// paramID parses a positive numeric path parameter, answering 400 when it is not
func paramID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Nieprawidłowy identyfikator"})
		return 0, false
	}
	return uint(id), true
}
