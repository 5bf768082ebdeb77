package services

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"food-ordering-api/auth"
	"food-ordering-api/config"
	"food-ordering-api/models"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fixture struct {
	db          *gorm.DB
	orders      *OrderService
	reviews     *ReviewService
	users       *UserService
	restaurants *RestaurantService
	products    *ProductService

	admin      *models.User
	owner      *models.User
	customer   *models.User
	other      *models.User
	restaurant *models.Restaurant
	pizza      *models.Product
	cola       *models.Product
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := config.OpenDatabase("sqlite", filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	return db
}

var userSeq int

func createUser(t *testing.T, db *gorm.DB, role models.UserRole) *models.User {
	t.Helper()
	userSeq++
	u := &models.User{
		Email:        fmt.Sprintf("%s%d@example.com", role, userSeq),
		PasswordHash: "x",
		FirstName:    "Test",
		Role:         role,
	}
	require.NoError(t, db.Create(u).Error)
	return u
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := newTestDB(t)
	f := &fixture{
		db:          db,
		orders:      NewOrderService(db),
		reviews:     NewReviewService(db),
		users:       NewUserService(db, auth.NewIssuer("test-secret", 0)),
		restaurants: NewRestaurantService(db, nil),
		products:    NewProductService(db),
	}
	f.admin = createUser(t, db, models.RoleAdmin)
	f.owner = createUser(t, db, models.RoleOwner)
	f.customer = createUser(t, db, models.RoleUser)
	f.other = createUser(t, db, models.RoleUser)

	ownerID := f.owner.ID
	f.restaurant = &models.Restaurant{
		Name:     "Pizzeria Roma",
		Cuisines: "Włoska, Pizza",
		City:     "Kraków",
		Street:   "Długa",
		Number:   "5",
		Status:   models.RestaurantApproved,
		OwnerID:  &ownerID,
	}
	require.NoError(t, db.Create(f.restaurant).Error)

	f.pizza = &models.Product{RestaurantID: f.restaurant.ID, Name: "Margherita", Price: 30, Category: "Pizza"}
	f.cola = &models.Product{RestaurantID: f.restaurant.ID, Name: "Cola", Price: 6, Category: "Napoje"}
	require.NoError(t, db.Create(f.pizza).Error)
	require.NoError(t, db.Create(f.cola).Error)
	return f
}

func (f *fixture) placeOrder(t *testing.T, customer *models.User) *OrderView {
	t.Helper()
	order, err := f.orders.Create(context.Background(), customer, CreateOrderInput{
		RestaurantID:    f.restaurant.ID,
		TotalAmount:     72,
		DeliveryAddress: "Krótka 1, Kraków",
		PaymentMethod:   "card",
		Items: []OrderItemInput{
			{ProductID: f.pizza.ID, Quantity: 2, Price: 30},
			{ProductID: f.cola.ID, Quantity: 2, Price: 6},
		},
	})
	require.NoError(t, err)
	return order
}

// setStatus moves an order to the given status directly, bypassing authorization
func (f *fixture) setStatus(t *testing.T, orderID uint, status models.OrderStatus) {
	t.Helper()
	require.NoError(t, f.db.Model(&models.Order{}).Where("id = ?", orderID).Update("status", status).Error)
}
