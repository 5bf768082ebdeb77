package services

import (
	"context"
	"testing"

	"food-ordering-api/apperror"
	"food-ordering-api/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateOrderSnapshotsProductNames(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	order, err := f.orders.Create(ctx, f.customer, CreateOrderInput{
		RestaurantID:    f.restaurant.ID,
		TotalAmount:     30,
		DeliveryAddress: "Krótka 1, Kraków",
		Items:           []OrderItemInput{{ProductID: f.pizza.ID, Quantity: 1, Price: 30, Name: "whatever the client sent"}},
	})
	require.NoError(t, err)

	assert.Equal(t, models.StatusConfirmed, order.Status)
	assert.Equal(t, f.customer.ID, order.UserID)
	assert.Equal(t, "Pizzeria Roma", order.RestaurantName)
	assert.Equal(t, "Długa 5, Kraków", order.RestaurantAddress)
	require.Len(t, order.Items, 1)
	assert.Equal(t, "Margherita", order.Items[0].Name)
	assert.Equal(t, 30.0, order.Items[0].Price)

	var history []models.OrderStatusHistory
	require.NoError(t, f.db.Where("order_id = ?", order.ID).Find(&history).Error)
	require.Len(t, history, 1)
	assert.Equal(t, models.StatusConfirmed, history[0].ToStatus)
	assert.Equal(t, f.customer.ID, history[0].ChangedBy)
}

func TestCreateOrderUnknownRestaurant(t *testing.T) {
	f := newFixture(t)

	_, err := f.orders.Create(context.Background(), f.customer, CreateOrderInput{
		RestaurantID: 9999,
		Items:        []OrderItemInput{{ProductID: f.pizza.ID, Quantity: 1, Price: 30}},
	})
	assert.True(t, apperror.Is(err, apperror.NotFound))
}

func TestCreateOrderUnknownProductPersistsNothing(t *testing.T) {
	f := newFixture(t)

	_, err := f.orders.Create(context.Background(), f.customer, CreateOrderInput{
		RestaurantID: f.restaurant.ID,
		Items: []OrderItemInput{
			{ProductID: f.pizza.ID, Quantity: 1, Price: 30},
			{ProductID: 9999, Quantity: 1, Price: 1},
		},
	})
	require.True(t, apperror.Is(err, apperror.NotFound))

	var orders, items int64
	f.db.Model(&models.Order{}).Count(&orders)
	f.db.Model(&models.OrderItem{}).Count(&items)
	assert.Zero(t, orders)
	assert.Zero(t, items)
}

func TestOwnerMayDriveAnyStatus(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	order := f.placeOrder(t, f.customer)

	for _, status := range []models.OrderStatus{
		models.StatusPreparing, models.StatusDelivery, models.StatusDelivered, models.StatusConfirmed,
	} {
		updated, err := f.orders.Transition(ctx, order.ID, f.owner, status)
		require.NoError(t, err)
		assert.Equal(t, status, updated.Status)
	}

	var history []models.OrderStatusHistory
	require.NoError(t, f.db.Where("order_id = ?", order.ID).Order("id").Find(&history).Error)
	require.Len(t, history, 5)
	assert.Equal(t, models.StatusDelivered, history[4].FromStatus)
	assert.Equal(t, models.StatusConfirmed, history[4].ToStatus)
	assert.Equal(t, f.owner.ID, history[4].ChangedBy)
}

func TestOwnerOfAnotherRestaurantForbidden(t *testing.T) {
	f := newFixture(t)
	order := f.placeOrder(t, f.customer)
	stranger := createUser(t, f.db, models.RoleOwner)

	_, err := f.orders.Transition(context.Background(), order.ID, stranger, models.StatusPreparing)
	require.True(t, apperror.Is(err, apperror.Forbidden))
	assert.Equal(t, "Nie możesz zmieniać zamówień tej restauracji", err.Error())
}

func TestCustomerTransitions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	order := f.placeOrder(t, f.customer)

	_, err := f.orders.Transition(ctx, order.ID, f.customer, models.StatusPreparing)
	require.True(t, apperror.Is(err, apperror.Forbidden))
	assert.Equal(t, "Klient może tylko potwierdzić odbiór", err.Error())

	updated, err := f.orders.Transition(ctx, order.ID, f.customer, models.StatusDelivered)
	require.NoError(t, err)
	assert.Equal(t, models.StatusDelivered, updated.Status)

	updated, err = f.orders.Transition(ctx, order.ID, f.customer, models.StatusCompleted)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, updated.Status)
}

func TestCustomerCannotTouchSomeoneElsesOrder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	order := f.placeOrder(t, f.customer)

	_, err := f.orders.Transition(ctx, order.ID, f.other, models.StatusCompleted)
	require.True(t, apperror.Is(err, apperror.Forbidden))
	assert.Equal(t, "Nie możesz zmieniać cudzego zamówienia", err.Error())

	own := f.placeOrder(t, f.other)
	_, err = f.orders.Transition(ctx, own.ID, f.other, models.StatusPreparing)
	assert.True(t, apperror.Is(err, apperror.Forbidden))

	var stored models.Order
	require.NoError(t, f.db.First(&stored, order.ID).Error)
	assert.Equal(t, models.StatusConfirmed, stored.Status)
}

func TestAdminCannotTransition(t *testing.T) {
	f := newFixture(t)
	order := f.placeOrder(t, f.customer)

	_, err := f.orders.Transition(context.Background(), order.ID, f.admin, models.StatusDelivered)
	require.True(t, apperror.Is(err, apperror.Forbidden))
	assert.Equal(t, "Brak uprawnień", err.Error())
}

func TestTransitionMissingOrder(t *testing.T) {
	f := newFixture(t)
	_, err := f.orders.Transition(context.Background(), 4242, f.owner, models.StatusPreparing)
	assert.True(t, apperror.Is(err, apperror.NotFound))
}

func TestListForCustomerNewestFirst(t *testing.T) {
	f := newFixture(t)
	first := f.placeOrder(t, f.customer)
	second := f.placeOrder(t, f.customer)
	f.placeOrder(t, f.other)

	orders, err := f.orders.ListForCustomer(context.Background(), f.customer)
	require.NoError(t, err)
	require.Len(t, orders, 2)
	assert.Equal(t, second.ID, orders[0].ID)
	assert.Equal(t, first.ID, orders[1].ID)
	assert.Len(t, orders[0].Items, 2)
	assert.Equal(t, "Pizzeria Roma", orders[0].RestaurantName)
}

func TestActiveOrder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	active, err := f.orders.Active(ctx, f.customer)
	require.NoError(t, err)
	assert.Nil(t, active)

	older := f.placeOrder(t, f.customer)
	newer := f.placeOrder(t, f.customer)

	active, err = f.orders.Active(ctx, f.customer)
	require.NoError(t, err)
	require.NotNil(t, active)
	assert.Equal(t, newer.ID, active.ID)

	f.setStatus(t, newer.ID, models.StatusDelivered)
	active, err = f.orders.Active(ctx, f.customer)
	require.NoError(t, err)
	require.NotNil(t, active)
	assert.Equal(t, older.ID, active.ID)

	f.setStatus(t, older.ID, models.StatusCancelled)
	active, err = f.orders.Active(ctx, f.customer)
	require.NoError(t, err)
	assert.Nil(t, active)
}

func TestListForOwner(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	order := f.placeOrder(t, f.customer)

	orders, err := f.orders.ListForOwner(ctx, f.owner)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, order.ID, orders[0].ID)
	assert.Equal(t, "Pizzeria Roma", orders[0].RestaurantName)

	orders, err = f.orders.ListForOwner(ctx, f.customer)
	require.NoError(t, err)
	assert.Empty(t, orders)

	lonely := createUser(t, f.db, models.RoleOwner)
	orders, err = f.orders.ListForOwner(ctx, lonely)
	require.NoError(t, err)
	assert.Empty(t, orders)
}

func TestReorderCopiesOriginalSnapshot(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	original := f.placeOrder(t, f.customer)
	f.setStatus(t, original.ID, models.StatusCompleted)

	require.NoError(t, f.db.Model(f.pizza).Updates(map[string]any{"name": "Margherita XL", "price": 45}).Error)

	copied, err := f.orders.Reorder(ctx, original.ID, f.customer)
	require.NoError(t, err)
	assert.NotEqual(t, original.ID, copied.ID)
	assert.Equal(t, models.StatusConfirmed, copied.Status)
	assert.Equal(t, original.DeliveryAddress, copied.DeliveryAddress)
	assert.Equal(t, original.PaymentMethod, copied.PaymentMethod)
	assert.Equal(t, original.TotalAmount, copied.TotalAmount)
	require.Len(t, copied.Items, 2)
	assert.Equal(t, "Margherita", copied.Items[0].Name)
	assert.Equal(t, 30.0, copied.Items[0].Price)
}

func TestReorderScopedToCustomer(t *testing.T) {
	f := newFixture(t)
	order := f.placeOrder(t, f.customer)

	_, err := f.orders.Reorder(context.Background(), order.ID, f.other)
	require.True(t, apperror.Is(err, apperror.NotFound))
	assert.Equal(t, "Nie znaleziono zamówienia", err.Error())
}

func TestGetOrderVisibility(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	order := f.placeOrder(t, f.customer)

	for _, actor := range []*models.User{f.customer, f.owner, f.admin} {
		got, err := f.orders.Get(ctx, order.ID, actor)
		require.NoError(t, err)
		assert.Len(t, got.StatusHistory, 1)
	}

	_, err := f.orders.Get(ctx, order.ID, f.other)
	assert.True(t, apperror.Is(err, apperror.Forbidden))
}

func TestListAllSummary(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.placeOrder(t, f.customer)
	f.placeOrder(t, f.other)
	f.setStatus(t, a.ID, models.StatusDelivered)

	summary, err := f.orders.ListAll(ctx, OrderFilter{})
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Count)
	assert.Equal(t, 1, summary.Active)
	assert.Equal(t, 1, summary.ByStatus[models.StatusDelivered])
	assert.Equal(t, 1, summary.ByStatus[models.StatusConfirmed])
	assert.Equal(t, 72.0, summary.TotalRevenue)

	summary, err = f.orders.ListAll(ctx, OrderFilter{UserID: f.other.ID})
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Count)
}

func TestUnknownStatusCheckedAfterAccess(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	order := f.placeOrder(t, f.customer)

	_, err := f.orders.Transition(ctx, 4242, f.owner, models.OrderStatus("teleported"))
	assert.True(t, apperror.Is(err, apperror.NotFound))

	_, err = f.orders.Transition(ctx, order.ID, f.other, models.OrderStatus("teleported"))
	assert.True(t, apperror.Is(err, apperror.Forbidden))

	_, err = f.orders.Transition(ctx, order.ID, f.owner, models.OrderStatus("teleported"))
	assert.True(t, apperror.Is(err, apperror.Validation))

	updated, err := f.orders.Transition(ctx, order.ID, f.owner, models.OrderStatus(" Preparing "))
	require.NoError(t, err)
	assert.Equal(t, models.StatusPreparing, updated.Status)
}
