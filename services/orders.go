package services

import (
	"context"
	"fmt"

	"food-ordering-api/apperror"
	"food-ordering-api/metrics"
	"food-ordering-api/models"
	"food-ordering-api/statemachine"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type OrderService struct {
	DB *gorm.DB
}

func NewOrderService(db *gorm.DB) *OrderService {
	return &OrderService{DB: db}
}

type OrderItemInput struct {
	ProductID uint    `json:"product_id" binding:"required"`
	Quantity  int     `json:"quantity" binding:"required,min=1"`
	Price     float64 `json:"price" binding:"gte=0"`
	Name      string  `json:"name"`
}

type CreateOrderInput struct {
	RestaurantID     uint             `json:"restaurant_id" binding:"required"`
	TotalAmount      float64          `json:"total_amount" binding:"gte=0"`
	DeliveryAddress  string           `json:"delivery_address" binding:"required"`
	DeliveryTimeType string           `json:"delivery_time_type"`
	PaymentMethod    string           `json:"payment_method"`
	DocumentType     string           `json:"document_type"`
	NIP              *string          `json:"nip"`
	Remarks          *string          `json:"remarks"`
	Items            []OrderItemInput `json:"items" binding:"required,min=1,dive"`
}

// OrderView is an order with the restaurant name and address denormalized for display
type OrderView struct {
	models.Order
	RestaurantName    string `json:"restaurant_name"`
	RestaurantAddress string `json:"restaurant_address"`
}

func newOrderView(o models.Order) OrderView {
	v := OrderView{Order: o, RestaurantName: "Nieznana restauracja"}
	if o.Restaurant != nil {
		v.RestaurantName = o.Restaurant.Name
		v.RestaurantAddress = o.Restaurant.Address()
	}
	if v.Items == nil {
		v.Items = []models.OrderItem{}
	}
	return v
}

func newOrderViews(orders []models.Order) []OrderView {
	out := make([]OrderView, 0, len(orders))
	for _, o := range orders {
		out = append(out, newOrderView(o))
	}
	return out
}

// Create places a new confirmed order. The restaurant and every product are
// checked before anything is written; the order, its items and the first
// history entry are committed together.
func (s *OrderService) Create(ctx context.Context, customer *models.User, in CreateOrderInput) (*OrderView, error) {
	var order models.Order
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var restaurant models.Restaurant
		if err := tx.First(&restaurant, in.RestaurantID).Error; err != nil {
			return notFoundOr(err, "Restauracja nie znaleziona")
		}

		products := make(map[uint]models.Product, len(in.Items))
		for _, item := range in.Items {
			var p models.Product
			if err := tx.First(&p, item.ProductID).Error; err != nil {
				return notFoundOr(err, fmt.Sprintf("Produkt o ID %d nie znaleziony", item.ProductID))
			}
			products[p.ID] = p
		}

		order = models.Order{
			UserID:           customer.ID,
			RestaurantID:     restaurant.ID,
			Status:           models.StatusConfirmed,
			TotalAmount:      in.TotalAmount,
			DeliveryAddress:  in.DeliveryAddress,
			DeliveryTimeType: in.DeliveryTimeType,
			PaymentMethod:    in.PaymentMethod,
			DocumentType:     in.DocumentType,
			NIP:              in.NIP,
			Remarks:          in.Remarks,
		}
		for _, item := range in.Items {
			name := item.Name
			if p, ok := products[item.ProductID]; ok {
				name = p.Name
			}
			order.Items = append(order.Items, models.OrderItem{
				ProductID: item.ProductID,
				Quantity:  item.Quantity,
				Price:     item.Price,
				Name:      name,
			})
		}
		if err := tx.Create(&order).Error; err != nil {
			return err
		}
		if err := recordHistory(tx, order.ID, "", models.StatusConfirmed, customer.ID, "Order placed by customer"); err != nil {
			return err
		}
		order.Restaurant = &restaurant
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.RecordOrderCreated("new")
	logrus.WithFields(logrus.Fields{"order_id": order.ID, "user_id": customer.ID}).Info("order created")
	v := newOrderView(order)
	return &v, nil
}

// Transition overwrites the order status after checking the actor may set it.
// Restaurant owners may set any status on their own restaurant's orders;
// customers may only acknowledge delivery of their own orders. An unknown
// status is reported only after the order and the actor's access are checked.
func (s *OrderService) Transition(ctx context.Context, orderID uint, actor *models.User, newStatus models.OrderStatus) (*OrderView, error) {
	var order models.Order
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Preload("Items").Preload("Restaurant").First(&order, orderID).Error; err != nil {
			return notFoundOr(err, "Zamówienie nie istnieje")
		}
		to, err := authorizeTransition(&order, actor, newStatus)
		if err != nil {
			return err
		}
		newStatus = to

		prev := order.Status
		if err := tx.Model(&order).Update("status", newStatus).Error; err != nil {
			return err
		}
		order.Status = newStatus
		return recordHistory(tx, order.ID, prev, newStatus, actor.ID, "")
	})
	if err != nil {
		return nil, err
	}

	metrics.RecordTransition(string(newStatus))
	logrus.WithFields(logrus.Fields{"order_id": order.ID, "status": newStatus, "actor": actor.ID}).Info("order status changed")
	v := newOrderView(order)
	return &v, nil
}

// authorizeTransition checks the actor's relation to the order first, then the
// target status, and returns the normalized status.
func authorizeTransition(order *models.Order, actor *models.User, to models.OrderStatus) (models.OrderStatus, error) {
	kind, err := statemachine.ActorFor(actor.Role)
	if err != nil {
		return "", apperror.NewForbidden("Brak uprawnień")
	}

	switch kind {
	case statemachine.ActorOwner:
		if order.Restaurant == nil || !order.Restaurant.OwnedBy(actor.ID) {
			return "", apperror.NewForbidden("Nie możesz zmieniać zamówień tej restauracji")
		}
	case statemachine.ActorCustomer:
		if order.UserID != actor.ID {
			return "", apperror.NewForbidden("Nie możesz zmieniać cudzego zamówienia")
		}
	}

	status, err := models.ParseOrderStatus(string(to))
	if err != nil {
		return "", apperror.NewValidation("Nieprawidłowy status zamówienia")
	}
	if err := statemachine.CanTransition(kind, status); err != nil {
		return "", apperror.NewForbidden("Klient może tylko potwierdzić odbiór")
	}
	return status, nil
}

func recordHistory(tx *gorm.DB, orderID uint, from, to models.OrderStatus, by uint, note string) error {
	return tx.Create(&models.OrderStatusHistory{
		OrderID:    orderID,
		FromStatus: from,
		ToStatus:   to,
		ChangedBy:  by,
		Note:       note,
	}).Error
}

// ListForCustomer returns the customer's orders, newest first
func (s *OrderService) ListForCustomer(ctx context.Context, customer *models.User) ([]OrderView, error) {
	var orders []models.Order
	err := s.DB.WithContext(ctx).
		Preload("Items").Preload("Restaurant").
		Where("user_id = ?", customer.ID).
		Order("id desc").
		Find(&orders).Error
	if err != nil {
		return nil, err
	}
	return newOrderViews(orders), nil
}

// Active returns the most recent in-progress order, or nil when there is none
func (s *OrderService) Active(ctx context.Context, customer *models.User) (*OrderView, error) {
	var orders []models.Order
	err := s.DB.WithContext(ctx).
		Preload("Items").Preload("Restaurant").
		Where("user_id = ? AND status IN ?", customer.ID, statemachine.ActiveStatuses).
		Order("id desc").
		Limit(1).
		Find(&orders).Error
	if err != nil {
		return nil, err
	}
	if len(orders) == 0 {
		return nil, nil
	}
	v := newOrderView(orders[0])
	return &v, nil
}

// ownedRestaurant returns the owner's first restaurant, or nil.
// Owners are assumed to run a single restaurant.
func ownedRestaurant(db *gorm.DB, owner *models.User) (*models.Restaurant, error) {
	var rs []models.Restaurant
	if err := db.Where("owner_id = ?", owner.ID).Order("id").Limit(1).Find(&rs).Error; err != nil {
		return nil, err
	}
	if len(rs) == 0 {
		return nil, nil
	}
	return &rs[0], nil
}

// ListForOwner returns all orders of the owner's restaurant, newest first.
// Non-owners and owners without a restaurant get an empty list.
func (s *OrderService) ListForOwner(ctx context.Context, owner *models.User) ([]OrderView, error) {
	if owner.Role != models.RoleOwner {
		return []OrderView{}, nil
	}
	db := s.DB.WithContext(ctx)
	restaurant, err := ownedRestaurant(db, owner)
	if err != nil {
		return nil, err
	}
	if restaurant == nil {
		return []OrderView{}, nil
	}

	var orders []models.Order
	err = db.Preload("Items").
		Where("restaurant_id = ?", restaurant.ID).
		Order("id desc").
		Find(&orders).Error
	if err != nil {
		return nil, err
	}
	for i := range orders {
		orders[i].Restaurant = restaurant
	}
	return newOrderViews(orders), nil
}

// Reorder clones one of the customer's orders into a new confirmed order.
// Item names and prices come from the original order, not the live catalog.
func (s *OrderService) Reorder(ctx context.Context, originalID uint, customer *models.User) (*OrderView, error) {
	var order models.Order
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var original models.Order
		err := tx.Preload("Items").Preload("Restaurant").
			Where("id = ? AND user_id = ?", originalID, customer.ID).
			First(&original).Error
		if err != nil {
			return notFoundOr(err, "Nie znaleziono zamówienia")
		}

		order = models.Order{
			UserID:           customer.ID,
			RestaurantID:     original.RestaurantID,
			Status:           models.StatusConfirmed,
			TotalAmount:      original.TotalAmount,
			DeliveryAddress:  original.DeliveryAddress,
			DeliveryTimeType: original.DeliveryTimeType,
			PaymentMethod:    original.PaymentMethod,
			DocumentType:     original.DocumentType,
			NIP:              original.NIP,
			Remarks:          original.Remarks,
		}
		for _, item := range original.Items {
			order.Items = append(order.Items, models.OrderItem{
				ProductID: item.ProductID,
				Quantity:  item.Quantity,
				Price:     item.Price,
				Name:      item.Name,
			})
		}
		if err := tx.Create(&order).Error; err != nil {
			return err
		}
		note := fmt.Sprintf("Reorder of #%d", original.ID)
		if err := recordHistory(tx, order.ID, "", models.StatusConfirmed, customer.ID, note); err != nil {
			return err
		}
		order.Restaurant = original.Restaurant
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.RecordOrderCreated("reorder")
	v := newOrderView(order)
	return &v, nil
}

// Get returns one order with its status history. Visible to the customer who
// placed it, the owner of its restaurant and admins.
func (s *OrderService) Get(ctx context.Context, orderID uint, actor *models.User) (*OrderView, error) {
	var order models.Order
	err := s.DB.WithContext(ctx).
		Preload("Items").Preload("Restaurant").
		Preload("StatusHistory", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		First(&order, orderID).Error
	if err != nil {
		return nil, notFoundOr(err, "Zamówienie nie istnieje")
	}

	allowed := actor.Role == models.RoleAdmin ||
		order.UserID == actor.ID ||
		(actor.Role == models.RoleOwner && order.Restaurant != nil && order.Restaurant.OwnedBy(actor.ID))
	if !allowed {
		return nil, apperror.NewForbidden("Brak uprawnień")
	}
	v := newOrderView(order)
	return &v, nil
}

type OrderFilter struct {
	Status       models.OrderStatus
	UserID       uint
	RestaurantID uint
}

type OrderSummary struct {
	Count        int                        `json:"count"`
	Active       int                        `json:"active"`
	ByStatus     map[models.OrderStatus]int `json:"order_summary"`
	TotalRevenue float64                    `json:"total_revenue"`
	Orders       []OrderView                `json:"orders"`
}

// ListAll is the admin view of all orders with a per-status summary.
// Revenue counts delivered and completed orders.
func (s *OrderService) ListAll(ctx context.Context, f OrderFilter) (*OrderSummary, error) {
	query := s.DB.WithContext(ctx).Preload("Items").Preload("Restaurant")
	if f.Status != "" {
		query = query.Where("status = ?", f.Status)
	}
	if f.UserID != 0 {
		query = query.Where("user_id = ?", f.UserID)
	}
	if f.RestaurantID != 0 {
		query = query.Where("restaurant_id = ?", f.RestaurantID)
	}

	var orders []models.Order
	if err := query.Order("id desc").Find(&orders).Error; err != nil {
		return nil, err
	}

	summary := &OrderSummary{
		Count:    len(orders),
		ByStatus: map[models.OrderStatus]int{},
		Orders:   newOrderViews(orders),
	}
	for _, o := range orders {
		summary.ByStatus[o.Status]++
		if statemachine.IsActive(o.Status) {
			summary.Active++
		}
		if statemachine.IsReviewable(o.Status) {
			summary.TotalRevenue += o.TotalAmount
		}
	}
	return summary, nil
}
