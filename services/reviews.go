package services

import (
	"context"
	"database/sql"
	"errors"
	"math"
	"time"

	"food-ordering-api/apperror"
	"food-ordering-api/metrics"
	"food-ordering-api/models"
	"food-ordering-api/statemachine"

	"gorm.io/gorm"
)

type ReviewService struct {
	DB *gorm.DB
}

func NewReviewService(db *gorm.DB) *ReviewService {
	return &ReviewService{DB: db}
}

type ReviewInput struct {
	Rating  int     `json:"rating" binding:"required,min=1,max=5"`
	Comment *string `json:"comment"`
}

type ReviewResult struct {
	Message       string  `json:"message"`
	AverageRating float64 `json:"average_rating"`
}

type ReviewedItem struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
}

type ReviewView struct {
	ID             uint           `json:"id"`
	Rating         int            `json:"rating"`
	Comment        *string        `json:"comment"`
	UserID         uint           `json:"user_id"`
	OrderID        uint           `json:"order_id"`
	RestaurantID   uint           `json:"restaurant_id"`
	RestaurantName string         `json:"restaurant_name"`
	CreatedAt      time.Time      `json:"created_at"`
	Items          []ReviewedItem `json:"items"`
}

// roundRating rounds to one decimal place, halves away from zero
func roundRating(avg float64) float64 {
	return math.Round(avg*10) / 10
}

// AddReview stores the reviewer's rating of a finished order and recomputes
// the restaurant rating from all of its reviews in the same transaction.
func (s *ReviewService) AddReview(ctx context.Context, orderID uint, reviewer *models.User, in ReviewInput) (*ReviewResult, error) {
	if in.Rating < 1 || in.Rating > 5 {
		return nil, apperror.NewValidation("Ocena musi być w zakresie 1-5")
	}

	var rating float64
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var order models.Order
		if err := tx.First(&order, orderID).Error; err != nil {
			return notFoundOr(err, "Zamówienie nie istnieje")
		}
		if order.UserID != reviewer.ID {
			return apperror.NewForbidden("Nie możesz oceniać cudzych zamówień")
		}
		if !statemachine.IsReviewable(order.Status) {
			return apperror.NewInvalidState("Zamówienie nie zostało jeszcze dostarczone")
		}

		var existing int64
		if err := tx.Model(&models.Review{}).Where("order_id = ?", order.ID).Count(&existing).Error; err != nil {
			return err
		}
		if existing > 0 {
			return apperror.NewConflict("To zamówienie jest już ocenione")
		}

		review := models.Review{
			Rating:       in.Rating,
			Comment:      in.Comment,
			UserID:       reviewer.ID,
			RestaurantID: order.RestaurantID,
			OrderID:      order.ID,
		}
		if err := tx.Create(&review).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return apperror.NewConflict("To zamówienie jest już ocenione")
			}
			return err
		}

		var avg sql.NullFloat64
		row := tx.Model(&models.Review{}).Select("AVG(rating)").Where("restaurant_id = ?", order.RestaurantID).Row()
		if err := row.Scan(&avg); err != nil {
			return err
		}
		rating = roundRating(avg.Float64)
		return tx.Model(&models.Restaurant{}).Where("id = ?", order.RestaurantID).Update("rating", rating).Error
	})
	if err != nil {
		return nil, err
	}

	metrics.RecordReview()
	return &ReviewResult{Message: "Dziękujemy za ocenę!", AverageRating: rating}, nil
}

// ListForRestaurant returns a restaurant's reviews, newest first
func (s *ReviewService) ListForRestaurant(ctx context.Context, restaurantID uint) ([]ReviewView, error) {
	db := s.DB.WithContext(ctx)
	var restaurant models.Restaurant
	if err := db.First(&restaurant, restaurantID).Error; err != nil {
		return nil, notFoundOr(err, "Restauracja nie istnieje")
	}
	return s.reviewsOf(db, &restaurant)
}

// ListForOwner returns the reviews of the caller's restaurant
func (s *ReviewService) ListForOwner(ctx context.Context, owner *models.User) ([]ReviewView, error) {
	if owner.Role != models.RoleOwner {
		return nil, apperror.NewForbidden("Nie jesteś właścicielem żadnej restauracji")
	}
	db := s.DB.WithContext(ctx)
	restaurant, err := ownedRestaurant(db, owner)
	if err != nil {
		return nil, err
	}
	if restaurant == nil {
		return []ReviewView{}, nil
	}
	return s.reviewsOf(db, restaurant)
}

func (s *ReviewService) reviewsOf(db *gorm.DB, restaurant *models.Restaurant) ([]ReviewView, error) {
	var reviews []models.Review
	if err := db.Where("restaurant_id = ?", restaurant.ID).Order("id desc").Find(&reviews).Error; err != nil {
		return nil, err
	}

	orderIDs := make([]uint, 0, len(reviews))
	for _, r := range reviews {
		orderIDs = append(orderIDs, r.OrderID)
	}
	itemsByOrder := map[uint][]ReviewedItem{}
	if len(orderIDs) > 0 {
		var items []models.OrderItem
		if err := db.Where("order_id IN ?", orderIDs).Order("id").Find(&items).Error; err != nil {
			return nil, err
		}
		for _, it := range items {
			itemsByOrder[it.OrderID] = append(itemsByOrder[it.OrderID], ReviewedItem{Name: it.Name, Quantity: it.Quantity})
		}
	}

	out := make([]ReviewView, 0, len(reviews))
	for _, r := range reviews {
		items := itemsByOrder[r.OrderID]
		if items == nil {
			items = []ReviewedItem{}
		}
		out = append(out, ReviewView{
			ID:             r.ID,
			Rating:         r.Rating,
			Comment:        r.Comment,
			UserID:         r.UserID,
			OrderID:        r.OrderID,
			RestaurantID:   r.RestaurantID,
			RestaurantName: restaurant.Name,
			CreatedAt:      r.CreatedAt,
			Items:          items,
		})
	}
	return out, nil
}
