package services

import (
	"context"
	"sort"
	"strings"

	"food-ordering-api/apperror"
	"food-ordering-api/geocode"
	"food-ordering-api/models"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type RestaurantService struct {
	DB  *gorm.DB
	Geo geocode.Geocoder
}

func NewRestaurantService(db *gorm.DB, geo geocode.Geocoder) *RestaurantService {
	if geo == nil {
		geo = geocode.Noop{}
	}
	return &RestaurantService{DB: db, Geo: geo}
}

type RestaurantInput struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	Cuisines    string `json:"cuisines"`
	City        string `json:"city" binding:"required"`
	Street      string `json:"street" binding:"required"`
	Number      string `json:"number" binding:"required"`
}

// RestaurantUpdate carries optional fields; empty values leave the column untouched
type RestaurantUpdate struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Cuisines    *string `json:"cuisines"`
	City        *string `json:"city"`
	Street      *string `json:"street"`
	Number      *string `json:"number"`
}

type StatusInput struct {
	Status          string  `json:"status" binding:"required"`
	RejectionReason *string `json:"rejection_reason"`
}

// ListApproved returns approved restaurants, optionally filtered by a cuisine
// substring (case-insensitive).
func (s *RestaurantService) ListApproved(ctx context.Context, cuisine string) ([]models.Restaurant, error) {
	query := s.DB.WithContext(ctx).Preload("Products").Where("status = ?", models.RestaurantApproved)
	if c := strings.TrimSpace(cuisine); c != "" {
		query = query.Where("LOWER(cuisines) LIKE ?", "%"+strings.ToLower(c)+"%")
	}
	restaurants := []models.Restaurant{}
	if err := query.Order("id").Find(&restaurants).Error; err != nil {
		return nil, err
	}
	return restaurants, nil
}

func (s *RestaurantService) ListMine(ctx context.Context, owner *models.User) ([]models.Restaurant, error) {
	restaurants := []models.Restaurant{}
	err := s.DB.WithContext(ctx).Preload("Products").Where("owner_id = ?", owner.ID).Order("id").Find(&restaurants).Error
	if err != nil {
		return nil, err
	}
	return restaurants, nil
}

// Apply files a new restaurant application owned by the caller
func (s *RestaurantService) Apply(ctx context.Context, owner *models.User, in RestaurantInput) (*models.Restaurant, error) {
	lat, lon := s.Geo.Lookup(ctx, in.City, in.Street, in.Number)
	ownerID := owner.ID
	restaurant := models.Restaurant{
		Name:        in.Name,
		Description: in.Description,
		Cuisines:    in.Cuisines,
		City:        in.City,
		Street:      in.Street,
		Number:      in.Number,
		Latitude:    lat,
		Longitude:   lon,
		Status:      models.RestaurantPending,
		OwnerID:     &ownerID,
	}
	if err := s.DB.WithContext(ctx).Create(&restaurant).Error; err != nil {
		return nil, err
	}
	restaurant.Products = []models.Product{}
	logrus.WithFields(logrus.Fields{"restaurant_id": restaurant.ID, "owner_id": ownerID}).Info("restaurant application filed")
	return &restaurant, nil
}

func (s *RestaurantService) listWithOwner(ctx context.Context, statuses ...models.RestaurantStatus) ([]models.Restaurant, error) {
	query := s.DB.WithContext(ctx).Preload("Owner").Preload("Products")
	if len(statuses) > 0 {
		query = query.Where("status IN ?", statuses)
	}
	restaurants := []models.Restaurant{}
	if err := query.Order("id").Find(&restaurants).Error; err != nil {
		return nil, err
	}
	return restaurants, nil
}

// ListApplications returns the pending applications awaiting a decision
func (s *RestaurantService) ListApplications(ctx context.Context) ([]models.Restaurant, error) {
	return s.listWithOwner(ctx, models.RestaurantPending)
}

// ListHistory returns applications that were already decided
func (s *RestaurantService) ListHistory(ctx context.Context) ([]models.Restaurant, error) {
	return s.listWithOwner(ctx, models.RestaurantApproved, models.RestaurantRejected)
}

func (s *RestaurantService) ListAll(ctx context.Context) ([]models.Restaurant, error) {
	return s.listWithOwner(ctx)
}

func (s *RestaurantService) Get(ctx context.Context, id uint) (*models.Restaurant, error) {
	var restaurant models.Restaurant
	if err := s.DB.WithContext(ctx).Preload("Products").First(&restaurant, id).Error; err != nil {
		return nil, notFoundOr(err, "Restauracja nie znaleziona")
	}
	return &restaurant, nil
}

// SetStatus records the admin decision on an application. A supplied reason is
// stored; approval clears it; otherwise the previous reason is kept.
func (s *RestaurantService) SetStatus(ctx context.Context, id uint, in StatusInput) (*models.Restaurant, error) {
	status, err := models.ParseRestaurantStatus(in.Status)
	if err != nil {
		return nil, apperror.NewValidation("Nieprawidłowy status")
	}

	db := s.DB.WithContext(ctx)
	var restaurant models.Restaurant
	if err := db.First(&restaurant, id).Error; err != nil {
		return nil, notFoundOr(err, "Restauracja nie znaleziona")
	}

	reason := restaurant.RejectionReason
	switch {
	case status == models.RestaurantApproved:
		reason = nil
	case in.RejectionReason != nil:
		reason = in.RejectionReason
	}
	if err := db.Model(&restaurant).Updates(map[string]any{"status": status, "rejection_reason": reason}).Error; err != nil {
		return nil, err
	}
	restaurant.Status = status
	restaurant.RejectionReason = reason
	logrus.WithFields(logrus.Fields{"restaurant_id": id, "status": status}).Info("restaurant status changed")
	return &restaurant, nil
}

func canManage(r *models.Restaurant, actor *models.User) bool {
	return actor.Role == models.RoleAdmin || r.OwnedBy(actor.ID)
}

// Update edits restaurant details. An owner fixing a rejected application sends
// it back to review; a changed address is geocoded again.
func (s *RestaurantService) Update(ctx context.Context, id uint, actor *models.User, in RestaurantUpdate) (*models.Restaurant, error) {
	db := s.DB.WithContext(ctx)
	var restaurant models.Restaurant
	if err := db.First(&restaurant, id).Error; err != nil {
		return nil, notFoundOr(err, "Restauracja nie znaleziona")
	}
	if !canManage(&restaurant, actor) {
		return nil, apperror.NewForbidden("Brak uprawnień do edycji tego lokalu")
	}

	set := func(dst *string, src *string) bool {
		if src == nil || *src == "" || *src == *dst {
			return false
		}
		*dst = *src
		return true
	}
	set(&restaurant.Name, in.Name)
	set(&restaurant.Cuisines, in.Cuisines)
	if in.Description != nil {
		restaurant.Description = *in.Description
	}
	addressChanged := set(&restaurant.City, in.City)
	addressChanged = set(&restaurant.Street, in.Street) || addressChanged
	addressChanged = set(&restaurant.Number, in.Number) || addressChanged

	if addressChanged {
		restaurant.Latitude, restaurant.Longitude = s.Geo.Lookup(ctx, restaurant.City, restaurant.Street, restaurant.Number)
	}
	if actor.Role == models.RoleOwner && restaurant.Status == models.RestaurantRejected {
		restaurant.Status = models.RestaurantPending
		restaurant.RejectionReason = nil
	}

	err := db.Model(&restaurant).Select(
		"name", "description", "cuisines", "city", "street", "number",
		"latitude", "longitude", "status", "rejection_reason",
	).Updates(&restaurant).Error
	if err != nil {
		return nil, err
	}
	return &restaurant, nil
}

// Delete removes the restaurant together with its menu
func (s *RestaurantService) Delete(ctx context.Context, id uint, actor *models.User) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var restaurant models.Restaurant
		if err := tx.First(&restaurant, id).Error; err != nil {
			return notFoundOr(err, "Restauracja nie znaleziona")
		}
		if !canManage(&restaurant, actor) {
			return apperror.NewForbidden("Brak uprawnień do usunięcia tego lokalu")
		}
		if err := tx.Where("restaurant_id = ?", id).Delete(&models.Product{}).Error; err != nil {
			return err
		}
		return tx.Delete(&restaurant).Error
	})
}

// Cuisines returns the sorted distinct cuisine tags of approved restaurants
func (s *RestaurantService) Cuisines(ctx context.Context) ([]string, error) {
	var raw []string
	err := s.DB.WithContext(ctx).Model(&models.Restaurant{}).
		Where("status = ?", models.RestaurantApproved).
		Pluck("cuisines", &raw).Error
	if err != nil {
		return nil, err
	}

	seen := map[string]bool{}
	tags := []string{}
	for _, c := range raw {
		r := models.Restaurant{Cuisines: c}
		for _, tag := range r.CuisineTags() {
			if !seen[tag] {
				seen[tag] = true
				tags = append(tags, tag)
			}
		}
	}
	sort.Strings(tags)
	return tags, nil
}
