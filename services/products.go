package services

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"food-ordering-api/apperror"
	"food-ordering-api/models"

	"github.com/sirupsen/logrus"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

type ProductService struct {
	DB *gorm.DB
}

func NewProductService(db *gorm.DB) *ProductService {
	return &ProductService{DB: db}
}

type ProductInput struct {
	RestaurantID uint    `json:"restaurant_id" binding:"required"`
	Name         string  `json:"name" binding:"required"`
	Price        float64 `json:"price" binding:"gt=0"`
	Category     string  `json:"category"`
}

type ProductUpdate struct {
	Name     *string  `json:"name"`
	Price    *float64 `json:"price" binding:"omitempty,gt=0"`
	Category *string  `json:"category"`
}

func (s *ProductService) List(ctx context.Context, restaurantID uint) ([]models.Product, error) {
	products := []models.Product{}
	err := s.DB.WithContext(ctx).Where("restaurant_id = ?", restaurantID).Order("category, id").Find(&products).Error
	if err != nil {
		return nil, err
	}
	return products, nil
}

// managedRestaurant loads the restaurant and checks the actor may edit its menu
func managedRestaurant(db *gorm.DB, id uint, actor *models.User) (*models.Restaurant, error) {
	var restaurant models.Restaurant
	if err := db.First(&restaurant, id).Error; err != nil {
		return nil, notFoundOr(err, "Restauracja nie znaleziona")
	}
	if !canManage(&restaurant, actor) {
		return nil, apperror.NewForbidden("Brak uprawnień")
	}
	return &restaurant, nil
}

func (s *ProductService) Create(ctx context.Context, actor *models.User, in ProductInput) (*models.Product, error) {
	db := s.DB.WithContext(ctx)
	if _, err := managedRestaurant(db, in.RestaurantID, actor); err != nil {
		return nil, err
	}
	product := models.Product{
		RestaurantID: in.RestaurantID,
		Name:         in.Name,
		Price:        in.Price,
		Category:     in.Category,
	}
	if err := db.Create(&product).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

func (s *ProductService) loadManaged(db *gorm.DB, productID uint, actor *models.User) (*models.Product, error) {
	var product models.Product
	if err := db.First(&product, productID).Error; err != nil {
		return nil, notFoundOr(err, "Produkt nie znaleziony")
	}
	if _, err := managedRestaurant(db, product.RestaurantID, actor); err != nil {
		return nil, err
	}
	return &product, nil
}

func (s *ProductService) Update(ctx context.Context, actor *models.User, productID uint, in ProductUpdate) (*models.Product, error) {
	db := s.DB.WithContext(ctx)
	product, err := s.loadManaged(db, productID, actor)
	if err != nil {
		return nil, err
	}
	if in.Name != nil && *in.Name != "" {
		product.Name = *in.Name
	}
	if in.Price != nil {
		product.Price = *in.Price
	}
	if in.Category != nil {
		product.Category = *in.Category
	}
	if err := db.Model(product).Select("name", "price", "category").Updates(product).Error; err != nil {
		return nil, err
	}
	return product, nil
}

func (s *ProductService) Delete(ctx context.Context, actor *models.User, productID uint) error {
	db := s.DB.WithContext(ctx)
	product, err := s.loadManaged(db, productID, actor)
	if err != nil {
		return err
	}
	return db.Delete(product).Error
}

// ImportExcel bulk-creates products from the first sheet of an xlsx workbook.
// The first row is a header; columns are name, price and category. Rows with
// an empty name or an unparsable price are skipped.
func (s *ProductService) ImportExcel(ctx context.Context, actor *models.User, restaurantID uint, r io.Reader) ([]models.Product, error) {
	db := s.DB.WithContext(ctx)
	if _, err := managedRestaurant(db, restaurantID, actor); err != nil {
		return nil, err
	}

	book, err := excelize.OpenReader(r)
	if err != nil {
		return nil, apperror.NewValidation("Nieprawidłowy plik Excel")
	}
	defer book.Close()

	sheets := book.GetSheetList()
	if len(sheets) == 0 {
		return nil, apperror.NewValidation("Plik nie zawiera arkuszy")
	}
	rows, err := book.GetRows(sheets[0])
	if err != nil {
		return nil, apperror.NewValidation("Nieprawidłowy plik Excel")
	}

	var products []models.Product
	for i, row := range rows {
		if i == 0 {
			continue
		}
		p, ok := productFromRow(row)
		if !ok {
			logrus.WithFields(logrus.Fields{"restaurant_id": restaurantID, "row": i + 1}).Debug("skipping invalid product row")
			continue
		}
		p.RestaurantID = restaurantID
		products = append(products, p)
	}
	if len(products) == 0 {
		return nil, apperror.NewValidation("Brak poprawnych wierszy w pliku")
	}

	if err := db.Create(&products).Error; err != nil {
		return nil, fmt.Errorf("import products: %w", err)
	}
	return products, nil
}

func productFromRow(row []string) (models.Product, bool) {
	cell := func(i int) string {
		if i < len(row) {
			return strings.TrimSpace(row[i])
		}
		return ""
	}
	name := cell(0)
	if name == "" {
		return models.Product{}, false
	}
	price, err := strconv.ParseFloat(strings.ReplaceAll(cell(1), ",", "."), 64)
	if err != nil || price <= 0 {
		return models.Product{}, false
	}
	return models.Product{Name: name, Price: price, Category: cell(2)}, true
}
