package services

import (
	"context"
	"errors"
	"strings"

	"food-ordering-api/apperror"
	"food-ordering-api/auth"
	"food-ordering-api/models"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type UserService struct {
	DB     *gorm.DB
	Tokens *auth.Issuer
}

func NewUserService(db *gorm.DB, tokens *auth.Issuer) *UserService {
	return &UserService{DB: db, Tokens: tokens}
}

type RegisterInput struct {
	Email                 string `json:"email" binding:"required,email"`
	Password              string `json:"password" binding:"required,min=6"`
	FirstName             string `json:"first_name"`
	LastName              string `json:"last_name"`
	PhoneNumber           string `json:"phone_number"`
	Street                string `json:"street"`
	City                  string `json:"city"`
	PostalCode            string `json:"postal_code"`
	TermsAccepted         bool   `json:"terms_accepted"`
	MarketingConsent      bool   `json:"marketing_consent"`
	DataProcessingConsent bool   `json:"data_processing_consent"`
}

type AddressInput struct {
	Name   string `json:"name" binding:"required"`
	City   string `json:"city" binding:"required"`
	Street string `json:"street" binding:"required"`
	Number string `json:"number" binding:"required"`
}

// Register creates a customer account. The role is always user.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	email := strings.TrimSpace(in.Email)
	db := s.DB.WithContext(ctx)

	var count int64
	if err := db.Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, apperror.NewConflict("Email already registered")
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	user := models.User{
		Email:                 email,
		PasswordHash:          hash,
		FirstName:             in.FirstName,
		LastName:              in.LastName,
		PhoneNumber:           in.PhoneNumber,
		Street:                in.Street,
		City:                  in.City,
		PostalCode:            in.PostalCode,
		TermsAccepted:         in.TermsAccepted,
		MarketingConsent:      in.MarketingConsent,
		DataProcessingConsent: in.DataProcessingConsent,
		Role:                  models.RoleUser,
	}
	if err := db.Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperror.NewConflict("Email already registered")
		}
		return nil, err
	}
	user.Addresses = []models.UserAddress{}
	return &user, nil
}

// Authenticate checks the credentials and returns a signed access token
func (s *UserService) Authenticate(ctx context.Context, email, password string) (string, error) {
	var user models.User
	err := s.DB.WithContext(ctx).Where("email = ?", strings.TrimSpace(email)).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", apperror.NewUnauthorized("Incorrect email or password")
		}
		return "", err
	}
	if !auth.CheckPassword(user.PasswordHash, password) {
		return "", apperror.NewUnauthorized("Incorrect email or password")
	}
	return s.Tokens.Issue(&user, s.Tokens.TTL())
}

// Get loads a user with their additional addresses
func (s *UserService) Get(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := s.DB.WithContext(ctx).Preload("Addresses").First(&user, id).Error; err != nil {
		return nil, notFoundOr(err, "Użytkownik nie znaleziony")
	}
	if user.Addresses == nil {
		user.Addresses = []models.UserAddress{}
	}
	return &user, nil
}

func (s *UserService) List(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if err := s.DB.WithContext(ctx).Preload("Addresses").Order("id").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func (s *UserService) ChangeRole(ctx context.Context, id uint, role models.UserRole) (*models.User, error) {
	db := s.DB.WithContext(ctx)
	var user models.User
	if err := db.First(&user, id).Error; err != nil {
		return nil, notFoundOr(err, "Użytkownik nie znaleziony")
	}
	if err := db.Model(&user).Update("role", role).Error; err != nil {
		return nil, err
	}
	user.Role = role
	logrus.WithFields(logrus.Fields{"user_id": id, "role": role}).Info("user role changed")
	return &user, nil
}

// Delete removes the user and their addresses. Restaurants they owned are kept
// but lose their owner; orders and reviews are kept for history.
func (s *UserService) Delete(ctx context.Context, id uint) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.First(&user, id).Error; err != nil {
			return notFoundOr(err, "Użytkownik nie znaleziony")
		}
		if err := tx.Where("user_id = ?", id).Delete(&models.UserAddress{}).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Restaurant{}).Where("owner_id = ?", id).Update("owner_id", nil).Error; err != nil {
			return err
		}
		return tx.Delete(&user).Error
	})
}

func (s *UserService) ListAddresses(ctx context.Context, user *models.User) ([]models.UserAddress, error) {
	addrs := []models.UserAddress{}
	if err := s.DB.WithContext(ctx).Where("user_id = ?", user.ID).Order("id").Find(&addrs).Error; err != nil {
		return nil, err
	}
	return addrs, nil
}

func (s *UserService) AddAddress(ctx context.Context, user *models.User, in AddressInput) (*models.UserAddress, error) {
	addr := models.UserAddress{
		UserID: user.ID,
		Name:   in.Name,
		City:   in.City,
		Street: in.Street,
		Number: in.Number,
	}
	if err := s.DB.WithContext(ctx).Create(&addr).Error; err != nil {
		return nil, err
	}
	return &addr, nil
}

func (s *UserService) DeleteAddress(ctx context.Context, user *models.User, addressID uint) error {
	res := s.DB.WithContext(ctx).Where("id = ? AND user_id = ?", addressID, user.ID).Delete(&models.UserAddress{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperror.NewNotFound("Adres nie znaleziony")
	}
	return nil
}

// RequestOwner files a request to be upgraded to restaurant owner
func (s *UserService) RequestOwner(ctx context.Context, user *models.User) error {
	if user.Role != models.RoleUser {
		return apperror.NewInvalidState("Nie możesz złożyć wniosku")
	}
	if user.RoleRequest != nil && *user.RoleRequest == models.RoleRequestPending {
		return apperror.NewConflict("Wniosek już został wysłany")
	}
	if err := s.DB.WithContext(ctx).Model(user).Update("role_request", models.RoleRequestPending).Error; err != nil {
		return err
	}
	user.RoleRequest = strPtr(models.RoleRequestPending)
	return nil
}

func (s *UserService) ListOwnerRequests(ctx context.Context) ([]models.User, error) {
	users := []models.User{}
	err := s.DB.WithContext(ctx).
		Where("role_request = ?", models.RoleRequestPending).
		Order("id").
		Find(&users).Error
	if err != nil {
		return nil, err
	}
	return users, nil
}

// DecideOwner approves or rejects a pending owner request
func (s *UserService) DecideOwner(ctx context.Context, id uint, approve bool) (*models.User, error) {
	db := s.DB.WithContext(ctx)
	var user models.User
	err := db.Where("id = ? AND role_request = ?", id, models.RoleRequestPending).First(&user).Error
	if err != nil {
		return nil, notFoundOr(err, "Nie znaleziono wniosku")
	}

	updates := map[string]any{"role_request": models.RoleRequestRejected}
	if approve {
		updates = map[string]any{"role": models.RoleOwner, "role_request": nil}
	}
	if err := db.Model(&user).Updates(updates).Error; err != nil {
		return nil, err
	}
	if approve {
		user.Role = models.RoleOwner
		user.RoleRequest = nil
	} else {
		user.RoleRequest = strPtr(models.RoleRequestRejected)
	}
	return &user, nil
}

// SeedAdmin creates the administrator account when it does not exist yet
func (s *UserService) SeedAdmin(ctx context.Context, email, password string) error {
	db := s.DB.WithContext(ctx)
	var count int64
	if err := db.Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}
	admin := models.User{
		Email:         email,
		PasswordHash:  hash,
		FirstName:     "Admin",
		LastName:      "System",
		Role:          models.RoleAdmin,
		TermsAccepted: true,
	}
	if err := db.Create(&admin).Error; err != nil {
		return err
	}
	logrus.WithField("email", email).Info("admin account created")
	return nil
}
