// Package services holds the business rules of the API. Every operation takes
// the acting user resolved by the auth middleware and returns *apperror.Error
// values for expected failures.
package services

import (
	"errors"

	"food-ordering-api/apperror"

	"gorm.io/gorm"
)

// notFoundOr converts gorm.ErrRecordNotFound into a NotFound error with msg
func notFoundOr(err error, msg string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperror.NewNotFound(msg)
	}
	return err
}

func strPtr(s string) *string { return &s }
