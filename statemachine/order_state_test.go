package statemachine

import (
	"testing"

	"food-ordering-api/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestActorFor(t *testing.T) {
	a, err := ActorFor(models.RoleOwner)
	require.NoError(t, err)
	assert.Equal(t, ActorOwner, a)

	a, err = ActorFor(models.RoleUser)
	require.NoError(t, err)
	assert.Equal(t, ActorCustomer, a)

	_, err = ActorFor(models.RoleAdmin)
	assert.ErrorIs(t, err, ErrUnknownActor)
}

func TestOwnerMayReachAnyStatus(t *testing.T) {
	for _, st := range models.AllOrderStatuses {
		assert.NoError(t, CanTransition(ActorOwner, st), st)
	}
}

func TestCustomerLimitedToAcknowledgement(t *testing.T) {
	for _, st := range models.AllOrderStatuses {
		err := CanTransition(ActorCustomer, st)
		if st == models.StatusDelivered || st == models.StatusCompleted {
			assert.NoError(t, err, st)
		} else {
			assert.ErrorIs(t, err, ErrTargetNotAllow, st)
		}
	}
	assert.Equal(t, []models.OrderStatus{models.StatusDelivered, models.StatusCompleted}, AllowedTargets(ActorCustomer))
}

func TestUnknownActor(t *testing.T) {
	assert.ErrorIs(t, CanTransition(Actor("driver"), models.StatusDelivered), ErrUnknownActor)
	assert.Empty(t, AllowedTargets(Actor("driver")))
}

func TestActiveAndReviewable(t *testing.T) {
	assert.True(t, IsActive(models.StatusArrived))
	assert.False(t, IsActive(models.StatusDelivered))
	assert.False(t, IsActive(models.StatusCancelled))
	assert.True(t, IsReviewable(models.StatusCompleted))
	assert.False(t, IsReviewable(models.StatusPreparing))
}
