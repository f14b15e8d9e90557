package authz

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"courtbook/internal/models"
)

func TestCanCancelReservation(t *testing.T) {
	res := &models.Reservation{ID: 1, UserID: 7}

	assert.True(t, CanCancelReservation(7, RoleMember, res), "owner")
	assert.True(t, CanCancelReservation(2, RoleAdmin, res), "admin")
	assert.False(t, CanCancelReservation(2, RoleMember, res), "stranger")
	assert.False(t, CanCancelReservation(7, RoleMember, nil), "nil reservation")
}
