package authz

import "courtbook/internal/models"

const (
	RoleMember = 10
	RoleAdmin  = 50
)

func IsAdmin(roleID int) bool {
	return roleID == RoleAdmin
}

// CanCancelReservation — capability-проверка: владелец или админ.
func CanCancelReservation(userID, roleID int, res *models.Reservation) bool {
	if res == nil {
		return false
	}
	return res.UserID == userID || IsAdmin(roleID)
}
