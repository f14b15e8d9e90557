package models

import "time"

// Reservation — одна запись (user, date, time_slot).
// TimeSlot хранится строкой вида "06:00 - 07:00", как отдаёт каталог слотов.
type Reservation struct {
	ID        int       `json:"id"`
	UserID    int       `json:"user_id"`
	UserName  string    `json:"user_name,omitempty"` // joined full_name, read paths only
	Date      time.Time `json:"date"`
	TimeSlot  string    `json:"time_slot"`
	CreatedAt time.Time `json:"created_at"`
}

type BookingRequest struct {
	Date     string `json:"date" binding:"required"` // YYYY-MM-DD
	TimeSlot string `json:"time_slot" binding:"required"`
}
