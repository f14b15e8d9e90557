package models

type TopUserRow struct {
	FullName string `json:"full_name"`
	Count    int    `json:"count"`
}

type TopSlotRow struct {
	TimeSlot string `json:"time_slot"`
	Count    int    `json:"count"`
}

type ReservationSummary struct {
	TotalReservations int           `json:"total_reservations"`
	TopUsers          []TopUserRow  `json:"top_users"`
	PopularSlots      []TopSlotRow  `json:"popular_slots"`
	RecentlyElapsed   []Reservation `json:"recently_elapsed"`
}
