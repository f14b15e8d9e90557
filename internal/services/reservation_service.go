package services

import (
	"errors"
	"log"
	"time"

	"courtbook/internal/authz"
	"courtbook/internal/models"
	"courtbook/internal/repositories"
	"courtbook/internal/slots"
)

var (
	ErrPastDate                   = errors.New("date is in the past")
	ErrHorizonExceeded            = errors.New("date is beyond the booking horizon")
	ErrDuplicateActiveReservation = errors.New("user already has an active reservation")
	ErrSlotTaken                  = errors.New("slot is not available")
	ErrNotAuthorized              = errors.New("not authorized")
	ErrNotFound                   = errors.New("reservation not found")
)

// BookingHorizonDays — горизонт бронирования: сегодня + 2 календарных дня,
// дальше нельзя (проверка строгая, сам третий день ещё доступен).
const BookingHorizonDays = 2

type ReservationService interface {
	// AvailableSlots — свободные и занятые слоты на дату по состоянию на now.
	AvailableSlots(date, now time.Time) (free, taken []string, err error)
	// Book — проверки строго по порядку: прошлое, горизонт, активная бронь,
	// доступность слота. Считаем так, чтобы запрос на запрещённую дату
	// не раскрывал занятость слотов.
	Book(userID int, date time.Time, slot string, now time.Time) (*models.Reservation, error)
	// Cancel — владелец или админ.
	Cancel(id, requesterID, requesterRole int) error
	Upcoming(now time.Time) ([]*models.Reservation, error)
	UpcomingForUser(userID int, now time.Time) ([]*models.Reservation, error)
}

type reservationService struct {
	repo repositories.ReservationRepository
}

func NewReservationService(repo repositories.ReservationRepository) ReservationService {
	return &reservationService{repo: repo}
}

// Today strips the clock off now, keeping the calendar date.
func Today(now time.Time) time.Time {
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
}

func (s *reservationService) AvailableSlots(date, now time.Time) ([]string, []string, error) {
	taken, err := s.repo.FindByDate(Today(date))
	if err != nil {
		return nil, nil, err
	}
	takenSet := make(map[string]struct{}, len(taken))
	for _, t := range taken {
		takenSet[t] = struct{}{}
	}

	var free []string
	for _, slot := range slots.ForDate(date, now) {
		if _, ok := takenSet[slot]; !ok {
			free = append(free, slot)
		}
	}
	return free, taken, nil
}

func (s *reservationService) Book(userID int, date time.Time, slot string, now time.Time) (*models.Reservation, error) {
	today := Today(now)
	day := Today(date)

	if day.Before(today) {
		return nil, ErrPastDate
	}
	if day.After(today.AddDate(0, 0, BookingHorizonDays)) {
		return nil, ErrHorizonExceeded
	}

	existing, err := s.repo.FindByUserFrom(userID, today)
	if err != nil {
		return nil, err
	}
	if len(existing) > 0 {
		return nil, ErrDuplicateActiveReservation
	}

	free, _, err := s.AvailableSlots(day, now)
	if err != nil {
		return nil, err
	}
	available := false
	for _, f := range free {
		if f == slot {
			available = true
			break
		}
	}
	if !available {
		return nil, ErrSlotTaken
	}

	res := &models.Reservation{UserID: userID, Date: day, TimeSlot: slot}
	if err := s.repo.CreateExclusive(res, today); err != nil {
		// гонки закрываются на уровне хранилища; наружу — те же доменные ошибки
		switch {
		case errors.Is(err, repositories.ErrActiveReservationExists):
			return nil, ErrDuplicateActiveReservation
		case errors.Is(err, repositories.ErrSlotConflict):
			return nil, ErrSlotTaken
		default:
			return nil, err
		}
	}

	log.Printf("[reservation][book] user=%d date=%s slot=%q", userID, day.Format("2006-01-02"), slot)
	return res, nil
}

func (s *reservationService) Cancel(id, requesterID, requesterRole int) error {
	res, err := s.repo.GetByID(id)
	if err != nil {
		return err
	}
	if res == nil {
		return ErrNotFound
	}
	if !authz.CanCancelReservation(requesterID, requesterRole, res) {
		return ErrNotAuthorized
	}
	if err := s.repo.Delete(id); err != nil {
		return err
	}
	log.Printf("[reservation][cancel] id=%d by user=%d", id, requesterID)
	return nil
}

func (s *reservationService) Upcoming(now time.Time) ([]*models.Reservation, error) {
	return s.repo.UpcomingFrom(Today(now))
}

func (s *reservationService) UpcomingForUser(userID int, now time.Time) ([]*models.Reservation, error) {
	return s.repo.FindByUserFrom(userID, Today(now))
}
