package services

import (
	"time"

	"courtbook/internal/models"
	"courtbook/internal/repositories"
	"courtbook/internal/slots"
)

const reportTopN = 5

// ReportService — read-only агрегации для админского экрана.
type ReportService struct {
	repo repositories.ReservationRepository
}

func NewReportService(repo repositories.ReservationRepository) *ReportService {
	return &ReportService{repo: repo}
}

func (s *ReportService) GetSummary(now time.Time) (*models.ReservationSummary, error) {
	total, err := s.repo.GetCount()
	if err != nil {
		return nil, err
	}
	topUsers, err := s.repo.TopUsers(reportTopN)
	if err != nil {
		return nil, err
	}
	topSlots, err := s.repo.TopSlots(reportTopN)
	if err != nil {
		return nil, err
	}
	recent, err := s.RecentlyElapsed(now)
	if err != nil {
		return nil, err
	}

	return &models.ReservationSummary{
		TotalReservations: total,
		TopUsers:          topUsers,
		PopularSlots:      topSlots,
		RecentlyElapsed:   recent,
	}, nil
}

// RecentlyElapsed — брони, закончившиеся за последние 24 часа (включительно
// с обеих сторон). Полный проход по таблице, O(n) на вызов — на объёмах
// одного корта этого достаточно. Кривые слоты пропускаем, не падаем.
func (s *ReportService) RecentlyElapsed(now time.Time) ([]models.Reservation, error) {
	all, err := s.repo.All()
	if err != nil {
		return nil, err
	}

	since := now.Add(-24 * time.Hour)
	out := make([]models.Reservation, 0)
	for _, res := range all {
		end, err := slots.EndInstant(res.Date, res.TimeSlot)
		if err != nil {
			continue
		}
		if !end.Before(since) && !end.After(now) {
			out = append(out, *res)
		}
	}
	return out, nil
}

func (s *ReportService) AllReservations() ([]*models.Reservation, error) {
	return s.repo.All()
}
