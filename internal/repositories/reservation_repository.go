package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"courtbook/internal/models"
)

var (
	// ErrSlotConflict — уникальный индекс (date, time_slot) сработал: слот уже занят.
	ErrSlotConflict = errors.New("slot already reserved")
	// ErrActiveReservationExists — у пользователя уже есть бронь с date >= from.
	ErrActiveReservationExists = errors.New("user already has an active reservation")
)

type ReservationRepository interface {
	// CreateExclusive — транзакционный check-and-insert: блокирует строку
	// пользователя, проверяет активную бронь и вставляет запись. Гонка по слоту
	// ловится уникальным индексом (date, time_slot).
	CreateExclusive(res *models.Reservation, from time.Time) error
	GetByID(id int) (*models.Reservation, error)
	FindByDate(date time.Time) ([]string, error)
	FindByUserFrom(userID int, from time.Time) ([]*models.Reservation, error)
	UpcomingFrom(from time.Time) ([]*models.Reservation, error)
	Delete(id int) error
	All() ([]*models.Reservation, error)
	GetCount() (int, error)
	TopUsers(n int) ([]models.TopUserRow, error)
	TopSlots(n int) ([]models.TopSlotRow, error)
}

type reservationRepository struct {
	DB *sql.DB
}

func NewReservationRepository(db *sql.DB) ReservationRepository {
	return &reservationRepository{DB: db}
}

func (r *reservationRepository) CreateExclusive(res *models.Reservation, from time.Time) error {
	tx, err := r.DB.Begin()
	if err != nil {
		return fmt.Errorf("reservation create: begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	// сериализуем конкурентные book() одного пользователя
	if _, err := tx.Exec(`SELECT id FROM users WHERE id=$1 FOR UPDATE`, res.UserID); err != nil {
		return fmt.Errorf("reservation create: lock user: %w", err)
	}

	var busy bool
	err = tx.QueryRow(
		`SELECT EXISTS(SELECT 1 FROM reservations WHERE user_id=$1 AND date >= $2)`,
		res.UserID, from,
	).Scan(&busy)
	if err != nil {
		return fmt.Errorf("reservation create: active check: %w", err)
	}
	if busy {
		return ErrActiveReservationExists
	}

	err = tx.QueryRow(
		`INSERT INTO reservations (user_id, date, time_slot) VALUES ($1,$2,$3) RETURNING id, created_at`,
		res.UserID, res.Date, res.TimeSlot,
	).Scan(&res.ID, &res.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return ErrSlotConflict
		}
		return fmt.Errorf("reservation create: insert: %w", err)
	}

	return tx.Commit()
}

func (r *reservationRepository) GetByID(id int) (*models.Reservation, error) {
	const q = `
		SELECT r.id, r.user_id, u.full_name, r.date, r.time_slot, r.created_at
		FROM reservations r
		JOIN users u ON u.id = r.user_id
		WHERE r.id = $1
	`
	res := &models.Reservation{}
	err := r.DB.QueryRow(q, id).Scan(&res.ID, &res.UserID, &res.UserName, &res.Date, &res.TimeSlot, &res.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("reservation get: %w", err)
	}
	return res, nil
}

// FindByDate — занятые слоты на дату.
func (r *reservationRepository) FindByDate(date time.Time) ([]string, error) {
	rows, err := r.DB.Query(`SELECT time_slot FROM reservations WHERE date = $1 ORDER BY time_slot`, date)
	if err != nil {
		return nil, fmt.Errorf("reservation by date: %w", err)
	}
	defer rows.Close()

	var taken []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		taken = append(taken, s)
	}
	return taken, rows.Err()
}

func (r *reservationRepository) FindByUserFrom(userID int, from time.Time) ([]*models.Reservation, error) {
	const q = `
		SELECT r.id, r.user_id, u.full_name, r.date, r.time_slot, r.created_at
		FROM reservations r
		JOIN users u ON u.id = r.user_id
		WHERE r.user_id = $1 AND r.date >= $2
		ORDER BY r.date, r.time_slot
	`
	return r.queryList(q, userID, from)
}

func (r *reservationRepository) UpcomingFrom(from time.Time) ([]*models.Reservation, error) {
	const q = `
		SELECT r.id, r.user_id, u.full_name, r.date, r.time_slot, r.created_at
		FROM reservations r
		JOIN users u ON u.id = r.user_id
		WHERE r.date >= $1
		ORDER BY r.date, r.time_slot
	`
	return r.queryList(q, from)
}

func (r *reservationRepository) Delete(id int) error {
	_, err := r.DB.Exec(`DELETE FROM reservations WHERE id=$1`, id)
	return err
}

func (r *reservationRepository) All() ([]*models.Reservation, error) {
	const q = `
		SELECT r.id, r.user_id, u.full_name, r.date, r.time_slot, r.created_at
		FROM reservations r
		JOIN users u ON u.id = r.user_id
		ORDER BY r.date, r.time_slot
	`
	return r.queryList(q)
}

func (r *reservationRepository) queryList(q string, args ...any) ([]*models.Reservation, error) {
	rows, err := r.DB.Query(q, args...)
	if err != nil {
		return nil, fmt.Errorf("reservation list: %w", err)
	}
	defer rows.Close()

	var res []*models.Reservation
	for rows.Next() {
		item := &models.Reservation{}
		if err := rows.Scan(&item.ID, &item.UserID, &item.UserName, &item.Date, &item.TimeSlot, &item.CreatedAt); err != nil {
			return nil, err
		}
		res = append(res, item)
	}
	return res, rows.Err()
}

func (r *reservationRepository) GetCount() (int, error) {
	var c int
	err := r.DB.QueryRow(`SELECT COUNT(*) FROM reservations`).Scan(&c)
	return c, err
}

// TopUsers — топ по числу броней; ничья разрешается порядком появления (MIN(id)).
func (r *reservationRepository) TopUsers(n int) ([]models.TopUserRow, error) {
	const q = `
		SELECT u.full_name, COUNT(*) AS cnt
		FROM reservations r
		JOIN users u ON u.id = r.user_id
		GROUP BY u.id, u.full_name
		ORDER BY cnt DESC, MIN(r.id) ASC
		LIMIT $1
	`
	rows, err := r.DB.Query(q, n)
	if err != nil {
		return nil, fmt.Errorf("top users: %w", err)
	}
	defer rows.Close()

	var out []models.TopUserRow
	for rows.Next() {
		var row models.TopUserRow
		if err := rows.Scan(&row.FullName, &row.Count); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

func (r *reservationRepository) TopSlots(n int) ([]models.TopSlotRow, error) {
	const q = `
		SELECT time_slot, COUNT(*) AS cnt
		FROM reservations
		GROUP BY time_slot
		ORDER BY cnt DESC, MIN(id) ASC
		LIMIT $1
	`
	rows, err := r.DB.Query(q, n)
	if err != nil {
		return nil, fmt.Errorf("top slots: %w", err)
	}
	defer rows.Close()

	var out []models.TopSlotRow
	for rows.Next() {
		var row models.TopSlotRow
		if err := rows.Scan(&row.TimeSlot, &row.Count); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}
