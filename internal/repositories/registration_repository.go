package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"courtbook/internal/models"
)

// RegistrationRepository — хранилище заявок на регистрацию (до verify).
// Одна живая заявка на email: запись либо подтверждается (consumed=TRUE),
// либо удаляется по истечении кода.
type RegistrationRepository interface {
	Create(p *models.PendingRegistration) error
	GetByToken(token string) (*models.PendingRegistration, error)
	FindLiveByEmail(email string, now time.Time) (*models.PendingRegistration, error)
	// Consume — атомарное потребление заявки: ровно один конкурентный verify выигрывает.
	Consume(id int64) (bool, error)
	Delete(id int64) error
	IncrementAttempts(id int64) (int, error)
	ExpireNow(id int64) error
	UpdateCode(id int64, codeHash string, sentAt, expiresAt time.Time) error
	ResetSendWindow(id int64, startedAt time.Time) error
	BumpSendCount(id int64) (int, error)
}

type registrationRepository struct {
	DB *sql.DB
}

func NewRegistrationRepository(db *sql.DB) RegistrationRepository {
	return &registrationRepository{DB: db}
}

const pendingColumns = `
	id, token, email, full_name, age, phone, password_hash, code_hash,
	sent_at, expires_at, attempts, consumed, send_count, window_started_at
`

func (r *registrationRepository) scan(row interface{ Scan(...any) error }) (*models.PendingRegistration, error) {
	p := &models.PendingRegistration{}
	var age sql.NullInt64
	err := row.Scan(
		&p.ID, &p.Token, &p.Email, &p.FullName, &age, &p.Phone, &p.PasswordHash, &p.CodeHash,
		&p.SentAt, &p.ExpiresAt, &p.Attempts, &p.Consumed, &p.SendCount, &p.WindowStartedAt,
	)
	if err != nil {
		return nil, err
	}
	if age.Valid {
		a := int(age.Int64)
		p.Age = &a
	}
	return p, nil
}

func (r *registrationRepository) Create(p *models.PendingRegistration) error {
	const q = `
		INSERT INTO pending_registrations (
			token, email, full_name, age, phone, password_hash, code_hash,
			sent_at, expires_at, attempts, consumed, send_count, window_started_at
		)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,0,FALSE,1,$8)
		RETURNING id
	`
	var age sql.NullInt64
	if p.Age != nil {
		age = sql.NullInt64{Int64: int64(*p.Age), Valid: true}
	}
	if err := r.DB.QueryRow(q,
		p.Token, p.Email, p.FullName, age, p.Phone, p.PasswordHash, p.CodeHash,
		p.SentAt, p.ExpiresAt,
	).Scan(&p.ID); err != nil {
		return fmt.Errorf("pending registration create: %w", err)
	}
	p.SendCount = 1
	p.WindowStartedAt = p.SentAt
	return nil
}

func (r *registrationRepository) GetByToken(token string) (*models.PendingRegistration, error) {
	p, err := r.scan(r.DB.QueryRow(
		`SELECT `+pendingColumns+` FROM pending_registrations WHERE token = $1`, token))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("pending registration by token: %w", err)
	}
	return p, nil
}

// FindLiveByEmail — незавершённая и непросроченная заявка на email (без учёта регистра).
func (r *registrationRepository) FindLiveByEmail(email string, now time.Time) (*models.PendingRegistration, error) {
	const q = `
		SELECT ` + pendingColumns + `
		FROM pending_registrations
		WHERE LOWER(email) = LOWER($1) AND consumed = FALSE AND expires_at > $2
		ORDER BY sent_at DESC
		LIMIT 1
	`
	p, err := r.scan(r.DB.QueryRow(q, email, now))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("pending registration by email: %w", err)
	}
	return p, nil
}

func (r *registrationRepository) Consume(id int64) (bool, error) {
	res, err := r.DB.Exec(
		`UPDATE pending_registrations SET consumed = TRUE WHERE id = $1 AND consumed = FALSE`, id)
	if err != nil {
		return false, fmt.Errorf("pending registration consume: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func (r *registrationRepository) Delete(id int64) error {
	_, err := r.DB.Exec(`DELETE FROM pending_registrations WHERE id = $1`, id)
	return err
}

// IncrementAttempts — +1 попытка, возвращает новое значение attempts.
func (r *registrationRepository) IncrementAttempts(id int64) (int, error) {
	var attempts int
	err := r.DB.QueryRow(
		`UPDATE pending_registrations SET attempts = attempts + 1 WHERE id = $1 RETURNING attempts`, id,
	).Scan(&attempts)
	if err != nil {
		return 0, fmt.Errorf("pending registration increment attempts: %w", err)
	}
	return attempts, nil
}

// ExpireNow — моментально "протухаем" код (при превышении попыток).
func (r *registrationRepository) ExpireNow(id int64) error {
	_, err := r.DB.Exec(`UPDATE pending_registrations SET expires_at = NOW() WHERE id = $1`, id)
	return err
}

// UpdateCode — новый код и новое окно действия при повторной отправке.
func (r *registrationRepository) UpdateCode(id int64, codeHash string, sentAt, expiresAt time.Time) error {
	_, err := r.DB.Exec(
		`UPDATE pending_registrations SET code_hash=$1, sent_at=$2, expires_at=$3, attempts=0 WHERE id=$4`,
		codeHash, sentAt, expiresAt, id)
	return err
}

func (r *registrationRepository) ResetSendWindow(id int64, startedAt time.Time) error {
	_, err := r.DB.Exec(
		`UPDATE pending_registrations SET send_count=1, window_started_at=$1 WHERE id=$2`, startedAt, id)
	return err
}

func (r *registrationRepository) BumpSendCount(id int64) (int, error) {
	var c int
	err := r.DB.QueryRow(
		`UPDATE pending_registrations SET send_count = send_count + 1 WHERE id = $1 RETURNING send_count`, id,
	).Scan(&c)
	if err != nil {
		return 0, fmt.Errorf("pending registration bump send count: %w", err)
	}
	return c, nil
}
