package services

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/stretchr/testify/mock"

	"courtbook/internal/models"
)

// --- testify mocks ---

type mockReservationRepo struct{ mock.Mock }

func (m *mockReservationRepo) CreateExclusive(res *models.Reservation, from time.Time) error {
	return m.Called(res, from).Error(0)
}
func (m *mockReservationRepo) GetByID(id int) (*models.Reservation, error) {
	args := m.Called(id)
	if r, _ := args.Get(0).(*models.Reservation); r != nil {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockReservationRepo) FindByDate(date time.Time) ([]string, error) {
	args := m.Called(date)
	if v, _ := args.Get(0).([]string); v != nil {
		return v, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockReservationRepo) FindByUserFrom(userID int, from time.Time) ([]*models.Reservation, error) {
	args := m.Called(userID, from)
	if v, _ := args.Get(0).([]*models.Reservation); v != nil {
		return v, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockReservationRepo) UpcomingFrom(from time.Time) ([]*models.Reservation, error) {
	args := m.Called(from)
	if v, _ := args.Get(0).([]*models.Reservation); v != nil {
		return v, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockReservationRepo) Delete(id int) error { return m.Called(id).Error(0) }
func (m *mockReservationRepo) All() ([]*models.Reservation, error) {
	args := m.Called()
	if v, _ := args.Get(0).([]*models.Reservation); v != nil {
		return v, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockReservationRepo) GetCount() (int, error) {
	args := m.Called()
	return args.Int(0), args.Error(1)
}
func (m *mockReservationRepo) TopUsers(n int) ([]models.TopUserRow, error) {
	args := m.Called(n)
	if v, _ := args.Get(0).([]models.TopUserRow); v != nil {
		return v, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockReservationRepo) TopSlots(n int) ([]models.TopSlotRow, error) {
	args := m.Called(n)
	if v, _ := args.Get(0).([]models.TopSlotRow); v != nil {
		return v, args.Error(1)
	}
	return nil, args.Error(1)
}

type mockUserRepo struct{ mock.Mock }

func (m *mockUserRepo) Create(user *models.User) error { return m.Called(user).Error(0) }
func (m *mockUserRepo) GetByID(id int) (*models.User, error) {
	args := m.Called(id)
	if u, _ := args.Get(0).(*models.User); u != nil {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockUserRepo) GetByEmail(email string) (*models.User, error) {
	args := m.Called(email)
	if u, _ := args.Get(0).(*models.User); u != nil {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockUserRepo) List(limit, offset int) ([]*models.User, error) {
	args := m.Called(limit, offset)
	if v, _ := args.Get(0).([]*models.User); v != nil {
		return v, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockUserRepo) Delete(id int) error { return m.Called(id).Error(0) }
func (m *mockUserRepo) GetCount() (int, error) {
	args := m.Called()
	return args.Int(0), args.Error(1)
}
func (m *mockUserRepo) UpdatePassword(userID int, passwordHash string) error {
	return m.Called(userID, passwordHash).Error(0)
}
func (m *mockUserRepo) UpdateRefresh(userID int, token string, expiresAt time.Time) error {
	return m.Called(userID, token, expiresAt).Error(0)
}
func (m *mockUserRepo) RotateRefresh(oldToken, newToken string, newExpiresAt time.Time) (*models.User, error) {
	args := m.Called(oldToken, newToken, newExpiresAt)
	if u, _ := args.Get(0).(*models.User); u != nil {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockUserRepo) ClearRefresh(userID int) error { return m.Called(userID).Error(0) }
func (m *mockUserRepo) GetByRefreshToken(token string) (*models.User, error) {
	args := m.Called(token)
	if u, _ := args.Get(0).(*models.User); u != nil {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

// --- stateful fakes for the registration flow ---

// fakeRegistrationRepo держит заявки в памяти; этого достаточно,
// чтобы прогнать сценарии register -> verify целиком.
type fakeRegistrationRepo struct {
	rows   map[int64]*models.PendingRegistration
	nextID int64
}

func newFakeRegistrationRepo() *fakeRegistrationRepo {
	return &fakeRegistrationRepo{rows: map[int64]*models.PendingRegistration{}, nextID: 1}
}

func (f *fakeRegistrationRepo) Create(p *models.PendingRegistration) error {
	p.ID = f.nextID
	f.nextID++
	p.SendCount = 1
	p.WindowStartedAt = p.SentAt
	cp := *p
	f.rows[p.ID] = &cp
	return nil
}

func (f *fakeRegistrationRepo) GetByToken(token string) (*models.PendingRegistration, error) {
	for _, p := range f.rows {
		if p.Token == token {
			cp := *p
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeRegistrationRepo) FindLiveByEmail(email string, now time.Time) (*models.PendingRegistration, error) {
	for _, p := range f.rows {
		if strings.EqualFold(p.Email, email) && !p.Consumed && p.ExpiresAt.After(now) {
			cp := *p
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeRegistrationRepo) Consume(id int64) (bool, error) {
	p, ok := f.rows[id]
	if !ok || p.Consumed {
		return false, nil
	}
	p.Consumed = true
	return true, nil
}

func (f *fakeRegistrationRepo) Delete(id int64) error {
	delete(f.rows, id)
	return nil
}

func (f *fakeRegistrationRepo) IncrementAttempts(id int64) (int, error) {
	p, ok := f.rows[id]
	if !ok {
		return 0, fmt.Errorf("no row %d", id)
	}
	p.Attempts++
	return p.Attempts, nil
}

func (f *fakeRegistrationRepo) ExpireNow(id int64) error {
	if p, ok := f.rows[id]; ok {
		p.ExpiresAt = time.Time{} // заведомо в прошлом при любых тестовых часах
	}
	return nil
}

func (f *fakeRegistrationRepo) UpdateCode(id int64, codeHash string, sentAt, expiresAt time.Time) error {
	p, ok := f.rows[id]
	if !ok {
		return fmt.Errorf("no row %d", id)
	}
	p.CodeHash = codeHash
	p.SentAt = sentAt
	p.ExpiresAt = expiresAt
	p.Attempts = 0
	return nil
}

func (f *fakeRegistrationRepo) ResetSendWindow(id int64, startedAt time.Time) error {
	p, ok := f.rows[id]
	if !ok {
		return fmt.Errorf("no row %d", id)
	}
	p.SendCount = 1
	p.WindowStartedAt = startedAt
	return nil
}

func (f *fakeRegistrationRepo) BumpSendCount(id int64) (int, error) {
	p, ok := f.rows[id]
	if !ok {
		return 0, fmt.Errorf("no row %d", id)
	}
	p.SendCount++
	return p.SendCount, nil
}

// fakeUserRepo — минимальное in-memory зеркало users для тех же сценариев.
type fakeUserRepo struct {
	users  map[int]*models.User
	nextID int
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[int]*models.User{}, nextID: 1}
}

func (f *fakeUserRepo) Create(u *models.User) error {
	u.ID = f.nextID
	f.nextID++
	u.CreatedAt = time.Now()
	cp := *u
	f.users[u.ID] = &cp
	return nil
}

func (f *fakeUserRepo) GetByID(id int) (*models.User, error) {
	if u, ok := f.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, sql.ErrNoRows
}

func (f *fakeUserRepo) GetByEmail(email string) (*models.User, error) {
	for _, u := range f.users {
		if strings.EqualFold(u.Email, email) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (f *fakeUserRepo) List(limit, offset int) ([]*models.User, error) { return nil, nil }
func (f *fakeUserRepo) Delete(id int) error                            { delete(f.users, id); return nil }
func (f *fakeUserRepo) GetCount() (int, error)                         { return len(f.users), nil }
func (f *fakeUserRepo) UpdatePassword(userID int, hash string) error {
	if u, ok := f.users[userID]; ok {
		u.PasswordHash = hash
	}
	return nil
}
func (f *fakeUserRepo) UpdateRefresh(userID int, token string, expiresAt time.Time) error {
	return nil
}
func (f *fakeUserRepo) RotateRefresh(oldToken, newToken string, newExpiresAt time.Time) (*models.User, error) {
	return nil, sql.ErrNoRows
}
func (f *fakeUserRepo) ClearRefresh(userID int) error { return nil }
func (f *fakeUserRepo) GetByRefreshToken(token string) (*models.User, error) {
	return nil, sql.ErrNoRows
}

// fakeEmailService записывает отправленные коды; может имитировать отказ SMTP.
type fakeEmailService struct {
	failNext  bool
	sentCodes []string
	sentTo    []string
}

func (f *fakeEmailService) SendVerificationCode(email, code string) error {
	if f.failNext {
		f.failNext = false
		return fmt.Errorf("smtp: connection refused")
	}
	f.sentTo = append(f.sentTo, email)
	f.sentCodes = append(f.sentCodes, code)
	return nil
}

func (f *fakeEmailService) SendPasswordResetEmail(email, token string) error {
	if f.failNext {
		f.failNext = false
		return fmt.Errorf("smtp: connection refused")
	}
	f.sentTo = append(f.sentTo, email)
	f.sentCodes = append(f.sentCodes, token)
	return nil
}

func (f *fakeEmailService) lastCode() string {
	if len(f.sentCodes) == 0 {
		return ""
	}
	return f.sentCodes[len(f.sentCodes)-1]
}
