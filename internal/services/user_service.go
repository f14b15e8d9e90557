package services

import (
	"database/sql"
	"errors"
	"log"
	"strings"
	"time"

	"courtbook/internal/authz"
	"courtbook/internal/models"
	"courtbook/internal/repositories"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUnverifiedAccount  = errors.New("account is not verified")
)

type UserService interface {
	// Authenticate — регистронезависимый поиск по email + bcrypt.
	// Непроверенный аккаунт пускаем только если это админ.
	Authenticate(email, password string) (*models.User, error)
	GetUserByID(id int) (*models.User, error)
	GetUserByEmail(email string) (*models.User, error)
	ListUsers(limit, offset int) ([]*models.User, error)
	GetUserCount() (int, error)

	UpdateRefresh(userID int, token string, expiresAt time.Time) error
	RotateRefresh(oldToken, newToken string, newExpiresAt time.Time) (*models.User, error)
	ClearRefresh(userID int) error
	GetByRefreshToken(token string) (*models.User, error)
}

type userService struct {
	repo        repositories.UserRepository
	authService AuthService
}

func NewUserService(repo repositories.UserRepository, authService AuthService) UserService {
	return &userService{
		repo:        repo,
		authService: authService,
	}
}

func (s *userService) Authenticate(email, password string) (*models.User, error) {
	email = strings.TrimSpace(email)
	user, err := s.repo.GetByEmail(email)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			log.Printf("[user][auth] lookup failed for %q: %v", email, err)
		}
		return nil, ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, ErrInvalidCredentials
	}
	if s.authService.CheckPassword(user.PasswordHash, strings.TrimSpace(password)) != nil {
		return nil, ErrInvalidCredentials
	}
	if !user.IsVerified && !authz.IsAdmin(user.RoleID) {
		return nil, ErrUnverifiedAccount
	}
	return user, nil
}

func (s *userService) GetUserByID(id int) (*models.User, error) {
	u, err := s.repo.GetByID(id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return u, err
}

func (s *userService) GetUserByEmail(email string) (*models.User, error) {
	u, err := s.repo.GetByEmail(email)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return u, err
}

func (s *userService) ListUsers(limit, offset int) ([]*models.User, error) {
	return s.repo.List(limit, offset)
}

func (s *userService) GetUserCount() (int, error) {
	return s.repo.GetCount()
}

func (s *userService) UpdateRefresh(userID int, token string, expiresAt time.Time) error {
	return s.repo.UpdateRefresh(userID, token, expiresAt)
}

func (s *userService) RotateRefresh(oldToken, newToken string, newExpiresAt time.Time) (*models.User, error) {
	u, err := s.repo.RotateRefresh(oldToken, newToken, newExpiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return u, err
}

func (s *userService) ClearRefresh(userID int) error {
	return s.repo.ClearRefresh(userID)
}

func (s *userService) GetByRefreshToken(token string) (*models.User, error) {
	u, err := s.repo.GetByRefreshToken(token)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return u, err
}
