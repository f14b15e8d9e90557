package services

import (
	"database/sql"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"courtbook/internal/authz"
	"courtbook/internal/models"
	"courtbook/internal/repositories"
	"courtbook/internal/utils"
)

var (
	ErrDuplicateEmail       = errors.New("email already registered")
	ErrRegistrationNotFound = errors.New("registration not found")
	ErrCodeExpired          = errors.New("code expired")
	ErrCodeMismatch         = errors.New("code invalid")
	ErrTooManyAttempts      = errors.New("too many attempts")
	ErrResendThrottled      = errors.New("resend throttled")
	ErrMailDelivery         = errors.New("mail delivery failed")
)

// Настройки безопасности (можно вынести в конфиг при желании)
const (
	maxResendsPerWindow = 3
	resendWindow        = 10 * time.Minute
	maxConfirmAttempts  = 5
	defaultCodeTTL      = 10 * time.Minute
	codeDigits          = 6
)

type RegistrationService interface {
	// Register — создаёт заявку, шлёт код на почту и возвращает opaque-токен заявки.
	// При ошибке отправки письма заявка сохраняется (ErrMailDelivery + заявка для retry).
	Register(req *models.RegisterRequest, now time.Time) (*models.PendingRegistration, error)
	// Verify — сверяет код. Просроченный код удаляет заявку (нужна новая регистрация),
	// неверный — оставляет и считает попытки. Успех создаёт активного пользователя.
	Verify(token, code string, now time.Time) (*models.User, error)
	// Resend — новый код на ту же заявку, не чаще 3 отправок за 10 минут.
	Resend(token string, now time.Time) error
}

type registrationService struct {
	repo    repositories.RegistrationRepository
	users   repositories.UserRepository
	emails  EmailService
	auth    AuthService
	codeTTL time.Duration
}

func NewRegistrationService(
	repo repositories.RegistrationRepository,
	users repositories.UserRepository,
	emails EmailService,
	auth AuthService,
	codeTTL time.Duration,
) RegistrationService {
	if codeTTL <= 0 {
		codeTTL = defaultCodeTTL
	}
	return &registrationService{
		repo:    repo,
		users:   users,
		emails:  emails,
		auth:    auth,
		codeTTL: codeTTL,
	}
}

func (s *registrationService) Register(req *models.RegisterRequest, now time.Time) (*models.PendingRegistration, error) {
	email := strings.TrimSpace(req.Email)

	if existing, err := s.users.GetByEmail(email); err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("register: user lookup: %w", err)
	} else if existing != nil && err == nil {
		return nil, ErrDuplicateEmail
	}
	if pending, err := s.repo.FindLiveByEmail(email, now); err != nil {
		return nil, fmt.Errorf("register: pending lookup: %w", err)
	} else if pending != nil {
		return nil, ErrDuplicateEmail
	}

	// Пароль хэшируем сразу, но в users он попадёт только после verify.
	passwordHash, err := s.auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	code, err := utils.NewNumericCode(codeDigits)
	if err != nil {
		return nil, err
	}
	codeHash, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("bcrypt generate: %w", err)
	}
	token, err := utils.NewRefreshToken(24)
	if err != nil {
		return nil, err
	}

	p := &models.PendingRegistration{
		Token:        token,
		Email:        email,
		FullName:     strings.TrimSpace(req.FullName),
		Age:          req.Age,
		Phone:        strings.TrimSpace(req.Phone),
		PasswordHash: passwordHash,
		CodeHash:     string(codeHash),
		SentAt:       now,
		ExpiresAt:    now.Add(s.codeTTL),
	}
	if err := s.repo.Create(p); err != nil {
		return nil, err
	}

	if err := s.emails.SendVerificationCode(p.Email, code); err != nil {
		// заявку не откатываем: клиент может запросить повторную отправку
		log.Printf("[register][send] mail failed for %s: %v", p.Email, err)
		return p, ErrMailDelivery
	}

	log.Printf("[register][send] pending=%d email=%s expires=%s", p.ID, p.Email, p.ExpiresAt.Format(time.RFC3339))
	return p, nil
}

func (s *registrationService) Verify(token, code string, now time.Time) (*models.User, error) {
	p, err := s.repo.GetByToken(strings.TrimSpace(token))
	if err != nil {
		return nil, err
	}
	if p == nil || p.Consumed {
		return nil, ErrRegistrationNotFound
	}
	if now.After(p.ExpiresAt) {
		// просроченный код не реанимируем — заявка удаляется, нужна новая регистрация
		if err := s.repo.Delete(p.ID); err != nil {
			log.Printf("[register][verify] drop expired pending=%d failed: %v", p.ID, err)
		}
		return nil, ErrCodeExpired
	}

	if bcrypt.CompareHashAndPassword([]byte(p.CodeHash), []byte(strings.TrimSpace(code))) != nil {
		attempts, incErr := s.repo.IncrementAttempts(p.ID)
		if incErr != nil {
			return nil, incErr
		}
		if attempts >= maxConfirmAttempts {
			if err := s.repo.ExpireNow(p.ID); err != nil {
				return nil, err
			}
			return nil, ErrTooManyAttempts
		}
		return nil, ErrCodeMismatch
	}

	// ровно один конкурентный verify расходует заявку
	ok, err := s.repo.Consume(p.ID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrRegistrationNotFound
	}

	verifiedAt := now
	user := &models.User{
		Email:        p.Email,
		FullName:     p.FullName,
		Age:          p.Age,
		Phone:        p.Phone,
		PasswordHash: p.PasswordHash,
		RoleID:       authz.RoleMember,
		IsActive:     true,
		IsVerified:   true,
		VerifiedAt:   &verifiedAt,
	}
	if err := s.users.Create(user); err != nil {
		return nil, fmt.Errorf("verify: create user: %w", err)
	}

	log.Printf("[register][verify] activated user=%d email=%s", user.ID, user.Email)
	return user, nil
}

func (s *registrationService) Resend(token string, now time.Time) error {
	p, err := s.repo.GetByToken(strings.TrimSpace(token))
	if err != nil {
		return err
	}
	if p == nil || p.Consumed {
		return ErrRegistrationNotFound
	}

	// троттлинг отправок: не чаще 3/10мин
	if now.Sub(p.WindowStartedAt) > resendWindow {
		if err := s.repo.ResetSendWindow(p.ID, now); err != nil {
			return err
		}
	} else {
		if p.SendCount >= maxResendsPerWindow {
			return ErrResendThrottled
		}
		if _, err := s.repo.BumpSendCount(p.ID); err != nil {
			return err
		}
	}

	// каждый resend — новый код и новое окно действия
	code, err := utils.NewNumericCode(codeDigits)
	if err != nil {
		return err
	}
	codeHash, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("bcrypt generate: %w", err)
	}
	if err := s.repo.UpdateCode(p.ID, string(codeHash), now, now.Add(s.codeTTL)); err != nil {
		return err
	}

	if err := s.emails.SendVerificationCode(p.Email, code); err != nil {
		log.Printf("[register][resend] mail failed for %s: %v", p.Email, err)
		return ErrMailDelivery
	}
	log.Printf("[register][resend] pending=%d email=%s", p.ID, p.Email)
	return nil
}
