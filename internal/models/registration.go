package models

import "time"

// PendingRegistration — заявка на регистрацию до подтверждения кода.
// Пользовательская запись создаётся только после успешного verify,
// поэтому неподтверждённый аккаунт не может аутентифицироваться.
// Храним bcrypt-хэши и пароля, и кода.
type PendingRegistration struct {
	ID           int64     `json:"id"`
	Token        string    `json:"-"` // opaque, выдаётся клиенту
	Email        string    `json:"email"`
	FullName     string    `json:"full_name"`
	Age          *int      `json:"age,omitempty"`
	Phone        string    `json:"phone"`
	PasswordHash string    `json:"-"`
	CodeHash     string    `json:"-"`
	SentAt       time.Time `json:"sent_at"`
	ExpiresAt    time.Time `json:"expires_at"`
	Attempts     int       `json:"attempts"`
	Consumed     bool      `json:"consumed"`

	// окно троттлинга повторных отправок
	SendCount       int       `json:"-"`
	WindowStartedAt time.Time `json:"-"`
}

type RegisterRequest struct {
	Email           string `json:"email" binding:"required,email"`
	FullName        string `json:"full_name" binding:"required"`
	Phone           string `json:"phone" binding:"required"`
	Age             *int   `json:"age"`
	Password        string `json:"password" binding:"required,min=6"`
	PasswordConfirm string `json:"password_confirm" binding:"required"`
}

type VerifyRequest struct {
	RegistrationToken string `json:"registration_token" binding:"required"`
	Code              string `json:"code" binding:"required"`
}
