package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"courtbook/internal/models"
)

var regNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func regRequest() *models.RegisterRequest {
	return &models.RegisterRequest{
		Email:           "a@x.com",
		FullName:        "Ayşe Yılmaz",
		Phone:           "+90 555 000 11 22",
		Password:        "s3cret-pw",
		PasswordConfirm: "s3cret-pw",
	}
}

func newRegFixture() (RegistrationService, *fakeRegistrationRepo, *fakeUserRepo, *fakeEmailService) {
	regRepo := newFakeRegistrationRepo()
	userRepo := newFakeUserRepo()
	emails := &fakeEmailService{}
	svc := NewRegistrationService(regRepo, userRepo, emails, NewAuthService(), 10*time.Minute)
	return svc, regRepo, userRepo, emails
}

func TestRegister_IssuesCodeAndToken(t *testing.T) {
	svc, _, _, emails := newRegFixture()

	p, err := svc.Register(regRequest(), regNow)
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.NotEmpty(t, p.Token)
	assert.Equal(t, regNow.Add(10*time.Minute), p.ExpiresAt)

	require.Len(t, emails.sentCodes, 1)
	assert.Len(t, emails.lastCode(), 6)
	assert.Equal(t, []string{"a@x.com"}, emails.sentTo)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	svc, _, userRepo, _ := newRegFixture()
	require.NoError(t, userRepo.Create(&models.User{Email: "A@X.com", IsActive: true}))

	// регистр не важен
	_, err := svc.Register(regRequest(), regNow)
	assert.ErrorIs(t, err, ErrDuplicateEmail)
}

func TestRegister_DuplicatePendingEmail(t *testing.T) {
	svc, _, _, _ := newRegFixture()
	_, err := svc.Register(regRequest(), regNow)
	require.NoError(t, err)

	_, err = svc.Register(regRequest(), regNow)
	assert.ErrorIs(t, err, ErrDuplicateEmail)
}

func TestRegister_MailFailureKeepsPending(t *testing.T) {
	svc, regRepo, _, emails := newRegFixture()
	emails.failNext = true

	p, err := svc.Register(regRequest(), regNow)
	assert.ErrorIs(t, err, ErrMailDelivery)
	require.NotNil(t, p, "pending registration must survive the mail fault")

	stored, err := regRepo.GetByToken(p.Token)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.False(t, stored.Consumed)

	// resend после восстановления SMTP работает по тому же токену
	require.NoError(t, svc.Resend(p.Token, regNow.Add(time.Minute)))
	assert.Len(t, emails.sentCodes, 1)
}

func TestVerify_ExpiryBoundary(t *testing.T) {
	t.Run("one second after expiry fails and discards", func(t *testing.T) {
		svc, regRepo, _, emails := newRegFixture()
		p, err := svc.Register(regRequest(), regNow)
		require.NoError(t, err)

		_, err = svc.Verify(p.Token, emails.lastCode(), p.ExpiresAt.Add(time.Second))
		assert.ErrorIs(t, err, ErrCodeExpired)

		gone, err := regRepo.GetByToken(p.Token)
		require.NoError(t, err)
		assert.Nil(t, gone, "expired pending must be discarded")
	})

	t.Run("one second before expiry succeeds", func(t *testing.T) {
		svc, _, _, emails := newRegFixture()
		p, err := svc.Register(regRequest(), regNow)
		require.NoError(t, err)

		user, err := svc.Verify(p.Token, emails.lastCode(), p.ExpiresAt.Add(-time.Second))
		require.NoError(t, err)
		assert.True(t, user.IsActive)
		assert.True(t, user.IsVerified)
	})
}

// Сценарий целиком: register -> неверный код (заявка остаётся) ->
// верный код до истечения -> пользователь активен и может залогиниться.
func TestRegisterVerifyAuthenticateScenario(t *testing.T) {
	regRepo := newFakeRegistrationRepo()
	userRepo := newFakeUserRepo()
	emails := &fakeEmailService{}
	auth := NewAuthService()
	svc := NewRegistrationService(regRepo, userRepo, emails, auth, 10*time.Minute)

	p, err := svc.Register(regRequest(), regNow)
	require.NoError(t, err)

	_, err = svc.Verify(p.Token, "000000", regNow.Add(time.Minute))
	assert.ErrorIs(t, err, ErrCodeMismatch)

	retained, err := regRepo.GetByToken(p.Token)
	require.NoError(t, err)
	require.NotNil(t, retained, "mismatch keeps the pending registration")
	assert.Equal(t, 1, retained.Attempts)

	user, err := svc.Verify(p.Token, emails.lastCode(), regNow.Add(2*time.Minute))
	require.NoError(t, err)
	assert.True(t, user.IsVerified)
	assert.Nil(t, user.Age)

	// учётные данные закоммичены только после verify
	users := NewUserService(userRepo, auth)
	got, err := users.Authenticate("A@X.COM", "s3cret-pw")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)
}

func TestVerify_AttemptsCap(t *testing.T) {
	svc, _, _, emails := newRegFixture()
	p, err := svc.Register(regRequest(), regNow)
	require.NoError(t, err)

	later := regNow.Add(time.Minute)
	for i := 0; i < maxConfirmAttempts-1; i++ {
		_, err = svc.Verify(p.Token, "999999", later)
		assert.ErrorIs(t, err, ErrCodeMismatch)
	}
	_, err = svc.Verify(p.Token, "999999", later)
	assert.ErrorIs(t, err, ErrTooManyAttempts)

	// код протух — даже верный уже не проходит
	_, err = svc.Verify(p.Token, emails.lastCode(), later)
	assert.ErrorIs(t, err, ErrCodeExpired)
}

func TestVerify_ConsumedOnlyOnce(t *testing.T) {
	svc, _, _, emails := newRegFixture()
	p, err := svc.Register(regRequest(), regNow)
	require.NoError(t, err)

	_, err = svc.Verify(p.Token, emails.lastCode(), regNow.Add(time.Minute))
	require.NoError(t, err)

	_, err = svc.Verify(p.Token, emails.lastCode(), regNow.Add(2*time.Minute))
	assert.ErrorIs(t, err, ErrRegistrationNotFound)
}

func TestResend_ThrottleAndFreshCode(t *testing.T) {
	svc, _, _, emails := newRegFixture()
	p, err := svc.Register(regRequest(), regNow)
	require.NoError(t, err)
	first := emails.lastCode()

	require.NoError(t, svc.Resend(p.Token, regNow.Add(time.Minute)))
	require.NoError(t, svc.Resend(p.Token, regNow.Add(2*time.Minute)))
	assert.NotEqual(t, first, emails.lastCode())

	// четвёртая отправка в окне 10 минут — отказ
	err = svc.Resend(p.Token, regNow.Add(3*time.Minute))
	assert.ErrorIs(t, err, ErrResendThrottled)

	// окно прошло — снова можно
	require.NoError(t, svc.Resend(p.Token, regNow.Add(11*time.Minute)))
}
