package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"courtbook/internal/models"
	"courtbook/internal/services"
)

type RegistrationHandler struct {
	service services.RegistrationService
}

func NewRegistrationHandler(service services.RegistrationService) *RegistrationHandler {
	return &RegistrationHandler{service: service}
}

// @Summary      Register
// @Description  Creates a pending registration and emails a 6-digit verification code
// @Tags         Registration
// @Accept       json
// @Produce      json
// @Param        registration  body      models.RegisterRequest  true  "Registration data"
// @Success      201  {object}  map[string]string
// @Failure      400  {object}  map[string]string
// @Failure      409  {object}  map[string]string
// @Failure      502  {object}  map[string]string
// @Router       /register [post]
func (h *RegistrationHandler) Register(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Password != req.PasswordConfirm {
		c.JSON(http.StatusBadRequest, gin.H{"error": "passwords do not match"})
		return
	}

	pending, err := h.service.Register(&req, time.Now())
	switch {
	case err == nil:
		c.JSON(http.StatusCreated, gin.H{
			"message":            "Verification code sent",
			"registration_token": pending.Token,
		})
	case errors.Is(err, services.ErrDuplicateEmail):
		c.JSON(http.StatusConflict, gin.H{"error": "email already registered"})
	case errors.Is(err, services.ErrMailDelivery):
		// заявка сохранена — клиент может повторить отправку по токену
		c.JSON(http.StatusBadGateway, gin.H{
			"error":              "failed to send verification email, try resending",
			"registration_token": pending.Token,
		})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "registration failed"})
	}
}

// @Summary      Verify email
// @Description  Confirms the emailed code and activates the account
// @Tags         Registration
// @Accept       json
// @Produce      json
// @Param        verify  body      models.VerifyRequest  true  "Registration token and code"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Failure      410  {object}  map[string]string
// @Router       /register/verify [post]
func (h *RegistrationHandler) Verify(c *gin.Context) {
	var req models.VerifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.service.Verify(req.RegistrationToken, req.Code, time.Now())
	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{"message": "Email verified", "user": user})
	case errors.Is(err, services.ErrRegistrationNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "registration not found, please register"})
	case errors.Is(err, services.ErrCodeExpired):
		c.JSON(http.StatusGone, gin.H{"error": "code expired, please register again"})
	case errors.Is(err, services.ErrTooManyAttempts):
		c.JSON(http.StatusBadRequest, gin.H{"error": "too many attempts, request a new code"})
	case errors.Is(err, services.ErrCodeMismatch):
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid code"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "verification failed"})
	}
}

// @Summary      Resend verification code
// @Tags         Registration
// @Accept       json
// @Produce      json
// @Success      200  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Failure      429  {object}  map[string]string
// @Router       /register/resend [post]
func (h *RegistrationHandler) Resend(c *gin.Context) {
	var req struct {
		RegistrationToken string `json:"registration_token" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	err := h.service.Resend(req.RegistrationToken, time.Now())
	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{"message": "Verification code sent"})
	case errors.Is(err, services.ErrRegistrationNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "registration not found, please register"})
	case errors.Is(err, services.ErrResendThrottled):
		c.JSON(http.StatusTooManyRequests, gin.H{"error": "too many requests, try later"})
	case errors.Is(err, services.ErrMailDelivery):
		c.JSON(http.StatusBadGateway, gin.H{"error": "failed to send verification email, try again"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "resend failed"})
	}
}
