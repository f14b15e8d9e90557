package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"courtbook/internal/models"
	"courtbook/internal/services"
)

const dateLayout = "2006-01-02"

type ReservationHandler struct {
	service services.ReservationService
}

func NewReservationHandler(service services.ReservationService) *ReservationHandler {
	return &ReservationHandler{service: service}
}

// @Summary      Upcoming reservations
// @Description  The caller's active reservations plus the shared upcoming board
// @Tags         Reservations
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  map[string]interface{}
// @Router       /reservations/upcoming [get]
func (h *ReservationHandler) Upcoming(c *gin.Context) {
	userID, _ := getUserAndRole(c)
	now := time.Now()

	mine, err := h.service.UpcomingForUser(userID, now)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load reservations"})
		return
	}
	board, err := h.service.Upcoming(now)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load reservations"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"mine": mine, "upcoming": board})
}

// @Summary      Slot availability
// @Description  Free and taken slots for a date (defaults to today)
// @Tags         Reservations
// @Produce      json
// @Security     BearerAuth
// @Param        date  query     string  false  "Date (YYYY-MM-DD)"
// @Success      200   {object}  map[string]interface{}
// @Failure      400   {object}  map[string]string
// @Router       /reservations/availability [get]
func (h *ReservationHandler) Availability(c *gin.Context) {
	now := time.Now()
	dateStr := c.DefaultQuery("date", now.Format(dateLayout))
	date, err := time.ParseInLocation(dateLayout, dateStr, now.Location())
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid date, expected YYYY-MM-DD"})
		return
	}

	free, taken, err := h.service.AvailableSlots(date, now)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load availability"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"date":  dateStr,
		"free":  free,
		"taken": taken,
	})
}

// @Summary      Book a slot
// @Tags         Reservations
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        booking  body      models.BookingRequest  true  "Date and time slot"
// @Success      201  {object}  models.Reservation
// @Failure      400  {object}  map[string]string
// @Failure      409  {object}  map[string]string
// @Router       /reservations [post]
func (h *ReservationHandler) Book(c *gin.Context) {
	userID, _ := getUserAndRole(c)

	var req models.BookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	now := time.Now()
	date, err := time.ParseInLocation(dateLayout, req.Date, now.Location())
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid date, expected YYYY-MM-DD"})
		return
	}

	res, err := h.service.Book(userID, date, req.TimeSlot, now)
	switch {
	case err == nil:
		c.JSON(http.StatusCreated, res)
	case errors.Is(err, services.ErrPastDate):
		c.JSON(http.StatusBadRequest, gin.H{"error": "date is in the past"})
	case errors.Is(err, services.ErrHorizonExceeded):
		c.JSON(http.StatusBadRequest, gin.H{"error": "reservations are limited to 48 hours ahead"})
	case errors.Is(err, services.ErrDuplicateActiveReservation):
		c.JSON(http.StatusConflict, gin.H{"error": "you already have an active reservation"})
	case errors.Is(err, services.ErrSlotTaken):
		c.JSON(http.StatusConflict, gin.H{"error": "slot is not available"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "booking failed"})
	}
}

// @Summary      Cancel a reservation
// @Description  Owner or administrator only
// @Tags         Reservations
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Reservation ID"
// @Success      200  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /reservations/{id} [delete]
func (h *ReservationHandler) Cancel(c *gin.Context) {
	userID, roleID := getUserAndRole(c)

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid reservation id"})
		return
	}

	err = h.service.Cancel(id, userID, roleID)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{"message": "Reservation cancelled"})
	case errors.Is(err, services.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "reservation not found"})
	case errors.Is(err, services.ErrNotAuthorized):
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "cancel failed"})
	}
}
