package handlers

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"courtbook/internal/pdf"
	"courtbook/internal/services"
)

type ReportHandler struct {
	Service *services.ReportService
	PDF     pdf.Generator
}

func NewReportHandler(service *services.ReportService, gen pdf.Generator) *ReportHandler {
	return &ReportHandler{Service: service, PDF: gen}
}

// @Summary      Reservations report
// @Description  Totals, top users, popular slots and the last-24h elapsed list
// @Tags         Admin
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  models.ReservationSummary
// @Router       /admin/reservations [get]
func (h *ReportHandler) GetSummary(c *gin.Context) {
	data, err := h.Service.GetSummary(time.Now())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, data)
}

// @Summary      Recently elapsed reservations
// @Description  Reservations whose end instant falls within the last 24 hours
// @Tags         Admin
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}  models.Reservation
// @Router       /admin/reservations/recent [get]
func (h *ReportHandler) RecentlyElapsed(c *gin.Context) {
	data, err := h.Service.RecentlyElapsed(time.Now())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, data)
}

// @Summary      Export reservations report as PDF
// @Tags         Admin
// @Produce      application/pdf
// @Security     BearerAuth
// @Success      200  {file}    file
// @Router       /admin/reservations/export [get]
func (h *ReportHandler) ExportPDF(c *gin.Context) {
	now := time.Now()
	summary, err := h.Service.GetSummary(now)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	all, err := h.Service.AllReservations()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	path, err := h.PDF.GenerateReservationsReport(pdf.ReportData{
		GeneratedAt:  now,
		Summary:      summary,
		Reservations: all,
	})
	if err != nil {
		log.Printf("[report][export] pdf generation failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "export failed"})
		return
	}
	c.FileAttachment(path, "reservations_report.pdf")
}
