package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"cobranzas_app_echo/internal/models"
)

type DashboardHandler struct {
	db *gorm.DB
}

func NewDashboardHandler(db *gorm.DB) *DashboardHandler {
	return &DashboardHandler{db: db}
}

// Stats summarizes the month's collections: totals collected and pending,
// paid/unpaid counts, and the latest movements.
func (h *DashboardHandler) Stats(c echo.Context) error {
	now := time.Now()
	month, err := strconv.Atoi(c.QueryParam("month"))
	if err != nil || month < 1 || month > 12 {
		month = int(now.Month())
	}
	year, err := strconv.Atoi(c.QueryParam("year"))
	if err != nil {
		year = now.Year()
	}

	var payments []models.Payment
	if err := h.db.Where("year = ? AND month = ?", year, month).Find(&payments).Error; err != nil {
		return failResult(c, http.StatusInternalServerError, err.Error())
	}

	var totalCollected, totalPending float64
	countPaid, countUnpaid := 0, 0
	for _, p := range payments {
		switch p.Status {
		case models.PaymentStatusPaid:
			totalCollected += p.Amount
			countPaid++
		case models.PaymentStatusPending, models.PaymentStatusOverdue:
			totalPending += p.Amount
			countUnpaid++
		default:
			countUnpaid++
		}
	}

	var activeClients int64
	if err := h.db.Model(&models.Client{}).Where("is_active = ?", true).Count(&activeClients).Error; err != nil {
		return failResult(c, http.StatusInternalServerError, err.Error())
	}

	var recent []models.Payment
	if err := h.db.Preload("Client").
		Order("updated_at DESC").
		Limit(5).
		Find(&recent).Error; err != nil {
		return failResult(c, http.StatusInternalServerError, err.Error())
	}

	return okResult(c, map[string]interface{}{
		"year":               year,
		"month":              month,
		"total_collected":    totalCollected,
		"total_pending":      totalPending,
		"count_paid":         countPaid,
		"count_unpaid":       countUnpaid,
		"total_transactions": len(payments),
		"active_clients":     activeClients,
		"recent_payments":    recent,
	})
}
