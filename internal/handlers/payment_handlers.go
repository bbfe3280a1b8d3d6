package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"cobranzas_app_echo/internal/models"
	"cobranzas_app_echo/internal/services"
)

type PaymentHandler struct {
	db         *gorm.DB
	sync       *services.SyncService
	settings   *services.SettingsService
	collection *services.CollectionService
}

func NewPaymentHandler(db *gorm.DB, sync *services.SyncService, settings *services.SettingsService, collection *services.CollectionService) *PaymentHandler {
	return &PaymentHandler{db: db, sync: sync, settings: settings, collection: collection}
}

// RegisterPayment upserts one collections matrix cell and syncs a paid cell
// to the matching installment.
func (h *PaymentHandler) RegisterPayment(c echo.Context) error {
	profile, err := currentProfile(h.db, c)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, err.Error())
	}
	if !profile.IsAdmin() && !profile.Can("pagos_editar") {
		return failResult(c, http.StatusForbidden, "Insufficient permissions to register or edit payments")
	}

	var in services.RegisterPaymentInput
	if err := c.Bind(&in); err != nil {
		return failResult(c, http.StatusBadRequest, "Invalid JSON payload")
	}

	payment, err := h.sync.RegisterPayment(c.Request().Context(), in)
	if err != nil {
		return failResult(c, http.StatusInternalServerError, err.Error())
	}
	return okResult(c, payment)
}

// ListPaymentsByYear returns the persisted matrix rows of one year
func (h *PaymentHandler) ListPaymentsByYear(c echo.Context) error {
	year, err := strconv.Atoi(c.QueryParam("year"))
	if err != nil {
		year = time.Now().Year()
	}

	var payments []models.Payment
	if err := h.db.Where("year = ?", year).Order("month ASC").Find(&payments).Error; err != nil {
		return failResult(c, http.StatusInternalServerError, err.Error())
	}
	return okResult(c, payments)
}

// CollectionsGrid returns the full annual matrix: persisted rows plus
// virtual statuses for unrecorded covered months, recomputed per request.
func (h *PaymentHandler) CollectionsGrid(c echo.Context) error {
	year, err := strconv.Atoi(c.QueryParam("year"))
	if err != nil {
		year = time.Now().Year()
	}

	settings, err := h.settings.Get(c.Request().Context())
	if err != nil {
		return failResult(c, http.StatusInternalServerError, err.Error())
	}

	rows, err := h.collection.BuildYearGrid(c.Request().Context(), year, settings.PaymentAlertDays)
	if err != nil {
		return failResult(c, http.StatusInternalServerError, err.Error())
	}
	return okResult(c, map[string]interface{}{
		"year": year,
		"rows": rows,
	})
}

// UpcomingPayments lists pending installments inside the payment alert window
func (h *PaymentHandler) UpcomingPayments(c echo.Context) error {
	settings, err := h.settings.Get(c.Request().Context())
	if err != nil {
		return failResult(c, http.StatusInternalServerError, err.Error())
	}

	installments, err := h.collection.UpcomingInstallments(c.Request().Context(), settings.PaymentAlertDays)
	if err != nil {
		return failResult(c, http.StatusInternalServerError, err.Error())
	}
	return okResult(c, installments)
}

// ExpiringPolicies lists policies inside the policy alert window
func (h *PaymentHandler) ExpiringPolicies(c echo.Context) error {
	settings, err := h.settings.Get(c.Request().Context())
	if err != nil {
		return failResult(c, http.StatusInternalServerError, err.Error())
	}

	policies, err := h.collection.ExpiringPolicies(c.Request().Context(), settings.PolicyAlertDays)
	if err != nil {
		return failResult(c, http.StatusInternalServerError, err.Error())
	}
	return okResult(c, policies)
}
