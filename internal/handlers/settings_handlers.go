package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"cobranzas_app_echo/internal/models"
	"cobranzas_app_echo/internal/services"
)

type SettingsHandler struct {
	db       *gorm.DB
	settings *services.SettingsService
}

func NewSettingsHandler(db *gorm.DB, settings *services.SettingsService) *SettingsHandler {
	return &SettingsHandler{db: db, settings: settings}
}

// GetSettings returns the global configuration (defaults when unset)
func (h *SettingsHandler) GetSettings(c echo.Context) error {
	settings, err := h.settings.Get(c.Request().Context())
	if err != nil {
		return failResult(c, http.StatusInternalServerError, err.Error())
	}
	return okResult(c, settings)
}

type updateSettingsInput struct {
	PaymentAlertDays       int      `json:"payment_alert_days"`
	PolicyAlertDays        int      `json:"policy_alert_days"`
	PaymentMessageTemplate string   `json:"payment_message_template"`
	PolicyMessageTemplate  string   `json:"policy_message_template"`
	Companies              []string `json:"companies"`
}

// UpdateSettings upserts the global configuration row. Admin only.
func (h *SettingsHandler) UpdateSettings(c echo.Context) error {
	profile, err := currentProfile(h.db, c)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, err.Error())
	}
	if !profile.IsAdmin() {
		return failResult(c, http.StatusForbidden, "Only administrators can change settings")
	}

	var in updateSettingsInput
	if err := c.Bind(&in); err != nil {
		return failResult(c, http.StatusBadRequest, "Invalid JSON payload")
	}
	if in.PaymentAlertDays < 0 || in.PolicyAlertDays < 0 {
		return failResult(c, http.StatusBadRequest, "Alert windows must be non-negative")
	}

	err = h.settings.Update(c.Request().Context(), models.SystemSettings{
		PaymentAlertDays:       in.PaymentAlertDays,
		PolicyAlertDays:        in.PolicyAlertDays,
		PaymentMessageTemplate: in.PaymentMessageTemplate,
		PolicyMessageTemplate:  in.PolicyMessageTemplate,
		Companies:              in.Companies,
	})
	if err != nil {
		return failResult(c, http.StatusInternalServerError, err.Error())
	}
	return okResult(c, nil)
}
