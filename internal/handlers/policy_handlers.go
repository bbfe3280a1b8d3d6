package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"cobranzas_app_echo/internal/models"
	"cobranzas_app_echo/internal/services"
	"cobranzas_app_echo/internal/tasks"
)

type PolicyHandler struct {
	db       *gorm.DB
	sync     *services.SyncService
	settings *services.SettingsService
}

func NewPolicyHandler(db *gorm.DB, sync *services.SyncService, settings *services.SettingsService) *PolicyHandler {
	return &PolicyHandler{db: db, sync: sync, settings: settings}
}

type createPolicyInput struct {
	ClientID      uint    `json:"client_id"`
	PolicyNumber  string  `json:"policy_number"`
	Type          string  `json:"type"`
	Dominio       string  `json:"dominio"`
	StartDate     string  `json:"start_date"` // YYYY-MM-DD
	MonthlyAmount float64 `json:"monthly_amount"`
	Installments  int     `json:"installments"`
	Notes         string  `json:"notes"`
}

// ListPolicies returns all policies with client and installment schedule
func (h *PolicyHandler) ListPolicies(c echo.Context) error {
	var policies []models.Policy
	err := h.db.Preload("Client").
		Preload("PolicyInstallments", func(db *gorm.DB) *gorm.DB {
			return db.Order("policy_installments.number ASC")
		}).
		Order("created_at DESC").
		Find(&policies).Error
	if err != nil {
		return failResult(c, http.StatusInternalServerError, err.Error())
	}
	return okResult(c, policies)
}

// CreatePolicy creates a policy together with its installment schedule
func (h *PolicyHandler) CreatePolicy(c echo.Context) error {
	if _, err := requirePermission(h.db, c, "polizas_crear"); err != nil {
		return err
	}

	var in createPolicyInput
	if err := c.Bind(&in); err != nil {
		return failResult(c, http.StatusBadRequest, "Invalid JSON payload")
	}

	startDate, err := time.Parse("2006-01-02", in.StartDate)
	if err != nil {
		return failResult(c, http.StatusBadRequest, "start_date must be YYYY-MM-DD")
	}

	policy, err := h.sync.CreatePolicy(c.Request().Context(), services.CreatePolicyInput{
		ClientID:      in.ClientID,
		PolicyNumber:  in.PolicyNumber,
		Type:          models.PolicyType(in.Type),
		Dominio:       in.Dominio,
		StartDate:     startDate,
		MonthlyAmount: in.MonthlyAmount,
		Installments:  in.Installments,
		Notes:         in.Notes,
	})
	if err != nil {
		return failResult(c, http.StatusInternalServerError, err.Error())
	}
	return okResult(c, policy)
}

// CancelPolicy sets a policy to cancelled, the only user-driven status change
func (h *PolicyHandler) CancelPolicy(c echo.Context) error {
	if _, err := requirePermission(h.db, c, "polizas_editar"); err != nil {
		return err
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return failResult(c, http.StatusBadRequest, "Invalid policy ID")
	}

	if err := h.sync.CancelPolicy(c.Request().Context(), uint(id)); err != nil {
		if err == gorm.ErrRecordNotFound {
			return failResult(c, http.StatusNotFound, "Policy not found")
		}
		return failResult(c, http.StatusInternalServerError, err.Error())
	}
	return okResult(c, nil)
}

// DeletePolicy removes a policy, its installments, and the owning client's
// entire collections history (documented aggressive rule).
func (h *PolicyHandler) DeletePolicy(c echo.Context) error {
	if _, err := requirePermission(h.db, c, "polizas_eliminar"); err != nil {
		return err
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return failResult(c, http.StatusBadRequest, "Invalid policy ID")
	}

	if err := h.sync.DeletePolicy(c.Request().Context(), uint(id)); err != nil {
		if err == gorm.ErrRecordNotFound {
			return failResult(c, http.StatusNotFound, "Policy not found")
		}
		return failResult(c, http.StatusInternalServerError, err.Error())
	}
	return okResult(c, nil)
}

// PayInstallment marks one installment paid and reflects it into the
// collections matrix.
func (h *PolicyHandler) PayInstallment(c echo.Context) error {
	profile, err := currentProfile(h.db, c)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, err.Error())
	}
	if !profile.IsAdmin() && !profile.Can("pagos_editar") {
		return failResult(c, http.StatusForbidden, "Insufficient permissions to register payments")
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return failResult(c, http.StatusBadRequest, "Invalid installment ID")
	}

	if err := h.sync.PayInstallment(c.Request().Context(), uint(id)); err != nil {
		if err == services.ErrInstallmentNotFound {
			return failResult(c, http.StatusNotFound, "Installment not found")
		}
		return failResult(c, http.StatusInternalServerError, err.Error())
	}
	return okResult(c, nil)
}

// RefreshStatuses triggers the derived-status sweep on demand. The worker
// runs the same sweep on its recurring schedule.
func (h *PolicyHandler) RefreshStatuses(c echo.Context) error {
	if _, err := currentProfile(h.db, c); err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, err.Error())
	}

	settings, err := h.settings.Get(c.Request().Context())
	if err != nil {
		return failResult(c, http.StatusInternalServerError, err.Error())
	}

	result, err := tasks.RunStatusSweep(c.Request().Context(), h.db, settings, time.Now())
	if err != nil {
		return failResult(c, http.StatusInternalServerError, err.Error())
	}
	return okResult(c, result)
}
