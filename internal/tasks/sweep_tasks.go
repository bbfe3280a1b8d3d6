package tasks

import (
	"context"
	"time"

	"gorm.io/gorm"

	"cobranzas_app_echo/internal/models"
	"cobranzas_app_echo/internal/services"
)

// SweepResult reports how many rows each sweep step touched.
// A converged database yields all zeroes.
type SweepResult struct {
	PoliciesExpired      int64
	PoliciesExpiringSoon int64
	PoliciesActive       int64
	InstallmentsOverdue  int64
	PaymentsOverdue      int64
}

// Total returns the number of rows updated across all steps
func (r SweepResult) Total() int64 {
	return r.PoliciesExpired + r.PoliciesExpiringSoon + r.PoliciesActive + r.InstallmentsOverdue + r.PaymentsOverdue
}

// RunStatusSweep recomputes every derived status from the given instant:
// policy expired/expiring_soon/active from end_date and the policy alert
// window, installment overdue from due_date, and matrix cells overdue for
// past months of the current year. Cancelled policies are never touched and
// rows already at their target status are skipped, so repeated runs
// converge and then write nothing.
func RunStatusSweep(ctx context.Context, db *gorm.DB, settings models.SystemSettings, now time.Time) (SweepResult, error) {
	var result SweepResult

	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	limit := today.AddDate(0, 0, settings.PolicyAlertDays)

	res := db.WithContext(ctx).Model(&models.Policy{}).
		Where("end_date < ?", today).
		Where("status NOT IN ?", []models.PolicyStatus{models.PolicyStatusCancelled, models.PolicyStatusExpired}).
		Update("status", models.PolicyStatusExpired)
	if res.Error != nil {
		return result, res.Error
	}
	result.PoliciesExpired = res.RowsAffected

	res = db.WithContext(ctx).Model(&models.Policy{}).
		Where("end_date >= ? AND end_date <= ?", today, limit).
		Where("status NOT IN ?", []models.PolicyStatus{models.PolicyStatusCancelled, models.PolicyStatusExpiringSoon}).
		Update("status", models.PolicyStatusExpiringSoon)
	if res.Error != nil {
		return result, res.Error
	}
	result.PoliciesExpiringSoon = res.RowsAffected

	res = db.WithContext(ctx).Model(&models.Policy{}).
		Where("end_date > ?", limit).
		Where("status NOT IN ?", []models.PolicyStatus{models.PolicyStatusCancelled, models.PolicyStatusActive}).
		Update("status", models.PolicyStatusActive)
	if res.Error != nil {
		return result, res.Error
	}
	result.PoliciesActive = res.RowsAffected

	res = db.WithContext(ctx).Model(&models.PolicyInstallment{}).
		Where("due_date < ?", today).
		Where("status = ?", models.InstallmentStatusPending).
		Update("status", models.InstallmentStatusOverdue)
	if res.Error != nil {
		return result, res.Error
	}
	result.InstallmentsOverdue = res.RowsAffected

	// The collections matrix is annual: pending cells of past months of the
	// current year flip to overdue.
	res = db.WithContext(ctx).Model(&models.Payment{}).
		Where("status = ?", models.PaymentStatusPending).
		Where("year = ? AND month < ?", now.Year(), int(now.Month())).
		Update("status", models.PaymentStatusOverdue)
	if res.Error != nil {
		return result, res.Error
	}
	result.PaymentsOverdue = res.RowsAffected

	return result, nil
}

// StatusSweepTaskDef encapsulates the periodic status sweep
type StatusSweepTaskDef struct{}

// TaskID returns the unique identifier for this task
func (t *StatusSweepTaskDef) TaskID() string {
	return "policy_status_sweep"
}

// HandleExecution runs the sweep against the current wall clock
func (t *StatusSweepTaskDef) HandleExecution(ctx context.Context, db *gorm.DB, task models.ScheduledTask) (map[string]interface{}, error) {
	settings, err := services.NewSettingsService(db, nil).Get(ctx)
	if err != nil {
		return nil, err
	}

	result, err := RunStatusSweep(ctx, db, settings, time.Now())
	if err != nil {
		return nil, err
	}

	return map[string]interface{}{
		"status":                 "success",
		"policies_expired":       result.PoliciesExpired,
		"policies_expiring_soon": result.PoliciesExpiringSoon,
		"policies_active":        result.PoliciesActive,
		"installments_overdue":   result.InstallmentsOverdue,
		"payments_overdue":       result.PaymentsOverdue,
	}, nil
}

// StatusSweepTask is the singleton instance of StatusSweepTaskDef
var StatusSweepTask = &StatusSweepTaskDef{}
