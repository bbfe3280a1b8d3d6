package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"cobranzas_app_echo/internal/models"
)

// ErrInstallmentNotFound is returned when paying an installment that does not exist
var ErrInstallmentNotFound = fmt.Errorf("installment not found")

// SyncService keeps the collections matrix ("payments") and the per-policy
// installment schedule consistent with each other. Marking a period paid in
// either representation reflects into the other; months with no counterpart
// record are silently skipped.
type SyncService struct {
	db    *gorm.DB
	clock Clock
}

func NewSyncService(db *gorm.DB, clock Clock) *SyncService {
	if clock == nil {
		clock = SystemClock
	}
	return &SyncService{db: db, clock: clock}
}

// SyncPaymentToInstallment reflects a paid matrix cell into the matching
// pending installment of the client's active policies. Only a "paid" status
// triggers any work. When several installments fall due in the same period,
// the earliest policy start date wins, then the lowest installment number.
// No matching installment is a valid case (manual/legacy payments) and not
// an error. At most one installment row is updated.
func (s *SyncService) SyncPaymentToInstallment(tx *gorm.DB, clientID uint, year, month int, status models.PaymentStatus) error {
	if status != models.PaymentStatusPaid {
		return nil
	}

	var installments []models.PolicyInstallment
	err := tx.
		Joins("JOIN policies ON policies.id = policy_installments.policy_id").
		Where("policies.client_id = ?", clientID).
		Where("policies.status IN ?", []models.PolicyStatus{models.PolicyStatusActive, models.PolicyStatusExpiringSoon}).
		Where("policy_installments.status = ?", models.InstallmentStatusPending).
		Order("policies.start_date ASC, policy_installments.number ASC").
		Find(&installments).Error
	if err != nil {
		return err
	}

	for _, inst := range installments {
		if inst.DueDate.Year() == year && int(inst.DueDate.Month()) == month {
			now := s.clock()
			return tx.Model(&models.PolicyInstallment{}).
				Where("id = ?", inst.ID).
				Updates(map[string]interface{}{
					"status":  models.InstallmentStatusPaid,
					"paid_at": &now,
				}).Error
		}
	}

	return nil
}

// SyncInstallmentToPayment reflects a paid installment into the collections
// matrix, upserting the (client, year, month) cell as paid. Idempotent:
// repeating the call leaves a single identical row.
func (s *SyncService) SyncInstallmentToPayment(tx *gorm.DB, clientID uint, dueDate time.Time, amount float64) error {
	now := s.clock()
	payment := models.Payment{
		ClientID: clientID,
		Year:     dueDate.Year(),
		Month:    int(dueDate.Month()),
		Amount:   amount,
		Status:   models.PaymentStatusPaid,
		PaidAt:   &now,
	}
	return tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "client_id"}, {Name: "year"}, {Name: "month"}},
		DoUpdates: clause.AssignmentColumns([]string{"amount", "status", "paid_at", "updated_at"}),
	}).Create(&payment).Error
}

// CreatePolicyInput carries the fields accepted for a new policy
type CreatePolicyInput struct {
	ClientID      uint              `json:"client_id"`
	PolicyNumber  string            `json:"policy_number"`
	Type          models.PolicyType `json:"type"`
	Dominio       string            `json:"dominio"`
	StartDate     time.Time         `json:"start_date"`
	MonthlyAmount float64           `json:"monthly_amount"`
	Installments  int               `json:"installments"`
	Notes         string            `json:"notes"`
}

// CreatePolicy inserts the policy and its installment schedule in a single
// transaction. End date is fixed at start date + installments months and is
// never recomputed. Installments due before the current month are dropped;
// the current-month installment, if any, is created already paid and
// reflected into the collections matrix.
func (s *SyncService) CreatePolicy(ctx context.Context, in CreatePolicyInput) (*models.Policy, error) {
	if in.Installments < 1 {
		return nil, fmt.Errorf("installments must be at least 1")
	}
	if in.ClientID == 0 {
		return nil, fmt.Errorf("client_id is required")
	}

	number := strings.TrimSpace(in.PolicyNumber)
	if number == "" {
		number = "POL-" + strings.ToUpper(uuid.New().String()[:8])
	}

	policy := &models.Policy{
		ClientID:      in.ClientID,
		PolicyNumber:  number,
		Type:          in.Type,
		Dominio:       strings.ToUpper(strings.TrimSpace(in.Dominio)),
		StartDate:     in.StartDate,
		EndDate:       in.StartDate.AddDate(0, in.Installments, 0),
		MonthlyAmount: in.MonthlyAmount,
		Installments:  in.Installments,
		Status:        models.PolicyStatusActive,
		Notes:         in.Notes,
	}

	now := s.clock()
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(policy).Error; err != nil {
			return err
		}

		rows, paidRow := buildInstallmentRows(policy, now)
		if len(rows) > 0 {
			if err := tx.Create(&rows).Error; err != nil {
				return err
			}
		}

		// Reflect the pre-paid current-month installment into the matrix
		if paidRow != nil {
			return s.SyncInstallmentToPayment(tx, policy.ClientID, paidRow.DueDate, paidRow.Amount)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return policy, nil
}

// buildInstallmentRows generates the installment schedule for a policy:
// one row per month, due date = start date + i months. Months already past
// are skipped; the current month comes back pre-marked paid.
func buildInstallmentRows(policy *models.Policy, now time.Time) ([]models.PolicyInstallment, *models.PolicyInstallment) {
	currentIdx := now.Year()*12 + int(now.Month()) - 1

	var rows []models.PolicyInstallment
	var paidRow *models.PolicyInstallment
	for i := 0; i < policy.Installments; i++ {
		dueDate := policy.StartDate.AddDate(0, i, 0)
		dueIdx := dueDate.Year()*12 + int(dueDate.Month()) - 1

		if dueIdx < currentIdx {
			continue
		}

		row := models.PolicyInstallment{
			PolicyID: policy.ID,
			Number:   i + 1,
			DueDate:  dueDate,
			Amount:   policy.MonthlyAmount,
			Status:   models.InstallmentStatusPending,
		}
		if dueIdx == currentIdx {
			paidAt := now
			row.Status = models.InstallmentStatusPaid
			row.PaidAt = &paidAt
		}
		rows = append(rows, row)
		if dueIdx == currentIdx {
			paidRow = &rows[len(rows)-1]
		}
	}
	return rows, paidRow
}

// RegisterPaymentInput carries one collections matrix cell write
type RegisterPaymentInput struct {
	ClientID uint                 `json:"client_id"`
	Year     int                  `json:"year"`
	Month    int                  `json:"month"`
	Amount   float64              `json:"amount"`
	Status   models.PaymentStatus `json:"status"`
}

// RegisterPayment upserts a collections matrix cell keyed on
// (client, year, month) and, when the cell is marked paid, reflects it into
// the matching pending installment. Both writes share one transaction.
func (s *SyncService) RegisterPayment(ctx context.Context, in RegisterPaymentInput) (*models.Payment, error) {
	if in.Month < 1 || in.Month > 12 {
		return nil, fmt.Errorf("month must be between 1 and 12")
	}
	switch in.Status {
	case models.PaymentStatusPaid, models.PaymentStatusPending, models.PaymentStatusOverdue, models.PaymentStatusNotApplicable:
	default:
		return nil, fmt.Errorf("invalid payment status %q", in.Status)
	}

	now := s.clock()
	var paidAt *time.Time
	if in.Status == models.PaymentStatusPaid {
		paidAt = &now
	}

	payment := &models.Payment{
		ClientID: in.ClientID,
		Year:     in.Year,
		Month:    in.Month,
		Amount:   in.Amount,
		Status:   in.Status,
		PaidAt:   paidAt,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "client_id"}, {Name: "year"}, {Name: "month"}},
			DoUpdates: clause.AssignmentColumns([]string{"amount", "status", "paid_at", "updated_at"}),
		}).Create(payment).Error; err != nil {
			return err
		}

		return s.SyncPaymentToInstallment(tx, in.ClientID, in.Year, in.Month, in.Status)
	})
	if err != nil {
		return nil, err
	}
	return payment, nil
}

// PayInstallment marks a single installment paid and reflects it into the
// collections matrix, in one transaction. Paying an installment that does
// not exist is an explicit error, unlike the silent sync no-ops.
func (s *SyncService) PayInstallment(ctx context.Context, installmentID uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var inst models.PolicyInstallment
		if err := tx.Preload("Policy").First(&inst, installmentID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return ErrInstallmentNotFound
			}
			return err
		}

		now := s.clock()
		if err := tx.Model(&models.PolicyInstallment{}).
			Where("id = ?", inst.ID).
			Updates(map[string]interface{}{
				"status":  models.InstallmentStatusPaid,
				"paid_at": &now,
			}).Error; err != nil {
			return err
		}

		return s.SyncInstallmentToPayment(tx, inst.Policy.ClientID, inst.DueDate, inst.Amount)
	})
}

// CancelPolicy is the only direct policy status mutation; every other
// transition belongs to the sweep.
func (s *SyncService) CancelPolicy(ctx context.Context, policyID uint) error {
	res := s.db.WithContext(ctx).Model(&models.Policy{}).
		Where("id = ?", policyID).
		Update("status", models.PolicyStatusCancelled)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// DeletePolicy removes a policy, its installments, and every collections
// matrix row of the owning client. Deleting the whole client history is the
// documented (aggressive) business rule, not a bug.
func (s *SyncService) DeletePolicy(ctx context.Context, policyID uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var policy models.Policy
		if err := tx.First(&policy, policyID).Error; err != nil {
			return err
		}

		if err := tx.Where("client_id = ?", policy.ClientID).Delete(&models.Payment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("policy_id = ?", policy.ID).Delete(&models.PolicyInstallment{}).Error; err != nil {
			return err
		}
		return tx.Delete(&policy).Error
	})
}
