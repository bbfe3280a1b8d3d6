package services

import (
	"context"
	"math"
	"time"

	"gorm.io/gorm"

	"cobranzas_app_echo/internal/models"
)

// Virtual grid cell statuses, computed at read time and never persisted
const (
	VirtualStatusOverdue  = "overdue"
	VirtualStatusExpiring = "expiring"
)

// GridCell is one cell of the annual collections matrix. Virtual cells have
// no backing payment row; their status is derived from policy coverage and
// the configured alert window on every read.
type GridCell struct {
	Status  string          `json:"status"`
	Amount  float64         `json:"amount"`
	Virtual bool            `json:"virtual"`
	Payment *models.Payment `json:"payment,omitempty"`
}

// ClientCoverage summarizes a client's active policies for one grid year
type ClientCoverage struct {
	MonthlyAmount float64
	DueDay        int
	Months        map[int]bool // covered months (1-12) of the grid year
}

// GridRow is one client row of the collections matrix
type GridRow struct {
	Client        models.Client `json:"client"`
	MonthlyAmount float64       `json:"monthly_amount"`
	Cells         [12]*GridCell `json:"cells"`
}

// CollectionService derives the annual collections matrix and the alert
// listings from persisted payments, policies and settings.
type CollectionService struct {
	db    *gorm.DB
	clock Clock
}

func NewCollectionService(db *gorm.DB, clock Clock) *CollectionService {
	if clock == nil {
		clock = SystemClock
	}
	return &CollectionService{db: db, clock: clock}
}

// BuildCoverage folds a client's policies into per-year coverage info.
// The due day proxy is the start-date day of the last policy seen, as the
// grid has no per-policy due day.
func BuildCoverage(policies []models.Policy, year int) ClientCoverage {
	cov := ClientCoverage{DueDay: 10, Months: make(map[int]bool)}
	for _, p := range policies {
		cov.MonthlyAmount += p.MonthlyAmount
		cov.DueDay = p.DueDay()
		for m := 1; m <= 12; m++ {
			if p.CoversMonth(year, time.Month(m)) {
				cov.Months[m] = true
			}
		}
	}
	return cov
}

// CellFor resolves one (client, year, month) cell. An explicit payment row
// always wins; otherwise a covered month derives a virtual overdue/expiring
// status from the due day and the payment alert window. Uncovered months
// with no row stay empty (nil).
func CellFor(payments []models.Payment, cov ClientCoverage, year, month, alertDays int, now time.Time) *GridCell {
	for i := range payments {
		p := payments[i]
		if p.Year == year && p.Month == month {
			return &GridCell{Status: string(p.Status), Amount: p.Amount, Payment: &payments[i]}
		}
	}

	if !cov.Months[month] {
		return nil
	}

	dueDate := time.Date(year, time.Month(month), cov.DueDay, 0, 0, 0, 0, now.Location())
	diffDays := int(math.Ceil(dueDate.Sub(now).Hours() / 24))

	cellIdx := year*12 + month - 1
	nowIdx := now.Year()*12 + int(now.Month()) - 1

	if cellIdx < nowIdx || (cellIdx == nowIdx && diffDays < 0) {
		return &GridCell{Status: VirtualStatusOverdue, Virtual: true}
	}
	if diffDays >= 0 && diffDays <= alertDays {
		return &GridCell{Status: VirtualStatusExpiring, Virtual: true}
	}
	return nil
}

// BuildYearGrid assembles the collections matrix for every active client:
// explicit payment rows plus virtual statuses for unrecorded covered months.
func (s *CollectionService) BuildYearGrid(ctx context.Context, year, alertDays int) ([]GridRow, error) {
	var clients []models.Client
	err := s.db.WithContext(ctx).
		Preload("Payments", "year = ?", year).
		Where("is_active = ?", true).
		Order("full_name ASC").
		Find(&clients).Error
	if err != nil {
		return nil, err
	}

	var policies []models.Policy
	err = s.db.WithContext(ctx).
		Where("status IN ?", []models.PolicyStatus{models.PolicyStatusActive, models.PolicyStatusExpiringSoon}).
		Find(&policies).Error
	if err != nil {
		return nil, err
	}

	byClient := make(map[uint][]models.Policy)
	for _, p := range policies {
		byClient[p.ClientID] = append(byClient[p.ClientID], p)
	}

	now := s.clock()
	rows := make([]GridRow, 0, len(clients))
	for _, c := range clients {
		cov := BuildCoverage(byClient[c.ID], year)
		row := GridRow{Client: c, MonthlyAmount: cov.MonthlyAmount}
		for m := 1; m <= 12; m++ {
			row.Cells[m-1] = CellFor(c.Payments, cov, year, m, alertDays, now)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// UpcomingInstallments lists pending installments due within the payment
// alert window, soonest first.
func (s *CollectionService) UpcomingInstallments(ctx context.Context, alertDays int) ([]models.PolicyInstallment, error) {
	now := s.clock()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	limit := today.AddDate(0, 0, alertDays)

	var installments []models.PolicyInstallment
	err := s.db.WithContext(ctx).
		Preload("Policy").Preload("Policy.Client").
		Where("status = ?", models.InstallmentStatusPending).
		Where("due_date >= ? AND due_date <= ?", today, limit).
		Order("due_date ASC").
		Find(&installments).Error
	return installments, err
}

// ExpiringPolicies lists non-cancelled policies whose end date falls within
// the policy alert window.
func (s *CollectionService) ExpiringPolicies(ctx context.Context, alertDays int) ([]models.Policy, error) {
	now := s.clock()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	limit := today.AddDate(0, 0, alertDays)

	var policies []models.Policy
	err := s.db.WithContext(ctx).
		Preload("Client").
		Where("end_date >= ? AND end_date <= ?", today, limit).
		Where("status <> ?", models.PolicyStatusCancelled).
		Order("end_date ASC").
		Find(&policies).Error
	return policies, err
}
