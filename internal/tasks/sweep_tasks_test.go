package tasks

import (
	"context"
	"testing"
	"time"

	"gorm.io/gorm"

	"cobranzas_app_echo/internal/models"
)

func seedSweepClient(t *testing.T, db *gorm.DB) models.Client {
	t.Helper()
	client := models.Client{FullName: "Sweep Client", DNI: "dni-" + t.Name(), IsActive: true}
	if err := db.Create(&client).Error; err != nil {
		t.Fatal(err)
	}
	return client
}

func seedPolicy(t *testing.T, db *gorm.DB, clientID uint, number string, end time.Time, status models.PolicyStatus) models.Policy {
	t.Helper()
	p := models.Policy{
		ClientID:     clientID,
		PolicyNumber: number,
		StartDate:    end.AddDate(-1, 0, 0),
		EndDate:      end,
		Status:       status,
		Installments: 12,
	}
	if err := db.Create(&p).Error; err != nil {
		t.Fatal(err)
	}
	return p
}

func TestRunStatusSweep(t *testing.T) {
	db := newTestDB(t)
	client := seedSweepClient(t, db)
	now := time.Date(2026, 6, 15, 9, 0, 0, 0, time.UTC)
	settings := models.DefaultSystemSettings() // policy window 15 days

	ended := seedPolicy(t, db, client.ID, "POL-ENDED", time.Date(2026, 6, 14, 0, 0, 0, 0, time.UTC), models.PolicyStatusActive)
	ending := seedPolicy(t, db, client.ID, "POL-ENDING", time.Date(2026, 6, 25, 0, 0, 0, 0, time.UTC), models.PolicyStatusActive)
	healthy := seedPolicy(t, db, client.ID, "POL-HEALTHY", time.Date(2026, 12, 1, 0, 0, 0, 0, time.UTC), models.PolicyStatusExpiringSoon)

	pastDue := models.PolicyInstallment{PolicyID: healthy.ID, Number: 1, DueDate: time.Date(2026, 6, 14, 0, 0, 0, 0, time.UTC), Status: models.InstallmentStatusPending}
	dueToday := models.PolicyInstallment{PolicyID: healthy.ID, Number: 2, DueDate: time.Date(2026, 6, 15, 0, 0, 0, 0, time.UTC), Status: models.InstallmentStatusPending}
	paid := models.PolicyInstallment{PolicyID: healthy.ID, Number: 3, DueDate: time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC), Status: models.InstallmentStatusPaid}
	for _, inst := range []*models.PolicyInstallment{&pastDue, &dueToday, &paid} {
		if err := db.Create(inst).Error; err != nil {
			t.Fatal(err)
		}
	}

	pastCell := models.Payment{ClientID: client.ID, Year: 2026, Month: 4, Status: models.PaymentStatusPending}
	currentCell := models.Payment{ClientID: client.ID, Year: 2026, Month: 6, Status: models.PaymentStatusPending}
	lastYearCell := models.Payment{ClientID: client.ID, Year: 2025, Month: 4, Status: models.PaymentStatusPending}
	for _, p := range []*models.Payment{&pastCell, &currentCell, &lastYearCell} {
		if err := db.Create(p).Error; err != nil {
			t.Fatal(err)
		}
	}

	result, err := RunStatusSweep(context.Background(), db, settings, now)
	if err != nil {
		t.Fatalf("RunStatusSweep failed: %v", err)
	}
	if result.PoliciesExpired != 1 || result.PoliciesExpiringSoon != 1 || result.PoliciesActive != 1 {
		t.Errorf("policy counts = %d/%d/%d, want 1/1/1", result.PoliciesExpired, result.PoliciesExpiringSoon, result.PoliciesActive)
	}
	if result.InstallmentsOverdue != 1 {
		t.Errorf("installments overdue = %d, want 1 (due today is not overdue yet)", result.InstallmentsOverdue)
	}
	if result.PaymentsOverdue != 1 {
		t.Errorf("payments overdue = %d, want 1 (only past months of the current year)", result.PaymentsOverdue)
	}

	checkPolicy := func(id uint, want models.PolicyStatus) {
		var got models.Policy
		db.First(&got, id)
		if got.Status != want {
			t.Errorf("policy %d status = %s, want %s", id, got.Status, want)
		}
	}
	checkPolicy(ended.ID, models.PolicyStatusExpired)
	checkPolicy(ending.ID, models.PolicyStatusExpiringSoon)
	checkPolicy(healthy.ID, models.PolicyStatusActive)

	var gotInst models.PolicyInstallment
	db.First(&gotInst, pastDue.ID)
	if gotInst.Status != models.InstallmentStatusOverdue {
		t.Errorf("past-due installment = %s, want overdue", gotInst.Status)
	}
	gotInst = models.PolicyInstallment{}
	db.First(&gotInst, dueToday.ID)
	if gotInst.Status != models.InstallmentStatusPending {
		t.Errorf("due-today installment = %s, want pending", gotInst.Status)
	}

	var gotCell models.Payment
	db.First(&gotCell, pastCell.ID)
	if gotCell.Status != models.PaymentStatusOverdue {
		t.Errorf("past-month cell = %s, want overdue", gotCell.Status)
	}
	gotCell = models.Payment{}
	db.First(&gotCell, currentCell.ID)
	if gotCell.Status != models.PaymentStatusPending {
		t.Errorf("current-month cell = %s, want pending", gotCell.Status)
	}
	gotCell = models.Payment{}
	db.First(&gotCell, lastYearCell.ID)
	if gotCell.Status != models.PaymentStatusPending {
		t.Errorf("last-year cell = %s, want pending (sweep scope is the current year)", gotCell.Status)
	}
}

func TestRunStatusSweepConverges(t *testing.T) {
	db := newTestDB(t)
	client := seedSweepClient(t, db)
	now := time.Date(2026, 6, 15, 9, 0, 0, 0, time.UTC)
	settings := models.DefaultSystemSettings()

	seedPolicy(t, db, client.ID, "POL-1", time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC), models.PolicyStatusActive)
	seedPolicy(t, db, client.ID, "POL-2", time.Date(2026, 6, 20, 0, 0, 0, 0, time.UTC), models.PolicyStatusActive)

	first, err := RunStatusSweep(context.Background(), db, settings, now)
	if err != nil {
		t.Fatalf("first sweep failed: %v", err)
	}
	if first.Total() == 0 {
		t.Fatal("first sweep should have updated rows")
	}

	second, err := RunStatusSweep(context.Background(), db, settings, now)
	if err != nil {
		t.Fatalf("second sweep failed: %v", err)
	}
	if second.Total() != 0 {
		t.Errorf("second sweep updated %d rows, want 0", second.Total())
	}
}

func TestRunStatusSweepPreservesCancelled(t *testing.T) {
	db := newTestDB(t)
	client := seedSweepClient(t, db)
	now := time.Date(2026, 6, 15, 9, 0, 0, 0, time.UTC)

	// Cancelled policies stay cancelled no matter where the end date falls
	expiredCancelled := seedPolicy(t, db, client.ID, "POL-CX1", time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), models.PolicyStatusCancelled)
	futureCancelled := seedPolicy(t, db, client.ID, "POL-CX2", time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC), models.PolicyStatusCancelled)

	result, err := RunStatusSweep(context.Background(), db, models.DefaultSystemSettings(), now)
	if err != nil {
		t.Fatalf("RunStatusSweep failed: %v", err)
	}
	if result.Total() != 0 {
		t.Errorf("sweep updated %d rows, want 0", result.Total())
	}

	for _, id := range []uint{expiredCancelled.ID, futureCancelled.ID} {
		var got models.Policy
		db.First(&got, id)
		if got.Status != models.PolicyStatusCancelled {
			t.Errorf("policy %d status = %s, want cancelled", id, got.Status)
		}
	}
}
