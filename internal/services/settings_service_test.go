package services

import (
	"context"
	"testing"

	"cobranzas_app_echo/internal/models"
)

func TestSettingsDefaultsWhenMissing(t *testing.T) {
	db := newTestDB(t)
	svc := NewSettingsService(db, nil)

	got, err := svc.Get(context.Background())
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}

	want := models.DefaultSystemSettings()
	if got.PaymentAlertDays != want.PaymentAlertDays || got.PolicyAlertDays != want.PolicyAlertDays {
		t.Errorf("alert windows = %d/%d, want %d/%d",
			got.PaymentAlertDays, got.PolicyAlertDays, want.PaymentAlertDays, want.PolicyAlertDays)
	}
	if got.PaymentMessageTemplate == "" || got.PolicyMessageTemplate == "" {
		t.Error("default templates must not be empty")
	}

	// The defaults fallback is read-only: no row gets created
	var count int64
	db.Model(&models.SystemSettings{}).Count(&count)
	if count != 0 {
		t.Errorf("settings rows = %d, want 0", count)
	}
}

func TestSettingsUpdateThenGet(t *testing.T) {
	db := newTestDB(t)
	svc := NewSettingsService(db, nil)

	in := models.DefaultSystemSettings()
	in.PaymentAlertDays = 7
	in.Companies = []string{"Federacion Patronal", "Sancor"}
	if err := svc.Update(context.Background(), in); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	got, err := svc.Get(context.Background())
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.PaymentAlertDays != 7 {
		t.Errorf("payment alert days = %d, want 7", got.PaymentAlertDays)
	}
	if len(got.Companies) != 2 || got.Companies[0] != "Federacion Patronal" {
		t.Errorf("companies = %v", got.Companies)
	}

	// Updating again keeps the single global row
	in.PaymentAlertDays = 9
	if err := svc.Update(context.Background(), in); err != nil {
		t.Fatalf("second Update failed: %v", err)
	}
	var count int64
	db.Model(&models.SystemSettings{}).Count(&count)
	if count != 1 {
		t.Errorf("settings rows = %d, want 1", count)
	}
	got, _ = svc.Get(context.Background())
	if got.PaymentAlertDays != 9 {
		t.Errorf("payment alert days = %d, want 9", got.PaymentAlertDays)
	}
}
