package services

import (
	"context"
	"testing"
	"time"

	"cobranzas_app_echo/internal/models"
)

func TestBuildCoverageWindow(t *testing.T) {
	policies := []models.Policy{{
		StartDate:     time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		MonthlyAmount: 90,
		Installments:  3,
	}}

	cov := BuildCoverage(policies, 2026)
	if cov.MonthlyAmount != 90 {
		t.Errorf("monthly amount = %v, want 90", cov.MonthlyAmount)
	}
	if cov.DueDay != 1 {
		t.Errorf("due day = %d, want 1", cov.DueDay)
	}
	for m := 1; m <= 12; m++ {
		want := m >= 3 && m <= 5
		if cov.Months[m] != want {
			t.Errorf("month %d covered = %v, want %v", m, cov.Months[m], want)
		}
	}
}

func TestBuildCoverageSpansYears(t *testing.T) {
	// Nov 2025 + 6 installments covers Nov-Dec 2025 and Jan-Apr 2026
	policies := []models.Policy{{
		StartDate:    time.Date(2025, 11, 1, 0, 0, 0, 0, time.UTC),
		Installments: 6,
	}}

	cov := BuildCoverage(policies, 2026)
	for m := 1; m <= 12; m++ {
		want := m <= 4
		if cov.Months[m] != want {
			t.Errorf("2026 month %d covered = %v, want %v", m, cov.Months[m], want)
		}
	}
}

func TestCellForExplicitRowWins(t *testing.T) {
	now := time.Date(2026, 6, 15, 0, 0, 0, 0, time.UTC)
	payments := []models.Payment{{ClientID: 1, Year: 2026, Month: 2, Amount: 75, Status: models.PaymentStatusPaid}}
	cov := ClientCoverage{DueDay: 10, Months: map[int]bool{2: true}}

	// February is long past, but the persisted row takes precedence over
	// the virtual overdue derivation
	cell := CellFor(payments, cov, 2026, 2, 5, now)
	if cell == nil {
		t.Fatal("expected a cell")
	}
	if cell.Virtual {
		t.Error("cell should not be virtual")
	}
	if cell.Status != string(models.PaymentStatusPaid) || cell.Amount != 75 {
		t.Errorf("cell = %s/%v, want paid/75", cell.Status, cell.Amount)
	}
	if cell.Payment == nil {
		t.Error("explicit cell should carry its payment row")
	}
}

func TestCellForVirtualStatuses(t *testing.T) {
	now := time.Date(2026, 6, 15, 0, 0, 0, 0, time.UTC)
	cov := ClientCoverage{DueDay: 10, Months: map[int]bool{3: true, 6: true, 7: true, 11: true}}

	cases := []struct {
		name  string
		month int
		want  string // "" means no cell
	}{
		{"past month overdue", 3, VirtualStatusOverdue},
		{"current month past due day overdue", 6, VirtualStatusOverdue},
		{"next month inside alert window expiring", 7, VirtualStatusExpiring},
		{"far future month empty", 11, ""},
		{"uncovered month empty", 4, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cell := CellFor(nil, cov, 2026, tc.month, 30, now)
			if tc.want == "" {
				if cell != nil {
					t.Fatalf("got cell %+v, want nil", cell)
				}
				return
			}
			if cell == nil {
				t.Fatalf("got nil, want %s", tc.want)
			}
			if !cell.Virtual || cell.Status != tc.want {
				t.Errorf("cell = virtual=%v status=%s, want virtual %s", cell.Virtual, cell.Status, tc.want)
			}
		})
	}
}

func TestCellForExpiringOnDueDay(t *testing.T) {
	// Due day boundary: diff of zero days still counts as expiring
	now := time.Date(2026, 6, 10, 0, 0, 0, 0, time.UTC)
	cov := ClientCoverage{DueDay: 10, Months: map[int]bool{6: true}}

	cell := CellFor(nil, cov, 2026, 6, 5, now)
	if cell == nil || cell.Status != VirtualStatusExpiring {
		t.Fatalf("got %+v, want expiring cell", cell)
	}
}

func TestBuildYearGrid(t *testing.T) {
	db := newTestDB(t)
	now := time.Date(2026, 3, 20, 0, 0, 0, 0, time.UTC)
	svc := NewCollectionService(db, fixedClock(now))
	client := createTestClient(t, db, "Marta Gil")

	policy := models.Policy{
		ClientID: client.ID, PolicyNumber: "POL-GRID",
		StartDate: time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2026, 7, 10, 0, 0, 0, 0, time.UTC),
		Status:    models.PolicyStatusActive, Installments: 6, MonthlyAmount: 100,
	}
	if err := db.Create(&policy).Error; err != nil {
		t.Fatal(err)
	}
	payment := models.Payment{ClientID: client.ID, Year: 2026, Month: 1, Amount: 100, Status: models.PaymentStatusPaid}
	if err := db.Create(&payment).Error; err != nil {
		t.Fatal(err)
	}

	rows, err := svc.BuildYearGrid(context.Background(), 2026, 5)
	if err != nil {
		t.Fatalf("BuildYearGrid failed: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("got %d rows, want 1", len(rows))
	}
	row := rows[0]
	if row.MonthlyAmount != 100 {
		t.Errorf("monthly amount = %v, want 100", row.MonthlyAmount)
	}

	// January persisted paid, February and March virtual overdue,
	// uncovered/far months empty
	if c := row.Cells[0]; c == nil || c.Virtual || c.Status != string(models.PaymentStatusPaid) {
		t.Errorf("january cell = %+v, want persisted paid", c)
	}
	for _, m := range []int{2, 3} {
		if c := row.Cells[m-1]; c == nil || !c.Virtual || c.Status != VirtualStatusOverdue {
			t.Errorf("month %d cell = %+v, want virtual overdue", m, c)
		}
	}
	for _, m := range []int{8, 12} {
		if c := row.Cells[m-1]; c != nil {
			t.Errorf("month %d cell = %+v, want nil (not covered)", m, c)
		}
	}
}

func TestBuildYearGridSkipsInactiveClients(t *testing.T) {
	db := newTestDB(t)
	svc := NewCollectionService(db, fixedClock(time.Date(2026, 3, 20, 0, 0, 0, 0, time.UTC)))

	client := createTestClient(t, db, "Nora Paez")
	if err := db.Model(&models.Client{}).Where("id = ?", client.ID).Update("is_active", false).Error; err != nil {
		t.Fatal(err)
	}

	rows, err := svc.BuildYearGrid(context.Background(), 2026, 5)
	if err != nil {
		t.Fatalf("BuildYearGrid failed: %v", err)
	}
	if len(rows) != 0 {
		t.Errorf("got %d rows, want 0", len(rows))
	}
}

func TestUpcomingInstallments(t *testing.T) {
	db := newTestDB(t)
	now := time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)
	svc := NewCollectionService(db, fixedClock(now))
	client := createTestClient(t, db, "Oscar Rey")

	policy := models.Policy{
		ClientID: client.ID, PolicyNumber: "POL-UPC",
		StartDate: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC),
		Status:    models.PolicyStatusActive, Installments: 12,
	}
	if err := db.Create(&policy).Error; err != nil {
		t.Fatal(err)
	}

	mk := func(n int, due time.Time, status models.InstallmentStatus) {
		inst := models.PolicyInstallment{PolicyID: policy.ID, Number: n, DueDate: due, Status: status}
		if err := db.Create(&inst).Error; err != nil {
			t.Fatal(err)
		}
	}
	mk(1, time.Date(2026, 3, 25, 0, 0, 0, 0, time.UTC), models.InstallmentStatusPending) // before today
	mk(2, time.Date(2026, 4, 3, 0, 0, 0, 0, time.UTC), models.InstallmentStatusPending)  // inside window
	mk(3, time.Date(2026, 4, 5, 0, 0, 0, 0, time.UTC), models.InstallmentStatusPaid)     // paid, excluded
	mk(4, time.Date(2026, 4, 6, 0, 0, 0, 0, time.UTC), models.InstallmentStatusPending)  // window edge (today+5)
	mk(5, time.Date(2026, 4, 20, 0, 0, 0, 0, time.UTC), models.InstallmentStatusPending) // beyond window

	got, err := svc.UpcomingInstallments(context.Background(), 5)
	if err != nil {
		t.Fatalf("UpcomingInstallments failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d installments, want 2", len(got))
	}
	if got[0].Number != 2 || got[1].Number != 4 {
		t.Errorf("numbers = %d, %d, want 2, 4 (soonest first)", got[0].Number, got[1].Number)
	}
	if got[0].Policy.Client.ID != client.ID {
		t.Error("expected the client preloaded through the policy")
	}
}

func TestExpiringPoliciesExcludesCancelled(t *testing.T) {
	db := newTestDB(t)
	now := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	svc := NewCollectionService(db, fixedClock(now))
	client := createTestClient(t, db, "Paula Vidal")

	mk := func(number string, end time.Time, status models.PolicyStatus) {
		p := models.Policy{
			ClientID: client.ID, PolicyNumber: number,
			StartDate: end.AddDate(-1, 0, 0), EndDate: end,
			Status: status, Installments: 12,
		}
		if err := db.Create(&p).Error; err != nil {
			t.Fatal(err)
		}
	}
	mk("POL-A", time.Date(2026, 4, 10, 0, 0, 0, 0, time.UTC), models.PolicyStatusExpiringSoon)
	mk("POL-B", time.Date(2026, 4, 12, 0, 0, 0, 0, time.UTC), models.PolicyStatusCancelled)
	mk("POL-C", time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC), models.PolicyStatusActive)

	got, err := svc.ExpiringPolicies(context.Background(), 15)
	if err != nil {
		t.Fatalf("ExpiringPolicies failed: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("got %d policies, want 1", len(got))
	}
	if got[0].PolicyNumber != "POL-A" {
		t.Errorf("policy = %s, want POL-A", got[0].PolicyNumber)
	}
}
