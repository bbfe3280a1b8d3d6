package models

import (
	"testing"
	"time"
)

func TestCoversMonth(t *testing.T) {
	p := Policy{
		StartDate:    time.Date(2025, 11, 1, 0, 0, 0, 0, time.UTC),
		Installments: 6,
	}

	cases := []struct {
		year  int
		month time.Month
		want  bool
	}{
		{2025, time.October, false},
		{2025, time.November, true},
		{2025, time.December, true},
		{2026, time.January, true},
		{2026, time.April, true},
		{2026, time.May, false}, // window is half-open
	}
	for _, tc := range cases {
		if got := p.CoversMonth(tc.year, tc.month); got != tc.want {
			t.Errorf("CoversMonth(%d, %s) = %v, want %v", tc.year, tc.month, got, tc.want)
		}
	}
}

func TestDueDay(t *testing.T) {
	p := Policy{StartDate: time.Date(2026, 3, 17, 0, 0, 0, 0, time.UTC)}
	if got := p.DueDay(); got != 17 {
		t.Errorf("DueDay() = %d, want 17", got)
	}
}

func TestProfileCan(t *testing.T) {
	super := Profile{Role: RoleSuperAdmin}
	if !super.Can("anything_at_all") {
		t.Error("super_admin must hold every permission")
	}

	operator := Profile{Role: RoleOperator, Permissions: map[string]interface{}{
		"pagos_editar":   true,
		"polizas_crear":  false,
		"clientes_crear": "yes", // non-boolean grants nothing
	}}
	if !operator.Can("pagos_editar") {
		t.Error("granted permission denied")
	}
	for _, perm := range []string{"polizas_crear", "clientes_crear", "usuarios_gestionar"} {
		if operator.Can(perm) {
			t.Errorf("permission %q should be denied", perm)
		}
	}

	if (Profile{Role: RoleViewer}).IsAdmin() {
		t.Error("viewer is not an admin")
	}
	if !(Profile{Role: RoleAdmin}).IsAdmin() {
		t.Error("admin is an admin")
	}
}
