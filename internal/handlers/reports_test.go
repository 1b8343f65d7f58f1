package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-chi/chi/v5"

	"github.com/campushq/labops/internal/lifecycle"
	"github.com/campushq/labops/internal/models"
	"github.com/campushq/labops/internal/repo"
)

func newReportsServer(t *testing.T, p lifecycle.Performer) (*httptest.Server, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	h := &ReportsHandler{
		Incidents:   repo.NewIncidentRepo(db),
		Equipment:   repo.NewEquipmentRepo(db),
		Maintenance: repo.NewMaintenanceRepo(db),
	}
	r := chi.NewRouter()
	r.Use(asPerformer(p))
	r.Get("/reports/incidents-summary", h.IncidentsSummary)
	r.Get("/reports/equipment-health", h.EquipmentHealth)
	r.Get("/reports/maintenance-cost", h.MaintenanceCost)

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv, mock
}

func TestReports_IncidentsSummary_AdminScopedToOwnCampus(t *testing.T) {
	srv, mock := newReportsServer(t, campus1Admin)

	mock.ExpectQuery(`SELECT status, COUNT\(\*\) FROM incidents WHERE deleted_at IS NULL AND campus_id = \$1 GROUP BY status`).
		WithArgs(1).
		WillReturnRows(sqlmock.NewRows([]string{"status", "count"}).
			AddRow(models.IncidentOpen, 3).
			AddRow(models.IncidentResolved, 2))

	resp, err := http.Get(srv.URL + "/reports/incidents-summary")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var out struct {
		CampusID int            `json:"campus_id"`
		ByStatus map[string]int `json:"by_status"`
		Total    int            `json:"total"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.CampusID != 1 || out.Total != 5 || out.ByStatus[models.IncidentOpen] != 3 {
		t.Errorf("unexpected summary: %+v", out)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestReports_EquipmentHealth_OperationalCount(t *testing.T) {
	srv, mock := newReportsServer(t, superAdmin)

	mock.ExpectQuery(`SELECT status, COUNT\(\*\) FROM equipment WHERE deleted_at IS NULL GROUP BY status`).
		WillReturnRows(sqlmock.NewRows([]string{"status", "count"}).
			AddRow(models.EquipmentAvailable, 8).
			AddRow(models.EquipmentInUse, 4).
			AddRow(models.EquipmentMaintenance, 2).
			AddRow(models.EquipmentRetired, 1))

	resp, err := http.Get(srv.URL + "/reports/equipment-health")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var out struct {
		Total       int `json:"total"`
		Operational int `json:"operational"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.Total != 15 || out.Operational != 12 {
		t.Errorf("total = %d operational = %d, want 15/12", out.Total, out.Operational)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestReports_MaintenanceCost(t *testing.T) {
	srv, mock := newReportsServer(t, campus1Admin)

	mock.ExpectQuery(`SELECT to_char\(date_trunc\('month', updated_at\), 'YYYY-MM'\)`).
		WithArgs(models.MaintenanceCompleted, 1, 6).
		WillReturnRows(sqlmock.NewRows([]string{"month", "total"}).
			AddRow("2026-08", 1250.50).
			AddRow("2026-07", 300.00))

	resp, err := http.Get(srv.URL + "/reports/maintenance-cost?months=6")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var out struct {
		Months []repo.MonthCost `json:"months"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(out.Months) != 2 || out.Months[0].Month != "2026-08" {
		t.Errorf("unexpected months: %+v", out.Months)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestReports_MaintenanceCost_WindowDefaultsAndCap(t *testing.T) {
	srv, mock := newReportsServer(t, campus1Admin)

	// months beyond the 60-month cap falls back to the 12-month default.
	mock.ExpectQuery(`SELECT to_char\(date_trunc\('month', updated_at\), 'YYYY-MM'\)`).
		WithArgs(models.MaintenanceCompleted, 1, 12).
		WillReturnRows(sqlmock.NewRows([]string{"month", "total"}))

	resp, err := http.Get(srv.URL + "/reports/maintenance-cost?months=999")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestReports_StaffForbidden(t *testing.T) {
	srv, mock := newReportsServer(t, campus1Staff)

	resp, err := http.Get(srv.URL + "/reports/incidents-summary")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", resp.StatusCode)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("nothing should touch the db: %v", err)
	}
}
