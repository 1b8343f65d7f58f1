package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-chi/chi/v5"

	"github.com/campushq/labops/internal/lifecycle"
	"github.com/campushq/labops/internal/models"
	"github.com/campushq/labops/internal/notify"
	"github.com/campushq/labops/internal/rbac"
	"github.com/campushq/labops/internal/repo"
)

var campus1Tech = lifecycle.Performer{UserID: 4, Username: "tech1", Role: models.RoleTechnician, CampusID: 1}

func newIncidentServer(t *testing.T, p lifecycle.Performer) (*httptest.Server, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	mgr := lifecycle.NewManager(db, repo.NewIncidentRepo(db), repo.NewAuditRepo(db), lifecycle.Descriptor[models.Incident]{
		EntityType: rbac.ResourceIncident,
		CampusID:   func(i *models.Incident) int { return i.CampusID },
	})
	// No worker running: messages queue in the buffer, deliveries are not
	// part of these tests.
	d := notify.NewDispatcher(16, slog.New(slog.NewTextHandler(io.Discard, nil)))
	h := NewIncidentHandler(mgr, d)

	r := chi.NewRouter()
	r.Use(asPerformer(p))
	r.Route("/incidents", h.Mount)

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv, mock
}

func incidentTestRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "campus_id", "lab_id", "equipment_id", "title", "description", "priority", "status",
		"reported_by", "resolution", "created_at", "updated_at", "deleted_at",
	})
}

func TestIncidentHandler_Create_StaffAllowed(t *testing.T) {
	srv, mock := newIncidentServer(t, campus1Staff)

	now := time.Now()
	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO incidents`).
		WithArgs(1, 2, nil, "Projector broken", "No image output", models.PriorityHigh, models.IncidentOpen, 3).
		WillReturnRows(incidentTestRows().
			AddRow(10, 1, 2, nil, "Projector broken", "No image output", models.PriorityHigh, models.IncidentOpen, 3, "", now, now, nil))
	mock.ExpectExec(`INSERT INTO audit_log`).
		WithArgs(1, "incident", 10, models.AuditCreate, nil, sqlmock.AnyArg(), "", 3, models.RoleStaff).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	body, _ := json.Marshal(map[string]interface{}{
		"campus_id": 1, "lab_id": 2, "title": "Projector broken",
		"description": "No image output", "priority": models.PriorityHigh,
	})
	resp, err := http.Post(srv.URL+"/incidents", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("POST: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status = %d, want 201", resp.StatusCode)
	}

	var created models.Incident
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if created.Status != models.IncidentOpen {
		t.Errorf("new incident must open as OPEN, got %s", created.Status)
	}
	if created.ReportedBy != campus1Staff.UserID {
		t.Errorf("reported_by = %d, want the caller", created.ReportedBy)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestIncidentHandler_Create_BadPriority(t *testing.T) {
	srv, mock := newIncidentServer(t, campus1Staff)

	body, _ := json.Marshal(map[string]interface{}{
		"campus_id": 1, "lab_id": 2, "title": "Projector broken",
		"description": "x", "priority": "URGENT",
	})
	resp, err := http.Post(srv.URL+"/incidents", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("POST: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("nothing should touch the db: %v", err)
	}
}

func TestIncidentHandler_UpdateStatus_TechnicianAllowed(t *testing.T) {
	srv, mock := newIncidentServer(t, campus1Tech)

	now := time.Now()
	openRow := func() *sqlmock.Rows {
		return incidentTestRows().
			AddRow(10, 1, 2, nil, "Projector broken", "d", models.PriorityHigh, models.IncidentOpen, 3, "", now, now, nil)
	}
	// Scope fetch, then UpdateStatus fetches again before the tx.
	mock.ExpectQuery(`SELECT .+ FROM incidents WHERE id = \$1`).WithArgs(10).WillReturnRows(openRow())
	mock.ExpectQuery(`SELECT .+ FROM incidents WHERE id = \$1`).WithArgs(10).WillReturnRows(openRow())
	mock.ExpectBegin()
	mock.ExpectQuery(`UPDATE incidents SET`).
		WithArgs(2, nil, "Projector broken", "d", models.PriorityHigh, models.IncidentInProgress, "", 10).
		WillReturnRows(incidentTestRows().
			AddRow(10, 1, 2, nil, "Projector broken", "d", models.PriorityHigh, models.IncidentInProgress, 3, "", now, now, nil))
	mock.ExpectExec(`INSERT INTO audit_log`).
		WithArgs(1, "incident", 10, models.AuditStatusChange,
			`{"status":"OPEN"}`, `{"status":"IN_PROGRESS"}`, "", 4, models.RoleTechnician).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	body, _ := json.Marshal(map[string]string{"status": models.IncidentInProgress})
	req, _ := http.NewRequest(http.MethodPatch, srv.URL+"/incidents/10/status", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("PATCH: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var updated models.Incident
	if err := json.NewDecoder(resp.Body).Decode(&updated); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if updated.Status != models.IncidentInProgress {
		t.Errorf("status = %s", updated.Status)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestIncidentHandler_UpdateStatus_IllegalTransition(t *testing.T) {
	srv, mock := newIncidentServer(t, campus1Tech)

	now := time.Now()
	closedRow := func() *sqlmock.Rows {
		return incidentTestRows().
			AddRow(10, 1, 2, nil, "t", "d", models.PriorityLow, models.IncidentClosed, 3, "", now, now, nil)
	}
	mock.ExpectQuery(`SELECT .+ FROM incidents WHERE id = \$1`).WithArgs(10).WillReturnRows(closedRow())
	mock.ExpectQuery(`SELECT .+ FROM incidents WHERE id = \$1`).WithArgs(10).WillReturnRows(closedRow())

	body, _ := json.Marshal(map[string]string{"status": models.IncidentOpen})
	req, _ := http.NewRequest(http.MethodPatch, srv.URL+"/incidents/10/status", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("PATCH: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("no write expected: %v", err)
	}
}

func TestIncidentHandler_UpdateStatus_StaffForbidden(t *testing.T) {
	srv, mock := newIncidentServer(t, campus1Staff)

	now := time.Now()
	mock.ExpectQuery(`SELECT .+ FROM incidents WHERE id = \$1`).
		WithArgs(10).
		WillReturnRows(incidentTestRows().
			AddRow(10, 1, 2, nil, "t", "d", models.PriorityLow, models.IncidentOpen, 3, "", now, now, nil))

	body, _ := json.Marshal(map[string]string{"status": models.IncidentInProgress})
	req, _ := http.NewRequest(http.MethodPatch, srv.URL+"/incidents/10/status", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("PATCH: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", resp.StatusCode)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}
