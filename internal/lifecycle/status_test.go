package lifecycle

import (
	"context"
	"database/sql"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/campushq/labops/internal/apperr"
	"github.com/campushq/labops/internal/models"
	"github.com/campushq/labops/internal/status"
)

// statusTestStore is a minimal Store[models.Incident]: GetByID returns the
// held record, Update echoes the patch back. Nothing else is exercised by
// UpdateStatus.
type statusTestStore struct {
	current models.Incident
}

func (s *statusTestStore) List(context.Context, Filter, int, int, bool) ([]models.Incident, int, error) {
	return nil, 0, nil
}
func (s *statusTestStore) GetByID(_ context.Context, _ int, _ bool) (*models.Incident, error) {
	i := s.current
	return &i, nil
}
func (s *statusTestStore) Insert(_ context.Context, _ *sql.Tx, rec *models.Incident) (*models.Incident, error) {
	return rec, nil
}
func (s *statusTestStore) Update(_ context.Context, _ *sql.Tx, rec *models.Incident) (*models.Incident, error) {
	out := *rec
	return &out, nil
}
func (s *statusTestStore) SetDeleted(context.Context, *sql.Tx, int, bool) (int64, error) {
	return 0, nil
}
func (s *statusTestStore) HardDelete(context.Context, *sql.Tx, int) (int64, error) {
	return 0, nil
}

// incidentRecorder mirrors fakeRecorder for the incident-typed manager.
type incidentRecorder struct {
	entries []models.AuditEntry
}

func (r *incidentRecorder) Record(_ context.Context, _ *sql.Tx, e models.AuditEntry) error {
	r.entries = append(r.entries, e)
	return nil
}

func newIncidentManager(t *testing.T, store Store[models.Incident], rec Recorder) (*Manager[models.Incident], sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	mgr := NewManager(db, store, rec, Descriptor[models.Incident]{
		EntityType: "incident",
		CampusID:   func(i *models.Incident) int { return i.CampusID },
	})
	return mgr, mock, func() { db.Close() }
}

func TestManager_UpdateStatus_LegalTransition(t *testing.T) {
	store := &statusTestStore{current: models.Incident{
		Lifecycle: models.Lifecycle{ID: 4},
		CampusID:  1,
		Title:     "projector down",
		Status:    models.IncidentOpen,
	}}
	rec := &incidentRecorder{}
	mgr, mock, closeDB := newIncidentManager(t, store, rec)
	defer closeDB()

	mock.ExpectBegin()
	mock.ExpectCommit()

	updated, err := mgr.UpdateStatus(context.Background(), 4, status.Incident,
		func(i *models.Incident) string { return i.Status },
		func(i *models.Incident, s, notes string) {
			i.Status = s
			i.Resolution = notes
		},
		models.IncidentInProgress, "tech assigned", testPerformer)
	if err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}
	if updated.Status != models.IncidentInProgress {
		t.Errorf("status = %s", updated.Status)
	}
	if len(rec.entries) != 1 {
		t.Fatalf("audit entries = %d, want 1", len(rec.entries))
	}
	e := rec.entries[0]
	if e.Action != models.AuditStatusChange {
		t.Errorf("action = %s", e.Action)
	}
	if !strings.Contains(string(e.OldValue), models.IncidentOpen) ||
		!strings.Contains(string(e.NewValue), models.IncidentInProgress) {
		t.Errorf("status snapshots wrong: old=%s new=%s", e.OldValue, e.NewValue)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestManager_UpdateStatus_IllegalTransition(t *testing.T) {
	store := &statusTestStore{current: models.Incident{
		Lifecycle: models.Lifecycle{ID: 4},
		Status:    models.IncidentClosed,
	}}
	rec := &incidentRecorder{}
	mgr, mock, closeDB := newIncidentManager(t, store, rec)
	defer closeDB()

	_, err := mgr.UpdateStatus(context.Background(), 4, status.Incident,
		func(i *models.Incident) string { return i.Status },
		func(i *models.Incident, s, _ string) { i.Status = s },
		models.IncidentOpen, "", testPerformer)
	if !apperr.IsKind(err, apperr.KindValidation) {
		t.Fatalf("want validation error on illegal transition, got %v", err)
	}
	if len(rec.entries) != 0 {
		t.Error("illegal transition must not write audit entries")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("no transaction expected: %v", err)
	}
}

func TestManager_UpdateStatus_UnknownStatus(t *testing.T) {
	store := &statusTestStore{}
	mgr, _, closeDB := newIncidentManager(t, store, &incidentRecorder{})
	defer closeDB()

	_, err := mgr.UpdateStatus(context.Background(), 4, status.Incident,
		func(i *models.Incident) string { return i.Status },
		func(i *models.Incident, s, _ string) { i.Status = s },
		"ESCALATED", "", testPerformer)
	if !apperr.IsKind(err, apperr.KindValidation) {
		t.Fatalf("want validation error for unknown status, got %v", err)
	}
}
