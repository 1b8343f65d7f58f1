package main

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
	"golang.org/x/crypto/bcrypt"

	"github.com/campushq/labops/internal/config"
	"github.com/campushq/labops/internal/models"
	"github.com/campushq/labops/internal/notify"
)

func testConfig() config.Config {
	return config.Config{
		JWTSecret:        "test-secret-for-integration",
		JWTExpireHours:   1,
		OpTimeoutSeconds: 5,
	}
}

func testDispatcher() *notify.Dispatcher {
	return notify.NewDispatcher(16, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

// TestAPI_LoginThenListCampuses builds the full router against a sqlmock DB,
// logs in for a JWT, then lists campuses with the token.
func TestAPI_LoginThenListCampuses(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	hash, err := bcrypt.GenerateFromPassword([]byte("integration-pass"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt: %v", err)
	}

	// Login: GetByUsername("integration")
	mock.ExpectQuery(`SELECT .+ FROM users WHERE username = \$1`).
		WithArgs("integration").
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "password_hash", "role", "campus_id"}).
			AddRow(1, "integration", string(hash), models.RoleSuperAdmin, 0))

	// GET /campuses: count then default page 1 / limit 20
	now := time.Now()
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM campuses WHERE deleted_at IS NULL`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(`SELECT .+ FROM campuses WHERE deleted_at IS NULL ORDER BY id LIMIT \$1 OFFSET \$2`).
		WithArgs(20, 0).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "name", "code", "address", "city", "phone", "created_at", "updated_at", "deleted_at",
		}).AddRow(1, "North", "N1", "1 Main St", "Metro", "", now, now, nil))

	r := newRouter(db, testConfig(), testDispatcher())
	srv := httptest.NewServer(r)
	defer srv.Close()

	// 1) Login
	loginBody, _ := json.Marshal(map[string]string{"username": "integration", "password": "integration-pass"})
	loginResp, err := http.Post(srv.URL+"/api/v1/auth/login", "application/json", bytes.NewReader(loginBody))
	if err != nil {
		t.Fatalf("login request: %v", err)
	}
	defer loginResp.Body.Close()
	if loginResp.StatusCode != http.StatusOK {
		t.Fatalf("login status: got %d, want 200", loginResp.StatusCode)
	}
	var loginOut struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(loginResp.Body).Decode(&loginOut); err != nil || loginOut.Token == "" {
		t.Fatalf("login response: %v", err)
	}

	// 2) GET /campuses with Bearer token
	req, _ := http.NewRequest("GET", srv.URL+"/api/v1/campuses", nil)
	req.Header.Set("Authorization", "Bearer "+loginOut.Token)
	listResp, err := srv.Client().Do(req)
	if err != nil {
		t.Fatalf("campuses request: %v", err)
	}
	defer listResp.Body.Close()
	if listResp.StatusCode != http.StatusOK {
		t.Fatalf("GET /campuses status: got %d, want 200", listResp.StatusCode)
	}
	var out struct {
		Data  []models.Campus `json:"data"`
		Total int             `json:"total"`
	}
	if err := json.NewDecoder(listResp.Body).Decode(&out); err != nil {
		t.Fatalf("decode campuses: %v", err)
	}
	if len(out.Data) != 1 || out.Data[0].Code != "N1" || out.Total != 1 {
		t.Errorf("unexpected campuses: %+v", out)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

// TestAPI_Unauthenticated checks that protected routes reject missing tokens.
func TestAPI_Unauthenticated(t *testing.T) {
	db, _, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	r := newRouter(db, testConfig(), testDispatcher())
	srv := httptest.NewServer(r)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/v1/campuses")
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", resp.StatusCode)
	}
}

// TestAPI_Health is a smoke test for the health endpoint.
func TestAPI_Health(t *testing.T) {
	db, _, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	r := newRouter(db, testConfig(), testDispatcher())
	srv := httptest.NewServer(r)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/health")
	if err != nil {
		t.Fatalf("health request: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("GET /health status: got %d, want 200", resp.StatusCode)
	}
}

// TestAPI_Ready pings the DB through /ready.
func TestAPI_Ready(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()
	mock.ExpectPing()

	r := newRouter(db, testConfig(), testDispatcher())
	srv := httptest.NewServer(r)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/ready")
	if err != nil {
		t.Fatalf("ready request: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("GET /ready status: got %d, want 200", resp.StatusCode)
	}
}
