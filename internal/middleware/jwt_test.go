package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/campushq/labops/internal/lifecycle"
	"github.com/campushq/labops/internal/models"
)

func signToken(t *testing.T, secret []byte, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := token.SignedString(secret)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return s
}

func jwtTestHandler(got *lifecycle.Performer) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p, ok := PerformerFrom(r.Context())
		if ok {
			*got = p
		}
		w.WriteHeader(http.StatusOK)
	})
}

func TestJWT_ValidToken(t *testing.T) {
	secret := []byte("s3cret")
	token := signToken(t, secret, jwt.MapClaims{
		"user_id":   float64(7),
		"username":  "tech1",
		"role":      models.RoleTechnician,
		"campus_id": float64(2),
		"exp":       time.Now().Add(time.Hour).Unix(),
	})

	var got lifecycle.Performer
	srv := httptest.NewServer(JWT(secret)(jwtTestHandler(&got)))
	defer srv.Close()

	req, _ := http.NewRequest("GET", srv.URL, nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if got.UserID != 7 || got.Role != models.RoleTechnician || got.CampusID != 2 || got.Username != "tech1" {
		t.Errorf("unexpected performer: %+v", got)
	}
}

func TestJWT_MissingHeader(t *testing.T) {
	var got lifecycle.Performer
	srv := httptest.NewServer(JWT([]byte("s"))(jwtTestHandler(&got)))
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", resp.StatusCode)
	}
}

func TestJWT_WrongSecret(t *testing.T) {
	token := signToken(t, []byte("other"), jwt.MapClaims{
		"user_id": float64(1), "role": models.RoleAdmin, "campus_id": float64(1),
		"exp": time.Now().Add(time.Hour).Unix(),
	})

	var got lifecycle.Performer
	srv := httptest.NewServer(JWT([]byte("s3cret"))(jwtTestHandler(&got)))
	defer srv.Close()

	req, _ := http.NewRequest("GET", srv.URL, nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", resp.StatusCode)
	}
}

func TestJWT_ExpiredToken(t *testing.T) {
	secret := []byte("s3cret")
	token := signToken(t, secret, jwt.MapClaims{
		"user_id": float64(1), "role": models.RoleAdmin, "campus_id": float64(1),
		"exp": time.Now().Add(-time.Hour).Unix(),
	})

	var got lifecycle.Performer
	srv := httptest.NewServer(JWT(secret)(jwtTestHandler(&got)))
	defer srv.Close()

	req, _ := http.NewRequest("GET", srv.URL, nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", resp.StatusCode)
	}
}

func TestJWT_UnknownRoleRejected(t *testing.T) {
	secret := []byte("s3cret")
	token := signToken(t, secret, jwt.MapClaims{
		"user_id": float64(1), "role": "ROOT", "campus_id": float64(1),
		"exp": time.Now().Add(time.Hour).Unix(),
	})

	var got lifecycle.Performer
	srv := httptest.NewServer(JWT(secret)(jwtTestHandler(&got)))
	defer srv.Close()

	req, _ := http.NewRequest("GET", srv.URL, nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", resp.StatusCode)
	}
}
