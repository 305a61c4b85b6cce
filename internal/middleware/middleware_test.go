package middleware

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"pangan/internal/auth"
	"pangan/internal/errx"
)

const testSecret = "test-secret-key-for-testing-only"

func newTestRouter(handlers ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(handlers...)
	router.GET("/test", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"userID": c.GetString(UserIDKey),
			"role":   c.GetString(UserRoleKey),
		})
	})
	return router
}

// TestAuthMiddleware_MissingAuthHeader tests the middleware with missing Authorization header
func TestAuthMiddleware_MissingAuthHeader(t *testing.T) {
	router := newTestRouter(AuthMiddleware(testSecret))

	req := httptest.NewRequest("GET", "/test", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected status %d, got %d", http.StatusUnauthorized, w.Code)
	}
}

// TestAuthMiddleware_InvalidAuthFormat tests the middleware with invalid Bearer format
func TestAuthMiddleware_InvalidAuthFormat(t *testing.T) {
	router := newTestRouter(AuthMiddleware(testSecret))

	req := httptest.NewRequest("GET", "/test", nil)
	req.Header.Set("Authorization", "InvalidFormat")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected status %d, got %d", http.StatusUnauthorized, w.Code)
	}
}

// TestAuthMiddleware_InvalidToken tests the middleware with an invalid token
func TestAuthMiddleware_InvalidToken(t *testing.T) {
	router := newTestRouter(AuthMiddleware(testSecret))

	req := httptest.NewRequest("GET", "/test", nil)
	req.Header.Set("Authorization", "Bearer invalid_token_xyz")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected status %d, got %d", http.StatusUnauthorized, w.Code)
	}
}

// TestAuthMiddleware_ValidToken tests the middleware with a valid token
func TestAuthMiddleware_ValidToken(t *testing.T) {
	token, err := auth.GenerateToken(testSecret, "test-user-id", "test@example.com", auth.RoleContributor, time.Hour)
	if err != nil {
		t.Fatalf("failed to generate test token: %v", err)
	}

	router := newTestRouter(AuthMiddleware(testSecret))

	req := httptest.NewRequest("GET", "/test", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, w.Code)
	}

	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["userID"] != "test-user-id" || body["role"] != auth.RoleContributor {
		t.Errorf("unexpected context values: %v", body)
	}
}

func TestRequireRole(t *testing.T) {
	guest, _ := auth.GenerateToken(testSecret, "g", "", auth.RoleGuest, time.Hour)
	admin, _ := auth.GenerateToken(testSecret, "a", "", auth.RoleAdmin, time.Hour)

	router := newTestRouter(AuthMiddleware(testSecret), RequireRole(auth.RoleContributor, auth.RoleAdmin))

	tests := []struct {
		name  string
		token string
		want  int
	}{
		{"guest is forbidden", guest, http.StatusForbidden},
		{"admin passes", admin, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/test", nil)
			req.Header.Set("Authorization", "Bearer "+tt.token)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			if w.Code != tt.want {
				t.Errorf("expected status %d, got %d", tt.want, w.Code)
			}
		})
	}
}

func TestRequireRoleWithoutAuth(t *testing.T) {
	router := newTestRouter(RequireRole(auth.RoleAdmin))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/test", nil))

	if w.Code != http.StatusForbidden {
		t.Errorf("expected status %d, got %d", http.StatusForbidden, w.Code)
	}
}

func TestRespondError(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantIssues bool
	}{
		{"validation", errx.Invalid([]errx.FieldIssue{{Row: 1, Field: "close", Reason: "must be a number"}}), http.StatusBadRequest, true},
		{"referential", &errx.ReferentialError{Entity: "country", ID: "x"}, http.StatusUnprocessableEntity, false},
		{"not found", errx.ErrNotFound, http.StatusNotFound, false},
		{"internal", errors.New("db down"), http.StatusInternalServerError, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := gin.New()
			router.Use(RequestLogger())
			router.GET("/fail", func(c *gin.Context) { RespondError(c, tt.err) })

			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest("GET", "/fail", nil))

			if w.Code != tt.wantStatus {
				t.Fatalf("expected status %d, got %d", tt.wantStatus, w.Code)
			}
			var body map[string]any
			if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if _, ok := body["issues"]; ok != tt.wantIssues {
				t.Errorf("issues present = %v, want %v", ok, tt.wantIssues)
			}
			if tt.wantStatus == http.StatusInternalServerError && body["error"] != errx.SystemErrorMessage {
				t.Errorf("internal errors must not leak, got %v", body["error"])
			}
		})
	}
}

func TestRequireWriter(t *testing.T) {
	router := newTestRouter(AuthMiddleware(testSecret), RequireWriter())

	for role, want := range map[string]int{
		auth.RoleGuest:       http.StatusForbidden,
		auth.RoleContributor: http.StatusOK,
		auth.RoleAdmin:       http.StatusOK,
	} {
		token, _ := auth.GenerateToken(testSecret, "u", "", role, time.Hour)
		req := httptest.NewRequest("GET", "/test", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		if w.Code != want {
			t.Errorf("%s: expected status %d, got %d", role, want, w.Code)
		}
	}
}
