package router

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"pangan/internal/auth"
	"pangan/internal/catalog"
	"pangan/internal/db"
	"pangan/internal/ingest"
	"pangan/internal/price"
)

const testSecret = "router-test-secret"

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	sqlDB, err := db.OpenSQLite(context.Background(), db.MemoryDSN)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { sqlDB.Close() })

	cat := catalog.NewService(catalog.NewSQLiteRepository(sqlDB), nil)
	prices := price.NewService(price.NewSQLiteRepository(sqlDB))
	return NewRouter(Deps{
		JWTSecret:    testSecret,
		AllowOrigins: []string{"http://localhost:5173"},
		Catalog:      cat,
		Prices:       prices,
		Ingest:       ingest.NewService(cat, prices),
		Ping:         sqlDB.PingContext,
	})
}

func token(t *testing.T, role string) string {
	t.Helper()
	tok, err := auth.GenerateToken(testSecret, "user-1", "user@example.com", role, time.Hour)
	if err != nil {
		t.Fatalf("token: %v", err)
	}
	return tok
}

func TestHealthCheck(t *testing.T) {
	r := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
}

func TestHealthCheckReportsStoreFailure(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := NewRouter(Deps{Ping: func(context.Context) error { return errors.New("down") }})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected status 503, got %d", w.Code)
	}
}

func TestReadsArePublic(t *testing.T) {
	r := newTestRouter(t)

	for _, path := range []string{"/api/countries", "/api/foods", "/api/food-prices", "/api/food-price-indexes"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		if w.Code != http.StatusOK {
			t.Errorf("GET %s: expected 200, got %d", path, w.Code)
		}
	}
}

func TestWritesNeedContributor(t *testing.T) {
	r := newTestRouter(t)
	body := `{"name":"Indonesia","code":"IDN","currency":"IDR"}`

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{name: "anonymous", want: http.StatusUnauthorized},
		{name: "guest", header: "Bearer " + token(t, auth.RoleGuest), want: http.StatusForbidden},
		{name: "contributor", header: "Bearer " + token(t, auth.RoleContributor), want: http.StatusCreated},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/countries", strings.NewReader(body))
			req.Header.Set("Content-Type", "application/json")
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tt.want {
				t.Errorf("expected %d, got %d: %s", tt.want, w.Code, w.Body.String())
			}
		})
	}
}

func TestImportRouteIsGuarded(t *testing.T) {
	r := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/api/food-price-indexes/import", strings.NewReader(`{"rows":[]}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", w.Code)
	}

	req = httptest.NewRequest(http.MethodPost, "/api/food-price-indexes/import", strings.NewReader(`{"rows":[]}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token(t, auth.RoleAdmin))
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
}

func TestCatalogDeletesNeedAdmin(t *testing.T) {
	r := newTestRouter(t)
	id := "00000000-0000-0000-0000-000000000001"

	tests := []struct {
		name string
		role string
		want int
	}{
		{name: "contributor", role: auth.RoleContributor, want: http.StatusForbidden},
		{name: "admin", role: auth.RoleAdmin, want: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, req := range []*http.Request{
				httptest.NewRequest(http.MethodDelete, "/api/countries/"+id, nil),
				httptest.NewRequest(http.MethodDelete, "/api/countries", strings.NewReader(`{"ids":["`+id+`"]}`)),
				httptest.NewRequest(http.MethodDelete, "/api/foods/"+id, nil),
				httptest.NewRequest(http.MethodDelete, "/api/foods", strings.NewReader(`{"ids":["`+id+`"]}`)),
			} {
				req.Header.Set("Content-Type", "application/json")
				req.Header.Set("Authorization", "Bearer "+token(t, tt.role))
				w := httptest.NewRecorder()
				r.ServeHTTP(w, req)

				if w.Code != tt.want {
					t.Errorf("%s %s: expected %d, got %d: %s", req.Method, req.URL.Path, tt.want, w.Code, w.Body.String())
				}
			}
		})
	}
}

func TestCountryInflationsArePublic(t *testing.T) {
	r := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/api/countries", strings.NewReader(`{"name":"Indonesia","code":"IDN","currency":"IDR"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token(t, auth.RoleContributor))
	r.ServeHTTP(httptest.NewRecorder(), req)

	req = httptest.NewRequest(http.MethodGet, "/api/countries/inflations", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"food_price_indexes":[]`) {
		t.Errorf("expected Indonesia with an empty index series, got %s", w.Body.String())
	}
}
