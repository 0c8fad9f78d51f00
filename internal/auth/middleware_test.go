package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sakif/waste-portal/internal/model"
)

func TestRequireAuth_NoCookie(t *testing.T) {
	ts := newTestTokenService(t)

	handler := RequireAuth(ts)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler should not run without a token")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}

func TestRequireAuth_ValidToken(t *testing.T) {
	ts := newTestTokenService(t)
	token, err := ts.Generate(9, model.RoleCitizen)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	var got Identity
	handler := RequireAuth(ts)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ident, ok := IdentityFromContext(r.Context())
		if !ok {
			t.Fatal("identity missing from context inside the handler")
		}
		got = ident
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: CookieName, Value: token})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if got.UserID != 9 || got.Role != model.RoleCitizen {
		t.Errorf("identity = %+v, want UserID 9 role citizen", got)
	}
}

func TestRequireRole_Enforcement(t *testing.T) {
	tests := []struct {
		name       string
		role       model.Role
		allowed    []model.Role
		wantStatus int
	}{
		{"citizen blocked from staff route", model.RoleCitizen, []model.Role{model.RoleWorker, model.RoleAdmin}, http.StatusForbidden},
		{"worker allowed on staff route", model.RoleWorker, []model.Role{model.RoleWorker, model.RoleAdmin}, http.StatusOK},
		{"admin allowed on admin route", model.RoleAdmin, []model.Role{model.RoleAdmin}, http.StatusOK},
		{"worker blocked from admin route", model.RoleWorker, []model.Role{model.RoleAdmin}, http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := RequireRole(tt.allowed...)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
			}))

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req = req.WithContext(ContextWithIdentity(req.Context(), Identity{UserID: 1, Role: tt.role}))
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
		})
	}
}

func TestRequireRole_NoIdentity(t *testing.T) {
	handler := RequireRole(model.RoleAdmin)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler should not run without an identity")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusForbidden {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusForbidden)
	}
}
