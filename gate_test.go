package main

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestEvaluateGate(t *testing.T) {
	now := time.Now()
	valid := signedTestToken(t, "user", now.Add(time.Hour))
	expired := signedTestToken(t, "user", now.Add(-time.Hour))

	cases := []struct {
		name       string
		session    Session
		allowed    []Role
		wantState  gateState
		wantReason denyReason
	}{
		{"no token", Session{}, nil, gateDenied, denyNoToken},
		{"expired token", Session{Token: expired, Role: RoleUser}, nil, gateDenied, denyExpiredToken},
		{"any role passes open gate", Session{Token: valid, Role: RoleUser}, nil, gateAllowed, ""},
		{"role outside allowed set", Session{Token: valid, Role: RoleUser}, []Role{RoleAdmin}, gateDenied, denyWrongRole},
		{"no role on restricted gate", Session{Token: valid}, []Role{RoleAdmin}, gateDenied, denyWrongRole},
		{"allowed role", Session{Token: valid, Role: RoleAdmin}, []Role{RoleAdmin}, gateAllowed, ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			decision := evaluateGate(tc.session, tc.allowed, now)
			if decision.State != tc.wantState {
				t.Fatalf("state = %v, want %v", decision.State, tc.wantState)
			}
			if decision.Reason != tc.wantReason {
				t.Fatalf("reason = %q, want %q", decision.Reason, tc.wantReason)
			}
		})
	}
}

func TestLayoutForRole(t *testing.T) {
	if got := layoutForRole(RoleAdmin, layoutAuto); got != layoutAdmin {
		t.Errorf("admin layout = %q", got)
	}
	if got := layoutForRole(RoleUser, layoutAuto); got != layoutDashboard {
		t.Errorf("user layout = %q", got)
	}
	if got := layoutForRole(RoleNone, layoutAuto); got != layoutDashboard {
		t.Errorf("no-role layout = %q", got)
	}
	if got := layoutForRole(RoleAdmin, layoutDashboard); got != layoutDashboard {
		t.Errorf("override layout = %q", got)
	}
}

func TestProtectedRouteRedirectsWithoutSession(t *testing.T) {
	app := newTestApp(t, "")
	r := newTestRouter(t, app)

	for _, path := range []string{"/", "/dashboard", "/admin", "/dashboard/reports"} {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, path, nil)
		r.ServeHTTP(w, req)

		if w.Code != http.StatusSeeOther {
			t.Fatalf("%s: status = %d, want 303", path, w.Code)
		}
		if got := w.Header().Get("Location"); got != "/login" {
			t.Fatalf("%s: Location = %q, want /login", path, got)
		}
	}
}

func TestUserRoleDeniedOnAdminRoutes(t *testing.T) {
	app := newTestApp(t, "")
	r := newTestRouter(t, app)
	token := signedTestToken(t, "user", time.Now().Add(time.Hour))
	paths := []string{"/admin", app.modulePath("masters", "zones")}

	for _, path := range paths {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, path, nil)
		addSessionCookies(req, token, "user")
		r.ServeHTTP(w, req)

		if w.Code != http.StatusSeeOther {
			t.Fatalf("%s: status = %d, want 303", path, w.Code)
		}
		if got := w.Header().Get("Location"); got != "/login" {
			t.Fatalf("%s: Location = %q, want /login", path, got)
		}
	}
}

func TestAdminRedirectedFromDashboard(t *testing.T) {
	app := newTestApp(t, "")
	r := newTestRouter(t, app)
	token := signedTestToken(t, "admin", time.Now().Add(time.Hour))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	addSessionCookies(req, token, "admin")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303", w.Code)
	}
	if got := w.Header().Get("Location"); got != "/admin" {
		t.Fatalf("Location = %q, want /admin", got)
	}
}

func TestRootRedirectFollowsRole(t *testing.T) {
	app := newTestApp(t, "")
	r := newTestRouter(t, app)

	cases := []struct {
		role string
		want string
	}{
		{"admin", "/admin"},
		{"user", "/dashboard"},
	}
	for _, tc := range cases {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		addSessionCookies(req, signedTestToken(t, tc.role, time.Now().Add(time.Hour)), tc.role)
		r.ServeHTTP(w, req)

		if w.Code != http.StatusSeeOther {
			t.Fatalf("role %s: status = %d, want 303", tc.role, w.Code)
		}
		if got := w.Header().Get("Location"); got != tc.want {
			t.Fatalf("role %s: Location = %q, want %q", tc.role, got, tc.want)
		}
	}
}

func TestExpiredSessionRedirectsToLogin(t *testing.T) {
	app := newTestApp(t, "")
	r := newTestRouter(t, app)
	token := signedTestToken(t, "user", time.Now().Add(-time.Minute))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	addSessionCookies(req, token, "user")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusSeeOther || w.Header().Get("Location") != "/login" {
		t.Fatalf("expired session: status=%d location=%q", w.Code, w.Header().Get("Location"))
	}
}
