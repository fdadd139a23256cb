package main

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const testCipherSecret = "portal-test-cipher-secret"

func newTestApp(t *testing.T, desktopAPIURL string) *App {
	t.Helper()
	gin.SetMode(gin.TestMode)

	if desktopAPIURL == "" {
		desktopAPIURL = "http://127.0.0.1:0"
	}
	cfg := &Config{
		Addr:              ":0",
		Env:               "test",
		DesktopAPIURL:     desktopAPIURL,
		MobileAPIURL:      desktopAPIURL,
		RouteCipherSecret: testCipherSecret,
		EscalationEmailTo: "ward-ops@example.com",
		MailerFrom:        map[string]string{"log": "noreply@example.com"},
	}

	app, err := newApp(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatalf("newApp: %v", err)
	}
	return app
}

func newTestRouter(t *testing.T, app *App) *gin.Engine {
	t.Helper()
	r := gin.New()
	app.registerRoutes(r)
	return r
}

// signedTestToken builds an HS256 token with the given role claim. A zero
// expiry leaves the exp claim out entirely.
func signedTestToken(t *testing.T, role string, expiresAt time.Time) string {
	t.Helper()
	claims := jwt.MapClaims{
		"sub":       "tester",
		"role":      role,
		"unique_id": "uid-1",
	}
	if !expiresAt.IsZero() {
		claims["exp"] = expiresAt.Unix()
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-signing-secret"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return token
}

func addSessionCookies(req *http.Request, token, role string) {
	req.AddCookie(&http.Cookie{Name: cookieAccessToken, Value: token})
	req.AddCookie(&http.Cookie{Name: cookieUserRole, Value: role})
	req.AddCookie(&http.Cookie{Name: cookieUniqueID, Value: "uid-1"})
	req.AddCookie(&http.Cookie{Name: cookieUserName, Value: "Tester"})
	req.AddCookie(&http.Cookie{Name: cookieUserEmail, Value: "tester@example.com"})
}

// responseCookies parses the Set-Cookie headers of a recorded response.
func responseCookies(w *httptest.ResponseRecorder) []*http.Cookie {
	res := http.Response{Header: w.Header()}
	return res.Cookies()
}

func responseCookie(t *testing.T, w *httptest.ResponseRecorder, name string) *http.Cookie {
	t.Helper()
	for _, cookie := range responseCookies(w) {
		if cookie.Name == name {
			return cookie
		}
	}
	t.Fatalf("response has no %q cookie", name)
	return nil
}
