package main

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// Role is the closed set of portal roles. Anything the backend returns
// outside this set behaves as "no role".
type Role string

const (
	RoleNone  Role = ""
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// Session state lives in discrete cookies, one per key. The portal reads
// them once per navigation; only login and logout mutate them.
const (
	cookieAccessToken = "access_token"
	cookieUserRole    = "user_role"
	cookieUniqueID    = "unique_id"
	cookieUserName    = "user_name"
	cookieUserEmail   = "user_email"
	cookieTheme       = "ui_theme"
)

var sessionCookieNames = []string{
	cookieAccessToken,
	cookieUserRole,
	cookieUniqueID,
	cookieUserName,
	cookieUserEmail,
}

// Session is the portal's view of the visitor, rebuilt from cookies on every
// protected-route evaluation.
type Session struct {
	Token    string
	Role     Role
	UniqueID string
	Name     string
	Email    string
}

// HasToken reports whether any bearer token is present at all.
func (s Session) HasToken() bool { return s.Token != "" }

// normalizeRole lower-cases raw and validates it against the closed role
// set. Unrecognized, empty or missing values map to RoleNone so that a
// corrupted cookie can never crash downstream logic.
func normalizeRole(raw string) Role {
	switch Role(strings.ToLower(strings.TrimSpace(raw))) {
	case RoleAdmin:
		return RoleAdmin
	case RoleUser:
		return RoleUser
	default:
		return RoleNone
	}
}

// readSession performs the single synchronous cookie read for this
// navigation. Missing cookies leave zero values.
func readSession(c *gin.Context) Session {
	token, _ := c.Cookie(cookieAccessToken)
	rawRole, _ := c.Cookie(cookieUserRole)
	uniqueID, _ := c.Cookie(cookieUniqueID)
	name, _ := c.Cookie(cookieUserName)
	email, _ := c.Cookie(cookieUserEmail)
	return Session{
		Token:    token,
		Role:     normalizeRole(rawRole),
		UniqueID: uniqueID,
		Name:     name,
		Email:    email,
	}
}

// sessionExpired decodes the token payload without verifying its signature
// (the gate is a UX affordance, the backend is the security boundary) and
// compares the expiry claim to now. A token with no expiry claim never
// expires; that is a recorded design choice, not an oversight. An
// undecodable token counts as expired.
func sessionExpired(token string, now time.Time) bool {
	if token == "" {
		return true
	}
	parsed, _, err := jwt.NewParser().ParseUnverified(token, jwt.MapClaims{})
	if err != nil {
		return true
	}
	expiresAt, err := parsed.Claims.GetExpirationTime()
	if err != nil {
		return true
	}
	if expiresAt == nil {
		return false
	}
	return now.After(expiresAt.Time)
}

// startSession writes every session cookie in one response.
func (a *App) startSession(c *gin.Context, login *LoginResponse) {
	secure := a.cfg.Env == "production"
	maxAge := int(sessionCookieMaxAge.Seconds())
	c.SetCookie(cookieAccessToken, login.AccessToken, maxAge, "/", "", secure, true)
	c.SetCookie(cookieUserRole, string(normalizeRole(login.Role)), maxAge, "/", "", secure, true)
	c.SetCookie(cookieUniqueID, login.UniqueID, maxAge, "/", "", secure, true)
	c.SetCookie(cookieUserName, login.UserName, maxAge, "/", "", secure, true)
	c.SetCookie(cookieUserEmail, login.UserEmail, maxAge, "/", "", secure, true)
}

// clearSession expires every session cookie in the same response, so a
// re-render can never observe a half-cleared session. The theme preference
// survives logout.
func (a *App) clearSession(c *gin.Context) {
	secure := a.cfg.Env == "production"
	for _, name := range sessionCookieNames {
		c.SetCookie(name, "", -1, "/", "", secure, true)
	}
}

// readTheme returns the stored UI theme preference, defaulting to light.
func readTheme(c *gin.Context) string {
	theme, _ := c.Cookie(cookieTheme)
	if theme != "dark" {
		return "light"
	}
	return "dark"
}

func (a *App) setTheme(c *gin.Context, theme string) {
	if theme != "dark" {
		theme = "light"
	}
	secure := a.cfg.Env == "production"
	c.SetCookie(cookieTheme, theme, int(themeCookieMaxAge.Seconds()), "/", "", secure, false)
}
