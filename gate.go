package main

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// gateState is the terminal outcome of one protected-route evaluation.
type gateState int

const (
	gateAllowed gateState = iota
	gateDenied
)

type denyReason string

const (
	denyNoToken      denyReason = "no_token"
	denyExpiredToken denyReason = "expired_token"
	denyWrongRole    denyReason = "wrong_role"
)

type gateDecision struct {
	State  gateState
	Reason denyReason
	Role   Role
}

// evaluateGate is the single decision function for every protected route.
// An empty allowedRoles slice means any authenticated role may pass.
func evaluateGate(session Session, allowedRoles []Role, now time.Time) gateDecision {
	if !session.HasToken() {
		return gateDecision{State: gateDenied, Reason: denyNoToken}
	}
	if sessionExpired(session.Token, now) {
		return gateDecision{State: gateDenied, Reason: denyExpiredToken}
	}
	if len(allowedRoles) > 0 {
		if session.Role == RoleNone {
			return gateDecision{State: gateDenied, Reason: denyWrongRole}
		}
		allowed := false
		for _, role := range allowedRoles {
			if session.Role == role {
				allowed = true
				break
			}
		}
		if !allowed {
			return gateDecision{State: gateDenied, Reason: denyWrongRole, Role: session.Role}
		}
	}
	return gateDecision{State: gateAllowed, Role: session.Role}
}

// layoutShell names one of the two page shells.
type layoutShell string

const (
	layoutAuto      layoutShell = ""
	layoutDashboard layoutShell = "dashboard"
	layoutAdmin     layoutShell = "admin"
)

// layoutForRole selects the shell for a resolved role. The override
// parameter forces a layout irrespective of role; it exists for isolated
// rendering in tests.
func layoutForRole(role Role, override layoutShell) layoutShell {
	if override != layoutAuto {
		return override
	}
	if role == RoleAdmin {
		return layoutAdmin
	}
	return layoutDashboard
}

const sessionContextKey = "portalSession"

// requirePage gates an HTML route. Denied evaluations redirect to the login
// entry point with a 303, so the browser replaces the navigation instead of
// looping back to the protected page.
func (a *App) requirePage(allowedRoles ...Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		session := readSession(c)
		decision := evaluateGate(session, allowedRoles, time.Now())
		if decision.State == gateDenied {
			a.log.Info("gate denied", "path", c.Request.URL.Path, "reason", string(decision.Reason))
			c.Redirect(http.StatusSeeOther, "/login")
			c.Abort()
			return
		}
		c.Set(sessionContextKey, session)
		c.Next()
	}
}

// redirectAdminFromDashboard sends privileged users hitting a
// role-unrestricted dashboard route to the admin landing page instead, so
// admins never see the non-admin shell at root paths.
func (a *App) redirectAdminFromDashboard() gin.HandlerFunc {
	return func(c *gin.Context) {
		session, ok := currentSession(c)
		if ok && session.Role == RoleAdmin {
			c.Redirect(http.StatusSeeOther, "/admin")
			c.Abort()
			return
		}
		c.Next()
	}
}

// currentSession returns the session placed in the request context by
// requirePage. A missing session on a gated route is a wiring bug, so
// callers that require it should treat ok=false as fatal to the render.
func currentSession(c *gin.Context) (Session, bool) {
	value, ok := c.Get(sessionContextKey)
	if !ok {
		return Session{}, false
	}
	session, ok := value.(Session)
	return session, ok
}

// mustSession panics when the session context is missing. That only happens
// when a handler is registered without the gate middleware, which is a
// programming error, not a runtime condition to recover from.
func mustSession(c *gin.Context) Session {
	session, ok := currentSession(c)
	if !ok {
		panic("handler registered without requirePage middleware")
	}
	return session
}
