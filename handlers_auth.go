package main

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"wasteops/libs/restclient"
)

func (a *App) loginPageHandler(c *gin.Context) {
	// An established, non-expired session skips the form.
	session := readSession(c)
	if session.HasToken() && !sessionExpired(session.Token, time.Now()) {
		if session.Role == RoleAdmin {
			c.Redirect(http.StatusSeeOther, "/admin")
			return
		}
		c.Redirect(http.StatusSeeOther, "/dashboard")
		return
	}

	data := loginViewData{
		baseViewData: a.baseData(c, "Sign in"),
		Next:         sanitizeRedirectTarget(c.Query("next")),
	}
	a.renderPage(c, http.StatusOK, layoutDashboard, templateLoginPath, data)
}

func (a *App) loginSubmitHandler(c *gin.Context) {
	username := strings.TrimSpace(c.PostForm("username"))
	password := c.PostForm("password")
	next := sanitizeRedirectTarget(c.PostForm("next"))

	login, err := a.loginUser(c.Request.Context(), username, password)
	if err != nil {
		status := http.StatusInternalServerError
		message := "Sign in failed. Please try again."
		var apiErr *restclient.APIError
		if errors.As(err, &apiErr) {
			status = apiErr.StatusCode
			if apiErr.StatusCode == http.StatusUnauthorized || apiErr.StatusCode == http.StatusBadRequest {
				message = "Invalid username or password."
			} else if apiErr.Message != "" {
				message = apiErr.Message
			}
		} else {
			a.log.Error("login request failed", "err", err)
		}

		data := loginViewData{
			baseViewData: a.baseData(c, "Sign in"),
			Username:     username,
			Next:         next,
		}
		data.ErrorMessage = message
		a.renderPage(c, status, layoutDashboard, templateLoginPath, data)
		return
	}

	a.startSession(c, login)

	if next != "" && next != "/" {
		c.Redirect(http.StatusSeeOther, next)
		return
	}
	if normalizeRole(login.Role) == RoleAdmin {
		c.Redirect(http.StatusSeeOther, "/admin")
		return
	}
	c.Redirect(http.StatusSeeOther, "/dashboard")
}

func (a *App) backendLoginUser(ctx context.Context, username, password string) (*LoginResponse, error) {
	payload := map[string]string{"username": username, "password": password}
	login, err := restclient.Post[LoginResponse](ctx, a.registry.Desktop, "login-user", payload)
	if err != nil {
		return nil, err
	}
	return &login, nil
}

func (a *App) logoutHandler(c *gin.Context) {
	a.clearSession(c)
	c.Redirect(http.StatusSeeOther, "/login")
}

func (a *App) themeToggleHandler(c *gin.Context) {
	if readTheme(c) == "dark" {
		a.setTheme(c, "light")
	} else {
		a.setTheme(c, "dark")
	}
	c.Redirect(http.StatusSeeOther, sanitizeRedirectTarget(c.PostForm("next")))
}

// sanitizeRedirectTarget keeps post-login and post-toggle redirects inside
// the portal. Anything absolute or schemeful collapses to the root.
func sanitizeRedirectTarget(target string) string {
	target = strings.TrimSpace(target)
	if target == "" {
		return "/"
	}
	if !strings.HasPrefix(target, "/") || strings.HasPrefix(target, "//") {
		return "/"
	}
	return target
}
