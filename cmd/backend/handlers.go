package main

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

const (
	defaultPageSize = 50
	maxPageSize     = 500
)

func (a *App) registerRoutes(r *gin.Engine) {
	// Clients address collections with a trailing slash; both spellings are
	// registered so no method-changing redirect is involved.
	both := func(method, path string, handler gin.HandlerFunc) {
		r.Handle(method, path, handler)
		r.Handle(method, path+"/", handler)
	}

	both(http.MethodPost, "/login-user", a.loginUserHandler)

	both(http.MethodGet, "/:resource", a.resourceListHandler)
	both(http.MethodPost, "/:resource", a.resourceCreateHandler)
	both(http.MethodGet, "/:resource/:ref", a.resourceGetHandler)
	both(http.MethodPut, "/:resource/:ref", a.resourceReplaceHandler)
	both(http.MethodPatch, "/:resource/:ref", a.resourcePatchHandler)
	both(http.MethodDelete, "/:resource/:ref", a.resourceDeleteHandler)
}

func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"detail": message})
}

func respondFieldErrors(c *gin.Context, fields map[string][]string) {
	c.JSON(http.StatusBadRequest, fields)
}

func (a *App) resourceName(c *gin.Context) (string, bool) {
	name := c.Param("resource")
	if !isKnownResource(name) {
		respondError(c, http.StatusNotFound, "Unknown resource.")
		return "", false
	}
	return name, true
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (a *App) loginUserHandler(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Request body must be valid JSON.")
		return
	}

	fields := map[string][]string{}
	if strings.TrimSpace(req.Username) == "" {
		fields["username"] = []string{"This field is required."}
	}
	if req.Password == "" {
		fields["password"] = []string{"This field is required."}
	}
	if len(fields) > 0 {
		respondFieldErrors(c, fields)
		return
	}

	acc, err := a.storeFindAccount(c.Request.Context(), strings.TrimSpace(req.Username))
	if err != nil {
		if errors.Is(err, errRecordNotFound) {
			respondError(c, http.StatusUnauthorized, "Invalid username or password.")
			return
		}
		a.log.Error("account lookup failed", "error", err)
		respondError(c, http.StatusInternalServerError, "Something went wrong.")
		return
	}

	if bcrypt.CompareHashAndPassword([]byte(acc.PasswordHash), []byte(req.Password)) != nil {
		respondError(c, http.StatusUnauthorized, "Invalid username or password.")
		return
	}

	token, err := a.createAccessToken(acc)
	if err != nil {
		a.log.Error("token signing failed", "error", err)
		respondError(c, http.StatusInternalServerError, "Something went wrong.")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"access_token": token,
		"role":         acc.Role,
		"unique_id":    acc.UniqueID,
		"user_name":    acc.UserName,
		"user_email":   acc.UserEmail,
	})
}

func (a *App) createAccessToken(acc account) (string, error) {
	claims := jwt.MapClaims{
		"sub":       acc.Username,
		"role":      acc.Role,
		"unique_id": acc.UniqueID,
		"iat":       time.Now().Unix(),
		"exp":       time.Now().Add(a.cfg.TokenTTL).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(a.cfg.SigningSecret))
}

func (a *App) resourceListHandler(c *gin.Context) {
	resource, ok := a.resourceName(c)
	if !ok {
		return
	}

	paged := c.Query("page") != "" || c.Query("page_size") != ""
	page := queryInt(c, "page", 1)
	pageSize := queryInt(c, "page_size", defaultPageSize)
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > maxPageSize {
		pageSize = defaultPageSize
	}

	records, total, err := a.storeListRecords(c.Request.Context(), resource, page, pageSize)
	if err != nil {
		a.log.Error("list failed", "resource", resource, "error", err)
		respondError(c, http.StatusInternalServerError, "Something went wrong.")
		return
	}

	results := make([]map[string]any, 0, len(records))
	for _, rec := range records {
		body, err := rec.recordBody()
		if err != nil {
			a.log.Error("record decode failed", "resource", resource, "id", rec.ID, "error", err)
			respondError(c, http.StatusInternalServerError, "Something went wrong.")
			return
		}
		results = append(results, body)
	}

	if paged {
		c.JSON(http.StatusOK, gin.H{"count": total, "results": results})
		return
	}
	c.JSON(http.StatusOK, results)
}

func (a *App) resourceGetHandler(c *gin.Context) {
	resource, ok := a.resourceName(c)
	if !ok {
		return
	}

	rec, err := a.storeGetRecord(c.Request.Context(), resource, c.Param("ref"))
	if err != nil {
		a.respondRecordError(c, resource, err)
		return
	}
	a.respondRecord(c, http.StatusOK, resource, rec)
}

func (a *App) resourceCreateHandler(c *gin.Context) {
	resource, ok := a.resourceName(c)
	if !ok {
		return
	}

	payload, isActive, ok := a.bindRecordPayload(c)
	if !ok {
		return
	}

	rec, err := a.storeCreateRecord(c.Request.Context(), resource, payload, isActive)
	if err != nil {
		a.log.Error("create failed", "resource", resource, "error", err)
		respondError(c, http.StatusInternalServerError, "Something went wrong.")
		return
	}
	a.respondRecord(c, http.StatusCreated, resource, rec)
}

func (a *App) resourceReplaceHandler(c *gin.Context) {
	resource, ok := a.resourceName(c)
	if !ok {
		return
	}

	payload, isActive, ok := a.bindRecordPayload(c)
	if !ok {
		return
	}

	rec, err := a.storeReplaceRecord(c.Request.Context(), resource, c.Param("ref"), payload, isActive)
	if err != nil {
		a.respondRecordError(c, resource, err)
		return
	}
	a.respondRecord(c, http.StatusOK, resource, rec)
}

func (a *App) resourcePatchHandler(c *gin.Context) {
	resource, ok := a.resourceName(c)
	if !ok {
		return
	}

	var patch map[string]any
	if err := c.ShouldBindJSON(&patch); err != nil {
		respondError(c, http.StatusBadRequest, "Request body must be valid JSON.")
		return
	}

	rec, err := a.storePatchRecord(c.Request.Context(), resource, c.Param("ref"), patch)
	if err != nil {
		a.respondRecordError(c, resource, err)
		return
	}
	a.respondRecord(c, http.StatusOK, resource, rec)
}

func (a *App) resourceDeleteHandler(c *gin.Context) {
	resource, ok := a.resourceName(c)
	if !ok {
		return
	}

	if err := a.storeDeleteRecord(c.Request.Context(), resource, c.Param("ref")); err != nil {
		a.respondRecordError(c, resource, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// bindRecordPayload validates a create/replace body. Row-level columns are
// split out of the payload so they land in their own columns.
func (a *App) bindRecordPayload(c *gin.Context) (map[string]any, bool, bool) {
	var payload map[string]any
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondError(c, http.StatusBadRequest, "Request body must be valid JSON.")
		return nil, false, false
	}

	fields := map[string][]string{}
	name, _ := payload["name"].(string)
	if strings.TrimSpace(name) == "" {
		fields["name"] = []string{"This field is required."}
	}
	if len(fields) > 0 {
		respondFieldErrors(c, fields)
		return nil, false, false
	}

	isActive := true
	if flag, ok := payload["is_active"].(bool); ok {
		isActive = flag
	}
	for _, column := range []string{"id", "unique_id", "is_active", "created_at", "updated_at"} {
		delete(payload, column)
	}
	return payload, isActive, true
}

func (a *App) respondRecord(c *gin.Context, status int, resource string, rec storedRecord) {
	body, err := rec.recordBody()
	if err != nil {
		a.log.Error("record decode failed", "resource", resource, "id", rec.ID, "error", err)
		respondError(c, http.StatusInternalServerError, "Something went wrong.")
		return
	}
	c.JSON(status, body)
}

func (a *App) respondRecordError(c *gin.Context, resource string, err error) {
	if errors.Is(err, errRecordNotFound) {
		respondError(c, http.StatusNotFound, "Not found.")
		return
	}
	a.log.Error("record operation failed", "resource", resource, "error", err)
	respondError(c, http.StatusInternalServerError, "Something went wrong.")
}

func queryInt(c *gin.Context, key string, fallback int) int {
	raw := c.Query(key)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}
