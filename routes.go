package main

import (
	"fmt"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"

	"wasteops/libs/routecrypt"
)

// routeSegments is the authoritative map from stable route keys to the
// plaintext segment names they travel as before encryption. The key set is
// fixed for the life of the process.
var routeSegments = map[string]string{
	// module groups
	"masters":    "masters",
	"fleet":      "fleet",
	"workforce":  "workforce",
	"grievances": "grievances",
	"access":     "access",

	// modules
	"continents":       "continents",
	"countries":        "countries",
	"states":           "states",
	"districts":        "districts",
	"cities":           "cities",
	"zones":            "zones",
	"wards":            "wards",
	"properties":       "properties",
	"subProperties":    "sub-properties",
	"customers":        "customers",
	"fuels":            "fuels",
	"vehicleTypes":     "vehicle-types",
	"vehicles":         "vehicles",
	"staff":            "staff",
	"complaints":       "complaints",
	"feedback":         "feedback",
	"wasteCollections": "waste-collections",
	"screens":          "screens",
	"permissions":      "permissions",
	"userType":         "user-type",
	"users":            "users",
}

// moduleGroups pairs each module group with the modules routable under it.
// The opaque router only dispatches pairs registered here.
var moduleGroups = map[string][]string{
	"masters":    {"continents", "countries", "states", "districts", "cities", "zones", "wards", "properties", "subProperties", "customers"},
	"fleet":      {"fuels", "vehicleTypes", "vehicles"},
	"workforce":  {"staff", "wasteCollections"},
	"grievances": {"complaints", "feedback"},
	"access":     {"screens", "permissions", "userType", "users"},
}

// moduleTitles is presentation naming for the generic CRUD pages.
var moduleTitles = map[string]string{
	"continents":       "Continents",
	"countries":        "Countries",
	"states":           "States",
	"districts":        "Districts",
	"cities":           "Cities",
	"zones":            "Zones",
	"wards":            "Wards",
	"properties":       "Properties",
	"subProperties":    "Sub Properties",
	"customers":        "Customers",
	"fuels":            "Fuels",
	"vehicleTypes":     "Vehicle Types",
	"vehicles":         "Vehicles",
	"staff":            "Staff",
	"complaints":       "Complaints",
	"feedback":         "Feedback",
	"wasteCollections": "Waste Collections",
	"screens":          "Screens",
	"permissions":      "Permissions",
	"userType":         "User Types",
	"users":            "Users",
}

// routeTable owns the encoded form of routeSegments. The default map is
// memoized: link generation and link recognition must agree on the same
// literal opaque token, and two independent Encode calls for one plaintext
// differ, so every consumer shares the map computed here once.
type routeTable struct {
	cipher *routecrypt.Cipher
	once   sync.Once
	tokens map[string]string
}

func newRouteTable(cipher *routecrypt.Cipher) *routeTable {
	return &routeTable{cipher: cipher}
}

// Encrypted returns the shared key → opaque-token map, computing it on
// first use. Navigation links must always come from this map, never from ad
// hoc re-encoding.
func (t *routeTable) Encrypted() map[string]string {
	t.once.Do(func() {
		t.tokens = encodeSegments(t.cipher, routeSegments)
	})
	return t.tokens
}

// EncryptedWith merges overrides onto the plaintext map and freshly encodes
// the result. Overrides only replace values of existing keys; the returned
// key set is always exactly the declared key set. Used for isolated
// scenarios that need specific plaintext-to-opaque pairs without touching
// the shared default.
func (t *routeTable) EncryptedWith(overrides map[string]string) map[string]string {
	merged := make(map[string]string, len(routeSegments))
	for key, plaintext := range routeSegments {
		merged[key] = plaintext
	}
	for key, plaintext := range overrides {
		if _, known := merged[key]; known {
			merged[key] = plaintext
		}
	}
	return encodeSegments(t.cipher, merged)
}

func encodeSegments(cipher *routecrypt.Cipher, segments map[string]string) map[string]string {
	tokens := make(map[string]string, len(segments))
	for key, plaintext := range segments {
		token, err := cipher.Encode(plaintext)
		if err != nil {
			// Encoding only fails when the process cannot read random
			// bytes; routing cannot work at all in that state.
			panic(fmt.Sprintf("encode route segment %q: %v", key, err))
		}
		tokens[key] = token
	}
	return tokens
}

// segmentKey maps a decoded plaintext segment back to its route key.
func segmentKey(plaintext string) (string, bool) {
	for key, value := range routeSegments {
		if value == plaintext {
			return key, true
		}
	}
	return "", false
}

// modulePath builds the opaque list URL for a module from the shared map.
func (a *App) modulePath(groupKey, moduleKey string) string {
	tokens := a.routes.Encrypted()
	return fmt.Sprintf("/%s/%s", tokens[groupKey], tokens[moduleKey])
}

type crudAction int

const (
	actionList crudAction = iota
	actionNewForm
	actionCreate
	actionEditForm
	actionUpdate
	actionDelete
	actionToggle
)

func (a *App) registerRoutes(r *gin.Engine) {
	staticFS, err := portalStaticFileSystem(a.cfg.Env)
	if err != nil {
		panic(err)
	}
	r.StaticFS("/static", staticFS)

	r.GET("/login", a.loginPageHandler)
	r.POST("/login", a.loginSubmitHandler)
	r.POST("/logout", a.logoutHandler)
	r.POST("/theme", a.themeToggleHandler)

	r.GET("/", a.requirePage(), a.rootRedirectHandler)

	dashboard := r.Group("/dashboard")
	dashboard.Use(a.requirePage(), a.redirectAdminFromDashboard())
	{
		dashboard.GET("", a.dashboardHomeHandler)
		dashboard.GET("/map", a.dashboardPageHandler("map", "City Map"))
		dashboard.GET("/vehicle", a.dashboardPageHandler("vehicle", "Vehicles"))
		dashboard.GET("/waste-collection", a.dashboardPageHandler("waste-collection", "Waste Collection"))
		dashboard.GET("/resources", a.dashboardPageHandler("resources", "Resources"))
		dashboard.GET("/grievances", a.grievancesPageHandler)
		dashboard.POST("/grievances/:id/escalate", a.grievanceEscalateHandler)
		dashboard.GET("/alerts", a.dashboardPageHandler("alerts", "Alerts"))
		dashboard.GET("/reports", a.reportsPageHandler)
		dashboard.GET("/reports/pdf", a.reportsPDFHandler)
		dashboard.GET("/weighbridge", a.dashboardPageHandler("weighbridge", "Weighbridge"))
	}

	r.GET("/admin", a.requirePage(RoleAdmin), a.adminLandingHandler)

	// The opaque route family: two cipher-encoded dynamic segments plus the
	// optional action suffixes. Static routes above win over these params.
	opaque := r.Group("/:group/:module")
	opaque.Use(a.requirePage(RoleAdmin))
	{
		opaque.GET("", a.opaqueModuleHandler(actionList))
		opaque.GET("/new", a.opaqueModuleHandler(actionNewForm))
		opaque.POST("", a.opaqueModuleHandler(actionCreate))
		opaque.GET("/:id/edit", a.opaqueModuleHandler(actionEditForm))
		opaque.POST("/:id/edit", a.opaqueModuleHandler(actionUpdate))
		opaque.POST("/:id/delete", a.opaqueModuleHandler(actionDelete))
		opaque.POST("/:id/toggle", a.opaqueModuleHandler(actionToggle))
	}

	r.NoRoute(a.notFoundHandler)
}

// resolveOpaquePath decodes both dynamic segments and maps the plaintext
// pair back to a registered (group, module). Any decode failure or an
// unregistered pair reports ok=false; the caller falls through to the
// not-found view, never an error page.
func (a *App) resolveOpaquePath(groupToken, moduleToken string) (groupKey, moduleKey string, ok bool) {
	groupPlain, ok := a.cipher.Decode(groupToken)
	if !ok {
		return "", "", false
	}
	modulePlain, ok := a.cipher.Decode(moduleToken)
	if !ok {
		return "", "", false
	}
	groupKey, ok = segmentKey(groupPlain)
	if !ok {
		return "", "", false
	}
	moduleKey, ok = segmentKey(modulePlain)
	if !ok {
		return "", "", false
	}
	for _, registered := range moduleGroups[groupKey] {
		if registered == moduleKey {
			return groupKey, moduleKey, true
		}
	}
	return "", "", false
}

func (a *App) opaqueModuleHandler(action crudAction) gin.HandlerFunc {
	return func(c *gin.Context) {
		groupKey, moduleKey, ok := a.resolveOpaquePath(c.Param("group"), c.Param("module"))
		if !ok {
			a.renderNotFound(c)
			return
		}
		resource, ok := a.registry.Master(moduleKey)
		if !ok {
			a.renderNotFound(c)
			return
		}
		module := masterModule{
			GroupKey:  groupKey,
			ModuleKey: moduleKey,
			Title:     moduleTitles[moduleKey],
			BasePath:  a.modulePath(groupKey, moduleKey),
		}
		a.serveMasterAction(c, module, resource, action, c.Param("id"))
	}
}

func (a *App) rootRedirectHandler(c *gin.Context) {
	session := mustSession(c)
	if session.Role == RoleAdmin {
		c.Redirect(http.StatusSeeOther, "/admin")
		return
	}
	c.Redirect(http.StatusSeeOther, "/dashboard")
}
