package main

import "github.com/gin-gonic/gin"

type baseViewData struct {
	Title        string
	Theme        string
	UserName     string
	Role         Role
	ErrorMessage string
	FlashMessage string
}

func (a *App) baseData(c *gin.Context, title string) baseViewData {
	data := baseViewData{
		Title: title,
		Theme: readTheme(c),
	}
	if session, ok := currentSession(c); ok {
		data.UserName = session.Name
		data.Role = session.Role
	}
	return data
}

type loginViewData struct {
	baseViewData
	Username string
	Next     string
}

type dashboardViewData struct {
	baseViewData
	PageKey string
}

type grievancesViewData struct {
	baseViewData
	Complaints []Complaint
}

type reportsViewData struct {
	baseViewData
	StaffCount      int
	ActiveStaff     int
	CollectionCount int
	TotalWeightKg   float64
}

type adminNavLink struct {
	Title string
	URL   string
}

type adminNavGroup struct {
	Title string
	Links []adminNavLink
}

type adminHomeViewData struct {
	baseViewData
	Groups []adminNavGroup
}

// masterModule describes one opaque-routed CRUD module to the generic
// templates. BasePath is the opaque list URL all actions hang off.
type masterModule struct {
	GroupKey  string
	ModuleKey string
	Title     string
	BasePath  string
}

type masterListViewData struct {
	baseViewData
	Module masterModule
	Items  []Master
}

type masterFormViewData struct {
	baseViewData
	Module masterModule
	Item   Master
	IsEdit bool
}
