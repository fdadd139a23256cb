package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-pdf/fpdf"
)

func (a *App) dashboardHomeHandler(c *gin.Context) {
	data := dashboardViewData{
		baseViewData: a.baseData(c, "Dashboard"),
		PageKey:      "home",
	}
	a.renderPage(c, http.StatusOK, layoutDashboard, templateDashboardHome, data)
}

// dashboardPageHandler serves the static dashboard pages that share one
// content template; the individual page bodies are presentation chrome.
func (a *App) dashboardPageHandler(pageKey, title string) gin.HandlerFunc {
	return func(c *gin.Context) {
		data := dashboardViewData{
			baseViewData: a.baseData(c, title),
			PageKey:      pageKey,
		}
		a.renderPage(c, http.StatusOK, layoutDashboard, templateDashboardPage, data)
	}
}

// grievancesPageHandler is the one list fetch that supports an abort
// signal: the request context cancels the backend call when the visitor
// navigates away mid-fetch.
func (a *App) grievancesPageHandler(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), grievanceFetchTimeout)
	defer cancel()

	data := grievancesViewData{baseViewData: a.baseData(c, "Grievances")}

	complaints, err := a.fetchComplaints(ctx)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		a.log.Error("fetch complaints failed", "err", err)
		data.ErrorMessage = "Could not load grievances. Please retry."
		a.renderPage(c, http.StatusOK, layoutDashboard, templateGrievancesPath, data)
		return
	}

	sort.SliceStable(complaints, func(i, j int) bool {
		return complaints[i].CreatedAt > complaints[j].CreatedAt
	})
	data.Complaints = complaints
	a.renderPage(c, http.StatusOK, layoutDashboard, templateGrievancesPath, data)
}

func (a *App) grievanceEscalateHandler(c *gin.Context) {
	id := c.Param("id")
	complaint, err := a.escalateComplaint(c.Request.Context(), id)
	if err != nil {
		a.log.Error("escalate complaint failed", "id", id, "err", err)
		c.Redirect(http.StatusSeeOther, "/dashboard/grievances")
		return
	}

	if err := a.sendEscalationNotice(*complaint); err != nil {
		// The status change already succeeded; a failed notice is logged,
		// not retried.
		a.log.Error("escalation notice failed", "id", id, "err", err)
	}
	c.Redirect(http.StatusSeeOther, "/dashboard/grievances")
}

func (a *App) reportsPageHandler(c *gin.Context) {
	data := reportsViewData{baseViewData: a.baseData(c, "Workforce Reports")}

	staff, err := a.fetchStaff(c.Request.Context())
	if err != nil {
		a.log.Error("fetch staff failed", "err", err)
		data.ErrorMessage = "Could not load workforce data."
		a.renderPage(c, http.StatusOK, layoutDashboard, templateReportsPath, data)
		return
	}
	collections, err := a.fetchWasteCollection(c.Request.Context())
	if err != nil {
		a.log.Error("fetch waste collections failed", "err", err)
		data.ErrorMessage = "Could not load collection data."
		a.renderPage(c, http.StatusOK, layoutDashboard, templateReportsPath, data)
		return
	}

	data.StaffCount = len(staff)
	for _, member := range staff {
		if member.IsActive {
			data.ActiveStaff++
		}
	}
	data.CollectionCount = len(collections)
	for _, trip := range collections {
		data.TotalWeightKg += trip.WeightKg
	}
	a.renderPage(c, http.StatusOK, layoutDashboard, templateReportsPath, data)
}

func (a *App) reportsPDFHandler(c *gin.Context) {
	staff, err := a.fetchStaff(c.Request.Context())
	if err != nil {
		a.log.Error("fetch staff failed", "err", err)
		c.String(http.StatusBadGateway, "workforce data unavailable")
		return
	}
	collections, err := a.fetchWasteCollection(c.Request.Context())
	if err != nil {
		a.log.Error("fetch waste collections failed", "err", err)
		c.String(http.StatusBadGateway, "collection data unavailable")
		return
	}

	generated := time.Now().UTC().Format("2006-01-02")
	pdfBytes, err := buildWorkforcePDF(staff, collections, generated)
	if err != nil {
		a.log.Error("build workforce pdf failed", "err", err)
		c.String(http.StatusInternalServerError, "report generation failed")
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=workforce-report-%s.pdf", generated))
	c.Data(http.StatusOK, "application/pdf", pdfBytes)
}

func buildWorkforcePDF(staff []StaffMember, collections []WasteCollection, generated string) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Helvetica", "", 16)
	pdf.Cell(0, 10, "Workforce Report")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 11)
	pdf.Cell(0, 8, fmt.Sprintf("Generated: %s", generated))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Staff on roll: %d", len(staff)))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Collection trips: %d", len(collections)))
	pdf.Ln(10)

	wardStaff := map[string]int{}
	for _, member := range staff {
		ward := member.WardName
		if ward == "" {
			ward = "(unassigned)"
		}
		wardStaff[ward]++
	}

	pdf.SetFont("Helvetica", "B", 11)
	pdf.Cell(0, 8, "Staff by ward")
	pdf.Ln(8)
	pdf.SetFont("Helvetica", "", 10)
	wards := make([]string, 0, len(wardStaff))
	for ward := range wardStaff {
		wards = append(wards, ward)
	}
	sort.Slice(wards, func(i, j int) bool { return wardStaff[wards[i]] > wardStaff[wards[j]] })
	for _, ward := range wards {
		pdf.Cell(0, 6, fmt.Sprintf("- %s: %d", ward, wardStaff[ward]))
		pdf.Ln(6)
	}

	wardWeight := map[string]float64{}
	for _, trip := range collections {
		ward := trip.WardName
		if ward == "" {
			ward = "(unassigned)"
		}
		wardWeight[ward] += trip.WeightKg
	}

	pdf.Ln(4)
	pdf.SetFont("Helvetica", "B", 11)
	pdf.Cell(0, 8, "Collected weight by ward (kg)")
	pdf.Ln(8)
	pdf.SetFont("Helvetica", "", 10)
	weightWards := make([]string, 0, len(wardWeight))
	for ward := range wardWeight {
		weightWards = append(weightWards, ward)
	}
	sort.Slice(weightWards, func(i, j int) bool { return wardWeight[weightWards[i]] > wardWeight[weightWards[j]] })
	for _, ward := range weightWards {
		pdf.Cell(0, 6, fmt.Sprintf("- %s: %.1f", ward, wardWeight[ward]))
		pdf.Ln(6)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (a *App) adminLandingHandler(c *gin.Context) {
	data := adminHomeViewData{baseViewData: a.baseData(c, "Administration")}

	groupOrder := []string{"masters", "fleet", "workforce", "grievances", "access"}
	groupTitles := map[string]string{
		"masters":    "Geo & Property Masters",
		"fleet":      "Fleet",
		"workforce":  "Workforce",
		"grievances": "Grievances",
		"access":     "Access Control",
	}
	for _, groupKey := range groupOrder {
		group := adminNavGroup{Title: groupTitles[groupKey]}
		for _, moduleKey := range moduleGroups[groupKey] {
			group.Links = append(group.Links, adminNavLink{
				Title: moduleTitles[moduleKey],
				URL:   a.modulePath(groupKey, moduleKey),
			})
		}
		data.Groups = append(data.Groups, group)
	}
	a.renderPage(c, http.StatusOK, layoutAdmin, templateAdminHomePath, data)
}

func (a *App) notFoundHandler(c *gin.Context) {
	a.renderNotFound(c)
}

func (a *App) renderNotFound(c *gin.Context) {
	shell := layoutForRole(readSession(c).Role, layoutAuto)
	a.renderPage(c, http.StatusNotFound, shell, templateNotFoundPath, a.baseData(c, "Not Found"))
}
