package main

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"wasteops/libs/restclient"
)

// serveMasterAction implements the generic list/create/update/delete cycle
// shared by every opaque-routed master module. Individual field sets per
// entity are deliberately uniform; the backend owns validation.
func (a *App) serveMasterAction(c *gin.Context, module masterModule, resource *restclient.Resource[Master], action crudAction, id string) {
	switch action {
	case actionList:
		a.masterListPage(c, module, resource, "")
	case actionNewForm:
		data := masterFormViewData{
			baseViewData: a.baseData(c, module.Title+" · New"),
			Module:       module,
			Item:         Master{IsActive: true},
		}
		a.renderPage(c, http.StatusOK, layoutAdmin, templateMasterFormPath, data)
	case actionCreate:
		a.masterCreate(c, module, resource)
	case actionEditForm:
		a.masterEditForm(c, module, resource, id)
	case actionUpdate:
		a.masterUpdate(c, module, resource, id)
	case actionDelete:
		a.masterDelete(c, module, resource, id)
	case actionToggle:
		a.masterToggle(c, module, resource, id)
	default:
		a.renderNotFound(c)
	}
}

func (a *App) masterListPage(c *gin.Context, module masterModule, resource *restclient.Resource[Master], errorMessage string) {
	data := masterListViewData{
		baseViewData: a.baseData(c, module.Title),
		Module:       module,
	}
	data.ErrorMessage = errorMessage

	items, err := resource.List(c.Request.Context())
	if err != nil {
		a.log.Error("list failed", "module", module.ModuleKey, "err", err)
		if data.ErrorMessage == "" {
			data.ErrorMessage = "Could not load " + module.Title + "."
		}
		a.renderPage(c, http.StatusOK, layoutAdmin, templateMasterListPath, data)
		return
	}
	data.Items = items
	a.renderPage(c, http.StatusOK, layoutAdmin, templateMasterListPath, data)
}

func masterFromForm(c *gin.Context) Master {
	return Master{
		Name:        strings.TrimSpace(c.PostForm("name")),
		Code:        strings.TrimSpace(c.PostForm("code")),
		Description: strings.TrimSpace(c.PostForm("description")),
		IsActive:    c.PostForm("is_active") == "on" || c.PostForm("is_active") == "true",
	}
}

// renderFormError keeps the submitted values on screen so the operator can
// retry without re-entering data. Structured backend field errors become a
// multi-line summary; anything else is the generic failure message.
func (a *App) renderFormError(c *gin.Context, module masterModule, item Master, isEdit bool, err error) {
	status := http.StatusInternalServerError
	message := "Save failed. Please try again."
	var apiErr *restclient.APIError
	if errors.As(err, &apiErr) {
		status = apiErr.StatusCode
		if summary := apiErr.FieldSummary(); summary != "" {
			message = summary
		}
	} else {
		a.log.Error("save failed", "module", module.ModuleKey, "err", err)
	}

	title := module.Title + " · New"
	if isEdit {
		title = module.Title + " · Edit"
	}
	data := masterFormViewData{
		baseViewData: a.baseData(c, title),
		Module:       module,
		Item:         item,
		IsEdit:       isEdit,
	}
	data.ErrorMessage = message
	a.renderPage(c, status, layoutAdmin, templateMasterFormPath, data)
}

func (a *App) masterCreate(c *gin.Context, module masterModule, resource *restclient.Resource[Master]) {
	item := masterFromForm(c)
	if _, err := resource.Create(c.Request.Context(), item); err != nil {
		a.renderFormError(c, module, item, false, err)
		return
	}
	c.Redirect(http.StatusSeeOther, module.BasePath)
}

func (a *App) masterEditForm(c *gin.Context, module masterModule, resource *restclient.Resource[Master], id string) {
	item, err := resource.Get(c.Request.Context(), id)
	if err != nil {
		var apiErr *restclient.APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound {
			a.renderNotFound(c)
			return
		}
		a.log.Error("load item failed", "module", module.ModuleKey, "id", id, "err", err)
		a.masterListPage(c, module, resource, "Could not load the selected record.")
		return
	}

	data := masterFormViewData{
		baseViewData: a.baseData(c, module.Title+" · Edit"),
		Module:       module,
		Item:         item,
		IsEdit:       true,
	}
	a.renderPage(c, http.StatusOK, layoutAdmin, templateMasterFormPath, data)
}

func (a *App) masterUpdate(c *gin.Context, module masterModule, resource *restclient.Resource[Master], id string) {
	item := masterFromForm(c)
	if _, err := resource.Update(c.Request.Context(), id, item); err != nil {
		// The form body has no identifier, so the re-rendered form must get
		// the path id back or its action would target record 0.
		item.UniqueID = id
		a.renderFormError(c, module, item, true, err)
		return
	}
	c.Redirect(http.StatusSeeOther, module.BasePath)
}

func (a *App) masterDelete(c *gin.Context, module masterModule, resource *restclient.Resource[Master], id string) {
	if err := resource.Delete(c.Request.Context(), id); err != nil {
		a.log.Error("delete failed", "module", module.ModuleKey, "id", id, "err", err)
		a.masterListPage(c, module, resource, "Delete failed.")
		return
	}
	c.Redirect(http.StatusSeeOther, module.BasePath)
}

// masterToggle flips is_active and redirects back to the list page, whose
// render re-fetches the collection and resyncs the displayed state.
func (a *App) masterToggle(c *gin.Context, module masterModule, resource *restclient.Resource[Master], id string) {
	item, err := resource.Get(c.Request.Context(), id)
	if err != nil {
		a.log.Error("toggle load failed", "module", module.ModuleKey, "id", id, "err", err)
		a.masterListPage(c, module, resource, "Status change failed.")
		return
	}

	if _, err := resource.Patch(c.Request.Context(), id, map[string]any{"is_active": !item.IsActive}); err != nil {
		a.log.Error("toggle failed", "module", module.ModuleKey, "id", id, "err", err)
		a.masterListPage(c, module, resource, "Status change failed.")
		return
	}

	c.Redirect(http.StatusSeeOther, module.BasePath)
}
