package main

import (
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
)

//go:embed templates/*.tmpl static/*
var portalAssetsFS embed.FS

const (
	templateLoginPath      = "templates/login.tmpl"
	templateNotFoundPath   = "templates/not_found.tmpl"
	templateDashboardHome  = "templates/dashboard_home.tmpl"
	templateDashboardPage  = "templates/dashboard_page.tmpl"
	templateGrievancesPath = "templates/grievances.tmpl"
	templateReportsPath    = "templates/reports.tmpl"
	templateAdminHomePath  = "templates/admin_home.tmpl"
	templateMasterListPath = "templates/master_list.tmpl"
	templateMasterFormPath = "templates/master_form.tmpl"
)

var shellTemplates = map[layoutShell]string{
	layoutDashboard: "templates/shell_dashboard.tmpl",
	layoutAdmin:     "templates/shell_admin.tmpl",
}

type pageRenderer struct {
	env string
}

func newPageRenderer(env string) *pageRenderer {
	return &pageRenderer{env: env}
}

// templatesForRender parses the shell and the content template together.
// Development reads from disk so template edits show up without a rebuild;
// everything else serves the embedded copies.
func (r *pageRenderer) templatesForRender(shell layoutShell, contentTemplatePath string) (*template.Template, error) {
	var sourceFS fs.FS
	if r.env == "development" {
		sourceFS = os.DirFS(".")
	} else {
		sourceFS = portalAssetsFS
	}

	shellPath, ok := shellTemplates[shell]
	if !ok {
		return nil, fmt.Errorf("unknown layout shell %q", shell)
	}
	templates, err := template.New("shell").Funcs(template.FuncMap{
		"safe": func(s string) template.HTML {
			return template.HTML(s)
		},
	}).ParseFS(sourceFS, shellPath, contentTemplatePath)
	if err != nil {
		return nil, fmt.Errorf("parse portal templates: %w", err)
	}
	return templates, nil
}

func (a *App) renderPage(c *gin.Context, status int, shell layoutShell, contentTemplatePath string, data any) {
	templates, err := a.renderer.templatesForRender(shell, contentTemplatePath)
	if err != nil {
		c.String(http.StatusInternalServerError, "template error: %v", err)
		return
	}

	c.Status(status)
	if executeErr := templates.ExecuteTemplate(c.Writer, "layout", data); executeErr != nil {
		a.log.Error("render page failed", "error", executeErr)
		if !c.Writer.Written() {
			c.String(http.StatusInternalServerError, "render failure")
		}
	}
}

func portalStaticFileSystem(env string) (http.FileSystem, error) {
	if env == "development" {
		return http.Dir("static"), nil
	}

	sub, err := fs.Sub(portalAssetsFS, "static")
	if err != nil {
		return nil, fmt.Errorf("portal static fs: %w", err)
	}
	return http.FS(sub), nil
}
