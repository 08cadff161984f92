package dashboard

import "github.com/gin-gonic/gin"

// Module implements the app.Module interface for the dashboard.
type Module struct {
	handler *Handler
}

// NewModule creates the dashboard module.
func NewModule(cfg Config) *Module {
	return &Module{handler: NewHandler(NewService(cfg))}
}

// Title returns the navigation title.
func (m *Module) Title() string { return "Dashboard" }

// Path returns the page path.
func (m *Module) Path() string { return "/dashboard" }

// RegisterRoutes registers the dashboard API and page routes.
func (m *Module) RegisterRoutes(api *gin.RouterGroup, pages *gin.RouterGroup) {
	api.GET("/dashboard", m.handler.Summary)
	pages.GET("/dashboard", m.handler.Page)
}
