package audit

import "github.com/gin-gonic/gin"

// Module implements the app.Module interface for the audit log.
type Module struct {
	handler *Handler
}

// NewModule creates the audit module. Panics if h is nil.
func NewModule(h *Handler) *Module {
	if h == nil {
		panic("audit.NewModule: handler must not be nil")
	}
	return &Module{handler: h}
}

// RegisterRoutes registers the audit API route. The audit log has no page.
func (m *Module) RegisterRoutes(api *gin.RouterGroup, _ *gin.RouterGroup) {
	api.GET("/audit", m.handler.List)
}
