package transaction

import (
	"log/slog"

	"github.com/gin-gonic/gin"

	"github.com/simp-lee/shopconsole/internal/domain"
	"github.com/simp-lee/shopconsole/internal/session"
)

// Deps holds the dependencies of the transaction module.
type Deps struct {
	Backend     Backend
	Audit       domain.AuditRecorder
	Logger      *slog.Logger
	Sessions    session.Config
	PageSize    int
	MaxPageSize int
}

// Module implements the app.Module interface for transaction review.
type Module struct {
	handler     *Handler
	pageHandler *PageHandler
}

// NewModule creates the transaction module. Panics if the backend is nil.
func NewModule(deps Deps) *Module {
	if deps.Backend == nil {
		panic("transaction.NewModule: backend must not be nil")
	}
	screens := session.NewStore(deps.Sessions, func(string) *Screen {
		return NewScreen(Config{
			Backend:  deps.Backend,
			Audit:    deps.Audit,
			Logger:   deps.Logger,
			PageSize: deps.PageSize,
		})
	})
	h := NewHandler(screens, deps.MaxPageSize)
	return &Module{handler: h, pageHandler: NewPageHandler(h)}
}

// Title returns the navigation title.
func (m *Module) Title() string { return "Transactions" }

// Path returns the page path.
func (m *Module) Path() string { return "/console/transactions" }

// RegisterRoutes registers the review API and page routes.
func (m *Module) RegisterRoutes(api *gin.RouterGroup, pages *gin.RouterGroup) {
	g := api.Group("/console/transactions")
	g.GET("", m.handler.List)
	g.POST("/search", m.handler.Search)
	g.POST("/refresh", m.handler.Refresh)
	g.POST("/:id/approve", m.handler.Approve)
	g.POST("/:id/reject", m.handler.Reject)

	pages.GET("/console/transactions", m.pageHandler.ListPage)
}
