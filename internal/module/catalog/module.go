package catalog

import (
	"github.com/gin-gonic/gin"

	"github.com/simp-lee/shopconsole/internal/domain"
	"github.com/simp-lee/shopconsole/internal/form"
	"github.com/simp-lee/shopconsole/internal/session"
)

// Module implements the app.Module interface for one catalog entity.
type Module[T domain.Entity] struct {
	desc        Descriptor[T]
	handler     *Handler[T]
	pageHandler *PageHandler[T]
	screens     *session.Store[*Screen[T]]
}

// NewModule creates the module for d. Panics if the descriptor is unnamed
// or the backend is nil.
func NewModule[T domain.Entity](d Descriptor[T], deps Deps[T]) *Module[T] {
	if d.Name == "" {
		panic("catalog.NewModule: descriptor name must not be empty")
	}
	if deps.Backend == nil {
		panic("catalog.NewModule: backend must not be nil")
	}
	if deps.Validator == nil {
		deps.Validator = form.NewValidator()
	}
	screens := session.NewStore(deps.Sessions, func(string) *Screen[T] {
		return NewScreen(d, deps)
	})
	h := NewHandler(d, screens, deps.MaxPageSize)
	return &Module[T]{
		desc:        d,
		handler:     h,
		pageHandler: NewPageHandler(h),
		screens:     screens,
	}
}

// Title returns the navigation title.
func (m *Module[T]) Title() string { return m.desc.Title }

// Path returns the page path.
func (m *Module[T]) Path() string { return "/console/" + m.desc.Name }

// RegisterRoutes registers the console API and page routes.
func (m *Module[T]) RegisterRoutes(api *gin.RouterGroup, pages *gin.RouterGroup) {
	g := api.Group("/console/" + m.desc.Name)
	g.GET("", m.handler.List)
	g.POST("/search", m.handler.Search)
	g.POST("/refresh", m.handler.Refresh)
	g.GET("/form", m.handler.GetForm)
	g.POST("/form/open", m.handler.OpenForm)
	g.POST("/form/submit", m.handler.SubmitForm)
	g.POST("/form/close", m.handler.CloseForm)
	g.POST("/delete/request", m.handler.RequestDelete)
	g.POST("/delete/confirm", m.handler.ConfirmDelete)
	g.POST("/delete/cancel", m.handler.CancelDelete)

	pages.GET("/console/"+m.desc.Name, m.pageHandler.ListPage)
}
