package app

import "github.com/gin-gonic/gin"

// Module defines the contract for a self-registering console module.
// Each module registers its own API and page routes.
type Module interface {
	RegisterRoutes(api *gin.RouterGroup, pages *gin.RouterGroup)
}

// Page is implemented by modules that own a console page listed in the
// navigation.
type Page interface {
	Title() string
	Path() string
}

// NavLink is one navigation entry.
type NavLink struct {
	Title string
	Path  string
}

// NavLinks returns the navigation entries of the modules that own a page,
// in module order.
func NavLinks(modules []Module) []NavLink {
	links := make([]NavLink, 0, len(modules))
	for _, m := range modules {
		if p, ok := m.(Page); ok {
			links = append(links, NavLink{Title: p.Title(), Path: p.Path()})
		}
	}
	return links
}
