package controllers

import (
	"github.com/vitthalk15/DataDash/app/services"
	"github.com/vitthalk15/DataDash/pkg/auth"
	"github.com/vitthalk15/DataDash/pkg/ctx"
)

func listQuery(c *ctx.Context) services.ListQuery {
	return services.ListQuery{
		Page:      c.QueryInt("page", 1),
		Limit:     c.QueryInt("limit", services.DefaultPageSize),
		Search:    c.Query("search"),
		SortBy:    c.DefaultQuery("sortBy", "createdAt"),
		SortOrder: c.DefaultQuery("sortOrder", "desc"),
	}
}

// actor is the authenticated caller, or the zero Principal on public routes.
func actor(c *ctx.Context) auth.Principal {
	p, _ := c.Principal()
	return p
}
