// Package graphql exposes the reporting queries (dashboard, monthly
// sales, top products, low stock) as a GraphQL schema.
package graphql

import (
	"context"
	"net/http"

	"github.com/graphql-go/graphql"
	"github.com/shopspring/decimal"

	"github.com/vitthalk15/DataDash/app/models"
	"github.com/vitthalk15/DataDash/app/services"
	"github.com/vitthalk15/DataDash/pkg/auth"
	gql "github.com/vitthalk15/DataDash/pkg/graphql"
)

// Reports is the subset of AnalyticsService the schema resolves against.
type Reports interface {
	Dashboard(ctx context.Context, actor auth.Principal) (*services.Dashboard, error)
	SalesByMonth(ctx context.Context, actor auth.Principal, months int) ([]services.MonthlySales, error)
	TopProducts(ctx context.Context, actor auth.Principal, limit int) ([]services.TopProduct, error)
	LowStock(ctx context.Context, actor auth.Principal, threshold int) ([]models.Product, error)
}

// money renders a decimal field as a string so no precision is lost.
func money(get func(src any) decimal.Decimal) *graphql.Field {
	return &graphql.Field{
		Type: graphql.NewNonNull(graphql.String),
		Resolve: func(p graphql.ResolveParams) (any, error) {
			return get(p.Source).String(), nil
		},
	}
}

var statusBucketType = graphql.NewObject(graphql.ObjectConfig{
	Name: "StatusBucket",
	Fields: graphql.Fields{
		"status":  &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		"count":   &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
		"revenue": money(func(s any) decimal.Decimal { return s.(services.StatusBucket).Revenue }),
	},
})

var roleCountType = graphql.NewObject(graphql.ObjectConfig{
	Name: "RoleCount",
	Fields: graphql.Fields{
		"role":  &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		"count": &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
	},
})

var dashboardType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Dashboard",
	Fields: graphql.Fields{
		"totalOrders":       &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
		"totalRevenue":      money(func(s any) decimal.Decimal { return s.(*services.Dashboard).TotalRevenue }),
		"averageOrderValue": money(func(s any) decimal.Decimal { return s.(*services.Dashboard).AverageOrderValue }),
		"ordersByStatus":    &graphql.Field{Type: graphql.NewList(statusBucketType)},
		"totalProducts":     &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
		"lowStockProducts":  &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
		"totalUsers":        &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
		"usersByRole":       &graphql.Field{Type: graphql.NewList(roleCountType)},
	},
})

var monthlySalesType = graphql.NewObject(graphql.ObjectConfig{
	Name: "MonthlySales",
	Fields: graphql.Fields{
		"month":   &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		"orders":  &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
		"revenue": money(func(s any) decimal.Decimal { return s.(services.MonthlySales).Revenue }),
	},
})

var topProductType = graphql.NewObject(graphql.ObjectConfig{
	Name: "TopProduct",
	Fields: graphql.Fields{
		"productId": &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		"name":      &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		"quantity":  &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
		"revenue":   money(func(s any) decimal.Decimal { return s.(services.TopProduct).Revenue }),
	},
})

var productType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Product",
	Fields: graphql.Fields{
		"_id":      &graphql.Field{Type: graphql.NewNonNull(graphql.ID)},
		"name":     &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		"category": &graphql.Field{Type: graphql.String},
		"stock":    &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
		"price":    money(func(s any) decimal.Decimal { return s.(models.Product).Price }),
	},
})

// Schema builds the reporting schema over reports.
func Schema(reports Reports) (graphql.Schema, error) {
	actor := func(p graphql.ResolveParams) auth.Principal {
		a, _ := auth.FromContext(p.Context)
		return a
	}

	query := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"dashboard": &graphql.Field{
				Type: dashboardType,
				Resolve: func(p graphql.ResolveParams) (any, error) {
					return reports.Dashboard(p.Context, actor(p))
				},
			},
			"salesByMonth": &graphql.Field{
				Type: graphql.NewList(monthlySalesType),
				Args: graphql.FieldConfigArgument{
					"months": &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 12},
				},
				Resolve: func(p graphql.ResolveParams) (any, error) {
					months, _ := p.Args["months"].(int)
					return reports.SalesByMonth(p.Context, actor(p), months)
				},
			},
			"topProducts": &graphql.Field{
				Type: graphql.NewList(topProductType),
				Args: graphql.FieldConfigArgument{
					"limit": &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 5},
				},
				Resolve: func(p graphql.ResolveParams) (any, error) {
					limit, _ := p.Args["limit"].(int)
					return reports.TopProducts(p.Context, actor(p), limit)
				},
			},
			"lowStock": &graphql.Field{
				Type: graphql.NewList(productType),
				Args: graphql.FieldConfigArgument{
					"threshold": &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: services.DefaultLowStockThreshold},
				},
				Resolve: func(p graphql.ResolveParams) (any, error) {
					threshold, _ := p.Args["threshold"].(int)
					return reports.LowStock(p.Context, actor(p), threshold)
				},
			},
		},
	})
	return gql.NewSchema(query)
}

// Handler serves the reporting schema.
func Handler(reports Reports) (http.Handler, error) {
	schema, err := Schema(reports)
	if err != nil {
		return nil, err
	}
	return gql.Handler(schema), nil
}
