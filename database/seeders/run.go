// Package seeders fills a fresh store with the administrator account and
// a sample catalog. Seeders go through the repository interfaces so every
// store driver receives the same data, and each one is safe to re-run.
//
//	datavista seed
package seeders

import (
	"context"
	"fmt"
	"io"

	"github.com/shopspring/decimal"

	"github.com/vitthalk15/DataDash/app/models"
	"github.com/vitthalk15/DataDash/app/repositories"
	"github.com/vitthalk15/DataDash/app/services"
	"github.com/vitthalk15/DataDash/config"
)

// Deps are what the seeders write through.
type Deps struct {
	Users    *services.UserService
	Products repositories.ProductRepository
	Admin    config.AdminConfig
}

type Func func(ctx context.Context, d Deps) (string, error)

type Seeder struct {
	Name string
	Run  Func
}

// All lists the seeders in run order.
func All() []Seeder {
	return []Seeder{
		{Name: "admin", Run: seedAdmin},
		{Name: "products", Run: seedProducts},
	}
}

// RunAll executes seeders in order and stops on the first error.
func RunAll(ctx context.Context, d Deps, seeders []Seeder, out io.Writer) error {
	if out == nil {
		out = io.Discard
	}
	if len(seeders) == 0 {
		fmt.Fprintln(out, "  (no seeders registered)")
		return nil
	}
	for _, s := range seeders {
		fmt.Fprintf(out, "  • %s … ", s.Name)
		msg, err := s.Run(ctx, d)
		if err != nil {
			fmt.Fprintln(out, "FAILED")
			return fmt.Errorf("seeder %q: %w", s.Name, err)
		}
		fmt.Fprintln(out, msg)
	}
	return nil
}

func seedAdmin(ctx context.Context, d Deps) (string, error) {
	if d.Admin.Email == "" || d.Admin.Password == "" {
		return "skipped (ADMIN_EMAIL or ADMIN_PASSWORD unset)", nil
	}
	u, created, err := d.Users.EnsureAdmin(ctx, d.Admin.Name, d.Admin.Email, d.Admin.Password)
	if err != nil {
		return "", err
	}
	if !created {
		return "exists (" + u.Email + ")", nil
	}
	return "created " + u.Email, nil
}

var catalog = []struct {
	name, description, category, price string
	stock                               int
}{
	{"Wireless Mouse", "Ergonomic 2.4 GHz mouse with silent clicks", "Electronics", "24.99", 120},
	{"Mechanical Keyboard", "Tenkeyless keyboard with brown switches", "Electronics", "89.00", 45},
	{"USB-C Hub", "7-in-1 hub with HDMI and card reader", "Electronics", "39.50", 8},
	{"Standing Desk", "Electric height-adjustable desk, 140 × 70 cm", "Furniture", "349.00", 6},
	{"Office Chair", "Mesh back chair with lumbar support", "Furniture", "199.99", 15},
	{"Desk Lamp", "LED lamp with adjustable colour temperature", "Home", "29.90", 60},
	{"Notebook Set", "Three A5 dotted notebooks", "Stationery", "12.00", 200},
	{"Water Bottle", "Insulated steel bottle, 750 ml", "Home", "18.75", 4},
}

func seedProducts(ctx context.Context, d Deps) (string, error) {
	existing, err := d.Products.All(ctx)
	if err != nil {
		return "", err
	}
	if len(existing) > 0 {
		return fmt.Sprintf("skipped (%d products present)", len(existing)), nil
	}
	for _, c := range catalog {
		p := &models.Product{
			Name:        c.name,
			Description: c.description,
			Category:    c.category,
			Price:       decimal.RequireFromString(c.price),
			Stock:       c.stock,
		}
		if err := d.Products.Create(ctx, p); err != nil {
			return "", fmt.Errorf("create %s: %w", c.name, err)
		}
	}
	return fmt.Sprintf("created %d products", len(catalog)), nil
}
