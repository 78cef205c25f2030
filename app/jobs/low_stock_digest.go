package jobs

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"sort"

	"github.com/vitthalk15/DataDash/app/models"
	"github.com/vitthalk15/DataDash/pkg/logger"
	"github.com/vitthalk15/DataDash/pkg/mail"
)

const LowStockDigestName = "products.low_stock_digest"

var digestEmail = template.Must(template.New("low_stock").Parse(
	`<p>{{len .Products}} product(s) are at or below {{.Threshold}} units:</p>
<ul>{{range .Products}}
<li>{{.Name}} ({{.Category}}): {{.Stock}} left</li>{{end}}
</ul>`))

// LowStockDigest mails every administrator the products whose stock is at
// or below Threshold. Nothing is sent when no product qualifies.
type LowStockDigest struct {
	Threshold int `json:"threshold"`

	deps *Deps
}

func (LowStockDigest) JobName() string { return LowStockDigestName }

func (j *LowStockDigest) Handle(ctx context.Context) error {
	if j.deps == nil || j.deps.Products == nil {
		return errors.New("jobs: low stock digest has no dependencies")
	}
	products, err := j.deps.Products.All(ctx)
	if err != nil {
		return fmt.Errorf("jobs: load products: %w", err)
	}
	var low []models.Product
	for _, p := range products {
		if p.Stock <= j.Threshold {
			low = append(low, p)
		}
	}
	if len(low) == 0 {
		return nil
	}
	sort.SliceStable(low, func(a, b int) bool { return low[a].Stock < low[b].Stock })

	users, err := j.deps.Users.List(ctx)
	if err != nil {
		return fmt.Errorf("jobs: load users: %w", err)
	}
	var admins []string
	for _, u := range users {
		if u.Role == models.RoleAdmin && u.Preferences.Notifications.EmailNotifications {
			admins = append(admins, u.Email)
		}
	}
	if len(admins) == 0 {
		logger.WithCtx(ctx).Debug("jobs: no administrator to receive the low stock digest")
		return nil
	}

	msg := mail.New(admins...).
		Subject(fmt.Sprintf("Low stock: %d product(s)", len(low))).
		Template(digestEmail, map[string]any{"Threshold": j.Threshold, "Products": low})
	if err := j.deps.Mailer.Send(ctx, msg); err != nil {
		return fmt.Errorf("jobs: send low stock digest: %w", err)
	}
	return nil
}
