// Package migrations holds the SQL schema for the gorm-backed stores.
package migrations

import (
	"io"

	"gorm.io/gorm"

	"github.com/vitthalk15/DataDash/pkg/migration"
)

// Runner returns a migration runner with every schema change registered.
func Runner(db *gorm.DB, out io.Writer) *migration.Runner {
	r := migration.New(db, out)
	r.Register("20260101000000_create_users_table", &createUsersTable{})
	r.Register("20260101000001_create_products_table", &createProductsTable{})
	r.Register("20260101000002_create_orders_table", &createOrdersTable{})
	r.Register("20260101000003_create_failed_jobs_table", &createFailedJobsTable{})
	return r
}
