package migrations

import (
	"gorm.io/gorm"

	"github.com/vitthalk15/DataDash/app/repositories/sqlstore"
	"github.com/vitthalk15/DataDash/pkg/queue"
)

// -------- 0001: users --------

type createUsersTable struct{}

func (m *createUsersTable) Up(db *gorm.DB) error {
	return db.AutoMigrate(&sqlstore.UserRecord{})
}

func (m *createUsersTable) Down(db *gorm.DB) error {
	return db.Migrator().DropTable("users")
}

// -------- 0002: products --------

type createProductsTable struct{}

func (m *createProductsTable) Up(db *gorm.DB) error {
	return db.AutoMigrate(&sqlstore.ProductRecord{})
}

func (m *createProductsTable) Down(db *gorm.DB) error {
	return db.Migrator().DropTable("products")
}

// -------- 0003: orders + order_items --------

type createOrdersTable struct{}

func (m *createOrdersTable) Up(db *gorm.DB) error {
	return db.AutoMigrate(&sqlstore.OrderRecord{}, &sqlstore.OrderItemRecord{})
}

func (m *createOrdersTable) Down(db *gorm.DB) error {
	return db.Migrator().DropTable("order_items", "orders")
}

// -------- 0004: failed_jobs --------

type createFailedJobsTable struct{}

func (m *createFailedJobsTable) Up(db *gorm.DB) error {
	return db.AutoMigrate(&queue.FailedJobRecord{})
}

func (m *createFailedJobsTable) Down(db *gorm.DB) error {
	return db.Migrator().DropTable("failed_jobs")
}
