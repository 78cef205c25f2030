// Package sqlstore implements the repository contracts on gorm, so the
// same API runs on PostgreSQL, MySQL, SQLite and SQL Server. The schema
// is owned by database/migrations.
package sqlstore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/vitthalk15/DataDash/app/repositories"
	"github.com/vitthalk15/DataDash/pkg/metrics"
)

// Store wraps a *gorm.DB.
type Store struct {
	db *gorm.DB
}

// New returns a Store over db. Run the migrations before first use.
func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Products() repositories.ProductRepository { return &productRepo{db: s.db} }
func (s *Store) Orders() repositories.OrderRepository     { return &orderRepo{db: s.db} }
func (s *Store) Users() repositories.UserRepository       { return &userRepo{db: s.db} }

// DB exposes the underlying handle for the migration runner.
func (s *Store) DB() *gorm.DB { return s.db }

func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("sqlstore: ping: %w", err)
	}
	return sqlDB.PingContext(ctx)
}

func (s *Store) Close(context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// ─── Helpers ──────────────────────────────────────────────────────────────────

func newID() string { return uuid.NewString() }

var (
	clockMu sync.Mutex
	last    time.Time
)

// now returns strictly increasing UTC timestamps so creation order survives
// backends with coarse clocks.
func now() time.Time {
	clockMu.Lock()
	defer clockMu.Unlock()
	t := time.Now().UTC().Truncate(time.Microsecond)
	if !t.After(last) {
		t = last.Add(time.Microsecond)
	}
	last = t
	return t
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return repositories.ErrNotFound
	}
	return err
}

func isDuplicate(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique") || strings.Contains(msg, "duplicate")
}

// likePattern builds a lower-cased LIKE pattern escaped with '!'.
func likePattern(q string) string {
	r := strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")
	return "%" + r.Replace(strings.ToLower(q)) + "%"
}

func orderBy(field string, desc bool, columns map[string]string) clause.OrderByColumn {
	col, ok := columns[field]
	if !ok {
		col = "created_at"
	}
	return clause.OrderByColumn{Column: clause.Column{Name: col}, Desc: desc}
}

func paginate(db *gorm.DB, p repositories.Page) *gorm.DB {
	if p.Size <= 0 {
		return db
	}
	return db.Offset(p.Skip()).Limit(p.Size)
}

func observe(op string) func() {
	start := time.Now()
	return func() { metrics.ObserveDBQuery(op, start) }
}
