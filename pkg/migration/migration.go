// Package migration runs versioned schema changes against a gorm database
// and records them in the schema_migrations table.
//
//	r := migration.New(db, os.Stdout)
//	r.Register("20260101000000_create_products_table", &CreateProducts{})
//	err := r.Run()
package migration

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"time"

	"gorm.io/gorm"

	"github.com/vitthalk15/DataDash/pkg/logger"
)

// Migration is one reversible schema change.
type Migration interface {
	Up(db *gorm.DB) error
	Down(db *gorm.DB) error
}

type record struct {
	ID    uint      `gorm:"primaryKey;autoIncrement"`
	Name  string    `gorm:"uniqueIndex;size:255;not null"`
	Batch int       `gorm:"not null"`
	RunAt time.Time `gorm:"autoCreateTime"`
}

func (record) TableName() string { return "schema_migrations" }

type entry struct {
	name string
	m    Migration
}

// StatusLine is one row of Status output.
type StatusLine struct {
	Name  string
	Ran   bool
	Batch int
}

// Runner applies registered migrations in name order.
type Runner struct {
	db       *gorm.DB
	out      io.Writer
	registry []entry
}

// New returns a Runner that reports progress to out (io.Discard when nil).
func New(db *gorm.DB, out io.Writer) *Runner {
	if out == nil {
		out = io.Discard
	}
	return &Runner{db: db, out: out}
}

// Register adds m under a timestamp-prefixed name.
func (r *Runner) Register(name string, m Migration) {
	r.registry = append(r.registry, entry{name: name, m: m})
	sort.SliceStable(r.registry, func(i, j int) bool { return r.registry[i].name < r.registry[j].name })
}

func (r *Runner) ensureTable() error {
	if err := r.db.AutoMigrate(&record{}); err != nil {
		return fmt.Errorf("migration: ensure table: %w", err)
	}
	return nil
}

func (r *Runner) ran() (map[string]record, error) {
	var rows []record
	if err := r.db.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("migration: load history: %w", err)
	}
	out := make(map[string]record, len(rows))
	for _, row := range rows {
		out[row.Name] = row
	}
	return out, nil
}

func (r *Runner) lastBatch() (int, error) {
	var max struct{ Max int }
	err := r.db.Model(&record{}).Select("COALESCE(MAX(batch), 0) AS max").Scan(&max).Error
	return max.Max, err
}

// Run applies every pending migration as one batch and returns how many ran.
func (r *Runner) Run() (int, error) {
	if len(r.registry) == 0 {
		return 0, ErrNoMigrations
	}
	if err := r.ensureTable(); err != nil {
		return 0, err
	}
	done, err := r.ran()
	if err != nil {
		return 0, err
	}
	last, err := r.lastBatch()
	if err != nil {
		return 0, fmt.Errorf("migration: batch: %w", err)
	}
	batch := last + 1

	n := 0
	for _, e := range r.registry {
		if _, ok := done[e.name]; ok {
			continue
		}
		fmt.Fprintf(r.out, "Migrating: %s\n", e.name)
		if err := e.m.Up(r.db); err != nil {
			return n, fmt.Errorf("migration: %s up: %w", e.name, err)
		}
		if err := r.db.Create(&record{Name: e.name, Batch: batch}).Error; err != nil {
			return n, fmt.Errorf("migration: record %s: %w", e.name, err)
		}
		fmt.Fprintf(r.out, "Migrated:  %s\n", e.name)
		n++
	}

	if n == 0 {
		fmt.Fprintln(r.out, "Nothing to migrate.")
	} else {
		logger.Info("migration: done", "ran", n, "batch", batch)
	}
	return n, nil
}

// Rollback reverts the most recent batch in reverse order.
func (r *Runner) Rollback() (int, error) {
	if err := r.ensureTable(); err != nil {
		return 0, err
	}
	last, err := r.lastBatch()
	if err != nil {
		return 0, fmt.Errorf("migration: batch: %w", err)
	}
	if last == 0 {
		fmt.Fprintln(r.out, "Nothing to roll back.")
		return 0, nil
	}

	var rows []record
	if err := r.db.Where("batch = ?", last).Order("id desc").Find(&rows).Error; err != nil {
		return 0, fmt.Errorf("migration: load batch: %w", err)
	}

	byName := make(map[string]Migration, len(r.registry))
	for _, e := range r.registry {
		byName[e.name] = e.m
	}

	n := 0
	for _, row := range rows {
		m, ok := byName[row.Name]
		if !ok {
			return n, fmt.Errorf("migration: cannot roll back %s: not registered", row.Name)
		}
		fmt.Fprintf(r.out, "Rolling back: %s\n", row.Name)
		if err := m.Down(r.db); err != nil {
			return n, fmt.Errorf("migration: %s down: %w", row.Name, err)
		}
		if err := r.db.Delete(&row).Error; err != nil {
			return n, fmt.Errorf("migration: forget %s: %w", row.Name, err)
		}
		n++
	}
	return n, nil
}

// Status lists every registered migration with its batch if applied.
func (r *Runner) Status() ([]StatusLine, error) {
	if err := r.ensureTable(); err != nil {
		return nil, err
	}
	done, err := r.ran()
	if err != nil {
		return nil, err
	}
	lines := make([]StatusLine, len(r.registry))
	for i, e := range r.registry {
		row, ok := done[e.name]
		lines[i] = StatusLine{Name: e.name, Ran: ok, Batch: row.Batch}
	}
	return lines, nil
}

var ErrNoMigrations = errors.New("migration: no migrations registered")
