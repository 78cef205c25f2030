package database

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPoolForSQLiteNeverRecyclesConnection(t *testing.T) {
	p := poolFor("sqlite")
	assert.Equal(t, 1, p.maxOpen)
	assert.Zero(t, p.maxLifetime)
	assert.Zero(t, p.maxIdleTime)

	p = poolFor("postgres")
	assert.Equal(t, 25, p.maxOpen)
	assert.Equal(t, 5*time.Minute, p.maxLifetime)
}

func TestOpenSQLiteMemoryKeepsData(t *testing.T) {
	db, err := OpenSQL(context.Background(), "sqlite", ":memory:")
	require.NoError(t, err)

	require.NoError(t, db.Exec("CREATE TABLE notes (body TEXT)").Error)
	require.NoError(t, db.Exec("INSERT INTO notes (body) VALUES (?)", "kept").Error)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	assert.Equal(t, 1, sqlDB.Stats().MaxOpenConnections)

	var body string
	require.NoError(t, db.Raw("SELECT body FROM notes").Scan(&body).Error)
	assert.Equal(t, "kept", body)
}

func TestDialectorRejectsUnknownDriver(t *testing.T) {
	_, err := Dialector("oracle", "")
	assert.Error(t, err)
}
