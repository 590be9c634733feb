package mysql

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"farmmarket/internal/config"
)

func TestDriverConfig(t *testing.T) {
	dc := DriverConfig(config.DatabaseConfig{
		Host:     "db.internal",
		Port:     3307,
		User:     "market",
		Password: "pw",
		Name:     "orders_db",
	})

	assert.Equal(t, "tcp", dc.Net)
	assert.Equal(t, "db.internal:3307", dc.Addr)
	assert.Equal(t, "market", dc.User)
	assert.Equal(t, "orders_db", dc.DBName)
	assert.True(t, dc.ParseTime)
	assert.True(t, dc.ClientFoundRows)
	assert.Equal(t, time.UTC, dc.Loc)
	assert.False(t, dc.MultiStatements)

	dsn := dc.FormatDSN()
	assert.Contains(t, dsn, "clientFoundRows=true")
	assert.Contains(t, dsn, "parseTime=true")
}

func TestMigrationsEmbedded(t *testing.T) {
	entries, err := migrationsFS.ReadDir("migrations")
	assert.NoError(t, err)
	assert.Len(t, entries, 2)
}
