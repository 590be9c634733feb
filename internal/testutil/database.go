package testutil

import (
	"database/sql"
	"fmt"
	"os"
	"testing"

	"github.com/go-sql-driver/mysql"
	"go.uber.org/zap"

	infmysql "farmmarket/internal/infrastructure/mysql"
)

const defaultTestDSN = "root:@tcp(localhost:3306)/farmmarket_test?parseTime=true&loc=UTC&clientFoundRows=true&multiStatements=true"

// SetupTestDB opens the MySQL test database. The DSN comes from
// TEST_MYSQL_DSN; the test is skipped when the database is not reachable.
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("mysql", dsnFromEnv())
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		t.Skipf("test database not available: %v", err)
	}

	return db
}

// SetupTestTables applies the embedded schema migrations.
func SetupTestTables(t *testing.T, db *sql.DB) {
	t.Helper()

	cfg, err := mysql.ParseDSN(dsnFromEnv())
	if err != nil {
		t.Fatalf("failed to parse test dsn: %v", err)
	}

	if err := infmysql.MigrateDB(db, cfg.DBName, zap.NewNop()); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
}

// CleanupTestDB empties the order tables and closes db.
func CleanupTestDB(t *testing.T, db *sql.DB) {
	if db == nil {
		return
	}

	tables := []string{"order_items", "orders"}
	for _, table := range tables {
		_, err := db.Exec(fmt.Sprintf("DELETE FROM %s", table))
		if err != nil {
			t.Logf("failed to clean table %s: %v", table, err)
		}
	}

	db.Close()
}

func dsnFromEnv() string {
	if dsn := os.Getenv("TEST_MYSQL_DSN"); dsn != "" {
		return dsn
	}
	return defaultTestDSN
}
