package mysql

import (
	"database/sql"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/go-sql-driver/mysql"

	"farmmarket/internal/config"
)

// DriverConfig maps the database settings onto the driver configuration.
// ClientFoundRows makes UPDATE report matched rows instead of changed rows,
// so a status update that rewrites the same value still counts as a match.
func DriverConfig(cfg config.DatabaseConfig) *mysql.Config {
	dc := mysql.NewConfig()
	dc.User = cfg.User
	dc.Passwd = cfg.Password
	dc.Net = "tcp"
	dc.Addr = net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port))
	dc.DBName = cfg.Name
	dc.ParseTime = true
	dc.Loc = time.UTC
	dc.ClientFoundRows = true
	return dc
}

func NewConnection(cfg config.DatabaseConfig) (*sql.DB, error) {
	connector, err := mysql.NewConnector(DriverConfig(cfg))
	if err != nil {
		return nil, fmt.Errorf("building connector: %w", err)
	}

	db := sql.OpenDB(connector)
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	return db, nil
}
