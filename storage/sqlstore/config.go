package sqlstore

import (
	"fmt"
	"net"
	"strconv"

	"github.com/bharadwaj008/Article-Search-Pipeline/storage"
	"github.com/go-sql-driver/mysql"
)

// Supported driver names.
const (
	DriverSQLite = "sqlite"
	DriverMySQL  = "mysql"
)

// Config describes how to reach the relational store.
type Config struct {
	// Driver is DriverSQLite or DriverMySQL.
	Driver string

	// Path is the SQLite database file.
	Path string

	// DSN, when set, is passed to the MySQL driver verbatim and the
	// connection fields below are ignored.
	DSN string

	Host     string
	Port     int
	User     string
	Password string
	Database string
}

// dataSource returns the database/sql driver name and data source name.
func (c Config) dataSource() (string, string, error) {
	switch c.Driver {
	case DriverSQLite, "":
		if c.Path == "" {
			return "", "", fmt.Errorf("sqlite: database path is required")
		}
		// Pragmas in the DSN apply to every pooled connection.
		return DriverSQLite, c.Path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)", nil
	case DriverMySQL:
		if c.DSN != "" {
			return DriverMySQL, c.DSN, nil
		}
		if c.Host == "" || c.Database == "" {
			return "", "", fmt.Errorf("mysql: host and database are required")
		}
		port := c.Port
		if port == 0 {
			port = 3306
		}
		mc := mysql.NewConfig()
		mc.User = c.User
		mc.Passwd = c.Password
		mc.Net = "tcp"
		mc.Addr = net.JoinHostPort(c.Host, strconv.Itoa(port))
		mc.DBName = c.Database
		return DriverMySQL, mc.FormatDSN(), nil
	default:
		return "", "", fmt.Errorf("%w: %q", storage.ErrUnsupportedDriver, c.Driver)
	}
}

func (c Config) dialect() string {
	if c.Driver == "" {
		return DriverSQLite
	}
	return c.Driver
}
