package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// Driver selects the SQL dialect gorm talks to.
type Driver string

const (
	DriverPostgres Driver = "postgres"
	DriverMySQL    Driver = "mysql"
	DriverSQLite   Driver = "sqlite"
)

func (d *Driver) UnmarshalText(text []byte) error {
	switch v := Driver(strings.ToLower(string(text))); v {
	case DriverPostgres, DriverMySQL, DriverSQLite:
		*d = v
		return nil
	default:
		return fmt.Errorf("unknown database driver: %s", text)
	}
}

type Database struct {
	Driver Driver `env:"DB_DRIVER" envDefault:"postgres"`
	// URL takes precedence over the discrete connection fields.
	URL      string `env:"DATABASE_URL"`
	Host     string `env:"DB_HOST" envDefault:"localhost"`
	Port     int    `env:"DB_PORT"`
	User     string `env:"DB_USER"`
	Password string `env:"DB_PASSWORD"`
	Name     string `env:"DB_NAME" envDefault:"inventory"`
	SSLMode  string `env:"DB_SSLMODE" envDefault:"disable"`
	TimeZone string `env:"DB_TIMEZONE" envDefault:"UTC"`

	MaxIdleConns    int           `env:"DB_MAX_IDLE_CONNS" envDefault:"10"`
	MaxOpenConns    int           `env:"DB_MAX_OPEN_CONNS" envDefault:"100"`
	ConnMaxLifetime time.Duration `env:"DB_CONN_MAX_LIFETIME" envDefault:"1h"`
	SlowThreshold   time.Duration `env:"DB_SLOW_THRESHOLD" envDefault:"1s"`
	LogQueries      bool          `env:"DB_LOG_QUERIES" envDefault:"false"`
}

// DSN builds the driver specific connection string.
func (d Database) DSN() string {
	if d.URL != "" {
		return d.URL
	}

	switch d.Driver {
	case DriverMySQL:
		port := d.Port
		if port == 0 {
			port = 3306
		}
		return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=%s",
			d.User, d.Password, d.Host, port, d.Name, url.QueryEscape(d.TimeZone))
	case DriverSQLite:
		return d.Name
	default:
		port := d.Port
		if port == 0 {
			port = 5432
		}
		return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%d sslmode=%s TimeZone=%s",
			d.Host, d.User, d.Password, d.Name, port, d.SSLMode, d.TimeZone)
	}
}
