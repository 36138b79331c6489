// Package dbconn holds the connection to the durable store. It tries to be
// a single db connection for the process. SQLite is the default; a
// postgres:// DSN switches to PostgreSQL through lib/pq.
package dbconn

import (
	"database/sql"
	"strings"
	"time"

	"github.com/glebarez/sqlite"
	_ "github.com/lib/pq"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var db *gorm.DB

type DBConf struct {
	URL         string
	MaxIdle     int
	MaxOpen     int
	MaxLifetime time.Duration
}

type DBOpts func(*DBConf)

func NewConf() *DBConf {
	return &DBConf{
		URL:         "file:trustplane.db",
		MaxIdle:     25,
		MaxOpen:     25,
		MaxLifetime: 300 * time.Second,
	}
}

func WithURL(url string) DBOpts {
	return func(d *DBConf) {
		d.URL = url
	}
}

func WithMaxIdle(idle int) DBOpts {
	return func(d *DBConf) {
		d.MaxIdle = idle
	}
}

func WithMaxOpen(open int) DBOpts {
	return func(d *DBConf) {
		d.MaxOpen = open
	}
}

func WithMaxLifetime(lifetime time.Duration) DBOpts {
	return func(d *DBConf) {
		d.MaxLifetime = lifetime
	}
}

// GetConn provides the connection link to the db.
// TODO: Make it thread safe
func GetConn(options ...DBOpts) (*gorm.DB, error) {
	if db != nil {
		return db, nil
	}

	dbConf := NewConf()
	for _, o := range options {
		o(dbConf)
	}

	dialector, err := openDialector(dbConf.URL)
	if err != nil {
		return nil, err
	}

	db, err = gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		return nil, err
	}

	sdb, err := db.DB()
	if err != nil {
		return nil, err
	}

	sdb.SetMaxIdleConns(dbConf.MaxIdle)
	sdb.SetMaxOpenConns(dbConf.MaxOpen)
	sdb.SetConnMaxLifetime(dbConf.MaxLifetime)

	if err := sdb.Ping(); err != nil {
		return nil, err
	}

	return db, nil
}

func openDialector(url string) (gorm.Dialector, error) {
	if strings.HasPrefix(url, "postgres://") || strings.HasPrefix(url, "postgresql://") {
		sqlDB, err := sql.Open("postgres", url)
		if err != nil {
			return nil, err
		}
		return postgres.New(postgres.Config{Conn: sqlDB}), nil
	}
	return sqlite.Open(url), nil
}

func Close() error {
	if db != nil {
		if sdb, err := db.DB(); err != nil {
			db = nil
			return err
		} else {
			db = nil
			return sdb.Close()
		}
	}
	return nil
}
