package store

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

// Migrator handles DB schema migrations using golang-migrate.
type Migrator struct {
	dsn string
	dir string
}

// NewMigrator reads migrations from ./db/migrations.
func NewMigrator(dsn string) (*Migrator, error) {
	if dsn == "" {
		return nil, fmt.Errorf("missing DSN")
	}
	wd, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	return &Migrator{dsn: dsn, dir: filepath.Join(wd, "db", "migrations")}, nil
}

// WithDir overrides the migrations directory.
func (m *Migrator) WithDir(dir string) *Migrator {
	m.dir = dir
	return m
}

func (m *Migrator) sourceURL() string {
	u := url.URL{Scheme: "file", Path: filepath.ToSlash(m.dir)}
	return u.String()
}

func (m *Migrator) Up(ctx context.Context) error {
	return m.run(ctx, func(mig *migrate.Migrate) error { return mig.Up() })
}

func (m *Migrator) Down(ctx context.Context) error {
	return m.run(ctx, func(mig *migrate.Migrate) error { return mig.Steps(-1) })
}

func (m *Migrator) run(ctx context.Context, step func(*migrate.Migrate) error) error {
	mig, err := migrate.New(m.sourceURL(), m.dsn)
	if err != nil {
		return wrap(err, "init migrate")
	}
	defer mig.Close()

	done := make(chan error, 1)
	go func() { done <- step(mig) }()
	select {
	case err = <-done:
	case <-ctx.Done():
		mig.GracefulStop <- true
		err = <-done
	}
	if err == migrate.ErrNoChange {
		return ErrNoChange
	}
	return err
}
