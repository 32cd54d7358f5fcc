package pg

import (
	"context"
	"fmt"

	_ "github.com/lib/pq"
	"github.com/pressly/goose/v3"
)

// Migrate runs a goose command ("up", "down", "status", "redo", ...) against
// the migrations in dir. The connection is checked before goose touches the
// version table so a bad DSN fails with the driver's error.
func Migrate(ctx context.Context, cfg Config, dir, command string, args ...string) error {
	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}

	db, err := newSqlConnection(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	if err = db.PingContext(ctx); err != nil {
		return fmt.Errorf("connect %s/%s: %w", cfg.Host, cfg.Database, err)
	}
	if err = goose.RunContext(ctx, command, db, dir, args...); err != nil {
		return fmt.Errorf("goose %s: %w", command, err)
	}
	return nil
}
