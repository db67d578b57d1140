// Package postgres — вспомогательные функции для работы с БД.
// queries.go отвечает за применение встроенных миграций схемы.
package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// ExecMigrationSQL применяет одну миграцию схемы в транзакции.
// Уже записанная в schema_migrations версия пропускается, поэтому
// прогон миграций при каждом старте бота идемпотентен.
func ExecMigrationSQL(ctx context.Context, pool *pgxpool.Pool, version int, sql string) error {
	tx, err := pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("миграция %d: начало транзакции: %w", version, err)
	}
	defer tx.Rollback(ctx)

	var applied bool
	err = tx.QueryRow(ctx,
		"SELECT EXISTS(SELECT 1 FROM schema_migrations WHERE version = $1)", version,
	).Scan(&applied)
	if err != nil {
		return fmt.Errorf("миграция %d: проверка версии: %w", version, err)
	}
	if applied {
		return nil
	}

	if _, err := tx.Exec(ctx, sql); err != nil {
		return fmt.Errorf("миграция %d: выполнение: %w", version, err)
	}
	if _, err := tx.Exec(ctx,
		"INSERT INTO schema_migrations (version) VALUES ($1)", version,
	); err != nil {
		return fmt.Errorf("миграция %d: запись версии: %w", version, err)
	}

	return tx.Commit(ctx)
}
