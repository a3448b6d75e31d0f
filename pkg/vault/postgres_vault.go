package vault

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/tracelog"
	"github.com/pkg/errors"

	com_vault "github.com/mr-shifu/pedersen-commit/pkg/common/vault"
	"github.com/mr-shifu/pedersen-commit/pkg/log"
)

const (
	createTableQuery = `
		CREATE TABLE IF NOT EXISTS vault (
			key_id TEXT PRIMARY KEY,
			value  BYTEA NOT NULL
		)`
	upsertQuery = `
		INSERT INTO vault (key_id, value) VALUES ($1, $2)
		ON CONFLICT (key_id) DO UPDATE SET value = excluded.value`
	selectQuery = `SELECT value FROM vault WHERE key_id = $1`
)

// PostgresVault stores values in a single PostgreSQL table.
type PostgresVault struct {
	pool   *pgxpool.Pool
	logger *log.Logger
}

var _ com_vault.Vault = (*PostgresVault)(nil)

// pgxLogger routes pgx trace output to our logger.
type pgxLogger struct {
	logger *log.Logger
}

func (l *pgxLogger) logFuncForLevel(level tracelog.LogLevel) func(string, ...interface{}) {
	switch level {
	case tracelog.LogLevelTrace, tracelog.LogLevelDebug:
		return l.logger.Debug
	case tracelog.LogLevelInfo:
		return l.logger.Info
	case tracelog.LogLevelWarn:
		return l.logger.Warn
	default:
		return l.logger.Error
	}
}

func (l *pgxLogger) Log(_ context.Context, level tracelog.LogLevel, msg string, data map[string]interface{}) {
	args := make([]interface{}, 0, 2*len(data))
	for k, v := range data {
		args = append(args, k, v)
	}
	l.logFuncForLevel(level)(msg, args...)
}

// OpenPostgresVault connects to connString and makes sure the vault table exists.
func OpenPostgresVault(ctx context.Context, connString string, logger *log.Logger) (*PostgresVault, error) {
	logger = logger.WithModule("vault")

	config, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, errors.Wrap(err, "vault: invalid postgres connection string")
	}
	config.ConnConfig.Tracer = &tracelog.TraceLog{
		LogLevel: tracelog.LogLevelWarn,
		Logger: &pgxLogger{
			logger: logger.With("db", config.ConnConfig.Database),
		},
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, errors.Wrap(err, "vault: failed to create postgres pool")
	}
	if _, err := pool.Exec(ctx, createTableQuery); err != nil {
		pool.Close()
		return nil, errors.Wrap(err, "vault: failed to create table")
	}

	return &PostgresVault{
		pool:   pool,
		logger: logger,
	}, nil
}

func (v *PostgresVault) Import(ctx context.Context, keyID string, value []byte) error {
	_, err := v.pool.Exec(ctx, upsertQuery, keyID, value)
	return errors.Wrap(err, "vault: postgres upsert")
}

func (v *PostgresVault) Get(ctx context.Context, keyID string) ([]byte, error) {
	var value []byte
	err := v.pool.QueryRow(ctx, selectQuery, keyID).Scan(&value)
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		return nil, com_vault.ErrKeyNotFound
	case err != nil:
		return nil, errors.Wrap(err, "vault: postgres select")
	}
	return value, nil
}

func (v *PostgresVault) Close() error {
	v.logger.Info("closing postgres vault")
	v.pool.Close()
	return nil
}
