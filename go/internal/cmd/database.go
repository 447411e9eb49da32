package main

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/kjardine00/Fantasy-Sports-APP-sub000/go/internal/dbconfig"
	"github.com/rs/zerolog/log"
)

func setupDatabase(ctx context.Context) (*pgxpool.Pool, error) {
	dbConfig := dbconfig.NewConfigFromEnv()

	pool, err := dbConfig.Connect(ctx)
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("host", dbConfig.Host).
		Int("port", dbConfig.Port).
		Str("database", dbConfig.Database).
		Int32("max_conns", pool.Config().MaxConns).
		Msg("connected to database")
	return pool, nil
}
