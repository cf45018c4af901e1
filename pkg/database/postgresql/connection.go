package postgresql

import (
	"context"
	"log"

	"github.com/jackc/pgx/v5/pgxpool"

	"factory-ops/pkg/config"
)

func ConnectDB(cfg config.PostgresConfig) *pgxpool.Pool {
	dbpool, err := pgxpool.New(context.Background(), cfg.DSN)
	if err != nil {
		log.Fatalf("Ошибка создания пула соединений к БД: %v", err)
	}

	if err := dbpool.Ping(context.Background()); err != nil {
		log.Fatalf("Не удалось пинговать БД: %v", err)
	}

	log.Println("✅ Подключено к PostgreSQL")
	return dbpool
}
