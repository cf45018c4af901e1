package seeders

import (
	"context"
	"log"

	"github.com/jackc/pgx/v5/pgxpool"

	"factory-ops/internal/entities"
)

func seedProfiles(ctx context.Context, db *pgxpool.Pool) error {
	log.Println("  - Наполнение таблицы 'profiles'...")

	tx, err := db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	for _, p := range profilesData {
		if _, err := tx.Exec(ctx,
			`INSERT INTO profiles (id, name, email, permission) VALUES ($1, $2, $3, $4)
			 ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, email = EXCLUDED.email, permission = EXCLUDED.permission`,
			p.ID, p.Name, p.Email, p.Permission,
		); err != nil {
			log.Printf("Ошибка при вставке профиля '%s': %v", p.Email, err)
			return err
		}
	}

	if _, err := tx.Exec(ctx, `SELECT setval(pg_get_serial_sequence('profiles', 'id'), (SELECT MAX(id) FROM profiles))`); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// DevProfiles - тестовые профили, для которых cmd/seed может выпустить токены.
func DevProfiles() []entities.Profile {
	return append([]entities.Profile(nil), profilesData...)
}
