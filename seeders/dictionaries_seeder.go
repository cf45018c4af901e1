package seeders

import (
	"context"
	"log"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Статусы вставляются с явными id: Pending должен иметь id = 1.
func seedStatuses(ctx context.Context, db *pgxpool.Pool) error {
	log.Println("  - Наполнение таблицы 'statuses'...")

	tx, err := db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	for i, s := range statusesData {
		id := i + 1
		if _, err := tx.Exec(ctx,
			`INSERT INTO statuses (id, name, comment) VALUES ($1, $2, $3)
			 ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, comment = EXCLUDED.comment`,
			id, s.Name, s.Comment,
		); err != nil {
			log.Printf("Ошибка при вставке статуса '%s': %v", s.Name, err)
			return err
		}
	}

	if _, err := tx.Exec(ctx, `SELECT setval(pg_get_serial_sequence('statuses', 'id'), (SELECT MAX(id) FROM statuses))`); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func seedDepartments(ctx context.Context, db *pgxpool.Pool) error {
	log.Println("  - Наполнение таблицы 'departments'...")

	batch := &pgx.Batch{}
	for _, name := range departmentsData {
		batch.Queue(`INSERT INTO departments (name) VALUES ($1) ON CONFLICT (name) DO NOTHING`, name)
	}
	return db.SendBatch(ctx, batch).Close()
}

func seedParts(ctx context.Context, db *pgxpool.Pool) error {
	log.Println("  - Наполнение таблицы 'parts'...")

	var count int
	if err := db.QueryRow(ctx, `SELECT COUNT(*) FROM parts`).Scan(&count); err != nil {
		return err
	}
	if count > 0 {
		log.Println("    - Детали уже есть. Пропускаем.")
		return nil
	}

	batch := &pgx.Batch{}
	for _, p := range partsData {
		batch.Queue(`INSERT INTO parts (name, unit, description) VALUES ($1, $2, $3)`, p.Name, p.Unit, p.Description)
	}
	return db.SendBatch(ctx, batch).Close()
}
