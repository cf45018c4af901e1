package seeders

import (
	"context"
	"errors"
	"log"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

func seedFactories(ctx context.Context, db *pgxpool.Pool) error {
	log.Println("  - Наполнение таблиц 'factories', 'factory_sections', 'machines'...")

	tx, err := db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	for _, f := range factoriesData {
		factoryID, created, err := findOrCreate(ctx, tx,
			`SELECT id FROM factories WHERE name = $1`, []interface{}{f.Name},
			`INSERT INTO factories (name, abbreviation) VALUES ($1, $2) RETURNING id`, []interface{}{f.Name, f.Abbreviation},
		)
		if err != nil {
			return err
		}
		if !created {
			log.Printf("    - Фабрика '%s' уже существует. Пропускаем.", f.Name)
			continue
		}

		for _, s := range f.Sections {
			var sectionID uint64
			if err := tx.QueryRow(ctx,
				`INSERT INTO factory_sections (name, factory_id) VALUES ($1, $2) RETURNING id`, s.Name, factoryID,
			).Scan(&sectionID); err != nil {
				return err
			}
			for _, m := range s.Machines {
				if _, err := tx.Exec(ctx,
					`INSERT INTO machines (name, factory_section_id) VALUES ($1, $2)`, m, sectionID,
				); err != nil {
					return err
				}
			}
		}
	}

	return tx.Commit(ctx)
}

// seedMachineParts кладёт на каждый станок по две детали, если остатков ещё нет.
func seedMachineParts(ctx context.Context, db *pgxpool.Pool) error {
	log.Println("  - Наполнение таблицы 'machine_parts'...")

	var count int
	if err := db.QueryRow(ctx, `SELECT COUNT(*) FROM machine_parts`).Scan(&count); err != nil {
		return err
	}
	if count > 0 {
		log.Println("    - Остатки уже есть. Пропускаем.")
		return nil
	}

	_, err := db.Exec(ctx, `
		INSERT INTO machine_parts (machine_id, part_id, qty, req_qty)
		SELECT m.id, p.id, 10, CASE WHEN p.id % 2 = 0 THEN 4 END
		FROM machines m
		JOIN LATERAL (SELECT id FROM parts ORDER BY (id + m.id) % 6 LIMIT 2) p ON TRUE`)
	return err
}

func findOrCreate(ctx context.Context, tx pgx.Tx, findSQL string, findArgs []interface{}, insertSQL string, insertArgs []interface{}) (uint64, bool, error) {
	var id uint64
	err := tx.QueryRow(ctx, findSQL, findArgs...).Scan(&id)
	if err == nil {
		return id, false, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return 0, false, err
	}
	if err := tx.QueryRow(ctx, insertSQL, insertArgs...).Scan(&id); err != nil {
		return 0, false, err
	}
	return id, true, nil
}
