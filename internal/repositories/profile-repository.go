package repositories

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"factory-ops/internal/entities"
)

type ProfileRepositoryInterface interface {
	EnsureProfileInTx(ctx context.Context, tx pgx.Tx, profile entities.Profile) error
}

type profileRepository struct{ storage *pgxpool.Pool }

func NewProfileRepository(storage *pgxpool.Pool) ProfileRepositoryInterface {
	return &profileRepository{storage: storage}
}

// EnsureProfileInTx создаёт или обновляет профиль из токена, чтобы на него могли ссылаться заявки и история.
func (r *profileRepository) EnsureProfileInTx(ctx context.Context, tx pgx.Tx, profile entities.Profile) error {
	const query = `INSERT INTO profiles (id, name, email, permission)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE
		SET name = EXCLUDED.name, email = EXCLUDED.email, permission = EXCLUDED.permission`

	if _, err := tx.Exec(ctx, query, profile.ID, profile.Name, profile.Email, profile.Permission); err != nil {
		return fmt.Errorf("ошибка сохранения профиля %d: %w", profile.ID, err)
	}
	return nil
}
