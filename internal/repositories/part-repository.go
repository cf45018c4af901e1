package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"factory-ops/internal/entities"
	db "factory-ops/internal/infrastructure/bd"
	apperrors "factory-ops/pkg/errors"
)

type PartRepositoryInterface interface {
	GetParts(ctx context.Context, search string) ([]entities.Part, error)
	FindPart(ctx context.Context, id uint64) (*entities.Part, error)
}

type partRepository struct{ storage *pgxpool.Pool }

func NewPartRepository(storage *pgxpool.Pool) PartRepositoryInterface {
	return &partRepository{storage: storage}
}

func (r *partRepository) GetParts(ctx context.Context, search string) ([]entities.Part, error) {
	builder := psql.Select("id, name, unit, description").From("parts").OrderBy("name", "id")
	builder = db.ApplyContains(builder, "name", search)
	query, args, err := builder.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.storage.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("ошибка выборки деталей: %w", err)
	}
	defer rows.Close()

	parts := make([]entities.Part, 0)
	for rows.Next() {
		var p entities.Part
		if err := rows.Scan(&p.ID, &p.Name, &p.Unit, &p.Description); err != nil {
			return nil, err
		}
		parts = append(parts, p)
	}
	return parts, rows.Err()
}

func (r *partRepository) FindPart(ctx context.Context, id uint64) (*entities.Part, error) {
	var p entities.Part
	err := r.storage.QueryRow(ctx, "SELECT id, name, unit, description FROM parts WHERE id = $1", id).
		Scan(&p.ID, &p.Name, &p.Unit, &p.Description)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}
