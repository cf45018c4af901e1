package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"factory-ops/internal/entities"
	apperrors "factory-ops/pkg/errors"
)

type FactoryRepositoryInterface interface {
	GetFactories(ctx context.Context) ([]entities.Factory, error)
	GetSections(ctx context.Context, factoryID uint64) ([]entities.FactorySection, error)
	FindSection(ctx context.Context, id uint64) (*entities.FactorySection, error)
}

type factoryRepository struct{ storage *pgxpool.Pool }

func NewFactoryRepository(storage *pgxpool.Pool) FactoryRepositoryInterface {
	return &factoryRepository{storage: storage}
}

func (r *factoryRepository) GetFactories(ctx context.Context) ([]entities.Factory, error) {
	rows, err := r.storage.Query(ctx, "SELECT id, name, abbreviation FROM factories ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("ошибка выборки фабрик: %w", err)
	}
	defer rows.Close()

	factories := make([]entities.Factory, 0)
	for rows.Next() {
		var f entities.Factory
		if err := rows.Scan(&f.ID, &f.Name, &f.Abbreviation); err != nil {
			return nil, err
		}
		factories = append(factories, f)
	}
	return factories, rows.Err()
}

func (r *factoryRepository) GetSections(ctx context.Context, factoryID uint64) ([]entities.FactorySection, error) {
	rows, err := r.storage.Query(ctx,
		"SELECT id, name, factory_id FROM factory_sections WHERE factory_id = $1 ORDER BY id", factoryID)
	if err != nil {
		return nil, fmt.Errorf("ошибка выборки участков фабрики %d: %w", factoryID, err)
	}
	defer rows.Close()

	sections := make([]entities.FactorySection, 0)
	for rows.Next() {
		var s entities.FactorySection
		if err := rows.Scan(&s.ID, &s.Name, &s.FactoryID); err != nil {
			return nil, err
		}
		sections = append(sections, s)
	}
	return sections, rows.Err()
}

func (r *factoryRepository) FindSection(ctx context.Context, id uint64) (*entities.FactorySection, error) {
	var s entities.FactorySection
	err := r.storage.QueryRow(ctx, "SELECT id, name, factory_id FROM factory_sections WHERE id = $1", id).
		Scan(&s.ID, &s.Name, &s.FactoryID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &s, nil
}
