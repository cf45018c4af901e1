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

const (
	statusTable  = "statuses"
	statusFields = "id, name, comment"
)

type StatusRepositoryInterface interface {
	GetStatuses(ctx context.Context) ([]entities.Status, error)
	FindStatus(ctx context.Context, id uint64) (*entities.Status, error)
	FindByName(ctx context.Context, name string) (*entities.Status, error)
}

type statusRepository struct{ storage *pgxpool.Pool }

func NewStatusRepository(storage *pgxpool.Pool) StatusRepositoryInterface {
	return &statusRepository{storage: storage}
}

func scanStatus(row pgx.Row) (*entities.Status, error) {
	var s entities.Status
	if err := row.Scan(&s.ID, &s.Name, &s.Comment); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &s, nil
}

func (r *statusRepository) GetStatuses(ctx context.Context) ([]entities.Status, error) {
	query := fmt.Sprintf("SELECT %s FROM %s ORDER BY id", statusFields, statusTable)
	rows, err := r.storage.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("ошибка выборки статусов: %w", err)
	}
	defer rows.Close()

	statuses := make([]entities.Status, 0)
	for rows.Next() {
		s, err := scanStatus(rows)
		if err != nil {
			return nil, err
		}
		statuses = append(statuses, *s)
	}
	return statuses, rows.Err()
}

func (r *statusRepository) FindStatus(ctx context.Context, id uint64) (*entities.Status, error) {
	query := fmt.Sprintf("SELECT %s FROM %s WHERE id = $1", statusFields, statusTable)
	return scanStatus(r.storage.QueryRow(ctx, query, id))
}

func (r *statusRepository) FindByName(ctx context.Context, name string) (*entities.Status, error) {
	query := fmt.Sprintf("SELECT %s FROM %s WHERE name = $1 LIMIT 1", statusFields, statusTable)
	return scanStatus(r.storage.QueryRow(ctx, query, name))
}
