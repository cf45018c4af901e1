package repositories

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"factory-ops/internal/dto"
)

// StatusTrackerRepositoryInterface - журнал смены статусов, только вставка и чтение.
type StatusTrackerRepositoryInterface interface {
	CreateInTx(ctx context.Context, tx pgx.Tx, orderID, statusID, profileID uint64) error
	ListByOrder(ctx context.Context, orderID uint64) ([]dto.StatusTrackerDTO, error)
}

type statusTrackerRepository struct{ storage *pgxpool.Pool }

func NewStatusTrackerRepository(storage *pgxpool.Pool) StatusTrackerRepositoryInterface {
	return &statusTrackerRepository{storage: storage}
}

func (r *statusTrackerRepository) CreateInTx(ctx context.Context, tx pgx.Tx, orderID, statusID, profileID uint64) error {
	const query = "INSERT INTO status_tracker (order_id, status_id, profile_id) VALUES ($1, $2, $3)"
	if _, err := tx.Exec(ctx, query, orderID, statusID, profileID); err != nil {
		return fmt.Errorf("ошибка записи истории статуса заявки %d: %w", orderID, err)
	}
	return nil
}

func (r *statusTrackerRepository) ListByOrder(ctx context.Context, orderID uint64) ([]dto.StatusTrackerDTO, error) {
	const query = `SELECT st.id, st.order_id, st.created_at, s.id, s.name, p.id, p.name, p.permission
		FROM status_tracker st
		JOIN statuses s ON s.id = st.status_id
		JOIN profiles p ON p.id = st.profile_id
		WHERE st.order_id = $1
		ORDER BY st.created_at, st.id`

	rows, err := r.storage.Query(ctx, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("ошибка выборки истории заявки %d: %w", orderID, err)
	}
	defer rows.Close()

	history := make([]dto.StatusTrackerDTO, 0)
	for rows.Next() {
		var h dto.StatusTrackerDTO
		if err := rows.Scan(&h.ID, &h.OrderID, &h.CreatedAt, &h.Status.ID, &h.Status.Name,
			&h.Profile.ID, &h.Profile.Name, &h.Profile.Permission); err != nil {
			return nil, err
		}
		history = append(history, h)
	}
	return history, rows.Err()
}
