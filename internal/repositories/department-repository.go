package repositories

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"factory-ops/internal/entities"
)

type DepartmentRepositoryInterface interface {
	GetDepartments(ctx context.Context) ([]entities.Department, error)
}

type departmentRepository struct{ storage *pgxpool.Pool }

func NewDepartmentRepository(storage *pgxpool.Pool) DepartmentRepositoryInterface {
	return &departmentRepository{storage: storage}
}

func (r *departmentRepository) GetDepartments(ctx context.Context) ([]entities.Department, error) {
	rows, err := r.storage.Query(ctx, "SELECT id, name FROM departments ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("ошибка выборки отделов: %w", err)
	}
	defer rows.Close()

	departments := make([]entities.Department, 0)
	for rows.Next() {
		var d entities.Department
		if err := rows.Scan(&d.ID, &d.Name); err != nil {
			return nil, err
		}
		departments = append(departments, d)
	}
	return departments, rows.Err()
}
