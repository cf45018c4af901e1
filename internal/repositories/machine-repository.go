package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/aarondl/null/v8"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"factory-ops/internal/dto"
	"factory-ops/internal/entities"
	db "factory-ops/internal/infrastructure/bd"
	apperrors "factory-ops/pkg/errors"
)

const (
	machineSelectFields = "m.id, m.name, m.is_running, fs.id, fs.name, f.id, f.name, f.abbreviation"
	machineJoins        = `JOIN factory_sections fs ON fs.id = m.factory_section_id
		JOIN factories f ON f.id = fs.factory_id`
)

// MachineFilter - выбор участка важнее выбора фабрики. SortRunning: "asc", "desc" или пусто.
type MachineFilter struct {
	FactoryID        *uint64
	FactorySectionID *uint64
	SortRunning      string
}

type MachineRepositoryInterface interface {
	GetMachines(ctx context.Context, filter MachineFilter, page, limit int) ([]dto.MachineDTO, uint64, error)
	FindMachine(ctx context.Context, id uint64) (*dto.MachineDTO, error)
	MachinesBySection(ctx context.Context, sectionID uint64) ([]entities.Machine, error)
	MachineParts(ctx context.Context, machineID uint64, partID *uint64, partName string) ([]dto.MachinePartDTO, error)
	SetRunning(ctx context.Context, id uint64, running bool) error
	CountByRunning(ctx context.Context) (running, notRunning uint64, err error)
	CheckLocationInTx(ctx context.Context, tx pgx.Tx, factoryID, sectionID, machineID uint64) (bool, error)
}

type machineRepository struct{ storage *pgxpool.Pool }

func NewMachineRepository(storage *pgxpool.Pool) MachineRepositoryInterface {
	return &machineRepository{storage: storage}
}

func applyMachineFilter(builder sq.SelectBuilder, filter MachineFilter) sq.SelectBuilder {
	if filter.FactorySectionID != nil {
		return builder.Where(sq.Eq{"m.factory_section_id": *filter.FactorySectionID})
	}
	if filter.FactoryID != nil {
		return builder.Where(sq.Eq{"fs.factory_id": *filter.FactoryID})
	}
	return builder
}

func buildMachineListQuery(filter MachineFilter, page, limit int) (string, []interface{}, error) {
	builder := psql.Select(machineSelectFields).From("machines m").JoinClause(machineJoins)
	builder = applyMachineFilter(builder, filter)

	switch strings.ToLower(filter.SortRunning) {
	case "asc":
		builder = builder.OrderBy("m.is_running ASC", "m.id")
	case "desc":
		builder = builder.OrderBy("m.is_running DESC", "m.id")
	default:
		builder = builder.OrderBy("m.id")
	}
	return db.ApplyPage(builder, page, limit).ToSql()
}

func scanMachine(row pgx.Row) (dto.MachineDTO, error) {
	var m dto.MachineDTO
	err := row.Scan(&m.ID, &m.Name, &m.IsRunning,
		&m.FactorySection.ID, &m.FactorySection.Name,
		&m.Factory.ID, &m.Factory.Name, &m.Factory.Abbreviation)
	return m, err
}

func (r *machineRepository) GetMachines(ctx context.Context, filter MachineFilter, page, limit int) ([]dto.MachineDTO, uint64, error) {
	countQuery, countArgs, err := applyMachineFilter(
		psql.Select("COUNT(*)").From("machines m").JoinClause(machineJoins), filter,
	).ToSql()
	if err != nil {
		return nil, 0, err
	}

	var total uint64
	if err := r.storage.QueryRow(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("ошибка подсчёта станков: %w", err)
	}
	if total == 0 {
		return []dto.MachineDTO{}, 0, nil
	}

	query, args, err := buildMachineListQuery(filter, page, limit)
	if err != nil {
		return nil, 0, err
	}

	rows, err := r.storage.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("ошибка выборки станков: %w", err)
	}
	defer rows.Close()

	machines := make([]dto.MachineDTO, 0)
	for rows.Next() {
		m, err := scanMachine(rows)
		if err != nil {
			return nil, 0, err
		}
		machines = append(machines, m)
	}
	return machines, total, rows.Err()
}

func (r *machineRepository) FindMachine(ctx context.Context, id uint64) (*dto.MachineDTO, error) {
	query, args, err := psql.Select(machineSelectFields).From("machines m").JoinClause(machineJoins).
		Where(sq.Eq{"m.id": id}).ToSql()
	if err != nil {
		return nil, err
	}

	m, err := scanMachine(r.storage.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("ошибка получения станка %d: %w", id, err)
	}
	return &m, nil
}

func (r *machineRepository) MachinesBySection(ctx context.Context, sectionID uint64) ([]entities.Machine, error) {
	rows, err := r.storage.Query(ctx,
		"SELECT id, name, is_running, factory_section_id FROM machines WHERE factory_section_id = $1 ORDER BY id", sectionID)
	if err != nil {
		return nil, fmt.Errorf("ошибка выборки станков участка %d: %w", sectionID, err)
	}
	defer rows.Close()

	machines := make([]entities.Machine, 0)
	for rows.Next() {
		var m entities.Machine
		if err := rows.Scan(&m.ID, &m.Name, &m.IsRunning, &m.FactorySectionID); err != nil {
			return nil, err
		}
		machines = append(machines, m)
	}
	return machines, rows.Err()
}

// MachineParts - складские остатки станка. partID и partName сужают выборку, если заданы.
func (r *machineRepository) MachineParts(ctx context.Context, machineID uint64, partID *uint64, partName string) ([]dto.MachinePartDTO, error) {
	builder := psql.Select("mp.id, mp.machine_id, mp.qty, mp.req_qty, p.id, p.name").
		From("machine_parts mp").
		Join("parts p ON p.id = mp.part_id").
		Where(sq.Eq{"mp.machine_id": machineID}).
		OrderBy("p.name", "mp.id")
	if partID != nil {
		builder = builder.Where(sq.Eq{"p.id": *partID})
	}
	builder = db.ApplyContains(builder, "p.name", partName)

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.storage.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("ошибка выборки деталей станка %d: %w", machineID, err)
	}
	defer rows.Close()

	parts := make([]dto.MachinePartDTO, 0)
	for rows.Next() {
		var (
			mp     dto.MachinePartDTO
			reqQty *int
		)
		if err := rows.Scan(&mp.ID, &mp.MachineID, &mp.Qty, &reqQty, &mp.Part.ID, &mp.Part.Name); err != nil {
			return nil, err
		}
		mp.ReqQty = null.IntFromPtr(reqQty)
		parts = append(parts, mp)
	}
	return parts, rows.Err()
}

func (r *machineRepository) SetRunning(ctx context.Context, id uint64, running bool) error {
	tag, err := r.storage.Exec(ctx, "UPDATE machines SET is_running = $1 WHERE id = $2", running, id)
	if err != nil {
		return fmt.Errorf("ошибка обновления состояния станка %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *machineRepository) CountByRunning(ctx context.Context) (running, notRunning uint64, err error) {
	const query = `SELECT
		COUNT(*) FILTER (WHERE is_running),
		COUNT(*) FILTER (WHERE NOT is_running)
		FROM machines`
	if err = r.storage.QueryRow(ctx, query).Scan(&running, &notRunning); err != nil {
		return 0, 0, fmt.Errorf("ошибка подсчёта метрик станков: %w", err)
	}
	return running, notRunning, nil
}

// CheckLocationInTx проверяет, что станок стоит на участке, а участок принадлежит фабрике.
func (r *machineRepository) CheckLocationInTx(ctx context.Context, tx pgx.Tx, factoryID, sectionID, machineID uint64) (bool, error) {
	const query = `SELECT EXISTS (
		SELECT 1 FROM machines m
		JOIN factory_sections fs ON fs.id = m.factory_section_id
		WHERE m.id = $1 AND fs.id = $2 AND fs.factory_id = $3
	)`
	var ok bool
	if err := tx.QueryRow(ctx, query, machineID, sectionID, factoryID).Scan(&ok); err != nil {
		return false, fmt.Errorf("ошибка проверки расположения станка %d: %w", machineID, err)
	}
	return ok, nil
}
