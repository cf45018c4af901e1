package repositories

import (
	"context"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/aarondl/null/v8"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"factory-ops/internal/dto"
	"factory-ops/internal/entities"
	"factory-ops/internal/filters"
	db "factory-ops/internal/infrastructure/bd"
	"factory-ops/pkg/constants"
	apperrors "factory-ops/pkg/errors"
)

const (
	orderTable = "orders o"

	orderSelectFields = `o.id, o.created_at, o.order_note, o.order_type,
		p.id, p.name, p.permission,
		d.id, d.name,
		s.id, s.name,
		f.id, f.name, f.abbreviation,
		fs.id, fs.name,
		m.id, m.name`

	orderJoins = `JOIN profiles p ON p.id = o.created_by_user_id
		JOIN departments d ON d.id = o.department_id
		JOIN statuses s ON s.id = o.current_status_id
		JOIN factories f ON f.id = o.factory_id
		LEFT JOIN factory_sections fs ON fs.id = o.factory_section_id
		LEFT JOIN machines m ON m.id = o.machine_id`

	orderedPartSelectFields = `op.id, op.order_id, op.qty, op.is_sample_sent_to_office, op.note,
		pt.id, pt.name,
		f.id, f.name, f.abbreviation,
		fs.id, fs.name,
		m.id, m.name`

	orderedPartJoins = `JOIN parts pt ON pt.id = op.part_id
		JOIN factories f ON f.id = op.factory_id
		LEFT JOIN factory_sections fs ON fs.id = op.factory_section_id
		LEFT JOIN machines m ON m.id = op.machine_id`

	// ORDER BY для списков: новые сверху, id разбивает одинаковое время.
	orderSort = "o.created_at DESC, o.id DESC"
)

type OrderRepositoryInterface interface {
	GetOrders(ctx context.Context, filter filters.OrderFilter, page, limit int) ([]dto.OrderDTO, uint64, error)
	ExportOrders(ctx context.Context, filter filters.OrderFilter, limit int) ([]dto.OrderDTO, error)
	FindOrder(ctx context.Context, id uint64) (*dto.OrderDTO, error)
	FindOrderParts(ctx context.Context, orderID uint64) ([]dto.OrderedPartDTO, error)
	RunningOrdersByMachine(ctx context.Context, machineID uint64) ([]dto.OrderDTO, error)
	LinkedOrderedParts(ctx context.Context, partID uint64, filter filters.OrderFilter) ([]dto.LinkedOrderedPartDTO, error)

	CreateOrderInTx(ctx context.Context, tx pgx.Tx, order entities.Order) (uint64, error)
	CreateOrderPartsInTx(ctx context.Context, tx pgx.Tx, orderID uint64, parts []entities.OrderedPart) error
	FindOrderForUpdateInTx(ctx context.Context, tx pgx.Tx, id uint64) (*entities.Order, string, error)
	UpdateStatusInTx(ctx context.Context, tx pgx.Tx, orderID, statusID uint64) error
	DeleteOrder(ctx context.Context, id uint64) error
}

type OrderRepository struct {
	storage *pgxpool.Pool
	logger  *zap.Logger
}

func NewOrderRepository(storage *pgxpool.Pool, logger *zap.Logger) OrderRepositoryInterface {
	return &OrderRepository{storage: storage, logger: logger}
}

// applyOrderFilter переносит OrderFilter в WHERE. Пустой фильтр ничего не добавляет.
// Колонки берутся из алиаса o, поэтому функция подходит и для запросов со строками заявок.
func applyOrderFilter(builder sq.SelectBuilder, filter filters.OrderFilter) sq.SelectBuilder {
	if id, ok := filter.OrderID(); ok {
		builder = builder.Where(sq.Eq{"o.id": id})
	} else if from, to, ok := filter.DateRange(); ok {
		builder = db.ApplyDayRange(builder, "o.created_at", from, to)
	}

	return db.ApplyOptionalEq(builder, map[string]*uint64{
		"o.current_status_id":  filter.StatusID,
		"o.department_id":      filter.DepartmentID,
		"o.factory_id":         filter.FactoryID,
		"o.factory_section_id": filter.FactorySectionID,
		"o.machine_id":         filter.MachineID,
	})
}

func buildOrderCountQuery(filter filters.OrderFilter) (string, []interface{}, error) {
	return applyOrderFilter(psql.Select("COUNT(*)").From(orderTable), filter).ToSql()
}

func buildOrderListQuery(filter filters.OrderFilter, page, limit int) (string, []interface{}, error) {
	builder := psql.Select(orderSelectFields).From(orderTable).JoinClause(orderJoins)
	builder = applyOrderFilter(builder, filter).OrderBy(orderSort)
	return db.ApplyPage(builder, page, limit).ToSql()
}

func scanOrder(row pgx.Row) (dto.OrderDTO, error) {
	var (
		o                      dto.OrderDTO
		sectionID, machineID   *uint64
		sectionName, machineNm *string
	)
	err := row.Scan(
		&o.ID, &o.CreatedAt, &o.OrderNote, &o.OrderType,
		&o.Creator.ID, &o.Creator.Name, &o.Creator.Permission,
		&o.Department.ID, &o.Department.Name,
		&o.Status.ID, &o.Status.Name,
		&o.Factory.ID, &o.Factory.Name, &o.Factory.Abbreviation,
		&sectionID, &sectionName,
		&machineID, &machineNm,
	)
	if err != nil {
		return o, err
	}
	o.FactorySection = shortOrNil(sectionID, sectionName)
	o.Machine = shortOrNil(machineID, machineNm)
	o.Location = o.DescribeLocation()
	return o, nil
}

func scanOrderedPart(row pgx.Row, extra ...interface{}) (dto.OrderedPartDTO, error) {
	var (
		p                      dto.OrderedPartDTO
		note                   *string
		sectionID, machineID   *uint64
		sectionName, machineNm *string
	)
	dest := []interface{}{
		&p.ID, &p.OrderID, &p.Qty, &p.IsSampleSentToOffice, &note,
		&p.Part.ID, &p.Part.Name,
		&p.Factory.ID, &p.Factory.Name, &p.Factory.Abbreviation,
		&sectionID, &sectionName,
		&machineID, &machineNm,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return p, err
	}
	p.Note = null.StringFromPtr(note)
	p.FactorySection = shortOrNil(sectionID, sectionName)
	p.Machine = shortOrNil(machineID, machineNm)
	return p, nil
}

func shortOrNil(id *uint64, name *string) *dto.ShortDTO {
	if id == nil {
		return nil
	}
	s := &dto.ShortDTO{ID: *id}
	if name != nil {
		s.Name = *name
	}
	return s
}

func (r *OrderRepository) GetOrders(ctx context.Context, filter filters.OrderFilter, page, limit int) ([]dto.OrderDTO, uint64, error) {
	countQuery, countArgs, err := buildOrderCountQuery(filter)
	if err != nil {
		return nil, 0, fmt.Errorf("ошибка сборки запроса подсчёта заявок: %w", err)
	}

	var total uint64
	if err := r.storage.QueryRow(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("ошибка подсчёта заявок: %w", err)
	}
	if total == 0 {
		return []dto.OrderDTO{}, 0, nil
	}

	query, args, err := buildOrderListQuery(filter, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("ошибка сборки запроса заявок: %w", err)
	}

	orders, err := r.queryOrders(ctx, r.storage, query, args...)
	if err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

// ExportOrders - тот же набор, что и GetOrders, без пагинации, но не больше limit строк.
func (r *OrderRepository) ExportOrders(ctx context.Context, filter filters.OrderFilter, limit int) ([]dto.OrderDTO, error) {
	builder := psql.Select(orderSelectFields).From(orderTable).JoinClause(orderJoins)
	builder = applyOrderFilter(builder, filter).OrderBy(orderSort)
	if limit > 0 {
		builder = builder.Limit(uint64(limit))
	}
	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("ошибка сборки запроса экспорта: %w", err)
	}
	return r.queryOrders(ctx, r.storage, query, args...)
}

func (r *OrderRepository) queryOrders(ctx context.Context, q querier, query string, args ...interface{}) ([]dto.OrderDTO, error) {
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("ошибка выборки заявок: %w", err)
	}
	defer rows.Close()

	orders := make([]dto.OrderDTO, 0)
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("ошибка чтения строки заявки: %w", err)
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

func (r *OrderRepository) FindOrder(ctx context.Context, id uint64) (*dto.OrderDTO, error) {
	query, args, err := psql.Select(orderSelectFields).From(orderTable).JoinClause(orderJoins).
		Where(sq.Eq{"o.id": id}).ToSql()
	if err != nil {
		return nil, err
	}

	o, err := scanOrder(r.storage.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("ошибка получения заявки %d: %w", id, err)
	}
	return &o, nil
}

func (r *OrderRepository) FindOrderParts(ctx context.Context, orderID uint64) ([]dto.OrderedPartDTO, error) {
	query, args, err := psql.Select(orderedPartSelectFields).From("order_parts op").JoinClause(orderedPartJoins).
		Where(sq.Eq{"op.order_id": orderID}).
		OrderBy("op.id").
		ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.storage.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("ошибка выборки строк заявки %d: %w", orderID, err)
	}
	defer rows.Close()

	parts := make([]dto.OrderedPartDTO, 0)
	for rows.Next() {
		p, err := scanOrderedPart(rows)
		if err != nil {
			return nil, err
		}
		parts = append(parts, p)
	}
	return parts, rows.Err()
}

// RunningOrdersByMachine - заявки на станок в нефинальном статусе.
func (r *OrderRepository) RunningOrdersByMachine(ctx context.Context, machineID uint64) ([]dto.OrderDTO, error) {
	query, args, err := psql.Select(orderSelectFields).From(orderTable).JoinClause(orderJoins).
		Where(sq.Eq{"o.machine_id": machineID}).
		Where(sq.NotEq{"s.name": constants.FinalStatuses}).
		OrderBy(orderSort).
		ToSql()
	if err != nil {
		return nil, err
	}
	return r.queryOrders(ctx, r.storage, query, args...)
}

// LinkedOrderedParts - строки заявок с деталью partID, отфильтрованные по заявке.
func (r *OrderRepository) LinkedOrderedParts(ctx context.Context, partID uint64, filter filters.OrderFilter) ([]dto.LinkedOrderedPartDTO, error) {
	builder := psql.Select(orderedPartSelectFields+", o.created_at, o.order_type, s.id, s.name").
		From("order_parts op").
		JoinClause(orderedPartJoins).
		Join("orders o ON o.id = op.order_id").
		Join("statuses s ON s.id = o.current_status_id").
		Where(sq.Eq{"op.part_id": partID})
	builder = applyOrderFilter(builder, filter).OrderBy(orderSort, "op.id")

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.storage.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("ошибка выборки связанных заявок детали %d: %w", partID, err)
	}
	defer rows.Close()

	out := make([]dto.LinkedOrderedPartDTO, 0)
	for rows.Next() {
		var l dto.LinkedOrderedPartDTO
		part, err := scanOrderedPart(rows, &l.OrderCreatedAt, &l.OrderType, &l.OrderStatus.ID, &l.OrderStatus.Name)
		if err != nil {
			return nil, err
		}
		l.OrderedPartDTO = part
		out = append(out, l)
	}
	return out, rows.Err()
}

func (r *OrderRepository) CreateOrderInTx(ctx context.Context, tx pgx.Tx, order entities.Order) (uint64, error) {
	query, args, err := psql.Insert("orders").
		Columns("order_note", "created_by_user_id", "department_id", "current_status_id",
			"factory_id", "factory_section_id", "machine_id", "order_type").
		Values(order.OrderNote, order.CreatedByUserID, order.DepartmentID, order.CurrentStatusID,
			order.FactoryID, order.FactorySectionID, order.MachineID, order.OrderType).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return 0, err
	}

	var id uint64
	if err := tx.QueryRow(ctx, query, args...).Scan(&id); err != nil {
		return 0, fmt.Errorf("ошибка создания заявки: %w", err)
	}
	return id, nil
}

// CreateOrderPartsInTx вставляет все строки одним батчем. Порядок вставки не важен.
func (r *OrderRepository) CreateOrderPartsInTx(ctx context.Context, tx pgx.Tx, orderID uint64, parts []entities.OrderedPart) error {
	if len(parts) == 0 {
		return nil
	}

	const query = `INSERT INTO order_parts
		(order_id, part_id, qty, factory_id, factory_section_id, machine_id, is_sample_sent_to_office, note)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	batch := &pgx.Batch{}
	for _, p := range parts {
		batch.Queue(query, orderID, p.PartID, p.Qty, p.FactoryID, p.FactorySectionID, p.MachineID, p.IsSampleSentToOffice, p.Note)
	}

	results := tx.SendBatch(ctx, batch)
	for i := range parts {
		if _, err := results.Exec(); err != nil {
			_ = results.Close()
			return fmt.Errorf("ошибка вставки строки %d заявки %d: %w", i, orderID, err)
		}
	}
	return results.Close()
}

// FindOrderForUpdateInTx блокирует строку заявки до конца транзакции и возвращает имя текущего статуса.
func (r *OrderRepository) FindOrderForUpdateInTx(ctx context.Context, tx pgx.Tx, id uint64) (*entities.Order, string, error) {
	const query = `SELECT o.id, o.created_at, o.order_note, o.created_by_user_id, o.department_id,
			o.current_status_id, o.factory_id, o.factory_section_id, o.machine_id, o.order_type, s.name
		FROM orders o
		JOIN statuses s ON s.id = o.current_status_id
		WHERE o.id = $1
		FOR UPDATE OF o`

	var (
		o          entities.Order
		statusName string
	)
	err := tx.QueryRow(ctx, query, id).Scan(
		&o.ID, &o.CreatedAt, &o.OrderNote, &o.CreatedByUserID, &o.DepartmentID,
		&o.CurrentStatusID, &o.FactoryID, &o.FactorySectionID, &o.MachineID, &o.OrderType, &statusName,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, "", apperrors.ErrNotFound
		}
		return nil, "", fmt.Errorf("ошибка блокировки заявки %d: %w", id, err)
	}
	return &o, statusName, nil
}

func (r *OrderRepository) UpdateStatusInTx(ctx context.Context, tx pgx.Tx, orderID, statusID uint64) error {
	tag, err := tx.Exec(ctx, "UPDATE orders SET current_status_id = $1 WHERE id = $2", statusID, orderID)
	if err != nil {
		return fmt.Errorf("ошибка обновления статуса заявки %d: %w", orderID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// DeleteOrder удаляет заявку. Строки и история удаляются каскадом.
func (r *OrderRepository) DeleteOrder(ctx context.Context, id uint64) error {
	tag, err := r.storage.Exec(ctx, "DELETE FROM orders WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("ошибка удаления заявки %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	r.logger.Info("Заявка удалена", zap.Uint64("orderID", id))
	return nil
}
