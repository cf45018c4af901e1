package services

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"factory-ops/internal/dto"
	"factory-ops/internal/filters"
	"factory-ops/internal/repositories"
)

const (
	exportSheet   = "Orders"
	exportMaxRows = 10000
)

var exportHeaders = []interface{}{
	"ID", "Дата", "Тип", "Статус", "Отдел", "Фабрика", "Участок", "Станок", "Автор", "Описание",
}

type OrderExportServiceInterface interface {
	Export(ctx context.Context, filter filters.OrderFilter) (*bytes.Buffer, string, error)
}

type OrderExportService struct {
	orderRepo repositories.OrderRepositoryInterface
	location  *time.Location
	logger    *zap.Logger
}

func NewOrderExportService(orderRepo repositories.OrderRepositoryInterface, location *time.Location, logger *zap.Logger) *OrderExportService {
	if location == nil {
		location = time.UTC
	}
	return &OrderExportService{orderRepo: orderRepo, location: location, logger: logger}
}

// Export строит xlsx по тому же фильтру, что и список заявок, без пагинации.
func (s *OrderExportService) Export(ctx context.Context, filter filters.OrderFilter) (*bytes.Buffer, string, error) {
	orders, err := s.orderRepo.ExportOrders(ctx, filter, exportMaxRows)
	if err != nil {
		s.logger.Error("Ошибка выборки заявок для экспорта", zap.Error(err))
		return nil, "", fmt.Errorf("не удалось выгрузить заявки: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", exportSheet); err != nil {
		return nil, "", err
	}
	if err := f.SetSheetRow(exportSheet, "A1", &exportHeaders); err != nil {
		return nil, "", err
	}
	style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err == nil {
		_ = f.SetCellStyle(exportSheet, "A1", "J1", style)
	}

	for i, o := range orders {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, "", err
		}
		row := s.orderRow(o)
		if err := f.SetSheetRow(exportSheet, cell, &row); err != nil {
			return nil, "", err
		}
	}
	_ = f.SetColWidth(exportSheet, "B", "B", 18)
	_ = f.SetColWidth(exportSheet, "E", "I", 22)
	_ = f.SetColWidth(exportSheet, "J", "J", 50)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, "", fmt.Errorf("ошибка формирования xlsx: %w", err)
	}

	fileName := fmt.Sprintf("orders_%s.xlsx", time.Now().In(s.location).Format("2006-01-02"))
	s.logger.Info("Экспорт заявок сформирован", zap.Int("rows", len(orders)))
	return buf, fileName, nil
}

func (s *OrderExportService) orderRow(o dto.OrderDTO) []interface{} {
	var section, machine string
	if o.FactorySection != nil {
		section = o.FactorySection.Name
	}
	if o.Machine != nil {
		machine = o.Machine.Name
	}
	return []interface{}{
		o.ID,
		o.CreatedAt.In(s.location).Format("02.01.2006 15:04"),
		o.OrderType,
		o.Status.Name,
		o.Department.Name,
		o.Factory.Name,
		section,
		machine,
		o.Creator.Name,
		o.OrderNote,
	}
}
