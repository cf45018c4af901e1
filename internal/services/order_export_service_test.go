package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"factory-ops/internal/dto"
	"factory-ops/internal/filters"
	"factory-ops/pkg/constants"
)

func readExportRows(t *testing.T, svc *OrderExportService, filter filters.OrderFilter) ([][]string, string) {
	t.Helper()
	buf, fileName, err := svc.Export(context.Background(), filter)
	require.NoError(t, err)

	f, err := excelize.OpenReader(buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(exportSheet)
	require.NoError(t, err)
	return rows, fileName
}

func TestExport_WritesHeaderAndRows(t *testing.T) {
	orders := newFakeOrderRepo()
	created := time.Date(2024, 5, 1, 10, 30, 0, 0, time.UTC)
	orders.listResult = []dto.OrderDTO{
		{
			ID:             15,
			CreatedAt:      created,
			OrderNote:      "Замена подшипников",
			OrderType:      constants.OrderTypeMachine,
			Creator:        dto.ShortProfileDTO{ID: 7, Name: "Dept User"},
			Department:     dto.ShortDTO{ID: 2, Name: "Maintenance"},
			Status:         dto.ShortDTO{ID: 1, Name: constants.StatusPending},
			Factory:        dto.ShortFactoryDTO{ID: 1, Name: "Factory A", Abbreviation: "FA"},
			FactorySection: &dto.ShortDTO{ID: 3, Name: "Weaving"},
			Machine:        &dto.ShortDTO{ID: 4, Name: "Loom 1"},
		},
		{
			ID:         16,
			CreatedAt:  created,
			OrderNote:  "Склад",
			OrderType:  constants.OrderTypeStorage,
			Creator:    dto.ShortProfileDTO{ID: 7, Name: "Dept User"},
			Department: dto.ShortDTO{ID: 2, Name: "Maintenance"},
			Status:     dto.ShortDTO{ID: 1, Name: constants.StatusPending},
			Factory:    dto.ShortFactoryDTO{ID: 1, Name: "Factory A", Abbreviation: "FA"},
		},
	}
	svc := NewOrderExportService(orders, time.UTC, zap.NewNop())

	status := uint64(1)
	rows, fileName := readExportRows(t, svc, filters.OrderFilter{StatusID: &status})

	assert.Regexp(t, `^orders_\d{4}-\d{2}-\d{2}\.xlsx$`, fileName)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"ID", "Дата", "Тип", "Статус", "Отдел", "Фабрика", "Участок", "Станок", "Автор", "Описание"}, rows[0])
	assert.Equal(t, []string{
		"15", "01.05.2024 10:30", constants.OrderTypeMachine, constants.StatusPending,
		"Maintenance", "Factory A", "Weaving", "Loom 1", "Dept User", "Замена подшипников",
	}, rows[1])

	// Складская заявка: участок и станок пустые, описание остаётся в последней колонке.
	storage := rows[2]
	require.Len(t, storage, 10)
	assert.Equal(t, "16", storage[0])
	assert.Empty(t, storage[6])
	assert.Empty(t, storage[7])
	assert.Equal(t, "Склад", storage[9])

	require.NotNil(t, orders.lastFilter.StatusID)
	assert.Equal(t, status, *orders.lastFilter.StatusID)
	assert.Equal(t, exportMaxRows, orders.exportLimit)
	assert.Equal(t, 10000, orders.exportLimit)
}

func TestExport_EmptySetHasOnlyHeader(t *testing.T) {
	svc := NewOrderExportService(newFakeOrderRepo(), nil, zap.NewNop())

	rows, _ := readExportRows(t, svc, filters.OrderFilter{})
	require.Len(t, rows, 1)
	assert.Equal(t, "ID", rows[0][0])
}

func TestExport_StoreErrorIsWrapped(t *testing.T) {
	orders := newFakeOrderRepo()
	orders.listErr = errors.New("timeout")
	svc := NewOrderExportService(orders, time.UTC, zap.NewNop())

	_, _, err := svc.Export(context.Background(), filters.OrderFilter{})
	require.Error(t, err)
	assert.ErrorIs(t, err, orders.listErr)
}
