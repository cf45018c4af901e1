package migrations

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"factory-ops/internal/realtime"
)

func TestChangeTrigger_NotifiesListenerChannel(t *testing.T) {
	raw, err := embedMigrations.ReadFile("00002_change_notify.sql")
	require.NoError(t, err)

	assert.Contains(t, string(raw), "pg_notify(\n        '"+realtime.ChangesChannel+"',")
}

func TestChangeTrigger_CoversWatchedTables(t *testing.T) {
	raw, err := embedMigrations.ReadFile("00002_change_notify.sql")
	require.NoError(t, err)

	for _, table := range []string{realtime.TableOrders, realtime.TableOrderParts, realtime.TableStatusTracker, realtime.TableMachines} {
		assert.Contains(t, string(raw), "ON "+table+"\n", table)
	}
}
