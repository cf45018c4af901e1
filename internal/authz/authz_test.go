package authz

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"factory-ops/internal/entities"
)

func TestCanManage_Policy(t *testing.T) {
	cases := []struct {
		status     string
		permission string
		want       bool
	}{
		{"Pending", "admin", true},
		{"Pending", "department", true},
		{"Pending", "office", false},
		{"Pending", "factory", false},
		{"Approved", "office", true},
		{"Approved", "department", false},
		{"Processing", "office", true},
		{"Processing", "factory", false},
		{"Parts Sent", "factory", true},
		{"Parts Sent", "office", false},
		{"Parts Sent", "admin", true},
		{"Parts Received", "admin", false},
		{"Parts Received", "factory", false},
		{"Rejected", "admin", false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, CanManage(tc.status, tc.permission), "%s/%s", tc.status, tc.permission)
	}
}

func TestCanManage_TotalAndPure(t *testing.T) {
	for _, status := range []string{"", "Archived", "pending", "PENDING", "Unknown Future Status"} {
		for _, perm := range []string{"", "admin", "department", "office", "factory", "guest"} {
			first := CanManage(status, perm)
			assert.False(t, first, "%q/%q", status, perm)
			assert.Equal(t, first, CanManage(status, perm))
		}
	}
}

func TestGatekeeper_Can(t *testing.T) {
	g := NewGatekeeper()
	admin := entities.Profile{ID: 1, Permission: "admin"}
	factory := entities.Profile{ID: 2, Permission: "factory"}
	office := entities.Profile{ID: 3, Permission: "office"}

	assert.True(t, g.Can(admin, OrdersDelete, nil))
	assert.False(t, g.Can(office, OrdersDelete, nil))

	assert.True(t, g.Can(factory, MachinesUpdate, nil))
	assert.False(t, g.Can(office, MachinesUpdate, nil))

	assert.True(t, g.Can(office, OrdersManage, ManageTarget{StatusName: "Approved"}))
	assert.False(t, g.Can(office, OrdersManage, ManageTarget{StatusName: "Parts Sent"}))
	assert.False(t, g.Can(admin, OrdersManage, nil))

	assert.True(t, g.Can(office, OrdersView, nil))
	assert.False(t, g.Can(entities.Profile{}, OrdersView, nil))
	assert.False(t, g.Can(admin, "unknown:action", nil))
}
