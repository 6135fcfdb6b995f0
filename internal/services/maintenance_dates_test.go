package services

import (
	"testing"
	"time"

	"github.com/aarondl/null/v8"
	"github.com/stretchr/testify/assert"

	"equipment-portal/internal/entities"
	"equipment-portal/pkg/types"
	"equipment-portal/pkg/utils"
)

var testNow = time.Date(2024, 6, 15, 10, 0, 0, 0, time.UTC)

func daysAgo(n int) types.Timestamp {
	return types.NewTimestamp(testNow.AddDate(0, 0, -n))
}

func TestNextMaintenanceDate_FromLastMaintenance(t *testing.T) {
	eq := entities.Equipment{
		Status:              entities.EquipmentActive,
		MaintenanceInterval: null.IntFrom(30),
		LastMaintenanceDate: daysAgo(35),
	}

	next, ok := NextMaintenanceDate(eq)

	assert.True(t, ok)
	assert.Equal(t, -5, utils.DaysBetween(testNow, next))
	assert.True(t, IsOverdue(eq, testNow))
}

func TestNextMaintenanceDate_Fallbacks(t *testing.T) {
	cases := []struct {
		name   string
		eq     entities.Equipment
		want   time.Time
		wantOK bool
	}{
		{
			name:   "explicit next date wins",
			eq:     entities.Equipment{NextMaintenanceDate: daysAgo(-3), LastMaintenanceDate: daysAgo(100), MaintenanceInterval: null.IntFrom(10)},
			want:   testNow.AddDate(0, 0, 3),
			wantOK: true,
		},
		{
			name:   "purchase date when never serviced",
			eq:     entities.Equipment{PurchaseDate: daysAgo(20), MaintenanceInterval: null.IntFrom(30)},
			want:   testNow.AddDate(0, 0, 10),
			wantOK: true,
		},
		{
			name:   "created at as last resort",
			eq:     entities.Equipment{CreatedAt: daysAgo(5), MaintenanceInterval: null.IntFrom(7)},
			want:   testNow.AddDate(0, 0, 2),
			wantOK: true,
		},
		{
			name: "no base date",
			eq:   entities.Equipment{MaintenanceInterval: null.IntFrom(30)},
		},
		{
			name: "no interval",
			eq:   entities.Equipment{LastMaintenanceDate: daysAgo(5)},
		},
		{
			name: "zero interval",
			eq:   entities.Equipment{LastMaintenanceDate: daysAgo(5), MaintenanceInterval: null.IntFrom(0)},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := NextMaintenanceDate(tc.eq)
			assert.Equal(t, tc.wantOK, ok)
			if tc.wantOK {
				assert.True(t, tc.want.Equal(got), "got %s want %s", got, tc.want)
			}
		})
	}
}

func TestIsOverdue(t *testing.T) {
	base := entities.Equipment{MaintenanceInterval: null.IntFrom(30), LastMaintenanceDate: daysAgo(35)}

	for _, status := range []string{
		entities.EquipmentDisposed,
		entities.EquipmentInactive,
		entities.EquipmentMaintenance,
		entities.EquipmentPendingLiquidation,
	} {
		eq := base
		eq.Status = status
		assert.False(t, IsOverdue(eq, testNow), status)
	}

	due := base
	due.Status = entities.EquipmentActive
	due.LastMaintenanceDate = daysAgo(30)
	assert.False(t, IsOverdue(due, testNow), "due today is not overdue yet")

	unknown := entities.Equipment{Status: entities.EquipmentActive}
	assert.False(t, IsOverdue(unknown, testNow))
}

func TestIsOverdue_DisposedNeverOverdue(t *testing.T) {
	eq := entities.Equipment{
		Status:              entities.EquipmentDisposed,
		NextMaintenanceDate: daysAgo(400),
	}
	assert.False(t, IsOverdue(eq, testNow))
}
