package services

import (
	"time"

	"equipment-portal/internal/entities"
	"equipment-portal/pkg/utils"
)

// NextMaintenanceDate: явная дата из backend, иначе последняя дата
// обслуживания (или покупки, или создания) плюс интервал в днях.
// false - посчитать нельзя, такое оборудование в алерты не попадает.
func NextMaintenanceDate(eq entities.Equipment) (time.Time, bool) {
	if eq.NextMaintenanceDate.Valid {
		return eq.NextMaintenanceDate.Time.Time, true
	}
	if !eq.MaintenanceInterval.Valid || eq.MaintenanceInterval.Int <= 0 {
		return time.Time{}, false
	}

	var base time.Time
	switch {
	case eq.LastMaintenanceDate.Valid:
		base = eq.LastMaintenanceDate.Time.Time
	case eq.PurchaseDate.Valid:
		base = eq.PurchaseDate.Time.Time
	case eq.CreatedAt.Valid:
		base = eq.CreatedAt.Time.Time
	default:
		return time.Time{}, false
	}
	return base.AddDate(0, 0, eq.MaintenanceInterval.Int), true
}

// IsOverdue сравнивает по дням: сегодня позже расчётной даты.
// Только для активного оборудования.
func IsOverdue(eq entities.Equipment, now time.Time) bool {
	if eq.Status != entities.EquipmentActive {
		return false
	}
	next, ok := NextMaintenanceDate(eq)
	if !ok {
		return false
	}
	return utils.DaysBetween(now, next) < 0
}
