package enums

import "fmt"

// MaintenanceType maps to the maintenance_type enum in Postgres.
type MaintenanceType string

const (
	MaintenanceTypeRepair  MaintenanceType = "repair"
	MaintenanceTypeService MaintenanceType = "service"
	MaintenanceTypeUpgrade MaintenanceType = "upgrade"
)

var validMaintenanceTypes = []MaintenanceType{
	MaintenanceTypeRepair,
	MaintenanceTypeService,
	MaintenanceTypeUpgrade,
}

// String implements fmt.Stringer.
func (m MaintenanceType) String() string {
	return string(m)
}

// IsValid reports whether the value matches the canonical maintenance_type enum.
func (m MaintenanceType) IsValid() bool {
	for _, candidate := range validMaintenanceTypes {
		if candidate == m {
			return true
		}
	}
	return false
}

// ParseMaintenanceType converts raw input into MaintenanceType.
func ParseMaintenanceType(value string) (MaintenanceType, error) {
	for _, candidate := range validMaintenanceTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid maintenance type %q", value)
}
