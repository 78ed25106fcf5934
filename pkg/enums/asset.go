package enums

import "fmt"

// AssetCategory maps to the asset_category enum in Postgres.
type AssetCategory string

const (
	AssetCategoryLaptop    AssetCategory = "laptop"
	AssetCategoryDesktop   AssetCategory = "desktop"
	AssetCategoryPrinter   AssetCategory = "printer"
	AssetCategoryProjector AssetCategory = "projector"
	AssetCategoryMonitor   AssetCategory = "monitor"
	AssetCategoryTablet    AssetCategory = "tablet"
	AssetCategoryPhone     AssetCategory = "phone"
	AssetCategoryCamera    AssetCategory = "camera"
	AssetCategoryNetwork   AssetCategory = "network"
	AssetCategoryOther     AssetCategory = "other"
)

var validAssetCategories = []AssetCategory{
	AssetCategoryLaptop,
	AssetCategoryDesktop,
	AssetCategoryPrinter,
	AssetCategoryProjector,
	AssetCategoryMonitor,
	AssetCategoryTablet,
	AssetCategoryPhone,
	AssetCategoryCamera,
	AssetCategoryNetwork,
	AssetCategoryOther,
}

// String implements fmt.Stringer.
func (c AssetCategory) String() string {
	return string(c)
}

// IsValid reports whether the value matches the canonical asset_category enum.
func (c AssetCategory) IsValid() bool {
	for _, candidate := range validAssetCategories {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseAssetCategory converts raw input into AssetCategory.
func ParseAssetCategory(value string) (AssetCategory, error) {
	for _, candidate := range validAssetCategories {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid asset category %q", value)
}

// AssetStatus maps to the asset_status enum in Postgres.
type AssetStatus string

const (
	AssetStatusAvailable   AssetStatus = "available"
	AssetStatusBorrowed    AssetStatus = "borrowed"
	AssetStatusMaintenance AssetStatus = "maintenance"
	AssetStatusRetired     AssetStatus = "retired"
)

var validAssetStatuses = []AssetStatus{
	AssetStatusAvailable,
	AssetStatusBorrowed,
	AssetStatusMaintenance,
	AssetStatusRetired,
}

// String implements fmt.Stringer.
func (s AssetStatus) String() string {
	return string(s)
}

// IsValid reports whether the value matches the canonical asset_status enum.
func (s AssetStatus) IsValid() bool {
	for _, candidate := range validAssetStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseAssetStatus converts raw input into AssetStatus.
func ParseAssetStatus(value string) (AssetStatus, error) {
	for _, candidate := range validAssetStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid asset status %q", value)
}

// AssetCondition maps to the asset_condition enum in Postgres.
type AssetCondition string

const (
	AssetConditionNew     AssetCondition = "new"
	AssetConditionGood    AssetCondition = "good"
	AssetConditionFair    AssetCondition = "fair"
	AssetConditionPoor    AssetCondition = "poor"
	AssetConditionDamaged AssetCondition = "damaged"
)

var validAssetConditions = []AssetCondition{
	AssetConditionNew,
	AssetConditionGood,
	AssetConditionFair,
	AssetConditionPoor,
	AssetConditionDamaged,
}

// String implements fmt.Stringer.
func (c AssetCondition) String() string {
	return string(c)
}

// IsValid reports whether the value matches the canonical asset_condition enum.
func (c AssetCondition) IsValid() bool {
	for _, candidate := range validAssetConditions {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseAssetCondition converts raw input into AssetCondition.
func ParseAssetCondition(value string) (AssetCondition, error) {
	for _, candidate := range validAssetConditions {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid asset condition %q", value)
}
