package returns

import (
	"github.com/nhc-it/assetlend-backend/pkg/enums"
	"github.com/nhc-it/assetlend-backend/pkg/outbox/payloads"
)

var gradingTable = map[enums.ReturnCondition]payloads.ConditionOutcome{
	enums.ReturnConditionGood: {
		Condition:      enums.ReturnConditionGood,
		AssetStatus:    enums.AssetStatusAvailable,
		AssetCondition: enums.AssetConditionGood,
	},
	enums.ReturnConditionFair: {
		Condition:      enums.ReturnConditionFair,
		AssetStatus:    enums.AssetStatusMaintenance,
		AssetCondition: enums.AssetConditionFair,
	},
	enums.ReturnConditionDamaged: {
		Condition:      enums.ReturnConditionDamaged,
		AssetStatus:    enums.AssetStatusMaintenance,
		AssetCondition: enums.AssetConditionDamaged,
	},
	enums.ReturnConditionLost: {
		Condition:      enums.ReturnConditionLost,
		AssetStatus:    enums.AssetStatusRetired,
		AssetCondition: enums.AssetConditionPoor,
	},
}

// Grade maps a return condition onto the asset's post-return status and condition.
func Grade(condition enums.ReturnCondition) (payloads.ConditionOutcome, bool) {
	outcome, ok := gradingTable[condition]
	return outcome, ok
}

func assetUpdates(outcome payloads.ConditionOutcome) map[string]any {
	return map[string]any{
		"status":          outcome.AssetStatus,
		"asset_condition": outcome.AssetCondition,
	}
}
