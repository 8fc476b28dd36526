package commission

import "github.com/shopspring/decimal"

type StructureType string

const (
	TypeFlatRate      StructureType = "flat-rate"
	TypeTiered        StructureType = "tiered"
	TypeTargetBased   StructureType = "target-based"
	TypeProfitSharing StructureType = "profit-sharing"
)

const (
	OutcomeCalculated = "calculated"
	OutcomeIneligible = "ineligible"
	OutcomeFailed     = "failed"

	ProjectedPeriodSuffix = "-projected"
	TopPerformerLimit     = 5
	DefaultBulkWorkers    = 8
)

var (
	hundred = decimal.NewFromInt(100)
	// Sales above target earn this multiple of the base rate.
	ExcessRateMultiplier = decimal.RequireFromString("1.5")
)

var StructureTypes = []StructureType{TypeFlatRate, TypeTiered, TypeTargetBased, TypeProfitSharing}
