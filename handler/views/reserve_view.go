package views

import (
	"aqueduct/core"
	"aqueduct/pkg/fixedpoint"
)

// Reserve reserve state plus the aggregates projected to request time.
type Reserve struct {
	core.Reserve
	TotalSupply        fixedpoint.Big `json:"total_supply"`
	TotalVariableDebt  fixedpoint.Big `json:"total_variable_debt"`
	AvailableLiquidity fixedpoint.Big `json:"available_liquidity"`
}

// Account aggregate position plus the per-reserve balances behind it.
type Account struct {
	core.AccountPosition
	Balances []*AccountBalance `json:"balances"`
}

// AccountBalance one live balance of the account in one reserve.
type AccountBalance struct {
	AssetID string         `json:"asset_id"`
	Symbol  string         `json:"symbol"`
	Side    string         `json:"side"`
	Balance fixedpoint.Big `json:"balance"`
}
