package core

import (
	"context"
	"time"

	"aqueduct/pkg/fixedpoint"
)

// AccountPosition is the aggregate standing of one account across every
// reserve, computed fresh on demand and never stored. Values are wad in the
// oracle base currency; the health factor is a wad ratio.
type AccountPosition struct {
	UserID               string         `json:"user_id"`
	TotalCollateralValue fixedpoint.Big `json:"total_collateral_value"`
	TotalDebtValue       fixedpoint.Big `json:"total_debt_value"`
	AvailableBorrows     fixedpoint.Big `json:"available_borrows"`
	LiquidationThreshold uint64         `json:"liquidation_threshold"`
	LoanToValue          uint64         `json:"loan_to_value"`
	HealthFactor         fixedpoint.Big `json:"health_factor"`
}

// Liquidatable reports whether the position may be liquidated.
func (p *AccountPosition) Liquidatable(threshold fixedpoint.Big) bool {
	return p.HealthFactor.LessThan(threshold)
}

// IAccountService account aggregation interface
type IAccountService interface {
	// Position walks every listed reserve, pricing the account's live supply
	// and debt balances with the oracle.
	Position(ctx context.Context, userID string, now time.Time) (*AccountPosition, error)
}
