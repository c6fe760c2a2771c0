package core

import (
	"context"
	"time"

	"aqueduct/internal/aqueduct"
	"aqueduct/pkg/fixedpoint"

	"github.com/fox-one/pkg/store/db"
)

// Reserve is the complete accounting state for one listed asset.
//
// Indices and rates are ray scaled; scaled share totals are ray scaled as
// well (wad amounts lifted by the current index). Both indices start at 1.0
// ray and only ever grow.
type Reserve struct {
	ID      uint64 `sql:"PRIMARY_KEY;AUTO_INCREMENT" json:"id"`
	AssetID string `sql:"size:36;unique_index:asset_idx" json:"asset_id"`
	Symbol  string `sql:"size:20" json:"symbol"`

	LiquidityIndex            fixedpoint.Big `sql:"type:varchar(80)" json:"liquidity_index"`
	VariableBorrowIndex       fixedpoint.Big `sql:"type:varchar(80)" json:"variable_borrow_index"`
	CurrentLiquidityRate      fixedpoint.Big `sql:"type:varchar(80)" json:"current_liquidity_rate"`
	CurrentStableBorrowRate   fixedpoint.Big `sql:"type:varchar(80)" json:"current_stable_borrow_rate"`
	CurrentVariableBorrowRate fixedpoint.Big `sql:"type:varchar(80)" json:"current_variable_borrow_rate"`
	UtilizationRate           fixedpoint.Big `sql:"type:varchar(80)" json:"utilization_rate"`

	TotalScaledSupply       fixedpoint.Big `sql:"type:varchar(80)" json:"total_scaled_supply"`
	TotalScaledVariableDebt fixedpoint.Big `sql:"type:varchar(80)" json:"total_scaled_variable_debt"`

	// utilization curve, ray scaled annual rates; optimal point is a wad ratio
	BaseVariableBorrowRate fixedpoint.Big `sql:"type:varchar(80)" json:"base_variable_borrow_rate"`
	VariableSlope1         fixedpoint.Big `sql:"type:varchar(80)" json:"variable_slope1"`
	VariableSlope2         fixedpoint.Big `sql:"type:varchar(80)" json:"variable_slope2"`
	StableSlope1           fixedpoint.Big `sql:"type:varchar(80)" json:"stable_slope1"`
	StableSlope2           fixedpoint.Big `sql:"type:varchar(80)" json:"stable_slope2"`
	OptimalUtilization     fixedpoint.Big `sql:"type:varchar(80)" json:"optimal_utilization"`

	// configuration, basis points unless stated otherwise
	LoanToValue          uint64 `sql:"default:0" json:"loan_to_value"`
	LiquidationThreshold uint64 `sql:"default:0" json:"liquidation_threshold"`
	LiquidationBonus     uint64 `sql:"default:0" json:"liquidation_bonus"`
	ReserveFactor        uint64 `sql:"default:0" json:"reserve_factor"`
	Decimals             uint8  `sql:"default:18" json:"decimals"`
	Active               bool   `sql:"default:false" json:"active"`
	Frozen               bool   `sql:"default:false" json:"frozen"`
	BorrowingEnabled     bool   `sql:"default:false" json:"borrowing_enabled"`
	StableBorrowEnabled  bool   `sql:"default:false" json:"stable_borrow_enabled"`

	LastUpdateTimestamp time.Time `sql:"default:CURRENT_TIMESTAMP" json:"last_update_timestamp"`
	Version             int64     `sql:"default:0" json:"version"`
	CreatedAt           time.Time `sql:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt           time.Time `sql:"default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// RateParams curve parameters of this reserve.
func (r *Reserve) RateParams() aqueduct.RateParams {
	return aqueduct.RateParams{
		BaseVariableBorrowRate: r.BaseVariableBorrowRate,
		VariableSlope1:         r.VariableSlope1,
		VariableSlope2:         r.VariableSlope2,
		StableSlope1:           r.StableSlope1,
		StableSlope2:           r.StableSlope2,
		OptimalUtilization:     r.OptimalUtilization,
	}
}

// ReserveConfiguration is the plain-field replacement of the packed
// configuration bit field. Each field is range checked against the bit width
// it historically occupied.
type ReserveConfiguration struct {
	LoanToValue          uint64 `json:"loan_to_value"`
	LiquidationThreshold uint64 `json:"liquidation_threshold"`
	LiquidationBonus     uint64 `json:"liquidation_bonus"`
	ReserveFactor        uint64 `json:"reserve_factor"`
	Decimals             uint8  `json:"decimals"`
	Active               bool   `json:"active"`
	Frozen               bool   `json:"frozen"`
	BorrowingEnabled     bool   `json:"borrowing_enabled"`
	StableBorrowEnabled  bool   `json:"stable_borrow_enabled"`
}

const maxUint16 = 1<<16 - 1

// Validate rejects values outside their declared ranges. Percent-like fields
// must stay within the basis point factor, the bonus within 16 bits.
func (c ReserveConfiguration) Validate() error {
	if c.LoanToValue > aqueduct.PercentFactorBps {
		return ErrInvalidConfiguration
	}
	if c.LiquidationThreshold > aqueduct.PercentFactorBps {
		return ErrInvalidConfiguration
	}
	if c.LiquidationThreshold < c.LoanToValue {
		return ErrInvalidConfiguration
	}
	if c.LiquidationBonus > maxUint16 || (c.LiquidationBonus > 0 && c.LiquidationBonus < aqueduct.PercentFactorBps) {
		return ErrInvalidConfiguration
	}
	if c.ReserveFactor > aqueduct.PercentFactorBps {
		return ErrInvalidConfiguration
	}
	return nil
}

// Apply writes a validated configuration onto the reserve.
func (c ReserveConfiguration) Apply(r *Reserve) error {
	if err := c.Validate(); err != nil {
		return err
	}

	r.LoanToValue = c.LoanToValue
	r.LiquidationThreshold = c.LiquidationThreshold
	r.LiquidationBonus = c.LiquidationBonus
	r.ReserveFactor = c.ReserveFactor
	r.Decimals = c.Decimals
	r.Active = c.Active
	r.Frozen = c.Frozen
	r.BorrowingEnabled = c.BorrowingEnabled
	r.StableBorrowEnabled = c.StableBorrowEnabled
	return nil
}

// IReserveStore reserve store interface
type IReserveStore interface {
	Save(ctx context.Context, tx *db.DB, reserve *Reserve) error
	Find(ctx context.Context, assetID string) (*Reserve, error)
	All(ctx context.Context) ([]*Reserve, error)
	Count(ctx context.Context) (int64, error)
	Update(ctx context.Context, tx *db.DB, reserve *Reserve) error
}

// IReserveService reserve accrual interface
type IReserveService interface {
	// AccrueInterest runs the reserve update protocol in place: reprice from
	// pre-operation aggregates, then ratchet both indices over the elapsed
	// time with the fresh rates. Call exactly once per operation, before any
	// share mint or burn.
	AccrueInterest(ctx context.Context, reserve *Reserve, liquidityAdded, liquidityTaken fixedpoint.Big, now time.Time) error
	// NormalizedIncome projects the supply index to now without mutating.
	NormalizedIncome(reserve *Reserve, now time.Time) (fixedpoint.Big, error)
	// NormalizedVariableDebt projects the debt index to now without mutating.
	NormalizedVariableDebt(reserve *Reserve, now time.Time) (fixedpoint.Big, error)
	// TotalSupply current underlying supplied, wad.
	TotalSupply(reserve *Reserve, now time.Time) (fixedpoint.Big, error)
	// TotalVariableDebt current underlying owed, wad.
	TotalVariableDebt(reserve *Reserve, now time.Time) (fixedpoint.Big, error)
}
