package account

import (
	"context"
	"time"

	"aqueduct/core"
	"aqueduct/internal/aqueduct"
	"aqueduct/pkg/fixedpoint"
)

type service struct {
	reserveStore   core.IReserveStore
	reserveService core.IReserveService
	shareStore     core.IShareStore
	oracleService  core.IPriceOracleService
}

// New new account service
func New(
	reserveStore core.IReserveStore,
	reserveService core.IReserveService,
	shareStore core.IShareStore,
	oracleService core.IPriceOracleService,
) core.IAccountService {
	return &service{
		reserveStore:   reserveStore,
		reserveService: reserveService,
		shareStore:     shareStore,
		oracleService:  oracleService,
	}
}

// Position prices the account's live balances reserve by reserve. Collateral
// is weighted by each reserve's loan to value and liquidation threshold, so
// the reported bps figures are averages over the actual collateral mix.
func (s *service) Position(ctx context.Context, userID string, now time.Time) (*core.AccountPosition, error) {
	position := &core.AccountPosition{
		UserID:       userID,
		HealthFactor: fixedpoint.Max(),
	}

	balances, err := s.shareStore.FindByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(balances) == 0 {
		return position, nil
	}

	reserves, err := s.reserveStore.All(ctx)
	if err != nil {
		return nil, err
	}
	byAsset := make(map[string]*core.Reserve, len(reserves))
	for _, r := range reserves {
		byAsset[r.AssetID] = r
	}

	var borrowCapacity, liquidationCapacity fixedpoint.Big
	for _, balance := range balances {
		if balance.ScaledBalance.IsZero() {
			continue
		}
		reserve, ok := byAsset[balance.AssetID]
		if !ok {
			return nil, core.ErrUnknownReserve
		}

		value, err := s.priceBalance(ctx, reserve, balance, now)
		if err != nil {
			return nil, err
		}

		switch balance.Side {
		case core.ShareSideSupply:
			if position.TotalCollateralValue, err = position.TotalCollateralValue.Add(value); err != nil {
				return nil, err
			}
			ltvSlice, err := value.PercentMul(reserve.LoanToValue)
			if err != nil {
				return nil, err
			}
			if borrowCapacity, err = borrowCapacity.Add(ltvSlice); err != nil {
				return nil, err
			}
			thresholdSlice, err := value.PercentMul(reserve.LiquidationThreshold)
			if err != nil {
				return nil, err
			}
			if liquidationCapacity, err = liquidationCapacity.Add(thresholdSlice); err != nil {
				return nil, err
			}
		case core.ShareSideVariableDebt:
			if position.TotalDebtValue, err = position.TotalDebtValue.Add(value); err != nil {
				return nil, err
			}
		}
	}

	if !position.TotalCollateralValue.IsZero() {
		position.LoanToValue, err = averageBps(borrowCapacity, position.TotalCollateralValue)
		if err != nil {
			return nil, err
		}
		position.LiquidationThreshold, err = averageBps(liquidationCapacity, position.TotalCollateralValue)
		if err != nil {
			return nil, err
		}
	}

	if available, err := borrowCapacity.Sub(position.TotalDebtValue); err == nil {
		position.AvailableBorrows = available
	}

	if !position.TotalDebtValue.IsZero() {
		if position.HealthFactor, err = liquidationCapacity.WadDiv(position.TotalDebtValue); err != nil {
			return nil, err
		}
	}

	return position, nil
}

func (s *service) priceBalance(ctx context.Context, reserve *core.Reserve, balance *core.ShareBalance, now time.Time) (fixedpoint.Big, error) {
	var (
		index fixedpoint.Big
		err   error
	)
	if balance.Side == core.ShareSideSupply {
		index, err = s.reserveService.NormalizedIncome(reserve, now)
	} else {
		index, err = s.reserveService.NormalizedVariableDebt(reserve, now)
	}
	if err != nil {
		return fixedpoint.Big{}, err
	}

	live, err := balance.ScaledBalance.RayMul(index)
	if err != nil {
		return fixedpoint.Big{}, err
	}
	if live, err = live.RayToWad(); err != nil {
		return fixedpoint.Big{}, err
	}

	price, err := s.oracleService.GetUnderlyingPrice(ctx, balance.AssetID)
	if err != nil {
		return fixedpoint.Big{}, err
	}
	return live.WadMul(price)
}

// averageBps renders part/whole as basis points.
func averageBps(part, whole fixedpoint.Big) (uint64, error) {
	ratio, err := part.WadDiv(whole)
	if err != nil {
		return 0, err
	}
	bps, err := ratio.DivUint64(1e18 / aqueduct.PercentFactorBps)
	if err != nil {
		return 0, err
	}
	return bps.Uint64(), nil
}
