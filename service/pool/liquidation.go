package pool

import (
	"context"
	"fmt"
	"time"

	"aqueduct/core"
	"aqueduct/internal/aqueduct"
	"aqueduct/pkg/fixedpoint"

	"github.com/fox-one/pkg/logger"
	"github.com/fox-one/pkg/store/db"
)

// LiquidationCall settles up to half of an unsafe borrower's variable debt in
// one asset and pays the liquidator discounted collateral in another, either
// as supply shares or as underlying from custody.
func (s *service) LiquidationCall(ctx context.Context, liquidator, collateralAsset, debtAsset, borrower string, debtToCover fixedpoint.Big, receiveShares bool) (fixedpoint.Big, error) {
	log := logger.FromContext(ctx).WithField("action", "liquidation")

	release, err := s.enter(ctx)
	if err != nil {
		return fixedpoint.Big{}, err
	}
	defer release()

	if debtToCover.IsZero() {
		return fixedpoint.Big{}, core.ErrInvalidAmount
	}

	var seized fixedpoint.Big
	now := time.Now()
	err = s.db.Tx(func(tx *db.DB) error {
		debtReserve, err := s.loadReserve(ctx, debtAsset, false)
		if err != nil {
			return err
		}
		collateralReserve := debtReserve
		if collateralAsset != debtAsset {
			if collateralReserve, err = s.loadReserve(ctx, collateralAsset, false); err != nil {
				return err
			}
		}

		if err := s.reserveService.AccrueInterest(ctx, debtReserve, fixedpoint.New(0), fixedpoint.New(0), now); err != nil {
			return err
		}
		if collateralReserve != debtReserve {
			if err := s.reserveService.AccrueInterest(ctx, collateralReserve, fixedpoint.New(0), fixedpoint.New(0), now); err != nil {
				return err
			}
		}

		position, err := s.accountService.Position(ctx, borrower, now)
		if err != nil {
			return err
		}
		if !position.Liquidatable(aqueduct.HealthFactorLiquidationThreshold) {
			return fmt.Errorf("%w: health factor %s", core.ErrHealthFactorNotBelowThreshold, position.HealthFactor)
		}

		debt, err := s.shareService.BalanceOf(ctx, debtAsset, borrower, core.ShareSideVariableDebt, debtReserve.VariableBorrowIndex)
		if err != nil {
			return err
		}
		if debt.IsZero() {
			return fmt.Errorf("%w: borrower owes nothing in %s", core.ErrInsufficientBalance, debtReserve.Symbol)
		}

		maxClose, err := debt.PercentMul(aqueduct.CloseFactorBps)
		if err != nil {
			return err
		}
		actualDebt := debtToCover
		if actualDebt.Eq(core.MaxAmount) || maxClose.LessThan(actualDebt) {
			actualDebt = maxClose
		}

		debtPrice, err := s.oracleService.GetUnderlyingPrice(ctx, debtAsset)
		if err != nil {
			return err
		}
		collateralPrice, err := s.oracleService.GetUnderlyingPrice(ctx, collateralAsset)
		if err != nil {
			return err
		}

		bonus := collateralReserve.LiquidationBonus
		if bonus == 0 {
			bonus = aqueduct.LiquidationBonusBps
		}

		if seized, err = seizedCollateral(actualDebt, debtPrice, collateralPrice, bonus); err != nil {
			return err
		}

		// seizure is capped by what the borrower actually supplied; the debt
		// covered shrinks in proportion
		collateralBalance, err := s.shareService.BalanceOf(ctx, collateralAsset, borrower, core.ShareSideSupply, collateralReserve.LiquidityIndex)
		if err != nil {
			return err
		}
		if collateralBalance.LessThan(seized) {
			seized = collateralBalance
			if actualDebt, err = coveredDebt(seized, debtPrice, collateralPrice, bonus); err != nil {
				return err
			}
		}
		if seized.IsZero() || actualDebt.IsZero() {
			return core.ErrInvalidAmount
		}

		if err := s.tokenService.TransferFrom(ctx, tx, debtAsset, liquidator, actualDebt); err != nil {
			return err
		}
		if err := s.shareService.Burn(ctx, tx, debtReserve, core.ShareSideVariableDebt, borrower, actualDebt, debtReserve.VariableBorrowIndex); err != nil {
			return err
		}

		if err := s.shareService.Burn(ctx, tx, collateralReserve, core.ShareSideSupply, borrower, seized, collateralReserve.LiquidityIndex); err != nil {
			return err
		}
		if receiveShares {
			if _, err := s.shareService.Mint(ctx, tx, collateralReserve, core.ShareSideSupply, liquidator, seized, collateralReserve.LiquidityIndex); err != nil {
				return err
			}
		} else {
			if err := s.tokenService.Transfer(ctx, tx, collateralAsset, liquidator, seized); err != nil {
				return err
			}
		}

		if err := s.reserveStore.Update(ctx, tx, debtReserve); err != nil {
			return err
		}
		if collateralReserve != debtReserve {
			if err := s.reserveStore.Update(ctx, tx, collateralReserve); err != nil {
				return err
			}
		}

		log.Infof("%s liquidated %s: covered %s %s, seized %s %s", liquidator, borrower, actualDebt, debtReserve.Symbol, seized, collateralReserve.Symbol)
		return s.emit(ctx, tx, core.ActionTypeLiquidation, borrower, debtAsset, actualDebt)
	})
	if err != nil {
		return fixedpoint.Big{}, err
	}
	return seized, nil
}

// debt * debtPrice / collateralPrice * bonus
func seizedCollateral(debt, debtPrice, collateralPrice fixedpoint.Big, bonus uint64) (fixedpoint.Big, error) {
	value, err := debt.WadMul(debtPrice)
	if err != nil {
		return fixedpoint.Big{}, err
	}
	units, err := value.WadDiv(collateralPrice)
	if err != nil {
		return fixedpoint.Big{}, err
	}
	return units.PercentMul(bonus)
}

// inverse of seizedCollateral for a capped seizure
func coveredDebt(seized, debtPrice, collateralPrice fixedpoint.Big, bonus uint64) (fixedpoint.Big, error) {
	value, err := seized.WadMul(collateralPrice)
	if err != nil {
		return fixedpoint.Big{}, err
	}
	discounted, err := value.MulUint64(aqueduct.PercentFactorBps)
	if err != nil {
		return fixedpoint.Big{}, err
	}
	if discounted, err = discounted.DivUint64(bonus); err != nil {
		return fixedpoint.Big{}, err
	}
	return discounted.WadDiv(debtPrice)
}
