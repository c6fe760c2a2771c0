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

func (s *service) Borrow(ctx context.Context, userID, assetID string, amount fixedpoint.Big, mode core.BorrowMode) error {
	log := logger.FromContext(ctx).WithField("action", "borrow")

	release, err := s.enter(ctx)
	if err != nil {
		return err
	}
	defer release()

	if mode != core.BorrowModeVariable {
		return core.ErrNotImplemented
	}
	if amount.IsZero() {
		return core.ErrInvalidAmount
	}

	now := time.Now()
	return s.db.Tx(func(tx *db.DB) error {
		reserve, err := s.loadReserve(ctx, assetID, true)
		if err != nil {
			return err
		}
		if !reserve.BorrowingEnabled {
			return core.ErrBorrowingDisabled
		}

		if err := s.reserveService.AccrueInterest(ctx, reserve, fixedpoint.New(0), fixedpoint.New(0), now); err != nil {
			return err
		}

		// collateral check runs against the pre-borrow position; the drawn
		// amount must fit inside the remaining borrow capacity
		position, err := s.accountService.Position(ctx, userID, now)
		if err != nil {
			return err
		}
		if position.TotalCollateralValue.IsZero() {
			return fmt.Errorf("%w: no collateral", core.ErrHealthFactorTooLow)
		}
		if !position.HealthFactor.GreaterThan(aqueduct.HealthFactorLiquidationThreshold) {
			return fmt.Errorf("%w: health factor %s", core.ErrHealthFactorTooLow, position.HealthFactor)
		}

		price, err := s.oracleService.GetUnderlyingPrice(ctx, assetID)
		if err != nil {
			return err
		}
		value, err := amount.WadMul(price)
		if err != nil {
			return err
		}
		if position.AvailableBorrows.LessThan(value) {
			return fmt.Errorf("%w: borrow worth %s, capacity %s", core.ErrHealthFactorTooLow, value, position.AvailableBorrows)
		}

		if _, err := s.shareService.Mint(ctx, tx, reserve, core.ShareSideVariableDebt, userID, amount, reserve.VariableBorrowIndex); err != nil {
			return err
		}

		if err := s.tokenService.Transfer(ctx, tx, assetID, userID, amount); err != nil {
			return err
		}

		if err := s.reserveStore.Update(ctx, tx, reserve); err != nil {
			return err
		}

		log.Infof("%s borrowed %s of %s", userID, amount, reserve.Symbol)
		return s.emit(ctx, tx, core.ActionTypeBorrow, userID, assetID, amount)
	})
}

func (s *service) Repay(ctx context.Context, userID, assetID string, amount fixedpoint.Big, mode core.BorrowMode) (fixedpoint.Big, error) {
	log := logger.FromContext(ctx).WithField("action", "repay")

	release, err := s.enter(ctx)
	if err != nil {
		return fixedpoint.Big{}, err
	}
	defer release()

	if mode != core.BorrowModeVariable {
		return fixedpoint.Big{}, core.ErrNotImplemented
	}
	if amount.IsZero() {
		return fixedpoint.Big{}, core.ErrInvalidAmount
	}

	var settled fixedpoint.Big
	now := time.Now()
	err = s.db.Tx(func(tx *db.DB) error {
		reserve, err := s.loadReserve(ctx, assetID, false)
		if err != nil {
			return err
		}

		if err := s.reserveService.AccrueInterest(ctx, reserve, fixedpoint.New(0), fixedpoint.New(0), now); err != nil {
			return err
		}

		debt, err := s.shareService.BalanceOf(ctx, assetID, userID, core.ShareSideVariableDebt, reserve.VariableBorrowIndex)
		if err != nil {
			return err
		}
		if debt.IsZero() {
			return fmt.Errorf("%w: nothing owed", core.ErrInsufficientBalance)
		}

		settled = amount
		if settled.Eq(core.MaxAmount) || debt.LessThan(settled) {
			settled = debt
		}

		if err := s.tokenService.TransferFrom(ctx, tx, assetID, userID, settled); err != nil {
			return err
		}

		if err := s.shareService.Burn(ctx, tx, reserve, core.ShareSideVariableDebt, userID, settled, reserve.VariableBorrowIndex); err != nil {
			return err
		}

		if err := s.reserveStore.Update(ctx, tx, reserve); err != nil {
			return err
		}

		log.Infof("%s repaid %s of %s", userID, settled, reserve.Symbol)
		return s.emit(ctx, tx, core.ActionTypeRepay, userID, assetID, settled)
	})
	if err != nil {
		return fixedpoint.Big{}, err
	}
	return settled, nil
}
