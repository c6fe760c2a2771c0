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

// FlashLoan lends the requested amounts uncollateralized for the duration of
// the receiver callback. Principal plus premium is pulled back afterwards and
// the premium is folded into each reserve's liquidity index; any failure rolls
// the whole loan back.
func (s *service) FlashLoan(ctx context.Context, initiator, receiverID string, receiver core.FlashLoanReceiver, assetIDs []string, amounts []fixedpoint.Big, params []byte) error {
	log := logger.FromContext(ctx).WithField("action", "flashloan")

	release, err := s.enter(ctx)
	if err != nil {
		return err
	}
	defer release()

	if len(assetIDs) == 0 || len(assetIDs) != len(amounts) {
		return fmt.Errorf("%w: %d assets, %d amounts", core.ErrInconsistentParams, len(assetIDs), len(amounts))
	}
	seen := make(map[string]bool, len(assetIDs))
	for idx, assetID := range assetIDs {
		if seen[assetID] {
			return fmt.Errorf("%w: duplicate asset %s", core.ErrInconsistentParams, assetID)
		}
		seen[assetID] = true
		if amounts[idx].IsZero() {
			return core.ErrInvalidAmount
		}
	}

	now := time.Now()
	return s.db.Tx(func(tx *db.DB) error {
		reserves := make([]*core.Reserve, len(assetIDs))
		premiums := make([]fixedpoint.Big, len(assetIDs))

		for idx, assetID := range assetIDs {
			reserve, err := s.loadReserve(ctx, assetID, false)
			if err != nil {
				return err
			}
			if err := s.reserveService.AccrueInterest(ctx, reserve, fixedpoint.New(0), fixedpoint.New(0), now); err != nil {
				return err
			}
			reserves[idx] = reserve

			if premiums[idx], err = amounts[idx].PercentMul(aqueduct.FlashLoanPremiumBps); err != nil {
				return err
			}

			if err := s.tokenService.Transfer(ctx, tx, assetID, receiverID, amounts[idx]); err != nil {
				return err
			}
		}

		if err := receiver.ExecuteOperation(ctx, assetIDs, amounts, premiums, initiator, params); err != nil {
			return fmt.Errorf("%w: %v", core.ErrFlashLoanExecutionFailed, err)
		}

		for idx, assetID := range assetIDs {
			owed, err := amounts[idx].Add(premiums[idx])
			if err != nil {
				return err
			}
			if err := s.tokenService.TransferFrom(ctx, tx, assetID, receiverID, owed); err != nil {
				return fmt.Errorf("%w: %v", core.ErrFlashLoanExecutionFailed, err)
			}

			if err := cumulateToLiquidityIndex(reserves[idx], premiums[idx]); err != nil {
				return err
			}
			if err := s.reserveStore.Update(ctx, tx, reserves[idx]); err != nil {
				return err
			}

			log.Infof("%s flash borrowed %s of %s, premium %s", initiator, amounts[idx], reserves[idx].Symbol, premiums[idx])
			if err := s.emit(ctx, tx, core.ActionTypeFlashLoan, initiator, assetID, amounts[idx]); err != nil {
				return err
			}
		}
		return nil
	})
}

// cumulateToLiquidityIndex distributes a wad premium to current suppliers by
// growing the liquidity index in place. A reserve with no suppliers keeps the
// premium in custody instead.
func cumulateToLiquidityIndex(reserve *core.Reserve, premium fixedpoint.Big) error {
	if premium.IsZero() || reserve.TotalScaledSupply.IsZero() {
		return nil
	}

	scaled, err := reserve.TotalScaledSupply.RayMul(reserve.LiquidityIndex)
	if err != nil {
		return err
	}
	totalLiquidity, err := scaled.RayToWad()
	if err != nil {
		return err
	}

	share, err := premium.WadToRay()
	if err != nil {
		return err
	}
	lifted, err := totalLiquidity.WadToRay()
	if err != nil {
		return err
	}
	if share, err = share.RayDiv(lifted); err != nil {
		return err
	}

	factor, err := fixedpoint.Ray().Add(share)
	if err != nil {
		return err
	}
	reserve.LiquidityIndex, err = reserve.LiquidityIndex.RayMul(factor)
	return err
}
