package share

import (
	"context"
	"fmt"

	"aqueduct/core"
	"aqueduct/pkg/fixedpoint"

	"github.com/fox-one/pkg/store/db"
)

type service struct {
	shareStore core.IShareStore
}

// New new share service
func New(shareStore core.IShareStore) core.IShareService {
	return &service{shareStore: shareStore}
}

// Mint credits scaled shares at the given normalized index. An amount whose
// scaled equivalent rounds to zero is rejected rather than silently minting
// nothing.
func (s *service) Mint(ctx context.Context, tx *db.DB, reserve *core.Reserve, side core.ShareSide, userID string, amount, index fixedpoint.Big) (bool, error) {
	scaled, err := scaledAmount(amount, index)
	if err != nil {
		return false, err
	}
	if scaled.IsZero() {
		return false, fmt.Errorf("%w: mint of %s scales to zero", core.ErrInvalidAmount, amount)
	}

	balance, err := s.shareStore.Find(ctx, reserve.AssetID, userID, side)
	if err != nil {
		return false, err
	}

	first := balance.ScaledBalance.IsZero()

	if balance.ScaledBalance, err = balance.ScaledBalance.Add(scaled); err != nil {
		return false, err
	}
	if balance.ID == 0 {
		err = s.shareStore.Save(ctx, tx, balance)
	} else {
		err = s.shareStore.Update(ctx, tx, balance)
	}
	if err != nil {
		return false, err
	}

	total := &reserve.TotalScaledSupply
	if side == core.ShareSideVariableDebt {
		total = &reserve.TotalScaledVariableDebt
	}
	if *total, err = total.Add(scaled); err != nil {
		return false, err
	}

	return first, nil
}

// Burn removes the scaled equivalent of the wad amount, failing when it
// exceeds the holder's scaled balance.
func (s *service) Burn(ctx context.Context, tx *db.DB, reserve *core.Reserve, side core.ShareSide, userID string, amount, index fixedpoint.Big) error {
	scaled, err := scaledAmount(amount, index)
	if err != nil {
		return err
	}
	if scaled.IsZero() {
		return fmt.Errorf("%w: burn of %s scales to zero", core.ErrInvalidAmount, amount)
	}

	balance, err := s.shareStore.Find(ctx, reserve.AssetID, userID, side)
	if err != nil {
		return err
	}
	if balance.ID == 0 {
		return fmt.Errorf("%w: %s burn exceeds scaled balance", core.ErrInsufficientBalance, side)
	}
	if balance.ScaledBalance.LessThan(scaled) {
		// an amount resolved through BalanceOf rounds half up, so its scaled
		// equivalent can overshoot the stored stake by dust; a burn the live
		// balance still covers takes the whole stake
		live, err := LiveBalance(balance.ScaledBalance, index)
		if err != nil {
			return err
		}
		if live.LessThan(amount) {
			return fmt.Errorf("%w: %s burn exceeds scaled balance", core.ErrInsufficientBalance, side)
		}
		scaled = balance.ScaledBalance
	}

	if balance.ScaledBalance, err = balance.ScaledBalance.Sub(scaled); err != nil {
		return err
	}
	if err := s.shareStore.Update(ctx, tx, balance); err != nil {
		return err
	}

	total := &reserve.TotalScaledSupply
	if side == core.ShareSideVariableDebt {
		total = &reserve.TotalScaledVariableDebt
	}
	if *total, err = total.Sub(scaled); err != nil {
		return err
	}

	return nil
}

func (s *service) BalanceOf(ctx context.Context, assetID, userID string, side core.ShareSide, index fixedpoint.Big) (fixedpoint.Big, error) {
	balance, err := s.shareStore.Find(ctx, assetID, userID, side)
	if err != nil {
		return fixedpoint.Big{}, err
	}
	return LiveBalance(balance.ScaledBalance, index)
}

// LiveBalance converts a ray scaled share balance to wad underlying at the
// given normalized index.
func LiveBalance(scaled, index fixedpoint.Big) (fixedpoint.Big, error) {
	v, err := scaled.RayMul(index)
	if err != nil {
		return fixedpoint.Big{}, err
	}
	return v.RayToWad()
}

// wadToRay(amount) rayDiv index
func scaledAmount(amount, index fixedpoint.Big) (fixedpoint.Big, error) {
	lifted, err := amount.WadToRay()
	if err != nil {
		return fixedpoint.Big{}, err
	}
	return lifted.RayDiv(index)
}
