package reserve

import (
	"context"
	"time"

	"aqueduct/core"
	"aqueduct/internal/aqueduct"
	"aqueduct/pkg/fixedpoint"

	"github.com/fox-one/pkg/logger"
)

type service struct{}

// New new reserve service
func New() core.IReserveService {
	return &service{}
}

// AccrueInterest reprices the reserve from its pre-operation aggregates and
// ratchets both indices over the elapsed time using the fresh rates.
//
// Interest accrues only when an operation touches the reserve; between
// operations the growth is projected at read time by NormalizedIncome and
// NormalizedVariableDebt.
func (s *service) AccrueInterest(ctx context.Context, reserve *core.Reserve, liquidityAdded, liquidityTaken fixedpoint.Big, now time.Time) error {
	log := logger.FromContext(ctx).WithField("service", "reserve")

	totalDebt, err := s.TotalVariableDebt(reserve, now)
	if err != nil {
		return err
	}
	totalSupply, err := s.TotalSupply(reserve, now)
	if err != nil {
		return err
	}

	available, err := totalSupply.Sub(totalDebt)
	if err != nil {
		// more owed than supplied can only come from rounding dust; treat
		// the pool as fully drawn
		available = fixedpoint.New(0)
	}
	added, err := available.Add(liquidityAdded)
	if err != nil {
		return err
	}

	rates, err := aqueduct.ComputeInterestRates(fixedpoint.New(0), totalDebt, added, liquidityTaken, reserve.ReserveFactor, reserve.RateParams())
	if err != nil {
		return err
	}

	reserve.CurrentLiquidityRate = rates.LiquidityRate
	reserve.CurrentStableBorrowRate = rates.StableBorrowRate
	reserve.CurrentVariableBorrowRate = rates.VariableBorrowRate
	reserve.UtilizationRate = rates.Utilization

	elapsed := elapsedSeconds(reserve.LastUpdateTimestamp, now)
	if elapsed > 0 {
		linear, err := aqueduct.LinearInterest(reserve.CurrentLiquidityRate, elapsed)
		if err != nil {
			return err
		}
		if reserve.LiquidityIndex, err = reserve.LiquidityIndex.RayMul(linear); err != nil {
			return err
		}

		compounded, err := aqueduct.CompoundedInterest(reserve.CurrentVariableBorrowRate, elapsed)
		if err != nil {
			return err
		}
		if reserve.VariableBorrowIndex, err = reserve.VariableBorrowIndex.RayMul(compounded); err != nil {
			return err
		}

		reserve.LastUpdateTimestamp = now
	}

	log.Debugf("accrued %s: liquidity index %s, borrow index %s", reserve.Symbol, reserve.LiquidityIndex, reserve.VariableBorrowIndex)
	return nil
}

// NormalizedIncome projects the liquidity index forward by the current rate
// without mutating the stored state. Never below the stored index.
func (s *service) NormalizedIncome(reserve *core.Reserve, now time.Time) (fixedpoint.Big, error) {
	elapsed := elapsedSeconds(reserve.LastUpdateTimestamp, now)
	if elapsed == 0 {
		return reserve.LiquidityIndex, nil
	}

	factor, err := aqueduct.LinearInterest(reserve.CurrentLiquidityRate, elapsed)
	if err != nil {
		return fixedpoint.Big{}, err
	}
	return reserve.LiquidityIndex.RayMul(factor)
}

// NormalizedVariableDebt projects the variable borrow index forward by the
// current rate without mutating the stored state.
func (s *service) NormalizedVariableDebt(reserve *core.Reserve, now time.Time) (fixedpoint.Big, error) {
	elapsed := elapsedSeconds(reserve.LastUpdateTimestamp, now)
	if elapsed == 0 {
		return reserve.VariableBorrowIndex, nil
	}

	factor, err := aqueduct.CompoundedInterest(reserve.CurrentVariableBorrowRate, elapsed)
	if err != nil {
		return fixedpoint.Big{}, err
	}
	return reserve.VariableBorrowIndex.RayMul(factor)
}

func (s *service) TotalSupply(reserve *core.Reserve, now time.Time) (fixedpoint.Big, error) {
	index, err := s.NormalizedIncome(reserve, now)
	if err != nil {
		return fixedpoint.Big{}, err
	}
	scaled, err := reserve.TotalScaledSupply.RayMul(index)
	if err != nil {
		return fixedpoint.Big{}, err
	}
	return scaled.RayToWad()
}

func (s *service) TotalVariableDebt(reserve *core.Reserve, now time.Time) (fixedpoint.Big, error) {
	index, err := s.NormalizedVariableDebt(reserve, now)
	if err != nil {
		return fixedpoint.Big{}, err
	}
	scaled, err := reserve.TotalScaledVariableDebt.RayMul(index)
	if err != nil {
		return fixedpoint.Big{}, err
	}
	return scaled.RayToWad()
}

func elapsedSeconds(last, now time.Time) uint64 {
	delta := now.Unix() - last.Unix()
	if delta <= 0 {
		return 0
	}
	return uint64(delta)
}
