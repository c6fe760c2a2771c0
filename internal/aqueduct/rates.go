package aqueduct

import (
	"aqueduct/pkg/fixedpoint"
)

// RateParams utilization curve parameters of one reserve. Rates and slopes
// are ray scaled annual rates, the optimal utilization is a wad ratio.
type RateParams struct {
	BaseVariableBorrowRate fixedpoint.Big
	VariableSlope1         fixedpoint.Big
	VariableSlope2         fixedpoint.Big
	StableSlope1           fixedpoint.Big
	StableSlope2           fixedpoint.Big
	OptimalUtilization     fixedpoint.Big
}

// InterestRates output of one repricing.
type InterestRates struct {
	LiquidityRate      fixedpoint.Big
	StableBorrowRate   fixedpoint.Big
	VariableBorrowRate fixedpoint.Big
	Utilization        fixedpoint.Big
}

// ComputeInterestRates derives the reserve rates from its aggregates.
//
// Utilization at or below the optimal point prices along slope1; beyond it
// the excess share of the remaining capacity prices along slope2. The
// liquidity rate is the debt weighted borrow rate times utilization, net of
// the reserve factor.
func ComputeInterestRates(totalStableDebt, totalVariableDebt, liquidityAdded, liquidityTaken fixedpoint.Big, reserveFactorBps uint64, p RateParams) (InterestRates, error) {
	totalDebt, err := totalStableDebt.Add(totalVariableDebt)
	if err != nil {
		return InterestRates{}, err
	}

	totalLiquidity, err := totalDebt.Add(liquidityAdded)
	if err != nil {
		return InterestRates{}, err
	}
	totalLiquidity, err = totalLiquidity.Sub(liquidityTaken)
	if err != nil {
		return InterestRates{}, err
	}

	if totalLiquidity.IsZero() {
		return InterestRates{
			VariableBorrowRate: p.BaseVariableBorrowRate,
		}, nil
	}

	utilization, err := totalDebt.WadDiv(totalLiquidity)
	if err != nil {
		return InterestRates{}, err
	}

	var variableRate, stableRate fixedpoint.Big
	if utilization.Cmp(p.OptimalUtilization) <= 0 {
		frac, err := utilization.WadDiv(p.OptimalUtilization)
		if err != nil {
			return InterestRates{}, err
		}
		if variableRate, err = slopeRate(p.BaseVariableBorrowRate, p.VariableSlope1, frac); err != nil {
			return InterestRates{}, err
		}
		if stableRate, err = slopeRate(p.BaseVariableBorrowRate, p.StableSlope1, frac); err != nil {
			return InterestRates{}, err
		}
	} else {
		capacity, err := fixedpoint.Wad().Sub(p.OptimalUtilization)
		if err != nil {
			return InterestRates{}, err
		}
		over, err := utilization.Sub(p.OptimalUtilization)
		if err != nil {
			return InterestRates{}, err
		}
		excess, err := over.WadDiv(capacity)
		if err != nil {
			return InterestRates{}, err
		}

		kinkVariable, err := p.BaseVariableBorrowRate.Add(p.VariableSlope1)
		if err != nil {
			return InterestRates{}, err
		}
		if variableRate, err = slopeRate(kinkVariable, p.VariableSlope2, excess); err != nil {
			return InterestRates{}, err
		}
		kinkStable, err := p.BaseVariableBorrowRate.Add(p.StableSlope1)
		if err != nil {
			return InterestRates{}, err
		}
		if stableRate, err = slopeRate(kinkStable, p.StableSlope2, excess); err != nil {
			return InterestRates{}, err
		}
	}

	rates := InterestRates{
		StableBorrowRate:   stableRate,
		VariableBorrowRate: variableRate,
		Utilization:        utilization,
	}

	// zero debt earns suppliers nothing regardless of the curve
	if totalDebt.IsZero() {
		return rates, nil
	}

	weighted, err := weightedBorrowRate(totalStableDebt, stableRate, totalVariableDebt, variableRate, totalDebt)
	if err != nil {
		return InterestRates{}, err
	}
	liquidityRate, err := weighted.WadMul(utilization)
	if err != nil {
		return InterestRates{}, err
	}
	if rates.LiquidityRate, err = liquidityRate.PercentMul(PercentFactorBps - reserveFactorBps); err != nil {
		return InterestRates{}, err
	}

	return rates, nil
}

// base + slope*frac where frac is a wad ratio
func slopeRate(base, slope, frac fixedpoint.Big) (fixedpoint.Big, error) {
	part, err := slope.WadMul(frac)
	if err != nil {
		return fixedpoint.Big{}, err
	}
	return base.Add(part)
}

// debt weighted average of the stable and variable borrow rates
func weightedBorrowRate(stableDebt, stableRate, variableDebt, variableRate, totalDebt fixedpoint.Big) (fixedpoint.Big, error) {
	stablePart, err := stableDebt.WadMul(stableRate)
	if err != nil {
		return fixedpoint.Big{}, err
	}
	variablePart, err := variableDebt.WadMul(variableRate)
	if err != nil {
		return fixedpoint.Big{}, err
	}
	sum, err := stablePart.Add(variablePart)
	if err != nil {
		return fixedpoint.Big{}, err
	}
	return sum.WadDiv(totalDebt)
}
