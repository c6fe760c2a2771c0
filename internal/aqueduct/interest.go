package aqueduct

import (
	"aqueduct/pkg/fixedpoint"
)

// LinearInterest returns the linear growth factor RAY + rate*elapsed/year.
// A zero elapsed time yields exactly RAY.
func LinearInterest(rate fixedpoint.Big, elapsed uint64) (fixedpoint.Big, error) {
	if elapsed == 0 || rate.IsZero() {
		return fixedpoint.Ray(), nil
	}

	t, err := rate.MulUint64(elapsed)
	if err != nil {
		return fixedpoint.Big{}, err
	}
	t, err = t.DivUint64(SecondsPerYear)
	if err != nil {
		return fixedpoint.Big{}, err
	}

	return fixedpoint.Ray().Add(t)
}

// CompoundedInterest approximates (1 + rate/year)^elapsed with the first
// three terms of the binomial expansion. The factor is exactly RAY at
// elapsed zero and non-decreasing in elapsed for any non-negative rate.
func CompoundedInterest(rate fixedpoint.Big, elapsed uint64) (fixedpoint.Big, error) {
	if elapsed == 0 || rate.IsZero() {
		return fixedpoint.Ray(), nil
	}

	expMinusOne := elapsed - 1
	expMinusTwo := uint64(0)
	if elapsed > 2 {
		expMinusTwo = elapsed - 2
	}

	ratePerSecond, err := rate.DivUint64(SecondsPerYear)
	if err != nil {
		return fixedpoint.Big{}, err
	}

	basePowerTwo, err := ratePerSecond.RayMul(ratePerSecond)
	if err != nil {
		return fixedpoint.Big{}, err
	}
	basePowerThree, err := basePowerTwo.RayMul(ratePerSecond)
	if err != nil {
		return fixedpoint.Big{}, err
	}

	firstTerm, err := ratePerSecond.MulUint64(elapsed)
	if err != nil {
		return fixedpoint.Big{}, err
	}

	secondTerm, err := basePowerTwo.MulUint64(elapsed)
	if err != nil {
		return fixedpoint.Big{}, err
	}
	secondTerm, err = secondTerm.MulUint64(expMinusOne)
	if err != nil {
		return fixedpoint.Big{}, err
	}
	secondTerm, err = secondTerm.DivUint64(2)
	if err != nil {
		return fixedpoint.Big{}, err
	}

	thirdTerm, err := basePowerThree.MulUint64(elapsed)
	if err != nil {
		return fixedpoint.Big{}, err
	}
	thirdTerm, err = thirdTerm.MulUint64(expMinusOne)
	if err != nil {
		return fixedpoint.Big{}, err
	}
	thirdTerm, err = thirdTerm.MulUint64(expMinusTwo)
	if err != nil {
		return fixedpoint.Big{}, err
	}
	thirdTerm, err = thirdTerm.DivUint64(6)
	if err != nil {
		return fixedpoint.Big{}, err
	}

	factor, err := fixedpoint.Ray().Add(firstTerm)
	if err != nil {
		return fixedpoint.Big{}, err
	}
	factor, err = factor.Add(secondTerm)
	if err != nil {
		return fixedpoint.Big{}, err
	}
	return factor.Add(thirdTerm)
}
