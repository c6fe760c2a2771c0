package aqueduct

import "aqueduct/pkg/fixedpoint"

const (
	// SecondsPerYear accrual year of 365 days
	SecondsPerYear uint64 = 31536000
	// MaxReserves upper bound of listed reserves
	MaxReserves = 128
	// CloseFactorBps max share of a borrower's debt one liquidation may repay
	CloseFactorBps uint64 = 5000
	// LiquidationBonusBps collateral seized per unit of debt covered (105%)
	LiquidationBonusBps uint64 = 10500
	// DefaultLoanToValueBps collateral weight when sizing new borrows
	DefaultLoanToValueBps uint64 = 7500
	// DefaultLiquidationThresholdBps collateral weight in the health factor
	DefaultLiquidationThresholdBps uint64 = 8000
	// FlashLoanPremiumBps premium charged on flash-loaned principal (0.09%)
	FlashLoanPremiumBps uint64 = 9
	// PercentFactorBps basis-point denominator
	PercentFactorBps uint64 = 10000
	// OraclePriceDecimals decimals reported by the price oracle
	OraclePriceDecimals int32 = 8
	// OraclePriceToWad lifts an 8-decimal oracle price to wad scale
	OraclePriceToWad uint64 = 1e10
)

// HealthFactorLiquidationThreshold positions below 1.0 wad are unsafe
var HealthFactorLiquidationThreshold = fixedpoint.Wad()
