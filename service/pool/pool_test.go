package pool

import (
	"context"
	"fmt"
	"testing"
	"time"

	"aqueduct/core"
	"aqueduct/pkg/fixedpoint"

	"github.com/fox-one/pkg/store/db"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	dai  = "dai-asset"
	weth = "weth-asset"
)

func (env *testEnv) listReserve(t *testing.T, assetID, symbol string) {
	t.Helper()

	reserve := &core.Reserve{
		AssetID: assetID,
		Symbol:  symbol,

		// 1% base, 4% slope1, 60% slope2, kink at 80%
		BaseVariableBorrowRate: fixedpoint.MustFromString("10000000000000000000000000"),
		VariableSlope1:         fixedpoint.MustFromString("40000000000000000000000000"),
		VariableSlope2:         fixedpoint.MustFromString("600000000000000000000000000"),
		StableSlope1:           fixedpoint.MustFromString("20000000000000000000000000"),
		StableSlope2:           fixedpoint.MustFromString("600000000000000000000000000"),
		OptimalUtilization:     wad("0.8"),
	}
	cfg := core.ReserveConfiguration{
		LoanToValue:          7500,
		LiquidationThreshold: 8000,
		LiquidationBonus:     10500,
		Decimals:             18,
		Active:               true,
		BorrowingEnabled:     true,
	}
	require.NoError(t, env.pool.ListReserve(context.Background(), "admin", reserve, cfg))
}

func (env *testEnv) setPrice(t *testing.T, assetID, price string) {
	t.Helper()
	d, err := decimal.NewFromString(price)
	require.NoError(t, err)
	require.NoError(t, env.oracleService.SetPrice(context.Background(), "admin", assetID, d))
}

func (env *testEnv) fund(t *testing.T, assetID, userID, amount string) {
	t.Helper()
	err := env.ledger.Tx(func(tx *db.DB) error {
		return env.tokenService.Deposit(context.Background(), tx, assetID, userID, wad(amount))
	})
	require.NoError(t, err)
}

func (env *testEnv) custody(t *testing.T, assetID, userID string) fixedpoint.Big {
	t.Helper()
	balance, err := env.tokenService.BalanceOf(context.Background(), assetID, userID)
	require.NoError(t, err)
	return balance
}

func TestSupplyWithdrawRoundTrip(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()
	env.listReserve(t, dai, "DAI")
	env.setPrice(t, dai, "1")
	env.fund(t, dai, "alice", "1000")

	require.NoError(t, env.pool.Supply(ctx, "alice", dai, wad("1000"), ""))
	assert.True(t, env.custody(t, dai, "alice").IsZero())
	assert.Equal(t, wad("1000").String(), env.custody(t, dai, core.TokenHolderPool).String())

	reserve, err := env.ledger.Find(ctx, dai)
	require.NoError(t, err)
	supplied, err := env.shareService.BalanceOf(ctx, dai, "alice", core.ShareSideSupply, reserve.LiquidityIndex)
	require.NoError(t, err)
	assert.Equal(t, wad("1000").String(), supplied.String())

	paid, err := env.pool.Withdraw(ctx, "alice", dai, core.MaxAmount, "")
	require.NoError(t, err)
	assert.Equal(t, wad("1000").String(), paid.String())
	assert.Equal(t, wad("1000").String(), env.custody(t, dai, "alice").String())
	assert.True(t, env.custody(t, dai, core.TokenHolderPool).IsZero())

	reserve, err = env.ledger.Find(ctx, dai)
	require.NoError(t, err)
	assert.True(t, reserve.TotalScaledSupply.IsZero())

	actions := make([]core.ActionType, 0, len(env.ledger.events))
	for _, event := range env.ledger.events {
		actions = append(actions, event.Action)
	}
	assert.Equal(t, []core.ActionType{core.ActionTypeSupply, core.ActionTypeWithdraw}, actions)
}

func TestSupplyRejections(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()
	env.listReserve(t, dai, "DAI")
	env.fund(t, dai, "alice", "10")

	assert.ErrorIs(t, env.pool.Supply(ctx, "alice", dai, fixedpoint.New(0), ""), core.ErrInvalidAmount)
	assert.ErrorIs(t, env.pool.Supply(ctx, "alice", "unlisted", wad("1"), ""), core.ErrUnknownReserve)
	assert.ErrorIs(t, env.pool.Supply(ctx, "alice", dai, wad("11"), ""), core.ErrInsufficientBalance)

	env.ledger.reserves[dai].Frozen = true
	assert.ErrorIs(t, env.pool.Supply(ctx, "alice", dai, wad("1"), ""), core.ErrReserveFrozen)

	env.ledger.reserves[dai].Frozen = false
	env.ledger.reserves[dai].Active = false
	assert.ErrorIs(t, env.pool.Supply(ctx, "alice", dai, wad("1"), ""), core.ErrReserveNotActive)
}

func TestBorrowAndRepay(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()
	env.listReserve(t, dai, "DAI")
	env.setPrice(t, dai, "1")
	env.fund(t, dai, "alice", "1000")

	require.NoError(t, env.pool.Supply(ctx, "alice", dai, wad("1000"), ""))

	assert.ErrorIs(t, env.pool.Borrow(ctx, "alice", dai, wad("100"), core.BorrowModeStable), core.ErrNotImplemented)

	// 75% loan to value of 1000 collateral
	assert.ErrorIs(t, env.pool.Borrow(ctx, "alice", dai, wad("751"), core.BorrowModeVariable), core.ErrHealthFactorTooLow)
	require.NoError(t, env.pool.Borrow(ctx, "alice", dai, wad("500"), core.BorrowModeVariable))
	assert.Equal(t, wad("500").String(), env.custody(t, dai, "alice").String())

	position, err := env.accountService.Position(ctx, "alice", time.Now())
	require.NoError(t, err)
	assert.Equal(t, wad("500").String(), position.TotalDebtValue.String())
	assert.Equal(t, wad("250").String(), position.AvailableBorrows.String())
	assert.Equal(t, uint64(7500), position.LoanToValue)
	assert.Equal(t, uint64(8000), position.LiquidationThreshold)
	// 800 threshold-weighted collateral over 500 debt
	assert.Equal(t, "1600000000000000000", position.HealthFactor.String())

	settled, err := env.pool.Repay(ctx, "alice", dai, core.MaxAmount, core.BorrowModeVariable)
	require.NoError(t, err)
	assert.Equal(t, wad("500").String(), settled.String())
	assert.True(t, env.custody(t, dai, "alice").IsZero())

	_, err = env.pool.Repay(ctx, "alice", dai, wad("1"), core.BorrowModeVariable)
	assert.ErrorIs(t, err, core.ErrInsufficientBalance)
}

func TestBorrowWithoutCollateral(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()
	env.listReserve(t, dai, "DAI")
	env.setPrice(t, dai, "1")
	env.fund(t, dai, "alice", "1000")

	require.NoError(t, env.pool.Supply(ctx, "alice", dai, wad("1000"), ""))

	err := env.pool.Borrow(ctx, "bob", dai, wad("1"), core.BorrowModeVariable)
	assert.ErrorIs(t, err, core.ErrHealthFactorTooLow)

	env.ledger.reserves[dai].BorrowingEnabled = false
	err = env.pool.Borrow(ctx, "alice", dai, wad("1"), core.BorrowModeVariable)
	assert.ErrorIs(t, err, core.ErrBorrowingDisabled)
}

func TestInterestAccrual(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()
	env.listReserve(t, dai, "DAI")
	env.setPrice(t, dai, "1")
	env.fund(t, dai, "alice", "1100")

	require.NoError(t, env.pool.Supply(ctx, "alice", dai, wad("1000"), ""))
	require.NoError(t, env.pool.Borrow(ctx, "alice", dai, wad("500"), core.BorrowModeVariable))

	// rewind the last update so a year of interest comes due
	env.ledger.reserves[dai].LastUpdateTimestamp = time.Now().Add(-365 * 24 * time.Hour)

	reserve, err := env.ledger.Find(ctx, dai)
	require.NoError(t, err)
	debt, err := env.reserveService.TotalVariableDebt(reserve, time.Now())
	require.NoError(t, err)
	assert.True(t, debt.GreaterThan(wad("500")), "debt should have compounded, got %s", debt)

	supply, err := env.reserveService.TotalSupply(reserve, time.Now())
	require.NoError(t, err)
	assert.True(t, supply.GreaterThan(wad("1000")), "supply should have accrued, got %s", supply)

	// suppliers never earn more than borrowers owe
	grownBy := func(total, base fixedpoint.Big) fixedpoint.Big {
		d, err := total.Sub(base)
		require.NoError(t, err)
		return d
	}
	assert.True(t, grownBy(supply, wad("1000")).LessThan(grownBy(debt, wad("499"))))

	settled, err := env.pool.Repay(ctx, "alice", dai, core.MaxAmount, core.BorrowModeVariable)
	require.NoError(t, err)
	assert.True(t, settled.GreaterThan(wad("500")))

	reserve, err = env.ledger.Find(ctx, dai)
	require.NoError(t, err)
	assert.True(t, reserve.LiquidityIndex.GreaterThan(fixedpoint.Ray()))
	assert.True(t, reserve.VariableBorrowIndex.GreaterThan(fixedpoint.Ray()))
}

func TestLiquidationCall(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()
	env.listReserve(t, dai, "DAI")
	env.listReserve(t, weth, "WETH")
	env.setPrice(t, dai, "1")
	env.setPrice(t, weth, "2000")

	env.fund(t, dai, "alice", "2000")
	env.fund(t, weth, "bob", "1")
	env.fund(t, dai, "carol", "1050")

	require.NoError(t, env.pool.Supply(ctx, "alice", dai, wad("2000"), ""))
	require.NoError(t, env.pool.Supply(ctx, "bob", weth, wad("1"), ""))
	require.NoError(t, env.pool.Borrow(ctx, "bob", dai, wad("1400"), core.BorrowModeVariable))

	// solvent borrower cannot be liquidated
	_, err := env.pool.LiquidationCall(ctx, "carol", weth, dai, "bob", wad("100"), false)
	assert.ErrorIs(t, err, core.ErrHealthFactorNotBelowThreshold)

	// collateral value drops to 1600; threshold-weighted 1280 < 1400 debt
	env.setPrice(t, weth, "1600")

	position, err := env.accountService.Position(ctx, "bob", time.Now())
	require.NoError(t, err)
	assert.True(t, position.HealthFactor.LessThan(fixedpoint.Wad()))

	// close factor caps the cover at half the debt: 700 of 1400.
	// seized = 700 / 1600 * 1.05 = 0.459375
	seized, err := env.pool.LiquidationCall(ctx, "carol", weth, dai, "bob", core.MaxAmount, false)
	require.NoError(t, err)
	assert.Equal(t, wad("0.459375").String(), seized.String())
	assert.Equal(t, wad("0.459375").String(), env.custody(t, weth, "carol").String())
	assert.Equal(t, wad("350").String(), env.custody(t, dai, "carol").String())
	assert.Equal(t, wad("1300").String(), env.custody(t, dai, core.TokenHolderPool).String())

	reserve, err := env.ledger.Find(ctx, dai)
	require.NoError(t, err)
	debt, err := env.shareService.BalanceOf(ctx, dai, "bob", core.ShareSideVariableDebt, reserve.VariableBorrowIndex)
	require.NoError(t, err)
	assert.Equal(t, wad("700").String(), debt.String())

	// still unsafe; a second call paid in supply shares
	seized, err = env.pool.LiquidationCall(ctx, "carol", weth, dai, "bob", wad("350"), true)
	require.NoError(t, err)
	assert.Equal(t, wad("0.2296875").String(), seized.String())

	wethReserve, err := env.ledger.Find(ctx, weth)
	require.NoError(t, err)
	shares, err := env.shareService.BalanceOf(ctx, weth, "carol", core.ShareSideSupply, wethReserve.LiquidityIndex)
	require.NoError(t, err)
	assert.Equal(t, wad("0.2296875").String(), shares.String())
}

func TestFlashLoan(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()
	env.listReserve(t, dai, "DAI")
	env.setPrice(t, dai, "1")
	env.fund(t, dai, "alice", "1000")
	env.fund(t, dai, "bob", "1")

	require.NoError(t, env.pool.Supply(ctx, "alice", dai, wad("1000"), ""))

	var landed fixedpoint.Big
	receiver := &flashReceiver{fn: func(ctx context.Context, assets []string, amounts, premiums []fixedpoint.Big) error {
		landed = env.custody(t, dai, "bob")
		assert.Equal(t, wad("0.9").String(), premiums[0].String())
		return nil
	}}

	err := env.pool.FlashLoan(ctx, "bob", "bob", receiver, []string{dai}, []fixedpoint.Big{wad("1000")}, nil)
	require.NoError(t, err)
	assert.Equal(t, wad("1001").String(), landed.String())

	// premium stays with the pool and accrues to the supplier
	assert.Equal(t, wad("1000.9").String(), env.custody(t, dai, core.TokenHolderPool).String())
	assert.Equal(t, wad("0.1").String(), env.custody(t, dai, "bob").String())

	reserve, err := env.ledger.Find(ctx, dai)
	require.NoError(t, err)
	supplied, err := env.shareService.BalanceOf(ctx, dai, "alice", core.ShareSideSupply, reserve.LiquidityIndex)
	require.NoError(t, err)
	assert.Equal(t, wad("1000.9").String(), supplied.String())
}

func TestFlashLoanRollsBack(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()
	env.listReserve(t, dai, "DAI")
	env.setPrice(t, dai, "1")
	env.fund(t, dai, "alice", "1000")

	require.NoError(t, env.pool.Supply(ctx, "alice", dai, wad("1000"), ""))

	receiver := &flashReceiver{fn: func(ctx context.Context, assets []string, amounts, premiums []fixedpoint.Big) error {
		return fmt.Errorf("strategy went nowhere")
	}}

	err := env.pool.FlashLoan(ctx, "bob", "bob", receiver, []string{dai}, []fixedpoint.Big{wad("1000")}, nil)
	assert.ErrorIs(t, err, core.ErrFlashLoanExecutionFailed)

	// every transfer of the failed loan was undone
	assert.Equal(t, wad("1000").String(), env.custody(t, dai, core.TokenHolderPool).String())
	assert.True(t, env.custody(t, dai, "bob").IsZero())

	reserve, err := env.ledger.Find(ctx, dai)
	require.NoError(t, err)
	assert.Equal(t, fixedpoint.Ray().String(), reserve.LiquidityIndex.String())

	// broke receiver cannot repay principal plus premium
	err = env.pool.FlashLoan(ctx, "bob", "bob", &flashReceiver{}, []string{dai}, []fixedpoint.Big{wad("1000")}, nil)
	assert.ErrorIs(t, err, core.ErrFlashLoanExecutionFailed)
	assert.Equal(t, wad("1000").String(), env.custody(t, dai, core.TokenHolderPool).String())

	_, err = env.pool.Withdraw(ctx, "alice", dai, core.MaxAmount, "")
	require.NoError(t, err)
	assert.Equal(t, wad("1000").String(), env.custody(t, dai, "alice").String())
}

func TestFlashLoanReentrancy(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()
	env.listReserve(t, dai, "DAI")
	env.setPrice(t, dai, "1")
	env.fund(t, dai, "alice", "1000")
	env.fund(t, dai, "bob", "10")

	require.NoError(t, env.pool.Supply(ctx, "alice", dai, wad("100"), ""))

	receiver := &flashReceiver{fn: func(ctx context.Context, assets []string, amounts, premiums []fixedpoint.Big) error {
		err := env.pool.Supply(ctx, "bob", dai, wad("1"), "")
		assert.ErrorIs(t, err, core.ErrReentrantCall)
		return nil
	}}

	err := env.pool.FlashLoan(ctx, "bob", "bob", receiver, []string{dai}, []fixedpoint.Big{wad("10")}, nil)
	require.NoError(t, err)
}

func TestFlashLoanParamChecks(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()
	env.listReserve(t, dai, "DAI")

	err := env.pool.FlashLoan(ctx, "bob", "bob", &flashReceiver{}, nil, nil, nil)
	assert.ErrorIs(t, err, core.ErrInconsistentParams)

	err = env.pool.FlashLoan(ctx, "bob", "bob", &flashReceiver{}, []string{dai}, nil, nil)
	assert.ErrorIs(t, err, core.ErrInconsistentParams)

	err = env.pool.FlashLoan(ctx, "bob", "bob", &flashReceiver{}, []string{dai, dai}, []fixedpoint.Big{wad("1"), wad("1")}, nil)
	assert.ErrorIs(t, err, core.ErrInconsistentParams)
}

func TestPause(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()
	env.listReserve(t, dai, "DAI")
	env.setPrice(t, dai, "1")
	env.fund(t, dai, "alice", "10")

	assert.ErrorIs(t, env.pool.SetPaused(ctx, "mallory", true), core.ErrUnauthorized)

	require.NoError(t, env.pool.SetPaused(ctx, "admin", true))
	assert.True(t, env.pool.Paused(ctx))
	assert.ErrorIs(t, env.pool.Supply(ctx, "alice", dai, wad("1"), ""), core.ErrPaused)

	require.NoError(t, env.pool.SetPaused(ctx, "admin", false))
	assert.NoError(t, env.pool.Supply(ctx, "alice", dai, wad("1"), ""))
}

func TestListReserve(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()

	reserve := &core.Reserve{AssetID: "asset", Symbol: "AST"}
	cfg := core.ReserveConfiguration{LoanToValue: 7500, LiquidationThreshold: 8000, Active: true}

	assert.ErrorIs(t, env.pool.ListReserve(ctx, "mallory", reserve, cfg), core.ErrUnauthorized)

	bad := cfg
	bad.LiquidationThreshold = 7000
	assert.ErrorIs(t, env.pool.ListReserve(ctx, "admin", &core.Reserve{AssetID: "x"}, bad), core.ErrInvalidConfiguration)

	require.NoError(t, env.pool.ListReserve(ctx, "admin", reserve, cfg))
	assert.Equal(t, fixedpoint.Ray().String(), reserve.LiquidityIndex.String())
	assert.ErrorIs(t, env.pool.ListReserve(ctx, "admin", &core.Reserve{AssetID: "asset"}, cfg), core.ErrInvalidConfiguration)

	for i := 1; i < 128; i++ {
		r := &core.Reserve{AssetID: fmt.Sprintf("asset-%d", i), Symbol: "AST"}
		require.NoError(t, env.pool.ListReserve(ctx, "admin", r, cfg))
	}
	assert.ErrorIs(t, env.pool.ListReserve(ctx, "admin", &core.Reserve{AssetID: "one-too-many"}, cfg), core.ErrTooManyReserves)
}

func TestWithdrawMaxAfterIndexGrowth(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()
	env.listReserve(t, dai, "DAI")
	env.setPrice(t, dai, "1")
	env.fund(t, dai, "alice", "1000")
	env.fund(t, dai, core.TokenHolderPool, "51")

	require.NoError(t, env.pool.Supply(ctx, "alice", dai, wad("1000"), ""))

	// an index whose ray to wad projection rounds the live balance up
	env.ledger.reserves[dai].LiquidityIndex = fixedpoint.MustFromString("1050000000000000000000600000")

	paid, err := env.pool.Withdraw(ctx, "alice", dai, core.MaxAmount, "")
	require.NoError(t, err)
	assert.Equal(t, "1050000000000000000001", paid.String())
	assert.Equal(t, paid.String(), env.custody(t, dai, "alice").String())

	reserve, err := env.ledger.Find(ctx, dai)
	require.NoError(t, err)
	assert.True(t, reserve.TotalScaledSupply.IsZero())
}

func TestBorrowAtHealthFactorBoundary(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()
	env.listReserve(t, dai, "DAI")
	env.listReserve(t, weth, "WETH")
	env.setPrice(t, dai, "1")
	env.setPrice(t, weth, "2000")
	env.fund(t, dai, "alice", "2000")
	env.fund(t, weth, "bob", "1")

	require.NoError(t, env.pool.Supply(ctx, "alice", dai, wad("2000"), ""))
	require.NoError(t, env.pool.Supply(ctx, "bob", weth, wad("1"), ""))
	require.NoError(t, env.pool.Borrow(ctx, "bob", dai, wad("1400"), core.BorrowModeVariable))

	// collateral 1750, threshold weighted exactly the 1400 debt
	env.setPrice(t, weth, "1750")

	position, err := env.accountService.Position(ctx, "bob", time.Now())
	require.NoError(t, err)
	assert.Equal(t, fixedpoint.Wad().String(), position.HealthFactor.String())

	err = env.pool.Borrow(ctx, "bob", dai, wad("1"), core.BorrowModeVariable)
	assert.ErrorIs(t, err, core.ErrHealthFactorTooLow)
}

func TestWithdrawOverdraw(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()
	env.listReserve(t, dai, "DAI")
	env.setPrice(t, dai, "1")
	env.fund(t, dai, "alice", "10")

	require.NoError(t, env.pool.Supply(ctx, "alice", dai, wad("10"), ""))

	_, err := env.pool.Withdraw(ctx, "alice", dai, wad("11"), "")
	assert.ErrorIs(t, err, core.ErrInsufficientBalance)

	_, err = env.pool.Withdraw(ctx, "bob", dai, wad("1"), "")
	assert.ErrorIs(t, err, core.ErrInsufficientBalance)
}
