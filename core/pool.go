package core

import (
	"context"

	"aqueduct/pkg/fixedpoint"

	"github.com/fox-one/pkg/store/db"
)

// BorrowMode interest rate mode requested on borrow and repay
type BorrowMode int

const (
	// BorrowModeStable stable rate, present for interface completeness only
	BorrowModeStable BorrowMode = iota + 1
	// BorrowModeVariable variable rate
	BorrowModeVariable
)

// MaxAmount sentinel resolving to the caller's full live balance on
// withdraw and repay.
var MaxAmount = fixedpoint.Max()

// Database runs fn inside one all-or-nothing ledger transaction.
type Database interface {
	Tx(fn func(tx *db.DB) error) error
}

// IPauseStore persistent pause flag checked by every pool mutation.
type IPauseStore interface {
	Paused(ctx context.Context) (bool, error)
	SetPaused(ctx context.Context, paused bool) error
}

// FlashLoanReceiver is the uncollateralized loan callback. The receiver gets
// the principal before the call and must hold principal plus premium for the
// pull-back when it returns. Any error aborts the whole flash loan.
type FlashLoanReceiver interface {
	ExecuteOperation(ctx context.Context, assets []string, amounts, premiums []fixedpoint.Big, initiator string, params []byte) error
}

// IPoolService orchestrates the user facing pool operations. Every call is
// one atomic transaction: full success with emitted events, or a specific
// error and zero state change.
type IPoolService interface {
	// Supply deposits amount of the asset from userID, crediting the
	// beneficiary's supply shares (the supplier itself when empty).
	Supply(ctx context.Context, userID, assetID string, amount fixedpoint.Big, beneficiary string) error
	// Withdraw redeems supply shares and pays the underlying to recipient.
	// MaxAmount resolves to the full live balance. Returns the amount paid.
	Withdraw(ctx context.Context, userID, assetID string, amount fixedpoint.Big, recipient string) (fixedpoint.Big, error)
	// Borrow draws amount of the asset against the caller's collateral.
	// Only BorrowModeVariable is implemented.
	Borrow(ctx context.Context, userID, assetID string, amount fixedpoint.Big, mode BorrowMode) error
	// Repay settles variable debt with funds pulled from the payer.
	// MaxAmount resolves to the full live debt. Returns the amount settled.
	Repay(ctx context.Context, userID, assetID string, amount fixedpoint.Big, mode BorrowMode) (fixedpoint.Big, error)
	// FlashLoan lends the amounts to the receiver for the duration of the
	// callback and pulls back principal plus premium afterwards.
	FlashLoan(ctx context.Context, initiator, receiverID string, receiver FlashLoanReceiver, assetIDs []string, amounts []fixedpoint.Big, params []byte) error
	// LiquidationCall repays up to the close factor of an unsafe borrower's
	// debt and seizes discounted collateral, as shares or as underlying.
	// Returns the collateral amount seized.
	LiquidationCall(ctx context.Context, liquidator, collateralAsset, debtAsset, borrower string, debtToCover fixedpoint.Big, receiveShares bool) (fixedpoint.Big, error)

	// Paused reports the pause flag checked by every mutation.
	Paused(ctx context.Context) bool
	// SetPaused flips the pause flag. Restricted to admins.
	SetPaused(ctx context.Context, requester string, paused bool) error
	// ListReserve registers a new reserve. Restricted to admins.
	ListReserve(ctx context.Context, requester string, reserve *Reserve, cfg ReserveConfiguration) error
}
