package core

import "strconv"

// ErrorCode int
type ErrorCode int

const (
	// ErrUnknown unknown
	ErrUnknown ErrorCode = 100000
	// ErrUnauthorized requester is not an admin
	ErrUnauthorized ErrorCode = 100001
	// ErrPaused pool is paused
	ErrPaused ErrorCode = 100002
	// ErrReentrantCall another pool operation is in flight
	ErrReentrantCall ErrorCode = 100003

	// ErrUnknownReserve asset was never listed
	ErrUnknownReserve ErrorCode = 100100
	// ErrInvalidAmount zero amount, or amount that scales to zero shares
	ErrInvalidAmount ErrorCode = 100101
	// ErrInsufficientBalance withdraw/burn/transfer exceeds the live balance
	ErrInsufficientBalance ErrorCode = 100102
	// ErrHealthFactorTooLow borrow would leave the account unsafe
	ErrHealthFactorTooLow ErrorCode = 100103
	// ErrHealthFactorNotBelowThreshold liquidation of a solvent position
	ErrHealthFactorNotBelowThreshold ErrorCode = 100104
	// ErrNotImplemented stable rate borrowing is not supported
	ErrNotImplemented ErrorCode = 100105
	// ErrFlashLoanExecutionFailed receiver callback or repayment failed
	ErrFlashLoanExecutionFailed ErrorCode = 100106
	// ErrInconsistentParams mismatched parallel array lengths
	ErrInconsistentParams ErrorCode = 100107
	// ErrArithmeticOverflow fixed point operation overflowed
	ErrArithmeticOverflow ErrorCode = 100108
	// ErrInvalidPrice oracle has no positive price for the asset
	ErrInvalidPrice ErrorCode = 100109
	// ErrReserveNotActive reserve listed but not activated
	ErrReserveNotActive ErrorCode = 100110
	// ErrReserveFrozen reserve accepts no new supplies or borrows
	ErrReserveFrozen ErrorCode = 100111
	// ErrBorrowingDisabled borrowing switched off for the reserve
	ErrBorrowingDisabled ErrorCode = 100112
	// ErrTooManyReserves listing would exceed the reserve bound
	ErrTooManyReserves ErrorCode = 100113
	// ErrInvalidConfiguration reserve configuration out of range
	ErrInvalidConfiguration ErrorCode = 100114
)

func (e ErrorCode) String() string {
	return strconv.Itoa(int(e))
}

func (e ErrorCode) Error() string {
	return e.String()
}
