package core

import (
	"context"
	"time"

	"aqueduct/pkg/fixedpoint"

	"github.com/fox-one/pkg/store/db"
)

// ActionType pool operation kind
type ActionType int

const (
	// ActionTypeSupply supply
	ActionTypeSupply ActionType = iota + 1
	// ActionTypeWithdraw withdraw
	ActionTypeWithdraw
	// ActionTypeBorrow borrow
	ActionTypeBorrow
	// ActionTypeRepay repay
	ActionTypeRepay
	// ActionTypeFlashLoan flash loan
	ActionTypeFlashLoan
	// ActionTypeLiquidation liquidation call
	ActionTypeLiquidation
)

func (a ActionType) String() string {
	switch a {
	case ActionTypeSupply:
		return "supply"
	case ActionTypeWithdraw:
		return "withdraw"
	case ActionTypeBorrow:
		return "borrow"
	case ActionTypeRepay:
		return "repay"
	case ActionTypeFlashLoan:
		return "flashloan"
	case ActionTypeLiquidation:
		return "liquidation"
	default:
		return "unknown"
	}
}

// PoolEvent append-only record of one completed pool operation, written in
// the same transaction as the state change it describes.
type PoolEvent struct {
	ID        uint64         `sql:"PRIMARY_KEY;AUTO_INCREMENT" json:"id"`
	TraceID   string         `sql:"size:36;unique_index:event_trace_idx" json:"trace_id"`
	Action    ActionType     `json:"action"`
	UserID    string         `sql:"size:36;index:event_user_idx" json:"user_id"`
	AssetID   string         `sql:"size:36" json:"asset_id"`
	Amount    fixedpoint.Big `sql:"type:varchar(80)" json:"amount"`
	CreatedAt time.Time      `sql:"default:CURRENT_TIMESTAMP" json:"created_at"`
}

// IEventStore pool event store interface
type IEventStore interface {
	Save(ctx context.Context, tx *db.DB, event *PoolEvent) error
	FindByUser(ctx context.Context, userID string, limit int) ([]*PoolEvent, error)
	List(ctx context.Context, limit int) ([]*PoolEvent, error)
}
