package core

import (
	"context"
	"time"

	"aqueduct/pkg/fixedpoint"

	"github.com/fox-one/pkg/store/db"
)

// ShareSide side of a share balance
type ShareSide int

const (
	// ShareSideSupply interest bearing deposit shares
	ShareSideSupply ShareSide = iota + 1
	// ShareSideVariableDebt variable rate debt shares
	ShareSideVariableDebt
)

func (s ShareSide) String() string {
	switch s {
	case ShareSideSupply:
		return "supply"
	case ShareSideVariableDebt:
		return "variable_debt"
	default:
		return "unknown"
	}
}

// ShareBalance is one holder's scaled stake on one side of a reserve. The
// scaled balance is ray scaled and independent of accrued interest; the live
// balance is scaled * normalized index.
type ShareBalance struct {
	ID            uint64         `sql:"PRIMARY_KEY;AUTO_INCREMENT" json:"id"`
	AssetID       string         `sql:"size:36;unique_index:share_idx" json:"asset_id"`
	UserID        string         `sql:"size:36;unique_index:share_idx" json:"user_id"`
	Side          ShareSide      `sql:"unique_index:share_idx" json:"side"`
	ScaledBalance fixedpoint.Big `sql:"type:varchar(80)" json:"scaled_balance"`
	Version       int64          `sql:"default:0" json:"version"`
	CreatedAt     time.Time      `sql:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt     time.Time      `sql:"default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// IShareStore share balance store interface. Find returns an empty record
// (ID zero) when the holder has no row yet.
type IShareStore interface {
	Find(ctx context.Context, assetID, userID string, side ShareSide) (*ShareBalance, error)
	FindByUser(ctx context.Context, userID string) ([]*ShareBalance, error)
	Users(ctx context.Context, side ShareSide) ([]string, error)
	Save(ctx context.Context, tx *db.DB, balance *ShareBalance) error
	Update(ctx context.Context, tx *db.DB, balance *ShareBalance) error
}

// IShareService scaled share bookkeeping shared by the supply and the
// variable debt side of every reserve.
type IShareService interface {
	// Mint converts the wad amount to scaled shares at the given normalized
	// index and credits the holder, updating the reserve aggregate. Reports
	// whether this was the holder's first nonzero balance on that side.
	Mint(ctx context.Context, tx *db.DB, reserve *Reserve, side ShareSide, userID string, amount, index fixedpoint.Big) (bool, error)
	// Burn removes the scaled equivalent of the wad amount from the holder.
	Burn(ctx context.Context, tx *db.DB, reserve *Reserve, side ShareSide, userID string, amount, index fixedpoint.Big) error
	// BalanceOf live wad balance at the given normalized index.
	BalanceOf(ctx context.Context, assetID, userID string, side ShareSide, index fixedpoint.Big) (fixedpoint.Big, error)
}
