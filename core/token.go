package core

import (
	"context"
	"time"

	"aqueduct/pkg/fixedpoint"

	"github.com/fox-one/pkg/store/db"
)

// TokenHolderPool reserved holder id of the pool's own custody.
const TokenHolderPool = "pool"

// TokenBalance custody ledger row: wad units of one asset held for one owner.
type TokenBalance struct {
	ID        uint64         `sql:"PRIMARY_KEY;AUTO_INCREMENT" json:"id"`
	AssetID   string         `sql:"size:36;unique_index:token_idx" json:"asset_id"`
	UserID    string         `sql:"size:36;unique_index:token_idx" json:"user_id"`
	Balance   fixedpoint.Big `sql:"type:varchar(80)" json:"balance"`
	Version   int64          `sql:"default:0" json:"version"`
	CreatedAt time.Time      `sql:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time      `sql:"default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// ITokenStore token balance store interface. Find returns an empty record
// (ID zero) for unknown holders. Reads inside a transaction must pass the
// transaction handle so in-flight writes stay visible.
type ITokenStore interface {
	Find(ctx context.Context, tx *db.DB, assetID, userID string) (*TokenBalance, error)
	FindByUser(ctx context.Context, userID string) ([]*TokenBalance, error)
	Save(ctx context.Context, tx *db.DB, balance *TokenBalance) error
	Update(ctx context.Context, tx *db.DB, balance *TokenBalance) error
}

// ITokenService is the fungible asset collaborator: atomic, all or nothing
// moves between holders and the pool custody.
type ITokenService interface {
	// TransferFrom pulls amount from the owner into the pool custody.
	TransferFrom(ctx context.Context, tx *db.DB, assetID, owner string, amount fixedpoint.Big) error
	// Transfer pays amount out of the pool custody to the recipient.
	Transfer(ctx context.Context, tx *db.DB, assetID, recipient string, amount fixedpoint.Big) error
	// Deposit credits freshly minted units to a holder. Administrative.
	Deposit(ctx context.Context, tx *db.DB, assetID, userID string, amount fixedpoint.Big) error
	// BalanceOf current custody balance of a holder.
	BalanceOf(ctx context.Context, assetID, userID string) (fixedpoint.Big, error)
}
