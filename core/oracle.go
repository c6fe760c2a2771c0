package core

import (
	"context"
	"time"

	"aqueduct/pkg/fixedpoint"

	"github.com/fox-one/pkg/store/db"
	"github.com/shopspring/decimal"
)

// Price oracle price of one asset in the external base currency, 8 decimals.
// Only a strictly positive price counts as set.
type Price struct {
	ID        uint64         `sql:"PRIMARY_KEY;AUTO_INCREMENT" json:"id"`
	AssetID   string         `sql:"size:36;unique_index:price_asset_idx" json:"asset_id"`
	Price     fixedpoint.Big `sql:"type:varchar(80)" json:"price"`
	Version   int64          `sql:"default:0" json:"version"`
	CreatedAt time.Time      `sql:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time      `sql:"default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// IPriceStore price store interface. Find returns an empty record (ID zero)
// when no price was ever set.
type IPriceStore interface {
	Find(ctx context.Context, assetID string) (*Price, error)
	All(ctx context.Context) ([]*Price, error)
	Save(ctx context.Context, tx *db.DB, price *Price) error
	Update(ctx context.Context, tx *db.DB, price *Price) error
}

// IPriceOracleService price oracle collaborator
type IPriceOracleService interface {
	// GetUnderlyingPrice returns the wad scaled price of the asset, failing
	// with ErrInvalidPrice when no positive price is set.
	GetUnderlyingPrice(ctx context.Context, assetID string) (fixedpoint.Big, error)
	// SetPrice stores an 8 decimal price. Restricted to admins.
	SetPrice(ctx context.Context, requester, assetID string, price decimal.Decimal) error
	// SetPrices stores several prices at once; the two slices must be
	// parallel. Restricted to admins.
	SetPrices(ctx context.Context, requester string, assetIDs []string, prices []decimal.Decimal) error
}
