package oracle

import (
	"context"
	"fmt"

	"aqueduct/core"
	"aqueduct/internal/aqueduct"
	"aqueduct/pkg/fixedpoint"

	"github.com/fox-one/pkg/logger"
	"github.com/fox-one/pkg/store/db"
	"github.com/shopspring/decimal"
)

type service struct {
	system     *core.System
	db         core.Database
	priceStore core.IPriceStore
}

// New new oracle service
func New(system *core.System, database core.Database, priceStore core.IPriceStore) core.IPriceOracleService {
	return &service{
		system:     system,
		db:         database,
		priceStore: priceStore,
	}
}

func (s *service) GetUnderlyingPrice(ctx context.Context, assetID string) (fixedpoint.Big, error) {
	price, err := s.priceStore.Find(ctx, assetID)
	if err != nil {
		return fixedpoint.Big{}, err
	}
	if price.ID == 0 || price.Price.IsZero() {
		return fixedpoint.Big{}, fmt.Errorf("%w: no price for %s", core.ErrInvalidPrice, assetID)
	}
	return price.Price.MulUint64(aqueduct.OraclePriceToWad)
}

func (s *service) SetPrice(ctx context.Context, requester, assetID string, price decimal.Decimal) error {
	return s.SetPrices(ctx, requester, []string{assetID}, []decimal.Decimal{price})
}

func (s *service) SetPrices(ctx context.Context, requester string, assetIDs []string, prices []decimal.Decimal) error {
	log := logger.FromContext(ctx).WithField("service", "oracle")

	if !s.system.IsAdmin(requester) {
		return core.ErrUnauthorized
	}
	if len(assetIDs) != len(prices) {
		return fmt.Errorf("%w: %d assets, %d prices", core.ErrInconsistentParams, len(assetIDs), len(prices))
	}

	quotes := make([]fixedpoint.Big, len(prices))
	for idx, p := range prices {
		quote, err := fixedpoint.FromDecimal(p, aqueduct.OraclePriceDecimals)
		if err != nil {
			return err
		}
		if quote.IsZero() {
			return fmt.Errorf("%w: price for %s must be positive", core.ErrInvalidPrice, assetIDs[idx])
		}
		quotes[idx] = quote
	}

	return s.db.Tx(func(tx *db.DB) error {
		for idx, assetID := range assetIDs {
			record, err := s.priceStore.Find(ctx, assetID)
			if err != nil {
				return err
			}

			record.AssetID = assetID
			record.Price = quotes[idx]

			if record.ID == 0 {
				err = s.priceStore.Save(ctx, tx, record)
			} else {
				err = s.priceStore.Update(ctx, tx, record)
			}
			if err != nil {
				return err
			}

			log.Infof("price of %s set to %s", assetID, prices[idx])
		}
		return nil
	})
}
