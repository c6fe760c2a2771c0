package reserve

import (
	"context"

	"aqueduct/core"

	"github.com/fox-one/pkg/store/db"
	"github.com/jinzhu/gorm"
)

type reserveStore struct {
	db *db.DB
}

// New new reserve store
func New(db *db.DB) core.IReserveStore {
	return &reserveStore{db: db}
}

func init() {
	db.RegisterMigrate(func(db *db.DB) error {
		tx := db.Update().Model(core.Reserve{})
		if err := tx.AutoMigrate(core.Reserve{}).Error; err != nil {
			return err
		}

		return nil
	})
}

func (s *reserveStore) Save(ctx context.Context, tx *db.DB, reserve *core.Reserve) error {
	if err := tx.Update().Create(reserve).Error; err != nil {
		return err
	}
	return nil
}

func (s *reserveStore) Find(ctx context.Context, assetID string) (*core.Reserve, error) {
	var reserve core.Reserve
	if err := s.db.View().Where("asset_id=?", assetID).First(&reserve).Error; err != nil {
		if gorm.IsRecordNotFoundError(err) {
			return nil, core.ErrUnknownReserve
		}
		return nil, err
	}

	return &reserve, nil
}

func (s *reserveStore) All(ctx context.Context) ([]*core.Reserve, error) {
	var reserves []*core.Reserve
	if err := s.db.View().Find(&reserves).Error; err != nil {
		return nil, err
	}
	return reserves, nil
}

func (s *reserveStore) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := s.db.View().Model(core.Reserve{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// columns are listed explicitly so zeroed aggregates and rates still persist
func updateParams(reserve *core.Reserve) map[string]interface{} {
	return map[string]interface{}{
		"liquidity_index":              reserve.LiquidityIndex,
		"variable_borrow_index":        reserve.VariableBorrowIndex,
		"current_liquidity_rate":       reserve.CurrentLiquidityRate,
		"current_stable_borrow_rate":   reserve.CurrentStableBorrowRate,
		"current_variable_borrow_rate": reserve.CurrentVariableBorrowRate,
		"utilization_rate":             reserve.UtilizationRate,
		"total_scaled_supply":          reserve.TotalScaledSupply,
		"total_scaled_variable_debt":   reserve.TotalScaledVariableDebt,
		"last_update_timestamp":        reserve.LastUpdateTimestamp,
	}
}

func (s *reserveStore) Update(ctx context.Context, tx *db.DB, reserve *core.Reserve) error {
	version := reserve.Version
	reserve.Version++

	updates := updateParams(reserve)
	updates["version"] = reserve.Version

	r := tx.Update().Model(core.Reserve{}).
		Where("asset_id=? and version=?", reserve.AssetID, version).
		Updates(updates)
	if r.Error != nil {
		return r.Error
	}
	if r.RowsAffected == 0 {
		return db.ErrOptimisticLock
	}

	return nil
}
