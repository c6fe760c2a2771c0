package share

import (
	"context"

	"aqueduct/core"

	"github.com/fox-one/pkg/store/db"
	"github.com/jinzhu/gorm"
)

type shareStore struct {
	db *db.DB
}

// New new share balance store
func New(db *db.DB) core.IShareStore {
	return &shareStore{db: db}
}

func init() {
	db.RegisterMigrate(func(db *db.DB) error {
		tx := db.Update().Model(core.ShareBalance{})
		if err := tx.AutoMigrate(core.ShareBalance{}).Error; err != nil {
			return err
		}

		return nil
	})
}

func (s *shareStore) Find(ctx context.Context, assetID, userID string, side core.ShareSide) (*core.ShareBalance, error) {
	var balance core.ShareBalance
	err := s.db.View().Where("asset_id=? and user_id=? and side=?", assetID, userID, side).First(&balance).Error
	if err != nil {
		if gorm.IsRecordNotFoundError(err) {
			return &core.ShareBalance{AssetID: assetID, UserID: userID, Side: side}, nil
		}
		return nil, err
	}

	return &balance, nil
}

func (s *shareStore) FindByUser(ctx context.Context, userID string) ([]*core.ShareBalance, error) {
	var balances []*core.ShareBalance
	if err := s.db.View().Where("user_id=?", userID).Find(&balances).Error; err != nil {
		return nil, err
	}
	return balances, nil
}

func (s *shareStore) Users(ctx context.Context, side core.ShareSide) ([]string, error) {
	var users []string
	err := s.db.View().Model(core.ShareBalance{}).
		Where("side=?", side).
		Group("user_id").
		Pluck("user_id", &users).Error
	if err != nil {
		return nil, err
	}
	return users, nil
}

func (s *shareStore) Save(ctx context.Context, tx *db.DB, balance *core.ShareBalance) error {
	if err := tx.Update().Create(balance).Error; err != nil {
		return err
	}
	return nil
}

// columns are listed explicitly so a zeroed balance still persists
func updateParams(balance *core.ShareBalance) map[string]interface{} {
	return map[string]interface{}{
		"scaled_balance": balance.ScaledBalance,
	}
}

func (s *shareStore) Update(ctx context.Context, tx *db.DB, balance *core.ShareBalance) error {
	version := balance.Version
	balance.Version++

	updates := updateParams(balance)
	updates["version"] = balance.Version

	r := tx.Update().Model(core.ShareBalance{}).
		Where("asset_id=? and user_id=? and side=? and version=?", balance.AssetID, balance.UserID, balance.Side, version).
		Updates(updates)
	if r.Error != nil {
		return r.Error
	}
	if r.RowsAffected == 0 {
		return db.ErrOptimisticLock
	}

	return nil
}
