package token

import (
	"context"

	"aqueduct/core"

	"github.com/fox-one/pkg/store/db"
	"github.com/jinzhu/gorm"
)

type tokenStore struct {
	db *db.DB
}

// New new token balance store
func New(db *db.DB) core.ITokenStore {
	return &tokenStore{db: db}
}

func init() {
	db.RegisterMigrate(func(db *db.DB) error {
		tx := db.Update().Model(core.TokenBalance{})
		if err := tx.AutoMigrate(core.TokenBalance{}).Error; err != nil {
			return err
		}

		return nil
	})
}

// Find reads through the transaction when one is given so balances written
// earlier in the same transaction stay visible.
func (s *tokenStore) Find(ctx context.Context, tx *db.DB, assetID, userID string) (*core.TokenBalance, error) {
	query := s.db.View()
	if tx != nil {
		query = tx.Update()
	}

	var balance core.TokenBalance
	if err := query.Where("asset_id=? and user_id=?", assetID, userID).First(&balance).Error; err != nil {
		if gorm.IsRecordNotFoundError(err) {
			return &core.TokenBalance{AssetID: assetID, UserID: userID}, nil
		}
		return nil, err
	}

	return &balance, nil
}

func (s *tokenStore) FindByUser(ctx context.Context, userID string) ([]*core.TokenBalance, error) {
	var balances []*core.TokenBalance
	if err := s.db.View().Where("user_id=?", userID).Find(&balances).Error; err != nil {
		return nil, err
	}
	return balances, nil
}

func (s *tokenStore) Save(ctx context.Context, tx *db.DB, balance *core.TokenBalance) error {
	if err := tx.Update().Create(balance).Error; err != nil {
		return err
	}
	return nil
}

// columns are listed explicitly so a drained balance still persists
func updateParams(balance *core.TokenBalance) map[string]interface{} {
	return map[string]interface{}{
		"balance": balance.Balance,
	}
}

func (s *tokenStore) Update(ctx context.Context, tx *db.DB, balance *core.TokenBalance) error {
	version := balance.Version
	balance.Version++

	updates := updateParams(balance)
	updates["version"] = balance.Version

	r := tx.Update().Model(core.TokenBalance{}).
		Where("asset_id=? and user_id=? and version=?", balance.AssetID, balance.UserID, version).
		Updates(updates)
	if r.Error != nil {
		return r.Error
	}
	if r.RowsAffected == 0 {
		return db.ErrOptimisticLock
	}

	return nil
}
