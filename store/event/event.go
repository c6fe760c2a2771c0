package event

import (
	"context"

	"aqueduct/core"

	"github.com/fox-one/pkg/store/db"
)

type eventStore struct {
	db *db.DB
}

// New new pool event store
func New(db *db.DB) core.IEventStore {
	return &eventStore{db: db}
}

func init() {
	db.RegisterMigrate(func(db *db.DB) error {
		tx := db.Update().Model(core.PoolEvent{})
		if err := tx.AutoMigrate(core.PoolEvent{}).Error; err != nil {
			return err
		}

		return nil
	})
}

func (s *eventStore) Save(ctx context.Context, tx *db.DB, event *core.PoolEvent) error {
	if err := tx.Update().Create(event).Error; err != nil {
		return err
	}
	return nil
}

func (s *eventStore) FindByUser(ctx context.Context, userID string, limit int) ([]*core.PoolEvent, error) {
	var events []*core.PoolEvent
	if err := s.db.View().
		Where("user_id=?", userID).
		Order("id desc").
		Limit(limit).
		Find(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}

func (s *eventStore) List(ctx context.Context, limit int) ([]*core.PoolEvent, error) {
	var events []*core.PoolEvent
	if err := s.db.View().
		Order("id desc").
		Limit(limit).
		Find(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}
