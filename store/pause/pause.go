package pause

import (
	"context"

	"aqueduct/core"

	"github.com/fox-one/pkg/property"
)

const pausedKey = "pool_paused"

type pauseStore struct {
	property property.Store
}

// New new pause store backed by the property table
func New(property property.Store) core.IPauseStore {
	return &pauseStore{property: property}
}

func (s *pauseStore) Paused(ctx context.Context) (bool, error) {
	v, err := s.property.Get(ctx, pausedKey)
	if err != nil {
		return false, err
	}
	return v.Int64() != 0, nil
}

func (s *pauseStore) SetPaused(ctx context.Context, paused bool) error {
	flag := int64(0)
	if paused {
		flag = 1
	}
	return s.property.Save(ctx, pausedKey, flag)
}
