package pool

import (
	"context"
	"errors"
	"fmt"
	"time"

	"aqueduct/core"
	"aqueduct/internal/aqueduct"
	"aqueduct/pkg/fixedpoint"

	"github.com/fox-one/pkg/logger"
	"github.com/fox-one/pkg/store/db"
)

// Paused reads the pause flag. A failing read counts as paused so a broken
// flag store cannot let mutations through.
func (s *service) Paused(ctx context.Context) bool {
	paused, err := s.pauseStore.Paused(ctx)
	if err != nil {
		logger.FromContext(ctx).WithError(err).Errorln("read pause flag")
		return true
	}
	return paused
}

func (s *service) SetPaused(ctx context.Context, requester string, paused bool) error {
	if !s.system.IsAdmin(requester) {
		return core.ErrUnauthorized
	}

	if err := s.pauseStore.SetPaused(ctx, paused); err != nil {
		return err
	}

	logger.FromContext(ctx).Infof("pool paused set to %v by %s", paused, requester)
	return nil
}

// ListReserve registers a new reserve with both indices at 1.0 ray.
func (s *service) ListReserve(ctx context.Context, requester string, reserve *core.Reserve, cfg core.ReserveConfiguration) error {
	log := logger.FromContext(ctx).WithField("action", "list_reserve")

	if !s.system.IsAdmin(requester) {
		return core.ErrUnauthorized
	}
	if reserve.AssetID == "" {
		return core.ErrInvalidConfiguration
	}
	if err := cfg.Apply(reserve); err != nil {
		return err
	}

	return s.db.Tx(func(tx *db.DB) error {
		count, err := s.reserveStore.Count(ctx)
		if err != nil {
			return err
		}
		if count >= aqueduct.MaxReserves {
			return core.ErrTooManyReserves
		}

		if _, err := s.reserveStore.Find(ctx, reserve.AssetID); err == nil {
			return fmt.Errorf("%w: %s already listed", core.ErrInvalidConfiguration, reserve.AssetID)
		} else if !errors.Is(err, core.ErrUnknownReserve) {
			return err
		}

		if reserve.LiquidityIndex.IsZero() {
			reserve.LiquidityIndex = fixedpoint.Ray()
		}
		if reserve.VariableBorrowIndex.IsZero() {
			reserve.VariableBorrowIndex = fixedpoint.Ray()
		}
		reserve.LastUpdateTimestamp = time.Now()

		if err := s.reserveStore.Save(ctx, tx, reserve); err != nil {
			return err
		}

		log.Infof("listed %s (%s)", reserve.Symbol, reserve.AssetID)
		return nil
	})
}
