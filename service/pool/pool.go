package pool

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"aqueduct/core"
	"aqueduct/pkg/fixedpoint"

	"github.com/fox-one/pkg/logger"
	"github.com/fox-one/pkg/store/db"
	"github.com/gofrs/uuid"
)

type service struct {
	system         *core.System
	db             core.Database
	pauseStore     core.IPauseStore
	reserveStore   core.IReserveStore
	eventStore     core.IEventStore
	reserveService core.IReserveService
	shareService   core.IShareService
	tokenService   core.ITokenService
	oracleService  core.IPriceOracleService
	accountService core.IAccountService

	entered int32
}

// New new pool service
func New(
	system *core.System,
	database core.Database,
	pauseStore core.IPauseStore,
	reserveStore core.IReserveStore,
	eventStore core.IEventStore,
	reserveService core.IReserveService,
	shareService core.IShareService,
	tokenService core.ITokenService,
	oracleService core.IPriceOracleService,
	accountService core.IAccountService,
) core.IPoolService {
	return &service{
		system:         system,
		db:             database,
		pauseStore:     pauseStore,
		reserveStore:   reserveStore,
		eventStore:     eventStore,
		reserveService: reserveService,
		shareService:   shareService,
		tokenService:   tokenService,
		oracleService:  oracleService,
		accountService: accountService,
	}
}

func (s *service) Supply(ctx context.Context, userID, assetID string, amount fixedpoint.Big, beneficiary string) error {
	log := logger.FromContext(ctx).WithField("action", "supply")

	release, err := s.enter(ctx)
	if err != nil {
		return err
	}
	defer release()

	if amount.IsZero() {
		return core.ErrInvalidAmount
	}
	if beneficiary == "" {
		beneficiary = userID
	}

	now := time.Now()
	return s.db.Tx(func(tx *db.DB) error {
		reserve, err := s.loadReserve(ctx, assetID, true)
		if err != nil {
			return err
		}

		if err := s.reserveService.AccrueInterest(ctx, reserve, fixedpoint.New(0), fixedpoint.New(0), now); err != nil {
			return err
		}

		if err := s.tokenService.TransferFrom(ctx, tx, assetID, userID, amount); err != nil {
			return err
		}

		if _, err := s.shareService.Mint(ctx, tx, reserve, core.ShareSideSupply, beneficiary, amount, reserve.LiquidityIndex); err != nil {
			return err
		}

		if err := s.reserveStore.Update(ctx, tx, reserve); err != nil {
			return err
		}

		log.Infof("%s supplied %s of %s for %s", userID, amount, reserve.Symbol, beneficiary)
		return s.emit(ctx, tx, core.ActionTypeSupply, beneficiary, assetID, amount)
	})
}

func (s *service) Withdraw(ctx context.Context, userID, assetID string, amount fixedpoint.Big, recipient string) (fixedpoint.Big, error) {
	log := logger.FromContext(ctx).WithField("action", "withdraw")

	release, err := s.enter(ctx)
	if err != nil {
		return fixedpoint.Big{}, err
	}
	defer release()

	if amount.IsZero() {
		return fixedpoint.Big{}, core.ErrInvalidAmount
	}
	if recipient == "" {
		recipient = userID
	}

	var paid fixedpoint.Big
	now := time.Now()
	err = s.db.Tx(func(tx *db.DB) error {
		reserve, err := s.loadReserve(ctx, assetID, false)
		if err != nil {
			return err
		}

		if err := s.reserveService.AccrueInterest(ctx, reserve, fixedpoint.New(0), fixedpoint.New(0), now); err != nil {
			return err
		}

		balance, err := s.shareService.BalanceOf(ctx, assetID, userID, core.ShareSideSupply, reserve.LiquidityIndex)
		if err != nil {
			return err
		}

		paid = amount
		if paid.Eq(core.MaxAmount) {
			paid = balance
		}
		if paid.IsZero() || balance.LessThan(paid) {
			return fmt.Errorf("%w: withdraw %s exceeds supplied %s", core.ErrInsufficientBalance, paid, balance)
		}

		if err := s.shareService.Burn(ctx, tx, reserve, core.ShareSideSupply, userID, paid, reserve.LiquidityIndex); err != nil {
			return err
		}

		if err := s.tokenService.Transfer(ctx, tx, assetID, recipient, paid); err != nil {
			return err
		}

		if err := s.reserveStore.Update(ctx, tx, reserve); err != nil {
			return err
		}

		log.Infof("%s withdrew %s of %s to %s", userID, paid, reserve.Symbol, recipient)
		return s.emit(ctx, tx, core.ActionTypeWithdraw, userID, assetID, paid)
	})
	if err != nil {
		return fixedpoint.Big{}, err
	}
	return paid, nil
}

// enter takes the single operation slot, failing instead of blocking when a
// pool mutation is already in flight.
func (s *service) enter(ctx context.Context) (func(), error) {
	if !atomic.CompareAndSwapInt32(&s.entered, 0, 1) {
		return nil, core.ErrReentrantCall
	}
	if s.Paused(ctx) {
		atomic.StoreInt32(&s.entered, 0)
		return nil, core.ErrPaused
	}
	return func() { atomic.StoreInt32(&s.entered, 0) }, nil
}

func (s *service) loadReserve(ctx context.Context, assetID string, rejectFrozen bool) (*core.Reserve, error) {
	reserve, err := s.reserveStore.Find(ctx, assetID)
	if err != nil {
		return nil, err
	}
	if !reserve.Active {
		return nil, core.ErrReserveNotActive
	}
	if rejectFrozen && reserve.Frozen {
		return nil, core.ErrReserveFrozen
	}
	return reserve, nil
}

func (s *service) emit(ctx context.Context, tx *db.DB, action core.ActionType, userID, assetID string, amount fixedpoint.Big) error {
	return s.eventStore.Save(ctx, tx, &core.PoolEvent{
		TraceID: uuid.Must(uuid.NewV4()).String(),
		Action:  action,
		UserID:  userID,
		AssetID: assetID,
		Amount:  amount,
	})
}
