package token

import (
	"context"
	"fmt"

	"aqueduct/core"
	"aqueduct/pkg/fixedpoint"

	"github.com/fox-one/pkg/store/db"
)

type service struct {
	tokenStore core.ITokenStore
}

// New new token service
func New(tokenStore core.ITokenStore) core.ITokenService {
	return &service{tokenStore: tokenStore}
}

func (s *service) TransferFrom(ctx context.Context, tx *db.DB, assetID, owner string, amount fixedpoint.Big) error {
	return s.move(ctx, tx, assetID, owner, core.TokenHolderPool, amount)
}

func (s *service) Transfer(ctx context.Context, tx *db.DB, assetID, recipient string, amount fixedpoint.Big) error {
	return s.move(ctx, tx, assetID, core.TokenHolderPool, recipient, amount)
}

// Deposit mints fresh units into a holder's balance. Administrative faucet,
// the listing-side counterpart of an on-chain deposit.
func (s *service) Deposit(ctx context.Context, tx *db.DB, assetID, userID string, amount fixedpoint.Big) error {
	if amount.IsZero() {
		return core.ErrInvalidAmount
	}
	return s.credit(ctx, tx, assetID, userID, amount)
}

func (s *service) BalanceOf(ctx context.Context, assetID, userID string) (fixedpoint.Big, error) {
	balance, err := s.tokenStore.Find(ctx, nil, assetID, userID)
	if err != nil {
		return fixedpoint.Big{}, err
	}
	return balance.Balance, nil
}

func (s *service) move(ctx context.Context, tx *db.DB, assetID, from, to string, amount fixedpoint.Big) error {
	if amount.IsZero() {
		return core.ErrInvalidAmount
	}

	source, err := s.tokenStore.Find(ctx, tx, assetID, from)
	if err != nil {
		return err
	}
	if source.Balance.LessThan(amount) {
		return fmt.Errorf("%w: %s holds %s of %s, needs %s", core.ErrInsufficientBalance, from, source.Balance, assetID, amount)
	}

	if source.Balance, err = source.Balance.Sub(amount); err != nil {
		return err
	}
	if err := s.tokenStore.Update(ctx, tx, source); err != nil {
		return err
	}

	return s.credit(ctx, tx, assetID, to, amount)
}

func (s *service) credit(ctx context.Context, tx *db.DB, assetID, userID string, amount fixedpoint.Big) error {
	target, err := s.tokenStore.Find(ctx, tx, assetID, userID)
	if err != nil {
		return err
	}
	if target.Balance, err = target.Balance.Add(amount); err != nil {
		return err
	}
	if target.ID == 0 {
		return s.tokenStore.Save(ctx, tx, target)
	}
	return s.tokenStore.Update(ctx, tx, target)
}
