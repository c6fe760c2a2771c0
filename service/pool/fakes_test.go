package pool

import (
	"context"
	"fmt"
	"sort"

	"aqueduct/core"
	"aqueduct/pkg/fixedpoint"
	accountservice "aqueduct/service/account"
	oracleservice "aqueduct/service/oracle"
	reserveservice "aqueduct/service/reserve"
	shareservice "aqueduct/service/share"
	tokenservice "aqueduct/service/token"

	"github.com/fox-one/pkg/store/db"
	"github.com/shopspring/decimal"
)

// ledger is an in-memory stand-in for the whole persistence layer. Tx takes a
// deep snapshot before running fn and restores it when fn fails, giving the
// same all-or-nothing behavior the database provides.
type ledger struct {
	reserves map[string]*core.Reserve
	shares   map[string]*core.ShareBalance
	tokens   map[string]*core.TokenBalance
	prices   map[string]*core.Price
	events   []*core.PoolEvent
	paused   bool
	nextID   uint64
}

func newLedger() *ledger {
	return &ledger{
		reserves: make(map[string]*core.Reserve),
		shares:   make(map[string]*core.ShareBalance),
		tokens:   make(map[string]*core.TokenBalance),
		prices:   make(map[string]*core.Price),
	}
}

func (l *ledger) id() uint64 {
	l.nextID++
	return l.nextID
}

func shareKey(assetID, userID string, side core.ShareSide) string {
	return fmt.Sprintf("%s|%s|%d", assetID, userID, side)
}

func tokenKey(assetID, userID string) string {
	return assetID + "|" + userID
}

func (l *ledger) snapshot() *ledger {
	snap := newLedger()
	snap.nextID = l.nextID
	snap.paused = l.paused
	for k, v := range l.reserves {
		r := *v
		snap.reserves[k] = &r
	}
	for k, v := range l.shares {
		s := *v
		snap.shares[k] = &s
	}
	for k, v := range l.tokens {
		t := *v
		snap.tokens[k] = &t
	}
	for k, v := range l.prices {
		p := *v
		snap.prices[k] = &p
	}
	snap.events = append(snap.events, l.events...)
	return snap
}

func (l *ledger) restore(snap *ledger) {
	l.reserves = snap.reserves
	l.shares = snap.shares
	l.tokens = snap.tokens
	l.prices = snap.prices
	l.events = snap.events
	l.paused = snap.paused
	l.nextID = snap.nextID
}

// Tx implements core.Database.
func (l *ledger) Tx(fn func(tx *db.DB) error) error {
	snap := l.snapshot()
	if err := fn(nil); err != nil {
		l.restore(snap)
		return err
	}
	return nil
}

// ----- core.IPauseStore -----

func (l *ledger) Paused(ctx context.Context) (bool, error) {
	return l.paused, nil
}

func (l *ledger) SetPaused(ctx context.Context, paused bool) error {
	l.paused = paused
	return nil
}

// ----- core.IReserveStore -----

func (l *ledger) Save(ctx context.Context, tx *db.DB, reserve *core.Reserve) error {
	reserve.ID = l.id()
	r := *reserve
	l.reserves[reserve.AssetID] = &r
	return nil
}

func (l *ledger) Find(ctx context.Context, assetID string) (*core.Reserve, error) {
	reserve, ok := l.reserves[assetID]
	if !ok {
		return nil, core.ErrUnknownReserve
	}
	r := *reserve
	return &r, nil
}

func (l *ledger) All(ctx context.Context) ([]*core.Reserve, error) {
	reserves := make([]*core.Reserve, 0, len(l.reserves))
	for _, reserve := range l.reserves {
		r := *reserve
		reserves = append(reserves, &r)
	}
	sort.Slice(reserves, func(i, j int) bool { return reserves[i].ID < reserves[j].ID })
	return reserves, nil
}

func (l *ledger) Count(ctx context.Context) (int64, error) {
	return int64(len(l.reserves)), nil
}

func (l *ledger) Update(ctx context.Context, tx *db.DB, reserve *core.Reserve) error {
	reserve.Version++
	r := *reserve
	l.reserves[reserve.AssetID] = &r
	return nil
}

// shareLedger narrows ledger to core.IShareStore; the store interfaces share
// method names, so each gets its own view of the same state.
type shareLedger struct{ *ledger }

func (l shareLedger) Find(ctx context.Context, assetID, userID string, side core.ShareSide) (*core.ShareBalance, error) {
	balance, ok := l.shares[shareKey(assetID, userID, side)]
	if !ok {
		return &core.ShareBalance{AssetID: assetID, UserID: userID, Side: side}, nil
	}
	b := *balance
	return &b, nil
}

func (l shareLedger) FindByUser(ctx context.Context, userID string) ([]*core.ShareBalance, error) {
	var balances []*core.ShareBalance
	for _, balance := range l.shares {
		if balance.UserID == userID {
			b := *balance
			balances = append(balances, &b)
		}
	}
	sort.Slice(balances, func(i, j int) bool { return balances[i].ID < balances[j].ID })
	return balances, nil
}

func (l shareLedger) Users(ctx context.Context, side core.ShareSide) ([]string, error) {
	seen := make(map[string]bool)
	var users []string
	for _, balance := range l.shares {
		if balance.Side == side && !seen[balance.UserID] {
			seen[balance.UserID] = true
			users = append(users, balance.UserID)
		}
	}
	sort.Strings(users)
	return users, nil
}

func (l shareLedger) Save(ctx context.Context, tx *db.DB, balance *core.ShareBalance) error {
	balance.ID = l.id()
	b := *balance
	l.shares[shareKey(balance.AssetID, balance.UserID, balance.Side)] = &b
	return nil
}

func (l shareLedger) Update(ctx context.Context, tx *db.DB, balance *core.ShareBalance) error {
	balance.Version++
	b := *balance
	l.shares[shareKey(balance.AssetID, balance.UserID, balance.Side)] = &b
	return nil
}

// tokenLedger narrows ledger to core.ITokenStore.
type tokenLedger struct{ *ledger }

func (l tokenLedger) Find(ctx context.Context, tx *db.DB, assetID, userID string) (*core.TokenBalance, error) {
	balance, ok := l.tokens[tokenKey(assetID, userID)]
	if !ok {
		return &core.TokenBalance{AssetID: assetID, UserID: userID}, nil
	}
	b := *balance
	return &b, nil
}

func (l tokenLedger) FindByUser(ctx context.Context, userID string) ([]*core.TokenBalance, error) {
	var balances []*core.TokenBalance
	for _, balance := range l.tokens {
		if balance.UserID == userID {
			b := *balance
			balances = append(balances, &b)
		}
	}
	return balances, nil
}

func (l tokenLedger) Save(ctx context.Context, tx *db.DB, balance *core.TokenBalance) error {
	balance.ID = l.id()
	b := *balance
	l.tokens[tokenKey(balance.AssetID, balance.UserID)] = &b
	return nil
}

func (l tokenLedger) Update(ctx context.Context, tx *db.DB, balance *core.TokenBalance) error {
	balance.Version++
	b := *balance
	l.tokens[tokenKey(balance.AssetID, balance.UserID)] = &b
	return nil
}

// priceLedger narrows ledger to core.IPriceStore.
type priceLedger struct{ *ledger }

func (l priceLedger) Find(ctx context.Context, assetID string) (*core.Price, error) {
	price, ok := l.prices[assetID]
	if !ok {
		return &core.Price{AssetID: assetID}, nil
	}
	p := *price
	return &p, nil
}

func (l priceLedger) All(ctx context.Context) ([]*core.Price, error) {
	var prices []*core.Price
	for _, price := range l.prices {
		p := *price
		prices = append(prices, &p)
	}
	return prices, nil
}

func (l priceLedger) Save(ctx context.Context, tx *db.DB, price *core.Price) error {
	price.ID = l.id()
	p := *price
	l.prices[price.AssetID] = &p
	return nil
}

func (l priceLedger) Update(ctx context.Context, tx *db.DB, price *core.Price) error {
	price.Version++
	p := *price
	l.prices[price.AssetID] = &p
	return nil
}

// eventLedger narrows ledger to core.IEventStore.
type eventLedger struct{ *ledger }

func (l eventLedger) Save(ctx context.Context, tx *db.DB, event *core.PoolEvent) error {
	event.ID = l.id()
	e := *event
	l.ledger.events = append(l.ledger.events, &e)
	return nil
}

func (l eventLedger) FindByUser(ctx context.Context, userID string, limit int) ([]*core.PoolEvent, error) {
	var events []*core.PoolEvent
	for _, event := range l.ledger.events {
		if event.UserID == userID {
			e := *event
			events = append(events, &e)
		}
	}
	if len(events) > limit {
		events = events[len(events)-limit:]
	}
	return events, nil
}

func (l eventLedger) List(ctx context.Context, limit int) ([]*core.PoolEvent, error) {
	events := make([]*core.PoolEvent, 0, len(l.ledger.events))
	for _, event := range l.ledger.events {
		e := *event
		events = append(events, &e)
	}
	if len(events) > limit {
		events = events[len(events)-limit:]
	}
	return events, nil
}

// testEnv wires the real services over one shared in-memory ledger.
type testEnv struct {
	ledger *ledger
	system *core.System

	reserveService core.IReserveService
	shareService   core.IShareService
	tokenService   core.ITokenService
	oracleService  core.IPriceOracleService
	accountService core.IAccountService
	pool           core.IPoolService
}

func newTestEnv() *testEnv {
	l := newLedger()
	system := &core.System{Admins: []string{"admin"}, Version: "test"}

	reserveService := reserveservice.New()
	shareService := shareservice.New(shareLedger{l})
	tokenService := tokenservice.New(tokenLedger{l})
	oracleService := oracleservice.New(system, l, priceLedger{l})
	accountService := accountservice.New(l, reserveService, shareLedger{l}, oracleService)

	return &testEnv{
		ledger:         l,
		system:         system,
		reserveService: reserveService,
		shareService:   shareService,
		tokenService:   tokenService,
		oracleService:  oracleService,
		accountService: accountService,
		pool: New(
			system,
			l,
			l,
			l,
			eventLedger{l},
			reserveService,
			shareService,
			tokenService,
			oracleService,
			accountService,
		),
	}
}

// wad parses a decimal amount of the underlying unit into wad scale.
func wad(s string) fixedpoint.Big {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	b, err := fixedpoint.FromDecimal(d, 18)
	if err != nil {
		panic(err)
	}
	return b
}

// flashReceiver runs fn when the loan lands.
type flashReceiver struct {
	fn func(ctx context.Context, assets []string, amounts, premiums []fixedpoint.Big) error
}

func (r *flashReceiver) ExecuteOperation(ctx context.Context, assets []string, amounts, premiums []fixedpoint.Big, initiator string, params []byte) error {
	if r.fn == nil {
		return nil
	}
	return r.fn(ctx, assets, amounts, premiums)
}
