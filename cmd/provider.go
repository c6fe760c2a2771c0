package cmd

import (
	"aqueduct/core"
	accountservice "aqueduct/service/account"
	oracleservice "aqueduct/service/oracle"
	poolservice "aqueduct/service/pool"
	reserveservice "aqueduct/service/reserve"
	shareservice "aqueduct/service/share"
	tokenservice "aqueduct/service/token"
	"aqueduct/store/event"
	"aqueduct/store/pause"
	"aqueduct/store/price"
	"aqueduct/store/reserve"
	"aqueduct/store/share"
	"aqueduct/store/token"

	"github.com/fox-one/pkg/property"
	"github.com/fox-one/pkg/store/db"
	propertystore "github.com/fox-one/pkg/store/property"
)

func provideDatabase() *db.DB {
	return db.MustOpen(cfg.DB)
}

func provideConfig() *core.Config {
	return &cfg
}

func provideSystem(ver string) *core.System {
	return &core.System{
		Admins:  cfg.Admins,
		Version: ver,
	}
}

// ---------------store-----------------------------------------

func providePropertyStore(db *db.DB) property.Store {
	return propertystore.New(db)
}

func providePauseStore(db *db.DB) core.IPauseStore {
	return pause.New(providePropertyStore(db))
}

func provideReserveStore(db *db.DB) core.IReserveStore {
	return reserve.New(db)
}

func provideShareStore(db *db.DB) core.IShareStore {
	return share.New(db)
}

func provideTokenStore(db *db.DB) core.ITokenStore {
	return token.New(db)
}

func providePriceStore(db *db.DB) core.IPriceStore {
	return price.New(db)
}

func provideEventStore(db *db.DB) core.IEventStore {
	return event.New(db)
}

// ------------------service------------------------------------

func provideReserveService() core.IReserveService {
	return reserveservice.New()
}

func provideShareService(db *db.DB) core.IShareService {
	return shareservice.New(provideShareStore(db))
}

func provideTokenService(db *db.DB) core.ITokenService {
	return tokenservice.New(provideTokenStore(db))
}

func provideOracleService(system *core.System, db *db.DB) core.IPriceOracleService {
	return oracleservice.New(system, db, providePriceStore(db))
}

func provideAccountService(system *core.System, db *db.DB) core.IAccountService {
	return accountservice.New(
		provideReserveStore(db),
		provideReserveService(),
		provideShareStore(db),
		provideOracleService(system, db),
	)
}

func providePoolService(system *core.System, db *db.DB) core.IPoolService {
	return poolservice.New(
		system,
		db,
		providePauseStore(db),
		provideReserveStore(db),
		provideEventStore(db),
		provideReserveService(),
		provideShareService(db),
		provideTokenService(db),
		provideOracleService(system, db),
		provideAccountService(system, db),
	)
}
