package cmd

import (
	"time"

	"github.com/fox-one/pkg/property"
	"github.com/fox-one/pkg/store/db"
	propertystore "github.com/fox-one/pkg/store/property"

	"tally/core"
	"tally/handler"
	"tally/pkg/guard"
	agreementservice "tally/service/agreement"
	creditservice "tally/service/credit"
	ledgerservice "tally/service/ledger"
	poolservice "tally/service/pool"
	vaultservice "tally/service/vault"
	"tally/store/agreement"
	"tally/store/audit"
	"tally/store/encumbrance"
	"tally/store/pool"
	"tally/store/position"
)

func provideDatabase() *db.DB {
	database := db.MustOpen(cfg.DB)
	return database
}

// ---------------store-----------------------------------------

func providePropertyStore(db *db.DB) property.Store {
	return propertystore.New(db)
}

func providePoolStore(db *db.DB) core.IPoolStore {
	return pool.New(db)
}

func providePositionStore(db *db.DB) core.IPositionStore {
	return position.New(db)
}

func provideEncumbranceStore(db *db.DB) core.IEncumbranceStore {
	return encumbrance.New(db)
}

func provideAgreementStore(db *db.DB) core.IAgreementStore {
	return agreement.New(db)
}

func provideAuditStore(db *db.DB) core.IAuditStore {
	return audit.New(db, cfg.DB.Dialect)
}

// ------------------service------------------------------------

func providePoolService() core.IPoolService {
	return poolservice.New()
}

func provideLedgerService(database *db.DB, g *guard.Guard) core.ILedgerService {
	return ledgerservice.New(
		&cfg,
		database,
		g,
		providePoolStore(database),
		providePositionStore(database),
		provideEncumbranceStore(database),
		providePoolService(),
	)
}

func provideVaultService(database *db.DB, g *guard.Guard) core.IVaultService {
	return vaultservice.New(
		database,
		g,
		providePoolStore(database),
		providePositionStore(database),
		provideEncumbranceStore(database),
		provideLedgerService(database, g),
	)
}

func provideCreditService(database *db.DB, g *guard.Guard) core.ICreditService {
	return creditservice.New(
		&cfg,
		database,
		g,
		providePoolStore(database),
		providePositionStore(database),
		provideEncumbranceStore(database),
		provideLedgerService(database, g),
	)
}

func provideAgreementService(database *db.DB, g *guard.Guard) core.IAgreementService {
	return agreementservice.New(
		&cfg,
		database,
		g,
		providePoolStore(database),
		providePositionStore(database),
		provideEncumbranceStore(database),
		provideAgreementStore(database),
		provideLedgerService(database, g),
		providePoolService(),
	)
}

// ------------------handler------------------------------------

func provideServer(database *db.DB, g *guard.Guard) handler.Server {
	// the read api only reads pools, so a short lived cache is safe here; the
	// mutating services keep the bare store
	return handler.New(
		&cfg,
		pool.Cache(providePoolStore(database), time.Second),
		providePositionStore(database),
		provideEncumbranceStore(database),
		provideAgreementStore(database),
		provideAuditStore(database),
		provideLedgerService(database, g),
		provideVaultService(database, g),
		provideCreditService(database, g),
		provideAgreementService(database, g),
	)
}
