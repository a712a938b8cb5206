package app

import (
	"context"
	"time"

	"github.com/iov-one/custody"
	"github.com/iov-one/custody/errors"
	"github.com/iov-one/custody/x"
	"github.com/iov-one/custody/x/cash"
	"github.com/iov-one/custody/x/multisig"
	"github.com/iov-one/custody/x/sigs"
	"github.com/iov-one/custody/x/utils"
	"github.com/iov-one/custody/x/wallet"
	"github.com/tendermint/tendermint/libs/log"
)

// Authenticator returns the authentication used by all handlers of the
// ledger.
func Authenticator() x.Authenticator {
	return x.ChainAuth(sigs.Authenticate{})
}

// Routes registers every handler of the ledger.
func Routes(r custody.Registry, auth x.Authenticator) {
	wallet.RegisterRoutes(r, auth, cash.NewController())
	multisig.RegisterRoutes(r, auth)
	sigs.RegisterRoutes(r, auth)
}

// Stack wraps the router with the decorators every transaction passes
// through.
func Stack() custody.Handler {
	r := NewRouter()
	Routes(r, Authenticator())
	return ChainDecorators(
		utils.NewRecovery(),
		utils.NewLogging(),
		sigs.NewDecorator(),
		utils.NewSavepoint().OnDeliver(),
		utils.NewActionTagger(),
	).WithHandler(r)
}

// Initializers returns the genesis loaders of all extensions.
func Initializers() custody.Initializer {
	return ChainInitializers(
		cash.Initializer{},
		wallet.Initializer{},
	)
}

// Ledger processes transactions against a single store.
type Ledger struct {
	db      custody.CacheableKVStore
	handler custody.Handler
	logger  log.Logger
	chainID string

	// lastBlock is the block time of the last delivered transaction.
	lastBlock time.Time
}

// NewLedger returns a ledger running the default stack. When the store was
// initialized before, its chain id is restored.
func NewLedger(db custody.CacheableKVStore, logger log.Logger) (*Ledger, error) {
	chainID, err := loadChainID(db)
	if err != nil {
		return nil, err
	}
	lastBlock, err := loadBlockTime(db)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = log.NewNopLogger()
	}
	return &Ledger{
		db:        db,
		handler:   Stack(),
		logger:    logger,
		chainID:   chainID,
		lastBlock: lastBlock,
	}, nil
}

// ChainID returns the chain id or an empty string if the ledger was not
// initialized yet.
func (l *Ledger) ChainID() string {
	return l.chainID
}

// Store gives access to the underlying store.
func (l *Ledger) Store() custody.CacheableKVStore {
	return l.db
}

// InitChain loads the genesis state. A ledger can be initialized only once.
func (l *Ledger) InitChain(gen Genesis, init custody.Initializer) error {
	if l.chainID != "" {
		return errors.Wrap(errors.ErrState, "already initialized")
	}
	cache := l.db.CacheWrap()
	if err := saveChainID(cache, gen.ChainID); err != nil {
		cache.Discard()
		return err
	}
	if err := init.FromGenesis(gen.AppOptions, cache); err != nil {
		cache.Discard()
		return errors.Wrap(err, "genesis")
	}
	if err := cache.Write(); err != nil {
		return errors.Wrap(errors.ErrDatabase, err.Error())
	}
	l.chainID = gen.ChainID
	l.logger.Info("chain initialized", "chain_id", gen.ChainID)
	return nil
}

// CheckTx validates the transaction without changing the state.
func (l *Ledger) CheckTx(now time.Time, tx custody.Tx) (*custody.CheckResult, error) {
	ctx, err := l.newContext(now)
	if err != nil {
		return nil, err
	}
	cache := l.db.CacheWrap()
	defer cache.Discard()
	return l.handler.Check(ctx, cache, tx)
}

// DeliverTx executes the transaction. State is changed only when it
// succeeds. Block time must not go backwards between deliveries.
func (l *Ledger) DeliverTx(now time.Time, tx custody.Tx) (*custody.DeliverResult, error) {
	ctx, err := l.newContext(now)
	if err != nil {
		return nil, err
	}
	if now.After(l.lastBlock) {
		if err := saveBlockTime(l.db, now); err != nil {
			return nil, err
		}
		l.lastBlock = now
	}
	return l.handler.Deliver(ctx, l.db, tx)
}

func (l *Ledger) newContext(now time.Time) (custody.Context, error) {
	if l.chainID == "" {
		return nil, errors.Wrap(errors.ErrState, "not initialized")
	}
	if now.Before(l.lastBlock) {
		return nil, errors.Wrapf(errors.ErrState, "block time %s is before %s", now.UTC(), l.lastBlock.UTC())
	}
	ctx := custody.WithLogger(context.Background(), l.logger)
	ctx = custody.WithChainID(ctx, l.chainID)
	return custody.WithBlockTime(ctx, now), nil
}
