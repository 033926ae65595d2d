package config

import (
	"errors"
	"fmt"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"okinoko-tictactoe/contract"
	"okinoko-tictactoe/sdk"
)

// Open returns the store the file asks for.
func (s StoreConfig) Open() (sdk.Store, error) {
	if s.InMemory && s.Path == "" {
		return sdk.NewMemStore(), nil
	}
	return sdk.OpenBadger(s.Path, s.InMemory)
}

// Deployment is a chain with the contract instance installed on it.
type Deployment struct {
	Chain    *sdk.Chain
	Contract *contract.Contract
	Store    sdk.Store
	Log      *zap.Logger
}

// Deploy opens the store, starts a chain at genesis and initializes the
// contract from cfg. Reopening a badger store that already holds an
// initialized instance keeps the stored configuration.
func Deploy(cfg Config, genesis time.Time, logger *zap.Logger) (*Deployment, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		var err error
		if logger, err = NewLogger(cfg.Log); err != nil {
			return nil, err
		}
	}
	args, err := cfg.InitArgs()
	if err != nil {
		return nil, err
	}
	store, err := cfg.Store.Open()
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	chain := sdk.NewChain(store, cfg.ChainIDInt(), genesis, logger)
	c := contract.New(cfg.ContractAddress(),
		contract.WithLogger(logger),
		contract.WithDomain(cfg.Contract.Name, cfg.Contract.Version))

	err = chain.Execute(sdk.Msg{Sender: args.Admin, To: c.Address()}, func(ctx *sdk.Context) error {
		return c.Init(ctx, args)
	})
	switch {
	case errors.Is(err, contract.ErrAlreadyInitialized):
		logger.Info("contract already initialized", zap.Stringer("address", c.Address()))
	case err != nil:
		return nil, multierr.Append(fmt.Errorf("init contract: %w", err), store.Close())
	}
	return &Deployment{Chain: chain, Contract: c, Store: store, Log: logger}, nil
}

// Close releases the store and flushes the logger.
func (d *Deployment) Close() error {
	_ = d.Log.Sync()
	return d.Store.Close()
}
