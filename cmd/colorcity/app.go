package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/colorcity-labs/colorcity-sdk-go/pkg/collection"
	"github.com/colorcity-labs/colorcity-sdk-go/pkg/erc721"
	"github.com/colorcity-labs/colorcity-sdk-go/pkg/gallery"
	"github.com/colorcity-labs/colorcity-sdk-go/pkg/gateway"
	"github.com/colorcity-labs/colorcity-sdk-go/pkg/ledger"
	"github.com/colorcity-labs/colorcity-sdk-go/pkg/shared"
	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
)

// app holds everything a command needs to talk to the ledger.
type app struct {
	logger   *zap.Logger
	operator shared.OperatorConfig
	ledger   ledger.Ledger
	resolver *collection.Resolver
	caller   common.Address
	closers  []func() error
}

func newApp(ctx context.Context, options globalOptions) (*app, error) {
	logger, err := shared.NewLogger(shared.LogConfig{
		Level:  options.logLevel,
		Format: options.logFormat,
		File:   options.logFile,
	})
	if err != nil {
		return nil, err
	}

	operator, err := operatorConfig(options)
	if err != nil {
		return nil, err
	}

	rt := &app{logger: logger, operator: operator}
	switch strings.ToLower(strings.TrimSpace(options.ledger)) {
	case ledgerLocal:
		err = rt.openLocal(ctx, options)
	case ledgerEVM, "":
		err = rt.openEVM(ctx)
	default:
		err = fmt.Errorf("unknown ledger backend %q", options.ledger)
	}
	if err != nil {
		_ = rt.Close()
		return nil, err
	}

	source, err := gateway.NewClient(gateway.Config{BaseURL: options.gatewayURL})
	if err != nil {
		_ = rt.Close()
		return nil, err
	}
	rt.resolver, err = collection.NewResolver(collection.ResolverConfig{
		Ledger:   rt.ledger,
		Source:   source,
		Notifier: gallery.NewTerminalNotifier(os.Stderr, logger),
		Logger:   logger,
	})
	if err != nil {
		_ = rt.Close()
		return nil, err
	}
	return rt, nil
}

func operatorConfig(options globalOptions) (shared.OperatorConfig, error) {
	operator, err := shared.OperatorConfigFromEnv()
	if err != nil {
		return shared.OperatorConfig{}, err
	}
	if options.network != "" {
		network, err := shared.NormalizeNetwork(options.network)
		if err != nil {
			return shared.OperatorConfig{}, err
		}
		operator.Network = network
	}
	if options.rpcURL != "" {
		operator.RPCURL = options.rpcURL
	}
	if options.contract != "" {
		operator.ContractAddress = options.contract
	}
	return operator, nil
}

func (rt *app) openLocal(ctx context.Context, options globalOptions) error {
	store, err := ledger.OpenBadgerStore(ctx, options.dbPath, rt.logger)
	if err != nil {
		return err
	}
	local, err := ledger.NewLocal(ledger.LocalConfig{Store: store, Logger: rt.logger})
	if err != nil {
		_ = store.Close()
		return err
	}
	rt.ledger = local
	rt.closers = append(rt.closers, local.Close)

	switch {
	case options.caller != "":
		rt.caller, err = shared.ParseAddress(rt.operator.Network, options.caller)
		if err != nil {
			return err
		}
	case rt.operator.PrivateKey != "":
		key, err := rt.operator.RequireSigner()
		if err != nil {
			return err
		}
		rt.caller = shared.SignerAddress(key)
	}
	return nil
}

func (rt *app) openEVM(ctx context.Context) error {
	contract, err := rt.operator.RequireContract()
	if err != nil {
		return err
	}
	backend, err := shared.DialNetwork(ctx, rt.operator.Network, rt.operator.RPCURL)
	if err != nil {
		return err
	}
	rt.closers = append(rt.closers, func() error {
		backend.Close()
		return nil
	})

	config := erc721.Config{
		Address: contract,
		Backend: backend,
		Logger:  rt.logger,
	}
	if rt.operator.PrivateKey != "" {
		key, err := rt.operator.RequireSigner()
		if err != nil {
			return err
		}
		config.Signer = key
		rt.caller = shared.SignerAddress(key)
	}

	client, err := erc721.NewClient(config)
	if err != nil {
		return err
	}
	rt.ledger = client
	return nil
}

// owner picks the account to display: the argument when given, otherwise the caller.
func (rt *app) owner(args []string) (common.Address, error) {
	if len(args) > 0 {
		return shared.ParseAddress(rt.operator.Network, args[0])
	}
	if rt.caller == (common.Address{}) {
		return common.Address{}, fmt.Errorf("no owner given and no signer configured")
	}
	return rt.caller, nil
}

func (rt *app) Close() error {
	var firstErr error
	for index := len(rt.closers) - 1; index >= 0; index-- {
		if err := rt.closers[index](); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	rt.closers = nil
	if rt.logger != nil {
		_ = rt.logger.Sync()
	}
	return firstErr
}
