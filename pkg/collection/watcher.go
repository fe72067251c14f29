package collection

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/colorcity-labs/colorcity-sdk-go/pkg/ledger"
	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
)

const DefaultWatchInterval = 15 * time.Second

type WatcherConfig struct {
	Resolver *Resolver
	Accounts AccountSource
	// Interval between account and balance checks. Defaults to DefaultWatchInterval.
	Interval time.Duration
	// OnUpdate receives every published collection, replacing the previous one.
	OnUpdate func(Collection)
	Logger   *zap.Logger
}

// Watcher keeps the collection of the current account up to date. It polls
// the account source and the account balance, re-resolving whenever either
// changes. A newer resolution cancels the one it supersedes, and only the
// latest generation is ever published.
type Watcher struct {
	resolver *Resolver
	accounts AccountSource
	interval time.Duration
	onUpdate func(Collection)
	logger   *zap.Logger

	mutex            sync.Mutex
	owner            common.Address
	balance          *big.Int
	generation       uint64
	cancelResolution context.CancelFunc
	latest           Collection
	hasLatest        bool

	publishMutex sync.Mutex
	active       sync.WaitGroup
	trigger      chan struct{}

	pollStopChannel chan struct{}
	pollDoneChannel chan struct{}
}

// NewWatcher creates a new Watcher.
func NewWatcher(config WatcherConfig) (*Watcher, error) {
	if config.Resolver == nil {
		return nil, fmt.Errorf("resolver is required")
	}
	if config.Accounts == nil {
		return nil, fmt.Errorf("account source is required")
	}

	interval := config.Interval
	if interval <= 0 {
		interval = DefaultWatchInterval
	}
	logger := config.Logger
	if logger == nil {
		logger = config.Resolver.logger
	}

	return &Watcher{
		resolver: config.Resolver,
		accounts: config.Accounts,
		interval: interval,
		onUpdate: config.OnUpdate,
		logger:   logger,
		trigger:  make(chan struct{}, 1),
	}, nil
}

// Latest returns the most recently published collection.
func (w *Watcher) Latest() (Collection, bool) {
	w.mutex.Lock()
	defer w.mutex.Unlock()
	return w.latest, w.hasLatest
}

// Trigger forces the next check to re-resolve even if nothing changed.
func (w *Watcher) Trigger() {
	w.mutex.Lock()
	w.balance = nil
	w.mutex.Unlock()

	select {
	case w.trigger <- struct{}{}:
	default:
	}
}

// Wait blocks until every resolution started so far has finished.
func (w *Watcher) Wait() {
	w.active.Wait()
}

// CheckOnce reads the current account and its balance and starts a new
// resolution when either differs from the last check. The resolution runs
// in the background and outlives ctx; only a newer resolution or
// StopPolling cancels it. A resolution that ends without publishing is
// retried by the next check.
func (w *Watcher) CheckOnce(ctx context.Context) error {
	owner, err := w.accounts.Account(ctx)
	if err != nil {
		return fmt.Errorf("failed to read current account: %w", err)
	}

	if owner == (common.Address{}) {
		w.publishMutex.Lock()
		w.mutex.Lock()
		changed := w.owner != owner || w.hasLatest
		if changed {
			w.owner = owner
			w.balance = nil
			w.generation++
			w.cancelActiveLocked()
			w.latest = Collection{}
			w.hasLatest = false
		}
		w.mutex.Unlock()
		w.publishMutex.Unlock()
		if changed {
			w.logger.Info("no account connected")
		}
		return nil
	}

	balance, err := w.resolver.ledger.BalanceOf(ctx, owner)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		callErr := &ledger.CallError{Op: "balanceOf", Err: err}
		w.resolver.notifier.Notify(ctx, owner, callErr)
		return callErr
	}

	w.mutex.Lock()
	if owner == w.owner && w.balance != nil && w.balance.Cmp(balance) == 0 {
		w.mutex.Unlock()
		return nil
	}
	w.owner = owner
	w.balance = new(big.Int).Set(balance)
	w.generation++
	generation := w.generation
	w.cancelActiveLocked()
	resolveCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	w.cancelResolution = cancel
	w.active.Add(1)
	w.mutex.Unlock()

	w.logger.Info("resolving collection",
		zap.String("owner", owner.Hex()),
		zap.String("balance", balance.String()),
		zap.Uint64("generation", generation),
	)

	go func() {
		defer w.active.Done()
		defer cancel()

		result, err := w.resolver.ResolveBalance(resolveCtx, owner, balance)
		if err != nil {
			if !errors.Is(err, context.Canceled) {
				w.logger.Error("collection resolution failed", zap.String("owner", owner.Hex()), zap.Error(err))
			}
			w.forget(generation)
			return
		}
		w.publish(generation, result)
	}()

	return nil
}

func (w *Watcher) publish(generation uint64, result Collection) {
	w.publishMutex.Lock()
	defer w.publishMutex.Unlock()

	w.mutex.Lock()
	if generation != w.generation {
		w.mutex.Unlock()
		w.logger.Debug("discarding superseded collection", zap.Uint64("generation", generation))
		return
	}
	w.latest = result
	w.hasLatest = true
	w.mutex.Unlock()

	if w.onUpdate != nil {
		w.onUpdate(result)
	}
}

// forget clears the remembered balance when the current generation ended
// without publishing, so the next check resolves again.
func (w *Watcher) forget(generation uint64) {
	w.mutex.Lock()
	defer w.mutex.Unlock()
	if generation == w.generation {
		w.balance = nil
	}
}

func (w *Watcher) cancelActive() {
	w.mutex.Lock()
	defer w.mutex.Unlock()
	w.cancelActiveLocked()
}

func (w *Watcher) cancelActiveLocked() {
	if w.cancelResolution != nil {
		w.cancelResolution()
		w.cancelResolution = nil
	}
}

// StartPolling checks immediately and then on every interval until
// StopPolling is called or ctx is done.
func (w *Watcher) StartPolling(ctx context.Context) error {
	w.mutex.Lock()
	if w.pollStopChannel != nil {
		w.mutex.Unlock()
		return fmt.Errorf("watcher polling already running")
	}
	stopChannel := make(chan struct{})
	doneChannel := make(chan struct{})
	w.pollStopChannel = stopChannel
	w.pollDoneChannel = doneChannel
	w.mutex.Unlock()

	go func() {
		defer close(doneChannel)

		ticker := time.NewTicker(w.interval)
		defer ticker.Stop()

		w.check(ctx)

		for {
			select {
			case <-ctx.Done():
				w.cancelActive()
				return
			case <-stopChannel:
				return
			case <-ticker.C:
				w.check(ctx)
			case <-w.trigger:
				w.check(ctx)
			}
		}
	}()

	return nil
}

// StopPolling stops an active polling loop and cancels any resolution in flight.
func (w *Watcher) StopPolling() {
	w.mutex.Lock()
	stopChannel := w.pollStopChannel
	doneChannel := w.pollDoneChannel
	w.pollStopChannel = nil
	w.pollDoneChannel = nil
	w.mutex.Unlock()

	if stopChannel != nil {
		close(stopChannel)
	}
	if doneChannel != nil {
		<-doneChannel
	}

	w.cancelActive()
	w.active.Wait()
}

func (w *Watcher) check(ctx context.Context) {
	if err := w.CheckOnce(ctx); err != nil && ctx.Err() == nil {
		w.logger.Warn("collection watch check failed", zap.Error(err))
	}
}
