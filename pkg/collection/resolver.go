package collection

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/colorcity-labs/colorcity-sdk-go/pkg/ledger"
	"github.com/colorcity-labs/colorcity-sdk-go/pkg/metadata"
	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
)

type ResolverConfig struct {
	Ledger ledger.Reader
	// Source decodes token URIs. Defaults to metadata.Codec.
	Source   metadata.Source
	Notifier Notifier
	Logger   *zap.Logger
	// DisableMetrics stops the resolver from updating the colorcity_collection_* series.
	DisableMetrics bool
}

// Resolver assembles an owner's collection from the ledger.
type Resolver struct {
	ledger   ledger.Reader
	source   metadata.Source
	notifier Notifier
	logger   *zap.Logger
	metrics  bool
}

// NewResolver creates a new Resolver.
func NewResolver(config ResolverConfig) (*Resolver, error) {
	if config.Ledger == nil {
		return nil, fmt.Errorf("ledger reader is required")
	}

	resolver := &Resolver{
		ledger:   config.Ledger,
		source:   config.Source,
		notifier: config.Notifier,
		logger:   config.Logger,
		metrics:  !config.DisableMetrics,
	}
	if resolver.source == nil {
		resolver.source = metadata.Codec{}
	}
	if resolver.notifier == nil {
		resolver.notifier = nopNotifier{}
	}
	if resolver.logger == nil {
		resolver.logger = zap.NewNop()
	}
	return resolver, nil
}

// Resolve reads the balance of owner and resolves every token it holds.
// A failed balance read is returned as a *ledger.CallError.
func (r *Resolver) Resolve(ctx context.Context, owner common.Address) (Collection, error) {
	started := time.Now()
	if err := ctx.Err(); err != nil {
		return Collection{}, err
	}

	balance, err := r.ledger.BalanceOf(ctx, owner)
	if err != nil {
		if ctx.Err() != nil {
			return Collection{}, ctx.Err()
		}
		callErr := &ledger.CallError{Op: "balanceOf", Err: err}
		r.notifier.Notify(ctx, owner, callErr)
		r.logger.Error("failed to read balance", zap.String("owner", owner.Hex()), zap.Error(err))
		r.observe("error", started)
		return Collection{}, callErr
	}

	return r.resolve(ctx, owner, balance, started)
}

// ResolveBalance resolves owner indexes [0, balance) one read at a time.
// Indexes whose ledger reads or metadata fail are recorded in Failures and
// skipped. Items come back most recently minted first.
func (r *Resolver) ResolveBalance(ctx context.Context, owner common.Address, balance *big.Int) (Collection, error) {
	return r.resolve(ctx, owner, balance, time.Now())
}

func (r *Resolver) resolve(
	ctx context.Context,
	owner common.Address,
	balance *big.Int,
	started time.Time,
) (Collection, error) {
	if balance == nil || balance.Sign() < 0 {
		return Collection{}, fmt.Errorf("invalid balance %v", balance)
	}
	if !balance.IsUint64() {
		return Collection{}, fmt.Errorf("balance %s is too large to enumerate", balance)
	}

	count := balance.Uint64()
	result := Collection{
		Owner:   owner,
		Balance: new(big.Int).Set(balance),
		Items:   make([]Collectible, 0, count),
	}

	for index := uint64(0); index < count; index++ {
		if err := ctx.Err(); err != nil {
			r.observe("canceled", started)
			return Collection{}, err
		}

		item, failure := r.resolveIndex(ctx, owner, index)
		if err := ctx.Err(); err != nil {
			r.observe("canceled", started)
			return Collection{}, err
		}
		if failure != nil {
			result.Failures = append(result.Failures, *failure)
			continue
		}
		result.Items = append(result.Items, item)
	}

	reverse(result.Items)

	r.logger.Debug("resolved collection",
		zap.String("owner", owner.Hex()),
		zap.Uint64("balance", count),
		zap.Int("items", len(result.Items)),
		zap.Int("failures", len(result.Failures)),
	)
	if r.metrics {
		itemsResolvedTotal.Add(float64(len(result.Items)))
	}
	r.observe("success", started)
	return result, nil
}

func (r *Resolver) resolveIndex(ctx context.Context, owner common.Address, index uint64) (Collectible, *Failure) {
	position := new(big.Int).SetUint64(index)

	tokenID, err := r.ledger.TokenOfOwnerByIndex(ctx, owner, position)
	if err != nil {
		return Collectible{}, r.ledgerFailure(ctx, owner, index, &ledger.CallError{
			Op:    "tokenOfOwnerByIndex",
			Index: position,
			Err:   err,
		})
	}

	uri, err := r.ledger.TokenURI(ctx, tokenID)
	if err != nil {
		return Collectible{}, r.ledgerFailure(ctx, owner, index, &ledger.CallError{
			Op:      "tokenURI",
			TokenID: tokenID,
			Err:     err,
		})
	}

	decoded, err := r.source.Resolve(ctx, uri)
	if err != nil {
		r.logger.Warn("skipping token with malformed metadata",
			zap.String("owner", owner.Hex()),
			zap.String("token_id", tokenID.String()),
			zap.Error(err),
		)
		if r.metrics {
			itemFailuresTotal.WithLabelValues("decode").Inc()
		}
		return Collectible{}, &Failure{Index: index, TokenID: tokenID, Err: err}
	}

	return Collectible{
		ID:       tokenID,
		URI:      uri,
		Owner:    owner,
		Metadata: decoded,
	}, nil
}

func (r *Resolver) ledgerFailure(ctx context.Context, owner common.Address, index uint64, callErr *ledger.CallError) *Failure {
	if ctx.Err() == nil {
		r.notifier.Notify(ctx, owner, callErr)
		r.logger.Error("ledger call failed", zap.String("owner", owner.Hex()), zap.Error(callErr))
		if r.metrics {
			itemFailuresTotal.WithLabelValues("ledger").Inc()
		}
	}
	return &Failure{Index: index, TokenID: callErr.TokenID, Err: callErr}
}

func (r *Resolver) observe(result string, started time.Time) {
	if !r.metrics {
		return
	}
	resolutionsTotal.WithLabelValues(result).Inc()
	resolveDuration.Observe(time.Since(started).Seconds())
}

func reverse(items []Collectible) {
	for left, right := 0, len(items)-1; left < right; left, right = left+1, right-1 {
		items[left], items[right] = items[right], items[left]
	}
}
