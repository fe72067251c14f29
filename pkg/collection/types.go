package collection

import (
	"context"
	"encoding/json"
	"math/big"

	"github.com/colorcity-labs/colorcity-sdk-go/pkg/metadata"
	"github.com/ethereum/go-ethereum/common"
)

// Collectible is one decoded token held by the resolved owner.
type Collectible struct {
	ID    *big.Int       `json:"id"`
	URI   string         `json:"uri"`
	Owner common.Address `json:"owner"`
	metadata.Metadata
}

// Collection is the derived view of everything an owner holds. Items are
// ordered most recently minted first.
type Collection struct {
	Owner    common.Address `json:"owner"`
	Balance  *big.Int       `json:"balance"`
	Items    []Collectible  `json:"items"`
	Failures []Failure      `json:"failures,omitempty"`
}

// Len returns the number of resolved items.
func (c Collection) Len() int {
	return len(c.Items)
}

// Failure records an owner index that was skipped during resolution.
type Failure struct {
	Index   uint64
	TokenID *big.Int
	Err     error
}

func (f Failure) MarshalJSON() ([]byte, error) {
	message := ""
	if f.Err != nil {
		message = f.Err.Error()
	}
	return json.Marshal(struct {
		Index   uint64   `json:"index"`
		TokenID *big.Int `json:"token_id,omitempty"`
		Error   string   `json:"error"`
	}{f.Index, f.TokenID, message})
}

// Notifier surfaces ledger call failures to whoever is looking at the collection.
type Notifier interface {
	Notify(ctx context.Context, owner common.Address, err error)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(ctx context.Context, owner common.Address, err error)

func (f NotifierFunc) Notify(ctx context.Context, owner common.Address, err error) {
	f(ctx, owner, err)
}

type nopNotifier struct{}

func (nopNotifier) Notify(context.Context, common.Address, error) {}

// AccountSource reports the account whose collection should be displayed.
// The zero address means no account is connected.
type AccountSource interface {
	Account(ctx context.Context) (common.Address, error)
}

// StaticAccount always reports the same account.
type StaticAccount common.Address

func (a StaticAccount) Account(context.Context) (common.Address, error) {
	return common.Address(a), nil
}

// AccountFunc adapts a function to AccountSource.
type AccountFunc func(ctx context.Context) (common.Address, error)

func (f AccountFunc) Account(ctx context.Context) (common.Address, error) {
	return f(ctx)
}
