package ledger

import (
	"context"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// Reader is the read surface of the token ledger used to enumerate an
// owner's tokens.
type Reader interface {
	BalanceOf(ctx context.Context, owner common.Address) (*big.Int, error)
	TokenOfOwnerByIndex(ctx context.Context, owner common.Address, index *big.Int) (*big.Int, error)
	TokenURI(ctx context.Context, tokenID *big.Int) (string, error)
}

// Minter creates a new token owned by the caller.
type Minter interface {
	MintItem(ctx context.Context, options MintOptions) (MintResponse, error)
}

type Ledger interface {
	Reader
	Minter
	OwnerOf(ctx context.Context, tokenID *big.Int) (common.Address, error)
	TotalSupply(ctx context.Context) (*big.Int, error)
}

type MintOptions struct {
	// Caller becomes the owner of the minted token. Ledgers bound to a
	// signing key reject a caller different from the signer.
	Caller common.Address
	// Value is the payment sent with the mint. Nil means the ledger's mint price.
	Value *big.Int
}

type MintResponse struct {
	TokenID         *big.Int
	Owner           common.Address
	TransactionHash common.Hash
	BlockHash       common.Hash
	BlockNumber     uint64
}

// Token is a minted token as recorded by the local ledger.
type Token struct {
	ID       uint64
	Owner    common.Address
	URI      string
	MintedAt time.Time
}
