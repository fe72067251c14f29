package ledger

import (
	"context"
	"encoding/binary"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/colorcity-labs/colorcity-sdk-go/pkg/metadata"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"go.uber.org/zap"
)

// DefaultMintPrice is the fixed 0.05 ether charged by mintItem.
var DefaultMintPrice = new(big.Int).Mul(big.NewInt(5), big.NewInt(1e16))

type LocalConfig struct {
	Store     Store
	MintPrice *big.Int
	// Describe builds the metadata embedded in a freshly minted token's URI.
	Describe func(token Token) metadata.Metadata
	Now      func() time.Time
	Logger   *zap.Logger
}

// Local is an in-process ledger that follows the ColorCityNFT contract
// rules: sequential IDs starting at 1, a fixed mint price, an immutable URI
// written at mint time and ERC-721 enumeration by owner index.
type Local struct {
	mutex     sync.Mutex
	store     Store
	mintPrice *big.Int
	describe  func(token Token) metadata.Metadata
	now       func() time.Time
	logger    *zap.Logger
}

var _ Ledger = (*Local)(nil)

// NewLocal creates a local ledger. A nil Store selects NewMemoryStore.
func NewLocal(config LocalConfig) (*Local, error) {
	store := config.Store
	if store == nil {
		store = NewMemoryStore()
	}
	mintPrice := config.MintPrice
	if mintPrice == nil {
		mintPrice = DefaultMintPrice
	}
	if mintPrice.Sign() < 0 {
		return nil, fmt.Errorf("mint price cannot be negative")
	}
	describe := config.Describe
	if describe == nil {
		describe = ColorCityMetadata
	}
	now := config.Now
	if now == nil {
		now = time.Now
	}
	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Local{
		store:     store,
		mintPrice: new(big.Int).Set(mintPrice),
		describe:  describe,
		now:       now,
		logger:    logger,
	}, nil
}

// MintPrice returns the payment required by MintItem.
func (l *Local) MintPrice() *big.Int {
	return new(big.Int).Set(l.mintPrice)
}

func (l *Local) MintItem(ctx context.Context, options MintOptions) (MintResponse, error) {
	if err := ctx.Err(); err != nil {
		return MintResponse{}, err
	}
	if options.Caller == (common.Address{}) {
		return MintResponse{}, ErrInvalidOwner
	}
	value := options.Value
	if value == nil {
		value = l.mintPrice
	}
	if value.Cmp(l.mintPrice) < 0 {
		return MintResponse{}, fmt.Errorf("%w: sent %s, price %s", ErrInsufficientPayment, value, l.mintPrice)
	}

	l.mutex.Lock()
	defer l.mutex.Unlock()

	supply, err := l.store.Supply()
	if err != nil {
		return MintResponse{}, fmt.Errorf("failed to read supply: %w", err)
	}

	token := Token{
		ID:       supply + 1,
		Owner:    options.Caller,
		MintedAt: l.now().UTC(),
	}
	uri, err := metadata.Encode(l.describe(token))
	if err != nil {
		return MintResponse{}, fmt.Errorf("failed to build token URI: %w", err)
	}
	token.URI = uri

	if err := l.store.AppendToken(token); err != nil {
		return MintResponse{}, fmt.Errorf("failed to store token %d: %w", token.ID, err)
	}

	l.logger.Info("minted token",
		zap.Uint64("token_id", token.ID),
		zap.String("owner", token.Owner.Hex()),
	)

	return MintResponse{
		TokenID:         new(big.Int).SetUint64(token.ID),
		Owner:           token.Owner,
		TransactionHash: mintHash(token),
		BlockNumber:     token.ID,
	}, nil
}

func (l *Local) BalanceOf(ctx context.Context, owner common.Address) (*big.Int, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if owner == (common.Address{}) {
		return nil, ErrInvalidOwner
	}
	balance, err := l.store.BalanceOf(owner)
	if err != nil {
		return nil, err
	}
	return new(big.Int).SetUint64(balance), nil
}

func (l *Local) TokenOfOwnerByIndex(ctx context.Context, owner common.Address, index *big.Int) (*big.Int, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if index == nil || index.Sign() < 0 || !index.IsUint64() {
		return nil, ErrIndexOutOfBounds
	}
	id, ok, err := l.store.TokenOfOwnerByIndex(owner, index.Uint64())
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrIndexOutOfBounds
	}
	return new(big.Int).SetUint64(id), nil
}

func (l *Local) TokenURI(ctx context.Context, tokenID *big.Int) (string, error) {
	token, err := l.readToken(ctx, tokenID)
	if err != nil {
		return "", err
	}
	return token.URI, nil
}

func (l *Local) OwnerOf(ctx context.Context, tokenID *big.Int) (common.Address, error) {
	token, err := l.readToken(ctx, tokenID)
	if err != nil {
		return common.Address{}, err
	}
	return token.Owner, nil
}

func (l *Local) TotalSupply(ctx context.Context) (*big.Int, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	supply, err := l.store.Supply()
	if err != nil {
		return nil, err
	}
	return new(big.Int).SetUint64(supply), nil
}

// Close releases the underlying store.
func (l *Local) Close() error {
	return l.store.Close()
}

func (l *Local) readToken(ctx context.Context, tokenID *big.Int) (*Token, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if tokenID == nil || tokenID.Sign() <= 0 || !tokenID.IsUint64() {
		return nil, ErrNonexistentToken
	}
	token, err := l.store.ReadToken(tokenID.Uint64())
	if err != nil {
		return nil, err
	}
	if token == nil {
		return nil, ErrNonexistentToken
	}
	return token, nil
}

func mintHash(token Token) common.Hash {
	id := make([]byte, 8)
	binary.BigEndian.PutUint64(id, token.ID)
	return crypto.Keccak256Hash(id, token.Owner.Bytes())
}
