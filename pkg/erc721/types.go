package erc721

import (
	"context"
	"crypto/ecdsa"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"go.uber.org/zap"
)

// CallBackend executes read-only contract calls. *ethclient.Client satisfies it.
type CallBackend interface {
	CallContract(ctx context.Context, call ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
}

// TransactBackend is the node surface needed to sign, send and confirm a mint.
type TransactBackend interface {
	CallBackend
	ChainID(ctx context.Context) (*big.Int, error)
	PendingNonceAt(ctx context.Context, account common.Address) (uint64, error)
	SuggestGasTipCap(ctx context.Context) (*big.Int, error)
	HeaderByNumber(ctx context.Context, number *big.Int) (*types.Header, error)
	EstimateGas(ctx context.Context, call ethereum.CallMsg) (uint64, error)
	SendTransaction(ctx context.Context, tx *types.Transaction) error
	TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error)
}

type Config struct {
	Address common.Address
	Backend CallBackend
	// Signer is required for MintItem; Backend must then implement TransactBackend.
	Signer *ecdsa.PrivateKey
	// MintPrice defaults to 0.05 ether.
	MintPrice           *big.Int
	ReceiptPollInterval time.Duration
	// GasMarginPercent is added on top of the node's gas estimate. Defaults to 20.
	GasMarginPercent uint64
	Logger           *zap.Logger
}
