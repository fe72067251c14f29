package erc721

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"math/big"
	"time"

	"github.com/colorcity-labs/colorcity-sdk-go/pkg/ledger"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
)

// Client talks to a deployed ColorCityNFT contract.
type Client struct {
	address          common.Address
	backend          CallBackend
	transactor       TransactBackend
	signer           *ecdsa.PrivateKey
	mintPrice        *big.Int
	pollInterval     time.Duration
	gasMarginPercent uint64
	logger           *zap.Logger
}

var _ ledger.Ledger = (*Client)(nil)

// NewClient creates a new Client.
func NewClient(config Config) (*Client, error) {
	if config.Address == (common.Address{}) {
		return nil, fmt.Errorf("contract address is required")
	}
	if config.Backend == nil {
		return nil, fmt.Errorf("backend is required")
	}

	client := &Client{
		address:          config.Address,
		backend:          config.Backend,
		signer:           config.Signer,
		mintPrice:        ledger.DefaultMintPrice,
		pollInterval:     config.ReceiptPollInterval,
		gasMarginPercent: config.GasMarginPercent,
		logger:           config.Logger,
	}
	if config.MintPrice != nil {
		if config.MintPrice.Sign() < 0 {
			return nil, fmt.Errorf("mint price cannot be negative")
		}
		client.mintPrice = new(big.Int).Set(config.MintPrice)
	}
	if client.pollInterval <= 0 {
		client.pollInterval = time.Second
	}
	if client.gasMarginPercent == 0 {
		client.gasMarginPercent = 20
	}
	if client.logger == nil {
		client.logger = zap.NewNop()
	}

	if config.Signer != nil {
		transactor, ok := config.Backend.(TransactBackend)
		if !ok {
			return nil, fmt.Errorf("backend cannot send transactions")
		}
		client.transactor = transactor
	}

	return client, nil
}

// Address returns the contract address.
func (c *Client) Address() common.Address {
	return c.address
}

// MintPrice returns the value sent with MintItem by default.
func (c *Client) MintPrice() *big.Int {
	return new(big.Int).Set(c.mintPrice)
}

// Name returns the collection name.
func (c *Client) Name(ctx context.Context) (string, error) {
	var name string
	err := c.call(ctx, &name, methodName)
	return name, err
}

// Symbol returns the collection symbol.
func (c *Client) Symbol(ctx context.Context) (string, error) {
	var symbol string
	err := c.call(ctx, &symbol, methodSymbol)
	return symbol, err
}

func (c *Client) TotalSupply(ctx context.Context) (*big.Int, error) {
	var supply *big.Int
	err := c.call(ctx, &supply, methodTotalSupply)
	return supply, err
}

func (c *Client) BalanceOf(ctx context.Context, owner common.Address) (*big.Int, error) {
	if owner == (common.Address{}) {
		return nil, ledger.ErrInvalidOwner
	}
	var balance *big.Int
	err := c.call(ctx, &balance, methodBalanceOf, owner)
	return balance, err
}

func (c *Client) OwnerOf(ctx context.Context, tokenID *big.Int) (common.Address, error) {
	var owner common.Address
	err := c.call(ctx, &owner, methodOwnerOf, tokenID)
	return owner, err
}

func (c *Client) TokenOfOwnerByIndex(ctx context.Context, owner common.Address, index *big.Int) (*big.Int, error) {
	var tokenID *big.Int
	err := c.call(ctx, &tokenID, methodTokenOfOwnerByIndex, owner, index)
	return tokenID, err
}

func (c *Client) TokenURI(ctx context.Context, tokenID *big.Int) (string, error) {
	var uri string
	err := c.call(ctx, &uri, methodTokenURI, tokenID)
	return uri, err
}

func (c *Client) call(ctx context.Context, target any, method string, args ...any) error {
	data, err := colorCityABI.Pack(method, args...)
	if err != nil {
		return fmt.Errorf("failed to encode %s call: %w", method, err)
	}

	output, err := c.backend.CallContract(ctx, ethereum.CallMsg{
		To:   &c.address,
		Data: data,
	}, nil)
	if err != nil {
		return fmt.Errorf("%s call failed: %w", method, err)
	}
	if len(output) == 0 {
		return fmt.Errorf("%s call returned no data; is %s a ColorCityNFT contract?", method, c.address.Hex())
	}

	values, err := colorCityABI.Unpack(method, output)
	if err != nil {
		return fmt.Errorf("failed to decode %s result: %w", method, err)
	}
	if len(values) != 1 {
		return fmt.Errorf("unexpected %s result arity %d", method, len(values))
	}

	switch typed := target.(type) {
	case **big.Int:
		value, ok := values[0].(*big.Int)
		if !ok {
			return fmt.Errorf("unexpected %s result type %T", method, values[0])
		}
		*typed = value
	case *string:
		value, ok := values[0].(string)
		if !ok {
			return fmt.Errorf("unexpected %s result type %T", method, values[0])
		}
		*typed = value
	case *common.Address:
		value, ok := values[0].(common.Address)
		if !ok {
			return fmt.Errorf("unexpected %s result type %T", method, values[0])
		}
		*typed = value
	default:
		return fmt.Errorf("unsupported result target %T", target)
	}
	return nil
}
