package erc721

import (
	"context"
	"fmt"
	"math/big"
	"sync"
	"testing"
	"time"

	"github.com/colorcity-labs/colorcity-sdk-go/pkg/ledger"
	"github.com/colorcity-labs/colorcity-sdk-go/pkg/metadata"
	"github.com/colorcity-labs/colorcity-sdk-go/pkg/shared"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/require"
)

const hardhatKey = "ac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"

var contractAddress = common.HexToAddress("0x5FbDB2315678afecb367f032d93F642f64180aa3")

// fakeChain answers ABI encoded calls and transactions against a local ledger.
type fakeChain struct {
	mutex        sync.Mutex
	contract     common.Address
	ledger       *ledger.Local
	chainID      *big.Int
	nonces       map[common.Address]uint64
	receipts     map[common.Hash]*types.Receipt
	sent         []*types.Transaction
	pendingPolls int
}

func newFakeChain(t *testing.T) *fakeChain {
	t.Helper()
	local, err := ledger.NewLocal(ledger.LocalConfig{})
	require.NoError(t, err)
	return &fakeChain{
		contract: contractAddress,
		ledger:   local,
		chainID:  big.NewInt(31337),
		nonces:   map[common.Address]uint64{},
		receipts: map[common.Hash]*types.Receipt{},
	}
}

func (f *fakeChain) CallContract(ctx context.Context, call ethereum.CallMsg, _ *big.Int) ([]byte, error) {
	if call.To == nil || *call.To != f.contract {
		return nil, nil
	}
	method, err := colorCityABI.MethodById(call.Data[:4])
	if err != nil {
		return nil, err
	}
	args, err := method.Inputs.Unpack(call.Data[4:])
	if err != nil {
		return nil, err
	}

	var result any
	switch method.Name {
	case methodName:
		result = "ColorCityNFT"
	case methodSymbol:
		result = "CCN"
	case methodTotalSupply:
		result, err = f.ledger.TotalSupply(ctx)
	case methodBalanceOf:
		result, err = f.ledger.BalanceOf(ctx, args[0].(common.Address))
	case methodOwnerOf:
		result, err = f.ledger.OwnerOf(ctx, args[0].(*big.Int))
	case methodTokenOfOwnerByIndex:
		result, err = f.ledger.TokenOfOwnerByIndex(ctx, args[0].(common.Address), args[1].(*big.Int))
	case methodTokenURI:
		result, err = f.ledger.TokenURI(ctx, args[0].(*big.Int))
	default:
		return nil, fmt.Errorf("unexpected call to %s", method.Name)
	}
	if err != nil {
		return nil, fmt.Errorf("execution reverted: %v", err)
	}
	return method.Outputs.Pack(result)
}

func (f *fakeChain) ChainID(context.Context) (*big.Int, error) {
	return f.chainID, nil
}

func (f *fakeChain) PendingNonceAt(_ context.Context, account common.Address) (uint64, error) {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	return f.nonces[account], nil
}

func (f *fakeChain) SuggestGasTipCap(context.Context) (*big.Int, error) {
	return big.NewInt(1_000_000_000), nil
}

func (f *fakeChain) HeaderByNumber(context.Context, *big.Int) (*types.Header, error) {
	return &types.Header{Number: big.NewInt(10), BaseFee: big.NewInt(2_000_000_000)}, nil
}

func (f *fakeChain) EstimateGas(context.Context, ethereum.CallMsg) (uint64, error) {
	return 100_000, nil
}

func (f *fakeChain) SendTransaction(ctx context.Context, tx *types.Transaction) error {
	sender, err := types.Sender(types.LatestSignerForChainID(f.chainID), tx)
	if err != nil {
		return err
	}

	f.mutex.Lock()
	defer f.mutex.Unlock()

	f.sent = append(f.sent, tx)
	f.nonces[sender]++

	receipt := &types.Receipt{
		TxHash:      tx.Hash(),
		BlockHash:   crypto.Keccak256Hash(tx.Hash().Bytes()),
		BlockNumber: big.NewInt(11),
		Status:      types.ReceiptStatusSuccessful,
	}
	minted, err := f.ledger.MintItem(ctx, ledger.MintOptions{Caller: sender, Value: tx.Value()})
	if err != nil {
		receipt.Status = types.ReceiptStatusFailed
	} else {
		receipt.Logs = []*types.Log{{
			Address: f.contract,
			Topics: []common.Hash{
				colorCityABI.Events[eventTransfer].ID,
				{},
				common.BytesToHash(sender.Bytes()),
				common.BigToHash(minted.TokenID),
			},
		}}
	}
	f.receipts[tx.Hash()] = receipt
	return nil
}

func (f *fakeChain) TransactionReceipt(_ context.Context, hash common.Hash) (*types.Receipt, error) {
	f.mutex.Lock()
	defer f.mutex.Unlock()

	if f.pendingPolls > 0 {
		f.pendingPolls--
		return nil, ethereum.NotFound
	}
	receipt, ok := f.receipts[hash]
	if !ok {
		return nil, ethereum.NotFound
	}
	return receipt, nil
}

func newSignedClient(t *testing.T, chain *fakeChain) *Client {
	t.Helper()
	key, err := shared.ParsePrivateKey(hardhatKey)
	require.NoError(t, err)

	client, err := NewClient(Config{
		Address:             contractAddress,
		Backend:             chain,
		Signer:              key,
		ReceiptPollInterval: time.Millisecond,
	})
	require.NoError(t, err)
	return client
}

func TestNewClientValidation(t *testing.T) {
	_, err := NewClient(Config{Backend: newFakeChain(t)})
	require.Error(t, err)

	_, err = NewClient(Config{Address: contractAddress})
	require.Error(t, err)

	_, err = NewClient(Config{Address: contractAddress, Backend: newFakeChain(t), MintPrice: big.NewInt(-1)})
	require.Error(t, err)

	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	readOnly := callOnlyBackend{newFakeChain(t)}
	_, err = NewClient(Config{Address: contractAddress, Backend: readOnly, Signer: key})
	require.Error(t, err)

	client, err := NewClient(Config{Address: contractAddress, Backend: readOnly})
	require.NoError(t, err)
	require.Equal(t, contractAddress, client.Address())
	require.Zero(t, ledger.DefaultMintPrice.Cmp(client.MintPrice()))
}

type callOnlyBackend struct {
	chain *fakeChain
}

func (b callOnlyBackend) CallContract(ctx context.Context, call ethereum.CallMsg, block *big.Int) ([]byte, error) {
	return b.chain.CallContract(ctx, call, block)
}

func TestClientReads(t *testing.T) {
	ctx := context.Background()
	chain := newFakeChain(t)
	owner := common.HexToAddress("0x70997970C51812dc3A010C7d01b50e0d17dc79C8")
	for i := 0; i < 2; i++ {
		_, err := chain.ledger.MintItem(ctx, ledger.MintOptions{Caller: owner})
		require.NoError(t, err)
	}

	client, err := NewClient(Config{Address: contractAddress, Backend: callOnlyBackend{chain}})
	require.NoError(t, err)

	name, err := client.Name(ctx)
	require.NoError(t, err)
	require.Equal(t, "ColorCityNFT", name)

	symbol, err := client.Symbol(ctx)
	require.NoError(t, err)
	require.Equal(t, "CCN", symbol)

	supply, err := client.TotalSupply(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(2), supply.Int64())

	balance, err := client.BalanceOf(ctx, owner)
	require.NoError(t, err)
	require.Equal(t, int64(2), balance.Int64())

	tokenID, err := client.TokenOfOwnerByIndex(ctx, owner, big.NewInt(1))
	require.NoError(t, err)
	require.Equal(t, int64(2), tokenID.Int64())

	tokenOwner, err := client.OwnerOf(ctx, tokenID)
	require.NoError(t, err)
	require.Equal(t, owner, tokenOwner)

	uri, err := client.TokenURI(ctx, tokenID)
	require.NoError(t, err)
	decoded, err := metadata.Decode(uri)
	require.NoError(t, err)
	require.Equal(t, "Color City #2", decoded.Name)
}

func TestClientReadErrors(t *testing.T) {
	ctx := context.Background()
	chain := newFakeChain(t)

	client, err := NewClient(Config{Address: contractAddress, Backend: chain})
	require.NoError(t, err)

	_, err = client.TokenURI(ctx, big.NewInt(404))
	require.ErrorContains(t, err, "reverted")

	_, err = client.BalanceOf(ctx, common.Address{})
	require.ErrorIs(t, err, ledger.ErrInvalidOwner)

	other, err := NewClient(Config{Address: common.HexToAddress("0x1"), Backend: chain})
	require.NoError(t, err)
	_, err = other.TotalSupply(ctx)
	require.ErrorContains(t, err, "returned no data")
}

func TestMintItem(t *testing.T) {
	ctx := context.Background()
	chain := newFakeChain(t)
	chain.pendingPolls = 2
	client := newSignedClient(t, chain)
	signer := shared.SignerAddress(client.signer)

	before, err := client.BalanceOf(ctx, signer)
	require.NoError(t, err)

	response, err := client.MintItem(ctx, ledger.MintOptions{})
	require.NoError(t, err)
	require.Equal(t, int64(1), response.TokenID.Int64())
	require.Equal(t, signer, response.Owner)
	require.Equal(t, uint64(11), response.BlockNumber)
	require.NotEqual(t, common.Hash{}, response.BlockHash)

	after, err := client.BalanceOf(ctx, signer)
	require.NoError(t, err)
	require.Zero(t, new(big.Int).Add(before, big.NewInt(1)).Cmp(after))

	require.Len(t, chain.sent, 1)
	sent := chain.sent[0]
	require.Zero(t, ledger.DefaultMintPrice.Cmp(sent.Value()))
	require.Equal(t, uint64(120_000), sent.Gas())
	require.Equal(t, int64(5_000_000_000), sent.GasFeeCap().Int64())
	require.Equal(t, contractAddress, *sent.To())

	second, err := client.MintItem(ctx, ledger.MintOptions{Caller: signer})
	require.NoError(t, err)
	require.Equal(t, int64(2), second.TokenID.Int64())
	require.Equal(t, uint64(1), chain.sent[1].Nonce())
}

func TestMintItemFailures(t *testing.T) {
	ctx := context.Background()
	chain := newFakeChain(t)

	readOnly, err := NewClient(Config{Address: contractAddress, Backend: chain})
	require.NoError(t, err)
	_, err = readOnly.MintItem(ctx, ledger.MintOptions{})
	require.ErrorIs(t, err, ledger.ErrSignerRequired)

	client := newSignedClient(t, chain)
	_, err = client.MintItem(ctx, ledger.MintOptions{Caller: common.HexToAddress("0x1234")})
	require.ErrorIs(t, err, ledger.ErrCallerMismatch)

	_, err = client.MintItem(ctx, ledger.MintOptions{Value: big.NewInt(1)})
	require.ErrorContains(t, err, "reverted")
}

func TestMintItemWaitHonoursContext(t *testing.T) {
	chain := newFakeChain(t)
	chain.pendingPolls = 1 << 30
	client := newSignedClient(t, chain)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := client.MintItem(ctx, ledger.MintOptions{})
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestBuildMintTx(t *testing.T) {
	tx, err := BuildMintTx(big.NewInt(1), contractAddress, 3, big.NewInt(1), big.NewInt(2), 21000, ledger.DefaultMintPrice)
	require.NoError(t, err)
	require.Equal(t, uint64(3), tx.Nonce())
	require.Equal(t, colorCityABI.Methods[methodMintItem].ID, tx.Data())

	_, err = BuildMintTx(nil, contractAddress, 0, nil, nil, 0, nil)
	require.Error(t, err)

	_, err = BuildMintTx(big.NewInt(1), common.Address{}, 0, nil, nil, 0, nil)
	require.Error(t, err)
}
