package collection

import (
	"context"
	"errors"
	"math/big"
	"sync"
	"testing"

	"github.com/colorcity-labs/colorcity-sdk-go/pkg/ledger"
	"github.com/colorcity-labs/colorcity-sdk-go/pkg/metadata"
	"github.com/ethereum/go-ethereum/common"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

var (
	alice = common.HexToAddress("0x00000000000000000000000000000000000a11ce")
	bob   = common.HexToAddress("0x0000000000000000000000000000000000000b0b")
)

// fakeReader is an in-memory ledger.Reader with per-call failure injection.
type fakeReader struct {
	mutex      sync.Mutex
	owned      map[common.Address][]int64
	uris       map[int64]string
	balanceErr error
	indexErr   map[uint64]error
	uriErr     map[int64]error
	block      map[common.Address]chan struct{}
}

func newFakeReader() *fakeReader {
	return &fakeReader{
		owned:    map[common.Address][]int64{},
		uris:     map[int64]string{},
		indexErr: map[uint64]error{},
		uriErr:   map[int64]error{},
		block:    map[common.Address]chan struct{}{},
	}
}

func (f *fakeReader) give(t *testing.T, owner common.Address, tokenID int64, name string) {
	t.Helper()
	uri, err := metadata.Encode(metadata.Metadata{Name: name})
	require.NoError(t, err)
	f.giveURI(owner, tokenID, uri)
}

func (f *fakeReader) giveURI(owner common.Address, tokenID int64, uri string) {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	f.owned[owner] = append(f.owned[owner], tokenID)
	f.uris[tokenID] = uri
}

func (f *fakeReader) BalanceOf(_ context.Context, owner common.Address) (*big.Int, error) {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	if f.balanceErr != nil {
		return nil, f.balanceErr
	}
	return big.NewInt(int64(len(f.owned[owner]))), nil
}

func (f *fakeReader) TokenOfOwnerByIndex(ctx context.Context, owner common.Address, index *big.Int) (*big.Int, error) {
	f.mutex.Lock()
	gate := f.block[owner]
	f.mutex.Unlock()
	if gate != nil {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-gate:
		}
	}

	f.mutex.Lock()
	defer f.mutex.Unlock()
	if err := f.indexErr[index.Uint64()]; err != nil {
		return nil, err
	}
	tokens := f.owned[owner]
	if index.Uint64() >= uint64(len(tokens)) {
		return nil, ledger.ErrIndexOutOfBounds
	}
	return big.NewInt(tokens[index.Uint64()]), nil
}

func (f *fakeReader) TokenURI(_ context.Context, tokenID *big.Int) (string, error) {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	if err := f.uriErr[tokenID.Int64()]; err != nil {
		return "", err
	}
	uri, ok := f.uris[tokenID.Int64()]
	if !ok {
		return "", ledger.ErrNonexistentToken
	}
	return uri, nil
}

type recordingNotifier struct {
	mutex  sync.Mutex
	errors []error
}

func (n *recordingNotifier) Notify(_ context.Context, _ common.Address, err error) {
	n.mutex.Lock()
	defer n.mutex.Unlock()
	n.errors = append(n.errors, err)
}

func (n *recordingNotifier) count() int {
	n.mutex.Lock()
	defer n.mutex.Unlock()
	return len(n.errors)
}

func newTestResolver(t *testing.T, reader ledger.Reader, notifier Notifier) *Resolver {
	t.Helper()
	resolver, err := NewResolver(ResolverConfig{Ledger: reader, Notifier: notifier})
	require.NoError(t, err)
	return resolver
}

func itemIDs(collection Collection) []int64 {
	ids := make([]int64, 0, len(collection.Items))
	for _, item := range collection.Items {
		ids = append(ids, item.ID.Int64())
	}
	return ids
}

func TestNewResolverRequiresLedger(t *testing.T) {
	_, err := NewResolver(ResolverConfig{})
	require.Error(t, err)
}

func TestResolveReturnsMostRecentFirst(t *testing.T) {
	reader := newFakeReader()
	reader.give(t, alice, 5, "Five")
	reader.give(t, alice, 9, "Nine")

	collection, err := newTestResolver(t, reader, nil).Resolve(context.Background(), alice)
	require.NoError(t, err)
	require.Equal(t, alice, collection.Owner)
	require.Equal(t, int64(2), collection.Balance.Int64())
	require.Equal(t, []int64{9, 5}, itemIDs(collection))
	require.Equal(t, "Nine", collection.Items[0].Name)
	require.Equal(t, "Five", collection.Items[1].Name)
	require.Equal(t, alice, collection.Items[0].Owner)
	require.Empty(t, collection.Failures)
}

func TestResolveEmptyCollection(t *testing.T) {
	collection, err := newTestResolver(t, newFakeReader(), nil).Resolve(context.Background(), bob)
	require.NoError(t, err)
	require.Zero(t, collection.Len())
	require.NotNil(t, collection.Items)
	require.Zero(t, collection.Balance.Sign())
}

func TestResolveSkipsMalformedMetadata(t *testing.T) {
	reader := newFakeReader()
	reader.give(t, alice, 1, "One")
	reader.giveURI(alice, 2, metadata.DataURIPrefix+"!!!not-base64")
	reader.giveURI(alice, 3, "https://example.com/3.json")
	reader.give(t, alice, 4, "Four")

	notifier := &recordingNotifier{}
	before := testutil.ToFloat64(itemFailuresTotal.WithLabelValues("decode"))

	collection, err := newTestResolver(t, reader, notifier).Resolve(context.Background(), alice)
	require.NoError(t, err)
	require.Equal(t, []int64{4, 1}, itemIDs(collection))
	require.Len(t, collection.Failures, 2)
	require.Equal(t, uint64(1), collection.Failures[0].Index)
	require.Equal(t, int64(2), collection.Failures[0].TokenID.Int64())

	var decodeErr *metadata.DecodeError
	require.ErrorAs(t, collection.Failures[0].Err, &decodeErr)
	require.ErrorAs(t, collection.Failures[1].Err, &decodeErr)
	require.Zero(t, notifier.count())
	require.Equal(t, before+2, testutil.ToFloat64(itemFailuresTotal.WithLabelValues("decode")))
}

func TestResolveRecordsLedgerFailuresAndContinues(t *testing.T) {
	reader := newFakeReader()
	reader.give(t, alice, 1, "One")
	reader.give(t, alice, 2, "Two")
	reader.give(t, alice, 3, "Three")
	rpcDown := errors.New("connection refused")
	reader.indexErr[0] = rpcDown
	reader.uriErr[3] = rpcDown

	notifier := &recordingNotifier{}
	collection, err := newTestResolver(t, reader, notifier).Resolve(context.Background(), alice)
	require.NoError(t, err)
	require.Equal(t, []int64{2}, itemIDs(collection))
	require.Len(t, collection.Failures, 2)
	require.Equal(t, 2, notifier.count())

	var callErr *ledger.CallError
	require.ErrorAs(t, collection.Failures[0].Err, &callErr)
	require.Equal(t, "tokenOfOwnerByIndex", callErr.Op)
	require.Equal(t, int64(0), callErr.Index.Int64())
	require.ErrorIs(t, collection.Failures[0].Err, rpcDown)

	require.ErrorAs(t, collection.Failures[1].Err, &callErr)
	require.Equal(t, "tokenURI", callErr.Op)
	require.Equal(t, int64(3), callErr.TokenID.Int64())
	require.Equal(t, int64(3), collection.Failures[1].TokenID.Int64())
}

func TestResolveBalanceFailureHalts(t *testing.T) {
	reader := newFakeReader()
	reader.give(t, alice, 1, "One")
	reader.balanceErr = errors.New("rate limited")

	notifier := &recordingNotifier{}
	_, err := newTestResolver(t, reader, notifier).Resolve(context.Background(), alice)

	var callErr *ledger.CallError
	require.ErrorAs(t, err, &callErr)
	require.Equal(t, "balanceOf", callErr.Op)
	require.ErrorIs(t, err, reader.balanceErr)
	require.Equal(t, 1, notifier.count())
}

func TestResolveBalanceValidation(t *testing.T) {
	resolver := newTestResolver(t, newFakeReader(), nil)

	_, err := resolver.ResolveBalance(context.Background(), alice, nil)
	require.Error(t, err)

	_, err = resolver.ResolveBalance(context.Background(), alice, big.NewInt(-1))
	require.Error(t, err)

	huge := new(big.Int).Lsh(big.NewInt(1), 70)
	_, err = resolver.ResolveBalance(context.Background(), alice, huge)
	require.Error(t, err)
}

func TestResolveStaleBalanceReportsOutOfBounds(t *testing.T) {
	reader := newFakeReader()
	reader.give(t, alice, 1, "One")

	collection, err := newTestResolver(t, reader, nil).ResolveBalance(context.Background(), alice, big.NewInt(2))
	require.NoError(t, err)
	require.Equal(t, []int64{1}, itemIDs(collection))
	require.Len(t, collection.Failures, 1)
	require.ErrorIs(t, collection.Failures[0].Err, ledger.ErrIndexOutOfBounds)
}

func TestResolveHonoursCancellation(t *testing.T) {
	reader := newFakeReader()
	reader.give(t, alice, 1, "One")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	notifier := &recordingNotifier{}
	_, err := newTestResolver(t, reader, notifier).Resolve(ctx, alice)
	require.ErrorIs(t, err, context.Canceled)
	require.Zero(t, notifier.count())
}

func TestResolveAgainstLocalLedger(t *testing.T) {
	ctx := context.Background()
	local, err := ledger.NewLocal(ledger.LocalConfig{})
	require.NoError(t, err)

	for _, caller := range []common.Address{alice, bob, alice, alice, bob} {
		_, err := local.MintItem(ctx, ledger.MintOptions{Caller: caller})
		require.NoError(t, err)
	}

	resolver := newTestResolver(t, local, nil)

	collection, err := resolver.Resolve(ctx, alice)
	require.NoError(t, err)
	require.Equal(t, []int64{4, 3, 1}, itemIDs(collection))
	require.LessOrEqual(t, int64(collection.Len()), collection.Balance.Int64())
	for _, item := range collection.Items {
		owner, err := local.OwnerOf(ctx, item.ID)
		require.NoError(t, err)
		require.Equal(t, alice, owner)
		require.Equal(t, "Color City #"+item.ID.String(), item.Name)
	}

	collection, err = resolver.Resolve(ctx, bob)
	require.NoError(t, err)
	require.Equal(t, []int64{5, 2}, itemIDs(collection))
}

func TestFailureJSON(t *testing.T) {
	failure := Failure{Index: 2, TokenID: big.NewInt(7), Err: errors.New("boom")}
	encoded, err := failure.MarshalJSON()
	require.NoError(t, err)
	require.JSONEq(t, `{"index":2,"token_id":7,"error":"boom"}`, string(encoded))
}
