package ledger

import (
	"context"
	"encoding/binary"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v3"
	"github.com/ethereum/go-ethereum/common"
	"github.com/vmihailenco/msgpack/v4"
	"go.uber.org/zap"
)

const (
	keyLedgerSupply      = "LEDGER:SUPPLY"
	prefixTokenPayload   = "TOKENS:PAYLOAD:"
	prefixTokenOwner     = "TOKENS:OWNER:"
	prefixTokenBalance   = "TOKENS:BALANCE:"
	badgerGCInterval     = 5 * time.Minute
	badgerGCDiscardRatio = 0.5
)

type tokenRecord struct {
	ID       uint64
	Owner    []byte
	URI      string
	MintedAt int64
}

// BadgerStore is a Store persisted in a badger database.
type BadgerStore struct {
	db     *badger.DB
	cancel context.CancelFunc
	done   chan struct{}
}

// OpenBadgerStore opens (or creates) the ledger database at path. An empty
// path opens an in-memory database. The value log is garbage collected in
// the background until ctx is done or the store is closed.
func OpenBadgerStore(ctx context.Context, path string, logger *zap.Logger) (*BadgerStore, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	opts := badger.DefaultOptions(path).WithLogger(badgerLogger{logger.Sugar()})
	if path == "" {
		opts = opts.WithInMemory(true)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open ledger database: %w", err)
	}

	gcCtx, cancel := context.WithCancel(ctx)
	store := &BadgerStore{
		db:     db,
		cancel: cancel,
		done:   make(chan struct{}),
	}
	go store.collectGarbage(gcCtx, logger, path == "")
	return store, nil
}

func (bs *BadgerStore) collectGarbage(ctx context.Context, logger *zap.Logger, inMemory bool) {
	defer close(bs.done)
	if inMemory {
		<-ctx.Done()
		return
	}

	ticker := time.NewTicker(badgerGCInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			lsm, vlog := bs.db.Size()
			if lsm > 1024*1024*8 || vlog > 1024*1024*32 {
				err := bs.db.RunValueLogGC(badgerGCDiscardRatio)
				logger.Debug("badger value log gc", zap.Int64("lsm", lsm), zap.Int64("vlog", vlog), zap.Error(err))
			}
		}
	}
}

func (bs *BadgerStore) Close() error {
	bs.cancel()
	<-bs.done
	return bs.db.Close()
}

func (bs *BadgerStore) Supply() (uint64, error) {
	txn := bs.db.NewTransaction(false)
	defer txn.Discard()
	return readUint64(txn, []byte(keyLedgerSupply))
}

func (bs *BadgerStore) AppendToken(token Token) error {
	return bs.db.Update(func(txn *badger.Txn) error {
		existing, err := readTokenRecord(txn, token.ID)
		if err != nil {
			return err
		}
		if existing != nil {
			return fmt.Errorf("token %d already exists", token.ID)
		}

		val, err := msgpack.Marshal(tokenRecord{
			ID:       token.ID,
			Owner:    token.Owner.Bytes(),
			URI:      token.URI,
			MintedAt: token.MintedAt.UnixNano(),
		})
		if err != nil {
			return err
		}
		if err := txn.Set(tokenPayloadKey(token.ID), val); err != nil {
			return err
		}

		balance, err := readUint64(txn, balanceKey(token.Owner))
		if err != nil {
			return err
		}
		if err := txn.Set(ownerIndexKey(token.Owner, balance), uint64ToBytes(token.ID)); err != nil {
			return err
		}
		if err := txn.Set(balanceKey(token.Owner), uint64ToBytes(balance+1)); err != nil {
			return err
		}

		supply, err := readUint64(txn, []byte(keyLedgerSupply))
		if err != nil {
			return err
		}
		if token.ID > supply {
			supply = token.ID
		}
		return txn.Set([]byte(keyLedgerSupply), uint64ToBytes(supply))
	})
}

func (bs *BadgerStore) ReadToken(id uint64) (*Token, error) {
	txn := bs.db.NewTransaction(false)
	defer txn.Discard()

	record, err := readTokenRecord(txn, id)
	if err != nil || record == nil {
		return nil, err
	}
	return &Token{
		ID:       record.ID,
		Owner:    common.BytesToAddress(record.Owner),
		URI:      record.URI,
		MintedAt: time.Unix(0, record.MintedAt).UTC(),
	}, nil
}

func (bs *BadgerStore) BalanceOf(owner common.Address) (uint64, error) {
	txn := bs.db.NewTransaction(false)
	defer txn.Discard()
	return readUint64(txn, balanceKey(owner))
}

func (bs *BadgerStore) TokenOfOwnerByIndex(owner common.Address, index uint64) (uint64, bool, error) {
	txn := bs.db.NewTransaction(false)
	defer txn.Discard()

	item, err := txn.Get(ownerIndexKey(owner, index))
	if err == badger.ErrKeyNotFound {
		return 0, false, nil
	} else if err != nil {
		return 0, false, err
	}
	val, err := item.ValueCopy(nil)
	if err != nil {
		return 0, false, err
	}
	return binary.BigEndian.Uint64(val), true, nil
}

func readTokenRecord(txn *badger.Txn, id uint64) (*tokenRecord, error) {
	item, err := txn.Get(tokenPayloadKey(id))
	if err == badger.ErrKeyNotFound {
		return nil, nil
	} else if err != nil {
		return nil, err
	}
	val, err := item.ValueCopy(nil)
	if err != nil {
		return nil, err
	}
	var record tokenRecord
	if err := msgpack.Unmarshal(val, &record); err != nil {
		return nil, err
	}
	return &record, nil
}

func readUint64(txn *badger.Txn, key []byte) (uint64, error) {
	item, err := txn.Get(key)
	if err == badger.ErrKeyNotFound {
		return 0, nil
	} else if err != nil {
		return 0, err
	}
	val, err := item.ValueCopy(nil)
	if err != nil {
		return 0, err
	}
	if len(val) != 8 {
		return 0, fmt.Errorf("corrupt counter at %s", key)
	}
	return binary.BigEndian.Uint64(val), nil
}

func tokenPayloadKey(id uint64) []byte {
	return append([]byte(prefixTokenPayload), uint64ToBytes(id)...)
}

func ownerIndexKey(owner common.Address, index uint64) []byte {
	key := append([]byte(prefixTokenOwner), owner.Bytes()...)
	return append(key, uint64ToBytes(index)...)
}

func balanceKey(owner common.Address) []byte {
	return append([]byte(prefixTokenBalance), owner.Bytes()...)
}

func uint64ToBytes(value uint64) []byte {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, value)
	return buf
}

type badgerLogger struct {
	sugar *zap.SugaredLogger
}

func (l badgerLogger) Errorf(format string, args ...interface{}) {
	l.sugar.Errorf(format, args...)
}

func (l badgerLogger) Warningf(format string, args ...interface{}) {
	l.sugar.Warnf(format, args...)
}

func (l badgerLogger) Infof(format string, args ...interface{}) {
	l.sugar.Debugf(format, args...)
}

func (l badgerLogger) Debugf(format string, args ...interface{}) {
	l.sugar.Debugf(format, args...)
}
