package ledger

import (
	"sync"

	"github.com/ethereum/go-ethereum/common"
)

// Store persists the local ledger state. AppendToken must record the token,
// its owner index entry and the new supply atomically.
type Store interface {
	Supply() (uint64, error)
	AppendToken(token Token) error
	ReadToken(id uint64) (*Token, error)
	BalanceOf(owner common.Address) (uint64, error)
	TokenOfOwnerByIndex(owner common.Address, index uint64) (uint64, bool, error)
	Close() error
}

type memoryStore struct {
	mutex  sync.RWMutex
	tokens map[uint64]Token
	owned  map[common.Address][]uint64
	supply uint64
}

// NewMemoryStore returns a Store that keeps everything in process memory.
func NewMemoryStore() Store {
	return &memoryStore{
		tokens: map[uint64]Token{},
		owned:  map[common.Address][]uint64{},
	}
}

func (s *memoryStore) Supply() (uint64, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.supply, nil
}

func (s *memoryStore) AppendToken(token Token) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.tokens[token.ID] = token
	s.owned[token.Owner] = append(s.owned[token.Owner], token.ID)
	if token.ID > s.supply {
		s.supply = token.ID
	}
	return nil
}

func (s *memoryStore) ReadToken(id uint64) (*Token, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	token, ok := s.tokens[id]
	if !ok {
		return nil, nil
	}
	return &token, nil
}

func (s *memoryStore) BalanceOf(owner common.Address) (uint64, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return uint64(len(s.owned[owner])), nil
}

func (s *memoryStore) TokenOfOwnerByIndex(owner common.Address, index uint64) (uint64, bool, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	owned := s.owned[owner]
	if index >= uint64(len(owned)) {
		return 0, false, nil
	}
	return owned[index], true, nil
}

func (s *memoryStore) Close() error {
	return nil
}
