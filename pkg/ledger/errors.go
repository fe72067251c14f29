package ledger

import (
	"errors"
	"fmt"
	"math/big"
)

var (
	ErrNonexistentToken    = errors.New("nonexistent token")
	ErrIndexOutOfBounds    = errors.New("owner index out of bounds")
	ErrInsufficientPayment = errors.New("insufficient mint payment")
	ErrInvalidOwner        = errors.New("invalid owner address")
)

var (
	// ErrSignerRequired is returned by minters that hold no signing key.
	ErrSignerRequired = errors.New("minting requires a signer")
	// ErrCallerMismatch is returned when MintOptions.Caller is not the signing account.
	ErrCallerMismatch = errors.New("caller does not match signer")
)

// CallError reports a failed read or write against the ledger.
type CallError struct {
	Op      string
	Index   *big.Int
	TokenID *big.Int
	Err     error
}

func (e *CallError) Error() string {
	switch {
	case e.TokenID != nil:
		return fmt.Sprintf("ledger call %s(token %s) failed: %v", e.Op, e.TokenID, e.Err)
	case e.Index != nil:
		return fmt.Sprintf("ledger call %s(index %s) failed: %v", e.Op, e.Index, e.Err)
	default:
		return fmt.Sprintf("ledger call %s failed: %v", e.Op, e.Err)
	}
}

func (e *CallError) Unwrap() error {
	return e.Err
}
