package metadata

import "fmt"

// DecodeError reports token metadata that could not be turned into a Metadata record.
type DecodeError struct {
	Reason string
	Err    error
}

func (e *DecodeError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("metadata decode failed: %s", e.Reason)
	}
	return fmt.Sprintf("metadata decode failed: %s: %v", e.Reason, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

func newDecodeError(reason string, err error) error {
	return &DecodeError{Reason: reason, Err: err}
}
