// Package bulk moves large batches across the client boundary.
//
// A Batch carries its elements either inline in Payloads or, once their
// encoded size exceeds Threshold, as a single CBOR blob in SharedBuffer.
// Exactly one of the two is populated.
package bulk

import (
	"errors"
	"fmt"

	"github.com/carprop/vhal-go/pkg/wire"
)

// Threshold is the encoded size above which a batch moves to the shared buffer.
const Threshold = 4 * 1024

// Bulk payload errors.
var (
	ErrBothPopulated = errors.New("bulk: both inline payloads and shared buffer set")
	ErrDecode        = errors.New("bulk: shared buffer decode failed")
)

// Batch is a sequence of T that is either inline or in a shared buffer.
type Batch[T any] struct {
	Payloads     []T    `cbor:"1,keyasint,omitempty"`
	SharedBuffer []byte `cbor:"2,keyasint,omitempty"`
}

// Inline wraps payloads without encoding them.
func Inline[T any](payloads ...T) Batch[T] {
	return Batch[T]{Payloads: payloads}
}

// Pack encodes payloads into a Batch, spilling to the shared buffer when the
// encoded form is larger than Threshold.
func Pack[T any](payloads []T) (Batch[T], error) {
	data, err := wire.Marshal(payloads)
	if err != nil {
		return Batch[T]{}, fmt.Errorf("bulk: encode: %w", err)
	}
	if len(data) <= Threshold {
		return Batch[T]{Payloads: payloads}, nil
	}
	return Batch[T]{SharedBuffer: data}, nil
}

// Unpack returns the elements of b regardless of where they are stored.
func Unpack[T any](b Batch[T]) ([]T, error) {
	if len(b.SharedBuffer) == 0 {
		return b.Payloads, nil
	}
	if len(b.Payloads) > 0 {
		return nil, ErrBothPopulated
	}
	var out []T
	if err := wire.Unmarshal(b.SharedBuffer, &out); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecode, err)
	}
	return out, nil
}

// IsShared reports whether the batch lives in the shared buffer.
func (b Batch[T]) IsShared() bool {
	return len(b.SharedBuffer) > 0
}
