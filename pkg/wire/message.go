package wire

import (
	"errors"

	"github.com/carprop/vhal-go/pkg/vehicle"
)

// Frame validation errors.
var (
	ErrMissingCorrelationID = errors.New("missing correlation id")
	ErrInvalidOperation     = errors.New("invalid operation")
	ErrEmptyBatch           = errors.New("empty batch")
	ErrMixedBatch           = errors.New("batch mixes reads and writes")
)

// HardwareRequest carries one batch of reads or writes to the hardware side.
type HardwareRequest struct {
	CorrelationID string                    `cbor:"1,keyasint"`
	Operation     vehicle.Operation         `cbor:"2,keyasint"`
	Gets          []vehicle.GetValueRequest `cbor:"3,keyasint,omitempty"`
	Sets          []vehicle.SetValueRequest `cbor:"4,keyasint,omitempty"`
	// Version is the bridge protocol version of the sender.
	Version string `cbor:"5,keyasint,omitempty"`
}

// Validate checks the frame's structural integrity.
func (r *HardwareRequest) Validate() error {
	if r.CorrelationID == "" {
		return ErrMissingCorrelationID
	}
	switch r.Operation {
	case vehicle.OpGetValues:
		if len(r.Sets) > 0 {
			return ErrMixedBatch
		}
		if len(r.Gets) == 0 {
			return ErrEmptyBatch
		}
	case vehicle.OpSetValues:
		if len(r.Gets) > 0 {
			return ErrMixedBatch
		}
		if len(r.Sets) == 0 {
			return ErrEmptyBatch
		}
	default:
		return ErrInvalidOperation
	}
	return nil
}

// HardwareResponse answers a HardwareRequest with the same correlation id.
// The result list may be a subset of the requested ids.
type HardwareResponse struct {
	CorrelationID string                   `cbor:"1,keyasint"`
	Operation     vehicle.Operation        `cbor:"2,keyasint"`
	GetResults    []vehicle.GetValueResult `cbor:"3,keyasint,omitempty"`
	SetResults    []vehicle.SetValueResult `cbor:"4,keyasint,omitempty"`
}

// EventFrame carries property values pushed by the hardware.
type EventFrame struct {
	Values []vehicle.PropertyValue `cbor:"1,keyasint"`
}
