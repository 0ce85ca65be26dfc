// Package hardware defines the capability the broker uses to reach the
// vehicle, and a simulated implementation.
//
// Access issues batches of reads and writes and reports their results through
// a callback that runs asynchronously, exactly once per accepted batch. The
// result list may cover only part of the batch; ids without a result are left
// to the broker's timeout.
package hardware

import (
	"context"
	"errors"

	"github.com/carprop/vhal-go/pkg/vehicle"
)

// Hardware errors.
var (
	ErrUnavailable = errors.New("hardware: unavailable")
	ErrClosed      = errors.New("hardware: closed")
)

// GetValuesCallback receives results of a read batch.
type GetValuesCallback func(results []vehicle.GetValueResult)

// SetValuesCallback receives results of a write batch.
type SetValuesCallback func(results []vehicle.SetValueResult)

// PropertyChangeFunc receives values pushed by the hardware.
type PropertyChangeFunc func(values []vehicle.PropertyValue)

// Access is the broker's view of the vehicle hardware.
type Access interface {
	// GetValues issues a read batch. A returned error means the batch was not
	// accepted and callback will not run.
	GetValues(ctx context.Context, requests []vehicle.GetValueRequest, callback GetValuesCallback) error

	// SetValues issues a write batch with the same contract as GetValues.
	SetValues(ctx context.Context, requests []vehicle.SetValueRequest, callback SetValuesCallback) error

	// OnPropertyChange registers the receiver of hardware-originated events.
	OnPropertyChange(fn PropertyChangeFunc)
}
