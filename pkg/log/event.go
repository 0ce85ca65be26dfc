package log

import (
	"time"

	"github.com/carprop/vhal-go/pkg/vehicle"
)

// Event is one trace record. Exactly one of the payload pointers is set.
type Event struct {
	// Timestamp when the event occurred.
	Timestamp time.Time `cbor:"1,keyasint"`

	// ClientID of the session involved, empty for hardware-only events.
	ClientID vehicle.ClientID `cbor:"2,keyasint,omitempty"`

	// Direction relative to the broker.
	Direction Direction `cbor:"3,keyasint"`

	// Category classifies the event.
	Category Category `cbor:"4,keyasint"`

	Call         *CallEvent         `cbor:"5,keyasint,omitempty"`
	Results      *ResultEvent       `cbor:"6,keyasint,omitempty"`
	Property     *PropertyEvent     `cbor:"7,keyasint,omitempty"`
	Subscription *SubscriptionEvent `cbor:"8,keyasint,omitempty"`
	Error        *ErrorEventData    `cbor:"9,keyasint,omitempty"`
}

// Direction indicates flow relative to the broker.
type Direction uint8

const (
	// DirectionIn is a call or push arriving at the broker.
	DirectionIn Direction = 0
	// DirectionOut is a delivery or request leaving the broker.
	DirectionOut Direction = 1
)

// String returns the direction name.
func (d Direction) String() string {
	switch d {
	case DirectionIn:
		return "IN"
	case DirectionOut:
		return "OUT"
	default:
		return "UNKNOWN"
	}
}

// Category classifies the event type.
type Category uint8

const (
	// CategoryCall is an inbound client call.
	CategoryCall Category = 0
	// CategoryResult is a read or write result delivery.
	CategoryResult Category = 1
	// CategoryProperty is a property event.
	CategoryProperty Category = 2
	// CategorySubscription is a subscription change.
	CategorySubscription Category = 3
	// CategoryError is an error event.
	CategoryError Category = 4
)

// String returns the category name.
func (c Category) String() string {
	switch c {
	case CategoryCall:
		return "CALL"
	case CategoryResult:
		return "RESULT"
	case CategoryProperty:
		return "PROPERTY"
	case CategorySubscription:
		return "SUBSCRIPTION"
	case CategoryError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// CallType names an inbound call.
type CallType uint8

const (
	CallGetValues   CallType = 0
	CallSetValues   CallType = 1
	CallSubscribe   CallType = 2
	CallUnsubscribe CallType = 3
	CallRegister    CallType = 4
	CallDropClient  CallType = 5
)

// String returns the call name.
func (c CallType) String() string {
	switch c {
	case CallGetValues:
		return "GET_VALUES"
	case CallSetValues:
		return "SET_VALUES"
	case CallSubscribe:
		return "SUBSCRIBE"
	case CallUnsubscribe:
		return "UNSUBSCRIBE"
	case CallRegister:
		return "REGISTER"
	case CallDropClient:
		return "DROP_CLIENT"
	default:
		return "UNKNOWN"
	}
}

// CallEvent records an inbound call and its call-level outcome.
type CallEvent struct {
	Type CallType `cbor:"1,keyasint"`

	// Count is the number of requests or options in the call.
	Count int `cbor:"2,keyasint,omitempty"`

	// Status is OK when the call was accepted.
	Status vehicle.StatusCode `cbor:"3,keyasint"`

	// Reason explains a rejection.
	Reason string `cbor:"4,keyasint,omitempty"`

	// Shared is set when the batch arrived in a shared buffer.
	Shared bool `cbor:"5,keyasint,omitempty"`
}

// ResultSource says what completed a set of requests.
type ResultSource uint8

const (
	// SourceHardware results came back from the hardware.
	SourceHardware ResultSource = 0
	// SourceLocal results were produced by request validation.
	SourceLocal ResultSource = 1
	// SourceTimeout results were produced by the timeout sweep.
	SourceTimeout ResultSource = 2
)

// String returns the source name.
func (s ResultSource) String() string {
	switch s {
	case SourceHardware:
		return "HARDWARE"
	case SourceLocal:
		return "LOCAL"
	case SourceTimeout:
		return "TIMEOUT"
	default:
		return "UNKNOWN"
	}
}

// ResultEvent records a result batch delivered to a client.
type ResultEvent struct {
	Operation  vehicle.Operation    `cbor:"1,keyasint"`
	Source     ResultSource         `cbor:"2,keyasint"`
	RequestIDs []int64              `cbor:"3,keyasint,omitempty"`
	Statuses   []vehicle.StatusCode `cbor:"4,keyasint,omitempty"`
	Shared     bool                 `cbor:"5,keyasint,omitempty"`
}

// PropertySource says where a property event came from.
type PropertySource uint8

const (
	// FromWrite is a change raised by a successful write.
	FromWrite PropertySource = 0
	// FromHardware is a value pushed by the hardware.
	FromHardware PropertySource = 1
	// FromSample is a value read by a sampling timer.
	FromSample PropertySource = 2
)

// String returns the source name.
func (s PropertySource) String() string {
	switch s {
	case FromWrite:
		return "WRITE"
	case FromHardware:
		return "HARDWARE"
	case FromSample:
		return "SAMPLE"
	default:
		return "UNKNOWN"
	}
}

// PropertyEvent records property values delivered to one client, or received
// from the hardware when ClientID is empty.
type PropertyEvent struct {
	Source PropertySource          `cbor:"1,keyasint"`
	Values []vehicle.PropertyValue `cbor:"2,keyasint,omitempty"`
}

// SubscriptionEvent records subscriptions added or removed for a client.
type SubscriptionEvent struct {
	Removed    bool                 `cbor:"1,keyasint,omitempty"`
	Properties []vehicle.PropertyID `cbor:"2,keyasint,omitempty"`
	Rates      []float32            `cbor:"3,keyasint,omitempty"`
}

// ErrorEventData records a failure that did not surface as a call rejection.
type ErrorEventData struct {
	// Message is the error message.
	Message string `cbor:"1,keyasint"`

	// Status is the code reported for the failure (if applicable).
	Status *vehicle.StatusCode `cbor:"2,keyasint,omitempty"`

	// Context describes what operation was being performed.
	Context string `cbor:"3,keyasint,omitempty"`
}
