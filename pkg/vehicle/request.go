package vehicle

// ClientID identifies a client session.
type ClientID string

// GetValueRequest reads one (property, area). Prop.Value is ignored.
type GetValueRequest struct {
	RequestID int64         `cbor:"1,keyasint"`
	Prop      PropertyValue `cbor:"2,keyasint"`
}

// SetValueRequest writes Value to its (property, area).
type SetValueRequest struct {
	RequestID int64         `cbor:"1,keyasint"`
	Value     PropertyValue `cbor:"2,keyasint"`
}

// GetValueResult is the outcome of a GetValueRequest.
// Prop is nil unless Status is StatusOK.
type GetValueResult struct {
	RequestID int64          `cbor:"1,keyasint"`
	Status    StatusCode     `cbor:"2,keyasint"`
	Prop      *PropertyValue `cbor:"3,keyasint,omitempty"`
}

// SetValueResult is the outcome of a SetValueRequest.
type SetValueResult struct {
	RequestID int64      `cbor:"1,keyasint"`
	Status    StatusCode `cbor:"2,keyasint"`
}

// SubscribeOptions asks for events of one property.
// An empty AreaIDs subscribes to every area. SampleRate is in Hz; zero
// means on-change.
type SubscribeOptions struct {
	Property   PropertyID `cbor:"1,keyasint"`
	AreaIDs    []int32    `cbor:"2,keyasint,omitempty"`
	SampleRate float32    `cbor:"3,keyasint,omitempty"`
}

// Operation identifies the kind of a batched call.
type Operation uint8

const (
	OpGetValues Operation = 1
	OpSetValues Operation = 2
)

// String returns the operation name.
func (o Operation) String() string {
	switch o {
	case OpGetValues:
		return "GET_VALUES"
	case OpSetValues:
		return "SET_VALUES"
	default:
		return "UNKNOWN"
	}
}
