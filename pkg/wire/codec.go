package wire

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

// encMode is the CBOR encoder mode for broker frames.
// Configured for deterministic encoding with integer keys.
var encMode cbor.EncMode

// decMode is the CBOR decoder mode for broker frames.
var decMode cbor.DecMode

func init() {
	var err error

	encOpts := cbor.EncOptions{
		Sort:          cbor.SortCanonical, // Deterministic key ordering
		IndefLength:   cbor.IndefLengthForbidden,
		NilContainers: cbor.NilContainerAsNull,
		Time:          cbor.TimeUnix,
	}
	encMode, err = encOpts.EncMode()
	if err != nil {
		panic(fmt.Sprintf("failed to create CBOR encoder mode: %v", err))
	}

	decOpts := cbor.DecOptions{
		DupMapKey:         cbor.DupMapKeyQuiet, // Last wins
		IndefLength:       cbor.IndefLengthAllowed,
		ExtraReturnErrors: cbor.ExtraDecErrorNone,
	}
	decMode, err = decOpts.DecMode()
	if err != nil {
		panic(fmt.Sprintf("failed to create CBOR decoder mode: %v", err))
	}
}

// Marshal encodes a value to CBOR bytes.
func Marshal(v any) ([]byte, error) {
	return encMode.Marshal(v)
}

// Unmarshal decodes CBOR bytes into a value.
func Unmarshal(data []byte, v any) error {
	return decMode.Unmarshal(data, v)
}

// EncodeRequest encodes a hardware request frame.
func EncodeRequest(req *HardwareRequest) ([]byte, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("invalid request: %w", err)
	}
	return Marshal(req)
}

// DecodeRequest decodes and validates a hardware request frame.
func DecodeRequest(data []byte) (*HardwareRequest, error) {
	var req HardwareRequest
	if err := Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("failed to decode request: %w", err)
	}
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("invalid request: %w", err)
	}
	return &req, nil
}

// EncodeResponse encodes a hardware response frame.
func EncodeResponse(resp *HardwareResponse) ([]byte, error) {
	if resp.CorrelationID == "" {
		return nil, fmt.Errorf("invalid response: %w", ErrMissingCorrelationID)
	}
	return Marshal(resp)
}

// DecodeResponse decodes a hardware response frame.
func DecodeResponse(data []byte) (*HardwareResponse, error) {
	var resp HardwareResponse
	if err := Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if resp.CorrelationID == "" {
		return nil, fmt.Errorf("invalid response: %w", ErrMissingCorrelationID)
	}
	return &resp, nil
}

// EncodeEvent encodes a pushed property event frame.
func EncodeEvent(ev *EventFrame) ([]byte, error) {
	return Marshal(ev)
}

// DecodeEvent decodes a pushed property event frame.
func DecodeEvent(data []byte) (*EventFrame, error) {
	var ev EventFrame
	if err := Unmarshal(data, &ev); err != nil {
		return nil, fmt.Errorf("failed to decode event: %w", err)
	}
	return &ev, nil
}
