package hwbridge

import "errors"

// Bridge and transport errors.
var (
	ErrNotConnected    = errors.New("hwbridge: transport not connected")
	ErrConnectFailed   = errors.New("hwbridge: connection failed")
	ErrPublishFailed   = errors.New("hwbridge: publish failed")
	ErrSubscribeFailed = errors.New("hwbridge: subscribe failed")
	ErrInvalidTopic    = errors.New("hwbridge: topic cannot be empty")
	ErrInvalidQoS      = errors.New("hwbridge: invalid QoS level (must be 0, 1, or 2)")
	ErrPayloadTooLarge = errors.New("hwbridge: payload too large")
	ErrUnknownBatch    = errors.New("hwbridge: response for unknown correlation id")
)
