// Package wire implements the CBOR encoding used between the broker and
// out-of-process hardware.
//
// All frames use integer map keys and canonical key ordering so that the same
// frame always encodes to the same bytes. Decoding is lenient: unknown keys are
// ignored and duplicate keys resolve to the last value.
//
// Frames exchanged with the hardware side:
//   - HardwareRequest: a batch of reads or writes tagged with a correlation id
//   - HardwareResponse: the results of one request, same correlation id
//   - EventFrame: values pushed by the hardware on its own initiative
package wire
