// Package vehicle defines the data model shared by the property broker.
//
// A property is identified by a 32-bit PropertyID whose upper bits encode the
// value type, the area type and the property group. Each property may be
// scoped to one or more areas; area 0 denotes the global scope.
//
// # Value Types
//
// RawValue carries the payload for every property type. Which field is
// populated depends on the type encoded in the property id:
//
//	INT32, BOOLEAN      Int32Values (exactly one element)
//	INT32_VEC           Int32Values (at least one element)
//	INT64 / INT64_VEC   Int64Values
//	FLOAT / FLOAT_VEC   FloatValues
//	STRING              StringValue
//	BYTES               ByteValues
//	MIXED               any combination
//
// # Status Codes
//
// StatusCode values are reported per request in result batches and, wrapped
// in a StatusError, as call-level rejections.
package vehicle
