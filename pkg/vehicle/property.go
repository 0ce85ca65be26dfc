package vehicle

import "fmt"

// PropertyID identifies a vehicle property.
type PropertyID int32

// Bit masks for the fields packed into a PropertyID.
const (
	PropertyTypeMask  int32 = 0x00ff0000
	AreaTypeMask      int32 = 0x0f000000
	PropertyGroupMask int32 = -0x10000000 // 0xf0000000
)

// PropertyType is the value type encoded in a PropertyID.
type PropertyType int32

const (
	TypeString   PropertyType = 0x00100000
	TypeBoolean  PropertyType = 0x00200000
	TypeInt32    PropertyType = 0x00400000
	TypeInt32Vec PropertyType = 0x00410000
	TypeInt64    PropertyType = 0x00500000
	TypeInt64Vec PropertyType = 0x00510000
	TypeFloat    PropertyType = 0x00600000
	TypeFloatVec PropertyType = 0x00610000
	TypeBytes    PropertyType = 0x00700000
	TypeMixed    PropertyType = 0x00e00000
)

// String returns the property type name.
func (t PropertyType) String() string {
	switch t {
	case TypeString:
		return "STRING"
	case TypeBoolean:
		return "BOOLEAN"
	case TypeInt32:
		return "INT32"
	case TypeInt32Vec:
		return "INT32_VEC"
	case TypeInt64:
		return "INT64"
	case TypeInt64Vec:
		return "INT64_VEC"
	case TypeFloat:
		return "FLOAT"
	case TypeFloatVec:
		return "FLOAT_VEC"
	case TypeBytes:
		return "BYTES"
	case TypeMixed:
		return "MIXED"
	default:
		return "UNKNOWN"
	}
}

// IsVector returns true for the vector variants of a numeric type.
func (t PropertyType) IsVector() bool {
	return t == TypeInt32Vec || t == TypeInt64Vec || t == TypeFloatVec
}

// AreaType is the area type encoded in a PropertyID.
type AreaType int32

const (
	AreaGlobal AreaType = 0x01000000
	AreaWindow AreaType = 0x03000000
	AreaMirror AreaType = 0x04000000
	AreaSeat   AreaType = 0x05000000
	AreaDoor   AreaType = 0x06000000
	AreaWheel  AreaType = 0x07000000
)

// String returns the area type name.
func (a AreaType) String() string {
	switch a {
	case AreaGlobal:
		return "GLOBAL"
	case AreaWindow:
		return "WINDOW"
	case AreaMirror:
		return "MIRROR"
	case AreaSeat:
		return "SEAT"
	case AreaDoor:
		return "DOOR"
	case AreaWheel:
		return "WHEEL"
	default:
		return "UNKNOWN"
	}
}

// PropertyGroup is the group encoded in a PropertyID.
type PropertyGroup int32

const (
	GroupSystem PropertyGroup = 0x10000000
	GroupVendor PropertyGroup = 0x20000000
)

// String returns the group name.
func (g PropertyGroup) String() string {
	switch g {
	case GroupSystem:
		return "SYSTEM"
	case GroupVendor:
		return "VENDOR"
	default:
		return "UNKNOWN"
	}
}

// GlobalArea is the area id of the global scope.
const GlobalArea int32 = 0

// NewPropertyID assembles a property id from its parts.
func NewPropertyID(group PropertyGroup, area AreaType, typ PropertyType, id int32) PropertyID {
	return PropertyID(int32(group) | int32(area) | int32(typ) | (id & 0xffff))
}

// Type returns the value type encoded in the id.
func (p PropertyID) Type() PropertyType {
	return PropertyType(int32(p) & PropertyTypeMask)
}

// AreaType returns the area type encoded in the id.
func (p PropertyID) AreaType() AreaType {
	return AreaType(int32(p) & AreaTypeMask)
}

// Group returns the property group encoded in the id.
func (p PropertyID) Group() PropertyGroup {
	return PropertyGroup(int32(p) & PropertyGroupMask)
}

// String formats the id in hex.
func (p PropertyID) String() string {
	return fmt.Sprintf("0x%08x", uint32(p))
}

// Key identifies one (property, area) pair.
type Key struct {
	Property PropertyID
	AreaID   int32
}

// String returns "property/area".
func (k Key) String() string {
	return fmt.Sprintf("%s/%d", k.Property, k.AreaID)
}
