package chakra

import (
	"encoding/json"
	"fmt"

	"github.com/chakra-dev/chakra-go/utils"
)

// ColumnType is the storage kind assigned to a column when Push derives a
// remote table schema.
type ColumnType int8

const (
	// ColumnTypeVarchar is the fallback storage kind for anything that is
	// not integer-like or floating-point.
	ColumnTypeVarchar ColumnType = iota
	// ColumnTypeInteger holds integer-like values.
	ColumnTypeInteger
	// ColumnTypeDouble holds floating-point values.
	ColumnTypeDouble
)

var columnTypeMap = utils.NewBiMap(map[ColumnType]string{
	ColumnTypeVarchar: "VARCHAR",
	ColumnTypeInteger: "INTEGER",
	ColumnTypeDouble:  "DOUBLE",
})

// String returns the SQL type name for the ColumnType.
func (t ColumnType) String() string {
	if name, ok := columnTypeMap.Lookup(t); ok {
		return name
	}
	return columnTypeMap.DirectLookup(ColumnTypeVarchar)
}

// ParseColumnType parses a SQL type name into a ColumnType.
// Unknown names default to ColumnTypeVarchar and return an error.
func ParseColumnType(name string) (ColumnType, error) {
	if t, ok := columnTypeMap.RLookup(name); ok {
		return t, nil
	}
	return ColumnTypeVarchar, fmt.Errorf("unknown column type %q, defaulting to %s", name, ColumnTypeVarchar)
}

// MarshalText implements the encoding.TextMarshaler interface.
func (t ColumnType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText implements the encoding.TextUnmarshaler interface.
func (t *ColumnType) UnmarshalText(text []byte) error {
	parsed, err := ParseColumnType(string(text))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// sniffColumnType classifies a single value into a storage kind. Push applies
// it to the first row only, so a column whose first value is an integer but
// whose later values are floats will be mis-typed. Nil classifies as VARCHAR.
func sniffColumnType(v any) ColumnType {
	switch n := v.(type) {
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return ColumnTypeInteger
	case float32, float64:
		return ColumnTypeDouble
	case json.Number:
		if _, err := n.Int64(); err == nil {
			return ColumnTypeInteger
		}
		return ColumnTypeDouble
	default:
		return ColumnTypeVarchar
	}
}
