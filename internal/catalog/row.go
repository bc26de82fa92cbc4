package catalog

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// EncodeRow serializes values according to schema into dst, which must be
// at least schema.RowSize() bytes. An Int column expects a uint32 value;
// a Text column expects a string no longer than its declared width.
func EncodeRow(schema Schema, values []interface{}, dst []byte) error {
	if len(values) != len(schema) {
		return fmt.Errorf("catalog: expected %d column values, got %d", len(schema), len(values))
	}
	off := 0
	for i, c := range schema {
		switch c.Type {
		case Int:
			v, ok := values[i].(uint32)
			if !ok {
				return fmt.Errorf("catalog: column %q expects uint32, got %T", c.Name, values[i])
			}
			binary.LittleEndian.PutUint32(dst[off:off+4], v)
			off += 4
		case Text:
			s, ok := values[i].(string)
			if !ok {
				return fmt.Errorf("catalog: column %q expects string, got %T", c.Name, values[i])
			}
			if len(s) > int(c.Width) {
				return fmt.Errorf("catalog: value for column %q exceeds max length %d", c.Name, c.Width)
			}
			field := dst[off : off+int(c.Width)]
			clear(field)
			copy(field, s)
			off += int(c.Width)
		}
	}
	return nil
}

// DecodeRow deserializes src according to schema.
func DecodeRow(schema Schema, src []byte) ([]interface{}, error) {
	values := make([]interface{}, len(schema))
	off := 0
	for i, c := range schema {
		switch c.Type {
		case Int:
			values[i] = binary.LittleEndian.Uint32(src[off : off+4])
			off += 4
		case Text:
			field := src[off : off+int(c.Width)]
			n := bytes.IndexByte(field, 0)
			if n < 0 {
				n = len(field)
			}
			values[i] = string(field[:n])
			off += int(c.Width)
		}
	}
	return values, nil
}
