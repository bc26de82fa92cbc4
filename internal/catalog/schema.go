// Package catalog implements the table directory, column schema, and row
// codec that sit on top of internal/btree: it is what turns a handful of
// generic B+trees into named tables with typed columns.
package catalog

// ColumnType is the type tag of one column.
type ColumnType uint8

const (
	// Int columns store a 4-byte little-endian unsigned integer.
	Int ColumnType = iota
	// Text columns store a fixed-width, NUL-padded byte string.
	Text
)

// Column describes one table column. Width is meaningful only for Text
// columns; Int columns are always 4 bytes.
type Column struct {
	Name  string
	Type  ColumnType
	Width uint32
}

// ByteSize is the on-disk width of one value of this column.
func (c Column) ByteSize() uint32 {
	if c.Type == Int {
		return 4
	}
	return c.Width
}

// Schema is an ordered list of columns, fixing a row's on-disk layout.
type Schema []Column

// RowSize is the total serialized width of one row under this schema.
func (s Schema) RowSize() uint32 {
	var n uint32
	for _, c := range s {
		n += c.ByteSize()
	}
	return n
}

// IndexOf returns the position of the column named name, or -1.
func (s Schema) IndexOf(name string) int {
	for i, c := range s {
		if c.Name == name {
			return i
		}
	}
	return -1
}

// Offset returns the byte offset of column i within a serialized row.
func (s Schema) Offset(i int) uint32 {
	var off uint32
	for j := 0; j < i; j++ {
		off += s[j].ByteSize()
	}
	return off
}
