package catalog

import (
	"encoding/binary"
	"fmt"

	"ridgedb/internal/page"
)

// The directory page holds one fixed-width descriptor per table. Every
// field is fixed-width so the directory never needs its own overflow
// handling for the modest number of tables a single-process store holds.
const (
	maxTableNameLen    = 31
	maxColumnNameLen   = 31
	maxColumnsPerTable = 8
	colEntrySize       = 1 + maxColumnNameLen + 1 + 4 // nameLen + name + type + width
	descriptorSize     = 1 + maxTableNameLen + 4 + 4 + 1 + maxColumnNameLen + 1 + maxColumnsPerTable*colEntrySize
)

// MaxTables is how many table descriptors fit on the single directory
// page.
const MaxTables = (page.Size - 4) / descriptorSize

// TableDescriptor is a table's persisted identity: its schema and the
// root pages of its primary tree and (if any) its secondary index.
type TableDescriptor struct {
	Name          string
	Columns       Schema
	RootPage      uint32
	IndexColumn   string // "" if the table has no secondary index
	IndexRootPage uint32
}

func encodeDescriptor(dst []byte, d TableDescriptor) error {
	if len(d.Name) > maxTableNameLen {
		return fmt.Errorf("catalog: table name %q exceeds %d bytes", d.Name, maxTableNameLen)
	}
	if len(d.Columns) > maxColumnsPerTable {
		return fmt.Errorf("catalog: table %q has more than %d columns", d.Name, maxColumnsPerTable)
	}
	off := 0
	dst[off] = byte(len(d.Name))
	off++
	copy(dst[off:off+maxTableNameLen], d.Name)
	off += maxTableNameLen
	binary.LittleEndian.PutUint32(dst[off:off+4], d.RootPage)
	off += 4
	binary.LittleEndian.PutUint32(dst[off:off+4], d.IndexRootPage)
	off += 4
	if len(d.IndexColumn) > maxColumnNameLen {
		return fmt.Errorf("catalog: index column name %q exceeds %d bytes", d.IndexColumn, maxColumnNameLen)
	}
	dst[off] = byte(len(d.IndexColumn))
	off++
	idxSlot := dst[off : off+maxColumnNameLen]
	clear(idxSlot)
	copy(idxSlot, d.IndexColumn)
	off += maxColumnNameLen
	dst[off] = byte(len(d.Columns))
	off++
	for _, c := range d.Columns {
		dst[off] = byte(len(c.Name))
		off++
		nameSlot := dst[off : off+maxColumnNameLen]
		clear(nameSlot)
		copy(nameSlot, c.Name)
		off += maxColumnNameLen
		dst[off] = byte(c.Type)
		off++
		binary.LittleEndian.PutUint32(dst[off:off+4], c.Width)
		off += 4
	}
	return nil
}

func decodeDescriptor(src []byte) (TableDescriptor, error) {
	off := 0
	nameLen := int(src[off])
	off++
	name := string(src[off : off+nameLen])
	off += maxTableNameLen
	rootPage := binary.LittleEndian.Uint32(src[off : off+4])
	off += 4
	indexRoot := binary.LittleEndian.Uint32(src[off : off+4])
	off += 4
	idxNameLen := int(src[off])
	off++
	idxName := string(src[off : off+idxNameLen])
	off += maxColumnNameLen
	numCols := int(src[off])
	off++
	cols := make(Schema, numCols)
	for i := 0; i < numCols; i++ {
		cnLen := int(src[off])
		off++
		cn := string(src[off : off+cnLen])
		off += maxColumnNameLen
		ct := ColumnType(src[off])
		off++
		w := binary.LittleEndian.Uint32(src[off : off+4])
		off += 4
		cols[i] = Column{Name: cn, Type: ct, Width: w}
	}
	return TableDescriptor{
		Name:          name,
		Columns:       cols,
		RootPage:      rootPage,
		IndexColumn:   idxName,
		IndexRootPage: indexRoot,
	}, nil
}

// countOffset is the trailing 4 bytes of the directory page: the
// descriptor count. The descriptor array itself packs from byte 0.
const countOffset = page.Size - 4

func writeDirectory(p *page.Page, descriptors []TableDescriptor) error {
	clear(p.Data[:])
	off := 0
	for _, d := range descriptors {
		if err := encodeDescriptor(p.Data[off:off+descriptorSize], d); err != nil {
			return err
		}
		off += descriptorSize
	}
	binary.LittleEndian.PutUint32(p.Data[countOffset:countOffset+4], uint32(len(descriptors)))
	p.Dirty = true
	return nil
}

func readDirectory(p *page.Page) ([]TableDescriptor, error) {
	n := int(binary.LittleEndian.Uint32(p.Data[countOffset : countOffset+4]))
	out := make([]TableDescriptor, n)
	off := 0
	for i := 0; i < n; i++ {
		d, err := decodeDescriptor(p.Data[off : off+descriptorSize])
		if err != nil {
			return nil, err
		}
		out[i] = d
		off += descriptorSize
	}
	return out, nil
}
