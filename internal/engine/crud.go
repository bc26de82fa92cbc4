package engine

import (
	"encoding/binary"
	"errors"

	"ridgedb/internal/bkey"
	"ridgedb/internal/btree"
	"ridgedb/internal/catalog"
)

// Insert adds one row to table, keyed by its first (primary) column.
// Maintaining the secondary index, if the table has one, happens in the
// same implicit transaction as the row insert.
func (e *Engine) Insert(table string, values map[string]interface{}) error {
	return e.runMutation(func() error {
		t, ok := e.catalog.Table(table)
		if !ok {
			return ErrTableNotFound
		}
		return e.insertRow(t, values)
	})
}

// insertRow performs the actual row (and index) insert without opening a
// transaction of its own, so callers already inside an implicit or
// explicit transaction (InsertAsSelect, for instance) can drive it
// per-row without nesting BeginTx calls.
func (e *Engine) insertRow(t *catalog.Table, values map[string]interface{}) error {
	ordered, err := rowFromMap(t.Desc.Columns, values)
	if err != nil {
		return err
	}
	id, ok := ordered[0].(uint32)
	if !ok {
		return ErrSyntax
	}
	buf := make([]byte, t.Desc.Columns.RowSize())
	if err := catalog.EncodeRow(t.Desc.Columns, ordered, buf); err != nil {
		return err
	}
	if err := t.Rows.Insert(bkey.NewUint32(id), buf); err != nil {
		if errors.Is(err, btree.ErrDuplicateKey) {
			return ErrDuplicateKey
		}
		return err
	}
	if t.Index != nil {
		idxCol := t.Desc.Columns.IndexOf(t.Desc.IndexColumn)
		idxVal, _ := ordered[idxCol].(string)
		width := int(t.Desc.Columns[idxCol].Width)
		idBuf := make([]byte, 4)
		binary.LittleEndian.PutUint32(idBuf, id)
		if err := t.Index.Insert(bkey.NewFixedBytes([]byte(idxVal), width), idBuf); err != nil {
			if errors.Is(err, btree.ErrDuplicateKey) {
				return ErrDuplicateKey
			}
			return err
		}
	}
	return nil
}

// Select returns every row matching where, an optional set of equality
// filters. A single filter on the primary key or on the table's indexed
// column is served by a direct tree probe; anything else falls back to a
// full table scan.
func (e *Engine) Select(table string, where map[string]interface{}) ([]map[string]interface{}, error) {
	t, ok := e.catalog.Table(table)
	if !ok {
		return nil, ErrTableNotFound
	}

	if len(where) == 1 {
		for col, val := range where {
			if col == t.Desc.Columns[0].Name {
				return e.selectByPrimaryKey(t, val)
			}
			if t.Index != nil && col == t.Desc.IndexColumn {
				return e.selectByIndex(t, val)
			}
		}
	}
	return e.selectScan(t, where)
}

func (e *Engine) selectByPrimaryKey(t *catalog.Table, val interface{}) ([]map[string]interface{}, error) {
	id, ok := toUint32(val)
	if !ok {
		return nil, ErrSyntax
	}
	buf, found, err := t.Rows.Find(bkey.NewUint32(id))
	if err != nil || !found {
		return nil, err
	}
	values, err := catalog.DecodeRow(t.Desc.Columns, buf)
	if err != nil {
		return nil, err
	}
	return []map[string]interface{}{rowToMap(t.Desc.Columns, values)}, nil
}

func (e *Engine) selectByIndex(t *catalog.Table, val interface{}) ([]map[string]interface{}, error) {
	s, ok := val.(string)
	if !ok {
		return nil, ErrSyntax
	}
	idxCol := t.Desc.Columns.IndexOf(t.Desc.IndexColumn)
	width := int(t.Desc.Columns[idxCol].Width)
	idBuf, found, err := t.Index.Find(bkey.NewFixedBytes([]byte(s), width))
	if err != nil || !found {
		return nil, err
	}
	id := binary.LittleEndian.Uint32(idBuf)
	buf, found, err := t.Rows.Find(bkey.NewUint32(id))
	if err != nil || !found {
		return nil, err
	}
	values, err := catalog.DecodeRow(t.Desc.Columns, buf)
	if err != nil {
		return nil, err
	}
	return []map[string]interface{}{rowToMap(t.Desc.Columns, values)}, nil
}

func (e *Engine) selectScan(t *catalog.Table, where map[string]interface{}) ([]map[string]interface{}, error) {
	cur, err := t.Rows.Start()
	if err != nil {
		return nil, err
	}
	var out []map[string]interface{}
	for cur.Valid() {
		v, err := cur.Value()
		if err != nil {
			return nil, err
		}
		values, err := catalog.DecodeRow(t.Desc.Columns, v)
		if err != nil {
			return nil, err
		}
		row := rowToMap(t.Desc.Columns, values)
		if matchesWhere(row, where) {
			out = append(out, row)
		}
		if err := cur.Advance(); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// Delete removes every row matching where from table, keeping any
// secondary index consistent.
func (e *Engine) Delete(table string, where map[string]interface{}) error {
	return e.runMutation(func() error {
		t, ok := e.catalog.Table(table)
		if !ok {
			return ErrTableNotFound
		}
		if len(where) == 1 {
			if v, ok := where[t.Desc.Columns[0].Name]; ok {
				id, ok := toUint32(v)
				if !ok {
					return ErrSyntax
				}
				return e.deleteByID(t, id)
			}
		}

		cur, err := t.Rows.Start()
		if err != nil {
			return err
		}
		var ids []uint32
		for cur.Valid() {
			v, err := cur.Value()
			if err != nil {
				return err
			}
			values, err := catalog.DecodeRow(t.Desc.Columns, v)
			if err != nil {
				return err
			}
			row := rowToMap(t.Desc.Columns, values)
			if matchesWhere(row, where) {
				ids = append(ids, values[0].(uint32))
			}
			if err := cur.Advance(); err != nil {
				return err
			}
		}
		for _, id := range ids {
			if err := e.deleteByID(t, id); err != nil {
				return err
			}
		}
		return nil
	})
}

func (e *Engine) deleteByID(t *catalog.Table, id uint32) error {
	if t.Index != nil {
		buf, found, err := t.Rows.Find(bkey.NewUint32(id))
		if err != nil {
			return err
		}
		if found {
			values, err := catalog.DecodeRow(t.Desc.Columns, buf)
			if err != nil {
				return err
			}
			idxCol := t.Desc.Columns.IndexOf(t.Desc.IndexColumn)
			s, _ := values[idxCol].(string)
			width := int(t.Desc.Columns[idxCol].Width)
			if err := t.Index.Delete(bkey.NewFixedBytes([]byte(s), width)); err != nil && !errors.Is(err, btree.ErrKeyNotFound) {
				return err
			}
		}
	}
	if err := t.Rows.Delete(bkey.NewUint32(id)); err != nil {
		if errors.Is(err, btree.ErrKeyNotFound) {
			return nil
		}
		return err
	}
	return nil
}
