package engine

import "ridgedb/internal/catalog"

// toUint32 accepts the handful of numeric Go types a driver is likely to
// hand in for an Int column and rejects negative values.
func toUint32(v interface{}) (uint32, bool) {
	switch n := v.(type) {
	case uint32:
		return n, true
	case int:
		if n < 0 {
			return 0, false
		}
		return uint32(n), true
	case int64:
		if n < 0 {
			return 0, false
		}
		return uint32(n), true
	default:
		return 0, false
	}
}

// rowFromMap validates and orders a caller-supplied row according to
// schema, producing the []interface{} catalog.EncodeRow expects.
func rowFromMap(schema catalog.Schema, values map[string]interface{}) ([]interface{}, error) {
	if len(values) != len(schema) {
		return nil, ErrColumnCountMismatch
	}
	out := make([]interface{}, len(schema))
	for i, c := range schema {
		v, ok := values[c.Name]
		if !ok {
			return nil, ErrColumnCountMismatch
		}
		switch c.Type {
		case catalog.Int:
			n, ok := toUint32(v)
			if !ok {
				return nil, ErrNegativeID
			}
			out[i] = n
		case catalog.Text:
			s, ok := v.(string)
			if !ok {
				return nil, ErrSyntax
			}
			if len(s) > int(c.Width) {
				return nil, ErrStringTooLong
			}
			out[i] = s
		}
	}
	return out, nil
}

// rowToMap converts a schema-ordered row back into a name-keyed map for
// driver consumption.
func rowToMap(schema catalog.Schema, values []interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(schema))
	for i, c := range schema {
		out[c.Name] = values[i]
	}
	return out
}

func matchesWhere(row map[string]interface{}, where map[string]interface{}) bool {
	for k, v := range where {
		got := row[k]
		if gotID, ok := got.(uint32); ok {
			wantID, ok := toUint32(v)
			if !ok || gotID != wantID {
				return false
			}
			continue
		}
		if got != v {
			return false
		}
	}
	return true
}
