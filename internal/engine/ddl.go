package engine

import "ridgedb/internal/catalog"

// CreateTable adds a new, index-less table with the given schema.
func (e *Engine) CreateTable(name string, columns catalog.Schema) error {
	return e.runMutation(func() error {
		err := e.catalog.CreateTable(name, columns)
		switch err {
		case nil:
			return nil
		case catalog.ErrTableAlreadyExists:
			return ErrTableAlreadyExists
		case catalog.ErrMaxTablesReached:
			return ErrMaxTablesReached
		default:
			return err
		}
	})
}

// ShowTables lists every table name in the database, in creation order.
func (e *Engine) ShowTables() []string {
	return e.catalog.TableNames()
}

// DescribeTable returns the named table's column schema.
func (e *Engine) DescribeTable(name string) (catalog.TableDescriptor, error) {
	t, ok := e.catalog.Table(name)
	if !ok {
		return catalog.TableDescriptor{}, ErrTableNotFound
	}
	return t.Desc, nil
}

// ShowIndex returns the column a table's secondary index is built over,
// if it has one.
func (e *Engine) ShowIndex(name string) (string, error) {
	t, ok := e.catalog.Table(name)
	if !ok {
		return "", ErrTableNotFound
	}
	if t.Index == nil {
		return "", ErrNoSecondaryIndex
	}
	return t.Desc.IndexColumn, nil
}
