package engine

// InsertAsSelect copies every row of sourceTable into targetTable using the
// hard-coded projection carried over from the original implementation:
// target.id = source.id + 1000, target.user_id = source.id, and
// target.product_name = "AutoImport". It exists to exercise a
// table-to-table bulk-copy path distinct from a single-row Insert.
func (e *Engine) InsertAsSelect(sourceTable, targetTable string) error {
	return e.runMutation(func() error {
		src, ok := e.catalog.Table(sourceTable)
		if !ok {
			return ErrTableNotFound
		}
		dst, ok := e.catalog.Table(targetTable)
		if !ok {
			return ErrTableNotFound
		}

		rows, err := e.selectScan(src, nil)
		if err != nil {
			return err
		}
		idCol := src.Desc.Columns[0].Name
		for _, row := range rows {
			id, ok := toUint32(row[idCol])
			if !ok {
				return ErrNegativeID
			}
			values := map[string]interface{}{
				"id":           id + 1000,
				"user_id":      id,
				"product_name": "AutoImport",
			}
			if err := e.insertRow(dst, values); err != nil {
				return err
			}
		}
		return nil
	})
}
