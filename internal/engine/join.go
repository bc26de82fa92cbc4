package engine

import "fmt"

// Join performs a nested-loop equi-join between leftTable and rightTable,
// matching rows where leftTable's leftColumn equals rightTable's
// rightColumn. Every column in the result is namespaced as
// "table.column" so same-named columns in the two tables (both seeded
// tables have an "id" column) don't collide.
func (e *Engine) Join(leftTable, leftColumn, rightTable, rightColumn string) ([]map[string]interface{}, error) {
	lt, ok := e.catalog.Table(leftTable)
	if !ok {
		return nil, ErrTableNotFound
	}
	rt, ok := e.catalog.Table(rightTable)
	if !ok {
		return nil, ErrTableNotFound
	}
	if lt.Desc.Columns.IndexOf(leftColumn) < 0 || rt.Desc.Columns.IndexOf(rightColumn) < 0 {
		return nil, ErrColumnCountMismatch
	}

	rightRows, err := e.selectScan(rt, nil)
	if err != nil {
		return nil, err
	}
	leftRows, err := e.selectScan(lt, nil)
	if err != nil {
		return nil, err
	}

	var out []map[string]interface{}
	for _, l := range leftRows {
		for _, r := range rightRows {
			if l[leftColumn] != r[rightColumn] {
				continue
			}
			joined := make(map[string]interface{}, len(l)+len(r))
			for k, v := range l {
				joined[fmt.Sprintf("%s.%s", leftTable, k)] = v
			}
			for k, v := range r {
				joined[fmt.Sprintf("%s.%s", rightTable, k)] = v
			}
			out = append(out, joined)
		}
	}
	return out, nil
}
