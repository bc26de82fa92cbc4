package main

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"ridgedb/internal/catalog"
	"ridgedb/internal/engine"
)

// Execute recognizes one of the literal statement forms ridgedb's
// scenarios need and runs it against eng. This is deliberately not a SQL
// parser: each statement keyword maps straight onto one executor
// operation.
func Execute(eng *engine.Engine, line string) (string, error) {
	line = strings.TrimSpace(line)
	if line == "" {
		return "", nil
	}
	fields := strings.Fields(line)
	verb := strings.ToLower(fields[0])
	args := fields[1:]

	switch verb {
	case "begin":
		return "", eng.Begin()
	case "commit":
		return "", eng.Commit()
	case "rollback":
		return "", eng.Rollback()
	case "createtable":
		return "", execCreateTable(eng, args)
	case "insert":
		return "", execInsert(eng, args)
	case "select":
		return execSelect(eng, args)
	case "delete":
		return "", execDelete(eng, args)
	case "join":
		return execJoin(eng, args)
	case "insertselect":
		return "", execInsertSelect(eng, args)
	default:
		return "", engine.ErrUnrecognizedStatement
	}
}

func execCreateTable(eng *engine.Engine, args []string) error {
	if len(args) < 2 {
		return engine.ErrSyntax
	}
	name := args[0]
	cols := make(catalog.Schema, 0, len(args)-1)
	for _, spec := range args[1:] {
		parts := strings.Split(spec, ":")
		col := catalog.Column{Name: parts[0]}
		switch {
		case len(parts) >= 2 && parts[1] == "int":
			col.Type = catalog.Int
		case len(parts) >= 3 && parts[1] == "text":
			width, err := strconv.Atoi(parts[2])
			if err != nil {
				return engine.ErrSyntax
			}
			col.Type = catalog.Text
			col.Width = uint32(width)
		default:
			return engine.ErrSyntax
		}
		cols = append(cols, col)
	}
	return eng.CreateTable(name, cols)
}

func parseAssignments(args []string) (map[string]interface{}, error) {
	values := make(map[string]interface{})
	for _, a := range args {
		kv := strings.SplitN(a, "=", 2)
		if len(kv) != 2 {
			return nil, engine.ErrSyntax
		}
		key, raw := kv[0], kv[1]
		if n, err := strconv.Atoi(raw); err == nil {
			values[key] = n
		} else {
			values[key] = raw
		}
	}
	return values, nil
}

func execInsert(eng *engine.Engine, args []string) error {
	if len(args) < 1 {
		return engine.ErrSyntax
	}
	values, err := parseAssignments(args[1:])
	if err != nil {
		return err
	}
	return eng.Insert(args[0], values)
}

func execSelect(eng *engine.Engine, args []string) (string, error) {
	if len(args) < 1 {
		return "", engine.ErrSyntax
	}
	where, err := parseAssignments(args[1:])
	if err != nil {
		return "", err
	}
	rows, err := eng.Select(args[0], where)
	if err != nil {
		return "", err
	}
	return formatRows(rows), nil
}

func execDelete(eng *engine.Engine, args []string) error {
	if len(args) < 1 {
		return engine.ErrSyntax
	}
	where, err := parseAssignments(args[1:])
	if err != nil {
		return err
	}
	return eng.Delete(args[0], where)
}

func execJoin(eng *engine.Engine, args []string) (string, error) {
	if len(args) != 4 {
		return "", engine.ErrSyntax
	}
	rows, err := eng.Join(args[0], args[1], args[2], args[3])
	if err != nil {
		return "", err
	}
	return formatRows(rows), nil
}

func execInsertSelect(eng *engine.Engine, args []string) error {
	if len(args) != 2 {
		return engine.ErrSyntax
	}
	return eng.InsertAsSelect(args[0], args[1])
}

func formatRows(rows []map[string]interface{}) string {
	if len(rows) == 0 {
		return "(0 rows)"
	}
	cols := make([]string, 0, len(rows[0]))
	for k := range rows[0] {
		cols = append(cols, k)
	}
	sort.Strings(cols)

	var b strings.Builder
	for _, row := range rows {
		parts := make([]string, len(cols))
		for i, c := range cols {
			parts[i] = fmt.Sprintf("%s=%v", c, row[c])
		}
		b.WriteString(strings.Join(parts, " "))
		b.WriteByte('\n')
	}
	fmt.Fprintf(&b, "(%d rows)", len(rows))
	return b.String()
}
