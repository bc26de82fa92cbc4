package main

import (
	"fmt"
	"strings"

	"ridgedb/internal/catalog"
	"ridgedb/internal/engine"
)

// metaCommandResult reports whether a line was a recognized dot-command:
// handled, unrecognized (the caller falls through to statement
// execution), or a request to exit the front-end.
type metaCommandResult int

const (
	metaCommandSuccess metaCommandResult = iota
	metaCommandUnrecognized
	metaCommandExit
)

// handleMetaCommand recognizes a leading-dot meta-command and prints its
// result directly, keeping dot-commands separate from the statement
// dispatcher in statement.go.
func handleMetaCommand(eng *engine.Engine, line string, out func(string)) metaCommandResult {
	fields := strings.Fields(line)
	if len(fields) == 0 || !strings.HasPrefix(fields[0], ".") {
		return metaCommandUnrecognized
	}

	switch fields[0] {
	case ".exit":
		return metaCommandExit
	case ".tables":
		out(strings.Join(eng.ShowTables(), "\n"))
		return metaCommandSuccess
	case ".schema":
		if len(fields) != 2 {
			out("usage: .schema <table>")
			return metaCommandSuccess
		}
		desc, err := eng.DescribeTable(fields[1])
		if err != nil {
			out(err.Error())
			return metaCommandSuccess
		}
		out(formatSchema(desc.Name, desc.Columns))
		return metaCommandSuccess
	case ".index":
		if len(fields) != 2 {
			out("usage: .index <table>")
			return metaCommandSuccess
		}
		col, err := eng.ShowIndex(fields[1])
		if err != nil {
			out(err.Error())
			return metaCommandSuccess
		}
		out(fmt.Sprintf("%s(%s)", fields[1], col))
		return metaCommandSuccess
	default:
		return metaCommandUnrecognized
	}
}

func formatSchema(name string, cols catalog.Schema) string {
	parts := make([]string, 0, len(cols))
	for _, c := range cols {
		if c.Type == catalog.Text {
			parts = append(parts, fmt.Sprintf("%s:text:%d", c.Name, c.Width))
		} else {
			parts = append(parts, fmt.Sprintf("%s:int", c.Name))
		}
	}
	return fmt.Sprintf("%s(%s)", name, strings.Join(parts, " "))
}
