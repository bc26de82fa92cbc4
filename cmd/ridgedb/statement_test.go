package main

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"ridgedb/internal/engine"
)

func openTestEngine(t *testing.T) *engine.Engine {
	t.Helper()
	dir := t.TempDir()
	eng, err := engine.Open(filepath.Join(dir, "cli.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = eng.Close() })
	return eng
}

func TestExecuteInsertAndSelect(t *testing.T) {
	eng := openTestEngine(t)

	_, err := Execute(eng, "insert users id=1 username=alice email=alice@example.com")
	require.NoError(t, err)

	out, err := Execute(eng, "select users id=1")
	require.NoError(t, err)
	require.True(t, strings.Contains(out, "username=alice"))
	require.True(t, strings.Contains(out, "(1 rows)"))
}

func TestExecuteDuplicateKeyReportsError(t *testing.T) {
	eng := openTestEngine(t)
	_, err := Execute(eng, "insert users id=1 username=alice email=a@example.com")
	require.NoError(t, err)
	_, err = Execute(eng, "insert users id=1 username=bob email=b@example.com")
	require.ErrorIs(t, err, engine.ErrDuplicateKey)
}

func TestExecuteCreateTableAndDescribe(t *testing.T) {
	eng := openTestEngine(t)
	_, err := Execute(eng, "createtable widgets id:int label:text:16")
	require.NoError(t, err)

	desc, err := eng.DescribeTable("widgets")
	require.NoError(t, err)
	require.Equal(t, "widgets", desc.Name)
	require.Len(t, desc.Columns, 2)
}

func TestExecuteJoin(t *testing.T) {
	eng := openTestEngine(t)
	_, err := Execute(eng, "insert users id=1 username=alice email=a@example.com")
	require.NoError(t, err)
	_, err = Execute(eng, "insert orders id=100 user_id=1 product_name=widget")
	require.NoError(t, err)

	out, err := Execute(eng, "join users id orders user_id")
	require.NoError(t, err)
	require.True(t, strings.Contains(out, "product_name=widget"))
}

func TestExecuteUnrecognizedStatement(t *testing.T) {
	eng := openTestEngine(t)
	_, err := Execute(eng, "frobnicate users")
	require.ErrorIs(t, err, engine.ErrUnrecognizedStatement)
}

func TestHandleMetaCommandTablesAndSchema(t *testing.T) {
	eng := openTestEngine(t)
	var captured string
	result := handleMetaCommand(eng, ".tables", func(s string) { captured = s })
	require.Equal(t, metaCommandSuccess, result)
	require.True(t, strings.Contains(captured, "users"))

	result = handleMetaCommand(eng, ".schema users", func(s string) { captured = s })
	require.Equal(t, metaCommandSuccess, result)
	require.True(t, strings.Contains(captured, "username"))

	require.Equal(t, metaCommandExit, handleMetaCommand(eng, ".exit", func(string) {}))
	require.Equal(t, metaCommandUnrecognized, handleMetaCommand(eng, "select users", func(string) {}))
}
