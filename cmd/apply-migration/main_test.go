package main

import (
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSplitStatements_CommentWithSemicolon(t *testing.T) {
	sql := `-- header; note the semicolon inside this comment
CREATE TABLE a (id INT);
  -- indented comment
CREATE INDEX idx_a ON a (id);
`
	statements := splitStatements(sql)
	require.Len(t, statements, 2)
	require.Equal(t, "CREATE TABLE a (id INT)", statements[0])
	require.Equal(t, "CREATE INDEX idx_a ON a (id)", statements[1])
}

func TestSplitStatements_SchemaFile(t *testing.T) {
	data, err := os.ReadFile("../../scripts/schema.sql")
	require.NoError(t, err)

	statements := splitStatements(string(data))
	require.NotEmpty(t, statements)

	// 每个chunk都是完整的CREATE语句，没有注释残渣混进来
	for _, stmt := range statements {
		require.True(t, strings.HasPrefix(stmt, "CREATE "), "unexpected statement: %q", stmt)
		require.NotContains(t, stmt, "--")
	}

	var tables, indexes int
	for _, stmt := range statements {
		switch {
		case strings.HasPrefix(stmt, "CREATE TABLE"):
			tables++
		case strings.HasPrefix(stmt, "CREATE INDEX"):
			indexes++
		}
	}
	require.Equal(t, 4, tables)
	require.Equal(t, 7, indexes)
}
