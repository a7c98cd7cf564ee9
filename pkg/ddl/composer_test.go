package ddl

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompose_NonPartitioned(t *testing.T) {
	stmt := Compose("customers", " (\n  `id` BIGINT,\n  `name` STRING)", "")

	assert.Equal(t, "CREATE TABLE IF NOT EXISTS customers (\n  `id` BIGINT,\n  `name` STRING);\n", stmt)
	assert.NotContains(t, stmt, "PARTITIONED BY")
	assert.True(t, strings.HasSuffix(stmt, ");\n"))
	require.NoError(t, Validate(stmt))
}

func TestCompose_Partitioned(t *testing.T) {
	stmt := Compose("sales", " (\n  `id` BIGINT,\n  `amount` DECIMAL(10,2))", "PARTITIONED BY (year int, month int)")

	assert.Equal(t, "CREATE TABLE IF NOT EXISTS sales (\n  `id` BIGINT,\n  `amount` DECIMAL(10,2))\nPARTITIONED BY (year int, month int);\n", stmt)
	assert.Less(t, strings.Index(stmt, "year int"), strings.Index(stmt, "month int"))
	require.NoError(t, Validate(stmt))
}

func TestCompose_Deterministic(t *testing.T) {
	a := Compose("t", " (\n  a INT)", "PARTITIONED BY (dt string)")
	b := Compose("t", " (\n  a INT)", "PARTITIONED BY (dt string)")
	assert.Equal(t, a, b)
}

func TestValidate(t *testing.T) {
	assert.Error(t, Validate("CREATE TABLE IF NOT EXISTS t (a INT)"))
	assert.Error(t, Validate("CREATE TABLE IF NOT EXISTS t (a DECIMAL(10,2);\n"))
	assert.Error(t, Validate("CREATE TABLE IF NOT EXISTS t a INT));\n"))
	assert.Error(t, Validate("DROP TABLE t;\n"))
	assert.NoError(t, Validate("CREATE TABLE IF NOT EXISTS t (a STRING COMMENT ':)');\n"))
}

func TestBlob(t *testing.T) {
	var blob Blob
	assert.Equal(t, 0, blob.Count())

	first := Compose("sales", " (\n  id INT)", "PARTITIONED BY (year int)")
	second := Compose("customers", " (\n  id INT)", "")
	blob.Append(first)
	blob.Append(second)

	assert.Equal(t, first+second, blob.String())
	assert.Equal(t, 2, blob.Count())
	assert.Equal(t, len(first)+len(second), blob.Len())
}
