package searchgoat_test

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/apache/arrow-go/v18/parquet"
	"github.com/apache/arrow-go/v18/parquet/pqarrow"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/searchgoat-io/searchgoat-go/pkg/searchgoat"
)

// sampleResults builds a small typed result set for serialization tests.
func sampleResults() *searchgoat.ResultSet {
	return searchgoat.NewResultSet([]searchgoat.Record{
		{"_time": json.Number("1700000000"), "count": json.Number("10"), "host": "web-1"},
		{"_time": json.Number("1700000001"), "count": json.Number("20"), "host": "web-2"},
		{"_time": json.Number("1700000002"), "count": json.Number("30"), "host": "web-3"},
	})
}

func TestResultSet_Save_Parquet(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "results.parquet")

	err := sampleResults().Save(path)
	require.NoError(t, err)

	reader, err := os.Open(path)
	require.NoError(t, err)
	defer func() { _ = reader.Close() }()

	table, err := pqarrow.ReadTable(
		context.Background(),
		reader,
		parquet.NewReaderProperties(memory.DefaultAllocator),
		pqarrow.ArrowReadProperties{},
		memory.DefaultAllocator,
	)
	require.NoError(t, err)
	defer table.Release()

	assert.Equal(t, int64(3), table.NumRows())
	assert.Equal(t, int64(3), table.NumCols())

	schema := table.Schema()

	timeField, ok := schema.FieldsByName("_time")
	require.True(t, ok)
	assert.Equal(t, arrow.TIMESTAMP, timeField[0].Type.ID())

	countField, ok := schema.FieldsByName("count")
	require.True(t, ok)
	assert.Equal(t, arrow.PrimitiveTypes.Int64, countField[0].Type)

	hostField, ok := schema.FieldsByName("host")
	require.True(t, ok)
	assert.Equal(t, arrow.BinaryTypes.String, hostField[0].Type)

	countColumn, ok := table.Column(schema.FieldIndices("count")[0]).Data().Chunk(0).(*array.Int64)
	require.True(t, ok)
	assert.Equal(t, int64(10), countColumn.Value(0))
	assert.Equal(t, int64(30), countColumn.Value(2))

	hostColumn, ok := table.Column(schema.FieldIndices("host")[0]).Data().Chunk(0).(*array.String)
	require.True(t, ok)
	assert.Equal(t, "web-1", hostColumn.Value(0))
	assert.Equal(t, "web-3", hostColumn.Value(2))
}

func TestResultSet_Save_CSV(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "results.csv")

	err := searchgoat.NewResultSet([]searchgoat.Record{
		{"count": json.Number("10"), "host": "web-1"},
		{"count": json.Number("20"), "host": "web-2"},
		{"host": "web-3"},
	}).Save(path)
	require.NoError(t, err)

	content, err := os.ReadFile(path)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(content)), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "count,host", lines[0])
	assert.Contains(t, lines[1], "10")
	assert.Contains(t, lines[1], "web-1")

	// The missing count renders as an empty cell, not a literal null.
	assert.True(t, strings.HasPrefix(lines[3], ","))
	assert.Contains(t, lines[3], "web-3")
}

func TestResultSet_Save_ExtensionHandling(t *testing.T) {
	t.Parallel()

	t.Run("extension match is case-insensitive", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "results.CSV")

		err := sampleResults().Save(path)
		require.NoError(t, err)

		_, err = os.Stat(path)
		assert.NoError(t, err)
	})

	t.Run("unsupported extension fails before touching the filesystem", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "results.txt")

		err := sampleResults().Save(path)
		require.Error(t, err)
		assert.True(t, searchgoat.IsConfiguration(err))
		assert.Contains(t, err.Error(), ".txt")

		_, statErr := os.Stat(path)
		assert.True(t, os.IsNotExist(statErr))
	})

	t.Run("missing extension is rejected", func(t *testing.T) {
		t.Parallel()

		err := sampleResults().Save(filepath.Join(t.TempDir(), "results"))
		require.Error(t, err)
		assert.True(t, searchgoat.IsConfiguration(err))
	})
}
