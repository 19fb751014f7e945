package searchgoat_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/searchgoat-io/searchgoat-go/pkg/searchgoat"
)

func TestNewResultSet(t *testing.T) {
	t.Parallel()

	t.Run("empty", func(t *testing.T) {
		t.Parallel()

		results := searchgoat.NewResultSet(nil)
		assert.Zero(t, results.Len())
		assert.Empty(t, results.Records())
		assert.Empty(t, results.Columns())
	})

	t.Run("preserves row order", func(t *testing.T) {
		t.Parallel()

		results := searchgoat.NewResultSet([]searchgoat.Record{
			{"host": "a"},
			{"host": "b"},
			{"host": "c"},
		})

		assert.Equal(t, 3, results.Len())
		assert.Equal(t, "a", results.Records()[0]["host"])
		assert.Equal(t, "c", results.Records()[2]["host"])
	})

	t.Run("columns are the union in first-seen order", func(t *testing.T) {
		t.Parallel()

		results := searchgoat.NewResultSet([]searchgoat.Record{
			{"_time": 1, "host": "a"},
			{"_time": 2, "host": "b", "level": "warn"},
			{"_time": 3, "status": 200},
		})

		assert.Equal(t, []string{"_time", "host", "level", "status"}, results.Columns())
	})

	t.Run("sparse records do not lose columns", func(t *testing.T) {
		t.Parallel()

		results := searchgoat.NewResultSet([]searchgoat.Record{
			{"a": 1},
			{"b": 2},
			{"a": 3, "c": 4},
		})

		assert.Equal(t, []string{"a", "b", "c"}, results.Columns())
	})
}
