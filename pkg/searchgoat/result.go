package searchgoat

import "sort"

// ResultSet is the concatenation of all result pages for one job, in original
// row order. Records keep their decoded JSON shapes; Columns is the union of
// every field name observed across all records. Fields appear in the order of
// the record that first carried them, lexically ordered within one record
// (JSON object key order is not preserved by decoding).
type ResultSet struct {
	records []Record
	columns []string
}

// NewResultSet builds a result set from already-ordered records.
func NewResultSet(records []Record) *ResultSet {
	resultSet := &ResultSet{records: records}

	seen := make(map[string]bool)

	for _, record := range records {
		for _, name := range recordFieldOrder(record) {
			if !seen[name] {
				seen[name] = true

				resultSet.columns = append(resultSet.columns, name)
			}
		}
	}

	return resultSet
}

// Len returns the number of rows.
func (rs *ResultSet) Len() int {
	return len(rs.records)
}

// Records returns the underlying rows. The slice is shared, not copied.
func (rs *ResultSet) Records() []Record {
	return rs.records
}

// Columns returns the union of observed field names in first-seen order.
func (rs *ResultSet) Columns() []string {
	return rs.columns
}

// recordFieldOrder returns the record's field names in deterministic order.
func recordFieldOrder(record Record) []string {
	names := make([]string, 0, len(record))
	for name := range record {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}
