package searchgoat

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/apache/arrow-go/v18/arrow/csv"
	"github.com/apache/arrow-go/v18/parquet"
	"github.com/apache/arrow-go/v18/parquet/pqarrow"
)

// Save serializes the result set to path. The format is selected strictly by
// the file extension, case-insensitively: ".parquet" preserves column types
// losslessly, ".csv" writes a textual representation and does not round-trip
// types exactly. Any other extension fails with a ConfigurationError before
// touching the filesystem.
func (rs *ResultSet) Save(path string) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".parquet":
		return rs.saveParquet(path)
	case ".csv":
		return rs.saveCSV(path)
	default:
		return &ConfigurationError{
			Reason: fmt.Sprintf("unsupported file extension %q: use .parquet or .csv", filepath.Ext(path)),
		}
	}
}

func (rs *ResultSet) saveParquet(path string) error {
	record, err := rs.Table()
	if err != nil {
		return fmt.Errorf("converting results: %w", err)
	}
	defer record.Release()

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}

	writer, err := pqarrow.NewFileWriter(record.Schema(), file, parquet.NewWriterProperties(), pqarrow.DefaultWriterProps())
	if err != nil {
		_ = file.Close()

		return fmt.Errorf("creating parquet writer: %w", err)
	}

	err = writer.Write(record)
	if err != nil {
		_ = writer.Close()

		return fmt.Errorf("writing parquet: %w", err)
	}

	// Closing the writer also closes the underlying file.
	err = writer.Close()
	if err != nil {
		return fmt.Errorf("closing parquet writer: %w", err)
	}

	return nil
}

func (rs *ResultSet) saveCSV(path string) error {
	record, err := rs.Table()
	if err != nil {
		return fmt.Errorf("converting results: %w", err)
	}
	defer record.Release()

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}

	writer := csv.NewWriter(file, record.Schema(), csv.WithHeader(true), csv.WithNullWriter(""))

	err = writer.Write(record)
	if err != nil {
		_ = file.Close()

		return fmt.Errorf("writing csv: %w", err)
	}

	err = writer.Flush()
	if err != nil {
		_ = file.Close()

		return fmt.Errorf("flushing csv: %w", err)
	}

	return file.Close()
}
