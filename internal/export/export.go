// Package export writes generated fixtures to local Parquet files, one file
// per table. The lab stages these files with PUT before COPY INTO.
package export

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/parquet-go/parquet-go"

	"flakelab/internal/common"
	"flakelab/pkg/errors"
	"flakelab/pkg/models"
)

// Ext is the extension of every exported file
const Ext = ".parquet"

// File is one written table
type File struct {
	Table string
	Path  string
	Rows  int
}

// WriteMarkets writes the non-empty tables of a markets data set to dir
func WriteMarkets(dir string, fx models.MarketsFixtures) ([]File, error) {
	w := &writer{dir: dir}
	writeTable(w, "companies", fx.Companies)
	writeTable(w, "stock_prices", fx.Prices)
	writeTable(w, "earnings_data", fx.Earnings)
	writeTable(w, "research_reports", fx.Reports)
	writeTable(w, "earnings_call_transcripts", fx.Transcripts)
	writeTable(w, "market_events", fx.Events)
	return w.files, w.err
}

// WriteRetail writes the lab data set to dir. File names follow the RAW_DATA
// table names.
func WriteRetail(dir string, fx models.RetailFixtures) ([]File, error) {
	w := &writer{dir: dir}
	writeTable(w, "CUSTOMERS", fx.Customers)
	writeTable(w, "PRODUCTS", fx.Products)
	writeTable(w, "STORES", fx.Stores)
	writeTable(w, "TRANSACTIONS", fx.Transactions)
	return w.files, w.err
}

// ReadFile reads every row of a Parquet file
func ReadFile[T any](path string) ([]T, error) {
	rows, err := parquet.ReadFile[T](path)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeFileOperation, "Failed to read parquet file").
			WithContext("path", path)
	}
	return rows, nil
}

// PathFor returns where a table is written inside dir
func PathFor(dir, table string) string {
	return filepath.Join(dir, strings.ToLower(table)+Ext)
}

type writer struct {
	dir   string
	files []File
	err   error
}

// writeTable is a function rather than a method because methods cannot
// take type parameters
func writeTable[T any](w *writer, table string, rows []T) {
	if w.err != nil || len(rows) == 0 {
		return
	}
	if err := os.MkdirAll(w.dir, common.DirPermissionNormal); err != nil {
		w.err = errors.Wrap(err, errors.ErrCodeFilePermission, "Failed to create export directory").
			WithContext("dir", w.dir)
		return
	}
	path := PathFor(w.dir, table)
	if err := parquet.WriteFile(path, rows); err != nil {
		w.err = errors.Wrap(err, errors.ErrCodeFileOperation, "Failed to write parquet file").
			WithContext("table", table).
			WithContext("path", path)
		return
	}
	w.files = append(w.files, File{Table: table, Path: path, Rows: len(rows)})
}
