/*
Package sqlite3adapter provides a sqldataset.Adapter backed by an
SQLite3 database file.
*/
package sqlite3adapter

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	// Import of sqlite3 driver
	_ "github.com/mattn/go-sqlite3"

	"github.com/Bernard-AI4PH/Random-Forest-Analysis/dataset/sqldataset"
)

type adapter struct {
	db *sql.DB
}

/*
New takes a path to an SQLite3 database file and returns an Adapter
that works on the file's database or an error if it fails to open as an
sqlite3 database.
*/
func New(path string) (sqldataset.Adapter, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	return &adapter{db}, nil
}

func (a *adapter) QuerySamples(ctx context.Context, table string, columns []string) (*sql.Rows, error) {
	quoted := make([]string, len(columns))
	for i, c := range columns {
		qc, err := quoteIdentifier(c)
		if err != nil {
			return nil, err
		}
		quoted[i] = qc
	}
	qt, err := quoteIdentifier(table)
	if err != nil {
		return nil, err
	}
	return a.db.QueryContext(ctx, fmt.Sprintf("SELECT %s FROM %s", strings.Join(quoted, ", "), qt))
}

func (a *adapter) Close() error {
	return a.db.Close()
}

func quoteIdentifier(name string) (string, error) {
	if strings.ContainsAny(name, `"`) {
		return "", fmt.Errorf(`identifier '%s' contains invalid character '"'`, name)
	}
	return `"` + name + `"`, nil
}
