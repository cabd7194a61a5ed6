/*
Package pgadapter provides a sqldataset.Adapter backed by a PostgreSQL
database.
*/
package pgadapter

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	// Import of postgres driver
	_ "github.com/lib/pq"

	"github.com/Bernard-AI4PH/Random-Forest-Analysis/dataset/sqldataset"
)

type adapter struct {
	db *sql.DB
}

/*
New takes a PostgreSQL connection URL and returns an Adapter that works
on that database or an error if the connection cannot be set up.
*/
func New(url string) (sqldataset.Adapter, error) {
	db, err := sql.Open("postgres", url)
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
