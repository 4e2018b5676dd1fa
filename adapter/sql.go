// Package adapter holds the out-of-scope collaborator that forwards SQL
// statements to a platform data-source driver (§1 "out of scope", §6
// "surfaces consumed by external collaborators"). It is never imported by
// dbcore; the core's contract ends at the QueryEngine in dbcore/query.go.
//
// Grounded on perkeep/perkeep's use of github.com/go-sql-driver/mysql
// alongside database/sql to reach an external store - the same shape is
// used here to give this boundary collaborator a real, if deliberately
// thin, implementation instead of a prose-only stub.
package adapter

import (
	"database/sql"
	"fmt"

	_ "github.com/go-sql-driver/mysql"
)

// PlatformForwarder forwards simple SELECT/INSERT/UPDATE/DELETE statements
// to a platform database reachable over the standard MySQL wire protocol.
// It demonstrates the boundary only; it has no knowledge of the legacy
// data/memo/index file formats dbcore decodes.
type PlatformForwarder struct {
	db *sql.DB
}

// Open connects to a platform data source using a standard MySQL DSN.
func Open(dsn string) (*PlatformForwarder, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("adapter: opening platform data source: %w", err)
	}
	return &PlatformForwarder{db: db}, nil
}

// Forward executes statement against the platform data source and returns
// its rows as a slice of column-name->value maps. Translation from the
// core's own filter/select vocabulary into statement is the out-of-scope
// SQL front-end's job, not this adapter's.
func (p *PlatformForwarder) Forward(statement string, args ...interface{}) ([]map[string]interface{}, error) {
	rows, err := p.db.Query(statement, args...)
	if err != nil {
		return nil, fmt.Errorf("adapter: forwarding statement: %w", err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("adapter: reading columns: %w", err)
	}

	var out []map[string]interface{}
	for rows.Next() {
		values := make([]interface{}, len(cols))
		pointers := make([]interface{}, len(cols))
		for i := range values {
			pointers[i] = &values[i]
		}
		if err := rows.Scan(pointers...); err != nil {
			return nil, fmt.Errorf("adapter: scanning row: %w", err)
		}
		row := make(map[string]interface{}, len(cols))
		for i, col := range cols {
			row[col] = values[i]
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// Close releases the underlying connection pool.
func (p *PlatformForwarder) Close() error {
	return p.db.Close()
}
