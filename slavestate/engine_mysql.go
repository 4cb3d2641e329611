package slavestate

import (
	"database/sql"
	"fmt"

	_ "github.com/go-sql-driver/mysql"
)

// MySQLEngine persists position-table rows as ordinary rows in a MySQL
// table of the logical schema (domain_id, sub_id PRIMARY KEY, server_id,
// seq_no), writing them via plain database/sql Exec calls rather than a
// query builder.
type MySQLEngine struct {
	db *sql.DB
}

// NewMySQLEngine opens a connection pool against dsn (a go-sql-driver/mysql
// data source name).
func NewMySQLEngine(dsn string) (*MySQLEngine, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("open mysql position table store: %w", err)
	}
	return &MySQLEngine{db: db}, nil
}

func (e *MySQLEngine) WriteRow(tableName string, domain uint32, subID uint64, server uint32, seq uint64) error {
	query := fmt.Sprintf(
		"INSERT INTO %s (domain_id, sub_id, server_id, seq_no) VALUES (?, ?, ?, ?) "+
			"ON DUPLICATE KEY UPDATE server_id = VALUES(server_id), seq_no = VALUES(seq_no)",
		tableName,
	)
	_, err := e.db.Exec(query, domain, subID, server, seq)
	return err
}

func (e *MySQLEngine) Name() string { return "mysql" }

// Close releases the underlying connection pool.
func (e *MySQLEngine) Close() error {
	return e.db.Close()
}
