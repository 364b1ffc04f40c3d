package writer

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/omniscale/osmdoc/log"
	"github.com/omniscale/osmdoc/shape"
)

const (
	DefaultSchema = "public"
	DefaultTable  = "osm_documents"
)

// Postgres loads the documents into a jsonb column of a table. The table
// is created if it does not exist and truncated otherwise. All documents
// are copied in a single transaction that is committed on Close.
type Postgres struct {
	db     *sql.DB
	tx     *sql.Tx
	stmt   *sql.Stmt
	schema string
	table  string
	count  int
}

// OpenPostgres connects with the lib/pq connection string or URL dsn.
func OpenPostgres(dsn, schema, table string) (*Postgres, error) {
	if schema == "" {
		schema = DefaultSchema
	}
	if table == "" {
		table = DefaultTable
	}
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		params, err := pq.ParseURL(dsn)
		if err != nil {
			return nil, errors.Wrap(err, "parsing postgres URL")
		}
		dsn = params
	}
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, errors.Wrap(err, "opening postgres")
	}
	// check that the connection actually works
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "connecting to postgres")
	}
	pg := &Postgres{db: db, schema: schema, table: table}
	if err := pg.begin(); err != nil {
		db.Close()
		return nil, err
	}
	return pg, nil
}

func (pg *Postgres) fullName() string {
	return pq.QuoteIdentifier(pg.schema) + "." + pq.QuoteIdentifier(pg.table)
}

func (pg *Postgres) begin() error {
	tx, err := pg.db.Begin()
	if err != nil {
		return errors.Wrap(err, "starting transaction")
	}
	stmts := []string{
		fmt.Sprintf(`CREATE SCHEMA IF NOT EXISTS %s`, pq.QuoteIdentifier(pg.schema)),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (id SERIAL PRIMARY KEY, type VARCHAR, doc JSONB)`, pg.fullName()),
		fmt.Sprintf(`TRUNCATE TABLE %s RESTART IDENTITY`, pg.fullName()),
	}
	for _, q := range stmts {
		if _, err := tx.Exec(q); err != nil {
			tx.Rollback()
			return &SQLError{q, err}
		}
	}
	// COPY FROM STDIN does not permit other statements in tx
	copySQL := pq.CopyInSchema(pg.schema, pg.table, "type", "doc")
	stmt, err := tx.Prepare(copySQL)
	if err != nil {
		tx.Rollback()
		return &SQLError{copySQL, err}
	}
	pg.tx = tx
	pg.stmt = stmt
	return nil
}

func (pg *Postgres) Write(doc shape.Document) error {
	buf, err := json.Marshal(doc)
	if err != nil {
		return errors.Wrap(err, "encoding document")
	}
	if _, err := pg.stmt.Exec(doc.Type(), string(buf)); err != nil {
		return errors.Wrapf(err, "copying document into %s", pg.fullName())
	}
	pg.count++
	return nil
}

// Close flushes the COPY and commits.
func (pg *Postgres) Close() error {
	defer pg.db.Close()
	if _, err := pg.stmt.Exec(); err != nil {
		pg.tx.Rollback()
		return errors.Wrap(err, "finishing copy")
	}
	if err := pg.stmt.Close(); err != nil {
		pg.tx.Rollback()
		return errors.Wrap(err, "closing copy")
	}
	if err := pg.tx.Commit(); err != nil {
		return errors.Wrap(err, "committing documents")
	}
	log.Printf("[info] Loaded %d documents into %s", pg.count, pg.fullName())
	return nil
}

// Abort rolls back all documents written so far.
func (pg *Postgres) Abort() error {
	defer pg.db.Close()
	pg.stmt.Close()
	return errors.Wrap(pg.tx.Rollback(), "rolling back documents")
}

type SQLError struct {
	query         string
	originalError error
}

func (e *SQLError) Error() string {
	return fmt.Sprintf("SQL Error: %s in query %s", e.originalError.Error(), e.query)
}
