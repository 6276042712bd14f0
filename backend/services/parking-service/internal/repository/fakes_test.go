package repository_test

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"io"
	"sync"
)

// stubResult is one canned query answer.
type stubResult struct {
	cols []string
	rows [][]driver.Value
}

// stubConn is a minimal database/sql driver connection answering queries from
// a dispatch function and recording the order they arrived in. Wrapped in a
// connector it backs a real *sql.DB, so the repositories under test need no
// seam of their own.
type stubConn struct {
	mu      sync.Mutex
	queries []string
	respond func(query string) (stubResult, error)
}

func (c *stubConn) Prepare(string) (driver.Stmt, error) {
	return nil, errors.New("prepare not supported")
}

func (c *stubConn) Close() error { return nil }

func (c *stubConn) Begin() (driver.Tx, error) {
	return nil, errors.New("transactions not supported")
}

func (c *stubConn) QueryContext(_ context.Context, query string, _ []driver.NamedValue) (driver.Rows, error) {
	c.mu.Lock()
	c.queries = append(c.queries, query)
	c.mu.Unlock()

	result, err := c.respond(query)
	if err != nil {
		return nil, err
	}
	return &stubRows{cols: result.cols, rows: result.rows}, nil
}

func (c *stubConn) seen() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.queries...)
}

type stubRows struct {
	cols []string
	rows [][]driver.Value
	idx  int
}

func (r *stubRows) Columns() []string { return r.cols }

func (r *stubRows) Close() error { return nil }

func (r *stubRows) Next(dest []driver.Value) error {
	if r.idx >= len(r.rows) {
		return io.EOF
	}
	copy(dest, r.rows[r.idx])
	r.idx++
	return nil
}

type stubConnector struct {
	conn *stubConn
}

func (c stubConnector) Connect(context.Context) (driver.Conn, error) { return c.conn, nil }

func (c stubConnector) Driver() driver.Driver { return stubDriver{} }

type stubDriver struct{}

func (stubDriver) Open(string) (driver.Conn, error) {
	return nil, errors.New("open through the connector")
}

// openStubDB returns a *sql.DB answering every query through respond.
func openStubDB(respond func(query string) (stubResult, error)) (*sql.DB, *stubConn) {
	conn := &stubConn{respond: respond}
	return sql.OpenDB(stubConnector{conn: conn}), conn
}

func sessionRow(id, doc string) [][]driver.Value {
	return [][]driver.Value{{id, []byte(doc)}}
}

var sessionCols = []string{"id", "doc"}
