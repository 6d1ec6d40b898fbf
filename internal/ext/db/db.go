// Package db is the "db" native extension: a thin script-visible wrapper
// over database/sql, registered into the module loader's cache exactly
// like any other module (§4.12). The driver name selects the backend;
// every supported driver package is imported for its side-effecting
// registration with database/sql and nothing else.
package db

import (
	"database/sql"
	"fmt"

	_ "github.com/denisenkom/go-mssqldb"
	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	_ "modernc.org/sqlite"

	"vellum/internal/errors"
	"vellum/internal/memory"
	"vellum/internal/object"
)

// handle is the script-visible connection value returned by db.open.
type handle struct {
	memory.Refcounted
	driver string
	conn   *sql.DB
	closed bool
}

var handleType = object.NewType("db.Connection", nil, nil)

func (h *handle) header() *memory.Refcounted { return &h.Refcounted }
func (h *handle) TypeOf() *object.Type        { return handleType }

// Register installs db.open/.query/.exec/.close into m, following the same
// initializer-returns-module contract as a script module's top-level
// bindings (§4.12, §6).
func Register(m *object.Module) {
	m.Set("open", object.NewNativeFunction("db.open", "open(driver, dsn)", builtinOpen))
	m.Set("query", object.NewNativeFunction("db.query", "query(conn, sql, ...args)", builtinQuery))
	m.Set("exec", object.NewNativeFunction("db.exec", "exec(conn, sql, ...args)", builtinExec))
	m.Set("close", object.NewNativeFunction("db.close", "close(conn)", builtinClose))
}

func asString(v object.Value, what string) (string, *errors.LangError) {
	s, ok := v.(*object.String)
	if !ok {
		return "", errors.New(errors.KindTypeError, "%s must be a string", what)
	}
	return s.String(), nil
}

func asHandle(v object.Value) (*handle, *errors.LangError) {
	h, ok := v.(*handle)
	if !ok {
		return nil, errors.New(errors.KindTypeError, "expected a db connection")
	}
	if h.closed {
		return nil, errors.New(errors.KindIOError, "connection is closed")
	}
	return h, nil
}

func toDriverArgs(vals []object.Value) []interface{} {
	out := make([]interface{}, len(vals))
	for i, v := range vals {
		switch x := v.(type) {
		case *object.String:
			out[i] = x.String()
		case *object.Integer:
			out[i] = x.AsBig().Int64()
		case *object.Float:
			out[i] = x.V
		default:
			out[i] = object.Str(v)
		}
	}
	return out
}

func builtinOpen(c object.Caller, self object.Value, args []object.Value) (object.Value, *errors.LangError) {
	if len(args) != 2 {
		return nil, errors.New(errors.KindArgError, "open() takes exactly 2 arguments")
	}
	driver, lerr := asString(args[0], "driver")
	if lerr != nil {
		return nil, lerr
	}
	dsn, lerr := asString(args[1], "dsn")
	if lerr != nil {
		return nil, lerr
	}
	conn, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, errors.Wrap(errors.KindIOError, err, "opening %s connection", driver)
	}
	if err := conn.Ping(); err != nil {
		return nil, errors.Wrap(errors.KindIOError, err, "pinging %s database", driver)
	}
	return &handle{Refcounted: memory.NewRefcounted(56), driver: driver, conn: conn}, nil
}

func builtinQuery(c object.Caller, self object.Value, args []object.Value) (object.Value, *errors.LangError) {
	if len(args) < 2 {
		return nil, errors.New(errors.KindArgError, "query() takes a connection, a statement, and optional arguments")
	}
	h, lerr := asHandle(args[0])
	if lerr != nil {
		return nil, lerr
	}
	stmt, lerr := asString(args[1], "statement")
	if lerr != nil {
		return nil, lerr
	}
	rows, err := h.conn.Query(stmt, toDriverArgs(args[2:])...)
	if err != nil {
		return nil, errors.Wrap(errors.KindIOError, err, "running query")
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, errors.Wrap(errors.KindIOError, err, "reading result columns")
	}

	var out []object.Value
	for rows.Next() {
		scan := make([]interface{}, len(cols))
		cells := make([]interface{}, len(cols))
		for i := range scan {
			scan[i] = &cells[i]
		}
		if err := rows.Scan(scan...); err != nil {
			return nil, errors.Wrap(errors.KindIOError, err, "scanning row")
		}
		row := object.NewDict()
		for i, col := range cols {
			row.SetStr(col, driverValueToObject(cells[i]))
		}
		out = append(out, row)
	}
	return object.NewList(out), nil
}

func builtinExec(c object.Caller, self object.Value, args []object.Value) (object.Value, *errors.LangError) {
	if len(args) < 2 {
		return nil, errors.New(errors.KindArgError, "exec() takes a connection, a statement, and optional arguments")
	}
	h, lerr := asHandle(args[0])
	if lerr != nil {
		return nil, lerr
	}
	stmt, lerr := asString(args[1], "statement")
	if lerr != nil {
		return nil, lerr
	}
	res, err := h.conn.Exec(stmt, toDriverArgs(args[2:])...)
	if err != nil {
		return nil, errors.Wrap(errors.KindIOError, err, "executing statement")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, errors.Wrap(errors.KindIOError, err, "reading rows affected")
	}
	return object.NewInt(n), nil
}

func builtinClose(c object.Caller, self object.Value, args []object.Value) (object.Value, *errors.LangError) {
	if len(args) != 1 {
		return nil, errors.New(errors.KindArgError, "close() takes exactly one argument")
	}
	h, ok := args[0].(*handle)
	if !ok {
		return nil, errors.New(errors.KindTypeError, "expected a db connection")
	}
	if h.closed {
		return object.None, nil
	}
	h.closed = true
	if err := h.conn.Close(); err != nil {
		return nil, errors.Wrap(errors.KindIOError, err, "closing connection")
	}
	return object.None, nil
}

func driverValueToObject(v interface{}) object.Value {
	switch x := v.(type) {
	case nil:
		return object.None
	case []byte:
		return object.NewString(string(x))
	case string:
		return object.NewString(x)
	case int64:
		return object.NewInt(x)
	case float64:
		return object.NewFloat(x)
	case bool:
		return object.BoolOf(x)
	default:
		return object.NewString(fmt.Sprintf("%v", x))
	}
}
