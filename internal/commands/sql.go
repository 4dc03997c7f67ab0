package commands

import (
	"database/sql"
	"strings"
	"sync"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"

	"quill/internal/config"
	"quill/internal/debug"
	"quill/internal/object"
	"quill/internal/script"
)

// SQLCommand manages named database connections and runs queries against
// them. Connections are keyed by a script-chosen id and persist until an
// explicit disconnect.
type SQLCommand struct{}

var sqlMeta = &script.CommandMeta{
	Name:            "sql",
	Syntax:          "sql [id:<id>] [connect:<dsn> (driver:<driver>)/disconnect/query:<statement>/update:<statement>]",
	MinArgs:         2,
	MaxArgs:         3,
	Holdable:        true,
	PrefixesHandled: []string{"id", "connect", "driver", "query", "update"},
	BooleansHandled: []string{"disconnect"},
}

var (
	sqlMu          sync.Mutex
	sqlConnections = map[string]*sql.DB{}
)

func sqlConnection(id string) *sql.DB {
	sqlMu.Lock()
	defer sqlMu.Unlock()
	return sqlConnections[id]
}

func setSQLConnection(id string, db *sql.DB) {
	sqlMu.Lock()
	defer sqlMu.Unlock()
	sqlConnections[id] = db
}

func dropSQLConnection(id string) *sql.DB {
	sqlMu.Lock()
	defer sqlMu.Unlock()
	db := sqlConnections[id]
	delete(sqlConnections, id)
	return db
}

func (c *SQLCommand) Meta() *script.CommandMeta { return sqlMeta }

func (c *SQLCommand) Parse(entry *script.Entry) error { return nil }

func (c *SQLCommand) Execute(entry *script.Entry) error {
	id, err := entry.RequiredArgForPrefixAsElement("id")
	if err != nil {
		return err
	}
	key := id.AsLower()
	fail := func(format string, a ...any) {
		debug.EchoError(entry, format, a...)
		entry.AddObject("failed", object.ElementFromBool(true))
		entry.SetFinished(true)
	}
	if !config.Core.SQL.Allow {
		fail("sql access is disabled in the configuration")
		return nil
	}
	switch {
	case entry.ArgForPrefix("connect") != nil:
		dsn := entry.ArgForPrefixAsElement("connect", "").String()
		driver := entry.ArgForPrefixAsElement("driver", "sqlite3").AsLower()
		if sqlConnection(key) != nil {
			fail("already connected to sql id '%s'", key)
			return nil
		}
		debug.Report(entry, "sql", "action=connect", "id="+key, "driver="+driver)
		runHoldable(entry, func(complete func(apply func())) {
			db, err := sql.Open(driver, dsn)
			if err == nil {
				err = db.Ping()
			}
			complete(func() {
				if err != nil {
					debug.EchoError(entry, "sql connect failed: %v", err)
					entry.AddObject("failed", object.ElementFromBool(true))
				} else {
					setSQLConnection(key, db)
					entry.AddObject("failed", object.ElementFromBool(false))
				}
				entry.SetFinished(true)
			})
		})
	case entry.ArgAsBoolean("disconnect"):
		db := dropSQLConnection(key)
		if db == nil {
			fail("not connected to sql id '%s'", key)
			return nil
		}
		debug.Report(entry, "sql", "action=disconnect", "id="+key)
		db.Close()
		entry.SetFinished(true)
	case entry.ArgForPrefix("query") != nil:
		statement := entry.ArgForPrefixAsElement("query", "").String()
		db := sqlConnection(key)
		if db == nil {
			fail("not connected to sql id '%s'", key)
			return nil
		}
		debug.Report(entry, "sql", "action=query", "id="+key)
		runHoldable(entry, func(complete func(apply func())) {
			rows, err := sqlQueryRows(db, statement)
			complete(func() {
				if err != nil {
					debug.EchoError(entry, "sql query failed: %v", err)
					entry.AddObject("failed", object.ElementFromBool(true))
				} else {
					entry.AddObject("failed", object.ElementFromBool(false))
					entry.AddObject("result", rows)
				}
				entry.SetFinished(true)
			})
		})
	case entry.ArgForPrefix("update") != nil:
		statement := entry.ArgForPrefixAsElement("update", "").String()
		db := sqlConnection(key)
		if db == nil {
			fail("not connected to sql id '%s'", key)
			return nil
		}
		debug.Report(entry, "sql", "action=update", "id="+key)
		runHoldable(entry, func(complete func(apply func())) {
			res, err := db.Exec(statement)
			var affected int64
			if err == nil {
				affected, _ = res.RowsAffected()
			}
			complete(func() {
				if err != nil {
					debug.EchoError(entry, "sql update failed: %v", err)
					entry.AddObject("failed", object.ElementFromBool(true))
				} else {
					entry.AddObject("failed", object.ElementFromBool(false))
					entry.AddObject("affected", object.ElementFromInt(affected))
				}
				entry.SetFinished(true)
			})
		})
	default:
		return script.InvalidArguments("must specify connect, disconnect, query or update")
	}
	return nil
}

// sqlQueryRows runs a query and flattens the result set into a list of rows,
// each row itself a slash-joined list of column values.
func sqlQueryRows(db *sql.DB, statement string) (*object.List, error) {
	rows, err := db.Query(statement)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	out := object.NewList()
	for rows.Next() {
		raw := make([]sql.RawBytes, len(cols))
		scan := make([]any, len(cols))
		for i := range raw {
			scan[i] = &raw[i]
		}
		if err := rows.Scan(scan...); err != nil {
			return nil, err
		}
		fields := make([]string, len(cols))
		for i, cell := range raw {
			fields[i] = string(cell)
		}
		out.Add(object.NewElement(strings.Join(fields, "/")))
	}
	return out, rows.Err()
}
