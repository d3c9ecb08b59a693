package storage

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"sync"

	"pgtable/pkg/ddl"
	"pgtable/pkg/table"
)

// fakeExec is an in-memory Executor. It understands just enough of the
// generated SQL to keep tables, types and indices, honoring IF NOT EXISTS the
// way PostgreSQL does. CREATE TYPE on an existing type fails.
type fakeExec struct {
	mu sync.Mutex

	dialect ddl.Dialect
	stmts   []string
	args    [][]any

	types      map[string]bool
	tables     map[string]*fakeTable
	indices    map[string]bool
	registered []string

	// failOn makes the first statement containing the substring fail.
	failOn  string
	failErr error
	// hide drops these columns from query results.
	hide map[string]bool
	// typeExistsErr fails every TypeExists call.
	typeExistsErr error
}

type fakeTable struct {
	columns []string
	rows    [][]any
}

func newFakeExec() *fakeExec {
	return &fakeExec{
		dialect: ddl.Postgres,
		types:   map[string]bool{},
		tables:  map[string]*fakeTable{},
		indices: map[string]bool{},
	}
}

var (
	createTypeRE  = regexp.MustCompile(`^CREATE TYPE (\S+) AS`)
	createTableRE = regexp.MustCompile(`^CREATE TABLE IF NOT EXISTS (\S+) \((.*)\)$`)
	createIndexRE = regexp.MustCompile(`^CREATE INDEX IF NOT EXISTS (\S+) ON`)
	insertRE      = regexp.MustCompile(`^INSERT INTO (\S+) \(([^)]*)\) VALUES`)
	selectRE      = regexp.MustCompile(`^SELECT \* FROM (\S+)`)
)

func (f *fakeExec) Dialect() ddl.Dialect { return f.dialect }

func (f *fakeExec) Exec(ctx context.Context, sql string, args ...any) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.stmts = append(f.stmts, sql)
	f.args = append(f.args, args)
	if f.failOn != "" && strings.Contains(sql, f.failOn) {
		return 0, f.failErr
	}

	switch {
	case createTypeRE.MatchString(sql):
		name := createTypeRE.FindStringSubmatch(sql)[1]
		if f.types[name] {
			return 0, fmt.Errorf("type %q already exists", name)
		}
		f.types[name] = true
		return 0, nil

	case createTableRE.MatchString(sql):
		m := createTableRE.FindStringSubmatch(sql)
		if _, ok := f.tables[m[1]]; ok {
			return 0, nil
		}
		var cols []string
		for _, def := range strings.Split(m[2], ", ") {
			if strings.HasPrefix(def, "CONSTRAINT ") {
				continue
			}
			cols = append(cols, strings.Fields(def)[0])
		}
		f.tables[m[1]] = &fakeTable{columns: cols}
		return 0, nil

	case createIndexRE.MatchString(sql):
		f.indices[createIndexRE.FindStringSubmatch(sql)[1]] = true
		return 0, nil

	case insertRE.MatchString(sql):
		m := insertRE.FindStringSubmatch(sql)
		t, ok := f.tables[m[1]]
		if !ok {
			return 0, fmt.Errorf("relation %q does not exist", m[1])
		}
		cols := strings.Split(m[2], ",")
		if len(args)%len(cols) != 0 {
			return 0, fmt.Errorf("got %d args for %d columns", len(args), len(cols))
		}
		var n int64
		for i := 0; i < len(args); i += len(cols) {
			t.rows = append(t.rows, append([]any(nil), args[i:i+len(cols)]...))
			n++
		}
		return n, nil
	}
	return 0, fmt.Errorf("fake: unsupported statement %q", sql)
}

func (f *fakeExec) Query(ctx context.Context, sql string, args ...any) (Rows, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.stmts = append(f.stmts, sql)
	f.args = append(f.args, args)
	if f.failOn != "" && strings.Contains(sql, f.failOn) {
		return nil, f.failErr
	}

	m := selectRE.FindStringSubmatch(sql)
	if m == nil {
		return nil, fmt.Errorf("fake: unsupported query %q", sql)
	}
	t, ok := f.tables[m[1]]
	if !ok {
		return nil, fmt.Errorf("relation %q does not exist", m[1])
	}

	var names []string
	var keep []int
	for i, c := range t.columns {
		if f.hide[c] {
			continue
		}
		names = append(names, c)
		keep = append(keep, i)
	}
	rows := make([]table.Row, 0, len(t.rows))
	for _, r := range t.rows {
		vals := make([]any, len(keep))
		for j, i := range keep {
			vals[j] = r[i]
		}
		rows = append(rows, table.NewValueRow(names, vals))
	}
	return &fakeRows{rows: rows, pos: -1}, nil
}

func (f *fakeExec) TypeExists(ctx context.Context, name string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.typeExistsErr != nil {
		return false, f.typeExistsErr
	}
	return f.types[name], nil
}

func (f *fakeExec) RegisterTypes(ctx context.Context, names ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, n := range names {
		if !f.types[n] {
			return fmt.Errorf("type %q does not exist", n)
		}
	}
	f.registered = append(f.registered, names...)
	return nil
}

func (f *fakeExec) Close() {}

func (f *fakeExec) statements() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.stmts...)
}

type fakeRows struct {
	rows   []table.Row
	pos    int
	closed bool
}

func (r *fakeRows) Next() bool {
	if r.closed || r.pos+1 >= len(r.rows) {
		return false
	}
	r.pos++
	return true
}

func (r *fakeRows) Row() table.Row { return r.rows[r.pos] }
func (r *fakeRows) Err() error     { return nil }
func (r *fakeRows) Close()         { r.closed = true }
