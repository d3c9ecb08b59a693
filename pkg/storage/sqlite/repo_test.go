package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"pgtable/pkg/ddl"
	"pgtable/pkg/storage"
	"pgtable/pkg/table"
)

type user struct {
	ID     int64
	Name   string
	Email  *string
	Age    int32
	Active bool
}

var users = table.Map("users",
	table.Col(ddl.Build("id", ddl.Int8).PrimaryKey().Finish(), func(u *user) *int64 { return &u.ID }),
	table.Col(ddl.Build("name", ddl.Text).Unique().Finish(), func(u *user) *string { return &u.Name }),
	table.Col(ddl.Build("email", ddl.Text).Nullable().Finish(), func(u *user) **string { return &u.Email }),
	table.Col(ddl.Build("age", ddl.Int4).Index().Finish(), func(u *user) *int32 { return &u.Age }),
	table.Col(ddl.NewColumn("active", ddl.Bool), func(u *user) *bool { return &u.Active }),
).WithConstraints(ddl.Check("users_age_check", "age >= 0"))

func (user) Descriptor() *table.Descriptor  { return users.Descriptor() }
func (u user) Values() []any                { return users.Values(&u) }
func (u *user) DecodeRow(r table.Row) error { return users.Decode(r, u) }

// newExec opens a file-backed database in a per-test directory through the
// storage factory.
func newExec(tb testing.TB) storage.Executor {
	tb.Helper()
	dsn := filepath.Join(tb.TempDir(), "pgtable.db")
	ex, err := storage.New(context.Background(), storage.Config{Kind: "sqlite", DSN: dsn})
	if err != nil {
		tb.Fatalf("open sqlite %s: %v", dsn, err)
	}
	tb.Cleanup(ex.Close)
	return ex
}

func strPtr(s string) *string { return &s }

func TestCreateTable_Idempotent(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	ex := newExec(t)
	require.Equal(t, ddl.SQLite, ex.Dialect())

	require.NoError(t, storage.CreateTable[user](ctx, ex))
	require.NoError(t, storage.CreateTable[user](ctx, ex))

	rows, err := ex.Query(ctx, "SELECT name FROM sqlite_master WHERE type = 'index' AND tbl_name = ? AND sql IS NOT NULL", "users")
	require.NoError(t, err)
	defer rows.Close()

	var names []string
	for rows.Next() {
		var n string
		require.NoError(t, rows.Row().Scan("name", &n))
		names = append(names, n)
	}
	require.NoError(t, rows.Err())
	require.Equal(t, []string{"users_age_idx"}, names)
}

func TestInsertAndSelectAll(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	ex := newExec(t)
	require.NoError(t, storage.CreateTable[user](ctx, ex))

	empty, err := storage.SelectAll[user](ctx, ex)
	require.NoError(t, err)
	require.NotNil(t, empty)
	require.Empty(t, empty)

	ada := user{ID: 1, Name: "ada", Email: strPtr("ada@example.com"), Age: 36, Active: true}
	n, err := storage.InsertRow(ctx, ex, ada)
	require.NoError(t, err)
	require.EqualValues(t, 1, n)

	rest := []user{
		{ID: 2, Name: "bob", Age: 41},
		{ID: 3, Name: "cy", Email: strPtr("cy@example.com"), Age: 7, Active: true},
	}
	n, err = storage.InsertRows(ctx, ex, rest, 0)
	require.NoError(t, err)
	require.EqualValues(t, 2, n)

	got, err := storage.SelectAll[user](ctx, ex)
	require.NoError(t, err)
	require.Equal(t, append([]user{ada}, rest...), got)

	young, err := storage.Select[user](ctx, ex, "age < ? AND active = ?", 40, true)
	require.NoError(t, err)
	require.ElementsMatch(t, []user{ada, rest[1]}, young)
}

func TestConstraintViolationsReachCaller(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	ex := newExec(t)
	require.NoError(t, storage.CreateTable[user](ctx, ex))

	_, err := storage.InsertRow(ctx, ex, user{ID: 1, Name: "ada"})
	require.NoError(t, err)

	_, err = storage.InsertRow(ctx, ex, user{ID: 2, Name: "ada"})
	require.ErrorContains(t, err, "UNIQUE constraint failed")

	_, err = storage.InsertRow(ctx, ex, user{ID: 3, Name: "neg", Age: -1})
	require.ErrorContains(t, err, "CHECK constraint failed")
}

// mood has an enum column, which SQLite cannot create.
type mood struct{ Label string }

var moods = table.Map("moods",
	table.Col(ddl.NewColumn("label", ddl.EnumType("mood", "sad", "ok")), func(m *mood) *string { return &m.Label }),
)

func (mood) Descriptor() *table.Descriptor  { return moods.Descriptor() }
func (m mood) Values() []any                { return moods.Values(&m) }
func (m *mood) DecodeRow(r table.Row) error { return moods.Decode(r, m) }

func TestUserDefinedTypesUnsupported(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	ex := newExec(t)

	require.ErrorIs(t, storage.CreateTable[mood](ctx, ex), ddl.ErrUnsupportedType)
	_, err := storage.SelectAll[mood](ctx, ex)
	require.ErrorIs(t, err, ddl.ErrUnsupportedType)

	exists, err := ex.TypeExists(ctx, "mood")
	require.NoError(t, err)
	require.False(t, exists)
	require.NoError(t, ex.RegisterTypes(ctx))
}

func TestNewRepository_Errors(t *testing.T) {
	t.Parallel()

	_, _, err := NewRepository(context.Background(), Config{DSN: "  "})
	require.ErrorContains(t, err, "DSN must not be empty")

	_, _, err = NewRepository(context.Background(), Config{DSN: filepath.Join(t.TempDir(), "missing", "dir", "x.db")})
	require.Error(t, err)
}

func TestInMemorySingleConnection(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	r, closeFn, err := NewRepository(ctx, Config{DSN: ":memory:", MaxConns: 8})
	require.NoError(t, err)
	defer closeFn()

	require.Equal(t, 1, r.db.Stats().MaxOpenConnections)
	require.NoError(t, storage.CreateTable[user](ctx, r))
	_, err = storage.InsertRow(ctx, r, user{ID: 1, Name: "ada"})
	require.NoError(t, err)

	got, err := storage.SelectAll[user](ctx, r)
	require.NoError(t, err)
	require.Len(t, got, 1)
}
