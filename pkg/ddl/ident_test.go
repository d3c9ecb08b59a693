package ddl

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestValidIdent covers the unquoted identifier rules.
func TestValidIdent(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in string
		ok bool
	}{
		{"name", true},
		{"_private", true},
		{"Point2D", true},
		{"price$usd", true},
		{"a1", true},
		{strings.Repeat("a", MaxIdentLen), true},
		{strings.Repeat("a", MaxIdentLen+1), false},
		{"", false},
		{"1st", false},
		{"$x", false},
		{"with space", false},
		{`quo"te`, false},
		{"semi;colon", false},
		{"dash-ed", false},
		{"naïve", false},
		{"select", false},
		{"TABLE", false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()

			err := ValidIdent(tt.in)
			if tt.ok {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, ErrInvalidIdent)
		})
	}
}

func TestValidQualifiedIdent(t *testing.T) {
	t.Parallel()

	require.NoError(t, ValidQualifiedIdent("figures"))
	require.NoError(t, ValidQualifiedIdent("public.figures"))
	require.NoError(t, ValidQualifiedIdent("db.public.figures"))
	require.ErrorIs(t, ValidQualifiedIdent("a.b.c.d"), ErrInvalidIdent)
	require.ErrorIs(t, ValidQualifiedIdent(".figures"), ErrInvalidIdent)
	require.ErrorIs(t, ValidQualifiedIdent("public."), ErrInvalidIdent)
}

func TestDialectPlaceholder(t *testing.T) {
	t.Parallel()

	require.Equal(t, "$1", Postgres.Placeholder(1))
	require.Equal(t, "$12", Postgres.Placeholder(12))
	require.Equal(t, "?", SQLite.Placeholder(3))
	require.Equal(t, "postgres", Postgres.String())
	require.Equal(t, "sqlite", SQLite.String())
	require.Equal(t, "dialect(7)", Dialect(7).String())
}
