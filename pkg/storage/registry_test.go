package storage

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

// Each test registers its own kinds so they can run in parallel against the
// shared registry.

func TestNew_PassesConfigToFactory(t *testing.T) {
	t.Parallel()

	var got Config
	Register("reg-config", func(ctx context.Context, cfg Config) (Executor, error) {
		got = cfg
		return newFakeExec(), nil
	})

	want := Config{Kind: "reg-config", DSN: "mem://figures", MaxConns: 4}
	ex, err := New(context.Background(), want)
	require.NoError(t, err)
	require.NotNil(t, ex)
	require.Equal(t, want, got)
	require.Contains(t, ListKinds(), "reg-config")
}

func TestNew_Errors(t *testing.T) {
	t.Parallel()

	_, err := New(context.Background(), Config{Kind: "does-not-exist"})
	require.EqualError(t, err, "unsupported storage.kind=does-not-exist")

	boom := errors.New("boom")
	Register("reg-failing", func(ctx context.Context, cfg Config) (Executor, error) {
		return nil, boom
	})
	_, err = New(context.Background(), Config{Kind: "reg-failing"})
	require.Same(t, boom, err)
}

func TestRegister_ReplacesFactory(t *testing.T) {
	t.Parallel()

	first, second := newFakeExec(), newFakeExec()
	Register("reg-replace", func(context.Context, Config) (Executor, error) { return first, nil })
	Register("reg-replace", func(context.Context, Config) (Executor, error) { return second, nil })

	ex, err := New(context.Background(), Config{Kind: "reg-replace"})
	require.NoError(t, err)
	require.Same(t, second, ex)
}

func TestListKinds_SortedCopy(t *testing.T) {
	t.Parallel()

	Register("reg-snap", func(context.Context, Config) (Executor, error) { return newFakeExec(), nil })

	a := ListKinds()
	require.True(t, sort.StringsAreSorted(a), "not sorted: %v", a)
	a[0] = "mutated"
	require.NotContains(t, ListKinds(), "mutated")
}

func TestRegistry_ConcurrentUse(t *testing.T) {
	t.Parallel()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			Register("reg-concurrent", func(context.Context, Config) (Executor, error) { return newFakeExec(), nil })
			_, err := New(context.Background(), Config{Kind: "reg-concurrent"})
			require.NoError(t, err)
			_ = ListKinds()
		}()
	}
	wg.Wait()
}
