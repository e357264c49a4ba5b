package reactive

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemo_RecomputesOnlyOnKeyChange(t *testing.T) {
	m := NewMemo(func(_ context.Context, key string) (int, error) {
		return len(key), nil
	})
	ctx := context.Background()

	steps := []struct {
		key      string
		want     int
		wantRuns int
	}{
		{key: "All", want: 3, wantRuns: 1},
		{key: "All", want: 3, wantRuns: 1},
		{key: "setosa", want: 6, wantRuns: 2},
		{key: "setosa", want: 6, wantRuns: 2},
		{key: "All", want: 3, wantRuns: 3},
	}

	for _, step := range steps {
		got, err := m.Get(ctx, step.key)
		require.NoError(t, err)
		assert.Equal(t, step.want, got)
		assert.Equal(t, step.wantRuns, m.Runs(), "after Get(%q)", step.key)
	}
}

func TestMemo_Invalidate(t *testing.T) {
	m := NewMemo(func(_ context.Context, key int) (int, error) {
		return key * 2, nil
	})
	ctx := context.Background()

	_, err := m.Get(ctx, 4)
	require.NoError(t, err)
	m.Invalidate()

	_, _, ok := m.Peek()
	assert.False(t, ok)

	got, err := m.Get(ctx, 4)
	require.NoError(t, err)
	assert.Equal(t, 8, got)
	assert.Equal(t, 2, m.Runs())
}

func TestMemo_ErrorsAreNotCached(t *testing.T) {
	fail := true
	m := NewMemo(func(_ context.Context, _ string) (string, error) {
		if fail {
			return "", errors.New("not yet")
		}
		return "ok", nil
	})
	ctx := context.Background()

	_, err := m.Get(ctx, "k")
	require.Error(t, err)

	fail = false
	got, err := m.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "ok", got)
	assert.Equal(t, 2, m.Runs())
}

func TestMemo_ConcurrentSameKey(t *testing.T) {
	m := NewMemo(func(_ context.Context, key string) (string, error) {
		return key + "!", nil
	})
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := m.Get(ctx, "same")
			assert.NoError(t, err)
			assert.Equal(t, "same!", v)
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, m.Runs())
}
