package envfile

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_ZeroValue(t *testing.T) {
	store := NewStore()

	assert.False(t, store.Initialized())
	assert.Equal(t, 0, store.Len())
	assert.Equal(t, 0, store.Cap())

	_, ok := store.Get("ANY")
	assert.False(t, ok)
	assert.Empty(t, store.Snapshot())
}

func TestStore_Init(t *testing.T) {
	t.Run("allocates once", func(t *testing.T) {
		store := NewStore()
		require.NoError(t, store.Init(10))
		assert.True(t, store.Initialized())
		assert.Equal(t, 10, store.Cap())

		require.NoError(t, store.Init(20))
		assert.Equal(t, 10, store.Cap(), "second Init must be a no-op")
	})

	t.Run("rejects non-positive capacity", func(t *testing.T) {
		store := NewStore()
		err := store.Init(0)
		assert.True(t, errors.Is(err, ErrAllocation))
		assert.False(t, store.Initialized())
		assert.Equal(t, 0, store.Cap())
	})

	t.Run("clamps to max entries", func(t *testing.T) {
		store := NewStore(WithMaxEntries(4))
		require.NoError(t, store.Init(10))
		assert.Equal(t, 4, store.Cap())
	})
}

func TestStore_AppendGrows(t *testing.T) {
	store := NewStore()
	require.NoError(t, store.Init(2))

	for i := 0; i < 5; i++ {
		require.NoError(t, store.Append(fmt.Sprintf("K%d", i), fmt.Sprintf("v%d", i)))
	}

	assert.Equal(t, 5, store.Len())
	assert.Equal(t, 8, store.Cap())
	for i := 0; i < 5; i++ {
		v, ok := store.Get(fmt.Sprintf("K%d", i))
		require.True(t, ok)
		assert.Equal(t, fmt.Sprintf("v%d", i), v)
	}
}

func TestStore_AppendWithoutInit(t *testing.T) {
	store := NewStore()
	require.NoError(t, store.Append("A", "1"))

	assert.True(t, store.Initialized())
	assert.Equal(t, DefaultInitialCapacity, store.Cap())
}

func TestStore_FirstWins(t *testing.T) {
	store := NewStore()
	require.NoError(t, store.Append("KEY", "first"))
	require.NoError(t, store.Append("OTHER", "x"))
	require.NoError(t, store.Append("KEY", "second"))

	v, ok := store.Get("KEY")
	require.True(t, ok)
	assert.Equal(t, "first", v)
	assert.Equal(t, 3, store.Len(), "duplicates are retained")

	_, ok = store.Get("key")
	assert.False(t, ok, "lookup is case-sensitive")
}

func TestStore_Clear(t *testing.T) {
	store := NewStore()
	require.NoError(t, store.Append("A", "1"))
	require.NoError(t, store.Append("B", "2"))

	store.Clear()

	assert.False(t, store.Initialized())
	assert.Equal(t, 0, store.Len())
	assert.Equal(t, 0, store.Cap())
	_, ok := store.Get("A")
	assert.False(t, ok)

	assert.NotPanics(t, store.Clear, "clearing an empty store is a no-op")

	require.NoError(t, store.Append("A", "3"))
	v, _ := store.Get("A")
	assert.Equal(t, "3", v)
}

func TestStore_FailedGrowKeepsData(t *testing.T) {
	store := NewStore(WithMaxEntries(3))
	require.NoError(t, store.Init(2))

	require.NoError(t, store.Append("A", "1"))
	require.NoError(t, store.Append("B", "2"))
	require.NoError(t, store.Append("C", "3"))
	assert.Equal(t, 3, store.Cap())

	err := store.Append("D", "4")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrAllocation))

	assert.Equal(t, 3, store.Len())
	assert.Equal(t, 3, store.Cap())
	for key, want := range map[string]string{"A": "1", "B": "2", "C": "3"} {
		v, ok := store.Get(key)
		require.True(t, ok, key)
		assert.Equal(t, want, v)
	}
	_, ok := store.Get("D")
	assert.False(t, ok)
}

func TestStore_Views(t *testing.T) {
	store := NewStore()
	require.NoError(t, store.Append("A", "1"))
	require.NoError(t, store.Append("B", "2"))
	require.NoError(t, store.Append("A", "3"))

	assert.Equal(t, []Entry{{"A", "1"}, {"B", "2"}, {"A", "3"}}, store.Snapshot())
	assert.Equal(t, []Entry{{"A", "1"}, {"B", "2"}}, store.Effective())
	assert.Equal(t, []string{"A", "B"}, store.Keys())
	assert.Equal(t, []string{"A=1", "B=2"}, store.Environ())
}

func TestStore_SnapshotIsACopy(t *testing.T) {
	store := NewStore()
	require.NoError(t, store.Append("A", "1"))

	snap := store.Snapshot()
	snap[0].Value = "changed"

	v, _ := store.Get("A")
	assert.Equal(t, "1", v)
}

func TestStore_ConcurrentAppend(t *testing.T) {
	store := NewStore()
	require.NoError(t, store.Init(1))

	const writers = 8
	const perWriter = 100

	var wg sync.WaitGroup
	for w := 0; w < writers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < perWriter; i++ {
				assert.NoError(t, store.Append(fmt.Sprintf("W%d_%d", w, i), "v"))
				store.Get("W0_0")
			}
		}(w)
	}
	wg.Wait()

	assert.Equal(t, writers*perWriter, store.Len())
	assert.GreaterOrEqual(t, store.Cap(), store.Len())
	for w := 0; w < writers; w++ {
		for i := 0; i < perWriter; i++ {
			_, ok := store.Get(fmt.Sprintf("W%d_%d", w, i))
			assert.True(t, ok)
		}
	}
}

func TestStore_Swap(t *testing.T) {
	store := NewStore(WithMaxEntries(5))
	require.NoError(t, store.Append("KEY", "old"))

	staging := store.NewStaging()
	assert.False(t, staging.Initialized())
	require.NoError(t, staging.Append("KEY", "new"))
	require.NoError(t, staging.Append("EXTRA", "1"))

	store.Swap(staging)

	v, _ := store.Get("KEY")
	assert.Equal(t, "new", v)
	assert.Equal(t, 2, store.Len())
	assert.False(t, staging.Initialized())

	store.Swap(store)
	assert.Equal(t, 2, store.Len(), "swapping with itself is a no-op")
}

func TestStore_StagingKeepsLimits(t *testing.T) {
	store := NewStore(WithMaxEntries(1))
	staging := store.NewStaging()

	require.NoError(t, staging.Append("A", "1"))
	assert.ErrorIs(t, staging.Append("B", "2"), ErrAllocation)
}
