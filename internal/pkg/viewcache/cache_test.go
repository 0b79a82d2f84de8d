package viewcache

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingNotifier struct {
	paths []string
}

func (n *recordingNotifier) NotifyInvalidated(path string) {
	n.paths = append(n.paths, path)
}

type failingStore struct {
	*MemoryStore
}

func (s *failingStore) Drop(context.Context, string) error {
	return errors.New("redis down")
}

func TestFetchLoadsOnceUntilInvalidated(t *testing.T) {
	ctx := context.Background()
	notifier := &recordingNotifier{}
	cache := New(NewMemoryStore(), zerolog.Nop(), notifier)

	loads := 0
	load := func(context.Context) ([]string, error) {
		loads++
		return []string{"salsa", "tango"}, nil
	}

	got, err := Fetch(ctx, cache, PathCourses, "all", load)
	require.NoError(t, err)
	assert.Equal(t, []string{"salsa", "tango"}, got)

	_, err = Fetch(ctx, cache, PathCourses, "all", load)
	require.NoError(t, err)
	assert.Equal(t, 1, loads)

	cache.Invalidate(ctx, PathCourses)
	_, err = Fetch(ctx, cache, PathCourses, "all", load)
	require.NoError(t, err)
	assert.Equal(t, 2, loads)
	assert.Equal(t, []string{PathCourses}, notifier.paths)
}

func TestFetchDoesNotStoreLoadErrors(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	cache := New(store, zerolog.Nop())

	_, err := Fetch(ctx, cache, PathCourses, "k", func(context.Context) (int, error) {
		return 0, errors.New("db down")
	})
	require.Error(t, err)

	_, ok, _ := store.Get(ctx, PathCourses, "k")
	assert.False(t, ok)
}

func TestInvalidateSwallowsStoreErrors(t *testing.T) {
	notifier := &recordingNotifier{}
	cache := New(&failingStore{MemoryStore: NewMemoryStore()}, zerolog.Nop(), notifier)

	assert.NotPanics(t, func() {
		cache.Invalidate(context.Background(), PathCourses, PathProfile)
	})
	assert.Equal(t, []string{PathCourses, PathProfile}, notifier.paths)
}

func TestFetchDoesNotStoreValueLoadedAcrossInvalidation(t *testing.T) {
	ctx := context.Background()
	cache := New(NewMemoryStore(), zerolog.Nop())

	// a booking lands while the listing is being read
	stale, err := Fetch(ctx, cache, PathCourses, "all", func(ctx context.Context) (int, error) {
		cache.Invalidate(ctx, PathCourses)
		return 5, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 5, stale)

	fresh, err := Fetch(ctx, cache, PathCourses, "all", func(context.Context) (int, error) {
		return 6, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 6, fresh)
}

func TestMemoryStoreSetRequiresCurrentGeneration(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	gen, err := store.Generation(ctx, PathCourses)
	require.NoError(t, err)
	require.NoError(t, store.Drop(ctx, PathCourses))

	stored, err := store.Set(ctx, PathCourses, "all", []byte(`1`), gen)
	require.NoError(t, err)
	assert.False(t, stored)

	gen, err = store.Generation(ctx, PathCourses)
	require.NoError(t, err)
	stored, err = store.Set(ctx, PathCourses, "all", []byte(`1`), gen)
	require.NoError(t, err)
	assert.True(t, stored)

	val, ok, err := store.Get(ctx, PathCourses, "all")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte(`1`), val)
}
