package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Walehamdi1/QNA/internal/domain"
	"github.com/Walehamdi1/QNA/internal/mocks"
)

func TestFormCache_ListReadThrough(t *testing.T) {
	rec := mocks.NewMockMetrics()
	fc := NewFormCache(time.Minute, rec)
	ctx := context.Background()

	var loads int
	load := func(context.Context) ([]*domain.Formulaire, error) {
		loads++
		return []*domain.Formulaire{{ID: 1, Titre: "A"}}, nil
	}

	first, err := fc.List(ctx, load)
	require.NoError(t, err)
	second, err := fc.List(ctx, load)
	require.NoError(t, err)

	assert.Equal(t, 1, loads)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, rec.CacheHits)
	assert.Equal(t, 1, rec.CacheMisses)

	fc.Invalidate()
	_, err = fc.List(ctx, load)
	require.NoError(t, err)
	assert.Equal(t, 2, loads)
}

func TestFormCache_DetailKeyedByID(t *testing.T) {
	fc := NewFormCache(time.Minute, nil)
	ctx := context.Background()

	load := func(id int64) func(context.Context) (*domain.FormulaireDetail, error) {
		return func(context.Context) (*domain.FormulaireDetail, error) {
			return &domain.FormulaireDetail{Formulaire: domain.Formulaire{ID: id}}, nil
		}
	}

	d1, err := fc.Detail(ctx, 1, load(1))
	require.NoError(t, err)
	d2, err := fc.Detail(ctx, 2, load(2))
	require.NoError(t, err)

	assert.Equal(t, int64(1), d1.ID)
	assert.Equal(t, int64(2), d2.ID)
}

func TestFormCache_ErrorsNotCached(t *testing.T) {
	fc := NewFormCache(time.Minute, nil)
	ctx := context.Background()
	boom := errors.New("boom")

	_, err := fc.Detail(ctx, 7, func(context.Context) (*domain.FormulaireDetail, error) { return nil, boom })
	assert.ErrorIs(t, err, boom)

	d, err := fc.Detail(ctx, 7, func(context.Context) (*domain.FormulaireDetail, error) {
		return &domain.FormulaireDetail{Formulaire: domain.Formulaire{ID: 7}}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, int64(7), d.ID)
}

func TestFormCache_DisabledWithZeroTTL(t *testing.T) {
	rec := mocks.NewMockMetrics()
	fc := NewFormCache(0, rec)

	var loads int
	load := func(context.Context) ([]*domain.Formulaire, error) {
		loads++
		return nil, nil
	}
	for i := 0; i < 3; i++ {
		_, err := fc.List(context.Background(), load)
		require.NoError(t, err)
	}

	assert.Equal(t, 3, loads)
	assert.Zero(t, rec.CacheHits+rec.CacheMisses)
}

func TestFormCache_ConcurrentMissesCollapse(t *testing.T) {
	fc := NewFormCache(time.Minute, nil)
	release := make(chan struct{})
	var loads atomic.Int32

	load := func(context.Context) ([]*domain.Formulaire, error) {
		loads.Add(1)
		<-release
		return []*domain.Formulaire{{ID: 1}}, nil
	}

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = fc.List(context.Background(), load)
		}()
	}
	// Let the goroutines pile up on the shared fill
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), loads.Load())
}

func TestFormCache_InvalidateDuringLoadDropsResult(t *testing.T) {
	fc := NewFormCache(time.Minute, nil)
	ctx := context.Background()

	_, err := fc.List(ctx, func(context.Context) ([]*domain.Formulaire, error) {
		fc.Invalidate()
		return []*domain.Formulaire{{ID: 1, Titre: "stale"}}, nil
	})
	require.NoError(t, err)

	fresh, err := fc.List(ctx, func(context.Context) ([]*domain.Formulaire, error) {
		return []*domain.Formulaire{{ID: 1, Titre: "fresh"}}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, "fresh", fresh[0].Titre)
}

func TestFormCache_NoStaleEntryAfterConcurrentWrites(t *testing.T) {
	fc := NewFormCache(time.Minute, nil)
	ctx := context.Background()

	var version atomic.Int64
	load := func(context.Context) ([]*domain.Formulaire, error) {
		v := version.Load()
		time.Sleep(time.Microsecond)
		return []*domain.Formulaire{{ID: v}}, nil
	}

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for range 200 {
				_, _ = fc.List(ctx, load)
			}
		}()
		go func() {
			defer wg.Done()
			for range 50 {
				version.Add(1)
				fc.Invalidate()
			}
		}()
	}
	wg.Wait()

	got, err := fc.List(ctx, load)
	require.NoError(t, err)
	assert.Equal(t, version.Load(), got[0].ID, "cache kept a list loaded before the last write")
}
