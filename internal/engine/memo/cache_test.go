package memo_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"testing/synctest"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/stash/internal/adapters/logger"
	"go.trai.ch/stash/internal/adapters/pool"
	"go.trai.ch/stash/internal/adapters/telemetry"
	"go.trai.ch/stash/internal/core/domain"
	"go.trai.ch/stash/internal/core/ports"
	"go.trai.ch/stash/internal/core/ports/mocks"
	"go.trai.ch/stash/internal/engine/memo"
	"go.uber.org/mock/gomock"
)

type deps struct {
	ctrl   *gomock.Controller
	loader *mocks.MockLoader
	store  *mocks.MockContentStore
	pool   *pool.WorkerPool
}

func newCache(t *testing.T) (*memo.Cache, *deps) {
	t.Helper()
	ctrl := gomock.NewController(t)
	d := &deps{
		ctrl:   ctrl,
		loader: mocks.NewMockLoader(ctrl),
		store:  mocks.NewMockContentStore(ctrl),
		pool:   pool.New(4, logger.New()),
	}
	cache := memo.New(
		[]ports.Loader{d.loader},
		d.store,
		d.pool,
		telemetry.NewNoOpTracer(),
		clockwork.NewFakeClock(),
		logger.New(),
	)
	return cache, d
}

func resultFor(source domain.ResolveSource, path string) *domain.ResolveResult {
	return &domain.ResolveResult{
		Files:  []domain.ResolvedFile{{Path: path}},
		Source: source,
	}
}

func TestCache_SingleFlight(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		cache, d := newCache(t)
		source := domain.ResolveSource{Path: "/remote/app.apk", TargetDir: "/tmp/a"}
		want := resultFor(source, "/tmp/a/app.apk")

		d.loader.EXPECT().
			Load(gomock.Any(), gomock.Any()).
			Return(want, nil).
			Times(1)

		const callers = 10
		var hits atomic.Int32
		var wg sync.WaitGroup
		for range callers {
			wg.Add(1)
			go func() {
				defer wg.Done()
				handle, hit := cache.GetOrLoad(t.Context(), source)
				if hit {
					hits.Add(1)
				}
				result, err := handle.Wait(t.Context())
				assert.NoError(t, err)
				assert.Equal(t, want, result)
			}()
		}
		wg.Wait()
		d.pool.Wait()

		assert.Equal(t, int32(callers-1), hits.Load(), "exactly one caller misses")
		assert.Equal(t, 1, cache.Len())
	})
}

func TestCache_FailureSharedByAllWaiters(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		cache, d := newCache(t)
		source := domain.ResolveSource{Path: "/remote/app.apk", TargetDir: "/tmp/a"}
		loadErr := errors.New("fetch failed")

		// A failed handle stays cached until explicitly purged, so the
		// loader runs once no matter how often the key is requested.
		d.loader.EXPECT().
			Load(gomock.Any(), gomock.Any()).
			Return(nil, loadErr).
			Times(1)

		handle, hit := cache.GetOrLoad(t.Context(), source)
		require.False(t, hit)
		_, err := handle.Wait(t.Context())
		require.ErrorIs(t, err, loadErr)

		again, hit := cache.GetOrLoad(t.Context(), source)
		assert.True(t, hit)
		assert.Same(t, handle, again)
		_, err = again.Wait(t.Context())
		assert.ErrorIs(t, err, loadErr)
		d.pool.Wait()
	})
}

func TestCache_RemoveIfMatches(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		cache, d := newCache(t)
		source := domain.ResolveSource{Path: "/remote/app.apk", TargetDir: "/tmp/a"}

		d.loader.EXPECT().
			Load(gomock.Any(), gomock.Any()).
			Return(nil, errors.New("fetch failed")).
			Times(2)

		handle, _ := cache.GetOrLoad(t.Context(), source)
		_, err := handle.Wait(t.Context())
		require.Error(t, err)

		// Purging with the live handle frees the key for a retry.
		assert.True(t, cache.RemoveIfMatches(source.Key(), handle))
		assert.Equal(t, 0, cache.Len())

		replacement, hit := cache.GetOrLoad(t.Context(), source)
		require.False(t, hit)

		// The stale handle must not clobber the newer registration.
		assert.False(t, cache.RemoveIfMatches(source.Key(), handle))
		assert.Equal(t, 1, cache.Len())

		_, _ = replacement.Wait(t.Context())
		d.pool.Wait()
	})
}

func TestCache_LoadsAreFullySerialized(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		cache, d := newCache(t)

		// Each loader invocation parks on the gate, so any two invocations
		// running concurrently would be observed together in flight.
		gate := make(chan struct{})
		var inFlight, maxInFlight atomic.Int32
		d.loader.EXPECT().
			Load(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, source domain.ResolveSource) (*domain.ResolveResult, error) {
				n := inFlight.Add(1)
				if n > maxInFlight.Load() {
					maxInFlight.Store(n)
				}
				<-gate
				inFlight.Add(-1)
				return resultFor(source, source.Path), nil
			}).
			Times(4)

		// Four distinct keys miss at once, one per pool worker; the loader
		// must still only ever run one invocation at a time.
		var handles []*memo.Handle
		for _, path := range []string{"/a", "/b", "/c", "/d"} {
			handle, hit := cache.GetOrLoad(t.Context(), domain.ResolveSource{Path: path, TargetDir: "/tmp"})
			require.False(t, hit)
			handles = append(handles, handle)
		}
		for range handles {
			gate <- struct{}{}
		}
		for _, handle := range handles {
			_, err := handle.Wait(t.Context())
			require.NoError(t, err)
		}
		d.pool.Wait()

		assert.Equal(t, int32(1), maxInFlight.Load())
	})
}

func TestCache_GetOrLoadNeverBlocksOnSaturatedPool(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		ctrl := gomock.NewController(t)
		loader := mocks.NewMockLoader(ctrl)
		store := mocks.NewMockContentStore(ctrl)
		p := pool.New(1, logger.New())
		cache := memo.New(
			[]ports.Loader{loader},
			store,
			p,
			telemetry.NewNoOpTracer(),
			clockwork.NewFakeClock(),
			logger.New(),
		)

		gate := make(chan struct{})
		loader.EXPECT().
			Load(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, source domain.ResolveSource) (*domain.ResolveResult, error) {
				<-gate
				return resultFor(source, source.Path), nil
			}).
			Times(2)

		// The single worker parks on the gate; a miss for a different key
		// must still hand back a handle immediately instead of waiting for
		// a pool slot. Blocking here would deadlock the bubble.
		first, hit := cache.GetOrLoad(t.Context(), domain.ResolveSource{Path: "/a", TargetDir: "/tmp"})
		require.False(t, hit)
		second, hit := cache.GetOrLoad(t.Context(), domain.ResolveSource{Path: "/b", TargetDir: "/tmp"})
		require.False(t, hit)

		close(gate)
		for _, handle := range []*memo.Handle{first, second} {
			_, err := handle.Wait(t.Context())
			require.NoError(t, err)
		}
		p.Wait()
	})
}

func TestCache_Prime(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		cache, _ := newCache(t)
		source := domain.ResolveSource{Path: "/remote/app.apk", TargetDir: "/tmp/a"}
		want := resultFor(source, "/tmp/a/app.apk")

		primed, inserted := cache.Prime(want)
		require.True(t, inserted)

		// The primed key reads as a hit; the loader has no expectations and
		// would fail the test if consulted.
		handle, hit := cache.GetOrLoad(t.Context(), source)
		assert.True(t, hit)
		assert.Same(t, primed, handle)
		result, err := handle.Wait(t.Context())
		require.NoError(t, err)
		assert.Equal(t, want, result)

		// Priming an occupied key is a no-op.
		_, inserted = cache.Prime(resultFor(source, "/tmp/b/app.apk"))
		assert.False(t, inserted)
	})
}

func TestCache_PrimeAll(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		cache, _ := newCache(t)
		a := resultFor(domain.ResolveSource{Path: "/a"}, "/tmp/a")
		b := resultFor(domain.ResolveSource{Path: "/b"}, "/tmp/b")

		require.Equal(t, 2, cache.PrimeAll([]*domain.ResolveResult{a, b}))

		// Re-priming an occupied key inserts nothing.
		assert.Equal(t, 0, cache.PrimeAll([]*domain.ResolveResult{a}))
		assert.Equal(t, 2, cache.Len())
	})
}

func TestCache_PersistentTierHit(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		cache, d := newCache(t)
		source := domain.ResolveSource{
			Path: "/remote/app.apk",
			Parameters: map[string]string{
				domain.ParamUsePersistentCache: "true",
				domain.ParamChecksum:           "deadbeef",
			},
			TargetDir: "/tmp/a",
		}
		want := resultFor(source, "/tmp/a/app.apk")

		d.store.EXPECT().
			Lookup(gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, _ domain.ResolveSource, key domain.CacheKey) (*domain.ResolveResult, error) {
				assert.Equal(t, domain.DefaultTeam, key.Team)
				assert.Equal(t, "deadbeef", key.Checksum.Hex)
				assert.Equal(t, domain.ChecksumSHA256, key.Checksum.Algorithm)
				return want, nil
			}).
			Times(1)

		handle, _ := cache.GetOrLoad(t.Context(), source)
		result, err := handle.Wait(t.Context())
		require.NoError(t, err)
		assert.Equal(t, want, result)
		d.pool.Wait()
	})
}

func TestCache_PopulatesPersistentTierAfterLoad(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		cache, d := newCache(t)
		checksum := domain.Checksum{Algorithm: domain.ChecksumSHA256, Hex: "deadbeef"}
		source := domain.ResolveSource{
			Path: "/remote/app.apk",
			Parameters: map[string]string{
				domain.ParamUsePersistentCache: "true",
				domain.ParamChecksum:           checksum.Hex,
			},
			TargetDir: "/tmp/a",
		}
		want := &domain.ResolveResult{
			Files:  []domain.ResolvedFile{{Path: "/tmp/a/app.apk", Checksum: &checksum}},
			Source: source,
		}

		d.store.EXPECT().Lookup(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, nil).Times(1)
		d.loader.EXPECT().Load(gomock.Any(), gomock.Any()).Return(want, nil).Times(1)
		d.store.EXPECT().
			Populate(gomock.Any(), domain.NewCacheKey(source, checksum), "/tmp/a/app.apk").
			Return(nil).
			Times(1)

		handle, _ := cache.GetOrLoad(t.Context(), source)
		_, err := handle.Wait(t.Context())
		require.NoError(t, err)
		d.pool.Wait()
	})
}

func TestCache_NoLoaderProducesResult(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		cache, d := newCache(t)
		source := domain.ResolveSource{Path: "/remote/unknown", TargetDir: "/tmp/a"}

		d.loader.EXPECT().Load(gomock.Any(), gomock.Any()).Return(nil, nil).Times(1)

		handle, _ := cache.GetOrLoad(t.Context(), source)
		_, err := handle.Wait(t.Context())
		require.ErrorIs(t, err, domain.ErrNoResult)
		d.pool.Wait()
	})
}

func TestCache_TargetDirExcludedFromKey(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		cache, d := newCache(t)
		first := domain.ResolveSource{Path: "/remote/app.apk", TargetDir: "/tmp/a"}
		second := domain.ResolveSource{Path: "/remote/app.apk", TargetDir: "/tmp/b"}

		// One load for both callers; both results point at the winning
		// caller's target directory.
		d.loader.EXPECT().
			Load(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, source domain.ResolveSource) (*domain.ResolveResult, error) {
				return resultFor(source, source.TargetDir+"/app.apk"), nil
			}).
			Times(1)

		h1, hit1 := cache.GetOrLoad(t.Context(), first)
		h2, hit2 := cache.GetOrLoad(t.Context(), second)
		require.False(t, hit1)
		require.True(t, hit2)
		require.Same(t, h1, h2)

		r1, err := h1.Wait(t.Context())
		require.NoError(t, err)
		r2, err := h2.Wait(t.Context())
		require.NoError(t, err)
		assert.Equal(t, r1, r2)
		assert.Equal(t, []string{"/tmp/a/app.apk"}, r1.Paths())
		d.pool.Wait()
	})
}
