package app_test

import (
	"context"
	"errors"
	"testing"
	"testing/synctest"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/stash/internal/adapters/flock"
	"go.trai.ch/stash/internal/adapters/logger"
	"go.trai.ch/stash/internal/adapters/pool"
	"go.trai.ch/stash/internal/adapters/telemetry"
	"go.trai.ch/stash/internal/app"
	"go.trai.ch/stash/internal/core/domain"
	"go.trai.ch/stash/internal/core/ports"
	"go.trai.ch/stash/internal/core/ports/mocks"
	"go.trai.ch/stash/internal/engine/memo"
	"go.trai.ch/stash/internal/engine/sweep"
	"go.uber.org/mock/gomock"
)

func newApp(t *testing.T, loader ports.Loader) *app.App {
	t.Helper()
	log := logger.New()
	locker := flock.New()
	workers := pool.New(2, log)
	tracer := telemetry.NewNoOpTracer()
	clk := clockwork.NewFakeClock()

	ctrl := gomock.NewController(t)
	store := mocks.NewMockContentStore(ctrl)
	store.EXPECT().Lookup(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, nil).AnyTimes()
	store.EXPECT().Populate(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil).AnyTimes()

	cache := memo.New([]ports.Loader{loader}, store, workers, tracer, clk, log)
	settings := &domain.Settings{
		RootDir:      t.TempDir(),
		MaxSizeBytes: 1 << 30,
		TrimToRatio:  0.8,
		ScanInterval: time.Minute,
		Workers:      2,
	}
	governor := sweep.NewGovernor(settings, sweep.NewScanner(locker, log), sweep.NewEvictor(locker, workers, log), tracer, clk, log)
	return app.New(cache, governor, workers, log)
}

func TestApp_Resolve(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		ctrl := gomock.NewController(t)
		loader := mocks.NewMockLoader(ctrl)
		loader.EXPECT().
			Load(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, source domain.ResolveSource) (*domain.ResolveResult, error) {
				return &domain.ResolveResult{
					Files:  []domain.ResolvedFile{{Path: source.TargetDir + "/out"}},
					Source: source,
				}, nil
			}).
			Times(2)

		a := newApp(t, loader)
		sources := []domain.ResolveSource{
			{Path: "/remote/a", TargetDir: "/tmp/x"},
			{Path: "/remote/b", TargetDir: "/tmp/x"},
		}

		results, err := a.Resolve(t.Context(), sources)
		require.NoError(t, err)
		require.Len(t, results, 2)
		assert.Equal(t, []string{"/tmp/x/out"}, results[0].Paths())
	})
}

func TestApp_ResolveFailurePurgesForRetry(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		ctrl := gomock.NewController(t)
		loader := mocks.NewMockLoader(ctrl)
		loadErr := errors.New("fetch failed")
		gomock.InOrder(
			loader.EXPECT().Load(gomock.Any(), gomock.Any()).Return(nil, loadErr),
			loader.EXPECT().Load(gomock.Any(), gomock.Any()).DoAndReturn(
				func(_ context.Context, source domain.ResolveSource) (*domain.ResolveResult, error) {
					return &domain.ResolveResult{Source: source}, nil
				}),
		)

		a := newApp(t, loader)
		sources := []domain.ResolveSource{{Path: "/remote/a", TargetDir: "/tmp/x"}}

		_, err := a.Resolve(t.Context(), sources)
		require.ErrorIs(t, err, loadErr)

		// The failed handle was purged, so the same invocation retries.
		results, err := a.Resolve(t.Context(), sources)
		require.NoError(t, err)
		require.Len(t, results, 1)
	})
}

func TestApp_GC(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	a := newApp(t, mocks.NewMockLoader(ctrl))
	require.NoError(t, a.GC(t.Context()))
}

func TestApp_DaemonStopsOnCancel(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		ctrl := gomock.NewController(t)
		a := newApp(t, mocks.NewMockLoader(ctrl))

		ctx, cancel := context.WithCancel(t.Context())
		done := make(chan error, 1)
		go func() { done <- a.Daemon(ctx) }()

		synctest.Wait()
		cancel()
		require.NoError(t, <-done)
	})
}
