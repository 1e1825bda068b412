package ports

// Pool is a bounded worker pool. The memo cache schedules loads on it and
// the evictor dispatches fire-and-forget deletion tasks to it.
//
//go:generate go run go.uber.org/mock/mockgen -source=pool.go -destination=mocks/mock_pool.go -package=mocks
type Pool interface {
	// Go schedules fn on the pool. It never blocks the caller beyond the
	// pool's admission limit and never propagates fn's panics to it.
	Go(fn func())

	// Wait blocks until every scheduled task has finished. Intended for
	// shutdown and tests.
	Wait()
}
