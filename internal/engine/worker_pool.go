package engine

import (
	"context"
	"log/slog"

	"github.com/panjf2000/ants/v2"
)

// Charger settles one checkout charge
type Charger interface {
	Charge(ctx context.Context, req *ChargeRequest) (*ChargeResult, error)
}

// WorkerPoolConfig bounds the number of concurrent charges
type WorkerPoolConfig struct {
	Size int
}

// WorkerPoolEngine runs charges on a bounded worker pool. The caller still
// blocks until its own charge finishes; the pool caps how many charges hit
// the database at once during lunch rush.
type WorkerPoolEngine struct {
	base   Charger
	pool   *ants.Pool
	logger *slog.Logger
}

type chargeOutcome struct {
	result *ChargeResult
	err    error
}

// NewWorkerPoolEngine creates a worker pool wrapper around the base engine
func NewWorkerPoolEngine(base Charger, config WorkerPoolConfig, logger *slog.Logger) (*WorkerPoolEngine, error) {
	pool, err := ants.NewPool(config.Size)
	if err != nil {
		return nil, err
	}

	return &WorkerPoolEngine{
		base:   base,
		pool:   pool,
		logger: logger,
	}, nil
}

// Charge submits the charge to the worker pool and waits for its outcome
func (e *WorkerPoolEngine) Charge(ctx context.Context, req *ChargeRequest) (*ChargeResult, error) {
	outcomeChan := make(chan chargeOutcome, 1)

	err := e.pool.Submit(func() {
		result, err := e.base.Charge(ctx, req)
		outcomeChan <- chargeOutcome{result: result, err: err}
	})
	if err != nil {
		e.logger.Error("Failed to submit charge to worker pool",
			"cardholder_id", req.CardholderID.String(),
			"error", err,
		)
		return nil, err
	}

	outcome := <-outcomeChan
	return outcome.result, outcome.err
}

// Shutdown gracefully shuts down the worker pool
func (e *WorkerPoolEngine) Shutdown() {
	e.logger.Info("Shutting down worker pool", "running_workers", e.pool.Running())
	e.pool.Release()
}

// Running returns the number of running workers in the pool
func (e *WorkerPoolEngine) Running() int {
	return e.pool.Running()
}

// Capacity returns the capacity of the worker pool
func (e *WorkerPoolEngine) Capacity() int {
	return e.pool.Cap()
}
