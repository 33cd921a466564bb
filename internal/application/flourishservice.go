package application

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/ericfisherdev/quantumvault/internal/domain/model"
	"github.com/ericfisherdev/quantumvault/internal/domain/port/driven"
	"github.com/ericfisherdev/quantumvault/internal/metrics"
)

// FlourishService runs the fixed Bell circuit alongside credential writes.
// Its output never reaches the cipher and its failures never reach callers.
type FlourishService struct {
	runner  driven.QuantumRunner
	shots   int
	timeout time.Duration
	metrics *metrics.Metrics
	logger  *slog.Logger

	wg     sync.WaitGroup
	mu     sync.RWMutex
	last   string
	closed bool
}

// NewFlourishService creates a FlourishService. A nil runner disables the
// circuit entirely; Verify still reports success.
func NewFlourishService(runner driven.QuantumRunner, shots int, timeout time.Duration, m *metrics.Metrics, logger *slog.Logger) *FlourishService {
	if shots < 1 {
		shots = 1
	}
	return &FlourishService{
		runner:  runner,
		shots:   shots,
		timeout: timeout,
		metrics: m,
		logger:  logger,
	}
}

// Backend names the configured runner, or "off".
func (f *FlourishService) Backend() string {
	if f.runner == nil {
		return "off"
	}
	return f.runner.Name()
}

// Fingerprint runs the circuit and returns its counts as a string such as
// "00:52 11:48". Errors are logged and yield "".
func (f *FlourishService) Fingerprint(ctx context.Context) string {
	if f.runner == nil {
		return ""
	}

	if f.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}

	start := time.Now()
	counts, err := f.runner.Run(ctx, model.BellCircuit(), f.shots)
	if err != nil {
		f.metrics.FlourishRun(f.runner.Name(), "error")
		f.logger.Warn("quantum verification error", "backend", f.runner.Name(), "error", err)
		return ""
	}
	f.metrics.FlourishRun(f.runner.Name(), "ok")

	fp := counts.String()
	f.mu.Lock()
	f.last = fp
	f.mu.Unlock()

	f.logger.Debug("quantum verification complete",
		"backend", f.runner.Name(),
		"shots", counts.Shots(),
		"duration", time.Since(start).Round(time.Millisecond),
	)
	return fp
}

// Verify runs the circuit and discards the outcome. It always returns true so
// that it can never block a password operation.
func (f *FlourishService) Verify(ctx context.Context) bool {
	_ = f.Fingerprint(ctx)
	return true
}

// Trigger runs Verify in the background, detached from ctx's cancellation so
// the circuit outlives the HTTP request that started it. Calls after Wait are
// dropped.
func (f *FlourishService) Trigger(ctx context.Context) {
	if f.runner == nil {
		return
	}

	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		f.logger.Debug("quantum verification skipped: shutting down")
		return
	}
	f.wg.Add(1)
	f.mu.Unlock()

	detached := context.WithoutCancel(ctx)
	go func() {
		defer f.wg.Done()
		f.Verify(detached)
	}()
}

// Wait stops accepting new runs and blocks until every triggered run has
// finished.
func (f *FlourishService) Wait() {
	f.mu.Lock()
	f.closed = true
	f.mu.Unlock()
	f.wg.Wait()
}

// LastFingerprint returns the most recent successful fingerprint, or "".
func (f *FlourishService) LastFingerprint() string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.last
}
