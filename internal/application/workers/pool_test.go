package workers

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/aescanero/debatehub/pkg/adapters/metrics/noop"
	"github.com/aescanero/debatehub/pkg/domain"
	"github.com/aescanero/debatehub/pkg/ports"
	"go.uber.org/zap"
)

// gateExecutor blocks every call until release is closed and tracks the
// highest number of concurrent calls
type gateExecutor struct {
	release  chan struct{}
	inFlight atomic.Int32
	peak     atomic.Int32
}

func (g *gateExecutor) Execute(ctx context.Context, req ports.StepRequest) (string, error) {
	n := g.inFlight.Add(1)
	defer g.inFlight.Add(-1)
	for {
		peak := g.peak.Load()
		if n <= peak || g.peak.CompareAndSwap(peak, n) {
			break
		}
	}

	select {
	case <-g.release:
		return "ok:" + req.Step.Name, nil
	case <-ctx.Done():
		return "", &domain.StepError{Kind: domain.FailureCancelled, Err: ctx.Err()}
	}
}

func newTestPool(t *testing.T, size int, executor ports.StepExecutor) *Pool {
	t.Helper()
	p := NewPool(size, executor, noop.Collector{}, zap.NewNop(), time.Hour)
	if err := p.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = p.Shutdown(ctx)
	})
	return p
}

func TestPool_BoundsConcurrency(t *testing.T) {
	gate := &gateExecutor{release: make(chan struct{})}
	p := newTestPool(t, 2, gate)

	var wg sync.WaitGroup
	results := make([]string, 5)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			out, err := p.Execute(context.Background(), ports.StepRequest{
				Step: domain.StepDescriptor{Name: "step"},
			})
			if err != nil {
				t.Errorf("Execute failed: %v", err)
			}
			results[i] = out
		}(i)
	}

	time.Sleep(50 * time.Millisecond)
	status := p.Health().GetStatus()
	if status.BusyWorkers != 2 || !status.Saturated {
		t.Errorf("expected 2 busy workers and saturation, got %+v", status)
	}
	if status.QueuedSteps != 3 {
		t.Errorf("expected 3 queued steps, got %d", status.QueuedSteps)
	}

	close(gate.release)
	wg.Wait()

	if peak := gate.peak.Load(); peak > 2 {
		t.Errorf("expected at most 2 concurrent calls, got %d", peak)
	}
	for i, out := range results {
		if out != "ok:step" {
			t.Errorf("result %d: unexpected output %q", i, out)
		}
	}
}

func TestPool_CancelWhileQueued(t *testing.T) {
	gate := &gateExecutor{release: make(chan struct{})}
	defer close(gate.release)
	p := newTestPool(t, 1, gate)

	// Occupy the only worker.
	go func() {
		_, _ = p.Execute(context.Background(), ports.StepRequest{})
	}()
	time.Sleep(20 * time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		_, err := p.Execute(ctx, ports.StepRequest{Step: domain.StepDescriptor{Name: "queued", Provider: "Claude"}})
		errCh <- err
	}()

	cancel()
	select {
	case err := <-errCh:
		se, ok := domain.AsStepError(err)
		if !ok || se.Kind != domain.FailureCancelled {
			t.Fatalf("expected cancelled step error, got %v", err)
		}
		if se.Step != "queued" || se.Provider != "Claude" {
			t.Errorf("expected step attribution, got %+v", se)
		}
	case <-time.After(time.Second):
		t.Fatal("Execute did not return after cancellation")
	}
}

func TestPool_ExecuteAfterShutdown(t *testing.T) {
	p := NewPool(1, &gateExecutor{release: make(chan struct{})}, noop.Collector{}, zap.NewNop(), time.Hour)
	if err := p.Start(); err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := p.Shutdown(ctx); err != nil {
		t.Fatalf("Shutdown failed: %v", err)
	}

	_, err := p.Execute(context.Background(), ports.StepRequest{})
	if !errors.Is(err, ErrPoolStopped) {
		t.Errorf("expected ErrPoolStopped, got %v", err)
	}

	status := p.Health().GetStatus()
	if status.Healthy || status.StoppedWorkers != 1 {
		t.Errorf("expected unhealthy stopped pool, got %+v", status)
	}
}

func TestPool_StartTwice(t *testing.T) {
	p := newTestPool(t, 1, &gateExecutor{release: make(chan struct{})})
	if err := p.Start(); err == nil {
		t.Error("expected an error starting a running pool")
	}
}

func TestHealthMonitor_NotifiesListeners(t *testing.T) {
	p := NewPool(2, &gateExecutor{release: make(chan struct{})}, noop.Collector{}, zap.NewNop(), time.Hour)

	got := make(chan *HealthStatus, 1)
	p.Health().OnCheck(func(s *HealthStatus) {
		select {
		case got <- s:
		default:
		}
	})

	if err := p.Start(); err != nil {
		t.Fatal(err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = p.Shutdown(ctx)
	}()

	select {
	case s := <-got:
		if s.TotalWorkers != 2 {
			t.Errorf("expected 2 workers, got %d", s.TotalWorkers)
		}
	case <-time.After(time.Second):
		t.Fatal("listener not notified")
	}
}
