package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/aescanero/debatehub/internal/application/progress"
	"github.com/aescanero/debatehub/pkg/domain"
	"github.com/aescanero/debatehub/pkg/ports"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

var (
	// ErrCancelledByClient is the cause of an explicit cancel request
	ErrCancelledByClient = errors.New("cancelled by client")
	// ErrAbandoned is the cause of cancelling a session nobody observes
	ErrAbandoned = errors.New("session abandoned by all observers")
	// ErrWorkflowTimeout is the cause of a session exceeding TIMEOUT_WORKFLOW
	ErrWorkflowTimeout = errors.New("workflow timeout")
	// ErrShuttingDown is returned for new sessions once shutdown has begun
	ErrShuttingDown = errors.New("orchestrator is shutting down")
)

// Config holds the manager settings
type Config struct {
	// WorkflowTimeout bounds a whole session. Zero disables it.
	WorkflowTimeout time.Duration
	// Retention keeps terminal sessions in memory for result retrieval.
	Retention time.Duration
	// AbandonGrace cancels running sessions nobody observed for this long.
	// Zero disables abandonment.
	AbandonGrace  time.Duration
	SweepInterval time.Duration
	Tracer        trace.Tracer
}

// Manager owns every session: it creates them, runs their workflows and
// answers lookups until the sessions are evicted
type Manager struct {
	hub       *progress.Hub
	executor  ports.StepExecutor
	store     ports.ResultStore
	metrics   ports.MetricsCollector
	validator *Validator
	logger    *zap.Logger
	tracer    trace.Tracer
	cfg       Config

	// Track sessions
	sessions sync.Map // map[string]*session
	active   atomic.Int64
	closed   atomic.Bool

	baseCtx    context.Context
	baseCancel context.CancelCauseFunc
}

// session holds the runtime state of one session. Only the runner goroutine
// stores snapshots; everybody else reads them.
type session struct {
	id        string
	kind      domain.WorkflowKind
	wf        workflow
	plan      domain.StepPlan
	createdAt time.Time
	snapshot  atomic.Pointer[domain.SessionSnapshot]
	cancel    context.CancelCauseFunc
	done      chan struct{}
}

// NewManager creates a new orchestrator manager. store may be nil.
func NewManager(
	hub *progress.Hub,
	executor ports.StepExecutor,
	store ports.ResultStore,
	metrics ports.MetricsCollector,
	validator *Validator,
	logger *zap.Logger,
	cfg Config,
) *Manager {
	if cfg.Tracer == nil {
		cfg.Tracer = otel.Tracer("debatehub/orchestrator")
	}
	if cfg.SweepInterval <= 0 {
		cfg.SweepInterval = 10 * time.Second
	}

	baseCtx, baseCancel := context.WithCancelCause(context.Background())
	return &Manager{
		hub:        hub,
		executor:   executor,
		store:      store,
		metrics:    metrics,
		validator:  validator,
		logger:     logger,
		tracer:     cfg.Tracer,
		cfg:        cfg,
		baseCtx:    baseCtx,
		baseCancel: baseCancel,
	}
}

// CreateDebate validates a debate request and starts the session
func (m *Manager) CreateDebate(req domain.DebateRequest) (string, error) {
	req, err := m.validator.ValidateDebate(req)
	if err != nil {
		m.logger.Warn("debate validation failed", zap.Error(err))
		return "", fmt.Errorf("validation failed: %w", err)
	}

	wf, err := newDebateWorkflow(req)
	if err != nil {
		return "", fmt.Errorf("validation failed: %w", err)
	}
	return m.start(wf)
}

// CreateBusiness validates a business idea request and starts the session
func (m *Manager) CreateBusiness(req domain.BusinessRequest) (string, error) {
	req, err := m.validator.ValidateBusiness(req)
	if err != nil {
		m.logger.Warn("business validation failed", zap.Error(err))
		return "", fmt.Errorf("validation failed: %w", err)
	}

	wf, err := newBusinessWorkflow(req, m.logger)
	if err != nil {
		return "", fmt.Errorf("validation failed: %w", err)
	}
	return m.start(wf)
}

func (m *Manager) start(wf workflow) (string, error) {
	if m.closed.Load() {
		return "", ErrShuttingDown
	}

	id := uuid.New().String()
	plan := wf.Plan()
	now := time.Now()

	s := &session{
		id:        id,
		kind:      wf.Kind(),
		wf:        wf,
		plan:      plan,
		createdAt: now,
		done:      make(chan struct{}),
	}
	s.snapshot.Store(&domain.SessionSnapshot{
		ID:               id,
		Kind:             wf.Kind(),
		Topic:            wf.Topic(),
		Plan:             plan.Steps(),
		CurrentStepIndex: -1,
		Status:           domain.StepNameStarting,
		Message:          "Session created",
		CreatedAt:        now,
	})

	ctx, cancel := context.WithCancelCause(m.baseCtx)
	s.cancel = cancel

	m.hub.Open(id)
	m.sessions.Store(id, s)
	m.metrics.RecordSessionCreated(string(s.kind))
	m.metrics.SetActiveSessions(int(m.active.Add(1)))

	m.logger.Info("session created",
		zap.String("session_id", id),
		zap.String("kind", string(s.kind)),
		zap.String("topic", wf.Topic()),
		zap.Int("steps", plan.Len()))

	go m.run(ctx, s)

	return id, nil
}

// Get returns the current snapshot of a session
func (m *Manager) Get(sessionID string) (*domain.SessionSnapshot, error) {
	s, ok := m.load(sessionID)
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return s.snapshot.Load(), nil
}

// Progress returns the latest progress event of a session
func (m *Manager) Progress(sessionID string) (domain.ProgressEvent, error) {
	return m.hub.Poll(sessionID)
}

// Subscribe attaches a push subscriber to a session
func (m *Manager) Subscribe(sessionID string) (*progress.Subscription, error) {
	return m.hub.Subscribe(sessionID)
}

// Result returns the result of a terminal session. Evicted sessions are
// looked up in the result store.
func (m *Manager) Result(ctx context.Context, sessionID string) (*domain.Result, error) {
	if s, ok := m.load(sessionID); ok {
		snap := s.snapshot.Load()
		if !snap.Terminal() {
			return nil, domain.ErrResultNotReady
		}
		return snap.Result, nil
	}

	if m.store == nil {
		return nil, domain.ErrSessionNotFound
	}
	result, err := m.store.LoadResult(ctx, sessionID)
	if err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			return nil, domain.ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to load result: %w", err)
	}
	return result, nil
}

// Cancel requests cancellation of a running session. The session fails with
// a cancelled step error at its next step boundary.
func (m *Manager) Cancel(sessionID string) error {
	s, ok := m.load(sessionID)
	if !ok {
		return domain.ErrSessionNotFound
	}
	if s.snapshot.Load().Terminal() {
		return domain.ErrSessionTerminal
	}

	s.cancel(ErrCancelledByClient)
	m.logger.Info("session cancellation requested",
		zap.String("session_id", sessionID))
	return nil
}

// Remove evicts a terminal session from memory
func (m *Manager) Remove(sessionID string) error {
	s, ok := m.load(sessionID)
	if !ok {
		return domain.ErrSessionNotFound
	}
	if !s.snapshot.Load().Terminal() {
		return domain.ErrSessionActive
	}
	m.evict(s)
	return nil
}

func (m *Manager) evict(s *session) {
	m.sessions.Delete(s.id)
	m.hub.Remove(s.id)
	m.logger.Debug("session evicted", zap.String("session_id", s.id))
}

// ActiveCount returns the number of sessions not yet terminal
func (m *Manager) ActiveCount() int {
	return int(m.active.Load())
}

// Sessions returns the snapshots of every session in memory
func (m *Manager) Sessions() []*domain.SessionSnapshot {
	var out []*domain.SessionSnapshot
	m.sessions.Range(func(_, value any) bool {
		out = append(out, value.(*session).snapshot.Load())
		return true
	})
	return out
}

// Wait blocks until the session has reached a terminal state
func (m *Manager) Wait(ctx context.Context, sessionID string) (*domain.SessionSnapshot, error) {
	s, ok := m.load(sessionID)
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	select {
	case <-s.done:
		return s.snapshot.Load(), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (m *Manager) load(sessionID string) (*session, bool) {
	val, ok := m.sessions.Load(sessionID)
	if !ok {
		return nil, false
	}
	return val.(*session), true
}

// Shutdown cancels every running session and waits for their runners
func (m *Manager) Shutdown(ctx context.Context) error {
	m.logger.Info("shutting down orchestrator manager")
	m.closed.Store(true)
	m.baseCancel(ErrShuttingDown)

	var pending []*session
	m.sessions.Range(func(_, value any) bool {
		pending = append(pending, value.(*session))
		return true
	})

	for _, s := range pending {
		select {
		case <-s.done:
		case <-ctx.Done():
			return fmt.Errorf("failed to drain sessions: %w", ctx.Err())
		}
	}

	m.logger.Info("orchestrator manager shut down complete")
	return nil
}
