package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"vidx/internal/config"
	"vidx/internal/logging"
	"vidx/internal/notifications"
	"vidx/internal/pipeline"
	"vidx/internal/queue"
)

// Runner executes one video generation end to end. The production
// implementation is pipeline.Pipeline.
type Runner interface {
	Run(ctx context.Context, product pipeline.ProductContext, images []string) (*pipeline.Result, error)
}

// Manager polls the queue and drives pending jobs through the pipeline with
// a fixed pool of workers. Jobs are independent; workers share nothing but
// the store and the stateless runner.
type Manager struct {
	cfg      *config.Config
	store    *queue.Store
	runner   Runner
	logger   *slog.Logger
	notifier notifications.Service

	pollInterval  time.Duration
	errorInterval time.Duration
	workers       int

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// NewManager constructs a workflow manager with the default ntfy notifier.
func NewManager(cfg *config.Config, store *queue.Store, runner Runner, logger *slog.Logger) *Manager {
	return NewManagerWithNotifier(cfg, store, runner, logger, notifications.NewService(cfg))
}

// NewManagerWithNotifier constructs a workflow manager with a custom notifier.
func NewManagerWithNotifier(cfg *config.Config, store *queue.Store, runner Runner, logger *slog.Logger, notifier notifications.Service) *Manager {
	workers := cfg.Workflow.Workers
	if workers < 1 {
		workers = 1
	}
	pollInterval := time.Duration(cfg.Workflow.QueuePollInterval) * time.Second
	if pollInterval <= 0 {
		pollInterval = 5 * time.Second
	}
	errorInterval := time.Duration(cfg.Workflow.ErrorRetryInterval) * time.Second
	if errorInterval <= 0 {
		errorInterval = 10 * time.Second
	}
	return &Manager{
		cfg:           cfg,
		store:         store,
		runner:        runner,
		logger:        logging.NewComponentLogger(logger, "workflow"),
		notifier:      notifier,
		pollInterval:  pollInterval,
		errorInterval: errorInterval,
		workers:       workers,
	}
}

// Start begins background processing. Jobs stranded in processing by an
// earlier crash are returned to pending before the workers launch.
func (m *Manager) Start(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.running {
		return errors.New("workflow already running")
	}

	reset, err := m.store.ResetStuck(ctx)
	if err != nil {
		return fmt.Errorf("reset stuck jobs: %w", err)
	}
	if reset > 0 {
		m.logger.Info("requeued stuck jobs", logging.Int64("count", reset))
	}

	runCtx, cancel := context.WithCancel(ctx)
	m.cancel = cancel
	m.running = true
	m.wg.Add(m.workers)
	for i := 0; i < m.workers; i++ {
		go m.runWorker(runCtx, i)
	}
	m.logger.Info("workflow started", logging.Int("workers", m.workers))
	return nil
}

// Stop terminates background processing and waits for in-flight jobs.
func (m *Manager) Stop() {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return
	}
	cancel := m.cancel
	m.running = false
	m.cancel = nil
	m.mu.Unlock()

	cancel()
	m.wg.Wait()
	m.logger.Info("workflow stopped")
}

func (m *Manager) runWorker(ctx context.Context, id int) {
	defer m.wg.Done()
	logger := m.logger.With(logging.Int("worker", id))

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		item, err := m.store.ClaimNext(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			logger.Error("failed to claim next queue item",
				logging.Error(err),
				logging.String(logging.FieldEventType, "queue_fetch_failed"),
				logging.String(logging.FieldErrorHint, "check queue database access"))
			m.sleep(ctx, m.errorInterval)
			continue
		}
		if item == nil {
			m.sleep(ctx, m.pollInterval)
			continue
		}

		m.processItem(ctx, logger, item)
	}
}

func (m *Manager) sleep(ctx context.Context, d time.Duration) {
	select {
	case <-ctx.Done():
	case <-time.After(d):
	}
}
