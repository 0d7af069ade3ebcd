package workflow

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"shuttle/internal/classify"
	"shuttle/internal/config"
	"shuttle/internal/drives"
	"shuttle/internal/logging"
	"shuttle/internal/notifications"
	"shuttle/internal/queue"
)

// DestinationProvider resolves the library root for organized media.
type DestinationProvider interface {
	Destination(ctx context.Context) (string, error)
}

// Manager owns the single worker goroutine that drains the queue.
type Manager struct {
	cfg          *config.Config
	store        *queue.Store
	logger       *slog.Logger
	baseLogger   *slog.Logger
	notifier     notifications.Service
	sink         *notifications.ProgressSink
	destinations DestinationProvider
	classifier   *classify.Classifier
	pollInterval time.Duration
	retryDelay   time.Duration

	mu       sync.RWMutex
	running  bool
	cancel   context.CancelFunc
	shutdown <-chan struct{}
	wg       sync.WaitGroup
	lastErr  error

	queueActive bool
	queueStart  time.Time
	processed   int
	failed      int
}

// NewManager constructs a workflow manager with default dependencies.
func NewManager(cfg *config.Config, store *queue.Store, logger *slog.Logger) *Manager {
	return NewManagerWithDependencies(
		cfg,
		store,
		logger,
		notifications.NewService(cfg),
		notifications.NewProgressSink(logger),
		drives.NewSelector(cfg, logger),
		classify.NewClassifier(nil),
	)
}

// NewManagerWithDependencies allows injecting collaborators (used in tests).
func NewManagerWithDependencies(
	cfg *config.Config,
	store *queue.Store,
	logger *slog.Logger,
	notifier notifications.Service,
	sink *notifications.ProgressSink,
	destinations DestinationProvider,
	classifier *classify.Classifier,
) *Manager {
	if classifier == nil {
		classifier = classify.NewClassifier(nil)
	}
	return &Manager{
		cfg:          cfg,
		store:        store,
		logger:       logging.NewComponentLogger(logger, "workflow"),
		baseLogger:   logger,
		notifier:     notifier,
		sink:         sink,
		destinations: destinations,
		classifier:   classifier,
		pollInterval: cfg.QueuePollInterval(),
		retryDelay:   cfg.RetryDelay(),
	}
}

// LastError returns the most recent queue access failure, if any.
func (m *Manager) LastError() error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lastErr
}

func (m *Manager) setLastError(err error) {
	m.mu.Lock()
	m.lastErr = err
	m.mu.Unlock()
}

// Running reports whether the worker is active.
func (m *Manager) Running() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.running
}
