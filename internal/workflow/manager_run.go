package workflow

import (
	"context"
	"errors"
	"time"

	"shuttle/internal/logging"
	"shuttle/internal/notifications"
)

// Start begins background processing. A manager stopped earlier can be
// started again; the progress sink is recreated for the new run.
func (m *Manager) Start(ctx context.Context) error {
	m.mu.Lock()
	if m.running {
		m.mu.Unlock()
		return errors.New("workflow already running")
	}

	runCtx, cancel := context.WithCancel(ctx)
	m.cancel = cancel
	m.shutdown = runCtx.Done()
	if m.sink == nil {
		m.sink = notifications.NewProgressSink(m.baseLogger)
	}
	m.running = true
	m.wg.Add(1)
	m.mu.Unlock()

	go m.run(runCtx)
	return nil
}

// Stop terminates background processing and waits for completion. The
// active item finishes before the worker exits.
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
	m.sink.Close()
	m.mu.Lock()
	m.sink = nil
	m.mu.Unlock()
}

func (m *Manager) run(ctx context.Context) {
	defer m.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		item, err := m.store.NextPending(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			m.setLastError(err)
			m.logger.Error("failed to fetch next queue item",
				logging.Error(err),
				logging.String(logging.FieldEventType, "queue_fetch_failed"),
				logging.String(logging.FieldErrorHint, "check queue database access"),
			)
			m.waitForItemOrShutdown(ctx)
			continue
		}
		if item == nil {
			m.finishBatch(ctx)
			m.waitForItemOrShutdown(ctx)
			continue
		}

		m.noteBatchStart()
		if err := m.processItem(ctx, item); err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
		}
	}
}

func (m *Manager) waitForItemOrShutdown(ctx context.Context) {
	select {
	case <-ctx.Done():
	case <-time.After(m.pollInterval):
	}
}

// waitRetryDelay pauses the worker after a destination-unavailable requeue.
// Shutdown cuts the wait short.
func (m *Manager) waitRetryDelay() {
	m.mu.RLock()
	shutdown := m.shutdown
	m.mu.RUnlock()
	if shutdown == nil {
		time.Sleep(m.retryDelay)
		return
	}
	select {
	case <-shutdown:
	case <-time.After(m.retryDelay):
	}
}

// noteBatchStart marks the transition from idle to draining so the batch
// summary notification can report totals and duration.
func (m *Manager) noteBatchStart() {
	m.mu.Lock()
	if !m.queueActive {
		m.queueActive = true
		m.queueStart = time.Now()
		m.processed = 0
		m.failed = 0
	}
	m.mu.Unlock()
}

func (m *Manager) noteOutcome(failed bool) {
	m.mu.Lock()
	if failed {
		m.failed++
	} else {
		m.processed++
	}
	m.mu.Unlock()
}

// finishBatch fires the queue completion notification once per drained
// batch.
func (m *Manager) finishBatch(ctx context.Context) {
	m.mu.Lock()
	if !m.queueActive {
		m.mu.Unlock()
		return
	}
	processed, failed := m.processed, m.failed
	duration := time.Since(m.queueStart)
	m.queueActive = false
	m.mu.Unlock()

	if m.notifier == nil {
		return
	}
	if err := m.notifier.NotifyQueueCompleted(ctx, processed, failed, duration); err != nil {
		m.logger.Warn("queue completion notification failed", logging.Error(err))
	}
}
