package notifications

import (
	"log/slog"
	"path/filepath"
	"sync"

	"github.com/dustin/go-humanize"

	"shuttle/internal/logging"
)

// sinkBuffer bounds the event channel. Chunk-level progress is advisory,
// so a slow log destination drops events instead of stalling the copy.
const sinkBuffer = 256

// ProgressEvent is one chunk-level progress observation for a queue item.
type ProgressEvent struct {
	ItemID  int64
	Source  string
	Copied  int64
	Total   int64
	Percent int
}

// ProgressSink fans copy progress out to the log asynchronously. Publish
// never blocks the caller and stays safe after Close; the events channel
// itself is never closed.
type ProgressSink struct {
	logger *slog.Logger
	events chan ProgressEvent
	quit   chan struct{}

	closeOnce sync.Once
	done      chan struct{}
}

// NewProgressSink starts the sink's delivery goroutine.
func NewProgressSink(logger *slog.Logger) *ProgressSink {
	s := &ProgressSink{
		logger: logging.NewComponentLogger(logger, "progress"),
		events: make(chan ProgressEvent, sinkBuffer),
		quit:   make(chan struct{}),
		done:   make(chan struct{}),
	}
	go s.run()
	return s
}

// Publish queues one progress event. Events beyond the buffer, and events
// published after Close, are dropped.
func (s *ProgressSink) Publish(event ProgressEvent) {
	if s == nil {
		return
	}
	select {
	case <-s.quit:
		return
	default:
	}
	select {
	case s.events <- event:
	default:
	}
}

// Close stops delivery after draining buffered events.
func (s *ProgressSink) Close() {
	if s == nil {
		return
	}
	s.closeOnce.Do(func() {
		close(s.quit)
		<-s.done
	})
}

func (s *ProgressSink) run() {
	defer close(s.done)
	for {
		select {
		case event := <-s.events:
			s.deliver(event)
		case <-s.quit:
			for {
				select {
				case event := <-s.events:
					s.deliver(event)
				default:
					return
				}
			}
		}
	}
}

func (s *ProgressSink) deliver(event ProgressEvent) {
	s.logger.Info("copy progress",
		logging.Int64(logging.FieldItemID, event.ItemID),
		logging.String("file", filepath.Base(event.Source)),
		logging.Int("percent", event.Percent),
		logging.String("copied", humanize.IBytes(uint64(max(event.Copied, 0)))),
		logging.String("total", humanize.IBytes(uint64(max(event.Total, 0)))),
	)
}
