package workflow

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"

	"shuttle/internal/archive"
	"shuttle/internal/logging"
	"shuttle/internal/notifications"
	"shuttle/internal/organizer"
	"shuttle/internal/queue"
	"shuttle/internal/services"
)

// processItem runs one dequeued item to a terminal state. The item's kind
// is inferred here, at processing time, so a path that changed since it
// was enqueued is judged by what it is now.
func (m *Manager) processItem(ctx context.Context, item *queue.Item) error {
	// Shutdown is honored between items only; the dequeued item runs to
	// completion so an in-flight copy is never interrupted mid-transfer.
	ctx = context.WithoutCancel(ctx)
	ctx = services.WithItemID(ctx, item.ID)
	ctx = services.WithRequestID(ctx, uuid.NewString())
	logger := logging.WithContext(ctx, m.logger)

	item.Status = queue.StatusProcessing
	item.SetProgress("Inspecting source", 0)
	if err := m.store.Update(ctx, item); err != nil {
		m.setLastError(err)
		logger.Error("failed to mark item processing", logging.Error(err))
		return err
	}

	logger.Info("processing item", logging.String("source_path", item.SourcePath))

	info, err := os.Stat(item.SourcePath)
	if err != nil {
		missing := services.Wrap(services.ErrNotFound, "processing", "stat source",
			"Source is no longer accessible", err)
		m.failItem(ctx, item, missing.Error())
		return nil
	}

	switch {
	case info.IsDir():
		m.processDirectory(ctx, item)
	case m.cfg.IsArchive(item.SourcePath):
		m.processArchive(ctx, item)
	case m.cfg.IsVideo(item.SourcePath):
		m.processFile(ctx, item)
	default:
		m.failItem(ctx, item, fmt.Sprintf("unsupported file type: %s", filepath.Ext(item.SourcePath)))
	}
	return nil
}

// processDirectory walks the tree and enqueues every media file and
// archive it finds. Unreadable entries are logged and skipped.
func (m *Manager) processDirectory(ctx context.Context, item *queue.Item) {
	logger := logging.WithContext(ctx, m.logger)

	var queued int
	walkErr := filepath.WalkDir(item.SourcePath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == item.SourcePath {
				return err
			}
			logger.Warn("skipping unreadable entry", logging.String("path", path), logging.Error(err))
			return nil
		}
		if d.IsDir() {
			return nil
		}
		if !m.cfg.IsVideo(path) && !m.cfg.IsArchive(path) {
			return nil
		}
		child, inserted, err := m.store.Enqueue(ctx, path)
		if err != nil {
			return err
		}
		if inserted {
			queued++
			logger.Info("queued file from directory",
				logging.String("path", path),
				logging.Int64("child_item_id", child.ID),
			)
		}
		return nil
	})
	if walkErr != nil {
		m.failItem(ctx, item, fmt.Sprintf("directory scan failed: %v", walkErr))
		return
	}

	item.Status = queue.StatusCompleted
	item.SetProgress(fmt.Sprintf("Queued %d files", queued), 100)
	if err := m.store.Update(ctx, item); err != nil {
		logger.Warn("failed to persist directory completion", logging.Error(err))
	}
	m.noteOutcome(false)
	logger.Info("directory expanded", logging.Int("queued", queued))
}

// processArchive extracts the archive and organizes its media entries in
// place. A missing destination aborts the expansion and requeues the whole
// archive; any other per-entry failure is logged and the remaining entries
// still run.
func (m *Manager) processArchive(ctx context.Context, item *queue.Item) {
	logger := logging.WithContext(ctx, m.logger)

	var organized, entryFailures int
	err := archive.Expand(ctx, item.SourcePath, func(ctx context.Context, path string) error {
		if !m.cfg.IsVideo(path) {
			return nil
		}
		final, _, err := m.organizeFile(ctx, item, path)
		if err != nil {
			if services.IsUnavailable(err) {
				return err
			}
			entryFailures++
			logger.Warn("archive entry failed",
				logging.String("entry", filepath.Base(path)),
				logging.Error(err),
			)
			return nil
		}
		organized++
		logger.Info("archive entry organized",
			logging.String("entry", filepath.Base(path)),
			logging.String("final_file", final),
		)
		return nil
	})
	if err != nil {
		if services.IsUnavailable(err) {
			m.requeueUnavailable(ctx, item, err)
			return
		}
		m.failItem(ctx, item, fmt.Sprintf("archive expansion failed: %v", err))
		return
	}

	if organized == 0 && entryFailures > 0 {
		m.failItem(ctx, item, fmt.Sprintf("no archive entries organized (%d failed)", entryFailures))
		return
	}
	item.Status = queue.StatusCompleted
	item.SetProgress(fmt.Sprintf("Organized %d files from archive", organized), 100)
	if err := m.store.Update(ctx, item); err != nil {
		logger.Warn("failed to persist archive completion", logging.Error(err))
	}
	m.noteOutcome(false)
}

func (m *Manager) processFile(ctx context.Context, item *queue.Item) {
	logger := logging.WithContext(ctx, m.logger)

	final, title, err := m.organizeFile(ctx, item, item.SourcePath)
	if err != nil {
		if services.IsUnavailable(err) {
			m.requeueUnavailable(ctx, item, err)
			return
		}
		m.failItem(ctx, item, err.Error())
		return
	}

	item.Status = queue.StatusCompleted
	item.SetProgress(fmt.Sprintf("Organized: %s", filepath.Base(final)), 100)
	if err := m.store.Update(ctx, item); err != nil {
		logger.Warn("failed to persist completion", logging.Error(err))
	}
	m.noteOutcome(false)

	if m.notifier != nil {
		if err := m.notifier.NotifyFileOrganized(ctx, title, filepath.Base(final)); err != nil {
			logger.Warn("organization notification failed", logging.Error(err))
		}
	}
}

// organizeFile validates the destination, classifies the source, and
// copies it into its planned library location. The returned title is the
// classified display title for notifications.
func (m *Manager) organizeFile(ctx context.Context, item *queue.Item, sourcePath string) (string, string, error) {
	logger := logging.WithContext(ctx, m.logger)

	root, err := m.destinations.Destination(ctx)
	if err != nil {
		return "", "", err
	}
	if !organizer.IsWritable(ctx, root) {
		return "", "", services.Wrap(services.ErrUnavailable, "organizing", "probe destination",
			fmt.Sprintf("Destination %s is not writable", root), nil)
	}

	info, err := os.Stat(sourcePath)
	if err != nil {
		return "", "", fmt.Errorf("stat source: %w", err)
	}
	free, err := organizer.FreeBytes(root)
	if err != nil {
		return "", "", services.Wrap(services.ErrUnavailable, "organizing", "check free space",
			fmt.Sprintf("Cannot determine free space on %s", root), err)
	}
	if free < uint64(info.Size()) {
		return "", "", services.Wrap(services.ErrUnavailable, "organizing", "check free space",
			fmt.Sprintf("Destination %s has %s free, need %s", root, humanize.IBytes(free), humanize.IBytes(uint64(info.Size()))), nil)
	}

	media := m.classifier.Classify(sourcePath)
	dest := organizer.PlanDestination(root, m.cfg.Library.MoviesDir, sourcePath, media)

	logger.Info("copying media file",
		logging.String("media_type", string(media.Type)),
		logging.String("title", media.Title),
		logging.String("destination", dest),
		logging.String("size", humanize.IBytes(uint64(info.Size()))),
	)

	lastPercent := -1
	err = organizer.CopyFile(ctx, sourcePath, dest, func(copied, total int64) {
		percent := organizer.Percent(copied, total)
		if m.sink != nil {
			m.sink.Publish(notifications.ProgressEvent{
				ItemID:  item.ID,
				Source:  sourcePath,
				Copied:  copied,
				Total:   total,
				Percent: percent,
			})
		}
		if percent == lastPercent {
			return
		}
		lastPercent = percent
		snapshot := *item
		snapshot.SetProgress(fmt.Sprintf("Copying %s", filepath.Base(sourcePath)), percent)
		if err := m.store.Update(ctx, &snapshot); err != nil {
			logger.Warn("failed to persist copy progress", logging.Error(err))
			return
		}
		*item = snapshot
	})
	if err != nil {
		return "", "", fmt.Errorf("copy %s: %w", filepath.Base(sourcePath), err)
	}

	logger.Info("copy finished",
		logging.String("final_file", filepath.Base(dest)),
		logging.Int("percent", 100),
	)
	// Progress returns to idle once the file is in place.
	if m.sink != nil {
		m.sink.Publish(notifications.ProgressEvent{ItemID: item.ID, Source: sourcePath})
	}
	return dest, media.Title, nil
}

// requeueUnavailable puts the item back at the queue tail and pauses the
// worker for the retry delay. A configured retry cap turns the next excess
// attempt into a terminal failure.
func (m *Manager) requeueUnavailable(ctx context.Context, item *queue.Item, cause error) {
	logger := logging.WithContext(ctx, m.logger)

	if limit := m.cfg.Workflow.MaxDestinationRetries; limit > 0 && item.Attempts >= limit {
		m.failItem(ctx, item, fmt.Sprintf("destination unavailable after %d attempts: %v", item.Attempts+1, cause))
		return
	}

	logger.Warn("destination unavailable, requeueing",
		logging.Error(cause),
		logging.Int("attempts", item.Attempts),
		logging.String(logging.FieldEventType, "destination_unavailable"),
		logging.String(logging.FieldErrorHint, "connect a drive or set destination_dir in the config"),
	)
	if m.notifier != nil {
		if err := m.notifier.NotifyDestinationUnavailable(ctx, filepath.Base(item.SourcePath)); err != nil {
			logger.Warn("destination notification failed", logging.Error(err))
		}
	}
	if _, err := m.store.Requeue(ctx, item); err != nil {
		m.setLastError(err)
		logger.Error("failed to requeue item", logging.Error(err))
		m.failItem(ctx, item, fmt.Sprintf("requeue failed: %v", err))
		return
	}

	m.waitRetryDelay()
}

// failItem records a terminal failure. Failures never stop the worker.
func (m *Manager) failItem(ctx context.Context, item *queue.Item, message string) {
	logger := logging.WithContext(ctx, m.logger)

	item.SetFailed(message)
	if err := m.store.Update(ctx, item); err != nil {
		m.setLastError(err)
		logger.Error("failed to persist item failure", logging.Error(err))
	}
	m.noteOutcome(true)
	logger.Error("item failed",
		logging.String("source_path", item.SourcePath),
		logging.String("error_message", message),
		logging.String(logging.FieldEventType, "item_failed"),
	)
	if m.notifier != nil {
		if err := m.notifier.NotifyError(ctx, fmt.Errorf("%s", message), filepath.Base(item.SourcePath)); err != nil {
			logger.Warn("failure notification failed", logging.Error(err))
		}
	}
}
