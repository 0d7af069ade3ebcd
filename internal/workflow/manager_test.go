package workflow_test

import (
	"archive/zip"
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"shuttle/internal/config"
	"shuttle/internal/logging"
	"shuttle/internal/notifications"
	"shuttle/internal/queue"
	"shuttle/internal/services"
	"shuttle/internal/testsupport"
	"shuttle/internal/workflow"
)

type recordingNotifier struct {
	mu          sync.Mutex
	organized   []string
	unavailable []string
	errors      []string
	completed   int
}

func (r *recordingNotifier) NotifyFileOrganized(_ context.Context, title, finalFile string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.organized = append(r.organized, title+"|"+finalFile)
	return nil
}

func (r *recordingNotifier) NotifyQueueCompleted(context.Context, int, int, time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.completed++
	return nil
}

func (r *recordingNotifier) NotifyDestinationUnavailable(_ context.Context, sourceFile string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.unavailable = append(r.unavailable, sourceFile)
	return nil
}

func (r *recordingNotifier) NotifyError(_ context.Context, err error, label string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	msg := label
	if err != nil {
		msg += ": " + err.Error()
	}
	r.errors = append(r.errors, msg)
	return nil
}

func (r *recordingNotifier) TestNotification(context.Context) error { return nil }

func (r *recordingNotifier) organizedCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.organized)
}

type staticDestination struct {
	root string
	err  error
}

func (d staticDestination) Destination(context.Context) (string, error) {
	return d.root, d.err
}

func newTestManager(t *testing.T, cfg *config.Config, store *queue.Store, notifier notifications.Service, dest workflow.DestinationProvider) *workflow.Manager {
	t.Helper()
	return workflow.NewManagerWithDependencies(
		cfg,
		store,
		logging.NewNop(),
		notifier,
		notifications.NewProgressSink(logging.NewNop()),
		dest,
		nil,
	)
}

func startManager(t *testing.T, m *workflow.Manager) {
	t.Helper()
	if err := m.Start(context.Background()); err != nil {
		t.Fatalf("start manager: %v", err)
	}
	t.Cleanup(m.Stop)
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(10 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func seedFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("seed %s: %v", path, err)
	}
}

func TestManagerOrganizesMovieFile(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	notifier := &recordingNotifier{}

	source := filepath.Join(t.TempDir(), "Movie.Title.2021.mkv")
	seedFile(t, source, "movie payload")
	if err := os.MkdirAll(cfg.Paths.DestinationDir, 0o755); err != nil {
		t.Fatalf("create destination: %v", err)
	}

	item, _, err := store.Enqueue(context.Background(), source)
	if err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	manager := newTestManager(t, cfg, store, notifier, staticDestination{root: cfg.Paths.DestinationDir})
	startManager(t, manager)

	var final *queue.Item
	waitFor(t, "item completion", func() bool {
		got, err := store.GetByID(context.Background(), item.ID)
		if err != nil || got == nil {
			return false
		}
		final = got
		return got.Status == queue.StatusCompleted
	})

	if final.ProgressPercent != 100 {
		t.Fatalf("expected 100%% progress, got %d", final.ProgressPercent)
	}
	organized := filepath.Join(cfg.Paths.DestinationDir, "Movies", "Movie Title (2021).mkv")
	data, err := os.ReadFile(organized)
	if err != nil {
		t.Fatalf("organized file missing: %v", err)
	}
	if string(data) != "movie payload" {
		t.Fatalf("organized content differs: %q", data)
	}
	waitFor(t, "organization notification", func() bool {
		return notifier.organizedCount() == 1
	})
}

func TestManagerOrganizesEpisodeIntoSeasonFolder(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	source := filepath.Join(t.TempDir(), "Show.Name.S02E05.mkv")
	seedFile(t, source, "episode payload")
	if err := os.MkdirAll(cfg.Paths.DestinationDir, 0o755); err != nil {
		t.Fatalf("create destination: %v", err)
	}

	item, _, err := store.Enqueue(context.Background(), source)
	if err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	manager := newTestManager(t, cfg, store, &recordingNotifier{}, staticDestination{root: cfg.Paths.DestinationDir})
	startManager(t, manager)

	waitFor(t, "item completion", func() bool {
		got, err := store.GetByID(context.Background(), item.ID)
		return err == nil && got != nil && got.Status == queue.StatusCompleted
	})

	organized := filepath.Join(cfg.Paths.DestinationDir, "Show Name", "Season 02", "Show Name - S02E05.mkv")
	if _, err := os.Stat(organized); err != nil {
		t.Fatalf("organized episode missing: %v", err)
	}
}

func TestManagerRequeuesUntilRetriesExhausted(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Workflow.MaxDestinationRetries = 2
	store := testsupport.MustOpenStore(t, cfg)
	notifier := &recordingNotifier{}

	source := filepath.Join(t.TempDir(), "Movie.Title.2021.mkv")
	seedFile(t, source, "payload")

	if _, _, err := store.Enqueue(context.Background(), source); err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	unavailable := services.Wrap(services.ErrUnavailable, "destination", "select drive", "no drive", nil)
	manager := newTestManager(t, cfg, store, notifier, staticDestination{err: unavailable})
	startManager(t, manager)

	var failed *queue.Item
	waitFor(t, "terminal failure", func() bool {
		items, err := store.List(context.Background(), queue.StatusFailed)
		if err != nil || len(items) == 0 {
			return false
		}
		failed = items[0]
		return true
	})

	if failed.Attempts != cfg.Workflow.MaxDestinationRetries {
		t.Fatalf("expected %d attempts before failing, got %d", cfg.Workflow.MaxDestinationRetries, failed.Attempts)
	}
	if !strings.Contains(failed.ErrorMessage, "destination unavailable") {
		t.Fatalf("unexpected error message: %q", failed.ErrorMessage)
	}

	notifier.mu.Lock()
	unavailableNotices := len(notifier.unavailable)
	notifier.mu.Unlock()
	if unavailableNotices != cfg.Workflow.MaxDestinationRetries {
		t.Fatalf("expected %d unavailable notifications, got %d", cfg.Workflow.MaxDestinationRetries, unavailableNotices)
	}
}

func TestManagerExpandsDirectories(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	dir := t.TempDir()
	seedFile(t, filepath.Join(dir, "Show.S01E01.mkv"), "one")
	seedFile(t, filepath.Join(dir, "nested", "Show.S01E02.mkv"), "two")
	seedFile(t, filepath.Join(dir, "notes.txt"), "ignored")
	if err := os.MkdirAll(cfg.Paths.DestinationDir, 0o755); err != nil {
		t.Fatalf("create destination: %v", err)
	}

	if _, _, err := store.Enqueue(context.Background(), dir); err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	manager := newTestManager(t, cfg, store, &recordingNotifier{}, staticDestination{root: cfg.Paths.DestinationDir})
	startManager(t, manager)

	first := filepath.Join(cfg.Paths.DestinationDir, "Show", "Season 01", "Show - S01E01.mkv")
	second := filepath.Join(cfg.Paths.DestinationDir, "Show", "Season 01", "Show - S01E02.mkv")
	waitFor(t, "both episodes organized", func() bool {
		_, err1 := os.Stat(first)
		_, err2 := os.Stat(second)
		return err1 == nil && err2 == nil
	})

	ignored := filepath.Join(cfg.Paths.DestinationDir, "Movies", "Notes.txt")
	if _, err := os.Stat(ignored); !os.IsNotExist(err) {
		t.Fatal("non-media file should not be organized")
	}
}

func TestManagerProcessesArchives(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	archivePath := filepath.Join(t.TempDir(), "bundle.zip")
	f, err := os.Create(archivePath)
	if err != nil {
		t.Fatalf("create zip: %v", err)
	}
	w := zip.NewWriter(f)
	entry, err := w.Create("Movie.Title.2021.mkv")
	if err != nil {
		t.Fatalf("create entry: %v", err)
	}
	if _, err := entry.Write([]byte("zipped movie")); err != nil {
		t.Fatalf("write entry: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("close file: %v", err)
	}
	if err := os.MkdirAll(cfg.Paths.DestinationDir, 0o755); err != nil {
		t.Fatalf("create destination: %v", err)
	}

	item, _, err := store.Enqueue(context.Background(), archivePath)
	if err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	manager := newTestManager(t, cfg, store, &recordingNotifier{}, staticDestination{root: cfg.Paths.DestinationDir})
	startManager(t, manager)

	waitFor(t, "archive completion", func() bool {
		got, err := store.GetByID(context.Background(), item.ID)
		return err == nil && got != nil && got.Status == queue.StatusCompleted
	})

	organized := filepath.Join(cfg.Paths.DestinationDir, "Movies", "Movie Title (2021).mkv")
	data, err := os.ReadFile(organized)
	if err != nil {
		t.Fatalf("organized file missing: %v", err)
	}
	if string(data) != "zipped movie" {
		t.Fatalf("organized content differs: %q", data)
	}
}

func TestManagerFailsUnsupportedFiles(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	source := filepath.Join(t.TempDir(), "document.pdf")
	seedFile(t, source, "not media")

	item, _, err := store.Enqueue(context.Background(), source)
	if err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	manager := newTestManager(t, cfg, store, &recordingNotifier{}, staticDestination{root: cfg.Paths.DestinationDir})
	startManager(t, manager)

	var failed *queue.Item
	waitFor(t, "item failure", func() bool {
		got, err := store.GetByID(context.Background(), item.ID)
		if err != nil || got == nil {
			return false
		}
		failed = got
		return got.Status == queue.StatusFailed
	})
	if !strings.Contains(failed.ErrorMessage, "unsupported file type") {
		t.Fatalf("unexpected error message: %q", failed.ErrorMessage)
	}
}

func TestManagerRestartAfterStopStillOrganizes(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	notifier := &recordingNotifier{}
	if err := os.MkdirAll(cfg.Paths.DestinationDir, 0o755); err != nil {
		t.Fatalf("create destination: %v", err)
	}

	manager := newTestManager(t, cfg, store, notifier, staticDestination{root: cfg.Paths.DestinationDir})
	if err := manager.Start(context.Background()); err != nil {
		t.Fatalf("first start: %v", err)
	}
	manager.Stop()

	// A stopped manager must come back up and still report copy progress.
	source := filepath.Join(t.TempDir(), "Movie.Title.2021.mkv")
	seedFile(t, source, "second run payload")
	item, _, err := store.Enqueue(context.Background(), source)
	if err != nil {
		t.Fatalf("enqueue: %v", err)
	}
	startManager(t, manager)

	waitFor(t, "item completion after restart", func() bool {
		got, err := store.GetByID(context.Background(), item.ID)
		return err == nil && got != nil && got.Status == queue.StatusCompleted
	})
	organized := filepath.Join(cfg.Paths.DestinationDir, "Movies", "Movie Title (2021).mkv")
	if _, err := os.Stat(organized); err != nil {
		t.Fatalf("organized file missing after restart: %v", err)
	}
}

func TestManagerStopFinishesActiveItem(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	if err := os.MkdirAll(cfg.Paths.DestinationDir, 0o755); err != nil {
		t.Fatalf("create destination: %v", err)
	}

	source := filepath.Join(t.TempDir(), "Movie.Title.2021.mkv")
	seedFile(t, source, strings.Repeat("payload ", 64*1024))
	item, _, err := store.Enqueue(context.Background(), source)
	if err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	manager := newTestManager(t, cfg, store, &recordingNotifier{}, staticDestination{root: cfg.Paths.DestinationDir})
	startManager(t, manager)

	waitFor(t, "item pickup", func() bool {
		got, err := store.GetByID(context.Background(), item.ID)
		return err == nil && got != nil && got.Status != queue.StatusPending
	})
	// Stop blocks until the worker exits; the item it already picked up
	// must finish cleanly rather than being aborted mid-copy.
	manager.Stop()

	got, err := store.GetByID(context.Background(), item.ID)
	if err != nil || got == nil {
		t.Fatalf("fetch item after stop: %v", err)
	}
	if got.Status != queue.StatusCompleted {
		t.Fatalf("expected completed item after stop, got %s (%q)", got.Status, got.ErrorMessage)
	}
	organized := filepath.Join(cfg.Paths.DestinationDir, "Movies", "Movie Title (2021).mkv")
	info, err := os.Stat(organized)
	if err != nil {
		t.Fatalf("organized file missing: %v", err)
	}
	if srcInfo, _ := os.Stat(source); info.Size() != srcInfo.Size() {
		t.Fatalf("organized file truncated: %d of %d bytes", info.Size(), srcInfo.Size())
	}
}

func TestManagerSurvivesMissingSource(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	missing := filepath.Join(t.TempDir(), "gone.mkv")
	item, _, err := store.Enqueue(context.Background(), missing)
	if err != nil {
		t.Fatalf("enqueue: %v", err)
	}
	good := filepath.Join(t.TempDir(), "Movie.Title.2021.mkv")
	seedFile(t, good, "payload")
	goodItem, _, err := store.Enqueue(context.Background(), good)
	if err != nil {
		t.Fatalf("enqueue: %v", err)
	}
	if err := os.MkdirAll(cfg.Paths.DestinationDir, 0o755); err != nil {
		t.Fatalf("create destination: %v", err)
	}

	manager := newTestManager(t, cfg, store, &recordingNotifier{}, staticDestination{root: cfg.Paths.DestinationDir})
	startManager(t, manager)

	var bad *queue.Item
	waitFor(t, "failure then progress", func() bool {
		got, err1 := store.GetByID(context.Background(), item.ID)
		ok, err2 := store.GetByID(context.Background(), goodItem.ID)
		if err1 != nil || err2 != nil || got == nil || ok == nil {
			return false
		}
		bad = got
		return got.Status == queue.StatusFailed && ok.Status == queue.StatusCompleted
	})
	if !strings.Contains(bad.ErrorMessage, services.ErrNotFound.Error()) {
		t.Fatalf("missing source should be classified as not found, got %q", bad.ErrorMessage)
	}
}
