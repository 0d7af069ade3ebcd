package notifications_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"shuttle/internal/notifications"
	"shuttle/internal/testsupport"
)

type capturedRequest struct {
	title    string
	tags     string
	priority string
	body     string
}

func newCaptureServer(t *testing.T, sink *[]capturedRequest) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		if err != nil {
			t.Errorf("read notification body: %v", err)
		}
		*sink = append(*sink, capturedRequest{
			title:    r.Header.Get("Title"),
			tags:     r.Header.Get("Tags"),
			priority: r.Header.Get("Priority"),
			body:     string(body),
		})
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(server.Close)
	return server
}

func TestNotifyFileOrganized(t *testing.T) {
	var requests []capturedRequest
	server := newCaptureServer(t, &requests)

	cfg := testsupport.NewConfig(t)
	cfg.Notifications.NtfyTopic = server.URL
	service := notifications.NewService(cfg)

	err := service.NotifyFileOrganized(context.Background(), "Movie Title", "Movie Title (2021).mkv")
	if err != nil {
		t.Fatalf("NotifyFileOrganized failed: %v", err)
	}
	if len(requests) != 1 {
		t.Fatalf("expected one request, got %d", len(requests))
	}
	got := requests[0]
	if got.title != "Shuttle - Library Updated" {
		t.Fatalf("unexpected title header: %q", got.title)
	}
	if !strings.Contains(got.body, "Movie Title") || !strings.Contains(got.body, "Movie Title (2021).mkv") {
		t.Fatalf("unexpected body: %q", got.body)
	}
}

func TestNotifyDestinationUnavailableIsHighPriority(t *testing.T) {
	var requests []capturedRequest
	server := newCaptureServer(t, &requests)

	cfg := testsupport.NewConfig(t)
	cfg.Notifications.NtfyTopic = server.URL
	service := notifications.NewService(cfg)

	if err := service.NotifyDestinationUnavailable(context.Background(), "Show.S01E01.mkv"); err != nil {
		t.Fatalf("NotifyDestinationUnavailable failed: %v", err)
	}
	if len(requests) != 1 || requests[0].priority != "high" {
		t.Fatalf("expected one high priority request, got %+v", requests)
	}
}

func TestNotifyQueueCompletedSummaries(t *testing.T) {
	var requests []capturedRequest
	server := newCaptureServer(t, &requests)

	cfg := testsupport.NewConfig(t)
	cfg.Notifications.NtfyTopic = server.URL
	service := notifications.NewService(cfg)

	if err := service.NotifyQueueCompleted(context.Background(), 4, 0, 90*time.Second); err != nil {
		t.Fatalf("NotifyQueueCompleted failed: %v", err)
	}
	if err := service.NotifyQueueCompleted(context.Background(), 3, 2, time.Minute); err != nil {
		t.Fatalf("NotifyQueueCompleted failed: %v", err)
	}
	if len(requests) != 2 {
		t.Fatalf("expected two requests, got %d", len(requests))
	}
	if !strings.Contains(requests[0].body, "4 items organized in 1m30s") {
		t.Fatalf("unexpected success body: %q", requests[0].body)
	}
	if !strings.Contains(requests[1].body, "3 succeeded, 2 failed") {
		t.Fatalf("unexpected failure body: %q", requests[1].body)
	}
}

func TestNotifyErrorIncludesContext(t *testing.T) {
	var requests []capturedRequest
	server := newCaptureServer(t, &requests)

	cfg := testsupport.NewConfig(t)
	cfg.Notifications.NtfyTopic = server.URL
	service := notifications.NewService(cfg)

	if err := service.NotifyError(context.Background(), errors.New("boom"), "copying"); err != nil {
		t.Fatalf("NotifyError failed: %v", err)
	}
	if len(requests) != 1 || !strings.Contains(requests[0].body, "Error with copying: boom") {
		t.Fatalf("unexpected request: %+v", requests)
	}
}

func TestServerErrorSurfaces(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "topic not found", http.StatusNotFound)
	}))
	t.Cleanup(server.Close)

	cfg := testsupport.NewConfig(t)
	cfg.Notifications.NtfyTopic = server.URL
	service := notifications.NewService(cfg)

	if err := service.TestNotification(context.Background()); err == nil {
		t.Fatal("expected error for non-2xx response")
	}
}

func TestNoopServiceWhenTopicUnset(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Notifications.NtfyTopic = ""
	service := notifications.NewService(cfg)

	if err := service.TestNotification(context.Background()); err != nil {
		t.Fatalf("noop service should never fail: %v", err)
	}
}
