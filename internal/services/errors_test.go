package services_test

import (
	"errors"
	"testing"

	"shuttle/internal/services"
)

func TestWrapPreservesMarker(t *testing.T) {
	base := errors.New("disk yanked")
	err := services.Wrap(services.ErrUnavailable, "copying", "probe destination", "probe failed", base)
	if !errors.Is(err, services.ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable marker, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped cause to survive, got %v", err)
	}
	if !services.IsUnavailable(err) {
		t.Fatal("IsUnavailable should report true")
	}
}

func TestWrapDefaultsToTransient(t *testing.T) {
	err := services.Wrap(nil, "", "", "something odd", nil)
	if !errors.Is(err, services.ErrTransient) {
		t.Fatalf("expected ErrTransient fallback, got %v", err)
	}
}
