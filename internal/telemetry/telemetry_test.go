package telemetry

import (
	"context"
	"testing"
)

func TestSetupNoopWhenEndpointEmpty(t *testing.T) {
	t.Setenv("ROFKA_OTEL_ENDPOINT", "")
	t.Setenv("ROFKA_OTEL_ENABLED", "")

	shutdown, err := Setup(context.Background(), "rofka-test")
	if err != nil {
		t.Fatalf("setup: %v", err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
}

func TestSetupNoopWhenDisabled(t *testing.T) {
	t.Setenv("ROFKA_OTEL_ENDPOINT", "http://localhost:4318")
	t.Setenv("ROFKA_OTEL_ENABLED", "false")

	shutdown, err := Setup(context.Background(), "rofka-test")
	if err != nil {
		t.Fatalf("setup: %v", err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
}

func TestSetupCreatesProvider(t *testing.T) {
	// non-routable; nothing is exported without spans
	t.Setenv("ROFKA_OTEL_ENDPOINT", "http://192.0.2.1:4318")
	t.Setenv("ROFKA_OTEL_ENABLED", "")

	shutdown, err := Setup(context.Background(), "rofka-test")
	if err != nil {
		t.Fatalf("setup: %v", err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
}
