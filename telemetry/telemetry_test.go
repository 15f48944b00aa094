package telemetry

import (
	"context"
	"testing"
	"time"

	"github.com/freekieb7/pebble/test"
)

func TestSetupDisabledIsNoop(t *testing.T) {
	t.Setenv(envEndpoint, "")

	cfg := Config{ServiceName: "pebble-test"}
	test.AssertTrue(t, !cfg.Enabled(), "exporting should be disabled without an endpoint")

	shutdown, err := Setup(context.Background(), cfg)
	test.AssertNoError(t, err)
	test.AssertNoError(t, shutdown(context.Background()))
}

func TestSetupWithEndpoint(t *testing.T) {
	cfg := Config{
		ServiceName:    "pebble-test",
		Endpoint:       "127.0.0.1:4317",
		Insecure:       true,
		ExportInterval: time.Hour,
	}
	test.AssertTrue(t, cfg.Enabled(), "exporting should be enabled with an endpoint")

	// gRPC dials lazily, so no collector has to be listening.
	shutdown, err := Setup(context.Background(), cfg)
	test.AssertNoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	shutdown(ctx)
}
