// Package telemetry builds the OpenTelemetry meter provider for the site
// server. When disabled it hands out no-op meters.
package telemetry

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

// DefaultInterval is how often the periodic reader exports.
const DefaultInterval = time.Minute

// Config holds metrics configuration.
type Config struct {
	Enabled     bool
	ServiceName string
	Interval    time.Duration
	// Writer receives exported metrics as JSON. Required when enabled
	// unless Reader is set.
	Writer io.Writer
	// Reader replaces the periodic exporter, e.g. a manual reader in tests.
	Reader sdkmetric.Reader
}

// Provider owns the SDK meter provider, or nothing when metrics are off.
type Provider struct {
	meterProvider *sdkmetric.MeterProvider
	config        Config
}

// New creates a provider. A disabled config yields a no-op provider.
func New(cfg Config) (*Provider, error) {
	p := &Provider{config: cfg}
	if !cfg.Enabled {
		return p, nil
	}

	res, err := resource.New(context.Background(),
		resource.WithAttributes(semconv.ServiceName(cfg.ServiceName)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	reader := cfg.Reader
	if reader == nil {
		if cfg.Writer == nil {
			return nil, errors.New("metrics enabled but no writer or reader configured")
		}
		exporter, err := stdoutmetric.New(stdoutmetric.WithWriter(cfg.Writer))
		if err != nil {
			return nil, fmt.Errorf("failed to create metric exporter: %w", err)
		}
		interval := cfg.Interval
		if interval <= 0 {
			interval = DefaultInterval
		}
		reader = sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(interval))
	}

	p.meterProvider = sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(reader),
	)
	return p, nil
}

// MeterProvider returns the SDK provider, or a no-op provider when disabled.
func (p *Provider) MeterProvider() metric.MeterProvider {
	if p == nil || p.meterProvider == nil {
		return noop.NewMeterProvider()
	}
	return p.meterProvider
}

// Install makes the provider the global one so instrumentation that reads
// the global provider reports through it too.
func (p *Provider) Install() {
	if p.Enabled() {
		otel.SetMeterProvider(p.meterProvider)
	}
}

// Shutdown flushes pending metrics and stops the reader.
func (p *Provider) Shutdown(ctx context.Context) error {
	if !p.Enabled() {
		return nil
	}
	if err := p.meterProvider.Shutdown(ctx); err != nil {
		return fmt.Errorf("metric shutdown failed: %w", err)
	}
	return nil
}

// Enabled reports whether metrics are recorded.
func (p *Provider) Enabled() bool {
	return p != nil && p.meterProvider != nil
}
