package telemetry

import (
	"context"
	"fmt"
	"time"

	"github.com/erp/backoffice/internal/infrastructure/config"
	"go.opentelemetry.io/contrib/bridges/otelzap"
	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploggrpc"
	otellog "go.opentelemetry.io/otel/log"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LogExport ships zap entries to the collector through the otelzap bridge
type LogExport struct {
	provider *sdklog.LoggerProvider
}

// NewLogExport builds the OTLP log exporter when both tracing and log export are enabled
func NewLogExport(ctx context.Context, cfg config.TelemetryConfig, version string) (*LogExport, error) {
	if !cfg.Enabled || !cfg.LogsEnabled {
		return &LogExport{}, nil
	}

	opts := []otlploggrpc.Option{otlploggrpc.WithEndpoint(cfg.CollectorEndpoint)}
	if cfg.Insecure {
		opts = append(opts, otlploggrpc.WithInsecure())
	}
	exporter, err := otlploggrpc.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create OTLP log exporter: %w", err)
	}
	res, err := serviceResource(cfg.ServiceName, version)
	if err != nil {
		return nil, err
	}
	return &LogExport{provider: sdklog.NewLoggerProvider(
		sdklog.WithResource(res),
		sdklog.WithProcessor(sdklog.NewBatchProcessor(exporter)),
	)}, nil
}

// Bridge returns base teed into the export; base is returned as is when export is off
func (e *LogExport) Bridge(base *zap.Logger, name string, level zapcore.Level) *zap.Logger {
	if e.provider == nil {
		return base
	}
	return Bridge(base, e.provider, name, level)
}

// Shutdown flushes pending log records
func (e *LogExport) Shutdown(ctx context.Context) error {
	if e.provider == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return e.provider.Shutdown(ctx)
}

// Bridge tees base into an otelzap core emitting to provider at level and above
func Bridge(base *zap.Logger, provider otellog.LoggerProvider, name string, level zapcore.Level) *zap.Logger {
	otelCore := &levelCore{
		Core: otelzap.NewCore(name, otelzap.WithLoggerProvider(provider)),
		min:  level,
	}
	return base.WithOptions(zap.WrapCore(func(c zapcore.Core) zapcore.Core {
		return zapcore.NewTee(c, otelCore)
	}))
}

// levelCore drops entries under min; the otelzap core has no level of its own
type levelCore struct {
	zapcore.Core
	min zapcore.Level
}

func (c *levelCore) Enabled(l zapcore.Level) bool {
	return l >= c.min && c.Core.Enabled(l)
}

func (c *levelCore) Check(e zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if !c.Enabled(e.Level) {
		return ce
	}
	return c.Core.Check(e, ce)
}

func (c *levelCore) With(fields []zapcore.Field) zapcore.Core {
	return &levelCore{Core: c.Core.With(fields), min: c.min}
}
