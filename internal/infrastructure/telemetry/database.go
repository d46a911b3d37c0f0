package telemetry

import (
	"github.com/erp/backoffice/internal/infrastructure/config"
	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// TraceDatabase registers the otelgorm plugin on db. Nothing is registered
// unless both tracing and database tracing are enabled.
func TraceDatabase(db *gorm.DB, driver string, cfg config.TelemetryConfig, tp trace.TracerProvider, logger *zap.Logger) error {
	if !cfg.Enabled || !cfg.DBTraceEnabled {
		return nil
	}

	opts := []otelgorm.Option{
		otelgorm.WithDBName(driver),
		otelgorm.WithTracerProvider(tp),
		otelgorm.WithoutMetrics(),
	}
	if !cfg.DBLogFullSQL {
		opts = append(opts, otelgorm.WithoutQueryVariables())
	}
	if err := db.Use(otelgorm.NewPlugin(opts...)); err != nil {
		return err
	}

	logger.Info("Database tracing enabled",
		zap.String("db_system", driver),
		zap.Bool("log_full_sql", cfg.DBLogFullSQL),
	)
	return nil
}
