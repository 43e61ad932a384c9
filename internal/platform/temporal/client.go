// Package temporal dials the Temporal cluster shared by the API and the worker.
package temporal

import (
	"errors"
	"log/slog"

	"go.temporal.io/sdk/client"
	temporalotel "go.temporal.io/sdk/contrib/opentelemetry"
	workerlog "go.temporal.io/sdk/log"

	"github.com/copallet/copallet-api/internal/platform/observability"
)

// ErrDisabled is returned by Dial when Temporal is switched off in configuration.
var ErrDisabled = errors.New("temporal disabled via TEMPORAL_DISABLED")

// Options selects the cluster to dial.
type Options struct {
	Address   string
	Namespace string
	Disabled  bool
	// TracerName names the tracer used by the OpenTelemetry interceptor.
	TracerName string
}

// Dial connects a Temporal client with structured logging and tracing wired in.
func Dial(opts Options, instruments *observability.Instruments) (client.Client, error) {
	if opts.Disabled {
		return nil, ErrDisabled
	}
	tracerName := opts.TracerName
	if tracerName == "" {
		tracerName = "temporal-client"
	}
	tracingInterceptor, err := temporalotel.NewTracingInterceptor(temporalotel.TracerOptions{
		Tracer: instruments.Tracer(tracerName),
	})
	if err != nil {
		return nil, err
	}
	options := client.Options{
		HostPort:  orDefault(opts.Address, client.DefaultHostPort),
		Namespace: orDefault(opts.Namespace, client.DefaultNamespace),
		Logger:    workerlog.NewStructuredLogger(loggerOf(instruments)),
	}
	options.Interceptors = append(options.Interceptors, tracingInterceptor)
	return client.Dial(options)
}

func loggerOf(instruments *observability.Instruments) *slog.Logger {
	if instruments != nil && instruments.Logger != nil {
		return instruments.Logger
	}
	return slog.Default()
}

func orDefault(value, fallback string) string {
	if value != "" {
		return value
	}
	return fallback
}
