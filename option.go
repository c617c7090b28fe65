package kernor

import (
	"log/slog"

	"github.com/viant/kernor/bootargs"
	"github.com/viant/kernor/cpu"
	"github.com/viant/kernor/internal/halt"
	"github.com/viant/kernor/service/stack"
	"github.com/viant/kernor/tracing"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// Option customises the kernel service.
type Option func(s *Service)

// WithConfig sets the configuration.
func WithConfig(config *Config) Option {
	return func(s *Service) {
		s.config = config
	}
}

// WithBootArgs overlays a boot command line onto the configuration. A
// command line the parser rejects makes the machine unbootable.
func WithBootArgs(commandLine string) Option {
	return func(s *Service) {
		args, err := bootargs.Parse([]byte(commandLine))
		if err != nil {
			halt.Fatalf("boot command line invalid: %v", err)
		}
		if s.config == nil {
			s.config = DefaultConfig()
		}
		s.config.ApplyArgs(args)
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithMachine shares an externally owned processor model.
func WithMachine(machine *cpu.Machine) Option {
	return func(s *Service) {
		s.machine = machine
	}
}

// WithQueue sets the reap notification queue.
func WithQueue(queue ReapQueue) Option {
	return func(s *Service) {
		s.queue = queue
	}
}

// WithStackProvider sets the stack provider.
func WithStackProvider(provider stack.Provider) Option {
	return func(s *Service) {
		s.provider = provider
	}
}

// WithTracing configures OpenTelemetry tracing for the service. If
// outputFile is empty the stdout exporter is used; otherwise traces are
// written to the supplied file path. The function is safe to call multiple
// times, the first successful initialisation wins.
func WithTracing(serviceName, serviceVersion, outputFile string) Option {
	return func(s *Service) {
		_ = tracing.Init(serviceName, serviceVersion, outputFile)
	}
}

// WithTracingExporter configures OpenTelemetry tracing using a custom
// SpanExporter. This enables integrations with exporters other than the
// built-in stdout exporter, for example OTLP, Jaeger or Zipkin. The
// function is safe to call multiple times, the first successful
// initialisation wins.
func WithTracingExporter(serviceName, serviceVersion string, exporter sdktrace.SpanExporter) Option {
	return func(s *Service) {
		_ = tracing.InitWithExporter(serviceName, serviceVersion, exporter)
	}
}
