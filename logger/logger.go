package logger

import (
	"context"
	"log/slog"
	"os"
	"runtime"
	"strconv"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"go.opentelemetry.io/otel/trace"
)

const (
	serviceName    = "dualasset-analyzer"
	serviceVersion = "1.0.0"
)

// Config selects the log output. It is read from LOG_LEVEL, LOG_FORMAT,
// LOG_DETAILED and LOG_TRACING_ENABLED.
type Config struct {
	Level    string
	JSON     bool
	Detailed bool
	Tracing  bool
}

type state struct {
	log      *slog.Logger
	detailed bool
	tracer   trace.Tracer
	provider *sdktrace.TracerProvider
}

var current = state{}

// Init configures the process logger, and the stdout span exporter when
// tracing is switched on.
func Init() error {
	return initWith(configFromEnv())
}

func configFromEnv() Config {
	cfg := Config{Level: os.Getenv("LOG_LEVEL"), JSON: os.Getenv("LOG_FORMAT") != "text"}
	cfg.Detailed, _ = strconv.ParseBool(os.Getenv("LOG_DETAILED"))
	cfg.Tracing, _ = strconv.ParseBool(os.Getenv("LOG_TRACING_ENABLED"))
	return cfg
}

func initWith(cfg Config) error {
	opts := &slog.HandlerOptions{Level: levelOf(cfg.Level)}
	var h slog.Handler = slog.NewTextHandler(os.Stdout, opts)
	if cfg.JSON {
		h = slog.NewJSONHandler(os.Stdout, opts)
	}

	next := state{log: slog.New(h), detailed: cfg.Detailed}
	slog.SetDefault(next.log)

	if cfg.Tracing {
		provider, err := newTracerProvider()
		if err != nil {
			next.log.Warn("Tracing disabled, exporter setup failed", "error", err)
		} else {
			otel.SetTracerProvider(provider)
			next.provider = provider
			next.tracer = provider.Tracer(serviceName)
		}
	}

	current = next
	return nil
}

func newTracerProvider() (*sdktrace.TracerProvider, error) {
	exporter, err := stdouttrace.New(stdouttrace.WithPrettyPrint())
	if err != nil {
		return nil, err
	}
	res, err := resource.New(context.Background(), resource.WithAttributes(
		semconv.ServiceName(serviceName),
		semconv.ServiceVersion(serviceVersion),
	))
	if err != nil {
		return nil, err
	}
	return sdktrace.NewTracerProvider(sdktrace.WithBatcher(exporter), sdktrace.WithResource(res)), nil
}

// Shutdown flushes spans still queued in the exporter.
func Shutdown(ctx context.Context) error {
	if current.provider == nil {
		return nil
	}
	return current.provider.Shutdown(ctx)
}

// levelOf accepts DEBUG, INFO, WARN or ERROR in any case; anything else is INFO.
func levelOf(name string) slog.Level {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(name)); err != nil {
		return slog.LevelInfo
	}
	return lvl
}

func (s state) tracing() bool {
	return s.tracer != nil
}

func Debug(ctx context.Context, msg string, args ...any) {
	emit(ctx, slog.LevelDebug, msg, args)
}

func Info(ctx context.Context, msg string, args ...any) {
	emit(ctx, slog.LevelInfo, msg, args)
}

func Warn(ctx context.Context, msg string, args ...any) {
	emit(ctx, slog.LevelWarn, msg, args)
}

// ErrorWithErr logs err at ERROR and marks the active span as failed.
func ErrorWithErr(ctx context.Context, msg string, err error, args ...any) {
	if span := activeSpan(ctx); span != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	emit(ctx, slog.LevelError, msg, append([]any{"error", err}, args...))
}

// Recommendation records a headline offer pick as an INFO line and a span event.
func Recommendation(ctx context.Context, source, coin, decision string, targetPrice, ratePercent float64) {
	if span := activeSpan(ctx); span != nil {
		span.AddEvent("recommendation", trace.WithAttributes(
			attribute.String("source", source),
			attribute.String("coin", coin),
			attribute.String("decision", decision),
			attribute.Float64("target_price", targetPrice),
			attribute.Float64("rate_percent", ratePercent),
		))
	}

	emit(ctx, slog.LevelInfo, "Offer recommended", []any{
		"type", "RECOMMENDATION",
		"source", source,
		"coin", coin,
		"decision", decision,
		"target_price", targetPrice,
		"rate_percent", ratePercent,
	})
}

func activeSpan(ctx context.Context) trace.Span {
	if !current.tracing() {
		return nil
	}
	span := trace.SpanFromContext(ctx)
	if !span.SpanContext().IsValid() {
		return nil
	}
	return span
}

// callerDepth skips emit and the exported wrapper that called it.
const callerDepth = 2

func emit(ctx context.Context, level slog.Level, msg string, args []any) {
	l := current.log
	if l == nil {
		l = slog.Default()
	}
	if !l.Enabled(ctx, level) {
		return
	}

	if span := activeSpan(ctx); span != nil {
		sc := span.SpanContext()
		args = append([]any{"trace_id", sc.TraceID().String(), "span_id", sc.SpanID().String()}, args...)
	}

	if current.detailed {
		if pc, file, line, ok := runtime.Caller(callerDepth); ok {
			fn := "unknown"
			if f := runtime.FuncForPC(pc); f != nil {
				fn = f.Name()
			}
			args = append(args, slog.Group("source",
				slog.String("function", fn),
				slog.String("file", file),
				slog.Int("line", line),
			))
		}
	}

	l.Log(ctx, level, msg, args...)
}

// Operation times one unit of work. With tracing on it owns a span, which its
// Context carries to nested operations.
type Operation struct {
	ctx     context.Context
	span    trace.Span
	started time.Time
	fields  []any
}

func StartOperation(ctx context.Context, name string, fields ...any) *Operation {
	op := &Operation{
		ctx:     ctx,
		started: time.Now(),
		fields:  append([]any{"operation", name}, fields...),
	}
	if current.tracing() {
		op.ctx, op.span = current.tracer.Start(ctx, name, trace.WithAttributes(attributesOf(fields)...))
	}

	if current.detailed {
		Debug(op.ctx, "Operation started", op.fields...)
	}
	return op
}

// Context returns the context carrying the operation span.
func (op *Operation) Context() context.Context {
	return op.ctx
}

func (op *Operation) End(fields ...any) {
	elapsed := op.finish(nil, fields)
	if current.detailed {
		Debug(op.ctx, "Operation completed", op.summary(elapsed, fields)...)
	}
}

// EndWithError closes the operation as failed. Failures are always logged.
func (op *Operation) EndWithError(err error, fields ...any) {
	elapsed := op.finish(err, fields)
	emit(op.ctx, slog.LevelError, "Operation failed", append(op.summary(elapsed, fields), "error", err))
}

func (op *Operation) finish(err error, fields []any) time.Duration {
	elapsed := time.Since(op.started)
	if op.span == nil {
		return elapsed
	}

	op.span.SetAttributes(attribute.Int64("duration_ms", elapsed.Milliseconds()))
	op.span.SetAttributes(attributesOf(fields)...)
	if err != nil {
		op.span.RecordError(err)
		op.span.SetStatus(codes.Error, err.Error())
	} else {
		op.span.SetStatus(codes.Ok, "completed")
	}
	op.span.End()
	return elapsed
}

func (op *Operation) summary(elapsed time.Duration, fields []any) []any {
	out := make([]any, 0, len(op.fields)+len(fields)+2)
	out = append(out, op.fields...)
	out = append(out, "duration_ms", elapsed.Milliseconds())
	return append(out, fields...)
}

// attributesOf converts slog-style key/value pairs into span attributes.
// Pairs with a non-string key or an unsupported value type are skipped.
func attributesOf(fields []any) []attribute.KeyValue {
	attrs := make([]attribute.KeyValue, 0, len(fields)/2)
	for i := 0; i+1 < len(fields); i += 2 {
		key, ok := fields[i].(string)
		if !ok {
			continue
		}
		switch v := fields[i+1].(type) {
		case string:
			attrs = append(attrs, attribute.String(key, v))
		case int:
			attrs = append(attrs, attribute.Int(key, v))
		case int64:
			attrs = append(attrs, attribute.Int64(key, v))
		case float64:
			attrs = append(attrs, attribute.Float64(key, v))
		case bool:
			attrs = append(attrs, attribute.Bool(key, v))
		}
	}
	return attrs
}
