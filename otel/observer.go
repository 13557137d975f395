// Package otel records CLI invocation and install signals into OpenTelemetry.
package otel

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/petal-labs/ociaction/install"
	"github.com/petal-labs/ociaction/invoke"
)

// Instrument names.
const (
	MetricInvocations        = "ociaction.invocations"
	MetricInstalls           = "ociaction.installs"
	MetricInvocationDuration = "ociaction.invocation.duration"
)

// Observer implements invoke.Observer and install.Observer.
type Observer struct {
	tracer trace.Tracer

	invocations metric.Int64Counter
	installs    metric.Int64Counter
	duration    metric.Float64Histogram
}

// NewObserver creates an observer bound to the provided meter and tracer.
// A nil tracer records metrics only.
func NewObserver(meter metric.Meter, tracer trace.Tracer) (*Observer, error) {
	invocations, err := meter.Int64Counter(
		MetricInvocations,
		metric.WithDescription("Number of CLI invocations"),
	)
	if err != nil {
		return nil, err
	}
	installs, err := meter.Int64Counter(
		MetricInstalls,
		metric.WithDescription("Number of dependency install checks"),
	)
	if err != nil {
		return nil, err
	}
	duration, err := meter.Float64Histogram(
		MetricInvocationDuration,
		metric.WithDescription("CLI invocation duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	return &Observer{
		tracer:      tracer,
		invocations: invocations,
		installs:    installs,
		duration:    duration,
	}, nil
}

// ObserveInvocation records one pipeline run.
func (o *Observer) ObserveInvocation(observation invoke.InvocationObservation) {
	if o == nil {
		return
	}

	attrs := []attribute.KeyValue{
		attribute.String("binary", observation.Binary),
		attribute.Bool("success", observation.Succeeded),
		attribute.Bool("silent", observation.Silent),
	}
	if observation.OutputKind != "" {
		attrs = append(attrs, attribute.String("output_kind", observation.OutputKind))
	}
	if observation.ErrorCode != "" {
		attrs = append(attrs,
			attribute.String("error_code", observation.ErrorCode),
			attribute.Int("exit_code", observation.ExitCode),
		)
	}

	ctx := context.Background()
	options := metric.WithAttributes(attrs...)
	o.invocations.Add(ctx, 1, options)
	o.duration.Record(ctx, seconds(observation.DurationMS), options)

	if o.tracer == nil {
		return
	}
	_, span := o.tracer.Start(ctx, "cli.invoke", trace.WithAttributes(attrs...))
	if observation.Succeeded {
		span.SetStatus(codes.Ok, "")
	} else {
		span.SetStatus(codes.Error, observation.ErrorCode)
	}
	span.End()
}

// ObserveInstall records one Ensure call.
func (o *Observer) ObserveInstall(observation install.InstallObservation) {
	if o == nil {
		return
	}

	attrs := []attribute.KeyValue{
		attribute.String("tool", observation.Tool),
		attribute.String("status", string(observation.Status)),
		attribute.Bool("stale", observation.Stale),
	}
	ctx := context.Background()
	o.installs.Add(ctx, 1, metric.WithAttributes(attrs...))

	// Present markers are the hot path and carry no span.
	if o.tracer == nil || observation.Status == install.StatusPresent {
		return
	}
	attrs = append(attrs, attribute.Int("exit_code", observation.ExitCode))
	_, span := o.tracer.Start(ctx, "cli.install", trace.WithAttributes(attrs...))
	if observation.Status == install.StatusInstallFailed {
		span.SetStatus(codes.Error, string(observation.Status))
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

func seconds(ms int64) float64 {
	return float64(time.Duration(ms)*time.Millisecond) / float64(time.Second)
}

var (
	_ invoke.Observer  = (*Observer)(nil)
	_ install.Observer = (*Observer)(nil)
)
