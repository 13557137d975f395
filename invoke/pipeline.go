package invoke

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/petal-labs/ociaction/install"
)

const (
	// OutputName is the double-encoded structured result.
	OutputName = "output"
	// RawOutputName is the optional scalar projection.
	RawOutputName = "raw_output"
)

// Reporter is the hosting environment the pipeline reports into.
type Reporter interface {
	SecretRegistrar
	SetOutput(name, value string) error
	SetFailed(message string)
}

// DependencyEnsurer makes sure the CLI is installed before it is resolved.
type DependencyEnsurer interface {
	Ensure(ctx context.Context) install.Result
}

// PipelineConfig wires the pipeline collaborators.
type PipelineConfig struct {
	// BinaryName is resolved on PATH and stripped from commands. Defaults to "oci".
	BinaryName string
	// Ensurer is optional; without it the install step is skipped.
	Ensurer  DependencyEnsurer
	Resolver Resolver
	Executor Executor
	Reporter Reporter
	Logger   *slog.Logger
	Observer Observer
}

// Outcome is the single result of one Run.
type Outcome struct {
	Succeeded bool
	Code      string
	Message   string
	ExitCode  int
	Output    NormalizedOutput
	Err       error
}

// Pipeline runs install check, build, execute, normalize and report.
type Pipeline struct {
	binaryName string
	builder    Builder
	ensurer    DependencyEnsurer
	resolver   Resolver
	executor   Executor
	reporter   Reporter
	logger     *slog.Logger
	observer   Observer
}

// NewPipeline validates cfg and fills defaults.
func NewPipeline(cfg PipelineConfig) (*Pipeline, error) {
	if cfg.Executor == nil {
		return nil, errors.New("invoke: executor is required")
	}
	if cfg.Reporter == nil {
		return nil, errors.New("invoke: reporter is required")
	}
	name := strings.TrimSpace(cfg.BinaryName)
	if name == "" {
		name = DefaultBinaryName
	}
	resolver := cfg.Resolver
	if resolver == nil {
		resolver = PathResolver{}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	observer := cfg.Observer
	if observer == nil {
		observer = noopObserver{}
	}

	return &Pipeline{
		binaryName: name,
		builder:    Builder{BinaryName: name},
		ensurer:    cfg.Ensurer,
		resolver:   resolver,
		executor:   cfg.Executor,
		reporter:   cfg.Reporter,
		logger:     logger,
		observer:   observer,
	}, nil
}

// Run executes one invocation and reports exactly one outcome.
func (p *Pipeline) Run(ctx context.Context, spec CommandSpec) Outcome {
	start := time.Now()
	outcome := p.run(ctx, spec)
	p.observer.ObserveInvocation(InvocationObservation{
		Binary:     p.binaryName,
		Succeeded:  outcome.Succeeded,
		ErrorCode:  outcome.Code,
		ExitCode:   outcome.ExitCode,
		DurationMS: time.Since(start).Milliseconds(),
		Silent:     spec.Silent,
		OutputKind: outcomeKind(outcome),
	})
	return outcome
}

func (p *Pipeline) run(ctx context.Context, spec CommandSpec) Outcome {
	if p.ensurer != nil {
		res := p.ensurer.Ensure(ctx)
		if res.Err != nil {
			p.logger.Debug("install step incomplete",
				"status", string(res.Status),
				"code", ErrorCodeInstallFailure,
				"error", res.Err,
			)
		}
	}

	binaryPath, err := p.resolver.Resolve(p.binaryName)
	if err != nil {
		return p.fail(err, 0)
	}
	if err := spec.Validate(); err != nil {
		return p.fail(err, 0)
	}

	inv := p.builder.Build(spec, binaryPath)
	p.logger.Info("Executing Oracle Cloud Infrastructure CLI command")

	result, err := p.executor.Execute(ctx, inv, spec.Silent)
	if err != nil {
		p.logger.Debug("cli process did not run", "error", err)
		return p.fail(newError(ErrorCodeExecutionStart, GenericFailureMessage, err), 0)
	}
	p.logger.Debug("cli process exited", "exit_code", result.ExitCode, "duration", result.Duration)

	if result.ExitCode != 0 {
		return p.fail(withErrorDetails(
			newError(ErrorCodeCommandFailure, FailureMessage(result), nil),
			map[string]any{"exit_code": result.ExitCode},
		), result.ExitCode)
	}

	normalized, err := Normalize(result)
	if err != nil {
		return p.fail(err, 0)
	}
	p.logger.Debug("cli output normalized", "shape", normalized.Kind.String(), "raw_output", normalized.HasRaw)

	if err := p.publish(OutputName, normalized.Output, spec.Silent); err != nil {
		return p.fail(newError(ErrorCodePublishFailure, "invoke: publish output: "+err.Error(), err), 0)
	}
	if normalized.HasRaw {
		if err := p.publish(RawOutputName, normalized.RawOutput, spec.Silent); err != nil {
			return p.fail(newError(ErrorCodePublishFailure, "invoke: publish raw output: "+err.Error(), err), 0)
		}
	}
	return Outcome{Succeeded: true, Output: normalized}
}

// publish is the only path to the reporter's outputs. A redacted value is
// registered as a secret before it becomes visible.
func (p *Pipeline) publish(name, value string, redact bool) error {
	if redact && value != "" {
		p.reporter.RegisterSecret(value)
	}
	return p.reporter.SetOutput(name, value)
}

func (p *Pipeline) fail(err error, exitCode int) Outcome {
	message := ErrorMessage(err)
	p.reporter.SetFailed(message)
	return Outcome{
		Code:     ErrorCode(err),
		Message:  message,
		ExitCode: exitCode,
		Err:      err,
	}
}

func outcomeKind(outcome Outcome) string {
	if !outcome.Succeeded {
		return ""
	}
	return outcome.Output.Kind.String()
}
