package install

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// GroupTitle labels the collapsible log group around the install command.
const GroupTitle = "Installing Oracle Cloud Infrastructure CLI"

// ErrInstallFailed wraps every install command failure.
var ErrInstallFailed = errors.New("install: command failed")

// Status is the outcome of one Ensure call.
type Status string

const (
	// StatusPresent means a valid marker was found and nothing ran.
	StatusPresent Status = "present"
	// StatusInstalled means the install command ran and exited zero.
	StatusInstalled Status = "installed"
	// StatusInstallFailed means the install command failed or could not start.
	StatusInstallFailed Status = "install_failed"
)

// Result describes what Ensure did. Err is informational: install failures
// and marker write failures are never fatal.
type Result struct {
	Status Status
	Marker Marker
	Err    error
}

// Grouper brackets log output into a named group.
type Grouper interface {
	StartGroup(title string)
	EndGroup()
}

// InstallObservation captures one Ensure call.
type InstallObservation struct {
	Tool       string
	Status     Status
	Stale      bool
	DurationMS int64
	ExitCode   int
}

// Observer receives install-level observability events.
type Observer interface {
	ObserveInstall(observation InstallObservation)
}

type noopObserver struct{}

func (noopObserver) ObserveInstall(InstallObservation) {}

// EnsurerConfig configures an Ensurer.
type EnsurerConfig struct {
	Tool     string
	Command  []string
	Store    MarkerStore
	Runner   CommandRunner
	Refresh  *RefreshSchedule
	Grouper  Grouper
	Logger   *slog.Logger
	Observer Observer
	Now      func() time.Time
}

// Ensurer installs the CLI at most once per marker lifetime.
type Ensurer struct {
	tool     string
	command  []string
	store    MarkerStore
	runner   CommandRunner
	refresh  *RefreshSchedule
	grouper  Grouper
	logger   *slog.Logger
	observer Observer
	now      func() time.Time
}

// NewEnsurer validates cfg and fills defaults.
func NewEnsurer(cfg EnsurerConfig) (*Ensurer, error) {
	if cfg.Store == nil {
		return nil, errors.New("install: marker store is required")
	}
	tool := strings.TrimSpace(cfg.Tool)
	if tool == "" {
		tool = DefaultTool
	}
	command := cfg.Command
	if len(command) == 0 {
		command = DefaultCommand
	}
	if strings.TrimSpace(command[0]) == "" {
		return nil, fmt.Errorf("install: invalid install command %q", strings.Join(command, " "))
	}
	runner := cfg.Runner
	if runner == nil {
		runner = ExecRunner{}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	observer := cfg.Observer
	if observer == nil {
		observer = noopObserver{}
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	return &Ensurer{
		tool:     tool,
		command:  append([]string(nil), command...),
		store:    cfg.Store,
		runner:   runner,
		refresh:  cfg.Refresh,
		grouper:  cfg.Grouper,
		logger:   logger,
		observer: observer,
		now:      now,
	}, nil
}

// Check reports the current marker without installing anything. A marker
// expired by the refresh schedule reports ok=false.
func (e *Ensurer) Check(ctx context.Context) (Marker, bool, error) {
	marker, ok, err := e.store.Get(ctx, e.tool)
	if err != nil || !ok {
		return Marker{}, false, err
	}
	if e.refresh.Stale(marker.InstalledAt, e.now()) {
		return marker, false, nil
	}
	return marker, true, nil
}

// Ensure installs the CLI when no valid marker exists. It is safe to call on
// every invocation; with a valid marker it runs nothing.
func (e *Ensurer) Ensure(ctx context.Context) Result {
	start := e.now()
	marker, ok, err := e.store.Get(ctx, e.tool)
	if err != nil {
		// Unreadable markers count as absent.
		e.logger.Warn("install marker unreadable", "tool", e.tool, "error", err)
		ok = false
	}

	stale := ok && e.refresh.Stale(marker.InstalledAt, start)
	if ok && !stale {
		e.observe(InstallObservation{Tool: e.tool, Status: StatusPresent, DurationMS: e.elapsedMS(start)})
		return Result{Status: StatusPresent, Marker: marker}
	}
	if stale {
		e.logger.Info("install marker expired by refresh schedule",
			"tool", e.tool,
			"schedule", e.refresh.String(),
			"installed_at", marker.InstalledAt.Format(time.RFC3339),
		)
	}

	result, exitCode := e.install(ctx)
	e.observe(InstallObservation{
		Tool:       e.tool,
		Status:     result.Status,
		Stale:      stale,
		DurationMS: e.elapsedMS(start),
		ExitCode:   exitCode,
	})
	return result
}

func (e *Ensurer) install(ctx context.Context) (Result, int) {
	if e.grouper != nil {
		e.grouper.StartGroup(GroupTitle)
		defer e.grouper.EndGroup()
	}

	e.logger.Debug("install exec", "cmd", e.command[0], "args", strings.Join(e.command[1:], " "))
	stdout, stderr, exitCode, err := e.runner.Run(ctx, e.command[0], e.command[1:]...)
	if err != nil || exitCode != 0 {
		if err == nil {
			err = fmt.Errorf("exit status %d", exitCode)
		}
		failure := fmt.Errorf(
			"%w: cmd=%s exit=%d stdout=%q stderr=%q: %v",
			ErrInstallFailed,
			strings.Join(e.command, " "),
			exitCode,
			strings.TrimSpace(string(stdout)),
			strings.TrimSpace(string(stderr)),
			err,
		)
		e.logger.Warn("install command failed; will retry on next invocation", "tool", e.tool, "exit_code", exitCode)
		return Result{Status: StatusInstallFailed, Err: failure}, exitCode
	}

	marker := Marker{Tool: e.tool, Token: DefaultToken, InstalledAt: e.now().UTC()}
	if err := e.store.Put(ctx, marker); err != nil {
		e.logger.Warn("install marker not persisted", "tool", e.tool, "error", err)
		return Result{Status: StatusInstalled, Marker: marker, Err: err}, exitCode
	}
	return Result{Status: StatusInstalled, Marker: marker}, exitCode
}

func (e *Ensurer) observe(observation InstallObservation) {
	e.observer.ObserveInstall(observation)
}

func (e *Ensurer) elapsedMS(start time.Time) int64 {
	return e.now().Sub(start).Milliseconds()
}
