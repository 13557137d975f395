package cli

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/petal-labs/ociaction/action"
	"github.com/petal-labs/ociaction/config"
	"github.com/petal-labs/ociaction/install"
	ociotel "github.com/petal-labs/ociaction/otel"
)

const instrumentationName = "github.com/petal-labs/ociaction"

// newConsole binds the runner surface to the command's stdout.
func newConsole(cmd *cobra.Command) *action.Console {
	return action.NewConsole(action.ConsoleConfig{Out: cmd.OutOrStdout()})
}

// newLogger routes slog through the console. --verbose or RUNNER_DEBUG=1
// enables debug records.
func newLogger(cmd *cobra.Command, console *action.Console) *slog.Logger {
	level := slog.LevelInfo
	verbose, _ := cmd.Flags().GetBool("verbose")
	if verbose || console.IsDebug() {
		level = slog.LevelDebug
	}
	return slog.New(action.NewHandler(console, &action.HandlerOptions{Level: level}))
}

func loadConfig(cmd *cobra.Command) (config.Config, error) {
	explicit, _ := cmd.Flags().GetString("config")
	path, found, err := config.Discover(explicit)
	if err != nil {
		return config.Config{}, exitError(exitRuntime, "resolving config: %v", err)
	}
	if !found {
		return config.Default(), nil
	}
	cfg, err := config.Load(path)
	if err != nil {
		return config.Config{}, exitError(exitRuntime, "%v", err)
	}
	return cfg, nil
}

func applyInstallFlags(cmd *cobra.Command, cfg *config.Config) {
	if kind, _ := cmd.Flags().GetString("marker-store"); strings.TrimSpace(kind) != "" {
		cfg.Install.MarkerStore = strings.ToLower(strings.TrimSpace(kind))
	}
	if skip, _ := cmd.Flags().GetBool("skip-install"); skip {
		cfg.Install.Skip = true
	}
}

func addInstallFlags(cmd *cobra.Command) {
	cmd.Flags().String("config", "", "Path to ociaction.yaml (default: ./ociaction.yaml, then ~/.ociaction/config.yaml)")
	cmd.Flags().String("marker-store", "", "Install marker store: file | sqlite | memory")
}

// openMarkerStore returns the configured store and a close func.
func openMarkerStore(cfg config.InstallConfig) (install.MarkerStore, func(), error) {
	noop := func() {}
	switch cfg.MarkerStore {
	case config.MarkerStoreMemory:
		return install.NewMemoryMarkerStore(), noop, nil
	case config.MarkerStoreSQLite:
		path := cfg.SQLitePath
		if path == "" {
			var err error
			if path, err = install.DefaultSQLitePath(); err != nil {
				return nil, noop, err
			}
		}
		store, err := install.NewSQLiteMarkerStore(install.SQLiteMarkerStoreConfig{DSN: path})
		if err != nil {
			return nil, noop, err
		}
		return store, func() { _ = store.Close() }, nil
	case config.MarkerStoreFile, "":
		if cfg.MarkerPath != "" {
			return install.NewFileMarkerStore(cfg.MarkerPath), noop, nil
		}
		store, err := install.NewDefaultFileMarkerStore()
		if err != nil {
			return nil, noop, err
		}
		return store, noop, nil
	default:
		return nil, noop, fmt.Errorf("unknown marker store %q", cfg.MarkerStore)
	}
}

// buildEnsurer wires the install step. Callers must invoke the returned
// close func.
func buildEnsurer(
	cfg config.InstallConfig,
	console *action.Console,
	logger *slog.Logger,
	observer install.Observer,
) (*install.Ensurer, func(), error) {
	store, closeStore, err := openMarkerStore(cfg)
	if err != nil {
		return nil, closeStore, exitError(exitRuntime, "opening marker store: %v", err)
	}

	var refresh *install.RefreshSchedule
	if strings.TrimSpace(cfg.Refresh) != "" {
		refresh, err = install.ParseRefreshSchedule(cfg.Refresh)
		if err != nil {
			closeStore()
			return nil, func() {}, exitError(exitRuntime, "%v", err)
		}
	}

	ensurer, err := install.NewEnsurer(install.EnsurerConfig{
		Tool:     cfg.Tool,
		Command:  cfg.Command,
		Store:    store,
		Runner:   install.ExecRunner{Output: console.Writer()},
		Refresh:  refresh,
		Grouper:  console,
		Logger:   logger,
		Observer: observer,
	})
	if err != nil {
		closeStore()
		return nil, func() {}, exitError(exitRuntime, "%v", err)
	}
	return ensurer, closeStore, nil
}

// newObserver returns the telemetry observer and a shutdown func. Spans are
// exported only when telemetry is enabled; metrics go to the global meter
// provider.
func newObserver(ctx context.Context, cfg config.TelemetryConfig, logger *slog.Logger) (*ociotel.Observer, func()) {
	var tracer trace.Tracer
	shutdown := func() {}
	if cfg.Enabled {
		tp, err := ociotel.NewTracerProvider(ctx, ociotel.ProviderConfig{
			Endpoint:    cfg.Endpoint,
			ServiceName: cfg.ServiceName,
		})
		if err != nil {
			logger.Warn("telemetry disabled", "error", err)
		} else {
			tracer = tp.Tracer(instrumentationName)
			shutdown = func() {
				if err := tp.Shutdown(context.WithoutCancel(ctx)); err != nil {
					logger.Debug("telemetry shutdown", "error", err)
				}
			}
		}
	}

	observer, err := ociotel.NewObserver(otel.GetMeterProvider().Meter(instrumentationName), tracer)
	if err != nil {
		logger.Warn("telemetry observer unavailable", "error", err)
		return nil, shutdown
	}
	return observer, shutdown
}

// readEnvFiles merges dotenv files in order; later files win. The result is
// sorted KEY=VALUE pairs for the child process.
func readEnvFiles(paths []string) ([]string, error) {
	if len(paths) == 0 {
		return nil, nil
	}
	merged := make(map[string]string)
	for _, path := range paths {
		values, err := godotenv.Read(path)
		if err != nil {
			return nil, fmt.Errorf("reading env file %q: %w", path, err)
		}
		for k, v := range values {
			merged[k] = v
		}
	}
	keys := make([]string, 0, len(merged))
	for k := range merged {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	env := make([]string, 0, len(keys))
	for _, k := range keys {
		env = append(env, k+"="+merged[k])
	}
	return env, nil
}
