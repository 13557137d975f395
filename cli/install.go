package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/petal-labs/ociaction/install"
)

// NewInstallCmd creates the "install" subcommand.
func NewInstallCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "install",
		Short: "Install the OCI CLI unless a valid install marker exists",
		Args:  cobra.NoArgs,
		RunE:  runInstall,
	}

	cmd.Flags().Bool("check", false, "Report the marker state without installing")
	addInstallFlags(cmd)

	return cmd
}

func runInstall(cmd *cobra.Command, _ []string) error {
	console := newConsole(cmd)
	logger := newLogger(cmd, console)

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	applyInstallFlags(cmd, &cfg)

	observer, shutdown := newObserver(cmd.Context(), cfg.Telemetry, logger)
	defer shutdown()

	ensurer, closeStore, err := buildEnsurer(cfg.Install, console, logger, observer)
	if err != nil {
		return err
	}
	defer closeStore()

	out := cmd.OutOrStdout()
	if check, _ := cmd.Flags().GetBool("check"); check {
		marker, ok, err := ensurer.Check(cmd.Context())
		if err != nil {
			return exitError(exitRuntime, "reading install marker: %v", err)
		}
		if !ok {
			fmt.Fprintf(out, "%s: not installed\n", cfg.Install.Tool)
			return exitError(exitFailure, "%s is not installed", cfg.Install.Tool)
		}
		fmt.Fprintf(out, "%s: %s (installed %s)\n", marker.Tool, install.StatusPresent, formatInstalledAt(marker.InstalledAt))
		return nil
	}

	result := ensurer.Ensure(cmd.Context())
	fmt.Fprintf(out, "%s: %s\n", cfg.Install.Tool, result.Status)
	if result.Status == install.StatusInstallFailed {
		return exitError(exitFailure, "%v", result.Err)
	}
	return nil
}

func formatInstalledAt(t time.Time) string {
	if t.IsZero() {
		return "unknown"
	}
	return t.UTC().Format(time.RFC3339)
}
