package cli

import (
	"github.com/spf13/cobra"

	"github.com/petal-labs/ociaction/action"
	"github.com/petal-labs/ociaction/invoke"
)

// NewRunCmd creates the "run" subcommand.
func NewRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run one OCI CLI command and publish its output",
		Long: "Run one OCI CLI command as a workflow step. Inputs come from INPUT_COMMAND, " +
			"INPUT_QUERY and INPUT_SILENT unless overridden by flags. Results are published " +
			"as the output and raw_output step outputs.",
		Args: cobra.NoArgs,
		RunE: runRun,
	}

	cmd.Flags().String("command", "", "CLI command to run, with or without the leading binary name")
	cmd.Flags().String("query", "", "JMESPath query applied by the CLI")
	cmd.Flags().Bool("silent", false, "Mask the command line and outputs")
	cmd.Flags().StringArray("env-file", nil, "Load KEY=VALUE pairs for the CLI process (repeatable)")
	cmd.Flags().Bool("skip-install", false, "Do not check or install the CLI")
	addInstallFlags(cmd)

	return cmd
}

func runRun(cmd *cobra.Command, _ []string) error {
	console := newConsole(cmd)
	logger := newLogger(cmd, console)

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	applyInstallFlags(cmd, &cfg)

	spec, err := readCommandSpec(cmd, console)
	if err != nil {
		console.SetFailed(err.Error())
		return exitError(exitFailure, "%s", console.Redact(err.Error()))
	}

	envFiles, _ := cmd.Flags().GetStringArray("env-file")
	env, err := readEnvFiles(envFiles)
	if err != nil {
		return exitError(exitRuntime, "%v", err)
	}
	env = append(append([]string(nil), cfg.CLI.Env...), env...)

	observer, shutdown := newObserver(cmd.Context(), cfg.Telemetry, logger)
	defer shutdown()

	pipelineCfg := invoke.PipelineConfig{
		BinaryName: cfg.CLI.Binary,
		Executor: &invoke.ShellExecutor{
			Shell:     cfg.CLI.Shell,
			ShellFlag: cfg.CLI.ShellFlag,
			Secrets:   console,
			Echo:      console.Writer(),
			Env:       env,
		},
		Reporter: console,
		Logger:   logger,
		Observer: observer,
	}
	if !cfg.Install.Skip {
		ensurer, closeStore, err := buildEnsurer(cfg.Install, console, logger, observer)
		if err != nil {
			return err
		}
		defer closeStore()
		pipelineCfg.Ensurer = ensurer
	}

	pipeline, err := invoke.NewPipeline(pipelineCfg)
	if err != nil {
		return exitError(exitRuntime, "%v", err)
	}

	outcome := pipeline.Run(cmd.Context(), spec)
	if !outcome.Succeeded {
		return exitError(exitFailure, "%s", console.Redact(outcome.Message))
	}
	return nil
}

// readCommandSpec reads step inputs; flags that were set explicitly win over
// INPUT_* variables.
func readCommandSpec(cmd *cobra.Command, console *action.Console) (invoke.CommandSpec, error) {
	var spec invoke.CommandSpec
	var err error

	if cmd.Flags().Changed("command") {
		spec.RawCommand, _ = cmd.Flags().GetString("command")
	} else if spec.RawCommand, err = console.Input("command", action.InputOptions{}); err != nil {
		return invoke.CommandSpec{}, err
	}

	if cmd.Flags().Changed("query") {
		spec.Query, _ = cmd.Flags().GetString("query")
	} else if spec.Query, err = console.Input("query", action.InputOptions{}); err != nil {
		return invoke.CommandSpec{}, err
	}

	if cmd.Flags().Changed("silent") {
		spec.Silent, _ = cmd.Flags().GetBool("silent")
	} else if spec.Silent, err = console.BoolInput("silent", false); err != nil {
		return invoke.CommandSpec{}, err
	}
	return spec, nil
}
