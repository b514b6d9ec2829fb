// Package cli implements the medspresso command tree.
package cli

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"medspresso/internal/ollama"
)

// Main runs the CLI with process stdio and returns the exit code.
func Main(args []string) int {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	if err := Execute(ctx, args, os.Stdout, os.Stderr, os.Getenv); err != nil {
		return 1
	}
	return 0
}

// Execute runs the command tree. Failures are printed to stderr and returned.
func Execute(ctx context.Context, args []string, stdout, stderr io.Writer, getenv func(string) string) error {
	a := newApp(stdout, stderr, getenv)
	root := buildRootCmd(a)
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)
	if err := root.ExecuteContext(ctx); err != nil {
		if ollama.IsUnreachable(err) {
			a.console.Box("Inference daemon unreachable", err.Error(), true)
		} else {
			a.console.Error("%v", err)
		}
		return err
	}
	return nil
}

func buildRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "medspresso",
		Short:         "Extract information from clinical text using local LLMs",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init()
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.configPath, "config", "", "Config file (.yaml, .json or .toml)")
	pf.StringVar(&a.flags.BaseURL, "base-url", "", "Daemon API base URL (default http://localhost:11434/api)")
	pf.StringVar(&a.flags.LogLevel, "log-level", "", "Log level: debug|info|warn|error (default info)")
	pf.StringVar(&a.flags.ModelsFile, "models-file", "", "Models registry YAML (default configs/models.yaml)")
	pf.StringVar(&a.flags.PromptsFile, "prompts-file", "", "Extraction prompts YAML (default prompts/extraction_prompts.yaml)")
	pf.IntVar(&a.flags.TimeoutSeconds, "timeout", 0, "Overall deadline in seconds for daemon calls (0 = none)")

	root.AddCommand(
		newModelsCmd(a),
		newPromptTypesCmd(a),
		newPullCmd(a),
		newExtractCmd(a),
		newServeCmd(a),
	)
	return root
}
