package cli

import (
	"github.com/spf13/cobra"

	"medspresso/internal/prompts"
)

func newModelsCmd(a *app) *cobra.Command {
	var fromDaemon bool
	cmd := &cobra.Command{
		Use:     "models",
		Aliases: []string{"list-models"},
		Short:   "List configured models (or models installed in the daemon with --daemon)",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if fromDaemon {
				return listDaemonModels(cmd, a)
			}
			reg, err := a.registry()
			if err != nil {
				return err
			}
			models := reg.List()
			if len(models) == 0 {
				a.console.Warning("no models configured in %s", a.cfg.ModelsFile)
				return nil
			}
			a.console.Models(models)
			return nil
		},
	}
	cmd.Flags().BoolVar(&fromDaemon, "daemon", false, "List models installed in the daemon instead of the registry")
	return cmd
}

func listDaemonModels(cmd *cobra.Command, a *app) error {
	ctx, cancel := a.context(cmd.Context())
	defer cancel()
	names, err := a.daemon().ListModels(ctx)
	if err != nil {
		return err
	}
	if len(names) == 0 {
		a.console.Info("no models installed; fetch one with `medspresso pull <model>`")
		return nil
	}
	a.console.Names("Installed Models:", names)
	return nil
}

func newPromptTypesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "prompt-types",
		Short: "List the extraction types defined in the prompts file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			names, err := prompts.AvailableTypes(a.cfg.PromptsFile)
			if err != nil {
				a.console.Warning("prompts file unavailable: %v", err)
			}
			a.console.Names("Extraction Types:", names)
			return nil
		},
	}
}
