package cli

import (
	"github.com/spf13/cobra"

	"medspresso/internal/ollama"
	"medspresso/pkg/types"
)

func (a *app) daemon() *ollama.Daemon { return ollama.NewDaemon(a.daemonConfig()) }

func newPullCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "pull <model>",
		Short:   "Download a model into the daemon",
		Example: "  medspresso pull deepseek-r1:1.5b",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := a.context(cmd.Context())
			defer cancel()
			name := args[0]
			a.console.Info("pulling %s", name)
			last, pct := "", -100
			err := a.daemon().PullModel(ctx, name, func(p types.PullProgress) {
				if p.Total > 0 {
					n := int(p.Completed * 100 / p.Total)
					if p.Status == last && n/10 == pct/10 {
						return
					}
					last, pct = p.Status, n
					a.console.Info("%s %d%%", p.Status, n)
					return
				}
				if p.Status == last {
					return
				}
				last, pct = p.Status, -100
				a.console.Info("%s", p.Status)
			})
			if err != nil {
				return err
			}
			a.console.Success("pulled %s", name)
			return nil
		},
	}
}
