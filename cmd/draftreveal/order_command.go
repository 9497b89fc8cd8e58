package main

import (
	"fmt"
	"math/rand/v2"

	"github.com/spf13/cobra"

	"draftreveal/pkg/display"
	"draftreveal/pkg/draft"
)

func newOrderCommand(ctx *commandContext) *cobra.Command {
	var entrants []string
	var seed uint64

	cmd := &cobra.Command{
		Use:   "order",
		Short: "Print a random draft order without audio",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			names := cfg.Draft.Entrants
			if cmd.Flags().Changed("entrant") {
				names = entrants
			}
			if err := draft.ValidateEntrants(names); err != nil {
				return err
			}

			var rng *rand.Rand
			if cmd.Flags().Changed("seed") {
				rng = seededRand(seed)
			}
			order, err := draft.Generate(names, rng)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), display.RenderOrder(order))
			return nil
		},
	}

	cmd.Flags().StringArrayVarP(&entrants, "entrant", "e", nil, "Entrant name (repeat for each; overrides draft.entrants)")
	cmd.Flags().Uint64Var(&seed, "seed", 0, "Seed the draw for a reproducible order")
	return cmd
}
