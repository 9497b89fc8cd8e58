package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"draftreveal/pkg/config"
)

func newConfigCommand(ctx *commandContext) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration utilities",
	}
	configCmd.AddCommand(newConfigInitCommand(ctx))
	return configCmd
}

func newConfigInitCommand(ctx *commandContext) *cobra.Command {
	var overwrite bool

	cmd := &cobra.Command{
		Use:         "init",
		Short:       "Write the default configuration file",
		Annotations: map[string]string{skipConfigLoad: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			target := strings.TrimSpace(ctx.configPath())

			if _, err := os.Stat(target); err == nil {
				if !overwrite {
					return fmt.Errorf("config file already exists at %s (use --overwrite to replace it)", target)
				}
				if err := config.Save(target, config.DefaultConfig()); err != nil {
					return err
				}
			} else if !os.IsNotExist(err) {
				return fmt.Errorf("check config path: %w", err)
			} else if err := config.GenerateDefault(target); err != nil {
				return fmt.Errorf("failed to generate config: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Config file generated: %s\n", target)
			fmt.Fprintf(out, "Set %s and %s (environment or .env) before running a reveal.\n", config.EnvAPIKey, config.EnvVoiceID)
			return nil
		},
	}

	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Overwrite existing configuration if present")
	return cmd
}
