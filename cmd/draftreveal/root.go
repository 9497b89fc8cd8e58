package main

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"sync"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"draftreveal/pkg/config"
	"draftreveal/pkg/logging"
	"draftreveal/pkg/version"
)

const (
	defaultConfigPath = "configs/draftreveal.yaml"
	defaultEnvPath    = ".env"
	skipConfigLoad    = "skipConfigLoad"
)

type commandContext struct {
	configFlag *string
	envFlag    *string
	deps       deps

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func (c *commandContext) configPath() string {
	if c.configFlag != nil {
		if p := strings.TrimSpace(*c.configFlag); p != "" {
			return p
		}
	}
	return defaultConfigPath
}

// ensureConfig loads .env before the YAML so secrets can live in either.
func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		envPath := defaultEnvPath
		if c.envFlag != nil && strings.TrimSpace(*c.envFlag) != "" {
			envPath = strings.TrimSpace(*c.envFlag)
		}
		if err := godotenv.Load(envPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
			c.configErr = fmt.Errorf("failed to load %s: %w", envPath, err)
			return
		}

		cfg, err := config.Load(c.configPath())
		if err != nil {
			c.configErr = fmt.Errorf("failed to load config: %w", err)
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations[skipConfigLoad] == "true" {
			return true
		}
	}
	return false
}

func newRootCommand(d deps) *cobra.Command {
	var configFlag, envFlag string
	var traceFlag bool
	ctx := &commandContext{configFlag: &configFlag, envFlag: &envFlag, deps: d}

	revealCmd := newRevealCommand(ctx)

	rootCmd := &cobra.Command{
		Use:           "draftreveal",
		Short:         "Reveal a randomized draft order with spoken announcements",
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			logging.EnableTrace = traceFlag
			if shouldSkipConfig(cmd) {
				return nil
			}
			_, err := ctx.ensureConfig()
			return err
		},
		// A bare invocation runs the reveal
		RunE: revealCmd.RunE,
	}
	rootCmd.Flags().AddFlagSet(revealCmd.Flags())

	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "Configuration file path (default "+defaultConfigPath+")")
	rootCmd.PersistentFlags().StringVar(&envFlag, "env-file", "", "Dotenv file with ELEVEN_API_KEY / VOICE_ID (default .env)")
	rootCmd.PersistentFlags().BoolVar(&traceFlag, "trace", false, "Log every countdown frame at DEBUG")

	rootCmd.AddCommand(revealCmd)
	rootCmd.AddCommand(newOrderCommand(ctx))
	rootCmd.AddCommand(newCacheCommand(ctx))
	rootCmd.AddCommand(newConfigCommand(ctx))

	return rootCmd
}
