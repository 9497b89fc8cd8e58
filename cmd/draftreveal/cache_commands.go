package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"draftreveal/pkg/audio"
	"draftreveal/pkg/cache"
	"draftreveal/pkg/display"
)

func newCacheCommand(ctx *commandContext) *cobra.Command {
	cacheCmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect or clear the clip cache",
	}
	cacheCmd.AddCommand(newCacheResetCommand(ctx))
	cacheCmd.AddCommand(newCacheListCommand(ctx))
	return cacheCmd
}

func newCacheResetCommand(ctx *commandContext) *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Delete cached pick clips (the interlude is always kept)",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			clips := cache.New(cfg.Audio.CacheDir, nil, "", nil)
			if err := clips.Lock(); err != nil {
				return err
			}
			defer clips.Unlock()

			var preserve []cache.Key
			if !all {
				preserve = append(preserve, cache.KeyIntro)
			}
			if err := clips.Reset(preserve...); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Cleared clip cache in %s\n", clips.Dir())
			return nil
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "Also delete the welcome announcement")
	return cmd
}

func newCacheListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List cached clips",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			clips := cache.New(cfg.Audio.CacheDir, nil, "", nil)
			entries, err := clips.List()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(entries) == 0 {
				fmt.Fprintf(out, "No cached clips in %s\n", clips.Dir())
				return nil
			}

			rows := make([][]string, 0, len(entries))
			for _, e := range entries {
				length := "-"
				if d, err := audio.Duration(e.Path); err == nil {
					length = d.Round(10 * time.Millisecond).String()
				}
				rows = append(rows, []string{string(e.Key), e.Key.FileName(), strconv.FormatInt(e.Size, 10), length})
			}
			fmt.Fprintln(out, display.RenderTable(
				[]string{"Key", "File", "Bytes", "Length"},
				rows,
				[]display.Align{display.AlignLeft, display.AlignLeft, display.AlignRight, display.AlignRight},
			))
			return nil
		},
	}
}
