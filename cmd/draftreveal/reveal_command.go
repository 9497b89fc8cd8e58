package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"strings"

	"github.com/jonboulle/clockwork"
	"github.com/spf13/cobra"

	"draftreveal/pkg/audio"
	"draftreveal/pkg/cache"
	"draftreveal/pkg/config"
	"draftreveal/pkg/display"
	"draftreveal/pkg/draft"
	"draftreveal/pkg/logging"
	"draftreveal/pkg/probe"
	"draftreveal/pkg/reveal"
	"draftreveal/pkg/tracker"
	"draftreveal/pkg/tts"
	"draftreveal/pkg/tts/elevenlabs"
	"draftreveal/pkg/version"
)

type player interface {
	audio.Service
	Shutdown()
}

// deps are the pieces of a run that touch the outside world.
type deps struct {
	newProvider  func(cfg config.TTSConfig, t *tracker.Tracker) (tts.Provider, error)
	newPlayer    func(volume float64, t *tracker.Tracker) player
	newPresenter func(out io.Writer) reveal.Presenter
	clock        clockwork.Clock
}

func defaultDeps() deps {
	return deps{
		newProvider: newSynthesizer,
		newPlayer: func(volume float64, t *tracker.Tracker) player {
			return audio.NewPlayer(volume, t)
		},
		newPresenter: func(out io.Writer) reveal.Presenter {
			return display.NewTerminal(out)
		},
		clock: clockwork.NewRealClock(),
	}
}

func newSynthesizer(cfg config.TTSConfig, t *tracker.Tracker) (tts.Provider, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Engine)) {
	case "", "elevenlabs":
		return elevenlabs.NewProvider(cfg.ElevenLabs, t)
	default:
		return nil, fmt.Errorf("unknown tts engine %q", cfg.Engine)
	}
}

type revealOptions struct {
	entrants       []string
	delay          string
	league         string
	seed           uint64
	finalCountdown bool
}

func newRevealCommand(ctx *commandContext) *cobra.Command {
	var opts revealOptions

	cmd := &cobra.Command{
		Use:   "reveal",
		Short: "Run the draft order reveal",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			flags := cmd.Flags()
			if flags.Changed("entrant") {
				cfg.Draft.Entrants = opts.entrants
			}
			if flags.Changed("league") {
				cfg.Draft.League = opts.league
			}
			if flags.Changed("final-countdown") {
				cfg.Reveal.FinalCountdown = opts.finalCountdown
			}

			delay, fallback := config.ResolveDelay(cfg.Draft.Delay)
			if flags.Changed("delay") {
				delay, fallback = config.ParseDelay(opts.delay)
			}
			if fallback {
				fmt.Fprintf(cmd.OutOrStdout(), "Invalid delay entered. Using default of %.1f seconds.\n", config.DefaultDelay)
			}
			cfg.Draft.Delay = delay

			var rng *rand.Rand
			if flags.Changed("seed") {
				rng = seededRand(opts.seed)
			}
			return runReveal(cmd.Context(), cfg, ctx.deps, rng, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringArrayVarP(&opts.entrants, "entrant", "e", nil, "Entrant name (repeat for each; overrides draft.entrants)")
	cmd.Flags().StringVarP(&opts.delay, "delay", "d", "", "Seconds of countdown per pick (overrides draft.delay)")
	cmd.Flags().StringVar(&opts.league, "league", "", "League name used in the welcome announcement")
	cmd.Flags().Uint64Var(&opts.seed, "seed", 0, "Seed the draw for a reproducible order")
	cmd.Flags().BoolVar(&opts.finalCountdown, "final-countdown", true, "Count down once more after the 1st pick")
	return cmd
}

func seededRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed))
}

func runReveal(ctx context.Context, cfg *config.Config, d deps, rng *rand.Rand, out io.Writer) error {
	if err := draft.ValidateEntrants(cfg.Draft.Entrants); err != nil {
		return err
	}

	cleanupLogs, err := logging.Init(&cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	defer cleanupLogs()

	tts.SetLogPath(cfg.Log.TTS.Path)
	tts.SetEnabled(cfg.Log.TTS.Enabled)

	slog.Info("DraftReveal Started", "version", version.Version, "entrants", len(cfg.Draft.Entrants), "delay", cfg.Draft.Delay)

	probeClips := cache.New(cfg.Audio.CacheDir, nil, "", nil)
	results := probe.Run(ctx, []probe.Probe{
		probe.Credentials(cfg.TTS.ElevenLabs),
		probe.CacheWritable(cfg.Audio.CacheDir),
		probe.AssetPresent("Interlude", probeClips.Path(cache.KeyInterlude)),
	})
	if err := probe.AnalyzeResults(results); err != nil {
		return fmt.Errorf("startup checks failed: %w", err)
	}

	tr := tracker.New()
	defer tr.LogSummary(slog.Default())

	provider, err := d.newProvider(cfg.TTS, tr)
	if err != nil {
		return fmt.Errorf("failed to initialize tts: %w", err)
	}

	clips := cache.New(cfg.Audio.CacheDir, provider, cfg.TTS.ElevenLabs.VoiceID, tr)
	if err := clips.Lock(); err != nil {
		return err
	}
	defer func() {
		if err := clips.Unlock(); err != nil {
			slog.Warn("Clips: failed to release cache lock", "error", err)
		}
	}()

	if err := clips.Reset(cache.KeyIntro); err != nil {
		return err
	}

	order, err := draft.Generate(cfg.Draft.Entrants, rng)
	if err != nil {
		return err
	}

	p := d.newPlayer(cfg.Audio.Volume, tr)
	defer p.Shutdown()

	seq := reveal.New(reveal.Config{
		League:         cfg.Draft.League,
		Delay:          cfg.Draft.Delay,
		Tick:           cfg.Reveal.Tick.Std(),
		Settle:         cfg.Reveal.Settle.Std(),
		FinalCountdown: cfg.Reveal.FinalCountdown,
	}, clips, p, d.newPresenter(out), reveal.WithClock(d.clock))

	return seq.Run(ctx, order)
}
