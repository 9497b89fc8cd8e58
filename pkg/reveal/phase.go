package reveal

// Phase is a step of the reveal protocol.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseAnnouncingIntro
	PhasePreparingClip
	PhasePlayingInterlude
	PhasePlayingPick
	PhaseCountingDown
	PhaseComplete
)

var phaseNames = [...]string{
	PhaseIdle:             "idle",
	PhaseAnnouncingIntro:  "announcing_intro",
	PhasePreparingClip:    "preparing_clip",
	PhasePlayingInterlude: "playing_interlude",
	PhasePlayingPick:      "playing_pick",
	PhaseCountingDown:     "counting_down",
	PhaseComplete:         "complete",
}

func (p Phase) String() string {
	if p < 0 || int(p) >= len(phaseNames) {
		return "unknown"
	}
	return phaseNames[p]
}

// State is the sequencer's position in the protocol. Pick is 0 outside the
// per-pick phases.
type State struct {
	Pick  int
	Phase Phase
}
