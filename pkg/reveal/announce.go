package reveal

import (
	"strings"
	"time"

	"draftreveal/pkg/tts"
)

// DefaultLeague names the league in the welcome announcement.
const DefaultLeague = "Fantasy Football League"

// suspense is the pause before the entrant is named.
const suspense = time.Second

// IntroText returns the welcome announcement for league.
func IntroText(league string) string {
	league = strings.TrimSpace(league)
	if league == "" {
		league = DefaultLeague
	}
	return tts.Speak("Welcome to your " + tts.Escape(league) + " Draft Order. Let's get started.")
}

// PickText returns the announcement for one pick. label is the ordinal
// ("3rd"); entrant is escaped.
func PickText(label, entrant string) string {
	return tts.Speak("With the " + label + " pick of the draft, the pick goes to " +
		tts.Break(suspense) + tts.Escape(entrant) + ".")
}
