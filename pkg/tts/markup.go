package tts

import (
	"fmt"
	"strings"
	"time"
)

// Speak wraps body in an SSML <speak> element.
func Speak(body string) string {
	return "<speak>" + body + "</speak>"
}

// Break returns an SSML pause of the given length, rounded to whole
// milliseconds, or whole seconds when exact.
func Break(d time.Duration) string {
	if d%time.Second == 0 {
		return fmt.Sprintf(`<break time="%ds"/>`, int64(d/time.Second))
	}
	return fmt.Sprintf(`<break time="%dms"/>`, d.Milliseconds())
}

var ssmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&apos;",
)

// Escape makes free text safe to embed in SSML.
func Escape(s string) string {
	return ssmlEscaper.Replace(s)
}
