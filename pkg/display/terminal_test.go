package display

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"draftreveal/pkg/draft"
	"draftreveal/pkg/reveal"
)

func TestShouldColorize(t *testing.T) {
	var buf bytes.Buffer
	assert.False(t, ShouldColorize(&buf))
	assert.False(t, NewTerminal(&buf).colorize)
}

func TestTerminal_Plain(t *testing.T) {
	var buf bytes.Buffer
	term := NewPlainTerminal(&buf)

	order, err := draft.NewOrder([]string{"Alpha", "Bravo"})
	require.NoError(t, err)

	term.Welcome()
	term.Reveal(2, "2nd", "Bravo")
	term.Countdown(2, reveal.CueEarly)
	term.Countdown(2, reveal.CueLate)
	term.Countdown(1, reveal.CueEarly)
	term.Countdown(1, reveal.CueLate)
	term.ClearCountdown()
	term.Reveal(1, "1st", "Alpha")
	term.Complete(order)

	out := buf.String()
	assert.NotContains(t, out, "\x1b[", "plain output must not carry escape codes")
	assert.Contains(t, out, "Welcome to the Fantasy Draft Reveal!")
	assert.Contains(t, out, "2nd:   Bravo\n")
	assert.Contains(t, out, "2... 1... \n")
	assert.Contains(t, out, "1st:   Alpha\n")
	assert.Contains(t, out, "Draft Order Complete!")
	assert.Less(t, strings.Index(out, "Bravo"), strings.Index(out, "Alpha"))
}

func TestTerminal_ClearWithoutCountdown(t *testing.T) {
	var buf bytes.Buffer
	term := NewPlainTerminal(&buf)
	term.ClearCountdown()
	assert.Empty(t, buf.String())
}

func TestTerminal_Colorized(t *testing.T) {
	var buf bytes.Buffer
	term := &Terminal{out: &buf, colorize: true}

	term.Countdown(3, reveal.CueEarly)
	term.Countdown(3, reveal.CueLate)
	term.ClearCountdown()

	out := buf.String()
	assert.Equal(t, 3, strings.Count(out, "\r"))
	assert.Contains(t, out, earlyColors.Sprint("   3"))
	assert.Contains(t, out, lateColors.Sprint("   3"))
	assert.True(t, strings.HasSuffix(out, "\r\x1b[K"))
}

func TestRenderOrder(t *testing.T) {
	order, err := draft.NewOrder([]string{"Alpha", "Bravo", "Charlie"})
	require.NoError(t, err)

	out := RenderOrder(order)
	lines := strings.Split(out, "\n")
	require.GreaterOrEqual(t, len(lines), 6)
	assert.Contains(t, strings.ToUpper(lines[1]), "ENTRANT")
	assert.Contains(t, out, "1st")
	assert.Contains(t, out, "3rd")
	assert.Less(t, strings.Index(out, "Alpha"), strings.Index(out, "Charlie"))
	assert.True(t, strings.HasPrefix(out, "╭"))
}

func TestRenderTable_PadsShortRows(t *testing.T) {
	out := RenderTable([]string{"A", "B"}, [][]string{{"only"}}, nil)
	assert.Contains(t, out, "only")
	assert.Empty(t, RenderTable(nil, nil, nil))
}
