// Package draft builds randomized draft orders.
package draft

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"
)

// ErrInvalidInput is returned for an empty roster or a blank entrant name.
var ErrInvalidInput = errors.New("invalid input")

// Order maps pick positions 1..N to entrants. It is immutable once built.
type Order struct {
	picks []string // picks[i] holds pick i+1
}

// Len returns the number of picks.
func (o Order) Len() int { return len(o.picks) }

// At returns the entrant holding pick n (1-based).
func (o Order) At(n int) (string, bool) {
	if n < 1 || n > len(o.picks) {
		return "", false
	}
	return o.picks[n-1], true
}

// Entrants returns the entrants in pick order, 1st first.
func (o Order) Entrants() []string {
	return append([]string(nil), o.picks...)
}

// Descending returns pick numbers from N down to 1, the order of reveal.
func (o Order) Descending() []int {
	out := make([]int, len(o.picks))
	for i := range out {
		out[i] = len(o.picks) - i
	}
	return out
}

// NewOrder builds an Order from entrants already in pick order.
func NewOrder(picks []string) (Order, error) {
	if err := checkNames(picks); err != nil {
		return Order{}, err
	}
	return Order{picks: append([]string(nil), picks...)}, nil
}

// Generate returns a uniformly random order over entrants. It draws one
// entrant at a time from the remaining pool and assigns it to the next
// position counting down from N to 1. A nil rng uses a time-seeded PCG source.
// Duplicates are not rejected here; see ValidateEntrants.
func Generate(entrants []string, rng *rand.Rand) (Order, error) {
	if err := checkNames(entrants); err != nil {
		return Order{}, err
	}
	if rng == nil {
		seed := uint64(time.Now().UnixNano())
		rng = rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	}

	pool := append([]string(nil), entrants...)
	picks := make([]string, len(pool))
	for pos := len(picks); pos >= 1; pos-- {
		i := rng.IntN(len(pool))
		picks[pos-1] = pool[i]
		pool[i] = pool[len(pool)-1]
		pool = pool[:len(pool)-1]
	}
	return Order{picks: picks}, nil
}

// ValidateEntrants applies the roster rules enforced before a run: at least
// one entrant, no blank names, and no duplicates.
func ValidateEntrants(entrants []string) error {
	if err := checkNames(entrants); err != nil {
		return err
	}
	seen := make(map[string]int, len(entrants))
	for i, name := range entrants {
		key := strings.TrimSpace(name)
		if j, dup := seen[key]; dup {
			return fmt.Errorf("%w: entrant %d duplicates entrant %d (%q)", ErrInvalidInput, i+1, j+1, key)
		}
		seen[key] = i
	}
	return nil
}

func checkNames(entrants []string) error {
	if len(entrants) == 0 {
		return fmt.Errorf("%w: no entrants", ErrInvalidInput)
	}
	for i, name := range entrants {
		if strings.TrimSpace(name) == "" {
			return fmt.Errorf("%w: entrant %d is blank", ErrInvalidInput, i+1)
		}
	}
	return nil
}
