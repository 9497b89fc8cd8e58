package draft

import (
	"fmt"
	"math/rand/v2"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func roster(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("Team %02d", i+1)
	}
	return out
}

func TestGenerate_Bijection(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 11))
	for n := 1; n <= 12; n++ {
		t.Run(fmt.Sprintf("N=%d", n), func(t *testing.T) {
			entrants := roster(n)
			order, err := Generate(entrants, rng)
			require.NoError(t, err)
			require.Equal(t, n, order.Len())

			var got []string
			for pick := 1; pick <= n; pick++ {
				name, ok := order.At(pick)
				require.True(t, ok, "pick %d missing", pick)
				got = append(got, name)
			}
			sort.Strings(got)
			assert.Equal(t, entrants, got)

			_, ok := order.At(0)
			assert.False(t, ok)
			_, ok = order.At(n + 1)
			assert.False(t, ok)
		})
	}
}

func TestGenerate_Uniform(t *testing.T) {
	const trials = 6000
	rng := rand.New(rand.NewPCG(42, 1337))
	entrants := []string{"A", "B", "C"}

	counts := map[string]int{}
	for i := 0; i < trials; i++ {
		order, err := Generate(entrants, rng)
		require.NoError(t, err)
		counts[strings.Join(order.Entrants(), "")]++
	}
	require.Len(t, counts, 6, "every permutation should appear")

	expected := float64(trials) / 6
	chi := 0.0
	for _, c := range counts {
		d := float64(c) - expected
		chi += d * d / expected
	}
	// 5 degrees of freedom, p = 0.001
	assert.Less(t, chi, 20.52, "counts %v", counts)
}

func TestGenerate_DoesNotMutateInput(t *testing.T) {
	entrants := roster(5)
	snapshot := append([]string(nil), entrants...)
	_, err := Generate(entrants, nil)
	require.NoError(t, err)
	assert.Equal(t, snapshot, entrants)
}

func TestGenerate_InvalidInput(t *testing.T) {
	tests := []struct {
		name     string
		entrants []string
	}{
		{name: "Empty", entrants: nil},
		{name: "Blank Name", entrants: []string{"A", "  "}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Generate(tt.entrants, nil)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}

	// Duplicates are the caller's business
	order, err := Generate([]string{"A", "A"}, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "A"}, order.Entrants())
}

func TestValidateEntrants(t *testing.T) {
	tests := []struct {
		name     string
		entrants []string
		wantErr  bool
	}{
		{name: "Valid", entrants: []string{"A", "B", "C"}},
		{name: "Single", entrants: []string{"Solo"}},
		{name: "Empty", entrants: []string{}, wantErr: true},
		{name: "Blank", entrants: []string{"A", ""}, wantErr: true},
		{name: "Duplicate", entrants: []string{"A", "B", "A"}, wantErr: true},
		{name: "Duplicate After Trim", entrants: []string{"A", " A "}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateEntrants(tt.entrants)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidInput)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestOrder_Descending(t *testing.T) {
	order, err := NewOrder([]string{"First", "Second", "Third"})
	require.NoError(t, err)
	assert.Equal(t, []int{3, 2, 1}, order.Descending())

	name, ok := order.At(1)
	assert.True(t, ok)
	assert.Equal(t, "First", name)

	// Entrants returns a copy
	e := order.Entrants()
	e[0] = "Changed"
	name, _ = order.At(1)
	assert.Equal(t, "First", name)
}

func TestOrdinal(t *testing.T) {
	tests := []struct {
		n    int
		want string
	}{
		{1, "1st"}, {2, "2nd"}, {3, "3rd"}, {4, "4th"},
		{11, "11th"}, {12, "12th"}, {13, "13th"},
		{21, "21st"}, {22, "22nd"}, {23, "23rd"}, {24, "24th"},
		{101, "101st"}, {111, "111th"}, {112, "112th"}, {113, "113th"},
		{0, "0th"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Ordinal(tt.n), "Ordinal(%d)", tt.n)
	}
}
