package audio

import "math"

const silentThreshold = 0.01

// volumeToPower maps a linear 0..1 level onto the base-2 exponent that
// effects.Volume expects. 1 is unity gain, 0.5 is half amplitude.
func volumeToPower(vol float64) float64 {
	if vol <= silentThreshold {
		return -10
	}
	return math.Log2(vol)
}

func clampVolume(vol float64) float64 {
	switch {
	case math.IsNaN(vol), vol < 0:
		return 0
	case vol > 1:
		return 1
	}
	return vol
}
