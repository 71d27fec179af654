package domain

import "github.com/jonboulle/clockwork"

// clock is the package time source; ProcessedAt stamps come from it.
// Tests freeze it via SetClock so fixtures stay byte-stable across runs.
var clock = clockwork.NewRealClock()

// SetClock swaps the time source used for ProcessedAt. Pass nil to reset to
// real time.
func SetClock(c clockwork.Clock) {
	if c == nil {
		clock = clockwork.NewRealClock()
		return
	}
	clock = c
}
