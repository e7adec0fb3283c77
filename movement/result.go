package movement

import "github.com/go-gl/mathgl/mgl64"

// Outcome describes which terminal path the simulation took during a tick.
type Outcome uint8

const (
	OutcomeNormal Outcome = iota
	// OutcomeZeroDelta means the character did not try to move.
	OutcomeZeroDelta
	// OutcomeStuck means an iteration did not change the location and the tick was aborted.
	OutcomeStuck
	// OutcomeForcedFall means the character walked off a floor and started falling.
	OutcomeForcedFall
	// OutcomeReverted means a move was undone because no acceptable floor was found.
	OutcomeReverted
	OutcomeSkippedTinyTick
	// OutcomeImmobileOrNotReady means the state could not be simulated (NaN
	// velocity, zero sized capsule or no collision world) and was left untouched.
	OutcomeImmobileOrNotReady
)

func (o Outcome) String() string {
	switch o {
	case OutcomeZeroDelta:
		return "ZeroDelta"
	case OutcomeStuck:
		return "Stuck"
	case OutcomeForcedFall:
		return "ForcedFall"
	case OutcomeReverted:
		return "Reverted"
	case OutcomeSkippedTinyTick:
		return "SkippedTinyTick"
	case OutcomeImmobileOrNotReady:
		return "ImmobileOrNotReady"
	}
	return "Normal"
}

// Result captures the outcome of a single simulation tick.
type Result struct {
	Location      mgl64.Vec3
	Velocity      mgl64.Vec3
	LocationDelta mgl64.Vec3

	Mode     Mode
	PrevMode Mode
	OnGround bool
	Floor    FloorResult

	Crouched   bool
	Lied       bool
	HalfHeight float64

	Outcome    Outcome
	Iterations int
}
