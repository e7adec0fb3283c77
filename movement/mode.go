package movement

// Mode is the movement mode of a character.
type Mode uint8

const (
	ModeNone Mode = iota
	ModeWalking
	ModeNavWalking
	ModeFalling
	ModeSwimming
	ModeFlying
	ModeCustom
)

func (m Mode) String() string {
	switch m {
	case ModeWalking:
		return "Walking"
	case ModeNavWalking:
		return "NavWalking"
	case ModeFalling:
		return "Falling"
	case ModeSwimming:
		return "Swimming"
	case ModeFlying:
		return "Flying"
	case ModeCustom:
		return "Custom"
	}
	return "None"
}

// Grounded returns true for the modes that keep the character on a floor.
func (m Mode) Grounded() bool {
	return m == ModeWalking || m == ModeNavWalking
}
