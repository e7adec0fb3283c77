package prediction

import (
	"bytes"
	"fmt"

	"github.com/oomph-ac/locomotion/internal"
	"github.com/oomph-ac/locomotion/locomotion"
	"github.com/oomph-ac/locomotion/oerror"
	"github.com/sandertv/gophertunnel/minecraft/protocol"
)

// Bits of the leading mask of serialized move data. A set bit means the field
// differs from its default and follows the mask.
const (
	moveDataRotationMode uint8 = 1 << iota
	moveDataStance
	moveDataMaxAllowedGait
	moveDataWantsToLie

	moveDataKnownBits = moveDataRotationMode | moveDataStance | moveDataMaxAllowedGait | moveDataWantsToLie
)

// MoveData is the locomotion part of a move sent from the client to the server.
type MoveData struct {
	RotationMode   locomotion.RotationMode
	Stance         locomotion.Stance
	MaxAllowedGait locomotion.Gait
	WantsToLie     bool
}

// ClientFillNetworkMoveData copies the tags of a saved move.
func (d *MoveData) ClientFillNetworkMoveData(m *SavedMove) {
	d.RotationMode = m.RotationMode
	d.Stance = m.Stance
	d.MaxAllowedGait = m.MaxAllowedGait
	d.WantsToLie = m.WantsToLie
}

func (d *MoveData) mask() (mask uint8) {
	if d.RotationMode != locomotion.RotationViewDirection {
		mask |= moveDataRotationMode
	}
	if d.Stance != locomotion.StanceStanding {
		mask |= moveDataStance
	}
	if d.MaxAllowedGait != locomotion.GaitWalking {
		mask |= moveDataMaxAllowedGait
	}
	if d.WantsToLie {
		mask |= moveDataWantsToLie
	}
	return mask
}

// Serialize writes the fields that differ from their defaults.
func (d *MoveData) Serialize(w *protocol.Writer) {
	mask := d.mask()
	w.Uint8(&mask)

	if mask&moveDataRotationMode != 0 {
		v := uint8(d.RotationMode)
		w.Uint8(&v)
	}
	if mask&moveDataStance != 0 {
		v := uint8(d.Stance)
		w.Uint8(&v)
	}
	if mask&moveDataMaxAllowedGait != 0 {
		v := uint8(d.MaxAllowedGait)
		w.Uint8(&v)
	}
	// WantsToLie is carried by the mask bit alone.
}

// Deserialize reads move data written by Serialize. Fields absent from the mask
// are set to their defaults.
func (d *MoveData) Deserialize(r *protocol.Reader) (err error) {
	defer func() {
		if v := recover(); v != nil {
			if e, ok := v.(error); ok {
				err = oerror.Wrap(e, "decode move data")
				return
			}
			err = oerror.New("decode move data: %v", v)
		}
	}()

	*d = MoveData{}

	var mask uint8
	r.Uint8(&mask)
	if mask&^moveDataKnownBits != 0 {
		return oerror.New("decode move data: unknown mask bits %08b", mask&^moveDataKnownBits)
	}

	if mask&moveDataRotationMode != 0 {
		var v uint8
		r.Uint8(&v)
		if d.RotationMode = locomotion.RotationMode(v); !d.RotationMode.Valid() {
			return oerror.New("decode move data: unknown rotation mode %d", v)
		}
	}
	if mask&moveDataStance != 0 {
		var v uint8
		r.Uint8(&v)
		if d.Stance = locomotion.Stance(v); !d.Stance.Valid() {
			return oerror.New("decode move data: unknown stance %d", v)
		}
	}
	if mask&moveDataMaxAllowedGait != 0 {
		var v uint8
		r.Uint8(&v)
		if d.MaxAllowedGait = locomotion.Gait(v); !d.MaxAllowedGait.Valid() {
			return oerror.New("decode move data: unknown gait %d", v)
		}
	}
	d.WantsToLie = mask&moveDataWantsToLie != 0
	return nil
}

// Encode returns the serialized form of d.
func (d *MoveData) Encode() []byte {
	buf := internal.BufferPool.Get().(*bytes.Buffer)
	defer internal.BufferPool.Put(buf)

	buf.Reset()
	d.Serialize(protocol.NewWriter(buf, 0))
	return bytes.Clone(buf.Bytes())
}

// DecodeMoveData decodes move data produced by Encode.
func DecodeMoveData(b []byte) (MoveData, error) {
	var d MoveData
	err := d.Deserialize(protocol.NewReader(bytes.NewReader(b), 0, false))
	return d, err
}

// MoveAutonomous applies received move data to the character on the server. The
// tags are applied even when they are not valid locally; the correction that
// follows the move reconciles the two sides.
func MoveAutonomous(d *MoveData, c Character) {
	if d == nil {
		return
	}
	c.SetRotationMode(d.RotationMode)
	c.SetStance(d.Stance)
	c.SetMaxAllowedGait(d.MaxAllowedGait)
	c.SetWantsToLie(d.WantsToLie)

	c.RefreshGaitSettings()
}

func (d MoveData) String() string {
	return fmt.Sprintf("MoveData{%s %s %s lie=%t}", d.RotationMode.Name(), d.Stance.Name(), d.MaxAllowedGait.Name(), d.WantsToLie)
}
