package gait

import (
	"slices"
)

// Curve channels stored in a CurveSet.
const (
	ChannelAcceleration = iota
	ChannelBrakingDeceleration
	ChannelGroundFriction
)

// Key is a single point of a Curve.
type Key struct {
	Time  float64
	Value float64
}

// Curve is a piecewise linear function over sorted keys. Values before the first
// key and after the last key are held constant.
type Curve struct {
	Keys []Key
}

// NewCurve returns a curve over the given keys, sorted by time.
func NewCurve(keys ...Key) Curve {
	keys = slices.Clone(keys)
	slices.SortStableFunc(keys, func(a, b Key) int {
		switch {
		case a.Time < b.Time:
			return -1
		case a.Time > b.Time:
			return 1
		}
		return 0
	})
	return Curve{Keys: keys}
}

// Eval samples the curve at t. An empty curve evaluates to zero.
func (c Curve) Eval(t float64) float64 {
	n := len(c.Keys)
	if n == 0 {
		return 0
	}
	if t <= c.Keys[0].Time {
		return c.Keys[0].Value
	}
	if t >= c.Keys[n-1].Time {
		return c.Keys[n-1].Value
	}
	i, _ := slices.BinarySearchFunc(c.Keys, t, func(k Key, t float64) int {
		switch {
		case k.Time < t:
			return -1
		case k.Time > t:
			return 1
		}
		return 0
	})
	if c.Keys[i].Time == t {
		return c.Keys[i].Value
	}
	a, b := c.Keys[i-1], c.Keys[i]
	alpha := (t - a.Time) / (b.Time - a.Time)
	return a.Value + (b.Value-a.Value)*alpha
}

// CurveSet is a multi-channel curve indexed by the Channel* constants.
type CurveSet struct {
	Channels []Curve
}

// Eval samples a channel. ok is false if the set is nil or the channel does not
// exist or has no keys, in which case callers fall back to their stock value.
func (s *CurveSet) Eval(channel int, t float64) (float64, bool) {
	if s == nil || channel < 0 || channel >= len(s.Channels) || len(s.Channels[channel].Keys) == 0 {
		return 0, false
	}
	return s.Channels[channel].Eval(t), true
}
