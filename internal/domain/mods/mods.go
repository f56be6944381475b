// Package mods models the osu! gameplay modifier bitset as a set of named
// variants with a fixed rendering order.
package mods

import (
	"math/bits"
	"strings"
)

// Mod is a single gameplay modifier. Values match the bit positions used by
// the game client (https://github.com/ppy/osu-api/wiki#mods).
type Mod uint8

// Known modifiers, in bit order.
const (
	NoFail Mod = iota
	Easy
	TouchDevice
	Hidden
	HardRock
	SuddenDeath
	DoubleTime
	Relax
	HalfTime
	Nightcore // only set along with DoubleTime
	Flashlight
	Autoplay
	SpunOut
	Autopilot
	Perfect // only set along with SuddenDeath
	Key4
	Key5
	Key6
	Key7
	Key8
	FadeIn
	Random
	Cinema
	Target
	Key9
	KeyCoop
	Key1
	Key3
	Key2
	ScoreV2
	Mirror

	modCount
)

// NoModLabel is what an empty Set renders as.
const NoModLabel = "NoMod"

var names = [modCount]string{
	NoFail:      "NoFail",
	Easy:        "Easy",
	TouchDevice: "TouchDevice",
	Hidden:      "Hidden",
	HardRock:    "HardRock",
	SuddenDeath: "SuddenDeath",
	DoubleTime:  "DoubleTime",
	Relax:       "Relax",
	HalfTime:    "HalfTime",
	Nightcore:   "Nightcore",
	Flashlight:  "Flashlight",
	Autoplay:    "Autoplay",
	SpunOut:     "SpunOut",
	Autopilot:   "Autopilot",
	Perfect:     "Perfect",
	Key4:        "Key4",
	Key5:        "Key5",
	Key6:        "Key6",
	Key7:        "Key7",
	Key8:        "Key8",
	FadeIn:      "FadeIn",
	Random:      "Random",
	Cinema:      "Cinema",
	Target:      "Target",
	Key9:        "Key9",
	KeyCoop:     "KeyCoop",
	Key1:        "Key1",
	Key3:        "Key3",
	Key2:        "Key2",
	ScoreV2:     "ScoreV2",
	Mirror:      "Mirror",
}

// String returns the variant name.
func (m Mod) String() string {
	if m >= modCount {
		return "Unknown"
	}
	return names[m]
}

// Set is an immutable set of modifiers.
type Set struct {
	bits    uint32
	unknown bool
}

const knownMask = uint32(1)<<modCount - 1

// FromBits converts a raw client bitset. Bits outside the known range are
// dropped from the set, and a set that carried any renders as NoMod.
func FromBits(raw uint32) Set {
	return Set{bits: raw & knownMask, unknown: raw&^knownMask != 0}
}

// Of builds a set from individual modifiers.
func Of(ms ...Mod) Set {
	var s Set
	for _, m := range ms {
		if m < modCount {
			s.bits |= 1 << m
		}
	}
	return s
}

// Bits returns the raw client bitset.
func (s Set) Bits() uint32 { return s.bits }

// Has reports whether m is in the set.
func (s Set) Has(m Mod) bool {
	return m < modCount && s.bits&(1<<m) != 0
}

// Empty reports whether no modifier is set.
func (s Set) Empty() bool { return s.bits == 0 }

// Len returns the number of modifiers in the set.
func (s Set) Len() int { return bits.OnesCount32(s.bits) }

// Mods lists the modifiers in bit order.
func (s Set) Mods() []Mod {
	out := make([]Mod, 0, s.Len())
	for m := Mod(0); m < modCount; m++ {
		if s.Has(m) {
			out = append(out, m)
		}
	}
	return out
}

// ClockRate is the playback speed multiplier implied by the set.
func (s Set) ClockRate() float64 {
	switch {
	case s.Has(DoubleTime) || s.Has(Nightcore):
		return 1.5
	case s.Has(HalfTime):
		return 0.75
	}
	return 1
}

// String renders the set as variant names in bit order joined by ", ", or
// NoModLabel when empty.
func (s Set) String() string {
	if s.Empty() || s.unknown {
		return NoModLabel
	}
	var b strings.Builder
	for i, m := range s.Mods() {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(m.String())
	}
	return b.String()
}
